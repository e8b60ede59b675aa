package http

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fredcamaral/deckflow/internal/domain/ports"
)

func runManager(t *testing.T) (*ConnectionManager, context.CancelFunc) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	cm := NewConnectionManager()
	go cm.Run(ctx)
	t.Cleanup(cancel)

	return cm, cancel
}

func receive(t *testing.T, ch <-chan ports.UpdateEvent) (ports.UpdateEvent, bool) {
	t.Helper()

	select {
	case event, ok := <-ch:
		return event, ok
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return ports.UpdateEvent{}, false
	}
}

func TestConnectionManager_Broadcast(t *testing.T) {
	cm, _ := runManager(t)

	a := &Connection{ID: "a", Send: make(chan ports.UpdateEvent, 1)}
	b := &Connection{ID: "b", Send: make(chan ports.UpdateEvent, 1)}
	require.True(t, cm.RegisterConnection(a))
	require.True(t, cm.RegisterConnection(b))
	assert.Eventually(t, func() bool { return cm.Count() == 2 }, time.Second, 10*time.Millisecond)

	cm.Broadcast(ports.UpdateEvent{Type: ports.EventTypeReload})

	for _, conn := range []*Connection{a, b} {
		event, ok := receive(t, conn.Send)
		require.True(t, ok)
		assert.Equal(t, ports.EventTypeReload, event.Type)
	}
}

func TestConnectionManager_Unregister(t *testing.T) {
	cm, _ := runManager(t)

	conn := &Connection{ID: "a", Send: make(chan ports.UpdateEvent, 1)}
	require.True(t, cm.RegisterConnection(conn))

	cm.Unregister("a")
	_, ok := receive(t, conn.Send)
	assert.False(t, ok, "send channel is closed")
	assert.Equal(t, 0, cm.Count())

	assert.NotPanics(t, func() { cm.Unregister("a") })
}

func TestConnectionManager_DropsSlowClients(t *testing.T) {
	cm, _ := runManager(t)

	slow := &Connection{ID: "slow", Send: make(chan ports.UpdateEvent)}
	require.True(t, cm.RegisterConnection(slow))

	cm.Broadcast(ports.UpdateEvent{Type: ports.EventTypeReload})

	assert.Eventually(t, func() bool { return cm.Count() == 0 }, time.Second, 10*time.Millisecond)
}

func TestConnectionManager_ContextCancel(t *testing.T) {
	cm, cancel := runManager(t)

	conn := &Connection{ID: "a", Send: make(chan ports.UpdateEvent, 1)}
	require.True(t, cm.RegisterConnection(conn))

	cancel()

	_, ok := receive(t, conn.Send)
	assert.False(t, ok)
	assert.Eventually(t, func() bool {
		return !cm.RegisterConnection(&Connection{ID: "late", Send: make(chan ports.UpdateEvent, 1)})
	}, time.Second, 10*time.Millisecond)

	assert.NotPanics(t, func() {
		cm.Broadcast(ports.UpdateEvent{Type: ports.EventTypeReload})
		cm.Unregister("a")
	})
}

func TestConnectionManager_ReplaysLastError(t *testing.T) {
	cm, _ := runManager(t)

	first := &Connection{ID: "first", Send: make(chan ports.UpdateEvent, 2)}
	require.True(t, cm.RegisterConnection(first))

	cm.Broadcast(ports.UpdateEvent{Type: ports.EventTypeError, Data: map[string]interface{}{"error": "bad rules"}})
	event, ok := receive(t, first.Send)
	require.True(t, ok)
	require.Equal(t, ports.EventTypeError, event.Type)

	late := &Connection{ID: "late", Send: make(chan ports.UpdateEvent, 2)}
	require.True(t, cm.RegisterConnection(late))
	event, ok = receive(t, late.Send)
	require.True(t, ok)
	assert.Equal(t, ports.EventTypeError, event.Type)
	assert.Equal(t, "bad rules", event.Data.(map[string]interface{})["error"])

	cm.Broadcast(ports.UpdateEvent{Type: ports.EventTypeReload})
	receive(t, first.Send)
	receive(t, late.Send)

	fresh := &Connection{ID: "fresh", Send: make(chan ports.UpdateEvent, 2)}
	require.True(t, cm.RegisterConnection(fresh))
	assert.Eventually(t, func() bool { return cm.Count() == 3 }, time.Second, 10*time.Millisecond)
	assert.Empty(t, fresh.Send, "a successful reload clears the error")
}
