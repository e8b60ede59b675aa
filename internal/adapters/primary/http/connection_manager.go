package http

import (
	"context"
	"sync"

	"github.com/fredcamaral/deckflow/internal/domain/ports"
)

// Connection is one registered preview client; its events go to Send
type Connection struct {
	ID   string
	Send chan ports.UpdateEvent
}

// ConnectionManager fans reload events out to preview clients. A client
// whose buffer is full is dropped. While the deck fails to parse, the last
// error event is replayed to clients that join late.
type ConnectionManager struct {
	clients    map[string]*Connection
	broadcast  chan ports.UpdateEvent
	register   chan *Connection
	unregister chan string
	lastError  *ports.UpdateEvent
	mu         sync.Mutex
	done       chan struct{}
	doneOnce   sync.Once
}

// NewConnectionManager creates a new connection manager
func NewConnectionManager() *ConnectionManager {
	return &ConnectionManager{
		clients:    make(map[string]*Connection),
		broadcast:  make(chan ports.UpdateEvent, 256),
		register:   make(chan *Connection),
		unregister: make(chan string),
		done:       make(chan struct{}),
	}
}

// Run serves registrations and broadcasts until ctx ends, then closes
// every client
func (cm *ConnectionManager) Run(ctx context.Context) {
	defer cm.doneOnce.Do(func() { close(cm.done) })

	for {
		select {
		case <-ctx.Done():
			cm.CloseAll()
			return
		case conn := <-cm.register:
			cm.add(conn)
		case id := <-cm.unregister:
			cm.remove(id)
		case event := <-cm.broadcast:
			cm.deliver(event)
		}
	}
}

// RegisterConnection adds a client; false once the manager has stopped
func (cm *ConnectionManager) RegisterConnection(conn *Connection) bool {
	select {
	case cm.register <- conn:
		return true
	case <-cm.done:
		return false
	}
}

// Unregister removes a client and closes its channel
func (cm *ConnectionManager) Unregister(connID string) {
	select {
	case cm.unregister <- connID:
	case <-cm.done:
	}
}

// Broadcast queues an event for every client
func (cm *ConnectionManager) Broadcast(event ports.UpdateEvent) {
	select {
	case cm.broadcast <- event:
	case <-cm.done:
	}
}

// Count returns the number of registered clients
func (cm *ConnectionManager) Count() int {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	return len(cm.clients)
}

// CloseAll drops every client
func (cm *ConnectionManager) CloseAll() {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	for id, conn := range cm.clients {
		close(conn.Send)
		delete(cm.clients, id)
	}
}

func (cm *ConnectionManager) add(conn *Connection) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	cm.clients[conn.ID] = conn
	if cm.lastError != nil {
		cm.send(conn, *cm.lastError)
	}
}

// deliver sends event to every client. Errors are remembered for late
// joiners until the next successful reload.
func (cm *ConnectionManager) deliver(event ports.UpdateEvent) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	switch event.Type {
	case ports.EventTypeError:
		cm.lastError = &event
	case ports.EventTypeReload, ports.EventTypeRules:
		cm.lastError = nil
	}

	for _, conn := range cm.clients {
		cm.send(conn, event)
	}
}

// send must be called with mu held
func (cm *ConnectionManager) send(conn *Connection, event ports.UpdateEvent) {
	select {
	case conn.Send <- event:
	default:
		close(conn.Send)
		delete(cm.clients, conn.ID)
	}
}

func (cm *ConnectionManager) remove(id string) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if conn, ok := cm.clients[id]; ok {
		delete(cm.clients, id)
		close(conn.Send)
	}
}
