package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fredcamaral/deckflow/internal/domain/entities"
)

var servingURL = regexp.MustCompile(`at (http://\S+)`)

func getJSON(t *testing.T, url string, v interface{}) {
	t.Helper()

	resp, err := http.Get(url) // #nosec G107 - test server URL
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(body, v))
}

// slideCount is safe to poll from assert.Eventually; -1 means the
// request failed
func slideCount(url string) int {
	resp, err := http.Get(url) // #nosec G107 - test server URL
	if err != nil {
		return -1
	}
	defer func() { _ = resp.Body.Close() }()

	var body struct {
		Slides []json.RawMessage `json:"slides"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return -1
	}
	return len(body.Slides)
}

func TestServeCommand(t *testing.T) {
	dir := isolate(t)
	t.Setenv("DECKFLOW_WATCH_INTERVAL", "50")
	t.Setenv("DECKFLOW_WATCH_DEBOUNCE", "20")
	deck := writeFile(t, dir, "talk.md", sampleDeck)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var out syncBuffer
	done := make(chan error, 1)
	go func() {
		done <- execute(t, ctx, &out, "serve", deck, "--port", "0", "--host", "127.0.0.1")
	}()

	var base string
	require.Eventually(t, func() bool {
		if m := servingURL.FindStringSubmatch(out.String()); m != nil {
			base = m[1]
			return true
		}
		return false
	}, 10*time.Second, 20*time.Millisecond)

	var slides struct {
		Slides []entities.ParsedSlide `json:"slides"`
	}
	getJSON(t, base+"/api/slides", &slides)
	require.Len(t, slides.Slides, 2)
	assert.Equal(t, "Welcome", slides.Slides[0].Title)

	require.NoError(t, os.WriteFile(deck, []byte(sampleDeck+"\n---\n\n# Third\n"), 0600))

	assert.Eventually(t, func() bool {
		return slideCount(base+"/api/slides") == 3
	}, 10*time.Second, 50*time.Millisecond, "live reload swaps in the edited deck")

	var health struct {
		Healthy bool `json:"healthy"`
		Slides  int  `json:"slides"`
		Reload  struct {
			Count int64 `json:"count"`
		} `json:"reload"`
		Cache *entities.CacheStats `json:"cache"`
	}
	getJSON(t, base+"/api/health", &health)
	assert.True(t, health.Healthy)
	assert.Equal(t, 3, health.Slides)
	assert.GreaterOrEqual(t, health.Reload.Count, int64(1))
	require.NotNil(t, health.Cache)
	assert.Positive(t, health.Cache.Entries)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("serve did not shut down")
	}
}

func TestServeCommand_MissingFile(t *testing.T) {
	dir := isolate(t)

	_, err := run(t, "serve", dir+"/missing.md", "--port", "0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "presentation file not found")
}

func TestDeckTitle(t *testing.T) {
	tests := []struct {
		name     string
		deck     *entities.ParsedPresentation
		expected string
	}{
		{"first slide title", &entities.ParsedPresentation{Slides: []entities.ParsedSlide{{Title: "Intro"}}}, "Intro"},
		{"untitled slide", &entities.ParsedPresentation{Slides: []entities.ParsedSlide{{}}}, "talk.md"},
		{"empty deck", &entities.ParsedPresentation{}, "talk.md"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, deckTitle(tt.deck, "/decks/talk.md"))
		})
	}
}
