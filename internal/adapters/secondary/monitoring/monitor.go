// Package monitoring tracks parse timings, request counts and memory use
// for the health endpoint.
package monitoring

import (
	"context"
	"math"
	"runtime"
	"sync"
	"time"

	"github.com/fredcamaral/deckflow/internal/domain/ports"
)

const (
	// DefaultInterval is how often memory statistics are sampled
	DefaultInterval = 30 * time.Second

	maxMemoryBytes = 500 << 20
	maxGoroutines  = 1000
	emaAlpha       = 0.1
)

// Metrics is a snapshot of what the monitor has seen
type Metrics struct {
	StartedAt   time.Time
	SampledAt   time.Time
	MemoryBytes int64
	HeapBytes   int64
	Goroutines  int
	GCCycles    uint32

	Parses           int64
	SlidesRendered   int64
	AverageParseTime time.Duration
	Reloads          int64
	FailedReloads    int64
	LastReloadError  string
	HTTPRequests     int64
	HTTPErrors       int64
	OpenConnections  int64
	TotalConnections int64
}

// Monitor implements ports.Monitor
type Monitor struct {
	mu       sync.RWMutex
	metrics  Metrics
	cache    ports.SlideCache
	interval time.Duration
	stopCh   chan struct{}
	running  bool
	now      func() time.Time
}

// NewMonitor creates a monitor. cache may be nil when rendering is uncached.
func NewMonitor(cache ports.SlideCache) *Monitor {
	m := &Monitor{
		cache:    cache,
		interval: DefaultInterval,
		now:      time.Now,
	}
	m.metrics.StartedAt = m.now()
	m.sample()
	return m
}

// Start samples memory statistics until Stop is called or ctx ends
func (m *Monitor) Start(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return
	}
	m.running = true
	m.stopCh = make(chan struct{})

	go m.loop(ctx, m.stopCh, m.interval)
}

// Stop ends sampling; calling it twice is a no-op
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}
	m.running = false
	close(m.stopCh)
}

func (m *Monitor) loop(ctx context.Context, stop <-chan struct{}, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-ticker.C:
			m.sample()
		}
	}
}

func (m *Monitor) sample() {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	goroutines := runtime.NumGoroutine()

	m.mu.Lock()
	defer m.mu.Unlock()

	m.metrics.MemoryBytes = toInt64(stats.Alloc)
	m.metrics.HeapBytes = toInt64(stats.HeapAlloc)
	m.metrics.GCCycles = stats.NumGC
	m.metrics.Goroutines = goroutines
	m.metrics.SampledAt = m.now()
}

// RecordParse records one parse of a deck
func (m *Monitor) RecordParse(slides int, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.metrics.Parses++
	m.metrics.SlidesRendered += int64(slides)

	if m.metrics.AverageParseTime == 0 {
		m.metrics.AverageParseTime = duration
		return
	}
	m.metrics.AverageParseTime = time.Duration(
		float64(m.metrics.AverageParseTime)*(1-emaAlpha) + float64(duration)*emaAlpha,
	)
}

// RecordReload records a live reload; a nil err is a successful one
func (m *Monitor) RecordReload(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.metrics.Reloads++
	if err != nil {
		m.metrics.FailedReloads++
		m.metrics.LastReloadError = err.Error()
		return
	}
	m.metrics.LastReloadError = ""
}

// RecordHTTPRequest counts a served request; 5xx responses count as errors
func (m *Monitor) RecordHTTPRequest(status int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.metrics.HTTPRequests++
	if status >= 500 {
		m.metrics.HTTPErrors++
	}
}

// RecordConnection tracks a websocket client opening or closing
func (m *Monitor) RecordConnection(open bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if open {
		m.metrics.OpenConnections++
		m.metrics.TotalConnections++
		return
	}
	if m.metrics.OpenConnections > 0 {
		m.metrics.OpenConnections--
	}
}

// Metrics returns a copy of the current metrics
func (m *Monitor) Metrics() Metrics {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.metrics
}

// IsHealthy reports whether memory and goroutine use are within bounds
func (m *Monitor) IsHealthy() bool {
	metrics := m.Metrics()
	return metrics.MemoryBytes < maxMemoryBytes && metrics.Goroutines < maxGoroutines
}

// Health returns the document served by the health endpoint
func (m *Monitor) Health() map[string]interface{} {
	metrics := m.Metrics()

	health := map[string]interface{}{
		"healthy":    m.IsHealthy(),
		"uptime":     m.now().Sub(metrics.StartedAt).Round(time.Second).String(),
		"memory_mb":  metrics.MemoryBytes >> 20,
		"heap_mb":    metrics.HeapBytes >> 20,
		"goroutines": metrics.Goroutines,
		"gc_cycles":  metrics.GCCycles,
		"parse": map[string]interface{}{
			"count":           metrics.Parses,
			"slides_rendered": metrics.SlidesRendered,
			"avg_ms":          metrics.AverageParseTime.Milliseconds(),
		},
		"reload": map[string]interface{}{
			"count":      metrics.Reloads,
			"failed":     metrics.FailedReloads,
			"last_error": metrics.LastReloadError,
		},
		"http": map[string]interface{}{
			"requests": metrics.HTTPRequests,
			"errors":   metrics.HTTPErrors,
		},
		"websocket": map[string]interface{}{
			"open":  metrics.OpenConnections,
			"total": metrics.TotalConnections,
		},
	}

	if m.cache != nil {
		health["cache"] = m.cache.Stats()
	}

	return health
}

// toInt64 converts a runtime counter, capping at the int64 maximum
func toInt64(val uint64) int64 {
	if val > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(val)
}

var _ ports.Monitor = (*Monitor)(nil)
