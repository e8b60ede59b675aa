// Package cache keeps rendered slides in memory between parses.
package cache

import (
	"container/heap"
	"sync"
	"time"

	"github.com/fredcamaral/deckflow/internal/domain/entities"
	"github.com/fredcamaral/deckflow/internal/domain/ports"
)

// DefaultMaxBytes bounds a cache created with a non-positive size
const DefaultMaxBytes = 32 << 20

// entryOverhead approximates the map, heap and key bookkeeping per entry
const entryOverhead = 128

// SlideCache is a size bounded LRU of rendered slides. Keys are content
// hashes, so entries never go stale and are only evicted for space.
type SlideCache struct {
	mu          sync.Mutex
	entries     map[string]*cacheEntry
	lru         *accessHeap
	maxSize     int64
	currentSize int64
	stats       entities.CacheStats
	now         func() time.Time
}

type cacheEntry struct {
	slide entities.RenderedSlide
	size  int64
	heap  *heapEntry
}

// NewSlideCache creates a cache holding up to maxBytes of rendered HTML
func NewSlideCache(maxBytes int64) *SlideCache {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}

	h := &accessHeap{}
	heap.Init(h)

	return &SlideCache{
		entries: make(map[string]*cacheEntry),
		lru:     h,
		maxSize: maxBytes,
		now:     time.Now,
	}
}

// Get returns a cached slide and marks it recently used
func (c *SlideCache) Get(key string) (entities.RenderedSlide, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		c.stats.Misses++
		return entities.RenderedSlide{}, false
	}

	c.stats.Hits++
	entry.heap.lastAccess = c.now()
	heap.Fix(c.lru, entry.heap.index)

	return entry.slide, true
}

// Set stores a slide, evicting the least recently used entries to make
// room. A slide larger than the whole cache is not stored.
func (c *SlideCache) Set(key string, slide entities.RenderedSlide) {
	size := slide.Size() + int64(len(key)) + entryOverhead

	c.mu.Lock()
	defer c.mu.Unlock()

	if size > c.maxSize {
		return
	}

	if existing, ok := c.entries[key]; ok {
		c.remove(key, existing)
	}

	for c.currentSize+size > c.maxSize && c.lru.Len() > 0 {
		oldest := heap.Pop(c.lru).(*heapEntry)
		if entry, ok := c.entries[oldest.key]; ok {
			delete(c.entries, oldest.key)
			c.currentSize -= entry.size
			c.stats.Evictions++
		}
	}

	he := &heapEntry{key: key, lastAccess: c.now()}
	heap.Push(c.lru, he)
	c.entries[key] = &cacheEntry{slide: slide, size: size, heap: he}
	c.currentSize += size
}

// Clear drops every entry; counters are kept
func (c *SlideCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*cacheEntry)
	*c.lru = (*c.lru)[:0]
	c.currentSize = 0
}

// Stats returns a snapshot of the cache counters
func (c *SlideCache) Stats() entities.CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := c.stats
	stats.Entries = len(c.entries)
	stats.Bytes = c.currentSize
	stats.MaxBytes = c.maxSize
	if total := stats.Hits + stats.Misses; total > 0 {
		stats.HitRate = float64(stats.Hits) / float64(total)
	}
	return stats
}

func (c *SlideCache) remove(key string, entry *cacheEntry) {
	heap.Remove(c.lru, entry.heap.index)
	delete(c.entries, key)
	c.currentSize -= entry.size
}

// Ensure SlideCache implements ports.SlideCache
var _ ports.SlideCache = (*SlideCache)(nil)
