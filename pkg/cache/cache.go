// Package cache provides a thread-safe LRU cache for compiled scripts.
//
// The evaluator uses it when the WithCaching option is enabled, so that
// DO of the same source string, or a host calling Eval with the same text,
// parses it once. Cached scripts are immutable after parsing and can be
// shared between goroutines.
//
// # Example
//
//	c := cache.New(1024)
//	script, err := c.GetOrCompile(`print "hi"`, func() (*types.Script, error) {
//	    return parser.Parse(`print "hi"`)
//	})
package cache

import (
	"container/list"
	"sync"

	"github.com/sandrolain/gorebol/pkg/types"
)

// entry is a cache entry stored in the doubly-linked list.
type entry struct {
	source string
	script *types.Script
}

// Stats reports cache effectiveness.
type Stats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// Cache is a thread-safe LRU (Least Recently Used) cache keyed by script
// source. Once the capacity is reached, the least recently used entry is
// evicted.
//
// Safe for concurrent use by multiple goroutines.
type Cache struct {
	mu       sync.Mutex
	capacity int
	ll       *list.List
	items    map[string]*list.Element
	stats    Stats
}

// New creates a new LRU cache with the given capacity.
// capacity must be > 0; if <= 0, a default of 256 is used.
func New(capacity int) *Cache {
	if capacity <= 0 {
		capacity = 256
	}
	return &Cache{
		capacity: capacity,
		ll:       list.New(),
		items:    make(map[string]*list.Element, capacity),
	}
}

// Get retrieves the compiled script for source and marks it most recently
// used.
func (c *Cache) Get(source string) (*types.Script, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[source]
	if !ok {
		c.stats.Misses++
		return nil, false
	}
	c.stats.Hits++
	c.ll.MoveToFront(el)
	return el.Value.(*entry).script, true
}

// Set inserts or replaces the script compiled from source.
// If at capacity, the least recently used entry is evicted first.
func (c *Cache) Set(source string, script *types.Script) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[source]; ok {
		el.Value.(*entry).script = script
		c.ll.MoveToFront(el)
		return
	}

	if c.ll.Len() >= c.capacity {
		c.evictLocked()
	}
	c.items[source] = c.ll.PushFront(&entry{source: source, script: script})
}

// GetOrCompile returns the cached script for source, or calls compile to
// build it and caches the result. Failed compilations are not cached.
func (c *Cache) GetOrCompile(source string, compile func() (*types.Script, error)) (*types.Script, error) {
	if script, ok := c.Get(source); ok {
		return script, nil
	}
	script, err := compile()
	if err != nil {
		return nil, err
	}
	c.Set(source, script)
	return script, nil
}

// Len returns the number of entries currently in the cache.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Capacity returns the maximum number of entries the cache can hold.
func (c *Cache) Capacity() int {
	return c.capacity
}

// Stats returns a snapshot of the hit, miss and eviction counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// Invalidate removes a single entry from the cache.
func (c *Cache) Invalidate(source string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[source]; ok {
		c.ll.Remove(el)
		delete(c.items, source)
	}
}

// Clear removes all entries and resets the counters.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ll.Init()
	c.items = make(map[string]*list.Element, c.capacity)
	c.stats = Stats{}
}

// evictLocked removes the least recently used entry.
// Must be called with c.mu held.
func (c *Cache) evictLocked() {
	el := c.ll.Back()
	if el == nil {
		return
	}
	c.ll.Remove(el)
	delete(c.items, el.Value.(*entry).source)
	c.stats.Evictions++
}
