package cachemanager

import (
	"container/list"
	"sync"
	"sync/atomic"
)

// LRU is a bounded, goroutine-safe least-recently-used cache.
//
// Recency is the list order: every Get hit and every Put moves the entry to
// the front, and when a Put pushes the size past capacity the back entry is
// evicted synchronously. Entries that were never read keep their insertion
// position, so ties resolve in insertion order.
//
// A capacity of zero disables caching: Put is a no-op and every Get misses.
type LRU[K comparable, V any] struct {
	mu       sync.Mutex
	capacity int
	ll       *list.List // front = most recently used
	items    map[K]*list.Element
	onEvict  func(key K, value V)

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

type lruEntry[K comparable, V any] struct {
	key   K
	value V
}

// LRUOption configures an LRU.
type LRUOption[K comparable, V any] func(*LRU[K, V])

// WithEvictionCallback registers fn to run after a capacity eviction.
// It is called outside the cache lock.
func WithEvictionCallback[K comparable, V any](fn func(key K, value V)) LRUOption[K, V] {
	return func(c *LRU[K, V]) {
		c.onEvict = fn
	}
}

// NewLRU creates a cache holding at most capacity entries. Negative
// capacities are treated as zero.
func NewLRU[K comparable, V any](capacity int, opts ...LRUOption[K, V]) *LRU[K, V] {
	if capacity < 0 {
		capacity = 0
	}
	c := &LRU[K, V]{
		capacity: capacity,
		ll:       list.New(),
		items:    make(map[K]*list.Element, capacity),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached value and marks it most recently used.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	var zero V
	if c.capacity == 0 {
		c.misses.Add(1)
		return zero, false
	}

	c.mu.Lock()
	ele, ok := c.items[key]
	if !ok {
		c.mu.Unlock()
		c.misses.Add(1)
		return zero, false
	}
	c.touch(ele)
	value := ele.Value.(*lruEntry[K, V]).value
	c.mu.Unlock()

	c.hits.Add(1)
	return value, true
}

// Peek returns the cached value without changing its recency.
func (c *LRU[K, V]) Peek(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ele, ok := c.items[key]; ok {
		return ele.Value.(*lruEntry[K, V]).value, true
	}
	var zero V
	return zero, false
}

// Put inserts or replaces a value, evicting the least recently used entry
// when the cache is full.
func (c *LRU[K, V]) Put(key K, value V) {
	if c.capacity == 0 {
		return
	}

	c.mu.Lock()
	if ele, ok := c.items[key]; ok {
		ele.Value.(*lruEntry[K, V]).value = value
		c.touch(ele)
		c.mu.Unlock()
		return
	}

	c.items[key] = c.ll.PushFront(&lruEntry[K, V]{key: key, value: value})

	var evicted *lruEntry[K, V]
	if c.ll.Len() > c.capacity {
		oldest := c.ll.Back()
		c.ll.Remove(oldest)
		evicted = oldest.Value.(*lruEntry[K, V])
		delete(c.items, evicted.key)
	}
	c.mu.Unlock()

	if evicted != nil {
		c.evictions.Add(1)
		if c.onEvict != nil {
			c.onEvict(evicted.key, evicted.value)
		}
	}
}

// Invalidate removes key. It reports whether the key was present.
func (c *LRU[K, V]) Invalidate(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	ele, ok := c.items[key]
	if !ok {
		return false
	}
	c.ll.Remove(ele)
	delete(c.items, key)
	return true
}

// InvalidateFunc removes every key for which match returns true and returns
// how many were removed.
func (c *LRU[K, V]) InvalidateFunc(match func(key K) bool) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, ele := range c.items {
		if match(key) {
			c.ll.Remove(ele)
			delete(c.items, key)
			removed++
		}
	}
	return removed
}

// Purge empties the cache. Statistics are kept.
func (c *LRU[K, V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.ll.Init()
	clear(c.items)
}

// Len returns the number of cached entries.
func (c *LRU[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}

// Cap returns the configured capacity.
func (c *LRU[K, V]) Cap() int {
	return c.capacity
}

// Keys returns the cached keys from most to least recently used.
func (c *LRU[K, V]) Keys() []K {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]K, 0, c.ll.Len())
	for ele := c.ll.Front(); ele != nil; ele = ele.Next() {
		keys = append(keys, ele.Value.(*lruEntry[K, V]).key)
	}
	return keys
}

// Stats is a point-in-time snapshot of cache counters.
type Stats struct {
	Hits      uint64 `json:"hits"`
	Misses    uint64 `json:"misses"`
	Evictions uint64 `json:"evictions"`
	Size      int    `json:"size"`
	Capacity  int    `json:"capacity"`
}

// Stats returns the current counters.
func (c *LRU[K, V]) Stats() Stats {
	return Stats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
		Size:      c.Len(),
		Capacity:  c.capacity,
	}
}

// touch must be called with c.mu held.
func (c *LRU[K, V]) touch(ele *list.Element) {
	c.ll.MoveToFront(ele)
}
