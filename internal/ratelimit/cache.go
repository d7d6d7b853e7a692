// Package ratelimit implements fixed-window request admission control:
// a bounded TTL cache of per-identifier counters, a static tier policy
// table, and the limiter that decides allow/deny per identifier+tier.
//
// State is in-memory and process-local. Losing it on restart degrades to
// "allow" on a cold cache, never to "deny everything" -- the limiter is a
// protective layer, not a correctness-critical one.
package ratelimit

import (
	"container/list"
	"sync"
	"time"
)

// Cache is a fixed-capacity store with two independent eviction forces:
// capacity (least-recently-used entries dropped first) and time (each
// entry expires a fixed TTL after insertion). Reading an entry marks it
// recently used but never extends its TTL.
//
// Safe for concurrent use.
type Cache[V any] struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	items    map[string]*list.Element
	order    *list.List // Front = most recently used.

	// now is swapped out by tests to control expiry.
	now func() time.Time
}

// cacheEntry is the value stored in each list element.
type cacheEntry[V any] struct {
	key       string
	value     V
	expiresAt time.Time
}

// NewCache creates a cache holding at most capacity entries, each living
// for ttl after insertion. A capacity below 1 is treated as 1.
func NewCache[V any](capacity int, ttl time.Duration) *Cache[V] {
	if capacity < 1 {
		capacity = 1
	}
	return &Cache[V]{
		capacity: capacity,
		ttl:      ttl,
		items:    make(map[string]*list.Element),
		order:    list.New(),
		now:      time.Now,
	}
}

// Get returns the live value for key. Expired entries are treated as
// absent and removed. A hit moves the entry to the front of the LRU order.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	elem, ok := c.items[key]
	if !ok {
		return zero, false
	}

	entry := elem.Value.(*cacheEntry[V])
	if !c.now().Before(entry.expiresAt) {
		c.removeElement(elem)
		return zero, false
	}

	c.order.MoveToFront(elem)
	return entry.value, true
}

// Peek returns the live value for key without touching LRU order.
func (c *Cache[V]) Peek(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	elem, ok := c.items[key]
	if !ok {
		return zero, false
	}

	entry := elem.Value.(*cacheEntry[V])
	if !c.now().Before(entry.expiresAt) {
		c.removeElement(elem)
		return zero, false
	}

	return entry.value, true
}

// Set inserts or replaces the value for key, restarting its TTL. If the
// cache is at capacity, the least-recently-used entry is evicted first.
func (c *Cache[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := c.now().Add(c.ttl)

	if elem, ok := c.items[key]; ok {
		entry := elem.Value.(*cacheEntry[V])
		entry.value = value
		entry.expiresAt = expiresAt
		c.order.MoveToFront(elem)
		return
	}

	if len(c.items) >= c.capacity {
		if back := c.order.Back(); back != nil {
			c.removeElement(back)
		}
	}

	elem := c.order.PushFront(&cacheEntry[V]{
		key:       key,
		value:     value,
		expiresAt: expiresAt,
	})
	c.items[key] = elem
}

// Delete removes the entry for key, if present.
func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.removeElement(elem)
	}
}

// Clear removes all entries.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*list.Element)
	c.order.Init()
}

// Len reports the number of live entries, sweeping out any that expired.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for elem := c.order.Front(); elem != nil; {
		next := elem.Next()
		if !now.Before(elem.Value.(*cacheEntry[V]).expiresAt) {
			c.removeElement(elem)
		}
		elem = next
	}
	return len(c.items)
}

// Capacity returns the maximum entry count.
func (c *Cache[V]) Capacity() int {
	return c.capacity
}

// removeElement unlinks an element from both the list and the index.
// Caller must hold c.mu.
func (c *Cache[V]) removeElement(elem *list.Element) {
	c.order.Remove(elem)
	delete(c.items, elem.Value.(*cacheEntry[V]).key)
}
