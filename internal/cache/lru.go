// PreviouslyOn - Social TV Tracking and Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/previouslyon

// Package cache provides the bounded TTL cache used in front of TMDB.
package cache

import (
	"container/list"
	"sync"
	"time"
)

// Defaults for a zero capacity or TTL.
const (
	DefaultCapacity = 10000
	DefaultTTL      = 5 * time.Minute
)

type item[K comparable, V any] struct {
	key     K
	value   V
	expires time.Time
}

// LRU is a size-bounded cache with per-entry expiry, safe for concurrent
// use. Recency lives in a list whose front is the most recently used
// entry. Expired entries linger until they are read or swept by
// CleanupExpired.
type LRU[K comparable, V any] struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	now      func() time.Time
	order    *list.List
	index    map[K]*list.Element
	stats    Stats
}

// NewLRU creates a cache holding at most capacity entries. Entries live for
// ttl unless added with AddWithTTL.
func NewLRU[K comparable, V any](capacity int, ttl time.Duration) *LRU[K, V] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &LRU[K, V]{
		capacity: capacity,
		ttl:      ttl,
		now:      time.Now,
		order:    list.New(),
		index:    make(map[K]*list.Element),
	}
}

func entryOf[K comparable, V any](e *list.Element) *item[K, V] {
	return e.Value.(*item[K, V])
}

// Get returns the live value for key and marks it most recently used.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.index[key]; ok {
		it := entryOf[K, V](e)
		if !c.now().After(it.expires) {
			c.order.MoveToFront(e)
			c.stats.Hits++
			return it.value, true
		}
		c.unlink(e)
	}
	c.stats.Misses++
	var zero V
	return zero, false
}

// Add stores value under key with the cache TTL.
func (c *LRU[K, V]) Add(key K, value V) { c.AddWithTTL(key, value, c.ttl) }

// AddWithTTL stores value under key for ttl, or the cache TTL when ttl is
// not positive. A full cache evicts its least recently used entry.
func (c *LRU[K, V]) AddWithTTL(key K, value V, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.ttl
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	expires := c.now().Add(ttl)
	if e, ok := c.index[key]; ok {
		it := entryOf[K, V](e)
		it.value, it.expires = value, expires
		c.order.MoveToFront(e)
		return
	}

	c.index[key] = c.order.PushFront(&item[K, V]{key: key, value: value, expires: expires})
	for c.order.Len() > c.capacity {
		c.unlink(c.order.Back())
		c.stats.Evictions++
	}
}

// Remove deletes key and reports whether it was cached.
func (c *LRU[K, V]) Remove(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.index[key]
	if ok {
		c.unlink(e)
	}
	return ok
}

// Len counts entries, expired or not.
func (c *LRU[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Clear drops every entry. Counters are kept.
func (c *LRU[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order.Init()
	clear(c.index)
}

// CleanupExpired removes every expired entry and returns how many it removed.
func (c *LRU[K, V]) CleanupExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for e := c.order.Back(); e != nil; {
		prev := e.Prev()
		if now.After(entryOf[K, V](e).expires) {
			c.unlink(e)
			removed++
		}
		e = prev
	}
	return removed
}

// Stats counts lookups and evictions since creation.
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Size      int
}

// Stats returns a snapshot of the counters.
func (c *LRU[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.Size = c.order.Len()
	return s
}

// unlink requires mu.
func (c *LRU[K, V]) unlink(e *list.Element) {
	delete(c.index, entryOf[K, V](e).key)
	c.order.Remove(e)
}
