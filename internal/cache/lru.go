// Cartful - Grocery Order Analytics Dashboard
// Copyright 2026 Cartful Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartful-labs/cartful

// Package cache provides the two result-cache tiers that sit between the
// dashboard's reactive computations and the warehouse: a process-wide LRU for
// parameterless query results, and per-session bounded caches for
// parameterized results. Both tiers are a performance optimization only —
// the backing store is assumed immutable for the dashboard's operating
// period, so a hit is always content-identical to a fresh execution.
package cache

import (
	"sync"

	"github.com/cartful-labs/cartful/internal/warehouse"
)

// lruEntry is a node of the doubly-linked recency list.
type lruEntry struct {
	key   string
	value *warehouse.ResultTable
	prev  *lruEntry
	next  *lruEntry
}

// LRU is a thread-safe fixed-capacity least-recently-used cache of result
// tables. Get, Add, and eviction are all O(1) via a hashmap over a
// doubly-linked list. Entries are immutable once written, so concurrent
// readers never observe partial values; the mutex only guards list and map
// structure.
//
// There is no TTL and no staleness check: the warehouse data is static for
// the dashboard's lifetime and entries are only displaced by capacity.
type LRU struct {
	mu sync.Mutex

	capacity int
	items    map[string]*lruEntry

	// head.next is most recently used, tail.prev is least recently used.
	head *lruEntry
	tail *lruEntry

	hits      int64
	misses    int64
	evictions int64
}

// Stats is a point-in-time snapshot of cache counters.
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Size      int
}

// NewLRU creates an LRU cache holding at most capacity entries.
func NewLRU(capacity int) *LRU {
	if capacity <= 0 {
		capacity = 32
	}
	c := &LRU{
		capacity: capacity,
		items:    make(map[string]*lruEntry, capacity),
		head:     &lruEntry{},
		tail:     &lruEntry{},
	}
	c.head.next = c.tail
	c.tail.prev = c.head
	return c
}

// Get retrieves a cached table and marks it most recently used.
func (c *LRU) Get(key string) (*warehouse.ResultTable, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.items[key]
	if !ok {
		c.misses++
		return nil, false
	}
	c.moveToFront(entry)
	c.hits++
	return entry.value, true
}

// Add stores a table under key, evicting the least recently used entry when
// over capacity.
func (c *LRU) Add(key string, value *warehouse.ResultTable) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.items[key]; ok {
		entry.value = value
		c.moveToFront(entry)
		return
	}

	entry := &lruEntry{key: key, value: value}
	c.addToFront(entry)
	c.items[key] = entry

	for len(c.items) > c.capacity {
		c.evictOldest()
	}
}

// Len returns the current number of entries.
func (c *LRU) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Clear removes all entries.
func (c *LRU) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]*lruEntry, c.capacity)
	c.head.next = c.tail
	c.tail.prev = c.head
}

// Stats returns hit/miss/eviction counters and current size.
func (c *LRU) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
		Size:      len(c.items),
	}
}

// Internal list operations, called with the lock held.

func (c *LRU) addToFront(entry *lruEntry) {
	entry.prev = c.head
	entry.next = c.head.next
	c.head.next.prev = entry
	c.head.next = entry
}

func (c *LRU) moveToFront(entry *lruEntry) {
	entry.prev.next = entry.next
	entry.next.prev = entry.prev
	c.addToFront(entry)
}

func (c *LRU) evictOldest() {
	oldest := c.tail.prev
	if oldest == c.head {
		return
	}
	oldest.prev.next = oldest.next
	oldest.next.prev = oldest.prev
	delete(c.items, oldest.key)
	c.evictions++
}
