// Cartful - Grocery Order Analytics Dashboard
// Copyright 2026 Cartful Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartful-labs/cartful

package cache

import (
	"github.com/cartful-labs/cartful/internal/metrics"
	"github.com/cartful-labs/cartful/internal/warehouse"
)

// SessionCache memoizes parameterized query results for the lifetime of one
// dashboard session. Keys are caller-constructed, e.g.
// "recommendations_" + userID, to disambiguate parameterized variants.
//
// The dashboard this design descends from kept these results in a plain map
// with no bound, which grows without limit when one session cycles through
// many users. Here the tier is a bounded LRU: the expected working set (one
// user's recommendation and product list) fits easily, and pathological
// sessions displace their own oldest entries instead of growing forever.
//
// The cache dies with its session; there is no other invalidation.
type SessionCache struct {
	lru *LRU
}

// NewSessionCache creates a session-scoped cache bounded at capacity entries.
func NewSessionCache(capacity int) *SessionCache {
	return &SessionCache{lru: NewLRU(capacity)}
}

// GetOrCompute returns the cached table for key, calling compute on a miss.
// Errors from compute are returned without being stored.
func (c *SessionCache) GetOrCompute(key string, compute func() (*warehouse.ResultTable, error)) (*warehouse.ResultTable, error) {
	if table, ok := c.lru.Get(key); ok {
		metrics.SessionCacheHits.Inc()
		return table, nil
	}
	metrics.SessionCacheMisses.Inc()

	table, err := compute()
	if err != nil {
		return nil, err
	}

	c.lru.Add(key, table)
	return table, nil
}

// Len returns the number of cached entries.
func (c *SessionCache) Len() int {
	return c.lru.Len()
}

// Clear drops every entry. Called when the owning session ends.
func (c *SessionCache) Clear() {
	c.lru.Clear()
}
