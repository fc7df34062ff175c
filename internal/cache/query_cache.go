// Cartful - Grocery Order Analytics Dashboard
// Copyright 2026 Cartful Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartful-labs/cartful

package cache

import (
	"context"

	"github.com/cartful-labs/cartful/internal/metrics"
	"github.com/cartful-labs/cartful/internal/warehouse"
)

// QueryCache is the process-wide memoization tier wrapping the warehouse
// executor. It is keyed by Query.Key() — the exact query text for
// parameterless queries, text plus parameter tuple otherwise — so any string
// key works, not a fixed enum of known queries.
//
// Shared by all dashboard sessions. A hit returns the previously
// materialized table with no re-execution and no staleness check; a miss
// executes, stores, and evicts least recently used beyond capacity. Failed
// executions are never stored.
type QueryCache struct {
	lru  *LRU
	exec warehouse.Executor
}

// NewQueryCache wraps an executor with a fixed-capacity LRU tier.
func NewQueryCache(exec warehouse.Executor, capacity int) *QueryCache {
	return &QueryCache{
		lru:  NewLRU(capacity),
		exec: exec,
	}
}

// GetOrCompute returns the cached result for q, executing it on a miss.
// Concurrent callers with the same key may each execute on a cold cache;
// the last finished write wins, which is harmless because results for the
// same identity are content-equal against an immutable store.
func (c *QueryCache) GetOrCompute(ctx context.Context, q warehouse.Query) (*warehouse.ResultTable, error) {
	key := q.Key()

	if table, ok := c.lru.Get(key); ok {
		metrics.QueryCacheHits.Inc()
		return table, nil
	}
	metrics.QueryCacheMisses.Inc()

	before := c.lru.Stats().Evictions

	table, err := c.exec.Execute(ctx, q)
	if err != nil {
		return nil, err
	}

	c.lru.Add(key, table)

	stats := c.lru.Stats()
	if evicted := stats.Evictions - before; evicted > 0 {
		metrics.QueryCacheEvictions.Add(float64(evicted))
	}
	metrics.QueryCacheSize.Set(float64(stats.Size))

	return table, nil
}

// Stats exposes the underlying LRU counters.
func (c *QueryCache) Stats() Stats {
	return c.lru.Stats()
}
