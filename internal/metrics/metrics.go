// Cartful - Grocery Order Analytics Dashboard
// Copyright 2026 Cartful Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartful-labs/cartful

// Package metrics provides Prometheus instrumentation for Cartful:
// warehouse query performance, cache tier efficiency, dashboard sessions,
// and HTTP endpoint latency.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Warehouse query metrics
	QueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "warehouse_query_duration_seconds",
			Help:    "Duration of warehouse queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"query"},
	)

	QueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "warehouse_query_errors_total",
			Help: "Total number of warehouse query errors",
		},
		[]string{"query", "error_type"},
	)

	QueryRows = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "warehouse_query_rows",
			Help:    "Row counts returned by warehouse queries",
			Buckets: []float64{1, 10, 50, 100, 500, 1000, 5000},
		},
		[]string{"query"},
	)

	BreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "warehouse_breaker_open",
			Help: "Whether the warehouse circuit breaker is open (1) or closed (0)",
		},
	)

	// Query cache metrics (process-wide LRU for parameterless queries)
	QueryCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "query_cache_hits_total",
			Help: "Total number of process-wide query cache hits",
		},
	)

	QueryCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "query_cache_misses_total",
			Help: "Total number of process-wide query cache misses",
		},
	)

	QueryCacheEvictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "query_cache_evictions_total",
			Help: "Total number of process-wide query cache evictions",
		},
	)

	QueryCacheSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "query_cache_entries",
			Help: "Current number of entries in the process-wide query cache",
		},
	)

	// Session cache metrics (per-session result caches, aggregated)
	SessionCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "session_cache_hits_total",
			Help: "Total number of session-scoped cache hits across all sessions",
		},
	)

	SessionCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "session_cache_misses_total",
			Help: "Total number of session-scoped cache misses across all sessions",
		},
	)

	// Dashboard session metrics
	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "dashboard_active_sessions",
			Help: "Current number of live dashboard sessions",
		},
	)

	OutputRecomputations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_output_recomputations_total",
			Help: "Total recomputations per dashboard output",
		},
		[]string{"output", "result"}, // result: "ok", "error"
	)

	// HTTP endpoint metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	WebSocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections",
			Help: "Current number of connected dashboard WebSocket clients",
		},
	)
)

// ObserveQuery records duration and row count for one executed query.
func ObserveQuery(name string, elapsed time.Duration, rows int) {
	QueryDuration.WithLabelValues(name).Observe(elapsed.Seconds())
	QueryRows.WithLabelValues(name).Observe(float64(rows))
}

// RecordQueryError increments the query error counter.
func RecordQueryError(name, errorType string) {
	QueryErrors.WithLabelValues(name, errorType).Inc()
}

// RecordHTTPRequest records one completed HTTP request.
func RecordHTTPRequest(method, path string, status int, elapsed time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}
