// Cartful - Grocery Order Analytics Dashboard
// Copyright 2026 Cartful Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartful-labs/cartful

// Package warehouse executes parameterized aggregation queries against the
// PostgreSQL order warehouse and materializes results into immutable tables.
//
// Executions acquire a pooled connection, run a single statement, and
// materialize the full result set in memory. That is acceptable by
// construction: every dashboard query is an aggregation returning tens to
// low thousands of rows. Failed executions propagate immediately as
// *ExecutionError; nothing is retried and nothing partial escapes.
package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sony/gobreaker/v2"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx database/sql driver

	"github.com/cartful-labs/cartful/internal/config"
	"github.com/cartful-labs/cartful/internal/logging"
	"github.com/cartful-labs/cartful/internal/metrics"
)

// Executor runs queries against the warehouse. Satisfied by *DB; tests
// substitute fakes.
type Executor interface {
	Execute(ctx context.Context, q Query) (*ResultTable, error)
}

// DB wraps the pooled warehouse connection.
type DB struct {
	conn    *sql.DB
	cfg     *config.DatabaseConfig
	breaker *gobreaker.CircuitBreaker[*ResultTable]
}

// New opens the warehouse connection pool and verifies connectivity.
// A failed initial ping is returned as an error; callers treat it as fatal.
func New(cfg *config.DatabaseConfig) (*DB, error) {
	conn, err := sql.Open("pgx", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open warehouse connection: %w", err)
	}

	// Pool sizing follows the base+overflow model: PoolSize connections are
	// retained idle, PoolSize+PoolOverflow is the hard cap under load.
	conn.SetMaxIdleConns(cfg.PoolSize)
	conn.SetMaxOpenConns(cfg.MaxOpenConns())
	conn.SetConnMaxLifetime(time.Hour)
	conn.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := conn.PingContext(pingCtx); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to reach warehouse at %s:%d: %w", cfg.Host, cfg.Port, err)
	}

	db := &DB{conn: conn, cfg: cfg}

	if cfg.BreakerEnabled {
		db.breaker = gobreaker.NewCircuitBreaker[*ResultTable](gobreaker.Settings{
			Name:    "warehouse",
			Timeout: 15 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				if to == gobreaker.StateOpen {
					metrics.BreakerState.Set(1)
				} else {
					metrics.BreakerState.Set(0)
				}
				logging.Warn().
					Str("breaker", name).
					Str("from", from.String()).
					Str("to", to.String()).
					Msg("Warehouse circuit breaker state changed")
			},
			IsSuccessful: func(err error) bool {
				// Only connectivity loss trips the breaker; a bad query is
				// the query's problem, not the store's.
				return err == nil || !IsConnectionError(err)
			},
		})
	}

	logging.Info().
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Str("database", cfg.Name).
		Int("pool_size", cfg.PoolSize).
		Int("pool_overflow", cfg.PoolOverflow).
		Msg("Warehouse connection established")

	return db, nil
}

// Ping verifies warehouse connectivity.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Close releases the connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Execute runs one query and materializes its full result set.
// The connection is acquired from the pool and released on every exit path.
// Start time, elapsed duration, and row count are logged; failures are
// wrapped in *ExecutionError and never cached by callers.
func (db *DB) Execute(ctx context.Context, q Query) (*ResultTable, error) {
	start := time.Now()

	logging.Debug().
		Str("query", q.Name).
		Str("sql", q.Truncated()).
		Msg("Executing query")

	ctx, cancel := context.WithTimeout(ctx, db.cfg.QueryTimeout)
	defer cancel()

	var table *ResultTable
	var err error
	if db.breaker != nil {
		table, err = db.breaker.Execute(func() (*ResultTable, error) {
			return db.run(ctx, q)
		})
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			err = fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
	} else {
		table, err = db.run(ctx, q)
	}

	elapsed := time.Since(start)
	if err != nil {
		metrics.RecordQueryError(q.Name, errorType(err))
		logging.Error().
			Err(err).
			Str("query", q.Name).
			Str("sql", q.Truncated()).
			Dur("elapsed", elapsed).
			Msg("Query failed")
		return nil, newExecutionError(q, err)
	}

	metrics.ObserveQuery(q.Name, elapsed, table.NumRows())
	logging.Info().
		Str("query", q.Name).
		Dur("elapsed", elapsed).
		Int("rows", table.NumRows()).
		Msg("Query completed")

	return table, nil
}

// run performs the actual statement execution and scan.
func (db *DB) run(ctx context.Context, q Query) (*ResultTable, error) {
	rows, err := db.conn.QueryContext(ctx, q.Text, q.Args...)
	if err != nil {
		return nil, err
	}
	defer closeQuietly(rows)

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	table := &ResultTable{Columns: cols}
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		// Byte slices alias driver buffers; copy to strings so the table is
		// safe to share after the rows are closed.
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		table.Rows = append(table.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return table, nil
}
