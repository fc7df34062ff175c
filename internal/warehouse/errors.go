// Cartful - Grocery Order Analytics Dashboard
// Copyright 2026 Cartful Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartful-labs/cartful

package warehouse

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrStoreUnavailable indicates the warehouse rejected work before a query
// could run, typically because the circuit breaker is open.
var ErrStoreUnavailable = errors.New("warehouse unavailable")

// ExecutionError wraps any failure of a single query execution: connection
// loss, SQL error, or timeout. The failed query is identified by name and
// truncated text; the cause is preserved for errors.Is/As classification.
type ExecutionError struct {
	QueryName string
	QueryText string // truncated for safe logging
	Cause     error
}

// Error implements the error interface.
func (e *ExecutionError) Error() string {
	return fmt.Sprintf("query %s failed: %v", e.QueryName, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *ExecutionError) Unwrap() error {
	return e.Cause
}

// newExecutionError builds an ExecutionError for a query.
func newExecutionError(q Query, cause error) *ExecutionError {
	return &ExecutionError{
		QueryName: q.Name,
		QueryText: q.Truncated(),
		Cause:     cause,
	}
}

// IsConnectionError reports whether an error indicates loss of warehouse
// connectivity, as opposed to a query-level failure. Connection errors are
// recoverable per-query at runtime; at startup they are fatal.
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrStoreUnavailable) {
		return true
	}
	msg := err.Error()
	for _, fragment := range []string{
		"connection refused",
		"connection reset",
		"broken pipe",
		"bad connection",
		"failed to connect",
		"conn closed",
		"sql: database is closed",
	} {
		if strings.Contains(msg, fragment) {
			return true
		}
	}
	return false
}

// errorType classifies an error for metrics labels.
func errorType(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		return "timeout"
	case IsConnectionError(err):
		return "connection"
	default:
		return "query"
	}
}
