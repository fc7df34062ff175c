// Cartful - Grocery Order Analytics Dashboard
// Copyright 2026 Cartful Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartful-labs/cartful

package warehouse

import (
	"fmt"
	"strings"
)

// Query is an immutable SQL statement with an optional ordered positional
// parameter tuple. Name identifies the query in logs and metrics.
type Query struct {
	Name string
	Text string
	Args []any
}

// NewQuery builds a named query with positional args.
func NewQuery(name, text string, args ...any) Query {
	return Query{Name: name, Text: text, Args: args}
}

// Parameterized reports whether the query carries runtime parameters.
func (q Query) Parameterized() bool {
	return len(q.Args) > 0
}

// Key returns the cache identity of the query: the exact query text alone
// when unparameterized, otherwise the text joined with the parameter tuple.
func (q Query) Key() string {
	if len(q.Args) == 0 {
		return q.Text
	}
	var b strings.Builder
	b.WriteString(q.Text)
	for _, arg := range q.Args {
		b.WriteByte('|')
		fmt.Fprintf(&b, "%v", arg)
	}
	return b.String()
}

// logQueryLen bounds query text in log output.
const logQueryLen = 100

// Truncated returns the query text shortened for logging, whitespace
// collapsed.
func (q Query) Truncated() string {
	text := strings.Join(strings.Fields(q.Text), " ")
	if len(text) > logQueryLen {
		return text[:logQueryLen] + "..."
	}
	return text
}
