// Cartful - Grocery Order Analytics Dashboard
// Copyright 2026 Cartful Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartful-labs/cartful

package warehouse

import (
	"fmt"
	"strconv"
)

// ResultTable is a fully materialized query result: an ordered set of named
// columns and row-major values. A ResultTable is immutable once produced and
// may be shared freely between cache tiers and computations.
type ResultTable struct {
	Columns []string
	Rows    [][]any
}

// NumRows returns the number of rows in the table.
func (t *ResultTable) NumRows() int {
	return len(t.Rows)
}

// Empty reports whether the table has no rows.
func (t *ResultTable) Empty() bool {
	return len(t.Rows) == 0
}

// ColumnIndex returns the position of a named column, or -1 if absent.
func (t *ResultTable) ColumnIndex(name string) int {
	for i, col := range t.Columns {
		if col == name {
			return i
		}
	}
	return -1
}

// Cell returns the raw value at (row, column name).
func (t *ResultTable) Cell(row int, column string) (any, bool) {
	idx := t.ColumnIndex(column)
	if idx < 0 || row < 0 || row >= len(t.Rows) {
		return nil, false
	}
	return t.Rows[row][idx], true
}

// String returns the cell at (row, column) rendered as a string.
func (t *ResultTable) String(row int, column string) (string, bool) {
	v, ok := t.Cell(row, column)
	if !ok || v == nil {
		return "", ok
	}
	switch val := v.(type) {
	case string:
		return val, true
	case []byte:
		return string(val), true
	default:
		return fmt.Sprintf("%v", val), true
	}
}

// Int returns the cell at (row, column) as an int64.
// Numeric driver types and numeric strings are converted; anything else fails.
func (t *ResultTable) Int(row int, column string) (int64, bool) {
	v, ok := t.Cell(row, column)
	if !ok || v == nil {
		return 0, false
	}
	switch val := v.(type) {
	case int64:
		return val, true
	case int32:
		return int64(val), true
	case int:
		return int64(val), true
	case float64:
		return int64(val), true
	case string:
		n, err := strconv.ParseInt(val, 10, 64)
		return n, err == nil
	case []byte:
		n, err := strconv.ParseInt(string(val), 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}

// Float returns the cell at (row, column) as a float64.
// Postgres numeric/decimal columns arrive as strings from database/sql and
// are parsed here.
func (t *ResultTable) Float(row int, column string) (float64, bool) {
	v, ok := t.Cell(row, column)
	if !ok || v == nil {
		return 0, false
	}
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int64:
		return float64(val), true
	case int32:
		return float64(val), true
	case int:
		return float64(val), true
	case string:
		f, err := strconv.ParseFloat(val, 64)
		return f, err == nil
	case []byte:
		f, err := strconv.ParseFloat(string(val), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// Scalar returns the single value of a one-row, one-column aggregate result.
func (t *ResultTable) Scalar() (any, bool) {
	if len(t.Rows) == 0 || len(t.Rows[0]) == 0 {
		return nil, false
	}
	return t.Rows[0][0], true
}

// StringColumn returns all values of a named column rendered as strings.
func (t *ResultTable) StringColumn(column string) []string {
	idx := t.ColumnIndex(column)
	if idx < 0 {
		return nil
	}
	out := make([]string, 0, len(t.Rows))
	for row := range t.Rows {
		s, _ := t.String(row, column)
		out = append(out, s)
	}
	return out
}
