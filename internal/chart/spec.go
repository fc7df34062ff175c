// Cartful - Grocery Order Analytics Dashboard
// Copyright 2026 Cartful Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartful-labs/cartful

// Package chart turns warehouse result tables into renderable dashboard
// artifacts. Materialization is pure and deterministic: the same table and
// spec always produce the same artifact, and no input ever produces an
// error. Empty inputs become no-data artifacts instead.
package chart

// Kind selects the visual form of a materialized chart.
type Kind string

const (
	KindBar     Kind = "bar"
	KindLine    Kind = "line"
	KindPie     Kind = "pie"
	KindHeatmap Kind = "heatmap"
)

// dayNames maps day-of-week ordinals (0 = Sunday, as stored in the orders
// table) to display labels.
var dayNames = [7]string{
	"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday",
}

// Spec describes how a result table should be shaped and drawn. Column
// bindings name columns of the input table; a binding that does not resolve
// yields a no-data artifact rather than an error.
type Spec struct {
	Kind  Kind
	Title string

	// XColumn and YColumn bind the category and value axes. For heatmaps
	// XColumn binds the column axis (hour), RowColumn the row axis (day of
	// week) and YColumn the cell value.
	XColumn   string
	YColumn   string
	RowColumn string

	XLabel string
	YLabel string

	// Horizontal flips a bar chart so categories run down the Y axis.
	Horizontal bool

	// SortTotalAscending orders categories by their value, smallest first,
	// so the largest bar ends up at the top of a horizontal chart.
	SortTotalAscending bool

	// DayOfWeekX relabels X values 0..6 with day names.
	DayOfWeekX bool
}
