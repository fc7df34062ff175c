// Cartful - Grocery Order Analytics Dashboard
// Copyright 2026 Cartful Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartful-labs/cartful

package chart

import (
	"sort"
	"strconv"

	"github.com/cartful-labs/cartful/internal/warehouse"
)

// Materialize shapes a result table according to spec and renders it. It is
// pure and never returns an error: an empty or unusable table produces a
// no-data artifact.
func Materialize(table *warehouse.ResultTable, spec Spec) *Artifact {
	if table == nil || table.Empty() {
		return noData(spec)
	}

	if spec.Kind == KindHeatmap {
		return materializeHeatmap(table, spec)
	}

	series := shapeSeries(table, spec)
	if series == nil {
		return noData(spec)
	}

	return &Artifact{
		Kind:   spec.Kind,
		Title:  spec.Title,
		Series: series,
		HTML:   renderSVG(series, spec),
	}
}

// shapeSeries extracts parallel label and value slices from the bound
// columns, applying the spec's sort and relabeling rules.
func shapeSeries(table *warehouse.ResultTable, spec Spec) *Series {
	if table.ColumnIndex(spec.XColumn) < 0 || table.ColumnIndex(spec.YColumn) < 0 {
		return nil
	}

	n := table.NumRows()
	series := &Series{
		Labels: make([]string, 0, n),
		Values: make([]float64, 0, n),
	}
	for i := 0; i < n; i++ {
		label, ok := table.String(i, spec.XColumn)
		if !ok {
			continue
		}
		value, ok := table.Float(i, spec.YColumn)
		if !ok {
			continue
		}
		series.Labels = append(series.Labels, label)
		series.Values = append(series.Values, value)
	}
	if len(series.Labels) == 0 {
		return nil
	}

	if spec.SortTotalAscending {
		sortSeriesAscending(series)
	}
	if spec.DayOfWeekX {
		relabelDays(series.Labels)
	}
	return series
}

func sortSeriesAscending(s *Series) {
	idx := make([]int, len(s.Values))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return s.Values[idx[a]] < s.Values[idx[b]]
	})
	labels := make([]string, len(idx))
	values := make([]float64, len(idx))
	for i, j := range idx {
		labels[i] = s.Labels[j]
		values[i] = s.Values[j]
	}
	s.Labels, s.Values = labels, values
}

// relabelDays replaces ordinal labels 0..6 in place with day names. Labels
// outside that range pass through untouched.
func relabelDays(labels []string) {
	for i, label := range labels {
		d, err := strconv.Atoi(label)
		if err == nil && d >= 0 && d < len(dayNames) {
			labels[i] = dayNames[d]
		}
	}
}

// materializeHeatmap pivots (dow, hour, value) rows into a 7x24 zero-filled
// matrix. Out-of-range coordinates are dropped.
func materializeHeatmap(table *warehouse.ResultTable, spec Spec) *Artifact {
	if table.ColumnIndex(spec.RowColumn) < 0 ||
		table.ColumnIndex(spec.XColumn) < 0 ||
		table.ColumnIndex(spec.YColumn) < 0 {
		return noData(spec)
	}

	const hours = 24
	matrix := make([][]float64, len(dayNames))
	for i := range matrix {
		matrix[i] = make([]float64, hours)
	}

	filled := false
	for i := 0; i < table.NumRows(); i++ {
		dow, ok := table.Int(i, spec.RowColumn)
		if !ok || dow < 0 || dow >= int64(len(dayNames)) {
			continue
		}
		hour, ok := table.Int(i, spec.XColumn)
		if !ok || hour < 0 || hour >= hours {
			continue
		}
		value, ok := table.Float(i, spec.YColumn)
		if !ok {
			continue
		}
		matrix[dow][hour] = value
		filled = true
	}
	if !filled {
		return noData(spec)
	}

	labels := make([]string, hours)
	for h := range labels {
		labels[h] = strconv.Itoa(h)
	}
	series := &Series{
		Labels: labels,
		Rows:   dayNames[:],
		Matrix: matrix,
	}
	return &Artifact{
		Kind:   spec.Kind,
		Title:  spec.Title,
		Series: series,
		HTML:   renderHeatmapSVG(series, spec),
	}
}
