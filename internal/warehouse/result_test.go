// Cartful - Grocery Order Analytics Dashboard
// Copyright 2026 Cartful Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartful-labs/cartful

package warehouse

import "testing"

func sampleTable() *ResultTable {
	return &ResultTable{
		Columns: []string{"product_name", "order_count", "reorder_rate"},
		Rows: [][]any{
			{"Banana", int64(472565), "0.84"},
			{"Organic Strawberries", int64(264683), 0.71},
		},
	}
}

func TestResultTable_Accessors(t *testing.T) {
	table := sampleTable()

	if table.NumRows() != 2 {
		t.Errorf("NumRows = %d, want 2", table.NumRows())
	}
	if table.Empty() {
		t.Error("table with rows reported Empty")
	}

	name, ok := table.String(0, "product_name")
	if !ok || name != "Banana" {
		t.Errorf("String(0, product_name) = %q, %v", name, ok)
	}

	count, ok := table.Int(0, "order_count")
	if !ok || count != 472565 {
		t.Errorf("Int(0, order_count) = %d, %v", count, ok)
	}

	// Postgres numerics arrive as strings through database/sql.
	rate, ok := table.Float(0, "reorder_rate")
	if !ok || rate != 0.84 {
		t.Errorf("Float(0, reorder_rate) = %f, %v", rate, ok)
	}
	rate, ok = table.Float(1, "reorder_rate")
	if !ok || rate != 0.71 {
		t.Errorf("Float(1, reorder_rate) = %f, %v", rate, ok)
	}
}

func TestResultTable_MissingColumnAndRow(t *testing.T) {
	table := sampleTable()

	if _, ok := table.Cell(0, "no_such_column"); ok {
		t.Error("expected miss for unknown column")
	}
	if _, ok := table.Cell(5, "product_name"); ok {
		t.Error("expected miss for out-of-range row")
	}
	if idx := table.ColumnIndex("order_count"); idx != 1 {
		t.Errorf("ColumnIndex(order_count) = %d, want 1", idx)
	}
}

func TestResultTable_Scalar(t *testing.T) {
	table := &ResultTable{Columns: []string{"total_orders"}, Rows: [][]any{{int64(3421083)}}}
	v, ok := table.Scalar()
	if !ok || v.(int64) != 3421083 {
		t.Errorf("Scalar = %v, %v", v, ok)
	}

	empty := &ResultTable{Columns: []string{"total_orders"}}
	if _, ok := empty.Scalar(); ok {
		t.Error("expected no scalar from empty table")
	}
}

func TestResultTable_StringColumn(t *testing.T) {
	table := sampleTable()
	names := table.StringColumn("product_name")
	if len(names) != 2 || names[0] != "Banana" || names[1] != "Organic Strawberries" {
		t.Errorf("StringColumn = %v", names)
	}
	if got := table.StringColumn("missing"); got != nil {
		t.Errorf("StringColumn(missing) = %v, want nil", got)
	}
}
