// Cartful - Grocery Order Analytics Dashboard
// Copyright 2026 Cartful Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartful-labs/cartful

package views

import (
	"context"
	"fmt"

	"github.com/cartful-labs/cartful/internal/chart"
	"github.com/cartful-labs/cartful/internal/reactive"
	"github.com/cartful-labs/cartful/internal/warehouse"
)

// Text outputs. Each renders a single cached aggregate scalar.

func (v *Views) totalOrders(ctx context.Context, _ reactive.Snapshot) (*chart.Artifact, error) {
	return v.scalarText(ctx, warehouse.TotalOrdersQuery(), "Total Orders")
}

func (v *Views) totalUsers(ctx context.Context, _ reactive.Snapshot) (*chart.Artifact, error) {
	return v.scalarText(ctx, warehouse.TotalUsersQuery(), "Total Users")
}

func (v *Views) totalProducts(ctx context.Context, _ reactive.Snapshot) (*chart.Artifact, error) {
	return v.scalarText(ctx, warehouse.TotalProductsQuery(), "Total Products")
}

func (v *Views) scalarText(ctx context.Context, q warehouse.Query, title string) (*chart.Artifact, error) {
	table, err := v.cached(ctx, q)
	if err != nil {
		return nil, err
	}
	n, ok := table.Int(0, table.Columns[0])
	if !ok {
		return chart.Placeholder(title, "no data available"), nil
	}
	return chart.Text(title, formatCount(n)), nil
}

func (v *Views) avgProducts(ctx context.Context, _ reactive.Snapshot) (*chart.Artifact, error) {
	const title = "Avg Products per Order"
	table, err := v.cached(ctx, warehouse.AvgProductsQuery())
	if err != nil {
		return nil, err
	}
	f, ok := table.Float(0, "avg_products")
	if !ok {
		return chart.Placeholder(title, "no data available"), nil
	}
	return chart.Text(title, fmt.Sprintf("%.2f", f)), nil
}

// Chart outputs.

func (v *Views) orderDistribution(ctx context.Context, snap reactive.Snapshot) (*chart.Artifact, error) {
	table, err := v.exec.Execute(ctx, warehouse.OrderDistributionQuery(snap.MinOrders))
	if err != nil {
		return nil, err
	}
	return chart.Materialize(table, chart.Spec{
		Kind:    chart.KindBar,
		Title:   fmt.Sprintf("Orders per User (min %d)", snap.MinOrders),
		XColumn: "order_count", YColumn: "user_count",
		XLabel: "Orders per User", YLabel: "Users",
	}), nil
}

func (v *Views) dowDistribution(ctx context.Context, _ reactive.Snapshot) (*chart.Artifact, error) {
	table, err := v.cached(ctx, warehouse.DowOrdersQuery())
	if err != nil {
		return nil, err
	}
	return chart.Materialize(table, chart.Spec{
		Kind:    chart.KindBar,
		Title:   "Orders by Day of Week",
		XColumn: "order_dow", YColumn: "order_count",
		YLabel: "Orders", DayOfWeekX: true,
	}), nil
}

func (v *Views) hourDistribution(ctx context.Context, _ reactive.Snapshot) (*chart.Artifact, error) {
	table, err := v.cached(ctx, warehouse.HourDistQuery())
	if err != nil {
		return nil, err
	}
	return chart.Materialize(table, chart.Spec{
		Kind:    chart.KindLine,
		Title:   "Orders by Hour of Day",
		XColumn: "order_hour_of_day", YColumn: "order_count",
		XLabel: "Hour", YLabel: "Orders",
	}), nil
}

func (v *Views) heatmapDistribution(ctx context.Context, _ reactive.Snapshot) (*chart.Artifact, error) {
	table, err := v.cached(ctx, warehouse.HeatmapQuery())
	if err != nil {
		return nil, err
	}
	return chart.Materialize(table, chart.Spec{
		Kind:      chart.KindHeatmap,
		Title:     "Order Volume by Day and Hour",
		RowColumn: "order_dow", XColumn: "order_hour_of_day", YColumn: "order_count",
		XLabel: "Hour",
	}), nil
}

func (v *Views) topProducts(ctx context.Context, _ reactive.Snapshot) (*chart.Artifact, error) {
	table, err := v.cached(ctx, warehouse.TopProductsQuery())
	if err != nil {
		return nil, err
	}
	return chart.Materialize(table, chart.Spec{
		Kind:    chart.KindBar,
		Title:   "Top 20 Products",
		XColumn: "product_name", YColumn: "order_count",
		XLabel: "Orders", Horizontal: true, SortTotalAscending: true,
	}), nil
}

func (v *Views) reorderRate(ctx context.Context, _ reactive.Snapshot) (*chart.Artifact, error) {
	table, err := v.cached(ctx, warehouse.ReorderRateQuery())
	if err != nil {
		return nil, err
	}
	return chart.Materialize(table, chart.Spec{
		Kind:    chart.KindBar,
		Title:   "Most Reordered Products",
		XColumn: "product_name", YColumn: "reorder_rate",
		XLabel: "Reorder Rate", Horizontal: true, SortTotalAscending: true,
	}), nil
}

func (v *Views) aisleOrders(ctx context.Context, _ reactive.Snapshot) (*chart.Artifact, error) {
	table, err := v.cached(ctx, warehouse.AisleOrdersQuery())
	if err != nil {
		return nil, err
	}
	return chart.Materialize(table, chart.Spec{
		Kind:    chart.KindBar,
		Title:   "Top 20 Aisles",
		XColumn: "aisle", YColumn: "order_count",
		XLabel: "Orders", Horizontal: true, SortTotalAscending: true,
	}), nil
}

func (v *Views) deptOrders(ctx context.Context, _ reactive.Snapshot) (*chart.Artifact, error) {
	table, err := v.cached(ctx, warehouse.DeptOrdersQuery())
	if err != nil {
		return nil, err
	}
	return chart.Materialize(table, chart.Spec{
		Kind:    chart.KindPie,
		Title:   "Orders by Department",
		XColumn: "department", YColumn: "order_count",
	}), nil
}

func (v *Views) deptReorder(ctx context.Context, _ reactive.Snapshot) (*chart.Artifact, error) {
	table, err := v.cached(ctx, warehouse.DeptReorderQuery())
	if err != nil {
		return nil, err
	}
	return chart.Materialize(table, chart.Spec{
		Kind:    chart.KindBar,
		Title:   "Reorder Rate by Department",
		XColumn: "department", YColumn: "reorder_rate",
		YLabel: "Reorder Rate",
	}), nil
}

func (v *Views) basketSizeDow(ctx context.Context, _ reactive.Snapshot) (*chart.Artifact, error) {
	table, err := v.cached(ctx, warehouse.BasketSizeDowQuery())
	if err != nil {
		return nil, err
	}
	return chart.Materialize(table, chart.Spec{
		Kind:    chart.KindBar,
		Title:   "Avg Basket Size by Day of Week",
		XColumn: "order_dow", YColumn: "avg_basket_size",
		YLabel: "Avg Basket Size", DayOfWeekX: true,
	}), nil
}

// basketSizeHour scans every prior order, so the result is pinned in the
// session cache rather than competing for query cache slots.
func (v *Views) basketSizeHour(ctx context.Context, _ reactive.Snapshot) (*chart.Artifact, error) {
	table, err := v.session.GetOrCompute("basket_size_hour", func() (*warehouse.ResultTable, error) {
		return v.exec.Execute(ctx, warehouse.BasketSizeHourQuery())
	})
	if err != nil {
		return nil, err
	}
	return chart.Materialize(table, chart.Spec{
		Kind:    chart.KindLine,
		Title:   "Avg Basket Size by Hour",
		XColumn: "order_hour_of_day", YColumn: "avg_basket_size",
		XLabel: "Hour", YLabel: "Avg Basket Size",
	}), nil
}

func (v *Views) productPairs(ctx context.Context, _ reactive.Snapshot) (*chart.Artifact, error) {
	table, err := v.cached(ctx, warehouse.ProductPairsQuery())
	if err != nil {
		return nil, err
	}
	return chart.Materialize(pairLabels(table), chart.Spec{
		Kind:    chart.KindBar,
		Title:   "Frequently Bought Together",
		XColumn: "pair", YColumn: "pair_count",
		XLabel: "Orders Together", Horizontal: true, SortTotalAscending: true,
	}), nil
}

// pairLabels derives a single "A + B" category column from the two product
// name columns of the pair query.
func pairLabels(table *warehouse.ResultTable) *warehouse.ResultTable {
	if table == nil || table.Empty() {
		return table
	}
	out := &warehouse.ResultTable{
		Columns: []string{"pair", "pair_count"},
		Rows:    make([][]any, 0, table.NumRows()),
	}
	for i := 0; i < table.NumRows(); i++ {
		p1, _ := table.String(i, "product_1")
		p2, _ := table.String(i, "product_2")
		count, _ := table.Cell(i, "pair_count")
		out.Rows = append(out.Rows, []any{p1 + " + " + p2, count})
	}
	return out
}

// User-scoped outputs.

func (v *Views) userProducts(ctx context.Context, snap reactive.Snapshot) (*chart.Artifact, error) {
	const title = "Purchased Products"
	if snap.UserID == "" {
		return chart.Placeholder(title, "Select a user to see their purchases"), nil
	}
	id, err := parseUserID(snap.UserID)
	if err != nil {
		return nil, err
	}
	table, err := v.exec.Execute(ctx, warehouse.UserProductsQuery(id))
	if err != nil {
		return nil, err
	}
	if table.Empty() {
		return chart.Placeholder(title, "No purchases found for this user"), nil
	}
	return chart.List(title, table.StringColumn("product_name")), nil
}

func (v *Views) recommendations(ctx context.Context, snap reactive.Snapshot) (*chart.Artifact, error) {
	const title = "Recommended Products"
	if snap.UserID == "" {
		return chart.Placeholder(title, "Select a user to see recommendations"), nil
	}
	id, err := parseUserID(snap.UserID)
	if err != nil {
		return nil, err
	}
	table, err := v.session.GetOrCompute("recommendations_"+snap.UserID, func() (*warehouse.ResultTable, error) {
		return v.exec.Execute(ctx, warehouse.RecommendationsQuery(id, v.cfg.RecommendMinFrequency, v.cfg.RecommendLimit))
	})
	if err != nil {
		return nil, err
	}
	return chart.Materialize(table, chart.Spec{
		Kind:    chart.KindBar,
		Title:   title,
		XColumn: "product_name", YColumn: "frequency",
		XLabel: "Purchases by Similar Shoppers", Horizontal: true, SortTotalAscending: true,
	}), nil
}
