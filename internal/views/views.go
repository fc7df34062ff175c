// Cartful - Grocery Order Analytics Dashboard
// Copyright 2026 Cartful Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartful-labs/cartful

// Package views defines the dashboard's outputs: one registered computation
// per panel, each backed by exactly one warehouse query. Parameterless
// aggregate queries go through the shared query cache; user-scoped results
// and the expensive hourly basket scan go through the per-session cache.
package views

import (
	"context"
	"fmt"
	"strconv"

	"github.com/cartful-labs/cartful/internal/cache"
	"github.com/cartful-labs/cartful/internal/config"
	"github.com/cartful-labs/cartful/internal/reactive"
	"github.com/cartful-labs/cartful/internal/warehouse"
)

// Views binds the dashboard outputs of one session to their data sources.
type Views struct {
	exec    warehouse.Executor
	queries *cache.QueryCache
	session *cache.SessionCache
	cfg     config.DashboardConfig
}

// New creates the output set for one session. The executor and query cache
// are process-wide; the session cache belongs to this session alone.
func New(exec warehouse.Executor, queries *cache.QueryCache, session *cache.SessionCache, cfg config.DashboardConfig) *Views {
	return &Views{exec: exec, queries: queries, session: session, cfg: cfg}
}

// RegisterAll registers every dashboard output on the graph in display
// order. Outputs that read a filter declare it; everything else runs once.
func (v *Views) RegisterAll(g *reactive.Graph) error {
	outputs := []reactive.Computation{
		{Name: "total_orders", Compute: v.totalOrders},
		{Name: "total_users", Compute: v.totalUsers},
		{Name: "total_products", Compute: v.totalProducts},
		{Name: "avg_products", Compute: v.avgProducts},
		{Name: "order_distribution", Deps: []reactive.Field{reactive.FieldMinOrders}, Compute: v.orderDistribution},
		{Name: "dow_distribution", Compute: v.dowDistribution},
		{Name: "hour_distribution", Compute: v.hourDistribution},
		{Name: "heatmap_distribution", Compute: v.heatmapDistribution},
		{Name: "top_products", Compute: v.topProducts},
		{Name: "reorder_rate", Compute: v.reorderRate},
		{Name: "aisle_orders", Compute: v.aisleOrders},
		{Name: "dept_orders", Compute: v.deptOrders},
		{Name: "dept_reorder", Compute: v.deptReorder},
		{Name: "basket_size_dow", Compute: v.basketSizeDow},
		{Name: "basket_size_hour", Compute: v.basketSizeHour},
		{Name: "product_pairs", Compute: v.productPairs},
		{Name: "user_products", Deps: []reactive.Field{reactive.FieldUserID}, Compute: v.userProducts},
		{Name: "recommendations", Deps: []reactive.Field{reactive.FieldUserID}, Compute: v.recommendations},
	}
	for _, c := range outputs {
		if err := g.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// LoadUserChoices fetches the user selector's choice list. Runs once at
// session start, independent of the filter state.
func (v *Views) LoadUserChoices(ctx context.Context) ([]string, error) {
	table, err := v.exec.Execute(ctx, warehouse.UserChoicesQuery(v.cfg.UserChoiceLimit))
	if err != nil {
		return nil, fmt.Errorf("loading user choices: %w", err)
	}
	return table.StringColumn("user_id"), nil
}

// cached runs a parameterless aggregate through the shared query cache.
func (v *Views) cached(ctx context.Context, q warehouse.Query) (*warehouse.ResultTable, error) {
	return v.queries.GetOrCompute(ctx, q)
}

func parseUserID(userID string) (int, error) {
	id, err := strconv.Atoi(userID)
	if err != nil {
		return 0, fmt.Errorf("invalid user id %q: %w", userID, err)
	}
	return id, nil
}
