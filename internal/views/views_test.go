// Cartful - Grocery Order Analytics Dashboard
// Copyright 2026 Cartful Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartful-labs/cartful

package views

import (
	"context"
	"testing"

	"github.com/cartful-labs/cartful/internal/cache"
	"github.com/cartful-labs/cartful/internal/config"
	"github.com/cartful-labs/cartful/internal/reactive"
	"github.com/cartful-labs/cartful/internal/warehouse"
)

// fakeStore is an in-memory Executor serving canned tables by query name
// and counting executions per query.
type fakeStore struct {
	tables   map[string]*warehouse.ResultTable
	calls    map[string]int
	lastArgs map[string][]any
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		tables:   make(map[string]*warehouse.ResultTable),
		calls:    make(map[string]int),
		lastArgs: make(map[string][]any),
	}
}

func (f *fakeStore) Execute(_ context.Context, q warehouse.Query) (*warehouse.ResultTable, error) {
	f.calls[q.Name]++
	f.lastArgs[q.Name] = q.Args
	if t, ok := f.tables[q.Name]; ok {
		return t, nil
	}
	return &warehouse.ResultTable{Columns: []string{"empty"}}, nil
}

func testConfig() config.DashboardConfig {
	return config.DashboardConfig{
		MinOrdersFloor:        1,
		MinOrdersCeil:         20,
		MinOrdersDefault:      5,
		UserChoiceLimit:       100,
		RecommendMinFrequency: 10,
		RecommendLimit:        20,
	}
}

func newTestViews(store *fakeStore) (*Views, *cache.SessionCache) {
	session := cache.NewSessionCache(128)
	v := New(store, cache.NewQueryCache(store, 32), session, testConfig())
	return v, session
}

func scalar(column string, value any) *warehouse.ResultTable {
	return &warehouse.ResultTable{Columns: []string{column}, Rows: [][]any{{value}}}
}

func TestScalarAggregations(t *testing.T) {
	store := newFakeStore()
	store.tables["total_orders"] = scalar("total_orders", int64(3))
	store.tables["total_users"] = scalar("total_users", int64(2))
	// Mean of per-order product counts 2, 3 and 4.
	store.tables["avg_products"] = scalar("avg_products", "3.0000")
	v, _ := newTestViews(store)

	ctx := context.Background()
	snap := reactive.Snapshot{}

	orders, err := v.totalOrders(ctx, snap)
	if err != nil {
		t.Fatal(err)
	}
	if orders.Value != "3" {
		t.Errorf("total_orders = %q, want 3", orders.Value)
	}

	users, err := v.totalUsers(ctx, snap)
	if err != nil {
		t.Fatal(err)
	}
	if users.Value != "2" {
		t.Errorf("total_users = %q, want 2", users.Value)
	}

	avg, err := v.avgProducts(ctx, snap)
	if err != nil {
		t.Fatal(err)
	}
	if avg.Value != "3.00" {
		t.Errorf("avg_products = %q, want 3.00", avg.Value)
	}
}

func TestScalarTextThousandsSeparator(t *testing.T) {
	store := newFakeStore()
	store.tables["total_orders"] = scalar("total_orders", int64(3421083))
	v, _ := newTestViews(store)

	art, err := v.totalOrders(context.Background(), reactive.Snapshot{})
	if err != nil {
		t.Fatal(err)
	}
	if art.Value != "3,421,083" {
		t.Errorf("formatted count = %q, want 3,421,083", art.Value)
	}
}

func TestRecommendations_NoUserSelectedRunsZeroQueries(t *testing.T) {
	store := newFakeStore()
	v, _ := newTestViews(store)

	art, err := v.recommendations(context.Background(), reactive.Snapshot{UserID: ""})
	if err != nil {
		t.Fatal(err)
	}
	if !art.NoData {
		t.Error("expected placeholder artifact with no user selected")
	}
	if store.calls["recommendations"] != 0 {
		t.Errorf("recommendations executed %d times with no user", store.calls["recommendations"])
	}
}

func TestRecommendations_SessionCachedPerUser(t *testing.T) {
	store := newFakeStore()
	store.tables["recommendations"] = &warehouse.ResultTable{
		Columns: []string{"product_name", "frequency"},
		Rows:    [][]any{{"Organic Avocado", int64(812)}, {"Strawberries", int64(644)}},
	}
	v, _ := newTestViews(store)
	ctx := context.Background()

	// First selection of user 7 executes the query exactly once.
	if _, err := v.recommendations(ctx, reactive.Snapshot{UserID: "7"}); err != nil {
		t.Fatal(err)
	}
	if store.calls["recommendations"] != 1 {
		t.Fatalf("first selection executed %d times, want 1", store.calls["recommendations"])
	}
	wantArgs := []any{7, 10, 20}
	gotArgs := store.lastArgs["recommendations"]
	if len(gotArgs) != 3 || gotArgs[0] != wantArgs[0] || gotArgs[1] != wantArgs[1] || gotArgs[2] != wantArgs[2] {
		t.Errorf("recommendation args = %v, want %v", gotArgs, wantArgs)
	}

	// Re-selection in the same session executes zero further queries.
	if _, err := v.recommendations(ctx, reactive.Snapshot{UserID: "7"}); err != nil {
		t.Fatal(err)
	}
	if store.calls["recommendations"] != 1 {
		t.Errorf("re-selection executed %d total, want 1", store.calls["recommendations"])
	}

	// A different user misses the session cache.
	if _, err := v.recommendations(ctx, reactive.Snapshot{UserID: "8"}); err != nil {
		t.Fatal(err)
	}
	if store.calls["recommendations"] != 2 {
		t.Errorf("distinct user executed %d total, want 2", store.calls["recommendations"])
	}
}

func TestRecommendations_InvalidUserID(t *testing.T) {
	store := newFakeStore()
	v, _ := newTestViews(store)

	if _, err := v.recommendations(context.Background(), reactive.Snapshot{UserID: "not-a-number"}); err == nil {
		t.Error("expected error for non-numeric user id")
	}
	if store.calls["recommendations"] != 0 {
		t.Error("invalid user id must not reach the store")
	}
}

func TestBasketSizeHour_SessionCached(t *testing.T) {
	store := newFakeStore()
	store.tables["basket_size_hour"] = &warehouse.ResultTable{
		Columns: []string{"order_hour_of_day", "avg_basket_size"},
		Rows:    [][]any{{int64(9), "10.2"}, {int64(17), "11.8"}},
	}
	v, _ := newTestViews(store)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := v.basketSizeHour(ctx, reactive.Snapshot{}); err != nil {
			t.Fatal(err)
		}
	}
	if store.calls["basket_size_hour"] != 1 {
		t.Errorf("basket_size_hour executed %d times, want 1", store.calls["basket_size_hour"])
	}
}

func TestOrderDistribution_PassesMinOrders(t *testing.T) {
	store := newFakeStore()
	store.tables["order_distribution"] = &warehouse.ResultTable{
		Columns: []string{"order_count", "user_count"},
		Rows:    [][]any{{int64(5), int64(120)}, {int64(6), int64(90)}},
	}
	v, _ := newTestViews(store)

	art, err := v.orderDistribution(context.Background(), reactive.Snapshot{MinOrders: 7})
	if err != nil {
		t.Fatal(err)
	}
	if args := store.lastArgs["order_distribution"]; len(args) != 1 || args[0] != 7 {
		t.Errorf("order_distribution args = %v, want [7]", args)
	}
	if art.NoData {
		t.Error("expected materialized chart")
	}
	// Parameterized per filter value; a second call with the same value runs
	// uncached at this layer.
	if _, err := v.orderDistribution(context.Background(), reactive.Snapshot{MinOrders: 7}); err != nil {
		t.Fatal(err)
	}
	if store.calls["order_distribution"] != 2 {
		t.Errorf("order_distribution executed %d times, want 2", store.calls["order_distribution"])
	}
}

func TestUserProducts(t *testing.T) {
	store := newFakeStore()
	store.tables["user_products"] = &warehouse.ResultTable{
		Columns: []string{"product_name"},
		Rows:    [][]any{{"Banana"}, {"2% Milk"}},
	}
	v, _ := newTestViews(store)
	ctx := context.Background()

	placeholder, err := v.userProducts(ctx, reactive.Snapshot{})
	if err != nil {
		t.Fatal(err)
	}
	if !placeholder.NoData {
		t.Error("expected placeholder with no user selected")
	}

	art, err := v.userProducts(ctx, reactive.Snapshot{UserID: "42"})
	if err != nil {
		t.Fatal(err)
	}
	if len(art.Items) != 2 || art.Items[0] != "Banana" {
		t.Errorf("items = %v", art.Items)
	}
	if args := store.lastArgs["user_products"]; len(args) != 1 || args[0] != 42 {
		t.Errorf("user_products args = %v, want [42]", args)
	}
}

func TestLoadUserChoices(t *testing.T) {
	store := newFakeStore()
	store.tables["user_choices"] = &warehouse.ResultTable{
		Columns: []string{"user_id"},
		Rows:    [][]any{{int64(1)}, {int64(7)}, {int64(42)}},
	}
	v, _ := newTestViews(store)

	choices, err := v.LoadUserChoices(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"1", "7", "42"}
	if len(choices) != len(want) {
		t.Fatalf("choices = %v, want %v", choices, want)
	}
	for i := range want {
		if choices[i] != want[i] {
			t.Errorf("choices[%d] = %q, want %q", i, choices[i], want[i])
		}
	}
	if args := store.lastArgs["user_choices"]; len(args) != 1 || args[0] != 100 {
		t.Errorf("user_choices args = %v, want [100]", args)
	}
}

func TestRegisterAll_WiresEveryOutput(t *testing.T) {
	store := newFakeStore()
	v, _ := newTestViews(store)
	g := reactive.NewGraph(reactive.Snapshot{MinOrders: 5})

	if err := v.RegisterAll(g); err != nil {
		t.Fatal(err)
	}

	names := g.Names()
	if len(names) != 18 {
		t.Fatalf("registered %d outputs, want 18: %v", len(names), names)
	}

	// A full pass produces an artifact for every output even over an empty
	// store; nothing may error out of the graph.
	g.Recompute(context.Background())
	for _, name := range names {
		art, ok := g.Artifact(name)
		if !ok {
			t.Errorf("no artifact for %s", name)
			continue
		}
		if art.IsError {
			t.Errorf("%s produced error artifact: %s", name, art.Message)
		}
	}
}

func TestParameterlessChartsUseQueryCache(t *testing.T) {
	store := newFakeStore()
	store.tables["top_products"] = &warehouse.ResultTable{
		Columns: []string{"product_name", "order_count"},
		Rows:    [][]any{{"Banana", int64(470209)}},
	}
	v, _ := newTestViews(store)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := v.topProducts(ctx, reactive.Snapshot{}); err != nil {
			t.Fatal(err)
		}
	}
	if store.calls["top_products"] != 1 {
		t.Errorf("top_products executed %d times across 5 renders, want 1", store.calls["top_products"])
	}
}

func TestFormatCount(t *testing.T) {
	cases := map[int64]string{
		0:        "0",
		7:        "7",
		999:      "999",
		1000:     "1,000",
		3421083:  "3,421,083",
		-1234567: "-1,234,567",
	}
	for n, want := range cases {
		if got := formatCount(n); got != want {
			t.Errorf("formatCount(%d) = %q, want %q", n, got, want)
		}
	}
}
