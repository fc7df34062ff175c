// Cartful - Grocery Order Analytics Dashboard
// Copyright 2026 Cartful Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartful-labs/cartful

// Package reactive implements the dashboard's trigger graph: a set of named
// computations with explicitly declared filter dependencies. Changing a
// filter marks exactly the computations that declared it stale; Recompute
// runs the stale set against an immutable snapshot of the filter state.
//
// Registration is explicit. Every output names its dependencies up front,
// so the invalidation set for any filter change is knowable by inspection.
package reactive

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cartful-labs/cartful/internal/chart"
	"github.com/cartful-labs/cartful/internal/logging"
	"github.com/cartful-labs/cartful/internal/metrics"
)

// Field identifies one filter input of the dashboard.
type Field string

const (
	FieldMinOrders Field = "min_orders"
	FieldUserID    Field = "user_id"
)

// Snapshot is an immutable copy of the filter state, captured when a filter
// changes and handed to computations as-of that moment.
type Snapshot struct {
	MinOrders int
	UserID    string
}

// ComputeFunc produces one output's artifact from a filter snapshot.
type ComputeFunc func(ctx context.Context, snap Snapshot) (*chart.Artifact, error)

// Computation is one registered dashboard output.
type Computation struct {
	// Name identifies the output, e.g. "order_distribution".
	Name string

	// Deps lists the filter fields whose changes invalidate this output.
	// An output with no deps runs once and is never invalidated by filters.
	Deps []Field

	Compute ComputeFunc
}

func (c Computation) dependsOn(field Field) bool {
	for _, d := range c.Deps {
		if d == field {
			return true
		}
	}
	return false
}

// Graph owns the filter state and the registered computations of one
// dashboard session. All methods are safe for concurrent use.
type Graph struct {
	mu           sync.Mutex
	snapshot     Snapshot
	order        []string
	computations map[string]Computation
	stale        map[string]bool
	artifacts    map[string]*chart.Artifact
}

// NewGraph creates a graph with the given initial filter state. Every
// computation registered later starts stale, so the first Recompute runs
// the full set.
func NewGraph(initial Snapshot) *Graph {
	return &Graph{
		snapshot:     initial,
		computations: make(map[string]Computation),
		stale:        make(map[string]bool),
		artifacts:    make(map[string]*chart.Artifact),
	}
}

// Register adds a computation. Names must be unique.
func (g *Graph) Register(c Computation) error {
	if c.Name == "" || c.Compute == nil {
		return fmt.Errorf("computation requires a name and a compute func")
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, exists := g.computations[c.Name]; exists {
		return fmt.Errorf("computation %q already registered", c.Name)
	}
	g.computations[c.Name] = c
	g.order = append(g.order, c.Name)
	g.stale[c.Name] = true
	return nil
}

// State returns the current filter snapshot.
func (g *Graph) State() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snapshot
}

// SetMinOrders updates the minimum order filter and returns the names of
// the computations it invalidated. Outputs that do not declare min_orders
// keep their last artifact untouched.
func (g *Graph) SetMinOrders(v int) []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.snapshot.MinOrders == v {
		return nil
	}
	g.snapshot.MinOrders = v
	return g.invalidateField(FieldMinOrders)
}

// SetUserID updates the selected user filter and returns the names of the
// computations it invalidated.
func (g *Graph) SetUserID(id string) []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.snapshot.UserID == id {
		return nil
	}
	g.snapshot.UserID = id
	return g.invalidateField(FieldUserID)
}

// invalidateField marks dependents of field stale. Caller holds g.mu.
func (g *Graph) invalidateField(field Field) []string {
	var invalidated []string
	for _, name := range g.order {
		if g.computations[name].dependsOn(field) {
			g.stale[name] = true
			invalidated = append(invalidated, name)
		}
	}
	return invalidated
}

// Invalidate marks a single computation stale by name.
func (g *Graph) Invalidate(name string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.computations[name]; ok {
		g.stale[name] = true
	}
}

// Recompute runs every stale computation against the snapshot captured at
// invalidation time and returns the names that ran. A failing computation
// yields an error artifact for that output alone; its siblings and the
// filter state are unaffected.
func (g *Graph) Recompute(ctx context.Context) []string {
	g.mu.Lock()
	snap := g.snapshot
	var pending []Computation
	for _, name := range g.order {
		if g.stale[name] {
			pending = append(pending, g.computations[name])
			delete(g.stale, name)
		}
	}
	g.mu.Unlock()

	recomputed := make([]string, 0, len(pending))
	for _, c := range pending {
		art := g.runOne(ctx, c, snap)
		g.mu.Lock()
		g.artifacts[c.Name] = art
		g.mu.Unlock()
		recomputed = append(recomputed, c.Name)
	}
	return recomputed
}

func (g *Graph) runOne(ctx context.Context, c Computation, snap Snapshot) *chart.Artifact {
	start := time.Now()
	art, err := c.Compute(ctx, snap)
	elapsed := time.Since(start)

	if err != nil {
		metrics.OutputRecomputations.WithLabelValues(c.Name, "error").Inc()
		logging.Error().
			Err(err).
			Str("output", c.Name).
			Dur("elapsed", elapsed).
			Msg("Output recomputation failed")
		return chart.Error(c.Name, err)
	}
	if art == nil {
		art = chart.Placeholder(c.Name, "nothing to display")
	}

	metrics.OutputRecomputations.WithLabelValues(c.Name, "ok").Inc()
	logging.Debug().
		Str("output", c.Name).
		Dur("elapsed", elapsed).
		Msg("Output recomputed")
	return art
}

// Artifact returns the last produced artifact for an output.
func (g *Graph) Artifact(name string) (*chart.Artifact, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	art, ok := g.artifacts[name]
	return art, ok
}

// Artifacts returns the last produced artifact of every output, keyed by
// output name.
func (g *Graph) Artifacts() map[string]*chart.Artifact {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make(map[string]*chart.Artifact, len(g.artifacts))
	for name, art := range g.artifacts {
		out[name] = art
	}
	return out
}

// Names returns the registered output names in registration order.
func (g *Graph) Names() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}
