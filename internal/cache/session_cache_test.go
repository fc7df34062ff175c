// Cartful - Grocery Order Analytics Dashboard
// Copyright 2026 Cartful Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartful-labs/cartful

package cache

import (
	"errors"
	"fmt"
	"testing"

	"github.com/cartful-labs/cartful/internal/warehouse"
)

func TestSessionCache_ComputesOncePerKey(t *testing.T) {
	c := NewSessionCache(128)

	calls := 0
	compute := func() (*warehouse.ResultTable, error) {
		calls++
		return tableOf("recommendations"), nil
	}

	// First selection of a user computes; re-selection within the session
	// serves the cached result with zero further executions.
	if _, err := c.GetOrCompute("recommendations_7", compute); err != nil {
		t.Fatal(err)
	}
	if calls != 1 {
		t.Fatalf("expected one computation, got %d", calls)
	}
	if _, err := c.GetOrCompute("recommendations_7", compute); err != nil {
		t.Fatal(err)
	}
	if calls != 1 {
		t.Errorf("re-selection should not recompute, got %d calls", calls)
	}

	// A different user is a different key.
	if _, err := c.GetOrCompute("recommendations_8", compute); err != nil {
		t.Fatal(err)
	}
	if calls != 2 {
		t.Errorf("distinct key should compute, got %d calls", calls)
	}
}

func TestSessionCache_ErrorNotCached(t *testing.T) {
	c := NewSessionCache(8)

	boom := errors.New("timeout")
	if _, err := c.GetOrCompute("recommendations_9", func() (*warehouse.ResultTable, error) {
		return nil, boom
	}); !errors.Is(err, boom) {
		t.Fatalf("expected compute error, got %v", err)
	}

	// The failure must not occupy the key.
	table, err := c.GetOrCompute("recommendations_9", func() (*warehouse.ResultTable, error) {
		return tableOf("ok"), nil
	})
	if err != nil {
		t.Fatalf("expected successful recompute, got %v", err)
	}
	if v, _ := table.String(0, "v"); v != "ok" {
		t.Errorf("expected fresh result, got %q", v)
	}
}

func TestSessionCache_BoundedGrowth(t *testing.T) {
	// A session cycling through many users must not grow without bound.
	c := NewSessionCache(16)

	for i := 0; i < 100; i++ {
		key := fmt.Sprintf("recommendations_%d", i)
		if _, err := c.GetOrCompute(key, func() (*warehouse.ResultTable, error) {
			return tableOf(key), nil
		}); err != nil {
			t.Fatal(err)
		}
	}

	if c.Len() != 16 {
		t.Errorf("Len = %d, want capacity bound 16", c.Len())
	}
}

func TestSessionCache_Clear(t *testing.T) {
	c := NewSessionCache(8)
	if _, err := c.GetOrCompute("user_products_3", func() (*warehouse.ResultTable, error) {
		return tableOf("x"), nil
	}); err != nil {
		t.Fatal(err)
	}

	c.Clear()

	if c.Len() != 0 {
		t.Errorf("Len = %d after Clear, want 0", c.Len())
	}
}
