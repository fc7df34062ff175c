// Cartful - Grocery Order Analytics Dashboard
// Copyright 2026 Cartful Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartful-labs/cartful

package cache

import (
	"fmt"
	"sync"
	"testing"

	"github.com/cartful-labs/cartful/internal/warehouse"
)

func tableOf(value string) *warehouse.ResultTable {
	return &warehouse.ResultTable{Columns: []string{"v"}, Rows: [][]any{{value}}}
}

func TestLRU_BasicOperations(t *testing.T) {
	c := NewLRU(3)

	c.Add("a", tableOf("1"))
	c.Add("b", tableOf("2"))
	c.Add("c", tableOf("3"))

	for _, key := range []string{"a", "b", "c"} {
		if _, found := c.Get(key); !found {
			t.Errorf("expected to find key %q", key)
		}
	}
	if c.Len() != 3 {
		t.Errorf("Len = %d, want 3", c.Len())
	}

	got, _ := c.Get("b")
	if v, _ := got.String(0, "v"); v != "2" {
		t.Errorf("Get(b) returned wrong table: %q", v)
	}
}

func TestLRU_EvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRU(3)

	c.Add("a", tableOf("1"))
	c.Add("b", tableOf("2"))
	c.Add("c", tableOf("3"))

	// Touch "a" so "b" becomes least recently used.
	c.Get("a")

	c.Add("d", tableOf("4"))

	if _, found := c.Get("b"); found {
		t.Error("expected b to be evicted")
	}
	for _, key := range []string{"a", "c", "d"} {
		if _, found := c.Get(key); !found {
			t.Errorf("expected %q to survive eviction", key)
		}
	}

	stats := c.Stats()
	if stats.Evictions != 1 {
		t.Errorf("Evictions = %d, want 1", stats.Evictions)
	}
}

func TestLRU_CapacityInvariant(t *testing.T) {
	// 33 distinct keys through a 32-slot cache: the first inserted
	// (least recently used) key must be gone, the other 32 retained.
	c := NewLRU(32)

	for i := 0; i < 33; i++ {
		c.Add(fmt.Sprintf("query-%d", i), tableOf(fmt.Sprint(i)))
	}

	if c.Len() != 32 {
		t.Fatalf("Len = %d, want 32", c.Len())
	}
	if _, found := c.Get("query-0"); found {
		t.Error("expected oldest key query-0 to be evicted after 33rd insert")
	}
	for i := 1; i < 33; i++ {
		if _, found := c.Get(fmt.Sprintf("query-%d", i)); !found {
			t.Errorf("expected query-%d to be retained", i)
		}
	}
}

func TestLRU_UpdateExistingKey(t *testing.T) {
	c := NewLRU(2)

	c.Add("a", tableOf("old"))
	c.Add("a", tableOf("new"))

	if c.Len() != 1 {
		t.Errorf("Len = %d after re-adding same key, want 1", c.Len())
	}
	got, _ := c.Get("a")
	if v, _ := got.String(0, "v"); v != "new" {
		t.Errorf("expected updated value, got %q", v)
	}
}

func TestLRU_Clear(t *testing.T) {
	c := NewLRU(4)
	c.Add("a", tableOf("1"))
	c.Add("b", tableOf("2"))

	c.Clear()

	if c.Len() != 0 {
		t.Errorf("Len = %d after Clear, want 0", c.Len())
	}
	if _, found := c.Get("a"); found {
		t.Error("expected no entries after Clear")
	}
}

func TestLRU_ConcurrentAccess(t *testing.T) {
	c := NewLRU(16)
	var wg sync.WaitGroup

	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := fmt.Sprintf("key-%d", (g+i)%24)
				c.Add(key, tableOf(key))
				if table, found := c.Get(key); found {
					if v, _ := table.String(0, "v"); v != key {
						t.Errorf("read of %q observed foreign value %q", key, v)
					}
				}
			}
		}(g)
	}
	wg.Wait()

	if c.Len() > 16 {
		t.Errorf("Len = %d exceeds capacity 16", c.Len())
	}
}
