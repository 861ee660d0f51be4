/*
SPDX-License-Identifier: Apache-2.0

Copyright 2026 The Gridstate Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    https://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package datasources

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/google/gridstate/core/csvimport"
	"github.com/google/gridstate/core/persistence"
	"github.com/google/gridstate/core/schema"
	"github.com/google/gridstate/core/sorting"
	"github.com/google/gridstate/core/views"
)

const ordersYAML = `
datasets:
  - name: orders
    title: Customer orders
    source: {type: csv, path: orders.csv, idColumn: order_id}
    columns:
      - {id: total, aggregation: sum}
    initial:
      sorting: [{id: total, desc: true}]
  - name: remote
    source: {type: postgres}
`

const ordersCSV = `order_id,customer,total
o1,alice,12.5
o2,bob,30
o3,alice,7
`

func writeFixtures(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "orders.csv"), []byte(ordersCSV), 0o644); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "datasets.yaml")
	if err := os.WriteFile(path, []byte(ordersYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestManagerLazyLoading(t *testing.T) {
	ctx := context.Background()
	manager := NewManager(zerolog.Nop())
	if err := manager.LoadConfig(writeFixtures(t)); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	names := manager.Names()
	if len(names) != 2 || names[0] != "orders" || names[1] != "remote" {
		t.Errorf("unexpected dataset names %v", names)
	}

	// Verify data is not loaded yet
	if manager.IsLoaded("orders") {
		t.Error("orders should not be loaded yet")
	}

	data, err := manager.LoadData(ctx, "orders")
	if err != nil {
		t.Fatalf("failed to load data: %v", err)
	}
	if data.Len() != 3 {
		t.Errorf("expected 3 rows, got %d", data.Len())
	}
	if !manager.IsLoaded("orders") {
		t.Error("orders should be loaded now")
	}

	again, err := manager.LoadData(ctx, "orders")
	if err != nil || again != data {
		t.Error("expected cached data on second load")
	}

	manager.InvalidateCache("orders")
	if manager.IsLoaded("orders") {
		t.Error("orders should not be cached after invalidation")
	}
}

func TestManagerErrors(t *testing.T) {
	ctx := context.Background()
	manager := NewManager(zerolog.Nop())
	path := writeFixtures(t)
	if err := manager.LoadConfig(path); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if _, err := manager.LoadData(ctx, "missing"); !errors.Is(err, ErrUnknownDataset) {
		t.Errorf("expected ErrUnknownDataset, got %v", err)
	}
	if _, err := manager.LoadData(ctx, "remote"); !errors.Is(err, ErrNoLoader) {
		t.Errorf("expected ErrNoLoader, got %v", err)
	}
	if err := manager.LoadConfig(path); !errors.Is(err, schema.ErrDuplicateDataset) {
		t.Errorf("expected ErrDuplicateDataset, got %v", err)
	}
}

func TestManagerList(t *testing.T) {
	manager := NewManager(zerolog.Nop())
	if err := manager.LoadConfig(writeFixtures(t)); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if _, err := manager.LoadData(context.Background(), "orders"); err != nil {
		t.Fatal(err)
	}

	list := manager.List()
	if len(list) != 2 {
		t.Fatalf("expected 2 datasets, got %d", len(list))
	}
	want := Info{Name: "orders", Title: "Customer orders", Loaded: true, Rows: 3}
	if list[0] != want {
		t.Errorf("got %+v, want %+v", list[0], want)
	}
	if list[1].Title != "remote" || list[1].Loaded {
		t.Errorf("unexpected info for remote: %+v", list[1])
	}
}

func TestManagerOpen(t *testing.T) {
	ctx := context.Background()
	manager := NewManager(zerolog.Nop())
	if err := manager.LoadConfig(writeFixtures(t)); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	tbl, err := manager.Open(ctx, "orders", OpenOptions{})
	if err != nil {
		t.Fatalf("failed to open table: %v", err)
	}
	m := tbl.Model()
	if len(m.Rows) != 3 || m.Rows[0].ID != "o2" {
		t.Errorf("expected rows sorted by total desc starting with o2, got %d rows", len(m.Rows))
	}

	tbl, err = manager.Open(ctx, "orders", OpenOptions{
		State: views.State{Sorting: sorting.State{{ID: "customer"}}, GlobalFilter: "alice"},
	})
	if err != nil {
		t.Fatalf("failed to open table: %v", err)
	}
	m = tbl.Model()
	if len(m.Rows) != 2 {
		t.Fatalf("expected 2 rows for alice, got %d", len(m.Rows))
	}
	if m.Rows[0].ID != "o1" || m.Rows[1].ID != "o3" {
		t.Errorf("unexpected order %s, %s", m.Rows[0].ID, m.Rows[1].ID)
	}
}

func TestManagerRegister(t *testing.T) {
	manager := NewManager(zerolog.Nop())
	data := &csvimport.Dataset{
		Fields:  []csvimport.Field{{ID: "n", Header: "n"}},
		Records: []csvimport.Record{{"n": 1.0}, {"n": 2.0}},
	}
	manager.Register(&schema.Dataset{Name: "numbers"}, data)

	if !manager.IsLoaded("numbers") {
		t.Error("registered dataset should be loaded")
	}
	tbl, err := manager.Open(context.Background(), "numbers", OpenOptions{})
	if err != nil {
		t.Fatalf("failed to open table: %v", err)
	}
	if got := tbl.Model().RowCount; got != 2 {
		t.Errorf("expected 2 rows, got %d", got)
	}
}

func TestManagerOpenRestrictsPersistedSlices(t *testing.T) {
	ctx := context.Background()
	manager := NewManager(zerolog.Nop())
	data := &csvimport.Dataset{
		Fields:  []csvimport.Field{{ID: "n", Header: "n"}},
		Records: []csvimport.Record{{"n": 1.0}, {"n": 2.0}},
	}
	manager.Register(&schema.Dataset{
		Name:        "numbers",
		Persistence: schema.PersistenceSpec{Key: "nums", Include: []string{"sorting"}},
	}, data)

	store := persistence.NewMemoryStore()
	adapter := persistence.New(store, persistence.Options{})
	defer adapter.Close()

	tbl, err := manager.Open(ctx, "numbers", OpenOptions{Persistence: adapter})
	if err != nil {
		t.Fatalf("failed to open table: %v", err)
	}
	tbl.ToggleSorting("n")
	tbl.SetGlobalFilter("1")
	if err := tbl.Flush(ctx); err != nil {
		t.Fatalf("flush failed: %v", err)
	}

	keys := store.Keys("gridstate:nums:")
	if len(keys) != 1 || keys[0] != "gridstate:nums:sorting" {
		t.Errorf("unexpected stored keys %v", keys)
	}
}
