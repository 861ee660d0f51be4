/*
SPDX-License-Identifier: Apache-2.0

Copyright 2026 The Gridstate Authors
*/

/*
Benchmarks for deriving the row model of large tables (1M rows).

# Running Benchmarks

Run all benchmarks:

	go test -bench=. -benchmem ./core/tables/

Run only the paged sort benchmarks:

	go test -bench=Paged -benchmem ./core/tables/

# Available Benchmarks

  - BenchmarkFilter1M          - select filter keeping 1% of rows
  - BenchmarkFilterWorstCase1M - text filter keeping 80% of rows
  - BenchmarkPagedSort1M       - sort, first page only
  - BenchmarkFullSort1M        - sort without pagination
  - BenchmarkGroupAggregate1M  - group by one column (100 groups), sum
  - BenchmarkFullPipeline1M    - filter, group, sort, aggregate, paginate

# Configuring Table Size

Change the argument of createLargeRows, for example:

	rows := createLargeRows(10_000_000)
*/

package tables

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/gridstate/core/aggregates"
	"github.com/google/gridstate/core/columns"
	"github.com/google/gridstate/core/sorting"
	"github.com/google/gridstate/core/values"
	"github.com/google/gridstate/core/views"
)

type benchRow struct {
	category string
	amount   int
	key      string
	label    string
}

// createLargeRows creates rows with a 100-value category, a numeric
// amount, a unique key and a label matching "keep" for 80% of rows.
func createLargeRows(n int) []benchRow {
	rows := make([]benchRow, n)
	for i := range rows {
		label := "keep"
		if i%5 == 0 {
			label = "drop"
		}
		rows[i] = benchRow{
			category: fmt.Sprintf("category_%d", i%100),
			amount:   i % 10000,
			key:      fmt.Sprintf("id_%d", i),
			label:    label,
		}
	}
	return rows
}

func benchColumns() *columns.Set[benchRow] {
	return columns.MustSet([]columns.Column[benchRow]{
		{ID: "category", Accessor: func(r benchRow) any { return r.category }, FilterVariant: columns.FilterSelect},
		{ID: "amount", Accessor: func(r benchRow) any { return r.amount }, Kind: values.KindNumber, Aggregation: aggregates.Sum},
		{ID: "key", Accessor: func(r benchRow) any { return r.key }},
		{ID: "label", Accessor: func(r benchRow) any { return r.label }},
	})
}

func benchTable(b *testing.B, f Features[benchRow], initial views.State) *Table[benchRow] {
	b.Helper()
	tbl, err := New(context.Background(), Options[benchRow]{
		Columns:  benchColumns(),
		Data:     createLargeRows(1_000_000),
		GetRowID: func(r benchRow, _ int) string { return r.key },
		Features: f,
		Initial:  initial,
	})
	if err != nil {
		b.Fatal(err)
	}
	return tbl
}

func runModel(b *testing.B, tbl *Table[benchRow]) {
	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = tbl.Model()
	}
}

func BenchmarkFilter1M(b *testing.B) {
	tbl := benchTable(b, AllFeatures[benchRow](), views.State{})
	tbl.SetColumnFilter("category", "category_50")
	runModel(b, tbl)
}

func BenchmarkFilterWorstCase1M(b *testing.B) {
	tbl := benchTable(b, AllFeatures[benchRow](), views.State{})
	tbl.SetColumnFilter("label", "keep")
	runModel(b, tbl)
}

func BenchmarkPagedSort1M(b *testing.B) {
	tbl := benchTable(b, AllFeatures[benchRow](), views.State{
		Sorting: sorting.State{{ID: "amount", Desc: true}},
	})
	runModel(b, tbl)
}

func BenchmarkFullSort1M(b *testing.B) {
	f := AllFeatures[benchRow]()
	f.Pagination.Enabled = false
	tbl := benchTable(b, f, views.State{
		Sorting: sorting.State{{ID: "amount", Desc: true}},
	})
	runModel(b, tbl)
}

func BenchmarkGroupAggregate1M(b *testing.B) {
	tbl := benchTable(b, AllFeatures[benchRow](), views.State{Grouping: []string{"category"}})
	runModel(b, tbl)
}

func BenchmarkFullPipeline1M(b *testing.B) {
	tbl := benchTable(b, AllFeatures[benchRow](), views.State{
		Grouping: []string{"category"},
		Sorting:  sorting.State{{ID: "category"}, {ID: "amount", Desc: true}},
	})
	tbl.SetColumnFilter("label", "keep")
	tbl.SetExpanded(func(views.Expanded) views.Expanded {
		return views.Expanded{"category:category_1": true}
	})
	runModel(b, tbl)
}
