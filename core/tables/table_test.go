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

package tables

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/google/gridstate/core/aggregates"
	"github.com/google/gridstate/core/columns"
	"github.com/google/gridstate/core/control"
	"github.com/google/gridstate/core/filtering"
	"github.com/google/gridstate/core/layout"
	"github.com/google/gridstate/core/paging"
	"github.com/google/gridstate/core/persistence"
	"github.com/google/gridstate/core/selection"
	"github.com/google/gridstate/core/sorting"
	"github.com/google/gridstate/core/values"
	"github.com/google/gridstate/core/views"
)

type account struct {
	ID     string
	Name   string
	Status string
	Amount int
	Region string
}

var statuses = []string{"Active", "Inactive", "Pending"}

func accounts(n int) []account {
	rows := make([]account, n)
	for i := range rows {
		rows[i] = account{
			ID:     fmt.Sprintf("a%02d", i),
			Name:   fmt.Sprintf("Account %d", i),
			Status: statuses[i%3],
			Amount: (i * 37) % 100,
			Region: []string{"EU", "US"}[(i/4)%2],
		}
	}
	return rows
}

func accountColumns() *columns.Set[account] {
	return columns.MustSet([]columns.Column[account]{
		{ID: "name", Accessor: func(a account) any { return a.Name }},
		{ID: "status", Accessor: func(a account) any { return a.Status }, FilterVariant: columns.FilterSelect},
		{ID: "amount", Accessor: func(a account) any { return a.Amount }, Kind: values.KindNumber, FilterVariant: columns.FilterNumberRange, Aggregation: aggregates.Sum},
		{ID: "region", Accessor: func(a account) any { return a.Region }},
	})
}

func accountID(a account, _ int) string { return a.ID }

func newTable(t *testing.T, rows []account, mutate func(*Options[account])) *Table[account] {
	t.Helper()
	opts := Options[account]{
		Columns:  accountColumns(),
		Data:     rows,
		GetRowID: accountID,
		Features: AllFeatures[account](),
	}
	if mutate != nil {
		mutate(&opts)
	}
	tbl, err := New(context.Background(), opts)
	require.NoError(t, err)
	return tbl
}

func rowIDs(rows []Row[account]) []string {
	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}
	return ids
}

// allPages walks every page and returns the row ids in display order.
func allPages(tbl *Table[account]) []string {
	var ids []string
	for p := 0; ; p++ {
		tbl.SetPageIndex(p)
		m := tbl.Model()
		ids = append(ids, rowIDs(m.Rows)...)
		if !m.HasNext() {
			return ids
		}
	}
}

func TestNewValidatesOptions(t *testing.T) {
	_, err := New(context.Background(), Options[account]{})
	assert.ErrorIs(t, err, ErrNoColumns)

	adapter := persistence.New(persistence.NewMemoryStore(), persistence.Options{})
	defer adapter.Close()
	_, err = New(context.Background(), Options[account]{Columns: accountColumns(), Persistence: adapter})
	assert.ErrorIs(t, err, ErrNoPersistenceKey)
}

func TestDefaultRowIDIsPosition(t *testing.T) {
	tbl, err := New(context.Background(), Options[account]{
		Columns: accountColumns(),
		Data:    accounts(3),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"0", "1", "2"}, rowIDs(tbl.Model().Rows))
}

func TestSelectFilterScenario(t *testing.T) {
	rows := accounts(50)
	tbl := newTable(t, rows, nil)
	tbl.SetColumnFilter("status", "Active")

	var want []string
	for _, a := range rows {
		if a.Status == "Active" {
			want = append(want, a.ID)
		}
	}
	m := tbl.Model()
	assert.Equal(t, len(want), m.FilteredCount)
	assert.Equal(t, 2, m.PageCount)
	assert.Equal(t, want, allPages(tbl))
}

func TestPaginationRoundTrip(t *testing.T) {
	rows := accounts(50)
	for _, st := range []sorting.State{
		nil,
		{{ID: "amount", Desc: true}},
		{{ID: "region"}},
		{{ID: "region", Desc: true}, {ID: "amount"}},
	} {
		t.Run(fmt.Sprint(st), func(t *testing.T) {
			tbl := newTable(t, rows, func(o *Options[account]) {
				o.Initial.Sorting = st
			})
			want := sorting.Apply(rows, accountColumns(), st, sorting.Options{})
			ids := make([]string, len(want))
			for i, a := range want {
				ids[i] = a.ID
			}
			assert.Equal(t, ids, allPages(tbl))
		})
	}
}

func TestDisabledFeaturesPassThrough(t *testing.T) {
	rows := accounts(25)
	tbl := newTable(t, rows, func(o *Options[account]) {
		o.Features = Features[account]{}
		o.Initial = views.State{
			Sorting:       sorting.State{{ID: "amount"}},
			ColumnFilters: filtering.State{{ID: "status", Value: "Active"}},
			Grouping:      []string{"status"},
		}
	})
	m := tbl.Model()
	require.Len(t, m.Rows, 25)
	assert.Equal(t, 1, m.PageCount)
	for i, r := range m.Rows {
		assert.Equal(t, rows[i].ID, r.ID)
		assert.False(t, r.IsGroup())
	}
}

func TestPageIndexIsClamped(t *testing.T) {
	rows := accounts(50)
	tbl := newTable(t, rows, nil)
	tbl.SetPageIndex(4)
	assert.Equal(t, 4, tbl.Model().PageIndex)

	var notified []int
	tbl.Subscribe(func(st views.State) { notified = append(notified, st.Pagination.PageIndex) })

	tbl.SetData(rows[:15])
	m := tbl.Model()
	assert.Equal(t, 1, m.PageIndex)
	assert.Equal(t, 2, m.PageCount)
	assert.Len(t, m.Rows, 5)
	assert.Equal(t, 1, tbl.State().Pagination.PageIndex)
	assert.Equal(t, []int{1}, notified)

	// clamping is stable
	tbl.Model()
	assert.Equal(t, []int{1}, notified)
}

func TestFilterChangeResetsPage(t *testing.T) {
	tbl := newTable(t, accounts(50), nil)
	tbl.SetPageIndex(3)
	tbl.SetGlobalFilter("account 1")
	assert.Equal(t, 0, tbl.State().Pagination.PageIndex)
}

func TestSetPageSizeKeepsFirstRow(t *testing.T) {
	tbl := newTable(t, accounts(50), nil)
	tbl.SetPageIndex(3)
	tbl.SetPageSize(20)
	assert.Equal(t, 1, tbl.State().Pagination.PageIndex)
	assert.Equal(t, 20, tbl.State().Pagination.PageSize)
}

func TestPerSliceOwnership(t *testing.T) {
	external := sorting.State{{ID: "name"}}
	var changes []sorting.State
	tbl := newTable(t, accounts(10), func(o *Options[account]) {
		o.Controls.Sorting = control.Control[sorting.State]{
			Value:    func() sorting.State { return external },
			OnChange: func(next sorting.State) { changes = append(changes, next) },
		}
	})

	own := tbl.Ownership()
	assert.Equal(t, control.Controlled, own[persistence.SliceSorting])
	assert.Equal(t, control.Uncontrolled, own[persistence.SliceColumnFilters])

	tbl.ToggleSorting("amount")
	require.Len(t, changes, 1)
	assert.Equal(t, sorting.State{{ID: "name"}, {ID: "amount"}}, changes[0])
	assert.Equal(t, external, tbl.State().Sorting, "controlled slice follows the caller")

	external = changes[0]
	assert.Equal(t, external, tbl.State().Sorting)

	tbl.SetColumnFilter("status", "Active")
	assert.Equal(t, filtering.State{{ID: "status", Value: "Active"}}, tbl.State().ColumnFilters)
}

func TestGroupedModel(t *testing.T) {
	rows := accounts(30)
	tbl := newTable(t, rows, func(o *Options[account]) {
		o.Features.Pagination.Enabled = false
		o.Initial.Grouping = []string{"status"}
	})

	m := tbl.Model()
	require.Equal(t, []string{"status:Active", "status:Inactive", "status:Pending"}, rowIDs(m.Rows))
	want := map[string]float64{}
	for _, a := range rows {
		want[a.Status] += float64(a.Amount)
	}
	for _, r := range m.Rows {
		require.True(t, r.IsGroup())
		assert.False(t, r.Expanded)
		assert.Equal(t, want[r.Group.Value.(string)], r.Group.Aggregates["amount"])
		assert.Equal(t, r.Group.Aggregates["amount"], tbl.Cell(r, "amount"))
		assert.Equal(t, r.Group.Value, tbl.Cell(r, "status"))
	}
	assert.Equal(t, want["Active"]+want["Inactive"]+want["Pending"], m.Aggregates["amount"])

	tbl.ToggleExpanded("status:Active")
	tbl.SetSorting(control.Value(sorting.State{{ID: "amount", Desc: true}}))
	m = tbl.Model()
	require.Len(t, m.Rows, 13)
	assert.True(t, m.Rows[0].Expanded)
	prev := 101
	for _, r := range m.Rows[1:11] {
		require.False(t, r.IsGroup())
		assert.Equal(t, 1, r.Depth)
		assert.Equal(t, "Active", r.Data.Status)
		assert.LessOrEqual(t, r.Data.Amount, prev)
		prev = r.Data.Amount
	}

	tbl.SetSorting(control.Value(sorting.State{{ID: "status", Desc: true}}))
	m = tbl.Model()
	assert.Equal(t, "status:Pending", m.Rows[0].ID)
	assert.Equal(t, "status:Active", m.Rows[2].ID)

	tbl.ToggleExpanded("status:Active")
	assert.Len(t, tbl.Model().Rows, 3)
}

func TestGroupsOpenWithoutExpansion(t *testing.T) {
	tbl := newTable(t, accounts(30), func(o *Options[account]) {
		o.Features.Pagination.Enabled = false
		o.Features.Expansion.Enabled = false
		o.Initial.Grouping = []string{"status"}
	})
	m := tbl.Model()
	assert.Len(t, m.Rows, 33)
	tbl.ToggleExpanded("status:Active")
	assert.Len(t, tbl.Model().Rows, 33)
}

func TestGroupedPagesCoverDisplayRows(t *testing.T) {
	tbl := newTable(t, accounts(30), func(o *Options[account]) {
		o.Features.Expansion.ExpandGroups = true
		o.Initial.Grouping = []string{"status", "region"}
	})
	ids := allPages(tbl)
	assert.Equal(t, tbl.Model().RowCount, len(ids))
	seen := map[string]bool{}
	for _, id := range ids {
		assert.False(t, seen[id], id)
		seen[id] = true
	}
	assert.Equal(t, "status:Active", ids[0])
	assert.Equal(t, "status:Active>region:EU", ids[1])
}

func TestLeafExpansion(t *testing.T) {
	tbl := newTable(t, accounts(10), func(o *Options[account]) {
		o.Features.Expansion.CanExpand = func(a account) bool { return a.Status == "Active" }
	})
	tbl.ToggleExpanded("a00")
	tbl.ToggleExpanded("a01")
	rows := tbl.Model().Rows
	assert.True(t, rows[0].CanExpand)
	assert.True(t, rows[0].Expanded)
	assert.False(t, rows[1].CanExpand)
	assert.False(t, rows[1].Expanded)
}

func TestLeafIDsShapedLikeGroupPaths(t *testing.T) {
	rows := accounts(9)
	for i := range rows {
		rows[i].ID = fmt.Sprintf("status:%d", i)
	}
	tbl := newTable(t, rows, func(o *Options[account]) {
		o.Features.Pagination.Enabled = false
		o.Features.Expansion.ExpandGroups = true
		o.Features.Expansion.CanExpand = func(account) bool { return true }
		o.Initial.Grouping = []string{"status"}
	})

	tbl.ToggleExpanded("status:7")
	tbl.ToggleExpanded("status:Active")
	ex := tbl.State().Expanded
	assert.True(t, ex["status:7"], "leaf rows start collapsed")
	assert.False(t, ex["status:Active"], "groups start expanded")

	for _, r := range tbl.Model().Rows {
		if r.ID == "status:7" {
			assert.False(t, r.IsGroup())
			assert.True(t, r.Expanded)
		}
	}
}

func TestSelectionScopes(t *testing.T) {
	rows := accounts(50)
	tbl := newTable(t, rows, func(o *Options[account]) {
		o.Features.Selection.CanSelect = func(a account) bool { return a.Status != "Pending" }
	})

	tbl.ToggleAllRowsSelected(selection.ScopePage)
	sel := tbl.State().RowSelection
	assert.Equal(t, []string{"a00", "a01", "a03", "a04", "a06", "a07", "a09"}, sel.IDs())
	m := tbl.Model()
	assert.True(t, m.AllSelected)
	assert.False(t, m.Rows[2].CanSelect)
	assert.True(t, m.Rows[0].Selected)

	tbl.ToggleAll()
	assert.Empty(t, tbl.State().RowSelection.IDs())

	tbl.SetColumnFilter("status", "Active")
	tbl.ToggleAllRowsSelected(selection.ScopeFiltered)
	selected := tbl.SelectedRows()
	assert.Len(t, selected, 17)
	for _, a := range selected {
		assert.Equal(t, "Active", a.Status)
	}

	tbl.ToggleRowSelected("a02")
	assert.False(t, tbl.State().RowSelection.IsSelected("a02"), "pending rows cannot be selected")
	tbl.ToggleRowSelected("missing")
	assert.Len(t, tbl.SelectedRows(), 17)
}

func TestSingleSelection(t *testing.T) {
	tbl := newTable(t, accounts(10), func(o *Options[account]) {
		o.Features.Selection.Mode = selection.Single
	})
	tbl.ToggleRowSelected("a01")
	tbl.ToggleRowSelected("a04")
	assert.Equal(t, []string{"a04"}, tbl.State().RowSelection.IDs())
	tbl.ToggleAll()
	assert.Equal(t, []string{"a04"}, tbl.State().RowSelection.IDs())
}

func TestServerModeNeverRunsEngines(t *testing.T) {
	calls := 0
	counting := func(get func(account) any) func(account) any {
		return func(a account) any {
			calls++
			return get(a)
		}
	}
	set := columns.MustSet([]columns.Column[account]{
		{ID: "name", Accessor: counting(func(a account) any { return a.Name })},
		{ID: "status", Accessor: counting(func(a account) any { return a.Status }), FilterVariant: columns.FilterSelect},
		{ID: "amount", Accessor: counting(func(a account) any { return a.Amount }), Kind: values.KindNumber, Aggregation: aggregates.Sum},
	})

	var fetches []FetchParams
	f := AllFeatures[account]()
	f.ServerSide = ServerSideFeature{Enabled: true, OnFetch: func(p FetchParams) { fetches = append(fetches, p) }}
	tbl, err := New(context.Background(), Options[account]{
		Columns:  set,
		GetRowID: accountID,
		Features: f,
		Initial:  views.State{Grouping: []string{"status"}},
	})
	require.NoError(t, err)
	require.Len(t, fetches, 1)
	assert.Equal(t, FetchParams{Page: 1, PageSize: 10}, fetches[0])

	tbl.SetServerState(ServerState[account]{Loading: true})
	m := tbl.Model()
	assert.True(t, m.Loading)
	assert.True(t, m.Server)
	assert.Empty(t, m.Rows)

	tbl.SetServerState(ServerState[account]{Data: accounts(10), TotalCount: 50})
	m = tbl.Model()
	assert.Len(t, m.Rows, 10)
	assert.Equal(t, 5, m.PageCount)
	assert.Equal(t, 50, m.FilteredCount)
	assert.Nil(t, m.Root)

	tbl.ToggleSorting("amount")
	require.Len(t, fetches, 2)
	assert.Equal(t, "amount", fetches[1].SortBy)
	assert.Equal(t, "asc", fetches[1].SortOrder)

	tbl.SetPageIndex(0)
	assert.Len(t, fetches, 2, "unchanged parameters are not fetched again")

	tbl.SetPageIndex(2)
	require.Len(t, fetches, 3)
	assert.Equal(t, 3, fetches[2].Page)

	tbl.SetColumnFilter("status", "Active")
	require.Len(t, fetches, 4)
	assert.Equal(t, 1, fetches[3].Page)
	assert.Equal(t, filtering.State{{ID: "status", Value: "Active"}}, fetches[3].Filters)

	tbl.Refetch()
	assert.Len(t, fetches, 5)

	tbl.SetServerState(ServerState[account]{Error: assert.AnError})
	assert.Equal(t, assert.AnError, tbl.Model().Error)
	assert.Zero(t, calls)
}

func TestCallbackFailuresAreReportedOncePerDerivation(t *testing.T) {
	set := columns.MustSet([]columns.Column[account]{
		{ID: "name", Accessor: func(a account) any { return a.Name }},
		{ID: "boom", Accessor: func(account) any { panic("accessor") }},
		{ID: "amount", Accessor: func(a account) any { return a.Amount }, SortFn: func(a, b any) int { panic("comparator") }},
	})
	var diags []error
	tbl, err := New(context.Background(), Options[account]{
		Columns:      set,
		Data:         accounts(20),
		GetRowID:     accountID,
		Features:     AllFeatures[account](),
		Initial:      views.State{Sorting: sorting.State{{ID: "boom"}, {ID: "amount"}}},
		OnDiagnostic: func(err error) { diags = append(diags, err) },
	})
	require.NoError(t, err)

	m := tbl.Model()
	assert.Len(t, m.Rows, 10)
	require.Len(t, diags, 2)
	var funcs []string
	for _, err := range diags {
		var fe *columns.FuncError
		require.ErrorAs(t, err, &fe)
		funcs = append(funcs, fe.ColumnID+"/"+fe.Func)
	}
	assert.ElementsMatch(t, []string{"boom/" + columns.FuncAccessor, "amount/" + columns.FuncComparator}, funcs)

	tbl.Model()
	assert.Len(t, diags, 4)
}

func TestCallbackFailuresAreLoggedWithoutHook(t *testing.T) {
	var buf bytes.Buffer
	tbl, err := New(context.Background(), Options[account]{
		Columns:  accountColumns(),
		Data:     accounts(3),
		GetRowID: func(account, int) string { panic("no id") },
		Features: AllFeatures[account](),
		Logger:   zerolog.New(&buf),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"0", "1", "2"}, rowIDs(tbl.Model().Rows))
	assert.Contains(t, buf.String(), `"level":"warn"`)
	assert.Contains(t, buf.String(), columns.FuncRowID)
}

func TestColumnLayout(t *testing.T) {
	tbl := newTable(t, accounts(5), nil)
	ids := func() []string {
		var out []string
		for _, p := range tbl.Model().Columns {
			out = append(out, p.ID)
		}
		return out
	}
	assert.Equal(t, []string{"name", "status", "amount", "region"}, ids())

	tbl.PinColumn("status", layout.Right)
	assert.Equal(t, []string{"name", "amount", "region", "status"}, ids())
	tbl.PinColumn("status", layout.Unpinned)
	assert.Equal(t, []string{"name", "status", "amount", "region"}, ids())

	tbl.MoveColumn("region", 0)
	tbl.ToggleColumnVisibility("status")
	assert.Equal(t, []string{"region", "name", "amount"}, ids())

	tbl.ResizeColumn("name", 5000)
	assert.Equal(t, columns.DefaultMaxSize, tbl.Model().Columns[1].Width)
}

func TestHiddenColumnsAreNotFiltered(t *testing.T) {
	tbl := newTable(t, accounts(30), nil)
	tbl.SetColumnFilter("status", "Active")
	assert.Equal(t, 10, tbl.Model().FilteredCount)
	tbl.ToggleColumnVisibility("status")
	assert.Equal(t, 30, tbl.Model().FilteredCount)
}

func TestSubscribeAndReset(t *testing.T) {
	tbl := newTable(t, accounts(10), func(o *Options[account]) {
		o.Initial.GlobalFilter = "account"
	})
	var seen []views.State
	unsubscribe := tbl.Subscribe(func(st views.State) { seen = append(seen, st) })

	tbl.SetGlobalFilter("account 3")
	tbl.ToggleSorting("name")
	require.Len(t, seen, 2)
	assert.Equal(t, "account 3", seen[1].GlobalFilter)

	tbl.Reset()
	require.Len(t, seen, 3)
	assert.Equal(t, "account", tbl.State().GlobalFilter)
	assert.Empty(t, tbl.State().Sorting)

	unsubscribe()
	tbl.SetGlobalFilter("x")
	assert.Len(t, seen, 3)
}

func TestApplyKeepsUnsetSlices(t *testing.T) {
	tbl := newTable(t, accounts(30), nil)
	tbl.ToggleColumnVisibility("region")
	calls := 0
	tbl.Subscribe(func(views.State) { calls++ })

	tbl.Apply(views.State{
		Sorting:    sorting.State{{ID: "amount", Desc: true}},
		Pagination: paging.State{PageIndex: 1},
	})
	assert.Equal(t, 1, calls)

	st := tbl.State()
	assert.Equal(t, sorting.State{{ID: "amount", Desc: true}}, st.Sorting)
	assert.Equal(t, layout.Visibility{"region": false}, st.ColumnVisibility)
	assert.Equal(t, 1, tbl.Model().PageIndex)
}

func TestPersistenceHydration(t *testing.T) {
	ctx := context.Background()
	store := persistence.NewMemoryStore()
	adapter := persistence.New(store, persistence.Options{Debounce: time.Hour, MaxWait: time.Hour})
	defer adapter.Close()

	withStore := func(o *Options[account]) {
		o.Persistence = adapter
		o.PersistenceKey = "accounts"
	}
	first := newTable(t, accounts(10), withStore)
	first.ToggleSorting("amount")
	first.ToggleColumnVisibility("region")
	require.NoError(t, first.Flush(ctx))
	assert.NotEmpty(t, store.Keys("gridstate:accounts:"))

	second := newTable(t, accounts(10), withStore)
	assert.Equal(t, sorting.State{{ID: "amount"}}, second.State().Sorting)
	assert.Equal(t, layout.Visibility{"region": false}, second.State().ColumnVisibility)

	controlled := newTable(t, accounts(10), func(o *Options[account]) {
		withStore(o)
		o.Controls.Sorting = control.Control[sorting.State]{
			Value:    func() sorting.State { return nil },
			OnChange: func(sorting.State) {},
		}
	})
	assert.Empty(t, controlled.State().Sorting)
	assert.Equal(t, layout.Visibility{"region": false}, controlled.State().ColumnVisibility)

	second.Reset()
	assert.Empty(t, second.State().Sorting)
}
