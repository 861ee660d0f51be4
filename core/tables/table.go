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

// Package tables composes the column, filter, sort, grouping, pagination,
// selection and layout engines into one table state machine.
//
// A Table owns one composite views.State. Every slice of it is either
// uncontrolled, held by the table, or controlled by the caller through a
// control.Control; ownership is resolved per slice when the table is
// built. The derived row model is computed on demand by Model.
//
// A Table is not safe for concurrent use.
package tables

import (
	"context"
	"errors"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/google/gridstate/core/columns"
	"github.com/google/gridstate/core/control"
	"github.com/google/gridstate/core/filtering"
	"github.com/google/gridstate/core/grouping"
	"github.com/google/gridstate/core/layout"
	"github.com/google/gridstate/core/paging"
	"github.com/google/gridstate/core/persistence"
	"github.com/google/gridstate/core/selection"
	"github.com/google/gridstate/core/sorting"
	"github.com/google/gridstate/core/views"
)

var (
	// ErrNoColumns is returned when no column set is given.
	ErrNoColumns = errors.New("table has no columns")
	// ErrNoPersistenceKey is returned by New for a persistence adapter
	// without a key.
	ErrNoPersistenceKey = errors.New("persistence requires a key")
)

// Controls lets the caller own individual state slices. A slice is
// controlled only when both Value and OnChange are set.
type Controls struct {
	Sorting          control.Control[sorting.State]
	ColumnFilters    control.Control[filtering.State]
	GlobalFilter     control.Control[string]
	Grouping         control.Control[[]string]
	Expanded         control.Control[views.Expanded]
	RowSelection     control.Control[selection.State]
	Pagination       control.Control[paging.State]
	ColumnVisibility control.Control[layout.Visibility]
	ColumnSizing     control.Control[layout.Sizing]
	ColumnPinning    control.Control[layout.Pinning]
	ColumnOrder      control.Control[layout.Order]
}

// Options configures a Table.
type Options[T any] struct {
	Columns *columns.Set[T]
	Data    []T
	// GetRowID derives the identity of a row. Defaults to the row position.
	GetRowID func(row T, index int) string
	Features Features[T]
	// Initial seeds the uncontrolled slices. Zero fields keep the defaults.
	Initial  views.State
	Controls Controls

	// Persistence restores uncontrolled slices at construction and saves
	// the state after every change.
	Persistence    *persistence.Adapter
	PersistenceKey string

	// OnDiagnostic receives isolated callback failures, at most once per
	// column and callback for each derivation. Without it failures are
	// logged at warn level.
	OnDiagnostic func(err error)
	Logger       zerolog.Logger
}

// ServerState is the result of a server-side fetch, supplied by the caller.
type ServerState[T any] struct {
	Data       []T
	TotalCount int
	Loading    bool
	Error      error
}

// Table is a data-grid state machine over rows of type T.
type Table[T any] struct {
	set      *columns.Set[T]
	features Features[T]
	getRowID func(row T, index int) string
	layout   *layout.Engine[T]
	sel      *selection.Engine[T]
	log      zerolog.Logger
	onDiag   func(error)

	data  []T
	ids   []string
	index map[string]int

	server    ServerState[T]
	serverIDs []string
	lastFetch *FetchParams

	initial views.State

	sorting          *control.Slice[sorting.State]
	columnFilters    *control.Slice[filtering.State]
	globalFilter     *control.Slice[string]
	grouping         *control.Slice[[]string]
	expanded         *control.Slice[views.Expanded]
	rowSelection     *control.Slice[selection.State]
	pagination       *control.Slice[paging.State]
	columnVisibility *control.Slice[layout.Visibility]
	columnSizing     *control.Slice[layout.Sizing]
	columnPinning    *control.Slice[layout.Pinning]
	columnOrder      *control.Slice[layout.Order]

	persist    *persistence.Adapter
	persistKey string

	subs   map[int]func(views.State)
	nextID int
}

// New builds a table. When a persistence adapter is set, the persisted
// slices of PersistenceKey are loaded and seed the uncontrolled slices.
// In server-side mode the first fetch is issued before New returns.
func New[T any](ctx context.Context, opts Options[T]) (*Table[T], error) {
	if opts.Columns == nil || opts.Columns.Len() == 0 {
		return nil, ErrNoColumns
	}
	if opts.Persistence != nil && opts.PersistenceKey == "" {
		return nil, ErrNoPersistenceKey
	}
	t := &Table[T]{
		set:        opts.Columns,
		features:   opts.Features,
		getRowID:   opts.GetRowID,
		layout:     layout.NewEngine(opts.Columns, opts.Features.Columns),
		log:        opts.Logger.With().Str("component", "table").Logger(),
		onDiag:     opts.OnDiagnostic,
		persist:    opts.Persistence,
		persistKey: opts.PersistenceKey,
		subs:       make(map[int]func(views.State)),
	}
	t.sel = &selection.Engine[T]{
		Mode:      opts.Features.Selection.Mode,
		CanSelect: opts.Features.Selection.CanSelect,
	}
	t.setData(opts.Data)

	t.initial = t.defaults().Overlay(opts.Initial)
	seed := t.initial
	if t.persist != nil {
		snap := t.persist.Load(ctx, t.persistKey)
		seed = hydrate(seed, snap)
		t.log.Debug().Str("key", t.persistKey).Int("slices", len(snap.Slices)).Msg("hydrated")
	}

	c := opts.Controls
	t.sorting = control.NewSlice(c.Sorting, seed.Sorting)
	t.columnFilters = control.NewSlice(c.ColumnFilters, seed.ColumnFilters)
	t.globalFilter = control.NewSlice(c.GlobalFilter, seed.GlobalFilter)
	t.grouping = control.NewSlice(c.Grouping, seed.Grouping)
	t.expanded = control.NewSlice(c.Expanded, seed.Expanded)
	t.rowSelection = control.NewSlice(c.RowSelection, seed.RowSelection)
	t.pagination = control.NewSlice(c.Pagination, seed.Pagination)
	t.columnVisibility = control.NewSlice(c.ColumnVisibility, seed.ColumnVisibility)
	t.columnSizing = control.NewSlice(c.ColumnSizing, seed.ColumnSizing)
	t.columnPinning = control.NewSlice(c.ColumnPinning, seed.ColumnPinning)
	t.columnOrder = control.NewSlice(c.ColumnOrder, seed.ColumnOrder)

	t.fetchIfChanged()
	return t, nil
}

func (t *Table[T]) defaults() views.State {
	l := t.layout.Initial()
	return views.State{
		Pagination:       paging.State{PageSize: t.features.Pagination.pageSize()},
		ColumnVisibility: l.Visibility,
		ColumnSizing:     l.Sizing,
		ColumnPinning:    l.Pinning,
		ColumnOrder:      l.Order,
	}
}

// hydrate applies the restored slices of snap to base.
func hydrate(base views.State, snap persistence.Snapshot) views.State {
	r := snap.State
	for _, sl := range snap.Slices {
		switch sl {
		case persistence.SliceSorting:
			base.Sorting = r.Sorting
		case persistence.SliceColumnFilters:
			base.ColumnFilters = r.ColumnFilters
		case persistence.SliceGlobalFilter:
			base.GlobalFilter = r.GlobalFilter
		case persistence.SliceGrouping:
			base.Grouping = r.Grouping
		case persistence.SliceExpanded:
			base.Expanded = r.Expanded
		case persistence.SliceRowSelection:
			base.RowSelection = r.RowSelection
		case persistence.SlicePagination:
			base.Pagination.PageIndex = r.Pagination.PageIndex
			if r.Pagination.PageSize > 0 {
				base.Pagination.PageSize = r.Pagination.PageSize
			}
		case persistence.SliceColumnVisibility:
			base.ColumnVisibility = r.ColumnVisibility
		case persistence.SliceColumnSizing:
			base.ColumnSizing = r.ColumnSizing
		case persistence.SliceColumnPinning:
			base.ColumnPinning = r.ColumnPinning
		case persistence.SliceColumnOrder:
			base.ColumnOrder = r.ColumnOrder
		}
	}
	return base
}

func (t *Table[T]) setData(data []T) {
	t.data = data
	t.ids = t.rowIDs(data)
	t.index = make(map[string]int, len(t.ids))
	for i, id := range t.ids {
		if _, dup := t.index[id]; !dup {
			t.index[id] = i
		}
	}
}

func (t *Table[T]) rowIDs(data []T) []string {
	ids := make([]string, len(data))
	d := t.newDiagnostics()
	for i, row := range data {
		ids[i] = t.rowID(row, i, d)
	}
	return ids
}

// rowID runs GetRowID. A panicking GetRowID falls back to the position.
func (t *Table[T]) rowID(row T, i int, d *diagnostics) (id string) {
	if t.getRowID == nil {
		return strconv.Itoa(i)
	}
	defer func() {
		if r := recover(); r != nil {
			id = strconv.Itoa(i)
			d.report(&columns.FuncError{Func: columns.FuncRowID, RowID: id, Cause: r})
		}
	}()
	return t.getRowID(row, i)
}

// Columns returns the column set.
func (t *Table[T]) Columns() *columns.Set[T] {
	return t.set
}

// Features returns the feature configuration.
func (t *Table[T]) Features() Features[T] {
	return t.features
}

// Ownership reports who owns each slice.
func (t *Table[T]) Ownership() map[persistence.Slice]control.Ownership {
	return map[persistence.Slice]control.Ownership{
		persistence.SliceSorting:          t.sorting.Ownership(),
		persistence.SliceColumnFilters:    t.columnFilters.Ownership(),
		persistence.SliceGlobalFilter:     t.globalFilter.Ownership(),
		persistence.SliceGrouping:         t.grouping.Ownership(),
		persistence.SliceExpanded:         t.expanded.Ownership(),
		persistence.SliceRowSelection:     t.rowSelection.Ownership(),
		persistence.SlicePagination:       t.pagination.Ownership(),
		persistence.SliceColumnVisibility: t.columnVisibility.Ownership(),
		persistence.SliceColumnSizing:     t.columnSizing.Ownership(),
		persistence.SliceColumnPinning:    t.columnPinning.Ownership(),
		persistence.SliceColumnOrder:      t.columnOrder.Ownership(),
	}
}

// State returns a copy of the composite state.
func (t *Table[T]) State() views.State {
	st := views.State{
		Sorting:          t.sorting.Get(),
		ColumnFilters:    t.columnFilters.Get(),
		GlobalFilter:     t.globalFilter.Get(),
		Grouping:         t.grouping.Get(),
		Expanded:         t.expanded.Get(),
		RowSelection:     t.rowSelection.Get(),
		Pagination:       t.pagination.Get(),
		ColumnVisibility: t.columnVisibility.Get(),
		ColumnSizing:     t.columnSizing.Get(),
		ColumnPinning:    t.columnPinning.Get(),
		ColumnOrder:      t.columnOrder.Get(),
	}
	return st.Clone()
}

func (t *Table[T]) layoutState() layout.State {
	return layout.State{
		Visibility: t.columnVisibility.Get(),
		Sizing:     t.columnSizing.Get(),
		Pinning:    t.columnPinning.Get(),
		Order:      t.columnOrder.Get(),
	}
}

// Subscribe registers fn to be called with the new state after every
// change. The returned function unregisters it.
func (t *Table[T]) Subscribe(fn func(views.State)) (unsubscribe func()) {
	id := t.nextID
	t.nextID++
	t.subs[id] = fn
	return func() { delete(t.subs, id) }
}

// changed runs after every mutation: it saves the state, notifies the
// subscribers and, in server-side mode, issues a fetch when the request
// parameters moved.
func (t *Table[T]) changed() {
	st := t.State()
	if t.persist != nil {
		t.persist.Save(t.persistKey, st)
	}
	ids := slices.Sorted(maps.Keys(t.subs))
	for _, id := range ids {
		if fn, ok := t.subs[id]; ok {
			fn(st.Clone())
		}
	}
	t.fetchIfChanged()
}

// resetPageIndex moves back to the first page after a change that
// reshapes the row set.
func (t *Table[T]) resetPageIndex() {
	if p := t.pagination.Get(); p.PageIndex != 0 {
		p.PageIndex = 0
		t.pagination.Update(control.Value(p))
	}
}

// SetSorting updates the sort state.
func (t *Table[T]) SetSorting(u control.Updater[sorting.State]) {
	t.sorting.Update(u)
	t.resetPageIndex()
	t.changed()
}

// ToggleSorting cycles the sort of one column: ascending, descending, off.
// Without multi-sort the column replaces any other sorted column.
func (t *Table[T]) ToggleSorting(id string) {
	col, ok := t.set.Get(id)
	if !ok || col.NoSorting || !t.features.Sorting.Enabled {
		return
	}
	multi := t.features.Sorting.Multi
	t.SetSorting(func(prev sorting.State) sorting.State {
		return prev.Toggle(id, multi)
	})
}

// SetColumnFilters updates the column filters.
func (t *Table[T]) SetColumnFilters(u control.Updater[filtering.State]) {
	t.columnFilters.Update(u)
	t.resetPageIndex()
	t.changed()
}

// SetColumnFilter sets the filter value of one column. An empty value
// removes the filter.
func (t *Table[T]) SetColumnFilter(id string, v any) {
	t.SetColumnFilters(func(prev filtering.State) filtering.State {
		if filtering.IsEmpty(v) {
			return prev.Without(id)
		}
		return prev.With(id, v)
	})
}

// SetGlobalFilter sets the global filter.
func (t *Table[T]) SetGlobalFilter(s string) {
	t.globalFilter.Update(control.Value(s))
	t.resetPageIndex()
	t.changed()
}

// SetGrouping updates the grouped columns, outermost first.
func (t *Table[T]) SetGrouping(u control.Updater[[]string]) {
	t.grouping.Update(u)
	t.resetPageIndex()
	t.changed()
}

// ToggleGrouping adds a column to the grouping, or removes it.
func (t *Table[T]) ToggleGrouping(id string) {
	col, ok := t.set.Get(id)
	if !ok || col.NoGrouping || !t.features.Grouping.Enabled {
		return
	}
	t.SetGrouping(func(prev []string) []string {
		if i := slices.Index(prev, id); i >= 0 {
			return slices.Delete(slices.Clone(prev), i, i+1)
		}
		return append(slices.Clone(prev), id)
	})
}

// SetExpanded updates the expansion state.
func (t *Table[T]) SetExpanded(u control.Updater[views.Expanded]) {
	t.expanded.Update(u)
	t.changed()
}

// ToggleExpanded flips the expansion of one group row or leaf row.
func (t *Table[T]) ToggleExpanded(id string) {
	if !t.features.Expansion.Enabled {
		return
	}
	t.SetExpanded(func(prev views.Expanded) views.Expanded {
		next := maps.Clone(prev)
		if next == nil {
			next = views.Expanded{}
		}
		next[id] = !t.isExpanded(prev, id, t.isGroupID(id))
		return next
	})
}

// isGroupID reports whether id names a group of the current grouping. Leaf
// ids that only look like group paths are not groups.
func (t *Table[T]) isGroupID(id string) bool {
	if !t.features.Grouping.Enabled || t.features.ServerSide.Enabled || id == "" {
		return false
	}
	groupBy := grouping.GroupedColumns(t.set, t.grouping.Get())
	if !slices.ContainsFunc(groupBy, func(g string) bool { return strings.HasPrefix(id, g+":") }) {
		return false
	}
	root := grouping.Build(t.data, sorting.Positions(len(t.data)), t.set, groupBy, grouping.Options{})
	return root.Find(id) != nil
}

// isExpanded resolves the effective expansion of a row. Without the
// expansion feature every group is open and no leaf is.
func (t *Table[T]) isExpanded(ex views.Expanded, id string, group bool) bool {
	if !t.features.Expansion.Enabled {
		return group
	}
	if v, ok := ex[id]; ok {
		return v
	}
	return group && t.features.Expansion.ExpandGroups
}

// SetRowSelection updates the row selection.
func (t *Table[T]) SetRowSelection(u control.Updater[selection.State]) {
	if !t.features.Selection.Enabled {
		return
	}
	t.rowSelection.Update(u)
	t.changed()
}

// ToggleRowSelected flips the selection of the row with the given id. Rows
// that cannot be selected, and unknown ids, are ignored.
func (t *Table[T]) ToggleRowSelected(id string) {
	en, ok := t.entry(id)
	if !ok {
		return
	}
	d := t.newDiagnostics()
	t.sel.Report = d.report
	t.SetRowSelection(func(prev selection.State) selection.State {
		return t.sel.Toggle(prev, en)
	})
}

// ToggleAllRowsSelected selects every selectable row of scope, or clears
// them when they are all selected.
func (t *Table[T]) ToggleAllRowsSelected(scope selection.Scope) {
	if !t.features.Selection.Enabled {
		return
	}
	entries := t.scopeEntries(scope)
	d := t.newDiagnostics()
	t.sel.Report = d.report
	t.SetRowSelection(func(prev selection.State) selection.State {
		return t.sel.ToggleAll(prev, entries)
	})
}

// ToggleAll toggles the rows of the configured selection scope.
func (t *Table[T]) ToggleAll() {
	t.ToggleAllRowsSelected(t.features.Selection.Scope)
}

func (t *Table[T]) entry(id string) (selection.Entry[T], bool) {
	if t.features.ServerSide.Enabled {
		if i := slices.Index(t.serverIDs, id); i >= 0 {
			return selection.Entry[T]{ID: id, Row: t.server.Data[i]}, true
		}
		return selection.Entry[T]{}, false
	}
	i, ok := t.index[id]
	if !ok {
		return selection.Entry[T]{}, false
	}
	return selection.Entry[T]{ID: id, Row: t.data[i]}, true
}

// SelectedRows returns the selected rows in data order.
func (t *Table[T]) SelectedRows() []T {
	return selection.SelectedRows(t.rowSelection.Get(), t.allEntries())
}

func (t *Table[T]) allEntries() []selection.Entry[T] {
	data, ids := t.data, t.ids
	if t.features.ServerSide.Enabled {
		data, ids = t.server.Data, t.serverIDs
	}
	out := make([]selection.Entry[T], len(data))
	for i := range data {
		out[i] = selection.Entry[T]{ID: ids[i], Row: data[i]}
	}
	return out
}

// SetPagination updates the pagination state.
func (t *Table[T]) SetPagination(u control.Updater[paging.State]) {
	t.pagination.Update(u)
	t.changed()
}

// SetPageIndex moves to a page. The index is clamped by the next Model.
func (t *Table[T]) SetPageIndex(i int) {
	t.SetPagination(func(prev paging.State) paging.State {
		prev.PageIndex = max(i, 0)
		return prev
	})
}

// SetPageSize changes the page size and keeps the first visible row on
// the new page.
func (t *Table[T]) SetPageSize(size int) {
	if size <= 0 {
		return
	}
	t.SetPagination(func(prev paging.State) paging.State {
		first := prev.PageIndex * prev.Size()
		return paging.State{PageIndex: first / size, PageSize: size}
	})
}

// NextPage moves one page forward.
func (t *Table[T]) NextPage() {
	t.SetPageIndex(t.pagination.Get().PageIndex + 1)
}

// PrevPage moves one page back.
func (t *Table[T]) PrevPage() {
	t.SetPageIndex(t.pagination.Get().PageIndex - 1)
}

// SetColumnVisibility updates the column visibility.
func (t *Table[T]) SetColumnVisibility(u control.Updater[layout.Visibility]) {
	t.columnVisibility.Update(func(prev layout.Visibility) layout.Visibility {
		return t.layout.Visibility(prev, u)
	})
	t.changed()
}

// ToggleColumnVisibility shows or hides one column.
func (t *Table[T]) ToggleColumnVisibility(id string) {
	visible := t.layout.IsVisible(t.layoutState(), id)
	t.SetColumnVisibility(func(prev layout.Visibility) layout.Visibility {
		next := maps.Clone(prev)
		if next == nil {
			next = layout.Visibility{}
		}
		next[id] = !visible
		return next
	})
}

// SetColumnSizing updates the column widths.
func (t *Table[T]) SetColumnSizing(u control.Updater[layout.Sizing]) {
	t.columnSizing.Update(func(prev layout.Sizing) layout.Sizing {
		return t.layout.Sizing(prev, u)
	})
	t.changed()
}

// ResizeColumn sets the width of one column, clamped to its bounds.
func (t *Table[T]) ResizeColumn(id string, px int) {
	t.SetColumnSizing(func(prev layout.Sizing) layout.Sizing {
		next := maps.Clone(prev)
		if next == nil {
			next = layout.Sizing{}
		}
		next[id] = px
		return next
	})
}

// SetColumnPinning updates the pinned columns.
func (t *Table[T]) SetColumnPinning(u control.Updater[layout.Pinning]) {
	t.columnPinning.Update(func(prev layout.Pinning) layout.Pinning {
		return t.layout.Pinning(prev, u)
	})
	t.changed()
}

// PinColumn pins a column to a side, or unpins it with layout.Unpinned.
func (t *Table[T]) PinColumn(id string, side layout.Side) {
	t.SetColumnPinning(func(prev layout.Pinning) layout.Pinning {
		return layout.Pin(prev, id, side)
	})
}

// SetColumnOrder updates the column order.
func (t *Table[T]) SetColumnOrder(u control.Updater[layout.Order]) {
	pinning := t.columnPinning.Get()
	t.columnOrder.Update(func(prev layout.Order) layout.Order {
		return t.layout.Order(prev, u, pinning)
	})
	t.changed()
}

// MoveColumn moves a column to position to of the order.
func (t *Table[T]) MoveColumn(id string, to int) {
	t.SetColumnOrder(layout.Move(id, to))
}

// Reset returns every slice to its initial value, ignoring what was
// restored from persistence.
func (t *Table[T]) Reset() {
	t.setAll(t.initial.Clone())
	t.changed()
}

// Apply sets every non-zero slice of st and notifies once. Slices left zero
// in st keep their current value. It restores a state decoded from a link
// onto a live table.
func (t *Table[T]) Apply(st views.State) {
	t.setAll(t.State().Overlay(st.Clone()))
	t.changed()
}

func (t *Table[T]) setAll(in views.State) {
	t.sorting.Update(control.Value(in.Sorting))
	t.columnFilters.Update(control.Value(in.ColumnFilters))
	t.globalFilter.Update(control.Value(in.GlobalFilter))
	t.grouping.Update(control.Value(in.Grouping))
	t.expanded.Update(control.Value(in.Expanded))
	t.rowSelection.Update(control.Value(in.RowSelection))
	t.pagination.Update(control.Value(in.Pagination))
	t.columnVisibility.Update(control.Value(in.ColumnVisibility))
	t.columnSizing.Update(control.Value(in.ColumnSizing))
	t.columnPinning.Update(control.Value(in.ColumnPinning))
	t.columnOrder.Update(control.Value(in.ColumnOrder))
}

// SetData replaces the rows. Selection is kept; the page index is clamped
// by the next Model.
func (t *Table[T]) SetData(data []T) {
	t.setData(data)
}

// SetColumns replaces the column set. The layout slices are normalized to
// the new columns.
func (t *Table[T]) SetColumns(set *columns.Set[T]) error {
	if set == nil || set.Len() == 0 {
		return ErrNoColumns
	}
	t.set = set
	t.layout = layout.NewEngine(set, t.features.Columns)
	t.columnOrder.Update(func(prev layout.Order) layout.Order {
		return t.layout.NormalizeOrder(prev)
	})
	t.columnPinning.Update(func(prev layout.Pinning) layout.Pinning {
		return t.layout.NormalizePinning(prev)
	})
	t.changed()
	return nil
}

// SetServerState supplies the result of a server-side fetch.
func (t *Table[T]) SetServerState(s ServerState[T]) {
	t.server = s
	t.serverIDs = t.rowIDs(s.Data)
}

// Flush writes pending persistence saves.
func (t *Table[T]) Flush(ctx context.Context) error {
	if t.persist == nil {
		return nil
	}
	return t.persist.Flush(ctx)
}

// Cell returns the value of one column for a row. Accessor failures are
// reported like in a derivation and yield nil.
func (t *Table[T]) Cell(row Row[T], id string) any {
	if row.IsGroup() {
		if row.Group.ColumnID == id {
			return row.Group.Value
		}
		return row.Group.Aggregates[id]
	}
	col, ok := t.set.Get(id)
	if !ok {
		return nil
	}
	v, err := col.Value(row.Data)
	if err != nil {
		var fe *columns.FuncError
		if errors.As(err, &fe) {
			fe.RowID = row.ID
		}
		t.newDiagnostics().report(err)
		return nil
	}
	return v
}
