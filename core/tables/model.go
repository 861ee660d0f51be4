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
	"errors"

	"github.com/rs/zerolog"

	"github.com/google/gridstate/core/aggregates"
	"github.com/google/gridstate/core/columns"
	"github.com/google/gridstate/core/control"
	"github.com/google/gridstate/core/filtering"
	"github.com/google/gridstate/core/grouping"
	"github.com/google/gridstate/core/layout"
	"github.com/google/gridstate/core/paging"
	"github.com/google/gridstate/core/selection"
	"github.com/google/gridstate/core/sorting"
	"github.com/google/gridstate/core/views"
)

// Row is one display row, either a group row or a leaf row.
type Row[T any] struct {
	ID string
	// Index is the position of a leaf row in the data, -1 for group rows.
	Index int
	Data  T
	Depth int
	// Group is set for group rows only.
	Group     *grouping.Node
	Selected  bool
	Expanded  bool
	CanExpand bool
	CanSelect bool
}

// IsGroup reports whether r is a group row.
func (r Row[T]) IsGroup() bool {
	return r.Group != nil
}

// Model is the derived row model of a table.
type Model[T any] struct {
	// Rows are the display rows of the current page.
	Rows []Row[T]
	// Columns are the visible columns in display order.
	Columns []layout.Placed
	// Root is the grouping tree of the filtered rows; nil in server-side
	// mode. When a page was selected without a full sort, the indices of an
	// ungrouped root keep data order.
	Root *grouping.Node
	// Aggregates are the aggregates over every filtered row.
	Aggregates map[string]any

	// FilteredCount is the number of leaf rows passing the filters. In
	// server-side mode it is the caller's total count.
	FilteredCount int
	// RowCount is the number of display rows before pagination.
	RowCount  int
	PageIndex int
	PageCount int
	PageSize  int

	AllSelected  bool
	SomeSelected bool

	Server  bool
	Loading bool
	Error   error

	filtered []selection.Entry[T]
}

// HasPrev reports whether a previous page exists.
func (m Model[T]) HasPrev() bool {
	return m.PageIndex > 0
}

// HasNext reports whether a next page exists.
func (m Model[T]) HasNext() bool {
	return m.PageIndex+1 < m.PageCount
}

func (m Model[T]) pageEntries() []selection.Entry[T] {
	var out []selection.Entry[T]
	for _, r := range m.Rows {
		if !r.IsGroup() {
			out = append(out, selection.Entry[T]{ID: r.ID, Row: r.Data})
		}
	}
	return out
}

type diagKey struct {
	column string
	fn     string
}

// diagnostics collects the callback failures of one derivation and passes
// each distinct column and callback on once.
type diagnostics struct {
	seen map[diagKey]bool
	hook func(error)
	log  zerolog.Logger
}

func (t *Table[T]) newDiagnostics() *diagnostics {
	return &diagnostics{seen: make(map[diagKey]bool), hook: t.onDiag, log: t.log}
}

func (d *diagnostics) report(err error) {
	if err == nil {
		return
	}
	var k diagKey
	var fe *columns.FuncError
	if errors.As(err, &fe) {
		k = diagKey{column: fe.ColumnID, fn: fe.Func}
	} else {
		k = diagKey{fn: err.Error()}
	}
	if d.seen[k] {
		return
	}
	d.seen[k] = true
	if d.hook != nil {
		d.hook(err)
		return
	}
	d.log.Warn().Err(err).Str("column", k.column).Str("func", k.fn).Msg("callback failed")
}

// Model derives the row model: filter, group, sort, aggregate and
// paginate, in that order. Disabled features pass rows through. A page
// index past the last page is clamped and written back to the pagination
// slice.
func (t *Table[T]) Model() Model[T] {
	d := t.newDiagnostics()
	t.sel.Report = d.report
	lst := t.layoutState()
	m := Model[T]{Columns: t.layout.Ordered(lst)}
	if t.features.ServerSide.Enabled {
		t.serverModel(&m, d)
	} else {
		t.clientModel(&m, d, lst)
	}
	t.markSelection(&m)
	return m
}

func (t *Table[T]) clientModel(m *Model[T], d *diagnostics, lst layout.State) {
	rowID := func(i int) string { return t.ids[i] }
	hidden := t.layout.Hidden(lst)

	idx := sorting.Positions(len(t.data))
	if f := t.features.Filtering; f.Enabled && f.Mode == FilterClient {
		opts := filtering.Options{Skip: hidden, RowID: rowID, Report: d.report}
		if !f.NoGlobal {
			opts.GlobalFilter = t.globalFilter.Get()
		}
		idx = filtering.Mask(t.data, t.set, t.columnFilters.Get(), opts).ToArray()
	}
	m.FilteredCount = len(idx)

	var groupBy []string
	if t.features.Grouping.Enabled {
		groupBy = grouping.GroupedColumns(t.set, t.grouping.Get())
	}
	gopts := grouping.Options{RowID: rowID, Report: d.report}
	root := grouping.Build(t.data, idx, t.set, groupBy, gopts)
	m.Root = root

	st := t.sortState()
	sopts := sorting.Options{Skip: hidden, RowID: rowID, Report: d.report}
	ps := t.pagination.Get()
	ps.PageSize = ps.Size()
	paginate := t.features.Pagination.Enabled

	ex := t.expanded.Get()
	var flat []Row[T]
	switch {
	case len(groupBy) == 0 && len(st) > 0 && paginate:
		// Only the rows up to the end of the page need ordering.
		clamped := paging.Clamp(ps, len(idx))
		start, end := paging.Bounds(clamped, len(idx))
		top := sorting.TopK(t.data, root.Indices, end, t.set, st, sopts)
		flat = make([]Row[T], 0, end-start)
		for _, pos := range top[start:end] {
			flat = append(flat, t.leaf(pos, 0, ex, d))
		}
		m.RowCount = len(idx)
		m.Rows = flat
		m.PageIndex = clamped.PageIndex
		m.PageCount = paging.PageCount(len(idx), clamped.PageSize)
		m.PageSize = clamped.PageSize
	default:
		if len(st) > 0 {
			sorting.SortTree(root, t.data, t.set, st, sopts)
		}
		flat = t.flatten(root, ex, d)
		m.RowCount = len(flat)
		if paginate {
			page := paging.Paginate(flat, ps)
			m.Rows = page.Rows
			m.PageIndex = page.PageIndex
			m.PageCount = page.PageCount
			m.PageSize = ps.PageSize
		} else {
			m.Rows = flat
			m.PageSize = len(flat)
			m.PageCount = min(len(flat), 1)
		}
	}

	if t.hasAggregates() {
		m.Aggregates = grouping.Aggregate(root, t.data, t.set, hidden, gopts)
	}

	m.filtered = make([]selection.Entry[T], len(idx))
	for j, pos := range idx {
		m.filtered[j] = selection.Entry[T]{ID: t.ids[pos], Row: t.data[pos]}
	}

	if cur := t.pagination.Get(); paginate && cur.PageIndex != m.PageIndex {
		t.pagination.Update(control.Value(paging.State{PageIndex: m.PageIndex, PageSize: cur.PageSize}))
		t.changed()
	}
}

// sortState returns the effective sort: nothing when sorting is disabled,
// only the first column without multi-sort.
func (t *Table[T]) sortState() sorting.State {
	if !t.features.Sorting.Enabled {
		return nil
	}
	st := t.sorting.Get()
	if !t.features.Sorting.Multi && len(st) > 1 {
		st = st[:1]
	}
	return st
}

func (t *Table[T]) hasAggregates() bool {
	for _, col := range t.set.All() {
		if col.Aggregation != aggregates.None {
			return true
		}
	}
	return false
}

func (t *Table[T]) flatten(root *grouping.Node, ex views.Expanded, d *diagnostics) []Row[T] {
	if len(root.Children) == 0 {
		out := make([]Row[T], 0, len(root.Indices))
		for _, pos := range root.Indices {
			out = append(out, t.leaf(pos, 0, ex, d))
		}
		return out
	}
	return t.appendGroups(nil, root, ex, d)
}

func (t *Table[T]) appendGroups(out []Row[T], n *grouping.Node, ex views.Expanded, d *diagnostics) []Row[T] {
	for _, g := range n.Children {
		open := t.isExpanded(ex, g.ID, true)
		out = append(out, Row[T]{
			ID:        g.ID,
			Index:     -1,
			Depth:     g.Depth,
			Group:     g,
			Expanded:  open,
			CanExpand: t.features.Expansion.Enabled,
		})
		if !open {
			continue
		}
		if len(g.Children) > 0 {
			out = t.appendGroups(out, g, ex, d)
			continue
		}
		for _, pos := range g.Indices {
			out = append(out, t.leaf(pos, g.Depth+1, ex, d))
		}
	}
	return out
}

func (t *Table[T]) leaf(pos uint32, depth int, ex views.Expanded, d *diagnostics) Row[T] {
	id, row := t.ids[pos], t.data[pos]
	canExpand := t.canExpand(row, id, d)
	return Row[T]{
		ID:        id,
		Index:     int(pos),
		Data:      row,
		Depth:     depth,
		CanExpand: canExpand,
		Expanded:  canExpand && t.isExpanded(ex, id, false),
	}
}

// canExpand runs the CanExpand callback. A panicking callback makes the row
// not expandable.
func (t *Table[T]) canExpand(row T, id string, d *diagnostics) (ok bool) {
	fn := t.features.Expansion.CanExpand
	if !t.features.Expansion.Enabled || fn == nil {
		return false
	}
	defer func() {
		if r := recover(); r != nil {
			ok = false
			d.report(&columns.FuncError{Func: columns.FuncCanExpand, RowID: id, Cause: r})
		}
	}()
	return fn(row)
}

func (t *Table[T]) serverModel(m *Model[T], d *diagnostics) {
	s := t.server
	m.Server = true
	m.Loading = s.Loading
	m.Error = s.Error

	ex := t.expanded.Get()
	rows := make([]Row[T], len(s.Data))
	for i, row := range s.Data {
		id := t.serverIDs[i]
		canExpand := t.canExpand(row, id, d)
		rows[i] = Row[T]{
			ID:        id,
			Index:     i,
			Data:      row,
			CanExpand: canExpand,
			Expanded:  canExpand && t.isExpanded(ex, id, false),
		}
	}
	page := paging.Manual(rows, t.pagination.Get(), s.TotalCount)
	m.Rows = page.Rows
	m.PageIndex = page.PageIndex
	m.PageCount = page.PageCount
	m.PageSize = t.pagination.Get().Size()
	m.RowCount = len(rows)
	m.FilteredCount = page.Total
	m.filtered = t.allEntries()
}

// markSelection sets the selection flags of the leaf rows and the bulk
// selection state of the configured scope.
func (t *Table[T]) markSelection(m *Model[T]) {
	if !t.features.Selection.Enabled {
		return
	}
	sel := t.rowSelection.Get()
	for i := range m.Rows {
		r := &m.Rows[i]
		if r.IsGroup() {
			continue
		}
		en := selection.Entry[T]{ID: r.ID, Row: r.Data}
		r.CanSelect = t.sel.Selectable(en)
		r.Selected = sel.IsSelected(r.ID)
	}
	scope := m.filtered
	if t.features.Selection.Scope == selection.ScopePage {
		scope = m.pageEntries()
	}
	m.AllSelected = t.sel.AllSelected(sel, scope)
	m.SomeSelected = t.sel.SomeSelected(sel, scope)
}

// scopeEntries returns the rows a bulk selection applies to.
func (t *Table[T]) scopeEntries(scope selection.Scope) []selection.Entry[T] {
	m := t.Model()
	if scope == selection.ScopePage {
		return m.pageEntries()
	}
	return m.filtered
}
