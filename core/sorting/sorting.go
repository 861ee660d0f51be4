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

// Package sorting orders rows by a prioritized list of column sorts.
package sorting

import (
	"container/heap"
	"slices"

	"github.com/google/gridstate/core/columns"
	"github.com/google/gridstate/core/values"
)

// Sort is one entry of the sort state.
type Sort struct {
	ID   string `json:"id"`
	Desc bool   `json:"desc"`
}

// State is the sort state; earlier entries take priority.
type State []Sort

// Get returns the sort of a column and its priority.
func (s State) Get(id string) (Sort, int, bool) {
	for i, e := range s {
		if e.ID == id {
			return e, i, true
		}
	}
	return Sort{}, -1, false
}

// Toggle cycles a column through ascending, descending and unsorted. With
// multi unset the column replaces any other sort.
func (s State) Toggle(id string, multi bool) State {
	cur, i, ok := s.Get(id)
	var out State
	if multi {
		out = slices.Clone(s)
	} else if ok {
		out = State{cur}
		i = 0
	}
	switch {
	case !ok:
		return append(out, Sort{ID: id})
	case !cur.Desc:
		out[i].Desc = true
		return out
	default:
		return slices.Delete(out, i, i+1)
	}
}

// Options carries the inputs of a sort pass besides the sort state.
type Options struct {
	// Skip excludes columns from sorting; the orchestrator skips hidden
	// columns.
	Skip func(id string) bool
	// RowID names rows in reported errors.
	RowID func(i int) string
	// Report receives accessor and comparator failures.
	Report columns.Reporter
}

// sortableColumn holds a column reference and its sort direction.
type sortableColumn[T any] struct {
	col  *columns.Column[T]
	desc bool
}

func resolve[T any](set *columns.Set[T], st State, opts Options) []sortableColumn[T] {
	var out []sortableColumn[T]
	seen := make(map[string]bool, len(st))
	for _, s := range st {
		col, ok := set.Get(s.ID)
		if !ok || col.NoSorting || seen[s.ID] || (opts.Skip != nil && opts.Skip(s.ID)) {
			continue
		}
		seen[s.ID] = true
		out = append(out, sortableColumn[T]{col: col, desc: s.Desc})
	}
	return out
}

// cell is a sort key; missing cells (nil, failed accessor, or a value that
// does not coerce to the column kind) sort last in either direction.
type cell struct {
	v       any
	missing bool
}

// keyed is a row position with its precomputed sort keys.
type keyed struct {
	pos  uint32
	keys []cell
}

type sorter[T any] struct {
	cols     []sortableColumn[T]
	report   columns.Reporter
	reported []bool // one comparator failure report per column and pass
}

func newSorter[T any](rows []T, idx []uint32, cols []sortableColumn[T], opts Options) (*sorter[T], []keyed) {
	entries := make([]keyed, len(idx))
	for j, pos := range idx {
		keys := make([]cell, len(cols))
		for k, sc := range cols {
			v, err := sc.col.Value(rows[pos])
			if err != nil {
				if fe, ok := err.(*columns.FuncError); ok && opts.RowID != nil {
					fe.RowID = opts.RowID(int(pos))
				}
				opts.Report.Report(err)
				keys[k] = cell{missing: true}
				continue
			}
			missing := v == nil || (sc.col.SortFn == nil && !values.Coercible(v, sc.col.Kind))
			keys[k] = cell{v: v, missing: missing}
		}
		entries[j] = keyed{pos: pos, keys: keys}
	}
	return &sorter[T]{cols: cols, report: opts.Report, reported: make([]bool, len(cols))}, entries
}

// compare returns the multi-column order of two entries. The first non-zero
// column comparison wins; Desc inverts only its own column.
func (s *sorter[T]) compare(a, b keyed) int {
	for k, sc := range s.cols {
		ka, kb := a.keys[k], b.keys[k]
		switch {
		case ka.missing && kb.missing:
			continue
		case ka.missing:
			return 1
		case kb.missing:
			return -1
		}
		c, err := sc.col.Compare(ka.v, kb.v)
		if err != nil {
			if !s.reported[k] {
				s.reported[k] = true
				s.report.Report(err)
			}
			continue
		}
		if c == 0 {
			continue
		}
		if sc.desc {
			c = -c
		}
		if c < 0 {
			return -1
		}
		return 1
	}
	return 0
}

// SortIndices stably sorts row positions in place.
func SortIndices[T any](rows []T, idx []uint32, set *columns.Set[T], st State, opts Options) {
	cols := resolve(set, st, opts)
	if len(cols) == 0 || len(idx) < 2 {
		return
	}
	s, entries := newSorter(rows, idx, cols, opts)
	slices.SortStableFunc(entries, s.compare)
	for j, e := range entries {
		idx[j] = e.pos
	}
}

// Apply returns a stably sorted copy of rows.
func Apply[T any](rows []T, set *columns.Set[T], st State, opts Options) []T {
	idx := Positions(len(rows))
	SortIndices(rows, idx, set, st, opts)
	out := make([]T, len(idx))
	for j, pos := range idx {
		out[j] = rows[pos]
	}
	return out
}

// Positions returns the identity permutation of n rows.
func Positions(n int) []uint32 {
	idx := make([]uint32, n)
	for i := range idx {
		idx[i] = uint32(i)
	}
	return idx
}

// topKHeap keeps the k best entries seen so far with the worst on top.
type topKHeap[T any] struct {
	entries []keyed
	s       *sorter[T]
}

func (h *topKHeap[T]) Len() int { return len(h.entries) }

// order breaks comparator ties on position so the selection matches a
// stable sort.
func (h *topKHeap[T]) order(a, b keyed) int {
	if c := h.s.compare(a, b); c != 0 {
		return c
	}
	switch {
	case a.pos < b.pos:
		return -1
	case a.pos > b.pos:
		return 1
	}
	return 0
}

func (h *topKHeap[T]) Less(i, j int) bool { return h.order(h.entries[i], h.entries[j]) > 0 }
func (h *topKHeap[T]) Swap(i, j int)      { h.entries[i], h.entries[j] = h.entries[j], h.entries[i] }
func (h *topKHeap[T]) Push(x any)         { h.entries = append(h.entries, x.(keyed)) }
func (h *topKHeap[T]) Pop() any {
	old := h.entries
	n := len(old)
	x := old[n-1]
	h.entries = old[:n-1]
	return x
}

// TopK returns the first k positions of the stable sort of idx without
// sorting all of them. idx must be in ascending position order. It runs in
// O(n log k).
func TopK[T any](rows []T, idx []uint32, k int, set *columns.Set[T], st State, opts Options) []uint32 {
	if k <= 0 || len(idx) == 0 {
		return []uint32{}
	}
	cols := resolve(set, st, opts)
	if len(cols) == 0 || k >= len(idx) {
		out := slices.Clone(idx)
		SortIndices(rows, out, set, st, opts)
		return out[:min(k, len(out))]
	}

	s, entries := newSorter(rows, idx, cols, opts)
	h := &topKHeap[T]{entries: slices.Clone(entries[:k]), s: s}
	heap.Init(h)
	for _, e := range entries[k:] {
		if h.order(e, h.entries[0]) < 0 {
			h.entries[0] = e
			heap.Fix(h, 0)
		}
	}
	best := h.entries
	slices.SortFunc(best, h.order)
	out := make([]uint32, len(best))
	for j, e := range best {
		out[j] = e.pos
	}
	return out
}
