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

// Package layout tracks column visibility, widths, pinning and order. It
// never looks at row data.
package layout

import (
	"maps"
	"slices"

	"github.com/google/gridstate/core/columns"
	"github.com/google/gridstate/core/control"
)

// Visibility maps column ids to their visibility. Missing ids are visible.
type Visibility map[string]bool

// Sizing maps column ids to widths in pixels. Missing ids use the column's
// declared size.
type Sizing map[string]int

// Pinning lists the columns pinned to each edge, both in rendered
// left-to-right order.
type Pinning struct {
	Left  []string `json:"left"`
	Right []string `json:"right"`
}

// Side says where a column is pinned.
type Side int

const (
	Unpinned Side = iota
	Left
	Right
)

func (s Side) String() string {
	switch s {
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return "none"
	}
}

// ParseSide parses "left", "right" or anything else as Unpinned.
func ParseSide(s string) Side {
	switch s {
	case "left":
		return Left
	case "right":
		return Right
	default:
		return Unpinned
	}
}

// Side returns where id is pinned.
func (p Pinning) Side(id string) Side {
	switch {
	case slices.Contains(p.Left, id):
		return Left
	case slices.Contains(p.Right, id):
		return Right
	default:
		return Unpinned
	}
}

// IsPinned reports whether id is pinned to either edge.
func (p Pinning) IsPinned(id string) bool {
	return p.Side(id) != Unpinned
}

// Order is the display order of all columns, pinned ones included.
type Order []string

// State is the full layout of a table.
type State struct {
	Visibility Visibility `json:"columnVisibility"`
	Sizing     Sizing     `json:"columnSizing"`
	Pinning    Pinning    `json:"columnPinning"`
	Order      Order      `json:"columnOrder"`
}

// Features toggles the layout mutators. A disabled feature makes its
// mutator a no-op.
type Features struct {
	Visibility bool
	Resizing   bool
	Reordering bool
	Pinning    bool
}

// AllFeatures enables every layout mutator.
var AllFeatures = Features{Visibility: true, Resizing: true, Reordering: true, Pinning: true}

// Engine applies the column rules to layout updates.
type Engine[T any] struct {
	set      *columns.Set[T]
	features Features
}

// NewEngine returns an engine over the columns of set.
func NewEngine[T any](set *columns.Set[T], features Features) *Engine[T] {
	return &Engine[T]{set: set, features: features}
}

// Initial returns the layout before any mutation: every column visible at
// its declared size, nothing pinned, declaration order.
func (e *Engine[T]) Initial() State {
	return State{
		Visibility: Visibility{},
		Sizing:     Sizing{},
		Order:      Order(e.set.IDs()),
	}
}

// Visibility applies u to prev. Columns that cannot be hidden stay visible
// and unknown ids are dropped.
func (e *Engine[T]) Visibility(prev Visibility, u control.Updater[Visibility]) Visibility {
	if !e.features.Visibility {
		return prev
	}
	return e.NormalizeVisibility(u(maps.Clone(prev)))
}

// NormalizeVisibility enforces the visibility rules on v.
func (e *Engine[T]) NormalizeVisibility(v Visibility) Visibility {
	out := make(Visibility, len(v))
	for id, visible := range v {
		col, ok := e.set.Get(id)
		if !ok || (col.NoHiding && !visible) {
			continue
		}
		out[id] = visible
	}
	return out
}

// Sizing applies u to prev. Widths are clamped to the column bounds;
// columns that cannot be resized keep their declared size.
func (e *Engine[T]) Sizing(prev Sizing, u control.Updater[Sizing]) Sizing {
	if !e.features.Resizing {
		return prev
	}
	return e.NormalizeSizing(u(maps.Clone(prev)))
}

// NormalizeSizing enforces the sizing rules on s.
func (e *Engine[T]) NormalizeSizing(s Sizing) Sizing {
	out := make(Sizing, len(s))
	for id, px := range s {
		col, ok := e.set.Get(id)
		if !ok || col.NoResizing {
			continue
		}
		out[id] = col.ClampSize(px)
	}
	return out
}

// Pinning applies u to prev. Unknown and unpinnable columns are dropped; a
// column listed on both sides stays on the left.
func (e *Engine[T]) Pinning(prev Pinning, u control.Updater[Pinning]) Pinning {
	if !e.features.Pinning {
		return prev
	}
	return e.NormalizePinning(u(Pinning{Left: slices.Clone(prev.Left), Right: slices.Clone(prev.Right)}))
}

// NormalizePinning enforces the pinning rules on p.
func (e *Engine[T]) NormalizePinning(p Pinning) Pinning {
	seen := make(map[string]bool)
	keep := func(ids []string) []string {
		var out []string
		for _, id := range ids {
			col, ok := e.set.Get(id)
			if !ok || col.NoPinning || seen[id] {
				continue
			}
			seen[id] = true
			out = append(out, id)
		}
		return out
	}
	left := keep(p.Left)
	return Pinning{Left: left, Right: keep(p.Right)}
}

// Pin moves id to the given side. Its slot in the order is not touched, so
// unpinning returns the column where it was.
func Pin(p Pinning, id string, side Side) Pinning {
	out := Pinning{
		Left:  slices.DeleteFunc(slices.Clone(p.Left), func(s string) bool { return s == id }),
		Right: slices.DeleteFunc(slices.Clone(p.Right), func(s string) bool { return s == id }),
	}
	switch side {
	case Left:
		out.Left = append(out.Left, id)
	case Right:
		out.Right = append(out.Right, id)
	}
	return out
}

// Order applies u to prev. The result lists every column once: unknown ids
// are dropped and missing columns are appended in declaration order. Pinned
// columns cannot be reordered and keep the slot they had in prev.
func (e *Engine[T]) Order(prev Order, u control.Updater[Order], pinning Pinning) Order {
	prev = e.NormalizeOrder(prev)
	if !e.features.Reordering {
		return prev
	}
	next := e.NormalizeOrder(u(slices.Clone(prev)))

	out := make(Order, len(prev))
	var movable []string
	for _, id := range next {
		if !pinning.IsPinned(id) {
			movable = append(movable, id)
		}
	}
	for i, id := range prev {
		if pinning.IsPinned(id) {
			out[i] = id
			continue
		}
		out[i] = movable[0]
		movable = movable[1:]
	}
	return out
}

// NormalizeOrder makes o a permutation of the column ids.
func (e *Engine[T]) NormalizeOrder(o Order) Order {
	out := make(Order, 0, e.set.Len())
	seen := make(map[string]bool, e.set.Len())
	for _, id := range o {
		if e.set.Has(id) && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	for _, id := range e.set.IDs() {
		if !seen[id] {
			out = append(out, id)
		}
	}
	return out
}

// Move returns an updater moving id to position to of the order. Pinned
// columns do not move.
func Move(id string, to int) control.Updater[Order] {
	return func(prev Order) Order {
		from := slices.Index(prev, id)
		if from < 0 {
			return prev
		}
		next := slices.Delete(slices.Clone(prev), from, from+1)
		to = min(max(to, 0), len(next))
		return slices.Insert(next, to, id)
	}
}

// IsVisible reports whether id is shown under st.
func (e *Engine[T]) IsVisible(st State, id string) bool {
	col, ok := e.set.Get(id)
	if !ok {
		return false
	}
	if col.NoHiding {
		return true
	}
	v, ok := st.Visibility[id]
	return !ok || v
}

// Hidden returns a predicate reporting the hidden columns of st, for the
// filter and sort engines.
func (e *Engine[T]) Hidden(st State) func(id string) bool {
	return func(id string) bool { return !e.IsVisible(st, id) }
}

// Width returns the rendered width of id.
func (e *Engine[T]) Width(st State, id string) int {
	col, ok := e.set.Get(id)
	if !ok {
		return 0
	}
	if px, ok := st.Sizing[id]; ok && !col.NoResizing {
		return col.ClampSize(px)
	}
	return col.Size
}

// Placed is a visible column in rendered order.
type Placed struct {
	ID    string
	Side  Side
	Width int
	// Offset is the sticky offset of pinned columns, in pixels from their
	// edge. It is zero for unpinned columns.
	Offset int
}

// Ordered returns the visible columns in rendered order: left-pinned, then
// unpinned in st.Order, then right-pinned.
func (e *Engine[T]) Ordered(st State) []Placed {
	pin := e.NormalizePinning(st.Pinning)
	var left, center, right []Placed
	for _, id := range pin.Left {
		if e.IsVisible(st, id) {
			left = append(left, Placed{ID: id, Side: Left, Width: e.Width(st, id)})
		}
	}
	for _, id := range e.NormalizeOrder(st.Order) {
		if !pin.IsPinned(id) && e.IsVisible(st, id) {
			center = append(center, Placed{ID: id, Width: e.Width(st, id)})
		}
	}
	for _, id := range pin.Right {
		if e.IsVisible(st, id) {
			right = append(right, Placed{ID: id, Side: Right, Width: e.Width(st, id)})
		}
	}

	offset := 0
	for i := range left {
		left[i].Offset = offset
		offset += left[i].Width
	}
	offset = 0
	for i := len(right) - 1; i >= 0; i-- {
		right[i].Offset = offset
		offset += right[i].Width
	}
	return slices.Concat(left, center, right)
}

// VisibleIDs returns the ids of Ordered.
func (e *Engine[T]) VisibleIDs(st State) []string {
	placed := e.Ordered(st)
	ids := make([]string, len(placed))
	for i, p := range placed {
		ids[i] = p.ID
	}
	return ids
}

// TotalWidth returns the sum of the visible column widths.
func (e *Engine[T]) TotalWidth(st State) int {
	w := 0
	for _, p := range e.Ordered(st) {
		w += p.Width
	}
	return w
}
