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

// Package selection tracks the set of selected row ids. Whether all rows of
// a scope are selected is always derived from the set.
package selection

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/google/gridstate/core/columns"
)

// Mode is the selection mode.
type Mode int

const (
	Multiple Mode = iota
	Single
)

func (m Mode) String() string {
	if m == Single {
		return "single"
	}
	return "multiple"
}

// ParseMode parses a mode name. Unknown names yield Multiple.
func ParseMode(s string) Mode {
	if strings.EqualFold(strings.TrimSpace(s), "single") {
		return Single
	}
	return Multiple
}

// Scope is the row set "select all" applies to.
type Scope int

const (
	ScopePage Scope = iota
	ScopeFiltered
)

func (s Scope) String() string {
	switch s {
	case ScopePage:
		return "page"
	case ScopeFiltered:
		return "filtered"
	default:
		return fmt.Sprintf("Scope(%d)", int(s))
	}
}

// ParseScope parses a scope name. Unknown names yield ScopePage.
func ParseScope(s string) Scope {
	if strings.EqualFold(strings.TrimSpace(s), "filtered") {
		return ScopeFiltered
	}
	return ScopePage
}

// State is the set of selected row ids. Only true entries are kept.
type State map[string]bool

// IsSelected reports whether the row is selected.
func (s State) IsSelected(id string) bool {
	return s[id]
}

// IDs returns the selected ids in sorted order.
func (s State) IDs() []string {
	ids := make([]string, 0, len(s))
	for id, on := range s {
		if on {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}

// Entry pairs a row with its id.
type Entry[T any] struct {
	ID  string
	Row T
}

// Engine applies selection rules to a State. Every method returns a new
// State and leaves its argument untouched.
type Engine[T any] struct {
	Mode Mode
	// CanSelect excludes rows from individual and bulk selection. Nil means
	// every row can be selected. A panicking CanSelect excludes the row.
	CanSelect func(row T) bool
	Report    columns.Reporter
}

// Selectable reports whether the row may be selected.
func (e *Engine[T]) Selectable(en Entry[T]) (ok bool) {
	if e.CanSelect == nil {
		return true
	}
	defer func() {
		if r := recover(); r != nil {
			ok = false
			e.Report.Report(&columns.FuncError{Func: columns.FuncCanSelect, RowID: en.ID, Cause: r})
		}
	}()
	return e.CanSelect(en.Row)
}

// Toggle flips the selection of one row. Toggling a row that cannot be
// selected is a no-op. In single mode selecting a row clears the others.
func (e *Engine[T]) Toggle(s State, en Entry[T]) State {
	if !e.Selectable(en) {
		return s
	}
	if s.IsSelected(en.ID) {
		next := maps.Clone(s)
		delete(next, en.ID)
		return next
	}
	if e.Mode == Single {
		return State{en.ID: true}
	}
	next := maps.Clone(s)
	if next == nil {
		next = State{}
	}
	next[en.ID] = true
	return next
}

// Set selects or deselects one row, subject to the same rules as Toggle.
func (e *Engine[T]) Set(s State, en Entry[T], on bool) State {
	if s.IsSelected(en.ID) == on {
		return s
	}
	return e.Toggle(s, en)
}

// AllSelected reports whether every selectable row of scope is selected. A
// scope without selectable rows is never all selected.
func (e *Engine[T]) AllSelected(s State, scope []Entry[T]) bool {
	n := 0
	for _, en := range scope {
		if !e.Selectable(en) {
			continue
		}
		if !s.IsSelected(en.ID) {
			return false
		}
		n++
	}
	return n > 0
}

// SomeSelected reports whether any row of scope is selected.
func (e *Engine[T]) SomeSelected(s State, scope []Entry[T]) bool {
	for _, en := range scope {
		if s.IsSelected(en.ID) {
			return true
		}
	}
	return false
}

// ToggleAll selects every selectable row of scope, or deselects them when
// they are all selected already. Rows outside scope keep their selection.
// It is a no-op in single mode.
func (e *Engine[T]) ToggleAll(s State, scope []Entry[T]) State {
	if e.Mode == Single {
		return s
	}
	all := e.AllSelected(s, scope)
	next := maps.Clone(s)
	if next == nil {
		next = State{}
	}
	for _, en := range scope {
		if !e.Selectable(en) {
			continue
		}
		if all {
			delete(next, en.ID)
		} else {
			next[en.ID] = true
		}
	}
	return next
}

// Prune drops ids that are not in rows, for example after the data changed.
func Prune[T any](s State, rows []Entry[T]) State {
	keep := make(map[string]bool, len(rows))
	for _, en := range rows {
		keep[en.ID] = true
	}
	next := State{}
	for id, on := range s {
		if on && keep[id] {
			next[id] = true
		}
	}
	return next
}

// SelectedRows returns the selected rows among rows, in their order.
func SelectedRows[T any](s State, rows []Entry[T]) []T {
	var out []T
	for _, en := range rows {
		if s.IsSelected(en.ID) {
			out = append(out, en.Row)
		}
	}
	return out
}
