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

// Package views defines the composite table state.
package views

import (
	"maps"
	"slices"

	"github.com/google/gridstate/core/filtering"
	"github.com/google/gridstate/core/layout"
	"github.com/google/gridstate/core/paging"
	"github.com/google/gridstate/core/selection"
	"github.com/google/gridstate/core/sorting"
)

// Expanded maps group row ids and leaf row ids to their expansion.
type Expanded map[string]bool

// State is the composite state of a table. Each field is one slice with its
// own ownership and persistence.
type State struct {
	Sorting          sorting.State     `json:"sorting"`
	ColumnFilters    filtering.State   `json:"columnFilters"`
	GlobalFilter     string            `json:"globalFilter"`
	Grouping         []string          `json:"grouping"`
	Expanded         Expanded          `json:"expanded"`
	RowSelection     selection.State   `json:"rowSelection"`
	Pagination       paging.State      `json:"pagination"`
	ColumnVisibility layout.Visibility `json:"columnVisibility"`
	ColumnSizing     layout.Sizing     `json:"columnSizing"`
	ColumnPinning    layout.Pinning    `json:"columnPinning"`
	ColumnOrder      layout.Order      `json:"columnOrder"`
}

// Layout returns the column layout part of s.
func (s State) Layout() layout.State {
	return layout.State{
		Visibility: s.ColumnVisibility,
		Sizing:     s.ColumnSizing,
		Pinning:    s.ColumnPinning,
		Order:      s.ColumnOrder,
	}
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	c := s
	c.Sorting = slices.Clone(s.Sorting)
	c.ColumnFilters = slices.Clone(s.ColumnFilters)
	c.Grouping = slices.Clone(s.Grouping)
	c.Expanded = maps.Clone(s.Expanded)
	c.RowSelection = maps.Clone(s.RowSelection)
	c.ColumnVisibility = maps.Clone(s.ColumnVisibility)
	c.ColumnSizing = maps.Clone(s.ColumnSizing)
	c.ColumnPinning = layout.Pinning{Left: slices.Clone(s.ColumnPinning.Left), Right: slices.Clone(s.ColumnPinning.Right)}
	c.ColumnOrder = slices.Clone(s.ColumnOrder)
	return c
}

// IsZero reports whether no slice of s is set.
func (s State) IsZero() bool {
	return s.Sorting == nil && s.ColumnFilters == nil && s.GlobalFilter == "" &&
		s.Grouping == nil && s.Expanded == nil && s.RowSelection == nil &&
		s.Pagination == (paging.State{}) &&
		s.ColumnVisibility == nil && s.ColumnSizing == nil &&
		s.ColumnPinning.Left == nil && s.ColumnPinning.Right == nil &&
		s.ColumnOrder == nil
}

// Overlay returns s with every non-zero slice of over applied.
func (s State) Overlay(over State) State {
	if over.Sorting != nil {
		s.Sorting = over.Sorting
	}
	if over.ColumnFilters != nil {
		s.ColumnFilters = over.ColumnFilters
	}
	if over.GlobalFilter != "" {
		s.GlobalFilter = over.GlobalFilter
	}
	if over.Grouping != nil {
		s.Grouping = over.Grouping
	}
	if over.Expanded != nil {
		s.Expanded = over.Expanded
	}
	if over.RowSelection != nil {
		s.RowSelection = over.RowSelection
	}
	if over.Pagination.PageIndex > 0 {
		s.Pagination.PageIndex = over.Pagination.PageIndex
	}
	if over.Pagination.PageSize > 0 {
		s.Pagination.PageSize = over.Pagination.PageSize
	}
	if over.ColumnVisibility != nil {
		s.ColumnVisibility = over.ColumnVisibility
	}
	if over.ColumnSizing != nil {
		s.ColumnSizing = over.ColumnSizing
	}
	if over.ColumnPinning.Left != nil || over.ColumnPinning.Right != nil {
		s.ColumnPinning = over.ColumnPinning
	}
	if over.ColumnOrder != nil {
		s.ColumnOrder = over.ColumnOrder
	}
	return s
}
