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
	"github.com/google/gridstate/core/layout"
	"github.com/google/gridstate/core/paging"
	"github.com/google/gridstate/core/selection"
)

// Features toggles the engines of a table. A disabled feature keeps its
// stage in the pipeline as a pass-through.
type Features[T any] struct {
	Sorting    SortingFeature
	Filtering  FilteringFeature
	Pagination PaginationFeature
	Columns    layout.Features
	Selection  SelectionFeature[T]
	Grouping   GroupingFeature
	Expansion  ExpansionFeature[T]
	ServerSide ServerSideFeature
}

// SortingFeature configures sorting.
type SortingFeature struct {
	Enabled bool
	// Multi allows more than one sorted column.
	Multi bool
}

// FilterMode says where filters are evaluated.
type FilterMode int

const (
	// FilterClient evaluates filters over the table data.
	FilterClient FilterMode = iota
	// FilterManual keeps the filter state but expects the caller to supply
	// already filtered data.
	FilterManual
)

// FilteringFeature configures column and global filtering.
type FilteringFeature struct {
	Enabled bool
	Mode    FilterMode
	// NoGlobal disables the global filter.
	NoGlobal bool
}

// PaginationFeature configures pagination.
type PaginationFeature struct {
	Enabled         bool
	PageSize        int
	PageSizeOptions []int
}

func (p PaginationFeature) pageSize() int {
	if p.PageSize > 0 {
		return p.PageSize
	}
	return paging.DefaultPageSize
}

// SelectionFeature configures row selection.
type SelectionFeature[T any] struct {
	Enabled bool
	Mode    selection.Mode
	// Scope is the row set ToggleAllRowsSelected applies to by default.
	Scope     selection.Scope
	CanSelect func(row T) bool
}

// GroupingFeature configures grouping.
type GroupingFeature struct {
	Enabled bool
}

// ExpansionFeature configures expansion of group rows and leaf rows. When
// disabled, every group is shown expanded.
type ExpansionFeature[T any] struct {
	Enabled bool
	// CanExpand reports whether a leaf row has expandable detail. Nil means
	// no leaf row can expand.
	CanExpand func(row T) bool
	// ExpandGroups shows groups expanded unless explicitly collapsed.
	ExpandGroups bool
}

// ServerSideFeature delegates filtering, sorting and pagination to the
// caller. No engine runs over the data; OnFetch receives the parameters of
// every new request.
type ServerSideFeature struct {
	Enabled bool
	OnFetch func(FetchParams)
}

// AllFeatures returns every client-side feature enabled.
func AllFeatures[T any]() Features[T] {
	return Features[T]{
		Sorting:    SortingFeature{Enabled: true, Multi: true},
		Filtering:  FilteringFeature{Enabled: true},
		Pagination: PaginationFeature{Enabled: true, PageSize: paging.DefaultPageSize, PageSizeOptions: paging.DefaultPageSizeOptions},
		Columns:    layout.AllFeatures,
		Selection:  SelectionFeature[T]{Enabled: true},
		Grouping:   GroupingFeature{Enabled: true},
		Expansion:  ExpansionFeature[T]{Enabled: true},
	}
}
