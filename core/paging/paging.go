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

// Package paging slices a row set into pages.
package paging

// DefaultPageSize is used when a state carries no page size.
const DefaultPageSize = 10

// DefaultPageSizeOptions are the page sizes offered by renderers.
var DefaultPageSizeOptions = []int{10, 20, 50, 100}

// State is the pagination state. PageIndex is zero-based.
type State struct {
	PageIndex int `json:"pageIndex"`
	PageSize  int `json:"pageSize"`
}

// Size returns the page size, DefaultPageSize when unset.
func (s State) Size() int {
	if s.PageSize <= 0 {
		return DefaultPageSize
	}
	return s.PageSize
}

// PageCount returns ceil(total / size). An empty set has zero pages.
func PageCount(total, size int) int {
	if total <= 0 {
		return 0
	}
	if size <= 0 {
		size = DefaultPageSize
	}
	return (total + size - 1) / size
}

// Clamp moves the page index into [0, max(pageCount-1, 0)].
func Clamp(s State, total int) State {
	s.PageSize = s.Size()
	last := max(PageCount(total, s.PageSize)-1, 0)
	s.PageIndex = min(max(s.PageIndex, 0), last)
	return s
}

// Page is one page of a row set.
type Page[T any] struct {
	Rows      []T
	PageIndex int
	PageCount int
	Total     int
}

// HasPrev reports whether a previous page exists.
func (p Page[T]) HasPrev() bool {
	return p.PageIndex > 0
}

// HasNext reports whether a next page exists.
func (p Page[T]) HasNext() bool {
	return p.PageIndex+1 < p.PageCount
}

// Bounds returns the half-open range of row positions covered by the page
// after clamping.
func Bounds(s State, total int) (start, end int) {
	s = Clamp(s, total)
	start = s.PageIndex * s.PageSize
	end = min(start+s.PageSize, total)
	return min(start, total), end
}

// Paginate returns the page of rows selected by s. The page index is
// clamped first.
func Paginate[T any](rows []T, s State) Page[T] {
	s = Clamp(s, len(rows))
	start, end := Bounds(s, len(rows))
	return Page[T]{
		Rows:      rows[start:end],
		PageIndex: s.PageIndex,
		PageCount: PageCount(len(rows), s.PageSize),
		Total:     len(rows),
	}
}

// Manual returns a page of rows that the caller already sliced, for
// server-side pagination. The page count comes from the caller's total.
func Manual[T any](rows []T, s State, total int) Page[T] {
	total = max(total, 0)
	return Page[T]{
		Rows:      rows,
		PageIndex: max(s.PageIndex, 0),
		PageCount: PageCount(total, s.Size()),
		Total:     total,
	}
}
