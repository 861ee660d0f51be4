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

// Package columns normalizes column declarations into the descriptor set
// every engine reads. A Column never inspects the row type itself; all
// access goes through its Accessor.
package columns

import (
	"fmt"
	"strings"

	"github.com/google/gridstate/core/aggregates"
	"github.com/google/gridstate/core/values"
)

// FilterVariant selects the predicate a column filter uses.
type FilterVariant int

const (
	FilterText FilterVariant = iota
	FilterSelect
	FilterMultiSelect
	FilterNumberRange
	FilterDateRange
	FilterBoolean
	FilterCustom
)

var filterVariantNames = map[FilterVariant]string{
	FilterText:        "text",
	FilterSelect:      "select",
	FilterMultiSelect: "multi-select",
	FilterNumberRange: "number-range",
	FilterDateRange:   "date-range",
	FilterBoolean:     "boolean",
	FilterCustom:      "custom",
}

// String returns the variant name used in schema files and URLs.
func (v FilterVariant) String() string {
	if s, ok := filterVariantNames[v]; ok {
		return s
	}
	return fmt.Sprintf("FilterVariant(%d)", int(v))
}

// ParseFilterVariant parses a variant name. Unknown names yield FilterText.
func ParseFilterVariant(s string) FilterVariant {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "select":
		return FilterSelect
	case "multi-select", "multiselect", "multi_select":
		return FilterMultiSelect
	case "range", "number-range", "numberrange":
		return FilterNumberRange
	case "date-range", "daterange", "date":
		return FilterDateRange
	case "checkbox", "boolean", "bool":
		return FilterBoolean
	case "custom":
		return FilterCustom
	default:
		return FilterText
	}
}

// Column declares one column over rows of type T. Zero-valued No* flags mean
// the feature is enabled for the column.
type Column[T any] struct {
	ID       string // must not contain any of the following characters: & = : ,
	Header   string
	Accessor func(row T) any
	Kind     values.Kind

	Size    int
	MinSize int
	MaxSize int

	NoSorting      bool
	NoFiltering    bool
	NoGlobalFilter bool
	NoGrouping     bool
	NoHiding       bool
	NoPinning      bool
	NoResizing     bool

	FilterVariant FilterVariant
	// FilterFn is used when FilterVariant is FilterCustom.
	FilterFn func(cell any, filter any) bool
	// SortFn overrides the kind-based comparator.
	SortFn func(a, b any) int

	Aggregation aggregates.Fn

	Meta map[string]any
}

// Default sizes, in pixels.
const (
	DefaultSize    = 180
	DefaultMinSize = 40
	DefaultMaxSize = 1000
)

// Widths of the header affordances a column may render. EffectiveMinSize
// never lets a column shrink below the sum of the ones it shows.
const (
	headerPadding     = 16
	sortIndicatorSize = 20
	filterMenuSize    = 24
	pinMenuSize       = 24
	resizeHandleSize  = 8
)

// HeaderControlsWidth returns the width the column's own header controls need.
func (c *Column[T]) HeaderControlsWidth() int {
	w := headerPadding
	if !c.NoSorting {
		w += sortIndicatorSize
	}
	if !c.NoFiltering {
		w += filterMenuSize
	}
	if !c.NoPinning {
		w += pinMenuSize
	}
	if !c.NoResizing {
		w += resizeHandleSize
	}
	return w
}

// EffectiveMinSize returns the lower clamp for the column width.
func (c *Column[T]) EffectiveMinSize() int {
	return max(c.MinSize, c.HeaderControlsWidth())
}

// ClampSize clamps a width to the column's bounds.
func (c *Column[T]) ClampSize(px int) int {
	lo := c.EffectiveMinSize()
	hi := max(c.MaxSize, lo)
	return min(max(px, lo), hi)
}

// Value runs the accessor for a row. A panicking accessor is reported as a
// *FuncError instead of unwinding the caller.
func (c *Column[T]) Value(row T) (v any, err error) {
	defer func() {
		if r := recover(); r != nil {
			v, err = nil, &FuncError{ColumnID: c.ID, Func: FuncAccessor, Cause: r}
		}
	}()
	return c.Accessor(row), nil
}

// Compare orders two non-nil cell values using SortFn when present. A
// panicking SortFn counts as equal and is reported as a *FuncError.
func (c *Column[T]) Compare(a, b any) (cmp int, err error) {
	if c.SortFn == nil {
		return values.Compare(a, b, c.Kind), nil
	}
	defer func() {
		if r := recover(); r != nil {
			cmp, err = 0, &FuncError{ColumnID: c.ID, Func: FuncComparator, Cause: r}
		}
	}()
	return c.SortFn(a, b), nil
}

// Filterable reports whether the column takes part in column filtering.
func (c *Column[T]) Filterable() bool {
	return !c.NoFiltering
}

// GloballyFilterable reports whether the global filter searches the column.
func (c *Column[T]) GloballyFilterable() bool {
	return !c.NoFiltering && !c.NoGlobalFilter
}
