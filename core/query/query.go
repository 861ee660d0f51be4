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

// Package query encodes table states in URLs, so a view can be shared as a
// link and restored from it.
//
// Parameters:
//
//	table=accounts                 dataset name
//	sort=amount:desc,name          sort columns in priority order
//	filter:status=Active           one parameter per column filter
//	filter:amount=10..20           ranges, either side may be empty
//	filter:region=EU|US            lists
//	q=acme                         global filter
//	grouped=status,region          grouped columns, outermost first
//	columns=name:120,status        column order, with optional widths
//	hidden=region                  hidden columns
//	pinLeft=name, pinRight=amount  pinned columns
//	page=2, limit=50               one-based page and page size
//	selected=a1&selected=a2        selected row ids, repeated
//	expanded=status:Active         expanded row ids, repeated
package query

import (
	"maps"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/google/safehtml"

	"github.com/google/gridstate/core/columns"
	"github.com/google/gridstate/core/filtering"
	"github.com/google/gridstate/core/layout"
	"github.com/google/gridstate/core/paging"
	"github.com/google/gridstate/core/selection"
	"github.com/google/gridstate/core/sorting"
	"github.com/google/gridstate/core/values"
	"github.com/google/gridstate/core/views"
)

// Parameter names.
const (
	ParamTable    = "table"
	ParamSort     = "sort"
	ParamGlobal   = "q"
	ParamGrouped  = "grouped"
	ParamColumns  = "columns"
	ParamHidden   = "hidden"
	ParamPinLeft  = "pinLeft"
	ParamPinRight = "pinRight"
	ParamPage     = "page"
	ParamLimit    = "limit"
	ParamSelected = "selected"
	ParamExpanded = "expanded"

	filterPrefix = "filter:"
)

// VariantFunc returns the filter variant of a column. It decides how a
// filter parameter is parsed.
type VariantFunc func(id string) columns.FilterVariant

// Variants returns the VariantFunc of a column set. Unknown columns are
// text filtered.
func Variants[T any](set *columns.Set[T]) VariantFunc {
	return func(id string) columns.FilterVariant {
		if col, ok := set.Get(id); ok {
			return col.FilterVariant
		}
		return columns.FilterText
	}
}

// Encode returns the parameters describing st. Empty slices are omitted.
func Encode(st views.State) url.Values {
	q := url.Values{}

	if len(st.Sorting) > 0 {
		parts := make([]string, len(st.Sorting))
		for i, s := range st.Sorting {
			parts[i] = s.ID
			if s.Desc {
				parts[i] += ":desc"
			}
		}
		q.Set(ParamSort, strings.Join(parts, ","))
	}

	for _, f := range st.ColumnFilters {
		if v, ok := encodeFilter(f.Value); ok {
			q.Set(filterPrefix+f.ID, v)
		}
	}
	if g := strings.TrimSpace(st.GlobalFilter); g != "" {
		q.Set(ParamGlobal, st.GlobalFilter)
	}
	if len(st.Grouping) > 0 {
		q.Set(ParamGrouped, strings.Join(st.Grouping, ","))
	}

	if cols := encodeColumns(st.ColumnOrder, st.ColumnSizing); cols != "" {
		q.Set(ParamColumns, cols)
	}
	var hidden []string
	for id, visible := range st.ColumnVisibility {
		if !visible {
			hidden = append(hidden, id)
		}
	}
	if len(hidden) > 0 {
		slices.Sort(hidden)
		q.Set(ParamHidden, strings.Join(hidden, ","))
	}
	if len(st.ColumnPinning.Left) > 0 {
		q.Set(ParamPinLeft, strings.Join(st.ColumnPinning.Left, ","))
	}
	if len(st.ColumnPinning.Right) > 0 {
		q.Set(ParamPinRight, strings.Join(st.ColumnPinning.Right, ","))
	}

	if st.Pagination.PageIndex > 0 {
		q.Set(ParamPage, strconv.Itoa(st.Pagination.PageIndex+1))
	}
	if st.Pagination.PageSize > 0 {
		q.Set(ParamLimit, strconv.Itoa(st.Pagination.PageSize))
	}

	for _, id := range st.RowSelection.IDs() {
		q.Add(ParamSelected, id)
	}
	for _, id := range slices.Sorted(maps.Keys(st.Expanded)) {
		if st.Expanded[id] {
			q.Add(ParamExpanded, id)
		}
	}
	return q
}

// encodeColumns writes the column order, with the width of sized columns.
// Sized columns missing from the order are appended.
func encodeColumns(order layout.Order, sizing layout.Sizing) string {
	ids := slices.Clone([]string(order))
	for _, id := range slices.Sorted(maps.Keys(sizing)) {
		if !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		if w, ok := sizing[id]; ok {
			parts[i] = id + ":" + strconv.Itoa(w)
		} else {
			parts[i] = id
		}
	}
	return strings.Join(parts, ",")
}

// FormatFilter returns a filter value as it appears in a filter parameter,
// or "" for a value that filters nothing.
func FormatFilter(v any) string {
	s, _ := encodeFilter(v)
	return s
}

func encodeFilter(v any) (string, bool) {
	if filtering.IsEmpty(v) {
		return "", false
	}
	switch x := v.(type) {
	case string:
		return x, true
	case bool:
		return strconv.FormatBool(x), true
	case filtering.Range:
		return values.Text(x.Min) + ".." + values.Text(x.Max), true
	case *filtering.Range:
		return values.Text(x.Min) + ".." + values.Text(x.Max), true
	case map[string]any:
		return values.Text(x["min"]) + ".." + values.Text(x["max"]), true
	case []string:
		return strings.Join(x, "|"), true
	case []any:
		parts := make([]string, len(x))
		for i, item := range x {
			parts[i] = values.Text(item)
		}
		return strings.Join(parts, "|"), true
	default:
		return values.Text(v), true
	}
}

// Decode restores a state from parameters. Malformed parameters are
// skipped. variantOf may be nil, in which case filters stay strings.
func Decode(q url.Values, variantOf VariantFunc) views.State {
	var st views.State

	for _, part := range splitList(q.Get(ParamSort)) {
		id, dir, _ := strings.Cut(part, ":")
		if id == "" {
			continue
		}
		st.Sorting = append(st.Sorting, sorting.Sort{ID: id, Desc: strings.EqualFold(dir, "desc")})
	}

	var filterIDs []string
	for key := range q {
		if id, ok := strings.CutPrefix(key, filterPrefix); ok && id != "" {
			filterIDs = append(filterIDs, id)
		}
	}
	slices.Sort(filterIDs)
	for _, id := range filterIDs {
		variant := columns.FilterText
		if variantOf != nil {
			variant = variantOf(id)
		}
		if v := decodeFilter(q.Get(filterPrefix+id), variant); !filtering.IsEmpty(v) {
			st.ColumnFilters = st.ColumnFilters.With(id, v)
		}
	}
	st.GlobalFilter = q.Get(ParamGlobal)
	st.Grouping = splitList(q.Get(ParamGrouped))

	for _, part := range splitList(q.Get(ParamColumns)) {
		// A width suffix is only taken when it parses; otherwise the whole
		// part is the column id.
		if i := strings.LastIndex(part, ":"); i != -1 {
			if w, err := strconv.Atoi(part[i+1:]); err == nil && w > 0 {
				if st.ColumnSizing == nil {
					st.ColumnSizing = layout.Sizing{}
				}
				st.ColumnSizing[part[:i]] = w
				part = part[:i]
			}
		}
		st.ColumnOrder = append(st.ColumnOrder, part)
	}
	for _, id := range splitList(q.Get(ParamHidden)) {
		if st.ColumnVisibility == nil {
			st.ColumnVisibility = layout.Visibility{}
		}
		st.ColumnVisibility[id] = false
	}
	st.ColumnPinning.Left = splitList(q.Get(ParamPinLeft))
	st.ColumnPinning.Right = splitList(q.Get(ParamPinRight))

	if page, err := strconv.Atoi(q.Get(ParamPage)); err == nil && page > 1 {
		st.Pagination.PageIndex = page - 1
	}
	if limit, err := strconv.Atoi(q.Get(ParamLimit)); err == nil && limit > 0 {
		st.Pagination.PageSize = limit
	}

	for _, id := range q[ParamSelected] {
		if id == "" {
			continue
		}
		if st.RowSelection == nil {
			st.RowSelection = selection.State{}
		}
		st.RowSelection[id] = true
	}
	for _, id := range q[ParamExpanded] {
		if id == "" {
			continue
		}
		if st.Expanded == nil {
			st.Expanded = views.Expanded{}
		}
		st.Expanded[id] = true
	}
	return st
}

func decodeFilter(raw string, variant columns.FilterVariant) any {
	switch variant {
	case columns.FilterNumberRange, columns.FilterDateRange:
		lo, hi, ok := strings.Cut(raw, "..")
		if !ok {
			lo, hi, _ = strings.Cut(raw, "|")
		}
		return filtering.Range{Min: orNil(lo), Max: orNil(hi)}
	case columns.FilterMultiSelect:
		return splitOn(raw, "|")
	case columns.FilterSelect:
		if strings.Contains(raw, "|") {
			return splitOn(raw, "|")
		}
		return raw
	case columns.FilterBoolean:
		if b, ok := values.ParseBool(raw); ok {
			return b
		}
		return raw
	default:
		return raw
	}
}

func orNil(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}

func splitList(s string) []string {
	return splitOn(s, ",")
}

func splitOn(s, sep string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, sep) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Query is the table state addressed by a URL.
type Query struct {
	// Base path (e.g., "/tables/accounts")
	Path  string
	Table string
	State views.State

	variantOf VariantFunc
}

// NewQuery creates a Query from a URL
func NewQuery(u *url.URL, variantOf VariantFunc) *Query {
	q := u.Query()
	return &Query{
		Path:      u.Path,
		Table:     q.Get(ParamTable),
		State:     Decode(q, variantOf),
		variantOf: variantOf,
	}
}

// Clone creates a deep copy of the Query
func (s *Query) Clone() *Query {
	return &Query{
		Path:      s.Path,
		Table:     s.Table,
		State:     s.State.Clone(),
		variantOf: s.variantOf,
	}
}

// ToURL converts the Query back to a URL string
func (s *Query) ToURL() string {
	u := &url.URL{Path: s.Path}
	q := Encode(s.State)
	if s.Table != "" {
		q.Set(ParamTable, s.Table)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// ToSafeURL converts the Query to a safehtml.URL
func (s *Query) ToSafeURL() safehtml.URL {
	return safehtml.URLSanitized(s.ToURL())
}

// with returns the URL of a modified copy of s.
func (s *Query) with(fn func(st *views.State)) safehtml.URL {
	next := s.Clone()
	fn(&next.State)
	return next.ToSafeURL()
}

// firstPage moves back to the first page after a change reshaping the rows.
func firstPage(st *views.State) {
	st.Pagination.PageIndex = 0
}

// WithPage returns a URL showing page index i.
func (s *Query) WithPage(i int) safehtml.URL {
	return s.with(func(st *views.State) { st.Pagination.PageIndex = max(i, 0) })
}

// WithLimit returns a URL with a different page size
func (s *Query) WithLimit(limit int) safehtml.URL {
	return s.with(func(st *views.State) {
		st.Pagination = paging.State{PageSize: max(limit, 0)}
	})
}

// WithSortToggled returns a URL with the sort of column cycled through
// ascending, descending and off.
func (s *Query) WithSortToggled(column string, multi bool) safehtml.URL {
	return s.with(func(st *views.State) {
		st.Sorting = st.Sorting.Toggle(column, multi)
		firstPage(st)
	})
}

// WithFilter returns a URL filtering column by value. An empty value removes
// the filter.
func (s *Query) WithFilter(column string, value any) safehtml.URL {
	return s.with(func(st *views.State) {
		st.ColumnFilters = st.ColumnFilters.With(column, value)
		firstPage(st)
	})
}

// WithGlobalFilter returns a URL with a different global filter.
func (s *Query) WithGlobalFilter(text string) safehtml.URL {
	return s.with(func(st *views.State) {
		st.GlobalFilter = text
		firstPage(st)
	})
}

// WithGroupedColumnToggled returns a URL with the grouped column toggled.
// If the column is already grouped, it's removed from grouping.
// If the column is not grouped, it's added to the end of the grouping order.
func (s *Query) WithGroupedColumnToggled(column string) safehtml.URL {
	return s.with(func(st *views.State) {
		if i := slices.Index(st.Grouping, column); i >= 0 {
			st.Grouping = slices.Delete(st.Grouping, i, i+1)
		} else {
			st.Grouping = append(st.Grouping, column)
		}
		firstPage(st)
	})
}

// WithFilterAndUngrouped returns a URL that filters the column by value and
// removes it from grouping, for drilling into one group.
func (s *Query) WithFilterAndUngrouped(column string, value any) safehtml.URL {
	return s.with(func(st *views.State) {
		st.ColumnFilters = st.ColumnFilters.With(column, value)
		st.Grouping = slices.DeleteFunc(st.Grouping, func(id string) bool { return id == column })
		firstPage(st)
	})
}

// WithColumnToggled returns a URL with the column shown or hidden.
func (s *Query) WithColumnToggled(column string) safehtml.URL {
	return s.with(func(st *views.State) {
		if st.ColumnVisibility == nil {
			st.ColumnVisibility = layout.Visibility{}
		}
		if s.IsColumnVisible(column) {
			st.ColumnVisibility[column] = false
		} else {
			delete(st.ColumnVisibility, column)
		}
	})
}

// WithPinned returns a URL with the column pinned to side.
func (s *Query) WithPinned(column string, side layout.Side) safehtml.URL {
	return s.with(func(st *views.State) {
		st.ColumnPinning = layout.Pin(st.ColumnPinning, column, side)
	})
}

// WithExpandedToggled returns a URL with the row expansion toggled
func (s *Query) WithExpandedToggled(id string) safehtml.URL {
	return s.with(func(st *views.State) {
		if st.Expanded[id] {
			delete(st.Expanded, id)
			return
		}
		if st.Expanded == nil {
			st.Expanded = views.Expanded{}
		}
		st.Expanded[id] = true
	})
}

// WithSelectedToggled returns a URL with the row selection toggled.
func (s *Query) WithSelectedToggled(id string) safehtml.URL {
	return s.with(func(st *views.State) {
		if st.RowSelection.IsSelected(id) {
			delete(st.RowSelection, id)
			return
		}
		if st.RowSelection == nil {
			st.RowSelection = selection.State{}
		}
		st.RowSelection[id] = true
	})
}

// IsColumnVisible reports whether the column is not hidden.
func (s *Query) IsColumnVisible(column string) bool {
	v, ok := s.State.ColumnVisibility[column]
	return !ok || v
}

// IsColumnGrouped checks if a column is in the grouped columns list
func (s *Query) IsColumnGrouped(column string) bool {
	return slices.Contains(s.State.Grouping, column)
}

// IsExpanded checks if a row id is in the expanded list
func (s *Query) IsExpanded(id string) bool {
	return s.State.Expanded[id]
}
