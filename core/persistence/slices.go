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

package persistence

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/google/gridstate/core/filtering"
	"github.com/google/gridstate/core/layout"
	"github.com/google/gridstate/core/selection"
	"github.com/google/gridstate/core/sorting"
	"github.com/google/gridstate/core/views"
)

// Slice names one persistable part of the table state. Each slice is stored
// under its own key.
type Slice string

const (
	SliceSorting          Slice = "sorting"
	SliceColumnFilters    Slice = "columnFilters"
	SliceGlobalFilter     Slice = "globalFilter"
	SliceGrouping         Slice = "grouping"
	SliceExpanded         Slice = "expanded"
	SliceRowSelection     Slice = "rowSelection"
	SlicePagination       Slice = "pagination"
	SliceColumnVisibility Slice = "columnVisibility"
	SliceColumnSizing     Slice = "columnSizing"
	SliceColumnPinning    Slice = "columnPinning"
	SliceColumnOrder      Slice = "columnOrder"
)

// AllSlices lists every persistable slice.
var AllSlices = []Slice{
	SliceSorting,
	SliceColumnFilters,
	SliceGlobalFilter,
	SliceGrouping,
	SliceExpanded,
	SliceRowSelection,
	SlicePagination,
	SliceColumnVisibility,
	SliceColumnSizing,
	SliceColumnPinning,
	SliceColumnOrder,
}

// ParseSlice returns the slice with the given name.
func ParseSlice(s string) (Slice, bool) {
	for _, sl := range AllSlices {
		if string(sl) == s {
			return sl, true
		}
	}
	return "", false
}

// codec reads and writes one slice of a views.State. decode reports false
// when the stored value has the wrong shape and leaves st untouched. Fields
// of the wrong type inside a well-shaped value are skipped.
type codec struct {
	get    func(st *views.State) any
	decode func(r gjson.Result, st *views.State) bool
}

var codecs = map[Slice]codec{
	SliceSorting: {
		get: func(st *views.State) any { return st.Sorting },
		decode: func(r gjson.Result, st *views.State) bool {
			if !r.IsArray() {
				return false
			}
			var out sorting.State
			for _, item := range r.Array() {
				id := item.Get("id")
				if id.Type != gjson.String || id.Str == "" {
					continue
				}
				out = append(out, sorting.Sort{ID: id.Str, Desc: item.Get("desc").Type == gjson.True})
			}
			st.Sorting = out
			return true
		},
	},
	SliceColumnFilters: {
		get: func(st *views.State) any { return st.ColumnFilters },
		decode: func(r gjson.Result, st *views.State) bool {
			if !r.IsArray() {
				return false
			}
			var out filtering.State
			for _, item := range r.Array() {
				id := item.Get("id")
				if id.Type != gjson.String || id.Str == "" {
					continue
				}
				out = out.With(id.Str, item.Get("value").Value())
			}
			st.ColumnFilters = out
			return true
		},
	},
	SliceGlobalFilter: {
		get: func(st *views.State) any { return st.GlobalFilter },
		decode: func(r gjson.Result, st *views.State) bool {
			if r.Type != gjson.String {
				return false
			}
			st.GlobalFilter = r.Str
			return true
		},
	},
	SliceGrouping: {
		get: func(st *views.State) any { return st.Grouping },
		decode: func(r gjson.Result, st *views.State) bool {
			ids, ok := stringList(r)
			if ok {
				st.Grouping = ids
			}
			return ok
		},
	},
	SliceExpanded: {
		get: func(st *views.State) any { return st.Expanded },
		decode: func(r gjson.Result, st *views.State) bool {
			m, ok := boolMap(r)
			if ok {
				st.Expanded = m
			}
			return ok
		},
	},
	SliceRowSelection: {
		get: func(st *views.State) any { return st.RowSelection },
		decode: func(r gjson.Result, st *views.State) bool {
			m, ok := boolMap(r)
			if !ok {
				return false
			}
			sel := make(selection.State, len(m))
			for id, on := range m {
				if on {
					sel[id] = true
				}
			}
			st.RowSelection = sel
			return true
		},
	},
	SlicePagination: {
		get: func(st *views.State) any { return st.Pagination },
		decode: func(r gjson.Result, st *views.State) bool {
			if !r.IsObject() {
				return false
			}
			if idx := r.Get("pageIndex"); idx.Type == gjson.Number && idx.Int() >= 0 {
				st.Pagination.PageIndex = int(idx.Int())
			}
			if size := r.Get("pageSize"); size.Type == gjson.Number && size.Int() > 0 {
				st.Pagination.PageSize = int(size.Int())
			}
			return true
		},
	},
	SliceColumnVisibility: {
		get: func(st *views.State) any { return st.ColumnVisibility },
		decode: func(r gjson.Result, st *views.State) bool {
			m, ok := boolMap(r)
			if ok {
				st.ColumnVisibility = layout.Visibility(m)
			}
			return ok
		},
	},
	SliceColumnSizing: {
		get: func(st *views.State) any { return st.ColumnSizing },
		decode: func(r gjson.Result, st *views.State) bool {
			if !r.IsObject() {
				return false
			}
			out := layout.Sizing{}
			r.ForEach(func(k, v gjson.Result) bool {
				if v.Type == gjson.Number && v.Int() > 0 {
					out[k.String()] = int(v.Int())
				}
				return true
			})
			st.ColumnSizing = out
			return true
		},
	},
	SliceColumnPinning: {
		get: func(st *views.State) any { return st.ColumnPinning },
		decode: func(r gjson.Result, st *views.State) bool {
			if !r.IsObject() {
				return false
			}
			left, _ := stringList(r.Get("left"))
			right, _ := stringList(r.Get("right"))
			st.ColumnPinning = layout.Pinning{Left: left, Right: right}
			return true
		},
	},
	SliceColumnOrder: {
		get: func(st *views.State) any { return st.ColumnOrder },
		decode: func(r gjson.Result, st *views.State) bool {
			ids, ok := stringList(r)
			if ok {
				st.ColumnOrder = layout.Order(ids)
			}
			return ok
		},
	},
}

func init() {
	for _, sl := range AllSlices {
		if _, ok := codecs[sl]; !ok {
			panic(fmt.Sprintf("persistence: slice %q has no codec", sl))
		}
	}
}

// encodeSlice returns the JSON form of one slice of st.
func encodeSlice(sl Slice, st views.State) (string, error) {
	b, err := json.Marshal(codecs[sl].get(&st))
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", sl, err)
	}
	return string(b), nil
}

// decodeSlice reads one stored slice into st. It reports false for corrupt
// JSON and wrong shapes, leaving the slice at its default.
func decodeSlice(sl Slice, raw string, st *views.State) bool {
	if !gjson.Valid(raw) {
		return false
	}
	return codecs[sl].decode(gjson.Parse(raw), st)
}

func stringList(r gjson.Result) ([]string, bool) {
	if !r.IsArray() {
		return nil, false
	}
	var out []string
	for _, item := range r.Array() {
		if item.Type == gjson.String && item.Str != "" {
			out = append(out, item.Str)
		}
	}
	return out, true
}

func boolMap(r gjson.Result) (map[string]bool, bool) {
	if !r.IsObject() {
		return nil, false
	}
	out := make(map[string]bool)
	r.ForEach(func(k, v gjson.Result) bool {
		switch v.Type {
		case gjson.True:
			out[k.String()] = true
		case gjson.False:
			out[k.String()] = false
		}
		return true
	})
	return out, true
}
