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

package filtering

import (
	"reflect"
	"slices"
	"strings"
)

// ColumnFilter is the filter value of one column. The shape of Value depends
// on the column's filter variant: a string, a [min, max] pair, a list of
// strings, or a bool.
type ColumnFilter struct {
	ID    string `json:"id"`
	Value any    `json:"value"`
}

// State is the ordered list of column filters.
type State []ColumnFilter

// Get returns the filter value of a column.
func (s State) Get(id string) (any, bool) {
	for _, f := range s {
		if f.ID == id {
			return f.Value, true
		}
	}
	return nil, false
}

// With returns a copy of s with the filter of id set to v. An empty value
// removes the filter. A new column filter is appended, an existing one keeps
// its position.
func (s State) With(id string, v any) State {
	out := make(State, 0, len(s)+1)
	found := false
	for _, f := range s {
		if f.ID != id {
			out = append(out, f)
			continue
		}
		found = true
		if !IsEmpty(v) {
			out = append(out, ColumnFilter{ID: id, Value: v})
		}
	}
	if !found && !IsEmpty(v) {
		out = append(out, ColumnFilter{ID: id, Value: v})
	}
	return out
}

// Without returns a copy of s without the filter of id.
func (s State) Without(id string) State {
	return s.With(id, nil)
}

// Active returns the filters whose values are not empty.
func (s State) Active() State {
	return slices.DeleteFunc(slices.Clone(s), func(f ColumnFilter) bool { return IsEmpty(f.Value) })
}

// Range is a two-sided bound for the range variants. A nil or empty bound
// leaves that side open.
type Range struct {
	Min any `json:"min"`
	Max any `json:"max"`
}

// IsEmpty reports whether a filter value filters nothing: nil, blank text,
// an empty list, or a range with both sides open.
func IsEmpty(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	case bool:
		return false
	case Range:
		return IsEmpty(x.Min) && IsEmpty(x.Max)
	case *Range:
		return x == nil || (IsEmpty(x.Min) && IsEmpty(x.Max))
	case map[string]any:
		return IsEmpty(x["min"]) && IsEmpty(x["max"])
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			if !IsEmpty(rv.Index(i).Interface()) {
				return false
			}
		}
		return true
	case reflect.Pointer:
		return rv.IsNil()
	}
	return false
}
