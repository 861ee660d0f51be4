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

// Package aggregates provides mergeable accumulators for group aggregation.
// An accumulator is filled with the leaf values of one group and can be
// combined up the grouping hierarchy, so parents never rescan their rows.
package aggregates

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/google/gridstate/core/values"
)

// Fn names an aggregation function.
type Fn string

const (
	None        Fn = ""
	Sum         Fn = "sum"
	Count       Fn = "count"
	Mean        Fn = "mean"
	Min         Fn = "min"
	Max         Fn = "max"
	Extent      Fn = "extent"
	Unique      Fn = "unique"
	UniqueCount Fn = "uniqueCount"
)

// All lists the supported functions in display order.
var All = []Fn{Sum, Count, Mean, Min, Max, Extent, Unique, UniqueCount}

// ParseFn parses a function name case-insensitively. Unknown names yield None.
func ParseFn(s string) Fn {
	for _, fn := range All {
		if strings.EqualFold(string(fn), strings.TrimSpace(s)) {
			return fn
		}
	}
	return None
}

// Symbol returns a short symbol for compact renderings.
func (fn Fn) Symbol() string {
	switch fn {
	case Sum:
		return "Σ"
	case Count:
		return "#"
	case Mean:
		return "μ"
	case Min:
		return "↓"
	case Max:
		return "↑"
	case Extent:
		return "↕"
	case Unique:
		return "∪"
	case UniqueCount:
		return "|∪|"
	default:
		return ""
	}
}

// Range is the result of the extent function.
type Range struct {
	Min any `json:"min"`
	Max any `json:"max"`
}

// Accumulator stores intermediate state for one aggregation function over
// one column. The zero value is not usable; use New.
type Accumulator struct {
	fn   Fn
	kind values.Kind

	count  int       // leaf rows seen
	nums   []float64 // numeric values, for sum and mean
	min    any
	max    any
	seen   map[any]struct{}
	unique []any // first-seen order
}

// New creates an accumulator for fn over values of the given kind.
func New(fn Fn, kind values.Kind) *Accumulator {
	a := &Accumulator{fn: fn, kind: kind}
	if fn == Unique || fn == UniqueCount {
		a.seen = make(map[any]struct{})
	}
	return a
}

// Fn returns the aggregation function of the accumulator.
func (a *Accumulator) Fn() Fn {
	return a.fn
}

// Add adds a single leaf value. Every call counts as one row for Count,
// whatever the value.
func (a *Accumulator) Add(v any) {
	a.count++
	switch a.fn {
	case Sum, Mean:
		if f, ok := values.ToFloat(v); ok {
			a.nums = append(a.nums, f)
		}
	case Min, Max, Extent:
		if v == nil {
			return
		}
		if a.min == nil || values.Compare(v, a.min, a.kind) < 0 {
			a.min = v
		}
		if a.max == nil || values.Compare(v, a.max, a.kind) > 0 {
			a.max = v
		}
	case Unique, UniqueCount:
		a.addUnique(v)
	}
}

func (a *Accumulator) addUnique(v any) {
	k := values.Key(v)
	if _, ok := a.seen[k]; ok {
		return
	}
	a.seen[k] = struct{}{}
	a.unique = append(a.unique, v)
}

// Combine merges another accumulator of the same function into this one.
func (a *Accumulator) Combine(o *Accumulator) {
	if o == nil || o.fn != a.fn || o.count == 0 {
		return
	}
	a.count += o.count
	a.nums = append(a.nums, o.nums...)
	if o.min != nil && (a.min == nil || values.Compare(o.min, a.min, a.kind) < 0) {
		a.min = o.min
	}
	if o.max != nil && (a.max == nil || values.Compare(o.max, a.max, a.kind) > 0) {
		a.max = o.max
	}
	for _, v := range o.unique {
		a.addUnique(v)
	}
}

// Result returns the aggregated value:
//   - sum: float64 (0 when no numeric values)
//   - count: int
//   - mean: float64, or nil when no numeric values
//   - min, max: the extreme value in its original type, or nil
//   - extent: Range, or nil
//   - unique: []any in first-seen order
//   - uniqueCount: int
func (a *Accumulator) Result() any {
	switch a.fn {
	case Sum:
		return floats.Sum(a.nums)
	case Count:
		return a.count
	case Mean:
		if len(a.nums) == 0 {
			return nil
		}
		return stat.Mean(a.nums, nil)
	case Min:
		return a.min
	case Max:
		return a.max
	case Extent:
		if a.min == nil {
			return nil
		}
		return Range{Min: a.min, Max: a.max}
	case Unique:
		out := make([]any, len(a.unique))
		copy(out, a.unique)
		return out
	case UniqueCount:
		return len(a.unique)
	default:
		return nil
	}
}

// Format renders a result for text displays.
func Format(fn Fn, v any) string {
	if v == nil {
		return "-"
	}
	switch x := v.(type) {
	case float64:
		return formatNumber(x)
	case Range:
		return Format(fn, x.Min) + ".." + Format(fn, x.Max)
	case []any:
		parts := make([]string, len(x))
		for i, item := range x {
			parts[i] = values.Text(item)
		}
		return strings.Join(parts, ", ")
	default:
		if f, ok := values.ToFloat(v); ok && fn != Unique {
			if _, isString := v.(string); !isString {
				return formatNumber(f)
			}
		}
		return values.Text(v)
	}
}

// formatNumber formats a float64 for display, using appropriate precision.
func formatNumber(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	formatted := fmt.Sprintf("%.2f", v)
	formatted = strings.TrimRight(formatted, "0")
	return strings.TrimSuffix(formatted, ".")
}
