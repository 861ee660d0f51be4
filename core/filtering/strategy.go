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
	"strings"
	"time"

	"golang.org/x/text/cases"

	"github.com/google/gridstate/core/columns"
	"github.com/google/gridstate/core/values"
)

// Strategy is a compiled column filter. The set of strategies is closed:
// Text, Select, MultiSelect, NumberRange, DateRange, Boolean and Custom.
type Strategy interface {
	Variant() columns.FilterVariant
	// Match reports whether a cell value passes the filter.
	Match(cell any) bool
	strategy()
}

// Text matches cells whose text contains the needle, ignoring case.
type Text struct {
	Needle string // folded
	fold   cases.Caser
}

// NewText returns a Text strategy for needle.
func NewText(needle string) Text {
	fold := cases.Fold()
	return Text{Needle: fold.String(strings.TrimSpace(needle)), fold: fold}
}

// Select matches cells equal to Value.
type Select struct {
	Value any
}

// MultiSelect matches cells equal to any of Values. A list-valued cell
// matches when any of its elements does.
type MultiSelect struct {
	Values []any
}

// NumberRange matches numeric cells within [Min, Max]. Nil bounds are open.
// Invalid is set when a bound could not be parsed; it matches nothing.
type NumberRange struct {
	Min, Max *float64
	Invalid  bool
}

// DateRange matches cells whose instant lies within [Min, Max]. A date-only
// upper bound covers that whole day.
type DateRange struct {
	Min, Max *time.Time
	Invalid  bool
}

// Boolean matches cells whose truthiness equals Want.
type Boolean struct {
	Want    bool
	Invalid bool
}

// Custom delegates to a caller-supplied predicate. A panicking predicate
// fails the cell and is reported.
type Custom struct {
	ColumnID string
	Fn       func(cell any, filter any) bool
	Value    any
	Report   columns.Reporter
}

func (Text) Variant() columns.FilterVariant        { return columns.FilterText }
func (Select) Variant() columns.FilterVariant      { return columns.FilterSelect }
func (MultiSelect) Variant() columns.FilterVariant { return columns.FilterMultiSelect }
func (NumberRange) Variant() columns.FilterVariant { return columns.FilterNumberRange }
func (DateRange) Variant() columns.FilterVariant   { return columns.FilterDateRange }
func (Boolean) Variant() columns.FilterVariant     { return columns.FilterBoolean }
func (Custom) Variant() columns.FilterVariant      { return columns.FilterCustom }

func (Text) strategy()        {}
func (Select) strategy()      {}
func (MultiSelect) strategy() {}
func (NumberRange) strategy() {}
func (DateRange) strategy()   {}
func (Boolean) strategy()     {}
func (Custom) strategy()      {}

// Match implements Strategy.
func (s Text) Match(cell any) bool {
	if cell == nil {
		return false
	}
	return strings.Contains(s.fold.String(values.Text(cell)), s.Needle)
}

// Match implements Strategy.
func (s Select) Match(cell any) bool {
	return matchesAny(cell, []any{s.Value})
}

// Match implements Strategy.
func (s MultiSelect) Match(cell any) bool {
	return matchesAny(cell, s.Values)
}

// Match implements Strategy.
func (s NumberRange) Match(cell any) bool {
	if s.Invalid {
		return false
	}
	f, ok := values.ToFloat(cell)
	if !ok {
		return false
	}
	if s.Min != nil && f < *s.Min {
		return false
	}
	if s.Max != nil && f > *s.Max {
		return false
	}
	return true
}

// Match implements Strategy.
func (s DateRange) Match(cell any) bool {
	if s.Invalid {
		return false
	}
	t, ok := values.ToTime(cell)
	if !ok {
		return false
	}
	if s.Min != nil && t.Before(*s.Min) {
		return false
	}
	if s.Max != nil && t.After(*s.Max) {
		return false
	}
	return true
}

// Match implements Strategy.
func (s Boolean) Match(cell any) bool {
	if s.Invalid {
		return false
	}
	b, ok := values.ToBool(cell)
	return ok && b == s.Want
}

// Match implements Strategy.
func (s Custom) Match(cell any) (ok bool) {
	if s.Fn == nil {
		return true
	}
	defer func() {
		if r := recover(); r != nil {
			ok = false
			s.Report.Report(&columns.FuncError{ColumnID: s.ColumnID, Func: columns.FuncFilter, Cause: r})
		}
	}()
	return s.Fn(cell, s.Value)
}

// Compile builds the strategy for a column filter value. It returns false
// when the value is empty and the column should not be filtered. fold must
// not be shared across goroutines.
func Compile[T any](col *columns.Column[T], value any, fold cases.Caser, report columns.Reporter) (Strategy, bool) {
	if IsEmpty(value) {
		return nil, false
	}
	switch col.FilterVariant {
	case columns.FilterSelect:
		if list := toList(value); len(list) > 0 {
			return MultiSelect{Values: list}, true
		}
		return Select{Value: value}, true

	case columns.FilterMultiSelect:
		list := toList(value)
		if len(list) == 0 {
			list = []any{value}
		}
		return MultiSelect{Values: nonEmpty(list)}, true

	case columns.FilterNumberRange:
		return compileNumberRange(value), true

	case columns.FilterDateRange:
		return compileDateRange(value), true

	case columns.FilterBoolean:
		switch x := value.(type) {
		case bool:
			return Boolean{Want: x}, true
		case string:
			if s := strings.ToLower(strings.TrimSpace(x)); s == "all" || s == "any" {
				return nil, false
			}
		}
		b, ok := values.ToBool(value)
		return Boolean{Want: b, Invalid: !ok}, true

	case columns.FilterCustom:
		return Custom{ColumnID: col.ID, Fn: col.FilterFn, Value: value, Report: report}, true

	default:
		return Text{Needle: fold.String(strings.TrimSpace(values.Text(value))), fold: fold}, true
	}
}

func matchesAny(cell any, wanted []any) bool {
	if cell == nil {
		return false
	}
	if elems := toList(cell); elems != nil {
		for _, e := range elems {
			if matchesAny(e, wanted) {
				return true
			}
		}
		return false
	}
	for _, w := range wanted {
		if values.Equal(cell, w) {
			return true
		}
	}
	return false
}

// toList returns the elements of slice and array values, nil otherwise.
func toList(v any) []any {
	switch x := v.(type) {
	case []any:
		return x
	case []string:
		out := make([]any, len(x))
		for i, s := range x {
			out[i] = s
		}
		return out
	case string, nil:
		return nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out
}

func nonEmpty(list []any) []any {
	out := make([]any, 0, len(list))
	for _, v := range list {
		if !IsEmpty(v) {
			out = append(out, v)
		}
	}
	return out
}

// bounds extracts the two sides of a range value.
func bounds(v any) (lo, hi any) {
	switch x := v.(type) {
	case Range:
		return x.Min, x.Max
	case *Range:
		return x.Min, x.Max
	case map[string]any:
		return x["min"], x["max"]
	}
	list := toList(v)
	switch len(list) {
	case 0:
		return v, nil
	case 1:
		return list[0], nil
	default:
		return list[0], list[1]
	}
}

func compileNumberRange(v any) NumberRange {
	var r NumberRange
	lo, hi := bounds(v)
	if !IsEmpty(lo) {
		f, ok := values.ToFloat(lo)
		if !ok {
			return NumberRange{Invalid: true}
		}
		r.Min = &f
	}
	if !IsEmpty(hi) {
		f, ok := values.ToFloat(hi)
		if !ok {
			return NumberRange{Invalid: true}
		}
		r.Max = &f
	}
	return r
}

func compileDateRange(v any) DateRange {
	var r DateRange
	lo, hi := bounds(v)
	if !IsEmpty(lo) {
		t, ok := values.ToTime(lo)
		if !ok {
			return DateRange{Invalid: true}
		}
		r.Min = &t
	}
	if !IsEmpty(hi) {
		t, ok := values.ToTime(hi)
		if !ok {
			return DateRange{Invalid: true}
		}
		if s, isString := hi.(string); isString && !strings.ContainsAny(s, ":T") {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		r.Max = &t
	}
	return r
}
