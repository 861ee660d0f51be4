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

// Package values coerces the opaque cell values returned by column accessors
// into the text, numeric, temporal and boolean forms the engines operate on.
package values

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Kind is the value type a column holds. It selects the default comparator
// and the type detected by imports.
type Kind int

const (
	// KindAuto infers the comparator from the dynamic type of each value.
	KindAuto Kind = iota
	// KindString compares text.
	KindString
	// KindNumber compares numerically.
	KindNumber
	// KindDate compares instants.
	KindDate
	// KindBool orders false before true.
	KindBool
)

// String returns the name of the kind as used in schema files.
func (k Kind) String() string {
	switch k {
	case KindAuto:
		return "auto"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindDate:
		return "date"
	case KindBool:
		return "bool"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind parses a kind name. Unknown names yield KindAuto.
func ParseKind(s string) Kind {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "string", "text":
		return KindString
	case "number", "numeric", "float", "int":
		return KindNumber
	case "date", "datetime", "time":
		return KindDate
	case "bool", "boolean":
		return KindBool
	default:
		return KindAuto
	}
}

// Text returns the display text of a value. Nil renders as the empty string.
func Text(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case time.Time:
		if x.IsZero() {
			return ""
		}
		return x.Format(time.RFC3339)
	case fmt.Stringer:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case error:
		return x.Error()
	default:
		return fmt.Sprint(v)
	}
}

// ToFloat converts numbers and numeric strings to float64.
func ToFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, !math.IsNaN(x)
	case float32:
		return float64(x), !math.IsNaN(float64(x))
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	case time.Duration:
		return float64(x), true
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// ToTime converts time values, date strings and Unix timestamps to time.Time.
func ToTime(v any) (time.Time, bool) {
	switch x := v.(type) {
	case time.Time:
		return x, !x.IsZero()
	case *time.Time:
		if x == nil {
			return time.Time{}, false
		}
		return *x, !x.IsZero()
	case string:
		t, err := ParseDatetime(x, time.UTC)
		if err != nil || t.IsZero() {
			return time.Time{}, false
		}
		return t, true
	case int64:
		return parseUnixTimestamp(strconv.FormatInt(x, 10))
	case int:
		return parseUnixTimestamp(strconv.Itoa(x))
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return time.Time{}, false
		}
		return parseUnixTimestamp(strconv.FormatInt(int64(x), 10))
	default:
		return time.Time{}, false
	}
}

// ToBool accepts native booleans, numbers and the common textual spellings
// of on/off states.
func ToBool(v any) (bool, bool) {
	switch x := v.(type) {
	case bool:
		return x, true
	case string:
		return ParseBool(x)
	case nil:
		return false, false
	default:
		if f, ok := ToFloat(x); ok {
			if f == 1 {
				return true, true
			}
			if f == 0 {
				return false, true
			}
		}
		return false, false
	}
}

// ParseBool parses the truthy and falsy spellings used by status columns.
// Accepts (case-insensitive): true/yes/1/active/enabled/on/t/y and
// false/no/0/inactive/disabled/off/f/n.
func ParseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "1", "active", "enabled", "on", "t", "y":
		return true, true
	case "false", "no", "0", "inactive", "disabled", "off", "f", "n":
		return false, true
	default:
		return false, false
	}
}

// Equal reports whether two cell values are the same. Values of identical
// comparable type compare with ==, anything else by display text.
func Equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta == tb && ta.Comparable() {
		if at, ok := a.(time.Time); ok {
			return at.Equal(b.(time.Time))
		}
		return a == b
	}
	if fa, ok := ToFloat(a); ok {
		if fb, ok := ToFloat(b); ok && !isString(a) && !isString(b) {
			return fa == fb
		}
	}
	return Text(a) == Text(b)
}

// Key returns a hashable key such that Equal values share a key. It is used
// to partition rows into groups and to collect unique values.
func Key(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case time.Time:
		return x.UnixNano()
	case string, bool:
		return x
	}
	if !isString(v) {
		if f, ok := ToFloat(v); ok {
			return f
		}
	}
	if reflect.TypeOf(v).Comparable() {
		return v
	}
	return fmt.Sprintf("%T:%v", v, v)
}

func isString(v any) bool {
	_, ok := v.(string)
	return ok
}
