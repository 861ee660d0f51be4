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

package values

import (
	"math"
	"strings"
	"time"
)

// Compare orders two non-nil cell values of a column of the given kind.
// Returns -1 if a < b, 0 if equal, 1 if a > b. Values that cannot be coerced
// to the kind sort after values that can.
func Compare(a, b any, kind Kind) int {
	if kind == KindAuto {
		kind = inferKind(a, b)
	}
	switch kind {
	case KindNumber:
		fa, okA := ToFloat(a)
		fb, okB := ToFloat(b)
		if !okA || !okB {
			return compareValid(okA, okB, a, b)
		}
		return compareFloat64s(fa, fb)

	case KindDate:
		ta, okA := ToTime(a)
		tb, okB := ToTime(b)
		if !okA || !okB {
			return compareValid(okA, okB, a, b)
		}
		return compareTimes(ta, tb)

	case KindBool:
		ba, okA := ToBool(a)
		bb, okB := ToBool(b)
		if !okA || !okB {
			return compareValid(okA, okB, a, b)
		}
		return compareBools(ba, bb)

	default:
		return strings.Compare(Text(a), Text(b))
	}
}

// Coercible reports whether v converts to the kind. Every non-nil value is
// coercible to KindAuto and KindString.
func Coercible(v any, kind Kind) bool {
	if v == nil {
		return false
	}
	switch kind {
	case KindNumber:
		_, ok := ToFloat(v)
		return ok
	case KindDate:
		_, ok := ToTime(v)
		return ok
	case KindBool:
		_, ok := ToBool(v)
		return ok
	default:
		return true
	}
}

// inferKind picks the comparator from the dynamic types of the operands.
// Mixed operands fall back to text.
func inferKind(a, b any) Kind {
	ka, kb := kindOf(a), kindOf(b)
	if ka == kb {
		return ka
	}
	return KindString
}

func kindOf(v any) Kind {
	switch v.(type) {
	case time.Time:
		return KindDate
	case bool:
		return KindBool
	case string:
		return KindString
	}
	if _, ok := ToFloat(v); ok {
		return KindNumber
	}
	if f, isFloat := v.(float64); isFloat && math.IsNaN(f) {
		return KindNumber
	}
	return KindString
}

// compareValid places values that failed coercion last, and orders two
// failed values by text so the ordering stays total.
func compareValid(okA, okB bool, a, b any) int {
	switch {
	case okA && !okB:
		return -1
	case !okA && okB:
		return 1
	default:
		return strings.Compare(Text(a), Text(b))
	}
}

// compareTimes compares two time.Time values
func compareTimes(a, b time.Time) int {
	if a.Before(b) {
		return -1
	}
	if a.After(b) {
		return 1
	}
	return 0
}

// compareBools compares two bool values (false < true)
func compareBools(a, b bool) int {
	if a == b {
		return 0
	}
	if !a && b {
		return -1
	}
	return 1
}

// compareFloat64s compares two float64 values with NaN handling.
// NaN values are considered greater than all other values (sort to end).
func compareFloat64s(a, b float64) int {
	aNaN := math.IsNaN(a)
	bNaN := math.IsNaN(b)

	if aNaN && bNaN {
		return 0
	}
	if aNaN {
		return 1
	}
	if bNaN {
		return -1
	}

	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}
