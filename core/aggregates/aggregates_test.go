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

package aggregates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/google/gridstate/core/values"
)

func fill(fn Fn, kind values.Kind, vs ...any) *Accumulator {
	a := New(fn, kind)
	for _, v := range vs {
		a.Add(v)
	}
	return a
}

func TestAccumulatorResults(t *testing.T) {
	nums := []any{4, 1.5, "2.5", nil, "n/a"}

	assert.Equal(t, 8.0, fill(Sum, values.KindNumber, nums...).Result())
	assert.Equal(t, 5, fill(Count, values.KindNumber, nums...).Result())
	assert.InDelta(t, 8.0/3.0, fill(Mean, values.KindNumber, nums...).Result(), 1e-9)
	assert.Equal(t, 1.5, fill(Min, values.KindNumber, 4, 1.5, 3).Result())
	assert.Equal(t, 4, fill(Max, values.KindNumber, 4, 1.5, 3).Result())
	assert.Equal(t, Range{Min: 1.5, Max: 4}, fill(Extent, values.KindNumber, 4, 1.5, 3).Result())
	assert.Equal(t, []any{"a", "b"}, fill(Unique, values.KindString, "a", "b", "a").Result())
	assert.Equal(t, 2, fill(UniqueCount, values.KindString, "a", "b", "a").Result())
}

func TestEmptyAccumulator(t *testing.T) {
	assert.Equal(t, 0.0, New(Sum, values.KindNumber).Result())
	assert.Equal(t, 0, New(Count, values.KindNumber).Result())
	assert.Nil(t, New(Mean, values.KindNumber).Result())
	assert.Nil(t, New(Min, values.KindNumber).Result())
	assert.Nil(t, New(Extent, values.KindNumber).Result())
	assert.Equal(t, []any{}, New(Unique, values.KindString).Result())
}

func TestCombineMatchesSinglePass(t *testing.T) {
	left := []any{1, 2, 3, "x"}
	right := []any{10, 20, "x", "y"}

	for _, fn := range All {
		whole := fill(fn, values.KindAuto, append(append([]any{}, left...), right...)...)
		merged := fill(fn, values.KindAuto, left...)
		merged.Combine(fill(fn, values.KindAuto, right...))
		assert.Equal(t, whole.Result(), merged.Result(), string(fn))
	}
}

func TestCombineIgnoresMismatchedFunction(t *testing.T) {
	a := fill(Sum, values.KindNumber, 1, 2)
	a.Combine(fill(Count, values.KindNumber, 5))
	assert.Equal(t, 3.0, a.Result())
}

func TestMinMaxDates(t *testing.T) {
	d1 := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	a := fill(Extent, values.KindDate, d2, d1)
	r, ok := a.Result().(Range)
	require.True(t, ok)
	assert.Equal(t, d1, r.Min)
	assert.Equal(t, d2, r.Max)
}

func TestParseFnAndFormat(t *testing.T) {
	assert.Equal(t, UniqueCount, ParseFn("uniquecount"))
	assert.Equal(t, Sum, ParseFn(" SUM "))
	assert.Equal(t, None, ParseFn("median"))

	assert.Equal(t, "12", Format(Sum, 12.0))
	assert.Equal(t, "12.5", Format(Mean, 12.5))
	assert.Equal(t, "3.33", Format(Mean, 10.0/3.0))
	assert.Equal(t, "-", Format(Mean, nil))
	assert.Equal(t, "1..4", Format(Extent, Range{Min: 1, Max: 4}))
	assert.Equal(t, "a, b", Format(Unique, []any{"a", "b"}))
	assert.Equal(t, "7", Format(Count, 7))
}
