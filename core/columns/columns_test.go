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

package columns

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type order struct {
	ID     int
	Status string
	Amount float64
}

func testColumns() []Column[order] {
	return []Column[order]{
		{ID: "id", Accessor: func(o order) any { return o.ID }, NoFiltering: true},
		{ID: "status", Header: "Status", Accessor: func(o order) any { return o.Status }, FilterVariant: FilterSelect},
		{ID: "amount", Accessor: func(o order) any { return o.Amount }, Size: 5000},
	}
}

func TestNewSetDefaults(t *testing.T) {
	s, err := NewSet(testColumns())
	require.NoError(t, err)
	require.Equal(t, 3, s.Len())
	assert.Equal(t, []string{"id", "status", "amount"}, s.IDs())

	id, ok := s.Get("id")
	require.True(t, ok)
	assert.Equal(t, "id", id.Header)
	assert.Equal(t, DefaultSize, id.Size)
	assert.Equal(t, DefaultMinSize, id.MinSize)

	amount, _ := s.Get("amount")
	assert.Equal(t, DefaultMaxSize, amount.Size, "size is clamped to the max")

	_, ok = s.Get("missing")
	assert.False(t, ok)
}

func TestNewSetErrors(t *testing.T) {
	_, err := NewSet([]Column[order]{{ID: "", Accessor: func(order) any { return nil }}})
	assert.True(t, errors.Is(err, ErrEmptyID))

	_, err = NewSet([]Column[order]{
		{ID: "a", Accessor: func(order) any { return nil }},
		{ID: "a", Accessor: func(order) any { return nil }},
	})
	assert.True(t, errors.Is(err, ErrDuplicateColumn))

	_, err = NewSet([]Column[order]{{ID: "a"}})
	assert.True(t, errors.Is(err, ErrNoAccessor))
}

func TestEffectiveMinSizeCoversHeaderControls(t *testing.T) {
	full := Column[order]{ID: "x", MinSize: 10}
	assert.Equal(t, full.HeaderControlsWidth(), full.EffectiveMinSize())
	assert.Equal(t, full.HeaderControlsWidth(), full.ClampSize(0))

	bare := Column[order]{ID: "y", MinSize: 10, NoSorting: true, NoFiltering: true, NoPinning: true, NoResizing: true}
	assert.Less(t, bare.HeaderControlsWidth(), full.HeaderControlsWidth())
	assert.Equal(t, headerPadding, bare.EffectiveMinSize())

	wide := Column[order]{ID: "z", MinSize: 300, MaxSize: 200}
	assert.Equal(t, 300, wide.ClampSize(1000), "max never drops below min")
}

func TestValueRecoversPanics(t *testing.T) {
	c := Column[order]{ID: "boom", Accessor: func(order) any { panic("bad row") }}
	v, err := c.Value(order{})
	assert.Nil(t, v)

	var fe *FuncError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "boom", fe.ColumnID)
	assert.Equal(t, FuncAccessor, fe.Func)
	assert.Contains(t, err.Error(), "bad row")
}

func TestCompareUsesSortFn(t *testing.T) {
	byLength := Column[order]{ID: "s", SortFn: func(a, b any) int {
		return len(a.(string)) - len(b.(string))
	}}
	cmp, err := byLength.Compare("bbb", "a")
	require.NoError(t, err)
	assert.Positive(t, cmp)

	broken := Column[order]{ID: "s", SortFn: func(a, b any) int { panic("nope") }}
	cmp, err = broken.Compare("a", "b")
	assert.Zero(t, cmp)
	assert.Error(t, err)
}

func TestParseFilterVariant(t *testing.T) {
	for v, name := range filterVariantNames {
		assert.Equal(t, v, ParseFilterVariant(name), name)
	}
	assert.Equal(t, FilterText, ParseFilterVariant("whatever"))
}
