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

package layout

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/google/gridstate/core/columns"
	"github.com/google/gridstate/core/control"
)

type row struct{}

func none(row) any { return nil }

func testEngine(f Features) *Engine[row] {
	set := columns.MustSet([]columns.Column[row]{
		{ID: "select", Accessor: none, NoHiding: true, NoPinning: true, NoResizing: true, NoSorting: true, NoFiltering: true, Size: 40},
		{ID: "name", Accessor: none, Size: 200},
		{ID: "email", Accessor: none, Size: 240, MaxSize: 300},
		{ID: "role", Accessor: none, Size: 120},
		{ID: "actions", Accessor: none, Size: 100},
	})
	return NewEngine(set, f)
}

func TestPinRightThenUnpinRestoresPosition(t *testing.T) {
	e := testEngine(AllFeatures)
	st := e.Initial()

	st.Pinning = e.Pinning(st.Pinning, func(p Pinning) Pinning { return Pin(p, "email", Right) })
	assert.Equal(t, []string{"select", "name", "role", "actions", "email"}, e.VisibleIDs(st))

	// reordering while pinned does not move the pinned column's slot
	st.Order = e.Order(st.Order, Move("actions", 0), st.Pinning)
	assert.Equal(t, Order{"actions", "select", "email", "name", "role"}, st.Order)

	st.Pinning = e.Pinning(st.Pinning, func(p Pinning) Pinning { return Pin(p, "email", Unpinned) })
	assert.Equal(t, []string{"actions", "select", "email", "name", "role"}, e.VisibleIDs(st))
}

func TestOrderKeepsPinnedSlots(t *testing.T) {
	e := testEngine(AllFeatures)
	pin := Pinning{Left: []string{"name"}}
	prev := Order{"select", "name", "email", "role", "actions"}

	next := e.Order(prev, control.Value(Order{"actions", "role", "name", "ghost"}), pin)
	if diff := cmp.Diff(Order{"actions", "name", "role", "select", "email"}, next); diff != "" {
		t.Errorf("Order() mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, prev, e.Order(prev, Move("name", 4), pin), "pinned columns cannot be moved")
}

func TestVisibility(t *testing.T) {
	e := testEngine(AllFeatures)
	st := e.Initial()
	st.Visibility = e.Visibility(st.Visibility, control.Value(Visibility{"select": false, "role": false, "ghost": false}))

	assert.Equal(t, Visibility{"role": false}, st.Visibility)
	assert.True(t, e.IsVisible(st, "select"))
	assert.False(t, e.IsVisible(st, "role"))
	assert.True(t, e.Hidden(st)("role"))
	assert.Equal(t, []string{"select", "name", "email", "actions"}, e.VisibleIDs(st))

	// hidden columns keep their sizing and pinning
	st.Sizing = e.Sizing(st.Sizing, control.Value(Sizing{"role": 150}))
	st.Visibility = e.Visibility(st.Visibility, func(v Visibility) Visibility { delete(v, "role"); return v })
	assert.Equal(t, 150, e.Width(st, "role"))
}

func TestSizingClamps(t *testing.T) {
	e := testEngine(AllFeatures)
	s := e.Sizing(nil, control.Value(Sizing{"email": 5000, "name": 1, "select": 300}))

	email, _ := e.set.Get("email")
	name, _ := e.set.Get("name")
	assert.Equal(t, 300, s["email"])
	assert.Equal(t, name.EffectiveMinSize(), s["name"])
	assert.GreaterOrEqual(t, s["name"], name.HeaderControlsWidth())
	assert.NotContains(t, s, "select")
	assert.Equal(t, email.MaxSize, e.Width(State{Sizing: s}, "email"))
}

func TestPinningNormalization(t *testing.T) {
	e := testEngine(AllFeatures)
	p := e.Pinning(Pinning{}, control.Value(Pinning{
		Left:  []string{"name", "select", "name"},
		Right: []string{"name", "actions"},
	}))
	assert.Equal(t, Pinning{Left: []string{"name"}, Right: []string{"actions"}}, p)
	assert.Equal(t, Left, p.Side("name"))
	assert.Equal(t, Unpinned, p.Side("email"))
}

func TestOffsets(t *testing.T) {
	e := testEngine(AllFeatures)
	st := e.Initial()
	st.Pinning = Pinning{Left: []string{"name"}, Right: []string{"role", "actions"}}

	placed := e.Ordered(st)
	require.Len(t, placed, 5)
	assert.Equal(t, Placed{ID: "name", Side: Left, Width: 200, Offset: 0}, placed[0])
	assert.Equal(t, Placed{ID: "role", Side: Right, Width: 120, Offset: 100}, placed[3])
	assert.Equal(t, Placed{ID: "actions", Side: Right, Width: 100, Offset: 0}, placed[4])
	assert.Equal(t, 40+200+240+120+100, e.TotalWidth(st))
}

func TestDisabledFeaturesAreNoOps(t *testing.T) {
	e := testEngine(Features{})
	st := e.Initial()

	assert.Equal(t, st.Visibility, e.Visibility(st.Visibility, control.Value(Visibility{"name": false})))
	assert.Equal(t, st.Sizing, e.Sizing(st.Sizing, control.Value(Sizing{"name": 300})))
	assert.Equal(t, st.Pinning, e.Pinning(st.Pinning, control.Value(Pinning{Left: []string{"name"}})))
	assert.Equal(t, st.Order, e.Order(st.Order, Move("actions", 0), st.Pinning))
}
