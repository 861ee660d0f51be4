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

package sorting

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/google/gridstate/core/columns"
	"github.com/google/gridstate/core/grouping"
	"github.com/google/gridstate/core/values"
)

type ticket struct {
	ID       int
	Priority any
	Owner    string
	Opened   string
}

func ticketColumns() *columns.Set[ticket] {
	return columns.MustSet([]columns.Column[ticket]{
		{ID: "id", Accessor: func(t ticket) any { return t.ID }},
		{ID: "priority", Accessor: func(t ticket) any { return t.Priority }, Kind: values.KindNumber},
		{ID: "owner", Accessor: func(t ticket) any { return t.Owner }},
		{ID: "opened", Accessor: func(t ticket) any { return t.Opened }, Kind: values.KindDate},
		{ID: "locked", Accessor: func(t ticket) any { return t.ID }, NoSorting: true},
	})
}

func tickets() []ticket {
	return []ticket{
		{ID: 1, Priority: 2, Owner: "bo", Opened: "2024-03-01"},
		{ID: 2, Priority: nil, Owner: "al", Opened: "2024-01-01"},
		{ID: 3, Priority: "1", Owner: "bo", Opened: "bad"},
		{ID: 4, Priority: 2, Owner: "al", Opened: "2024-02-01"},
		{ID: 5, Priority: "n/a", Owner: "cy", Opened: "2023-12-01"},
		{ID: 6, Priority: 1, Owner: "al", Opened: "2024-02-15"},
	}
}

func ids(rows []ticket) []int {
	out := make([]int, len(rows))
	for i, r := range rows {
		out[i] = r.ID
	}
	return out
}

func TestApply(t *testing.T) {
	set := ticketColumns()
	rows := tickets()

	tests := []struct {
		name  string
		state State
		want  []int
	}{
		{"no sort keeps order", nil, []int{1, 2, 3, 4, 5, 6}},
		{"ascending is stable", State{{ID: "priority"}}, []int{3, 6, 1, 4, 2, 5}},
		{"missing values last when descending", State{{ID: "priority", Desc: true}}, []int{1, 4, 3, 6, 2, 5}},
		{"multi-sort", State{{ID: "owner"}, {ID: "priority", Desc: true}}, []int{4, 6, 2, 1, 3, 5}},
		{"dates", State{{ID: "opened"}}, []int{5, 2, 4, 6, 1, 3}},
		{"non-sortable column ignored", State{{ID: "locked", Desc: true}}, []int{1, 2, 3, 4, 5, 6}},
		{"unknown column ignored", State{{ID: "nope"}, {ID: "id", Desc: true}}, []int{6, 5, 4, 3, 2, 1}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ids(Apply(rows, set, tc.state, Options{})))
		})
	}
}

func TestSortIsIdempotentAndStable(t *testing.T) {
	set := ticketColumns()
	r := rand.New(rand.NewSource(7))
	rows := make([]ticket, 200)
	owners := []string{"al", "bo", "cy", "di"}
	for i := range rows {
		rows[i] = ticket{ID: i, Priority: r.Intn(4), Owner: owners[r.Intn(len(owners))]}
	}
	st := State{{ID: "owner", Desc: true}, {ID: "priority"}}

	once := Apply(rows, set, st, Options{})
	twice := Apply(once, set, st, Options{})
	assert.Equal(t, once, twice)

	for i := 1; i < len(once); i++ {
		a, b := once[i-1], once[i]
		if a.Owner == b.Owner && a.Priority == b.Priority {
			assert.Less(t, a.ID, b.ID, "equal keys keep input order")
		}
	}
}

func TestSkipHiddenColumns(t *testing.T) {
	got := Apply(tickets(), ticketColumns(), State{{ID: "owner"}}, Options{Skip: func(id string) bool { return id == "owner" }})
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, ids(got))
}

func TestComparatorOverrideAndFailure(t *testing.T) {
	var reported []error
	set := columns.MustSet([]columns.Column[ticket]{
		{ID: "owner", Accessor: func(t ticket) any { return t.Owner },
			SortFn: func(a, b any) int { return len(b.(string)) - len(a.(string)) }},
		{ID: "broken", Accessor: func(t ticket) any { return t.ID },
			SortFn: func(a, b any) int { panic(fmt.Sprintf("cannot compare %v", a)) }},
		{ID: "id", Accessor: func(t ticket) any {
			if t.ID == 2 {
				panic("no id")
			}
			return t.ID
		}},
	})
	rows := []ticket{{ID: 1, Owner: "a"}, {ID: 2, Owner: "ccc"}, {ID: 3, Owner: "bb"}}
	opts := Options{Report: func(err error) { reported = append(reported, err) }}

	assert.Equal(t, []int{2, 3, 1}, ids(Apply(rows, set, State{{ID: "owner"}}, opts)))

	// a panicking comparator counts as equal, so the next sort decides
	got := Apply(rows, set, State{{ID: "broken"}, {ID: "owner", Desc: true}}, opts)
	assert.Equal(t, []int{1, 3, 2}, ids(got))
	require.Len(t, reported, 1)

	// a failing accessor places the row last in either direction
	reported = nil
	assert.Equal(t, []int{3, 1, 2}, ids(Apply(rows, set, State{{ID: "id", Desc: true}}, opts)))
	assert.Equal(t, []int{1, 3, 2}, ids(Apply(rows, set, State{{ID: "id"}}, opts)))
	require.Len(t, reported, 2)
	var fe *columns.FuncError
	require.ErrorAs(t, reported[0], &fe)
	assert.Equal(t, columns.FuncAccessor, fe.Func)
}

func TestTopKMatchesFullSort(t *testing.T) {
	set := ticketColumns()
	r := rand.New(rand.NewSource(11))
	rows := make([]ticket, 500)
	for i := range rows {
		rows[i] = ticket{ID: i, Priority: r.Intn(10), Owner: fmt.Sprintf("o%d", r.Intn(5))}
	}
	st := State{{ID: "priority", Desc: true}, {ID: "owner"}}

	full := Positions(len(rows))
	SortIndices(rows, full, set, st, Options{})
	for _, k := range []int{0, 1, 7, 50, 499, 500, 600} {
		got := TopK(rows, Positions(len(rows)), k, set, st, Options{})
		want := full[:min(k, len(full))]
		assert.Equal(t, want, got, "k=%d", k)
	}
}

func TestToggle(t *testing.T) {
	var s State
	s = s.Toggle("a", false)
	assert.Equal(t, State{{ID: "a"}}, s)
	s = s.Toggle("a", false)
	assert.Equal(t, State{{ID: "a", Desc: true}}, s)
	s = s.Toggle("a", false)
	assert.Empty(t, s)

	s = State{{ID: "a"}}.Toggle("b", true)
	assert.Equal(t, State{{ID: "a"}, {ID: "b"}}, s)
	assert.Equal(t, State{{ID: "a", Desc: true}, {ID: "b"}}, s.Toggle("a", true))
	assert.Equal(t, State{{ID: "a"}}, State{{ID: "a"}, {ID: "b", Desc: true}}.Toggle("b", true))
	assert.Equal(t, State{{ID: "c"}}, s.Toggle("c", false))
}

func TestSortTree(t *testing.T) {
	set := ticketColumns()
	rows := tickets()
	root := grouping.Build(rows, Positions(len(rows)), set, []string{"owner"}, grouping.Options{})
	require.Len(t, root.Children, 3)
	assert.Equal(t, "bo", root.Children[0].Value)

	SortTree(root, rows, set, State{{ID: "owner", Desc: true}, {ID: "priority"}}, Options{})
	var owners []any
	for _, g := range root.Children {
		owners = append(owners, g.Value)
	}
	assert.Equal(t, []any{"cy", "bo", "al"}, owners)
	assert.Equal(t, []uint32{2, 0}, root.Children[1].Indices)
	assert.Equal(t, []uint32{5, 3, 1}, root.Children[2].Indices)

	// groups keep first-seen order when their column is not sorted
	root = grouping.Build(rows, Positions(len(rows)), set, []string{"owner"}, grouping.Options{})
	SortTree(root, rows, set, State{{ID: "priority", Desc: true}}, Options{})
	assert.Equal(t, "bo", root.Children[0].Value)
	assert.Equal(t, []uint32{0, 2}, root.Children[0].Indices)
	assert.Equal(t, []uint32{3, 5, 1}, root.Children[1].Indices)
}
