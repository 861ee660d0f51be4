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

// Package grouping partitions rows into a hierarchy of groups, one level per
// grouped column, and computes per-group aggregates.
//
// Terminology:
//   - the columns that are part of the grouping hierarchy are called grouped columns
//   - the columns with an aggregation function are called aggregated columns
//   - a group without child groups is a leaf group; its Indices are its rows
//
// All rows of a group share the value of its grouped column and of the
// grouped columns of its ancestors.
package grouping

import (
	"strings"

	"github.com/google/gridstate/core/aggregates"
	"github.com/google/gridstate/core/columns"
	"github.com/google/gridstate/core/values"
)

// Node is a group. The root node holds every row of the grouped set and has
// no grouped column; its Depth is -1.
type Node struct {
	// ID is the path of grouped values from the root, for example
	// "category:Books>region:EU". It is stable across recomputations and is
	// used as the row id of group rows.
	ID       string
	ColumnID string
	Value    any
	Depth    int
	// Indices are the positions of the leaf rows under the group, in
	// row-set order until sorted.
	Indices    []uint32
	Children   []*Node
	Parent     *Node
	Aggregates map[string]any
}

// IsRoot reports whether n is the root of a tree.
func (n *Node) IsRoot() bool {
	return n.Parent == nil
}

// Length returns the number of leaf rows under the group.
func (n *Node) Length() int {
	return len(n.Indices)
}

// Height returns the number of levels below n, 0 for a leaf group.
func (n *Node) Height() int {
	h := 0
	for _, c := range n.Children {
		h = max(h, c.Height()+1)
	}
	return h
}

// Walk visits n and its descendants depth-first, parents first. Returning
// false from fn skips the children of that node.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// Find returns the group with the given id.
func (n *Node) Find(id string) *Node {
	var found *Node
	n.Walk(func(g *Node) bool {
		if found != nil {
			return false
		}
		if g.ID == id {
			found = g
			return false
		}
		return strings.HasPrefix(id, g.ID)
	})
	return found
}

// Rows returns the leaf rows of the group.
func Rows[T any](n *Node, rows []T) []T {
	out := make([]T, len(n.Indices))
	for j, pos := range n.Indices {
		out[j] = rows[pos]
	}
	return out
}

// Options carries the error plumbing of a grouping pass.
type Options struct {
	// RowID names rows in reported errors.
	RowID func(i int) string
	// Report receives accessor failures. Rows whose grouped value cannot be
	// read are grouped under nil.
	Report columns.Reporter
}

// Build groups the rows at idx by the grouped columns, outermost first.
// Unknown columns and columns with grouping disabled are ignored. Groups
// appear in the order their first row appears in idx.
func Build[T any](rows []T, idx []uint32, set *columns.Set[T], groupBy []string, opts Options) *Node {
	root := &Node{Depth: -1, Indices: append([]uint32(nil), idx...)}
	var cols []*columns.Column[T]
	for _, id := range GroupedColumns(set, groupBy) {
		col, _ := set.Get(id)
		cols = append(cols, col)
	}
	split(root, rows, cols, opts)
	return root
}

// GroupedColumns returns the ids of groupBy that can be grouped by, without
// duplicates.
func GroupedColumns[T any](set *columns.Set[T], groupBy []string) []string {
	var out []string
	seen := make(map[string]bool, len(groupBy))
	for _, id := range groupBy {
		col, ok := set.Get(id)
		if !ok || col.NoGrouping || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func split[T any](n *Node, rows []T, cols []*columns.Column[T], opts Options) {
	if len(cols) == 0 {
		return
	}
	col := cols[0]
	index := make(map[any]*Node)
	for _, pos := range n.Indices {
		v, err := col.Value(rows[pos])
		if err != nil {
			if fe, ok := err.(*columns.FuncError); ok && opts.RowID != nil {
				fe.RowID = opts.RowID(int(pos))
			}
			opts.Report.Report(err)
			v = nil
		}
		k := values.Key(v)
		child, ok := index[k]
		if !ok {
			child = &Node{
				ID:       childID(n.ID, col.ID, v),
				ColumnID: col.ID,
				Value:    v,
				Depth:    n.Depth + 1,
				Parent:   n,
			}
			index[k] = child
			n.Children = append(n.Children, child)
		}
		child.Indices = append(child.Indices, pos)
	}
	for _, c := range n.Children {
		split(c, rows, cols[1:], opts)
	}
}

func childID(parent, col string, v any) string {
	id := col + ":" + values.Text(v)
	if parent == "" {
		return id
	}
	return parent + ">" + id
}

// Aggregate computes the aggregates of every aggregated column for n and its
// descendants and returns those of n. Leaf groups accumulate their rows;
// parents combine the accumulators of their children. skip excludes columns,
// for example hidden ones; it may be nil.
func Aggregate[T any](n *Node, rows []T, set *columns.Set[T], skip func(id string) bool, opts Options) map[string]any {
	var cols []*columns.Column[T]
	for _, col := range set.All() {
		if col.Aggregation != aggregates.None && (skip == nil || !skip(col.ID)) {
			cols = append(cols, col)
		}
	}
	accumulate(n, rows, cols, opts)
	return n.Aggregates
}

func accumulate[T any](n *Node, rows []T, cols []*columns.Column[T], opts Options) []*aggregates.Accumulator {
	accs := make([]*aggregates.Accumulator, len(cols))
	for k, col := range cols {
		accs[k] = aggregates.New(col.Aggregation, col.Kind)
	}
	if len(n.Children) == 0 {
		for _, pos := range n.Indices {
			for k, col := range cols {
				v, err := col.Value(rows[pos])
				if err != nil {
					if fe, ok := err.(*columns.FuncError); ok && opts.RowID != nil {
						fe.RowID = opts.RowID(int(pos))
					}
					opts.Report.Report(err)
					v = nil
				}
				accs[k].Add(v)
			}
		}
	} else {
		for _, c := range n.Children {
			for k, acc := range accumulate(c, rows, cols, opts) {
				accs[k].Combine(acc)
			}
		}
	}
	n.Aggregates = make(map[string]any, len(cols))
	for k, col := range cols {
		n.Aggregates[col.ID] = accs[k].Result()
	}
	return accs
}
