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
	"slices"

	"github.com/google/gridstate/core/columns"
	"github.com/google/gridstate/core/grouping"
)

// SortTree sorts a grouping tree in place. The leaf rows of every group are
// ordered by st. Sibling groups are ordered by their grouped value when
// their grouped column is part of st, and otherwise keep first-seen order.
func SortTree[T any](root *grouping.Node, rows []T, set *columns.Set[T], st State, opts Options) {
	if len(resolve(set, st, opts)) == 0 {
		return
	}
	SortIndices(rows, root.Indices, set, st, opts)
	if len(root.Children) == 0 {
		return
	}

	// Redistribute the sorted root order down to every group so each keeps
	// the relative order of the root.
	owner := make(map[uint32]*grouping.Node, len(root.Indices))
	root.Walk(func(n *grouping.Node) bool {
		if len(n.Children) == 0 && !n.IsRoot() {
			for _, pos := range n.Indices {
				owner[pos] = n
			}
		}
		if !n.IsRoot() {
			n.Indices = n.Indices[:0]
		}
		return true
	})
	for _, pos := range root.Indices {
		for n := owner[pos]; n != nil && !n.IsRoot(); n = n.Parent {
			n.Indices = append(n.Indices, pos)
		}
	}

	sortGroups(root, set, st, opts)
}

func sortGroups[T any](n *grouping.Node, set *columns.Set[T], st State, opts Options) {
	if len(n.Children) == 0 {
		return
	}
	colID := n.Children[0].ColumnID
	if s, _, ok := st.Get(colID); ok {
		if col, ok := set.Get(colID); ok && !col.NoSorting && (opts.Skip == nil || !opts.Skip(colID)) {
			reported := false
			slices.SortStableFunc(n.Children, func(a, b *grouping.Node) int {
				switch {
				case a.Value == nil && b.Value == nil:
					return 0
				case a.Value == nil:
					return 1
				case b.Value == nil:
					return -1
				}
				c, err := col.Compare(a.Value, b.Value)
				if err != nil {
					if !reported {
						reported = true
						opts.Report.Report(err)
					}
					return 0
				}
				if s.Desc {
					return -c
				}
				return c
			})
		}
	}
	for _, c := range n.Children {
		sortGroups(c, set, st, opts)
	}
}
