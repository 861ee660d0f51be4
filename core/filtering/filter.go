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

// Package filtering evaluates column filters and the global filter over a
// row set. Every call recomputes from the rows it is given.
package filtering

import (
	"strings"

	"github.com/RoaringBitmap/roaring"
	"golang.org/x/text/cases"

	"github.com/google/gridstate/core/columns"
)

// Options carries the inputs of a filter pass besides the column filters.
type Options struct {
	// GlobalFilter is searched, case-insensitively, in every globally
	// filterable column. Blank means no global filter.
	GlobalFilter string
	// Skip excludes columns from both column and global filtering; the
	// orchestrator skips hidden columns.
	Skip func(id string) bool
	// RowID names rows in reported errors.
	RowID func(i int) string
	// Report receives accessor and custom filter failures.
	Report columns.Reporter
}

func (o Options) skipped(id string) bool {
	return o.Skip != nil && o.Skip(id)
}

type compiled[T any] struct {
	col *columns.Column[T]
	s   Strategy
}

// Mask returns the positions of the rows passing every active column filter
// and the global filter. The result is independent of the order of st.
func Mask[T any](rows []T, set *columns.Set[T], st State, opts Options) *roaring.Bitmap {
	mask := roaring.New()
	mask.AddRange(0, uint64(len(rows)))
	if len(rows) == 0 {
		return mask
	}

	fold := cases.Fold()
	var filters []compiled[T]
	for _, f := range st {
		col, ok := set.Get(f.ID)
		if !ok || !col.Filterable() || opts.skipped(col.ID) {
			continue
		}
		s, ok := Compile(col, f.Value, fold, opts.Report)
		if !ok {
			continue
		}
		filters = append(filters, compiled[T]{col: col, s: s})
	}

	for _, f := range filters {
		pass := roaring.New()
		it := mask.Iterator()
		for it.HasNext() {
			i := it.Next()
			cell, ok := cellValue(f.col, rows, int(i), opts)
			if ok && f.s.Match(cell) {
				pass.Add(i)
			}
		}
		mask.And(pass)
		if mask.IsEmpty() {
			return mask
		}
	}

	if needle := strings.TrimSpace(opts.GlobalFilter); needle != "" {
		mask.And(globalMask(rows, set, mask, fold.String(needle), opts))
	}
	return mask
}

func globalMask[T any](rows []T, set *columns.Set[T], candidates *roaring.Bitmap, needle string, opts Options) *roaring.Bitmap {
	var cols []*columns.Column[T]
	for _, col := range set.All() {
		if col.GloballyFilterable() && !opts.skipped(col.ID) {
			cols = append(cols, col)
		}
	}
	text := Text{Needle: needle, fold: cases.Fold()}
	pass := roaring.New()
	it := candidates.Iterator()
	for it.HasNext() {
		i := it.Next()
		for _, col := range cols {
			if cell, ok := cellValue(col, rows, int(i), opts); ok && text.Match(cell) {
				pass.Add(i)
				break
			}
		}
	}
	return pass
}

func cellValue[T any](col *columns.Column[T], rows []T, i int, opts Options) (any, bool) {
	v, err := col.Value(rows[i])
	if err != nil {
		if fe, ok := err.(*columns.FuncError); ok && opts.RowID != nil {
			fe.RowID = opts.RowID(i)
		}
		opts.Report.Report(err)
		return nil, false
	}
	return v, true
}

// Apply returns the rows passing the filters, in their original order.
func Apply[T any](rows []T, set *columns.Set[T], st State, opts Options) []T {
	return SelectRows(rows, Mask(rows, set, st, opts))
}

// SelectRows returns the rows at the positions in mask, in ascending order.
func SelectRows[T any](rows []T, mask *roaring.Bitmap) []T {
	out := make([]T, 0, mask.GetCardinality())
	it := mask.Iterator()
	for it.HasNext() {
		out = append(out, rows[it.Next()])
	}
	return out
}
