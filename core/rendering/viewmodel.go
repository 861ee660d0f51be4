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

package rendering

import (
	"strconv"
	"strings"

	"github.com/google/safehtml"

	"github.com/google/gridstate/core/aggregates"
	"github.com/google/gridstate/core/layout"
	"github.com/google/gridstate/core/query"
	"github.com/google/gridstate/core/tables"
	"github.com/google/gridstate/core/values"
)

// TableViewModel is one page of a table with every cell already formatted.
// Links are set only when the model is built from a query.
type TableViewModel struct {
	Name         string
	Title        string
	Columns      []ColumnInfo
	Rows         []RowView
	GlobalFilter string
	// Totals holds the aggregate of every filtered row per column, or nil
	// when no column aggregates.
	Totals []string

	FilteredCount int
	RowCount      int
	PageNumber    int // one-based
	PageCount     int
	PageSize      int
	HasPrev       bool
	HasNext       bool
	AllSelected   bool
	SomeSelected  bool
	Loading       bool
	Error         string

	PrevURL       safehtml.URL
	NextURL       safehtml.URL
	PageSizeLinks []PageSizeLink
}

// ColumnInfo describes one visible column.
type ColumnInfo struct {
	ID           string
	Header       string
	Width        int
	Pinned       string // "left", "right" or empty
	Sort         string // "asc", "desc" or empty
	SortPriority int    // one-based, 0 when unsorted
	Grouped      bool
	Aggregation  string
	Filter       string

	SortURL  safehtml.URL
	GroupURL safehtml.URL
	HideURL  safehtml.URL
}

// RowView is one display row.
type RowView struct {
	ID      string
	Depth   int
	IsGroup bool
	// Label is "Header: value" for group rows.
	Label     string
	Count     int
	Cells     []string
	Selected  bool
	Expanded  bool
	CanExpand bool
	CanSelect bool

	ExpandURL safehtml.URL
	SelectURL safehtml.URL
	// DrillURL filters on the group value and removes its grouping.
	DrillURL safehtml.URL
}

// Indent returns the leading spacing of the row label.
func (r RowView) Indent() string {
	return strings.Repeat("\u00a0\u00a0", r.Depth)
}

// PageSizeLink switches to another page size.
type PageSizeLink struct {
	Size    int
	Current bool
	URL     safehtml.URL
}

// LandingViewModel lists the available datasets.
type LandingViewModel struct {
	Title    string
	Datasets []DatasetLink
}

// DatasetLink is one entry of the landing page.
type DatasetLink struct {
	Name        string
	Title       string
	Description string
	Rows        int
	URL         safehtml.URL
}

// BuildViewModel formats the page m of tbl. q may be nil.
func BuildViewModel[T any](name, title string, tbl *tables.Table[T], m tables.Model[T], q *query.Query) TableViewModel {
	st := tbl.State()
	features := tbl.Features()
	vm := TableViewModel{
		Name:          name,
		Title:         title,
		GlobalFilter:  st.GlobalFilter,
		FilteredCount: m.FilteredCount,
		RowCount:      m.RowCount,
		PageNumber:    m.PageIndex + 1,
		PageCount:     m.PageCount,
		PageSize:      m.PageSize,
		HasPrev:       m.HasPrev(),
		HasNext:       m.HasNext(),
		AllSelected:   m.AllSelected,
		SomeSelected:  m.SomeSelected,
		Loading:       m.Loading,
	}
	if m.Error != nil {
		vm.Error = m.Error.Error()
	}
	if vm.Title == "" {
		vm.Title = name
	}

	set := tbl.Columns()
	hasTotals := false
	for _, p := range m.Columns {
		col, ok := set.Get(p.ID)
		if !ok {
			continue
		}
		info := ColumnInfo{
			ID:          p.ID,
			Header:      col.Header,
			Width:       p.Width,
			Aggregation: string(col.Aggregation),
		}
		if p.Side != layout.Unpinned {
			info.Pinned = p.Side.String()
		}
		if s, i, ok := st.Sorting.Get(p.ID); ok {
			info.Sort = "asc"
			if s.Desc {
				info.Sort = "desc"
			}
			info.SortPriority = i + 1
		}
		for _, g := range st.Grouping {
			if g == p.ID {
				info.Grouped = true
			}
		}
		if v, ok := st.ColumnFilters.Get(p.ID); ok {
			info.Filter = query.FormatFilter(v)
		}
		if q != nil {
			if features.Sorting.Enabled && !col.NoSorting {
				info.SortURL = q.WithSortToggled(p.ID, features.Sorting.Multi)
			}
			if features.Grouping.Enabled && !col.NoGrouping {
				info.GroupURL = q.WithGroupedColumnToggled(p.ID)
			}
			if features.Columns.Visibility && !col.NoHiding {
				info.HideURL = q.WithColumnToggled(p.ID)
			}
		}
		if col.Aggregation != aggregates.None {
			hasTotals = true
		}
		vm.Columns = append(vm.Columns, info)
	}

	if hasTotals && len(m.Aggregates) > 0 {
		vm.Totals = make([]string, len(vm.Columns))
		for i, c := range vm.Columns {
			col, _ := set.Get(c.ID)
			if col.Aggregation != aggregates.None {
				vm.Totals[i] = aggregates.Format(col.Aggregation, m.Aggregates[c.ID])
			}
		}
	}

	for _, r := range m.Rows {
		vm.Rows = append(vm.Rows, buildRow(tbl, r, vm.Columns, q))
	}

	if q != nil {
		if vm.HasPrev {
			vm.PrevURL = q.WithPage(m.PageIndex - 1)
		}
		if vm.HasNext {
			vm.NextURL = q.WithPage(m.PageIndex + 1)
		}
		if features.Pagination.Enabled {
			for _, size := range features.Pagination.PageSizeOptions {
				vm.PageSizeLinks = append(vm.PageSizeLinks, PageSizeLink{
					Size:    size,
					Current: size == m.PageSize,
					URL:     q.WithLimit(size),
				})
			}
		}
	}
	return vm
}

func buildRow[T any](tbl *tables.Table[T], r tables.Row[T], cols []ColumnInfo, q *query.Query) RowView {
	set := tbl.Columns()
	rv := RowView{
		ID:        r.ID,
		Depth:     max(r.Depth, 0),
		IsGroup:   r.IsGroup(),
		Selected:  r.Selected,
		Expanded:  r.Expanded,
		CanExpand: r.CanExpand,
		CanSelect: r.CanSelect,
		Cells:     make([]string, len(cols)),
	}
	if r.IsGroup() {
		rv.Count = r.Group.Length()
		header := r.Group.ColumnID
		if col, ok := set.Get(r.Group.ColumnID); ok {
			header = col.Header
		}
		rv.Label = header + ": " + values.Text(r.Group.Value)
	}
	for i, c := range cols {
		v := tbl.Cell(r, c.ID)
		if !r.IsGroup() || c.ID == r.Group.ColumnID {
			rv.Cells[i] = values.Text(v)
		} else if c.Aggregation != "" {
			rv.Cells[i] = aggregates.Format(aggregates.Fn(c.Aggregation), v)
		}
	}
	if q != nil {
		if r.CanExpand {
			rv.ExpandURL = q.WithExpandedToggled(r.ID)
		}
		if r.CanSelect {
			rv.SelectURL = q.WithSelectedToggled(r.ID)
		}
		if r.IsGroup() {
			rv.DrillURL = q.WithFilterAndUngrouped(r.Group.ColumnID, values.Text(r.Group.Value))
		}
	}
	return rv
}

// Caption returns "Title (page 2 of 5)".
func (vm TableViewModel) Caption() string {
	return vm.Title + " (page " + strconv.Itoa(vm.PageNumber) + " of " + strconv.Itoa(max(vm.PageCount, 1)) + ")"
}
