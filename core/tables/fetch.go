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

package tables

import (
	"encoding/json"
	"fmt"

	"github.com/google/gridstate/core/filtering"
	"github.com/google/gridstate/core/sorting"
)

// FetchParams is the request a server-side table asks its caller to run.
// Page is one-based.
type FetchParams struct {
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
	// SortBy and SortOrder describe the primary sort; Sorting carries every
	// sorted column.
	SortBy       string          `json:"sortBy,omitempty"`
	SortOrder    string          `json:"sortOrder,omitempty"`
	Sorting      sorting.State   `json:"sorting,omitempty"`
	Filters      filtering.State `json:"filters,omitempty"`
	GlobalFilter string          `json:"globalFilter,omitempty"`
}

// key is a canonical encoding used to detect parameter changes.
func (p FetchParams) key() string {
	b, err := json.Marshal(p)
	if err != nil {
		return fmt.Sprintf("%#v", p)
	}
	return string(b)
}

// FetchParams derives the request parameters from the current state.
func (t *Table[T]) FetchParams() FetchParams {
	pg := t.pagination.Get()
	p := FetchParams{
		Page:     max(pg.PageIndex, 0) + 1,
		PageSize: pg.Size(),
	}
	if st := t.sortState(); len(st) > 0 {
		p.Sorting = st
		p.SortBy = st[0].ID
		p.SortOrder = "asc"
		if st[0].Desc {
			p.SortOrder = "desc"
		}
	}
	if t.features.Filtering.Enabled {
		p.Filters = t.columnFilters.Get().Active()
		if !t.features.Filtering.NoGlobal {
			p.GlobalFilter = t.globalFilter.Get()
		}
	}
	return p
}

// fetchIfChanged calls OnFetch when the request parameters differ from
// the last request issued. Superseded requests are not tracked; dropping
// late responses is up to the caller.
func (t *Table[T]) fetchIfChanged() {
	ss := t.features.ServerSide
	if !ss.Enabled || ss.OnFetch == nil {
		return
	}
	p := t.FetchParams()
	if t.lastFetch != nil && t.lastFetch.key() == p.key() {
		return
	}
	t.lastFetch = &p
	t.log.Debug().Int("page", p.Page).Str("sortBy", p.SortBy).Msg("fetch")
	ss.OnFetch(p)
}

// Refetch calls OnFetch with the current parameters even when they did not
// change, for example to retry after an error.
func (t *Table[T]) Refetch() {
	t.lastFetch = nil
	t.fetchIfChanged()
}
