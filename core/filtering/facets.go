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

package filtering

import (
	"slices"

	"github.com/google/gridstate/core/columns"
	"github.com/google/gridstate/core/values"
)

// Facet is one distinct value of a column and the number of rows holding it.
type Facet struct {
	Value any `json:"value"`
	Count int `json:"count"`
}

// MaxSelectFacets is the largest cardinality for which SuggestVariant
// proposes a select filter.
const MaxSelectFacets = 12

// Facets counts the distinct values of a column, most frequent first. Ties
// keep first-seen order. Nil cells are not counted.
func Facets[T any](rows []T, col *columns.Column[T], report columns.Reporter) []Facet {
	index := make(map[any]int)
	var out []Facet
	for _, row := range rows {
		v, err := col.Value(row)
		if err != nil {
			report.Report(err)
			continue
		}
		if v == nil {
			continue
		}
		k := values.Key(v)
		if i, ok := index[k]; ok {
			out[i].Count++
			continue
		}
		index[k] = len(out)
		out = append(out, Facet{Value: v, Count: 1})
	}
	slices.SortStableFunc(out, func(a, b Facet) int { return b.Count - a.Count })
	return out
}

// SuggestVariant picks a filter variant from the column kind and the
// cardinality of its values.
func SuggestVariant(kind values.Kind, facets []Facet) columns.FilterVariant {
	switch kind {
	case values.KindBool:
		return columns.FilterBoolean
	case values.KindNumber:
		return columns.FilterNumberRange
	case values.KindDate:
		return columns.FilterDateRange
	}
	if len(facets) == 0 {
		return columns.FilterText
	}
	allBool := true
	for _, f := range facets {
		if _, ok := values.ToBool(f.Value); !ok {
			allBool = false
			break
		}
	}
	if allBool && len(facets) <= 2 {
		return columns.FilterBoolean
	}
	if len(facets) <= MaxSelectFacets {
		return columns.FilterSelect
	}
	return columns.FilterText
}
