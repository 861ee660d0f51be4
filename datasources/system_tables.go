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

package datasources

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/gridstate/core/columns"
	"github.com/google/gridstate/core/csvimport"
	"github.com/google/gridstate/core/schema"
	"github.com/google/gridstate/core/values"
)

// System dataset names and their source type.
const (
	ColumnsTableName = "_columns"
	systemSourceType = "system"
)

// columnsFields is the layout of the _columns dataset. Each row describes one
// column of a user dataset.
var columnsFields = []csvimport.Field{
	{ID: "id", Header: "ID", Kind: values.KindString},
	{ID: "dataset", Header: "Dataset", Kind: values.KindString},
	{ID: "column", Header: "Column", Kind: values.KindString},
	{ID: "header", Header: "Header", Kind: values.KindString},
	{ID: "kind", Header: "Kind", Kind: values.KindString},
	{ID: "filter", Header: "Filter", Kind: values.KindString},
	{ID: "aggregation", Header: "Aggregation", Kind: values.KindString},
	{ID: "is_key", Header: "Is Key", Kind: values.KindBool},
	{ID: "distinct", Header: "Distinct", Kind: values.KindNumber},
	{ID: "row_count", Header: "Row Count", Kind: values.KindNumber},
	{ID: "position", Header: "Position", Kind: values.KindNumber},
}

// isSystemTable returns true if the dataset name is a system dataset
func isSystemTable(name string) bool {
	return strings.HasPrefix(name, "_")
}

// AddSystemTables declares the system datasets. Their data is built from
// the user datasets when first opened.
func (m *Manager) AddSystemTables() {
	m.RegisterLoader(&systemLoader{m: m})
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.datasets[ColumnsTableName]; ok {
		return
	}
	m.add(&schema.Dataset{
		Name:        ColumnsTableName,
		Title:       "Columns",
		Description: "Every column of every dataset.",
		Source:      schema.Source{Type: systemSourceType, Path: ColumnsTableName, IDColumn: "id"},
		Columns: []schema.ColumnSpec{
			{ID: "row_count", Aggregation: "sum"},
			{ID: "dataset", Filter: "select"},
		},
	})
	m.paths[ColumnsTableName] = ColumnsTableName
}

// systemLoader builds system datasets from the manager they describe.
type systemLoader struct {
	m *Manager
}

func (l *systemLoader) SourceType() string {
	return systemSourceType
}

func (l *systemLoader) Load(ctx context.Context, path string, _ csvimport.ImportOptions) (*csvimport.Dataset, error) {
	if path != ColumnsTableName {
		return nil, fmt.Errorf("%w: unknown system table %q", ErrUnknownDataset, path)
	}
	return l.m.BuildColumnsTable(ctx)
}

// BuildColumnsTable loads every user dataset and describes its columns.
// Datasets that fail to load are skipped.
func (m *Manager) BuildColumnsTable(ctx context.Context) (*csvimport.Dataset, error) {
	var records []csvimport.Record
	for _, name := range m.Names() {
		if isSystemTable(name) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ds, _ := m.Dataset(name)
		data, err := m.LoadData(ctx, name)
		if err != nil {
			m.log.Warn().Err(err).Str("dataset", name).Msg("skipping dataset in columns table")
			continue
		}
		cols, err := ds.BuildColumns(data)
		if err != nil {
			m.log.Warn().Err(err).Str("dataset", name).Msg("skipping dataset in columns table")
			continue
		}
		for position, col := range cols {
			distinct, isKey := cardinality(data, &col)
			records = append(records, csvimport.Record{
				"id":          name + "." + col.ID,
				"dataset":     name,
				"column":      col.ID,
				"header":      col.Header,
				"kind":        col.Kind.String(),
				"filter":      col.FilterVariant.String(),
				"aggregation": string(col.Aggregation),
				"is_key":      isKey,
				"distinct":    float64(distinct),
				"row_count":   float64(data.Len()),
				"position":    float64(position),
			})
		}
	}
	return csvimport.NewDataset(ColumnsTableName, columnsFields, records, "id"), nil
}

// cardinality counts the distinct values of a column. A column is a key
// when every row holds a distinct, non-empty value.
func cardinality(data *csvimport.Dataset, col *columns.Column[csvimport.Record]) (distinct int, isKey bool) {
	seen := make(map[any]struct{}, data.Len())
	empty := false
	for _, r := range data.Records {
		v, err := col.Value(r)
		if err != nil || v == nil {
			empty = true
			continue
		}
		seen[values.Key(v)] = struct{}{}
	}
	return len(seen), !empty && data.Len() > 0 && len(seen) == data.Len()
}
