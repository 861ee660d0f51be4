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

// Package schema reads dataset declarations from YAML. A declaration names
// the data source, describes its columns and enables table features.
//
//	datasets:
//	  - name: accounts
//	    title: Accounts
//	    source: {type: csv, path: accounts.csv, idColumn: id}
//	    columns:
//	      - {id: status, filter: select, aggregation: count}
//	      - {id: amount, kind: number, aggregation: sum, size: 120}
//	    features:
//	      sorting: {multi: true}
//	      pagination: {pageSize: 20}
//	      selection: {mode: multiple, scope: filtered}
//	    initial:
//	      sorting: [{id: amount, desc: true}]
//	    persistence: {key: accounts, exclude: [rowSelection]}
package schema

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/google/gridstate/core/aggregates"
	"github.com/google/gridstate/core/columns"
	"github.com/google/gridstate/core/csvimport"
	"github.com/google/gridstate/core/layout"
	"github.com/google/gridstate/core/paging"
	"github.com/google/gridstate/core/persistence"
	"github.com/google/gridstate/core/selection"
	"github.com/google/gridstate/core/sorting"
	"github.com/google/gridstate/core/tables"
	"github.com/google/gridstate/core/values"
	"github.com/google/gridstate/core/views"
)

var (
	// ErrNoName is returned for a dataset without a name.
	ErrNoName = errors.New("dataset has no name")
	// ErrDuplicateDataset is returned when two datasets share a name.
	ErrDuplicateDataset = errors.New("duplicate dataset")
	// ErrUnknownColumn is returned when a declaration references a column
	// the data does not have.
	ErrUnknownColumn = errors.New("unknown column")
	// ErrUnknownSlice is returned for an unknown persistence slice name.
	ErrUnknownSlice = errors.New("unknown state slice")
)

// Config is the root of a schema file.
type Config struct {
	Datasets []*Dataset `yaml:"datasets"`

	// BaseDir resolves relative source paths. Set by LoadFile.
	BaseDir string `yaml:"-"`
}

// Dataset declares one table.
type Dataset struct {
	Name        string       `yaml:"name"`
	Title       string       `yaml:"title"`
	Description string       `yaml:"description"`
	Source      Source       `yaml:"source"`
	Columns     []ColumnSpec `yaml:"columns"`

	// Exclusive drops data columns that are not declared.
	Exclusive bool `yaml:"exclusive"`

	Features    FeatureSpec     `yaml:"features"`
	Initial     InitialSpec     `yaml:"initial"`
	Persistence PersistenceSpec `yaml:"persistence"`
}

// Source locates the data of a dataset.
type Source struct {
	Type      string `yaml:"type"`
	Path      string `yaml:"path"`
	Delimiter string `yaml:"delimiter"`
	NoHeader  bool   `yaml:"noHeader"`
	IDColumn  string `yaml:"idColumn"`
}

// ColumnSpec declares or overrides one column. Pointer flags default to
// enabled when absent.
type ColumnSpec struct {
	ID          string `yaml:"id"`
	Header      string `yaml:"header"`
	Kind        string `yaml:"kind"`
	Filter      string `yaml:"filter"`
	Aggregation string `yaml:"aggregation"`

	Size    int `yaml:"size"`
	MinSize int `yaml:"minSize"`
	MaxSize int `yaml:"maxSize"`

	Sortable   *bool `yaml:"sortable"`
	Filterable *bool `yaml:"filterable"`
	Searchable *bool `yaml:"searchable"`
	Groupable  *bool `yaml:"groupable"`
	Hideable   *bool `yaml:"hideable"`
	Pinnable   *bool `yaml:"pinnable"`
	Resizable  *bool `yaml:"resizable"`
}

// FeatureSpec enables table features. An absent section leaves the feature
// enabled; set enabled: false to turn it off.
type FeatureSpec struct {
	Sorting struct {
		Enabled *bool `yaml:"enabled"`
		Multi   *bool `yaml:"multi"`
	} `yaml:"sorting"`
	Filtering struct {
		Enabled *bool `yaml:"enabled"`
		Global  *bool `yaml:"global"`
	} `yaml:"filtering"`
	Pagination struct {
		Enabled         *bool `yaml:"enabled"`
		PageSize        int   `yaml:"pageSize"`
		PageSizeOptions []int `yaml:"pageSizeOptions"`
	} `yaml:"pagination"`
	Columns struct {
		Visibility *bool `yaml:"visibility"`
		Resizing   *bool `yaml:"resizing"`
		Reordering *bool `yaml:"reordering"`
		Pinning    *bool `yaml:"pinning"`
	} `yaml:"columns"`
	Selection struct {
		Enabled *bool  `yaml:"enabled"`
		Mode    string `yaml:"mode"`
		Scope   string `yaml:"scope"`
	} `yaml:"selection"`
	Grouping struct {
		Enabled *bool `yaml:"enabled"`
	} `yaml:"grouping"`
	Expansion struct {
		Enabled      *bool `yaml:"enabled"`
		ExpandGroups bool  `yaml:"expandGroups"`
	} `yaml:"expansion"`
}

// InitialSpec is the state a table starts from and resets to.
type InitialSpec struct {
	Sorting      []sorting.Sort `yaml:"sorting"`
	GlobalFilter string         `yaml:"globalFilter"`
	Filters      map[string]any `yaml:"filters"`
	Grouping     []string       `yaml:"grouping"`
	Hidden       []string       `yaml:"hidden"`
	PinLeft      []string       `yaml:"pinLeft"`
	PinRight     []string       `yaml:"pinRight"`
	Order        []string       `yaml:"order"`
	PageSize     int            `yaml:"pageSize"`
}

// PersistenceSpec selects the persisted state slices.
type PersistenceSpec struct {
	Key     string   `yaml:"key"`
	Include []string `yaml:"include"`
	Exclude []string `yaml:"exclude"`
}

// LoadFile reads and validates a schema file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.BaseDir = filepath.Dir(path)
	return cfg, nil
}

// Parse decodes and validates schema YAML.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse schema: %w", err)
	}
	seen := make(map[string]bool, len(cfg.Datasets))
	for i, ds := range cfg.Datasets {
		if ds == nil || ds.Name == "" {
			return nil, fmt.Errorf("dataset %d: %w", i, ErrNoName)
		}
		if seen[ds.Name] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateDataset, ds.Name)
		}
		seen[ds.Name] = true
		if _, _, err := ds.PersistedSlices(); err != nil {
			return nil, fmt.Errorf("dataset %q: %w", ds.Name, err)
		}
	}
	return &cfg, nil
}

// Dataset returns the dataset with the given name.
func (c *Config) Dataset(name string) (*Dataset, bool) {
	for _, ds := range c.Datasets {
		if ds.Name == name {
			return ds, true
		}
	}
	return nil, false
}

// ResolvePath returns the source path relative to the schema file.
func (c *Config) ResolvePath(p string) string {
	if p == "" || filepath.IsAbs(p) || c.BaseDir == "" {
		return p
	}
	return filepath.Join(c.BaseDir, p)
}

// ImportOptions returns the CSV import options of the dataset source.
// Declared kinds and headers are applied during import.
func (d *Dataset) ImportOptions() csvimport.ImportOptions {
	opts := csvimport.DefaultOptions()
	opts.HasHeader = !d.Source.NoHeader
	if r := []rune(d.Source.Delimiter); len(r) > 0 {
		opts.Delimiter = r[0]
	}
	opts.IDColumn = d.Source.IDColumn
	for _, c := range d.Columns {
		opts.ColumnSources[c.ID] = csvimport.ColumnSource{
			DisplayName: c.Header,
			Kind:        values.ParseKind(c.Kind),
		}
	}
	return opts
}

// BuildColumns merges the declarations with the columns of the imported
// data. Declared columns come first in declaration order; the remaining
// data columns follow unless the dataset is exclusive.
func (d *Dataset) BuildColumns(data *csvimport.Dataset) ([]columns.Column[csvimport.Record], error) {
	base := data.Columns()
	index := make(map[string]int, len(base))
	for i, c := range base {
		index[c.ID] = i
	}

	out := make([]columns.Column[csvimport.Record], 0, len(base))
	used := make(map[string]bool, len(d.Columns))
	for _, spec := range d.Columns {
		i, ok := index[spec.ID]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, spec.ID)
		}
		out = append(out, spec.apply(base[i]))
		used[spec.ID] = true
	}
	if !d.Exclusive {
		for _, c := range base {
			if !used[c.ID] {
				out = append(out, c)
			}
		}
	}
	return out, nil
}

func (s ColumnSpec) apply(c columns.Column[csvimport.Record]) columns.Column[csvimport.Record] {
	if s.Header != "" {
		c.Header = s.Header
	}
	if s.Kind != "" {
		c.Kind = values.ParseKind(s.Kind)
	}
	if s.Filter != "" {
		c.FilterVariant = columns.ParseFilterVariant(s.Filter)
	}
	c.Aggregation = aggregates.ParseFn(s.Aggregation)
	c.Size, c.MinSize, c.MaxSize = s.Size, s.MinSize, s.MaxSize

	c.NoSorting = off(s.Sortable)
	c.NoFiltering = off(s.Filterable)
	c.NoGlobalFilter = off(s.Searchable)
	c.NoGrouping = off(s.Groupable)
	c.NoHiding = off(s.Hideable)
	c.NoPinning = off(s.Pinnable)
	c.NoResizing = off(s.Resizable)
	return c
}

func off(b *bool) bool {
	return b != nil && !*b
}

func on(b *bool) bool {
	return b == nil || *b
}

// TableFeatures returns the table features of the dataset.
func (d *Dataset) TableFeatures() tables.Features[csvimport.Record] {
	f := d.Features
	return tables.Features[csvimport.Record]{
		Sorting: tables.SortingFeature{
			Enabled: on(f.Sorting.Enabled),
			Multi:   on(f.Sorting.Multi),
		},
		Filtering: tables.FilteringFeature{
			Enabled:  on(f.Filtering.Enabled),
			NoGlobal: off(f.Filtering.Global),
		},
		Pagination: tables.PaginationFeature{
			Enabled:         on(f.Pagination.Enabled),
			PageSize:        f.Pagination.PageSize,
			PageSizeOptions: orDefault(f.Pagination.PageSizeOptions, paging.DefaultPageSizeOptions),
		},
		Columns: layout.Features{
			Visibility: on(f.Columns.Visibility),
			Resizing:   on(f.Columns.Resizing),
			Reordering: on(f.Columns.Reordering),
			Pinning:    on(f.Columns.Pinning),
		},
		Selection: tables.SelectionFeature[csvimport.Record]{
			Enabled: on(f.Selection.Enabled),
			Mode:    selection.ParseMode(f.Selection.Mode),
			Scope:   selection.ParseScope(f.Selection.Scope),
		},
		Grouping: tables.GroupingFeature{Enabled: on(f.Grouping.Enabled)},
		Expansion: tables.ExpansionFeature[csvimport.Record]{
			Enabled:      on(f.Expansion.Enabled),
			ExpandGroups: f.Expansion.ExpandGroups,
		},
	}
}

func orDefault(v, def []int) []int {
	if len(v) == 0 {
		return def
	}
	return v
}

// InitialState returns the declared initial state. Unset parts keep their
// zero value so the table defaults apply.
func (d *Dataset) InitialState() views.State {
	in := d.Initial
	st := views.State{
		Sorting:      slices.Clone(in.Sorting),
		GlobalFilter: in.GlobalFilter,
		Grouping:     slices.Clone(in.Grouping),
	}
	if len(in.Filters) > 0 {
		ids := make([]string, 0, len(in.Filters))
		for id := range in.Filters {
			ids = append(ids, id)
		}
		slices.Sort(ids)
		for _, id := range ids {
			st.ColumnFilters = st.ColumnFilters.With(id, in.Filters[id])
		}
	}
	if len(in.Hidden) > 0 {
		st.ColumnVisibility = make(layout.Visibility, len(in.Hidden))
		for _, id := range in.Hidden {
			st.ColumnVisibility[id] = false
		}
	}
	if len(in.PinLeft) > 0 || len(in.PinRight) > 0 {
		st.ColumnPinning = layout.Pinning{Left: slices.Clone(in.PinLeft), Right: slices.Clone(in.PinRight)}
	}
	if len(in.Order) > 0 {
		st.ColumnOrder = slices.Clone(in.Order)
	}
	st.Pagination.PageSize = in.PageSize
	return st
}

// PersistenceKey returns the storage key of the dataset state.
func (d *Dataset) PersistenceKey() string {
	if d.Persistence.Key != "" {
		return d.Persistence.Key
	}
	return d.Name
}

// PersistedSlices parses the include and exclude lists.
func (d *Dataset) PersistedSlices() (include, exclude []persistence.Slice, err error) {
	parse := func(names []string) ([]persistence.Slice, error) {
		var out []persistence.Slice
		for _, n := range names {
			sl, ok := persistence.ParseSlice(n)
			if !ok {
				return nil, fmt.Errorf("%w: %q", ErrUnknownSlice, n)
			}
			out = append(out, sl)
		}
		return out, nil
	}
	if include, err = parse(d.Persistence.Include); err != nil {
		return nil, nil, err
	}
	if exclude, err = parse(d.Persistence.Exclude); err != nil {
		return nil, nil, err
	}
	return include, exclude, nil
}
