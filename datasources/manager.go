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
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/google/gridstate/core/columns"
	"github.com/google/gridstate/core/csvimport"
	"github.com/google/gridstate/core/persistence"
	"github.com/google/gridstate/core/schema"
	"github.com/google/gridstate/core/tables"
	"github.com/google/gridstate/core/views"
)

var (
	// ErrUnknownDataset is returned for a name no schema declares.
	ErrUnknownDataset = errors.New("dataset not found")
	// ErrNoLoader is returned when no loader handles the source type.
	ErrNoLoader = errors.New("no loader registered")
)

// Info summarizes a registered dataset.
type Info struct {
	Name        string `json:"name"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Loaded      bool   `json:"loaded"`
	Rows        int    `json:"rows,omitempty"`
}

// Manager handles loading and caching of datasets.
// Declarations are registered eagerly; data is loaded lazily on demand.
// It is safe for concurrent use.
type Manager struct {
	mu sync.RWMutex

	// Declarations indexed by name, and their registration order.
	datasets map[string]*schema.Dataset
	order    []string

	// Resolved source path per dataset.
	paths map[string]string

	// Loaded data indexed by dataset name - populated lazily
	data map[string]*csvimport.Dataset

	// Registered loaders indexed by source type
	loaders map[string]Loader

	log zerolog.Logger
}

// NewManager creates a manager with the CSV loader registered.
func NewManager(log zerolog.Logger) *Manager {
	m := &Manager{
		datasets: make(map[string]*schema.Dataset),
		paths:    make(map[string]string),
		data:     make(map[string]*csvimport.Dataset),
		loaders:  make(map[string]Loader),
		log:      log.With().Str("component", "datasources").Logger(),
	}
	m.RegisterLoader(NewCsvLoader())
	return m
}

// RegisterLoader registers a loader for its source type.
// If a loader is already registered for this type, it will be replaced.
func (m *Manager) RegisterLoader(loader Loader) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loaders[loader.SourceType()] = loader
}

// LoadConfig registers every dataset of a schema file.
func (m *Manager) LoadConfig(path string) error {
	cfg, err := schema.LoadFile(path)
	if err != nil {
		return err
	}
	return m.AddConfig(cfg)
}

// AddConfig registers every dataset of cfg. Source paths are resolved
// against cfg.BaseDir.
func (m *Manager) AddConfig(cfg *schema.Config) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ds := range cfg.Datasets {
		if _, dup := m.datasets[ds.Name]; dup {
			return fmt.Errorf("%w: %q", schema.ErrDuplicateDataset, ds.Name)
		}
	}
	for _, ds := range cfg.Datasets {
		m.add(ds)
		m.paths[ds.Name] = cfg.ResolvePath(ds.Source.Path)
		m.log.Debug().Str("dataset", ds.Name).Str("path", m.paths[ds.Name]).Msg("registered")
	}
	return nil
}

// Register adds a dataset with already loaded data, replacing any dataset
// of the same name.
func (m *Manager) Register(ds *schema.Dataset, data *csvimport.Dataset) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.datasets[ds.Name]; !ok {
		m.add(ds)
	}
	m.datasets[ds.Name] = ds
	m.data[ds.Name] = data
}

func (m *Manager) add(ds *schema.Dataset) {
	m.datasets[ds.Name] = ds
	m.order = append(m.order, ds.Name)
}

// Names returns the registered dataset names in registration order.
func (m *Manager) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.order...)
}

// Dataset returns the declaration of a dataset.
func (m *Manager) Dataset(name string) (*schema.Dataset, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ds, ok := m.datasets[name]
	return ds, ok
}

// List summarizes every registered dataset.
func (m *Manager) List() []Info {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Info, 0, len(m.order))
	for _, name := range m.order {
		ds := m.datasets[name]
		info := Info{Name: name, Title: ds.Title, Description: ds.Description}
		if info.Title == "" {
			info.Title = name
		}
		if data, ok := m.data[name]; ok {
			info.Loaded = true
			info.Rows = data.Len()
		}
		out = append(out, info)
	}
	return out
}

// LoadData returns the data of a dataset.
// Returns cached data if already loaded; otherwise loads from the source.
func (m *Manager) LoadData(ctx context.Context, name string) (*csvimport.Dataset, error) {
	m.mu.RLock()
	if data, ok := m.data[name]; ok {
		m.mu.RUnlock()
		return data, nil
	}
	ds, ok := m.datasets[name]
	if !ok {
		m.mu.RUnlock()
		return nil, fmt.Errorf("%w: %q", ErrUnknownDataset, name)
	}
	sourceType := ds.Source.Type
	if sourceType == "" {
		sourceType = "csv"
	}
	loader, hasLoader := m.loaders[sourceType]
	path := m.paths[name]
	m.mu.RUnlock()

	if !hasLoader {
		return nil, fmt.Errorf("%w for source type %q", ErrNoLoader, sourceType)
	}

	data, err := loader.Load(ctx, path, ds.ImportOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset %q: %w", name, err)
	}
	data.Name = name
	m.log.Info().Str("dataset", name).Int("rows", data.Len()).Msg("loaded")

	m.mu.Lock()
	if cached, ok := m.data[name]; ok {
		data = cached
	} else {
		m.data[name] = data
	}
	m.mu.Unlock()
	return data, nil
}

// InvalidateCache drops the loaded data of a dataset, forcing a reload on
// next access.
func (m *Manager) InvalidateCache(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, name)
}

// IsLoaded returns whether data for a dataset is currently cached.
func (m *Manager) IsLoaded(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.data[name]
	return ok
}

// OpenOptions configures Open.
type OpenOptions struct {
	// State is applied over the declared initial state and anything restored
	// from persistence.
	State views.State
	// Persistence, when set, restores and saves the table state under the
	// dataset persistence key.
	Persistence  *persistence.Adapter
	OnDiagnostic func(error)
	Logger       zerolog.Logger
}

// Open loads a dataset and creates a table over it.
func (m *Manager) Open(ctx context.Context, name string, opts OpenOptions) (*tables.Table[csvimport.Record], error) {
	ds, ok := m.Dataset(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDataset, name)
	}
	data, err := m.LoadData(ctx, name)
	if err != nil {
		return nil, err
	}
	cols, err := ds.BuildColumns(data)
	if err != nil {
		return nil, fmt.Errorf("dataset %q: %w", name, err)
	}
	set, err := columns.NewSet(cols)
	if err != nil {
		return nil, fmt.Errorf("dataset %q: %w", name, err)
	}

	topts := tables.Options[csvimport.Record]{
		Columns:      set,
		Data:         data.Records,
		GetRowID:     data.RowID,
		Features:     ds.TableFeatures(),
		Initial:      ds.InitialState(),
		OnDiagnostic: opts.OnDiagnostic,
		Logger:       opts.Logger,
	}
	if opts.Persistence != nil {
		key := ds.PersistenceKey()
		include, exclude, err := ds.PersistedSlices()
		if err != nil {
			return nil, fmt.Errorf("dataset %q: %w", name, err)
		}
		if len(include) > 0 || len(exclude) > 0 {
			opts.Persistence.Restrict(key, include, exclude)
		}
		topts.Persistence = opts.Persistence
		topts.PersistenceKey = key
	}
	t, err := tables.New(ctx, topts)
	if err != nil {
		return nil, fmt.Errorf("dataset %q: %w", name, err)
	}
	if !opts.State.IsZero() {
		t.Apply(opts.State)
	}
	return t, nil
}
