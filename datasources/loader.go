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

// Package datasources registers the datasets declared in schema files,
// loads their data on demand and opens tables over them.
package datasources

import (
	"context"

	"github.com/google/gridstate/core/csvimport"
)

// Loader is the interface that all data source loaders must implement.
// A CSV loader is registered by default; callers can register loaders for
// other source types.
type Loader interface {
	// SourceType returns the type identifier used in schema files (e.g. "csv").
	SourceType() string

	// Load reads the data at path. opts carries the declared column kinds
	// and headers.
	Load(ctx context.Context, path string, opts csvimport.ImportOptions) (*csvimport.Dataset, error)
}

// CsvLoader loads CSV files.
type CsvLoader struct{}

// NewCsvLoader creates a new CSV loader.
func NewCsvLoader() *CsvLoader {
	return &CsvLoader{}
}

// SourceType returns "csv".
func (l *CsvLoader) SourceType() string {
	return "csv"
}

// Load imports the CSV file at path.
func (l *CsvLoader) Load(ctx context.Context, path string, opts csvimport.ImportOptions) (*csvimport.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return csvimport.ImportFromFile(path, opts)
}
