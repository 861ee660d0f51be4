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

// Package demo registers sample datasets: orders and regions from embedded
// CSV files, and a generated transactions table for performance testing.
package demo

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/google/gridstate/core/csvimport"
	"github.com/google/gridstate/core/schema"
	"github.com/google/gridstate/datasources"
)

//go:embed data/datasets.yaml
var datasetsYAML []byte

//go:embed data/orders.csv
var ordersCSV string

//go:embed data/regions.csv
var regionsCSV string

var embeddedCSV = map[string]string{
	"orders":  ordersCSV,
	"regions": regionsCSV,
}

// Config returns the schema of the embedded datasets.
func Config() (*schema.Config, error) {
	return schema.Parse(datasetsYAML)
}

// importTable imports the embedded CSV of a declared dataset.
func importTable(ds *schema.Dataset) (*csvimport.Dataset, error) {
	csv, ok := embeddedCSV[ds.Name]
	if !ok {
		return nil, fmt.Errorf("no embedded data for dataset %q", ds.Name)
	}
	data, err := csvimport.ImportFromReader(strings.NewReader(csv), ds.ImportOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to import %s CSV: %w", ds.Name, err)
	}
	data.Name = ds.Name
	return data, nil
}

// Register adds the demo datasets to m. perfRows sets the size of the
// generated transactions table; zero leaves it out.
func Register(m *datasources.Manager, perfRows int) error {
	cfg, err := Config()
	if err != nil {
		return err
	}
	for _, ds := range cfg.Datasets {
		data, err := importTable(ds)
		if err != nil {
			return err
		}
		m.Register(ds, data)
	}
	if perfRows > 0 {
		m.Register(TransactionsSchema(), CreateTransactions(perfRows))
	}
	return nil
}
