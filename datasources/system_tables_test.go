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
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/google/gridstate/core/csvimport"
)

func TestColumnsTable(t *testing.T) {
	ctx := context.Background()
	manager := NewManager(zerolog.Nop())
	require.NoError(t, manager.LoadConfig(writeFixtures(t)))
	manager.AddSystemTables()
	manager.AddSystemTables()

	assert.Equal(t, []string{"orders", "remote", ColumnsTableName}, manager.Names())
	assert.False(t, manager.IsLoaded(ColumnsTableName))

	data, err := manager.LoadData(ctx, ColumnsTableName)
	require.NoError(t, err)

	// remote has no loader and is skipped
	require.Equal(t, 3, data.Len())
	byID := map[string]csvimport.Record{}
	for i, r := range data.Records {
		byID[data.RowID(r, i)] = r
	}

	orderID := byID["orders.order_id"]
	require.NotNil(t, orderID)
	assert.Equal(t, "orders", orderID["dataset"])
	assert.Equal(t, true, orderID["is_key"])
	assert.Equal(t, 3.0, orderID["row_count"])
	assert.Equal(t, 1.0, orderID["position"])

	customer := byID["orders.customer"]
	require.NotNil(t, customer)
	assert.Equal(t, false, customer["is_key"])
	assert.Equal(t, 2.0, customer["distinct"])

	total := byID["orders.total"]
	require.NotNil(t, total)
	assert.Equal(t, "number", total["kind"])
	assert.Equal(t, "sum", total["aggregation"])
	assert.Equal(t, 0.0, total["position"])
}

func TestColumnsTableOpens(t *testing.T) {
	ctx := context.Background()
	manager := NewManager(zerolog.Nop())
	require.NoError(t, manager.LoadConfig(writeFixtures(t)))
	manager.AddSystemTables()

	tbl, err := manager.Open(ctx, ColumnsTableName, OpenOptions{})
	require.NoError(t, err)
	assert.Equal(t, 3, tbl.Model().FilteredCount)
}

func TestColumnsTableHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	manager := NewManager(zerolog.Nop())
	require.NoError(t, manager.LoadConfig(writeFixtures(t)))

	_, err := manager.BuildColumnsTable(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
