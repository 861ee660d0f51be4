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

package demo

import (
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/google/gridstate/core/csvimport"
	"github.com/google/gridstate/core/schema"
	"github.com/google/gridstate/core/values"
)

// Performance test configuration - easily modifiable cardinality
const (
	PerfNumUsers      = 5_000
	PerfNumCategories = 200
)

var perfStatuses = []string{"pending", "completed", "cancelled", "processing"}

// perfEpoch is the timestamp of the first generated transaction.
var perfEpoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// TransactionID returns the id of the i-th generated transaction. Ids are
// name-based UUIDs, so they are stable across runs.
func TransactionID(i int) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("txn/"+strconv.Itoa(i))).String()
}

// CreateTransactions generates n transactions with deterministic values.
func CreateTransactions(n int) *csvimport.Dataset {
	fields := []csvimport.Field{
		{ID: "txn_id", Header: "Transaction ID", Kind: values.KindString},
		{ID: "user", Header: "User", Kind: values.KindString},
		{ID: "category", Header: "Category", Kind: values.KindString},
		{ID: "status", Header: "Status", Kind: values.KindString},
		{ID: "amount", Header: "Amount", Kind: values.KindNumber},
		{ID: "created", Header: "Created", Kind: values.KindDate},
	}
	records := make([]csvimport.Record, n)
	for i := range n {
		category := i % PerfNumCategories
		// Make category 0 more common
		if i%7 == 0 {
			category = 0
		}
		records[i] = csvimport.Record{
			"txn_id":   TransactionID(i),
			"user":     "user-" + strconv.Itoa(i%PerfNumUsers),
			"category": "category-" + strconv.Itoa(category),
			"status":   perfStatuses[i%len(perfStatuses)],
			"amount":   float64(10 + i%1000),
			"created":  perfEpoch.Add(time.Duration(i) * time.Minute),
		}
	}
	return csvimport.NewDataset("transactions", fields, records, "txn_id")
}

// TransactionsSchema declares the generated transactions dataset.
func TransactionsSchema() *schema.Dataset {
	return &schema.Dataset{
		Name:        "transactions",
		Title:       "Transactions",
		Description: "Generated transactions for performance testing.",
		Columns: []schema.ColumnSpec{
			{ID: "txn_id", Header: "Transaction ID"},
			{ID: "status", Header: "Status", Filter: "select"},
			{ID: "amount", Header: "Amount", Aggregation: "sum"},
			{ID: "created", Header: "Created", Aggregation: "extent"},
		},
	}
}
