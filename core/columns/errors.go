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

package columns

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyID is returned when a column has no id.
	ErrEmptyID = errors.New("column id is empty")

	// ErrDuplicateColumn is returned when two columns share an id.
	ErrDuplicateColumn = errors.New("duplicate column id")

	// ErrNoAccessor is returned when a column has no accessor.
	ErrNoAccessor = errors.New("column has no accessor")

	// ErrColumnNotFound is returned when a column id is not in the set.
	ErrColumnNotFound = errors.New("column not found")
)

// Names of the caller-supplied functions a FuncError can originate from.
const (
	FuncAccessor   = "accessor"
	FuncComparator = "comparator"
	FuncFilter     = "filter"
	FuncCanSelect  = "getCanSelect"
	FuncCanExpand  = "getCanExpand"
	FuncRowID      = "getRowId"
)

// FuncError reports a caller-supplied function that panicked while the
// derived model was computed. The offending contribution is neutralized and
// the computation continues.
type FuncError struct {
	ColumnID string
	Func     string
	RowID    string
	Cause    any
}

func (e *FuncError) Error() string {
	where := e.Func
	if e.ColumnID != "" {
		where = fmt.Sprintf("column %q %s", e.ColumnID, e.Func)
	}
	if e.RowID != "" {
		where += fmt.Sprintf(" (row %s)", e.RowID)
	}
	return fmt.Sprintf("%s failed: %v", where, e.Cause)
}

// Unwrap exposes the cause when it is an error.
func (e *FuncError) Unwrap() error {
	if err, ok := e.Cause.(error); ok {
		return err
	}
	return nil
}

// Reporter receives isolated callback failures.
type Reporter func(err error)

// Report calls r with err when both are non-nil.
func (r Reporter) Report(err error) {
	if r != nil && err != nil {
		r(err)
	}
}
