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
	"fmt"
)

// Set is the normalized, immutable descriptor set of a table. Keep the same
// *Set across updates; a new Set is treated as a new schema.
type Set[T any] struct {
	cols  []*Column[T]
	index map[string]int
}

// NewSet validates the declarations and fills in size defaults. Declaration
// order becomes the default column order.
func NewSet[T any](cols []Column[T]) (*Set[T], error) {
	s := &Set[T]{
		cols:  make([]*Column[T], 0, len(cols)),
		index: make(map[string]int, len(cols)),
	}
	for i := range cols {
		c := cols[i]
		if c.ID == "" {
			return nil, fmt.Errorf("column %d: %w", i, ErrEmptyID)
		}
		if _, dup := s.index[c.ID]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, c.ID)
		}
		if c.Accessor == nil {
			return nil, fmt.Errorf("column %q: %w", c.ID, ErrNoAccessor)
		}
		if c.Header == "" {
			c.Header = c.ID
		}
		if c.MinSize <= 0 {
			c.MinSize = DefaultMinSize
		}
		if c.MaxSize <= 0 {
			c.MaxSize = DefaultMaxSize
		}
		if c.Size <= 0 {
			c.Size = DefaultSize
		}
		c.Size = c.ClampSize(c.Size)
		s.index[c.ID] = len(s.cols)
		s.cols = append(s.cols, &c)
	}
	return s, nil
}

// MustSet is like NewSet but panics on invalid declarations. Intended for
// package-level schema variables and tests.
func MustSet[T any](cols []Column[T]) *Set[T] {
	s, err := NewSet(cols)
	if err != nil {
		panic(err)
	}
	return s
}

// Len returns the number of columns.
func (s *Set[T]) Len() int {
	return len(s.cols)
}

// At returns the column at position i in declaration order.
func (s *Set[T]) At(i int) *Column[T] {
	return s.cols[i]
}

// Get returns the column with the given id.
func (s *Set[T]) Get(id string) (*Column[T], bool) {
	i, ok := s.index[id]
	if !ok {
		return nil, false
	}
	return s.cols[i], true
}

// Has reports whether the set contains id.
func (s *Set[T]) Has(id string) bool {
	_, ok := s.index[id]
	return ok
}

// IDs returns the column ids in declaration order.
func (s *Set[T]) IDs() []string {
	ids := make([]string, len(s.cols))
	for i, c := range s.cols {
		ids[i] = c.ID
	}
	return ids
}

// All returns the columns in declaration order. The slice is a copy; the
// columns are shared and must not be modified.
func (s *Set[T]) All() []*Column[T] {
	out := make([]*Column[T], len(s.cols))
	copy(out, s.cols)
	return out
}
