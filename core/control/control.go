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

// Package control implements per-slice state ownership. A slice is either
// owned by the table (uncontrolled) or by the caller (controlled), decided
// once when the slice is created.
package control

// Updater computes the next value of a slice from the previous one.
type Updater[S any] func(prev S) S

// Value returns an Updater that replaces the slice with v.
func Value[S any](v S) Updater[S] {
	return func(S) S { return v }
}

// Ownership says who holds the authoritative value of a slice.
type Ownership int

const (
	Uncontrolled Ownership = iota
	Controlled
)

func (o Ownership) String() string {
	if o == Controlled {
		return "controlled"
	}
	return "uncontrolled"
}

// Control is what a caller supplies for one slice. Supplying both Value and
// OnChange makes the slice controlled. OnChange alone keeps the slice
// uncontrolled and is used as a change notification; Value alone seeds the
// initial state.
type Control[S any] struct {
	Value    func() S
	OnChange func(next S)
}

// Slice holds one piece of table state.
type Slice[S any] struct {
	ownership Ownership
	value     S
	get       func() S
	onChange  func(S)
}

// NewSlice resolves the ownership of a slice from the caller's control.
// initial is used for uncontrolled slices when the control has no Value.
func NewSlice[S any](c Control[S], initial S) *Slice[S] {
	if c.Value != nil && c.OnChange != nil {
		return &Slice[S]{ownership: Controlled, get: c.Value, onChange: c.OnChange}
	}
	s := &Slice[S]{ownership: Uncontrolled, value: initial, onChange: c.OnChange}
	if c.Value != nil {
		s.value = c.Value()
	}
	return s
}

// Ownership returns who owns the slice.
func (s *Slice[S]) Ownership() Ownership {
	return s.ownership
}

// Get returns the authoritative value.
func (s *Slice[S]) Get() S {
	if s.ownership == Controlled {
		return s.get()
	}
	return s.value
}

// Update applies u to the current value. Controlled slices hand the result
// to the caller's OnChange and keep no copy; uncontrolled slices store it and
// then notify OnChange if one was given. The computed value is returned.
func (s *Slice[S]) Update(u Updater[S]) S {
	next := u(s.Get())
	if s.ownership == Uncontrolled {
		s.value = next
	}
	if s.onChange != nil {
		s.onChange(next)
	}
	return next
}

// Reset replaces an uncontrolled value without notifying. It is a no-op for
// controlled slices.
func (s *Slice[S]) Reset(v S) {
	if s.ownership == Uncontrolled {
		s.value = v
	}
}
