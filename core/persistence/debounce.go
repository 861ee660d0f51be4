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

package persistence

import (
	"sync"
	"time"
)

// debouncer coalesces bursts of signals per key. A key fires delay after its
// last signal, and never later than maxWait after the first signal of the
// burst.
type debouncer struct {
	delay   time.Duration
	maxWait time.Duration
	fire    func(key string)

	mu      sync.Mutex
	pending map[string]*burst
	closed  bool
	wg      sync.WaitGroup
}

// burst is the pending state of one key.
type burst struct {
	timer *time.Timer
	first time.Time
	gen   uint64
}

func newDebouncer(delay, maxWait time.Duration, fire func(key string)) *debouncer {
	return &debouncer{
		delay:   delay,
		maxWait: maxWait,
		fire:    fire,
		pending: make(map[string]*burst),
	}
}

// Add signals key and reports whether the signal joined a pending burst.
func (d *debouncer) Add(key string) (coalesced bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return false
	}

	now := time.Now()
	b, ok := d.pending[key]
	if ok {
		b.timer.Stop()
	} else {
		b = &burst{first: now}
		d.pending[key] = b
	}

	wait := d.delay
	if d.maxWait > 0 {
		wait = min(wait, max(d.maxWait-now.Sub(b.first), 0))
	}
	b.gen++
	gen := b.gen
	b.timer = time.AfterFunc(wait, func() { d.run(key, b, gen) })
	return ok
}

func (d *debouncer) run(key string, b *burst, gen uint64) {
	d.mu.Lock()
	if d.closed || d.pending[key] != b || b.gen != gen {
		d.mu.Unlock()
		return
	}
	delete(d.pending, key)
	d.wg.Add(1)
	d.mu.Unlock()

	defer d.wg.Done()
	d.fire(key)
}

// Cancel drops the pending burst of key without firing it.
func (d *debouncer) Cancel(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if b, ok := d.pending[key]; ok {
		b.timer.Stop()
		delete(d.pending, key)
	}
}

// Drain cancels every pending burst and returns their keys, so the caller
// can fire them synchronously.
func (d *debouncer) Drain() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.drainLocked()
}

func (d *debouncer) drainLocked() []string {
	keys := make([]string, 0, len(d.pending))
	for key, b := range d.pending {
		b.timer.Stop()
		keys = append(keys, key)
	}
	clear(d.pending)
	return keys
}

// Stop cancels pending bursts, waits for running callbacks and returns the
// keys that never fired. Add is a no-op afterwards.
func (d *debouncer) Stop() []string {
	d.mu.Lock()
	d.closed = true
	keys := d.drainLocked()
	d.mu.Unlock()
	d.wg.Wait()
	return keys
}
