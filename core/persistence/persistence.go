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

// Package persistence saves selected slices of a table state to a key-value
// store and restores them. Every slice lives under its own key,
// "{prefix}:{key}:{slice}". Writes are debounced and only changed slices are
// written; reads never fail, falling back to defaults slice by slice.
package persistence

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/google/gridstate/core/views"
)

// Defaults for Options.
const (
	DefaultPrefix       = "gridstate"
	DefaultDebounce     = 300 * time.Millisecond
	DefaultMaxWait      = 2 * time.Second
	DefaultWriteTimeout = 5 * time.Second
)

// Options configures an Adapter.
type Options struct {
	// Prefix namespaces every key. Defaults to DefaultPrefix.
	Prefix string
	// Include lists the persisted slices. When set, Exclude is ignored.
	Include []Slice
	// Exclude lists slices that are not persisted when Include is empty.
	Exclude []Slice
	// Debounce is the quiet period before a save is written.
	Debounce time.Duration
	// MaxWait bounds how long a burst of saves can delay a write.
	MaxWait time.Duration
	// WriteTimeout bounds one background write.
	WriteTimeout time.Duration

	Logger  zerolog.Logger
	Metrics *Metrics
}

// Persisted returns the slices selected by Include and Exclude, in
// AllSlices order. Include takes precedence over Exclude.
func (o Options) Persisted() []Slice {
	var out []Slice
	for _, sl := range AllSlices {
		switch {
		case len(o.Include) > 0:
			if slices.Contains(o.Include, sl) {
				out = append(out, sl)
			}
		case !slices.Contains(o.Exclude, sl):
			out = append(out, sl)
		}
	}
	return out
}

func (o Options) withDefaults() Options {
	if o.Prefix == "" {
		o.Prefix = DefaultPrefix
	}
	if o.Debounce <= 0 {
		o.Debounce = DefaultDebounce
	}
	if o.MaxWait <= 0 {
		o.MaxWait = DefaultMaxWait
	}
	if o.WriteTimeout <= 0 {
		o.WriteTimeout = DefaultWriteTimeout
	}
	return o
}

// Snapshot is the result of a Load: the state with every restored slice
// set, and the list of slices that were restored. Other slices hold their
// zero value.
type Snapshot struct {
	State  views.State
	Slices []Slice
}

// Has reports whether sl was restored.
func (s Snapshot) Has(sl Slice) bool {
	return slices.Contains(s.Slices, sl)
}

// Adapter persists table states. It is safe for concurrent use.
type Adapter struct {
	store  Store
	opts   Options
	slices []Slice
	log    zerolog.Logger
	deb    *debouncer

	mu      sync.Mutex
	pending map[string]views.State
	written map[string]map[Slice]string // last encoding known to be stored
	perKey  map[string][]Slice
	locks   map[string]*sync.Mutex // serializes writes and clears per key
	closed  bool
}

// New returns an adapter writing to store. The caller keeps ownership of
// store and closes it after the adapter.
func New(store Store, opts Options) *Adapter {
	opts = opts.withDefaults()
	a := &Adapter{
		store:   store,
		opts:    opts,
		slices:  opts.Persisted(),
		log:     opts.Logger.With().Str("component", "persistence").Logger(),
		pending: make(map[string]views.State),
		written: make(map[string]map[Slice]string),
		perKey:  make(map[string][]Slice),
		locks:   make(map[string]*sync.Mutex),
	}
	if len(opts.Include) > 0 && len(opts.Exclude) > 0 {
		a.log.Warn().Msg("both include and exclude are set; exclude is ignored")
	}
	a.deb = newDebouncer(opts.Debounce, opts.MaxWait, a.writeInBackground)
	return a
}

// Slices returns the persisted slices.
func (a *Adapter) Slices() []Slice {
	return slices.Clone(a.slices)
}

// Restrict narrows the slices persisted under key to those selected by
// include and exclude. Slices the adapter does not persist stay excluded.
func (a *Adapter) Restrict(key string, include, exclude []Slice) {
	sel := Options{Include: include, Exclude: exclude}.Persisted()
	out := make([]Slice, 0, len(sel))
	for _, sl := range a.slices {
		if slices.Contains(sel, sl) {
			out = append(out, sl)
		}
	}
	a.mu.Lock()
	a.perKey[key] = out
	a.mu.Unlock()
}

// SlicesOf returns the slices persisted under key.
func (a *Adapter) SlicesOf(key string) []Slice {
	a.mu.Lock()
	defer a.mu.Unlock()
	if sl, ok := a.perKey[key]; ok {
		return slices.Clone(sl)
	}
	return slices.Clone(a.slices)
}

// Key returns the store key of one slice.
func (a *Adapter) Key(key string, sl Slice) string {
	return a.opts.Prefix + ":" + key + ":" + string(sl)
}

// Load restores the persisted slices of key. Absent, unreadable and
// malformed slices are skipped and keep their defaults.
func (a *Adapter) Load(ctx context.Context, key string) Snapshot {
	var snap Snapshot
	baseline := make(map[Slice]string)
	for _, sl := range a.SlicesOf(key) {
		raw, ok, err := a.store.Get(ctx, a.Key(key, sl))
		switch {
		case err != nil:
			a.opts.Metrics.read(sl, "error")
			a.log.Warn().Err(err).Str("key", key).Str("slice", string(sl)).Msg("read failed")
			continue
		case !ok:
			a.opts.Metrics.read(sl, "miss")
			continue
		case !decodeSlice(sl, raw, &snap.State):
			a.opts.Metrics.read(sl, "corrupt")
			a.log.Debug().Str("key", key).Str("slice", string(sl)).Msg("ignoring malformed slice")
			continue
		}
		a.opts.Metrics.read(sl, "hit")
		snap.Slices = append(snap.Slices, sl)
		if enc, err := encodeSlice(sl, snap.State); err == nil {
			baseline[sl] = enc
		}
	}
	a.mu.Lock()
	a.written[key] = baseline
	a.mu.Unlock()
	return snap
}

// Save schedules a write of st under key. Saves arriving within the debounce
// period are coalesced and only the last state is written.
func (a *Adapter) Save(key string, st views.State) {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	a.pending[key] = st.Clone()
	a.mu.Unlock()
	if a.deb.Add(key) {
		a.opts.Metrics.coalesce()
	}
}

// Flush writes every pending save now.
func (a *Adapter) Flush(ctx context.Context) error {
	var errs []error
	for _, key := range a.deb.Drain() {
		errs = append(errs, a.write(ctx, key))
	}
	return errors.Join(errs...)
}

// Clear drops the pending save of key and deletes every slice stored under
// it, including slices that are no longer persisted. Keys that merely start
// with key, such as "key:other", are left alone.
func (a *Adapter) Clear(ctx context.Context, key string) error {
	lock := a.keyLock(key)
	lock.Lock()
	defer lock.Unlock()

	a.deb.Cancel(key)
	a.mu.Lock()
	delete(a.pending, key)
	delete(a.written, key)
	a.mu.Unlock()
	keys := make([]string, len(AllSlices))
	for i, sl := range AllSlices {
		keys[i] = a.Key(key, sl)
	}
	if err := a.store.Delete(ctx, keys...); err != nil {
		return err
	}
	a.log.Debug().Str("key", key).Msg("cleared")
	return nil
}

func (a *Adapter) keyLock(key string) *sync.Mutex {
	a.mu.Lock()
	defer a.mu.Unlock()
	l, ok := a.locks[key]
	if !ok {
		l = &sync.Mutex{}
		a.locks[key] = l
	}
	return l
}

// Close stops the debouncer and writes the saves that were still pending.
// Later saves are dropped.
func (a *Adapter) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return ErrClosed
	}
	a.closed = true
	a.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), a.opts.WriteTimeout)
	defer cancel()
	var errs []error
	for _, key := range a.deb.Stop() {
		errs = append(errs, a.write(ctx, key))
	}
	return errors.Join(errs...)
}

func (a *Adapter) writeInBackground(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), a.opts.WriteTimeout)
	defer cancel()
	if err := a.write(ctx, key); err != nil {
		a.log.Warn().Err(err).Str("key", key).Msg("background write failed")
	}
}

// write stores the slices of the pending state of key that differ from what
// is known to be stored.
func (a *Adapter) write(ctx context.Context, key string) error {
	lock := a.keyLock(key)
	lock.Lock()
	defer lock.Unlock()

	a.mu.Lock()
	st, ok := a.pending[key]
	delete(a.pending, key)
	known := a.written[key]
	if known == nil {
		known = make(map[Slice]string)
		a.written[key] = known
	}
	last := maps.Clone(known)
	a.mu.Unlock()
	if !ok {
		return nil
	}

	var errs []error
	done := make(map[Slice]string)
	for _, sl := range a.SlicesOf(key) {
		enc, err := encodeSlice(sl, st)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if prev, ok := last[sl]; ok && prev == enc {
			a.opts.Metrics.write(sl, "unchanged")
			continue
		}
		if err := a.store.Set(ctx, a.Key(key, sl), enc); err != nil {
			a.opts.Metrics.write(sl, "error")
			errs = append(errs, err)
			continue
		}
		a.opts.Metrics.write(sl, "ok")
		done[sl] = enc
	}

	a.mu.Lock()
	if known := a.written[key]; known != nil {
		for sl, enc := range done {
			known[sl] = enc
		}
	}
	a.mu.Unlock()
	a.log.Debug().Str("key", key).Int("written", len(done)).Msg("saved")
	return errors.Join(errs...)
}
