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
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/armon/go-radix"
)

var (
	// ErrUnknownStore is returned by Open for an unsupported store type.
	ErrUnknownStore = errors.New("unknown store type")

	// ErrClosed is returned by operations on a closed adapter.
	ErrClosed = errors.New("persistence adapter closed")
)

// Store is a string key-value backend. Get reports false for absent keys.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
	// DeletePrefix removes every key starting with prefix and returns how
	// many were removed.
	DeletePrefix(ctx context.Context, prefix string) (int, error)
	Close() error
}

// StoreConfig selects and configures a Store.
type StoreConfig struct {
	// Type is one of "memory", "sqlite" or "redis".
	Type string
	// DSN is the SQLite data source name, e.g. "file:grid.db" or ":memory:".
	DSN string
	// RedisAddr is the host:port of the Redis server.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// Open creates the store described by cfg.
func Open(ctx context.Context, cfg StoreConfig) (Store, error) {
	switch strings.ToLower(cfg.Type) {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite", "sql":
		return OpenSQLite(ctx, cfg.DSN)
	case "redis":
		return OpenRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStore, cfg.Type)
	}
}

// MemoryStore keeps values in a radix tree, so clearing a table key is a
// single prefix deletion.
type MemoryStore struct {
	mu   sync.RWMutex
	tree *radix.Tree
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tree: radix.New()}
}

func (m *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.tree.Get(key)
	if !ok {
		return "", false, nil
	}
	return v.(string), true, nil
}

func (m *MemoryStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tree.Insert(key, value)
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		m.tree.Delete(k)
	}
	return nil
}

func (m *MemoryStore) DeletePrefix(_ context.Context, prefix string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tree.DeletePrefix(prefix), nil
}

// Keys returns the stored keys starting with prefix, in order.
func (m *MemoryStore) Keys(prefix string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var keys []string
	m.tree.WalkPrefix(prefix, func(k string, _ interface{}) bool {
		keys = append(keys, k)
		return false
	})
	return keys
}

func (m *MemoryStore) Close() error {
	return nil
}
