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
	"os"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseStore runs the Store contract against s.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "p:t:sorting")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "p:t:sorting", `[]`))
	require.NoError(t, s.Set(ctx, "p:t:sorting", `[{"id":"a"}]`))
	require.NoError(t, s.Set(ctx, "p:t:grouping", `["a"]`))
	require.NoError(t, s.Set(ctx, "p:t2:grouping", `["b"]`))
	require.NoError(t, s.Set(ctx, "p:t_x:grouping", `["c"]`))

	v, ok, err := s.Get(ctx, "p:t:sorting")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"id":"a"}]`, v)

	n, err := s.DeletePrefix(ctx, "p:t:")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, ok, _ = s.Get(ctx, "p:t:grouping")
	assert.False(t, ok)
	_, ok, _ = s.Get(ctx, "p:t2:grouping")
	assert.True(t, ok)
	_, ok, _ = s.Get(ctx, "p:t_x:grouping")
	assert.True(t, ok)

	// substr counts characters, not bytes
	require.NoError(t, s.Set(ctx, "p:café:sorting", `[]`))
	require.NoError(t, s.Set(ctx, "p:cafés:sorting", `[]`))
	n, err = s.DeletePrefix(ctx, "p:café:")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	_, ok, _ = s.Get(ctx, "p:café:sorting")
	assert.False(t, ok)
	_, ok, _ = s.Get(ctx, "p:cafés:sorting")
	assert.True(t, ok)
	require.NoError(t, s.Delete(ctx, "p:cafés:sorting"))

	require.NoError(t, s.Delete(ctx, "p:t2:grouping", "missing"))
	_, ok, _ = s.Get(ctx, "p:t2:grouping")
	assert.False(t, ok)
	require.NoError(t, s.Delete(ctx))
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestSQLiteStore(t *testing.T) {
	s, err := OpenSQLite(context.Background(), ":memory:")
	require.NoError(t, err)
	defer s.Close()
	exerciseStore(t, s)
}

func TestSQLiteStoreBacksAdapter(t *testing.T) {
	ctx := context.Background()
	s, err := OpenSQLite(ctx, ":memory:")
	require.NoError(t, err)
	defer s.Close()

	a := New(s, Options{})
	want := sampleState()
	a.Save("orders", want)
	require.NoError(t, a.Close())

	snap := New(s, Options{}).Load(ctx, "orders")
	assert.Len(t, snap.Slices, len(AllSlices))
	assert.Equal(t, want.Sorting, snap.State.Sorting)
	assert.Equal(t, want.ColumnPinning, snap.State.ColumnPinning)
}

func TestSQLStoreErrors(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	s := NewSQLStore(db)
	s.now = func() time.Time { return time.UnixMilli(1000) }
	ctx := context.Background()
	boom := errors.New("connection reset")

	mock.ExpectQuery("SELECT state_value FROM gridstate_kv").WithArgs("k").WillReturnError(boom)
	_, _, err = s.Get(ctx, "k")
	assert.ErrorIs(t, err, boom)

	mock.ExpectExec("INSERT INTO gridstate_kv").WithArgs("k", "v", int64(1000)).WillReturnError(boom)
	assert.ErrorIs(t, s.Set(ctx, "k", "v"), boom)

	mock.ExpectExec("DELETE FROM gridstate_kv").WithArgs(int64(len("p:")), "p:").WillReturnResult(sqlmock.NewResult(0, 3))
	n, err := s.DeletePrefix(ctx, "p:")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	// a failing store degrades Load to defaults
	mock.ExpectQuery("SELECT state_value FROM gridstate_kv").WillReturnError(boom)
	snap := New(s, Options{Include: []Slice{SliceSorting}}).Load(ctx, "k")
	assert.Empty(t, snap.Slices)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	s, err := OpenRedis(context.Background(), addr, os.Getenv("REDIS_PASSWORD"), 0)
	require.NoError(t, err)
	defer s.Close()
	_, _ = s.DeletePrefix(context.Background(), "p:")
	exerciseStore(t, s)
}
