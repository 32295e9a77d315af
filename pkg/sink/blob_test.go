// Copyright 2025 KrakLabs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package sink

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryBlobSink_PutGet(t *testing.T) {
	s := NewMemoryBlobSink()
	defer s.Close()

	ctx := context.Background()
	require.NoError(t, s.Put(ctx, "schema/abc123", []byte("xsd-bytes")))

	got, err := s.Get(ctx, "schema/abc123")
	require.NoError(t, err)
	assert.Equal(t, []byte("xsd-bytes"), got)
}

func TestMemoryBlobSink_GetMissingReturnsNotFound(t *testing.T) {
	s := NewMemoryBlobSink()
	defer s.Close()

	_, err := s.Get(context.Background(), "missing")
	assert.True(t, errors.Is(err, ErrBlobNotFound))
}

func TestMemoryBlobSink_ListByPrefix(t *testing.T) {
	s := NewMemoryBlobSink()
	defer s.Close()

	ctx := context.Background()
	require.NoError(t, s.Put(ctx, "schema/a", []byte("1")))
	require.NoError(t, s.Put(ctx, "schema/b", []byte("2")))
	require.NoError(t, s.Put(ctx, "instance/c", []byte("3")))

	keys, err := s.List(ctx, "schema/")
	require.NoError(t, err)
	assert.Equal(t, []string{"schema/a", "schema/b"}, keys)
}

func TestMemoryBlobSink_Delete(t *testing.T) {
	s := NewMemoryBlobSink()
	defer s.Close()

	ctx := context.Background()
	require.NoError(t, s.Put(ctx, "k", []byte("v")))
	require.NoError(t, s.Delete(ctx, "k"))

	_, err := s.Get(ctx, "k")
	assert.True(t, errors.Is(err, ErrBlobNotFound))
}

func TestMemoryBlobSink_DeleteMissingIsNotError(t *testing.T) {
	s := NewMemoryBlobSink()
	defer s.Close()

	assert.NoError(t, s.Delete(context.Background(), "never-existed"))
}

func TestMemoryBlobSink_PutCopiesData(t *testing.T) {
	s := NewMemoryBlobSink()
	defer s.Close()

	ctx := context.Background()
	data := []byte("original")
	require.NoError(t, s.Put(ctx, "k", data))
	data[0] = 'X'

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("original"), got, "Put must copy data so later mutation of the caller's slice is invisible")
}

func TestMemoryBlobSink_ClosedRejectsOperations(t *testing.T) {
	s := NewMemoryBlobSink()
	require.NoError(t, s.Close())

	ctx := context.Background()
	assert.Error(t, s.Put(ctx, "k", []byte("v")))
	_, err := s.Get(ctx, "k")
	assert.Error(t, err)
	_, err = s.List(ctx, "")
	assert.Error(t, err)
	assert.Error(t, s.Delete(ctx, "k"))
}
