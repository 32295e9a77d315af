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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nodeStmt(id, label string, props map[string]any) Statement {
	return Statement{
		Kind:  MergeNode,
		Label: label,
		Params: map[string]any{
			"id":    id,
			"props": props,
		},
	}
}

func edgeStmt(from, to, relType string, props map[string]any) Statement {
	return Statement{
		Kind:    MergeEdge,
		RelType: relType,
		Params: map[string]any{
			"from":  from,
			"to":    to,
			"props": props,
		},
	}
}

func TestMemoryGraphSink_CommitCreatesNode(t *testing.T) {
	s := NewMemoryGraphSink()
	defer s.Close()

	result, err := s.Commit(context.Background(), []Statement{
		nodeStmt("n1", "Person", map[string]any{"name": "Ada"}),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.NodesCreated)
	assert.Equal(t, 1, s.NodeCount())

	n, ok := s.Node("n1")
	require.True(t, ok)
	assert.Equal(t, []string{"Person"}, n.Labels)
	assert.Equal(t, "Ada", n.Properties["name"])
}

func TestMemoryGraphSink_MergeIsIdempotent(t *testing.T) {
	s := NewMemoryGraphSink()
	defer s.Close()

	ctx := context.Background()
	_, err := s.Commit(ctx, []Statement{nodeStmt("n1", "Person", map[string]any{"name": "Ada"})})
	require.NoError(t, err)

	result, err := s.Commit(ctx, []Statement{nodeStmt("n1", "Person", map[string]any{"age": 3})})
	require.NoError(t, err)
	assert.Equal(t, 0, result.NodesCreated, "re-merging an existing id must not count as a new creation")
	assert.Equal(t, 1, s.NodeCount())

	n, _ := s.Node("n1")
	assert.Equal(t, "Ada", n.Properties["name"], "previously set properties survive a later merge")
	assert.Equal(t, 3, n.Properties["age"])
}

func TestMemoryGraphSink_EdgeRequiresBothEndpoints(t *testing.T) {
	s := NewMemoryGraphSink()
	defer s.Close()

	ctx := context.Background()
	_, err := s.Commit(ctx, []Statement{
		nodeStmt("a", "Person", nil),
		edgeStmt("a", "b", "ASSOCIATED_WITH", nil),
	})
	assert.Error(t, err, "committing an edge to a nonexistent endpoint must fail")
}

func TestMemoryGraphSink_CommitEdge(t *testing.T) {
	s := NewMemoryGraphSink()
	defer s.Close()

	ctx := context.Background()
	result, err := s.Commit(ctx, []Statement{
		nodeStmt("a", "Person", nil),
		nodeStmt("b", "Person", nil),
		edgeStmt("a", "b", "ASSOCIATED_WITH", map[string]any{"role_qname": "nc:PersonRole"}),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.NodesCreated)
	assert.Equal(t, 1, result.EdgesCreated)
	assert.Equal(t, 1, s.EdgeCount())
}

func TestMemoryGraphSink_ClosedRejectsCommit(t *testing.T) {
	s := NewMemoryGraphSink()
	require.NoError(t, s.Close())

	_, err := s.Commit(context.Background(), []Statement{nodeStmt("n1", "Person", nil)})
	assert.Error(t, err)
}

func TestMemoryGraphSink_ContextCanceled(t *testing.T) {
	s := NewMemoryGraphSink()
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Commit(ctx, []Statement{nodeStmt("n1", "Person", nil)})
	assert.ErrorIs(t, err, context.Canceled)
}
