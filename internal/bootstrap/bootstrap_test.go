// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package bootstrap

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/niemforge/niemgraph/pkg/config"
)

func TestBuild_DefaultConfigUsesInMemorySinks(t *testing.T) {
	cfg := config.Default()
	cfg.Tool.CommandPath = "/bin/true"

	svcs, err := Build(cfg, nil)
	require.NoError(t, err)
	require.NotNil(t, svcs.Executor)
	require.NotNil(t, svcs.Orchestrator)
	require.NoError(t, svcs.Close())
}

func TestBuild_RejectsUnwiredGraphSinkEndpoint(t *testing.T) {
	cfg := config.Default()
	cfg.Tool.CommandPath = "/bin/true"
	cfg.GraphSink.Endpoint = "bolt://localhost:7687"

	_, err := Build(cfg, nil)
	require.Error(t, err)
}

func TestBuild_RejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Batch.MaxConcurrent = 0

	_, err := Build(cfg, nil)
	require.Error(t, err)
}
