// Copyright 2026 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package bootstrap turns a loaded Config into the concrete services a
// CLI command needs: a BatchExecutor, an Orchestrator, and the graph/blob
// sinks it depends on. It replaces the CIE-era project-directory/CozoDB
// bootstrap with explicit, in-process construction — there is no
// persistent "project" here, only a Config and the services it produces.
package bootstrap

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/niemforge/niemgraph/pkg/batch"
	"github.com/niemforge/niemgraph/pkg/config"
	"github.com/niemforge/niemgraph/pkg/orchestrator"
	"github.com/niemforge/niemgraph/pkg/sink"
	"github.com/niemforge/niemgraph/pkg/toolgateway"
)

// Services bundles everything a CLI command needs after bootstrap.
type Services struct {
	Executor     *batch.Executor
	Orchestrator *orchestrator.Orchestrator
	Graph        sink.GraphSink
	Blobs        sink.BlobSink
}

// Close releases the sinks. Safe to call once after a command finishes.
func (s *Services) Close() error {
	var firstErr error
	if err := s.Graph.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := s.Blobs.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// Build constructs Services from a loaded Config. A nil logger defaults
// to slog.Default(). Sinks default to the in-memory reference
// implementations when no endpoint is configured, which keeps the CLI
// usable for local exploration without a graph database running.
func Build(cfg config.Config, logger *slog.Logger) (*Services, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger.Info("bootstrap.services.build.start",
		"max_concurrent", cfg.Batch.MaxConcurrent,
		"tool_command_path", cfg.Tool.CommandPath,
	)

	graph, err := buildGraphSink(cfg.GraphSink)
	if err != nil {
		return nil, fmt.Errorf("build graph sink: %w", err)
	}
	blobs, err := buildBlobSink(cfg.BlobSink)
	if err != nil {
		return nil, fmt.Errorf("build blob sink: %w", err)
	}

	wallClock := time.Duration(cfg.Tool.WallClockCapSeconds) * time.Second
	tool := toolgateway.New(cfg.Tool.CommandPath, wallClock, logger)

	orch := orchestrator.New(tool, graph, blobs, logger)

	executor := batch.NewExecutor(batch.Limits{
		MaxConcurrent:   cfg.Batch.MaxConcurrent,
		PerFileTimeout:  time.Duration(cfg.Batch.PerFileTimeoutSeconds) * time.Second,
		MaxFilesSchema:  cfg.Batch.MaxFiles.Schema,
		MaxFilesIngest:  cfg.Batch.MaxFiles.Ingest,
		MaxFilesConvert: cfg.Batch.MaxFiles.Convert,
	}, logger)

	logger.Info("bootstrap.services.build.success")

	return &Services{Executor: executor, Orchestrator: orch, Graph: graph, Blobs: blobs}, nil
}

// buildGraphSink selects the in-memory reference GraphSink when no
// endpoint is configured. A production deployment would wire a real
// graph-database driver here; that driver is an external collaborator
// outside this repo's scope, so only the narrow GraphSink interface and
// its in-memory reference implementation ship in this build.
func buildGraphSink(cfg config.GraphSinkConfig) (sink.GraphSink, error) {
	if cfg.Endpoint == "" {
		return sink.NewMemoryGraphSink(), nil
	}
	return nil, fmt.Errorf("graph_sink.endpoint %q set but no remote driver is wired into this build; leave it empty to use the in-memory sink", cfg.Endpoint)
}

// buildBlobSink selects the in-memory reference BlobSink when no
// endpoint is configured, mirroring buildGraphSink's reasoning.
func buildBlobSink(cfg config.BlobSinkConfig) (sink.BlobSink, error) {
	if cfg.Endpoint == "" {
		return sink.NewMemoryBlobSink(), nil
	}
	return nil, fmt.Errorf("blob_sink.endpoint %q set but no remote driver is wired into this build; leave it empty to use the in-memory sink", cfg.Endpoint)
}
