// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

// Package orchestrator stitches ToolGateway validation, GraphProjector
// projection, the graph sink, and the blob sink into the per-file ingest
// pipeline (§4.5).
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"

	nierrors "github.com/niemforge/niemgraph/internal/errors"
	"github.com/niemforge/niemgraph/pkg/mapping"
	"github.com/niemforge/niemgraph/pkg/metrics"
	"github.com/niemforge/niemgraph/pkg/projector"
	"github.com/niemforge/niemgraph/pkg/sink"
	"github.com/niemforge/niemgraph/pkg/toolgateway"
)

// ValidateFunc runs schema validation for one instance format; it is
// satisfied by Gateway.ValidateXMLAgainstSchema / ValidateJSONAgainstSchema.
type ValidateFunc func(ctx context.Context, data []byte, bundleID string) ([]byte, error)

// Orchestrator glues the mapping cache, ToolGateway, GraphProjector, and
// the two sinks into IngestFile (§4.5). It holds no per-request state;
// a single Orchestrator is shared across every file in a batch.
type Orchestrator struct {
	tool      *toolgateway.Gateway
	graph     sink.GraphSink
	blobs     sink.BlobSink
	mappings  *mappingCache
	logger    *slog.Logger
}

// New constructs an Orchestrator. A nil logger defaults to slog.Default().
func New(tool *toolgateway.Gateway, graph sink.GraphSink, blobs sink.BlobSink, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{tool: tool, graph: graph, blobs: blobs, mappings: newMappingCache(), logger: logger}
}

// IngestRequest is one file to ingest.
type IngestRequest struct {
	BundleID string
	UploadID string
	Filename string
	Data     []byte
	Format   projector.SourceFormat
}

// IngestOutcome is the per-file result returned to the BatchExecutor
// (§4.5 step 6).
type IngestOutcome struct {
	NodesCreated int
	EdgesCreated int
	Warnings     []projector.Warning
	Validation   *toolgateway.ValidationReport
}

// ActivateMapping installs m as the active GraphMapping for bundleID,
// replacing any cached entry (called once per schema-bundle activation,
// outside the per-file hot path).
func (o *Orchestrator) ActivateMapping(bundleID string, m *mapping.GraphMapping) {
	o.mappings.invalidate(bundleID)
	o.mappings.put(bundleID, m)
}

// loadMapping returns the cached mapping for bundleID, or reads it back
// from the blob sink on a cache miss (§4.5 step 1, key `{bundleId}/mapping.yaml`).
func (o *Orchestrator) loadMapping(ctx context.Context, bundleID string) (*mapping.GraphMapping, error) {
	if m, ok := o.mappings.get(bundleID); ok {
		return m, nil
	}
	data, err := o.blobs.Get(ctx, bundleID+"/mapping.yaml")
	if err != nil {
		return nil, fmt.Errorf("load mapping for bundle %q: %w", bundleID, err)
	}
	m, err := mapping.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse cached mapping for bundle %q: %w", bundleID, err)
	}
	o.mappings.put(bundleID, m)
	return m, nil
}

// IngestFile runs one instance document through validate → project →
// commit → persist (§4.5). It is the function an Executor.RunBatch caller
// passes as its per-file fn.
func (o *Orchestrator) IngestFile(ctx context.Context, req IngestRequest) (IngestOutcome, error) {
	m, err := o.loadMapping(ctx, req.BundleID)
	if err != nil {
		return IngestOutcome{}, err
	}

	var validate ValidateFunc
	if req.Format == projector.FormatJSON {
		validate = o.tool.ValidateJSONAgainstSchema
	} else {
		validate = o.tool.ValidateXMLAgainstSchema
	}
	raw, err := validate(ctx, req.Data, req.BundleID)
	if err != nil {
		return IngestOutcome{}, fmt.Errorf("validate %s: %w", req.Filename, err)
	}
	report, err := toolgateway.ParseValidationReport(raw)
	if err != nil {
		return IngestOutcome{}, fmt.Errorf("parse validation report for %s: %w", req.Filename, err)
	}
	if !report.Valid {
		return IngestOutcome{Validation: report}, nierrors.NewValidationError(
			fmt.Sprintf("%s failed schema validation", req.Filename),
			report.Summary,
			"inspect the validation report and correct the instance document",
			nil,
		)
	}

	fileHash := projector.FileHash(req.Filename, req.UploadID, projector.ContentHash(req.Data))
	mut, warnings, err := projector.Project(req.Data, projector.Options{
		Mapping:   m,
		FileHash:  fileHash,
		Format:    req.Format,
		SourceDoc: req.Filename,
		SchemaID:  req.BundleID,
		UploadID:  req.UploadID,
	}, o.logger)
	if err != nil {
		metrics.RecordProjectorError()
		return IngestOutcome{}, fmt.Errorf("project %s: %w", req.Filename, err)
	}

	statements := toStatements(mut)
	result, err := o.graph.Commit(ctx, statements)
	if err != nil {
		metrics.RecordSinkCommit("failure")
		return IngestOutcome{}, fmt.Errorf("commit graph mutations for %s: %w", req.Filename, err)
	}
	metrics.RecordSinkCommit("success")
	for _, n := range mut.Nodes {
		for _, l := range n.Labels {
			metrics.RecordProjectedNode(l)
		}
	}
	for _, e := range mut.Edges {
		metrics.RecordProjectedEdge(e.RelType)
	}

	// Only after the graph commit succeeds do we persist source bytes
	// (§4.5 step 5); a failure here is a soft warning, not a file failure.
	blobKey := fmt.Sprintf("instances/%s/%s/%s", req.BundleID, req.UploadID, req.Filename)
	if err := o.blobs.Put(ctx, blobKey, req.Data); err != nil {
		metrics.RecordBlobWriteFailure()
		o.logger.Warn("orchestrator.blob.persist_failed", "key", blobKey, "err", err)
		warnings = append(warnings, projector.Warning{Message: fmt.Sprintf("failed to persist source bytes: %v", err)})
	}

	return IngestOutcome{
		NodesCreated: result.NodesCreated,
		EdgesCreated: result.EdgesCreated,
		Warnings:     warnings,
		Validation:   report,
	}, nil
}

// toStatements flattens projector Mutations into the graph sink's
// parameterized statement stream: every node first (one MergeNode
// statement per label, so a multi-labeled node accumulates labels the way
// the sink's MERGE semantics expect), then every edge (§4.4.7, Invariant E1).
func toStatements(mut projector.Mutations) []sink.Statement {
	stmts := make([]sink.Statement, 0, len(mut.Nodes)+len(mut.Edges))
	for _, n := range mut.Nodes {
		labels := n.Labels
		if len(labels) == 0 {
			labels = []string{"Entity"}
		}
		for _, label := range labels {
			stmts = append(stmts, sink.Statement{
				Kind:  sink.MergeNode,
				Label: label,
				Params: map[string]any{
					"id":    n.ID,
					"props": n.Properties,
				},
			})
		}
	}
	for _, e := range mut.Edges {
		stmts = append(stmts, sink.Statement{
			Kind:    sink.MergeEdge,
			RelType: e.RelType,
			Params: map[string]any{
				"from":  e.FromID,
				"to":    e.ToID,
				"props": e.Properties,
			},
		})
	}
	return stmts
}
