// Copyright 2026 KrakLabs
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

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	flag "github.com/spf13/pflag"

	nierrors "github.com/niemforge/niemgraph/internal/errors"
	"github.com/niemforge/niemgraph/internal/output"
	"github.com/niemforge/niemgraph/internal/ui"
	"github.com/niemforge/niemgraph/internal/bootstrap"
	"github.com/niemforge/niemgraph/pkg/batch"
	"github.com/niemforge/niemgraph/pkg/mapping"
	"github.com/niemforge/niemgraph/pkg/orchestrator"
	"github.com/niemforge/niemgraph/pkg/projector"
)

const (
	formatXML  = projector.FormatXML
	formatJSON = projector.FormatJSON
)

// IngestResultJSON is the --json rendering of one ingest batch (§3 BatchResult).
type IngestResultJSON struct {
	BundleID       string              `json:"bundle_id"`
	FilesSubmitted int                 `json:"files_submitted"`
	Succeeded      int                 `json:"succeeded"`
	Failed         int                 `json:"failed"`
	PerFile        []PerFileResultJSON `json:"per_file"`
}

// PerFileResultJSON is one file's entry within IngestResultJSON.
type PerFileResultJSON struct {
	Filename     string `json:"filename"`
	Status       string `json:"status"`
	NodesCreated int    `json:"nodes_created,omitempty"`
	EdgesCreated int    `json:"edges_created,omitempty"`
	Error        string `json:"error,omitempty"`
}

// runIngest projects a set of instance documents in the given format into
// the graph (§4.5). Usage: niemgraph ingest-{xml,json} --bundle <id> <files...>
func runIngest(args []string, format projector.SourceFormat) {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	globals := bindGlobalFlags(fs)
	if err := fs.Parse(args); err != nil {
		nierrors.FatalError(err, globals.JSON)
	}
	globals.applyColors()

	if globals.BundleID == "" {
		nierrors.FatalError(nierrors.NewValidationError(
			"Missing --bundle",
			"ingest requires a bundle id",
			"Pass --bundle <id>", nil), globals.JSON)
	}
	files := fs.Args()
	if len(files) == 0 {
		nierrors.FatalError(nierrors.NewValidationError(
			"No files given",
			"ingest requires at least one instance document path",
			"Run: niemgraph ingest-xml --bundle <id> <files...>", nil), globals.JSON)
	}

	cfg := loadConfigOrFatal(globals)
	logger := slog.Default()
	svcs, err := bootstrap.Build(cfg, logger)
	if err != nil {
		nierrors.FatalError(err, globals.JSON)
	}
	defer func() { _ = svcs.Close() }()

	ctx := context.Background()
	data, err := svcs.Blobs.Get(ctx, globals.BundleID+"/mapping.yaml")
	if err != nil {
		nierrors.FatalError(nierrors.NewMappingError(
			fmt.Sprintf("No compiled mapping found for bundle %q", globals.BundleID),
			err.Error(), "Run submit-schema before ingesting", err), globals.JSON)
	}
	m, err := mapping.Parse(data)
	if err != nil {
		nierrors.FatalError(nierrors.NewMappingError(
			fmt.Sprintf("Stored mapping for bundle %q is corrupt", globals.BundleID),
			err.Error(), "Resubmit the schema bundle", err), globals.JSON)
	}
	svcs.Orchestrator.ActivateMapping(globals.BundleID, m)

	uploadID := uuid.NewString()
	progressCfg := NewProgressConfig(globals)
	bar := NewProgressBar(progressCfg, int64(len(files)), "ingesting")

	opKind := batch.OpIngest
	fn := func(fctx context.Context, filename string) (any, error) {
		raw, err := os.ReadFile(filename)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", filename, err)
		}
		return svcs.Orchestrator.IngestFile(fctx, orchestrator.IngestRequest{
			BundleID: globals.BundleID,
			UploadID: uploadID,
			Filename: filepath.Base(filename),
			Data:     raw,
			Format:   format,
		})
	}

	var progress batch.Progress
	if bar != nil {
		progress = func(index, total int, filename, outcome string) {
			_ = bar.Add(1)
		}
	}

	result, err := svcs.Executor.RunBatchWithProgress(ctx, opKind, files, fn, progress)
	if bar != nil {
		_ = bar.Finish()
	}
	if err != nil {
		nierrors.FatalError(err, globals.JSON)
	}

	render(globals, globals.BundleID, result)
}

func render(globals *GlobalFlags, bundleID string, result batch.BatchResult) {
	out := IngestResultJSON{
		BundleID:       bundleID,
		FilesSubmitted: len(result.Results),
		Succeeded:      result.Succeeded(),
		Failed:         result.Failed(),
	}
	for _, fr := range result.Results {
		entry := PerFileResultJSON{Filename: fr.Filename}
		if fr.Err != nil {
			entry.Status = "failed"
			entry.Error = fr.Err.Error()
		} else {
			entry.Status = "succeeded"
			if outcome, ok := fr.Value.(orchestrator.IngestOutcome); ok {
				entry.NodesCreated = outcome.NodesCreated
				entry.EdgesCreated = outcome.EdgesCreated
			}
		}
		out.PerFile = append(out.PerFile, entry)
	}

	if globals.JSON {
		_ = output.JSON(out)
		return
	}

	ui.Header(fmt.Sprintf("Ingest: %s", bundleID))
	for _, entry := range out.PerFile {
		if entry.Status == "succeeded" {
			ui.Successf("%s — %d nodes, %d edges", entry.Filename, entry.NodesCreated, entry.EdgesCreated)
		} else {
			ui.Errorf("%s — %s", entry.Filename, entry.Error)
		}
	}
	fmt.Printf("\n%s %s / %s %s\n",
		ui.Label("Succeeded:"), ui.CountText(out.Succeeded),
		ui.Label("Failed:"), ui.CountText(out.Failed))
}
