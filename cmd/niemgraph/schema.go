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
	"time"

	flag "github.com/spf13/pflag"

	"github.com/niemforge/niemgraph/internal/bootstrap"
	nierrors "github.com/niemforge/niemgraph/internal/errors"
	"github.com/niemforge/niemgraph/internal/output"
	"github.com/niemforge/niemgraph/internal/ui"
	"github.com/niemforge/niemgraph/pkg/config"
	"github.com/niemforge/niemgraph/pkg/mapping"
	"github.com/niemforge/niemgraph/pkg/toolgateway"
)

func toSeconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

// runSubmitSchema validates a schema bundle directory and compiles its
// GraphMapping, persisting the serialized mapping under
// "{bundleId}/mapping.yaml" in the blob sink (§4.5 step 1).
//
// Usage: niemgraph submit-schema --bundle <id> <xsd-dir>
func runSubmitSchema(args []string) {
	fs := flag.NewFlagSet("submit-schema", flag.ExitOnError)
	globals := bindGlobalFlags(fs)
	if err := fs.Parse(args); err != nil {
		nierrors.FatalError(err, globals.JSON)
	}
	globals.applyColors()

	if globals.BundleID == "" {
		nierrors.FatalError(nierrors.NewValidationError(
			"Missing --bundle",
			"submit-schema requires a bundle id",
			"Pass --bundle <id>", nil), globals.JSON)
	}
	if fs.NArg() != 1 {
		nierrors.FatalError(nierrors.NewValidationError(
			"Missing schema directory",
			"submit-schema requires exactly one positional argument: the XSD bundle directory",
			"Run: niemgraph submit-schema --bundle <id> <xsd-dir>", nil), globals.JSON)
	}
	bundleDir := fs.Arg(0)

	cfg := loadConfigOrFatal(globals)
	logger := slog.Default()
	svcs, err := bootstrap.Build(cfg, logger)
	if err != nil {
		nierrors.FatalError(err, globals.JSON)
	}
	defer func() { _ = svcs.Close() }()

	ctx := context.Background()
	// Orchestrator's Gateway is unexported; schema-bundle operations build
	// their own since they run outside the per-file ingest hot path.
	gateway := toolgateway.New(cfg.Tool.CommandPath, toSeconds(cfg.Tool.WallClockCapSeconds), logger)

	raw, err := gateway.ValidateSchemaBundle(ctx, bundleDir)
	if err != nil {
		nierrors.FatalError(err, globals.JSON)
	}
	report, err := toolgateway.ParseValidationReport(raw)
	if err != nil {
		nierrors.FatalError(nierrors.NewSchemaIncompleteError(
			"Could not parse schema bundle validation report",
			err.Error(), "Check the external tool's output format"), globals.JSON)
	}
	if !report.Valid {
		if !globals.JSON {
			fmt.Fprint(os.Stderr, report.Format(globals.NoColor))
		}
		nierrors.FatalError(nierrors.NewSchemaIncompleteError(
			fmt.Sprintf("Schema bundle %s failed validation", globals.BundleID),
			report.Summary, "Fix the reported rule violations and resubmit"), globals.JSON)
	}

	cmf, err := gateway.XSDToCanonicalModel(ctx, bundleDir)
	if err != nil {
		nierrors.FatalError(err, globals.JSON)
	}

	compiler := mapping.NewMappingCompiler(logger)
	compiled, err := compiler.Compile(cmf)
	if err != nil {
		nierrors.FatalError(err, globals.JSON)
	}

	serialized, err := mapping.Serialize(compiled)
	if err != nil {
		nierrors.FatalError(nierrors.NewMappingError(
			"Failed to serialize compiled GraphMapping",
			err.Error(), "This indicates a bug in the mapping compiler", err), globals.JSON)
	}

	key := globals.BundleID + "/mapping.yaml"
	if err := svcs.Blobs.Put(ctx, key, serialized); err != nil {
		nierrors.FatalError(nierrors.NewSinkError(
			"Failed to persist compiled GraphMapping",
			err.Error(), "Check blob sink connectivity", err), globals.JSON)
	}

	svcs.Orchestrator.ActivateMapping(globals.BundleID, compiled)

	if globals.JSON {
		_ = output.JSON(map[string]any{
			"bundle_id": globals.BundleID,
			"objects":   len(compiled.Objects),
			"status":    "compiled",
		})
		return
	}
	ui.Successf("Schema bundle %q compiled: %d object classes, %d references, %d associations",
		globals.BundleID, len(compiled.Objects), len(compiled.References), len(compiled.Associations))
}

// runActivate reads a previously compiled mapping back from the blob sink
// and confirms it parses, priming a fresh process's orchestrator cache
// (§4.5 step 1's cache-miss path). Each CLI invocation is a new process,
// so this is a smoke check more than a persistent activation, but it
// gives operators a fast way to confirm a bundle is ready to ingest against.
func runActivate(args []string) {
	fs := flag.NewFlagSet("activate", flag.ExitOnError)
	globals := bindGlobalFlags(fs)
	if err := fs.Parse(args); err != nil {
		nierrors.FatalError(err, globals.JSON)
	}
	globals.applyColors()

	if fs.NArg() != 1 {
		nierrors.FatalError(nierrors.NewValidationError(
			"Missing bundle id",
			"activate requires exactly one positional argument: the bundle id",
			"Run: niemgraph activate <bundle-id>", nil), globals.JSON)
	}
	bundleID := fs.Arg(0)

	cfg := loadConfigOrFatal(globals)
	svcs, err := bootstrap.Build(cfg, slog.Default())
	if err != nil {
		nierrors.FatalError(err, globals.JSON)
	}
	defer func() { _ = svcs.Close() }()

	ctx := context.Background()
	data, err := svcs.Blobs.Get(ctx, bundleID+"/mapping.yaml")
	if err != nil {
		nierrors.FatalError(nierrors.NewMappingError(
			fmt.Sprintf("No compiled mapping found for bundle %q", bundleID),
			err.Error(), "Run submit-schema first", err), globals.JSON)
	}
	m, err := mapping.Parse(data)
	if err != nil {
		nierrors.FatalError(nierrors.NewMappingError(
			"Stored mapping is corrupt",
			err.Error(), "Resubmit the schema bundle", err), globals.JSON)
	}
	svcs.Orchestrator.ActivateMapping(bundleID, m)

	if globals.JSON {
		_ = output.JSON(map[string]any{"bundle_id": bundleID, "status": "activated", "objects": len(m.Objects)})
		return
	}
	ui.Successf("Bundle %q activated (%d object classes)", bundleID, len(m.Objects))
}

func loadConfigOrFatal(globals *GlobalFlags) config.Config {
	if globals.Config == "" {
		return config.Default()
	}
	cfg, err := config.Load(globals.Config)
	if err != nil {
		nierrors.FatalError(nierrors.NewValidationError(
			"Invalid configuration",
			err.Error(), "Check the config YAML at --config", err), globals.JSON)
	}
	return cfg
}
