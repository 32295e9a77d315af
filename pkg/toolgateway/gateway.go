// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

// Package toolgateway provides scoped invocation of the external NIEM
// canonicalizer/validator (§4.2). Every call acquires a fresh scratch
// directory, runs a fixed command vector (no shell interpolation), and
// races a wall-clock cap; the scratch directory is removed before the
// call returns regardless of outcome.
package toolgateway

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	nierrors "github.com/niemforge/niemgraph/internal/errors"
	"github.com/niemforge/niemgraph/pkg/metrics"
)

// Op names one of the gateway's four operations (§4.2).
type Op string

const (
	OpValidateSchemaBundle   Op = "validateSchemaBundle"
	OpXSDToCanonicalModel    Op = "xsdToCanonicalModel"
	OpValidateXMLInstance    Op = "validateXmlAgainstSchema"
	OpValidateJSONInstance   Op = "validateJsonAgainstSchema"
)

// Gateway wraps the external tool subprocess. It is a thin, stateless
// shell around os/exec: every call is independently scoped, so a Gateway
// is safe to share across concurrent BatchExecutor workers.
type Gateway struct {
	commandPath string
	wallClock   time.Duration
	logger      *slog.Logger
}

// New constructs a Gateway. A nil logger defaults to slog.Default().
func New(commandPath string, wallClock time.Duration, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{commandPath: commandPath, wallClock: wallClock, logger: logger}
}

// ValidateSchemaBundle invokes the external tool's schema-bundle validator
// over the XSDs in bundleDir, returning the raw stdout report bytes.
func (g *Gateway) ValidateSchemaBundle(ctx context.Context, bundleDir string) ([]byte, error) {
	return g.invoke(ctx, OpValidateSchemaBundle, func(scratch string) []string {
		return []string{g.commandPath, "validate-schema-bundle", "--input", bundleDir, "--scratch", scratch}
	}, nil)
}

// XSDToCanonicalModel invokes the external canonicalizer over bundleDir,
// returning the produced CMF bytes.
func (g *Gateway) XSDToCanonicalModel(ctx context.Context, bundleDir string) ([]byte, error) {
	return g.invoke(ctx, OpXSDToCanonicalModel, func(scratch string) []string {
		out := filepath.Join(scratch, "canonical.cmf")
		return []string{g.commandPath, "xsd-to-cmf", "--input", bundleDir, "--output", out}
	}, cmfOutputReader("canonical.cmf"))
}

// ValidateXMLAgainstSchema validates xmlBytes against the named bundle,
// returning the structured validation report bytes.
func (g *Gateway) ValidateXMLAgainstSchema(ctx context.Context, xmlBytes []byte, bundleID string) ([]byte, error) {
	return g.invokeWithInputFile(ctx, OpValidateXMLInstance, "instance.xml", xmlBytes, func(scratch, inputPath string) []string {
		return []string{g.commandPath, "validate-xml", "--bundle", bundleID, "--input", inputPath}
	})
}

// ValidateJSONAgainstSchema validates jsonBytes against the named bundle,
// returning the structured validation report bytes.
func (g *Gateway) ValidateJSONAgainstSchema(ctx context.Context, jsonBytes []byte, bundleID string) ([]byte, error) {
	return g.invokeWithInputFile(ctx, OpValidateJSONInstance, "instance.json", jsonBytes, func(scratch, inputPath string) []string {
		return []string{g.commandPath, "validate-json", "--bundle", bundleID, "--input", inputPath}
	})
}

// cmfOutputReader returns a post-exec hook that reads the named file back
// out of the scratch directory once the subprocess has exited.
func cmfOutputReader(name string) func(scratch string) ([]byte, error) {
	return func(scratch string) ([]byte, error) {
		return os.ReadFile(filepath.Join(scratch, name))
	}
}

func (g *Gateway) invokeWithInputFile(ctx context.Context, op Op, inputName string, data []byte, buildArgs func(scratch, inputPath string) []string) ([]byte, error) {
	return g.invoke(ctx, op, func(scratch string) []string {
		inputPath := filepath.Join(scratch, inputName)
		if err := os.WriteFile(inputPath, data, 0o600); err != nil {
			// buildArgs has no error return; surface the failure through a
			// command vector that is guaranteed to fail fast and visibly.
			return []string{g.commandPath, "__write_failed__", err.Error()}
		}
		return buildArgs(scratch, inputPath)
	}, nil)
}

// invoke acquires a scratch directory, runs the fixed command vector
// produced by buildArgs, and guarantees the directory is removed before
// returning. readOutput, if non-nil, reads the result from the scratch
// directory after a successful exit instead of using stdout.
func (g *Gateway) invoke(ctx context.Context, op Op, buildArgs func(scratch string) []string, readOutput func(scratch string) ([]byte, error)) ([]byte, error) {
	start := time.Now()

	scratch, err := os.MkdirTemp("", "niemgraph-tool-*")
	if err != nil {
		return nil, nierrors.NewToolError(nierrors.ToolUnavailable,
			"Cannot create scratch directory for external tool",
			err.Error(), "Check available disk space and temp directory permissions", err)
	}
	defer func() {
		if rmErr := os.RemoveAll(scratch); rmErr != nil {
			g.logger.Warn("toolgateway.scratch.cleanup_failed", "dir", scratch, "err", rmErr)
		}
	}()

	if _, statErr := os.Stat(g.commandPath); statErr != nil {
		metrics.RecordToolInvocation(string(op), "unavailable")
		return nil, nierrors.NewToolError(nierrors.ToolUnavailable,
			"External NIEM tool is not available",
			fmt.Sprintf("command path %q: %v", g.commandPath, statErr),
			"Install the NIEM canonicalizer/validator and set tool.command_path", statErr)
	}

	args := buildArgs(scratch)

	runCtx, cancel := context.WithTimeout(ctx, g.wallClock)
	defer cancel()

	cmd := exec.CommandContext(runCtx, args[0], args[1:]...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	dur := time.Since(start)
	metrics.ObserveToolDuration(string(op), dur.Seconds())

	if runCtx.Err() != nil {
		metrics.RecordToolInvocation(string(op), "timeout")
		return nil, nierrors.NewToolError(nierrors.ToolTimeout,
			"External tool exceeded its wall-clock limit",
			fmt.Sprintf("op %s did not complete within %s", op, g.wallClock),
			"Increase tool.wallClockCapSeconds or investigate the tool's performance", runCtx.Err())
	}
	if runErr != nil {
		metrics.RecordToolInvocation(string(op), "error")
		return nil, nierrors.NewToolError(nierrors.ToolExecutionError,
			fmt.Sprintf("External tool failed during %s", op),
			stderr.String(), "Inspect the tool's stderr output above for the underlying cause", runErr)
	}

	metrics.RecordToolInvocation(string(op), "success")
	g.logger.Info("toolgateway.invoke.done", "op", string(op), "duration_ms", dur.Milliseconds())

	if readOutput != nil {
		return readOutput(scratch)
	}
	return stdout.Bytes(), nil
}
