// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package toolgateway

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	nierrors "github.com/niemforge/niemgraph/internal/errors"
)

func writeFakeTool(t *testing.T, script string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "fake-niem-tool")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755))
	return path
}

func TestGateway_UnavailableCommandPath(t *testing.T) {
	g := New(filepath.Join(t.TempDir(), "does-not-exist"), time.Second, nil)
	_, err := g.ValidateXMLAgainstSchema(context.Background(), []byte("<a/>"), "bundle-1")
	require.Error(t, err)
	var ue *nierrors.UserError
	require.ErrorAs(t, err, &ue)
	require.Equal(t, string(nierrors.ToolUnavailable), ue.Kind)
}

func TestGateway_ExecutionError(t *testing.T) {
	tool := writeFakeTool(t, "echo failing >&2\nexit 1\n")
	g := New(tool, time.Second, nil)

	_, err := g.ValidateXMLAgainstSchema(context.Background(), []byte("<a/>"), "bundle-1")
	require.Error(t, err)
	var ue *nierrors.UserError
	require.ErrorAs(t, err, &ue)
	require.Equal(t, string(nierrors.ToolExecutionError), ue.Kind)
}

func TestGateway_Timeout(t *testing.T) {
	tool := writeFakeTool(t, "sleep 2\n")
	g := New(tool, 50*time.Millisecond, nil)

	_, err := g.ValidateXMLAgainstSchema(context.Background(), []byte("<a/>"), "bundle-1")
	require.Error(t, err)
	var ue *nierrors.UserError
	require.ErrorAs(t, err, &ue)
	require.Equal(t, string(nierrors.ToolTimeout), ue.Kind)
}

func TestGateway_SuccessReturnsStdout(t *testing.T) {
	tool := writeFakeTool(t, `cat <<'EOF'
{"valid": true}
EOF
`)
	g := New(tool, time.Second, nil)

	out, err := g.ValidateXMLAgainstSchema(context.Background(), []byte("<a/>"), "bundle-1")
	require.NoError(t, err)
	require.Contains(t, string(out), "valid")
}

func TestGateway_XSDToCanonicalModel_ReadsOutputFile(t *testing.T) {
	tool := writeFakeTool(t, `
for arg do
  if [ "$prev" = "--output" ]; then
    echo '<Model/>' > "$arg"
  fi
  prev="$arg"
done
`)
	g := New(tool, time.Second, nil)

	out, err := g.XSDToCanonicalModel(context.Background(), t.TempDir())
	require.NoError(t, err)
	require.Contains(t, string(out), "<Model/>")
}
