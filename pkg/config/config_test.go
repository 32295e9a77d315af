// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefault_MatchesSpecDefaults(t *testing.T) {
	c := Default()
	require.Equal(t, 3, c.Batch.MaxConcurrent)
	require.Equal(t, 60, c.Batch.PerFileTimeoutSeconds)
	require.Equal(t, 50, c.Batch.MaxFiles.Schema)
	require.Equal(t, 20, c.Batch.MaxFiles.Ingest)
	require.Equal(t, 20, c.Batch.MaxFiles.Convert)
}

func TestLoad_OverridesOnlySpecifiedKeys(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "niemgraph.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
tool:
  command_path: /usr/local/bin/niem-tool
batch:
  max_concurrent: 8
`), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 8, c.Batch.MaxConcurrent)
	require.Equal(t, 60, c.Batch.PerFileTimeoutSeconds) // kept default
	require.Equal(t, "/usr/local/bin/niem-tool", c.Tool.CommandPath)
}

func TestLoad_MissingCommandPathFailsValidation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "niemgraph.yaml")
	require.NoError(t, os.WriteFile(path, []byte("batch:\n  max_concurrent: 1\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestValidate_RejectsNonPositiveConcurrency(t *testing.T) {
	c := Default()
	c.Tool.CommandPath = "/bin/true"
	c.Batch.MaxConcurrent = 0
	require.Error(t, c.Validate())
}
