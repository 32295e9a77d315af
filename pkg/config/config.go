// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

// Package config loads and validates the pipeline's operator-facing
// settings (§6.6): batch concurrency, per-file timeouts, per-request file
// caps, the external tool's command path, and the graph/blob sink
// endpoints.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// BatchConfig controls BatchExecutor behavior (§4.1, §6.6).
type BatchConfig struct {
	MaxConcurrent         int `yaml:"max_concurrent"`
	PerFileTimeoutSeconds int `yaml:"per_file_timeout_seconds"`
	MaxFiles              struct {
		Schema  int `yaml:"schema"`
		Ingest  int `yaml:"ingest"`
		Convert int `yaml:"convert"`
	} `yaml:"max_files"`
}

// ToolConfig locates the external NIEM canonicalizer/validator (§4.2, §6.3).
type ToolConfig struct {
	CommandPath        string `yaml:"command_path"`
	WallClockCapSeconds int   `yaml:"wall_clock_cap_seconds"`
}

// GraphSinkConfig addresses the external graph store (§6.2).
type GraphSinkConfig struct {
	Endpoint string `yaml:"endpoint"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// BlobSinkConfig addresses the external blob store (§6.1).
type BlobSinkConfig struct {
	Endpoint  string `yaml:"endpoint"`
	Bucket    string `yaml:"bucket"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
}

// Config is the top-level, YAML-loadable pipeline configuration.
type Config struct {
	Batch     BatchConfig     `yaml:"batch"`
	Tool      ToolConfig      `yaml:"tool"`
	GraphSink GraphSinkConfig `yaml:"graph_sink"`
	BlobSink  BlobSinkConfig  `yaml:"blob_sink"`
}

// Default returns a Config populated with the spec's defaults (§4.1, §6.6):
// maxConcurrent=3, perFileTimeout=60s, file caps 50/20/20 for
// schema/ingest/convert.
func Default() Config {
	var c Config
	c.Batch.MaxConcurrent = 3
	c.Batch.PerFileTimeoutSeconds = 60
	c.Batch.MaxFiles.Schema = 50
	c.Batch.MaxFiles.Ingest = 20
	c.Batch.MaxFiles.Convert = 20
	c.Tool.WallClockCapSeconds = 60
	return c
}

// Load reads a YAML config file at path, filling any zero-valued fields
// from Default() (the teacher's InitProject/OpenProject defaulting style:
// operators only need to specify what they want to override).
func Load(path string) (Config, error) {
	c := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	// Decode onto the defaults so omitted YAML keys keep their default
	// value rather than zeroing out.
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate rejects configuration values that would make the pipeline
// behave unpredictably (non-positive concurrency, timeouts, or file caps).
func (c Config) Validate() error {
	if c.Batch.MaxConcurrent <= 0 {
		return fmt.Errorf("batch.max_concurrent must be positive, got %d", c.Batch.MaxConcurrent)
	}
	if c.Batch.PerFileTimeoutSeconds <= 0 {
		return fmt.Errorf("batch.per_file_timeout_seconds must be positive, got %d", c.Batch.PerFileTimeoutSeconds)
	}
	if c.Batch.MaxFiles.Schema <= 0 || c.Batch.MaxFiles.Ingest <= 0 || c.Batch.MaxFiles.Convert <= 0 {
		return fmt.Errorf("batch.max_files entries must all be positive")
	}
	if c.Tool.CommandPath == "" {
		return fmt.Errorf("tool.command_path is required")
	}
	return nil
}
