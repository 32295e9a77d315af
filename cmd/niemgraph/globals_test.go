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
	"testing"

	flag "github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

func newTestFlagSet(t *testing.T) *flag.FlagSet {
	t.Helper()
	return flag.NewFlagSet(t.Name(), flag.ContinueOnError)
}

func TestNewProgressConfig_DisabledForJSON(t *testing.T) {
	globals := &GlobalFlags{JSON: true}
	cfg := NewProgressConfig(globals)
	require.False(t, cfg.Enabled)
}

func TestNewProgressConfig_DisabledForQuiet(t *testing.T) {
	globals := &GlobalFlags{Quiet: true}
	cfg := NewProgressConfig(globals)
	require.False(t, cfg.Enabled)
}

func TestNewProgressBar_NilWhenDisabled(t *testing.T) {
	cfg := ProgressConfig{Enabled: false}
	require.Nil(t, NewProgressBar(cfg, 10, "ingesting"))
}
