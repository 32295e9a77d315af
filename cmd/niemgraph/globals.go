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
	flag "github.com/spf13/pflag"

	"github.com/niemforge/niemgraph/internal/ui"
)

// GlobalFlags are the flags shared by every subcommand.
type GlobalFlags struct {
	BundleID string
	Config   string
	JSON     bool
	Quiet    bool
	NoColor  bool
}

// bindGlobalFlags registers the shared flags on fs and returns the struct
// they populate once fs.Parse has run.
func bindGlobalFlags(fs *flag.FlagSet) *GlobalFlags {
	g := &GlobalFlags{}
	fs.StringVar(&g.BundleID, "bundle", "", "schema bundle id")
	fs.StringVar(&g.Config, "config", "", "path to config YAML")
	fs.BoolVar(&g.JSON, "json", false, "emit machine-readable JSON")
	fs.BoolVarP(&g.Quiet, "quiet", "q", false, "suppress progress bars and non-essential output")
	fs.BoolVar(&g.NoColor, "no-color", false, "disable ANSI color output")
	return g
}

func (g *GlobalFlags) applyColors() {
	ui.InitColors(g.NoColor)
}
