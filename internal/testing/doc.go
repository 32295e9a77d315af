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

// Package testing provides test helpers for niemgraph integration tests:
// a fixed sample GraphMapping, XML/JSON instance fixtures that exercise
// it, and seeded in-memory sinks, so package tests don't each hand-roll
// the same Person/Charge/PersonChargeAssociation mapping.
//
// # Quick Start
//
//	func TestMyFeature(t *testing.T) {
//	    m := testing.SampleMapping()
//	    graph, blobs := testing.SeedMemorySinks(t, "bundle-1", m)
//	    // graph/blobs are ready for an Orchestrator constructed against them
//	}
package testing
