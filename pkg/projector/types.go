// Copyright 2025 KrakLabs
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

// Package projector transforms an InstanceDocument (XML or JSON) into an
// ordered sequence of ProjectedNodes and ProjectedEdges, honoring NIEM's
// reference/role/augmentation/association patterns (§4.4).
package projector

// ProjectedNode is one node the projector emits (§3).
type ProjectedNode struct {
	ID         string
	Labels     []string
	Properties map[string]any
}

// ProjectedEdge is one edge the projector emits (§3). Relationship types
// are CONTAINS, HAS_*, REFERS_TO, REPRESENTS, ASSOCIATED_WITH, or a
// schema-derived type declared by the mapping.
type ProjectedEdge struct {
	FromID     string
	FromLabel  string
	ToID       string
	ToLabel    string
	RelType    string
	Properties map[string]any
}

// Relationship type constants used by the built-in NIEM patterns (§3).
const (
	RelContains        = "CONTAINS"
	RelRefersTo        = "REFERS_TO"
	RelRepresents      = "REPRESENTS"
	RelAssociatedWith  = "ASSOCIATED_WITH"
	labelEntity        = "Entity"
)

// Mutations is the ordered output of one projection run: pass 1 (nodes)
// followed by pass 2 (edges), per §4.4.7.
type Mutations struct {
	Nodes []ProjectedNode
	Edges []ProjectedEdge
}

// Warning is a non-fatal condition recorded during projection (e.g. a
// dangling reference, §4.4.10) that does not change the file's status.
type Warning struct {
	Message string
}
