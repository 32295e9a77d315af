// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package contract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/niemforge/niemgraph/pkg/mapping"
	"github.com/niemforge/niemgraph/pkg/projector"
)

// ValidationResult represents the result of an invariant check.
type ValidationResult struct {
	OK      bool
	Message string
}

var labelPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidateMapping checks a compiled GraphMapping against Invariants
// M1 (label/relType derivation) and M2 (every reference/association
// target resolves).
func ValidateMapping(m *mapping.GraphMapping) *ValidationResult {
	for _, o := range m.Objects {
		if got := mapping.Label(o.QName); got != o.Label {
			return &ValidationResult{OK: false, Message: fmt.Sprintf(
				"Invariant M1 violated: class %q has label %q, expected %q", o.QName, o.Label, got)}
		}
		if !labelPattern.MatchString(o.Label) {
			return &ValidationResult{OK: false, Message: fmt.Sprintf(
				"Invariant M1 violated: label %q is not a valid graph label", o.Label)}
		}
	}

	resolvable := make(map[string]bool, len(m.Objects))
	for _, o := range m.Objects {
		resolvable[o.Label] = true
	}
	resolvable["Entity"] = true

	for _, r := range m.References {
		if got := mapping.RelTypeForField(r.FieldQName); got != r.RelType {
			return &ValidationResult{OK: false, Message: fmt.Sprintf(
				"Invariant M1 violated: field %q has rel_type %q, expected %q", r.FieldQName, r.RelType, got)}
		}
		if !resolvable[r.TargetLabel] {
			return &ValidationResult{OK: false, Message: fmt.Sprintf(
				"Invariant M2 violated: reference %q on %q targets unresolved label %q", r.FieldQName, r.OwnerQName, r.TargetLabel)}
		}
	}
	for _, a := range m.Associations {
		for _, ep := range a.Endpoints {
			if !resolvable[ep.TargetLabel] {
				return &ValidationResult{OK: false, Message: fmt.Sprintf(
					"Invariant M2 violated: association %q endpoint %q targets unresolved label %q", a.QName, ep.RoleQName, ep.TargetLabel)}
			}
		}
	}
	return &ValidationResult{OK: true}
}

// ValidateNodeIdentity checks Invariant N1: every node id matches the
// file-scoped id prefix ("{fileHash}_..."), and Invariant N2: every node
// carries at least one label (even if only the "Entity" hub sentinel) and
// no node id appears more than once in nodes.
func ValidateNodeIdentity(fileHash string, nodes []projector.ProjectedNode) *ValidationResult {
	seen := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		if !strings.HasPrefix(n.ID, fileHash+"_") {
			return &ValidationResult{OK: false, Message: fmt.Sprintf(
				"Invariant N1 violated: node id %q is not scoped to fileHash %q", n.ID, fileHash)}
		}
		if len(n.Labels) == 0 {
			return &ValidationResult{OK: false, Message: fmt.Sprintf(
				"Invariant N2 violated: node id %q has no label", n.ID)}
		}
		if seen[n.ID] {
			return &ValidationResult{OK: false, Message: fmt.Sprintf(
				"Invariant N2 violated: node id %q emitted more than once in the same node list", n.ID)}
		}
		seen[n.ID] = true
	}
	return &ValidationResult{OK: true}
}

// ValidateNoForwardReferences checks Invariant E1: every edge's endpoints
// appear in the accompanying node set, enforcing the two-pass emission
// order (all nodes interned before any edge is emitted).
func ValidateNoForwardReferences(mut projector.Mutations) *ValidationResult {
	known := make(map[string]bool, len(mut.Nodes))
	for _, n := range mut.Nodes {
		known[n.ID] = true
	}
	for _, e := range mut.Edges {
		if !known[e.FromID] {
			return &ValidationResult{OK: false, Message: fmt.Sprintf(
				"Invariant E1 violated: edge references unknown source node %q", e.FromID)}
		}
		if !known[e.ToID] {
			return &ValidationResult{OK: false, Message: fmt.Sprintf(
				"Invariant E1 violated: edge references unknown target node %q", e.ToID)}
		}
	}
	return &ValidationResult{OK: true}
}
