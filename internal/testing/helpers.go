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

package testing

import (
	"context"
	"testing"

	"github.com/niemforge/niemgraph/pkg/mapping"
	"github.com/niemforge/niemgraph/pkg/sink"
)

// SampleMapping returns a fixed GraphMapping covering a Person/Charge
// object pair, a structures:ref reference, and a two-endpoint association,
// small enough to read at a glance but broad enough to exercise the
// reference and association projection rules together.
//
// Example:
//
//	m := testing.SampleMapping()
//	mut, _, err := projector.Project(data, projector.Options{Mapping: m, FileHash: "abc", Format: projector.FormatXML}, nil)
func SampleMapping() *mapping.GraphMapping {
	return &mapping.GraphMapping{
		Namespaces: map[string]string{
			"j":          "http://example.org/j",
			"structures": "http://example.org/structures",
		},
		Objects: []mapping.ObjectClass{
			{QName: "j:Person", Label: "j_Person", CarriesStructuresID: true},
			{QName: "j:Charge", Label: "j_Charge", CarriesStructuresID: true},
		},
		References: []mapping.Reference{
			{
				OwnerQName:  "j:Charge",
				FieldQName:  "j:ChargeDescriptionText",
				TargetLabel: "j_Person",
				RelType:     "HAS_CHARGEDESCRIPTIONTEXT",
				Via:         mapping.ViaStructuresRef,
				Cardinality: "one",
			},
		},
		Associations: []mapping.Association{
			{
				QName:   "j:PersonChargeAssociation",
				RelType: "ASSOCIATED_WITH",
				Endpoints: []mapping.AssociationEndpoint{
					{RoleQName: "j:Person", TargetLabel: "j_Person", Direction: "from", Via: mapping.ViaStructuresRef},
					{RoleQName: "j:Charge", TargetLabel: "j_Charge", Direction: "to", Via: mapping.ViaStructuresRef},
				},
			},
		},
		Polymorphism: mapping.DefaultPolymorphism,
	}
}

// SampleXMLInstance returns an XML document exercising SampleMapping: one
// Person, one Charge, and a PersonChargeAssociation linking them.
func SampleXMLInstance() []byte {
	return []byte(`<?xml version="1.0"?>
<j:Report xmlns:j="http://example.org/j" xmlns:structures="http://example.org/structures">
  <j:Person structures:id="P01">
    <j:PersonGivenName>Jane</j:PersonGivenName>
  </j:Person>
  <j:Charge structures:id="C01">
    <j:ChargeDescriptionText structures:ref="P01"/>
  </j:Charge>
  <j:PersonChargeAssociation structures:id="A01">
    <j:Person structures:ref="P01"/>
    <j:Charge structures:ref="C01"/>
  </j:PersonChargeAssociation>
</j:Report>`)
}

// SampleJSONInstance returns the JSON-format equivalent of
// SampleXMLInstance, for format-parity tests.
func SampleJSONInstance() []byte {
	return []byte(`{
  "j:Report": {
    "j:Person": {"@id": "P01", "j:PersonGivenName": "Jane"},
    "j:Charge": {"@id": "C01", "j:ChargeDescriptionText": {"@ref": "P01"}},
    "j:PersonChargeAssociation": {
      "@id": "A01",
      "j:Person": {"@ref": "P01"},
      "j:Charge": {"@ref": "C01"}
    }
  }
}`)
}

// SeedMemorySinks builds a fresh in-memory GraphSink and BlobSink, writes
// the serialized mapping to the blob sink under bundleID's mapping key,
// and registers cleanup closing both. Use with orchestrator.New when a
// test wants to exercise the mapping cache's blob-backed cache-miss path
// instead of calling Orchestrator.ActivateMapping directly.
func SeedMemorySinks(t *testing.T, bundleID string, m *mapping.GraphMapping) (*sink.MemoryGraphSink, *sink.MemoryBlobSink) {
	t.Helper()

	graph := sink.NewMemoryGraphSink()
	blobs := sink.NewMemoryBlobSink()

	serialized, err := mapping.Serialize(m)
	if err != nil {
		t.Fatalf("serialize sample mapping: %v", err)
	}
	if err := blobs.Put(context.Background(), bundleID+"/mapping.yaml", serialized); err != nil {
		t.Fatalf("seed mapping blob: %v", err)
	}

	t.Cleanup(func() {
		_ = graph.Close()
		_ = blobs.Close()
	})

	return graph, blobs
}
