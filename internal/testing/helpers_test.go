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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/niemforge/niemgraph/pkg/mapping"
)

func TestSampleMapping_ResolvesReferencesAndAssociations(t *testing.T) {
	m := SampleMapping()
	require.Len(t, m.Objects, 2)

	_, ok := m.ObjectByQName("j:Person")
	require.True(t, ok)

	refs := m.ReferencesOf("j:Charge")
	require.Len(t, refs, 1)
	assert.Equal(t, "j_Person", refs[0].TargetLabel)

	assoc, ok := m.AssociationByQName("j:PersonChargeAssociation")
	require.True(t, ok)
	require.Len(t, assoc.Endpoints, 2)
}

func TestSeedMemorySinks_WritesMappingBlob(t *testing.T) {
	m := SampleMapping()
	graph, blobs := SeedMemorySinks(t, "bundle-1", m)
	require.NotNil(t, graph)

	data, err := blobs.Get(context.Background(), "bundle-1/mapping.yaml")
	require.NoError(t, err)

	parsed, err := mapping.Parse(data)
	require.NoError(t, err)
	require.Len(t, parsed.Objects, 2)
}
