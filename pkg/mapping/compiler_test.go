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

package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCMF = `<?xml version="1.0"?>
<Model>
  <Namespace prefix="j" uri="http://example.org/j"/>
  <Namespace prefix="nc" uri="http://example.org/nc"/>
  <Class qname="j:Charge" extendsStructuresObject="true">
    <Property qname="j:ChargeDescriptionText" kind="scalar" datatype="string"/>
  </Class>
  <Class qname="j:Person" extendsStructuresObject="true">
    <Property qname="nc:PersonGivenName" kind="scalar" datatype="string"/>
  </Class>
  <Class qname="j:PersonChargeAssociation" isAssociationType="true">
    <Property qname="j:Person" kind="role" targetQName="j:Person"/>
    <Property qname="j:Charge" kind="role" targetQName="j:Charge"/>
  </Class>
  <Class qname="j:PersonAugmentation" isAugmentationPoint="true" augmentsQName="j:Person">
    <Property qname="j:PersonAdultIndicator" kind="scalar" datatype="boolean"/>
  </Class>
  <Class qname="j:CrashDriver" extendsStructuresObject="true">
    <Property qname="j:DriverCharge" kind="object" targetQName="j:Charge"/>
  </Class>
</Model>`

func TestMappingCompiler_Compile(t *testing.T) {
	c := NewMappingCompiler(nil)
	m, err := c.Compile([]byte(sampleCMF))
	require.NoError(t, err)

	assert.Equal(t, "http://example.org/j", m.Namespaces["j"])
	assert.Equal(t, DefaultPolymorphism, m.Polymorphism)

	charge, ok := m.ObjectByQName("j:Charge")
	require.True(t, ok)
	assert.Equal(t, "j_Charge", charge.Label)
	assert.True(t, charge.CarriesStructuresID)
	require.Len(t, charge.ScalarProps, 1)
	assert.Equal(t, "j_ChargeDescriptionText", charge.ScalarProps[0].Neo4jProperty)

	assoc, ok := m.AssociationByQName("j:PersonChargeAssociation")
	require.True(t, ok)
	assert.Equal(t, "ASSOCIATED_WITH", assoc.RelType)
	require.Len(t, assoc.Endpoints, 2)

	aug, ok := m.AugmentationFor("j:Person")
	require.True(t, ok)
	assert.Contains(t, aug.AddedProps, "j_PersonAdultIndicator")

	refs := m.ReferencesOf("j:CrashDriver")
	require.Len(t, refs, 1)
	assert.Equal(t, "HAS_DRIVERCHARGE", refs[0].RelType)
	assert.Equal(t, "j_Charge", refs[0].TargetLabel)
}

func TestMappingCompiler_Compile_Deterministic(t *testing.T) {
	c := NewMappingCompiler(nil)
	m1, err := c.Compile([]byte(sampleCMF))
	require.NoError(t, err)
	m2, err := c.Compile([]byte(sampleCMF))
	require.NoError(t, err)

	b1, err := Serialize(m1)
	require.NoError(t, err)
	b2, err := Serialize(m2)
	require.NoError(t, err)

	assert.Equal(t, b1, b2, "identical canonical model bytes must compile to byte-identical mappings (M3/T4)")
}

func TestMappingCompiler_Compile_DuplicateNamespacePrefix(t *testing.T) {
	const cmf = `<Model>
  <Namespace prefix="j" uri="http://example.org/j"/>
  <Namespace prefix="j" uri="http://example.org/other"/>
</Model>`
	c := NewMappingCompiler(nil)
	_, err := c.Compile([]byte(cmf))
	assert.Error(t, err)
}

func TestMappingCompiler_Compile_UnresolvedReferenceTarget(t *testing.T) {
	const cmf = `<Model>
  <Class qname="j:CrashDriver">
    <Property qname="j:DriverCharge" kind="object" targetQName="j:DoesNotExist"/>
  </Class>
</Model>`
	c := NewMappingCompiler(nil)
	_, err := c.Compile([]byte(cmf))
	assert.Error(t, err)
}

func TestMappingCompiler_Compile_UnresolvedTargetAllowsEntityHub(t *testing.T) {
	const cmf = `<Model>
  <Class qname="j:CrashDriver">
    <Property qname="j:DriverPerson" kind="object" targetQName="Entity"/>
  </Class>
</Model>`
	c := NewMappingCompiler(nil)
	m, err := c.Compile([]byte(cmf))
	require.NoError(t, err)
	require.Len(t, m.References, 1)
	assert.Equal(t, "Entity", m.References[0].TargetLabel)
}

func TestRelTypeForField(t *testing.T) {
	assert.Equal(t, "HAS_REF", RelTypeForField("j:ref"))
	assert.Equal(t, "HAS_DRIVERCHARGE", RelTypeForField("j:DriverCharge"))
	assert.Equal(t, "HAS_FOO_BAR", RelTypeForField("j:foo-bar"))
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "j_Charge", Label("j:Charge"))
	assert.Equal(t, "Entity", Label("Entity"))
}
