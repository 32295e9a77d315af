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

// Package mapping defines GraphMapping — the compiled projection contract
// for one schema bundle — and the MappingCompiler that derives it from a
// CanonicalModel.
package mapping

import "strings"

// GraphMapping is the compiled projection contract for one schema bundle
// (§3). Field names use snake_case to match the teacher's project-config
// YAML conventions, since GraphMapping is serialized with gopkg.in/yaml.v3.
type GraphMapping struct {
	Namespaces    map[string]string `yaml:"namespaces"`
	Objects       []ObjectClass     `yaml:"objects"`
	References    []Reference       `yaml:"references"`
	Associations  []Association     `yaml:"associations"`
	Augmentations []Augmentation    `yaml:"augmentations"`
	Polymorphism  Polymorphism      `yaml:"polymorphism"`
}

// ObjectClass is one class declared in the bundle's canonical model.
type ObjectClass struct {
	QName               string       `yaml:"qname"`
	Label               string       `yaml:"label"`
	CarriesStructuresID bool         `yaml:"carries_structures_id"`
	ScalarProps         []ScalarProp `yaml:"scalar_props"`
}

// ScalarProp is a simple-content property projected as a node property.
type ScalarProp struct {
	PathFromObject string `yaml:"path_from_object"`
	Neo4jProperty  string `yaml:"neo4j_property"`
	Datatype       string `yaml:"datatype,omitempty"`
}

// ReferenceVia identifies how a reference is carried in instance documents.
type ReferenceVia string

const (
	ViaStructuresRef ReferenceVia = "structures:ref"
	ViaStructuresURI ReferenceVia = "structures:uri"
	ViaIDAttr        ReferenceVia = "id-attr"
)

// Reference is an object-valued field on a class, per §3/§4.3.
type Reference struct {
	OwnerQName  string       `yaml:"owner_qname"`
	FieldQName  string       `yaml:"field_qname"`
	TargetLabel string       `yaml:"target_label"`
	RelType     string       `yaml:"rel_type"`
	Via         ReferenceVia `yaml:"via"`
	Cardinality string       `yaml:"cardinality"`
}

// AssociationEndpoint is one role reference of an association class.
type AssociationEndpoint struct {
	RoleQName   string       `yaml:"role_qname"`
	TargetLabel string       `yaml:"target_label"`
	Direction   string       `yaml:"direction"`
	Via         ReferenceVia `yaml:"via"`
	Cardinality string       `yaml:"cardinality"`
}

// Association is a class derived from the NIEM association base (§4.3).
type Association struct {
	QName     string                `yaml:"qname"`
	RelType   string                `yaml:"rel_type"`
	Endpoints []AssociationEndpoint `yaml:"endpoints"`
}

// Augmentation records properties/relations an augmentation point adds to
// its augmented parent class (§4.3, §4.4.4). Augmentation elements never
// produce their own node at projection time.
type Augmentation struct {
	TargetQName    string   `yaml:"target_qname"`
	AddedProps     []string `yaml:"added_props"`
	AddedRelations []string `yaml:"added_relations"`

	// WrapperQNames lists the augmentation-point class qnames (e.g.
	// "j:PersonAugmentation") that contribute to this target. Not part
	// of §3's literal field list but required by the projector to
	// recognize an augmentation wrapper element on sight (§4.4.4).
	WrapperQNames []string `yaml:"wrapper_qnames"`
}

// AugmentationWrapperQNames returns the set of all class qnames across
// the mapping that are augmentation points, for fast membership checks
// during projection.
func (m *GraphMapping) AugmentationWrapperQNames() map[string]bool {
	out := make(map[string]bool)
	for _, a := range m.Augmentations {
		for _, w := range a.WrapperQNames {
			out[w] = true
		}
	}
	return out
}

// AugmentationByWrapperQName finds the augmentation entry whose wrapper
// set contains qname, if any.
func (m *GraphMapping) AugmentationByWrapperQName(qname string) (Augmentation, bool) {
	for _, a := range m.Augmentations {
		for _, w := range a.WrapperQNames {
			if w == qname {
				return a, true
			}
		}
	}
	return Augmentation{}, false
}

// Polymorphism describes how substitution-group members are distinguished
// at projection time (§4.3 step 4).
type Polymorphism struct {
	Strategy         string `yaml:"strategy"`
	TypePropertyName string `yaml:"type_property_name"`
}

// DefaultPolymorphism is the mapping's fixed polymorphism policy; the
// core implements exactly one strategy (§4.3 step 4).
var DefaultPolymorphism = Polymorphism{Strategy: "extraLabel", TypePropertyName: "xsiType"}

// Label derives a graph node label from a qname by replacing ':' with '_'
// (Invariant M1, GLOSSARY "label").
func Label(qname string) string {
	return strings.ReplaceAll(qname, ":", "_")
}

// LocalName returns the local part of a qname (after the last ':').
func LocalName(qname string) string {
	if i := strings.LastIndex(qname, ":"); i >= 0 {
		return qname[i+1:]
	}
	return qname
}

// RelTypeForField derives a HAS_* relationship type from a field qname
// per Invariant M1: "HAS_" + ASCII-uppercased local name, non-alphanumerics
// replaced by '_'.
func RelTypeForField(fieldQName string) string {
	local := LocalName(fieldQName)
	var b strings.Builder
	b.WriteString("HAS_")
	for _, r := range strings.ToUpper(local) {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}

// ObjectByLabel returns the object class with the given label, if any.
func (m *GraphMapping) ObjectByLabel(label string) (ObjectClass, bool) {
	for _, o := range m.Objects {
		if o.Label == label {
			return o, true
		}
	}
	return ObjectClass{}, false
}

// ObjectByQName returns the object class with the given qname, if any.
func (m *GraphMapping) ObjectByQName(qname string) (ObjectClass, bool) {
	for _, o := range m.Objects {
		if o.QName == qname {
			return o, true
		}
	}
	return ObjectClass{}, false
}

// AugmentationFor returns the augmentation entry targeting qname, if any.
func (m *GraphMapping) AugmentationFor(qname string) (Augmentation, bool) {
	for _, a := range m.Augmentations {
		if a.TargetQName == qname {
			return a, true
		}
	}
	return Augmentation{}, false
}

// AssociationByQName returns the association class with the given qname.
func (m *GraphMapping) AssociationByQName(qname string) (Association, bool) {
	for _, a := range m.Associations {
		if a.QName == qname {
			return a, true
		}
	}
	return Association{}, false
}

// ReferencesOf returns the references declared by ownerQName, in mapping
// order.
func (m *GraphMapping) ReferencesOf(ownerQName string) []Reference {
	var out []Reference
	for _, r := range m.References {
		if r.OwnerQName == ownerQName {
			out = append(out, r)
		}
	}
	return out
}
