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
	"fmt"
	"log/slog"
	"sort"

	nierrors "github.com/niemforge/niemgraph/internal/errors"
)

// MappingCompiler parses a CanonicalModel and emits a deterministic
// GraphMapping (§4.3). It holds no mutable state between calls; Compile
// is a pure function of its input bytes (Invariant M3, T4).
type MappingCompiler struct {
	logger *slog.Logger
}

// NewMappingCompiler constructs a MappingCompiler. A nil logger defaults
// to slog.Default(), matching the teacher's constructor convention.
func NewMappingCompiler(logger *slog.Logger) *MappingCompiler {
	if logger == nil {
		logger = slog.Default()
	}
	return &MappingCompiler{logger: logger}
}

// Compile derives a GraphMapping from canonicalModel bytes. Equal input
// bytes always produce byte-identical serialized output (Invariant M3/T4).
func (c *MappingCompiler) Compile(canonicalModel []byte) (*GraphMapping, error) {
	c.logger.Info("mapping.compile.start", "bytes", len(canonicalModel))

	cmf, err := parseCanonicalModel(canonicalModel)
	if err != nil {
		return nil, nierrors.NewMappingError(
			"Cannot compile canonical model",
			err.Error(),
			"Verify the canonicalizer produced well-formed CMF output",
			err,
		)
	}

	namespaces, err := compileNamespaces(cmf.Namespaces)
	if err != nil {
		return nil, err
	}

	objects, associations, augmentations, references, err := compileClasses(cmf.Classes)
	if err != nil {
		return nil, err
	}

	m := &GraphMapping{
		Namespaces:    namespaces,
		Objects:       objects,
		References:    references,
		Associations:  associations,
		Augmentations: augmentations,
		Polymorphism:  DefaultPolymorphism,
	}

	if err := validateTargets(m); err != nil {
		return nil, err
	}

	canonicalize(m)

	c.logger.Info("mapping.compile.done",
		"objects", len(m.Objects), "references", len(m.References),
		"associations", len(m.Associations), "augmentations", len(m.Augmentations))
	return m, nil
}

// compileNamespaces builds the prefix table, rejecting a prefix pointing
// to two different IRIs (§4.3 step 1).
func compileNamespaces(decls []cmfNSDecl) (map[string]string, error) {
	out := make(map[string]string, len(decls))
	for _, d := range decls {
		if existing, ok := out[d.Prefix]; ok && existing != d.URI {
			return nil, nierrors.NewMappingError(
				"Duplicate namespace prefix with conflicting IRIs",
				fmt.Sprintf("prefix %q maps to both %q and %q", d.Prefix, existing, d.URI),
				"Ensure every namespace prefix in the bundle resolves to exactly one IRI",
				nil,
			)
		}
		out[d.Prefix] = d.URI
	}
	return out, nil
}

// compileClasses walks every class declaration, classifying it as a plain
// object, an association, or an augmentation point (§4.3 steps 2-3), and
// collects object-valued references declared on non-association classes.
func compileClasses(classes []cmfClass) (objects []ObjectClass, associations []Association, augmentations []Augmentation, references []Reference, err error) {
	augByTarget := make(map[string]*Augmentation)

	for _, cls := range classes {
		label := Label(cls.QName)

		switch {
		case cls.IsAugmentationPoint:
			aug := augByTarget[cls.AugmentsQName]
			if aug == nil {
				aug = &Augmentation{TargetQName: cls.AugmentsQName}
				augByTarget[cls.AugmentsQName] = aug
			}
			aug.WrapperQNames = append(aug.WrapperQNames, cls.QName)
			for _, p := range cls.Properties {
				switch p.Kind {
				case cmfScalar:
					aug.AddedProps = append(aug.AddedProps, Label(p.FieldQName))
				case cmfObject, cmfRole:
					aug.AddedRelations = append(aug.AddedRelations, RelTypeForField(p.FieldQName))
				}
			}

		case cls.IsAssociationType:
			assoc := Association{QName: cls.QName, RelType: "ASSOCIATED_WITH"}
			for _, p := range cls.Properties {
				if p.Kind != cmfRole {
					continue
				}
				assoc.Endpoints = append(assoc.Endpoints, AssociationEndpoint{
					RoleQName:   p.FieldQName,
					TargetLabel: Label(p.TargetQName),
					Direction:   "out",
					Via:         ViaStructuresRef,
					Cardinality: "one",
				})
			}
			associations = append(associations, assoc)

		default:
			obj := ObjectClass{
				QName:               cls.QName,
				Label:               label,
				CarriesStructuresID: cls.ExtendsStructuresObject,
			}
			for _, p := range cls.Properties {
				switch p.Kind {
				case cmfScalar:
					obj.ScalarProps = append(obj.ScalarProps, ScalarProp{
						PathFromObject: LocalName(p.FieldQName),
						Neo4jProperty:  Label(p.FieldQName),
						Datatype:       p.Datatype,
					})
				case cmfObject:
					references = append(references, Reference{
						OwnerQName:  cls.QName,
						FieldQName:  p.FieldQName,
						TargetLabel: Label(p.TargetQName),
						RelType:     RelTypeForField(p.FieldQName),
						Via:         ViaStructuresRef,
						Cardinality: "many",
					})
				}
			}
			objects = append(objects, obj)
		}
	}

	for _, aug := range augByTarget {
		augmentations = append(augmentations, *aug)
	}
	return objects, associations, augmentations, references, nil
}

// validateTargets enforces Invariant M2: every targetLabel referenced from
// references or association endpoints equals the label of exactly one
// object, or the literal "Entity" (hub).
func validateTargets(m *GraphMapping) error {
	labels := make(map[string]int, len(m.Objects))
	for _, o := range m.Objects {
		labels[o.Label]++
	}
	for label, count := range labels {
		if count > 1 {
			return nierrors.NewMappingError(
				"Duplicate object label in canonical model",
				fmt.Sprintf("label %q is produced by %d classes", label, count),
				"Ensure each class qname is unique within the bundle",
				nil,
			)
		}
	}

	resolvable := func(target string) bool {
		if target == "Entity" {
			return true
		}
		_, ok := labels[target]
		return ok
	}

	for _, r := range m.References {
		if !resolvable(r.TargetLabel) {
			return nierrors.NewMappingError(
				"Unresolved reference target",
				fmt.Sprintf("field %q on %q targets unknown label %q", r.FieldQName, r.OwnerQName, r.TargetLabel),
				"Declare the missing class in the schema bundle or correct the field's type",
				nil,
			)
		}
	}
	for _, a := range m.Associations {
		for _, e := range a.Endpoints {
			if !resolvable(e.TargetLabel) {
				return nierrors.NewMappingError(
					"Unresolved association endpoint target",
					fmt.Sprintf("role %q on association %q targets unknown label %q", e.RoleQName, a.QName, e.TargetLabel),
					"Declare the missing class in the schema bundle or correct the role's type",
					nil,
				)
			}
		}
	}
	return nil
}

// canonicalize sorts every collection into the order §4.3 requires for
// byte-stable serialization (Invariant M3).
func canonicalize(m *GraphMapping) {
	sort.Slice(m.Objects, func(i, j int) bool { return m.Objects[i].QName < m.Objects[j].QName })
	for i := range m.Objects {
		sort.Slice(m.Objects[i].ScalarProps, func(a, b int) bool {
			return m.Objects[i].ScalarProps[a].Neo4jProperty < m.Objects[i].ScalarProps[b].Neo4jProperty
		})
	}
	sort.Slice(m.References, func(i, j int) bool {
		if m.References[i].OwnerQName != m.References[j].OwnerQName {
			return m.References[i].OwnerQName < m.References[j].OwnerQName
		}
		return m.References[i].FieldQName < m.References[j].FieldQName
	})
	sort.Slice(m.Associations, func(i, j int) bool { return m.Associations[i].QName < m.Associations[j].QName })
	for i := range m.Associations {
		sort.Slice(m.Associations[i].Endpoints, func(a, b int) bool {
			return m.Associations[i].Endpoints[a].RoleQName < m.Associations[i].Endpoints[b].RoleQName
		})
	}
	sort.Slice(m.Augmentations, func(i, j int) bool { return m.Augmentations[i].TargetQName < m.Augmentations[j].TargetQName })
	for i := range m.Augmentations {
		sort.Strings(m.Augmentations[i].AddedProps)
		sort.Strings(m.Augmentations[i].AddedRelations)
		sort.Strings(m.Augmentations[i].WrapperQNames)
	}
}
