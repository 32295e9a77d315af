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

import "encoding/xml"

// cmfModel is the parsed shape of a CanonicalModel (CMF) document, the
// intermediate representation the ToolGateway's xsdToCanonicalModel
// operation produces from a validated XSD bundle (§3 CanonicalModel,
// §4.3). It is never exposed outside this package; MappingCompiler
// consumes it and discards it once the GraphMapping is built.
type cmfModel struct {
	XMLName    xml.Name      `xml:"Model"`
	Namespaces []cmfNSDecl   `xml:"Namespace"`
	Classes    []cmfClass    `xml:"Class"`
}

type cmfNSDecl struct {
	Prefix string `xml:"prefix,attr"`
	URI    string `xml:"uri,attr"`
}

// cmfPropertyKind classifies one property of a cmfClass per §4.3 step 3.
type cmfPropertyKind string

const (
	cmfScalar cmfPropertyKind = "scalar"
	cmfObject cmfPropertyKind = "object"
	cmfRole   cmfPropertyKind = "role"
)

type cmfClass struct {
	QName                   string        `xml:"qname,attr"`
	ExtendsStructuresObject bool          `xml:"extendsStructuresObject,attr"`
	IsAugmentationPoint     bool          `xml:"isAugmentationPoint,attr"`
	AugmentsQName           string        `xml:"augmentsQName,attr"`
	IsAssociationType       bool          `xml:"isAssociationType,attr"`
	Properties              []cmfProperty `xml:"Property"`
}

type cmfProperty struct {
	FieldQName  string          `xml:"qname,attr"`
	Kind        cmfPropertyKind `xml:"kind,attr"`
	TargetQName string          `xml:"targetQName,attr"`
	Datatype    string          `xml:"datatype,attr"`
}

// parseCanonicalModel unmarshals a CanonicalModel byte stream. The
// document is the opaque intermediate produced by the external
// canonicalizer (§3); MappingCompiler is its only reader.
func parseCanonicalModel(data []byte) (*cmfModel, error) {
	var m cmfModel
	if err := xml.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
