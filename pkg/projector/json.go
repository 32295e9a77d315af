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

package projector

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// parseJSON converts JSON bytes into the generic instance tree, normalizing
// this format's "@id"/"@ref"/"@uri"/"@type" conventions onto the same
// reserved attribute keys the XML converter uses ("structures:id",
// "structures:ref", "structures:uri", "xsi:type", "xsi:nil"). Normalizing
// at the parse boundary, rather than in the projection algorithm, is what
// makes format parity (§4.4.9, T10) a property of the shared tree instead
// of something each converter has to reimplement.
func parseJSON(data []byte) (*elemNode, error) {
	if len(data) > maxDocumentBytes {
		return nil, fmt.Errorf("json document exceeds maximum size of %d bytes", maxDocumentBytes)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var envelope map[string]any
	if err := dec.Decode(&envelope); err != nil {
		return nil, fmt.Errorf("parsing json: %w", err)
	}
	if len(envelope) != 1 {
		return nil, fmt.Errorf("json instance document must have exactly one root key, found %d", len(envelope))
	}

	var rootQName string
	var rootValue any
	for k, v := range envelope {
		rootQName, rootValue = k, v
	}

	n, err := jsonValueToNode(rootQName, rootValue, 0)
	if err != nil {
		return nil, err
	}
	return n, nil
}

// jsonValueToNode converts a single qname-keyed JSON value into an
// elemNode. value is one of: map[string]any (object), []any (array,
// handled by the caller by emitting one node per element), or a scalar
// (string/json.Number/bool/nil).
func jsonValueToNode(qname string, value any, depth int) (*elemNode, error) {
	if depth > maxElementDepth {
		return nil, fmt.Errorf("json nesting exceeds maximum depth of %d", maxElementDepth)
	}

	n := &elemNode{QName: qname, Attrs: map[string]string{}, IsLeaf: true}

	switch v := value.(type) {
	case nil:
		n.Attrs["xsi:nil"] = "true"

	case map[string]any:
		for key, child := range v {
			switch key {
			case "@id":
				n.Attrs["structures:id"] = fmt.Sprint(child)
			case "@ref":
				n.Attrs["structures:ref"] = fmt.Sprint(child)
			case "@uri":
				n.Attrs["structures:uri"] = fmt.Sprint(child)
			case "@type":
				n.Attrs["xsi:type"] = fmt.Sprint(child)
			default:
				if err := appendJSONChildren(n, key, child, depth+1); err != nil {
					return nil, err
				}
			}
		}
		// An object carrying only "@id" (rule 2, reference carrier) has no
		// element children and no text: it remains a leaf and its id is
		// recorded as structures:ref, which project.go recognizes as the
		// reference pattern.
		if id, ok := n.Attrs["structures:id"]; ok && len(v) == 1 {
			delete(n.Attrs, "structures:id")
			n.Attrs["structures:ref"] = id
		}
		if len(n.Children) > 0 {
			n.IsLeaf = false
		}

	default:
		n.Text = fmt.Sprint(v)
	}

	return n, nil
}

// appendJSONChildren handles one non-reserved object key, which is either a
// single nested value or (for repeated elements) a JSON array of values.
func appendJSONChildren(parent *elemNode, qname string, value any, depth int) error {
	if arr, ok := value.([]any); ok {
		for _, item := range arr {
			child, err := jsonValueToNode(qname, item, depth)
			if err != nil {
				return err
			}
			parent.Children = append(parent.Children, child)
		}
		return nil
	}
	child, err := jsonValueToNode(qname, value, depth)
	if err != nil {
		return err
	}
	parent.Children = append(parent.Children, child)
	return nil
}
