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
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// Hardening limits applied at every XML parse site (§9 "Parser hardening").
const (
	maxDocumentBytes = 32 << 20 // 32 MiB
	maxElementDepth  = 512
)

const xsiNamespaceURI = "http://www.w3.org/2001/XMLSchema-instance"

// parseXML converts XML bytes into the generic instance tree.
//
// encoding/xml never resolves DOCTYPE-declared external entities or
// fetches external DTD subsets (it has no notion of an external entity
// resolver at all), so it is already immune to XXE by construction; this
// function adds the two hardening measures the stdlib does not provide
// for free: a document-size cap and an element-depth cap (§9).
func parseXML(data []byte) (*elemNode, error) {
	if len(data) > maxDocumentBytes {
		return nil, fmt.Errorf("xml document exceeds maximum size of %d bytes", maxDocumentBytes)
	}

	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Strict = true

	type frame struct {
		node     *elemNode
		uriToPfx map[string]string
	}
	// Scope stack for namespace-prefix reconstruction: each frame maps a
	// namespace URI to the prefix the *document itself* bound it to, so
	// "structures:id" is recovered from whatever xmlns:structures="..."
	// the instance declares, not a hardcoded NIEM release URI.
	root := &frame{uriToPfx: map[string]string{xsiNamespaceURI: "xsi"}}
	stack := []*frame{root}

	var rootElem *elemNode
	depth := 0

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			if depth > maxElementDepth {
				return nil, fmt.Errorf("xml nesting exceeds maximum depth of %d", maxElementDepth)
			}

			parent := stack[len(stack)-1]
			scope := make(map[string]string, len(parent.uriToPfx))
			for k, v := range parent.uriToPfx {
				scope[k] = v
			}
			for _, a := range t.Attr {
				if a.Name.Space == "xmlns" {
					scope[a.Value] = a.Name.Local
				} else if a.Name.Space == "" && a.Name.Local == "xmlns" {
					scope[a.Value] = ""
				}
			}

			n := &elemNode{QName: qnameOf(t.Name, scope), Attrs: map[string]string{}, IsLeaf: true}
			for _, a := range t.Attr {
				if a.Name.Space == "xmlns" || (a.Name.Space == "" && a.Name.Local == "xmlns") {
					continue
				}
				n.Attrs[qnameOf(a.Name, scope)] = a.Value
			}

			if rootElem == nil {
				rootElem = n
			} else {
				parent.node.Children = append(parent.node.Children, n)
				parent.node.IsLeaf = false
			}
			stack = append(stack, &frame{node: n, uriToPfx: scope})

		case xml.EndElement:
			depth--
			finished := stack[len(stack)-1].node
			stack = stack[:len(stack)-1]
			if finished != nil && finished.IsLeaf {
				// Text was accumulated directly on this node below.
			}

		case xml.CharData:
			if len(stack) == 0 {
				continue
			}
			cur := stack[len(stack)-1].node
			if cur == nil {
				continue
			}
			text := string(t)
			if strings.TrimSpace(text) == "" {
				continue
			}
			cur.Text += text
		}
	}

	if rootElem == nil {
		return nil, fmt.Errorf("xml document has no root element")
	}
	return rootElem, nil
}

// qnameOf resolves an xml.Name back to a "prefix:local" string using the
// scope's uri-to-prefix bindings. Unqualified names (no namespace) and
// names whose namespace wasn't explicitly bound pass through as local.
func qnameOf(name xml.Name, scope map[string]string) string {
	if name.Space == "" {
		return name.Local
	}
	if prefix, ok := scope[name.Space]; ok {
		if prefix == "" {
			return name.Local
		}
		return prefix + ":" + name.Local
	}
	return name.Local
}
