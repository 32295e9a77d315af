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
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	nierrors "github.com/niemforge/niemgraph/internal/errors"
	"github.com/niemforge/niemgraph/pkg/mapping"
)

// SourceFormat distinguishes the two sibling converters that must agree on
// every emitted node and edge given equivalent inputs (§4.4.9, T10).
type SourceFormat int

const (
	FormatXML SourceFormat = iota
	FormatJSON
)

// Options configures one projection run.
type Options struct {
	// Mapping is the compiled GraphMapping for the schema bundle. A nil
	// Mapping selects dynamic mode (§4.4.8): every complex element becomes
	// a node, labeled from its own qname.
	Mapping *mapping.GraphMapping

	// FileHash is the file-scoped identity prefix (§4.4.1), already
	// computed by the caller from filename/uploadId/contentHash.
	FileHash string

	// Format selects strictness for unmapped elements in mapping mode
	// (§4.4.9/§4.4.10, Q2): XML fails the file with UnknownElement; JSON
	// warns and flattens the element instead.
	Format SourceFormat

	// SourceDoc identifies the source document, set as the "sourceDoc"
	// property on every emitted node (§3).
	SourceDoc string

	// SchemaID is the active schema bundle id, set as the "_schema_id"
	// property on every emitted node (§3).
	SchemaID string

	// UploadID is the ingest batch's uploadId, set as the "_upload_id"
	// property on every emitted node (§3).
	UploadID string
}

// Project parses raw instance bytes and projects them into Mutations,
// honoring NIEM's reference/role/augmentation/association patterns.
func Project(raw []byte, opts Options, logger *slog.Logger) (Mutations, []Warning, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var root *elemNode
	var err error
	switch opts.Format {
	case FormatJSON:
		root, err = parseJSON(raw)
	default:
		root, err = parseXML(raw)
	}
	if err != nil {
		return Mutations{}, nil, nierrors.NewProjectionError(
			"Cannot parse instance document",
			err.Error(),
			"Verify the document is well-formed and re-validate against the schema bundle",
			err,
		)
	}
	if opts.FileHash == "" {
		return Mutations{}, nil, nierrors.NewProjectionError(
			"Missing file identity",
			"fileHash was empty",
			"Compute FileHash from filename, uploadId and content hash before projecting",
			nil,
		)
	}

	p := &walker{
		opts:    opts,
		logger:  logger,
		hubs:    map[string]*hubAccumulator{},
		nodeIdx: map[string]int{},
	}
	p.scanURIGroups(root, "")

	rootID, rootLabel, emitted, err := p.walk(root, "", "", 0, "0")
	if err != nil {
		return Mutations{}, nil, err
	}
	if emitted {
		p.logger.Debug("projector.root", "id", rootID, "label", rootLabel)
	}

	p.finalizeHubs()

	mut := Mutations{Nodes: p.nodes, Edges: p.edges}
	return mut, p.warnings, nil
}

type hubAccumulator struct {
	hubID    string
	entityID string
	roles    []roleRef
}

type roleRef struct {
	nodeID string
	qname  string
}

type walker struct {
	opts    Options
	logger  *slog.Logger
	nodes   []ProjectedNode
	nodeIdx map[string]int // node id -> index in nodes, for idempotent property merge
	edges   []ProjectedEdge
	warnings []Warning

	uriCounts map[string]int
	hubs      map[string]*hubAccumulator
}

// scanURIGroups is the algorithm's first pass (§4.4.7): count how many
// elements in the document share each structures:uri value, so the second
// pass can decide whether a uri carrier is a role (count >= 2, hub pattern,
// §4.4.5) or an ordinary node carrying a "uri" property (count == 1).
func (p *walker) scanURIGroups(n *elemNode, _ string) {
	if p.uriCounts == nil {
		p.uriCounts = map[string]int{}
	}
	if uri, ok := n.attr("structures:uri"); ok {
		p.uriCounts[uri]++
	}
	for _, c := range n.Children {
		p.scanURIGroups(c, "")
	}
}

// walk assigns identity to n (§4.4.2), records its properties (§4.4.3),
// recurses into children, and returns the id/label to use when the caller
// wires an edge to n. emitted is false when n contributes no node of its
// own (pure reference, or augmentation wrapper merged onto its parent).
func (p *walker) walk(n *elemNode, parentID, parentQName string, depth int, ordinalPath string) (id string, label string, emitted bool, err error) {
	if depth > maxElementDepth {
		return "", "", false, nierrors.NewProjectionError(
			"Instance tree too deep", fmt.Sprintf("exceeded depth %d", maxElementDepth),
			"Flatten or split the instance document", nil)
	}

	// Augmentation wrapper: merge its children onto the parent, emit no
	// node of its own (§4.4.4).
	if p.opts.Mapping != nil {
		if _, ok := p.opts.Mapping.AugmentationByWrapperQName(n.QName); ok {
			if err := p.mergeAugmentationChildren(n, parentID, parentQName, depth, ordinalPath); err != nil {
				return "", "", false, err
			}
			return "", "", false, nil
		}
	}

	// Rule 2: reference carrier without inline payload.
	if ref, ok := n.attr("structures:ref"); ok && (n.IsLeaf || n.isNil()) {
		targetID := explicitNodeID(p.opts.FileHash, ref)
		relType, toLabel := p.relForField(parentQName, n.QName)
		if parentID != "" {
			p.edges = append(p.edges, ProjectedEdge{
				FromID: parentID, ToID: targetID, ToLabel: toLabel,
				RelType: relType, Properties: map[string]any{},
			})
		}
		return targetID, toLabel, false, nil
	}

	label, isAssoc, isKnown := p.classify(n.QName)
	if !isKnown && p.opts.Mapping != nil {
		// The document root is a transparent envelope, not a class in its
		// own right: NIEM exchange roots commonly wrap unmapped message
		// types. Strict UnknownElement handling applies to every unmapped
		// complex element below the root.
		if depth == 0 && !n.IsLeaf {
			if err := p.walkChildren(n, "", n.QName, depth, ordinalPath); err != nil {
				return "", "", false, err
			}
			return "", "", false, nil
		}
		// Unmapped complex element in mapping mode (§4.4.9/Q2).
		if n.IsLeaf {
			// Scalar content with no recognized class: fold as a property
			// on the parent using the double-underscore compound key.
			if parentID != "" {
				p.addProperty(parentID, mapping.LocalName(parentQName)+"__"+mapping.LocalName(n.QName), n.Text)
			}
			return "", "", false, nil
		}
		if p.opts.Format == FormatXML {
			return "", "", false, nierrors.NewProjectionError(
				"Unknown element in mapping mode",
				fmt.Sprintf("element %q has no corresponding class in the graph mapping", n.QName),
				"Add the class to the schema bundle or correct the instance document",
				nil,
			)
		}
		p.warnings = append(p.warnings, Warning{Message: fmt.Sprintf("ignoring unknown element %q", n.QName)})
		p.flattenUnmapped(n, parentID, mapping.LocalName(parentQName))
		return "", "", false, nil
	}

	// Rule 3: URI carrier (role), only when >=2 elements share the uri.
	if uri, ok := n.attr("structures:uri"); ok && p.uriCounts[uri] >= 2 {
		roleID := syntheticNodeID(p.opts.FileHash, parentID, n.QName, ordinalPath)
		roleProps := p.scalarProperties(n)
		for k, v := range p.universalProperties(n.QName) {
			roleProps[k] = v
		}
		roleProps["_isRole"] = true
		roleProps["structures_uri"] = uri
		p.internNode(roleID, []string{label}, roleProps)
		p.accumulateHub(uri, roleID, n.QName)
		if parentID != "" {
			relType, toLabel := p.relForField(parentQName, n.QName)
			_ = toLabel
			p.edges = append(p.edges, ProjectedEdge{FromID: parentID, ToID: roleID, ToLabel: label, RelType: relType, Properties: map[string]any{}})
		}
		if err := p.walkChildren(n, roleID, n.QName, depth, ordinalPath); err != nil {
			return "", "", false, err
		}
		return roleID, label, true, nil
	}

	// Rule 1 / Rule 4: explicit id carrier, else synthetic id.
	if sid, ok := n.attr("structures:id"); ok {
		id = explicitNodeID(p.opts.FileHash, sid)
	} else {
		id = syntheticNodeID(p.opts.FileHash, parentID, n.QName, ordinalPath)
	}

	props := p.scalarProperties(n)
	if uri, ok := n.attr("structures:uri"); ok && p.uriCounts[uri] < 2 {
		props["uri"] = uri
	}
	if xt, ok := n.attr("xsi:type"); ok {
		label = mapping.Label(xt)
		props["xsiType"] = xt
	}
	for k, v := range p.universalProperties(n.QName) {
		props[k] = v
	}
	if isAssoc {
		props["_isAssociation"] = true
	}

	labels := []string{label}
	p.internNode(id, labels, props)

	if parentID != "" {
		relType, toLabel := p.relForField(parentQName, n.QName)
		if toLabel == "" {
			toLabel = label
		}
		p.edges = append(p.edges, ProjectedEdge{FromID: parentID, ToID: id, ToLabel: toLabel, RelType: relType, Properties: map[string]any{}})
	}

	if isAssoc {
		p.wireAssociation(n, id)
	}

	if err := p.walkChildren(n, id, n.QName, depth, ordinalPath); err != nil {
		return "", "", false, err
	}
	return id, label, true, nil
}

func (p *walker) walkChildren(n *elemNode, ownerID, ownerQName string, depth int, ordinalPath string) error {
	for i, c := range n.Children {
		childOrdinal := ordinalPath + "." + strconv.Itoa(i)
		if isComplexElement(c) {
			if _, _, _, err := p.walk(c, ownerID, ownerQName, depth+1, childOrdinal); err != nil {
				return err
			}
			continue
		}
		p.addProperty(ownerID, p.scalarPropertyName(ownerQName, c.QName), c.Text)
	}
	return nil
}

// mergeAugmentationChildren recurses into an augmentation wrapper's
// children directly under the augmented parent's id, so the wrapper itself
// never becomes a node (§4.4.4).
func (p *walker) mergeAugmentationChildren(wrapper *elemNode, parentID, parentQName string, depth int, ordinalPath string) error {
	if parentID == "" {
		return nil
	}
	for i, c := range wrapper.Children {
		childOrdinal := ordinalPath + ".a" + strconv.Itoa(i)
		if isComplexElement(c) {
			if _, _, _, err := p.walk(c, parentID, parentQName, depth+1, childOrdinal); err != nil {
				return err
			}
			continue
		}
		key := p.scalarPropertyName(parentQName, c.QName)
		p.addProperty(parentID, key, c.Text)
		p.setProperty(parentID, key+"_isAugmentation", true)
	}
	return nil
}

// flattenUnmapped folds an unmapped complex element's scalar descendants
// onto the parent node using compound "parent__child" property keys,
// one level at a time (§4.4.9 permissive/JSON path).
func (p *walker) flattenUnmapped(n *elemNode, parentID, prefix string) {
	if parentID == "" {
		return
	}
	local := mapping.LocalName(n.QName)
	for _, c := range n.Children {
		key := prefix + "__" + local
		if c.IsLeaf && len(c.Children) == 0 {
			p.addProperty(parentID, key+"__"+mapping.LocalName(c.QName), c.Text)
			continue
		}
		p.flattenUnmapped(c, parentID, key)
	}
}

func (p *walker) wireAssociation(n *elemNode, assocID string) {
	assoc, _ := p.opts.Mapping.AssociationByQName(n.QName)
	for _, ep := range assoc.Endpoints {
		for _, c := range n.Children {
			if c.QName != ep.RoleQName {
				continue
			}
			ref, ok := c.attr("structures:ref")
			if !ok {
				continue
			}
			targetID := explicitNodeID(p.opts.FileHash, ref)
			p.edges = append(p.edges, ProjectedEdge{
				FromID: assocID, ToID: targetID, ToLabel: ep.TargetLabel,
				RelType: RelAssociatedWith,
				Properties: map[string]any{"role_qname": ep.RoleQName},
			})
		}
	}
}

func (p *walker) accumulateHub(uri, roleID, roleQName string) {
	acc, ok := p.hubs[uri]
	if !ok {
		entityID := strings.TrimPrefix(uri, "#")
		acc = &hubAccumulator{hubID: hubNodeID(p.opts.FileHash, entityID), entityID: entityID}
		p.hubs[uri] = acc
	}
	acc.roles = append(acc.roles, roleRef{nodeID: roleID, qname: roleQName})
}

// finalizeHubs emits the single hub node per accumulated uri group plus the
// REPRESENTS edge from each role node to it (§4.4.5). Run after the main
// walk so every role node already exists (Invariant E1).
func (p *walker) finalizeHubs() {
	uris := make([]string, 0, len(p.hubs))
	for uri := range p.hubs {
		uris = append(uris, uri)
	}
	sort.Strings(uris)
	for _, uri := range uris {
		acc := p.hubs[uri]
		roleTypes := make([]string, len(acc.roles))
		roleIDs := make([]string, len(acc.roles))
		for i, r := range acc.roles {
			roleIDs[i] = r.nodeID
			roleTypes[i] = r.qname
		}

		hubProps := p.universalProperties(labelEntity)
		hubProps["_isHub"] = true
		hubProps["entity_id"] = acc.entityID
		hubProps["uri_value"] = uri
		hubProps["role_count"] = len(acc.roles)
		hubProps["role_types"] = roleTypes
		p.internNode(acc.hubID, []string{labelEntity, labelEntity + "_" + acc.entityID}, hubProps)

		sort.Strings(roleIDs)
		for _, rid := range roleIDs {
			p.edges = append(p.edges, ProjectedEdge{
				FromID: rid, ToID: acc.hubID, ToLabel: labelEntity,
				RelType: RelRepresents, Properties: map[string]any{},
			})
		}
	}
}

// internNode creates a node or merges properties/labels onto an existing
// one, matching the idempotent MERGE semantics the graph sink applies
// downstream (§6.2).
func (p *walker) internNode(id string, labels []string, props map[string]any) {
	if idx, ok := p.nodeIdx[id]; ok {
		existing := p.nodes[idx]
		for k, v := range props {
			existing.Properties[k] = v
		}
		for _, l := range labels {
			if !containsString(existing.Labels, l) {
				existing.Labels = append(existing.Labels, l)
			}
		}
		p.nodes[idx] = existing
		return
	}
	p.nodeIdx[id] = len(p.nodes)
	p.nodes = append(p.nodes, ProjectedNode{ID: id, Labels: labels, Properties: props})
}

func (p *walker) addProperty(nodeID, key, value string) {
	p.setProperty(nodeID, key, value)
}

// setProperty assigns a single property of any scalar type on an
// already-interned node; used for string content (via addProperty) and for
// boolean pattern flags (_isAugmentation suffixes, etc.) set after the
// owning node already exists.
func (p *walker) setProperty(nodeID, key string, value any) {
	if nodeID == "" || key == "" {
		return
	}
	idx, ok := p.nodeIdx[nodeID]
	if !ok {
		return
	}
	p.nodes[idx].Properties[key] = value
}

// universalProperties returns the properties every emitted node must carry
// regardless of pattern (§3): qname plus the run-scoped sourceDoc,
// _schema_id and _upload_id identifiers threaded in via Options.
func (p *walker) universalProperties(qname string) map[string]any {
	props := map[string]any{"qname": qname}
	if p.opts.SourceDoc != "" {
		props["sourceDoc"] = p.opts.SourceDoc
	}
	if p.opts.SchemaID != "" {
		props["_schema_id"] = p.opts.SchemaID
	}
	if p.opts.UploadID != "" {
		props["_upload_id"] = p.opts.UploadID
	}
	return props
}

// scalarProperties collects an element's passthrough attributes and simple
// scalar children as node properties (§4.4.3); complex children are wired
// separately via walkChildren.
func (p *walker) scalarProperties(n *elemNode) map[string]any {
	props := map[string]any{}
	for k, v := range n.passthroughAttrs() {
		props[k] = v
	}
	if n.IsLeaf && n.Text != "" {
		props["value"] = n.Text
	}
	for _, c := range n.Children {
		if !c.IsLeaf || len(c.Attrs) > 0 {
			continue
		}
		props[p.scalarPropertyName(n.QName, c.QName)] = c.Text
	}
	return props
}

func (p *walker) scalarPropertyName(ownerQName, fieldQName string) string {
	if p.opts.Mapping != nil {
		if obj, ok := p.opts.Mapping.ObjectByQName(ownerQName); ok {
			for _, sp := range obj.ScalarProps {
				if sp.PathFromObject == mapping.LocalName(fieldQName) {
					return sp.Neo4jProperty
				}
			}
		}
	}
	return mapping.Label(fieldQName)
}

// classify resolves qname to a node label plus whether it is an
// association class, consulting the mapping in mapping mode or deriving a
// label directly from the qname in dynamic mode (§4.4.8).
func (p *walker) classify(qname string) (label string, isAssociation bool, known bool) {
	if p.opts.Mapping == nil {
		return mapping.Label(qname), false, true
	}
	if obj, ok := p.opts.Mapping.ObjectByQName(qname); ok {
		return obj.Label, false, true
	}
	if assoc, ok := p.opts.Mapping.AssociationByQName(qname); ok {
		return mapping.Label(assoc.QName), true, true
	}
	return "", false, false
}

func (p *walker) relForField(ownerQName, fieldQName string) (relType, toLabel string) {
	if p.opts.Mapping != nil {
		for _, r := range p.opts.Mapping.ReferencesOf(ownerQName) {
			if r.FieldQName == fieldQName {
				return r.RelType, r.TargetLabel
			}
		}
	}
	return RelContains, ""
}

func isComplexElement(n *elemNode) bool {
	if _, ok := n.attr("structures:id"); ok {
		return true
	}
	if _, ok := n.attr("structures:ref"); ok {
		return true
	}
	if _, ok := n.attr("structures:uri"); ok {
		return true
	}
	return !n.IsLeaf
}

func containsString(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}
