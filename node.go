// Copyright 2025 The yamlkit Authors
// SPDX-License-Identifier: Apache-2.0

package yaml

import "github.com/yamlkit/yaml/internal/libyaml"

// Document owns one composed node tree. It is independent of the stream
// that produced it and may be read freely, including from multiple
// iterators at once, since all access after composition is read-only.
type Document struct {
	doc libyaml.Document
}

// IsEmpty reports whether the document has no root node, as produced by an
// explicit "---" with no content.
func (d *Document) IsEmpty() bool {
	return d.doc.GetRootNode() == nil
}

// Root returns the document's root node. The second return value is false
// when the document is empty.
//
// Nodes are borrowed views: they resolve locations inside the owning
// Document and must not be used after the Document is discarded. Requesting
// the root twice yields two independent views over identical data.
func (d *Document) Root() (Node, bool) {
	if d.doc.GetRootNode() == nil {
		return nil, false
	}
	return d.node(1), true
}

// node builds the typed view for the 1-based node index.
func (d *Document) node(index int) Node {
	n := d.doc.GetNode(index)
	if n == nil {
		panic("internal error: node index out of range")
	}
	data := nodeData{doc: d, raw: n}
	switch n.Type {
	case libyaml.SCALAR_NODE:
		return &ScalarNode{nodeData: data}
	case libyaml.SEQUENCE_NODE:
		return &SequenceNode{nodeData: data}
	case libyaml.MAPPING_NODE:
		return &MappingNode{nodeData: data}
	}
	panic("internal error: unknown node type: " + n.Type.String())
}

// Node is a read-only view of one element of a document tree. The shape set
// is closed: *ScalarNode, *SequenceNode or *MappingNode.
type Node interface {
	// Tag returns the node's resolved tag. Never empty: untagged nodes get
	// the default tag for their shape (!!str, !!seq or !!map).
	Tag() string

	// StartMark returns the position where the node begins.
	StartMark() Mark

	// EndMark returns the position just past the node.
	EndMark() Mark

	isNode()
}

// nodeData is the location of a node inside its owning document.
type nodeData struct {
	doc *Document
	raw *libyaml.Node
}

func (n *nodeData) Tag() string     { return string(n.raw.Tag) }
func (n *nodeData) StartMark() Mark { return decodeMark(n.raw.StartMark) }
func (n *nodeData) EndMark() Mark   { return decodeMark(n.raw.EndMark) }
func (n *nodeData) isNode()         {}

// ScalarNode is a scalar element of a document tree.
type ScalarNode struct {
	nodeData
}

// Value returns the scalar text.
func (n *ScalarNode) Value() string {
	return string(n.raw.Value)
}

// Style returns the scalar's presentation style in the source text.
func (n *ScalarNode) Style() ScalarStyle {
	return decodeScalarStyle(n.raw.ScalarStyle())
}

// SequenceNode is a sequence element of a document tree.
type SequenceNode struct {
	nodeData
}

// Len returns the number of items in the sequence.
func (n *SequenceNode) Len() int {
	return len(n.raw.Items)
}

// Values returns a fresh forward iterator over the sequence's items, in
// document order. Iterators are independent; to restart, request another.
func (n *SequenceNode) Values() *SequenceIter {
	return &SequenceIter{doc: n.doc, items: n.raw.Items}
}

// MappingNode is a mapping element of a document tree.
type MappingNode struct {
	nodeData
}

// Len returns the number of key/value pairs in the mapping.
func (n *MappingNode) Len() int {
	return len(n.raw.Pairs)
}

// Pairs returns a fresh forward iterator over the mapping's key/value
// pairs, in appearance order. Keys are not re-sorted or de-duplicated, and
// both key and value may themselves be any node shape.
func (n *MappingNode) Pairs() *MappingIter {
	return &MappingIter{doc: n.doc, pairs: n.raw.Pairs}
}

// SequenceIter is a forward-only iterator over a sequence node's items.
type SequenceIter struct {
	doc   *Document
	items []int
	pos   int
}

// Next returns the next item, or false when the sequence is exhausted.
func (it *SequenceIter) Next() (Node, bool) {
	if it.pos >= len(it.items) {
		return nil, false
	}
	index := it.items[it.pos]
	it.pos++
	return it.doc.node(index), true
}

// MappingIter is a forward-only iterator over a mapping node's pairs.
type MappingIter struct {
	doc   *Document
	pairs []libyaml.NodePair
	pos   int
}

// Next returns the next key/value pair, or false when the mapping is
// exhausted.
func (it *MappingIter) Next() (key, value Node, ok bool) {
	if it.pos >= len(it.pairs) {
		return nil, nil, false
	}
	pair := it.pairs[it.pos]
	it.pos++
	return it.doc.node(pair.Key), it.doc.node(pair.Value), true
}
