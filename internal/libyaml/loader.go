// Copyright 2006-2010 Kirill Simonov
// Copyright 2011-2019 Canonical Ltd
// Copyright 2025 The yamlkit Authors
// SPDX-License-Identifier: Apache-2.0 AND MIT

// Composer stage: Builds a document node tree from the event stream.
// Handles document boundaries, tag resolution, and anchors.

package libyaml

import "io"

// Load composes the next document from the input stream into document.
// Returns io.EOF when the stream ends with no further documents.
//
// An explicit document with no root node composes into an empty document
// rather than one holding a synthetic empty scalar.
func (parser *Parser) Load(document *Document) error {
	if parser.lastError != nil {
		return parser.lastError
	}

	*document = Document{
		nodes: make([]Node, 0, initial_stack_size),
	}

	var event Event
	if !parser.stream_start_consumed {
		if err := parser.Parse(&event); err != nil {
			return err
		}
		if event.Type != STREAM_START_EVENT {
			panic("internal error: expected a stream start event")
		}
		parser.stream_start_consumed = true
		event.Delete()
	}

	if err := parser.Parse(&event); err != nil {
		return err
	}
	if event.Type == STREAM_END_EVENT {
		return io.EOF
	}
	if event.Type != DOCUMENT_START_EVENT {
		panic("internal error: expected a document start event, got " + event.Type.String())
	}

	loader := composer{
		parser:   parser,
		document: document,
		anchors:  make(map[string]anchorRef),
	}
	if err := loader.loadDocument(&event); err != nil {
		parser.lastError = err
		document.Delete()
		return err
	}
	return nil
}

// composer holds the state for composing a single document.
type composer struct {
	parser   *Parser
	document *Document
	anchors  map[string]anchorRef
}

// anchorRef records where an anchor was defined and which node it names.
type anchorRef struct {
	index int // The anchored node index.
	mark  Mark
}

func (c *composer) loadDocument(event *Event) error {
	c.document.versionDirective = event.GetVersionDirective()
	c.document.tagDirectives = event.GetTagDirectives()
	c.document.start_implicit = event.Implicit
	c.document.StartMark = event.StartMark

	var next Event
	if err := c.parser.Parse(&next); err != nil {
		return err
	}
	if next.Type != DOCUMENT_END_EVENT {
		if _, err := c.loadNode(&next); err != nil {
			return err
		}
		if err := c.parser.Parse(&next); err != nil {
			return err
		}
		if next.Type != DOCUMENT_END_EVENT {
			panic("internal error: expected a document end event, got " + next.Type.String())
		}
	}
	c.document.end_implicit = next.Implicit
	c.document.EndMark = next.EndMark
	return nil
}

// loadNode composes a node from the event and returns its index in the
// document's node table.
func (c *composer) loadNode(event *Event) (int, error) {
	switch event.Type {
	case ALIAS_EVENT:
		return c.loadAlias(event)
	case SCALAR_EVENT:
		return c.loadScalar(event)
	case SEQUENCE_START_EVENT:
		return c.loadSequence(event)
	case MAPPING_START_EVENT:
		return c.loadMapping(event)
	default:
		panic("internal error: attempted to compose unknown event: " + event.Type.String())
	}
}

// appendNode adds the node to the document's node table and returns its
// 1-based index. Child links always go through indices because the table's
// backing array moves as it grows.
func (c *composer) appendNode(n Node) int {
	c.document.nodes = append(c.document.nodes, n)
	return len(c.document.nodes)
}

// registerAnchor records the node's anchor, if it carries one.
func (c *composer) registerAnchor(index int, event *Event) error {
	if len(event.Anchor) == 0 {
		return nil
	}
	anchor := string(event.Anchor)
	if prev, ok := c.anchors[anchor]; ok {
		return ComposerError{
			ContextMark:    prev.mark,
			ContextMessage: "found duplicate anchor; first occurrence",

			Mark:    event.StartMark,
			Message: "second occurrence",
		}
	}
	c.anchors[anchor] = anchorRef{index: index, mark: event.StartMark}
	return nil
}

// resolveTag picks the node tag: the event's explicit tag, or the default
// for the node kind when the tag is absent or the non-specific "!".
func resolveTag(event *Event, defaultTag string) []byte {
	tag := event.Tag
	if len(tag) == 0 || (len(tag) == 1 && tag[0] == '!') {
		return []byte(defaultTag)
	}
	return tag
}

func (c *composer) loadAlias(event *Event) (int, error) {
	ref, ok := c.anchors[string(event.Anchor)]
	if !ok {
		return 0, ComposerError{
			Mark:    event.StartMark,
			Message: "found undefined alias",
		}
	}
	return ref.index, nil
}

func (c *composer) loadScalar(event *Event) (int, error) {
	index := c.appendNode(Node{
		Type:      SCALAR_NODE,
		Tag:       resolveTag(event, DEFAULT_SCALAR_TAG),
		Value:     event.Value,
		Style:     event.Style,
		StartMark: event.StartMark,
		EndMark:   event.EndMark,
	})
	if err := c.registerAnchor(index, event); err != nil {
		return 0, err
	}
	return index, nil
}

func (c *composer) loadSequence(event *Event) (int, error) {
	index := c.appendNode(Node{
		Type:      SEQUENCE_NODE,
		Tag:       resolveTag(event, DEFAULT_SEQUENCE_TAG),
		Style:     event.Style,
		StartMark: event.StartMark,
		EndMark:   event.EndMark,
		Items:     make([]int, 0, initial_stack_size),
	})
	if err := c.registerAnchor(index, event); err != nil {
		return 0, err
	}

	var child Event
	for {
		if err := c.parser.Parse(&child); err != nil {
			return 0, err
		}
		if child.Type == SEQUENCE_END_EVENT {
			break
		}
		item, err := c.loadNode(&child)
		if err != nil {
			return 0, err
		}
		node := c.document.GetNode(index)
		node.Items = append(node.Items, item)
	}

	c.document.GetNode(index).EndMark = child.EndMark
	return index, nil
}

func (c *composer) loadMapping(event *Event) (int, error) {
	index := c.appendNode(Node{
		Type:      MAPPING_NODE,
		Tag:       resolveTag(event, DEFAULT_MAPPING_TAG),
		Style:     event.Style,
		StartMark: event.StartMark,
		EndMark:   event.EndMark,
		Pairs:     make([]NodePair, 0, initial_stack_size),
	})
	if err := c.registerAnchor(index, event); err != nil {
		return 0, err
	}

	var child Event
	for {
		if err := c.parser.Parse(&child); err != nil {
			return 0, err
		}
		if child.Type == MAPPING_END_EVENT {
			break
		}
		key, err := c.loadNode(&child)
		if err != nil {
			return 0, err
		}
		if err := c.parser.Parse(&child); err != nil {
			return 0, err
		}
		value, err := c.loadNode(&child)
		if err != nil {
			return 0, err
		}
		node := c.document.GetNode(index)
		node.Pairs = append(node.Pairs, NodePair{Key: key, Value: value})
	}

	c.document.GetNode(index).EndMark = child.EndMark
	return index, nil
}
