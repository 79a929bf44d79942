// Copyright 2025 The yamlkit Authors
// SPDX-License-Identifier: Apache-2.0

// Tests for the composer stage.
// Verifies document tree construction, tag resolution, and anchors.

package libyaml

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// loadOne composes a single document and expects the stream to hold
// exactly one.
func loadOne(t *testing.T, in string) *Document {
	t.Helper()
	parser := NewParser()
	defer parser.Delete()
	parser.SetInputString([]byte(in))

	var doc Document
	require.NoError(t, parser.Load(&doc))

	var next Document
	require.Equal(t, io.EOF, parser.Load(&next))
	return &doc
}

func TestLoadScalarDocument(t *testing.T) {
	doc := loadOne(t, "hello\n")

	root := doc.GetRootNode()
	require.NotNil(t, root)
	assert.Equal(t, SCALAR_NODE, root.Type)
	assert.Equal(t, "hello", string(root.Value))
	assert.Equal(t, DEFAULT_SCALAR_TAG, string(root.Tag))
}

func TestLoadSequenceDocument(t *testing.T) {
	doc := loadOne(t, "[1, 2, 3]\n")

	root := doc.GetRootNode()
	require.NotNil(t, root)
	require.Equal(t, SEQUENCE_NODE, root.Type)
	assert.Equal(t, DEFAULT_SEQUENCE_TAG, string(root.Tag))
	require.Len(t, root.Items, 3)

	for i, want := range []string{"1", "2", "3"} {
		item := doc.GetNode(root.Items[i])
		require.NotNil(t, item)
		assert.Equal(t, SCALAR_NODE, item.Type)
		assert.Equal(t, want, string(item.Value))
	}
}

func TestLoadMappingDocument(t *testing.T) {
	doc := loadOne(t, "a: 1\nb:\n  - x\n")

	root := doc.GetRootNode()
	require.NotNil(t, root)
	require.Equal(t, MAPPING_NODE, root.Type)
	assert.Equal(t, DEFAULT_MAPPING_TAG, string(root.Tag))
	require.Len(t, root.Pairs, 2)

	key := doc.GetNode(root.Pairs[0].Key)
	value := doc.GetNode(root.Pairs[0].Value)
	assert.Equal(t, "a", string(key.Value))
	assert.Equal(t, "1", string(value.Value))

	key = doc.GetNode(root.Pairs[1].Key)
	value = doc.GetNode(root.Pairs[1].Value)
	assert.Equal(t, "b", string(key.Value))
	require.Equal(t, SEQUENCE_NODE, value.Type)
	require.Len(t, value.Items, 1)
	assert.Equal(t, "x", string(doc.GetNode(value.Items[0]).Value))
}

func TestLoadEmptyDocument(t *testing.T) {
	doc := loadOne(t, "---\n")
	assert.Nil(t, doc.GetRootNode())
}

func TestLoadEmptyStream(t *testing.T) {
	parser := NewParser()
	defer parser.Delete()
	parser.SetInputString(nil)

	var doc Document
	assert.Equal(t, io.EOF, parser.Load(&doc))
	assert.Equal(t, io.EOF, parser.Load(&doc))
}

func TestLoadMultipleDocuments(t *testing.T) {
	parser := NewParser()
	defer parser.Delete()
	parser.SetInputString([]byte("a\n---\nb\n"))

	var values []string
	for {
		var doc Document
		err := parser.Load(&doc)
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		root := doc.GetRootNode()
		require.NotNil(t, root)
		values = append(values, string(root.Value))
	}
	assert.Equal(t, []string{"a", "b"}, values)
}

func TestLoadAlias(t *testing.T) {
	doc := loadOne(t, "- &a x\n- *a\n")

	root := doc.GetRootNode()
	require.NotNil(t, root)
	require.Len(t, root.Items, 2)

	// The alias resolves to the anchored node's index.
	assert.Equal(t, root.Items[0], root.Items[1])
	assert.Equal(t, "x", string(doc.GetNode(root.Items[1]).Value))
}

func TestLoadUndefinedAlias(t *testing.T) {
	parser := NewParser()
	defer parser.Delete()
	parser.SetInputString([]byte("*missing\n"))

	var doc Document
	err := parser.Load(&doc)
	require.Error(t, err)

	var composeErr ComposerError
	require.ErrorAs(t, err, &composeErr)
	assert.Equal(t, "found undefined alias", composeErr.Message)

	// The failure is terminal.
	assert.Equal(t, err, parser.Load(&doc))
}

func TestLoadDuplicateAnchor(t *testing.T) {
	parser := NewParser()
	defer parser.Delete()
	parser.SetInputString([]byte("- &a 1\n- &a 2\n"))

	var doc Document
	err := parser.Load(&doc)
	require.Error(t, err)

	var composeErr ComposerError
	require.ErrorAs(t, err, &composeErr)
	assert.Equal(t, "second occurrence", composeErr.Message)
	assert.Equal(t, "found duplicate anchor; first occurrence", composeErr.ContextMessage)
	assert.Equal(t, 0, composeErr.ContextMark.Line)
	assert.Equal(t, 1, composeErr.Mark.Line)
}

// Anchors do not carry across documents.
func TestLoadAnchorScopedToDocument(t *testing.T) {
	parser := NewParser()
	defer parser.Delete()
	parser.SetInputString([]byte("&a 1\n---\n*a\n"))

	var doc Document
	require.NoError(t, parser.Load(&doc))

	err := parser.Load(&doc)
	require.Error(t, err)

	var composeErr ComposerError
	require.ErrorAs(t, err, &composeErr)
	assert.Equal(t, "found undefined alias", composeErr.Message)
}

func TestLoadExplicitTag(t *testing.T) {
	doc := loadOne(t, "!!int '42'\n")

	root := doc.GetRootNode()
	require.NotNil(t, root)
	assert.Equal(t, INT_TAG, string(root.Tag))
	assert.Equal(t, "42", string(root.Value))
	assert.Equal(t, SINGLE_QUOTED_SCALAR_STYLE, root.ScalarStyle())
}

// The non-specific "!" tag resolves to the default for the node's shape.
func TestLoadNonSpecificTag(t *testing.T) {
	doc := loadOne(t, "! 17\n")

	root := doc.GetRootNode()
	require.NotNil(t, root)
	assert.Equal(t, DEFAULT_SCALAR_TAG, string(root.Tag))
}

func TestLoadComplexKey(t *testing.T) {
	doc := loadOne(t, "? [a, b]\n: value\n")

	root := doc.GetRootNode()
	require.NotNil(t, root)
	require.Equal(t, MAPPING_NODE, root.Type)
	require.Len(t, root.Pairs, 1)

	key := doc.GetNode(root.Pairs[0].Key)
	require.Equal(t, SEQUENCE_NODE, key.Type)
	require.Len(t, key.Items, 2)
	assert.Equal(t, "value", string(doc.GetNode(root.Pairs[0].Value).Value))
}

func TestLoadDocumentMarks(t *testing.T) {
	doc := loadOne(t, "a: 1\nb: 2\n")

	root := doc.GetRootNode()
	require.NotNil(t, root)
	assert.Equal(t, Mark{Index: 0, Line: 0, Column: 0}, root.StartMark)

	second := doc.GetNode(root.Pairs[1].Key)
	assert.Equal(t, 1, second.StartMark.Line)
	assert.Equal(t, 0, second.StartMark.Column)
}

func TestLoadDirectivesOnDocument(t *testing.T) {
	doc := loadOne(t, "%YAML 1.1\n%TAG !e! tag:example.com,2000:\n--- !e!foo bar\n")

	vd := doc.GetVersionDirective()
	require.NotNil(t, vd)
	assert.Equal(t, 1, vd.Major())
	assert.Equal(t, 1, vd.Minor())

	tds := doc.GetTagDirectives()
	require.Len(t, tds, 1)
	assert.Equal(t, "!e!", tds[0].GetHandle())
	assert.Equal(t, "tag:example.com,2000:", tds[0].GetPrefix())
}
