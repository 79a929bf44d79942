// Copyright 2025 The yamlkit Authors
// SPDX-License-Identifier: Apache-2.0

package yaml_test

import (
	"io"
	"testing"

	goyaml "github.com/goccy/go-yaml"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yamlkit/yaml"
)

// loadOne loads a single document and expects the stream to hold exactly
// one.
func loadOne(t *testing.T, in string) *yaml.Document {
	t.Helper()
	s := yaml.Load([]byte(in))
	doc, err := s.Next()
	require.NoError(t, err)
	_, err = s.Next()
	require.Equal(t, io.EOF, err)
	return doc
}

// materialize converts a node tree into plain Go values for comparison:
// scalars to strings, sequences to slices, mappings to maps.
func materialize(t *testing.T, n yaml.Node) any {
	t.Helper()
	switch n := n.(type) {
	case *yaml.ScalarNode:
		return n.Value()
	case *yaml.SequenceNode:
		out := []any{}
		it := n.Values()
		for {
			child, ok := it.Next()
			if !ok {
				return out
			}
			out = append(out, materialize(t, child))
		}
	case *yaml.MappingNode:
		out := map[string]any{}
		it := n.Pairs()
		for {
			key, value, ok := it.Next()
			if !ok {
				return out
			}
			scalar, ok := key.(*yaml.ScalarNode)
			require.True(t, ok, "non-scalar key in test input")
			out[scalar.Value()] = materialize(t, value)
		}
	}
	t.Fatalf("unexpected node shape %T", n)
	return nil
}

func TestSequenceTraversal(t *testing.T) {
	doc := loadOne(t, "[1, 2, 3]")
	require.False(t, doc.IsEmpty())

	root, ok := doc.Root()
	require.True(t, ok)
	seq, ok := root.(*yaml.SequenceNode)
	require.True(t, ok)
	assert.Equal(t, 3, seq.Len())
	assert.Equal(t, "tag:yaml.org,2002:seq", seq.Tag())

	var values []string
	var styles []yaml.ScalarStyle
	it := seq.Values()
	for {
		child, ok := it.Next()
		if !ok {
			break
		}
		scalar, ok := child.(*yaml.ScalarNode)
		require.True(t, ok)
		values = append(values, scalar.Value())
		styles = append(styles, scalar.Style())
	}
	assert.Equal(t, []string{"1", "2", "3"}, values)
	assert.Equal(t, []yaml.ScalarStyle{yaml.PlainStyle, yaml.PlainStyle, yaml.PlainStyle}, styles)
}

func TestMappingTraversal(t *testing.T) {
	doc := loadOne(t, `{"a": 1, "b": 2}`)

	root, ok := doc.Root()
	require.True(t, ok)
	m, ok := root.(*yaml.MappingNode)
	require.True(t, ok)
	assert.Equal(t, 2, m.Len())
	assert.Equal(t, "tag:yaml.org,2002:map", m.Tag())

	// Pairs come back in appearance order, never re-sorted.
	type pair struct{ key, value string }
	var pairs []pair
	it := m.Pairs()
	for {
		key, value, ok := it.Next()
		if !ok {
			break
		}
		pairs = append(pairs, pair{
			key.(*yaml.ScalarNode).Value(),
			value.(*yaml.ScalarNode).Value(),
		})
	}
	assert.Equal(t, []pair{{"a", "1"}, {"b", "2"}}, pairs)
}

func TestNestedTraversal(t *testing.T) {
	doc := loadOne(t, "a: hello\nb:\n  - 1\n  - c: 2\n")

	root, ok := doc.Root()
	require.True(t, ok)

	want := map[string]any{
		"a": "hello",
		"b": []any{"1", map[string]any{"c": "2"}},
	}
	if diff := cmp.Diff(want, materialize(t, root)); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
}

// An explicit "---" with no content is a real, empty document.
func TestEmptyDocument(t *testing.T) {
	doc := loadOne(t, "---\n")

	assert.True(t, doc.IsEmpty())
	root, ok := doc.Root()
	assert.False(t, ok)
	assert.Nil(t, root)
}

// Requesting the root twice yields two views over identical data.
func TestRootIdempotence(t *testing.T) {
	doc := loadOne(t, "[1, 2, 3]")

	first, ok := doc.Root()
	require.True(t, ok)
	second, ok := doc.Root()
	require.True(t, ok)

	assert.Equal(t, first.Tag(), second.Tag())
	assert.Equal(t, first.StartMark(), second.StartMark())
	assert.Equal(t, first.EndMark(), second.EndMark())
	if diff := cmp.Diff(materialize(t, first), materialize(t, second)); diff != "" {
		t.Errorf("root views differ:\n%s", diff)
	}
}

// Iterators over the same node are independent and restartable.
func TestIteratorIndependence(t *testing.T) {
	doc := loadOne(t, "[a, b, c]")
	root, _ := doc.Root()
	seq := root.(*yaml.SequenceNode)

	it1 := seq.Values()
	first, _ := it1.Next()
	assert.Equal(t, "a", first.(*yaml.ScalarNode).Value())

	it2 := seq.Values()
	first2, _ := it2.Next()
	assert.Equal(t, "a", first2.(*yaml.ScalarNode).Value())

	// Drain the first; the second is unaffected.
	for {
		if _, ok := it1.Next(); !ok {
			break
		}
	}
	second2, ok := it2.Next()
	require.True(t, ok)
	assert.Equal(t, "b", second2.(*yaml.ScalarNode).Value())
}

func TestAliasSharesNode(t *testing.T) {
	doc := loadOne(t, "- &a x\n- *a\n")
	root, _ := doc.Root()
	seq := root.(*yaml.SequenceNode)

	it := seq.Values()
	first, _ := it.Next()
	second, _ := it.Next()
	assert.Equal(t, "x", first.(*yaml.ScalarNode).Value())
	assert.Equal(t, "x", second.(*yaml.ScalarNode).Value())
	assert.Equal(t, first.StartMark(), second.StartMark())
}

func TestMultiDocumentStream(t *testing.T) {
	s := yaml.Load([]byte("a\n---\nb\n---\nc\n"))

	var values []string
	for {
		doc, err := s.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		root, ok := doc.Root()
		require.True(t, ok)
		values = append(values, root.(*yaml.ScalarNode).Value())
	}
	assert.Equal(t, []string{"a", "b", "c"}, values)

	// Exhaustion is repeatable.
	_, err := s.Next()
	assert.Equal(t, io.EOF, err)
}

func TestDocumentOutlivesStream(t *testing.T) {
	s := yaml.Load([]byte("a: 1\n"))
	doc, err := s.Next()
	require.NoError(t, err)
	_, err = s.Next()
	require.Equal(t, io.EOF, err)
	s.Close()

	root, ok := doc.Root()
	require.True(t, ok)
	assert.Equal(t, map[string]any{"a": "1"}, materialize(t, root))
}

func TestDocumentStreamComposerError(t *testing.T) {
	s := yaml.Load([]byte("- &a 1\n- &a 2\n"))

	_, err := s.Next()
	require.Error(t, err)

	var yamlErr *yaml.Error
	require.ErrorAs(t, err, &yamlErr)
	assert.Equal(t, yaml.ComposerError, yamlErr.Kind)
	assert.Equal(t, "second occurrence", yamlErr.Problem)
	assert.Equal(t, "found duplicate anchor; first occurrence", yamlErr.Context)

	_, err2 := s.Next()
	assert.Equal(t, err, err2)
}

func TestDocumentStreamUndefinedAlias(t *testing.T) {
	s := yaml.Load([]byte("*nope\n"))

	_, err := s.Next()
	require.Error(t, err)

	var yamlErr *yaml.Error
	require.ErrorAs(t, err, &yamlErr)
	assert.Equal(t, yaml.ComposerError, yamlErr.Kind)
	assert.Equal(t, "found undefined alias", yamlErr.Problem)
}

func TestNodeMarks(t *testing.T) {
	doc := loadOne(t, "a: 1\nb: 2\n")
	root, _ := doc.Root()

	assert.Equal(t, yaml.Mark{Index: 0, Line: 0, Column: 0}, root.StartMark())

	it := root.(*yaml.MappingNode).Pairs()
	it.Next()
	key, _, ok := it.Next()
	require.True(t, ok)
	assert.Equal(t, 1, key.StartMark().Line)
	assert.Equal(t, 0, key.StartMark().Column)
}

// Cross-check scalar content against an independent YAML implementation.
func TestAgainstReferenceDecoder(t *testing.T) {
	for _, in := range []string{
		"a: x\nb: y\n",
		`{"k1": v1, "k2": v2}`,
		"top:\n  inner: value\n",
	} {
		t.Run(in, func(t *testing.T) {
			var want map[string]any
			require.NoError(t, goyaml.Unmarshal([]byte(in), &want))

			root, ok := loadOne(t, in).Root()
			require.True(t, ok)
			if diff := cmp.Diff(want, materialize(t, root)); diff != "" {
				t.Errorf("decoders disagree (-reference +ours):\n%s", diff)
			}
		})
	}
}
