// Copyright 2025 The yamlkit Authors
// SPDX-License-Identifier: Apache-2.0

// Tests for the parser stage.
// Verifies token stream to event stream transformation via the event
// transcript helper.

package libyaml

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParserGetEvents(t *testing.T) {
	for _, tc := range []struct {
		name string
		in   string
		exp  string
	}{
		{
			name: "implicit document",
			in:   `a: b`,
			exp: `+STR
+DOC
+MAP
=VAL :a
=VAL :b
-MAP
-DOC
-STR`,
		},
		{
			name: "explicit document",
			in: `---
a: b`,
			exp: `+STR
+DOC ---
+MAP
=VAL :a
=VAL :b
-MAP
-DOC
-STR`,
		},
		{
			name: "flow sequence",
			in:   `[1, 2, 3]`,
			exp: `+STR
+DOC
+SEQ []
=VAL :1
=VAL :2
=VAL :3
-SEQ
-DOC
-STR`,
		},
		{
			name: "flow mapping with quoted keys",
			in:   `{"a": 1, "b": 2}`,
			exp: `+STR
+DOC
+MAP {}
=VAL "a
=VAL :1
=VAL "b
=VAL :2
-MAP
-DOC
-STR`,
		},
		{
			name: "empty explicit document",
			in:   "---\n",
			exp: `+STR
+DOC ---
-DOC
-STR`,
		},
		{
			name: "empty stream",
			in:   "",
			exp: `+STR
-STR`,
		},
		{
			name: "multiple documents",
			in:   "a\n---\nb\n...\n",
			exp: `+STR
+DOC
=VAL :a
-DOC
+DOC ---
=VAL :b
-DOC ...
-STR`,
		},
		{
			name: "anchor and alias",
			in:   "- &x a\n- *x\n",
			exp: `+STR
+DOC
+SEQ
=VAL &x :a
=ALI *x
-SEQ
-DOC
-STR`,
		},
		{
			name: "secondary tag handle",
			in:   "!!str a\n",
			exp: `+STR
+DOC
=VAL <tag:yaml.org,2002:str> :a
-DOC
-STR`,
		},
		{
			name: "tag directive",
			in:   "%TAG !e! tag:example.com,2000:\n--- !e!foo bar\n",
			exp: `+STR
+DOC ---
=VAL <tag:example.com,2000:foo> :bar
-DOC
-STR`,
		},
		{
			name: "empty mapping value",
			in:   "a:\n",
			exp: `+STR
+DOC
+MAP
=VAL :a
=VAL :
-MAP
-DOC
-STR`,
		},
		{
			name: "block scalar",
			in:   "|\n  text\n",
			exp: `+STR
+DOC
=VAL |text\n
-DOC
-STR`,
		},
		{
			name: "nested block collections",
			in:   "a:\n  - 1\n  - b: 2\n",
			exp: `+STR
+DOC
+MAP
=VAL :a
+SEQ
=VAL :1
+MAP
=VAL :b
=VAL :2
-MAP
-SEQ
-MAP
-DOC
-STR`,
		},
		{
			name: "single pair flow mapping in sequence",
			in:   "[a: 1]",
			exp: `+STR
+DOC
+SEQ []
+MAP {}
=VAL :a
=VAL :1
-MAP
-SEQ
-DOC
-STR`,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			events, err := ParserGetEvents([]byte(tc.in))
			require.NoError(t, err)
			assert.Equal(t, tc.exp, events)
		})
	}
}

func TestParserErrors(t *testing.T) {
	for name, tc := range map[string]struct {
		in      string
		problem string
	}{
		"unclosed flow sequence": {
			in:      "[a",
			problem: "did not find expected ',' or ']'",
		},
		"unclosed flow mapping": {
			in:      "{a: 1",
			problem: "did not find expected ',' or '}'",
		},
		"incompatible version": {
			in:      "%YAML 2.0\n--- a\n",
			problem: "found incompatible YAML document",
		},
		"duplicate version directive": {
			in:      "%YAML 1.1\n%YAML 1.1\n--- a\n",
			problem: "found duplicate %YAML directive",
		},
		"duplicate tag directive": {
			in:      "%TAG !e! tag:a:\n%TAG !e! tag:b:\n--- a\n",
			problem: "found duplicate %TAG directive",
		},
		"undefined tag handle": {
			in:      "--- !e!foo bar\n",
			problem: "found undefined tag handle",
		},
		"directive without document start": {
			in:      "%YAML 1.1\na\n",
			problem: "did not find expected <document start>",
		},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParserGetEvents([]byte(tc.in))
			require.Error(t, err)

			var parseErr ParserError
			require.ErrorAs(t, err, &parseErr)
			assert.Equal(t, tc.problem, parseErr.Message)
		})
	}
}

// Scanner failures surface through Parse with their own type.
func TestParseScannerError(t *testing.T) {
	_, err := ParserGetEvents([]byte(`"ab`))
	require.Error(t, err)

	var scanErr ScannerError
	require.ErrorAs(t, err, &scanErr)
	assert.Equal(t, "found unexpected end of stream", scanErr.Message)
}

func TestParseAfterStreamEnd(t *testing.T) {
	parser := NewParser()
	defer parser.Delete()
	parser.SetInputString([]byte("a\n"))

	var event Event
	for {
		require.NoError(t, parser.Parse(&event))
		if event.Type == STREAM_END_EVENT {
			break
		}
		event.Delete()
	}

	assert.Equal(t, io.EOF, parser.Parse(&event))
	assert.Equal(t, io.EOF, parser.Parse(&event))
}

func TestParseErrorIsSticky(t *testing.T) {
	parser := NewParser()
	defer parser.Delete()
	parser.SetInputString([]byte("[a"))

	var event Event
	var err error
	for err == nil {
		err = parser.Parse(&event)
	}
	require.Error(t, err)
	assert.Equal(t, err, parser.Parse(&event))
}

func TestParseScalarFlags(t *testing.T) {
	parser := NewParser()
	defer parser.Delete()
	parser.SetInputString([]byte(`{"a": 1}`))

	var scalars []Event
	var event Event
	for {
		require.NoError(t, parser.Parse(&event))
		if event.Type == STREAM_END_EVENT {
			break
		}
		if event.Type == SCALAR_EVENT {
			scalars = append(scalars, event)
		}
	}
	require.Len(t, scalars, 2)

	key, value := scalars[0], scalars[1]
	assert.Equal(t, "a", string(key.Value))
	assert.False(t, key.Implicit)
	assert.True(t, key.QuotedImplicit)
	assert.Equal(t, DOUBLE_QUOTED_SCALAR_STYLE, key.ScalarStyle())

	assert.Equal(t, "1", string(value.Value))
	assert.True(t, value.Implicit)
	assert.False(t, value.QuotedImplicit)
	assert.Equal(t, PLAIN_SCALAR_STYLE, value.ScalarStyle())
}

func TestParseDocumentVersionDirective(t *testing.T) {
	parser := NewParser()
	defer parser.Delete()
	parser.SetInputString([]byte("%YAML 1.1\n--- a\n"))

	var event Event
	require.NoError(t, parser.Parse(&event)) // STREAM-START
	require.NoError(t, parser.Parse(&event))
	require.Equal(t, DOCUMENT_START_EVENT, event.Type)

	vd := event.GetVersionDirective()
	require.NotNil(t, vd)
	assert.Equal(t, 1, vd.Major())
	assert.Equal(t, 1, vd.Minor())
	assert.False(t, event.Implicit)
}
