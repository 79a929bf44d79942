// Copyright 2025 The yamlkit Authors
// SPDX-License-Identifier: Apache-2.0

// Tests for the scanner stage.
// Verifies input stream to token stream transformation, indentation
// handling, and simple keys.

package libyaml

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scanTokenTypes scans the input to the end and returns the token types in
// order, or the scanner failure.
func scanTokenTypes(in string) ([]TokenType, error) {
	parser := NewParser()
	defer parser.Delete()
	parser.SetInputString([]byte(in))

	var types []TokenType
	for {
		var token Token
		if err := parser.Scan(&token); err != nil {
			return nil, err
		}
		types = append(types, token.Type)
		if token.Type == STREAM_END_TOKEN {
			return types, nil
		}
	}
}

func TestScanTokenSequences(t *testing.T) {
	for name, tc := range map[string]struct {
		in   string
		want []TokenType
	}{
		"empty": {
			in:   "",
			want: []TokenType{STREAM_START_TOKEN, STREAM_END_TOKEN},
		},
		"plain scalar": {
			in:   "hello\n",
			want: []TokenType{STREAM_START_TOKEN, SCALAR_TOKEN, STREAM_END_TOKEN},
		},
		"flow sequence": {
			in: "[1, 2]",
			want: []TokenType{
				STREAM_START_TOKEN,
				FLOW_SEQUENCE_START_TOKEN,
				SCALAR_TOKEN, FLOW_ENTRY_TOKEN, SCALAR_TOKEN,
				FLOW_SEQUENCE_END_TOKEN,
				STREAM_END_TOKEN,
			},
		},
		"flow mapping": {
			in: "{a: 1}",
			want: []TokenType{
				STREAM_START_TOKEN,
				FLOW_MAPPING_START_TOKEN,
				KEY_TOKEN, SCALAR_TOKEN, VALUE_TOKEN, SCALAR_TOKEN,
				FLOW_MAPPING_END_TOKEN,
				STREAM_END_TOKEN,
			},
		},
		"block mapping with simple key": {
			in: "a: 1\n",
			want: []TokenType{
				STREAM_START_TOKEN,
				BLOCK_MAPPING_START_TOKEN,
				KEY_TOKEN, SCALAR_TOKEN, VALUE_TOKEN, SCALAR_TOKEN,
				BLOCK_END_TOKEN,
				STREAM_END_TOKEN,
			},
		},
		"block sequence": {
			in: "- a\n- b\n",
			want: []TokenType{
				STREAM_START_TOKEN,
				BLOCK_SEQUENCE_START_TOKEN,
				BLOCK_ENTRY_TOKEN, SCALAR_TOKEN,
				BLOCK_ENTRY_TOKEN, SCALAR_TOKEN,
				BLOCK_END_TOKEN,
				STREAM_END_TOKEN,
			},
		},
		"version directive and explicit document": {
			in: "%YAML 1.1\n--- a\n",
			want: []TokenType{
				STREAM_START_TOKEN,
				VERSION_DIRECTIVE_TOKEN, DOCUMENT_START_TOKEN, SCALAR_TOKEN,
				STREAM_END_TOKEN,
			},
		},
		"anchor and alias": {
			in: "- &a x\n- *a\n",
			want: []TokenType{
				STREAM_START_TOKEN,
				BLOCK_SEQUENCE_START_TOKEN,
				BLOCK_ENTRY_TOKEN, ANCHOR_TOKEN, SCALAR_TOKEN,
				BLOCK_ENTRY_TOKEN, ALIAS_TOKEN,
				BLOCK_END_TOKEN,
				STREAM_END_TOKEN,
			},
		},
		"tagged scalar": {
			in: "!!str a\n",
			want: []TokenType{
				STREAM_START_TOKEN, TAG_TOKEN, SCALAR_TOKEN, STREAM_END_TOKEN,
			},
		},
		"document end indicator": {
			in: "a\n...\n",
			want: []TokenType{
				STREAM_START_TOKEN, SCALAR_TOKEN, DOCUMENT_END_TOKEN,
				STREAM_END_TOKEN,
			},
		},
	} {
		t.Run(name, func(t *testing.T) {
			types, err := scanTokenTypes(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, types)
		})
	}
}

func TestScanScalarValues(t *testing.T) {
	for name, tc := range map[string]struct {
		in    string
		value string
		style ScalarStyle
	}{
		"plain":         {"hello world\n", "hello world", PLAIN_SCALAR_STYLE},
		"single quoted": {"'it''s'\n", "it's", SINGLE_QUOTED_SCALAR_STYLE},
		"double quoted": {"\"a\\tb\"\n", "a\tb", DOUBLE_QUOTED_SCALAR_STYLE},
		"unicode escape": {
			"\"snowman: \\u2603\"\n", "snowman: \u2603", DOUBLE_QUOTED_SCALAR_STYLE,
		},
		"literal block": {"|\n  line1\n  line2\n", "line1\nline2\n", LITERAL_SCALAR_STYLE},
		"folded block":  {">\n  line1\n  line2\n", "line1 line2\n", FOLDED_SCALAR_STYLE},
		"literal keep chomping": {
			"|+\n  text\n\n", "text\n\n", LITERAL_SCALAR_STYLE,
		},
		"literal strip chomping": {
			"|-\n  text\n", "text", LITERAL_SCALAR_STYLE,
		},
	} {
		t.Run(name, func(t *testing.T) {
			parser := NewParser()
			defer parser.Delete()
			parser.SetInputString([]byte(tc.in))

			var token Token
			require.NoError(t, parser.Scan(&token))
			require.Equal(t, STREAM_START_TOKEN, token.Type)

			require.NoError(t, parser.Scan(&token))
			require.Equal(t, SCALAR_TOKEN, token.Type)
			assert.Equal(t, tc.value, string(token.Value))
			assert.Equal(t, tc.style, token.Style)
		})
	}
}

func TestScanErrors(t *testing.T) {
	for name, tc := range map[string]struct {
		in      string
		context string
		problem string
	}{
		"unterminated double quoted": {
			in:      `"ab`,
			context: "while scanning a quoted scalar",
			problem: "found unexpected end of stream",
		},
		"unterminated single quoted": {
			in:      "'ab",
			context: "while scanning a quoted scalar",
			problem: "found unexpected end of stream",
		},
		"bad escape": {
			in:      `"a\q"`,
			context: "while parsing a quoted scalar",
			problem: "found unknown escape character",
		},
		"unknown directive": {
			in:      "%FOO bar\n--- a\n",
			context: "while scanning a directive",
			problem: "found unknown directive name",
		},
		"long version number": {
			in:      "%YAML 1.123\n--- a\n",
			context: "while scanning a %YAML directive",
			problem: "found extremely long version number",
		},
		"zero block scalar indent": {
			in:      "|0\n  a\n",
			context: "while scanning a block scalar",
			problem: "found an indentation indicator equal to 0",
		},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := scanTokenTypes(tc.in)
			require.Error(t, err)

			var scanErr ScannerError
			require.ErrorAs(t, err, &scanErr)
			assert.Equal(t, tc.problem, scanErr.Message)
			assert.Contains(t, scanErr.ContextMessage, tc.context)
		})
	}
}

// A failed scan is terminal: the same error comes back on every call.
func TestScanErrorIsSticky(t *testing.T) {
	parser := NewParser()
	defer parser.Delete()
	parser.SetInputString([]byte(`"ab`))

	var token Token
	require.NoError(t, parser.Scan(&token))

	first := parser.Scan(&token)
	require.Error(t, first)
	second := parser.Scan(&token)
	assert.Equal(t, first, second)
}

func TestScanErrorState(t *testing.T) {
	parser := NewParser()
	defer parser.Delete()
	parser.SetInputString([]byte(`"ab`))

	var token Token
	require.NoError(t, parser.Scan(&token))
	require.Error(t, parser.Scan(&token))

	assert.Equal(t, SCANNER_ERROR, parser.ErrorType)
	assert.Equal(t, "found unexpected end of stream", parser.Problem)
	assert.Equal(t, 0, parser.ProblemMark.Line)
}

func TestScanUnexpectedCharacter(t *testing.T) {
	_, err := scanTokenTypes("@invalid\n")
	require.Error(t, err)

	var scanErr ScannerError
	require.ErrorAs(t, err, &scanErr)
	assert.Contains(t, scanErr.Message, "cannot start any token")
}

func TestScanReaderFailure(t *testing.T) {
	// A NUL byte in the middle of the input violates the printable
	// character rule at the reader level.
	_, err := scanTokenTypes("ab\x00cd")
	require.Error(t, err)

	var readErr ReaderError
	require.ErrorAs(t, err, &readErr)
	assert.True(t, errors.Is(err, readErr.Err))
}
