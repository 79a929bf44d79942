// Copyright 2025 The yamlkit Authors
// SPDX-License-Identifier: Apache-2.0

// Tests for the reader stage.
// Verifies encoding detection, transcoding to UTF-8, and input validation.

package libyaml

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"unicode/utf16"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetermineEncoding(t *testing.T) {
	for name, tc := range map[string]struct {
		in   []byte
		want Encoding
	}{
		"no BOM defaults to UTF-8": {[]byte("a"), UTF8_ENCODING},
		"UTF-8 BOM":                {[]byte("\xef\xbb\xbfa"), UTF8_ENCODING},
		"UTF-16LE BOM":             {[]byte{0xff, 0xfe, 'a', 0x00}, UTF16LE_ENCODING},
		"UTF-16BE BOM":             {[]byte{0xfe, 0xff, 0x00, 'a'}, UTF16BE_ENCODING},
		"empty input":              {nil, UTF8_ENCODING},
	} {
		t.Run(name, func(t *testing.T) {
			parser := NewParser()
			defer parser.Delete()
			parser.SetInputString(tc.in)

			require.True(t, parser.updateBuffer(1))
			assert.Equal(t, tc.want, parser.encoding)
		})
	}
}

// scanFirstScalar scans the input until the first scalar token and returns
// its value.
func scanFirstScalar(t *testing.T, in []byte) string {
	t.Helper()
	parser := NewParser()
	defer parser.Delete()
	parser.SetInputString(in)

	for {
		var token Token
		require.NoError(t, parser.Scan(&token))
		require.NotEqual(t, STREAM_END_TOKEN, token.Type, "no scalar in input")
		if token.Type == SCALAR_TOKEN {
			return string(token.Value)
		}
	}
}

func TestTranscoding(t *testing.T) {
	utf16le := func(s string) []byte {
		b := []byte{0xff, 0xfe}
		for _, u := range utf16.Encode([]rune(s)) {
			b = append(b, byte(u), byte(u>>8))
		}
		return b
	}
	utf16be := func(s string) []byte {
		b := []byte{0xfe, 0xff}
		for _, u := range utf16.Encode([]rune(s)) {
			b = append(b, byte(u>>8), byte(u))
		}
		return b
	}

	t.Run("UTF-8 BOM is consumed", func(t *testing.T) {
		assert.Equal(t, "hello", scanFirstScalar(t, []byte("\xef\xbb\xbfhello\n")))
	})
	t.Run("UTF-16LE", func(t *testing.T) {
		assert.Equal(t, "hello", scanFirstScalar(t, utf16le("hello\n")))
	})
	t.Run("UTF-16BE", func(t *testing.T) {
		assert.Equal(t, "hello", scanFirstScalar(t, utf16be("hello\n")))
	})
	t.Run("UTF-16LE surrogate pair", func(t *testing.T) {
		// U+1F600 needs a surrogate pair in UTF-16.
		assert.Equal(t, "\U0001f600", scanFirstScalar(t, utf16le("\U0001f600\n")))
	})
	t.Run("multibyte UTF-8 passes through", func(t *testing.T) {
		assert.Equal(t, "日本語", scanFirstScalar(t, []byte("日本語\n")))
	})
}

func TestReaderRejectsInvalidInput(t *testing.T) {
	for name, tc := range map[string]struct {
		in      []byte
		problem string
	}{
		"control character": {
			[]byte("ab\x07cd"), "control characters are not allowed",
		},
		"invalid UTF-8 leading octet": {
			[]byte{'a', 0xff, 'b'}, "invalid leading UTF-8 octet",
		},
		"truncated UTF-8 sequence": {
			[]byte{0xe6, 0x97}, "incomplete UTF-8 octet sequence",
		},
		"odd length UTF-16": {
			[]byte{0xff, 0xfe, 'a'}, "incomplete UTF-16 character",
		},
	} {
		t.Run(name, func(t *testing.T) {
			parser := NewParser()
			defer parser.Delete()
			parser.SetInputString(tc.in)

			var token Token
			var err error
			for err == nil {
				err = parser.Scan(&token)
				if token.Type == STREAM_END_TOKEN {
					break
				}
			}
			require.Error(t, err)

			var readErr ReaderError
			require.ErrorAs(t, err, &readErr)
			assert.Contains(t, readErr.Error(), tc.problem)
		})
	}
}

type brokenReader struct {
	data []byte
	err  error
}

func (r *brokenReader) Read(p []byte) (int, error) {
	if len(r.data) == 0 {
		return 0, r.err
	}
	n := copy(p, r.data)
	r.data = r.data[n:]
	return n, nil
}

func TestReaderPropagatesSourceFailure(t *testing.T) {
	cause := errors.New("disk on fire")
	parser := NewParser()
	defer parser.Delete()
	parser.SetInputReader(&brokenReader{data: []byte("a: "), err: cause})

	var token Token
	var err error
	for err == nil {
		err = parser.Scan(&token)
		if token.Type == STREAM_END_TOKEN {
			break
		}
	}
	require.Error(t, err)

	var readErr ReaderError
	require.ErrorAs(t, err, &readErr)
	assert.True(t, errors.Is(err, cause))
}

func TestReaderFromReader(t *testing.T) {
	// Input longer than the raw buffer forces multiple refills.
	in := "key: " + strings.Repeat("x", 4*input_raw_buffer_size) + "\n"
	parser := NewParser()
	defer parser.Delete()
	parser.SetInputReader(strings.NewReader(in))

	var values []string
	for {
		var token Token
		require.NoError(t, parser.Scan(&token))
		if token.Type == SCALAR_TOKEN {
			values = append(values, string(token.Value))
		}
		if token.Type == STREAM_END_TOKEN {
			break
		}
	}
	require.Len(t, values, 2)
	assert.Equal(t, "key", values[0])
	assert.True(t, bytes.Equal([]byte(values[1]), bytes.Repeat([]byte("x"), 4*input_raw_buffer_size)))
}
