// Copyright 2025 The yamlkit Authors
// SPDX-License-Identifier: Apache-2.0

package yaml_test

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yamlkit/yaml"
)

// collectEvents drains the stream and returns all events up to and
// including StreamEnd.
func collectEvents(t *testing.T, s *yaml.EventStream) []yaml.Event {
	t.Helper()
	var events []yaml.Event
	for {
		event, err := s.Next()
		if err == io.EOF {
			return events
		}
		require.NoError(t, err)
		events = append(events, event)
	}
}

func TestParseFlowSequenceEvents(t *testing.T) {
	got := collectEvents(t, yaml.Parse([]byte("[1, 2, 3]")))

	want := []yaml.Event{
		yaml.StreamStart{Encoding: yaml.UTF8Encoding},
		yaml.DocumentStart{Implicit: true},
		yaml.SequenceStart{Implicit: true, Style: yaml.FlowStyle},
		yaml.Scalar{Value: "1", PlainImplicit: true, Style: yaml.PlainStyle},
		yaml.Scalar{Value: "2", PlainImplicit: true, Style: yaml.PlainStyle},
		yaml.Scalar{Value: "3", PlainImplicit: true, Style: yaml.PlainStyle},
		yaml.SequenceEnd{},
		yaml.DocumentEnd{Implicit: true},
		yaml.StreamEnd{},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("event sequence mismatch (-want +got):\n%s", diff)
	}
}

func TestParseFlowMappingEvents(t *testing.T) {
	got := collectEvents(t, yaml.Parse([]byte(`{"a": 1, "b":2}`)))

	want := []yaml.Event{
		yaml.StreamStart{Encoding: yaml.UTF8Encoding},
		yaml.DocumentStart{Implicit: true},
		yaml.MappingStart{Implicit: true, Style: yaml.FlowStyle},
		yaml.Scalar{Value: "a", QuotedImplicit: true, Style: yaml.DoubleQuotedStyle},
		yaml.Scalar{Value: "1", PlainImplicit: true, Style: yaml.PlainStyle},
		yaml.Scalar{Value: "b", QuotedImplicit: true, Style: yaml.DoubleQuotedStyle},
		yaml.Scalar{Value: "2", PlainImplicit: true, Style: yaml.PlainStyle},
		yaml.MappingEnd{},
		yaml.DocumentEnd{Implicit: true},
		yaml.StreamEnd{},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("event sequence mismatch (-want +got):\n%s", diff)
	}
}

func TestParseAnchorAliasEvents(t *testing.T) {
	got := collectEvents(t, yaml.Parse([]byte("- &x a\n- *x\n")))

	want := []yaml.Event{
		yaml.StreamStart{Encoding: yaml.UTF8Encoding},
		yaml.DocumentStart{Implicit: true},
		yaml.SequenceStart{Implicit: true, Style: yaml.BlockStyle},
		yaml.Scalar{Anchor: "x", Value: "a", PlainImplicit: true, Style: yaml.PlainStyle},
		yaml.Alias{Anchor: "x"},
		yaml.SequenceEnd{},
		yaml.DocumentEnd{Implicit: true},
		yaml.StreamEnd{},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("event sequence mismatch (-want +got):\n%s", diff)
	}
}

func TestParseDirectiveEvents(t *testing.T) {
	in := "%YAML 1.1\n%TAG !e! tag:example.com,2000:\n--- !e!foo bar\n"
	got := collectEvents(t, yaml.Parse([]byte(in)))

	want := []yaml.Event{
		yaml.StreamStart{Encoding: yaml.UTF8Encoding},
		yaml.DocumentStart{
			Version:       &yaml.VersionDirective{Major: 1, Minor: 1},
			TagDirectives: []yaml.TagDirective{{Handle: "!e!", Prefix: "tag:example.com,2000:"}},
		},
		yaml.Scalar{Tag: "tag:example.com,2000:foo", Value: "bar", Style: yaml.PlainStyle},
		yaml.DocumentEnd{Implicit: true},
		yaml.StreamEnd{},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("event sequence mismatch (-want +got):\n%s", diff)
	}
}

func TestParseUTF16Events(t *testing.T) {
	in := []byte{0xff, 0xfe, 'h', 0x00, 'i', 0x00, '\n', 0x00}
	s := yaml.Parse(in)

	event, err := s.Next()
	require.NoError(t, err)
	assert.Equal(t, yaml.StreamStart{Encoding: yaml.UTF16LEEncoding}, event)

	_, err = s.Next() // DocumentStart
	require.NoError(t, err)
	event, err = s.Next()
	require.NoError(t, err)
	assert.Equal(t, "hi", event.(yaml.Scalar).Value)
}

// Malformed input yields StreamStart, then a typed error; never a crash,
// never a silently truncated stream.
func TestParseMalformedInput(t *testing.T) {
	s := yaml.Parse([]byte(`"ab`))

	event, err := s.Next()
	require.NoError(t, err)
	assert.Equal(t, yaml.StreamStart{Encoding: yaml.UTF8Encoding}, event)

	_, err = s.Next()
	require.Error(t, err)

	var yamlErr *yaml.Error
	require.ErrorAs(t, err, &yamlErr)
	assert.Equal(t, yaml.ScannerError, yamlErr.Kind)
	assert.Equal(t, "found unexpected end of stream", yamlErr.Problem)
	assert.Equal(t, "while scanning a quoted scalar", yamlErr.Context)
	assert.Equal(t, 0, yamlErr.ProblemMark.Line)

	// The stream is terminal; the same snapshot comes back every time,
	// and it stays valid on its own.
	_, err2 := s.Next()
	assert.Equal(t, err, err2)
	assert.Contains(t, yamlErr.Error(), "found unexpected end of stream")
}

func TestEventStreamExhaustion(t *testing.T) {
	s := yaml.Parse([]byte("a\n"))
	collectEvents(t, s)

	for i := 0; i < 3; i++ {
		event, err := s.Next()
		assert.Nil(t, event)
		assert.Equal(t, io.EOF, err)
	}
}

func TestParseReader(t *testing.T) {
	got := collectEvents(t, yaml.ParseReader(strings.NewReader("a: 1\n")))

	want := []yaml.Event{
		yaml.StreamStart{Encoding: yaml.UTF8Encoding},
		yaml.DocumentStart{Implicit: true},
		yaml.MappingStart{Implicit: true, Style: yaml.BlockStyle},
		yaml.Scalar{Value: "a", PlainImplicit: true, Style: yaml.PlainStyle},
		yaml.Scalar{Value: "1", PlainImplicit: true, Style: yaml.PlainStyle},
		yaml.MappingEnd{},
		yaml.DocumentEnd{Implicit: true},
		yaml.StreamEnd{},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("event sequence mismatch (-want +got):\n%s", diff)
	}
}

type failingReader struct {
	data []byte
	err  error
}

func (r *failingReader) Read(p []byte) (int, error) {
	if len(r.data) == 0 {
		return 0, r.err
	}
	n := copy(p, r.data)
	r.data = r.data[n:]
	return n, nil
}

func TestParseReaderFailure(t *testing.T) {
	cause := errors.New("connection reset")
	s := yaml.ParseReader(&failingReader{data: []byte("a: "), err: cause})

	var err error
	for err == nil {
		_, err = s.Next()
	}
	require.NotEqual(t, io.EOF, err)

	var yamlErr *yaml.Error
	require.ErrorAs(t, err, &yamlErr)
	assert.Equal(t, yaml.ReaderError, yamlErr.Kind)
	assert.Contains(t, yamlErr.Problem, "connection reset")
	assert.Equal(t, 3, yamlErr.Offset)
}

func TestEventStreamClose(t *testing.T) {
	s := yaml.Parse([]byte("a: 1\n"))
	_, err := s.Next()
	require.NoError(t, err)

	s.Close()
	_, err = s.Next()
	assert.Equal(t, io.EOF, err)
}

func TestErrorKindString(t *testing.T) {
	assert.Equal(t, "ScannerError", yaml.ScannerError.String())
	assert.Equal(t, "ComposerError", yaml.ComposerError.String())
}
