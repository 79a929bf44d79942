// Copyright 2025 The yamlkit Authors
// SPDX-License-Identifier: Apache-2.0

// Package yaml exposes a streaming interface to YAML input.
//
// Callers consume either a sequence of structural events:
//
//	stream := yaml.Parse(input)
//	for {
//		event, err := stream.Next()
//		if err == io.EOF {
//			break
//		}
//		...
//	}
//
// or a sequence of fully materialized document trees:
//
//	docs := yaml.Load(input)
//	for {
//		doc, err := docs.Next()
//		if err == io.EOF {
//			break
//		}
//		...
//	}
//
// Both streams are pull-based and synchronous: nothing is read or parsed
// until the caller requests the next item. Malformed input is reported as a
// *Error carrying the failing stage, the problem text, and source marks.
package yaml

import (
	"io"

	"github.com/yamlkit/yaml/internal/libyaml"
)

// EventStream produces the events of a YAML stream one at a time.
//
// An EventStream must not be used from multiple goroutines at once. After
// Next has returned an error, the stream is terminal: the same result is
// returned on every further call and no stale data is ever re-yielded.
type EventStream struct {
	parser libyaml.Parser
	err    *Error
	done   bool
}

// Parse returns an event stream over the given input buffer.
func Parse(in []byte) *EventStream {
	s := &EventStream{parser: libyaml.NewParser()}
	s.parser.SetInputString(in)
	return s
}

// ParseReader returns an event stream over the given reader. The reader is
// consumed incrementally; a read failure surfaces as a ReaderError from
// Next.
func ParseReader(r io.Reader) *EventStream {
	s := &EventStream{parser: libyaml.NewParser()}
	s.parser.SetInputReader(r)
	return s
}

// Next returns the next event. After StreamEnd has been delivered, Next
// returns io.EOF on every call. A parse failure is returned as a *Error
// and repeated on every call after that.
func (s *EventStream) Next() (Event, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.done {
		return nil, io.EOF
	}

	var record libyaml.Event
	if err := s.parser.Parse(&record); err != nil {
		s.done = true
		s.parser.Delete()
		if err == io.EOF {
			return nil, io.EOF
		}
		s.err = captureError(err)
		return nil, s.err
	}

	// Copy the record out before releasing it.
	event := decodeEvent(&record)
	record.Delete()
	return event, nil
}

// Close releases the stream's parser state. It is safe to call at any
// point, including after Next has already reached a terminal result, and
// any further Next calls keep returning that result.
func (s *EventStream) Close() {
	if !s.done && s.err == nil {
		s.done = true
		s.parser.Delete()
	}
}

// DocumentStream produces the documents of a YAML stream one at a time.
//
// A DocumentStream must not be used from multiple goroutines at once, but
// each returned Document is independent of the stream and stays valid after
// the stream is exhausted, failed, or closed.
type DocumentStream struct {
	parser libyaml.Parser
	err    *Error
	done   bool
}

// Load returns a document stream over the given input buffer.
func Load(in []byte) *DocumentStream {
	s := &DocumentStream{parser: libyaml.NewParser()}
	s.parser.SetInputString(in)
	return s
}

// LoadReader returns a document stream over the given reader.
func LoadReader(r io.Reader) *DocumentStream {
	s := &DocumentStream{parser: libyaml.NewParser()}
	s.parser.SetInputReader(r)
	return s
}

// Next returns the next document. When the input is exhausted, Next
// returns io.EOF on every call; a legitimately empty document (an explicit
// "---" with no content) is a real *Document with IsEmpty() == true, never
// an end signal. A parse or compose failure is returned as a *Error and
// repeated on every call after that.
func (s *DocumentStream) Next() (*Document, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.done {
		return nil, io.EOF
	}

	doc := &Document{}
	if err := s.parser.Load(&doc.doc); err != nil {
		s.done = true
		s.parser.Delete()
		if err == io.EOF {
			return nil, io.EOF
		}
		s.err = captureError(err)
		return nil, s.err
	}
	return doc, nil
}

// Close releases the stream's parser state. Documents already returned by
// Next remain valid.
func (s *DocumentStream) Close() {
	if !s.done && s.err == nil {
		s.done = true
		s.parser.Delete()
	}
}
