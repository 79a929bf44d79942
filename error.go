// Copyright 2025 The yamlkit Authors
// SPDX-License-Identifier: Apache-2.0

package yaml

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yamlkit/yaml/internal/libyaml"
)

// Mark is an immutable snapshot of a position in the original input.
type Mark struct {
	Index  int // The byte index within the input.
	Line   int // The zero-based line number.
	Column int // The zero-based column number.
}

func (m Mark) String() string {
	return fmt.Sprintf("line %d, column %d", m.Line+1, m.Column+1)
}

func decodeMark(m libyaml.Mark) Mark {
	return Mark{Index: m.Index, Line: m.Line, Column: m.Column}
}

// ErrorKind identifies which stage of the parsing pipeline failed.
type ErrorKind int

const (
	// NoError is the success sentinel; it is never carried by a returned Error.
	NoError ErrorKind = iota

	MemoryError   // Cannot allocate or reallocate a block of memory.
	ReaderError   // Cannot read or decode the input stream.
	ScannerError  // Cannot scan the input stream.
	ParserError   // Cannot parse the input stream.
	ComposerError // Cannot compose a YAML document.
	WriterError   // Cannot write to the output stream.
	EmitterError  // Cannot emit a YAML stream.
)

func (k ErrorKind) String() string {
	switch k {
	case NoError:
		return "NoError"
	case MemoryError:
		return "MemoryError"
	case ReaderError:
		return "ReaderError"
	case ScannerError:
		return "ScannerError"
	case ParserError:
		return "ParserError"
	case ComposerError:
		return "ComposerError"
	case WriterError:
		return "WriterError"
	case EmitterError:
		return "EmitterError"
	}
	return "<unknown error kind>"
}

// Error is a value snapshot of a parsing failure. It is captured once, at
// the moment the underlying stage reports the failure, and stays valid after
// the stream that produced it is gone.
type Error struct {
	// Kind identifies the failing stage.
	Kind ErrorKind

	// Problem describes what went wrong. Empty when the stage recorded no
	// description.
	Problem string

	// Offset is the byte offset of the failure, when the stage reports one
	// (reader failures do; the later stages report marks instead).
	Offset int

	// ProblemMark is the position of the problem.
	ProblemMark Mark

	// Context describes the surrounding construct being parsed, when known.
	Context string

	// ContextMark is the position where that construct started.
	ContextMark Mark
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("yaml: ")
	if e.Context != "" {
		fmt.Fprintf(&b, "%s at %s: ", e.Context, e.ContextMark)
	}
	if e.Kind == ReaderError {
		fmt.Fprintf(&b, "offset %d: ", e.Offset)
	} else {
		fmt.Fprintf(&b, "%s: ", e.ProblemMark)
	}
	if e.Problem != "" {
		b.WriteString(e.Problem)
	} else {
		b.WriteString("unknown problem")
	}
	return b.String()
}

// captureError converts a typed engine error into an Error snapshot. Any
// error outside the engine's closed taxonomy is an internal inconsistency.
func captureError(err error) *Error {
	var readerErr libyaml.ReaderError
	if errors.As(err, &readerErr) {
		problem := ""
		if readerErr.Err != nil {
			problem = readerErr.Err.Error()
		}
		return &Error{
			Kind:    ReaderError,
			Problem: problem,
			Offset:  readerErr.Offset,
		}
	}
	var scannerErr libyaml.ScannerError
	if errors.As(err, &scannerErr) {
		return &Error{
			Kind:        ScannerError,
			Problem:     scannerErr.Message,
			ProblemMark: decodeMark(scannerErr.Mark),
			Context:     scannerErr.ContextMessage,
			ContextMark: decodeMark(scannerErr.ContextMark),
		}
	}
	var parserErr libyaml.ParserError
	if errors.As(err, &parserErr) {
		return &Error{
			Kind:        ParserError,
			Problem:     parserErr.Message,
			ProblemMark: decodeMark(parserErr.Mark),
			Context:     parserErr.ContextMessage,
			ContextMark: decodeMark(parserErr.ContextMark),
		}
	}
	var composerErr libyaml.ComposerError
	if errors.As(err, &composerErr) {
		return &Error{
			Kind:        ComposerError,
			Problem:     composerErr.Message,
			ProblemMark: decodeMark(composerErr.Mark),
			Context:     composerErr.ContextMessage,
			ContextMark: decodeMark(composerErr.ContextMark),
		}
	}
	panic("internal error: unclassified engine failure: " + err.Error())
}
