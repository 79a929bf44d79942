// Copyright 2025 The yamlkit Authors
// SPDX-License-Identifier: Apache-2.0

// Error types for the reader, scanner, parser, and composer stages.
// Provides structured error reporting with position information.

package libyaml

import (
	"fmt"
	"strings"
)

// MarkedYAMLError is the shared shape of scanner, parser, and composer
// errors: a problem at a position, with an optional surrounding context.
type MarkedYAMLError struct {
	// optional context
	ContextMark    Mark
	ContextMessage string

	Mark    Mark
	Message string
}

func (e MarkedYAMLError) Error() string {
	var builder strings.Builder
	builder.WriteString("yaml: ")
	if len(e.ContextMessage) > 0 {
		fmt.Fprintf(&builder, "%s at %s: ", e.ContextMessage, e.ContextMark)
	}
	if len(e.ContextMessage) == 0 || e.ContextMark != e.Mark {
		fmt.Fprintf(&builder, "%s: ", e.Mark)
	}
	builder.WriteString(e.Message)
	return builder.String()
}

// ScannerError reports a lexical-level YAML violation.
type ScannerError MarkedYAMLError

func (e ScannerError) Error() string {
	return MarkedYAMLError(e).Error()
}

// ParserError reports a grammar-level YAML violation.
type ParserError MarkedYAMLError

func (e ParserError) Error() string {
	return MarkedYAMLError(e).Error()
}

// ComposerError reports a tree-construction-level violation, such as a
// duplicate anchor or an undefined alias.
type ComposerError MarkedYAMLError

func (e ComposerError) Error() string {
	return MarkedYAMLError(e).Error()
}

// stageFailed converts the recorded error state of a failed stage into the
// corresponding typed error.
func (parser *Parser) stageFailed() error {
	switch parser.ErrorType {
	case READER_ERROR:
		return parser.readerFailed()
	case SCANNER_ERROR:
		return ScannerError{
			ContextMark:    parser.ContextMark,
			ContextMessage: parser.Context,
			Mark:           parser.ProblemMark,
			Message:        parser.Problem,
		}
	case PARSER_ERROR:
		return ParserError{
			ContextMark:    parser.ContextMark,
			ContextMessage: parser.Context,
			Mark:           parser.ProblemMark,
			Message:        parser.Problem,
		}
	}
	panic("internal error: stage failed without recording an error")
}

// ReaderError reports a byte-source failure or an encoding violation at the
// input boundary.
type ReaderError struct {
	Offset int
	Value  int
	Err    error
}

func (e ReaderError) Error() string {
	return fmt.Sprintf("yaml: offset %d: %s", e.Offset, e.Err)
}

func (e ReaderError) Unwrap() error {
	return e.Err
}
