// Copyright 2025 The yamlkit Authors
// SPDX-License-Identifier: Apache-2.0

package yaml

import "github.com/yamlkit/yaml/internal/libyaml"

// Encoding is the character encoding detected at the start of the stream.
type Encoding int

const (
	// AnyEncoding means the encoding was not (or not yet) determined.
	AnyEncoding Encoding = iota

	UTF8Encoding    // The default UTF-8 encoding.
	UTF16LEEncoding // The UTF-16-LE encoding with BOM.
	UTF16BEEncoding // The UTF-16-BE encoding with BOM.
)

func (e Encoding) String() string {
	switch e {
	case AnyEncoding:
		return "Any"
	case UTF8Encoding:
		return "UTF-8"
	case UTF16LEEncoding:
		return "UTF-16-LE"
	case UTF16BEEncoding:
		return "UTF-16-BE"
	}
	return "<unknown encoding>"
}

// ScalarStyle is the presentation style of a scalar in the source text.
type ScalarStyle int

const (
	AnyScalarStyle ScalarStyle = iota

	PlainStyle        // The plain (unquoted) scalar style.
	SingleQuotedStyle // The single-quoted scalar style.
	DoubleQuotedStyle // The double-quoted scalar style.
	LiteralStyle      // The literal block scalar style.
	FoldedStyle       // The folded block scalar style.
)

func (s ScalarStyle) String() string {
	switch s {
	case PlainStyle:
		return "Plain"
	case SingleQuotedStyle:
		return "SingleQuoted"
	case DoubleQuotedStyle:
		return "DoubleQuoted"
	case LiteralStyle:
		return "Literal"
	case FoldedStyle:
		return "Folded"
	}
	return "Any"
}

// CollectionStyle is the presentation style of a sequence or mapping.
type CollectionStyle int

const (
	AnyCollectionStyle CollectionStyle = iota

	BlockStyle // The indentation-based block style.
	FlowStyle  // The bracketed flow style.
)

func (s CollectionStyle) String() string {
	switch s {
	case BlockStyle:
		return "Block"
	case FlowStyle:
		return "Flow"
	}
	return "Any"
}

// VersionDirective is a %YAML directive attached to a document.
type VersionDirective struct {
	Major int
	Minor int
}

// TagDirective is a %TAG directive attached to a document.
type TagDirective struct {
	Handle string
	Prefix string
}

// Event is one atomic structural signal produced by incremental parsing.
// The variant set is closed: StreamStart, StreamEnd, DocumentStart,
// DocumentEnd, SequenceStart, SequenceEnd, MappingStart, MappingEnd,
// Scalar and Alias. Events are value types; they own all their data and
// keep no reference into the parser.
type Event interface {
	isEvent()
}

// StreamStart is the first event of every stream.
type StreamStart struct {
	// Encoding is the detected input encoding.
	Encoding Encoding
}

// StreamEnd is the last event of every stream.
type StreamEnd struct{}

// DocumentStart opens a document.
type DocumentStart struct {
	// Version is the document's %YAML directive, nil when absent.
	Version *VersionDirective

	// TagDirectives are the document's %TAG directives, in source order.
	TagDirectives []TagDirective

	// Implicit reports whether the document had no "---" indicator.
	Implicit bool
}

// DocumentEnd closes a document.
type DocumentEnd struct {
	// Implicit reports whether the document had no "..." indicator.
	Implicit bool
}

// SequenceStart opens a sequence.
type SequenceStart struct {
	Anchor   string
	Tag      string
	Implicit bool // The tag is absent or non-specific.
	Style    CollectionStyle
}

// SequenceEnd closes a sequence.
type SequenceEnd struct{}

// MappingStart opens a mapping.
type MappingStart struct {
	Anchor   string
	Tag      string
	Implicit bool // The tag is absent or non-specific.
	Style    CollectionStyle
}

// MappingEnd closes a mapping.
type MappingEnd struct{}

// Scalar is a single scalar value.
type Scalar struct {
	Anchor string
	Tag    string
	Value  string

	// PlainImplicit reports that the tag is optional for the plain style.
	PlainImplicit bool

	// QuotedImplicit reports that the tag is optional for any non-plain style.
	QuotedImplicit bool

	Style ScalarStyle
}

// Alias re-references a previously anchored node.
type Alias struct {
	Anchor string
}

func (StreamStart) isEvent()   {}
func (StreamEnd) isEvent()     {}
func (DocumentStart) isEvent() {}
func (DocumentEnd) isEvent()   {}
func (SequenceStart) isEvent() {}
func (SequenceEnd) isEvent()   {}
func (MappingStart) isEvent()  {}
func (MappingEnd) isEvent()    {}
func (Scalar) isEvent()        {}
func (Alias) isEvent()         {}

func decodeEncoding(e libyaml.Encoding) Encoding {
	switch e {
	case libyaml.UTF8_ENCODING:
		return UTF8Encoding
	case libyaml.UTF16LE_ENCODING:
		return UTF16LEEncoding
	case libyaml.UTF16BE_ENCODING:
		return UTF16BEEncoding
	}
	return AnyEncoding
}

func decodeScalarStyle(s libyaml.ScalarStyle) ScalarStyle {
	switch s {
	case libyaml.PLAIN_SCALAR_STYLE:
		return PlainStyle
	case libyaml.SINGLE_QUOTED_SCALAR_STYLE:
		return SingleQuotedStyle
	case libyaml.DOUBLE_QUOTED_SCALAR_STYLE:
		return DoubleQuotedStyle
	case libyaml.LITERAL_SCALAR_STYLE:
		return LiteralStyle
	case libyaml.FOLDED_SCALAR_STYLE:
		return FoldedStyle
	}
	return AnyScalarStyle
}

func decodeSequenceStyle(s libyaml.SequenceStyle) CollectionStyle {
	switch s {
	case libyaml.BLOCK_SEQUENCE_STYLE:
		return BlockStyle
	case libyaml.FLOW_SEQUENCE_STYLE:
		return FlowStyle
	}
	return AnyCollectionStyle
}

func decodeMappingStyle(s libyaml.MappingStyle) CollectionStyle {
	switch s {
	case libyaml.BLOCK_MAPPING_STYLE:
		return BlockStyle
	case libyaml.FLOW_MAPPING_STYLE:
		return FlowStyle
	}
	return AnyCollectionStyle
}

// decodeEvent copies one engine event record into an owned Event value.
// Every byte slice is converted to a string here, before the record is
// deleted, so the result never dangles into parser buffers.
func decodeEvent(e *libyaml.Event) Event {
	switch e.Type {
	case libyaml.STREAM_START_EVENT:
		return StreamStart{Encoding: decodeEncoding(e.GetEncoding())}
	case libyaml.STREAM_END_EVENT:
		return StreamEnd{}
	case libyaml.DOCUMENT_START_EVENT:
		var version *VersionDirective
		if vd := e.GetVersionDirective(); vd != nil {
			version = &VersionDirective{Major: vd.Major(), Minor: vd.Minor()}
		}
		var tags []TagDirective
		for _, td := range e.GetTagDirectives() {
			tags = append(tags, TagDirective{
				Handle: td.GetHandle(),
				Prefix: td.GetPrefix(),
			})
		}
		return DocumentStart{
			Version:       version,
			TagDirectives: tags,
			Implicit:      e.Implicit,
		}
	case libyaml.DOCUMENT_END_EVENT:
		return DocumentEnd{Implicit: e.Implicit}
	case libyaml.SEQUENCE_START_EVENT:
		return SequenceStart{
			Anchor:   string(e.Anchor),
			Tag:      string(e.Tag),
			Implicit: e.Implicit,
			Style:    decodeSequenceStyle(e.SequenceStyle()),
		}
	case libyaml.SEQUENCE_END_EVENT:
		return SequenceEnd{}
	case libyaml.MAPPING_START_EVENT:
		return MappingStart{
			Anchor:   string(e.Anchor),
			Tag:      string(e.Tag),
			Implicit: e.Implicit,
			Style:    decodeMappingStyle(e.MappingStyle()),
		}
	case libyaml.MAPPING_END_EVENT:
		return MappingEnd{}
	case libyaml.SCALAR_EVENT:
		return Scalar{
			Anchor:         string(e.Anchor),
			Tag:            string(e.Tag),
			Value:          string(e.Value),
			PlainImplicit:  e.Implicit,
			QuotedImplicit: e.QuotedImplicit,
			Style:          decodeScalarStyle(e.ScalarStyle()),
		}
	case libyaml.ALIAS_EVENT:
		return Alias{Anchor: string(e.Anchor)}
	}
	panic("internal error: attempted to decode unknown event: " + e.Type.String())
}
