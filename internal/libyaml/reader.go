// Copyright 2006-2010 Kirill Simonov
// Copyright 2011-2019 Canonical Ltd
// Copyright 2025 The yamlkit Authors
// SPDX-License-Identifier: Apache-2.0 AND MIT

// Reader stage: fills the working buffer with decoded characters from the
// input source. Detects the stream encoding from the BOM, validates UTF-8,
// and transcodes UTF-16 into the UTF-8 working buffer.

package libyaml

import (
	"errors"
	"io"
)

// Set the reader error and return false.
func (parser *Parser) setReaderError(problem string, offset int, value int) bool {
	parser.ErrorType = READER_ERROR
	parser.Problem = problem
	parser.ProblemOffset = offset
	parser.ProblemValue = value
	return false
}

// readerFailed converts the recorded reader error state into a typed error.
func (parser *Parser) readerFailed() error {
	err := parser.readErr
	if err == nil {
		err = errors.New(parser.Problem)
	}
	return ReaderError{
		Offset: parser.ProblemOffset,
		Value:  parser.ProblemValue,
		Err:    err,
	}
}

// Byte order marks.
const (
	bom_UTF8    = "\xef\xbb\xbf"
	bom_UTF16LE = "\xff\xfe"
	bom_UTF16BE = "\xfe\xff"
)

// Determine the input stream encoding by checking the BOM symbol. If no BOM is
// found, the UTF-8 encoding is assumed.
func (parser *Parser) determineEncoding() bool {
	// Ensure that we had enough bytes in the raw buffer.
	for !parser.eof && len(parser.raw_buffer)-parser.raw_buffer_pos < 3 {
		if !parser.updateRawBuffer() {
			return false
		}
	}

	// Determine the encoding.
	buf := parser.raw_buffer
	pos := parser.raw_buffer_pos
	avail := len(buf) - pos
	if avail >= 2 && buf[pos] == bom_UTF16LE[0] && buf[pos+1] == bom_UTF16LE[1] {
		parser.encoding = UTF16LE_ENCODING
		parser.raw_buffer_pos += 2
		parser.offset += 2
	} else if avail >= 2 && buf[pos] == bom_UTF16BE[0] && buf[pos+1] == bom_UTF16BE[1] {
		parser.encoding = UTF16BE_ENCODING
		parser.raw_buffer_pos += 2
		parser.offset += 2
	} else if avail >= 3 && buf[pos] == bom_UTF8[0] && buf[pos+1] == bom_UTF8[1] && buf[pos+2] == bom_UTF8[2] {
		parser.encoding = UTF8_ENCODING
		parser.raw_buffer_pos += 3
		parser.offset += 3
	} else {
		parser.encoding = UTF8_ENCODING
	}
	return true
}

// Update the raw buffer.
func (parser *Parser) updateRawBuffer() bool {
	size_read := 0

	// Return if the raw buffer is full.
	if parser.raw_buffer_pos == 0 && len(parser.raw_buffer) == cap(parser.raw_buffer) {
		return true
	}

	// Return on EOF.
	if parser.eof {
		return true
	}

	// Move the remaining bytes in the raw buffer to the beginning.
	if parser.raw_buffer_pos > 0 && parser.raw_buffer_pos < len(parser.raw_buffer) {
		copy(parser.raw_buffer, parser.raw_buffer[parser.raw_buffer_pos:])
	}
	parser.raw_buffer = parser.raw_buffer[:len(parser.raw_buffer)-parser.raw_buffer_pos]
	parser.raw_buffer_pos = 0

	// Call the read handler to fill the buffer.
	size_read, err := parser.read_handler(parser, parser.raw_buffer[len(parser.raw_buffer):cap(parser.raw_buffer)])
	parser.raw_buffer = parser.raw_buffer[:len(parser.raw_buffer)+size_read]
	if err == io.EOF {
		parser.eof = true
	} else if err != nil {
		parser.readErr = err
		return parser.setReaderError("input error: "+err.Error(), parser.offset, -1)
	}
	return true
}

// Ensure that the buffer contains at least `length` characters.
// Return true on success, false on failure.
//
// The length is supposed to be significantly less that the buffer size.
func (parser *Parser) updateBuffer(length int) bool {
	if parser.read_handler == nil {
		panic("read handler must be set")
	}

	// Return if the buffer contains enough characters.
	if parser.unread >= length {
		return true
	}

	// Determine the input encoding if it is not known yet.
	if parser.encoding == ANY_ENCODING {
		if !parser.determineEncoding() {
			return false
		}
	}

	// Move the unread characters to the beginning of the buffer.
	if parser.buffer_pos > 0 && parser.buffer_pos < len(parser.buffer) {
		copy(parser.buffer, parser.buffer[parser.buffer_pos:])
		parser.buffer = parser.buffer[:len(parser.buffer)-parser.buffer_pos]
		parser.buffer_pos = 0
	} else if parser.buffer_pos == len(parser.buffer) {
		parser.buffer = parser.buffer[:0]
		parser.buffer_pos = 0
	}

	// Fill the buffer until it has enough characters.
	first := true
	for parser.unread < length {

		// Fill the raw buffer if necessary.
		if !first || parser.raw_buffer_pos == len(parser.raw_buffer) {
			if !parser.updateRawBuffer() {
				return false
			}
		}
		first = false

		// Decode the raw buffer.
		for parser.raw_buffer_pos != len(parser.raw_buffer) {
			var value rune
			var w int

			raw_unread := len(parser.raw_buffer) - parser.raw_buffer_pos
			incomplete := false

			// Decode the next character.
			switch parser.encoding {
			case UTF8_ENCODING:
				// Decode a UTF-8 character.  Check RFC 3629
				// (http://www.ietf.org/rfc/rfc3629.txt) for more details.
				octet := parser.raw_buffer[parser.raw_buffer_pos]
				switch {
				case octet&0x80 == 0x00:
					w = 1
				case octet&0xE0 == 0xC0:
					w = 2
				case octet&0xF0 == 0xE0:
					w = 3
				case octet&0xF8 == 0xF0:
					w = 4
				default:
					// The leading octet is invalid.
					return parser.setReaderError("invalid leading UTF-8 octet", parser.offset, int(octet))
				}

				// Check if the raw buffer contains an incomplete character.
				if w > raw_unread {
					if parser.eof {
						return parser.setReaderError("incomplete UTF-8 octet sequence", parser.offset, -1)
					}
					incomplete = true
					break
				}

				// Decode the leading octet.
				switch {
				case octet&0x80 == 0x00:
					value = rune(octet & 0x7F)
				case octet&0xE0 == 0xC0:
					value = rune(octet & 0x1F)
				case octet&0xF0 == 0xE0:
					value = rune(octet & 0x0F)
				default:
					value = rune(octet & 0x07)
				}

				// Check and decode the trailing octets.
				for k := 1; k < w; k++ {
					octet = parser.raw_buffer[parser.raw_buffer_pos+k]

					// Check if the octet is valid.
					if octet&0xC0 != 0x80 {
						return parser.setReaderError("invalid trailing UTF-8 octet", parser.offset+k, int(octet))
					}

					// Decode the octet.
					value = (value << 6) + rune(octet&0x3F)
				}

				// Check the length of the sequence against the value.
				switch {
				case w == 1:
				case w == 2 && value >= 0x80:
				case w == 3 && value >= 0x800:
				case w == 4 && value >= 0x10000:
				default:
					return parser.setReaderError("invalid length of a UTF-8 sequence", parser.offset, -1)
				}

				// Check the range of the value.
				if value >= 0xD800 && value <= 0xDFFF || value > 0x10FFFF {
					return parser.setReaderError("invalid Unicode character", parser.offset, int(value))
				}

			case UTF16LE_ENCODING, UTF16BE_ENCODING:
				var low, high int
				if parser.encoding == UTF16LE_ENCODING {
					low, high = 0, 1
				} else {
					low, high = 1, 0
				}

				// The UTF-16 encoding is not as simple as one might
				// naively think.  Check RFC 2781
				// (http://www.ietf.org/rfc/rfc2781.txt).

				// Check for incomplete UTF-16 character.
				if raw_unread < 2 {
					if parser.eof {
						return parser.setReaderError("incomplete UTF-16 character", parser.offset, -1)
					}
					incomplete = true
					break
				}

				// Get the character.
				value = rune(parser.raw_buffer[parser.raw_buffer_pos+low]) +
					(rune(parser.raw_buffer[parser.raw_buffer_pos+high]) << 8)

				// Check for unexpected low surrogate area.
				if value&0xFC00 == 0xDC00 {
					return parser.setReaderError("unexpected low surrogate area", parser.offset, int(value))
				}

				// Check for a high surrogate area.
				if value&0xFC00 == 0xD800 {
					w = 4

					// Check for incomplete surrogate pair.
					if raw_unread < 4 {
						if parser.eof {
							return parser.setReaderError("incomplete UTF-16 surrogate pair", parser.offset, -1)
						}
						incomplete = true
						break
					}

					// Get the next character.
					value2 := rune(parser.raw_buffer[parser.raw_buffer_pos+low+2]) +
						(rune(parser.raw_buffer[parser.raw_buffer_pos+high+2]) << 8)

					// Check for a low surrogate area.
					if value2&0xFC00 != 0xDC00 {
						return parser.setReaderError("expected low surrogate area", parser.offset+2, int(value2))
					}

					// Generate the value of the surrogate pair.
					value = 0x10000 + ((value & 0x3FF) << 10) + (value2 & 0x3FF)
				} else {
					w = 2
				}

			default:
				panic("impossible")
			}

			if incomplete {
				break
			}

			// Check if the character is in the allowed range:
			//      #x9 | #xA | #xD | [#x20-#x7E]               (8 bit)
			//      | #x85 | [#xA0-#xD7FF] | [#xE000-#xFFFD]    (16 bit)
			//      | [#x10000-#x10FFFF]                        (32 bit)
			switch {
			case value == 0x09 || value == 0x0A || value == 0x0D:
			case value >= 0x20 && value <= 0x7E:
			case value == 0x85:
			case value >= 0xA0 && value <= 0xD7FF:
			case value >= 0xE000 && value <= 0xFFFD:
			case value >= 0x10000 && value <= 0x10FFFF:
			default:
				return parser.setReaderError("control characters are not allowed", parser.offset, int(value))
			}

			// Move the raw pointers.
			parser.raw_buffer_pos += w
			parser.offset += w

			// Append the character to the buffer, re-encoded as UTF-8.
			switch {
			case value <= 0x7F:
				// 0000 0000-0000 007F . 0xxxxxxx
				parser.buffer = append(parser.buffer, byte(value))
			case value <= 0x7FF:
				// 0000 0080-0000 07FF . 110xxxxx 10xxxxxx
				parser.buffer = append(parser.buffer,
					byte(0xC0+(value>>6)),
					byte(0x80+(value&0x3F)))
			case value <= 0xFFFF:
				// 0000 0800-0000 FFFF . 1110xxxx 10xxxxxx 10xxxxxx
				parser.buffer = append(parser.buffer,
					byte(0xE0+(value>>12)),
					byte(0x80+((value>>6)&0x3F)),
					byte(0x80+(value&0x3F)))
			default:
				// 0001 0000-0010 FFFF . 11110xxx 10xxxxxx 10xxxxxx 10xxxxxx
				parser.buffer = append(parser.buffer,
					byte(0xF0+(value>>18)),
					byte(0x80+((value>>12)&0x3F)),
					byte(0x80+((value>>6)&0x3F)),
					byte(0x80+(value&0x3F)))
			}

			parser.unread++
		}

		// On EOF, pad the buffer with NUL characters so the requested
		// lookahead never runs off the end, and return.
		if parser.eof {
			for parser.unread < length {
				parser.buffer = append(parser.buffer, 0)
				parser.unread++
			}
			break
		}
	}
	return true
}
