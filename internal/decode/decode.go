// Copyright 2023 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

// Package decode normalizes serialized payloads to UTF-8 before parsing.
package decode // import "mellium.im/serde/internal/decode"

import (
	"bytes"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Normalize returns the payload as UTF-8 bytes: a UTF-8 byte order mark is
// stripped, and UTF-16 payloads (detected by their byte order mark, or by
// the zero byte pattern of an encoded "<" when no mark is present) are
// transcoded. Payloads that are already plain UTF-8 are returned unchanged
// without copying.
func Normalize(p []byte) ([]byte, error) {
	switch {
	case bytes.HasPrefix(p, utf8BOM):
		return p[len(utf8BOM):], nil
	case bytes.HasPrefix(p, []byte{0xFE, 0xFF}):
		return utf16To8(p, unicode.BigEndian)
	case bytes.HasPrefix(p, []byte{0xFF, 0xFE}):
		return utf16To8(p, unicode.LittleEndian)
	case len(p) >= 2 && p[0] == '<' && p[1] == 0x00:
		return utf16To8(p, unicode.LittleEndian)
	case len(p) >= 2 && p[0] == 0x00 && p[1] == '<':
		return utf16To8(p, unicode.BigEndian)
	}
	return p, nil
}

func utf16To8(p []byte, endianness unicode.Endianness) ([]byte, error) {
	dec := unicode.UTF16(endianness, unicode.UseBOM).NewDecoder()
	out, _, err := transform.Bytes(dec, p)
	return out, err
}
