// Package jptext decodes legacy Japanese byte encodings. The encoding
// is always an explicit argument: the portal serves UTF-8 pages but
// Shift_JIS CSV bodies, and the station master index is Shift_JIS, so
// defaulting anywhere would hide a real distinction.
package jptext

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

// ShiftJIS is the encoding used by the agency's CSV downloads and the
// station master index file.
var ShiftJIS encoding.Encoding = japanese.ShiftJIS

// Decode converts b from the given encoding to a UTF-8 string.
// A byte sequence that is invalid for the encoding is a hard failure,
// not a best-effort substitution.
func Decode(b []byte, enc encoding.Encoding) (string, error) {
	s, _, err := transform.String(enc.NewDecoder(), string(b))
	if err != nil {
		return "", fmt.Errorf("decode: %w", err)
	}
	// x/text decoders substitute U+FFFD for undecodable input instead
	// of failing; no valid source byte sequence maps to it.
	if strings.ContainsRune(s, utf8.RuneError) {
		return "", fmt.Errorf("decode: invalid byte sequence for encoding")
	}
	return s, nil
}

// Encode converts a UTF-8 string to bytes in the given encoding.
func Encode(s string, enc encoding.Encoding) ([]byte, error) {
	b, _, err := transform.Bytes(enc.NewEncoder(), []byte(s))
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return b, nil
}

// NewReader wraps r so reads yield UTF-8 text decoded from the given
// encoding. Invalid input surfaces as a read error from the transform,
// or as substitution runes the caller must treat as fatal; prefer
// Decode for whole payloads.
func NewReader(r io.Reader, enc encoding.Encoding) io.Reader {
	return transform.NewReader(r, enc.NewDecoder())
}
