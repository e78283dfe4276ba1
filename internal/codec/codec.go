// Package codec converts between raw binary buffers and their base64 text
// form. It is the single place where the binary/text boundary is crossed: the
// cipher layer seals into text-safe strings while the object store and the
// viewers deal in raw bytes.
package codec

import (
	"encoding/base64"
	"fmt"

	"github.com/dmitrijs2005/medvault/internal/common"
)

// std rejects non-canonical trailing bits so that every accepted string maps
// back to exactly one byte sequence.
var std = base64.StdEncoding.Strict()

// BytesToBase64 encodes b using standard, padded base64. A nil or empty slice
// encodes to the empty string.
func BytesToBase64(b []byte) string {
	return std.EncodeToString(b)
}

// Base64ToBytes decodes standard, padded base64 text. The empty string decodes
// to an empty, non-nil slice. Wrong alphabet, wrong padding or stray
// whitespace yield common.ErrMalformedEncoding.
func Base64ToBytes(text string) ([]byte, error) {
	b, err := std.DecodeString(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrMalformedEncoding, err)
	}
	if b == nil {
		b = []byte{}
	}
	return b, nil
}
