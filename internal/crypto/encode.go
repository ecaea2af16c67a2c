package crypto

import (
	"encoding/base64"
	"fmt"
	"strings"

	"sigil/internal/domain"
)

// EncodeBinary returns standard base64 encoding without newlines.
func EncodeBinary(b []byte) string { return base64.StdEncoding.EncodeToString(b) }

// DecodeBinary decodes standard padded base64. Line breaks, unpadded input and
// non-canonical trailing bits are rejected.
func DecodeBinary(text string) ([]byte, error) {
	if strings.ContainsAny(text, "\r\n") {
		return nil, fmt.Errorf("%w: line breaks in base64", domain.ErrMalformedEncoding)
	}
	b, err := base64.StdEncoding.Strict().DecodeString(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedEncoding, err)
	}
	return b, nil
}
