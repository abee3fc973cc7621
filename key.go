package brk

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// ParseKey decodes a hex-encoded 32-byte key. Surrounding whitespace and an
// optional "0x" prefix are ignored.
func ParseKey(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if len(s) != hex.EncodedLen(KeySize) {
		return nil, fmt.Errorf("%w: want %d hex characters, got %d", ErrInvalidKey, hex.EncodedLen(KeySize), len(s))
	}
	key, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: not a hex string", ErrInvalidKey)
	}
	return key, nil
}
