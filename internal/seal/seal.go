// Package seal wraps AES-256-GCM with the detached nonce and tag layout
// used by archive entries.
package seal

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"

	"github.com/meigma/brk/internal/brktype"
)

// Sealer encrypts and decrypts entry payloads under one key.
// A Sealer is safe for concurrent use.
type Sealer struct {
	aead cipher.AEAD
}

// New returns a Sealer for a 32-byte key.
func New(key []byte) (*Sealer, error) {
	if len(key) != brktype.KeySize {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", brktype.ErrInvalidKey, len(key), brktype.KeySize)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", brktype.ErrInvalidKey, err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &Sealer{aead: aead}, nil
}

// Seal encrypts plaintext with a fresh random nonce.
// The ciphertext has the same length as plaintext; the tag is returned separately.
func (s *Sealer) Seal(plaintext []byte) (ciphertext []byte, nonce [brktype.NonceSize]byte, tag [brktype.TagSize]byte, err error) {
	if _, err = rand.Read(nonce[:]); err != nil {
		return nil, nonce, tag, fmt.Errorf("generate nonce: %w", err)
	}
	out := s.aead.Seal(make([]byte, 0, len(plaintext)+brktype.TagSize), nonce[:], plaintext, nil)
	split := len(out) - brktype.TagSize
	copy(tag[:], out[split:])
	return out[:split], nonce, tag, nil
}

// Open authenticates and decrypts ciphertext.
// On failure no plaintext is returned.
func (s *Sealer) Open(ciphertext []byte, nonce [brktype.NonceSize]byte, tag [brktype.TagSize]byte) ([]byte, error) {
	sealed := make([]byte, 0, len(ciphertext)+brktype.TagSize)
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, tag[:]...)

	plaintext, err := s.aead.Open(sealed[:0], nonce[:], sealed, nil)
	if err != nil {
		return nil, brktype.ErrDecrypt
	}
	return plaintext, nil
}
