package seal

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/brk/internal/brktype"
)

func testKey(b byte) []byte {
	return bytes.Repeat([]byte{b}, brktype.KeySize)
}

func TestSealOpen(t *testing.T) {
	t.Parallel()

	s, err := New(testKey(1))
	require.NoError(t, err)

	for _, plaintext := range [][]byte{nil, []byte("x"), bytes.Repeat([]byte("scene"), 1000)} {
		ct, nonce, tag, err := s.Seal(plaintext)
		require.NoError(t, err)
		assert.Len(t, ct, len(plaintext))

		got, err := s.Open(ct, nonce, tag)
		require.NoError(t, err)
		assert.Equal(t, len(plaintext), len(got))
		assert.True(t, bytes.Equal(plaintext, got))
	}
}

func TestSeal_FreshNonce(t *testing.T) {
	t.Parallel()

	s, err := New(testKey(2))
	require.NoError(t, err)

	_, n1, _, err := s.Seal([]byte("same"))
	require.NoError(t, err)
	_, n2, _, err := s.Seal([]byte("same"))
	require.NoError(t, err)
	assert.NotEqual(t, n1, n2)
}

func TestOpen_Tampered(t *testing.T) {
	t.Parallel()

	s, err := New(testKey(3))
	require.NoError(t, err)
	ct, nonce, tag, err := s.Seal([]byte("secret config"))
	require.NoError(t, err)

	t.Run("ciphertext", func(t *testing.T) {
		t.Parallel()
		bad := bytes.Clone(ct)
		bad[0] ^= 0x01
		got, err := s.Open(bad, nonce, tag)
		require.ErrorIs(t, err, brktype.ErrDecrypt)
		assert.Nil(t, got)
	})

	t.Run("tag", func(t *testing.T) {
		t.Parallel()
		bad := tag
		bad[len(bad)-1] ^= 0x80
		_, err := s.Open(ct, nonce, bad)
		require.ErrorIs(t, err, brktype.ErrDecrypt)
	})

	t.Run("nonce", func(t *testing.T) {
		t.Parallel()
		bad := nonce
		bad[0] ^= 0xff
		_, err := s.Open(ct, bad, tag)
		require.ErrorIs(t, err, brktype.ErrDecrypt)
	})

	t.Run("wrong key", func(t *testing.T) {
		t.Parallel()
		other, err := New(testKey(4))
		require.NoError(t, err)
		_, err = other.Open(ct, nonce, tag)
		require.ErrorIs(t, err, brktype.ErrDecrypt)
	})
}

func TestNew_InvalidKey(t *testing.T) {
	t.Parallel()

	for _, n := range []int{0, 16, 31, 33} {
		_, err := New(make([]byte, n))
		require.ErrorIs(t, err, brktype.ErrInvalidKey)
	}
}
