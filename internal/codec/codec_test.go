package codec

import (
	"bytes"
	"crypto/rand"
	"sync"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/brk/internal/brktype"
)

func newPair(t *testing.T) (*Encoder, *Decoder) {
	t.Helper()
	enc, err := NewEncoder(zstd.SpeedDefault, 2)
	require.NoError(t, err)
	t.Cleanup(func() { _ = enc.Close() })

	dec, err := NewDecoder(WithConcurrency(2))
	require.NoError(t, err)
	t.Cleanup(dec.Close)
	return enc, dec
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()
	enc, dec := newPair(t)

	input := bytes.Repeat([]byte("nested file contents\n"), 512)
	compressed := enc.Compress(input)
	assert.Less(t, len(compressed), len(input))

	got, err := dec.Decompress(compressed, uint64(len(input)))
	require.NoError(t, err)
	assert.Equal(t, input, got)
}

func TestDecompress_SizeMismatch(t *testing.T) {
	t.Parallel()
	enc, dec := newPair(t)

	input := bytes.Repeat([]byte("a"), 4096)
	compressed := enc.Compress(input)

	_, err := dec.Decompress(compressed, uint64(len(input))+1)
	require.ErrorIs(t, err, brktype.ErrIntegrity)

	_, err = dec.Decompress(compressed, uint64(len(input))-1)
	require.ErrorIs(t, err, brktype.ErrIntegrity)
}

func TestDecompress_Garbage(t *testing.T) {
	t.Parallel()
	_, dec := newPair(t)

	junk := make([]byte, 64)
	_, err := rand.Read(junk)
	require.NoError(t, err)

	_, err = dec.Decompress(junk, 64)
	require.ErrorIs(t, err, brktype.ErrDecompression)
}

func TestConcurrentUse(t *testing.T) {
	t.Parallel()
	enc, dec := newPair(t)

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			input := bytes.Repeat([]byte{byte('a' + i)}, 1000*(i+1))
			got, err := dec.Decompress(enc.Compress(input), uint64(len(input)))
			assert.NoError(t, err)
			assert.Equal(t, input, got)
		}()
	}
	wg.Wait()
}
