// Package codec compresses and decompresses whole entry buffers with zstd.
package codec

import (
	"fmt"

	"github.com/klauspost/compress/zstd"

	"github.com/meigma/brk/internal/brktype"
)

// DefaultMaxDecoderMemory is the default maximum decoder memory (256MB).
const DefaultMaxDecoderMemory = 256 << 20

// Encoder compresses whole buffers. It is safe for concurrent use.
type Encoder struct {
	enc *zstd.Encoder
}

// NewEncoder creates an encoder at the given level that can serve
// concurrency callers at once.
func NewEncoder(level zstd.EncoderLevel, concurrency int) (*Encoder, error) {
	if concurrency < 1 {
		concurrency = 1
	}
	enc, err := zstd.NewWriter(nil,
		zstd.WithEncoderLevel(level),
		zstd.WithEncoderConcurrency(concurrency),
	)
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	return &Encoder{enc: enc}, nil
}

// Compress returns src as a single zstd frame.
func (e *Encoder) Compress(src []byte) []byte {
	return e.enc.EncodeAll(src, make([]byte, 0, len(src)/2))
}

// Close releases encoder resources.
func (e *Encoder) Close() error {
	return e.enc.Close()
}

// Decoder decompresses whole buffers. It is safe for concurrent use.
type Decoder struct {
	dec *zstd.Decoder
}

// decoderConfig holds decoder settings.
type decoderConfig struct {
	maxMemory   uint64
	concurrency int
	lowmem      bool
}

// DecoderOption configures a Decoder.
type DecoderOption func(*decoderConfig)

// WithMaxMemory limits decoder memory. Zero disables the limit.
func WithMaxMemory(limit uint64) DecoderOption {
	return func(c *decoderConfig) {
		c.maxMemory = limit
	}
}

// WithConcurrency sets how many frames may be decoded at once.
// Values <= 0 use GOMAXPROCS.
func WithConcurrency(n int) DecoderOption {
	return func(c *decoderConfig) {
		if n < 0 {
			n = 0
		}
		c.concurrency = n
	}
}

// WithLowmem enables the decoder's low-memory mode.
func WithLowmem(enabled bool) DecoderOption {
	return func(c *decoderConfig) {
		c.lowmem = enabled
	}
}

// NewDecoder creates a decoder.
func NewDecoder(opts ...DecoderOption) (*Decoder, error) {
	cfg := decoderConfig{maxMemory: DefaultMaxDecoderMemory}
	for _, opt := range opts {
		opt(&cfg)
	}

	dopts := []zstd.DOption{
		zstd.WithDecoderConcurrency(cfg.concurrency),
		zstd.WithDecoderLowmem(cfg.lowmem),
	}
	if cfg.maxMemory != 0 {
		dopts = append(dopts, zstd.WithDecoderMaxMemory(cfg.maxMemory))
	}
	dec, err := zstd.NewReader(nil, dopts...)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	return &Decoder{dec: dec}, nil
}

// Decompress decodes src and checks that the result is exactly originalSize bytes.
func (d *Decoder) Decompress(src []byte, originalSize uint64) ([]byte, error) {
	capHint := originalSize
	if capHint > uint64(len(src))*64 {
		capHint = uint64(len(src)) * 64
	}
	out, err := d.dec.DecodeAll(src, make([]byte, 0, capHint))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", brktype.ErrDecompression, err)
	}
	if uint64(len(out)) != originalSize {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", brktype.ErrIntegrity, originalSize, len(out))
	}
	return out, nil
}

// Close releases decoder resources.
func (d *Decoder) Close() {
	d.dec.Close()
}
