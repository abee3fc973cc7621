package brk

import (
	"log/slog"

	"github.com/meigma/brk/internal/codec"
)

const (
	// DefaultMaxFileSize is the default per-entry size limit for ReadFile (256MB).
	DefaultMaxFileSize = 256 << 20

	// DefaultMaxDecoderMemory is the default maximum zstd decoder memory (256MB).
	DefaultMaxDecoderMemory = codec.DefaultMaxDecoderMemory
)

// Option configures an Archive.
type Option func(*archiveConfig)

type archiveConfig struct {
	maxFileSize        uint64
	maxDecoderMemory   uint64
	decoderConcurrency int
	decoderLowmem      bool
	logger             *slog.Logger
}

func newArchiveConfig(opts []Option) archiveConfig {
	cfg := archiveConfig{
		maxFileSize:      DefaultMaxFileSize,
		maxDecoderMemory: DefaultMaxDecoderMemory,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

func (c *archiveConfig) decoderOptions() []codec.DecoderOption {
	return []codec.DecoderOption{
		codec.WithMaxMemory(c.maxDecoderMemory),
		codec.WithConcurrency(c.decoderConcurrency),
		codec.WithLowmem(c.decoderLowmem),
	}
}

// WithMaxFileSize limits the stored and decoded size of entries returned by ReadFile.
// Set limit to 0 to disable the limit. Streaming is not limited.
func WithMaxFileSize(limit uint64) Option {
	return func(c *archiveConfig) {
		c.maxFileSize = limit
	}
}

// WithMaxDecoderMemory limits the memory used by the zstd decoder.
// Set limit to 0 to disable the limit.
func WithMaxDecoderMemory(limit uint64) Option {
	return func(c *archiveConfig) {
		c.maxDecoderMemory = limit
	}
}

// WithDecoderConcurrency sets how many entries may be decompressed at once.
// Zero (the default) uses GOMAXPROCS.
func WithDecoderConcurrency(n int) Option {
	return func(c *archiveConfig) {
		if n < 0 {
			n = 0
		}
		c.decoderConcurrency = n
	}
}

// WithDecoderLowmem sets whether the zstd decoder should use low-memory mode (default: false).
func WithDecoderLowmem(enabled bool) Option {
	return func(c *archiveConfig) {
		c.decoderLowmem = enabled
	}
}

// WithLogger sets the logger for archive operations.
// If not set, logging is disabled.
func WithLogger(logger *slog.Logger) Option {
	return func(c *archiveConfig) {
		c.logger = logger
	}
}
