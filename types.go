package brk

import (
	"github.com/meigma/brk/internal/brktype"
	"github.com/meigma/brk/internal/index"
)

// Re-export types from internal packages for the public API.
type (
	// Entry describes one file stored in an archive.
	Entry = brktype.Entry

	// Header is the fixed archive header.
	Header = index.Header

	// ProgressEvent represents a progress update while packing.
	ProgressEvent = brktype.ProgressEvent

	// ProgressStage identifies the current phase of packing.
	ProgressStage = brktype.ProgressStage

	// ProgressFunc receives progress updates while packing.
	ProgressFunc = brktype.ProgressFunc
)

// Re-export entry flag bits.
const (
	FlagCompressed = brktype.FlagCompressed
	FlagEncrypted  = brktype.FlagEncrypted
)

// Re-export format constants.
const (
	// HeaderSize is the size of the fixed archive header.
	HeaderSize = index.HeaderSize

	// FormatVersion is the version written by Pack.
	FormatVersion = index.Version

	// KeySize is the required key length in bytes.
	KeySize = brktype.KeySize
)

// Re-export progress stage constants.
const (
	StageEnumerating  = brktype.StageEnumerating
	StageEncoding     = brktype.StageEncoding
	StageWritingIndex = brktype.StageWritingIndex
)

// Compression selects whether Pack compresses entries.
type Compression uint8

const (
	CompressionNone Compression = iota
	CompressionZstd
)

// String returns the human-readable name of the compression algorithm.
func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionZstd:
		return "zstd"
	default:
		return "unknown"
	}
}
