package brk

import "github.com/meigma/brk/internal/brktype"

// Sentinel errors re-exported from internal/brktype.
//
// Lookups of absent paths return an *fs.PathError wrapping fs.ErrNotExist.
var (
	// ErrFormat is returned when the header or index cannot be parsed.
	ErrFormat = brktype.ErrFormat

	// ErrMissingKey is returned when an encrypted entry is read without a key.
	ErrMissingKey = brktype.ErrMissingKey

	// ErrInvalidKey is returned when a key is not KeySize bytes.
	ErrInvalidKey = brktype.ErrInvalidKey

	// ErrDecrypt is returned when an encrypted entry fails authentication.
	ErrDecrypt = brktype.ErrDecrypt

	// ErrDecompression is returned when a compressed entry cannot be decoded.
	ErrDecompression = brktype.ErrDecompression

	// ErrIntegrity is returned when decoded content does not match the recorded size.
	ErrIntegrity = brktype.ErrIntegrity

	// ErrSeekOutOfBounds is returned when a File seek lands outside the entry.
	ErrSeekOutOfBounds = brktype.ErrSeekOutOfBounds

	// ErrNotStreamable is returned by StreamFile for encrypted or compressed entries.
	ErrNotStreamable = brktype.ErrNotStreamable

	// ErrSizeOverflow is returned when a size exceeds supported limits.
	ErrSizeOverflow = brktype.ErrSizeOverflow

	// ErrPathTooLong is returned when a virtual path exceeds 65535 bytes.
	ErrPathTooLong = brktype.ErrPathTooLong

	// ErrTooManyFiles is returned when the file count exceeds the configured limit.
	ErrTooManyFiles = brktype.ErrTooManyFiles
)
