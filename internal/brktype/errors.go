package brktype

import "errors"

// Sentinel errors for archive operations.
var (
	// ErrFormat is returned when an archive header or index cannot be parsed.
	ErrFormat = errors.New("brk: invalid archive format")

	// ErrMissingKey is returned when an encrypted entry is read without a key.
	ErrMissingKey = errors.New("brk: missing decryption key")

	// ErrInvalidKey is returned when a key is not exactly KeySize bytes.
	ErrInvalidKey = errors.New("brk: invalid key length")

	// ErrDecrypt is returned when AES-GCM authentication fails.
	ErrDecrypt = errors.New("brk: decryption failed")

	// ErrDecompression is returned when a zstd frame cannot be decoded.
	ErrDecompression = errors.New("brk: decompression failed")

	// ErrIntegrity is returned when decoded content does not match its recorded size.
	ErrIntegrity = errors.New("brk: size mismatch")

	// ErrSeekOutOfBounds is returned when a seek lands outside an entry.
	ErrSeekOutOfBounds = errors.New("brk: seek out of bounds")

	// ErrNotStreamable is returned when streaming an encrypted or compressed entry.
	ErrNotStreamable = errors.New("brk: entry cannot be streamed")

	// ErrSizeOverflow is returned when byte counts exceed supported limits.
	ErrSizeOverflow = errors.New("brk: size overflow")

	// ErrPathTooLong is returned when a path does not fit the u16 length prefix.
	ErrPathTooLong = errors.New("brk: path too long")

	// ErrTooManyFiles is returned when the entry count exceeds the configured limit.
	ErrTooManyFiles = errors.New("brk: too many files")
)
