// Package brktype holds the types shared by the archive codec, reader and packer.
package brktype

// Flag bits stored in an index entry.
const (
	// FlagCompressed marks data stored as a zstd frame.
	FlagCompressed uint32 = 1 << 0

	// FlagEncrypted marks data sealed with AES-256-GCM.
	FlagEncrypted uint32 = 1 << 1
)

// Sizes of the fixed-width AES-GCM fields in an index entry.
const (
	NonceSize = 12
	TagSize   = 16
	KeySize   = 32
)

// Entry describes one file stored in an archive.
type Entry struct {
	// Path is the archive-relative virtual path (e.g., "res/textures/a.png").
	Path string

	// Offset is the absolute byte offset of the stored blob.
	Offset uint64

	// Size is the length of the blob as stored (after compression and encryption).
	Size uint64

	// OriginalSize is the length of the decoded content.
	OriginalSize uint64

	// Flags is a bitfield of FlagCompressed and FlagEncrypted.
	Flags uint32

	// Nonce is the AES-GCM nonce. Only meaningful when encrypted.
	Nonce [NonceSize]byte

	// Tag is the AES-GCM authentication tag. Only meaningful when encrypted.
	Tag [TagSize]byte
}

// Encrypted reports whether the entry is sealed with AES-256-GCM.
func (e *Entry) Encrypted() bool {
	return e.Flags&FlagEncrypted != 0
}

// Compressed reports whether the entry is stored as a zstd frame.
func (e *Entry) Compressed() bool {
	return e.Flags&FlagCompressed != 0
}

// End returns the offset one past the last stored byte, and false on overflow.
func (e *Entry) End() (uint64, bool) {
	end := e.Offset + e.Size
	if end < e.Offset {
		return 0, false
	}
	return end, true
}
