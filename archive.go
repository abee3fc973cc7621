package brk

import (
	"fmt"
	"io/fs"
	"log/slog"
	"slices"
	"sync/atomic"

	"github.com/meigma/brk/internal/index"
	"github.com/meigma/brk/internal/seal"
)

// Archive provides random access to the files of a BRK archive.
//
// The index is parsed once when the archive is opened and never changes.
// ReadFile, StreamFile and Clone are safe for concurrent use.
type Archive struct {
	idx         *index.Index
	store       *store
	maxFileSize uint64
	logger      *slog.Logger
	closed      atomic.Bool
}

// log returns the logger, falling back to a discard logger if nil.
func (a *Archive) log() *slog.Logger {
	if a.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return a.logger
}

// OpenBytes opens an archive held in memory, typically embedded with //go:embed.
//
// The slice is shared, not copied; callers must not modify it afterwards.
func OpenBytes(data []byte, opts ...Option) (*Archive, error) {
	return open(newBytesSource(data), nil, opts)
}

// OpenFile opens an archive on disk by memory-mapping it read-only.
//
// Pages are loaded on demand, so opening a large archive does not read it
// into memory. The mapping stays alive until the archive, every clone and
// every streamed File have been closed.
func OpenFile(path string, opts ...Option) (*Archive, error) {
	src, err := openMmapSource(path)
	if err != nil {
		return nil, err
	}
	a, err := open(src, src.Close, opts)
	if err != nil {
		_ = src.Close() //nolint:errcheck // open error takes precedence
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return a, nil
}

// New opens an archive from a caller-owned Source.
// Close does not close the source.
func New(src Source, opts ...Option) (*Archive, error) {
	return open(src, nil, opts)
}

func open(src Source, closeFn func() error, opts []Option) (*Archive, error) {
	cfg := newArchiveConfig(opts)

	idx, err := index.Load(src, src.Size())
	if err != nil {
		return nil, err
	}

	a := &Archive{
		idx:         idx,
		store:       newStore(src, closeFn, cfg.decoderOptions()),
		maxFileSize: cfg.maxFileSize,
		logger:      cfg.logger,
	}
	h := idx.Header()
	a.log().Debug("opened archive", "version", h.Version, "file_count", h.FileCount, "size", src.Size())
	return a, nil
}

// Header returns the parsed archive header.
func (a *Archive) Header() Header {
	return a.idx.Header()
}

// Len returns the number of entries in the archive.
func (a *Archive) Len() int {
	return a.idx.Len()
}

// Entry returns the metadata stored for name.
func (a *Archive) Entry(name string) (Entry, bool) {
	return a.idx.Lookup(name)
}

// ListFiles returns every virtual path in the archive, sorted.
func (a *Archive) ListFiles() []string {
	paths := a.idx.Paths()
	slices.Sort(paths)
	return paths
}

// ReadFile returns the decoded content of name.
//
// Encrypted entries require the 32-byte key used at pack time; key may be
// nil for archives without encrypted entries. Encrypted entries are
// authenticated before anything is returned, and compressed entries are
// decompressed after decryption and checked against their recorded size.
func (a *Archive) ReadFile(name string, key []byte) ([]byte, error) {
	if a.closed.Load() {
		return nil, &fs.PathError{Op: "readfile", Path: name, Err: fs.ErrClosed}
	}
	entry, ok := a.idx.Lookup(name)
	if !ok {
		return nil, &fs.PathError{Op: "readfile", Path: name, Err: fs.ErrNotExist}
	}

	content, err := a.decode(&entry, key)
	if err != nil {
		a.log().Debug("read failed", "path", name, "flags", entry.Flags, "error", err)
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return content, nil
}

// decode reads the stored blob of entry and undoes encryption, then compression.
func (a *Archive) decode(entry *Entry, key []byte) ([]byte, error) {
	if a.maxFileSize > 0 && (entry.Size > a.maxFileSize || entry.OriginalSize > a.maxFileSize) {
		return nil, fmt.Errorf("%w: entry exceeds %d bytes", ErrSizeOverflow, a.maxFileSize)
	}
	if entry.Encrypted() && key == nil {
		return nil, ErrMissingKey
	}

	data, err := a.store.readRange(entry.Offset, entry.Size)
	if err != nil {
		return nil, err
	}

	if entry.Encrypted() {
		s, err := seal.New(key)
		if err != nil {
			return nil, err
		}
		if data, err = s.Open(data, entry.Nonce, entry.Tag); err != nil {
			return nil, err
		}
	}

	if entry.Compressed() {
		dec, err := a.store.decoder()
		if err != nil {
			return nil, err
		}
		return dec.Decompress(data, entry.OriginalSize)
	}

	if uint64(len(data)) != entry.OriginalSize {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrIntegrity, entry.OriginalSize, len(data))
	}
	return data, nil
}

// StreamFile opens a seekable reader over the stored bytes of name.
//
// Only entries stored verbatim (neither encrypted nor compressed) can be
// streamed; use ReadFile for the others. The returned File holds a
// reference to the archive data and should be closed when done.
func (a *Archive) StreamFile(name string) (*File, error) {
	if a.closed.Load() {
		return nil, &fs.PathError{Op: "stream", Path: name, Err: fs.ErrClosed}
	}
	entry, ok := a.idx.Lookup(name)
	if !ok {
		return nil, &fs.PathError{Op: "stream", Path: name, Err: fs.ErrNotExist}
	}
	switch {
	case entry.Encrypted():
		return nil, &fs.PathError{Op: "stream", Path: name, Err: fmt.Errorf("%w: entry is encrypted", ErrNotStreamable)}
	case entry.Compressed():
		return nil, &fs.PathError{Op: "stream", Path: name, Err: fmt.Errorf("%w: entry is compressed", ErrNotStreamable)}
	}
	if _, _, err := a.store.bounds(entry.Offset, entry.Size); err != nil {
		return nil, &fs.PathError{Op: "stream", Path: name, Err: err}
	}
	return newFile(a.store.acquire(), entry), nil
}

// Clone returns an independent handle sharing the same data and index.
// Each clone must be closed separately.
func (a *Archive) Clone() *Archive {
	return &Archive{
		idx:         a.idx,
		store:       a.store.acquire(),
		maxFileSize: a.maxFileSize,
		logger:      a.logger,
	}
}

// Close releases this handle. The underlying mapping is unmapped once every
// clone and streamed File is closed as well. Close is idempotent.
func (a *Archive) Close() error {
	if !a.closed.CompareAndSwap(false, true) {
		return nil
	}
	if err := a.store.release(); err != nil {
		return fmt.Errorf("close archive: %w", err)
	}
	return nil
}
