package brk

import (
	"bytes"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"golang.org/x/exp/mmap"

	"github.com/meigma/brk/internal/codec"
)

// Source provides random access to the raw archive bytes.
//
// Implementations must be safe for concurrent ReadAt calls.
type Source interface {
	io.ReaderAt
	Size() int64
}

// bytesSource serves an immutable in-memory archive.
type bytesSource struct {
	r *bytes.Reader
}

func newBytesSource(data []byte) *bytesSource {
	return &bytesSource{r: bytes.NewReader(data)}
}

// ReadAt implements io.ReaderAt.
func (s *bytesSource) ReadAt(p []byte, off int64) (int, error) {
	return s.r.ReadAt(p, off)
}

// Size returns the archive length.
func (s *bytesSource) Size() int64 {
	return s.r.Size()
}

// mmapSource serves a read-only memory-mapped archive file.
type mmapSource struct {
	m *mmap.ReaderAt
}

func openMmapSource(path string) (*mmapSource, error) {
	m, err := mmap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("mmap %s: %w", path, err)
	}
	return &mmapSource{m: m}, nil
}

// ReadAt implements io.ReaderAt.
func (s *mmapSource) ReadAt(p []byte, off int64) (int, error) {
	return s.m.ReadAt(p, off)
}

// Size returns the mapped length.
func (s *mmapSource) Size() int64 {
	return int64(s.m.Len())
}

// Close unmaps the file.
func (s *mmapSource) Close() error {
	return s.m.Close()
}

// store is the reference-counted backing shared by an Archive, its clones
// and every File streamed from them. The source is released when the last
// reference is dropped.
type store struct {
	src     Source
	closeFn func() error
	refs    atomic.Int64

	decOnce sync.Once
	dec     *codec.Decoder
	decErr  error
	decOpts []codec.DecoderOption
}

func newStore(src Source, closeFn func() error, decOpts []codec.DecoderOption) *store {
	s := &store{src: src, closeFn: closeFn, decOpts: decOpts}
	s.refs.Store(1)
	return s
}

// acquire adds a reference.
func (s *store) acquire() *store {
	s.refs.Add(1)
	return s
}

// release drops a reference and frees resources when none remain.
func (s *store) release() error {
	if s.refs.Add(-1) != 0 {
		return nil
	}
	if s.dec != nil {
		s.dec.Close()
	}
	if s.closeFn != nil {
		return s.closeFn()
	}
	return nil
}

// decoder returns the shared zstd decoder, creating it on first use.
func (s *store) decoder() (*codec.Decoder, error) {
	s.decOnce.Do(func() {
		s.dec, s.decErr = codec.NewDecoder(s.decOpts...)
	})
	return s.dec, s.decErr
}

// readRange copies length bytes at off out of the source.
func (s *store) readRange(off, length uint64) ([]byte, error) {
	start, end, err := s.bounds(off, length)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, end-start)
	n, err := s.src.ReadAt(buf, start)
	if n < len(buf) {
		if err == nil || err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return buf, nil
}

// bounds converts a stored range to source offsets and checks it fits.
func (s *store) bounds(off, length uint64) (start, end int64, err error) {
	size := uint64(s.src.Size()) //nolint:gosec // Size is non-negative
	if off > size || length > size-off {
		return 0, 0, fmt.Errorf("%w: range [%d, +%d) exceeds archive size %d", ErrSizeOverflow, off, length, size)
	}
	return int64(off), int64(off + length), nil //nolint:gosec // bounded by size
}
