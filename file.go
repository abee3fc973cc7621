package brk

import (
	"fmt"
	"io"
	"io/fs"
)

// File is a seekable reader over one verbatim archive entry.
//
// The cursor always stays within [0, Size]. Reading at the end returns
// 0, io.EOF. A File is not safe for concurrent Read and Seek calls;
// open separate Files instead, they are cheap.
type File struct {
	store  *store
	entry  Entry
	pos    int64
	closed bool
}

// Interface compliance.
var (
	_ io.ReadSeekCloser = (*File)(nil)
	_ io.ReaderAt       = (*File)(nil)
)

func newFile(s *store, entry Entry) *File {
	return &File{store: s, entry: entry}
}

// Name returns the virtual path of the entry.
func (f *File) Name() string {
	return f.entry.Path
}

// Entry returns a copy of the entry metadata.
func (f *File) Entry() Entry {
	return f.entry
}

// Size returns the entry length in bytes.
func (f *File) Size() int64 {
	return int64(f.entry.Size) //nolint:gosec // bounds checked by StreamFile
}

// Read implements io.Reader.
func (f *File) Read(p []byte) (int, error) {
	if f.closed {
		return 0, &fs.PathError{Op: "read", Path: f.entry.Path, Err: fs.ErrClosed}
	}
	n, err := f.readAt(p, f.pos)
	f.pos += int64(n)
	return n, err
}

// ReadAt implements io.ReaderAt relative to the start of the entry.
// It does not move the cursor.
func (f *File) ReadAt(p []byte, off int64) (int, error) {
	if f.closed {
		return 0, &fs.PathError{Op: "read", Path: f.entry.Path, Err: fs.ErrClosed}
	}
	if off < 0 {
		return 0, &fs.PathError{Op: "readat", Path: f.entry.Path, Err: fs.ErrInvalid}
	}
	return f.readAt(p, off)
}

func (f *File) readAt(p []byte, off int64) (int, error) {
	size := f.Size()
	if off >= size {
		return 0, io.EOF
	}
	short := false
	if remaining := size - off; int64(len(p)) > remaining {
		p = p[:remaining]
		short = true
	}
	n, err := f.store.src.ReadAt(p, int64(f.entry.Offset)+off) //nolint:gosec // bounds checked by StreamFile
	if n < len(p) {
		if err == nil || err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return n, err
	}
	if short {
		return n, io.EOF
	}
	return n, nil
}

// Seek implements io.Seeker.
//
// Seeking to exactly Size is allowed; any position below zero or past Size
// fails with ErrSeekOutOfBounds and leaves the cursor where it was.
func (f *File) Seek(offset int64, whence int) (int64, error) {
	if f.closed {
		return 0, &fs.PathError{Op: "seek", Path: f.entry.Path, Err: fs.ErrClosed}
	}

	var base int64
	switch whence {
	case io.SeekStart:
		base = 0
	case io.SeekCurrent:
		base = f.pos
	case io.SeekEnd:
		base = f.Size()
	default:
		return f.pos, &fs.PathError{Op: "seek", Path: f.entry.Path, Err: fmt.Errorf("invalid whence %d", whence)}
	}

	pos := base + offset
	if (offset > 0 && pos < base) || pos < 0 || pos > f.Size() {
		return f.pos, &fs.PathError{Op: "seek", Path: f.entry.Path, Err: fmt.Errorf("%w: offset %d whence %d", ErrSeekOutOfBounds, offset, whence)}
	}
	f.pos = pos
	return pos, nil
}

// Close releases the reference to the archive data. Close is idempotent.
func (f *File) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true
	return f.store.release()
}
