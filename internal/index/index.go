package index

import (
	"bufio"
	"fmt"
	"io"

	"github.com/meigma/brk/internal/brktype"
)

// Index is the parsed path to entry table of an archive.
//
// An Index is immutable after Load and safe for concurrent use.
type Index struct {
	header  Header
	entries map[string]brktype.Entry
}

// Load parses the header and every index record from src.
//
// Besides the record layout, Load checks that the index offset lies inside
// the source, that every blob lies inside the data region, and that paths
// are unique. Any violation fails the whole load.
func Load(src io.ReaderAt, size int64) (*Index, error) {
	if size < HeaderSize {
		return nil, fmt.Errorf("%w: archive is %d bytes, shorter than header", brktype.ErrFormat, size)
	}

	h, err := ReadHeader(io.NewSectionReader(src, 0, HeaderSize))
	if err != nil {
		return nil, err
	}
	if h.IndexOffset < HeaderSize || h.IndexOffset > uint64(size) {
		return nil, fmt.Errorf("%w: index offset %d outside [%d, %d]", brktype.ErrFormat, h.IndexOffset, HeaderSize, size)
	}

	indexLen := size - int64(h.IndexOffset) //nolint:gosec // bounded by size above
	hint := int(min(uint64(h.FileCount), uint64(indexLen)/uint64(RecordSize("")))) //nolint:gosec // small
	entries := make(map[string]brktype.Entry, hint)

	r := bufio.NewReader(io.NewSectionReader(src, int64(h.IndexOffset), indexLen)) //nolint:gosec // bounded above
	for i := range h.FileCount {
		e, err := ReadEntry(r)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		if err := checkBounds(&e, h.IndexOffset); err != nil {
			return nil, err
		}
		if _, dup := entries[e.Path]; dup {
			return nil, fmt.Errorf("%w: duplicate path %q", brktype.ErrFormat, e.Path)
		}
		entries[e.Path] = e
	}

	return &Index{header: h, entries: entries}, nil
}

// checkBounds verifies that the blob of e lies in [HeaderSize, indexOffset).
func checkBounds(e *brktype.Entry, indexOffset uint64) error {
	end, ok := e.End()
	if !ok || e.Offset < HeaderSize || end > indexOffset {
		return fmt.Errorf("%w: entry %q range [%d, +%d) outside data region", brktype.ErrFormat, e.Path, e.Offset, e.Size)
	}
	return nil
}

// Header returns the parsed archive header.
func (idx *Index) Header() Header {
	return idx.header
}

// Lookup returns the entry stored under path.
func (idx *Index) Lookup(path string) (brktype.Entry, bool) {
	e, ok := idx.entries[path]
	return e, ok
}

// Len returns the number of entries.
func (idx *Index) Len() int {
	return len(idx.entries)
}

// Paths returns every stored path in unspecified order.
func (idx *Index) Paths() []string {
	paths := make([]string, 0, len(idx.entries))
	for p := range idx.entries {
		paths = append(paths, p)
	}
	return paths
}
