package index

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"unicode/utf8"

	"github.com/meigma/brk/internal/brktype"
)

// entryTrailerSize is the size of the fixed fields that follow the path.
const entryTrailerSize = 8 + 8 + 8 + 4 + brktype.NonceSize + brktype.TagSize

// MaxPathLen is the longest path a record can hold.
const MaxPathLen = math.MaxUint16

// RecordSize returns the encoded size of a record for path.
func RecordSize(path string) int {
	return 2 + len(path) + entryTrailerSize
}

// ReadEntry reads one index record.
func ReadEntry(r io.Reader) (brktype.Entry, error) {
	var lenBuf [2]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return brktype.Entry{}, fmt.Errorf("%w: read path length: %v", brktype.ErrFormat, err)
	}
	pathLen := binary.LittleEndian.Uint16(lenBuf[:])

	pathBuf := make([]byte, pathLen)
	if _, err := io.ReadFull(r, pathBuf); err != nil {
		return brktype.Entry{}, fmt.Errorf("%w: read path (%d bytes): %v", brktype.ErrFormat, pathLen, err)
	}
	if !utf8.Valid(pathBuf) {
		return brktype.Entry{}, fmt.Errorf("%w: path is not valid UTF-8", brktype.ErrFormat)
	}

	var buf [entryTrailerSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return brktype.Entry{}, fmt.Errorf("%w: read entry %q: %v", brktype.ErrFormat, pathBuf, err)
	}

	e := brktype.Entry{
		Path:         string(pathBuf),
		Offset:       binary.LittleEndian.Uint64(buf[0:8]),
		Size:         binary.LittleEndian.Uint64(buf[8:16]),
		OriginalSize: binary.LittleEndian.Uint64(buf[16:24]),
		Flags:        binary.LittleEndian.Uint32(buf[24:28]),
	}
	copy(e.Nonce[:], buf[28:28+brktype.NonceSize])
	copy(e.Tag[:], buf[28+brktype.NonceSize:])
	return e, nil
}

// WriteEntry writes one index record for e.
func WriteEntry(w io.Writer, e *brktype.Entry) error {
	if len(e.Path) > MaxPathLen {
		return fmt.Errorf("%w: %d bytes", brktype.ErrPathTooLong, len(e.Path))
	}

	buf := make([]byte, 0, RecordSize(e.Path))
	buf = binary.LittleEndian.AppendUint16(buf, uint16(len(e.Path))) //nolint:gosec // bounded above
	buf = append(buf, e.Path...)
	buf = binary.LittleEndian.AppendUint64(buf, e.Offset)
	buf = binary.LittleEndian.AppendUint64(buf, e.Size)
	buf = binary.LittleEndian.AppendUint64(buf, e.OriginalSize)
	buf = binary.LittleEndian.AppendUint32(buf, e.Flags)
	buf = append(buf, e.Nonce[:]...)
	buf = append(buf, e.Tag[:]...)
	_, err := w.Write(buf)
	return err
}
