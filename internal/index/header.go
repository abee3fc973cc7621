package index

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/meigma/brk/internal/brktype"
)

const (
	// HeaderSize is the fixed size of the archive header in bytes.
	HeaderSize = 20

	// Version is the format version written by this package.
	Version = 1
)

// Magic identifies a BRK archive.
var Magic = [4]byte{'B', 'R', 'K', '1'}

// Header is the fixed archive header.
type Header struct {
	// Version is the format version. It is stored but not validated.
	Version uint32

	// FileCount is the number of index records.
	FileCount uint32

	// IndexOffset is the absolute offset where the index begins.
	IndexOffset uint64
}

// ReadHeader reads and validates the 20-byte header.
func ReadHeader(r io.Reader) (Header, error) {
	var buf [HeaderSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return Header{}, fmt.Errorf("%w: read header: %v", brktype.ErrFormat, err)
	}
	if [4]byte(buf[:4]) != Magic {
		return Header{}, fmt.Errorf("%w: bad magic %q", brktype.ErrFormat, buf[:4])
	}
	return Header{
		Version:     binary.LittleEndian.Uint32(buf[4:8]),
		FileCount:   binary.LittleEndian.Uint32(buf[8:12]),
		IndexOffset: binary.LittleEndian.Uint64(buf[12:20]),
	}, nil
}

// WriteHeader writes h in wire order.
func WriteHeader(w io.Writer, h Header) error {
	buf := make([]byte, 0, HeaderSize)
	buf = append(buf, Magic[:]...)
	buf = binary.LittleEndian.AppendUint32(buf, h.Version)
	buf = binary.LittleEndian.AppendUint32(buf, h.FileCount)
	buf = binary.LittleEndian.AppendUint64(buf, h.IndexOffset)
	_, err := w.Write(buf)
	return err
}
