package vectorindex

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/kailas-cloud/circulars/internal/domain"
)

// MaxDim bounds the vector dimension accepted from an index blob.
const MaxDim = 1 << 16

// preallocValues caps the initial allocation; the slice grows as values are read.
const preallocValues = 1 << 20

// magic identifies the on-disk index blob format, version 1.
var magic = [8]byte{'C', 'I', 'R', 'C', 'I', 'D', 'X', '1'}

// WriteTo serializes the index: magic, uint32 dim, uint64 rows, then rows*dim
// little-endian float32 values.
func (ix *Index) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)

	header := make([]byte, 0, len(magic)+12)
	header = append(header, magic[:]...)
	header = binary.LittleEndian.AppendUint32(header, uint32(ix.dim))
	header = binary.LittleEndian.AppendUint64(header, uint64(ix.rows))

	n, err := bw.Write(header)
	written := int64(n)
	if err != nil {
		return written, fmt.Errorf("write header: %w", err)
	}

	buf := make([]byte, 4)
	for _, f := range ix.data {
		binary.LittleEndian.PutUint32(buf, math.Float32bits(f))
		n, err = bw.Write(buf)
		written += int64(n)
		if err != nil {
			return written, fmt.Errorf("write vectors: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return written, fmt.Errorf("flush index: %w", err)
	}
	return written, nil
}

// Read deserializes an index written by WriteTo.
func Read(r io.Reader) (*Index, error) {
	br := bufio.NewReader(r)

	var header [len(magic) + 12]byte
	if _, err := io.ReadFull(br, header[:]); err != nil {
		return nil, fmt.Errorf("%w: read index header: %w", domain.ErrDataConsistency, err)
	}
	if [8]byte(header[:8]) != magic {
		return nil, fmt.Errorf("%w: not an index blob", domain.ErrDataConsistency)
	}
	dim := int(binary.LittleEndian.Uint32(header[8:12]))
	rows := binary.LittleEndian.Uint64(header[12:20])
	if dim == 0 || rows == 0 {
		return nil, fmt.Errorf("%w: empty index (dim=%d rows=%d)", domain.ErrDataConsistency, dim, rows)
	}
	if dim > MaxDim {
		return nil, fmt.Errorf("%w: implausible dimension %d", domain.ErrDataConsistency, dim)
	}
	if rows > math.MaxInt32 || uint64(dim)*rows > math.MaxInt32 {
		return nil, fmt.Errorf("%w: implausible size %d x %d", domain.ErrDataConsistency, rows, dim)
	}

	total := dim * int(rows)
	data := make([]float32, 0, min(total, preallocValues))
	buf := make([]byte, 4)
	for i := 0; i < total; i++ {
		if _, err := io.ReadFull(br, buf); err != nil {
			return nil, fmt.Errorf("%w: truncated index at value %d: %w", domain.ErrDataConsistency, i, err)
		}
		data = append(data, math.Float32frombits(binary.LittleEndian.Uint32(buf)))
	}
	if _, err := br.ReadByte(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing bytes after index data", domain.ErrDataConsistency)
	}

	return &Index{dim: dim, rows: int(rows), data: data}, nil
}
