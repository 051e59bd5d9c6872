package opseq

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/pierrec/lz4/v4"
)

// Trace decoding errors.
var (
	ErrBadMagic = errors.New("not an operation trace")
	ErrCorrupt  = errors.New("corrupt operation trace")
)

// Magic starts every trace file. The last byte is the format version.
var Magic = []byte{'Y', 'G', 'G', 'T', 1}

// Column storage modes.
const (
	columnRaw byte = iota
	columnLZ4
)

// lz4MaxRatio bounds the expansion of an LZ4 block, which caps the memory a
// corrupt length field can make Decode allocate.
const lz4MaxRatio = 255

// Encode writes entries as a trace: the magic, the entry count, the op column
// and the key column. Keys are stored as zig-zag deltas from their
// predecessor, so runs of nearby keys compress well. Each column is an LZ4
// block, or raw bytes when LZ4 cannot shrink it.
func Encode(w io.Writer, entries []Entry) error {
	buf := bytes.NewBuffer(make([]byte, 0, len(Magic)+binary.MaxVarintLen64))
	buf.Write(Magic)

	var scratch []byte

	scratch = binary.AppendUvarint(scratch, uint64(len(entries)))
	buf.Write(scratch)

	ops := make([]byte, len(entries))
	keys := make([]byte, 0, len(entries)*2)
	prev := int64(0)

	for i, e := range entries {
		ops[i] = byte(e.Op)

		k := int64(e.Key)
		keys = binary.AppendVarint(keys, k-prev)
		prev = k
	}

	writeColumn(buf, ops)
	writeColumn(buf, keys)

	_, err := w.Write(buf.Bytes())
	if err != nil {
		return fmt.Errorf("write trace: %w", err)
	}

	return nil
}

func writeColumn(buf *bytes.Buffer, raw []byte) {
	mode, data := columnRaw, raw

	if len(raw) > 0 {
		compressed := make([]byte, lz4.CompressBlockBound(len(raw)))

		written, err := lz4.CompressBlock(raw, compressed, nil)
		if err == nil && written > 0 && written < len(raw) {
			mode, data = columnLZ4, compressed[:written]
		}
	}

	var hdr []byte

	hdr = binary.AppendUvarint(hdr, uint64(len(raw)))
	hdr = append(hdr, mode)
	hdr = binary.AppendUvarint(hdr, uint64(len(data)))

	buf.Write(hdr)
	buf.Write(data)
}

// Decode reads a trace written by Encode.
func Decode(r io.Reader) ([]Entry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read trace: %w", err)
	}

	if !bytes.HasPrefix(data, Magic) {
		return nil, ErrBadMagic
	}

	d := decoder{data: data[len(Magic):]}

	count, err := d.uvarint()
	if err != nil {
		return nil, err
	}

	ops, err := d.column()
	if err != nil {
		return nil, err
	}

	keys, err := d.column()
	if err != nil {
		return nil, err
	}

	if uint64(len(ops)) != count {
		return nil, fmt.Errorf("%w: %d ops for %d entries", ErrCorrupt, len(ops), count)
	}

	if len(d.data) != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrCorrupt, len(d.data))
	}

	entries := make([]Entry, len(ops))
	prev := int64(0)

	for i, op := range ops {
		entries[i].Op = Op(op)
		if !entries[i].Op.valid() {
			return nil, fmt.Errorf("%w: entry %d has %s", ErrCorrupt, i, entries[i].Op)
		}

		delta, n := binary.Varint(keys)
		if n <= 0 {
			return nil, fmt.Errorf("%w: key %d", ErrCorrupt, i)
		}

		keys = keys[n:]
		prev += delta
		entries[i].Key = int(prev)
	}

	if len(keys) != 0 {
		return nil, fmt.Errorf("%w: %d unused key bytes", ErrCorrupt, len(keys))
	}

	return entries, nil
}

type decoder struct {
	data []byte
}

func (d *decoder) uvarint() (uint64, error) {
	v, n := binary.Uvarint(d.data)
	if n <= 0 {
		return 0, fmt.Errorf("%w: bad length field", ErrCorrupt)
	}

	d.data = d.data[n:]

	return v, nil
}

func (d *decoder) column() ([]byte, error) {
	rawLen, err := d.uvarint()
	if err != nil {
		return nil, err
	}

	if len(d.data) == 0 {
		return nil, fmt.Errorf("%w: missing column mode", ErrCorrupt)
	}

	mode := d.data[0]
	d.data = d.data[1:]

	dataLen, err := d.uvarint()
	if err != nil {
		return nil, err
	}

	if dataLen > uint64(len(d.data)) {
		return nil, fmt.Errorf("%w: column of %d bytes, %d left", ErrCorrupt, dataLen, len(d.data))
	}

	stored := d.data[:dataLen]
	d.data = d.data[dataLen:]

	switch mode {
	case columnRaw:
		if rawLen != dataLen {
			return nil, fmt.Errorf("%w: raw column length %d, want %d", ErrCorrupt, dataLen, rawLen)
		}

		return stored, nil
	case columnLZ4:
		if rawLen > dataLen*lz4MaxRatio {
			return nil, fmt.Errorf("%w: column claims %d bytes from %d", ErrCorrupt, rawLen, dataLen)
		}

		raw := make([]byte, rawLen)

		n, err := lz4.UncompressBlock(stored, raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
		}

		if uint64(n) != rawLen {
			return nil, fmt.Errorf("%w: column decompressed to %d bytes, want %d", ErrCorrupt, n, rawLen)
		}

		return raw, nil
	default:
		return nil, fmt.Errorf("%w: column mode %d", ErrCorrupt, mode)
	}
}
