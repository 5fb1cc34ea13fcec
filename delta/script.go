package delta

import (
	"encoding/binary"
	"fmt"

	"github.com/arloliu/debo/errs"
	"github.com/arloliu/debo/internal/pool"
)

// Edit script wire format (opaque to consumers):
//
//	instruction := header(uvarint) payload
//	header      := length<<1 | kind
//	kind 0      := copy; payload is the source offset in the old value (uvarint)
//	kind 1      := insert; payload is length literal bytes
//
// A zero-length script reconstructs an empty value. The script has no
// meaning independent of the old value it was generated against; Apply
// validates structure and copy ranges but cannot detect a mismatched
// baseline.
const (
	opCopy   byte = 0x0
	opInsert byte = 0x1
)

// op is one alignment instruction before serialization. start indexes into
// the old value for copies and into the new value for inserts.
type op struct {
	kind   byte
	start  int
	length int
}

// encodeScript serializes ops, coalescing adjacent instructions of the same
// kind. Insert payloads are taken from newValue.
func encodeScript(newValue []byte, ops []op) []byte {
	buf := pool.GetDeltaBuffer()
	defer pool.PutDeltaBuffer(buf)

	var pending *op
	flush := func() {
		if pending == nil || pending.length == 0 {
			pending = nil
			return
		}
		header := uint64(pending.length)<<1 | uint64(pending.kind)
		buf.B = binary.AppendUvarint(buf.B, header)
		if pending.kind == opCopy {
			buf.B = binary.AppendUvarint(buf.B, uint64(pending.start))
		} else {
			buf.MustWrite(newValue[pending.start : pending.start+pending.length])
		}
		pending = nil
	}

	for i := range ops {
		o := ops[i]
		if o.length == 0 {
			continue
		}
		if pending != nil && pending.kind == o.kind && pending.start+pending.length == o.start {
			pending.length += o.length
			continue
		}
		flush()
		cur := o
		pending = &cur
	}
	flush()

	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())

	return out
}

// Apply reconstructs a new value by running a delta's edit script against
// the old value it was generated from. A zero-length delta yields an empty
// value.
func Apply(oldValue, delta []byte) ([]byte, error) {
	out := make([]byte, 0, len(oldValue))

	pos := 0
	for pos < len(delta) {
		header, n := binary.Uvarint(delta[pos:])
		if n <= 0 {
			return nil, fmt.Errorf("%w: bad instruction header at %d", errs.ErrInvalidDelta, pos)
		}
		pos += n

		kind := byte(header & 1)
		length := header >> 1
		if length == 0 {
			return nil, fmt.Errorf("%w: zero-length instruction at %d", errs.ErrInvalidDelta, pos-n)
		}

		if kind == opCopy {
			offset, n := binary.Uvarint(delta[pos:])
			if n <= 0 {
				return nil, fmt.Errorf("%w: bad copy offset at %d", errs.ErrInvalidDelta, pos)
			}
			pos += n

			end := offset + length
			if end < offset || end > uint64(len(oldValue)) {
				return nil, fmt.Errorf("%w: copy range [%d,%d) outside old value of %d bytes",
					errs.ErrInvalidDelta, offset, end, len(oldValue))
			}
			out = append(out, oldValue[offset:end]...)

			continue
		}

		if length > uint64(len(delta)-pos) {
			return nil, fmt.Errorf("%w: insert of %d bytes overruns delta", errs.ErrInvalidDelta, length)
		}
		out = append(out, delta[pos:pos+int(length)]...)
		pos += int(length)
	}

	return out, nil
}
