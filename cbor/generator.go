package cbor

import (
	"fmt"
	"math"

	"github.com/x448/float16"

	"github.com/arloliu/debo/endian"
	"github.com/arloliu/debo/errs"
	"github.com/arloliu/debo/internal/pool"
)

// Generator builds a byte buffer of canonically encoded CBOR items.
//
// Every write appends the minimal-length encoding of its value; previously
// written bytes are never modified, so the buffer always holds a well-formed
// prefix of CBOR items (possibly with indefinite-length items still awaiting
// their break).
//
// The generator does not track open indefinite-length items: forgetting the
// matching WriteBreak produces malformed output and is the caller's
// responsibility, as is not writing into a generator after Reset.
type Generator struct {
	buf    *pool.ByteBuffer
	engine endian.EndianEngine
}

// NewGenerator creates an empty generator backed by a pooled buffer.
func NewGenerator() *Generator {
	return &Generator{
		buf:    pool.GetCodecBuffer(),
		engine: endian.GetBigEndianEngine(),
	}
}

// Bytes returns the encoded data. The slice aliases the generator's internal
// buffer and is invalidated by further writes or Reset.
func (g *Generator) Bytes() []byte {
	return g.buf.Bytes()
}

// Len returns the number of encoded bytes.
func (g *Generator) Len() int {
	return g.buf.Len()
}

// Reset returns the internal buffer to the pool. The generator must not be
// used afterwards.
func (g *Generator) Reset() {
	if g.buf != nil {
		pool.PutCodecBuffer(g.buf)
		g.buf = nil
	}
}

// writeHeader appends the initial byte and argument for the given major
// type, choosing the smallest of the immediate, 1, 2, 4 or 8 byte argument
// encodings that represents val.
func (g *Generator) writeHeader(major MajorType, val uint64) {
	mb := byte(major) << 5
	switch {
	case val <= addInfoSmallMax:
		g.buf.B = append(g.buf.B, mb|byte(val))
	case val <= math.MaxUint8:
		g.buf.B = append(g.buf.B, mb|addInfoUint8, byte(val))
	case val <= math.MaxUint16:
		g.buf.B = append(g.buf.B, mb|addInfoUint16)
		g.buf.B = g.engine.AppendUint16(g.buf.B, uint16(val))
	case val <= math.MaxUint32:
		g.buf.B = append(g.buf.B, mb|addInfoUint32)
		g.buf.B = g.engine.AppendUint32(g.buf.B, uint32(val))
	default:
		g.buf.B = append(g.buf.B, mb|addInfoUint64)
		g.buf.B = g.engine.AppendUint64(g.buf.B, val)
	}
}

// WriteUint encodes an unsigned integer.
func (g *Generator) WriteUint(val uint64) error {
	g.writeHeader(TypeUint, val)
	return nil
}

// WriteNegInt encodes a negative integer. val is the actual value and must
// be negative; it is stored as -1 - val per the CBOR convention.
func (g *Generator) WriteNegInt(val int64) error {
	if val >= 0 {
		return fmt.Errorf("%w: got %d", errs.ErrNotNegative, val)
	}

	g.writeHeader(TypeNegInt, uint64(-(val + 1)))

	return nil
}

// WriteInt encodes a signed integer, dispatching on its sign.
func (g *Generator) WriteInt(val int64) error {
	if val < 0 {
		return g.WriteNegInt(val)
	}

	return g.WriteUint(uint64(val))
}

// WriteByteString encodes a definite-length byte string.
func (g *Generator) WriteByteString(data []byte) error {
	g.writeHeader(TypeByteString, uint64(len(data)))
	g.buf.MustWrite(data)

	return nil
}

// WriteTextString encodes a definite-length text string.
func (g *Generator) WriteTextString(text string) error {
	g.writeHeader(TypeTextString, uint64(len(text)))
	g.buf.MustWrite([]byte(text))

	return nil
}

// WriteIndefiniteByteString begins an indefinite-length byte string. The
// caller must write definite-length byte string chunks followed by
// WriteBreak.
func (g *Generator) WriteIndefiniteByteString() error {
	g.buf.B = append(g.buf.B, byte(TypeByteString)<<5|addInfoIndefinite)
	return nil
}

// WriteIndefiniteTextString begins an indefinite-length text string. The
// caller must write definite-length text string chunks followed by
// WriteBreak.
func (g *Generator) WriteIndefiniteTextString() error {
	g.buf.B = append(g.buf.B, byte(TypeTextString)<<5|addInfoIndefinite)
	return nil
}

// WriteArray encodes an array start marker for size elements. Passing
// IndefiniteLength begins an indefinite-length array, which must later be
// terminated with WriteBreak.
func (g *Generator) WriteArray(size int64) error {
	return g.writeCollection(TypeArray, size)
}

// WriteMap encodes a map start marker for size key/value pairs. Passing
// IndefiniteLength begins an indefinite-length map, which must later be
// terminated with WriteBreak.
func (g *Generator) WriteMap(size int64) error {
	return g.writeCollection(TypeMap, size)
}

func (g *Generator) writeCollection(major MajorType, size int64) error {
	if size == IndefiniteLength {
		g.buf.B = append(g.buf.B, byte(major)<<5|addInfoIndefinite)
		return nil
	}
	if size < 0 {
		return fmt.Errorf("%w: %s size %d", errs.ErrInvalidLength, major, size)
	}

	g.writeHeader(major, uint64(size))

	return nil
}

// WriteTag encodes a semantic tag. The tagged item must be written next.
func (g *Generator) WriteTag(num uint64) error {
	g.writeHeader(TypeTag, num)
	return nil
}

// WriteFloat encodes a floating point value using the smallest IEEE width
// (16, 32 or 64 bit) that round-trips it exactly. NaN always encodes as the
// canonical half-precision NaN.
func (g *Generator) WriteFloat(val float64) error {
	if math.IsNaN(val) {
		g.buf.B = append(g.buf.B, 0xf9)
		g.buf.B = g.engine.AppendUint16(g.buf.B, 0x7e00)

		return nil
	}

	f32 := float32(val)
	if float64(f32) == val {
		if float16.PrecisionFromfloat32(f32) == float16.PrecisionExact {
			g.buf.B = append(g.buf.B, 0xf9)
			g.buf.B = g.engine.AppendUint16(g.buf.B, float16.Fromfloat32(f32).Bits())

			return nil
		}

		g.buf.B = append(g.buf.B, 0xfa)
		g.buf.B = g.engine.AppendUint32(g.buf.B, math.Float32bits(f32))

		return nil
	}

	g.buf.B = append(g.buf.B, 0xfb)
	g.buf.B = g.engine.AppendUint64(g.buf.B, math.Float64bits(val))

	return nil
}

// WriteBool encodes a boolean value.
func (g *Generator) WriteBool(val bool) error {
	if val {
		return g.WriteTrue()
	}

	return g.WriteFalse()
}

// WriteTrue encodes the CBOR true value.
func (g *Generator) WriteTrue() error {
	g.buf.B = append(g.buf.B, ValTrue)
	return nil
}

// WriteFalse encodes the CBOR false value.
func (g *Generator) WriteFalse() error {
	g.buf.B = append(g.buf.B, ValFalse)
	return nil
}

// WriteNull encodes the CBOR null value.
func (g *Generator) WriteNull() error {
	g.buf.B = append(g.buf.B, ValNull)
	return nil
}

// WriteUndefined encodes the CBOR undefined value.
func (g *Generator) WriteUndefined() error {
	g.buf.B = append(g.buf.B, ValUndefined)
	return nil
}

// WriteBreak encodes the break marker terminating an indefinite-length item.
func (g *Generator) WriteBreak() error {
	g.buf.B = append(g.buf.B, ValBreak)
	return nil
}
