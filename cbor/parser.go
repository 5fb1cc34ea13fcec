package cbor

import (
	"fmt"
	"io"
	"math"

	"github.com/x448/float16"

	"github.com/arloliu/debo/endian"
	"github.com/arloliu/debo/errs"
)

// Parser is a pull-style parser over a single immutable CBOR buffer.
//
// The parser does not copy its input; the buffer must remain valid for the
// parser's lifetime. String payloads returned in Values are copies and do
// not alias the input.
//
// A Parser is not safe for concurrent use; each decode operation should own
// its instance.
type Parser struct {
	data   []byte
	pos    int
	stack  []frame
	engine endian.EndianEngine
}

// frame records one open container. Definite containers count down the
// items still expected; indefinite containers wait for a break.
type frame struct {
	major      MajorType
	indefinite bool
	remaining  uint64
}

// parseFn decodes the token starting at p.pos, whose initial byte has
// already been stored in v, and advances the cursor past it.
type parseFn func(p *Parser, v *Value) error

// jumpTable maps each possible initial byte to its decode routine, replacing
// a long switch over major type and additional info with O(1) dispatch.
var jumpTable = buildJumpTable()

// NewParser creates a parser over data. The data is not copied and must stay
// available for the lifetime of the parser.
func NewParser(data []byte) (*Parser, error) {
	if data == nil {
		return nil, errs.ErrNilInput
	}

	return &Parser{
		data:   data,
		engine: endian.GetBigEndianEngine(),
	}, nil
}

// AvailableBytes returns the number of unread bytes.
func (p *Parser) AvailableBytes() int {
	return len(p.data) - p.pos
}

// NextValue decodes and returns the next token, advancing the cursor exactly
// past its encoding. A clean end of input returns io.EOF; malformed or
// truncated input returns a decode error and leaves the cursor unchanged.
func (p *Parser) NextValue() (*Value, error) {
	if p.pos >= len(p.data) {
		return nil, io.EOF
	}

	ib := p.data[p.pos]
	if err := p.checkChunk(ib); err != nil {
		return nil, err
	}

	v := &Value{InitialByte: ib, Type: MajorType(ib >> 5)}
	if err := jumpTable[ib](p, v); err != nil {
		return nil, err
	}

	return v, nil
}

// checkChunk enforces RFC 7049 §2.2.2: the items between an
// indefinite-length string opener and its break must be definite-length
// strings of the same major type.
func (p *Parser) checkChunk(ib byte) error {
	if len(p.stack) == 0 {
		return nil
	}

	top := p.stack[len(p.stack)-1]
	if !top.indefinite || (top.major != TypeByteString && top.major != TypeTextString) {
		return nil
	}
	if ib == ValBreak {
		return nil
	}
	if MajorType(ib>>5) == top.major && ib&0x1f != addInfoIndefinite {
		return nil
	}

	return fmt.Errorf("%w: initial byte 0x%02x inside indefinite %s at offset %d",
		errs.ErrInvalidChunk, ib, top.major, p.pos)
}

// completeItem records that one data item finished, cascading the completion
// of enclosing definite-length containers whose counts are exhausted.
func (p *Parser) completeItem() {
	for len(p.stack) > 0 {
		top := &p.stack[len(p.stack)-1]
		if top.indefinite {
			return
		}

		top.remaining--
		if top.remaining > 0 {
			return
		}
		// The container itself is now a completed item in its parent.
		p.stack = p.stack[:len(p.stack)-1]
	}
}

func (p *Parser) push(f frame) {
	p.stack = append(p.stack, f)
}

// readArg reads the width-byte big-endian argument that follows the initial
// byte, without advancing the cursor.
func (p *Parser) readArg(width int) (uint64, error) {
	if p.pos+1+width > len(p.data) {
		return 0, fmt.Errorf("%w: %d-byte argument at offset %d", errs.ErrTruncatedInput, width, p.pos)
	}

	b := p.data[p.pos+1:]
	switch width {
	case 1:
		return uint64(b[0]), nil
	case 2:
		return uint64(p.engine.Uint16(b)), nil
	case 4:
		return uint64(p.engine.Uint32(b)), nil
	default:
		return p.engine.Uint64(b), nil
	}
}

// buildJumpTable constructs the 256-entry dispatch table. Initial bytes with
// reserved additional info (28-30), unassigned simple values and the
// unsupported simple-value extension byte (0xf8) all map to parseReserved.
func buildJumpTable() [256]parseFn {
	var t [256]parseFn
	for i := range t {
		t[i] = parseReserved
	}

	// Major type 0: unsigned integers.
	for b := 0x00; b <= 0x17; b++ {
		t[b] = parseUintImmediate
	}
	t[0x18] = parseUintN(1)
	t[0x19] = parseUintN(2)
	t[0x1a] = parseUintN(4)
	t[0x1b] = parseUintN(8)

	// Major type 1: negative integers.
	for b := 0x20; b <= 0x37; b++ {
		t[b] = parseNegIntImmediate
	}
	t[0x38] = parseNegIntN(1)
	t[0x39] = parseNegIntN(2)
	t[0x3a] = parseNegIntN(4)
	t[0x3b] = parseNegIntN(8)

	// Major types 2 and 3: byte strings and text strings.
	for _, base := range []int{0x40, 0x60} {
		for b := base; b <= base+0x17; b++ {
			t[b] = parseStringImmediate
		}
		t[base+0x18] = parseStringN(1)
		t[base+0x19] = parseStringN(2)
		t[base+0x1a] = parseStringN(4)
		t[base+0x1b] = parseStringN(8)
		t[base+0x1f] = parseStringIndefinite
	}

	// Major type 4: arrays.
	for b := 0x80; b <= 0x97; b++ {
		t[b] = parseArrayImmediate
	}
	t[0x98] = parseArrayN(1)
	t[0x99] = parseArrayN(2)
	t[0x9a] = parseArrayN(4)
	t[0x9b] = parseArrayN(8)
	t[0x9f] = parseCollectionIndefinite

	// Major type 5: maps.
	for b := 0xa0; b <= 0xb7; b++ {
		t[b] = parseMapImmediate
	}
	t[0xb8] = parseMapN(1)
	t[0xb9] = parseMapN(2)
	t[0xba] = parseMapN(4)
	t[0xbb] = parseMapN(8)
	t[0xbf] = parseCollectionIndefinite

	// Major type 6: semantic tags.
	for b := 0xc0; b <= 0xd7; b++ {
		t[b] = parseTagImmediate
	}
	t[0xd8] = parseTagN(1)
	t[0xd9] = parseTagN(2)
	t[0xda] = parseTagN(4)
	t[0xdb] = parseTagN(8)

	// Major type 7: simple values, floats and break.
	t[ValFalse] = parseSimple
	t[ValTrue] = parseSimple
	t[ValNull] = parseSimple
	t[ValUndefined] = parseSimple
	t[0xf9] = parseFloat16
	t[0xfa] = parseFloat32
	t[0xfb] = parseFloat64
	t[ValBreak] = parseBreak

	return t
}

func parseReserved(p *Parser, v *Value) error {
	return fmt.Errorf("%w: initial byte 0x%02x at offset %d", errs.ErrReservedEncoding, v.InitialByte, p.pos)
}

func parseUintImmediate(p *Parser, v *Value) error {
	v.Uint = uint64(v.InitialByte & 0x1f)
	p.pos++
	p.completeItem()

	return nil
}

func parseUintN(width int) parseFn {
	return func(p *Parser, v *Value) error {
		arg, err := p.readArg(width)
		if err != nil {
			return err
		}

		v.Uint = arg
		p.pos += 1 + width
		p.completeItem()

		return nil
	}
}

func parseNegIntImmediate(p *Parser, v *Value) error {
	v.Int = -1 - int64(v.InitialByte&0x1f)
	p.pos++
	p.completeItem()

	return nil
}

func parseNegIntN(width int) parseFn {
	return func(p *Parser, v *Value) error {
		arg, err := p.readArg(width)
		if err != nil {
			return err
		}
		if arg > math.MaxInt64 {
			return fmt.Errorf("%w: -1 - %d at offset %d", errs.ErrIntegerOverflow, arg, p.pos)
		}

		v.Int = -1 - int64(arg)
		p.pos += 1 + width
		p.completeItem()

		return nil
	}
}

func parseStringImmediate(p *Parser, v *Value) error {
	return p.readStringPayload(v, uint64(v.InitialByte&0x1f), 0)
}

func parseStringN(width int) parseFn {
	return func(p *Parser, v *Value) error {
		n, err := p.readArg(width)
		if err != nil {
			return err
		}

		return p.readStringPayload(v, n, width)
	}
}

// readStringPayload copies the n payload bytes that follow a definite-length
// string header of the given argument width.
func (p *Parser) readStringPayload(v *Value, n uint64, width int) error {
	head := 1 + width
	if n > uint64(len(p.data)-p.pos-head) {
		return fmt.Errorf("%w: %d payload bytes at offset %d", errs.ErrTruncatedInput, n, p.pos)
	}

	start := p.pos + head
	v.Bytes = make([]byte, n)
	copy(v.Bytes, p.data[start:start+int(n)])
	v.Size = int64(n)

	p.pos = start + int(n)
	p.completeItem()

	return nil
}

func parseStringIndefinite(p *Parser, v *Value) error {
	v.Size = IndefiniteLength
	p.pos++
	p.push(frame{major: v.Type, indefinite: true})

	return nil
}

func parseArrayImmediate(p *Parser, v *Value) error {
	return p.openArray(v, uint64(v.InitialByte&0x1f), 0)
}

func parseArrayN(width int) parseFn {
	return func(p *Parser, v *Value) error {
		n, err := p.readArg(width)
		if err != nil {
			return err
		}

		return p.openArray(v, n, width)
	}
}

func (p *Parser) openArray(v *Value, n uint64, width int) error {
	if n > math.MaxInt64 {
		return fmt.Errorf("%w: array of %d items at offset %d", errs.ErrIntegerOverflow, n, p.pos)
	}

	v.Size = int64(n)
	p.pos += 1 + width
	if n == 0 {
		p.completeItem()
		return nil
	}
	p.push(frame{major: TypeArray, remaining: n})

	return nil
}

func parseMapImmediate(p *Parser, v *Value) error {
	return p.openMap(v, uint64(v.InitialByte&0x1f), 0)
}

func parseMapN(width int) parseFn {
	return func(p *Parser, v *Value) error {
		n, err := p.readArg(width)
		if err != nil {
			return err
		}

		return p.openMap(v, n, width)
	}
}

func (p *Parser) openMap(v *Value, n uint64, width int) error {
	if n > math.MaxUint64/2 || n > math.MaxInt64 {
		return fmt.Errorf("%w: map of %d pairs at offset %d", errs.ErrIntegerOverflow, n, p.pos)
	}

	v.Size = int64(n)
	p.pos += 1 + width
	if n == 0 {
		p.completeItem()
		return nil
	}
	// A map of n pairs holds 2n items.
	p.push(frame{major: TypeMap, remaining: 2 * n})

	return nil
}

func parseCollectionIndefinite(p *Parser, v *Value) error {
	v.Size = IndefiniteLength
	p.pos++
	p.push(frame{major: v.Type, indefinite: true})

	return nil
}

func parseTagImmediate(p *Parser, v *Value) error {
	v.Tag = uint64(v.InitialByte & 0x1f)
	p.pos++
	// The tag and its single enclosed item form one data item.
	p.push(frame{major: TypeTag, remaining: 1})

	return nil
}

func parseTagN(width int) parseFn {
	return func(p *Parser, v *Value) error {
		arg, err := p.readArg(width)
		if err != nil {
			return err
		}

		v.Tag = arg
		p.pos += 1 + width
		p.push(frame{major: TypeTag, remaining: 1})

		return nil
	}
}

func parseSimple(p *Parser, v *Value) error {
	p.pos++
	p.completeItem()

	return nil
}

func parseFloat16(p *Parser, v *Value) error {
	arg, err := p.readArg(2)
	if err != nil {
		return err
	}

	v.Float = float64(float16.Frombits(uint16(arg)).Float32())
	p.pos += 3
	p.completeItem()

	return nil
}

func parseFloat32(p *Parser, v *Value) error {
	arg, err := p.readArg(4)
	if err != nil {
		return err
	}

	v.Float = float64(math.Float32frombits(uint32(arg)))
	p.pos += 5
	p.completeItem()

	return nil
}

func parseFloat64(p *Parser, v *Value) error {
	arg, err := p.readArg(8)
	if err != nil {
		return err
	}

	v.Float = math.Float64frombits(arg)
	p.pos += 9
	p.completeItem()

	return nil
}

func parseBreak(p *Parser, v *Value) error {
	if len(p.stack) == 0 || !p.stack[len(p.stack)-1].indefinite {
		return fmt.Errorf("%w: at offset %d", errs.ErrUnexpectedBreak, p.pos)
	}

	p.pos++
	// The break closes the innermost indefinite container, which in turn
	// completes one item in its parent.
	p.stack = p.stack[:len(p.stack)-1]
	p.completeItem()

	return nil
}
