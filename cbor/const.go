package cbor

// MajorType identifies one of the eight top-level CBOR item categories
// (RFC 7049 §2.1), encoded in the top three bits of an item's initial byte.
type MajorType uint8

const (
	TypeUint       MajorType = 0 // unsigned integer
	TypeNegInt     MajorType = 1 // negative integer
	TypeByteString MajorType = 2 // byte string
	TypeTextString MajorType = 3 // UTF-8 text string
	TypeArray      MajorType = 4 // array of items
	TypeMap        MajorType = 5 // map of item pairs
	TypeTag        MajorType = 6 // semantic tag
	TypeFloat      MajorType = 7 // float, simple value or break
)

func (t MajorType) String() string {
	switch t {
	case TypeUint:
		return "uint"
	case TypeNegInt:
		return "negint"
	case TypeByteString:
		return "bytes"
	case TypeTextString:
		return "text"
	case TypeArray:
		return "array"
	case TypeMap:
		return "map"
	case TypeTag:
		return "tag"
	case TypeFloat:
		return "float"
	default:
		return "unknown"
	}
}

// IndefiniteLength is the sentinel passed to collection writers to begin an
// indefinite-length item, and the Size reported by the parser for tokens
// that open one.
const IndefiniteLength int64 = -1

// Additional-info values in the low five bits of an initial byte.
const (
	addInfoSmallMax   = 23 // value encoded directly in the initial byte
	addInfoUint8      = 24 // one-byte value follows
	addInfoUint16     = 25 // two-byte value follows
	addInfoUint32     = 26 // four-byte value follows
	addInfoUint64     = 27 // eight-byte value follows
	addInfoIndefinite = 31 // indefinite length, or break in major type 7
)

// Well-known initial bytes, useful for comparing against Value.InitialByte.
const (
	ValFalse     byte = 0xf4
	ValTrue      byte = 0xf5
	ValNull      byte = 0xf6
	ValUndefined byte = 0xf7
	ValBreak     byte = 0xff
)
