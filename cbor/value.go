package cbor

// Value is one decoded CBOR token as returned by Parser.NextValue.
//
// Only the payload field matching Type is meaningful. String payloads are
// copies owned by the Value; they remain valid after the parser or its input
// buffer are gone.
type Value struct {
	// InitialByte is the raw leading byte of the token's encoding. It
	// contains the major type plus additional info and is preserved so that
	// callers can compare against well-known encodings such as ValTrue,
	// ValNull or ValBreak.
	InitialByte byte

	// Type is the major type extracted from InitialByte.
	Type MajorType

	// Uint holds the value of a TypeUint token.
	Uint uint64

	// Int holds the decoded value of a TypeNegInt token, following CBOR's
	// -1 - n convention; it is always negative.
	Int int64

	// Bytes holds the payload of a definite-length TypeByteString or
	// TypeTextString token, or of one chunk of an indefinite-length string.
	Bytes []byte

	// Tag holds the tag number of a TypeTag token.
	Tag uint64

	// Float holds the value of a floating-point token; half and single
	// precision forms are widened to float64 on decode.
	Float float64

	// Size is the byte length of a string token, the element count of an
	// array token, or the pair count of a map token. It is IndefiniteLength
	// for tokens that open an indefinite-length item.
	Size int64
}

// IsBreak reports whether the token terminates an indefinite-length item.
func (v *Value) IsBreak() bool {
	return v.InitialByte == ValBreak
}

// IsNull reports whether the token is the CBOR null value.
func (v *Value) IsNull() bool {
	return v.InitialByte == ValNull
}

// IsUndefined reports whether the token is the CBOR undefined value.
func (v *Value) IsUndefined() bool {
	return v.InitialByte == ValUndefined
}

// IsBool reports whether the token is a CBOR boolean.
func (v *Value) IsBool() bool {
	return v.InitialByte == ValTrue || v.InitialByte == ValFalse
}

// Bool returns the boolean payload; it is only meaningful when IsBool
// reports true.
func (v *Value) Bool() bool {
	return v.InitialByte == ValTrue
}

// Text returns the payload of a text string token as a string.
func (v *Value) Text() string {
	return string(v.Bytes)
}
