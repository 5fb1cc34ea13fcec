// Package endian provides byte order utilities for binary encoding and decoding.
//
// It combines the ByteOrder and AppendByteOrder interfaces from the standard
// encoding/binary package into a single EndianEngine interface so that codec
// code can both read fixed-width integers in place and append them to a
// growing buffer through one value.
//
// CBOR multi-byte headers are big-endian on the wire (RFC 7049 §3), so the
// cbor package always uses GetBigEndianEngine(). The engine abstraction is
// kept rather than hard-coding binary.BigEndian so that decode helpers can be
// exercised against both orders in tests.
package endian

import (
	"encoding/binary"
	"unsafe"
)

// EndianEngine combines ByteOrder and AppendByteOrder from encoding/binary.
//
// binary.BigEndian and binary.LittleEndian both satisfy it, so an
// EndianEngine is always compatible with code written against the standard
// library interfaces.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// CheckEndianness reports the host's native byte order.
func CheckEndianness() binary.ByteOrder {
	// 256 stored in memory: a little-endian host puts the zero byte first.
	var i uint16 = 0x0100
	b := (*[2]byte)(unsafe.Pointer(&i))
	if b[0] == 0x01 {
		return binary.BigEndian
	}

	return binary.LittleEndian
}

// IsNativeLittleEndian reports whether the host is little-endian.
func IsNativeLittleEndian() bool {
	return CheckEndianness() == binary.LittleEndian
}

// GetBigEndianEngine returns the big-endian engine, the network byte order
// used by CBOR headers.
func GetBigEndianEngine() EndianEngine {
	return binary.BigEndian
}

// GetLittleEndianEngine returns the little-endian engine.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}
