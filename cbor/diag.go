package cbor

import (
	_cbor "github.com/fxamacker/cbor/v2"
)

// Diagnose renders encoded CBOR in the diagnostic notation of RFC 8949 §8,
// for logging and debugging. The input must contain exactly one item.
func Diagnose(data []byte) (string, error) {
	return _cbor.Diagnose(data)
}

// DiagnoseFirst renders the first item of encoded CBOR in diagnostic
// notation and returns the remaining bytes.
func DiagnoseFirst(data []byte) (string, []byte, error) {
	return _cbor.DiagnoseFirst(data)
}
