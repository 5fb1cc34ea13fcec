// Package errs defines the sentinel errors returned by debo packages.
//
// All errors are wrapped with fmt.Errorf("%w: ...") at the point of failure,
// so callers can test categories with errors.Is while still getting
// contextual detail in the message.
package errs

import "errors"

// CBOR parser errors.
var (
	// ErrNilInput indicates a parser was created over a nil byte slice.
	ErrNilInput = errors.New("debo: input data is nil")

	// ErrTruncatedInput indicates the input ended inside a token's encoding.
	// Callers that stream data may treat this as retryable once more bytes
	// arrive; it is never returned for a clean end of input (io.EOF).
	ErrTruncatedInput = errors.New("debo: truncated CBOR input")

	// ErrUnexpectedBreak indicates a break (0xff) outside any open
	// indefinite-length item.
	ErrUnexpectedBreak = errors.New("debo: unexpected CBOR break")

	// ErrReservedEncoding indicates an initial byte whose additional info is
	// reserved (28-30) or an unassigned simple value encoding.
	ErrReservedEncoding = errors.New("debo: reserved CBOR encoding")

	// ErrInvalidChunk indicates a chunk of an indefinite-length string that
	// is not a definite-length string of the same major type.
	ErrInvalidChunk = errors.New("debo: invalid indefinite string chunk")

	// ErrIntegerOverflow indicates a negative integer whose magnitude does
	// not fit the signed 64-bit decoded representation.
	ErrIntegerOverflow = errors.New("debo: integer exceeds 64-bit signed range")
)

// CBOR generator errors.
var (
	// ErrInvalidLength indicates a length below the IndefiniteLength
	// sentinel was passed to a string, array or map writer.
	ErrInvalidLength = errors.New("debo: invalid CBOR item length")

	// ErrNotNegative indicates WriteNegInt was called with a value >= 0.
	ErrNotNegative = errors.New("debo: negative integer required")
)

// Delta engine errors.
var (
	// ErrInvalidDelta indicates a delta that is structurally invalid or was
	// not generated against the supplied old value.
	ErrInvalidDelta = errors.New("debo: invalid delta")
)
