// Package delta generates and applies binary deltas: compact edit scripts
// that transform one byte value into another, so repeated updates to the
// same logical value can be transmitted as small diffs instead of full
// payloads.
//
// Generation computes a shortest-edit-script alignment bounded by two
// resource controls, a working-memory cap and a bailout factor; when either
// trips, it degrades to coarse block matching instead of failing. Whatever
// path produced the delta, applying it to the original value reconstructs
// the new value byte for byte:
//
//	d, _ := delta.Generate(oldValue, newValue)
//	if d == nil {
//	    // values are identical, nothing to send
//	}
//	restored, err := delta.Apply(oldValue, d)
//	// restored == newValue
//
// The delta byte layout is internal; consumers pass deltas through as
// opaque buffers between Generate and Apply. Apply validates the script's
// structure, but pairing a delta with a different old value than it was
// generated against is undetectable in general and remains caller
// discipline.
package delta
