package delta

import (
	"bytes"
	"math"
)

const (
	// DefaultMaxStorage places no practical bound on the working memory
	// committed to alignment bookkeeping.
	DefaultMaxStorage = math.MaxInt

	// DefaultBailoutFactor bounds how far past the theoretically minimal
	// edit distance generation will search before degrading to coarse
	// matching. Smaller values abort sooner at the cost of larger deltas.
	DefaultBailoutFactor = 10000
)

// Generate computes a delta describing how to transform oldValue into
// newValue, using the default resource limits. It returns (nil, nil) when
// the values are identical, since there is nothing to send.
//
// The returned delta is only meaningful against the exact oldValue it was
// generated from. Generate never judges whether the delta is worth sending;
// callers compare its size against the full value.
func Generate(oldValue, newValue []byte) ([]byte, error) {
	return GenerateWithLimits(oldValue, newValue, DefaultMaxStorage, DefaultBailoutFactor)
}

// GenerateWithLimits is Generate with explicit resource limits.
//
// maxStorage caps the working memory (in bytes) committed to alignment
// bookkeeping and bailoutFactor bounds the search effort relative to the
// theoretical minimum. When either bound trips, generation degrades to a
// coarse block-matching pass rather than failing: the resulting delta may be
// larger than optimal but applying it always reconstructs newValue exactly.
// Non-positive limits select the defaults.
func GenerateWithLimits(oldValue, newValue []byte, maxStorage, bailoutFactor int) ([]byte, error) {
	if bytes.Equal(oldValue, newValue) {
		return nil, nil
	}
	if maxStorage <= 0 {
		maxStorage = DefaultMaxStorage
	}
	if bailoutFactor <= 0 {
		bailoutFactor = DefaultBailoutFactor
	}

	// Shared head and tail bytes never need aligning; trimming them first
	// keeps the quadratic search proportional to the changed region.
	prefix, suffix := trimCommon(oldValue, newValue)
	oldCore := oldValue[prefix : len(oldValue)-suffix]
	newCore := newValue[prefix : len(newValue)-suffix]

	var ops []op
	switch {
	case len(oldCore) == 0 && len(newCore) == 0:
		// Identical cores; only the shared head/tail remain.
	case len(oldCore) == 0:
		ops = []op{{kind: opInsert, start: 0, length: len(newCore)}}
	case len(newCore) == 0:
		// Pure deletion needs no instructions.
	default:
		var ok bool
		ops, ok = myersOps(oldCore, newCore, maxStorage, bailoutFactor)
		if !ok {
			ops = blockOps(oldCore, newCore)
		}
	}

	full := make([]op, 0, len(ops)+2)
	if prefix > 0 {
		full = append(full, op{kind: opCopy, start: 0, length: prefix})
	}
	for _, o := range ops {
		// Core offsets shift by the trimmed prefix in both values.
		o.start += prefix
		full = append(full, o)
	}
	if suffix > 0 {
		full = append(full, op{kind: opCopy, start: len(oldValue) - suffix, length: suffix})
	}

	return encodeScript(newValue, full), nil
}

// trimCommon returns the lengths of the common prefix and suffix of the two
// values, with the suffix measured on the bytes past the prefix so the two
// regions never overlap.
func trimCommon(oldValue, newValue []byte) (prefix, suffix int) {
	limit := len(oldValue)
	if len(newValue) < limit {
		limit = len(newValue)
	}

	for prefix < limit && oldValue[prefix] == newValue[prefix] {
		prefix++
	}
	for suffix < limit-prefix &&
		oldValue[len(oldValue)-1-suffix] == newValue[len(newValue)-1-suffix] {
		suffix++
	}

	return prefix, suffix
}
