package delta

import (
	"bytes"

	"github.com/arloliu/debo/internal/hash"
)

// matchBlockSize is the granularity of the coarse fallback matcher. Smaller
// blocks find more matches but cost more fingerprint lookups.
const matchBlockSize = 32

// blockOps computes a coarse copy/insert alignment by fingerprinting
// fixed-size blocks of the old value with xxHash64 and greedily matching
// them in the new value. It runs in O(len) bookkeeping memory regardless of
// how dissimilar the inputs are, which is why it backs up the optimal
// matcher when the latter hits its resource bounds.
//
// The worst case (no block of old appears in new) degrades to a single
// instruction inserting all of new.
func blockOps(oldValue, newValue []byte) []op {
	if len(oldValue) < matchBlockSize || len(newValue) < matchBlockSize {
		return []op{{kind: opInsert, start: 0, length: len(newValue)}}
	}

	// Fingerprint aligned blocks of old. Offsets of colliding fingerprints
	// are chained so a hash collision cannot cause a false match.
	blocks := make(map[uint64][]int, len(oldValue)/matchBlockSize)
	for i := 0; i+matchBlockSize <= len(oldValue); i += matchBlockSize {
		h := hash.Block(oldValue[i : i+matchBlockSize])
		blocks[h] = append(blocks[h], i)
	}

	var ops []op
	insertStart := 0
	j := 0
	for j+matchBlockSize <= len(newValue) {
		h := hash.Block(newValue[j : j+matchBlockSize])
		matched := false
		for _, i := range blocks[h] {
			if !bytes.Equal(oldValue[i:i+matchBlockSize], newValue[j:j+matchBlockSize]) {
				continue
			}

			// Extend the match byte-wise past the block boundary.
			length := matchBlockSize
			for i+length < len(oldValue) && j+length < len(newValue) &&
				oldValue[i+length] == newValue[j+length] {
				length++
			}

			if j > insertStart {
				ops = append(ops, op{kind: opInsert, start: insertStart, length: j - insertStart})
			}
			ops = append(ops, op{kind: opCopy, start: i, length: length})

			j += length
			insertStart = j
			matched = true

			break
		}
		if !matched {
			j++
		}
	}
	if insertStart < len(newValue) {
		ops = append(ops, op{kind: opInsert, start: insertStart, length: len(newValue) - insertStart})
	}

	return ops
}
