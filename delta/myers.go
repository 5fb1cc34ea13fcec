package delta

import "math"

// myersOps computes a minimal copy/insert alignment between old and new
// using the greedy O(ND) shortest-edit-script algorithm, keeping a per-step
// snapshot of the furthest-reaching endpoints for backtracking. Snapshots
// are windowed to the diagonals reachable at each step, so bookkeeping
// memory grows with the square of the edit distance, not with input size.
//
// Two bounds keep pathological inputs from consuming unbounded resources:
//
//   - maxStorage caps the bytes committed to endpoint snapshots.
//   - bailoutFactor caps the explored edit distance at a multiple of the
//     theoretical minimum (the length difference of the inputs), bounding
//     CPU time on large, mostly dissimilar payloads.
//
// When either bound trips, ok is false and the caller falls back to coarser
// matching; a bailout never produces an incorrect alignment, only none.
func myersOps(oldValue, newValue []byte, maxStorage, bailoutFactor int) (ops []op, ok bool) {
	n := len(oldValue)
	m := len(newValue)
	max := n + m
	if max == 0 {
		return nil, true
	}

	limit := max
	if b := bailoutLimit(n, m, bailoutFactor); b < limit {
		limit = b
	}

	offset := max
	v := make([]int, 2*max+1)

	// trace[d] holds the endpoints of the (d-1)-paths over the diagonal
	// window [traceLo[d]-offset, ...], which is all backtracking needs.
	var trace [][]int
	var traceLo []int
	storage := 0

	solved := false
	for d := 0; d <= limit; d++ {
		lo := offset - d - 1
		if lo < 0 {
			lo = 0
		}
		hi := offset + d + 2
		if hi > len(v) {
			hi = len(v)
		}
		snapshot := make([]int, hi-lo)
		copy(snapshot, v[lo:hi])
		trace = append(trace, snapshot)
		traceLo = append(traceLo, lo)

		storage += len(snapshot) * 8
		if storage > maxStorage {
			return nil, false
		}

		for k := -d; k <= d; k += 2 {
			var x int
			if k == -d || (k != d && v[offset+k-1] < v[offset+k+1]) {
				x = v[offset+k+1]
			} else {
				x = v[offset+k-1] + 1
			}
			y := x - k
			for x < n && y < m && oldValue[x] == newValue[y] {
				x++
				y++
			}
			v[offset+k] = x

			if x >= n && y >= m {
				solved = true
				break
			}
		}
		if solved {
			break
		}
	}
	if !solved {
		return nil, false
	}

	return backtrack(oldValue, newValue, trace, traceLo, offset)
}

// bailoutLimit returns the largest edit distance worth exploring: the
// theoretical minimum scaled by bailoutFactor.
func bailoutLimit(n, m, bailoutFactor int) int {
	minD := n - m
	if minD < 0 {
		minD = -minD
	}
	if minD == 0 {
		minD = 1
	}
	if minD > math.MaxInt/bailoutFactor {
		return math.MaxInt
	}

	return minD * bailoutFactor
}

// backtrack walks the endpoint snapshots from the solution back to the
// origin, emitting copy ops for diagonal runs and insert ops for downward
// moves (deletions from old need no instruction). Ops are produced in
// reverse and flipped before returning.
//
// Every copy op is verified against both inputs before returning; a
// mismatch reports !ok and the caller falls back, keeping the
// apply-reproduces-new invariant independent of this code path.
func backtrack(oldValue, newValue []byte, trace [][]int, traceLo []int, offset int) ([]op, bool) {
	x := len(oldValue)
	y := len(newValue)

	at := func(d, k int) int {
		idx := offset + k - traceLo[d]
		if idx < 0 || idx >= len(trace[d]) {
			return 0
		}
		return trace[d][idx]
	}

	var rev []op
	for d := len(trace) - 1; d >= 0 && (x > 0 || y > 0); d-- {
		k := x - y

		var prevK int
		if k == -d || (k != d && at(d, k-1) < at(d, k+1)) {
			prevK = k + 1
		} else {
			prevK = k - 1
		}
		prevX := at(d, prevK)
		prevY := prevX - prevK

		// Diagonal snake: matched bytes become one copy op.
		snake := 0
		for x > prevX && y > prevY {
			x--
			y--
			snake++
		}
		if snake > 0 {
			rev = append(rev, op{kind: opCopy, start: x, length: snake})
		}

		if d > 0 {
			if x == prevX && y == prevY+1 {
				// Downward move: one byte inserted from new.
				rev = append(rev, op{kind: opInsert, start: prevY, length: 1})
			} else if !(y == prevY && x == prevX+1) {
				// Neither a clean insertion nor a clean deletion: the
				// snapshots are inconsistent with the path.
				return nil, false
			}
			x = prevX
			y = prevY
		}
	}
	if x != 0 || y != 0 {
		return nil, false
	}

	// Flip into forward order and verify copies against both inputs.
	ops := make([]op, 0, len(rev))
	outPos := 0
	for i := len(rev) - 1; i >= 0; i-- {
		o := rev[i]
		if o.kind == opCopy {
			if o.start < 0 || o.start+o.length > len(oldValue) {
				return nil, false
			}
			for j := 0; j < o.length; j++ {
				if oldValue[o.start+j] != newValue[outPos+j] {
					return nil, false
				}
			}
		}
		outPos += o.length
		ops = append(ops, o)
	}
	if outPos != len(newValue) {
		return nil, false
	}

	return ops, true
}
