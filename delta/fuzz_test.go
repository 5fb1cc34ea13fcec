package delta

import (
	"bytes"
	"testing"
)

// FuzzGenerateApply checks the round-trip invariant on arbitrary input
// pairs: whatever the inputs, applying the generated delta to old must
// reproduce new exactly.
func FuzzGenerateApply(f *testing.F) {
	f.Add([]byte("ABCDEFG"), []byte("ABCXEFG"))
	f.Add([]byte(""), []byte("fresh"))
	f.Add([]byte("gone"), []byte(""))
	f.Add([]byte("same"), []byte("same"))
	f.Add(bytes.Repeat([]byte("ab"), 200), bytes.Repeat([]byte("ba"), 200))

	f.Fuzz(func(t *testing.T, old, new []byte) {
		d, err := Generate(old, new)
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if d == nil {
			if !bytes.Equal(old, new) {
				t.Fatal("nil delta for differing inputs")
			}

			return
		}

		got, err := Apply(old, d)
		if err != nil {
			t.Fatalf("apply: %v", err)
		}
		if !bytes.Equal(got, new) {
			t.Fatalf("round trip mismatch: got %d bytes, want %d", len(got), len(new))
		}
	})
}

// FuzzApply feeds arbitrary bytes as a delta. Malformed input must be
// rejected with an error, never a panic or out-of-range access.
func FuzzApply(f *testing.F) {
	f.Add([]byte("0123456789"), []byte{0x06, 0x00})
	f.Add([]byte("0123456789"), []byte{0x07, 0x61, 0x62, 0x63})
	f.Add([]byte(""), []byte{0x00})
	f.Add([]byte("x"), []byte{0x80})

	f.Fuzz(func(t *testing.T, old, delta []byte) {
		got, err := Apply(old, delta)
		if err != nil && got != nil {
			t.Fatal("non-nil result alongside an error")
		}
	})
}
