package delta

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/debo/errs"
)

// roundTrip generates a delta with the given limits and verifies that
// applying it to old reproduces new exactly.
func roundTrip(t *testing.T, old, new []byte, maxStorage, bailoutFactor int) []byte {
	t.Helper()

	d, err := GenerateWithLimits(old, new, maxStorage, bailoutFactor)
	require.NoError(t, err)
	require.NotNil(t, d)

	got, err := Apply(old, d)
	require.NoError(t, err)
	require.Equal(t, new, got)

	return d
}

func TestGenerate_Identical(t *testing.T) {
	d, err := Generate([]byte("same"), []byte("same"))
	require.NoError(t, err)
	require.Nil(t, d)

	d, err = Generate(nil, nil)
	require.NoError(t, err)
	require.Nil(t, d)

	// Empty and nil compare equal byte-wise.
	d, err = Generate([]byte{}, nil)
	require.NoError(t, err)
	require.Nil(t, d)
}

func TestGenerate_EmptyOld(t *testing.T) {
	d := roundTrip(t, nil, []byte("fresh value"), 0, 0)

	// With no baseline the delta is pure insertion, a couple of bytes of
	// framing over the raw value.
	require.Less(t, len(d), len("fresh value")+3)
}

func TestGenerate_EmptyNew(t *testing.T) {
	d, err := Generate([]byte("going away"), nil)
	require.NoError(t, err)
	require.NotNil(t, d, "a transition to empty is a real delta, not an identity")
	require.Empty(t, d)

	got, err := Apply([]byte("going away"), d)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestGenerate_SingleByteChange(t *testing.T) {
	old := []byte("ABCDEFG")
	new := []byte("ABCXEFG")

	d := roundTrip(t, old, new, 0, 0)

	// A one-byte substitution in a seven-byte value must beat sending the
	// full value.
	require.Less(t, len(d), len(new))
}

func TestGenerate_Append(t *testing.T) {
	old := []byte("the quick brown fox jumps over the lazy dog")
	new := append(append([]byte{}, old...), []byte(", again and again")...)

	d := roundTrip(t, old, new, 0, 0)
	require.Less(t, len(d), len(new))
}

func TestGenerate_Prepend(t *testing.T) {
	tail := []byte("the quick brown fox jumps over the lazy dog")
	new := append([]byte("breaking: "), tail...)

	d := roundTrip(t, tail, new, 0, 0)
	require.Less(t, len(d), len(new))
}

func TestGenerate_MidEdit(t *testing.T) {
	old := []byte("field1=aaaa;field2=bbbb;field3=cccc;field4=dddd")
	new := []byte("field1=aaaa;field2=XXXX;field3=cccc;field4=dddd")

	d := roundTrip(t, old, new, 0, 0)
	require.Less(t, len(d), len(new)/2)
}

func TestGenerate_Disjoint(t *testing.T) {
	old := []byte("aaaaaaaaaaaaaaaa")
	new := []byte("zzzzzzzzzzzzzzzz")

	// Nothing aligns; the delta degenerates to an insert of all of new and
	// may exceed it by the framing overhead.
	d := roundTrip(t, old, new, 0, 0)
	require.LessOrEqual(t, len(d), len(new)+3)
}

func TestGenerateWithLimits_Grid(t *testing.T) {
	base := []byte("header|0000000000111111111122222222223333333333|footer")
	changed := []byte("header|0000000000111111111199999999993333333333|footer")

	cases := []struct {
		name          string
		maxStorage    int
		bailoutFactor int
	}{
		{"defaults", 0, 0},
		{"tight storage", 1, 0},
		{"tight bailout", 0, 1},
		{"both tight", 1, 1},
		{"generous", 1 << 20, 100},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			// Whatever the limits, the delta must reconstruct exactly.
			roundTrip(t, base, changed, tc.maxStorage, tc.bailoutFactor)
		})
	}
}

func TestGenerateWithLimits_StorageForcesFallback(t *testing.T) {
	// Long shared runs around a large change, long enough that block
	// matching has aligned blocks to find.
	old := bytes.Repeat([]byte("0123456789abcdef"), 16)
	new := append(append([]byte{}, old[:64]...), bytes.Repeat([]byte("Z"), 100)...)
	new = append(new, old[128:]...)

	// One byte of allowed bookkeeping cannot hold a single snapshot, so
	// generation must degrade to block matching and still round-trip.
	d := roundTrip(t, old, new, 1, 0)
	require.NotEmpty(t, d)
}

func TestGenerateWithLimits_BailoutOnDissimilar(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	old := make([]byte, 4096)
	new := make([]byte, 4096)
	rng.Read(old)
	rng.Read(new)

	// Equal-length random inputs have a tiny theoretical minimum distance
	// but a huge real one; bailoutFactor=1 trips almost immediately.
	roundTrip(t, old, new, 0, 1)
}

func TestGenerate_RandomRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 200; i++ {
		old := make([]byte, rng.Intn(512))
		rng.Read(old)

		// Mutate old into new with a random mix of edits.
		new := append([]byte{}, old...)
		for e := rng.Intn(8); e > 0; e-- {
			switch rng.Intn(3) {
			case 0: // overwrite
				if len(new) > 0 {
					new[rng.Intn(len(new))] = byte(rng.Intn(256))
				}
			case 1: // insert
				at := rng.Intn(len(new) + 1)
				chunk := make([]byte, rng.Intn(32))
				rng.Read(chunk)
				new = append(new[:at], append(chunk, new[at:]...)...)
			case 2: // delete
				if len(new) > 1 {
					at := rng.Intn(len(new) - 1)
					end := at + 1 + rng.Intn(len(new)-at-1)
					new = append(new[:at], new[end:]...)
				}
			}
		}

		if bytes.Equal(old, new) {
			continue
		}

		roundTrip(t, old, new, 0, 0)
	}
}

func TestApply_EmptyDelta(t *testing.T) {
	got, err := Apply([]byte("old"), []byte{})
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestApply_Malformed(t *testing.T) {
	old := []byte("0123456789")

	tests := []struct {
		name  string
		delta []byte
	}{
		// 0x06 = copy of length 3; its offset varint is missing.
		{"missing copy offset", []byte{0x06}},
		// copy of length 3 at offset 8 reads past the old value.
		{"copy past end", []byte{0x06, 0x08}},
		// copy with a huge length whose end position wraps around.
		{"copy range overflow", []byte{0xfe, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x01, 0x00}},
		// 0x07 = insert of length 3; only two literal bytes follow.
		{"insert overruns delta", []byte{0x07, 0x61, 0x62}},
		// header 0 decodes to a zero-length instruction.
		{"zero length instruction", []byte{0x00}},
		// truncated varint: continuation bit set with no next byte.
		{"bad header varint", []byte{0x80}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Apply(old, tt.delta)
			require.ErrorIs(t, err, errs.ErrInvalidDelta)
			require.Nil(t, got)
		})
	}
}

func TestApply_AgainstWrongBaseline(t *testing.T) {
	old := []byte("ABCDEFG")
	new := []byte("ABCXEFG")

	d, err := Generate(old, new)
	require.NoError(t, err)

	// A structurally valid delta applied to a different baseline of the
	// same length yields wrong bytes, not an error. Callers own baseline
	// agreement.
	got, err := Apply([]byte("1234567"), d)
	require.NoError(t, err)
	require.NotEqual(t, new, got)
	require.Len(t, got, len(new))
}

func TestBlockOps_RoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	old := make([]byte, 256)
	rng.Read(old)

	// Rotate by an amount that is not block-aligned; matching must still
	// find the aligned runs via the byte-wise extension.
	new := append(append([]byte{}, old[100:]...), old[:100]...)

	ops := blockOps(old, new)
	require.NotEmpty(t, ops)

	got, err := Apply(old, encodeScript(new, ops))
	require.NoError(t, err)
	require.Equal(t, new, got)
}

func TestBlockOps_ShortInputs(t *testing.T) {
	old := []byte("short")
	new := []byte("other")

	ops := blockOps(old, new)
	require.Equal(t, []op{{kind: opInsert, start: 0, length: len(new)}}, ops)
}

func TestMyersOps_Verified(t *testing.T) {
	old := []byte("ABCABBA")
	new := []byte("CBABAC")

	ops, ok := myersOps(old, new, DefaultMaxStorage, DefaultBailoutFactor)
	require.True(t, ok)

	got, err := Apply(old, encodeScript(new, ops))
	require.NoError(t, err)
	require.Equal(t, new, got)
}

func BenchmarkGenerate_SmallEdit(b *testing.B) {
	old := bytes.Repeat([]byte("0123456789abcdef"), 64)
	new := append([]byte{}, old...)
	new[512] = 'Z'

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = Generate(old, new)
	}
}

func BenchmarkGenerate_Dissimilar(b *testing.B) {
	rng := rand.New(rand.NewSource(1))
	old := make([]byte, 8192)
	new := make([]byte, 8192)
	rng.Read(old)
	rng.Read(new)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = GenerateWithLimits(old, new, DefaultMaxStorage, 1)
	}
}

func BenchmarkApply(b *testing.B) {
	old := bytes.Repeat([]byte("0123456789abcdef"), 64)
	new := append([]byte{}, old...)
	new[512] = 'Z'
	d, _ := Generate(old, new)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = Apply(old, d)
	}
}
