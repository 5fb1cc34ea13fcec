package debo

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/debo/cbor"
)

// encodeReading builds a small CBOR document of the kind a topic update
// carries: {"id": id, "value": val}.
func encodeReading(t *testing.T, id uint64, val float64) []byte {
	t.Helper()

	g := cbor.NewGenerator()
	defer g.Reset()

	require.NoError(t, g.WriteMap(2))
	require.NoError(t, g.WriteTextString("id"))
	require.NoError(t, g.WriteUint(id))
	require.NoError(t, g.WriteTextString("value"))
	require.NoError(t, g.WriteFloat(val))

	out := make([]byte, g.Len())
	copy(out, g.Bytes())

	return out
}

func TestUpdater_FirstUpdateIsFull(t *testing.T) {
	u, err := NewUpdater()
	require.NoError(t, err)

	value := encodeReading(t, 1, 20.5)
	payload, err := u.Prepare("sensors/cpu", value)
	require.NoError(t, err)
	require.Equal(t, PayloadFull, payload.Kind)
	require.Equal(t, value, payload.Data)

	cached, ok := u.CachedValue("sensors/cpu")
	require.True(t, ok)
	require.Equal(t, value, cached)
}

func TestUpdater_UnchangedValue(t *testing.T) {
	u, err := NewUpdater()
	require.NoError(t, err)

	value := encodeReading(t, 1, 20.5)
	_, err = u.Prepare("sensors/cpu", value)
	require.NoError(t, err)

	payload, err := u.Prepare("sensors/cpu", value)
	require.NoError(t, err)
	require.Equal(t, PayloadUnchanged, payload.Kind)
	require.Nil(t, payload.Data)

	// The baseline survives, so a later change still produces a delta.
	cached, ok := u.CachedValue("sensors/cpu")
	require.True(t, ok)
	require.Equal(t, value, cached)
}

func TestUpdater_DeltaFlow(t *testing.T) {
	u, err := NewUpdater()
	require.NoError(t, err)

	// A larger document so a small change clearly wins as a delta.
	g := cbor.NewGenerator()
	defer g.Reset()
	require.NoError(t, g.WriteMap(1))
	require.NoError(t, g.WriteTextString("payload"))
	require.NoError(t, g.WriteTextString("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"))
	v1 := append([]byte{}, g.Bytes()...)

	v2 := append([]byte{}, v1...)
	v2[len(v2)-1] = 'b'

	_, err = u.Prepare("topic", v1)
	require.NoError(t, err)

	payload, err := u.Prepare("topic", v2)
	require.NoError(t, err)
	require.Equal(t, PayloadDelta, payload.Kind)
	require.Less(t, len(payload.Data), len(v2))

	// The receiver reconstructs v2 from its copy of v1.
	got, err := ApplyDelta(v1, payload.Data)
	require.NoError(t, err)
	require.Equal(t, v2, got)

	// The cache now holds v2 as the next baseline.
	cached, ok := u.CachedValue("topic")
	require.True(t, ok)
	require.Equal(t, v2, cached)
}

func TestUpdater_SmallValueFallsBackToFull(t *testing.T) {
	u, err := NewUpdater()
	require.NoError(t, err)

	// Two tiny values with nothing in common: the edit script cannot beat
	// resending the value.
	_, err = u.Prepare("t", []byte{0x01})
	require.NoError(t, err)

	payload, err := u.Prepare("t", []byte{0xf5})
	require.NoError(t, err)
	require.Equal(t, PayloadFull, payload.Kind)
	require.Equal(t, []byte{0xf5}, payload.Data)
}

func TestUpdater_InvalidateForcesFull(t *testing.T) {
	u, err := NewUpdater()
	require.NoError(t, err)

	v1 := encodeReading(t, 1, 1.0)
	v2 := encodeReading(t, 1, 2.0)

	_, err = u.Prepare("sensors/cpu", v1)
	require.NoError(t, err)
	_, err = u.Prepare("sensors/gpu", v1)
	require.NoError(t, err)

	u.Invalidate("sensors/cpu")

	_, ok := u.CachedValue("sensors/cpu")
	require.False(t, ok)
	_, ok = u.CachedValue("sensors/gpu")
	require.True(t, ok)

	// The invalidated path starts over with a full value.
	payload, err := u.Prepare("sensors/cpu", v2)
	require.NoError(t, err)
	require.Equal(t, PayloadFull, payload.Kind)
}

func TestUpdater_InvalidateSelector(t *testing.T) {
	u, err := NewUpdater()
	require.NoError(t, err)

	v := encodeReading(t, 1, 1.0)
	for _, path := range []string{"a/b", "a/c", "a/b/d", "x/y"} {
		_, err = u.Prepare(path, v)
		require.NoError(t, err)
	}

	u.Invalidate(">a")

	for _, path := range []string{"a/b", "a/c", "a/b/d"} {
		_, ok := u.CachedValue(path)
		require.False(t, ok, "path %q should be invalidated", path)
	}
	_, ok := u.CachedValue("x/y")
	require.True(t, ok)
}

func TestUpdater_Clear(t *testing.T) {
	u, err := NewUpdater()
	require.NoError(t, err)

	v := encodeReading(t, 1, 1.0)
	_, err = u.Prepare("a", v)
	require.NoError(t, err)

	u.Clear()

	_, ok := u.CachedValue("a")
	require.False(t, ok)
}

func TestUpdater_Options(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		u, err := NewUpdater(WithMaxStorage(1<<20), WithBailoutFactor(100))
		require.NoError(t, err)
		require.NotNil(t, u)
	})

	t.Run("invalid max storage", func(t *testing.T) {
		u, err := NewUpdater(WithMaxStorage(0))
		require.Error(t, err)
		require.Nil(t, u)
	})

	t.Run("invalid bailout factor", func(t *testing.T) {
		u, err := NewUpdater(WithBailoutFactor(-1))
		require.Error(t, err)
		require.Nil(t, u)
	})
}

func TestUpdater_TightLimitsStillCorrect(t *testing.T) {
	u, err := NewUpdater(WithMaxStorage(1), WithBailoutFactor(1))
	require.NoError(t, err)

	v1 := encodeReading(t, 7, 123.456)
	v2 := encodeReading(t, 7, 654.321)

	_, err = u.Prepare("t", v1)
	require.NoError(t, err)

	payload, err := u.Prepare("t", v2)
	require.NoError(t, err)

	// Degraded matching may choose either kind; whichever it is, the
	// receiver must end up with v2.
	switch payload.Kind {
	case PayloadDelta:
		got, err := ApplyDelta(v1, payload.Data)
		require.NoError(t, err)
		require.Equal(t, v2, got)
	case PayloadFull:
		require.Equal(t, v2, payload.Data)
	default:
		t.Fatalf("unexpected payload kind %s", payload.Kind)
	}
}

func TestUpdater_ConcurrentPaths(t *testing.T) {
	u, err := NewUpdater()
	require.NoError(t, err)

	const workers = 16
	const updates = 50

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			path := fmt.Sprintf("load/%d", w)
			var prev []byte
			for i := 0; i < updates; i++ {
				value := []byte(fmt.Sprintf("worker %d update %d with some padding to make deltas viable", w, i))

				payload, err := u.Prepare(path, value)
				if err != nil {
					t.Errorf("prepare: %v", err)
					return
				}

				switch payload.Kind {
				case PayloadFull:
					if string(payload.Data) != string(value) {
						t.Errorf("full payload mismatch for %s", path)
						return
					}
				case PayloadDelta:
					got, err := ApplyDelta(prev, payload.Data)
					if err != nil || string(got) != string(value) {
						t.Errorf("delta did not reconstruct for %s: %v", path, err)
						return
					}
				case PayloadUnchanged:
					t.Errorf("unexpected unchanged payload for %s", path)
					return
				}
				prev = value
			}
		}(w)
	}
	wg.Wait()
}

func TestGenerateDelta_TopLevel(t *testing.T) {
	old := []byte("ABCDEFG")
	new := []byte("ABCXEFG")

	d, err := GenerateDelta(old, new)
	require.NoError(t, err)
	require.Less(t, len(d), len(new))

	got, err := ApplyDelta(old, d)
	require.NoError(t, err)
	require.Equal(t, new, got)
}

func TestPayloadKind_String(t *testing.T) {
	require.Equal(t, "Full", PayloadFull.String())
	require.Equal(t, "Delta", PayloadDelta.String())
	require.Equal(t, "Unchanged", PayloadUnchanged.String())
	require.Equal(t, "Unknown", PayloadKind(0).String())
}
