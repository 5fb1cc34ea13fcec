// Package debo provides the data-plane codec for a pub/sub topic-update
// client: a self-describing binary serialization format (CBOR), a binary
// delta engine that expresses repeated updates to the same logical value as
// small edit scripts, and a per-session cache of last-sent values that
// gives those deltas their baseline.
//
// # Core Packages
//
//   - cbor: pull-style parser and canonical, append-only generator for the
//     CBOR wire format (RFC 7049)
//   - delta: Generate/Apply for binary edit scripts, bounded by a working
//     memory cap and a bailout factor
//   - cache: concurrency-safe per-session map of last-sent values with
//     selector-based invalidation
//
// # Basic Usage
//
// Sending updates for a topic path through an Updater:
//
//	updater, _ := debo.NewUpdater()
//
//	payload, _ := updater.Prepare("sensors/cpu", encodedValue)
//	switch payload.Kind {
//	case debo.PayloadFull:
//	    // first update (or delta not worth it): send payload.Data verbatim
//	case debo.PayloadDelta:
//	    // send payload.Data as a delta against the previous value
//	case debo.PayloadUnchanged:
//	    // value identical to the last one sent: nothing to transmit
//	}
//
// A receiver that holds the previous value reconstructs the new one with
// debo.ApplyDelta and hands the resulting bytes to a cbor.Parser.
//
// This package deliberately stops at raw bytes: value structure above the
// codec (JSON text, record schemas) and everything transport-related
// (framing, compression, encryption, sessions) belong to its consumers.
package debo

import (
	"fmt"

	"github.com/arloliu/debo/cache"
	"github.com/arloliu/debo/delta"
	"github.com/arloliu/debo/internal/options"
)

// PayloadKind describes what Prepare decided to transmit.
type PayloadKind uint8

const (
	PayloadFull      PayloadKind = 0x1 // PayloadFull carries the complete encoded value.
	PayloadDelta     PayloadKind = 0x2 // PayloadDelta carries an edit script against the last sent value.
	PayloadUnchanged PayloadKind = 0x3 // PayloadUnchanged means the value did not change; send nothing.
)

func (k PayloadKind) String() string {
	switch k {
	case PayloadFull:
		return "Full"
	case PayloadDelta:
		return "Delta"
	case PayloadUnchanged:
		return "Unchanged"
	default:
		return "Unknown"
	}
}

// Payload is the outcome of preparing one topic update.
type Payload struct {
	// Data is the bytes to transmit; nil for PayloadUnchanged.
	Data []byte
	// Kind states whether Data is a full value or a delta.
	Kind PayloadKind
}

// Updater prepares topic updates for one session, deciding per update
// whether to send the full value or a delta against the cached last-sent
// value. It is safe for concurrent use; updates to different paths proceed
// in parallel, while updates to the same path are serialized.
type Updater struct {
	cache         *cache.Cache
	maxStorage    int
	bailoutFactor int
}

// UpdaterOption represents a functional option for configuring an Updater.
type UpdaterOption = options.Option[*Updater]

// WithMaxStorage caps the working memory, in bytes, that delta generation
// may commit to alignment bookkeeping before degrading to coarser matching.
func WithMaxStorage(n int) UpdaterOption {
	return options.New(func(u *Updater) error {
		if n <= 0 {
			return fmt.Errorf("max storage must be positive, got %d", n)
		}
		u.maxStorage = n

		return nil
	})
}

// WithBailoutFactor bounds how hard delta generation searches for an
// optimal edit script before settling for a coarser one. Smaller values
// abort sooner at the cost of larger deltas.
func WithBailoutFactor(n int) UpdaterOption {
	return options.New(func(u *Updater) error {
		if n <= 0 {
			return fmt.Errorf("bailout factor must be positive, got %d", n)
		}
		u.bailoutFactor = n

		return nil
	})
}

// NewUpdater creates an Updater with its own empty update-value cache.
func NewUpdater(opts ...UpdaterOption) (*Updater, error) {
	u := &Updater{
		cache:         cache.New(),
		maxStorage:    delta.DefaultMaxStorage,
		bailoutFactor: delta.DefaultBailoutFactor,
	}
	if err := options.Apply(u, opts...); err != nil {
		return nil, err
	}

	return u, nil
}

// Prepare decides how to transmit value as the next update for path.
//
// With no cached baseline the full value is chosen. Otherwise a delta is
// generated against the baseline and chosen only when strictly smaller than
// the full value. The cache is updated with value in both cases, under the
// per-path lock, so concurrent Prepares for one path never generate a delta
// against a stale baseline. An identical value yields PayloadUnchanged and
// leaves the cache as it was.
func (u *Updater) Prepare(path string, value []byte) (Payload, error) {
	var payload Payload
	var genErr error

	u.cache.Update(path, func(old []byte, ok bool) ([]byte, bool) {
		if !ok {
			payload = Payload{Data: value, Kind: PayloadFull}
			return value, true
		}

		d, err := delta.GenerateWithLimits(old, value, u.maxStorage, u.bailoutFactor)
		if err != nil {
			genErr = err
			payload = Payload{Data: value, Kind: PayloadFull}

			return value, true
		}
		if d == nil {
			payload = Payload{Kind: PayloadUnchanged}
			return old, true
		}

		if len(d) < len(value) {
			payload = Payload{Data: d, Kind: PayloadDelta}
		} else {
			payload = Payload{Data: value, Kind: PayloadFull}
		}

		return value, true
	})

	return payload, genErr
}

// CachedValue returns the last value recorded for path, if any. The
// returned slice is a non-owning view; callers must not modify it.
func (u *Updater) CachedValue(path string) ([]byte, bool) {
	return u.cache.Get(path)
}

// Invalidate removes every cached value whose path matches the topic
// selector. The next update for an affected path transmits a full value.
func (u *Updater) Invalidate(selector string) {
	u.cache.Remove(selector)
}

// Clear empties the update-value cache.
func (u *Updater) Clear() {
	u.cache.Clear()
}

// GenerateDelta computes a delta transforming oldValue into newValue with
// default resource limits. It returns (nil, nil) when the values are
// identical. See the delta package for control over the limits.
func GenerateDelta(oldValue, newValue []byte) ([]byte, error) {
	return delta.Generate(oldValue, newValue)
}

// ApplyDelta applies a delta to the value it was generated against,
// reconstructing the new value.
func ApplyDelta(oldValue, d []byte) ([]byte, error) {
	return delta.Apply(oldValue, d)
}
