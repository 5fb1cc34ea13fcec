package pool

import (
	"io"
	"sync"
)

const (
	// CodecBufferDefaultSize is the initial capacity of buffers handed to
	// CBOR generators. Most topic values are far smaller than this.
	CodecBufferDefaultSize = 1024 * 4 // 4KiB

	// CodecBufferMaxThreshold is the largest buffer the codec pool will
	// retain; anything bigger is dropped to avoid pinning memory after a
	// single oversized value.
	CodecBufferMaxThreshold = 1024 * 64 // 64KiB

	// DeltaBufferDefaultSize is the initial capacity of buffers used to
	// accumulate delta edit scripts.
	DeltaBufferDefaultSize = 1024 * 16 // 16KiB

	// DeltaBufferMaxThreshold is the largest buffer the delta pool retains.
	DeltaBufferMaxThreshold = 1024 * 256 // 256KiB
)

// ByteBuffer is a growable byte slice with explicit length, shared by the
// CBOR generator and the delta engine as their append target.
type ByteBuffer struct {
	// B is the underlying byte slice.
	B []byte
}

// NewByteBuffer creates a ByteBuffer with the given initial capacity.
func NewByteBuffer(defaultSize int) *ByteBuffer {
	return &ByteBuffer{
		B: make([]byte, 0, defaultSize),
	}
}

// Bytes returns the underlying byte slice.
func (bb *ByteBuffer) Bytes() []byte {
	return bb.B
}

// Len returns the number of bytes written.
func (bb *ByteBuffer) Len() int {
	return len(bb.B)
}

// Cap returns the capacity of the underlying slice.
func (bb *ByteBuffer) Cap() int {
	return cap(bb.B)
}

// Reset empties the buffer but keeps the allocated memory for reuse.
func (bb *ByteBuffer) Reset() {
	bb.B = bb.B[:0]
}

// MustWrite appends data, growing the buffer if necessary.
func (bb *ByteBuffer) MustWrite(data []byte) {
	bb.B = append(bb.B, data...)
}

// WriteByte appends a single byte.
func (bb *ByteBuffer) WriteByte(c byte) error {
	bb.B = append(bb.B, c)
	return nil
}

// Grow ensures the buffer can hold requiredBytes more bytes without
// reallocating. Small buffers grow by the codec default size; larger ones by
// 25% of capacity to balance memory use against reallocation cost.
func (bb *ByteBuffer) Grow(requiredBytes int) {
	available := cap(bb.B) - len(bb.B)
	if available >= requiredBytes {
		return
	}

	growBy := CodecBufferDefaultSize
	if cap(bb.B) > 4*CodecBufferDefaultSize {
		growBy = cap(bb.B) / 4
	}
	if growBy < requiredBytes {
		growBy = requiredBytes
	}

	newBuf := make([]byte, len(bb.B), len(bb.B)+growBy)
	copy(newBuf, bb.B)
	bb.B = newBuf
}

// Write implements io.Writer.
func (bb *ByteBuffer) Write(data []byte) (int, error) {
	bb.B = append(bb.B, data...)
	return len(data), nil
}

// WriteTo implements io.WriterTo.
func (bb *ByteBuffer) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(bb.B)
	return int64(n), err
}

// ByteBufferPool is a sync.Pool of ByteBuffers with an optional maximum
// retained capacity.
type ByteBufferPool struct {
	pool         sync.Pool
	maxThreshold int
}

// NewByteBufferPool creates a pool whose buffers start at defaultSize bytes.
// Buffers whose capacity exceeds maxThreshold are discarded on Put.
func NewByteBufferPool(defaultSize int, maxThreshold int) *ByteBufferPool {
	return &ByteBufferPool{
		pool: sync.Pool{
			New: func() any {
				return NewByteBuffer(defaultSize)
			},
		},
		maxThreshold: maxThreshold,
	}
}

// Get retrieves an empty ByteBuffer from the pool.
func (bbp *ByteBufferPool) Get() *ByteBuffer {
	bb, _ := bbp.pool.Get().(*ByteBuffer)
	return bb
}

// Put returns a ByteBuffer to the pool for reuse.
func (bbp *ByteBufferPool) Put(bb *ByteBuffer) {
	if bb == nil {
		return
	}
	if bbp.maxThreshold > 0 && cap(bb.B) > bbp.maxThreshold {
		return
	}

	bb.Reset()
	bbp.pool.Put(bb)
}

var (
	codecDefaultPool = NewByteBufferPool(CodecBufferDefaultSize, CodecBufferMaxThreshold)
	deltaDefaultPool = NewByteBufferPool(DeltaBufferDefaultSize, DeltaBufferMaxThreshold)
)

// GetCodecBuffer retrieves a ByteBuffer from the shared codec pool.
func GetCodecBuffer() *ByteBuffer {
	return codecDefaultPool.Get()
}

// PutCodecBuffer returns a ByteBuffer to the shared codec pool.
func PutCodecBuffer(bb *ByteBuffer) {
	codecDefaultPool.Put(bb)
}

// GetDeltaBuffer retrieves a ByteBuffer from the shared delta pool.
func GetDeltaBuffer() *ByteBuffer {
	return deltaDefaultPool.Get()
}

// PutDeltaBuffer returns a ByteBuffer to the shared delta pool.
func PutDeltaBuffer(bb *ByteBuffer) {
	deltaDefaultPool.Put(bb)
}
