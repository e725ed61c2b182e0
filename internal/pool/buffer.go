// Package pool provides size-classed buffer reuse for object transfers.
//
// Download tasks copy every object body through an in-memory buffer before
// writing it to the staging tree. Pooling those buffers keeps a busy mirror
// run from allocating one per object.
package pool

import (
	"sync"
)

const (
	// SmallBufferSize is the capacity of small pooled buffers (4KB).
	SmallBufferSize = 4 * 1024
	// MediumBufferSize is the capacity of medium pooled buffers (64KB).
	MediumBufferSize = 64 * 1024
	// LargeBufferSize is the capacity of large pooled buffers (1MB).
	LargeBufferSize = 1024 * 1024
)

// BufferPool manages reusable byte buffers in three size classes.
type BufferPool struct {
	small  *sync.Pool
	medium *sync.Pool
	large  *sync.Pool
}

// NewBufferPool creates a buffer pool with the default size classes.
func NewBufferPool() *BufferPool {
	newPool := func(size int) *sync.Pool {
		return &sync.Pool{
			New: func() interface{} {
				buf := make([]byte, size)
				return &buf
			},
		}
	}
	return &BufferPool{
		small:  newPool(SmallBufferSize),
		medium: newPool(MediumBufferSize),
		large:  newPool(LargeBufferSize),
	}
}

// GetBuffer returns a zero-length buffer with capacity for at least size
// bytes. Requests above LargeBufferSize allocate a fresh buffer instead of
// drawing from a pool. The caller returns the buffer with PutBuffer.
func (bp *BufferPool) GetBuffer(size int) []byte {
	var p *sync.Pool
	switch {
	case size <= SmallBufferSize:
		p = bp.small
	case size <= MediumBufferSize:
		p = bp.medium
	case size <= LargeBufferSize:
		p = bp.large
	default:
		return make([]byte, 0, size)
	}
	bufPtr := p.Get().(*[]byte)
	*bufPtr = (*bufPtr)[:0]
	return *bufPtr
}

// PutBuffer returns a buffer to the pool matching its capacity. Buffers
// whose capacity matches no size class are dropped rather than pooled.
func (bp *BufferPool) PutBuffer(buf []byte) {
	buf = buf[:0]
	switch cap(buf) {
	case SmallBufferSize:
		bp.small.Put(&buf)
	case MediumBufferSize:
		bp.medium.Put(&buf)
	case LargeBufferSize:
		bp.large.Put(&buf)
	}
}

var globalBufferPool = NewBufferPool()

// GetBuffer returns a buffer from the global pool for the specified size.
func GetBuffer(size int) []byte {
	return globalBufferPool.GetBuffer(size)
}

// PutBuffer returns a buffer to the global pool.
func PutBuffer(buf []byte) {
	globalBufferPool.PutBuffer(buf)
}
