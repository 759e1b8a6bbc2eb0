// File: pool/bytepool.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package pool

import "sync"

// BytePool recycles byte slices of one fixed capacity. Slices are handed
// out with length zero; callers append into them up to Cap().
type BytePool struct {
	size int
	p    sync.Pool
}

// NewBytePool creates a pool of buffers with the given capacity.
func NewBytePool(size int) *BytePool {
	if size <= 0 {
		panic("pool: buffer size must be positive")
	}
	bp := &BytePool{size: size}
	bp.p.New = func() any {
		buf := make([]byte, 0, size)
		return &buf
	}
	return bp
}

// Get returns a zero-length buffer with the pool's capacity.
func (b *BytePool) Get() []byte {
	return (*(b.p.Get().(*[]byte)))[:0]
}

// Put returns a buffer to the pool. Foreign or resized slices are
// dropped so the fixed-capacity invariant holds.
func (b *BytePool) Put(buf []byte) {
	if cap(buf) != b.size {
		return
	}
	buf = buf[:0]
	b.p.Put(&buf)
}

// Cap reports the fixed capacity of pooled buffers.
func (b *BytePool) Cap() int {
	return b.size
}
