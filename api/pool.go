// File: api/pool.go
// Author: momentics <momentics@gmail.com>
//
// Byte pooling contract used by components that recycle fixed-capacity
// buffers, such as the inflater's segmented input queue.

package api

// BytePool hands out byte slices of a fixed capacity and takes them back
// for reuse. Implementations decide whether Put actually retains the
// slice.
type BytePool interface {
	// Get returns a zero-length slice with the pool's fixed capacity.
	Get() []byte

	// Put returns a buffer to the pool. The caller must not use it
	// afterwards.
	Put(buf []byte)

	// Cap reports the fixed capacity of pooled buffers.
	Cap() int
}
