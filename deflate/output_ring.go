// File: deflate/output_ring.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package deflate

// outputRing is a fixed-capacity circular byte buffer. The inflater
// writes decompressed data into its free spans and defers further
// decompression once it fills ("choking"); draining frees space and
// decompression resumes.
type outputRing struct {
	buf  []byte
	head int // read position
	size int // bytes stored
}

func newOutputRing(capacity int) outputRing {
	return outputRing{buf: make([]byte, capacity)}
}

func (r *outputRing) full() bool { return r.size == len(r.buf) }

func (r *outputRing) stored() int { return r.size }

// writableSpan returns the largest contiguous free region. Empty only
// when the ring is full.
func (r *outputRing) writableSpan() []byte {
	free := len(r.buf) - r.size
	if free == 0 {
		return nil
	}
	start := (r.head + r.size) % len(r.buf)
	end := start + free
	if end > len(r.buf) {
		end = len(r.buf)
	}
	return r.buf[start:end]
}

// commit marks n bytes of the last writable span as stored.
func (r *outputRing) commit(n int) {
	r.size += n
}

// read drains up to len(p) bytes into p, in FIFO order.
func (r *outputRing) read(p []byte) int {
	total := 0
	for total < len(p) && r.size > 0 {
		end := r.head + r.size
		if end > len(r.buf) {
			end = len(r.buf)
		}
		n := copy(p[total:], r.buf[r.head:end])
		r.head = (r.head + n) % len(r.buf)
		r.size -= n
		total += n
	}
	return total
}
