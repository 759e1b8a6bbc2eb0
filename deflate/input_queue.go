// File: deflate/input_queue.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Chained bounded input staging for the inflater: a deque of
// fixed-capacity pooled segments with cursors into the first and last
// block. A single growable buffer would defeat the memory bound under
// adversarial input, so segments are recycled through the pool as soon
// as they drain.

package deflate

import (
	"io"

	"github.com/eapache/queue"

	"github.com/momentics/wscodec/api"
)

// inputQueue implements flate's source contract (io.Reader plus
// io.ByteReader, so the flate reader does not wrap it in bufio and
// byte accounting stays exact).
type inputQueue struct {
	pool    api.BytePool
	sealed  *queue.Queue // full segments awaiting consumption, FIFO
	tail    []byte       // open segment still being appended, nil if none
	headOff int          // read offset into the current front segment
	enq     int64        // total bytes ever enqueued
	cons    int64        // total bytes ever consumed
}

func newInputQueue(pool api.BytePool) inputQueue {
	return inputQueue{pool: pool, sealed: queue.New()}
}

// enqueue copies p into the chain, sealing segments as they fill.
func (q *inputQueue) enqueue(p []byte) {
	for len(p) > 0 {
		if q.tail == nil || len(q.tail) == cap(q.tail) {
			if q.tail != nil {
				q.sealed.Add(q.tail)
			}
			q.tail = q.pool.Get()
		}
		n := copy(q.tail[len(q.tail):cap(q.tail)], p)
		q.tail = q.tail[:len(q.tail)+n]
		p = p[n:]
		q.enq += int64(n)
	}
}

// front returns the segment the read cursor is in, or nil when empty.
func (q *inputQueue) front() (seg []byte, isSealed bool) {
	if q.sealed.Length() > 0 {
		return q.sealed.Peek().([]byte), true
	}
	if q.tail != nil && q.headOff < len(q.tail) {
		return q.tail, false
	}
	return nil, false
}

// advance retires the front segment once fully consumed. Open tail
// segments are only recycled when full, since appends may still land.
func (q *inputQueue) advance(seg []byte, isSealed bool) {
	if q.headOff < len(seg) {
		return
	}
	if isSealed {
		q.sealed.Remove()
		q.pool.Put(seg)
		q.headOff = 0
		return
	}
	if len(q.tail) == cap(q.tail) {
		q.pool.Put(q.tail)
		q.tail = nil
		q.headOff = 0
	}
}

func (q *inputQueue) Read(p []byte) (int, error) {
	total := 0
	for len(p) > 0 {
		seg, isSealed := q.front()
		if seg == nil {
			break
		}
		n := copy(p, seg[q.headOff:])
		q.headOff += n
		q.cons += int64(n)
		total += n
		p = p[n:]
		q.advance(seg, isSealed)
	}
	if total == 0 {
		return 0, io.EOF
	}
	return total, nil
}

func (q *inputQueue) ReadByte() (byte, error) {
	seg, isSealed := q.front()
	if seg == nil {
		return 0, io.EOF
	}
	b := seg[q.headOff]
	q.headOff++
	q.cons++
	q.advance(seg, isSealed)
	return b, nil
}

// buffered reports the number of unconsumed bytes.
func (q *inputQueue) buffered() int64 {
	return q.enq - q.cons
}
