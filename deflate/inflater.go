// File: deflate/inflater.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Incremental decompressor for permessage-deflate message payloads.
//
// Memory is bounded structurally: compressed input waits in pooled
// fixed-capacity segments and decompressed output lives in a fixed
// circular buffer, so pushing arbitrarily much input before draining
// never amplifies into unbounded allocations.
//
// Go's flate reader cannot suspend mid-block when its source runs dry,
// so decompression passes only cover input that is already terminated by
// a Finish() tail (tracked as a byte high-water mark). Output for a
// message becomes available once that message has been finished; choking
// and resumption behave as if inflation were fully incremental.

package deflate

import (
	"compress/flate"
	"io"

	"github.com/momentics/wscodec/api"
	"github.com/momentics/wscodec/pool"
)

const (
	// DefaultOutputCapacity is the circular output buffer size.
	DefaultOutputCapacity = 16 * 1024
	// DefaultSegmentSize is the capacity of one input-queue segment.
	DefaultSegmentSize = 4 * 1024
)

// messageTail is the sync-flush trailer RFC 7692 strips from the wire;
// the receiver appends it back to close the pending empty stored block.
var messageTail = []byte{0x00, 0x00, 0xff, 0xff}

// finalBlock is an empty stored block with BFINAL set. It terminates the
// stream so the flate reader reports EOF exactly at the message
// boundary. The same trick appears in every Go websocket inflate path.
var finalBlock = []byte{0x01, 0x00, 0x00, 0xff, 0xff}

// Inflater decompresses message payloads incrementally with bounded
// buffers. Fatal decompressor failures are terminal; the instance must
// be discarded. Instances are not safe for concurrent use.
type Inflater struct {
	src       inputQueue
	fr        io.ReadCloser
	out       outputRing
	safeMark  int64 // total enqueued bytes through the last Finish tail
	midStream bool  // flate holds state or output for the current stream
	err       error
}

// NewInflater creates an inflater with default buffer sizes.
func NewInflater() *Inflater {
	return NewInflaterSized(DefaultOutputCapacity, DefaultSegmentSize)
}

// NewInflaterSized creates an inflater with an output buffer of
// outputCap bytes and input segments of segSize bytes each.
func NewInflaterSized(outputCap, segSize int) *Inflater {
	i := &Inflater{
		src: newInputQueue(pool.NewBytePool(segSize)),
		out: newOutputRing(outputCap),
	}
	i.fr = flate.NewReader(&i.src)
	return i
}

// AddBytes feeds compressed payload bytes. If output space is available
// and queued input is decodable, decompression proceeds immediately;
// otherwise the bytes wait in the queue.
func (i *Inflater) AddBytes(data []byte) error {
	if i.err != nil {
		return i.err
	}
	i.src.enqueue(data)
	return i.inflate()
}

// Finish marks the end of one compressed message by appending the
// 4-byte sync-flush trailer the sender stripped, making everything
// queued so far decodable.
func (i *Inflater) Finish() error {
	if i.err != nil {
		return i.err
	}
	i.src.enqueue(messageTail)
	i.src.enqueue(finalBlock)
	i.safeMark = i.src.enq
	return i.inflate()
}

// GetOutput drains up to size decompressed bytes, then resumes
// decompression of queued input to refill the buffer. The returned
// slice is freshly allocated and owned by the caller. Bytes already
// drained remain valid even when the refill reports a fatal error.
func (i *Inflater) GetOutput(size int) ([]byte, error) {
	if i.err != nil {
		return nil, i.err
	}
	if size < 0 {
		return nil, api.NewError(api.ErrCodeInvalidArgument, "negative output size")
	}
	if size > i.out.stored() {
		size = i.out.stored()
	}
	buf := make([]byte, size)
	n := i.out.read(buf)
	buf = buf[:n]
	if err := i.inflate(); err != nil {
		return buf, err
	}
	return buf, nil
}

// OutputSize reports the number of decompressed bytes ready to drain.
func (i *Inflater) OutputSize() int {
	return i.out.stored()
}

// QueuedSize reports the number of compressed bytes still staged.
func (i *Inflater) QueuedSize() int64 {
	return i.src.buffered()
}

// inflate runs the decompressor until the output ring fills or no
// safely decodable input remains. "Need more input" and "output full"
// are pending conditions, not errors.
func (i *Inflater) inflate() error {
	for !i.out.full() {
		if i.src.cons >= i.safeMark && !i.midStream {
			break
		}
		dst := i.out.writableSpan()
		n, err := i.fr.Read(dst)
		i.out.commit(n)
		switch {
		case err == nil:
			i.midStream = true
		case err == io.EOF:
			// DEFLATE block boundary with BFINAL set: drop the window
			// unconditionally, modeling no context takeover between
			// messages.
			i.midStream = false
			if rerr := i.fr.(flate.Resetter).Reset(&i.src, nil); rerr != nil {
				i.err = api.NewDecompressionError("decompressor reset failed").
					WithContext("cause", rerr.Error())
				return i.err
			}
		default:
			i.err = api.NewDecompressionError("inflate failed").
				WithContext("cause", err.Error())
			return i.err
		}
	}
	return nil
}
