// File: protocol/chunk_assembler.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Reconstitutes discrete Frames from the decoder's chunk stream.
//
// Control frames are buffered until complete; the protocol bounds them
// to 125 payload bytes, so the buffer never grows past that. Data frames
// are never buffered: every chunk is re-emitted immediately as its own
// Frame, with the opcode forced to continuation and reserved bits
// cleared on every chunk after the first, so a large frame flows through
// in pieces. A frame that arrives as a single chunk is re-emitted
// zero-copy.

package protocol

import "github.com/momentics/wscodec/api"

type chunkAssemblerState int

const (
	caInitialFrame chunkAssemblerState = iota
	caContinuationFrame
	caControlFrame
	caMessageFinished
)

// ChunkAssembler consumes FrameChunks and emits Frames. A nil Frame with
// a nil error means the chunk was absorbed and more input is pending.
// Instances are not safe for concurrent use.
type ChunkAssembler struct {
	state   chunkAssemblerState
	hdr     FrameHeader
	ctrlBuf []byte
	err     error
}

// NewChunkAssembler creates an assembler in its initial state.
func NewChunkAssembler() *ChunkAssembler {
	return &ChunkAssembler{}
}

// HandleChunk advances the assembler with one chunk. Errors are
// terminal; every later call fails with the same error.
func (a *ChunkAssembler) HandleChunk(c *FrameChunk) (*Frame, error) {
	if a.err != nil {
		return nil, a.err
	}
	if a.state == caMessageFinished {
		a.state = caInitialFrame
	}

	if c.Header != nil {
		if a.state != caInitialFrame {
			return nil, a.fail(api.NewProtocolError("frame header appearing mid-frame"))
		}
		kind, err := Classify(c.Header.Opcode)
		if err != nil {
			return nil, a.fail(err)
		}
		a.hdr = *c.Header
		if kind == KindControl {
			if !a.hdr.Final {
				return nil, a.fail(api.NewProtocolError("fragmented control frame").
					WithContext("opcode", a.hdr.Opcode.String()))
			}
			if a.hdr.PayloadLen > MaxControlPayloadLen {
				return nil, a.fail(api.NewProtocolError("control frame payload exceeds 125 bytes").
					WithContext("length", a.hdr.PayloadLen))
			}
			if a.ctrlBuf == nil {
				a.ctrlBuf = make([]byte, 0, MaxControlPayloadLen)
			}
			a.ctrlBuf = a.ctrlBuf[:0]
			a.state = caControlFrame
		}
	} else if a.state == caInitialFrame {
		return nil, a.fail(api.NewProtocolError("payload chunk without preceding header"))
	}

	if a.state == caControlFrame {
		a.ctrlBuf = append(a.ctrlBuf, c.Payload...)
		if !c.Final {
			return nil, nil
		}
		a.state = caMessageFinished
		return &Frame{Header: a.hdr, Payload: a.ctrlBuf}, nil
	}

	// Data frame paths.
	if c.Header != nil {
		if c.Final {
			// Whole frame in one chunk: re-emit the caller's slice.
			a.state = caMessageFinished
			return &Frame{Header: a.hdr, Payload: c.Payload}, nil
		}
		hdr := a.hdr
		hdr.Final = false
		hdr.PayloadLen = int64(len(c.Payload))
		a.state = caContinuationFrame
		return &Frame{Header: hdr, Payload: c.Payload}, nil
	}

	if len(c.Payload) == 0 && !c.Final {
		return nil, nil
	}
	hdr := a.hdr
	hdr.Opcode = OpcodeContinuation
	hdr.Rsv1, hdr.Rsv2, hdr.Rsv3 = false, false, false
	hdr.Final = a.hdr.Final && c.Final
	hdr.PayloadLen = int64(len(c.Payload))
	if c.Final {
		a.state = caMessageFinished
	}
	return &Frame{Header: hdr, Payload: c.Payload}, nil
}

func (a *ChunkAssembler) fail(err error) error {
	a.err = err
	return err
}
