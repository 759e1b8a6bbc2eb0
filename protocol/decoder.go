// File: protocol/decoder.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Streaming frame decoder. Input arrives as arbitrarily sized buffers
// with no alignment to protocol boundaries: one Decode call may span
// several frames, less than one frame, or cut a header in half. At most
// MaxFrameHeaderLen bytes of a straddled header are carried between
// calls; payload bytes are never buffered, they are re-emitted as chunk
// views into the caller's input.

package protocol

import (
	"encoding/binary"

	"github.com/momentics/wscodec/api"
)

// FrameDecoder consumes raw bytes and emits FrameChunks. A fresh zero
// value is usable; NewFrameDecoder is provided for symmetry with the
// other stages. Instances are not safe for concurrent use.
type FrameDecoder struct {
	hdrBuf     [MaxFrameHeaderLen]byte
	hdrLen     int
	cur        FrameHeader
	inPayload  bool
	headerSent bool
	consumed   int64
	maxPayload int64 // 0 means no cap below the 63-bit wire limit
	err        error
}

// NewFrameDecoder creates a decoder with no payload cap beyond the
// 63-bit wire limit.
func NewFrameDecoder() *FrameDecoder {
	return &FrameDecoder{}
}

// SetMaxPayload caps the declared payload length of a single frame.
// Frames declaring more fail with api.ErrMessageTooBig. Zero disables
// the cap.
func (d *FrameDecoder) SetMaxPayload(limit int64) {
	d.maxPayload = limit
}

// Decode consumes data and returns the chunks it completes. Chunk
// payloads alias data and are valid only until the caller reuses that
// buffer. A protocol or size violation is terminal: the error is
// returned together with any chunks decoded before it, and every later
// call fails with the same error.
func (d *FrameDecoder) Decode(data []byte) ([]FrameChunk, error) {
	if d.err != nil {
		return nil, d.err
	}
	var chunks []FrameChunk
	for {
		if d.inPayload {
			remaining := d.cur.PayloadLen - d.consumed
			n := int64(len(data))
			if n > remaining {
				n = remaining
			}
			chunk := FrameChunk{
				Payload: data[:n:n],
				Final:   d.consumed+n == d.cur.PayloadLen,
			}
			if !d.headerSent {
				hdr := d.cur
				chunk.Header = &hdr
				d.headerSent = true
			}
			// An empty continuation chunk carries no information.
			if chunk.Header != nil || n > 0 || chunk.Final {
				chunks = append(chunks, chunk)
			}
			d.consumed += n
			data = data[n:]
			if !chunk.Final {
				return chunks, nil // input exhausted mid-payload
			}
			d.inPayload = false
			d.headerSent = false
			d.consumed = 0
			continue
		}

		if len(data) == 0 && d.hdrLen == 0 {
			return chunks, nil
		}
		for d.hdrLen < 2 {
			if len(data) == 0 {
				return chunks, nil
			}
			d.hdrBuf[d.hdrLen] = data[0]
			d.hdrLen++
			data = data[1:]
		}
		need := headerWireLen(d.hdrBuf[1])
		if d.hdrLen < need {
			n := copy(d.hdrBuf[d.hdrLen:need], data)
			d.hdrLen += n
			data = data[n:]
			if d.hdrLen < need {
				return chunks, nil
			}
		}
		hdr, err := d.parseHeader(d.hdrBuf[:need])
		if err != nil {
			d.err = err
			return chunks, err
		}
		d.cur = hdr
		d.hdrLen = 0
		d.inPayload = true
		d.headerSent = false
		d.consumed = 0
	}
}

// headerWireLen derives the full header size from the second base byte.
func headerWireLen(b1 byte) int {
	need := 2
	switch b1 & 0x7F {
	case len16Sentinel:
		need += 2
	case len64Sentinel:
		need += 8
	}
	if b1&MaskBit != 0 {
		need += 4
	}
	return need
}

func (d *FrameDecoder) parseHeader(buf []byte) (FrameHeader, error) {
	b0, b1 := buf[0], buf[1]
	h := FrameHeader{
		Final:  b0&FinBit != 0,
		Rsv1:   b0&Rsv1Bit != 0,
		Rsv2:   b0&Rsv2Bit != 0,
		Rsv3:   b0&Rsv3Bit != 0,
		Opcode: Opcode(b0 & 0x0F),
		Masked: b1&MaskBit != 0,
	}

	length := int64(b1 & 0x7F)
	offset := 2
	switch length {
	case len16Sentinel:
		v := binary.BigEndian.Uint16(buf[offset:])
		if v <= MaxControlPayloadLen {
			return h, api.NewProtocolError("non-minimal 16-bit length encoding").
				WithContext("length", v)
		}
		length = int64(v)
		offset += 2
	case len64Sentinel:
		v := binary.BigEndian.Uint64(buf[offset:])
		if v>>63 != 0 {
			return h, api.NewMessageTooBig("payload length exceeds 63-bit range")
		}
		if v <= 0xFFFF {
			return h, api.NewProtocolError("non-minimal 64-bit length encoding").
				WithContext("length", v)
		}
		length = int64(v)
		offset += 8
	}

	if d.maxPayload > 0 && length > d.maxPayload {
		return h, api.NewMessageTooBig("declared payload exceeds configured maximum").
			WithContext("length", length).
			WithContext("max", d.maxPayload)
	}

	if h.Masked {
		copy(h.MaskKey[:], buf[offset:offset+4])
	}
	h.PayloadLen = length
	return h, nil
}
