// File: protocol/header.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Frame header serialization (RFC 6455 §5.2). Decoding lives in the
// streaming FrameDecoder; this side is a pure function over a
// caller-provided destination buffer so outbound frames can be built
// into pooled storage without intermediate allocation.

package protocol

import (
	"crypto/rand"
	"encoding/binary"
	"io"

	"github.com/momentics/wscodec/api"
)

// HeaderSize computes the on-wire size of h: 2 base bytes, plus 2 or 8
// extended-length bytes depending on the payload length, plus 4 mask-key
// bytes when masked.
func HeaderSize(h *FrameHeader) int {
	size := 2
	switch {
	case h.PayloadLen > 0xFFFF:
		size += 8
	case h.PayloadLen > MaxControlPayloadLen:
		size += 2
	}
	if h.Masked {
		size += 4
	}
	return size
}

// WriteHeader serializes h (and its mask key, when masked) into dst and
// returns the number of bytes written. dst shorter than HeaderSize(h) is
// rejected with api.ErrInvalidArgument. The payload itself is appended
// by the caller, masked separately via Mask.
func WriteHeader(h *FrameHeader, dst []byte) (int, error) {
	size := HeaderSize(h)
	if len(dst) < size {
		return 0, api.NewError(api.ErrCodeInvalidArgument, "destination too short for frame header").
			WithContext("need", size).
			WithContext("have", len(dst))
	}
	if h.PayloadLen < 0 {
		return 0, api.NewError(api.ErrCodeInvalidArgument, "negative payload length")
	}

	var b0 byte
	if h.Final {
		b0 |= FinBit
	}
	if h.Rsv1 {
		b0 |= Rsv1Bit
	}
	if h.Rsv2 {
		b0 |= Rsv2Bit
	}
	if h.Rsv3 {
		b0 |= Rsv3Bit
	}
	b0 |= byte(h.Opcode) & 0x0F
	dst[0] = b0

	var maskBit byte
	if h.Masked {
		maskBit = MaskBit
	}

	offset := 2
	switch {
	case h.PayloadLen <= MaxControlPayloadLen:
		dst[1] = byte(h.PayloadLen) | maskBit
	case h.PayloadLen <= 0xFFFF:
		dst[1] = len16Sentinel | maskBit
		binary.BigEndian.PutUint16(dst[offset:], uint16(h.PayloadLen))
		offset += 2
	default:
		dst[1] = len64Sentinel | maskBit
		binary.BigEndian.PutUint64(dst[offset:], uint64(h.PayloadLen))
		offset += 8
	}

	if h.Masked {
		copy(dst[offset:], h.MaskKey[:])
		offset += 4
	}
	return offset, nil
}

// NewMaskKey draws a fresh 4-byte masking key from src. A nil src falls
// back to crypto/rand. Tests inject a deterministic reader.
func NewMaskKey(src io.Reader) ([4]byte, error) {
	var key [4]byte
	if src == nil {
		src = rand.Reader
	}
	if _, err := io.ReadFull(src, key[:]); err != nil {
		return key, api.NewError(api.ErrCodeInternal, "masking key generation failed").
			WithContext("cause", err.Error())
	}
	return key, nil
}
