// File: protocol/frame.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Value types flowing between pipeline stages. Payload slices borrow
// either the caller's input buffer or stage-internal storage; they are
// valid only until the next call into the producing stage and must be
// copied by consumers that hold on to them.

package protocol

// FrameHeader represents a decoded WebSocket frame header.
type FrameHeader struct {
	Final      bool // FIN bit
	Rsv1       bool // set on the first frame of a compressed message
	Rsv2       bool
	Rsv3       bool
	Opcode     Opcode
	Masked     bool
	MaskKey    [4]byte // meaningful only when Masked
	PayloadLen int64   // declared payload length, top bit always zero
}

// Frame is a header plus its payload view.
type Frame struct {
	Header  FrameHeader
	Payload []byte
}

// FrameChunk is the unit FrameDecoder emits: a slice of one frame's
// payload, the header on the first chunk of the frame only, and a flag
// marking the chunk that completes the declared payload length.
type FrameChunk struct {
	Header  *FrameHeader
	Payload []byte
	Final   bool
}

// Message is one logical application message, reassembled from one or
// more frames.
type Message struct {
	IsText  bool
	Payload []byte
}
