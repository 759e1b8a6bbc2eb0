// File: protocol/message_assembler.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Reassembles fragmented messages. A message opens with one text or
// binary frame and is extended by continuation frames until a final one
// arrives; the opening frame fixes the message type. Single-frame
// messages pass through zero-copy. UTF-8 validity of text payloads is
// the application's concern, not checked here.

package protocol

import "github.com/momentics/wscodec/api"

type messageAssemblerState int

const (
	maIdle messageAssemblerState = iota
	maExpectTextContinuation
	maExpectBinaryContinuation
	maFinished
)

// MessageAssembler consumes data Frames and emits Messages. A nil
// Message with a nil error means the frame was absorbed and the message
// is still open. Instances are not safe for concurrent use.
type MessageAssembler struct {
	state   messageAssemblerState
	buf     []byte
	maxSize int64 // 0 means no cap
	err     error
}

// NewMessageAssembler creates an assembler in its idle state.
func NewMessageAssembler() *MessageAssembler {
	return &MessageAssembler{}
}

// SetMaxMessageSize caps the accumulated payload size of a message,
// counting every fragment. Exceeding it fails with
// api.ErrMessageTooBig. Zero disables the cap.
func (m *MessageAssembler) SetMaxMessageSize(limit int64) {
	m.maxSize = limit
}

// HandleFrame advances the assembler with one data frame. Control
// frames must be routed elsewhere; they are a protocol violation here.
// Errors are terminal.
func (m *MessageAssembler) HandleFrame(final bool, op Opcode, payload []byte) (*Message, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.state == maFinished {
		m.state = maIdle
		m.buf = nil
	}

	var isText bool
	switch op {
	case OpcodeText, OpcodeBinary:
		if m.state != maIdle {
			return nil, m.fail(api.NewProtocolError("data frame while a fragmented message is open").
				WithContext("opcode", op.String()))
		}
		isText = op == OpcodeText
	case OpcodeContinuation:
		if m.state == maIdle {
			return nil, m.fail(api.NewProtocolError("continuation frame without an open message"))
		}
		isText = m.state == maExpectTextContinuation
	default:
		return nil, m.fail(api.NewProtocolError("opcode not valid for message assembly").
			WithContext("opcode", op.String()))
	}

	if m.maxSize > 0 && int64(len(m.buf))+int64(len(payload)) > m.maxSize {
		return nil, m.fail(api.NewMessageTooBig("message exceeds maximum size").
			WithContext("max", m.maxSize))
	}

	if final && len(m.buf) == 0 {
		// Single-fragment fast path: hand back the caller's slice.
		m.state = maFinished
		return &Message{IsText: isText, Payload: payload}, nil
	}

	m.buf = append(m.buf, payload...)
	if final {
		msg := &Message{IsText: isText, Payload: m.buf}
		m.buf = nil
		m.state = maFinished
		return msg, nil
	}
	if isText {
		m.state = maExpectTextContinuation
	} else {
		m.state = maExpectBinaryContinuation
	}
	return nil, nil
}

func (m *MessageAssembler) fail(err error) error {
	m.err = err
	return err
}
