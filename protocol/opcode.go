// File: protocol/opcode.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Closed opcode enumeration and the control/data classification the
// assembler dispatches on.

package protocol

import "github.com/momentics/wscodec/api"

// Opcode is the 4-bit operation code of a frame.
type Opcode byte

const (
	OpcodeContinuation Opcode = 0x0
	OpcodeText         Opcode = 0x1
	OpcodeBinary       Opcode = 0x2
	OpcodeClose        Opcode = 0x8
	OpcodePing         Opcode = 0x9
	OpcodePong         Opcode = 0xA
	// 0x3-0x7 are reserved data opcodes, 0xB-0xF reserved control
	// opcodes. They classify like their category but carry no meaning.
)

// OpcodeKind is the category a frame's opcode falls into.
type OpcodeKind int

const (
	KindData OpcodeKind = iota
	KindControl
)

// Classify maps an opcode onto its category. Values outside the 4-bit
// wire range are a protocol violation.
func Classify(op Opcode) (OpcodeKind, error) {
	switch {
	case op <= 0x7:
		return KindData, nil
	case op <= 0xF:
		return KindControl, nil
	default:
		return 0, api.NewProtocolError("opcode out of range").
			WithContext("opcode", byte(op))
	}
}

// IsControl reports whether op is a close/ping/pong or reserved control
// opcode.
func (op Opcode) IsControl() bool {
	return op >= 0x8 && op <= 0xF
}

// IsData reports whether op is a continuation/text/binary or reserved
// data opcode.
func (op Opcode) IsData() bool {
	return op <= 0x7
}

// String returns the RFC 6455 name of the opcode.
func (op Opcode) String() string {
	switch op {
	case OpcodeContinuation:
		return "continuation"
	case OpcodeText:
		return "text"
	case OpcodeBinary:
		return "binary"
	case OpcodeClose:
		return "close"
	case OpcodePing:
		return "ping"
	case OpcodePong:
		return "pong"
	default:
		if op.IsControl() {
			return "reserved-control"
		}
		if op.IsData() {
			return "reserved-data"
		}
		return "invalid"
	}
}
