// File: api/errors.go
// Package api
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Error taxonomy for the wire codec. Three failure classes exist:
// protocol violations, oversized declared payloads, and fatal
// decompressor failures. Each is terminal for the component instance
// that raised it. "Need more input" and "output full" are never errors;
// stages report them as pending results instead.

package api

import "fmt"

// Sentinel errors. Match with errors.Is.
var (
	ErrProtocol        = fmt.Errorf("websocket protocol violation")
	ErrMessageTooBig   = fmt.Errorf("declared payload length too large")
	ErrDecompression   = fmt.Errorf("decompression failed")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrTransportClosed = fmt.Errorf("transport is closed")
)

// ErrorCode represents specific error conditions in the library.
type ErrorCode int

const (
	ErrCodeOK ErrorCode = iota
	ErrCodeProtocol
	ErrCodeMessageTooBig
	ErrCodeDecompression
	ErrCodeInvalidArgument
	ErrCodeInternal
)

// Error represents a structured error with code and context.
type Error struct {
	Code    ErrorCode
	Message string
	Context map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if len(e.Context) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (context: %+v)", e.Message, e.Context)
}

// Unwrap maps the code onto its sentinel so errors.Is works.
func (e *Error) Unwrap() error {
	switch e.Code {
	case ErrCodeProtocol:
		return ErrProtocol
	case ErrCodeMessageTooBig:
		return ErrMessageTooBig
	case ErrCodeDecompression:
		return ErrDecompression
	case ErrCodeInvalidArgument:
		return ErrInvalidArgument
	default:
		return nil
	}
}

// NewError creates a new structured error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// WithContext adds context information to the error.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// NewProtocolError reports a malformed header, illegal opcode sequencing,
// non-minimal length encoding, or similar peer misbehavior.
func NewProtocolError(message string) *Error {
	return NewError(ErrCodeProtocol, message)
}

// NewMessageTooBig reports a declared payload length beyond the
// representable or configured maximum.
func NewMessageTooBig(message string) *Error {
	return NewError(ErrCodeMessageTooBig, message)
}

// NewDecompressionError reports a fatal decompressor failure.
func NewDecompressionError(message string) *Error {
	return NewError(ErrCodeDecompression, message)
}
