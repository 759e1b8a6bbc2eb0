// File: protocol/connection.go
// Package protocol implements the core WebSocket connection handling.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// WSConnection owns one side of an established WebSocket session: it
// feeds transport reads through the decode pipeline, unmasks inbound
// payloads with the running per-frame offset, answers pings, applies
// the close policy for codec errors (1002 for protocol violations, 1009
// for oversized payloads, 1007 for broken compressed data), and builds
// outbound frames. The HTTP upgrade handshake happens before a
// WSConnection exists and is out of scope here.

package protocol

import (
	"encoding/binary"
	"errors"
	"io"

	"github.com/rs/zerolog"

	"github.com/momentics/wscodec/api"
	"github.com/momentics/wscodec/deflate"
)

// DefaultMaxMessageSize caps a single frame's declared payload, a
// fragmented message's accumulated size, and a message's decompressed
// size unless overridden.
const DefaultMaxMessageSize = 1 << 20 // 1 MiB

// MessageHandler receives completed messages. The payload view is valid
// only for the duration of the call.
type MessageHandler func(msg *Message) error

// ConnConfig parameterizes a WSConnection.
type ConnConfig struct {
	// Client, when set, masks outbound frames with a fresh key per
	// frame, as RFC 6455 requires of clients.
	Client bool

	// Deflate enables permessage-deflate for both directions. The
	// handshake layer sets this from the negotiated extension.
	Deflate bool

	// CompressionLevel is the flate level for outbound messages.
	// Zero value selects flate.DefaultCompression.
	CompressionLevel int

	// MaxMessageSize caps declared frame payloads, accumulated
	// fragmented-message sizes, and decompressed message sizes. Zero
	// selects DefaultMaxMessageSize.
	MaxMessageSize int64

	// Rand supplies masking-key entropy. Nil selects crypto/rand;
	// tests inject a deterministic reader.
	Rand io.Reader

	// Logger for connection events. Zero value logs nowhere.
	Logger zerolog.Logger
}

// WSConnection drives the codec pipeline over an api.Transport.
// Instances are owned by a single sequential read/write loop.
type WSConnection struct {
	transport api.Transport
	cfg       ConnConfig
	log       zerolog.Logger

	dec    *FrameDecoder
	chunks *ChunkAssembler
	msgs   *MessageAssembler

	inflater *deflate.Inflater
	deflater *deflate.Deflater

	onMessage MessageHandler
	onClose   func(code int, reason []byte)
	onPong    func(payload []byte)

	// unmasking state for the inbound frame in progress
	unmask  bool
	maskKey [4]byte
	maskOff int

	// whether the open inbound message is compressed (RSV1 on its
	// first frame)
	compressed bool

	closed    bool
	closeSent bool
}

// NewWSConnection constructs a connection over an established,
// already-upgraded transport.
func NewWSConnection(tr api.Transport, cfg ConnConfig) (*WSConnection, error) {
	if cfg.MaxMessageSize == 0 {
		cfg.MaxMessageSize = DefaultMaxMessageSize
	}
	c := &WSConnection{
		transport: tr,
		cfg:       cfg,
		log:       cfg.Logger,
		dec:       NewFrameDecoder(),
		chunks:    NewChunkAssembler(),
		msgs:      NewMessageAssembler(),
	}
	c.dec.SetMaxPayload(cfg.MaxMessageSize)
	c.msgs.SetMaxMessageSize(cfg.MaxMessageSize)
	if cfg.Deflate {
		c.inflater = deflate.NewInflater()
		level := cfg.CompressionLevel
		if level == 0 {
			level = -1 // flate.DefaultCompression
		}
		df, err := deflate.NewDeflater(level)
		if err != nil {
			return nil, err
		}
		c.deflater = df
	}
	return c, nil
}

// OnMessage registers the completed-message handler.
func (c *WSConnection) OnMessage(h MessageHandler) { c.onMessage = h }

// OnClose registers a callback for a received close frame.
func (c *WSConnection) OnClose(h func(code int, reason []byte)) { c.onClose = h }

// OnPong registers a callback for received pongs.
func (c *WSConnection) OnPong(h func(payload []byte)) { c.onPong = h }

// ReadLoop pulls from the transport and processes bytes until the peer
// closes, the transport fails, or the codec raises a terminal error.
func (c *WSConnection) ReadLoop() error {
	buf := make([]byte, 32*1024)
	for {
		n, err := c.transport.Read(buf)
		if err != nil {
			if c.closed {
				return nil
			}
			return err
		}
		if n == 0 {
			continue
		}
		if err := c.ProcessBytes(buf[:n]); err != nil {
			return err
		}
		if c.closed {
			return nil
		}
	}
}

// ProcessBytes feeds one transport read through the pipeline. The
// buffer may split frames and headers at any offset.
func (c *WSConnection) ProcessBytes(data []byte) error {
	if c.closed {
		return api.ErrTransportClosed
	}
	chunks, decErr := c.dec.Decode(data)
	for i := range chunks {
		ch := &chunks[i]
		if ch.Header != nil {
			c.unmask = ch.Header.Masked
			c.maskKey = ch.Header.MaskKey
			c.maskOff = 0
		}
		if c.unmask {
			Mask(c.maskKey, c.maskOff, ch.Payload)
			c.maskOff += len(ch.Payload)
		}
		frame, err := c.chunks.HandleChunk(ch)
		if err != nil {
			return c.fail(err)
		}
		if frame == nil {
			continue
		}
		if frame.Header.Opcode.IsControl() {
			if err := c.handleControl(frame); err != nil {
				return err
			}
			continue
		}
		if err := c.handleData(frame); err != nil {
			return err
		}
	}
	if decErr != nil {
		return c.fail(decErr)
	}
	return nil
}

func (c *WSConnection) handleData(frame *Frame) error {
	h := &frame.Header
	if h.Rsv2 || h.Rsv3 {
		return c.fail(api.NewProtocolError("reserved bits 2/3 set without negotiated extension"))
	}
	if h.Rsv1 {
		if h.Opcode == OpcodeContinuation {
			return c.fail(api.NewProtocolError("rsv1 set on continuation frame"))
		}
		if c.inflater == nil {
			return c.fail(api.NewProtocolError("rsv1 set without negotiated permessage-deflate"))
		}
	}
	if h.Opcode != OpcodeContinuation {
		c.compressed = h.Rsv1
	}

	msg, err := c.msgs.HandleFrame(h.Final, h.Opcode, frame.Payload)
	if err != nil {
		return c.fail(err)
	}
	if msg == nil {
		return nil
	}
	if c.compressed {
		inflated, err := c.inflateMessage(msg.Payload)
		if err != nil {
			return c.fail(err)
		}
		msg = &Message{IsText: msg.IsText, Payload: inflated}
	}
	c.log.Debug().
		Bool("text", msg.IsText).
		Int("len", len(msg.Payload)).
		Msg("message received")
	if c.onMessage != nil {
		return c.onMessage(msg)
	}
	return nil
}

// inflateMessage runs one compressed payload through the inflater,
// draining the bounded output buffer until the message is complete.
func (c *WSConnection) inflateMessage(payload []byte) ([]byte, error) {
	if err := c.inflater.AddBytes(payload); err != nil {
		return nil, err
	}
	if err := c.inflater.Finish(); err != nil {
		return nil, err
	}
	var out []byte
	for {
		part, err := c.inflater.GetOutput(deflate.DefaultOutputCapacity)
		out = append(out, part...)
		if err != nil {
			return nil, err
		}
		if int64(len(out)) > c.cfg.MaxMessageSize {
			return nil, api.NewMessageTooBig("decompressed message exceeds maximum").
				WithContext("max", c.cfg.MaxMessageSize)
		}
		if len(part) == 0 && c.inflater.OutputSize() == 0 {
			return out, nil
		}
	}
}

func (c *WSConnection) handleControl(frame *Frame) error {
	switch frame.Header.Opcode {
	case OpcodePing:
		c.log.Debug().Int("len", len(frame.Payload)).Msg("ping received")
		return c.writeControl(OpcodePong, frame.Payload)
	case OpcodePong:
		c.log.Debug().Int("len", len(frame.Payload)).Msg("pong received")
		if c.onPong != nil {
			c.onPong(frame.Payload)
		}
		return nil
	case OpcodeClose:
		code := CloseNoStatusRcvd
		var reason []byte
		if len(frame.Payload) >= 2 {
			code = int(binary.BigEndian.Uint16(frame.Payload))
			reason = frame.Payload[2:]
		}
		c.log.Debug().Int("code", code).Msg("close received")
		if !c.closeSent {
			// 1005 is a synthetic "no status" code and must not go on
			// the wire; echo an empty close instead.
			if code == CloseNoStatusRcvd {
				_ = c.writeControl(OpcodeClose, nil)
				c.closeSent = true
			} else {
				_ = c.writeClose(code, nil)
			}
		}
		c.closed = true
		_ = c.transport.Close()
		if c.onClose != nil {
			c.onClose(code, reason)
		}
		return nil
	default:
		// Reserved control opcodes carry no defined semantics.
		return c.fail(api.NewProtocolError("reserved control opcode").
			WithContext("opcode", frame.Header.Opcode.String()))
	}
}

// WriteMessage frames and sends one message, compressing it when
// permessage-deflate is enabled.
func (c *WSConnection) WriteMessage(isText bool, payload []byte) error {
	if c.closed {
		return api.ErrTransportClosed
	}
	op := OpcodeBinary
	if isText {
		op = OpcodeText
	}
	rsv1 := false
	if c.deflater != nil {
		compressed, err := c.deflateMessage(payload)
		if err != nil {
			return err
		}
		payload = compressed
		rsv1 = true
	}
	return c.writeFrame(FrameHeader{
		Final:      true,
		Rsv1:       rsv1,
		Opcode:     op,
		PayloadLen: int64(len(payload)),
	}, payload)
}

func (c *WSConnection) deflateMessage(payload []byte) ([]byte, error) {
	if err := c.deflater.AddBytes(payload); err != nil {
		return nil, err
	}
	if err := c.deflater.Finish(); err != nil {
		return nil, err
	}
	return c.deflater.GetOutput(c.deflater.OutputSize())
}

// WritePing sends a ping with the given payload.
func (c *WSConnection) WritePing(payload []byte) error {
	return c.writeControl(OpcodePing, payload)
}

// WriteClose sends a close frame with the given status code and reason.
func (c *WSConnection) WriteClose(code int, reason []byte) error {
	return c.writeClose(code, reason)
}

func (c *WSConnection) writeControl(op Opcode, payload []byte) error {
	if c.closed {
		return api.ErrTransportClosed
	}
	if len(payload) > MaxControlPayloadLen {
		return api.NewError(api.ErrCodeInvalidArgument, "control payload exceeds 125 bytes").
			WithContext("length", len(payload))
	}
	return c.writeFrame(FrameHeader{
		Final:      true,
		Opcode:     op,
		PayloadLen: int64(len(payload)),
	}, payload)
}

func (c *WSConnection) writeClose(code int, reason []byte) error {
	payload := make([]byte, 2+len(reason))
	binary.BigEndian.PutUint16(payload, uint16(code))
	copy(payload[2:], reason)
	err := c.writeControl(OpcodeClose, payload)
	if err == nil {
		c.closeSent = true
	}
	return err
}

// writeFrame serializes header and payload into one buffer and sends
// it. Client connections mask with a fresh key per frame.
func (c *WSConnection) writeFrame(h FrameHeader, payload []byte) error {
	if c.cfg.Client {
		key, err := NewMaskKey(c.cfg.Rand)
		if err != nil {
			return err
		}
		h.Masked = true
		h.MaskKey = key
	}
	buf := make([]byte, HeaderSize(&h)+len(payload))
	n, err := WriteHeader(&h, buf)
	if err != nil {
		return err
	}
	copy(buf[n:], payload)
	if h.Masked {
		Mask(h.MaskKey, 0, buf[n:])
	}
	if _, err := c.transport.Write(buf); err != nil {
		return err
	}
	c.log.Debug().
		Str("opcode", h.Opcode.String()).
		Int64("len", h.PayloadLen).
		Msg("frame sent")
	return nil
}

// fail applies the close policy for a terminal codec error and tears
// the connection down.
func (c *WSConnection) fail(err error) error {
	code := CloseProtocolError
	switch {
	case errors.Is(err, api.ErrMessageTooBig):
		code = CloseMessageTooBig
	case errors.Is(err, api.ErrDecompression):
		code = CloseInvalidPayloadData
	}
	c.log.Error().Err(err).Int("code", code).Msg("closing on codec error")
	if !c.closeSent {
		_ = c.writeClose(code, nil)
	}
	c.closed = true
	_ = c.transport.Close()
	return err
}
