package protocol_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/momentics/wscodec/api"
	"github.com/momentics/wscodec/protocol"
)

func dataHeader(op protocol.Opcode, final bool, length int64) *protocol.FrameHeader {
	return &protocol.FrameHeader{Final: final, Opcode: op, PayloadLen: length}
}

func TestChunkAssemblerSingleChunkZeroCopy(t *testing.T) {
	a := protocol.NewChunkAssembler()
	payload := []byte("hello")
	frame, err := a.HandleChunk(&protocol.FrameChunk{
		Header:  dataHeader(protocol.OpcodeText, true, 5),
		Payload: payload,
		Final:   true,
	})
	if err != nil {
		t.Fatal(err)
	}
	if frame == nil {
		t.Fatal("expected a frame")
	}
	if &frame.Payload[0] != &payload[0] {
		t.Error("single-chunk frame should re-emit the caller's slice")
	}
	if frame.Header.Opcode != protocol.OpcodeText || !frame.Header.Final {
		t.Errorf("bad header: %+v", frame.Header)
	}
}

func TestChunkAssemblerStreamsDataFrames(t *testing.T) {
	a := protocol.NewChunkAssembler()
	hdr := dataHeader(protocol.OpcodeText, true, 9)
	hdr.Rsv1 = true

	f1, err := a.HandleChunk(&protocol.FrameChunk{Header: hdr, Payload: []byte("aaa")})
	if err != nil {
		t.Fatal(err)
	}
	if f1 == nil || f1.Header.Opcode != protocol.OpcodeText || !f1.Header.Rsv1 {
		t.Fatalf("first chunk should keep opcode and rsv: %+v", f1)
	}
	if f1.Header.Final {
		t.Error("first of several chunks must not be final")
	}

	f2, err := a.HandleChunk(&protocol.FrameChunk{Payload: []byte("bbb")})
	if err != nil {
		t.Fatal(err)
	}
	if f2.Header.Opcode != protocol.OpcodeContinuation || f2.Header.Rsv1 {
		t.Errorf("later chunks must be continuation with rsv cleared: %+v", f2.Header)
	}
	if f2.Header.Final {
		t.Error("middle chunk must not be final")
	}

	f3, err := a.HandleChunk(&protocol.FrameChunk{Payload: []byte("ccc"), Final: true})
	if err != nil {
		t.Fatal(err)
	}
	if !f3.Header.Final || f3.Header.Opcode != protocol.OpcodeContinuation {
		t.Errorf("last chunk of a FIN frame must be final continuation: %+v", f3.Header)
	}
}

// The FIN bit of the original frame must not leak onto the last chunk
// of a non-final frame.
func TestChunkAssemblerNonFinalFrameStaysNonFinal(t *testing.T) {
	a := protocol.NewChunkAssembler()
	if _, err := a.HandleChunk(&protocol.FrameChunk{
		Header:  dataHeader(protocol.OpcodeBinary, false, 6),
		Payload: []byte("abc"),
	}); err != nil {
		t.Fatal(err)
	}
	f, err := a.HandleChunk(&protocol.FrameChunk{Payload: []byte("def"), Final: true})
	if err != nil {
		t.Fatal(err)
	}
	if f.Header.Final {
		t.Error("frame with FIN=0 emitted a final sub-frame")
	}
}

func TestChunkAssemblerBuffersControlFrames(t *testing.T) {
	a := protocol.NewChunkAssembler()
	pending, err := a.HandleChunk(&protocol.FrameChunk{
		Header:  dataHeader(protocol.OpcodePing, true, 6),
		Payload: []byte("abc"),
	})
	if err != nil {
		t.Fatal(err)
	}
	if pending != nil {
		t.Fatal("control frame must buffer until its final chunk")
	}
	frame, err := a.HandleChunk(&protocol.FrameChunk{Payload: []byte("def"), Final: true})
	if err != nil {
		t.Fatal(err)
	}
	if frame == nil || !bytes.Equal(frame.Payload, []byte("abcdef")) {
		t.Fatalf("control payload reassembly failed: %+v", frame)
	}
	if frame.Header.Opcode != protocol.OpcodePing {
		t.Errorf("opcode = %v", frame.Header.Opcode)
	}
}

func TestChunkAssemblerRejectsFragmentedControl(t *testing.T) {
	a := protocol.NewChunkAssembler()
	_, err := a.HandleChunk(&protocol.FrameChunk{
		Header: dataHeader(protocol.OpcodeClose, false, 0),
		Final:  true,
	})
	if !errors.Is(err, api.ErrProtocol) {
		t.Errorf("expected ErrProtocol, got %v", err)
	}
}

// A control header declaring 126 bytes is rejected before any payload
// arrives.
func TestChunkAssemblerRejectsOversizedControl(t *testing.T) {
	a := protocol.NewChunkAssembler()
	_, err := a.HandleChunk(&protocol.FrameChunk{
		Header: dataHeader(protocol.OpcodePing, true, 126),
	})
	if !errors.Is(err, api.ErrProtocol) {
		t.Errorf("expected ErrProtocol, got %v", err)
	}
}

func TestChunkAssemblerRejectsHeaderMidFrame(t *testing.T) {
	a := protocol.NewChunkAssembler()
	if _, err := a.HandleChunk(&protocol.FrameChunk{
		Header:  dataHeader(protocol.OpcodeText, true, 10),
		Payload: []byte("abc"),
	}); err != nil {
		t.Fatal(err)
	}
	_, err := a.HandleChunk(&protocol.FrameChunk{
		Header:  dataHeader(protocol.OpcodeText, true, 2),
		Payload: []byte("hi"),
		Final:   true,
	})
	if !errors.Is(err, api.ErrProtocol) {
		t.Errorf("expected ErrProtocol, got %v", err)
	}
}

func TestChunkAssemblerRejectsChunkWithoutHeader(t *testing.T) {
	a := protocol.NewChunkAssembler()
	_, err := a.HandleChunk(&protocol.FrameChunk{Payload: []byte("x"), Final: true})
	if !errors.Is(err, api.ErrProtocol) {
		t.Errorf("expected ErrProtocol, got %v", err)
	}
}

func TestChunkAssemblerEmptyMiddleChunkIsPending(t *testing.T) {
	a := protocol.NewChunkAssembler()
	if _, err := a.HandleChunk(&protocol.FrameChunk{
		Header:  dataHeader(protocol.OpcodeBinary, true, 4),
		Payload: []byte("ab"),
	}); err != nil {
		t.Fatal(err)
	}
	frame, err := a.HandleChunk(&protocol.FrameChunk{})
	if err != nil {
		t.Fatal(err)
	}
	if frame != nil {
		t.Error("empty non-final chunk must yield pending, not a frame")
	}
}

func TestChunkAssemblerResetsAfterFrame(t *testing.T) {
	a := protocol.NewChunkAssembler()
	if _, err := a.HandleChunk(&protocol.FrameChunk{
		Header:  dataHeader(protocol.OpcodeText, true, 2),
		Payload: []byte("hi"),
		Final:   true,
	}); err != nil {
		t.Fatal(err)
	}
	frame, err := a.HandleChunk(&protocol.FrameChunk{
		Header: dataHeader(protocol.OpcodePong, true, 0),
		Final:  true,
	})
	if err != nil {
		t.Fatal(err)
	}
	if frame == nil || frame.Header.Opcode != protocol.OpcodePong {
		t.Errorf("assembler did not reset after a finished frame: %+v", frame)
	}
}

func TestChunkAssemblerErrorIsTerminal(t *testing.T) {
	a := protocol.NewChunkAssembler()
	if _, err := a.HandleChunk(&protocol.FrameChunk{Payload: []byte("x")}); err == nil {
		t.Fatal("expected error")
	}
	_, err := a.HandleChunk(&protocol.FrameChunk{
		Header: dataHeader(protocol.OpcodeText, true, 0),
		Final:  true,
	})
	if !errors.Is(err, api.ErrProtocol) {
		t.Errorf("assembler accepted input after terminal error: %v", err)
	}
}
