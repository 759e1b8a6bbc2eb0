package deflate_test

import (
	"bytes"
	"compress/flate"
	"errors"
	"testing"

	"github.com/momentics/wscodec/api"
	"github.com/momentics/wscodec/deflate"
)

// drainAll empties the inflater's output buffer, resuming deferred
// decompression between reads.
func drainAll(t *testing.T, inf *deflate.Inflater, step int) []byte {
	t.Helper()
	var out []byte
	for {
		part, err := inf.GetOutput(step)
		if err != nil {
			t.Fatal(err)
		}
		out = append(out, part...)
		if len(part) == 0 && inf.OutputSize() == 0 {
			return out
		}
	}
}

func TestInflaterRoundTrip(t *testing.T) {
	payload := bytes.Repeat([]byte("round trip payload "), 100)
	wire := compressWhole(t, payload)

	inf := deflate.NewInflater()
	if err := inf.AddBytes(wire); err != nil {
		t.Fatal(err)
	}
	if err := inf.Finish(); err != nil {
		t.Fatal(err)
	}
	if got := drainAll(t, inf, deflate.DefaultOutputCapacity); !bytes.Equal(got, payload) {
		t.Errorf("decompressed %d bytes, want %d", len(got), len(payload))
	}
}

// Feeding compressed bytes one at a time must not change the result.
func TestInflaterChunkedInput(t *testing.T) {
	payload := []byte("chunked compressed input still decodes")
	wire := compressWhole(t, payload)

	inf := deflate.NewInflater()
	for i := range wire {
		if err := inf.AddBytes(wire[i : i+1]); err != nil {
			t.Fatal(err)
		}
	}
	if err := inf.Finish(); err != nil {
		t.Fatal(err)
	}
	if got := drainAll(t, inf, 8); !bytes.Equal(got, payload) {
		t.Errorf("got %q", got)
	}
}

// With a tiny output buffer the inflater chokes, defers, and resumes as
// the caller drains; stored output never exceeds the configured cap.
func TestInflaterChokedOutput(t *testing.T) {
	payload := bytes.Repeat([]byte("0123456789abcdef"), 128) // 2 KiB
	wire := compressWhole(t, payload)

	const outputCap = 64
	inf := deflate.NewInflaterSized(outputCap, 32)
	if err := inf.AddBytes(wire); err != nil {
		t.Fatal(err)
	}
	if err := inf.Finish(); err != nil {
		t.Fatal(err)
	}
	var got []byte
	for {
		if inf.OutputSize() > outputCap {
			t.Fatalf("output buffer overran its cap: %d", inf.OutputSize())
		}
		part, err := inf.GetOutput(16)
		if err != nil {
			t.Fatal(err)
		}
		got = append(got, part...)
		if len(part) == 0 && inf.OutputSize() == 0 {
			break
		}
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("choked drain produced %d bytes, want %d", len(got), len(payload))
	}
}

// Input queued before Finish stays compressed; nothing is decoded until
// the message boundary is known.
func TestInflaterDefersUntilFinish(t *testing.T) {
	wire := compressWhole(t, bytes.Repeat([]byte("deferred "), 200))

	inf := deflate.NewInflater()
	if err := inf.AddBytes(wire); err != nil {
		t.Fatal(err)
	}
	if inf.OutputSize() != 0 {
		t.Errorf("output appeared before Finish: %d bytes", inf.OutputSize())
	}
	if inf.QueuedSize() != int64(len(wire)) {
		t.Errorf("queued = %d, want %d", inf.QueuedSize(), len(wire))
	}
	if err := inf.Finish(); err != nil {
		t.Fatal(err)
	}
	if inf.OutputSize() == 0 {
		t.Error("no output after Finish")
	}
}

// Two messages through one inflater decode independently: the window is
// dropped at each message boundary.
func TestInflaterNoContextTakeover(t *testing.T) {
	d, err := deflate.NewDeflater(flate.DefaultCompression)
	if err != nil {
		t.Fatal(err)
	}
	inf := deflate.NewInflater()
	for _, payload := range [][]byte{
		bytes.Repeat([]byte("message one "), 80),
		bytes.Repeat([]byte("message one "), 80),
		[]byte("trailer"),
	} {
		if err := d.AddBytes(payload); err != nil {
			t.Fatal(err)
		}
		if err := d.Finish(); err != nil {
			t.Fatal(err)
		}
		wire, err := d.GetOutput(d.OutputSize())
		if err != nil {
			t.Fatal(err)
		}
		if err := inf.AddBytes(wire); err != nil {
			t.Fatal(err)
		}
		if err := inf.Finish(); err != nil {
			t.Fatal(err)
		}
		if got := drainAll(t, inf, 512); !bytes.Equal(got, payload) {
			t.Fatalf("message diverged after %d bytes", len(got))
		}
	}
}

func TestInflaterEmptyMessage(t *testing.T) {
	inf := deflate.NewInflater()
	if err := inf.AddBytes([]byte{0x00}); err != nil {
		t.Fatal(err)
	}
	if err := inf.Finish(); err != nil {
		t.Fatal(err)
	}
	if got := drainAll(t, inf, 16); len(got) != 0 {
		t.Errorf("empty message produced %d bytes", len(got))
	}
}

func TestInflaterGarbageIsTerminal(t *testing.T) {
	inf := deflate.NewInflater()
	if err := inf.AddBytes(bytes.Repeat([]byte{0xFF}, 16)); err != nil {
		t.Fatal(err)
	}
	err := inf.Finish()
	if !errors.Is(err, api.ErrDecompression) {
		t.Fatalf("expected ErrDecompression, got %v", err)
	}
	if err := inf.AddBytes([]byte{0x00}); !errors.Is(err, api.ErrDecompression) {
		t.Errorf("inflater accepted input after a fatal error: %v", err)
	}
	if _, err := inf.GetOutput(8); !errors.Is(err, api.ErrDecompression) {
		t.Errorf("GetOutput after fatal error = %v", err)
	}
}

func TestInflaterRejectsNegativeSize(t *testing.T) {
	inf := deflate.NewInflater()
	if _, err := inf.GetOutput(-1); !errors.Is(err, api.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}
