// File: deflate/deflater.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Outbound half of permessage-deflate: raw DEFLATE with a sync flush per
// message and the trailing 0x00 0x00 0xff 0xff stripped before framing,
// per RFC 7692 §7.2.1. The compression window is reset after every
// message (no context takeover), mirroring the inflater.

package deflate

import (
	"bytes"
	"compress/flate"

	"github.com/momentics/wscodec/api"
)

// Deflater compresses message payloads. Instances are not safe for
// concurrent use.
type Deflater struct {
	buf bytes.Buffer
	fw  *flate.Writer
	err error
}

// NewDeflater creates a deflater with the given flate compression
// level (flate.DefaultCompression for a sane default).
func NewDeflater(level int) (*Deflater, error) {
	d := &Deflater{}
	fw, err := flate.NewWriter(&d.buf, level)
	if err != nil {
		return nil, api.NewError(api.ErrCodeInvalidArgument, "invalid compression level").
			WithContext("level", level)
	}
	d.fw = fw
	return d, nil
}

// AddBytes feeds uncompressed message payload bytes.
func (d *Deflater) AddBytes(data []byte) error {
	if d.err != nil {
		return d.err
	}
	if _, err := d.fw.Write(data); err != nil {
		d.err = api.NewDecompressionError("deflate failed").
			WithContext("cause", err.Error())
		return d.err
	}
	return nil
}

// Finish flushes the current message with a sync flush, strips the
// 4-byte trailer, and resets the window for the next message.
func (d *Deflater) Finish() error {
	if d.err != nil {
		return d.err
	}
	if err := d.fw.Flush(); err != nil {
		d.err = api.NewDecompressionError("deflate flush failed").
			WithContext("cause", err.Error())
		return d.err
	}
	if b := d.buf.Bytes(); bytes.HasSuffix(b, messageTail) {
		d.buf.Truncate(len(b) - len(messageTail))
	}
	d.fw.Reset(&d.buf)
	return nil
}

// GetOutput drains up to size compressed bytes in FIFO order.
func (d *Deflater) GetOutput(size int) ([]byte, error) {
	if d.err != nil {
		return nil, d.err
	}
	if size < 0 {
		return nil, api.NewError(api.ErrCodeInvalidArgument, "negative output size")
	}
	if size > d.buf.Len() {
		size = d.buf.Len()
	}
	out := make([]byte, size)
	n, _ := d.buf.Read(out)
	return out[:n], nil
}

// OutputSize reports the number of compressed bytes ready to drain.
func (d *Deflater) OutputSize() int {
	return d.buf.Len()
}
