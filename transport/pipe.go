// File: transport/pipe.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package transport

import (
	"bytes"
	"io"
	"sync"

	"github.com/momentics/wscodec/api"
)

// Pipe is one end of a synchronous in-memory transport pair. Writes
// land in the peer's read buffer. Reads on an empty open pipe return
// (0, nil), so callers pumping a pipe should interleave reads with the
// writes that feed it rather than spin.
type Pipe struct {
	mu     sync.Mutex
	buf    bytes.Buffer
	closed bool
	peer   *Pipe
}

// NewPipePair creates two connected pipe ends.
func NewPipePair() (*Pipe, *Pipe) {
	a := &Pipe{}
	b := &Pipe{}
	a.peer = b
	b.peer = a
	return a, b
}

// Read drains buffered bytes written by the peer.
func (p *Pipe) Read(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.buf.Len() == 0 {
		if p.closed {
			return 0, io.EOF
		}
		return 0, nil
	}
	return p.buf.Read(b)
}

// Write delivers bytes into the peer's read buffer.
func (p *Pipe) Write(b []byte) (int, error) {
	peer := p.peer
	peer.mu.Lock()
	defer peer.mu.Unlock()
	if peer.closed {
		return 0, api.ErrTransportClosed
	}
	return peer.buf.Write(b)
}

// Close marks both ends closed. Buffered bytes remain readable.
func (p *Pipe) Close() error {
	for _, end := range []*Pipe{p, p.peer} {
		end.mu.Lock()
		end.closed = true
		end.mu.Unlock()
	}
	return nil
}
