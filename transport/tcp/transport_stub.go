// File: transport/tcp/transport_stub.go
//go:build !linux

// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Portable fallback on net.Conn for platforms without the raw-fd path.

package tcp

import (
	"fmt"
	"net"

	"github.com/momentics/wscodec/api"
)

type netTransport struct {
	conn net.Conn
}

// Dial connects to a TCP address ("host:port").
func Dial(addr string) (api.Transport, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	if tc, ok := conn.(*net.TCPConn); ok {
		_ = tc.SetNoDelay(true)
	}
	return &netTransport{conn: conn}, nil
}

func (t *netTransport) Read(p []byte) (int, error)  { return t.conn.Read(p) }
func (t *netTransport) Write(p []byte) (int, error) { return t.conn.Write(p) }
func (t *netTransport) Close() error                { return t.conn.Close() }

// Listener accepts net.Conn-backed transports.
type Listener struct {
	ln net.Listener
}

// Listen binds and listens on a TCP address ("host:port").
func Listen(addr string) (*Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}
	return &Listener{ln: ln}, nil
}

// Accept blocks until a peer connects.
func (l *Listener) Accept() (api.Transport, error) {
	conn, err := l.ln.Accept()
	if err != nil {
		return nil, fmt.Errorf("accept: %w", err)
	}
	if tc, ok := conn.(*net.TCPConn); ok {
		_ = tc.SetNoDelay(true)
	}
	return &netTransport{conn: conn}, nil
}

// Close shuts the listening socket down.
func (l *Listener) Close() error {
	return l.ln.Close()
}
