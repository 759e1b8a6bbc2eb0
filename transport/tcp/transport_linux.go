// File: transport/tcp/transport_linux.go
//go:build linux

// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Linux transport on raw file descriptors via x/sys. Sockets run in
// blocking mode; the connection layer drives them from its own loop.

package tcp

import (
	"fmt"
	"io"
	"net"

	"golang.org/x/sys/unix"

	"github.com/momentics/wscodec/api"
)

type fdTransport struct {
	fd int
}

// Dial connects to a TCP address ("host:port") and returns a transport
// over the raw socket with TCP_NODELAY set.
func Dial(addr string) (api.Transport, error) {
	ta, err := net.ResolveTCPAddr("tcp4", addr)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", addr, err)
	}
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM, unix.IPPROTO_TCP)
	if err != nil {
		return nil, fmt.Errorf("socket create: %w", err)
	}
	_ = unix.SetsockoptInt(fd, unix.IPPROTO_TCP, unix.TCP_NODELAY, 1)
	sa := &unix.SockaddrInet4{Port: ta.Port}
	copy(sa.Addr[:], ta.IP.To4())
	if err := unix.Connect(fd, sa); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("connect %s: %w", addr, err)
	}
	return &fdTransport{fd: fd}, nil
}

func (t *fdTransport) Read(p []byte) (int, error) {
	n, err := unix.Read(t.fd, p)
	if err != nil {
		return 0, fmt.Errorf("read: %w", err)
	}
	if n == 0 {
		return 0, io.EOF
	}
	return n, nil
}

func (t *fdTransport) Write(p []byte) (int, error) {
	total := 0
	for total < len(p) {
		n, err := unix.Write(t.fd, p[total:])
		if err != nil {
			return total, fmt.Errorf("write: %w", err)
		}
		total += n
	}
	return total, nil
}

func (t *fdTransport) Close() error {
	return unix.Close(t.fd)
}

// Listener accepts raw-socket transports.
type Listener struct {
	fd int
}

// Listen binds and listens on a TCP address ("host:port").
func Listen(addr string) (*Listener, error) {
	ta, err := net.ResolveTCPAddr("tcp4", addr)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", addr, err)
	}
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM, unix.IPPROTO_TCP)
	if err != nil {
		return nil, fmt.Errorf("socket create: %w", err)
	}
	_ = unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
	sa := &unix.SockaddrInet4{Port: ta.Port}
	if ip := ta.IP.To4(); ip != nil {
		copy(sa.Addr[:], ip)
	}
	if err := unix.Bind(fd, sa); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("bind %s: %w", addr, err)
	}
	if err := unix.Listen(fd, unix.SOMAXCONN); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}
	return &Listener{fd: fd}, nil
}

// Accept blocks until a peer connects.
func (l *Listener) Accept() (api.Transport, error) {
	nfd, _, err := unix.Accept(l.fd)
	if err != nil {
		return nil, fmt.Errorf("accept: %w", err)
	}
	_ = unix.SetsockoptInt(nfd, unix.IPPROTO_TCP, unix.TCP_NODELAY, 1)
	return &fdTransport{fd: nfd}, nil
}

// Close shuts the listening socket down.
func (l *Listener) Close() error {
	return unix.Close(l.fd)
}
