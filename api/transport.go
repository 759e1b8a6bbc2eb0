// File: api/transport.go
// Author: momentics <momentics@gmail.com>
//
// Transport abstraction consumed by the connection layer. The codec
// itself never performs I/O; it operates on buffers the transport has
// already delivered.

package api

// Transport abstracts a full-duplex byte stream that may or may not be
// backed by Go's net.Conn. Reads deliver whatever contiguous bytes the
// socket produced, with no alignment to frame boundaries.
type Transport interface {
	// Read reads into a preallocated buffer.
	Read(p []byte) (n int, err error)

	// Write writes buffer contents into the connection.
	Write(p []byte) (n int, err error)

	// Close shuts down the connection and notifies upstream layers.
	Close() error
}
