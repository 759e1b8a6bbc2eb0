// Package tcp
// Author: momentics <momentics@gmail.com>
//
// Raw TCP transport for wscodec connections. On Linux it talks to the
// socket layer directly through golang.org/x/sys/unix; elsewhere it
// falls back to net.Conn. Handshake and TLS belong to the layer above.
package tcp
