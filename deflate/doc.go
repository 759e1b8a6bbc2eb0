// Package deflate
// Author: momentics <momentics@gmail.com>
//
// permessage-deflate (RFC 7692) message compression for the codec.
//
// Compressed WebSocket messages are raw DEFLATE streams without zlib
// framing. The sender strips the trailing 0x00 0x00 0xff 0xff left by a
// sync flush; the receiver appends it back before inflating. Inflater
// and Deflater implement the two directions with bounded memory: input
// is staged in a chain of fixed-capacity pooled segments and output in a
// fixed circular buffer, so decompression work is deferred (not
// abandoned) whenever the consumer falls behind.
package deflate
