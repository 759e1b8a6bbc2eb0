// File: protocol/mask.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Payload masking (RFC 6455 §5.3). XOR against a rolling 4-byte key, so
// the operation is its own inverse. The frameOffset parameter lets a
// frame be masked across several chunks: pass the number of payload
// bytes of this frame already processed, and the result is identical no
// matter how the buffer was split.

package protocol

// Mask XORs data in place: data[i] ^= key[(frameOffset+i) % 4].
func Mask(key [4]byte, frameOffset int, data []byte) {
	for i := range data {
		data[i] ^= key[(frameOffset+i)&3]
	}
}
