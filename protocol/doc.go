// Package protocol
// Author: momentics <momentics@gmail.com>
//
// RFC 6455 wire codec and message reassembly.
//
// The package is a chain of three synchronous state machines plus the
// pure helpers they share:
//
//   - FrameDecoder turns arbitrarily chunked raw bytes into FrameChunks.
//   - ChunkAssembler turns FrameChunks into Frames, buffering control
//     frames and streaming data frames.
//   - MessageAssembler turns Frames into logical Messages, reassembling
//     continuation fragments.
//
// All stages are zero-copy on their fast paths: emitted payload views
// borrow the caller's input buffer and stay valid only until the next
// call into the same instance. No stage locks or blocks; one connection
// drives one instance of each from its sequential read loop.
//
// WSConnection wires the chain to an api.Transport and the
// permessage-deflate stages in deflate/.
package protocol
