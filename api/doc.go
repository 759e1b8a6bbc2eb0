// Package api
// Author: momentics <momentics@gmail.com>
//
// Shared interfaces and error taxonomy for the wscodec pipeline.
//
// The codec stages in protocol/ and deflate/ depend only on this package,
// never on each other's concrete types, so the connection layer can wire
// them together without import cycles.
package api
