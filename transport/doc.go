// Package transport
// Author: momentics <momentics@gmail.com>
//
// api.Transport implementations: an in-memory pipe pair for tests and
// examples, and a raw-fd TCP transport under transport/tcp.
package transport
