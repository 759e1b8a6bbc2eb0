// Package pool
// Author: momentics <momentics@gmail.com>
//
// Fixed-capacity byte buffer pooling. The inflater's input queue
// allocates and recycles its chained segments here so that adversarial
// input churns a handful of reused blocks instead of the allocator.
package pool
