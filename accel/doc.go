// SPDX-License-Identifier: MIT

// Package accel is the accelerator execution context.
//
// What & Why:
//
//	A Context stands for one device: it owns a pool of streams and a scoped
//	workspace allocator. Kernels launched on a Stream run as a grid of
//	BlockSize-wide blocks; the launch returns when the grid has finished,
//	so a stream serializes only its own launches. The context is passed
//	explicitly; there is no process-wide handle.
//
//	The device is emulated on the host: blocks are scheduled onto goroutines.
//	Memory placement follows tensor.Device only, so a tensor must be moved
//	with To before it can be combined with accelerator data.
//
// Workspace:
//
//	Scratch buffers come from size-classed pools. Every Alloc returns a
//	release func that the caller defers; InUse reports bytes still held,
//	which is zero between calls.
//
// Fast path:
//
//	Csrmm multiplies a CSR (int32 indices only) by a row-major dense block
//	into column-major scratch; Transpose turns that scratch into the
//	row-major output.
package accel
