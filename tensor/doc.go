// SPDX-License-Identifier: MIT

// Package tensor provides the dense feature buffers consumed by the SpMM and
// SDDMM engines.
//
// A Tensor is a typed, flat, row-major buffer plus a shape descriptor
// (github.com/gx-org/backend/shape) and a Device tag. The leading axis indexes
// nodes or edges; the trailing axes are the feature axes that the broadcast
// descriptor reconciles between operands.
//
// A nil *Tensor is the "operand not used" sentinel: IsEmpty reports true only
// for it (a zero-sized tensor is a real operand), and every accessor is nil-safe.
//
// Layout:
//   - Element types: float32, float64 (features) and int32, int64 (indices).
//   - New/FromSlice always produce contiguous row-major tensors.
//   - Permute returns a zero-copy strided view; Contiguous materializes it.
//
// Complexity quicksheet:
//   - New: O(size) zero-init; FromSlice: O(1) (adopts the slice); Flat: O(1).
//   - Permute: O(ndim); Contiguous/To/Clone: O(size); IndexSelect: O(len(index)·rowLen).
package tensor
