// SPDX-License-Identifier: MIT

// Package kernel holds the generic SpMM and SDDMM kernels.
//
// Kernels work on flat, contiguous, validated buffers: every index they
// read has been checked by the caller, so they return no errors. A kernel
// is instantiated per (index width, element type) and receives the
// operator as a resolved binop.Func, so the inner loop never dispatches.
//
// Layout of one call:
//
//	ufeat  [numSrc · LhsLen]   source-node features
//	efeat  [numEdges · RhsLen] edge features, addressed by logical edge id
//	out    [rows · OutLen]     destination rows (SpMM) or edges (SDDMM)
//	argU   [rows · OutLen]     optional, source id of the winning edge
//	argE   [rows · OutLen]     optional, logical id of the winning edge
//
// CSR kernels split destination rows across the Launcher and need no
// synchronization. COO kernels split edges; sums use a CAS add on the
// element's bit pattern and max/min take a per-destination spin lock so a
// value and its arg indices change together.
package kernel

// Launcher runs fn over disjoint ranges covering [0, n) and returns when
// all of them are done. *parallel.Pool and *accel.Stream implement it.
type Launcher interface {
	For(n int, fn func(lo, hi int))
}
