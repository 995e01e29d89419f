// SPDX-License-Identifier: MIT

// Package sparse provides the read-only sparse views the kernels traverse.
//
// What & Why:
//
//	CSR (row pointers + column ids) and COO (parallel row/column arrays) views
//	over int32 or int64 index buffers, each with an optional edge-id
//	permutation mapping a physical storage position to the logical edge id used
//	to address edge-feature rows. A Graph bundles one relation (source type →
//	destination type) and derives the formats the engines need.
//
// Ownership:
//
//	Views never copy what they can borrow. Span is the explicit borrowed-slice
//	type: a backing buffer, a start and a length, no ownership. SliceRows
//	shares the column-id buffer of its parent; callers must not mutate the
//	parent while a slice is in use.
//
// Maintenance utilities:
//
//	RowNNZ / RowNNZs, SliceRow / SliceRows / SliceRowsIndex, IsSorted and the
//	in-place SortColumns prepare a view before SpMM/SDDMM; they are not on the
//	kernels' hot path.
//
// Complexity:
//
//	NewCSR/NewCOO validation O(rows + nnz); conversions O(rows + cols + nnz);
//	SortColumns O(Σ d·log d) over row degrees d.
package sparse
