// SPDX-License-Identifier: MIT
// Package: sparse
//
// Purpose:
//  - Single source of truth for structural checks on CSR / COO buffers.
//  - Constructors call these before returning a view; callers that build
//    structs by hand can call Validate themselves.
//
// Determinism & Performance:
//  - Checks are pure, allocate nothing and stop at the first violation.
//  - Each runs in O(rows + nnz).

package sparse

import (
	"github.com/katalvlaran/lvkernel/failure"
)

// sparseErrorf tags a structural violation as failure.ErrShape.
func sparseErrorf(tag, format string, args ...any) error {
	return failure.Tagf("sparse."+tag, failure.ErrShape, format, args...)
}

// validateDims rejects negative extents.
func validateDims(tag string, rows, cols int) error {
	if rows < 0 || cols < 0 {
		return sparseErrorf(tag, "negative extent %dx%d", rows, cols)
	}

	return nil
}

// validateIndptr checks len == rows+1, indptr[0] == 0, monotonicity and
// indptr[rows] == nnz.
func validateIndptr[I Index](tag string, rows int, indptr []I, nnz int) error {
	if len(indptr) != rows+1 {
		return sparseErrorf(tag, "indptr has %d entries, want %d", len(indptr), rows+1)
	}
	if indptr[0] != 0 {
		return sparseErrorf(tag, "indptr[0] = %d, want 0", indptr[0])
	}
	for r := 0; r < rows; r++ {
		if indptr[r+1] < indptr[r] {
			return sparseErrorf(tag, "indptr decreases at row %d (%d > %d)", r, indptr[r], indptr[r+1])
		}
	}
	if int(indptr[rows]) != nnz {
		return sparseErrorf(tag, "indptr[%d] = %d but nnz = %d", rows, indptr[rows], nnz)
	}

	return nil
}

// validateRange checks every id lies in [0, limit).
func validateRange[I Index](tag, what string, ids []I, limit int) error {
	for i, v := range ids {
		if v < 0 || int64(v) >= int64(limit) {
			return sparseErrorf(tag, "%s[%d] = %d outside [0,%d)", what, i, v, limit)
		}
	}

	return nil
}

// validateData checks an optional edge-id array: nil, or nnz non-negative ids.
func validateData[I Index](tag string, data []I, nnz int) error {
	if data == nil {
		return nil
	}
	if len(data) != nnz {
		return sparseErrorf(tag, "data has %d entries, want nnz = %d", len(data), nnz)
	}
	for i, v := range data {
		if v < 0 {
			return sparseErrorf(tag, "data[%d] = %d is negative", i, v)
		}
	}

	return nil
}

// columnsSorted reports whether indices are non-decreasing inside every row.
func columnsSorted[I Index](rows int, indptr, indices []I) bool {
	for r := 0; r < rows; r++ {
		for p := indptr[r] + 1; p < indptr[r+1]; p++ {
			if indices[p] < indices[p-1] {
				return false
			}
		}
	}

	return true
}

// nonDecreasing reports whether ids is sorted ascending.
func nonDecreasing[I Index](ids []I) bool {
	for i := 1; i < len(ids); i++ {
		if ids[i] < ids[i-1] {
			return false
		}
	}

	return true
}

// validatePermutation requires ids to hold every value of [0, len(ids))
// exactly once.
func validatePermutation[I Index](tag string, ids []I) error {
	seen := make([]bool, len(ids))
	for i, v := range ids {
		if v < 0 || int64(v) >= int64(len(ids)) {
			return sparseErrorf(tag, "edge id %d at %d outside [0,%d)", v, i, len(ids))
		}
		if seen[v] {
			return sparseErrorf(tag, "edge id %d repeated at %d", v, i)
		}
		seen[v] = true
	}

	return nil
}
