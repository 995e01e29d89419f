// SPDX-License-Identifier: MIT

package accel

import (
	"github.com/gx-org/backend/dtype"
	"github.com/katalvlaran/lvkernel/binop"
	"github.com/katalvlaran/lvkernel/failure"
	"github.com/katalvlaran/lvkernel/sparse"
)

// Csrmm computes C = A·B on stream s.
//
//   - A is the m×k CSR a; values[p] is the weight at physical position p,
//     or 1 for every position when values is nil.
//   - B is k×n, row-major (b[row*n + col]).
//   - C is m×n, column-major (c[col*m + row]); every element is written.
//
// Rows accumulate their entries in storage order starting from zero.
//
// Errors:
//   - failure.ErrUnsupportedCombination for int64 indices.
//   - failure.ErrShape when a buffer is shorter than its extent.
//
// Complexity: Time O(nnz·n), Space O(1).
func Csrmm[I sparse.Index, T binop.Float](s *Stream, a *sparse.CSR[I], values, b []T, n int, c []T) error {
	const tag = "accel.Csrmm"
	if dt := sparse.IndexDType[I](); dt != dtype.Int32 {
		return failure.Tagf(tag, failure.ErrUnsupportedCombination, "%s indices", dt.String())
	}
	m, k := a.NumRows, a.NumCols
	switch {
	case values != nil && len(values) < a.NNZ():
		return failure.Tagf(tag, failure.ErrShape, "%d values for nnz %d", len(values), a.NNZ())
	case len(b) < k*n:
		return failure.Tagf(tag, failure.ErrShape, "B has %d elements, need %dx%d", len(b), k, n)
	case len(c) < m*n:
		return failure.Tagf(tag, failure.ErrShape, "C has %d elements, need %dx%d", len(c), m, n)
	}

	s.For(m, func(lo, hi int) {
		for r := lo; r < hi; r++ {
			start, end := a.Indptr[r], a.Indptr[r+1]
			for j := 0; j < n; j++ {
				var acc T
				for p := start; p < end; p++ {
					x := b[int(a.Indices[p])*n+j]
					if values != nil {
						x = values[p] * x
					}
					acc += x
				}
				c[j*m+r] = acc
			}
		}
	})

	return nil
}

// Transpose writes the column-major m×n matrix src into dst in row-major
// order: dst[r*n + j] = src[j*m + r].
//
// Errors:
//   - failure.ErrShape when either buffer is shorter than m·n.
func Transpose[T binop.Float](s *Stream, m, n int, src, dst []T) error {
	if len(src) < m*n || len(dst) < m*n {
		return failure.Tagf("accel.Transpose", failure.ErrShape, "buffers %d/%d for %dx%d", len(src), len(dst), m, n)
	}
	s.For(m, func(lo, hi int) {
		for r := lo; r < hi; r++ {
			row := dst[r*n : (r+1)*n]
			for j := range row {
				row[j] = src[j*m+r]
			}
		}
	})

	return nil
}
