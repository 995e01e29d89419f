// SPDX-License-Identifier: MIT

package sparse

import (
	"sort"
)

// RowNNZ returns the number of entries stored in row r.
//
// Errors:
//   - failure.ErrShape when r is outside [0, NumRows).
func RowNNZ[I Index](m *CSR[I], r int) (int, error) {
	if r < 0 || r >= m.NumRows {
		return 0, sparseErrorf("RowNNZ", "row %d outside [0,%d)", r, m.NumRows)
	}

	return int(m.Indptr[r+1] - m.Indptr[r]), nil
}

// RowNNZs is the vectorized RowNNZ: out[i] = nnz(rows[i]).
//
// Errors:
//   - failure.ErrShape when any row id is out of range.
//
// Complexity: Time O(len(rows)), Space O(len(rows)).
func RowNNZs[I Index](m *CSR[I], rows []I) ([]I, error) {
	if err := validateRange("RowNNZs", "rows", rows, m.NumRows); err != nil {
		return nil, err
	}
	out := make([]I, len(rows))
	for i, r := range rows {
		out[i] = m.Indptr[r+1] - m.Indptr[r]
	}

	return out, nil
}

// SliceRow returns row r as a one-row CSR. See SliceRows.
func SliceRow[I Index](m *CSR[I], r int) (*CSR[I], error) {
	if r < 0 || r >= m.NumRows {
		return nil, sparseErrorf("SliceRow", "row %d outside [0,%d)", r, m.NumRows)
	}

	return SliceRows(m, r, r+1)
}

// SliceRows returns rows [start, end) of m.
//
//   - Indptr is rebased to start at 0 (fresh buffer).
//   - Indices borrows m.Indices; do not mutate m while the slice is live.
//   - Edge ids are preserved: Data borrows m.Data, or holds the original
//     positions when m had none.
//   - Sorted is inherited.
//
// Errors:
//   - failure.ErrShape unless 0 ≤ start ≤ end ≤ NumRows.
//
// Complexity: Time O(end-start) plus O(nnz of the slice) when ids are
// materialized.
func SliceRows[I Index](m *CSR[I], start, end int) (*CSR[I], error) {
	if start < 0 || end < start || end > m.NumRows {
		return nil, sparseErrorf("SliceRows", "range [%d,%d) outside [0,%d]", start, end, m.NumRows)
	}
	base := m.Indptr[start]
	indptr := make([]I, end-start+1)
	for i := range indptr {
		indptr[i] = m.Indptr[start+i] - base
	}
	lo, hi := int(base), int(m.Indptr[end])

	var data []I
	if m.Data != nil {
		data = m.Data[lo:hi:hi]
	} else {
		data = make([]I, hi-lo)
		for i := range data {
			data[i] = I(lo + i)
		}
	}

	return &CSR[I]{
		NumRows: end - start,
		NumCols: m.NumCols,
		Indptr:  indptr,
		Indices: m.Indices[lo:hi:hi],
		Data:    data,
		Sorted:  m.Sorted,
	}, nil
}

// SliceRowsIndex gathers the listed rows, in the listed order, into a new
// CSR. Repeated row ids are allowed. All buffers are fresh copies and edge
// ids are preserved.
//
// Errors:
//   - failure.ErrShape when any row id is out of range.
//
// Complexity: Time O(len(rows) + gathered nnz), Space the same.
func SliceRowsIndex[I Index](m *CSR[I], rows []I) (*CSR[I], error) {
	if err := validateRange("SliceRowsIndex", "rows", rows, m.NumRows); err != nil {
		return nil, err
	}
	indptr := make([]I, len(rows)+1)
	for i, r := range rows {
		indptr[i+1] = indptr[i] + m.Indptr[r+1] - m.Indptr[r]
	}
	nnz := int(indptr[len(rows)])
	indices := make([]I, 0, nnz)
	data := make([]I, 0, nnz)
	for _, r := range rows {
		lo, hi := m.Indptr[r], m.Indptr[r+1]
		indices = append(indices, m.Indices[lo:hi]...)
		for p := lo; p < hi; p++ {
			data = append(data, m.EdgeID(int(p)))
		}
	}

	return &CSR[I]{
		NumRows: len(rows),
		NumCols: m.NumCols,
		Indptr:  indptr,
		Indices: indices,
		Data:    data,
		Sorted:  m.Sorted,
	}, nil
}

// IsSorted scans m and reports whether every row has non-decreasing
// column ids. It ignores the Sorted flag.
func IsSorted[I Index](m *CSR[I]) bool {
	return columnsSorted(m.NumRows, m.Indptr, m.Indices)
}

// SortColumns sorts the column ids of every row in place, carrying edge ids
// along, and sets Sorted. When m has no Data, the original positions are
// materialized first so logical edge ids survive the reordering.
// Entries with equal columns keep their relative order.
//
// Complexity: Time O(Σ d·log d) over row degrees d, Space O(nnz) only when
// Data is materialized.
func SortColumns[I Index](m *CSR[I]) {
	if m.Sorted {
		return
	}
	if m.Data == nil {
		m.Data = make([]I, m.NNZ())
		for p := range m.Data {
			m.Data[p] = I(p)
		}
	}
	for r := 0; r < m.NumRows; r++ {
		lo, hi := m.Indptr[r], m.Indptr[r+1]
		if hi-lo < 2 {
			continue
		}
		sort.Stable(rowSorter[I]{cols: m.Indices[lo:hi], data: m.Data[lo:hi]})
	}
	m.Sorted = true
}

// rowSorter co-sorts one row's column ids and edge ids.
type rowSorter[I Index] struct {
	cols []I
	data []I
}

func (s rowSorter[I]) Len() int           { return len(s.cols) }
func (s rowSorter[I]) Less(i, j int) bool { return s.cols[i] < s.cols[j] }
func (s rowSorter[I]) Swap(i, j int) {
	s.cols[i], s.cols[j] = s.cols[j], s.cols[i]
	s.data[i], s.data[j] = s.data[j], s.data[i]
}
