// SPDX-License-Identifier: MIT

package sparse

// ToCOO expands the row pointers of m into an explicit row array.
// Col and Data borrow m's buffers; entry order is m's physical order, so
// the result is row-sorted and column-sorted exactly when m is Sorted.
//
// Complexity: Time O(rows + nnz), Space O(nnz).
func ToCOO[I Index](m *CSR[I]) *COO[I] {
	row := make([]I, m.NNZ())
	for r := 0; r < m.NumRows; r++ {
		for p := m.Indptr[r]; p < m.Indptr[r+1]; p++ {
			row[p] = I(r)
		}
	}

	return &COO[I]{
		NumRows:   m.NumRows,
		NumCols:   m.NumCols,
		Row:       row,
		Col:       m.Indices,
		Data:      m.Data,
		RowSorted: true,
		ColSorted: m.Sorted,
	}
}

// ToCSR compresses c by row with a stable counting sort, so entries of one
// row keep their COO order. Edge ids travel with their entries: the result
// carries an explicit Data unless c was already row-sorted without one.
//
// Complexity: Time O(rows + nnz), Space O(rows + nnz).
func ToCSR[I Index](c *COO[I]) *CSR[I] {
	nnz := c.NNZ()
	indptr := make([]I, c.NumRows+1)
	for _, r := range c.Row {
		indptr[r+1]++
	}
	for r := 0; r < c.NumRows; r++ {
		indptr[r+1] += indptr[r]
	}

	if c.RowSorted {
		return &CSR[I]{
			NumRows: c.NumRows,
			NumCols: c.NumCols,
			Indptr:  indptr,
			Indices: c.Col,
			Data:    c.Data,
			Sorted:  columnsSorted(c.NumRows, indptr, c.Col),
		}
	}

	indices := make([]I, nnz)
	data := make([]I, nnz)
	cursor := make([]I, c.NumRows)
	copy(cursor, indptr[:c.NumRows])
	for p := 0; p < nnz; p++ {
		r := c.Row[p]
		q := cursor[r]
		cursor[r]++
		indices[q] = c.Col[p]
		data[q] = c.EdgeID(p)
	}

	return &CSR[I]{
		NumRows: c.NumRows,
		NumCols: c.NumCols,
		Indptr:  indptr,
		Indices: indices,
		Data:    data,
		Sorted:  columnsSorted(c.NumRows, indptr, indices),
	}
}

// Transpose returns the CSR of mᵀ (equivalently the CSC of m). Rows are
// visited in ascending order, so every output row is column-sorted. The
// result always carries explicit edge ids.
//
// Complexity: Time O(rows + cols + nnz), Space O(cols + nnz).
func Transpose[I Index](m *CSR[I]) *CSR[I] {
	nnz := m.NNZ()
	indptr := make([]I, m.NumCols+1)
	for _, c := range m.Indices {
		indptr[c+1]++
	}
	for c := 0; c < m.NumCols; c++ {
		indptr[c+1] += indptr[c]
	}
	indices := make([]I, nnz)
	data := make([]I, nnz)
	cursor := make([]I, m.NumCols)
	copy(cursor, indptr[:m.NumCols])
	for r := 0; r < m.NumRows; r++ {
		for p := m.Indptr[r]; p < m.Indptr[r+1]; p++ {
			c := m.Indices[p]
			q := cursor[c]
			cursor[c]++
			indices[q] = I(r)
			data[q] = m.EdgeID(int(p))
		}
	}

	return &CSR[I]{
		NumRows: m.NumCols,
		NumCols: m.NumRows,
		Indptr:  indptr,
		Indices: indices,
		Data:    data,
		Sorted:  true,
	}
}
