// SPDX-License-Identifier: MIT

package sparse

// CSR is a compressed-sparse-row view.
//
//   - Row r owns physical positions [Indptr[r], Indptr[r+1]).
//   - Indices[p] is the column id at position p.
//   - Data[p], when non-nil, is the logical edge id stored at position p;
//     a nil Data means position p is edge p.
//   - Sorted records that column ids are non-decreasing inside every row.
//
// A CSR is read-only once built; kernels share it across workers.
type CSR[I Index] struct {
	NumRows int
	NumCols int
	Indptr  []I
	Indices []I
	Data    []I
	Sorted  bool
}

// NewCSR validates the buffers and returns a view that borrows them.
// Sorted is derived by scanning the rows.
//
// Errors:
//   - failure.ErrShape on negative extents, a malformed indptr, column ids
//     outside [0, numCols) or a data array of the wrong length.
//
// Complexity: Time O(rows + nnz), Space O(1).
func NewCSR[I Index](numRows, numCols int, indptr, indices, data []I) (*CSR[I], error) {
	const tag = "NewCSR"
	if err := validateDims(tag, numRows, numCols); err != nil {
		return nil, err
	}
	if err := validateIndptr(tag, numRows, indptr, len(indices)); err != nil {
		return nil, err
	}
	if err := validateRange(tag, "indices", indices, numCols); err != nil {
		return nil, err
	}
	if err := validateData(tag, data, len(indices)); err != nil {
		return nil, err
	}

	return &CSR[I]{
		NumRows: numRows,
		NumCols: numCols,
		Indptr:  indptr,
		Indices: indices,
		Data:    data,
		Sorted:  columnsSorted(numRows, indptr, indices),
	}, nil
}

// Validate re-runs the structural checks on a hand-built view.
// It does not recompute Sorted, but rejects a Sorted flag that is false
// to the data.
func (m *CSR[I]) Validate() error {
	const tag = "CSR.Validate"
	if m == nil {
		return sparseErrorf(tag, "nil view")
	}
	if err := validateDims(tag, m.NumRows, m.NumCols); err != nil {
		return err
	}
	if err := validateIndptr(tag, m.NumRows, m.Indptr, len(m.Indices)); err != nil {
		return err
	}
	if err := validateRange(tag, "indices", m.Indices, m.NumCols); err != nil {
		return err
	}
	if err := validateData(tag, m.Data, len(m.Indices)); err != nil {
		return err
	}
	if m.Sorted && !columnsSorted(m.NumRows, m.Indptr, m.Indices) {
		return sparseErrorf(tag, "Sorted set but a row has descending columns")
	}

	return nil
}

// NNZ returns the number of stored entries.
func (m *CSR[I]) NNZ() int { return len(m.Indices) }

// HasData reports whether an explicit edge-id permutation is attached.
func (m *CSR[I]) HasData() bool { return m.Data != nil }

// EdgeID maps a physical position to its logical edge id.
func (m *CSR[I]) EdgeID(pos int) I {
	if m.Data == nil {
		return I(pos)
	}

	return m.Data[pos]
}

// Row returns the borrowed column ids of row r.
//
// Errors:
//   - failure.ErrShape when r is outside [0, NumRows).
func (m *CSR[I]) Row(r int) (Span[I], error) {
	if r < 0 || r >= m.NumRows {
		return Span[I]{}, sparseErrorf("CSR.Row", "row %d outside [0,%d)", r, m.NumRows)
	}
	lo, hi := int(m.Indptr[r]), int(m.Indptr[r+1])

	return Span[I]{base: m.Indices, start: lo, n: hi - lo}, nil
}

// RowData returns the logical edge ids of row r. With a nil Data the ids
// are materialized into a fresh buffer, so the span is borrowed only when
// Data is present.
func (m *CSR[I]) RowData(r int) (Span[I], error) {
	if r < 0 || r >= m.NumRows {
		return Span[I]{}, sparseErrorf("CSR.RowData", "row %d outside [0,%d)", r, m.NumRows)
	}
	lo, hi := int(m.Indptr[r]), int(m.Indptr[r+1])
	if m.Data != nil {
		return Span[I]{base: m.Data, start: lo, n: hi - lo}, nil
	}
	ids := make([]I, hi-lo)
	for i := range ids {
		ids[i] = I(lo + i)
	}

	return Span[I]{base: ids, n: len(ids)}, nil
}
