// SPDX-License-Identifier: MIT

package sparse

// COO is a coordinate-list view: entry p connects Row[p] to Col[p].
// Duplicate coordinates are allowed and stay independent entries.
// Data has the same meaning as in CSR.
type COO[I Index] struct {
	NumRows   int
	NumCols   int
	Row       []I
	Col       []I
	Data      []I
	RowSorted bool
	ColSorted bool
}

// NewCOO validates the buffers and returns a view that borrows them.
// RowSorted is set when Row is non-decreasing; ColSorted additionally
// requires Col to be non-decreasing within each run of equal rows.
//
// Errors:
//   - failure.ErrShape on negative extents, row/col arrays of different
//     length, ids out of range or a data array of the wrong length.
//
// Complexity: Time O(nnz), Space O(1).
func NewCOO[I Index](numRows, numCols int, row, col, data []I) (*COO[I], error) {
	const tag = "NewCOO"
	if err := validateDims(tag, numRows, numCols); err != nil {
		return nil, err
	}
	if len(row) != len(col) {
		return nil, sparseErrorf(tag, "row has %d entries, col has %d", len(row), len(col))
	}
	if err := validateRange(tag, "row", row, numRows); err != nil {
		return nil, err
	}
	if err := validateRange(tag, "col", col, numCols); err != nil {
		return nil, err
	}
	if err := validateData(tag, data, len(row)); err != nil {
		return nil, err
	}
	rowSorted := nonDecreasing(row)

	return &COO[I]{
		NumRows:   numRows,
		NumCols:   numCols,
		Row:       row,
		Col:       col,
		Data:      data,
		RowSorted: rowSorted,
		ColSorted: rowSorted && colsSortedWithinRows(row, col),
	}, nil
}

// NNZ returns the number of stored entries.
func (c *COO[I]) NNZ() int { return len(c.Row) }

// HasData reports whether an explicit edge-id permutation is attached.
func (c *COO[I]) HasData() bool { return c.Data != nil }

// EdgeID maps a physical position to its logical edge id.
func (c *COO[I]) EdgeID(pos int) I {
	if c.Data == nil {
		return I(pos)
	}

	return c.Data[pos]
}

func colsSortedWithinRows[I Index](row, col []I) bool {
	for i := 1; i < len(row); i++ {
		if row[i] == row[i-1] && col[i] < col[i-1] {
			return false
		}
	}

	return true
}
