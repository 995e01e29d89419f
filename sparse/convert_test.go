// SPDX-License-Identifier: MIT
package sparse_test

import (
	"testing"

	"github.com/katalvlaran/lvkernel/sparse"
	"github.com/stretchr/testify/require"
)

func TestToCOO_RoundTrip(t *testing.T) {
	t.Parallel()

	m := sample(t)
	c := sparse.ToCOO(m)
	require.Equal(t, []int32{0, 0, 2, 2, 2, 3}, c.Row)
	require.Equal(t, m.Indices, c.Col)
	require.True(t, c.RowSorted)
	require.False(t, c.ColSorted)

	back := sparse.ToCSR(c)
	require.NoError(t, back.Validate())
	require.Equal(t, m.Indptr, back.Indptr)
	require.Equal(t, m.Indices, back.Indices)
	for p := 0; p < m.NNZ(); p++ {
		require.Equal(t, m.EdgeID(p), back.EdgeID(p))
	}
}

func TestToCSR_UnsortedRowsKeepEdgeIDs(t *testing.T) {
	t.Parallel()

	c, err := sparse.NewCOO[int32](3, 2,
		[]int32{2, 0, 2, 1},
		[]int32{1, 0, 0, 1},
		nil)
	require.NoError(t, err)
	require.False(t, c.RowSorted)

	m := sparse.ToCSR(c)
	require.NoError(t, m.Validate())
	require.Equal(t, []int32{0, 1, 2, 4}, m.Indptr)
	require.Equal(t, []int32{0, 1, 1, 0}, m.Indices)
	require.Equal(t, []int32{1, 3, 0, 2}, m.Data)
	require.False(t, m.Sorted)
}

func TestTranspose(t *testing.T) {
	t.Parallel()

	m := sample(t)
	tr := sparse.Transpose(m)
	require.NoError(t, tr.Validate())
	require.Equal(t, 5, tr.NumRows)
	require.Equal(t, 4, tr.NumCols)
	require.True(t, tr.Sorted)
	// column c of m becomes row c; sources listed in ascending row order
	require.Equal(t, []int32{0, 1, 2, 4, 5, 6}, tr.Indptr)
	require.Equal(t, []int32{2, 0, 2, 3, 0, 2}, tr.Indices)
	require.Equal(t, []int32{3, 0, 4, 5, 1, 2}, tr.Data)

	twice := sparse.Transpose(tr)
	require.Equal(t, m.Indptr, twice.Indptr)
	for r := 0; r < m.NumRows; r++ {
		for p := m.Indptr[r]; p < m.Indptr[r+1]; p++ {
			// twice is sorted; match edge ids by (row, col)
			found := false
			for q := twice.Indptr[r]; q < twice.Indptr[r+1]; q++ {
				if twice.Indices[q] == m.Indices[p] && twice.EdgeID(int(q)) == m.EdgeID(int(p)) {
					found = true
				}
			}
			require.Truef(t, found, "edge %d lost", m.EdgeID(int(p)))
		}
	}
}
