// SPDX-License-Identifier: MIT
package binop_test

import (
	"math"
	"testing"

	"github.com/katalvlaran/lvkernel/binop"
	"github.com/katalvlaran/lvkernel/failure"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		want binop.Op
	}{
		{"add", binop.Add},
		{"sub", binop.Sub},
		{"mul", binop.Mul},
		{"div", binop.Div},
		{"copy_lhs", binop.CopyLhs},
		{"copy_rhs", binop.CopyRhs},
		{"dot", binop.Dot},
		{"copy_u", binop.CopyLhs},
		{"copy_e", binop.CopyRhs},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := binop.Parse(tc.name)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}

	_, err := binop.Parse("pow")
	require.ErrorIs(t, err, failure.ErrUnsupportedCombination)
}

func TestCapabilities(t *testing.T) {
	t.Parallel()

	require.True(t, binop.CopyLhs.UsesLhs())
	require.False(t, binop.CopyLhs.UsesRhs())
	require.False(t, binop.CopyRhs.UsesLhs())
	require.True(t, binop.CopyRhs.UsesRhs())
	for _, op := range []binop.Op{binop.Add, binop.Sub, binop.Mul, binop.Div, binop.Dot} {
		require.True(t, op.UsesLhs(), op.String())
		require.True(t, op.UsesRhs(), op.String())
		require.False(t, op.IsCopy(), op.String())
	}
	require.Equal(t, "copy_lhs", binop.CopyLhs.String())
	require.Equal(t, "op(42)", binop.Op(42).String())
}

func TestLookup(t *testing.T) {
	t.Parallel()

	l := []float64{6, 1, 2}
	r := []float64{3, 4, 5}
	require.Equal(t, 9.0, binop.Lookup[float64](binop.Add)(l, r, 1))
	require.Equal(t, 3.0, binop.Lookup[float64](binop.Sub)(l, r, 1))
	require.Equal(t, 18.0, binop.Lookup[float64](binop.Mul)(l, r, 1))
	require.Equal(t, 2.0, binop.Lookup[float64](binop.Div)(l, r, 1))
	require.Equal(t, 6.0, binop.Lookup[float64](binop.CopyLhs)(l, nil, 1))
	require.Equal(t, 3.0, binop.Lookup[float64](binop.CopyRhs)(nil, r, 1))
	require.Equal(t, 32.0, binop.Lookup[float64](binop.Dot)(l, r, 3))

	div := binop.Lookup[float32](binop.Div)
	require.True(t, math.IsInf(float64(div([]float32{1}, []float32{0}, 1)), 1), "division follows IEEE-754")

	require.Panics(t, func() { binop.Lookup[float32](binop.Op(99)) })
}
