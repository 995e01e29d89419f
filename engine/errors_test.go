// SPDX-License-Identifier: MIT
package engine_test

import (
	"context"
	"errors"
	"testing"

	"github.com/katalvlaran/lvkernel/engine"
	"github.com/katalvlaran/lvkernel/failure"
	"github.com/katalvlaran/lvkernel/sparse"
	"github.com/katalvlaran/lvkernel/tensor"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

// errorFixture is a 3→2 relation with 4 edges and well-formed operands.
type errorFixture struct {
	g    *sparse.Graph[int32]
	u, e *tensor.Tensor
	out  *tensor.Tensor
}

func newErrorFixture(t *testing.T) *errorFixture {
	t.Helper()
	g, err := sparse.NewGraph[int32](3, 2, []int32{0, 1, 2, 2}, []int32{0, 0, 1, 1})
	require.NoError(t, err)

	return &errorFixture{
		g:   g,
		u:   filled(t, tensor.Host, 1.0, 3, 2),
		e:   filled(t, tensor.Host, 2.0, 4, 2),
		out: filled(t, tensor.Host, 7.0, 2, 2),
	}
}

func TestSpMM_Errors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newErrorFixture(t)
	strided := filled(t, tensor.Host, 1.0, 3, 2, 2)
	strided, err := strided.Permute(0, 2, 1)
	require.NoError(t, err)
	stridedOut, err := filled(t, tensor.Host, 1.0, 2, 2, 2).Permute(0, 2, 1)
	require.NoError(t, err)

	cases := []struct {
		name   string
		op     string
		reduce string
		u, e   *tensor.Tensor
		out    *tensor.Tensor
		aux    []*tensor.Tensor
		want   error
	}{
		{"unknown op", "pow", "sum", f.u, f.e, f.out, nil, failure.ErrUnsupportedCombination},
		{"unknown reduce", "mul", "mean", f.u, f.e, f.out, nil, failure.ErrUnsupportedCombination},
		{"device mismatch", "mul", "sum", filled(t, tensor.AccelDevice(0), 1.0, 3, 2), f.e, f.out, nil, failure.ErrDeviceMismatch},
		{"non-contiguous", "copy_u", "sum", strided, nil, stridedOut, nil, failure.ErrNonContiguous},
		{"missing operand", "mul", "sum", f.u, nil, f.out, nil, failure.ErrShape},
		{"missing out", "mul", "sum", f.u, f.e, nil, nil, failure.ErrShape},
		{"rank one", "copy_u", "sum", filled(t, tensor.Host, 1.0, 3), nil, f.out, nil, failure.ErrShape},
		{"src rows", "mul", "sum", filled(t, tensor.Host, 1.0, 4, 2), f.e, f.out, nil, failure.ErrShape},
		{"edge rows", "mul", "sum", f.u, filled(t, tensor.Host, 1.0, 3, 2), f.out, nil, failure.ErrShape},
		{"dst rows", "mul", "sum", f.u, f.e, filled(t, tensor.Host, 1.0, 3, 2), nil, failure.ErrShape},
		{"no broadcast", "add", "sum", f.u, filled(t, tensor.Host, 1.0, 4, 3), f.out, nil, failure.ErrShape},
		{"out feature", "mul", "sum", f.u, f.e, filled(t, tensor.Host, 1.0, 2, 3), nil, failure.ErrShape},
		{"dot axis", "dot", "sum", f.u, filled(t, tensor.Host, 1.0, 4, 3), f.out, nil, failure.ErrShape},
		{"aux count", "mul", "max", f.u, f.e, f.out, []*tensor.Tensor{nil}, failure.ErrShape},
		{"aux dims", "mul", "max", f.u, f.e, f.out,
			[]*tensor.Tensor{filled(t, tensor.Host, int32(0), 2, 1), nil}, failure.ErrShape},
		{"aux dtype", "mul", "max", f.u, f.e, f.out,
			[]*tensor.Tensor{filled(t, tensor.Host, int64(0), 2, 2), nil}, failure.ErrUnsupportedCombination},
		{"integer features", "copy_u", "sum", filled(t, tensor.Host, int32(1), 3, 2), nil,
			filled(t, tensor.Host, int32(0), 2, 2), nil, failure.ErrUnsupportedCombination},
		{"mixed dtypes", "mul", "sum", f.u, filled(t, tensor.Host, float32(1), 4, 2), f.out, nil, failure.ErrUnsupportedCombination},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := engine.SpMM(ctx, tc.op, tc.reduce, f.g, tc.u, tc.e, tc.out, tc.aux)
			require.ErrorIs(t, err, tc.want)
		})
	}
	require.Equal(t, []float64{7, 7, 7, 7}, flat[float64](t, f.out), "rejected calls never write")
}

func TestSpMM_ReportsEveryViolation(t *testing.T) {
	t.Parallel()

	f := newErrorFixture(t)
	remote := filled(t, tensor.AccelDevice(1), 1.0, 3, 2)
	err := engine.SpMM(context.Background(), "pow", "sum", f.g, remote, f.e, f.out, nil)
	require.ErrorIs(t, err, engine.ErrDeviceMismatch)
	require.ErrorIs(t, err, engine.ErrUnsupportedCombination)
	require.Len(t, multierr.Errors(errors.Unwrap(errors.Unwrap(err))), 2)
	require.Equal(t, "device_mismatch", failure.Kind(err))
}

func TestSpMM_AccelDeviceWithoutContext(t *testing.T) {
	t.Parallel()

	dev := tensor.AccelDevice(0)
	g, err := sparse.NewGraph[int32](1, 1, []int32{0}, []int32{0}, sparse.WithDevice(dev))
	require.NoError(t, err)
	out := filled(t, dev, 5.0, 1, 1)
	err = engine.SpMM(context.Background(), "copy_u", "sum", g, filled(t, dev, 1.0, 1, 1), nil, out, nil)
	require.ErrorIs(t, err, engine.ErrUnsupportedCombination)
	require.Equal(t, []float64{5}, flat[float64](t, out))
}

func TestSpMM_NilRelation(t *testing.T) {
	t.Parallel()

	f := newErrorFixture(t)
	require.ErrorIs(t, engine.SpMM(context.Background(), "mul", "sum", nil, f.u, f.e, f.out, nil), engine.ErrShape)
	require.ErrorIs(t, engine.SDDMM(context.Background(), "mul", nil, f.u, f.u, f.out), engine.ErrShape)
	_, _, _, err := engine.GSpMM(context.Background(), "mul", "sum", nil, f.u, f.e)
	require.ErrorIs(t, err, engine.ErrShape)
}

func TestSDDMM_Errors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newErrorFixture(t)
	v := filled(t, tensor.Host, 3.0, 2, 2)
	edges := filled(t, tensor.Host, 7.0, 4, 2)

	require.ErrorIs(t, engine.SDDMM(ctx, "max", f.g, f.u, v, edges), engine.ErrUnsupportedCombination)
	require.ErrorIs(t, engine.SDDMM(ctx, "mul", f.g, f.u, v, filled(t, tensor.Host, 0.0, 2, 2)), engine.ErrShape)
	require.ErrorIs(t, engine.SDDMM(ctx, "mul", f.g, f.u, f.u, edges), engine.ErrShape, "V_data rows follow destinations")
	require.ErrorIs(t, engine.SDDMM(ctx, "mul", f.g, f.u, filled(t, tensor.AccelDevice(0), 3.0, 2, 2), edges), engine.ErrDeviceMismatch)
	require.Equal(t, []float64{7, 7, 7, 7, 7, 7, 7, 7}, flat[float64](t, edges))

	_, err := engine.GSDDMM(ctx, "mul", f.g, f.u, nil)
	require.ErrorIs(t, err, engine.ErrShape)
}
