// SPDX-License-Identifier: MIT

package engine

import (
	"context"

	"github.com/gx-org/backend/dtype"
	"github.com/katalvlaran/lvkernel/bcast"
	"github.com/katalvlaran/lvkernel/binop"
	"github.com/katalvlaran/lvkernel/failure"
	"github.com/katalvlaran/lvkernel/reduce"
	"github.com/katalvlaran/lvkernel/sparse"
	"github.com/katalvlaran/lvkernel/tensor"
)

// GSpMM allocates the outputs of a SpMM call and runs it.
//
//   - out is [NumDst, broadcast feature shape...] on g's device, with the
//     dtype of the operand(s) op reads.
//   - For max/min, argU (when op reads ufeat) and argE (when op reads
//     efeat) are allocated with g's index dtype; otherwise they are nil.
func (e *Engine) GSpMM(ctx context.Context, op, red string, g sparse.Relation, ufeat, efeat *tensor.Tensor,
	opts ...CallOption) (out, argU, argE *tensor.Tensor, err error) {
	o, k, d, err := plan(op, red, g, ufeat, efeat)
	if err != nil {
		return nil, nil, nil, err
	}
	lhs, rhs := pick(o, ufeat, efeat)
	dims := append([]int{g.NumDst()}, d.OutShape...)
	if out, err = alloc(g.Device(), featureDType(lhs, rhs), dims); err != nil {
		return nil, nil, nil, err
	}
	var aux []*tensor.Tensor
	if k.NeedsArg() {
		if o.UsesLhs() {
			if argU, err = alloc(g.Device(), g.IndexType(), dims); err != nil {
				return nil, nil, nil, err
			}
		}
		if o.UsesRhs() {
			if argE, err = alloc(g.Device(), g.IndexType(), dims); err != nil {
				return nil, nil, nil, err
			}
		}
		aux = []*tensor.Tensor{argU, argE}
	}
	if err = e.SpMM(ctx, op, red, g, ufeat, efeat, out, aux, opts...); err != nil {
		return nil, nil, nil, err
	}

	return out, argU, argE, nil
}

// GSDDMM allocates out as [NumEdges, broadcast feature shape...] and runs
// a SDDMM call.
func (e *Engine) GSDDMM(ctx context.Context, op string, g sparse.Relation, ufeat, vfeat *tensor.Tensor,
	opts ...CallOption) (*tensor.Tensor, error) {
	o, _, d, err := plan(op, "sum", g, ufeat, vfeat)
	if err != nil {
		return nil, err
	}
	lhs, rhs := pick(o, ufeat, vfeat)
	out, err := alloc(g.Device(), featureDType(lhs, rhs), append([]int{g.NumEdges()}, d.OutShape...))
	if err != nil {
		return nil, err
	}
	if err = e.SDDMM(ctx, op, g, ufeat, vfeat, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}

// GSpMM runs on the Default engine.
func GSpMM(ctx context.Context, op, red string, g sparse.Relation, ufeat, efeat *tensor.Tensor,
	opts ...CallOption) (out, argU, argE *tensor.Tensor, err error) {
	return Default().GSpMM(ctx, op, red, g, ufeat, efeat, opts...)
}

// GSDDMM runs on the Default engine.
func GSDDMM(ctx context.Context, op string, g sparse.Relation, ufeat, vfeat *tensor.Tensor,
	opts ...CallOption) (*tensor.Tensor, error) {
	return Default().GSDDMM(ctx, op, g, ufeat, vfeat, opts...)
}

// CopyUSum sums source features into each destination.
func CopyUSum(ctx context.Context, g sparse.Relation, u *tensor.Tensor) (*tensor.Tensor, error) {
	out, _, _, err := GSpMM(ctx, "copy_lhs", "sum", g, u, nil)

	return out, err
}

// UMulESum sums source features scaled by edge features.
func UMulESum(ctx context.Context, g sparse.Relation, u, e *tensor.Tensor) (*tensor.Tensor, error) {
	out, _, _, err := GSpMM(ctx, "mul", "sum", g, u, e)

	return out, err
}

// CopyEMax takes the largest incoming edge feature and the edge that
// supplied it.
func CopyEMax(ctx context.Context, g sparse.Relation, e *tensor.Tensor) (out, argE *tensor.Tensor, err error) {
	out, _, argE, err = GSpMM(ctx, "copy_rhs", "max", g, nil, e)

	return out, argE, err
}

// UDotV computes one inner product per edge over the last feature axis.
func UDotV(ctx context.Context, g sparse.Relation, u, v *tensor.Tensor) (*tensor.Tensor, error) {
	return GSDDMM(ctx, "dot", g, u, v)
}

// UAddV adds source and destination features per edge.
func UAddV(ctx context.Context, g sparse.Relation, u, v *tensor.Tensor) (*tensor.Tensor, error) {
	return GSDDMM(ctx, "add", g, u, v)
}

// plan resolves names and the broadcast shape ahead of allocation. Operand
// problems beyond that are left to the call's own validation.
func plan(op, red string, g sparse.Relation, lhs, rhs *tensor.Tensor) (binop.Op, reduce.Kind, *bcast.Descriptor, error) {
	if g == nil {
		return 0, 0, nil, failure.Tagf("engine.plan", failure.ErrShape, "nil relation")
	}
	o, err := binop.Parse(op)
	if err != nil {
		return 0, 0, nil, err
	}
	k, err := reduce.Parse(red)
	if err != nil {
		return 0, 0, nil, err
	}
	lhs, rhs = pick(o, lhs, rhs)
	if (o.UsesLhs() && lhs.IsEmpty()) || (o.UsesRhs() && rhs.IsEmpty()) {
		return 0, 0, nil, failure.Tagf("engine.plan", failure.ErrShape, "missing operand for %s", o)
	}
	d, err := bcast.Compute(o, lhs.FeatureDims(), rhs.FeatureDims())
	if err != nil {
		return 0, 0, nil, err
	}

	return o, k, d, nil
}

// featureDType is the dtype of the operand(s) in use; lhs wins when both
// are present and the call itself rejects a disagreement.
func featureDType(lhs, rhs *tensor.Tensor) dtype.DataType {
	if !lhs.IsEmpty() {
		return lhs.DType()
	}

	return rhs.DType()
}

func alloc(dev tensor.Device, dt dtype.DataType, dims []int) (*tensor.Tensor, error) {
	switch dt {
	case dtype.Float32:
		return tensor.New[float32](dev, dims...)
	case dtype.Float64:
		return tensor.New[float64](dev, dims...)
	case dtype.Int32:
		return tensor.New[int32](dev, dims...)
	case dtype.Int64:
		return tensor.New[int64](dev, dims...)
	default:
		return nil, failure.Tagf("engine.alloc", failure.ErrUnsupportedCombination, "dtype %s", dt.String())
	}
}
