// SPDX-License-Identifier: MIT

package tensor

import (
	"math"

	"github.com/katalvlaran/lvkernel/failure"
	"golang.org/x/exp/constraints"
)

const (
	ctxPermute     = "Tensor.Permute"
	ctxIndexSelect = "tensor.IndexSelect"
	ctxAllClose    = "tensor.AllClose"
)

// Permute returns a zero-copy view with axes reordered: view axis i is
// source axis axes[i]. The view is generally non-contiguous.
//
// Errors:
//   - failure.ErrShape when axes is not a permutation of [0, ndim).
//
// Complexity: Time O(ndim), Space O(ndim).
func (t *Tensor) Permute(axes ...int) (*Tensor, error) {
	if t == nil {
		return nil, failure.Tagf(ctxPermute, failure.ErrShape, "empty tensor")
	}
	nd := len(t.shape.AxisLengths)
	if len(axes) != nd {
		return nil, failure.Tagf(ctxPermute, failure.ErrShape, "%d axes for rank %d", len(axes), nd)
	}
	seen := make([]bool, nd)
	dims := make([]int, nd)
	strides := make([]int, nd)
	for i, a := range axes {
		if a < 0 || a >= nd || seen[a] {
			return nil, failure.Tagf(ctxPermute, failure.ErrShape, "axes %v is not a permutation", axes)
		}
		seen[a] = true
		dims[i] = t.shape.AxisLengths[a]
		strides[i] = t.strides[a]
	}
	view := *t
	view.shape.AxisLengths = dims
	view.strides = strides

	return &view, nil
}

// Contiguous returns t itself when already row-major, else a dense copy.
func (t *Tensor) Contiguous() *Tensor {
	if t == nil || t.IsContiguous() {
		return t
	}

	return t.copyTo(t.device)
}

// Clone returns an independent dense copy on the same device.
func (t *Tensor) Clone() *Tensor {
	if t == nil {
		return nil
	}

	return t.copyTo(t.device)
}

// To returns a dense copy of t owned by dev. Copying to the current device
// still allocates, so the result never aliases t.
func (t *Tensor) To(dev Device) *Tensor {
	if t == nil {
		return nil
	}

	return t.copyTo(dev)
}

func (t *Tensor) copyTo(dev Device) *Tensor {
	switch buf := t.data.(type) {
	case []float32:
		return newTensor(dev, gatherLogical(t, buf), t.shape.AxisLengths)
	case []float64:
		return newTensor(dev, gatherLogical(t, buf), t.shape.AxisLengths)
	case []int32:
		return newTensor(dev, gatherLogical(t, buf), t.shape.AxisLengths)
	default:
		return newTensor(dev, gatherLogical(t, t.data.([]int64)), t.shape.AxisLengths)
	}
}

func gatherLogical[T Element](t *Tensor, buf []T) []T {
	out := make([]T, t.Size())
	t.forEachOffset(func(flat, off int) { out[flat] = buf[off] })

	return out
}

// IndexSelect gathers rows of t along the leading axis:
//
//	out[i, ...] = t[index[i], ...]
//
// The result is a fresh contiguous tensor on t's device.
//
// Errors:
//   - failure.ErrShape for a rank-0 tensor or an out-of-range index.
//   - failure.ErrNonContiguous for strided input.
//
// Complexity: Time O(len(index)·rowLen), Space the same.
func IndexSelect[I constraints.Integer](t *Tensor, index []I) (*Tensor, error) {
	if t.NDim() < 1 {
		return nil, failure.Tagf(ctxIndexSelect, failure.ErrShape, "rank-0 or empty tensor")
	}
	if !t.IsContiguous() {
		return nil, failure.Tagf(ctxIndexSelect, failure.ErrNonContiguous, "")
	}
	rows := t.shape.AxisLengths[0]
	for _, r := range index {
		if int64(r) < 0 || int64(r) >= int64(rows) {
			return nil, failure.Tagf(ctxIndexSelect, failure.ErrShape, "row %d outside [0,%d)", r, rows)
		}
	}
	dims := append([]int{len(index)}, t.shape.AxisLengths[1:]...)
	switch buf := t.data.(type) {
	case []float32:
		return newTensor(t.device, gatherRows(buf[t.offset:], t.RowLen(), index), dims), nil
	case []float64:
		return newTensor(t.device, gatherRows(buf[t.offset:], t.RowLen(), index), dims), nil
	case []int32:
		return newTensor(t.device, gatherRows(buf[t.offset:], t.RowLen(), index), dims), nil
	default:
		return newTensor(t.device, gatherRows(t.data.([]int64)[t.offset:], t.RowLen(), index), dims), nil
	}
}

func gatherRows[T Element, I constraints.Integer](src []T, rowLen int, index []I) []T {
	out := make([]T, len(index)*rowLen)
	for i, r := range index {
		copy(out[i*rowLen:(i+1)*rowLen], src[int(r)*rowLen:(int(r)+1)*rowLen])
	}

	return out
}

// AllClose reports whether |a-b| ≤ atol + rtol·|b| holds element-wise.
// NaN never matches; equal-signed infinities match. Strided inputs are fine.
//
// Errors:
//   - failure.ErrShape when dims differ or either tensor is empty.
//   - failure.ErrUnsupportedCombination when dtypes differ.
//
// Complexity: Time O(size), Space O(1) beyond the index odometer.
func AllClose(a, b *Tensor, rtol, atol float64) (bool, error) {
	if a == nil || b == nil {
		return false, failure.Tagf(ctxAllClose, failure.ErrShape, "empty operand")
	}
	if a.shape.DType != b.shape.DType {
		return false, failure.Tagf(ctxAllClose, failure.ErrUnsupportedCombination, "%s vs %s", a.shape.DType.String(), b.shape.DType.String())
	}
	if !sameDims(a.shape.AxisLengths, b.shape.AxisLengths) {
		return false, failure.Tagf(ctxAllClose, failure.ErrShape, "%v vs %v", a.shape.AxisLengths, b.shape.AxisLengths)
	}
	rtol, atol = math.Abs(rtol), math.Abs(atol)
	av := a.Contiguous()
	bv := b.Contiguous()
	n := a.Size()
	for i := 0; i < n; i++ {
		x, y := loadFloat(av.data, av.offset+i), loadFloat(bv.data, bv.offset+i)
		if !withinTol(x, y, rtol, atol) {
			return false, nil
		}
	}

	return true, nil
}

func withinTol(x, y, rtol, atol float64) bool {
	if math.IsNaN(x) || math.IsNaN(y) {
		return false
	}
	if math.IsInf(x, 0) || math.IsInf(y, 0) {
		return x == y
	}

	return math.Abs(x-y) <= atol+rtol*math.Abs(y)
}

func loadFloat(data any, off int) float64 {
	switch buf := data.(type) {
	case []float32:
		return float64(buf[off])
	case []float64:
		return buf[off]
	case []int32:
		return float64(buf[off])
	default:
		return float64(data.([]int64)[off])
	}
}

func sameDims(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}
