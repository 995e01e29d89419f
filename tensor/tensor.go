// SPDX-License-Identifier: MIT

package tensor

import (
	"fmt"
	"strings"

	"github.com/gx-org/backend/dtype"
	"github.com/gx-org/backend/shape"
	"github.com/katalvlaran/lvkernel/failure"
)

// ---------- error context tags ----------

const (
	ctxNew       = "tensor.New"
	ctxFromSlice = "tensor.FromSlice"
	ctxFlat      = "tensor.Flat"
	ctxAt        = "Tensor.At"
	ctxSet       = "Tensor.Set"
)

// Element is the closed set of element types a Tensor can hold.
// Feature tensors use the floating types; auxiliary index tensors the integer ones.
type Element interface {
	float32 | float64 | int32 | int64
}

// Tensor is a typed, possibly strided view over a flat buffer.
//   - shape carries the element dtype and the axis lengths.
//   - strides[i] is the element distance between neighbours on axis i.
//   - data is one of []float32, []float64, []int32, []int64.
//
// A nil *Tensor is the empty operand sentinel.
type Tensor struct {
	shape   shape.Shape // dtype + axis lengths
	strides []int       // per-axis element strides
	offset  int         // index of element (0,...,0) in data
	data    any         // typed backing buffer
	device  Device      // owning execution context
}

var _ fmt.Stringer = (*Tensor)(nil)

// DTypeOf maps a Go element type to its dtype tag.
func DTypeOf[T Element]() dtype.DataType {
	var zero T
	switch any(zero).(type) {
	case float32:
		return dtype.Float32
	case float64:
		return dtype.Float64
	case int32:
		return dtype.Int32
	default:
		return dtype.Int64
	}
}

// New allocates a zero-filled contiguous tensor on dev.
//
// Errors:
//   - failure.ErrShape when an axis length is negative.
//
// Complexity: Time O(size), Space O(size).
func New[T Element](dev Device, dims ...int) (*Tensor, error) {
	if err := validateDims(ctxNew, dims); err != nil {
		return nil, err
	}

	return newTensor(dev, make([]T, numElements(dims)), dims), nil
}

// FromSlice adopts values (no copy) as a contiguous tensor with the given dims.
//
// Errors:
//   - failure.ErrShape when an axis is negative or len(values) != product(dims).
//
// Notes:
//   - The tensor aliases values; later writes through either are visible to both.
func FromSlice[T Element](dev Device, values []T, dims ...int) (*Tensor, error) {
	if err := validateDims(ctxFromSlice, dims); err != nil {
		return nil, err
	}
	if want := numElements(dims); len(values) != want {
		return nil, failure.Tagf(ctxFromSlice, failure.ErrShape, "%d values for dims %v (need %d)", len(values), dims, want)
	}

	return newTensor(dev, values, dims), nil
}

// Full allocates a contiguous tensor with every element set to v.
func Full[T Element](dev Device, v T, dims ...int) (*Tensor, error) {
	t, err := New[T](dev, dims...)
	if err != nil {
		return nil, err
	}
	buf := t.data.([]T)
	for i := range buf {
		buf[i] = v
	}

	return t, nil
}

// Flat returns the contiguous element slice of t, capped so appends never
// alias the backing buffer. A nil tensor yields a nil slice.
//
// Errors:
//   - failure.ErrUnsupportedCombination when T differs from the tensor dtype.
//   - failure.ErrNonContiguous when t is a strided view.
//
// Complexity: O(ndim).
func Flat[T Element](t *Tensor) ([]T, error) {
	if t.IsEmpty() {
		return nil, nil
	}
	buf, ok := t.data.([]T)
	if !ok {
		return nil, failure.Tagf(ctxFlat, failure.ErrUnsupportedCombination,
			"tensor holds %s, requested %s", t.shape.DType.String(), DTypeOf[T]().String())
	}
	if !t.IsContiguous() {
		return nil, failure.Tagf(ctxFlat, failure.ErrNonContiguous, "strides %v for dims %v", t.strides, t.shape.AxisLengths)
	}
	end := t.offset + t.Size()

	return buf[t.offset:end:end], nil
}

// IsEmpty reports whether t is the empty operand sentinel (nil).
func (t *Tensor) IsEmpty() bool { return t == nil }

// DType returns the element dtype, or dtype.Invalid for the empty sentinel.
func (t *Tensor) DType() dtype.DataType {
	if t == nil {
		return dtype.Invalid
	}

	return t.shape.DType
}

// Shape returns a copy of the shape descriptor.
func (t *Tensor) Shape() *shape.Shape {
	if t == nil {
		return &shape.Shape{DType: dtype.Invalid}
	}

	return &shape.Shape{DType: t.shape.DType, AxisLengths: t.Dims()}
}

// Dims returns a copy of the axis lengths.
func (t *Tensor) Dims() []int {
	if t == nil {
		return nil
	}

	return append([]int(nil), t.shape.AxisLengths...)
}

// NDim returns the number of axes.
func (t *Tensor) NDim() int {
	if t == nil {
		return 0
	}

	return len(t.shape.AxisLengths)
}

// Dim returns the length of axis i (0 when out of range).
func (t *Tensor) Dim(i int) int {
	if t == nil || i < 0 || i >= len(t.shape.AxisLengths) {
		return 0
	}

	return t.shape.AxisLengths[i]
}

// Size returns the number of logical elements.
func (t *Tensor) Size() int {
	if t == nil {
		return 0
	}

	return numElements(t.shape.AxisLengths)
}

// FeatureDims returns the trailing axes (everything after the node/edge axis).
func (t *Tensor) FeatureDims() []int {
	if t.NDim() < 1 {
		return nil
	}

	return append([]int(nil), t.shape.AxisLengths[1:]...)
}

// RowLen returns the flattened length of one leading-axis row.
func (t *Tensor) RowLen() int { return numElements(t.FeatureDims()) }

// Device returns the owning device (Host for the empty sentinel).
func (t *Tensor) Device() Device {
	if t == nil {
		return Host
	}

	return t.device
}

// Strides returns a copy of the per-axis element strides.
func (t *Tensor) Strides() []int {
	if t == nil {
		return nil
	}

	return append([]int(nil), t.strides...)
}

// IsContiguous reports whether t is laid out in dense row-major order.
// Axes of length 1 may carry any stride.
func (t *Tensor) IsContiguous() bool {
	if t == nil {
		return true
	}
	want := 1
	for i := len(t.shape.AxisLengths) - 1; i >= 0; i-- {
		d := t.shape.AxisLengths[i]
		if d != 1 && t.strides[i] != want {
			return false
		}
		want *= d
	}

	return true
}

// At reads the element at idx converted to float64.
//
// Errors:
//   - failure.ErrShape when idx has the wrong rank or is out of range.
func (t *Tensor) At(idx ...int) (float64, error) {
	off, err := t.offsetOf(ctxAt, idx)
	if err != nil {
		return 0, err
	}
	switch buf := t.data.(type) {
	case []float32:
		return float64(buf[off]), nil
	case []float64:
		return buf[off], nil
	case []int32:
		return float64(buf[off]), nil
	default:
		return float64(t.data.([]int64)[off]), nil
	}
}

// Set stores v (converted to the tensor dtype) at idx.
func (t *Tensor) Set(v float64, idx ...int) error {
	off, err := t.offsetOf(ctxSet, idx)
	if err != nil {
		return err
	}
	storeAt(t.data, off, v)

	return nil
}

// Fill overwrites every logical element with v. Strided views write through.
func (t *Tensor) Fill(v float64) {
	if t == nil {
		return
	}
	t.forEachOffset(func(_, off int) { storeAt(t.data, off, v) })
}

// String renders a compact header, e.g. "Tensor(float32[3 2] @cpu:0)".
func (t *Tensor) String() string {
	if t == nil {
		return "Tensor(empty)"
	}
	var b strings.Builder
	b.WriteString("Tensor(")
	b.WriteString(t.shape.DType.String())
	b.WriteString(fmt.Sprint(t.shape.AxisLengths))
	if !t.IsContiguous() {
		b.WriteString(" strided")
	}
	b.WriteString(" @")
	b.WriteString(t.device.String())
	b.WriteString(")")

	return b.String()
}

// offsetOf bounds-checks idx and returns the buffer offset.
func (t *Tensor) offsetOf(tag string, idx []int) (int, error) {
	if t == nil {
		return 0, failure.Tagf(tag, failure.ErrShape, "empty tensor")
	}
	if len(idx) != len(t.shape.AxisLengths) {
		return 0, failure.Tagf(tag, failure.ErrShape, "%d indices for rank %d", len(idx), len(t.shape.AxisLengths))
	}
	off := t.offset
	for a, i := range idx {
		if i < 0 || i >= t.shape.AxisLengths[a] {
			return 0, failure.Tagf(tag, failure.ErrShape, "index %d out of range on axis %d (len %d)", i, a, t.shape.AxisLengths[a])
		}
		off += i * t.strides[a]
	}

	return off, nil
}

// forEachOffset visits logical elements in row-major order, passing the
// logical flat position and the buffer offset.
func (t *Tensor) forEachOffset(fn func(flat, off int)) {
	dims := t.shape.AxisLengths
	n := numElements(dims)
	if n == 0 {
		return
	}
	idx := make([]int, len(dims))
	for flat := 0; flat < n; flat++ {
		off := t.offset
		for a := range dims {
			off += idx[a] * t.strides[a]
		}
		fn(flat, off)
		// odometer increment, innermost axis first
		for a := len(dims) - 1; a >= 0; a-- {
			idx[a]++
			if idx[a] < dims[a] {
				break
			}
			idx[a] = 0
		}
	}
}

func storeAt(data any, off int, v float64) {
	switch buf := data.(type) {
	case []float32:
		buf[off] = float32(v)
	case []float64:
		buf[off] = v
	case []int32:
		buf[off] = int32(v)
	case []int64:
		buf[off] = int64(v)
	}
}

func newTensor[T Element](dev Device, buf []T, dims []int) *Tensor {
	d := append([]int(nil), dims...)

	return &Tensor{
		shape:   shape.Shape{DType: DTypeOf[T](), AxisLengths: d},
		strides: rowMajorStrides(d),
		data:    buf,
		device:  dev,
	}
}

func rowMajorStrides(dims []int) []int {
	strides := make([]int, len(dims))
	acc := 1
	for i := len(dims) - 1; i >= 0; i-- {
		strides[i] = acc
		acc *= dims[i]
	}

	return strides
}

func numElements(dims []int) int {
	n := 1
	for _, d := range dims {
		n *= d
	}

	return n
}

func validateDims(tag string, dims []int) error {
	for i, d := range dims {
		if d < 0 {
			return failure.Tagf(tag, failure.ErrShape, "axis %d has negative length %d", i, d)
		}
	}

	return nil
}
