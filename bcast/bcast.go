// SPDX-License-Identifier: MIT

// Package bcast computes how two feature shapes combine element-wise.
//
// Shapes passed here exclude the leading node/edge axis. Broadcasting is
// right-aligned: axes are compared from the innermost outward, a missing
// axis counts as 1, and two lengths are compatible when equal or when one
// is 1. The descriptor is computed once per call and shared read-only by
// every worker.
//
// Offsets are expressed in groups of ReduceSize elements. For every
// operator except dot ReduceSize is 1 and groups are single elements.
package bcast

import (
	"github.com/katalvlaran/lvkernel/binop"
	"github.com/katalvlaran/lvkernel/failure"
)

// Descriptor is the per-call broadcast plan.
//
//   - LhsLen / RhsLen: flattened feature length of one operand row.
//   - OutLen: number of output elements per row.
//   - ReduceSize: inner contraction length (dot), else 1.
//   - UseBcast: false means output index k reads group k of each operand.
//   - LhsOffset / RhsOffset: per-output-index group offsets, set only when
//     UseBcast is true.
//   - OutShape: feature shape of the output row.
type Descriptor struct {
	LhsLen     int
	RhsLen     int
	OutLen     int
	ReduceSize int
	UseBcast   bool
	LhsOffset  []int
	RhsOffset  []int
	OutShape   []int
}

// Compute builds the descriptor for op over the given feature shapes.
// The shape of an operand op does not read is ignored.
//
// Errors:
//   - failure.ErrShape when two axes differ and neither is 1, when dot
//     operands disagree on the last axis, or when a dot operand has no
//     feature axis.
//
// Complexity: Time O(ndim + OutLen), Space O(OutLen) when broadcasting.
func Compute(op binop.Op, lhs, rhs []int) (*Descriptor, error) {
	const tag = "bcast.Compute"
	d := &Descriptor{
		LhsLen:     product(lhs),
		RhsLen:     product(rhs),
		ReduceSize: 1,
	}

	switch op {
	case binop.CopyLhs:
		d.OutLen = d.LhsLen
		d.OutShape = append([]int(nil), lhs...)

		return d, nil
	case binop.CopyRhs:
		d.OutLen = d.RhsLen
		d.OutShape = append([]int(nil), rhs...)

		return d, nil
	}

	if op == binop.Dot {
		if len(lhs) == 0 || len(rhs) == 0 {
			return nil, failure.Tagf(tag, failure.ErrShape, "dot needs a feature axis on both sides, got %v and %v", lhs, rhs)
		}
		if l, r := lhs[len(lhs)-1], rhs[len(rhs)-1]; l != r {
			return nil, failure.Tagf(tag, failure.ErrShape, "dot over last axes %d and %d", l, r)
		}
		d.ReduceSize = lhs[len(lhs)-1]
	}

	outShape, err := broadcastShape(lhs, rhs)
	if err != nil {
		return nil, failure.Tagf(tag, err, "")
	}
	if op == binop.Dot {
		outShape[len(outShape)-1] = 1
	}
	d.OutShape = outShape
	d.UseBcast = !equalShapes(lhs, rhs)

	if !d.UseBcast {
		d.OutLen = d.LhsLen
		if op == binop.Dot {
			d.OutLen = divOrZero(d.OutLen, d.ReduceSize)
		}

		return d, nil
	}

	d.LhsOffset, d.RhsOffset, d.OutLen = offsets(op, lhs, rhs)

	return d, nil
}

// LhsIndex returns the element offset, inside one lhs row, of the group
// feeding output index k.
func (d *Descriptor) LhsIndex(k int) int {
	if d.UseBcast {
		return d.LhsOffset[k] * d.ReduceSize
	}

	return k * d.ReduceSize
}

// RhsIndex is LhsIndex for the right operand.
func (d *Descriptor) RhsIndex(k int) int {
	if d.UseBcast {
		return d.RhsOffset[k] * d.ReduceSize
	}

	return k * d.ReduceSize
}

// offsets walks the axes innermost first. At each axis the offsets built so
// far are replicated once per extra index along the broadcast length, so
// the final order is row-major over the output. A length-1 side does not
// advance along that axis.
func offsets(op binop.Op, lhs, rhs []int) (lo, ro []int, outLen int) {
	maxNDim := max(len(lhs), len(rhs))
	lo, ro = []int{0}, []int{0}
	outLen = 1
	j := 0
	if op == binop.Dot {
		j = 1 // the contracted axis is not iterated
	}
	strideL, strideR := 1, 1
	for ; j < maxNDim; j++ {
		dl, dr := axisFromRight(lhs, j), axisFromRight(rhs, j)
		n := max(dl, dr)
		for i := 1; i < n; i++ {
			for k := 0; k < outLen; k++ {
				lo = append(lo, lo[k]+advance(i, dl)*strideL)
				ro = append(ro, ro[k]+advance(i, dr)*strideR)
			}
		}
		outLen *= n
		strideL *= dl
		strideR *= dr
	}
	// A zero-length axis leaves the seed entry behind; trim to outLen.
	return lo[:outLen], ro[:outLen], outLen
}

func advance(i, dim int) int {
	if i < dim {
		return i
	}

	return 0
}

// broadcastShape returns the right-aligned broadcast of a and b.
func broadcastShape(a, b []int) ([]int, error) {
	n := max(len(a), len(b))
	out := make([]int, n)
	for j := 0; j < n; j++ {
		da, db := axisFromRight(a, j), axisFromRight(b, j)
		switch {
		case da == db:
			out[n-1-j] = da
		case da == 1:
			out[n-1-j] = db
		case db == 1:
			out[n-1-j] = da
		default:
			return nil, failure.Tagf("axis", failure.ErrShape, "-%d: %d vs %d in %v and %v", j+1, da, db, a, b)
		}
	}

	return out, nil
}

// axisFromRight returns axis j counted from the innermost, or 1 when the
// shape has fewer axes.
func axisFromRight(s []int, j int) int {
	if j >= len(s) {
		return 1
	}

	return s[len(s)-1-j]
}

func equalShapes(a, b []int) bool {
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

func product(s []int) int {
	p := 1
	for _, v := range s {
		p *= v
	}

	return p
}

func divOrZero(a, b int) int {
	if b == 0 {
		return 0
	}

	return a / b
}
