// SPDX-License-Identifier: MIT

// Package binop is the closed set of element-wise binary operators combined
// by SpMM and SDDMM. Operators are resolved once per call to a typed
// function; kernels never switch on the operator per element.
package binop

import (
	"fmt"

	"github.com/katalvlaran/lvkernel/failure"
)

// Op enumerates the operators.
type Op uint8

const (
	Add Op = iota
	Sub
	Mul
	Div
	CopyLhs
	CopyRhs
	Dot
)

// Float bounds the feature element types.
type Float interface {
	float32 | float64
}

// Func combines one lhs and one rhs group. Non-dot operators read element 0
// of each slice; Dot sums reduceSize pairwise products. Copy operators
// ignore the side they do not use, which may be nil.
type Func[T Float] func(lhs, rhs []T, reduceSize int) T

var names = [...]string{
	Add:     "add",
	Sub:     "sub",
	Mul:     "mul",
	Div:     "div",
	CopyLhs: "copy_lhs",
	CopyRhs: "copy_rhs",
	Dot:     "dot",
}

// aliases maps graph-flavoured names to their canonical operator.
var aliases = map[string]Op{
	"copy_u": CopyLhs,
	"copy_e": CopyRhs,
}

// Parse resolves an operator name, including the aliases copy_u and copy_e.
//
// Errors:
//   - failure.ErrUnsupportedCombination for an unknown name.
func Parse(name string) (Op, error) {
	for op, n := range names {
		if n == name {
			return Op(op), nil
		}
	}
	if op, ok := aliases[name]; ok {
		return op, nil
	}

	return 0, failure.Tagf("binop.Parse", failure.ErrUnsupportedCombination, "operator %q", name)
}

// String returns the canonical name.
func (op Op) String() string {
	if int(op) < len(names) {
		return names[op]
	}

	return fmt.Sprintf("op(%d)", uint8(op))
}

// UsesLhs reports whether the operator reads its left operand.
func (op Op) UsesLhs() bool { return op != CopyRhs }

// UsesRhs reports whether the operator reads its right operand.
func (op Op) UsesRhs() bool { return op != CopyLhs }

// IsCopy reports copy_lhs or copy_rhs.
func (op Op) IsCopy() bool { return op == CopyLhs || op == CopyRhs }

// Lookup returns the typed implementation of op.
// It panics for a value outside the enumeration.
func Lookup[T Float](op Op) Func[T] {
	switch op {
	case Add:
		return func(l, r []T, _ int) T { return l[0] + r[0] }
	case Sub:
		return func(l, r []T, _ int) T { return l[0] - r[0] }
	case Mul:
		return func(l, r []T, _ int) T { return l[0] * r[0] }
	case Div:
		return func(l, r []T, _ int) T { return l[0] / r[0] }
	case CopyLhs:
		return func(l, _ []T, _ int) T { return l[0] }
	case CopyRhs:
		return func(_, r []T, _ int) T { return r[0] }
	case Dot:
		return dot[T]
	default:
		panic(fmt.Sprintf("binop: Lookup of unknown operator %d", uint8(op)))
	}
}

func dot[T Float](l, r []T, n int) T {
	var acc T
	for i := 0; i < n; i++ {
		acc += l[i] * r[i]
	}

	return acc
}
