// SPDX-License-Identifier: MIT

// Package reduce defines how SpMM folds the messages arriving at one
// destination: sum, max or min.
//
// Max and min keep the first candidate that reaches the extreme; a later
// equal candidate never replaces it. Rows with no candidate keep the
// identity and their arg slots keep NoArg.
package reduce

import (
	"fmt"
	"math"

	"github.com/katalvlaran/lvkernel/failure"
	"golang.org/x/exp/constraints"
)

// NoArg marks an arg slot that no candidate filled.
const NoArg = -1

// Kind enumerates the reductions.
type Kind uint8

const (
	Sum Kind = iota
	Max
	Min
)

// Number bounds the element types a reduction accepts.
type Number interface {
	int32 | int64 | constraints.Float
}

// Parse resolves "sum", "max" or "min".
//
// Errors:
//   - failure.ErrUnsupportedCombination for any other name.
func Parse(name string) (Kind, error) {
	switch name {
	case "sum":
		return Sum, nil
	case "max":
		return Max, nil
	case "min":
		return Min, nil
	default:
		return 0, failure.Tagf("reduce.Parse", failure.ErrUnsupportedCombination, "reducer %q", name)
	}
}

func (k Kind) String() string {
	switch k {
	case Sum:
		return "sum"
	case Max:
		return "max"
	case Min:
		return "min"
	default:
		return fmt.Sprintf("reduce(%d)", uint8(k))
	}
}

// NeedsArg reports whether the reduction produces arg outputs.
func (k Kind) NeedsArg() bool { return k == Max || k == Min }

// Identity returns the starting accumulator for k: 0 for sum, -Inf / +Inf
// for floating max / min and the type's minimum / maximum for integers.
func Identity[T Number](k Kind) T {
	switch k {
	case Sum:
		return 0
	case Max:
		return lowest[T]()
	case Min:
		return highest[T]()
	default:
		panic(fmt.Sprintf("reduce: Identity of unknown kind %d", uint8(k)))
	}
}

// Replaces reports whether cand strictly beats cur under k.
// For sum it is always false; accumulation is not a replacement.
// NaN never replaces and is never replaced.
func Replaces[T Number](k Kind, cand, cur T) bool {
	switch k {
	case Max:
		return cand > cur
	case Min:
		return cand < cur
	default:
		return false
	}
}

func lowest[T Number]() T {
	var zero T
	switch any(zero).(type) {
	case float32, float64:
		return T(math.Inf(-1))
	case int32:
		v := int64(math.MinInt32)
		return T(v)
	default:
		v := int64(math.MinInt64)
		return T(v)
	}
}

func highest[T Number]() T {
	var zero T
	switch any(zero).(type) {
	case float32, float64:
		return T(math.Inf(1))
	case int32:
		v := int64(math.MaxInt32)
		return T(v)
	default:
		v := int64(math.MaxInt64)
		return T(v)
	}
}
