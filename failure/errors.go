// SPDX-License-Identifier: MIT

// Package failure holds the error taxonomy shared by every lvkernel package.
//
// All caller-triggerable conditions surface as one of the four sentinels below,
// usually wrapped with a call-site tag. Callers match with errors.Is; the
// wrapping text is diagnostic only and may change between releases.
//
// ERROR PRIORITY (documented, enforced in engine tests):
// device mismatch -> non-contiguous layout -> shape -> unsupported combination.
package failure

import (
	"errors"
	"fmt"
)

var (
	// ErrShape reports feature axes that do not broadcast, a leading axis whose
	// length disagrees with the sparse view, or a malformed sparse structure.
	ErrShape = errors.New("lvkernel: shape mismatch")

	// ErrUnsupportedCombination reports an unknown operator or reduction name,
	// a format the operator family does not implement, or an element/index
	// dtype pair that has no instantiated kernel.
	ErrUnsupportedCombination = errors.New("lvkernel: unsupported combination")

	// ErrDeviceMismatch reports operands that live on different devices.
	ErrDeviceMismatch = errors.New("lvkernel: device mismatch")

	// ErrNonContiguous reports an operand whose layout is not the dense
	// row-major order the kernels index directly.
	ErrNonContiguous = errors.New("lvkernel: non-contiguous input")
)

// Tagf wraps err with a call-site tag and optional detail.
// The result still matches the wrapped sentinel via errors.Is.
//
// Complexity: O(len(detail)).
func Tagf(tag string, err error, format string, args ...any) error {
	if format == "" {
		return fmt.Errorf("%s: %w", tag, err)
	}

	return fmt.Errorf("%s: %s: %w", tag, fmt.Sprintf(format, args...), err)
}

// Kind returns a short, stable label for the sentinel wrapped by err.
// It is used as a metric label, so the value set is closed.
func Kind(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrDeviceMismatch):
		return "device_mismatch"
	case errors.Is(err, ErrNonContiguous):
		return "non_contiguous"
	case errors.Is(err, ErrShape):
		return "shape"
	case errors.Is(err, ErrUnsupportedCombination):
		return "unsupported"
	default:
		return "other"
	}
}
