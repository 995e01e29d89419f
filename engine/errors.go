// SPDX-License-Identifier: MIT

package engine

import "github.com/katalvlaran/lvkernel/failure"

// Error sentinels, shared with every lvkernel package.
var (
	ErrShape                  = failure.ErrShape
	ErrUnsupportedCombination = failure.ErrUnsupportedCombination
	ErrDeviceMismatch         = failure.ErrDeviceMismatch
	ErrNonContiguous          = failure.ErrNonContiguous
)
