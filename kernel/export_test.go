// SPDX-License-Identifier: MIT

package kernel

import "github.com/katalvlaran/lvkernel/binop"

// AtomicAdd exposes atomicAdd to the external test package.
func AtomicAdd[T binop.Float](addr *T, v T) { atomicAdd(addr, v) }
