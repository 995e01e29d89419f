// SPDX-License-Identifier: MIT

package kernel

import (
	"math"
	"sync/atomic"
	"unsafe"

	"github.com/katalvlaran/lvkernel/binop"
)

// atomicAdd adds v to *addr with a compare-and-swap loop on the bit pattern.
func atomicAdd[T binop.Float](addr *T, v T) {
	switch p := any(addr).(type) {
	case *float32:
		bits := (*uint32)(unsafe.Pointer(p))
		for {
			old := atomic.LoadUint32(bits)
			next := math.Float32bits(math.Float32frombits(old) + float32(v))
			if atomic.CompareAndSwapUint32(bits, old, next) {
				return
			}
		}
	case *float64:
		bits := (*uint64)(unsafe.Pointer(p))
		for {
			old := atomic.LoadUint64(bits)
			next := math.Float64bits(math.Float64frombits(old) + float64(v))
			if atomic.CompareAndSwapUint64(bits, old, next) {
				return
			}
		}
	}
}
