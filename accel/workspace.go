// SPDX-License-Identifier: MIT

package accel

import (
	"math/bits"
	"sync"
	"sync/atomic"

	"github.com/gx-org/backend/dtype"
	"github.com/katalvlaran/lvkernel/tensor"
	"github.com/prometheus/client_golang/prometheus"
)

// minClass is the smallest scratch length handed out.
const minClass = 64

type classKey struct {
	dt    dtype.DataType
	class int
}

// Workspace hands out scratch buffers from per-(dtype, size class) pools.
type Workspace struct {
	mu    sync.RWMutex
	pools map[classKey]*sync.Pool
	inUse atomic.Int64
	gauge prometheus.Gauge
}

func newWorkspace(g prometheus.Gauge) *Workspace {
	return &Workspace{pools: make(map[classKey]*sync.Pool), gauge: g}
}

// InUse returns the bytes currently held by callers.
func (w *Workspace) InUse() int64 { return w.inUse.Load() }

// Alloc returns a scratch slice of length n and the func that gives it back.
// Contents are unspecified. Calling release more than once is a no-op.
func Alloc[T tensor.Element](w *Workspace, n int) (buf []T, release func()) {
	class := sizeClass(n)
	pool := w.poolFor(classKey{dt: tensor.DTypeOf[T](), class: class})
	p := pool.Get().(*[]T)
	bytes := int64(class) * int64(dtype.Sizeof(tensor.DTypeOf[T]()))
	w.account(bytes)

	var once sync.Once
	release = func() {
		once.Do(func() {
			pool.Put(p)
			w.account(-bytes)
		})
	}

	return (*p)[:n], release
}

func (w *Workspace) account(delta int64) {
	v := w.inUse.Add(delta)
	if w.gauge != nil {
		w.gauge.Set(float64(v))
	}
}

func (w *Workspace) poolFor(k classKey) *sync.Pool {
	w.mu.RLock()
	p, ok := w.pools[k]
	w.mu.RUnlock()
	if ok {
		return p
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if p, ok = w.pools[k]; ok {
		return p
	}
	p = &sync.Pool{New: newClassBuffer(k)}
	w.pools[k] = p

	return p
}

func newClassBuffer(k classKey) func() any {
	switch k.dt {
	case dtype.Float32:
		return makeClass[float32](k.class)
	case dtype.Float64:
		return makeClass[float64](k.class)
	case dtype.Int32:
		return makeClass[int32](k.class)
	default:
		return makeClass[int64](k.class)
	}
}

func makeClass[T tensor.Element](n int) func() any {
	return func() any {
		b := make([]T, n)

		return &b
	}
}

// sizeClass rounds n up to a power of two, at least minClass.
func sizeClass(n int) int {
	if n <= minClass {
		return minClass
	}

	return 1 << bits.Len(uint(n-1))
}
