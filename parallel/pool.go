// SPDX-License-Identifier: MIT

// Package parallel is the host data-parallel runner used by the CPU kernels.
//
// A Pool splits an index range [0, n) into grain-sized chunks and hands them
// to a fixed number of goroutines. Chunks are claimed from a shared atomic
// cursor, so workers that draw light rows keep pulling work while a worker
// stuck on a heavy row finishes its chunk. For returns once every chunk has
// run; nothing outlives the call.
package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
)

const (
	// DefaultGrainSize is the number of indices a worker claims at once.
	DefaultGrainSize = 64

	panicWorkersNegative  = "parallel: WithWorkers(n) requires n >= 0"
	panicGrainNonPositive = "parallel: WithGrainSize(g) requires g >= 1"
)

// Pool is an immutable fan-out configuration; it holds no goroutines
// between calls and is safe for concurrent use.
type Pool struct {
	workers int
	grain   int
}

// Option configures a Pool.
type Option func(*Pool)

// WithWorkers sets the goroutine count. Zero selects runtime.NumCPU().
// Panics on a negative value.
func WithWorkers(n int) Option {
	if n < 0 {
		panic(panicWorkersNegative)
	}

	return func(p *Pool) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithGrainSize sets the chunk length. Panics when g < 1.
func WithGrainSize(g int) Option {
	if g < 1 {
		panic(panicGrainNonPositive)
	}

	return func(p *Pool) { p.grain = g }
}

// New returns a pool with runtime.NumCPU() workers and DefaultGrainSize.
func New(opts ...Option) *Pool {
	p := &Pool{workers: runtime.NumCPU(), grain: DefaultGrainSize}
	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Workers returns the configured goroutine count.
func (p *Pool) Workers() int { return p.workers }

// GrainSize returns the configured chunk length.
func (p *Pool) GrainSize() int { return p.grain }

// For calls fn over disjoint half-open ranges covering [0, n). Ranges are at
// most GrainSize long. With one worker, or a single chunk, the chunks run
// in order on the calling goroutine.
func (p *Pool) For(n int, fn func(lo, hi int)) {
	if n <= 0 {
		return
	}
	chunks := (n + p.grain - 1) / p.grain
	workers := min(p.workers, chunks)
	if workers <= 1 {
		for lo := 0; lo < n; lo += p.grain {
			fn(lo, min(lo+p.grain, n))
		}
		return
	}

	var (
		cursor atomic.Int64
		wg     sync.WaitGroup
	)
	grain := int64(p.grain)
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for {
				lo := cursor.Add(grain) - grain
				if lo >= int64(n) {
					return
				}
				fn(int(lo), int(min(lo+grain, int64(n))))
			}
		}()
	}
	wg.Wait()
}
