// SPDX-License-Identifier: MIT
package parallel_test

import (
	"sync/atomic"
	"testing"

	"github.com/katalvlaran/lvkernel/parallel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFor_CoversRangeOnce(t *testing.T) {
	t.Parallel()

	for _, n := range []int{0, 1, 7, 64, 65, 1000} {
		for _, workers := range []int{1, 3, 8} {
			p := parallel.New(parallel.WithWorkers(workers), parallel.WithGrainSize(5))
			hits := make([]int32, n)
			p.For(n, func(lo, hi int) {
				assert.LessOrEqual(t, hi-lo, 5)
				for i := lo; i < hi; i++ {
					atomic.AddInt32(&hits[i], 1)
				}
			})
			for i, h := range hits {
				require.Equalf(t, int32(1), h, "n=%d workers=%d index %d", n, workers, i)
			}
		}
	}
}

func TestFor_SingleChunkRunsInline(t *testing.T) {
	t.Parallel()

	p := parallel.New(parallel.WithWorkers(4))
	calls := 0
	p.For(10, func(lo, hi int) {
		calls++
		require.Equal(t, 0, lo)
		require.Equal(t, 10, hi)
	})
	require.Equal(t, 1, calls)
}

func TestFor_SingleWorkerKeepsGrain(t *testing.T) {
	t.Parallel()

	p := parallel.New(parallel.WithWorkers(1), parallel.WithGrainSize(4))
	var ranges [][2]int
	p.For(10, func(lo, hi int) { ranges = append(ranges, [2]int{lo, hi}) })
	require.Equal(t, [][2]int{{0, 4}, {4, 8}, {8, 10}}, ranges)
}

func TestOptions(t *testing.T) {
	t.Parallel()

	p := parallel.New()
	require.Positive(t, p.Workers())
	require.Equal(t, parallel.DefaultGrainSize, p.GrainSize())

	p = parallel.New(parallel.WithWorkers(0))
	require.Positive(t, p.Workers())

	require.Panics(t, func() { parallel.WithWorkers(-1) })
	require.Panics(t, func() { parallel.WithGrainSize(0) })
}
