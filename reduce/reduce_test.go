// SPDX-License-Identifier: MIT
package reduce_test

import (
	"math"
	"testing"

	"github.com/katalvlaran/lvkernel/failure"
	"github.com/katalvlaran/lvkernel/reduce"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Parallel()

	for name, want := range map[string]reduce.Kind{"sum": reduce.Sum, "max": reduce.Max, "min": reduce.Min} {
		got, err := reduce.Parse(name)
		require.NoError(t, err)
		require.Equal(t, want, got)
		require.Equal(t, name, got.String())
	}
	_, err := reduce.Parse("mean")
	require.ErrorIs(t, err, failure.ErrUnsupportedCombination)
	require.Equal(t, "reduce(7)", reduce.Kind(7).String())
}

func TestNeedsArg(t *testing.T) {
	t.Parallel()

	require.False(t, reduce.Sum.NeedsArg())
	require.True(t, reduce.Max.NeedsArg())
	require.True(t, reduce.Min.NeedsArg())
	require.Equal(t, -1, reduce.NoArg)
}

func TestIdentity(t *testing.T) {
	t.Parallel()

	require.Zero(t, reduce.Identity[float32](reduce.Sum))
	require.True(t, math.IsInf(float64(reduce.Identity[float32](reduce.Max)), -1))
	require.True(t, math.IsInf(reduce.Identity[float64](reduce.Min), 1))
	require.Equal(t, int32(math.MinInt32), reduce.Identity[int32](reduce.Max))
	require.Equal(t, int32(math.MaxInt32), reduce.Identity[int32](reduce.Min))
	require.Equal(t, int64(math.MinInt64), reduce.Identity[int64](reduce.Max))
	require.Equal(t, int64(math.MaxInt64), reduce.Identity[int64](reduce.Min))
	require.Panics(t, func() { reduce.Identity[float64](reduce.Kind(9)) })
}

func TestReplacesFirstWins(t *testing.T) {
	t.Parallel()

	require.True(t, reduce.Replaces(reduce.Max, 2.0, 1.0))
	require.False(t, reduce.Replaces(reduce.Max, 1.0, 1.0), "ties keep the incumbent")
	require.True(t, reduce.Replaces(reduce.Min, float32(-1), 0))
	require.False(t, reduce.Replaces(reduce.Min, int64(3), 3))
	require.False(t, reduce.Replaces(reduce.Sum, 5.0, 1.0))
	require.False(t, reduce.Replaces(reduce.Max, math.NaN(), 1.0))

	// The identity is beaten by any finite candidate.
	require.True(t, reduce.Replaces(reduce.Max, -1e30, reduce.Identity[float64](reduce.Max)))
}
