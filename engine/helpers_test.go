// SPDX-License-Identifier: MIT
package engine_test

import (
	"math/rand"
	"testing"

	"github.com/katalvlaran/lvkernel/sparse"
	"github.com/katalvlaran/lvkernel/tensor"
	"github.com/stretchr/testify/require"
)

// relation is a random graph plus its raw edge list. Destination 0 never
// receives an edge.
type relation[I sparse.Index] struct {
	g        *sparse.Graph[I]
	src, dst []I
	numSrc   int
	numDst   int
}

func randomRelation[I sparse.Index](t testing.TB, seed int64, numSrc, numDst, nnz int, dev tensor.Device) *relation[I] {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	r := &relation[I]{numSrc: numSrc, numDst: numDst}
	for i := 0; i < nnz; i++ {
		r.src = append(r.src, I(rng.Intn(numSrc)))
		r.dst = append(r.dst, I(1+rng.Intn(numDst-1)))
	}
	g, err := sparse.NewGraph(numSrc, numDst, r.src, r.dst, sparse.WithDevice(dev))
	require.NoError(t, err)
	r.g = g

	return r
}

func randomTensor(t testing.TB, rng *rand.Rand, dev tensor.Device, dims ...int) (*tensor.Tensor, []float64) {
	t.Helper()
	n := 1
	for _, d := range dims {
		n *= d
	}
	vals := make([]float64, n)
	for i := range vals {
		vals[i] = rng.Float64()*2 - 1
	}
	x, err := tensor.FromSlice(dev, vals, dims...)
	require.NoError(t, err)

	return x, vals
}

func filled[T tensor.Element](t testing.TB, dev tensor.Device, v T, dims ...int) *tensor.Tensor {
	t.Helper()
	x, err := tensor.Full(dev, v, dims...)
	require.NoError(t, err)

	return x
}

func flat[T tensor.Element](t testing.TB, x *tensor.Tensor) []T {
	t.Helper()
	v, err := tensor.Flat[T](x)
	require.NoError(t, err)

	return v
}

func requireClose(t testing.TB, want, got *tensor.Tensor) {
	t.Helper()
	ok, err := tensor.AllClose(got, want, 1e-9, 1e-9)
	require.NoError(t, err)
	require.Truef(t, ok, "got %v\nwant %v", flat[float64](t, got), flat[float64](t, want))
}
