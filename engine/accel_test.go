// SPDX-License-Identifier: MIT
package engine_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"math/rand"
	"strings"
	"testing"

	"github.com/katalvlaran/lvkernel/accel"
	"github.com/katalvlaran/lvkernel/engine"
	"github.com/katalvlaran/lvkernel/sparse"
	"github.com/katalvlaran/lvkernel/tensor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

// dispatchPaths collects the "path" attribute of every dispatch record.
func dispatchPaths(t *testing.T, buf *bytes.Buffer) []string {
	t.Helper()
	var paths []string
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var rec map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &rec))
		if rec["msg"] == "dispatch" {
			paths = append(paths, rec["path"].(string))
		}
	}

	return paths
}

func debugLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestAccel_FastPathMatchesGenericKernel(t *testing.T) {
	t.Parallel()

	const dim = 6
	ctx := context.Background()
	ac := accel.NewContext(accel.WithBlockSize(4), accel.WithStreams(2))
	defer ac.Close()
	var logs bytes.Buffer
	e := engine.New(engine.WithAccelerator(ac), engine.WithLogger(debugLogger(&logs)))

	dev := ac.Device()
	r := randomRelation[int32](t, 21, 30, 18, 150, dev)
	rng := rand.New(rand.NewSource(5))
	u, _ := randomTensor(t, rng, dev, r.numSrc, dim)
	w, _ := randomTensor(t, rng, dev, r.g.NumEdges(), 1)
	require.True(t, r.g.InCSR().HasData(), "weights are gathered through the edge-id permutation")

	for _, tc := range []struct {
		op string
		e  *tensor.Tensor
	}{
		{"copy_lhs", nil},
		{"mul", w},
	} {
		fast := filled(t, dev, 3.0, r.numDst, dim)
		slow := filled(t, dev, 4.0, r.numDst, dim)
		require.NoError(t, e.SpMM(ctx, tc.op, "sum", r.g, u, tc.e, fast, nil))
		require.NoError(t, e.SpMM(ctx, tc.op, "sum", r.g, u, tc.e, slow, nil, engine.WithoutFastPath()))
		ok, err := tensor.AllClose(fast, slow, 1e-9, 1e-12)
		require.NoError(t, err)
		require.True(t, ok, tc.op)
		require.Equal(t, dev, fast.Device())
	}
	require.Zero(t, ac.Workspace().InUse(), "scratch is returned after every call")
	require.Equal(t, []string{"accel_csrmm", "accel", "accel_csrmm", "accel"}, dispatchPaths(t, &logs))
}

func TestAccel_Float32AndHostAgree(t *testing.T) {
	t.Parallel()

	const dim = 3
	ctx := context.Background()
	ac := accel.NewContext()
	e := engine.New(engine.WithAccelerator(ac))

	src := []int32{0, 1, 2, 3, 3, 1}
	dst := []int32{1, 1, 0, 2, 1, 0}
	onHost, err := sparse.NewGraph(4, 3, src, dst)
	require.NoError(t, err)
	onAccel, err := sparse.NewGraph(4, 3, src, dst, sparse.WithDevice(ac.Device()))
	require.NoError(t, err)

	vals := []float32{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}
	weights := []float32{0.5, 1, 2, -1, 3, 0.25}
	uh, err := tensor.FromSlice(tensor.Host, vals, 4, dim)
	require.NoError(t, err)
	wh, err := tensor.FromSlice(tensor.Host, weights, 6, 1)
	require.NoError(t, err)

	hostOut, _, _, err := e.GSpMM(ctx, "mul", "sum", onHost, uh, wh)
	require.NoError(t, err)
	accelOut, _, _, err := e.GSpMM(ctx, "mul", "sum", onAccel, uh.To(ac.Device()), wh.To(ac.Device()))
	require.NoError(t, err)
	require.Equal(t, flat[float32](t, hostOut), flat[float32](t, accelOut.To(tensor.Host)))
	require.Equal(t, []float32{
		7*2 + 0.25*4, 8*2 + 0.25*5, 9*2 + 0.25*6,
		0.5*1 + 1*4 + 3*10, 0.5*2 + 1*5 + 3*11, 0.5*3 + 1*6 + 3*12,
		-1 * 10, -1 * 11, -1 * 12,
	}, flat[float32](t, hostOut))
}

func TestAccel_Int64IndicesUseGenericKernel(t *testing.T) {
	t.Parallel()

	ac := accel.NewContext()
	var logs bytes.Buffer
	e := engine.New(engine.WithAccelerator(ac), engine.WithLogger(debugLogger(&logs)))

	r := randomRelation[int64](t, 22, 10, 6, 40, ac.Device())
	u, _ := randomTensor(t, rand.New(rand.NewSource(6)), ac.Device(), r.numSrc, 2)
	_, _, _, err := e.GSpMM(context.Background(), "copy_u", "sum", r.g, u, nil)
	require.NoError(t, err)
	require.Equal(t, []string{"accel"}, dispatchPaths(t, &logs))
}

func TestAccel_MaxOnAccelerator(t *testing.T) {
	t.Parallel()

	ac := accel.NewContext()
	e := engine.New(engine.WithAccelerator(ac))
	g, err := sparse.NewGraph[int32](2, 2, []int32{0, 1, 1}, []int32{1, 1, 0}, sparse.WithDevice(ac.Device()))
	require.NoError(t, err)
	u, err := tensor.FromSlice(ac.Device(), []float64{4, 8}, 2, 1)
	require.NoError(t, err)

	out, argU, argE, err := e.GSpMM(context.Background(), "copy_u", "min", g, u, nil)
	require.NoError(t, err)
	require.Equal(t, []float64{8, 4}, flat[float64](t, out))
	require.Equal(t, []int32{1, 0}, flat[int32](t, argU))
	require.Nil(t, argE)
}

func TestAccel_ClosedContext(t *testing.T) {
	t.Parallel()

	ac := accel.NewContext()
	require.NoError(t, ac.Close())
	e := engine.New(engine.WithAccelerator(ac))
	g, err := sparse.NewGraph[int32](1, 1, []int32{0}, []int32{0}, sparse.WithDevice(ac.Device()))
	require.NoError(t, err)
	_, err = e.GSDDMM(context.Background(), "copy_u", g, filled(t, ac.Device(), 1.0, 1, 1), nil)
	require.ErrorIs(t, err, accel.ErrContextClosed)
}

func TestMetrics_CountsCallsAndFailures(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	ac := accel.NewContext()
	e := engine.New(engine.WithAccelerator(ac), engine.WithMetrics(reg))
	_ = engine.New(engine.WithMetrics(reg)) // second engine shares the collectors

	ctx := context.Background()
	f := newErrorFixture(t)
	require.NoError(t, e.SpMM(ctx, "mul", "sum", f.g, f.u, f.e, f.out, nil))
	require.NoError(t, e.SDDMM(ctx, "add", f.g, f.u, filled(t, tensor.Host, 1.0, 2, 2), filled(t, tensor.Host, 0.0, 4, 2)))
	require.Error(t, e.SpMM(ctx, "mul", "sum", f.g, f.u, nil, f.out, nil))

	dev := ac.Device()
	g, err := sparse.NewGraph[int32](1, 1, []int32{0}, []int32{0}, sparse.WithDevice(dev))
	require.NoError(t, err)
	_, _, _, err = e.GSpMM(ctx, "copy_u", "sum", g, filled(t, dev, 2.0, 1, 4), nil)
	require.NoError(t, err)

	expected := `
# HELP lvkernel_calls_total Completed SpMM/SDDMM calls by family, operator, reduction and execution path.
# TYPE lvkernel_calls_total counter
lvkernel_calls_total{family="sddmm",op="add",path="cpu",reduce="none"} 1
lvkernel_calls_total{family="spmm",op="copy_lhs",path="accel_csrmm",reduce="sum"} 1
lvkernel_calls_total{family="spmm",op="mul",path="cpu",reduce="sum"} 1
# HELP lvkernel_errors_total Rejected calls by family and error kind.
# TYPE lvkernel_errors_total counter
lvkernel_errors_total{family="spmm",kind="shape"} 1
# HELP lvkernel_workspace_bytes Accelerator workspace bytes held after the last accelerator call.
# TYPE lvkernel_workspace_bytes gauge
lvkernel_workspace_bytes 0
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"lvkernel_calls_total", "lvkernel_errors_total", "lvkernel_workspace_bytes"))
	n, err := testutil.GatherAndCount(reg, "lvkernel_call_duration_seconds")
	require.NoError(t, err)
	require.Equal(t, 3, n)
}

func TestLogger_FormatHintIsIgnored(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	e := engine.New(engine.WithLogger(debugLogger(&logs)))
	f := newErrorFixture(t)
	require.NoError(t, e.SpMM(context.Background(), "mul", "sum", f.g, f.u, f.e, f.out, nil,
		engine.WithFormat(sparse.FormatCOO)))
	require.Contains(t, logs.String(), `"msg":"format hint ignored"`)
	require.Contains(t, logs.String(), `"requested":"coo","used":"csr"`)
	require.Equal(t, []string{"cpu"}, dispatchPaths(t, &logs))
}

func TestOptions_PanicOnNonsense(t *testing.T) {
	t.Parallel()

	require.Panics(t, func() { engine.WithWorkers(-1) })
	require.Panics(t, func() { engine.WithGrainSize(0) })
	require.Panics(t, func() { engine.WithAccelerator(nil) })
	require.Panics(t, func() { engine.WithLogger(nil) })
	require.Panics(t, func() { engine.WithMetrics(nil) })
	require.Panics(t, func() { engine.WithTracerProvider(nil) })
	require.NotPanics(t, func() { engine.New(engine.WithWorkers(engine.DefaultWorkers)) })
	require.Same(t, engine.Default(), engine.Default())
}
