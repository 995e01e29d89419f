// SPDX-License-Identifier: MIT

package engine

import (
	"log/slog"

	"github.com/katalvlaran/lvkernel/accel"
	"github.com/katalvlaran/lvkernel/parallel"
	"github.com/katalvlaran/lvkernel/sparse"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
)

// ---------- Defaults ----------

const (
	// DefaultWorkers selects runtime.NumCPU() host workers.
	DefaultWorkers = 0
	// DefaultGrainSize is the number of rows or edges a host worker claims at once.
	DefaultGrainSize = parallel.DefaultGrainSize
	// DefaultFormat leaves the format to the fixed policy.
	DefaultFormat = sparse.FormatAny

	panicNilAccel    = "engine: WithAccelerator(nil)"
	panicNilLogger   = "engine: WithLogger(nil)"
	panicNilRegistry = "engine: WithMetrics(nil)"
	panicNilTracer   = "engine: WithTracerProvider(nil)"
)

type options struct {
	workers  int
	grain    int
	accel    *accel.Context
	logger   *slog.Logger
	registry prometheus.Registerer
	tracers  trace.TracerProvider
}

// Option configures New.
type Option func(*options)

// WithWorkers sets the host goroutine count; 0 means runtime.NumCPU().
// Panics on a negative value.
func WithWorkers(n int) Option {
	_ = parallel.WithWorkers(n) // same validation

	return func(o *options) { o.workers = n }
}

// WithGrainSize sets how many rows or edges a host worker claims at once.
// Panics when g < 1.
func WithGrainSize(g int) Option {
	_ = parallel.WithGrainSize(g)

	return func(o *options) { o.grain = g }
}

// WithAccelerator attaches the context that runs relations placed on its
// device. Panics on nil.
func WithAccelerator(c *accel.Context) Option {
	if c == nil {
		panic(panicNilAccel)
	}

	return func(o *options) { o.accel = c }
}

// WithLogger routes dispatch and validation logs to l. Panics on nil.
func WithLogger(l *slog.Logger) Option {
	if l == nil {
		panic(panicNilLogger)
	}

	return func(o *options) { o.logger = l }
}

// WithMetrics registers the engine collectors with reg. Collectors already
// registered by another engine on the same registry are shared.
// Panics on nil.
func WithMetrics(reg prometheus.Registerer) Option {
	if reg == nil {
		panic(panicNilRegistry)
	}

	return func(o *options) { o.registry = reg }
}

// WithTracerProvider sets where per-call spans go. Panics on nil.
func WithTracerProvider(tp trace.TracerProvider) Option {
	if tp == nil {
		panic(panicNilTracer)
	}

	return func(o *options) { o.tracers = tp }
}

// ---------- Per-call options ----------

type callOptions struct {
	format     sparse.Format
	noFastPath bool
}

// CallOption adjusts one SpMM or SDDMM call.
type CallOption func(*callOptions)

// WithFormat records a preferred sparse format. The current policy is
// fixed (CSR for SpMM, COO for SDDMM); a differing hint is logged and
// ignored.
func WithFormat(f sparse.Format) CallOption {
	return func(o *callOptions) { o.format = f }
}

// WithoutFastPath forces the generic kernel on accelerator devices.
func WithoutFastPath() CallOption {
	return func(o *callOptions) { o.noFastPath = true }
}

func gatherCallOptions(opts []CallOption) callOptions {
	o := callOptions{format: DefaultFormat}
	for _, opt := range opts {
		opt(&o)
	}

	return o
}
