// SPDX-License-Identifier: MIT

package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/katalvlaran/lvkernel/accel"
	"github.com/katalvlaran/lvkernel/failure"
	"github.com/katalvlaran/lvkernel/parallel"
	"github.com/katalvlaran/lvkernel/sparse"
	"github.com/katalvlaran/lvkernel/tensor"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const (
	familySpMM  = "spmm"
	familySDDMM = "sddmm"

	tracerName = "github.com/katalvlaran/lvkernel/engine"
)

// Engine runs SpMM and SDDMM calls. It holds configuration only; calls
// share nothing mutable, so one Engine serves concurrent callers.
type Engine struct {
	pool    *parallel.Pool
	accel   *accel.Context
	logger  *slog.Logger
	metrics *metrics
	tracer  trace.Tracer
}

// New builds an Engine. Without options it runs host relations on
// runtime.NumCPU() workers, has no accelerator, discards logs, records no
// metrics and emits no-op spans.
func New(opts ...Option) *Engine {
	o := options{workers: DefaultWorkers, grain: DefaultGrainSize}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}
	if o.tracers == nil {
		o.tracers = noop.NewTracerProvider()
	}

	return &Engine{
		pool:    parallel.New(parallel.WithWorkers(o.workers), parallel.WithGrainSize(o.grain)),
		accel:   o.accel,
		logger:  o.logger,
		metrics: newMetrics(o.registry),
		tracer:  o.tracers.Tracer(tracerName),
	}
}

var defaultEngine = sync.OnceValue(func() *Engine { return New() })

// Default returns the shared zero-option Engine used by the package-level
// functions.
func Default() *Engine { return defaultEngine() }

// SpMM computes out[v] = REDUCE over incoming edges e=(u→v) of
// OP(ufeat[u], efeat[e]) on g, writing out and, for max/min, aux in place.
//
// Operands:
//   - op: add, sub, mul, div, copy_lhs (copy_u), copy_rhs (copy_e), dot.
//   - reduce: sum, max, min.
//   - ufeat [NumSrc, ...], efeat [NumEdges, ...], out [NumDst, ...]; the
//     operand op does not read may be nil.
//   - aux: ignored for sum; exactly {ArgU, ArgE} for max/min, each nil or
//     shaped like out with the relation's index dtype. ArgU receives the
//     source id and ArgE the logical edge id of the winning edge; rows
//     with no edge get -1.
//
// Errors: see the package documentation. Nothing is written when an error
// is returned.
func (e *Engine) SpMM(ctx context.Context, op, reduce string, g sparse.Relation,
	ufeat, efeat, out *tensor.Tensor, aux []*tensor.Tensor, opts ...CallOption) error {
	start := time.Now()
	ctx, span := e.tracer.Start(ctx, "lvkernel.SpMM", trace.WithAttributes(
		attribute.String("lvkernel.op", op),
		attribute.String("lvkernel.reduce", reduce),
	))
	defer span.End()

	c, err := validateSpMM(op, reduce, g, ufeat, efeat, out, aux, gatherCallOptions(opts))
	if err != nil {
		return e.reject(span, familySpMM, errors.Wrapf(err, "engine.SpMM(%s, %s)", op, reduce))
	}
	e.noteFormat(c, sparse.FormatCSR)

	path, err := e.runSpMM(ctx, c)
	if err != nil {
		return e.reject(span, familySpMM, errors.Wrapf(err, "engine.SpMM(%s, %s)", op, reduce))
	}
	e.finish(span, c, path, start)

	return nil
}

// SDDMM computes out[e] = OP(ufeat[u], vfeat[v]) for every edge e=(u→v)
// of g. ufeat is [NumSrc, ...], vfeat [NumDst, ...] and out
// [NumEdges, ...], addressed by logical edge id.
func (e *Engine) SDDMM(ctx context.Context, op string, g sparse.Relation,
	ufeat, vfeat, out *tensor.Tensor, opts ...CallOption) error {
	start := time.Now()
	ctx, span := e.tracer.Start(ctx, "lvkernel.SDDMM", trace.WithAttributes(
		attribute.String("lvkernel.op", op),
	))
	defer span.End()

	c, err := validateSDDMM(op, g, ufeat, vfeat, out, gatherCallOptions(opts))
	if err != nil {
		return e.reject(span, familySDDMM, errors.Wrapf(err, "engine.SDDMM(%s)", op))
	}
	e.noteFormat(c, sparse.FormatCOO)

	path, err := e.runSDDMM(ctx, c)
	if err != nil {
		return e.reject(span, familySDDMM, errors.Wrapf(err, "engine.SDDMM(%s)", op))
	}
	e.finish(span, c, path, start)

	return nil
}

// SpMM runs on the Default engine.
func SpMM(ctx context.Context, op, reduce string, g sparse.Relation,
	ufeat, efeat, out *tensor.Tensor, aux []*tensor.Tensor, opts ...CallOption) error {
	return Default().SpMM(ctx, op, reduce, g, ufeat, efeat, out, aux, opts...)
}

// SDDMM runs on the Default engine.
func SDDMM(ctx context.Context, op string, g sparse.Relation,
	ufeat, vfeat, out *tensor.Tensor, opts ...CallOption) error {
	return Default().SDDMM(ctx, op, g, ufeat, vfeat, out, opts...)
}

func (e *Engine) noteFormat(c *call, used sparse.Format) {
	if c.opts.format != sparse.FormatAny && c.opts.format != used {
		e.logger.Debug("format hint ignored",
			slog.String("family", c.family),
			slog.String("requested", c.opts.format.String()),
			slog.String("used", used.String()))
	}
}

func (e *Engine) reject(span trace.Span, family string, err error) error {
	kind := failure.Kind(err)
	e.logger.Warn("call rejected",
		slog.String("family", family),
		slog.String("kind", kind),
		slog.Any("error", err))
	e.metrics.fail(family, kind)
	span.RecordError(err)
	span.SetStatus(codes.Error, kind)

	return err
}

func (e *Engine) finish(span trace.Span, c *call, path string, start time.Time) {
	span.SetAttributes(
		attribute.String("lvkernel.path", path),
		attribute.String("lvkernel.index", c.g.IndexType().String()),
		attribute.String("lvkernel.dtype", c.elem.String()),
		attribute.Int("lvkernel.nnz", c.g.NumEdges()),
	)
	e.metrics.observe(c.family, c.op.String(), c.redLabel(), path, time.Since(start).Seconds())
	if e.accel != nil {
		e.metrics.setWorkspace(e.accel.Workspace().InUse())
	}
}
