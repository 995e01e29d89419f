// SPDX-License-Identifier: MIT

package engine

import (
	"context"
	"log/slog"

	"github.com/gx-org/backend/dtype"
	"github.com/katalvlaran/lvkernel/accel"
	"github.com/katalvlaran/lvkernel/binop"
	"github.com/katalvlaran/lvkernel/failure"
	"github.com/katalvlaran/lvkernel/kernel"
	"github.com/katalvlaran/lvkernel/reduce"
	"github.com/katalvlaran/lvkernel/sparse"
	"github.com/katalvlaran/lvkernel/tensor"
	"github.com/pkg/errors"
)

// Execution path labels, used in logs, spans and metrics.
const (
	pathCPU   = "cpu"
	pathAccel = "accel"
	pathFast  = "accel_csrmm"
)

// launcher picks the executor for dev. The release func must be called
// when the call is done.
func (e *Engine) launcher(ctx context.Context, dev tensor.Device) (kernel.Launcher, func(), string, error) {
	if dev.Kind == tensor.CPU {
		return e.pool, func() {}, pathCPU, nil
	}
	if e.accel == nil || e.accel.Device() != dev {
		return nil, nil, "", failure.Tagf("engine.launcher", failure.ErrUnsupportedCombination, "no accelerator context for %s", dev)
	}
	s, err := e.accel.AcquireStream(ctx)
	if err != nil {
		return nil, nil, "", errors.Wrapf(err, "acquire stream on %s", dev)
	}

	return s, func() { e.accel.ReleaseStream(s) }, pathAccel, nil
}

func (e *Engine) runSpMM(ctx context.Context, c *call) (string, error) {
	l, release, path, err := e.launcher(ctx, c.g.Device())
	if err != nil {
		return "", err
	}
	defer release()

	switch g := c.g.(type) {
	case *sparse.Graph[int32]:
		path, err = spmmIndex(e, c, g, l, path)
	case *sparse.Graph[int64]:
		path, err = spmmIndex(e, c, g, l, path)
	default:
		err = errors.Wrapf(failure.ErrUnsupportedCombination, "relation %T", c.g)
	}
	e.logDispatch(c, sparse.FormatCSR, path)

	return path, err
}

func spmmIndex[I sparse.Index](e *Engine, c *call, g *sparse.Graph[I], l kernel.Launcher, path string) (string, error) {
	switch c.elem {
	case dtype.Float32:
		return spmmTyped[I, float32](e, c, g, l, path)
	case dtype.Float64:
		return spmmTyped[I, float64](e, c, g, l, path)
	default:
		return "", errors.Wrapf(failure.ErrUnsupportedCombination, "index %s × element %s", c.g.IndexType().String(), c.elem.String())
	}
}

func spmmTyped[I sparse.Index, T binop.Float](e *Engine, c *call, g *sparse.Graph[I], l kernel.Launcher, path string) (string, error) {
	args := kernel.SpMMArgs[I, T]{Op: c.op, Reduce: c.red, Bcast: c.desc}
	err := flatAll(
		flatInto(&args.UFeat, c.lhs),
		flatInto(&args.EFeat, c.rhs),
		flatInto(&args.Out, c.out),
		flatInto(&args.ArgU, c.argU),
		flatInto(&args.ArgE, c.argE),
	)
	if err != nil {
		return "", err
	}

	csr := g.InCSR()
	if s, ok := l.(*accel.Stream); ok && fastPathEligible(c) {
		if err = spmmFast(e, c, csr, s, args); err != nil {
			return "", err
		}

		return pathFast, nil
	}
	kernel.SpMMCsr(l, csr, args)

	return path, nil
}

// fastPathEligible reports whether the Csrmm route computes exactly this
// call: a sum over int32 indices of copy_lhs, or of mul by one scalar per
// edge with no broadcasting on the source side.
func fastPathEligible(c *call) bool {
	if c.opts.noFastPath || c.red != reduce.Sum || c.g.IndexType() != dtype.Int32 {
		return false
	}
	switch c.op {
	case binop.CopyLhs:
		return true
	case binop.Mul:
		return c.rhs.Size() == c.g.NumEdges() && c.lhs.RowLen() == c.desc.OutLen
	default:
		return false
	}
}

// spmmFast runs out = A·U through column-major scratch. For mul the edge
// weights are gathered through the CSR edge-id permutation first.
func spmmFast[I sparse.Index, T binop.Float](e *Engine, c *call, csr *sparse.CSR[I], s *accel.Stream, a kernel.SpMMArgs[I, T]) error {
	m, n := csr.NumRows, c.desc.OutLen

	var weights []T
	if c.op == binop.Mul {
		weights = a.EFeat
		if csr.HasData() {
			gathered, releaseWeights := accel.Alloc[T](e.accel.Workspace(), csr.NNZ())
			defer releaseWeights()
			s.For(csr.NNZ(), func(lo, hi int) {
				for p := lo; p < hi; p++ {
					gathered[p] = a.EFeat[csr.Data[p]]
				}
			})
			weights = gathered
		}
	}

	scratch, release := accel.Alloc[T](e.accel.Workspace(), m*n)
	defer release()
	if err := accel.Csrmm(s, csr, weights, a.UFeat, n, scratch); err != nil {
		return err
	}

	return accel.Transpose(s, m, n, scratch, a.Out)
}

func (e *Engine) runSDDMM(ctx context.Context, c *call) (string, error) {
	l, release, path, err := e.launcher(ctx, c.g.Device())
	if err != nil {
		return "", err
	}
	defer release()

	switch g := c.g.(type) {
	case *sparse.Graph[int32]:
		err = sddmmIndex(c, g, l)
	case *sparse.Graph[int64]:
		err = sddmmIndex(c, g, l)
	default:
		err = errors.Wrapf(failure.ErrUnsupportedCombination, "relation %T", c.g)
	}
	e.logDispatch(c, sparse.FormatCOO, path)

	return path, err
}

func sddmmIndex[I sparse.Index](c *call, g *sparse.Graph[I], l kernel.Launcher) error {
	switch c.elem {
	case dtype.Float32:
		return sddmmTyped[I, float32](c, g, l)
	case dtype.Float64:
		return sddmmTyped[I, float64](c, g, l)
	default:
		return errors.Wrapf(failure.ErrUnsupportedCombination, "index %s × element %s", c.g.IndexType().String(), c.elem.String())
	}
}

func sddmmTyped[I sparse.Index, T binop.Float](c *call, g *sparse.Graph[I], l kernel.Launcher) error {
	args := kernel.SDDMMArgs[T]{Op: c.op, Bcast: c.desc}
	err := flatAll(
		flatInto(&args.UFeat, c.lhs),
		flatInto(&args.VFeat, c.rhs),
		flatInto(&args.Out, c.out),
	)
	if err != nil {
		return err
	}
	kernel.SDDMMCoo(l, g.COO(), args)

	return nil
}

func (e *Engine) logDispatch(c *call, format sparse.Format, path string) {
	e.logger.Debug("dispatch",
		slog.String("family", c.family),
		slog.String("op", c.op.String()),
		slog.String("reduce", c.redLabel()),
		slog.String("format", format.String()),
		slog.String("path", path),
		slog.String("index", c.g.IndexType().String()),
		slog.String("dtype", c.elem.String()),
		slog.String("device", c.g.Device().String()))
}

// flatInto stores the typed view of t into *dst.
func flatInto[T tensor.Element](dst *[]T, t *tensor.Tensor) error {
	v, err := tensor.Flat[T](t)
	*dst = v

	return err
}

func flatAll(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}

	return nil
}
