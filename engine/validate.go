// SPDX-License-Identifier: MIT

package engine

import (
	"github.com/gx-org/backend/dtype"
	"github.com/katalvlaran/lvkernel/bcast"
	"github.com/katalvlaran/lvkernel/binop"
	"github.com/katalvlaran/lvkernel/failure"
	"github.com/katalvlaran/lvkernel/reduce"
	"github.com/katalvlaran/lvkernel/sparse"
	"github.com/katalvlaran/lvkernel/tensor"
	"go.uber.org/multierr"
)

// Operand names used in error messages.
const (
	nameU    = "U_data"
	nameE    = "E_data"
	nameV    = "V_data"
	nameOut  = "out"
	nameArgU = "Arg_U"
	nameArgE = "Arg_E"
)

// Leading-axis roles: which relation count an operand's axis 0 must match.
const (
	roleSrc = iota
	roleEdge
	roleDst
)

// operand is one named tensor slot of a call.
type operand struct {
	name string
	t    *tensor.Tensor
	role int
}

// call is a fully validated request.
type call struct {
	family string
	op     binop.Op
	red    reduce.Kind
	g      sparse.Relation
	lhs    *tensor.Tensor
	rhs    *tensor.Tensor
	out    *tensor.Tensor
	argU   *tensor.Tensor
	argE   *tensor.Tensor
	desc   *bcast.Descriptor
	elem   dtype.DataType
	opts   callOptions
}

func (c *call) redLabel() string {
	if c.family == familySDDMM {
		return "none"
	}

	return c.red.String()
}

// checkCtx reports every non-empty operand not on dev.
func checkCtx(dev tensor.Device, ops []operand) error {
	var err error
	for _, o := range ops {
		if o.t.IsEmpty() || o.t.Device() == dev {
			continue
		}
		err = multierr.Append(err, failure.Tagf("CheckCtx", failure.ErrDeviceMismatch,
			"expected device %s, got %s for %s", dev, o.t.Device(), o.name))
	}

	return err
}

// checkContiguous reports every non-empty strided operand.
func checkContiguous(ops []operand) error {
	var err error
	for _, o := range ops {
		if o.t.IsEmpty() || o.t.IsContiguous() {
			continue
		}
		err = multierr.Append(err, failure.Tagf("CheckContiguous", failure.ErrNonContiguous,
			"expect %s to be a contiguous tensor", o.name))
	}

	return err
}

// checkShape reports rank < 2 and leading axes that disagree with the
// relation. Scalar features carry a trailing axis of length one.
func checkShape(g sparse.Relation, ops []operand) error {
	gdim := [...]int{roleSrc: g.NumSrc(), roleEdge: g.NumEdges(), roleDst: g.NumDst()}
	var err error
	for _, o := range ops {
		if o.t.IsEmpty() {
			continue
		}
		if o.t.NDim() < 2 {
			err = multierr.Append(err, failure.Tagf("CheckShape", failure.ErrShape,
				"expect %s to have ndim >= 2 (scalar features take a trailing axis of length one), got %v", o.name, o.t.Dims()))
			continue
		}
		if want := gdim[o.role]; o.t.Dim(0) != want {
			err = multierr.Append(err, failure.Tagf("CheckShape", failure.ErrShape,
				"expect %s to have size %d on the first dimension, got %d", o.name, want, o.t.Dim(0)))
		}
	}

	return err
}

// checkIndexType accepts the two instantiated index widths.
func checkIndexType(g sparse.Relation) error {
	switch g.(type) {
	case *sparse.Graph[int32], *sparse.Graph[int64]:
		return nil
	default:
		return failure.Tagf("CheckIndex", failure.ErrUnsupportedCombination, "relation %T", g)
	}
}

// checkElem requires a floating output dtype shared by every feature operand.
func checkElem(out *tensor.Tensor, feats []operand) (dtype.DataType, error) {
	if out.IsEmpty() {
		return dtype.Invalid, nil
	}
	elem := out.DType()
	var err error
	if elem != dtype.Float32 && elem != dtype.Float64 {
		err = failure.Tagf("CheckDType", failure.ErrUnsupportedCombination, "feature dtype %s", elem.String())
	}
	for _, o := range feats {
		if !o.t.IsEmpty() && o.t.DType() != elem {
			err = multierr.Append(err, failure.Tagf("CheckDType", failure.ErrUnsupportedCombination,
				"%s is %s but out is %s", o.name, o.t.DType().String(), elem.String()))
		}
	}

	return elem, err
}

// checkOut requires out's feature length to match the broadcast plan and
// every aux tensor to share out's dims and the relation's index dtype.
func checkOut(out *tensor.Tensor, desc *bcast.Descriptor, idx dtype.DataType, aux []operand) error {
	var err error
	if out.NDim() >= 2 && out.RowLen() != desc.OutLen {
		err = failure.Tagf("CheckShape", failure.ErrShape,
			"out feature shape %v holds %d elements, result rows need %d (%v)", out.FeatureDims(), out.RowLen(), desc.OutLen, desc.OutShape)
	}
	for _, o := range aux {
		if o.t.IsEmpty() {
			continue
		}
		if !sameDims(o.t.Dims(), out.Dims()) {
			err = multierr.Append(err, failure.Tagf("CheckShape", failure.ErrShape,
				"%s dims %v differ from out dims %v", o.name, o.t.Dims(), out.Dims()))
		}
		if o.t.DType() != idx {
			err = multierr.Append(err, failure.Tagf("CheckDType", failure.ErrUnsupportedCombination,
				"%s is %s, relation indices are %s", o.name, o.t.DType().String(), idx.String()))
		}
	}

	return err
}

func requirePresent(ops ...operand) error {
	var err error
	for _, o := range ops {
		if o.t.IsEmpty() {
			err = multierr.Append(err, failure.Tagf("CheckOperand", failure.ErrShape, "%s is required", o.name))
		}
	}

	return err
}

// validateSpMM checks a SpMM request and returns its execution plan.
//
// Stage 1 collects name, device, layout and aux-count problems together.
// Shape checks need a known operator, so they run only when stage 1 is
// clean; the broadcast plan and dtype checks run last.
func validateSpMM(opName, redName string, g sparse.Relation, ufeat, efeat, out *tensor.Tensor, aux []*tensor.Tensor, opts callOptions) (*call, error) {
	if g == nil {
		return nil, failure.Tagf("CheckGraph", failure.ErrShape, "nil relation")
	}
	c := &call{family: familySpMM, g: g, lhs: ufeat, rhs: efeat, out: out, opts: opts}

	op, opErr := binop.Parse(opName)
	red, redErr := reduce.Parse(redName)
	if opErr == nil {
		c.op = op
		c.lhs, c.rhs = pick(op, ufeat, efeat)
	}
	var auxErr error
	if redErr == nil {
		c.red = red
		if red.NeedsArg() {
			if len(aux) == 2 {
				c.argU, c.argE = aux[0], aux[1]
			} else {
				auxErr = failure.Tagf("CheckAux", failure.ErrShape, "%s needs 2 aux tensors, got %d", red, len(aux))
			}
		}
	}

	ops := []operand{
		{nameU, c.lhs, roleSrc},
		{nameE, c.rhs, roleEdge},
		{nameOut, out, roleDst},
		{nameArgU, c.argU, roleDst},
		{nameArgE, c.argE, roleDst},
	}
	err := multierr.Combine(
		checkCtx(g.Device(), ops),
		checkContiguous(ops),
		auxErr,
		opErr,
		redErr,
		checkIndexType(g),
	)
	if err != nil {
		return nil, err
	}

	if err = multierr.Combine(requirePresent(required(op, ops[0], ops[1], ops[2])...), checkShape(g, ops)); err != nil {
		return nil, err
	}
	if c.desc, err = bcast.Compute(op, c.lhs.FeatureDims(), c.rhs.FeatureDims()); err != nil {
		return nil, err
	}
	var elemErr error
	c.elem, elemErr = checkElem(out, ops[:2])
	if err = multierr.Combine(checkOut(out, c.desc, g.IndexType(), ops[3:]), elemErr); err != nil {
		return nil, err
	}

	return c, nil
}

// validateSDDMM checks a SDDMM request: out has one row per edge.
func validateSDDMM(opName string, g sparse.Relation, ufeat, vfeat, out *tensor.Tensor, opts callOptions) (*call, error) {
	if g == nil {
		return nil, failure.Tagf("CheckGraph", failure.ErrShape, "nil relation")
	}
	c := &call{family: familySDDMM, g: g, lhs: ufeat, rhs: vfeat, out: out, opts: opts}

	op, opErr := binop.Parse(opName)
	if opErr == nil {
		c.op = op
		c.lhs, c.rhs = pick(op, ufeat, vfeat)
	}

	ops := []operand{
		{nameU, c.lhs, roleSrc},
		{nameV, c.rhs, roleDst},
		{nameE, out, roleEdge},
	}
	err := multierr.Combine(
		checkCtx(g.Device(), ops),
		checkContiguous(ops),
		opErr,
		checkIndexType(g),
	)
	if err != nil {
		return nil, err
	}

	if err = multierr.Combine(requirePresent(required(op, ops[0], ops[1], ops[2])...), checkShape(g, ops)); err != nil {
		return nil, err
	}
	if c.desc, err = bcast.Compute(op, c.lhs.FeatureDims(), c.rhs.FeatureDims()); err != nil {
		return nil, err
	}
	var elemErr error
	c.elem, elemErr = checkElem(out, ops[:2])
	if err = multierr.Combine(checkOut(out, c.desc, g.IndexType(), nil), elemErr); err != nil {
		return nil, err
	}

	return c, nil
}

// pick drops the operand op does not read.
func pick(op binop.Op, lhs, rhs *tensor.Tensor) (*tensor.Tensor, *tensor.Tensor) {
	if !op.UsesLhs() {
		lhs = nil
	}
	if !op.UsesRhs() {
		rhs = nil
	}

	return lhs, rhs
}

// required lists the operands op reads plus the output.
func required(op binop.Op, lhs, rhs, out operand) []operand {
	var ops []operand
	if op.UsesLhs() {
		ops = append(ops, lhs)
	}
	if op.UsesRhs() {
		ops = append(ops, rhs)
	}

	return append(ops, out)
}

func sameDims(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}
