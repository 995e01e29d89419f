// SPDX-License-Identifier: MIT

package kernel

import (
	"runtime"
	"sync/atomic"

	"github.com/katalvlaran/lvkernel/bcast"
	"github.com/katalvlaran/lvkernel/binop"
	"github.com/katalvlaran/lvkernel/reduce"
	"github.com/katalvlaran/lvkernel/sparse"
)

// SpMMArgs bundles the buffers of one SpMM call. Unused operands and arg
// outputs are nil.
type SpMMArgs[I sparse.Index, T binop.Float] struct {
	Op     binop.Op
	Reduce reduce.Kind
	Bcast  *bcast.Descriptor
	UFeat  []T
	EFeat  []T
	Out    []T
	ArgU   []I
	ArgE   []I
}

// SpMMCsr reduces over the in-CSR csr (rows = destinations, indices =
// sources, Data = logical edge ids). Each row is initialized to the
// reduction identity and its arg slots to NoArg before edges are folded in
// storage order, so a row without edges ends as identity / NoArg regardless
// of what out held before.
func SpMMCsr[I sparse.Index, T binop.Float](l Launcher, csr *sparse.CSR[I], a SpMMArgs[I, T]) {
	fn := binop.Lookup[T](a.Op)
	d := a.Bcast
	dim, lhsDim, rhsDim, rs := d.OutLen, d.LhsLen, d.RhsLen, d.ReduceSize
	useL, useR := a.Op.UsesLhs(), a.Op.UsesRhs()
	recU := a.ArgU != nil && useL
	recE := a.ArgE != nil && useR
	ident := reduce.Identity[T](a.Reduce)

	l.For(csr.NumRows, func(lo, hi int) {
		for rid := lo; rid < hi; rid++ {
			base := rid * dim
			resetRow(a.Out[base:base+dim], ident)
			resetArgs(a.ArgU, a.ArgE, base, dim)

			for p := int(csr.Indptr[rid]); p < int(csr.Indptr[rid+1]); p++ {
				cid := csr.Indices[p]
				eid := csr.EdgeID(p)
				for k := 0; k < dim; k++ {
					var lhs, rhs []T
					if useL {
						lhs = a.UFeat[int(cid)*lhsDim+d.LhsIndex(k):]
					}
					if useR {
						rhs = a.EFeat[int(eid)*rhsDim+d.RhsIndex(k):]
					}
					val := fn(lhs, rhs, rs)
					o := base + k
					if a.Reduce == reduce.Sum {
						a.Out[o] += val
						continue
					}
					if reduce.Replaces(a.Reduce, val, a.Out[o]) {
						a.Out[o] = val
						if recU {
							a.ArgU[o] = cid
						}
						if recE {
							a.ArgE[o] = eid
						}
					}
				}
			}
		}
	})
}

// SpMMCoo reduces over the edge list coo (Row = sources, Col =
// destinations). Output rows are reset first, then edges are folded in
// parallel. For max/min, equal values resolve to the smaller logical edge
// id, which makes the result independent of scheduling.
func SpMMCoo[I sparse.Index, T binop.Float](l Launcher, coo *sparse.COO[I], a SpMMArgs[I, T]) {
	fn := binop.Lookup[T](a.Op)
	d := a.Bcast
	dim, lhsDim, rhsDim, rs := d.OutLen, d.LhsLen, d.RhsLen, d.ReduceSize
	useL, useR := a.Op.UsesLhs(), a.Op.UsesRhs()
	recU := a.ArgU != nil && useL
	recE := a.ArgE != nil && useR
	ident := reduce.Identity[T](a.Reduce)
	numDst := coo.NumCols

	l.For(numDst, func(lo, hi int) {
		resetRow(a.Out[lo*dim:hi*dim], ident)
		resetArgs(a.ArgU, a.ArgE, lo*dim, (hi-lo)*dim)
	})

	eval := func(i, k int) (src, eid I, val T) {
		src, eid = coo.Row[i], coo.EdgeID(i)
		var lhs, rhs []T
		if useL {
			lhs = a.UFeat[int(src)*lhsDim+d.LhsIndex(k):]
		}
		if useR {
			rhs = a.EFeat[int(eid)*rhsDim+d.RhsIndex(k):]
		}

		return src, eid, fn(lhs, rhs, rs)
	}

	if a.Reduce == reduce.Sum {
		l.For(coo.NNZ(), func(lo, hi int) {
			for i := lo; i < hi; i++ {
				base := int(coo.Col[i]) * dim
				for k := 0; k < dim; k++ {
					_, _, val := eval(i, k)
					atomicAdd(&a.Out[base+k], val)
				}
			}
		})

		return
	}

	locks := make([]atomic.Int32, numDst)
	winner := make([]I, numDst*dim)
	for i := range winner {
		winner[i] = reduce.NoArg
	}
	l.For(coo.NNZ(), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			dst := int(coo.Col[i])
			base := dst * dim
			spinLock(&locks[dst])
			for k := 0; k < dim; k++ {
				src, eid, val := eval(i, k)
				o := base + k
				better := reduce.Replaces(a.Reduce, val, a.Out[o])
				tie := val == a.Out[o] && winner[o] != reduce.NoArg && eid < winner[o]
				if !better && !tie {
					continue
				}
				a.Out[o] = val
				winner[o] = eid
				if recU {
					a.ArgU[o] = src
				}
				if recE {
					a.ArgE[o] = eid
				}
			}
			locks[dst].Store(0)
		}
	})
}

func resetRow[T binop.Float](row []T, ident T) {
	for k := range row {
		row[k] = ident
	}
}

func resetArgs[I sparse.Index](argU, argE []I, base, n int) {
	if argU != nil {
		for k := base; k < base+n; k++ {
			argU[k] = reduce.NoArg
		}
	}
	if argE != nil {
		for k := base; k < base+n; k++ {
			argE[k] = reduce.NoArg
		}
	}
}

func spinLock(w *atomic.Int32) {
	for !w.CompareAndSwap(0, 1) {
		runtime.Gosched()
	}
}
