// SPDX-License-Identifier: MIT

package kernel

import (
	"github.com/katalvlaran/lvkernel/bcast"
	"github.com/katalvlaran/lvkernel/binop"
	"github.com/katalvlaran/lvkernel/sparse"
)

// SDDMMArgs bundles the buffers of one SDDMM call.
// Out has one row per logical edge.
type SDDMMArgs[T binop.Float] struct {
	Op    binop.Op
	Bcast *bcast.Descriptor
	UFeat []T // indexed by source
	VFeat []T // indexed by destination
	Out   []T
}

// SDDMMCsr evaluates every edge of the out-CSR csr (rows = sources,
// indices = destinations). Rows are independent; no synchronization.
func SDDMMCsr[I sparse.Index, T binop.Float](l Launcher, csr *sparse.CSR[I], a SDDMMArgs[T]) {
	fn := binop.Lookup[T](a.Op)
	l.For(csr.NumRows, func(lo, hi int) {
		for rid := lo; rid < hi; rid++ {
			for p := int(csr.Indptr[rid]); p < int(csr.Indptr[rid+1]); p++ {
				sddmmEdge(fn, a, rid, int(csr.Indices[p]), int(csr.EdgeID(p)))
			}
		}
	})
}

// SDDMMCoo evaluates every edge of coo (Row = sources, Col = destinations)
// in parallel. Each edge writes only its own output row.
func SDDMMCoo[I sparse.Index, T binop.Float](l Launcher, coo *sparse.COO[I], a SDDMMArgs[T]) {
	fn := binop.Lookup[T](a.Op)
	l.For(coo.NNZ(), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			sddmmEdge(fn, a, int(coo.Row[i]), int(coo.Col[i]), int(coo.EdgeID(i)))
		}
	})
}

func sddmmEdge[T binop.Float](fn binop.Func[T], a SDDMMArgs[T], src, dst, eid int) {
	d := a.Bcast
	dim := d.OutLen
	out := a.Out[eid*dim : (eid+1)*dim]
	useL, useR := a.Op.UsesLhs(), a.Op.UsesRhs()
	for k := range out {
		var lhs, rhs []T
		if useL {
			lhs = a.UFeat[src*d.LhsLen+d.LhsIndex(k):]
		}
		if useR {
			rhs = a.VFeat[dst*d.RhsLen+d.RhsIndex(k):]
		}
		out[k] = fn(lhs, rhs, d.ReduceSize)
	}
}
