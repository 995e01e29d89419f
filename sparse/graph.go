// SPDX-License-Identifier: MIT

package sparse

import (
	"sync"

	"github.com/gx-org/backend/dtype"
	"github.com/katalvlaran/lvkernel/failure"
	"github.com/katalvlaran/lvkernel/tensor"
)

// Relation is the type-erased view of one bipartite relation
// (source node type → destination node type) that the engine accepts.
// Concrete relations are *Graph[int32] and *Graph[int64].
type Relation interface {
	NumSrc() int
	NumDst() int
	NumEdges() int
	IndexType() dtype.DataType
	Device() tensor.Device
}

// Graph holds one relation as a COO edge list and derives the compressed
// formats on first use. Derived formats are built once and then shared
// read-only, so a Graph is safe for concurrent use.
type Graph[I Index] struct {
	numSrc, numDst int
	coo            *COO[I]
	device         tensor.Device

	inOnce  sync.Once
	in      *CSR[I]
	outOnce sync.Once
	out     *CSR[I]
}

var (
	_ Relation = (*Graph[int32])(nil)
	_ Relation = (*Graph[int64])(nil)
)

// GraphOption configures NewGraph.
type GraphOption func(*graphOptions)

type graphOptions struct {
	device  tensor.Device
	edgeIDs any // []I matching the graph's index width
}

// WithDevice places the relation on dev. Feature tensors must live on the
// same device. Default: tensor.Host.
func WithDevice(dev tensor.Device) GraphOption {
	return func(o *graphOptions) { o.device = dev }
}

// WithEdgeIDs attaches a logical edge id to every stored edge: edge p of the
// src/dst lists reads edge-feature row ids[p] and reports ids[p] as its arg.
// ids must be a permutation of [0, len(src)) whose element type matches the
// graph's index width.
func WithEdgeIDs[I Index](ids []I) GraphOption {
	return func(o *graphOptions) { o.edgeIDs = ids }
}

// NewGraph builds a relation with numSrc source nodes, numDst destination
// nodes and edges src[p] → dst[p]. The id slices are borrowed.
//
// Errors:
//   - failure.ErrShape for mismatched lengths, node ids out of range, or
//     edge ids that are not a permutation of [0, len(src)).
//   - failure.ErrUnsupportedCombination when WithEdgeIDs carries a
//     different index width.
//
// Complexity: Time O(nnz), Space O(nnz) with edge ids, else O(1), until a
// CSR format is requested.
func NewGraph[I Index](numSrc, numDst int, src, dst []I, opts ...GraphOption) (*Graph[I], error) {
	cfg := graphOptions{device: tensor.Host}
	for _, opt := range opts {
		opt(&cfg)
	}
	var data []I
	if cfg.edgeIDs != nil {
		ids, ok := cfg.edgeIDs.([]I)
		if !ok {
			return nil, failure.Tagf("sparse.NewGraph", failure.ErrUnsupportedCombination,
				"edge ids of type %T for a %s graph", cfg.edgeIDs, IndexDType[I]().String())
		}
		if err := validatePermutation("NewGraph", ids); err != nil {
			return nil, err
		}
		data = ids
	}
	coo, err := NewCOO(numSrc, numDst, src, dst, data)
	if err != nil {
		return nil, err
	}

	return &Graph[I]{numSrc: numSrc, numDst: numDst, coo: coo, device: cfg.device}, nil
}

// NumSrc returns the number of source nodes.
func (g *Graph[I]) NumSrc() int { return g.numSrc }

// NumDst returns the number of destination nodes.
func (g *Graph[I]) NumDst() int { return g.numDst }

// NumEdges returns the number of stored edges.
func (g *Graph[I]) NumEdges() int { return g.coo.NNZ() }

// IndexType returns dtype.Int32 or dtype.Int64.
func (g *Graph[I]) IndexType() dtype.DataType { return IndexDType[I]() }

// Device returns the device the relation lives on.
func (g *Graph[I]) Device() tensor.Device { return g.device }

// COO returns the edge list (rows = sources, cols = destinations).
func (g *Graph[I]) COO() *COO[I] { return g.coo }

// InCSR returns the CSR keyed by destination: row v lists the sources of
// v's incoming edges and Data their logical edge ids.
func (g *Graph[I]) InCSR() *CSR[I] {
	g.inOnce.Do(func() {
		rev := &COO[I]{
			NumRows: g.coo.NumCols,
			NumCols: g.coo.NumRows,
			Row:     g.coo.Col,
			Col:     g.coo.Row,
			Data:    g.coo.Data,
		}
		rev.RowSorted = nonDecreasing(rev.Row)
		g.in = ToCSR(rev)
	})

	return g.in
}

// OutCSR returns the CSR keyed by source: row u lists the destinations of
// u's outgoing edges.
func (g *Graph[I]) OutCSR() *CSR[I] {
	g.outOnce.Do(func() { g.out = ToCSR(g.coo) })

	return g.out
}
