// SPDX-License-Identifier: MIT

// Package lvkernel is a generalized sparse-dense message-passing engine:
// the two kernels every graph neural network layer is built from.
//
// What is lvkernel?
//
//	SpMM   out[v] = REDUCE over edges e=(u→v) of OP(ufeat[u], efeat[e])
//	SDDMM  out[e] = OP(ufeat[u], vfeat[v])
//
//	OP     add, sub, mul, div, copy_lhs (copy_u), copy_rhs (copy_e), dot
//	REDUCE sum, max, min (max/min also report the winning source and edge)
//
// Feature axes broadcast NumPy-style, so a single head of source features
// can meet many heads of edge features without materializing copies.
//
// Under the hood the work is split across small packages, leaves first:
//
//	failure/   shared error sentinels and kind labels
//	tensor/    strided dense tensors on a tensor.Device
//	sparse/    CSR / COO storage, conversions, row slicing, Graph relations
//	binop/     operator table
//	reduce/    reduction identities and comparison
//	bcast/     broadcast descriptor for two feature shapes
//	parallel/  host worker pool
//	accel/     emulated accelerator: streams, workspace, Csrmm
//	kernel/    CSR and COO SpMM / SDDMM kernels
//	engine/    validation, dispatch, facades, logs, metrics and spans
//
// Quick example:
//
//	g, _ := sparse.NewGraph[int64](3, 3, []int64{1, 2, 0}, []int64{0, 1, 2})
//	u, _ := tensor.FromSlice(tensor.Host, []float64{0, 1, 2}, 3, 1)
//	out, _ := engine.CopyUSum(ctx, g, u) // [[1] [2] [0]]
//
// The examples/ program walks through a graph convolution and an
// attention-scored aggregation end to end.
//
//	go get github.com/katalvlaran/lvkernel
package lvkernel
