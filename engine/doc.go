// SPDX-License-Identifier: MIT

// Package engine is the entry point for generalized SpMM and SDDMM.
//
// What & Why:
//
//	SpMM   out[v] = REDUCE over edges e=(u→v) of OP(ufeat[u], efeat[e])
//	SDDMM  out[e] = OP(ufeat[u], vfeat[v]) for every edge e=(u→v)
//
//	An Engine validates every operand before any write, resolves the
//	operator, reduction, broadcast plan, device, index width and element
//	type once, and then runs one generic kernel instantiation. Operands are
//	tensor.Tensor values; a nil tensor is the empty operand.
//
// Format policy:
//
//	SpMM always runs on the destination-keyed CSR and SDDMM on the COO edge
//	list. WithFormat is accepted and logged but does not change the choice.
//
// Backends:
//
//	Relations on tensor.Host run on the engine's parallel.Pool. Relations on
//	an accelerator device run on a stream of the accel.Context passed with
//	WithAccelerator. On the accelerator, sum-reductions of copy_lhs, or of
//	mul with one scalar weight per edge, over int32 indices take the Csrmm
//	fast path unless WithoutFastPath is given.
//
// Errors:
//
//	All failures match one of ErrShape, ErrUnsupportedCombination,
//	ErrDeviceMismatch or ErrNonContiguous through errors.Is. Every violated
//	precondition is reported, not just the first.
//
// Observability:
//
//	Structured logs go to the slog.Logger from WithLogger (discarded by
//	default), counters and latencies to the Registerer from WithMetrics, and
//	one span per call to the TracerProvider from WithTracerProvider.
package engine
