// SPDX-License-Identifier: MIT

package sparse

import (
	"fmt"

	"github.com/gx-org/backend/dtype"
)

// Index is the closed set of index widths a sparse view may use.
type Index interface {
	int32 | int64
}

// IndexDType maps an index width to its dtype tag.
func IndexDType[I Index]() dtype.DataType {
	var zero I
	if _, ok := any(zero).(int32); ok {
		return dtype.Int32
	}

	return dtype.Int64
}

// Format names a sparse storage layout.
type Format uint8

const (
	// FormatAny lets the engine choose.
	FormatAny Format = iota
	// FormatCSR is compressed sparse row.
	FormatCSR
	// FormatCOO is the coordinate list.
	FormatCOO
)

// String returns "any", "csr" or "coo".
func (f Format) String() string {
	switch f {
	case FormatAny:
		return "any"
	case FormatCSR:
		return "csr"
	case FormatCOO:
		return "coo"
	default:
		return fmt.Sprintf("format(%d)", uint8(f))
	}
}

// Span is a borrowed, read-only window [start, start+n) over a buffer it does
// not own. The zero value is an empty span.
type Span[T any] struct {
	base  []T // backing buffer, owned elsewhere
	start int // first element in base
	n     int // window length
}

// Borrow returns the window base[start:start+n].
//
// Errors:
//   - ErrShape-wrapped error when the window does not fit in base.
func Borrow[T any](base []T, start, n int) (Span[T], error) {
	if start < 0 || n < 0 || start+n > len(base) {
		return Span[T]{}, sparseErrorf("Borrow", "window [%d,%d) outside buffer of %d", start, start+n, len(base))
	}

	return Span[T]{base: base, start: start, n: n}, nil
}

// Len returns the window length.
func (s Span[T]) Len() int { return s.n }

// Offset returns the window start inside the backing buffer.
func (s Span[T]) Offset() int { return s.start }

// At returns element i of the window. It panics when i is out of range,
// like indexing a slice.
func (s Span[T]) At(i int) T {
	if i < 0 || i >= s.n {
		panic(fmt.Sprintf("sparse: Span index %d out of range [0,%d)", i, s.n))
	}

	return s.base[s.start+i]
}

// Values returns the window as a slice with capacity capped at its length,
// so appending to it never writes into the backing buffer.
func (s Span[T]) Values() []T {
	end := s.start + s.n

	return s.base[s.start:end:end]
}
