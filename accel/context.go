// SPDX-License-Identifier: MIT

package accel

import (
	"context"
	"runtime"
	"sync/atomic"

	"github.com/katalvlaran/lvkernel/parallel"
	"github.com/katalvlaran/lvkernel/tensor"
)

// Context is one emulated accelerator device.
type Context struct {
	device    tensor.Device
	blockSize int
	streams   chan *Stream
	grid      *parallel.Pool
	ws        *Workspace
	closed    atomic.Bool
}

// NewContext builds a device context with a full stream pool.
func NewContext(opts ...Option) *Context {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	c := &Context{
		device:    tensor.AccelDevice(o.ordinal),
		blockSize: o.blockSize,
		streams:   make(chan *Stream, o.streams),
		grid:      parallel.New(parallel.WithWorkers(runtime.NumCPU()), parallel.WithGrainSize(o.blockSize)),
		ws:        newWorkspace(o.gauge),
	}
	for i := 0; i < o.streams; i++ {
		c.streams <- &Stream{id: i, owner: c}
	}

	return c
}

// Device returns the tensor.Device this context executes.
func (c *Context) Device() tensor.Device { return c.device }

// BlockSize returns the grid block width.
func (c *Context) BlockSize() int { return c.blockSize }

// Workspace returns the scratch allocator.
func (c *Context) Workspace() *Workspace { return c.ws }

// AcquireStream takes a stream from the pool, waiting until one is free or
// ctx is done. The caller must hand it back with ReleaseStream.
//
// Errors:
//   - ErrContextClosed after Close.
//   - ctx.Err() when ctx ends first.
func (c *Context) AcquireStream(ctx context.Context) (*Stream, error) {
	if c.closed.Load() {
		return nil, ErrContextClosed
	}
	select {
	case s := <-c.streams:
		return s, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// ReleaseStream returns s to the pool.
func (c *Context) ReleaseStream(s *Stream) {
	c.streams <- s
}

// Close stops handing out streams. Launches already in flight finish
// normally. Close is idempotent.
func (c *Context) Close() error {
	c.closed.Store(true)

	return nil
}

// Stream is an ordered launch queue. A stream belongs to the caller that
// acquired it until ReleaseStream, and For returns only once its grid is
// done, so launches on one stream never overlap.
type Stream struct {
	id    int
	owner *Context
}

// ID returns the stream's index inside its context.
func (s *Stream) ID() int { return s.id }

// For launches a grid covering [0, n) in BlockSize blocks and waits for it.
func (s *Stream) For(n int, fn func(lo, hi int)) {
	s.owner.grid.For(n, fn)
}
