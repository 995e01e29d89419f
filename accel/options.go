// SPDX-License-Identifier: MIT

package accel

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	// DefaultBlockSize is the number of indices one grid block covers.
	DefaultBlockSize = 256
	// DefaultStreams is the size of the per-context stream pool.
	DefaultStreams = 4

	panicBlockSize = "accel: WithBlockSize(n) requires n >= 1"
	panicStreams   = "accel: WithStreams(n) requires n >= 1"
	panicOrdinal   = "accel: WithOrdinal(n) requires n >= 0"
)

type options struct {
	blockSize int
	streams   int
	ordinal   int
	gauge     prometheus.Gauge
}

// Option configures NewContext.
type Option func(*options)

// WithBlockSize sets the grid block width. Panics when n < 1.
func WithBlockSize(n int) Option {
	if n < 1 {
		panic(panicBlockSize)
	}

	return func(o *options) { o.blockSize = n }
}

// WithStreams sets how many streams calls may hold at once. Panics when n < 1.
func WithStreams(n int) Option {
	if n < 1 {
		panic(panicStreams)
	}

	return func(o *options) { o.streams = n }
}

// WithOrdinal selects the device number. Panics when n < 0.
func WithOrdinal(n int) Option {
	if n < 0 {
		panic(panicOrdinal)
	}

	return func(o *options) { o.ordinal = n }
}

// WithWorkspaceGauge reports outstanding workspace bytes to g.
func WithWorkspaceGauge(g prometheus.Gauge) Option {
	return func(o *options) { o.gauge = g }
}

func defaultOptions() options {
	return options{blockSize: DefaultBlockSize, streams: DefaultStreams}
}
