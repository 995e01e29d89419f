// SPDX-License-Identifier: MIT

package engine

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "lvkernel"

// metrics holds the engine collectors. A nil *metrics records nothing.
type metrics struct {
	calls     *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	failures  *prometheus.CounterVec
	workspace prometheus.Gauge
}

func newMetrics(reg prometheus.Registerer) *metrics {
	if reg == nil {
		return nil
	}

	return &metrics{
		calls: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "calls_total",
			Help:      "Completed SpMM/SDDMM calls by family, operator, reduction and execution path.",
		}, []string{"family", "op", "reduce", "path"})),
		duration: register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "call_duration_seconds",
			Help:      "Wall time of successful calls, validation included.",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 12),
		}, []string{"family", "path"})),
		failures: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "errors_total",
			Help:      "Rejected calls by family and error kind.",
		}, []string{"family", "kind"})),
		workspace: register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "workspace_bytes",
			Help:      "Accelerator workspace bytes held after the last accelerator call.",
		})),
	}
}

// register adds c to reg, or returns the equivalent collector that is
// already there. Any other registration failure panics, as MustRegister does.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	err := reg.Register(c)
	if err == nil {
		return c
	}
	var dup prometheus.AlreadyRegisteredError
	if errors.As(err, &dup) {
		if existing, ok := dup.ExistingCollector.(C); ok {
			return existing
		}
	}
	panic(err)
}

func (m *metrics) observe(family, op, red, path string, seconds float64) {
	if m == nil {
		return
	}
	m.calls.WithLabelValues(family, op, red, path).Inc()
	m.duration.WithLabelValues(family, path).Observe(seconds)
}

func (m *metrics) fail(family, kind string) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(family, kind).Inc()
}

func (m *metrics) setWorkspace(bytes int64) {
	if m == nil {
		return
	}
	m.workspace.Set(float64(bytes))
}
