package metrics

import "github.com/prometheus/client_golang/prometheus"

// StoreMetrics tracks operations against backing stores (SQLite, Postgres, Redis).
// Operation labels must come from a small fixed set, never raw queries.
type StoreMetrics struct {
	OpDuration *prometheus.HistogramVec
	OpErrors   *prometheus.CounterVec
}

// NewStoreMetrics creates and registers store metrics on the given registry.
func NewStoreMetrics(reg prometheus.Registerer) *StoreMetrics {
	m := &StoreMetrics{
		OpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "operation_duration_seconds",
			Help:      "Duration of store operations in seconds.",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"backend", "operation"}),
		OpErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "operation_errors_total",
			Help:      "Total number of failed store operations.",
		}, []string{"backend", "operation"}),
	}

	reg.MustRegister(m.OpDuration, m.OpErrors)
	return m
}

// Observe records one operation. A nil receiver is a no-op.
func (m *StoreMetrics) Observe(backend, operation string, seconds float64, failed bool) {
	if m == nil {
		return
	}
	m.OpDuration.WithLabelValues(backend, operation).Observe(seconds)
	if failed {
		m.OpErrors.WithLabelValues(backend, operation).Inc()
	}
}
