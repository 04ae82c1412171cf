package metrics

import "github.com/prometheus/client_golang/prometheus"

// PredictionMetrics holds Prometheus metrics for the classification pipeline.
type PredictionMetrics struct {
	Predictions       *prometheus.CounterVec
	Failures          *prometheus.CounterVec
	InferenceDuration prometheus.Histogram
	StoreFailures     prometheus.Counter
}

// NewPredictionMetrics creates and registers prediction metrics on the given registry.
func NewPredictionMetrics(reg prometheus.Registerer) *PredictionMetrics {
	m := &PredictionMetrics{
		Predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "predictions_total",
			Help:      "Total number of successful predictions, by sentiment.",
		}, []string{"sentiment"}),
		Failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "prediction_failures_total",
			Help:      "Total number of failed predictions, by reason.",
		}, []string{"reason"}),
		InferenceDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "inference_duration_seconds",
			Help:      "Duration of single-text inference in seconds.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		StoreFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "review_store_failures_total",
			Help:      "Total number of predictions that could not be persisted.",
		}),
	}

	reg.MustRegister(m.Predictions, m.Failures, m.InferenceDuration, m.StoreFailures)
	return m
}
