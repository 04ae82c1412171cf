package metrics

import "github.com/prometheus/client_golang/prometheus"

// CacheMetrics holds Prometheus metrics for the analytics result cache.
type CacheMetrics struct {
	Hits          prometheus.Counter
	Misses        prometheus.Counter
	Errors        *prometheus.CounterVec
	Invalidations prometheus.Counter
	Evictions     prometheus.Counter
	Entries       prometheus.Gauge
}

// NewCacheMetrics creates and registers analytics cache metrics on the given registry.
func NewCacheMetrics(reg prometheus.Registerer) *CacheMetrics {
	m := &CacheMetrics{
		Hits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analytics_cache",
			Name:      "hits_total",
			Help:      "Total number of analytics cache hits.",
		}),
		Misses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analytics_cache",
			Name:      "misses_total",
			Help:      "Total number of analytics cache misses.",
		}),
		Errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analytics_cache",
			Name:      "errors_total",
			Help:      "Total number of analytics cache backend errors, by operation.",
		}, []string{"operation"}),
		Invalidations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analytics_cache",
			Name:      "invalidations_total",
			Help:      "Total number of analytics cache invalidations.",
		}),
		Evictions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analytics_cache",
			Name:      "evictions_total",
			Help:      "Total number of expired in-process cache entries evicted.",
		}),
		Entries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "analytics_cache",
			Name:      "entries",
			Help:      "Current number of in-process cache entries, including expired ones not yet evicted.",
		}),
	}

	reg.MustRegister(m.Hits, m.Misses, m.Errors, m.Invalidations, m.Evictions, m.Entries)
	return m
}
