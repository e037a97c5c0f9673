// Package metrics exposes Prometheus instrumentation for the engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	calcLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:      "calculation_seconds",
			Subsystem: "tide_engine",
			Help:      "Tide calculation latencies in seconds.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 2.0},
		},
	)

	cacheResults = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:      "cache_requests_total",
			Subsystem: "tide_engine",
			Help:      "Result cache lookups by outcome.",
		},
		[]string{"outcome"},
	)

	regionFallbacks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name:      "region_fallbacks_total",
			Subsystem: "tide_engine",
			Help:      "Best-region lookups that fell back to the unrestricted search radius.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		calcLatency,
		cacheResults,
		regionFallbacks,
	)
}

// ObserveCalculation records one end-to-end tide calculation.
func ObserveCalculation(seconds float64) {
	calcLatency.Observe(seconds)
}

// CountCacheHit records a result served from cache.
func CountCacheHit() {
	cacheResults.With(prometheus.Labels{"outcome": "hit"}).Inc()
}

// CountCacheMiss records a lookup that had to compute.
func CountCacheMiss() {
	cacheResults.With(prometheus.Labels{"outcome": "miss"}).Inc()
}

// CountRegionFallback records a wide-radius region search.
func CountRegionFallback() {
	regionFallbacks.Inc()
}
