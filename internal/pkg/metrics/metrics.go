package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pph21",
		Name:      "cache_requests_total",
		Help:      "Cache lookups by namespace and result.",
	}, []string{"namespace", "result"})

	calculations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pph21",
		Name:      "calculations_total",
		Help:      "Tax calculations by method and outcome.",
	}, []string{"method", "outcome"})

	calculationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "pph21",
		Name:      "calculation_duration_seconds",
		Help:      "Time spent computing one pay period.",
		Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
	}, []string{"method"})

	fallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pph21",
		Name:      "fallbacks_total",
		Help:      "Configuration fallbacks applied, by warning code.",
	}, []string{"code"})
)

// CacheObserver reports cache hits and misses to Prometheus.
type CacheObserver struct{}

func (CacheObserver) Hit(namespace string) {
	cacheRequests.WithLabelValues(namespace, "hit").Inc()
}

func (CacheObserver) Miss(namespace string) {
	cacheRequests.WithLabelValues(namespace, "miss").Inc()
}

// ObserveCalculation records one finished calculation.
func ObserveCalculation(method, outcome string, elapsed time.Duration) {
	calculations.WithLabelValues(method, outcome).Inc()
	calculationDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}

func RecordFallback(code string) {
	fallbacks.WithLabelValues(code).Inc()
}
