// Package metrics holds the Prometheus instruments for lifecycle transitions,
// federated search and the HTTP boundary. Everything registers with the default registry via promauto.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "asset_tracker"

var (
	// TransitionsTotal counts lifecycle operations by operation and outcome.
	// outcome: success | not_found | invalid_state | validation | busy | unexpected
	TransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "lifecycle",
			Name:      "transitions_total",
			Help:      "Total number of lifecycle operations by operation and outcome.",
		},
		[]string{"operation", "outcome"},
	)

	TransitionDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "lifecycle",
			Name:      "duration_seconds",
			Help:      "Duration of lifecycle operations including lock wait.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	SearchDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "duration_seconds",
			Help:      "Duration of federated search queries by search type.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"type"},
	)

	SearchResults = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "results",
			Help:      "Total unioned result count per search before pagination.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		},
		[]string{"type"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests by method, route and status.",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

func ObserveTransition(operation, outcome string, started time.Time) {
	TransitionsTotal.WithLabelValues(operation, outcome).Inc()
	TransitionDurationSeconds.WithLabelValues(operation).Observe(time.Since(started).Seconds())
}

func ObserveSearch(searchType string, total int, started time.Time) {
	SearchDurationSeconds.WithLabelValues(searchType).Observe(time.Since(started).Seconds())
	SearchResults.WithLabelValues(searchType).Observe(float64(total))
}
