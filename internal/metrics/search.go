package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search Prometheus metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "flagsearch",
			Name:      "search_requests_total",
			Help:      "Total number of feature search requests",
		},
		[]string{"sort", "status"},
	)

	SearchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "flagsearch",
			Name:      "search_duration_seconds",
			Help:      "Feature search duration in seconds (snapshot load included)",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
	)

	SearchMatchedRecords = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "flagsearch",
			Name:      "search_matched_records",
			Help:      "Number of records matching a search before pagination",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		},
	)

	SearchDroppedFiltersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "flagsearch",
			Name:      "search_dropped_filters_total",
			Help:      "Malformed filter values ignored by the query parser",
		},
		[]string{"category"}, // type / tag / status / sort
	)

	SearchCursorRejectedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "flagsearch",
			Name:      "search_cursor_rejected_total",
			Help:      "Cursors ignored and restarted from the first page",
		},
		[]string{"reason"}, // malformed / signature / mismatch
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers Prometheus search metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchRequestsTotal)
	prometheus.MustRegister(SearchDuration)
	prometheus.MustRegister(SearchMatchedRecords)
	prometheus.MustRegister(SearchDroppedFiltersTotal)
	prometheus.MustRegister(SearchCursorRejectedTotal)
	searchMetricsRegistered = true
}
