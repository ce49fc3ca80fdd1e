package pagination

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for traversals.
var (
	pagesFetchedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ytdata_pagination_pages_fetched_total",
		Help: "Total pages fetched by endpoint",
	}, []string{"endpoint"})

	recordsEmittedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ytdata_pagination_records_emitted_total",
		Help: "Total records yielded to callers by endpoint",
	}, []string{"endpoint"})

	traversalsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ytdata_pagination_traversals_total",
		Help: "Total finished traversals by endpoint and final state",
	}, []string{"endpoint", "state"})

	traversalDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ytdata_pagination_traversal_duration_seconds",
		Help:    "Wall time from first request to end of traversal",
		Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300},
	}, []string{"endpoint"})
)
