package application

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeSuccess = "success"
	outcomeSkipped = "skipped"
)

var (
	// Recipe API operation metrics, labelled by operation name.
	operationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipebook_api_operations_total",
			Help: "Total number of recipe API operations by outcome",
		},
		[]string{"operation", "outcome"},
	)

	operationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recipebook_api_operation_duration_seconds",
			Help:    "Recipe API operation latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// Optimistic deletes whose backend call failed after the row was
	// already removed from the held list.
	divergedDeletes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recipebook_list_diverged_deletes_total",
			Help: "Total number of optimistic deletes that failed on the backend",
		},
	)
)
