package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Domain metrics for the receiving and placement pipeline.
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "receiving_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "receiving_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	ReceiveOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "receiving_items_total",
			Help: "Receive operations by resulting approval status",
		},
		[]string{"approval_status"},
	)

	DiscrepanciesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "receiving_discrepancies_total",
			Help: "Discrepancies recorded during receiving, by type",
		},
		[]string{"type"},
	)

	PlacementOverflowQuantity = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "placement_overflow_quantity_total",
			Help: "Quantity spilled into temporary storage",
		},
	)

	PlacementUnplacedQuantity = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "placement_unplaced_quantity_total",
			Help: "Quantity that could not be placed anywhere and was surfaced as a warning",
		},
	)

	RelocationTasksCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "placement_relocation_tasks_created_total",
			Help: "Relocation tasks scheduled for overflow stock",
		},
	)

	SessionsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "receiving_sessions_completed_total",
			Help: "Completed receiving sessions by resulting purchase order status",
		},
		[]string{"po_status"},
	)
)
