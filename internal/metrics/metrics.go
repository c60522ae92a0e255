// Package metrics holds the Prometheus collectors exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "autoservice"

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	LiftsOccupied = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "lifts_occupied",
		Help:      "Number of lift bays currently holding an order",
	})

	ServiceDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "service_duration_seconds",
		Help:      "Time an order spent on a lift",
		Buckets:   []float64{600, 1800, 3600, 7200, 14400, 28800},
	})

	OrdersArchivedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_archived_total",
			Help:      "Orders moved to the archive",
		},
		[]string{"trigger"}, // sweep or manual
	)

	DailyReportsMaterializedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "daily_reports_materialized_total",
		Help:      "Daily report log entries written",
	})

	MaintenanceFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "maintenance_failures_total",
			Help:      "Failed maintenance job runs",
		},
		[]string{"job"},
	)
)
