package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	TaskOutcomeSuccess = "success"
	TaskOutcomeFailure = "failure"
	TaskOutcomeDropped = "dropped"
)

var (
	HTTPRequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint", "status"},
	)

	HTTPRequestInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	// ReportTasksTotal counts background report tasks by kind and outcome.
	ReportTasksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "report_tasks_total",
			Help: "Total number of background report tasks",
		},
		[]string{"kind", "outcome"},
	)

	ReportQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "report_queue_depth",
			Help: "Number of report tasks waiting for a worker",
		},
	)
)

// RecordTask increments the task counter for kind and outcome.
func RecordTask(kind string, outcome string) {
	ReportTasksTotal.WithLabelValues(kind, outcome).Inc()
}
