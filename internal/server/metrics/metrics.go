// Package metrics registers the Prometheus collectors exposed on /metrics.
// HTTP-level metrics are observed from the api middleware; business metrics
// are updated from the service layer.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts HTTP requests by method, route and status.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zenvault_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration is a histogram of request latency per route.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "zenvault_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// UploadsAdmitted counts uploads that passed quota admission.
	UploadsAdmitted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "zenvault_uploads_admitted_total",
			Help: "Uploads admitted by the quota gate",
		},
	)

	// UploadsRejected counts uploads rejected at admission, by reason.
	UploadsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zenvault_uploads_rejected_total",
			Help: "Uploads rejected by the quota gate",
		},
		[]string{"reason"},
	)

	// LifecycleTransitions counts trash, restore and purge operations.
	LifecycleTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zenvault_lifecycle_transitions_total",
			Help: "File lifecycle transitions",
		},
		[]string{"transition"},
	)

	// TrashSwept counts records purged by the retention sweeper.
	TrashSwept = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "zenvault_trash_swept_total",
			Help: "Trashed records purged by the retention sweeper",
		},
	)
)
