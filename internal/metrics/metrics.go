// Package metrics holds the Prometheus collectors of the service.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	UpstreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "discuit_upstream_requests_total",
			Help: "Total number of requests sent to the Discuit API",
		},
		[]string{"endpoint", "status_code"},
	)

	UpstreamRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "discuit_upstream_request_duration_seconds",
			Help:    "Discuit API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	FeedItemsRendered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_items_rendered_total",
			Help: "Total number of RSS items rendered",
		},
		[]string{"scope_kind"},
	)

	ApplicationInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "application_info",
			Help: "Application information",
		},
		[]string{"service", "version"},
	)
)

// Init publishes the static application labels.
func Init(serviceName, version string) {
	ApplicationInfo.WithLabelValues(serviceName, version).Set(1)
}

// StatusLabel renders a status code for a label. Zero means the request never
// got a response.
func StatusLabel(code int) string {
	if code == 0 {
		return "error"
	}
	return strconv.Itoa(code)
}
