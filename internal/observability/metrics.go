package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "macrolog_http_requests_total",
	Help: "Total number of HTTP requests.",
}, []string{"method", "path", "status"})

var httpRequestDurationSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "macrolog_http_request_duration_seconds",
	Help:    "HTTP request latency by route.",
	Buckets: prometheus.DefBuckets,
}, []string{"method", "path", "status"})
