// Package monitoring declares the Prometheus metrics the gateway
// exports. Metrics are registered via promauto at package init, so
// importing any producer wires them into the default registry served at
// /metrics.
package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llmgateway_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status_class"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "llmgateway_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"method", "path", "status_class"},
	)

	HTTPInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "llmgateway_http_inflight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	UpstreamAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llmgateway_upstream_attempts_total",
			Help: "Total upstream attempts per credential id",
		},
		[]string{"credential"},
	)

	UpstreamFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llmgateway_upstream_failures_total",
			Help: "Total classified upstream failures per credential id",
		},
		[]string{"credential", "kind"},
	)

	CacheHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "llmgateway_cache_hits_total",
			Help: "Response cache hits",
		},
	)

	CacheMissesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "llmgateway_cache_misses_total",
			Help: "Response cache misses",
		},
	)

	StreamChunksForwarded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "llmgateway_stream_chunks_forwarded_total",
			Help: "Streaming chunks forwarded to clients",
		},
	)
)
