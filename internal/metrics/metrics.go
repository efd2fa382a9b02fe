// Package metrics provides Prometheus metrics for the card lookup proxy.
// Scrape these at /metrics for Grafana dashboards and alerting.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pokecard_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pokecard_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Upstream Metrics
	UpstreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pokecard_upstream_requests_total",
			Help: "Upstream card API requests by source and result",
		},
		[]string{"source", "result"}, // result: "ok", "auth", "rate_limited", "unavailable", "malformed"
	)

	UpstreamLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pokecard_upstream_latency_seconds",
			Help:    "Upstream card API call latency",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"source"},
	)

	// Search Metrics
	SearchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pokecard_searches_total",
			Help: "Searches by language scope and outcome",
		},
		[]string{"scope", "result"}, // result: "ok", "partial", "failed"
	)

	SearchResults = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pokecard_search_results",
			Help:    "Number of cards returned per successful search",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 500},
		},
	)

	// Collection Metrics
	CollectionSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pokecard_collection_sessions",
			Help: "Number of live in-memory collection sessions",
		},
	)

	CSVExportsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pokecard_csv_exports_total",
			Help: "Total number of collection CSV exports served",
		},
	)
)
