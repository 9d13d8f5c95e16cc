// Package metrics holds the process-wide Prometheus collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// StorePages counts result pages requested from a store.
	StorePages = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ph_store_pages_total",
		Help: "Result pages requested from the observation store",
	}, []string{"backend"})

	// StoreRows counts raw rows returned by a store.
	StoreRows = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ph_store_rows_total",
		Help: "Raw observation rows returned by the observation store",
	}, []string{"backend"})

	// FetchDuration tracks one full range fetch including reduction.
	FetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ph_fetch_duration_seconds",
		Help:    "Range fetch duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~10s
	}, []string{"backend", "outcome"})

	// FetchDownsampled counts fetches whose result was bucketed.
	FetchDownsampled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ph_fetch_downsampled_total",
		Help: "Range fetches reduced to time buckets",
	}, []string{"backend"})

	// HTTPRequestDuration tracks handler latency by route pattern.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ph_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~8s
	}, []string{"method", "route", "status"})
)

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
