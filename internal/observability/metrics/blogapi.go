package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// BlogAPIMetrics tracks calls made to the blog backend.
type BlogAPIMetrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewBlogAPIMetrics creates and registers the blog API collectors.
func NewBlogAPIMetrics(registry *prometheus.Registry) (*BlogAPIMetrics, error) {
	m := &BlogAPIMetrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "blogapi_requests_total",
				Help: "Total number of blog API requests by outcome",
			},
			[]string{"endpoint", "outcome"}, // outcome: success, network, http, parse, not_found
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "blogapi_request_duration_seconds",
				Help:    "Time taken for blog API requests",
				Buckets: prometheus.ExponentialBuckets(BucketStart10ms, BucketFactor2, BucketCount12), // 10ms to ~20s
			},
			[]string{"endpoint"},
		),
	}
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register blog API metrics: %w", err)
	}
	return m, nil
}

// RecordRequest records one API call.
func (m *BlogAPIMetrics) RecordRequest(endpoint, outcome string, duration time.Duration) {
	m.requestsTotal.WithLabelValues(endpoint, outcome).Inc()
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// Describe implements the Collector interface
func (m *BlogAPIMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.requestsTotal.Describe(ch)
	m.requestDuration.Describe(ch)
}

// Collect implements the Collector interface
func (m *BlogAPIMetrics) Collect(ch chan<- prometheus.Metric) {
	m.requestsTotal.Collect(ch)
	m.requestDuration.Collect(ch)
}
