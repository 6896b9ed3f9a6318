// Package metrics provides Prometheus metrics for the advisor and the session.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the process.
type Metrics struct {
	RequestsTotal     *prometheus.CounterVec
	RequestDuration   *prometheus.HistogramVec
	TransitionsTotal  *prometheus.CounterVec
	HTTPRequestsTotal *prometheus.CounterVec

	registry *prometheus.Registry
}

// New creates and registers all metrics.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "advisor_requests_total",
				Help: "Total number of model calls by operation and outcome.",
			},
			[]string{"operation", "outcome"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "advisor_request_duration_seconds",
				Help:    "Model call duration by operation.",
				Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60, 120},
			},
			[]string{"operation"},
		),
		TransitionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "session_transitions_total",
				Help: "Total number of applied session transitions.",
			},
			[]string{"transition"},
		),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "api_requests_total",
				Help: "Total number of HTTP API requests by route and status code.",
			},
			[]string{"route", "status"},
		),
		registry: reg,
	}

	reg.MustRegister(m.RequestsTotal)
	reg.MustRegister(m.RequestDuration)
	reg.MustRegister(m.TransitionsTotal)
	reg.MustRegister(m.HTTPRequestsTotal)

	return m
}

// Handler returns an http.Handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveModelCall records one model call.
func (m *Metrics) ObserveModelCall(operation, outcome string, elapsed time.Duration) {
	m.RequestsTotal.WithLabelValues(operation, outcome).Inc()
	m.RequestDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// ObserveTransition increments the transition counter.
func (m *Metrics) ObserveTransition(name string) {
	m.TransitionsTotal.WithLabelValues(name).Inc()
}

// RecordHTTPRequest increments the API request counter.
func (m *Metrics) RecordHTTPRequest(route, status string) {
	m.HTTPRequestsTotal.WithLabelValues(route, status).Inc()
}
