// Package observability owns the prometheus collectors exported on /metrics.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "bestcars"

// Metrics groups every collector on a private registry. All methods are safe on
// a nil receiver so tests and optional wiring can skip metrics entirely.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests    *prometheus.CounterVec
	httpLatency     *prometheus.HistogramVec
	backendRequests *prometheus.CounterVec
	backendLatency  *prometheus.HistogramVec
	viewTransitions *prometheus.CounterVec
	staleResults    *prometheus.CounterVec
	trackedVisitors prometheus.Gauge
	trackedRegions  prometheus.Gauge
}

// NewMetrics creates the collectors and registers them, together with the Go
// runtime and process collectors, on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "http_requests_total", Help: "HTTP requests served."},
			[]string{"route", "method", "status"},
		),
		httpLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace, Name: "http_request_duration_seconds",
				Help:    "HTTP request duration seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		),
		backendRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "backend_requests_total", Help: "Requests sent to the dealership backend."},
			[]string{"endpoint", "outcome"},
		),
		backendLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace, Name: "backend_request_duration_seconds",
				Help:    "Dealership backend request duration seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		),
		viewTransitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "view_state_transitions_total", Help: "View state transitions by resulting status."},
			[]string{"view", "status"},
		),
		staleResults: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "view_state_stale_results_total", Help: "Fetch results discarded because a newer fetch superseded them."},
			[]string{"view"},
		),
		trackedVisitors: prometheus.NewGauge(
			prometheus.GaugeOpts{Namespace: namespace, Name: "view_state_visitors", Help: "Visitors with view state held in memory after the last sweep."},
		),
		trackedRegions: prometheus.NewGauge(
			prometheus.GaugeOpts{Namespace: namespace, Name: "view_state_regions", Help: "Page regions held in memory after the last sweep."},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests, m.httpLatency,
		m.backendRequests, m.backendLatency,
		m.viewTransitions, m.staleResults,
		m.trackedVisitors, m.trackedRegions,
	)

	return m
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveHTTP records one served request.
func (m *Metrics) ObserveHTTP(route, method string, status int, dur time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpLatency.WithLabelValues(route, method).Observe(dur.Seconds())
}

// ObserveBackend records one outbound backend call. outcome is "ok" or a failure class.
func (m *Metrics) ObserveBackend(endpoint, outcome string, dur time.Duration) {
	if m == nil {
		return
	}
	m.backendRequests.WithLabelValues(endpoint, outcome).Inc()
	m.backendLatency.WithLabelValues(endpoint).Observe(dur.Seconds())
}

// ObserveTransition records a view entering a status.
func (m *Metrics) ObserveTransition(view, status string) {
	if m == nil {
		return
	}
	m.viewTransitions.WithLabelValues(view, status).Inc()
}

// ObserveStale records a fetch result dropped by the epoch check.
func (m *Metrics) ObserveStale(view string) {
	if m == nil {
		return
	}
	m.staleResults.WithLabelValues(view).Inc()
}

// ObserveTracked records how much view state survived a sweep.
func (m *Metrics) ObserveTracked(visitors, regions int) {
	if m == nil {
		return
	}
	m.trackedVisitors.Set(float64(visitors))
	m.trackedRegions.Set(float64(regions))
}
