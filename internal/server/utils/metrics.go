package utils

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so several servers can live in one process.
type Metrics struct {
	registry       *prometheus.Registry
	requestsTotal  *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
	activeRequests prometheus.Gauge
	providerCalls  *prometheus.CounterVec
	providerErrors *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		requestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		activeRequests: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "http_active_requests",
			Help: "Number of active HTTP requests",
		}),
		providerCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "weather_provider_calls_total",
			Help: "Total weather provider calls",
		}, []string{"endpoint"}),
		providerErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "weather_provider_errors_total",
			Help: "Total failed weather provider calls",
		}, []string{"endpoint"}),
	}

	m.registry.MustRegister(
		m.requestsTotal,
		m.requestLatency,
		m.activeRequests,
		m.providerCalls,
		m.providerErrors,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Begin() {
	m.activeRequests.Inc()
}

// End records a finished request. route is the matched pattern, not the raw path.
func (m *Metrics) End(method, route, status string, duration time.Duration) {
	m.activeRequests.Dec()
	m.requestsTotal.WithLabelValues(method, route, status).Inc()
	m.requestLatency.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordProviderCall counts one weather provider request. The bot shares this
// recorder through the aggregator, so /metrics covers both surfaces.
func (m *Metrics) RecordProviderCall(_ context.Context, endpoint string, success bool) {
	m.providerCalls.WithLabelValues(endpoint).Inc()
	if !success {
		m.providerErrors.WithLabelValues(endpoint).Inc()
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
