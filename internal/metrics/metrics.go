// Package metrics exposes Prometheus metrics for merchant requests and tool calls.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ucp-agent/internal/model"
)

// Metrics owns a private registry. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	merchantRequests *prometheus.CounterVec
	merchantDuration *prometheus.HistogramVec
	merchantInFlight prometheus.Gauge
	toolCalls        *prometheus.CounterVec
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		merchantRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ucp_agent",
			Name:      "merchant_requests_total",
			Help:      "Requests sent to the merchant, by status code and method.",
		}, []string{"code", "method"}),
		merchantDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "ucp_agent",
			Name:      "merchant_request_duration_seconds",
			Help:      "Latency of merchant requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		merchantInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "ucp_agent",
			Name:      "merchant_requests_in_flight",
			Help:      "Merchant requests currently in flight.",
		}),
		toolCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ucp_agent",
			Name:      "tool_calls_total",
			Help:      "Agent tool invocations, by tool and outcome.",
		}, []string{"tool", "outcome"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.merchantRequests,
		m.merchantDuration,
		m.merchantInFlight,
		m.toolCalls,
	)
	return m
}

// InstrumentRoundTripper wraps next with request count, latency and in-flight metrics.
func (m *Metrics) InstrumentRoundTripper(next http.RoundTripper) http.RoundTripper {
	if m == nil {
		return next
	}
	return promhttp.InstrumentRoundTripperInFlight(m.merchantInFlight,
		promhttp.InstrumentRoundTripperCounter(m.merchantRequests,
			promhttp.InstrumentRoundTripperDuration(m.merchantDuration, next),
		),
	)
}

// ObserveTool counts a tool call. The outcome is "ok" or the error kind.
func (m *Metrics) ObserveTool(tool string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = model.KindOf(err).String()
	}
	m.toolCalls.WithLabelValues(tool, outcome).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry, for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
