// Package metrics holds the Prometheus collectors exposed on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the service collectors on a private registry so that tests
// can create independent instances.
type Metrics struct {
	registry *prometheus.Registry

	// HTTPRequests counts handled requests by method, route and status.
	HTTPRequests *prometheus.CounterVec

	// AssistantStreams counts started assistant chat streams.
	AssistantStreams prometheus.Counter

	// ToolInvocations counts contact lookup tool executions.
	ToolInvocations prometheus.Counter
}

// New creates the collectors and registers them.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "birthday_http_requests_total",
			Help: "Handled HTTP requests.",
		}, []string{"method", "route", "status"}),
		AssistantStreams: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "birthday_assistant_streams_total",
			Help: "Started assistant chat streams.",
		}),
		ToolInvocations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "birthday_assistant_tool_invocations_total",
			Help: "Contact lookup tool executions.",
		}),
	}
	m.registry.MustRegister(m.HTTPRequests, m.AssistantStreams, m.ToolInvocations)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
