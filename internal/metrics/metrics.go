package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's Prometheus collectors on a private registry
type Metrics struct {
	registry *prometheus.Registry

	reconcileTotal   *prometheus.CounterVec
	conflictRetries  prometheus.Counter
	fulfillmentTotal *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
}

// New registers the collectors
func New() *Metrics {
	registry := prometheus.NewRegistry()
	m := &Metrics{
		registry: registry,
		reconcileTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "menahub",
			Name:      "order_reconcile_total",
			Help:      "Order edit reconciliations by result.",
		}, []string{"result"}),
		conflictRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "menahub",
			Name:      "order_version_conflict_retries_total",
			Help:      "Saves retried after an optimistic concurrency conflict.",
		}),
		fulfillmentTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "menahub",
			Name:      "fulfillment_requests_total",
			Help:      "Fulfillment submissions by result.",
		}, []string{"result"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "menahub",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
	registry.MustRegister(
		m.reconcileTotal,
		m.conflictRetries,
		m.fulfillmentTotal,
		m.httpDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the registry for tests
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) ReconcileResult(result string) {
	if m == nil {
		return
	}
	m.reconcileTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) ConflictRetry() {
	if m == nil {
		return
	}
	m.conflictRetries.Inc()
}

func (m *Metrics) FulfillmentResult(result string) {
	if m == nil {
		return
	}
	m.fulfillmentTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveHTTP(method, route, status string, seconds float64) {
	if m == nil {
		return
	}
	m.httpDuration.WithLabelValues(method, route, status).Observe(seconds)
}
