// Package metrics holds the Prometheus instruments for the dispatch path.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tinywideclouds/go-push-service/pkg/dispatch"
)

const outcomeSuccess = "success"

// Metrics groups all Prometheus instruments used across the application.
type Metrics struct {
	Dispatches      *prometheus.CounterVec
	DispatchLatency *prometheus.HistogramVec
	ReceiptFailures prometheus.Counter

	gatherer prometheus.Gatherer
}

// New registers all instruments with reg. A custom registry keeps tests isolated.
func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		Dispatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "push_dispatches_total",
			Help: "Dispatch attempts by outcome (success, invalid-argument, internal).",
		}, []string{"outcome"}),

		DispatchLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "push_dispatch_seconds",
			Help:    "Latency from request validation to provider response.",
			Buckets: prometheus.DefBuckets,
		}, []string{"outcome"}),

		ReceiptFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "push_receipt_write_failures_total",
			Help: "Receipts that could not be persisted.",
		}),

		gatherer: reg,
	}

	reg.MustRegister(m.Dispatches, m.DispatchLatency, m.ReceiptFailures)
	return m
}

// ObserveDispatch implements dispatch.Observer.
func (m *Metrics) ObserveDispatch(err error, latency time.Duration) {
	outcome := outcomeSuccess
	if err != nil {
		outcome = string(dispatch.KindOf(err))
	}
	m.Dispatches.WithLabelValues(outcome).Inc()
	m.DispatchLatency.WithLabelValues(outcome).Observe(latency.Seconds())
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
