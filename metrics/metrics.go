// Package metrics holds the Prometheus collectors for the worker and gateway.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "order_taking"

// PipelineMetrics are recorded by the place-order activities.
type PipelineMetrics struct {
	EventsPublished *prometheus.CounterVec
	Acknowledgments *prometheus.CounterVec
	CatalogLookups  *prometheus.CounterVec
	AddressChecks   *prometheus.CounterVec
	Invoices        *prometheus.CounterVec
}

// NewPipelineMetrics creates the collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewPipelineMetrics(reg prometheus.Registerer) *PipelineMetrics {
	m := &PipelineMetrics{
		EventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Place-order events published, by event type.",
		}, []string{"type"}),
		Acknowledgments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "acknowledgments_total",
			Help:      "Acknowledgment letters by send result.",
		}, []string{"result"}),
		CatalogLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_lookups_total",
			Help:      "Product catalog lookups by operation and outcome.",
		}, []string{"op", "outcome"}),
		AddressChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "address_checks_total",
			Help:      "Address verification calls by outcome.",
		}, []string{"outcome"}),
		Invoices: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invoices_total",
			Help:      "Invoices by status.",
		}, []string{"status"}),
	}
	if reg != nil {
		reg.MustRegister(m.EventsPublished, m.Acknowledgments, m.CatalogLookups, m.AddressChecks, m.Invoices)
	}
	return m
}

// ServerMetrics are recorded by the HTTP gateway.
type ServerMetrics struct {
	Requests  *prometheus.CounterVec
	LatencyMS *prometheus.HistogramVec
}

func NewServerMetrics(reg prometheus.Registerer) *ServerMetrics {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "gateway",
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"handler", "status"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "gateway",
		Name:      "http_request_duration_ms",
		Help:      "HTTP request latency in milliseconds.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"handler"})

	if reg != nil {
		reg.MustRegister(requests, latency)
	}
	return &ServerMetrics{Requests: requests, LatencyMS: latency}
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
