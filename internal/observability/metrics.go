package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Business metrics
	InvoicesGenerated *prometheus.CounterVec
	TenantsCreated    prometheus.Counter
	PaymentsMarked    prometheus.Counter
	TariffRefreshes   *prometheus.CounterVec
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(registry prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rental_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rental_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		InvoicesGenerated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rental_invoices_generated_total",
				Help: "Invoices rendered, by output format",
			},
			[]string{"format"},
		),
		TenantsCreated: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "rental_tenants_created_total",
				Help: "Tenants added",
			},
		),
		PaymentsMarked: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "rental_payments_marked_total",
				Help: "Mark-paid operations that matched a tenant",
			},
		),
		TariffRefreshes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rental_tariff_refreshes_total",
				Help: "Tariff feed refresh attempts, by result",
			},
			[]string{"result"},
		),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.InvoicesGenerated,
		m.TenantsCreated,
		m.PaymentsMarked,
		m.TariffRefreshes,
	)
	return m
}
