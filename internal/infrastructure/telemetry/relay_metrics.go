package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metric names
const (
	MetricHTTPRequestsTotal       = "shiprelay_http_requests_total"
	MetricHTTPRequestDuration     = "shiprelay_http_request_duration_seconds"
	MetricRateInquiriesTotal      = "shiprelay_rate_inquiries_total"
	MetricCheckoutSessionsTotal   = "shiprelay_checkout_sessions_total"
	MetricWebhookEventsTotal      = "shiprelay_webhook_events_total"
	MetricLabelPurchasesTotal     = "shiprelay_label_purchases_total"
	MetricLabelPurchaseDuration   = "shiprelay_label_purchase_duration_seconds"
	MetricSideEffectFailuresTotal = "shiprelay_side_effect_failures_total"
)

// RelayMetrics owns a private Prometheus registry with the relay's collectors.
// Safe for concurrent use.
type RelayMetrics struct {
	registry *prometheus.Registry

	httpRequests          *prometheus.CounterVec
	httpDuration          *prometheus.HistogramVec
	rateInquiries         *prometheus.CounterVec
	checkoutSessions      *prometheus.CounterVec
	webhookEvents         *prometheus.CounterVec
	labelPurchases        *prometheus.CounterVec
	labelPurchaseDuration prometheus.Histogram
	sideEffectFailures    *prometheus.CounterVec
}

// NewRelayMetrics creates and registers all collectors, plus Go runtime and
// process collectors.
func NewRelayMetrics() *RelayMetrics {
	registry := prometheus.NewRegistry()

	m := &RelayMetrics{
		registry: registry,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricHTTPRequestsTotal,
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    MetricHTTPRequestDuration,
			Help:    "HTTP request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		rateInquiries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricRateInquiriesTotal,
			Help: "Rate inquiries by outcome.",
		}, []string{"outcome"}),
		checkoutSessions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricCheckoutSessionsTotal,
			Help: "Checkout session creations by outcome.",
		}, []string{"outcome"}),
		webhookEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricWebhookEventsTotal,
			Help: "Verified webhook events by type and handling outcome.",
		}, []string{"type", "outcome"}),
		labelPurchases: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricLabelPurchasesTotal,
			Help: "Label purchase attempts by outcome.",
		}, []string{"outcome"}),
		labelPurchaseDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    MetricLabelPurchaseDuration,
			Help:    "Latency of label purchase calls.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		sideEffectFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricSideEffectFailuresTotal,
			Help: "Failures of best-effort steps after a purchase (archive, publish, idempotency).",
		}, []string{"step"}),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpDuration,
		m.rateInquiries,
		m.checkoutSessions,
		m.webhookEvents,
		m.labelPurchases,
		m.labelPurchaseDuration,
		m.sideEffectFailures,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format
func (m *RelayMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry (tests, extra collectors)
func (m *RelayMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveHTTPRequest records one served request
func (m *RelayMetrics) ObserveHTTPRequest(method, route, status string, d time.Duration) {
	m.httpRequests.WithLabelValues(method, route, status).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// RateInquiry records the outcome of a rate lookup
func (m *RelayMetrics) RateInquiry(outcome string) {
	m.rateInquiries.WithLabelValues(outcome).Inc()
}

// CheckoutSession records the outcome of a checkout initiation
func (m *RelayMetrics) CheckoutSession(outcome string) {
	m.checkoutSessions.WithLabelValues(outcome).Inc()
}

// WebhookEvent records how a verified event was handled
func (m *RelayMetrics) WebhookEvent(eventType, outcome string) {
	m.webhookEvents.WithLabelValues(eventType, outcome).Inc()
}

// LabelPurchase records a purchase attempt and its latency
func (m *RelayMetrics) LabelPurchase(outcome string, d time.Duration) {
	m.labelPurchases.WithLabelValues(outcome).Inc()
	m.labelPurchaseDuration.Observe(d.Seconds())
}

// SideEffectFailure records a failed best-effort step
func (m *RelayMetrics) SideEffectFailure(step string) {
	m.sideEffectFailures.WithLabelValues(step).Inc()
}
