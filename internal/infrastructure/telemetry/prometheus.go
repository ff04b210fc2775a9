package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"
	"github.com/shopspring/decimal"
)

const metricsNamespace = "shopdesk"

// Metrics holds the Prometheus collectors served at /metrics.
// Safe for concurrent use.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	httpInFlight prometheus.Gauge

	salesTotal         *prometheus.CounterVec
	salesRevenue       *prometheus.CounterVec
	salesVoided        prometheus.Counter
	requestTransitions *prometheus.CounterVec
	emailsTotal        *prometheus.CounterVec
	messagesSent       prometheus.Counter
	stockAdjustments   *prometheus.CounterVec
	mpesaCallbacks     *prometheus.CounterVec
	sideEffectFailures *prometheus.CounterVec
}

// NewMetrics creates and registers every collector on a private registry,
// together with the Go runtime and process collectors.
func NewMetrics() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of HTTP requests handled.",
	}, []string{"method", "route", "status"})

	m.httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Duration of HTTP requests in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	m.httpInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Subsystem: "http",
		Name:      "requests_in_flight",
		Help:      "Number of HTTP requests currently being served.",
	})

	m.salesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: "sales",
		Name:      "completed_total",
		Help:      "Completed sales by payment method and channel.",
	}, []string{"method", "channel"})

	m.salesRevenue = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: "sales",
		Name:      "revenue_total",
		Help:      "Revenue of completed sales in the store currency.",
	}, []string{"method"})

	m.salesVoided = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: "sales",
		Name:      "voided_total",
		Help:      "Voided sales.",
	})

	m.requestTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: "purchase_requests",
		Name:      "transitions_total",
		Help:      "Purchase request status transitions by target status.",
	}, []string{"status"})

	m.emailsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: "email",
		Name:      "sent_total",
		Help:      "Emails attempted by template and result.",
	}, []string{"template", "result"})

	m.messagesSent = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: "messaging",
		Name:      "sent_total",
		Help:      "Internal messages sent.",
	})

	m.stockAdjustments = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: "inventory",
		Name:      "movements_total",
		Help:      "Stock movements by reason.",
	}, []string{"reason"})

	m.mpesaCallbacks = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: "mpesa",
		Name:      "callbacks_total",
		Help:      "Mobile-money callbacks by resulting status.",
	}, []string{"status"})

	m.sideEffectFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "side_effect_failures_total",
		Help:      "Best-effort side effects (email, pdf, archive) that failed.",
	}, []string{"kind"})

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpDuration,
		m.httpInFlight,
		m.salesTotal,
		m.salesRevenue,
		m.salesVoided,
		m.requestTransitions,
		m.emailsTotal,
		m.messagesSent,
		m.stockAdjustments,
		m.mpesaCallbacks,
		m.sideEffectFailures,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// Gather collects the current metric families
func (m *Metrics) Gather() ([]*dto.MetricFamily, error) {
	return m.registry.Gather()
}

// RequestStarted increments the in-flight gauge and returns a func that records the request
func (m *Metrics) RequestStarted() func(method, route string, status int) {
	start := time.Now()
	m.httpInFlight.Inc()
	return func(method, route string, status int) {
		m.httpInFlight.Dec()
		if route == "" {
			route = "unmatched"
		}
		m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
		m.httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

// SaleCompleted counts a sale; channel is "pos" or "purchase_request"
func (m *Metrics) SaleCompleted(method, channel string, total decimal.Decimal) {
	m.salesTotal.WithLabelValues(method, channel).Inc()
	m.salesRevenue.WithLabelValues(method).Add(total.InexactFloat64())
}

// SaleVoided counts a voided sale
func (m *Metrics) SaleVoided() {
	m.salesVoided.Inc()
}

// PurchaseRequestTransition counts a status change
func (m *Metrics) PurchaseRequestTransition(status string) {
	m.requestTransitions.WithLabelValues(status).Inc()
}

// EmailSent counts an email attempt
func (m *Metrics) EmailSent(template string, err error) {
	result := "sent"
	if err != nil {
		result = "failed"
	}
	m.emailsTotal.WithLabelValues(template, result).Inc()
}

// MessageSent counts an internal message
func (m *Metrics) MessageSent() {
	m.messagesSent.Inc()
}

// StockMoved counts a stock movement
func (m *Metrics) StockMoved(reason string) {
	m.stockAdjustments.WithLabelValues(reason).Inc()
}

// MpesaCallback counts a recorded callback
func (m *Metrics) MpesaCallback(status string) {
	m.mpesaCallbacks.WithLabelValues(status).Inc()
}

// SideEffectFailed counts a swallowed side-effect failure
func (m *Metrics) SideEffectFailed(kind string) {
	m.sideEffectFailures.WithLabelValues(kind).Inc()
}
