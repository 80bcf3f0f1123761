// Package metrics exposes Prometheus collectors for the SEO reporter service.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDurationSeconds *prometheus.HistogramVec
	webhookCallsTotal          *prometheus.CounterVec
	webhookDurationSeconds     *prometheus.HistogramVec
	leadsTotal                 *prometheus.CounterVec
	auditsTotal                *prometheus.CounterVec
	emailsTotal                *prometheus.CounterVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 30, 120},
			},
			[]string{"method", "route"},
		)

		webhookCallsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "seoreporter_webhook_calls_total",
				Help: "Total number of outbound webhook calls, labeled by webhook and outcome.",
			},
			[]string{"webhook", "outcome"},
		)

		webhookDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "seoreporter_webhook_duration_seconds",
				Help:    "Histogram of outbound webhook latencies, labeled by webhook.",
				Buckets: []float64{0.25, 1, 5, 15, 30, 60, 120, 300},
			},
			[]string{"webhook"},
		)

		leadsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "seoreporter_leads_total",
				Help: "Total number of lead records processed, labeled by result (saved, failed).",
			},
			[]string{"result"},
		)

		auditsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "seoreporter_audits_total",
				Help: "Total number of generated audits, labeled by result (stored, skipped).",
			},
			[]string{"result"},
		)

		emailsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "seoreporter_lead_emails_total",
				Help: "Total number of outreach emails handed to the email webhook, labeled by outcome.",
			},
			[]string{"outcome"},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	Init()
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObserveWebhookCall records one outbound webhook call.
func ObserveWebhookCall(webhook, outcome string, duration time.Duration) {
	Init()
	webhookCallsTotal.WithLabelValues(webhook, outcome).Inc()
	webhookDurationSeconds.WithLabelValues(webhook).Observe(duration.Seconds())
}

// AddLeads adds saved and failed lead counts from one scrape.
func AddLeads(saved, failed int) {
	Init()
	if saved > 0 {
		leadsTotal.WithLabelValues("saved").Add(float64(saved))
	}
	if failed > 0 {
		leadsTotal.WithLabelValues("failed").Add(float64(failed))
	}
}

// ObserveAudit records whether a generated audit was stored or skipped.
func ObserveAudit(result string) {
	Init()
	auditsTotal.WithLabelValues(result).Inc()
}

// ObserveLeadEmail records the outcome of one outreach email.
func ObserveLeadEmail(outcome string) {
	Init()
	emailsTotal.WithLabelValues(outcome).Inc()
}
