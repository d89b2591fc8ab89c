package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "recurring"

// Outcomes recorded on the webhook counter
const (
	OutcomeApplied  = "applied"
	OutcomeNoop     = "noop"
	OutcomeIgnored  = "ignored"
	OutcomeReplayed = "replayed"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
	OutcomeSuccess  = "success"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Billing metrics
	CheckoutsTotal       *prometheus.CounterVec
	ProviderRetriesTotal *prometheus.CounterVec
	WebhooksTotal        *prometheus.CounterVec
	ManualResolutions    *prometheus.CounterVec
	SweepItemsTotal      *prometheus.CounterVec
	SeatActivationsTotal *prometheus.CounterVec
	NotificationsDropped *prometheus.CounterVec
	SubscriptionsExpired *prometheus.CounterVec
	ReconcileDuration    *prometheus.HistogramVec
}

// NewMetrics creates and registers all Prometheus metrics on a fresh registry
func NewMetrics() *Metrics {
	return NewMetricsWithRegistry(prometheus.NewRegistry())
}

func NewMetricsWithRegistry(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		registry: registry,

		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		CheckoutsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "checkouts_total",
				Help:      "Checkout attempts by provider, mode and outcome",
			},
			[]string{"provider", "mode", "outcome"},
		),
		ProviderRetriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "provider_retries_total",
				Help:      "Provider calls retried by checkout",
			},
			[]string{"provider"},
		),
		WebhooksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "webhooks_total",
				Help:      "Provider webhooks by normalized event type and reconciliation outcome",
			},
			[]string{"provider", "event_type", "outcome"},
		),
		ManualResolutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "manual_resolutions_total",
				Help:      "Manual payment approvals and failures",
			},
			[]string{"action", "outcome"},
		),
		SweepItemsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "lifecycle_sweep_items_total",
				Help:      "Items processed by lifecycle jobs",
			},
			[]string{"job", "outcome"},
		),
		SeatActivationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "seat_activations_total",
				Help:      "Organization seat upserts",
			},
			[]string{"outcome"},
		),
		NotificationsDropped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "notifications_dropped_total",
				Help:      "Notifications that could not be dispatched",
			},
			[]string{"kind"},
		),
		SubscriptionsExpired: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "subscriptions_expired_total",
				Help:      "Subscriptions moved to EXPIRED by reason",
			},
			[]string{"reason"},
		),
		ReconcileDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "reconcile_duration_seconds",
				Help:      "Time spent reconciling one provider event",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"provider"},
		),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.CheckoutsTotal,
		m.ProviderRetriesTotal,
		m.WebhooksTotal,
		m.ManualResolutions,
		m.SweepItemsTotal,
		m.SeatActivationsTotal,
		m.NotificationsDropped,
		m.SubscriptionsExpired,
		m.ReconcileDuration,
	)

	return m
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// GinMiddleware records request counts and latency keyed by the matched route
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}
