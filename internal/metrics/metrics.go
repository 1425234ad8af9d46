// Package metrics holds the Prometheus collectors exposed on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bakery_http_requests_total",
			Help: "HTTP requests by route and status code",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bakery_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// Import pipeline
	ImportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bakery_imports_total",
			Help: "Bulk product imports by outcome",
		},
		[]string{"format", "outcome"}, // committed, dry_run, parse_failure, no_valid_rows, commit_failure
	)

	ImportRowsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bakery_import_rows_total",
			Help: "Imported rows by result",
		},
		[]string{"result"}, // accepted, rejected
	)

	ImportDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bakery_import_duration_seconds",
			Help:    "Time from upload to commit of a bulk import",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	// Fan-out and outbox
	NotificationsFannedOut = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bakery_notifications_fanned_out_total",
			Help: "Notification rows written by product import fan-out",
		},
	)

	OutboxDeliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bakery_outbox_deliveries_total",
			Help: "Outbox delivery attempts by kind and result",
		},
		[]string{"kind", "result"}, // done, retry, failed
	)

	// Orders
	OrdersCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bakery_orders_created_total",
			Help: "Submitted orders by payment method and delivery method",
		},
		[]string{"payment", "delivery"},
	)

	OrderStatusChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bakery_order_status_changes_total",
			Help: "Order status transitions by target status",
		},
		[]string{"status"},
	)

	// Events
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bakery_events_published_total",
			Help: "Domain events sent to Kafka by topic and result",
		},
		[]string{"topic", "result"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "bakery_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	// Cache
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bakery_cache_lookups_total",
			Help: "Cache lookups by cache name and result",
		},
		[]string{"cache", "result"}, // hit, miss, error
	)

	// Realtime
	SSEClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bakery_sse_clients",
			Help: "Connected admin SSE clients",
		},
	)
)

// ObserveHTTP records one finished HTTP request.
func ObserveHTTP(method, route, status string, d time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
