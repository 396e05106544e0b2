package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	FetchAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_fetch_attempts_total",
			Help: "Order fetch attempts against the remote store",
		},
		[]string{"result"}, // ok|error|cancelled|cache_hit
	)
	FetchRetries = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "order_fetch_retries_total",
			Help: "Retried order fetch attempts",
		},
	)
	OrderUpdates = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_status_updates_total",
			Help: "Single and bulk order status updates",
		},
		[]string{"kind", "result"}, // kind: single|bulk; result: ok|error
	)
	EventsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "status_events_published_total",
			Help: "Status change events published to the bus",
		},
		[]string{"result"},
	)
)

var (
	CacheOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_operations_total",
			Help: "Cache operations",
		},
		[]string{"op"}, // hit|miss|expired|swept|invalidated
	)
	CacheSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "cache_size",
			Help: "Number of collections currently in cache",
		},
	)
	Notifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_total",
			Help: "Notifications pushed to the in-memory bus",
		},
		[]string{"severity"},
	)
)

func MustRegister() {
	prometheus.MustRegister(FetchAttempts, FetchRetries, OrderUpdates, EventsPublished, CacheOps, CacheSize, Notifications)
}
