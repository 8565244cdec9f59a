package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "minigplus_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// AuthzDenialsTotal counts rejected authorization decisions by operation.
	AuthzDenialsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "minigplus_authz_denials_total",
		Help: "Total number of denied authorization decisions",
	}, []string{"operation"})

	// FeedConnectionsTotal is the gauge of active feed WebSocket connections.
	FeedConnectionsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "minigplus_feed_connections_total",
		Help: "Total number of active feed WebSocket connections",
	})

	// FeedEventsTotal counts feed events published by type.
	FeedEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "minigplus_feed_events_total",
		Help: "Total feed events published by type",
	}, []string{"event_type"})

	// FeedBackpressureDrops counts feed messages dropped on slow clients.
	FeedBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "minigplus_feed_backpressure_drops_total",
		Help: "Total feed messages dropped due to client backpressure",
	}, []string{"reason"})
)
