package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "readrover_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation,
	// fed from the GORM trace hook.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "readrover_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	// VisibilityGrants counts visibility set additions by trigger.
	VisibilityGrants = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "readrover_visibility_grants_total",
		Help: "Total number of activity visibility grant passes by trigger",
	}, []string{"trigger"})

	// NotificationsPublished counts notifications published by kind.
	NotificationsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "readrover_notifications_published_total",
		Help: "Total number of notifications published by kind",
	}, []string{"kind"})

	// FeedRequests counts friend feed fetches.
	FeedRequests = promauto.NewCounter(prometheus.CounterOpts{
		Name: "readrover_feed_requests_total",
		Help: "Total number of friend feed fetches",
	})
)
