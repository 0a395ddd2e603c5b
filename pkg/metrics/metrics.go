package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MQConsumeLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mq_consume_latency_ms",
			Help:    "MQ message consumption latency in milliseconds",
			Buckets: prometheus.ExponentialBuckets(10, 2, 10), // 10ms to ~10s
		},
		[]string{"routing_key", "queue"},
	)

	UpstreamCallLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "upstream_call_latency_ms",
			Help:    "Upstream read RPC latency in milliseconds",
			Buckets: prometheus.ExponentialBuckets(10, 2, 10),
		},
		[]string{"endpoint", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"operation", "table"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"method", "path", "status"},
	)

	NotificationsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_created_total",
			Help: "Total number of notification rows created",
		},
		[]string{"event"}, // event: post.created, comment.created, user.followed, ...
	)

	PushMessagesSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "push_messages_sent_total",
			Help: "Total number of push messages dispatched",
		},
		[]string{"status"}, // status: success, failed
	)

	RealtimeSignalsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "realtime_signals_published_total",
			Help: "Total number of realtime signals published",
		},
		[]string{"channel", "status"}, // channel: notifications, posts
	)
)

func RecordMQConsumeLatency(routingKey, queue string, duration time.Duration) {
	MQConsumeLatency.WithLabelValues(routingKey, queue).Observe(float64(duration.Milliseconds()))
}

func RecordUpstreamCallLatency(endpoint, status string, duration time.Duration) {
	UpstreamCallLatency.WithLabelValues(endpoint, status).Observe(float64(duration.Milliseconds()))
}

func RecordDBQueryDuration(operation, table string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
}

func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

func AddNotificationsCreated(event string, n int) {
	NotificationsCreated.WithLabelValues(event).Add(float64(n))
}

func AddPushMessagesSent(status string, n int) {
	PushMessagesSent.WithLabelValues(status).Add(float64(n))
}

func IncrementRealtimeSignal(channel, status string) {
	RealtimeSignalsPublished.WithLabelValues(channel, status).Inc()
}
