package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"service", "method", "path", "status"},
	)

	HttpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "method", "path", "status"},
	)

	HttpRequestsInFlight = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Current number of HTTP requests being processed",
		},
		[]string{"service"},
	)

	// Business metrics
	RidesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rides_total",
			Help: "Total number of ride requests by resulting status",
		},
		[]string{"service", "status"},
	)

	AcceptAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ride_accept_attempts_total",
			Help: "Accept attempts by outcome (accepted, conflict, error)",
		},
		[]string{"outcome"},
	)

	StatusTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ride_status_transitions_total",
			Help: "Status transitions issued by drivers",
		},
		[]string{"to", "outcome"},
	)

	LocationReportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "driver_location_reports_total",
			Help: "Driver location writes by outcome",
		},
		[]string{"outcome"},
	)

	PushEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "push_events_total",
			Help: "Push messages by type and direction (sent, received)",
		},
		[]string{"type", "direction"},
	)

	OpenRequestsGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "driver_open_requests",
			Help: "Open ride requests currently visible to the driver session",
		},
	)

	WebSocketConnectionsGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "websocket_connections_total",
			Help: "Current number of active WebSocket connections",
		},
		[]string{"service"},
	)

	DatabaseQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "database_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"service", "operation", "status"},
	)

	DatabaseQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "database_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "operation"},
	)

	RabbitMQMessagesPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rabbitmq_messages_published_total",
			Help: "Total number of messages published to RabbitMQ",
		},
		[]string{"service", "queue", "status"},
	)

	RabbitMQMessagesConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rabbitmq_messages_consumed_total",
			Help: "Total number of messages consumed from RabbitMQ",
		},
		[]string{"service", "queue", "status"},
	)
)

// RecordHTTPMetrics records HTTP request metrics
func RecordHTTPMetrics(service, method, path string, statusCode int, duration time.Duration) {
	status := strconv.Itoa(statusCode)
	HttpRequestsTotal.WithLabelValues(service, method, path, status).Inc()
	HttpRequestDuration.WithLabelValues(service, method, path, status).Observe(duration.Seconds())
}

// RecordDatabaseQuery records database query metrics
func RecordDatabaseQuery(service, operation string, err error, duration time.Duration) {
	status := "success"
	if err != nil {
		status = "error"
	}
	DatabaseQueriesTotal.WithLabelValues(service, operation, status).Inc()
	DatabaseQueryDuration.WithLabelValues(service, operation).Observe(duration.Seconds())
}

// RecordRabbitMQPublish records RabbitMQ publish metrics
func RecordRabbitMQPublish(service, queue string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	RabbitMQMessagesPublished.WithLabelValues(service, queue, status).Inc()
}

// RecordRabbitMQConsume records RabbitMQ consume metrics
func RecordRabbitMQConsume(service, queue string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	RabbitMQMessagesConsumed.WithLabelValues(service, queue, status).Inc()
}

// RecordAccept records the outcome of an accept attempt
func RecordAccept(outcome string) {
	AcceptAttemptsTotal.WithLabelValues(outcome).Inc()
}

// RecordStatusTransition records a driver-issued status change
func RecordStatusTransition(to string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	StatusTransitionsTotal.WithLabelValues(to, outcome).Inc()
}

// RecordLocationReport records one location write
func RecordLocationReport(err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	LocationReportsTotal.WithLabelValues(outcome).Inc()
}

// RecordPushEvent records a push message sent by the hub or received by an agent
func RecordPushEvent(msgType, direction string) {
	PushEventsTotal.WithLabelValues(msgType, direction).Inc()
}

// RecordRide counts a ride reaching status
func RecordRide(service, status string) {
	RidesTotal.WithLabelValues(service, status).Inc()
}
