package zmq

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics used in monitoring service.
var (
	notificationsReceived = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Help:      "Number of ZMQ notifications received",
			Name:      "notifications_received",
			Namespace: "evrmorerpc",
		},
		[]string{"topic"},
	)

	decodeFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Help:      "Number of malformed ZMQ messages dropped",
			Name:      "notifications_malformed",
			Namespace: "evrmorerpc",
		},
	)

	handlerFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Help:      "Number of notification handler failures",
			Name:      "notification_handler_failures",
			Namespace: "evrmorerpc",
		},
	)

	sequenceGaps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Help:      "Number of observed gaps in notification sequence numbers",
			Name:      "notification_sequence_gaps",
			Namespace: "evrmorerpc",
		},
		[]string{"topic"},
	)
)

func init() {
	prometheus.MustRegister(
		notificationsReceived,
		decodeFailures,
		handlerFailures,
		sequenceGaps,
	)
}
