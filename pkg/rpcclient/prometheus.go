package rpcclient

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics used in monitoring service.
var (
	rpcCallsCompleted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Help:      "Number of successfully completed RPC calls",
			Name:      "calls_completed",
			Namespace: "evrmorerpc",
		},
	)

	rpcCallsFailed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Help:      "Number of failed RPC calls",
			Name:      "calls_failed",
			Namespace: "evrmorerpc",
		},
	)

	rpcCallDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Help:      "RPC call round trip time",
			Name:      "call_duration_seconds",
			Namespace: "evrmorerpc",
		},
	)
)

func updateCallMetrics(d time.Duration, failed bool) {
	if failed {
		rpcCallsFailed.Inc()
	} else {
		rpcCallsCompleted.Inc()
	}
	rpcCallDuration.Observe(d.Seconds())
}

func init() {
	prometheus.MustRegister(
		rpcCallsCompleted,
		rpcCallsFailed,
		rpcCallDuration,
	)
}
