package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	dispatchProcessedCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dispatch",
			Name:      "messages_processed_total",
			Help:      "Total number of dispatched messages reaching a terminal outcome.",
		},
		[]string{"channel", "status"},
	)

	dispatchDurationHist = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "dispatch",
			Name:      "processing_duration_seconds",
			Help:      "Duration of one dispatch signal's processing.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"channel"},
	)

	sendAttemptsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dispatch",
			Name:      "send_attempts_total",
			Help:      "Total number of remote send attempts, including retries.",
		},
		[]string{"channel", "result"}, // result: "success", "failure"
	)

	recoveryReplayedCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dispatch",
			Name:      "recovery_replayed_total",
			Help:      "Total number of pending messages re-dispatched by recovery.",
		},
		[]string{"channel"},
	)
)
