// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MessagesRouted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_messages_routed_total",
			Help: "Total number of utterances routed, by matched branch",
		},
		[]string{"branch"},
	)

	RoutingFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_routing_failures_total",
			Help: "Total number of utterances that hit a collaborator failure",
		},
		[]string{"error_code"},
	)

	RoutingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "chat_routing_duration_seconds",
			Help: "Duration of utterance routing in seconds",
		},
		[]string{"branch"},
	)

	TransfersDetected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_transfers_detected_total",
			Help: "Total number of escalation requests detected",
		},
	)
)
