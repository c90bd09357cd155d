package client

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cacheFallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "unihub_client",
			Name:      "cache_fallbacks_total",
			Help:      "Reads that served the last known-good value after a fetch failure.",
		},
		[]string{"resource"},
	)

	unauthorizedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "unihub_client",
			Name:      "unauthorized_total",
			Help:      "Authenticated calls rejected by the backend (session cleared).",
		},
	)

	chatMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "unihub_client",
			Name:      "chat_messages_total",
			Help:      "Messages sent per chat surface.",
		},
		[]string{"surface"},
	)
)
