// Package metrics provides Prometheus instrumentation for the chat server:
// gauges for connection and store sizes, counters for message throughput and
// moderation actions.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ConnectionsTotal tracks the current number of open TCP connections.
	ConnectionsTotal = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "parley_connections_total",
		Help: "Current number of open client connections",
	})

	// MessagesTotal counts processed /send requests, labeled by outcome:
	// "accepted" or "rejected".
	MessagesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "parley_messages_total",
		Help: "Total number of send requests processed",
	}, []string{"outcome"})

	// MessagesStored tracks the current size of the message log.
	MessagesStored = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "parley_messages_stored",
		Help: "Current number of messages in the log",
	})

	// MessagesExpired counts messages evicted after their time-to-live.
	MessagesExpired = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "parley_messages_expired_total",
		Help: "Total number of messages expired by the TTL sweep",
	})

	// ThrottlesTotal counts users throttled for exhausting their quota.
	ThrottlesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "parley_throttles_total",
		Help: "Total number of chat throttles applied",
	})

	// BansTotal counts users banned for accumulated reports.
	BansTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "parley_bans_total",
		Help: "Total number of bans applied",
	})
)

func init() {
	prometheus.MustRegister(
		ConnectionsTotal,
		MessagesTotal,
		MessagesStored,
		MessagesExpired,
		ThrottlesTotal,
		BansTotal,
	)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
