// Package metrics exposes a small set of Prometheus gauges and counters
// describing the Coordinator service's operational state. This is an
// optional, additive observability surface. It carries no coordination
// semantics and is never required by a client.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	TasksByStatus = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "claudia_tasks_by_status",
			Help: "Number of tasks currently in each status",
		},
		[]string{"status"},
	)

	ActiveSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "claudia_active_sessions",
			Help: "Number of currently registered sessions",
		},
	)

	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "claudia_coordinator_requests_total",
			Help: "Total HTTP requests handled by the coordinator, by path and status code",
		},
		[]string{"path", "code"},
	)

	CleanupCyclesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "claudia_cleanup_cycles_total",
			Help: "Total session-cleanup cycles run",
		},
	)

	SessionsReclaimedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "claudia_sessions_reclaimed_total",
			Help: "Total sessions ended by cleanup due to a stale heartbeat",
		},
	)

	FlushCyclesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "claudia_flush_cycles_total",
			Help: "Total dirty-state flush/broadcast cycles run",
		},
	)
)

func init() {
	prometheus.MustRegister(
		TasksByStatus,
		ActiveSessions,
		RequestsTotal,
		CleanupCyclesTotal,
		SessionsReclaimedTotal,
		FlushCyclesTotal,
	)
}

// Handler returns the Prometheus scrape handler for GET /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}
