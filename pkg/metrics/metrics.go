// Package metrics defines the Prometheus collectors exported by the gateway on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry holds every gateway collector plus the standard process and Go runtime collectors.
var Registry = prometheus.NewRegistry()

var (
	// SessionsOpened counts sessions successfully acquired from the remote service.
	SessionsOpened = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "vehicle_gateway_sessions_opened_total",
			Help: "Number of remote sessions acquired.",
		},
	)

	// SessionsClosed counts sessions released, whether or not the release succeeded remotely.
	SessionsClosed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "vehicle_gateway_sessions_closed_total",
			Help: "Number of remote sessions released.",
		},
	)

	// CommandsTotal counts dispatched commands by outcome.
	CommandsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vehicle_gateway_commands_total",
			Help: "Number of dispatched commands.",
		},
		[]string{"command", "status"}, // status: success/failed
	)

	// CommandLatency measures dispatch time, including session acquisition and release.
	CommandLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vehicle_gateway_command_latency_seconds",
			Help:    "Latency of dispatched commands.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"command"},
	)
)

func init() {
	Registry.MustRegister(SessionsOpened)
	Registry.MustRegister(SessionsClosed)
	Registry.MustRegister(CommandsTotal)
	Registry.MustRegister(CommandLatency)
	Registry.MustRegister(collectors.NewGoCollector())
	Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
}

// ObserveCommand records the outcome and latency of a command that started at start.
func ObserveCommand(command string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "failed"
	}
	CommandsTotal.WithLabelValues(command, status).Inc()
	CommandLatency.WithLabelValues(command).Observe(time.Since(start).Seconds())
}
