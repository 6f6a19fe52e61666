// Package metrics exposes Prometheus collectors for session and protocol
// activity, and the /metrics HTTP endpoint.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds every collector the server registers.
type Metrics struct {
	SessionsActive         prometheus.Gauge
	PacketsReceivedTotal   prometheus.Counter
	PacketsSentTotal       prometheus.Counter
	RetransmitsTotal       prometheus.Counter
	CommandsTotal          *prometheus.CounterVec
	SessionsFinishedTotal  *prometheus.CounterVec
}

// New constructs and registers every collector against reg.
func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		SessionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "switcher_sessions_active",
			Help: "Number of sessions currently established or mid-handshake.",
		}),
		PacketsReceivedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "switcher_packets_received_total",
			Help: "Total datagrams received.",
		}),
		PacketsSentTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "switcher_packets_sent_total",
			Help: "Total datagrams sent.",
		}),
		RetransmitsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "switcher_retransmits_total",
			Help: "Total COMMAND packet retransmissions.",
		}),
		CommandsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "switcher_commands_total",
			Help: "Total inbound commands processed, by code.",
		}, []string{"code"}),
		SessionsFinishedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "switcher_sessions_finished_total",
			Help: "Total sessions torn down, by reason.",
		}, []string{"reason"}),
	}
	m.register(reg)
	return m
}

func (m *Metrics) register(reg *prometheus.Registry) {
	reg.MustRegister(
		m.SessionsActive,
		m.PacketsReceivedTotal,
		m.PacketsSentTotal,
		m.RetransmitsTotal,
		m.CommandsTotal,
		m.SessionsFinishedTotal,
	)
}

// RecordCommand increments the per-code command counter.
func (m *Metrics) RecordCommand(code string) {
	m.CommandsTotal.WithLabelValues(code).Inc()
}

// RecordSessionFinished increments the finished-sessions counter for reason.
func (m *Metrics) RecordSessionFinished(reason string) {
	m.SessionsFinishedTotal.WithLabelValues(reason).Inc()
}
