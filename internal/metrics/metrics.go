// Package metrics exposes the engine's Prometheus instrumentation
// through a dedicated registry (never the global prometheus.DefaultRegisterer,
// so multiple engines in the same test binary never collide), following
// the assessment service's internal/observability/metrics.go pattern.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every collector the engine updates.
type Metrics struct {
	registry *prometheus.Registry

	servingRooms prometheus.Gauge
	waitingRooms prometheus.Gauge
	ticksTotal   prometheus.Counter

	commandsTotal   *prometheus.CounterVec
	commandDuration *prometheus.HistogramVec

	preemptionsTotal prometheus.Counter
	rotationsTotal   prometheus.Counter
	acRecordsTotal   prometheus.Counter
}

// New builds a Metrics bound to a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		servingRooms: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "hotelac_serving_rooms",
			Help: "Rooms currently occupying a compressor slot.",
		}),
		waitingRooms: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "hotelac_waiting_rooms",
			Help: "Rooms with AC on but waiting for a compressor slot.",
		}),
		ticksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hotelac_ticks_total",
			Help: "Total ticker-driven steps of the engine.",
		}),
		commandsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hotelac_commands_total",
			Help: "Total commands processed by the engine, by command name and result code.",
		}, []string{"command", "code"}),
		commandDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "hotelac_command_duration_seconds",
			Help:    "Time spent holding the engine lock per command.",
			Buckets: prometheus.DefBuckets,
		}, []string{"command"}),
		preemptionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hotelac_preemptions_total",
			Help: "Total priority preemptions performed by the scheduler.",
		}),
		rotationsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hotelac_rotations_total",
			Help: "Total time-slice rotations performed by the scheduler.",
		}),
		acRecordsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hotelac_ac_records_total",
			Help: "Total AC billing records appended to the log.",
		}),
	}

	reg.MustRegister(
		m.servingRooms, m.waitingRooms, m.ticksTotal,
		m.commandsTotal, m.commandDuration,
		m.preemptionsTotal, m.rotationsTotal, m.acRecordsTotal,
	)
	return m
}

// Handler returns the HTTP handler that serves this registry's
// exposition — mounted under /metrics by the api package.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// SetQueueDepths records the current serving/waiting queue sizes.
func (m *Metrics) SetQueueDepths(serving, waiting int) {
	m.servingRooms.Set(float64(serving))
	m.waitingRooms.Set(float64(waiting))
}

// IncTick counts one ticker-driven step.
func (m *Metrics) IncTick() {
	m.ticksTotal.Inc()
}

// ObserveCommand records one command's result code and how long it held
// the engine lock.
func (m *Metrics) ObserveCommand(command, code string, seconds float64) {
	m.commandsTotal.WithLabelValues(command, code).Inc()
	m.commandDuration.WithLabelValues(command).Observe(seconds)
}

// IncPreemption counts one priority preemption.
func (m *Metrics) IncPreemption() {
	m.preemptionsTotal.Inc()
}

// IncRotation counts one time-slice rotation.
func (m *Metrics) IncRotation() {
	m.rotationsTotal.Inc()
}

// IncACRecord counts one appended AC billing record.
func (m *Metrics) IncACRecord() {
	m.acRecordsTotal.Inc()
}
