package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the SDK's Prometheus instruments. Counters cover host calls,
// push events and callback deliveries; gauges track channel health.
type Metrics struct {
	// Host call metrics
	CallsTotal   *prometheus.CounterVec
	CallDuration *prometheus.HistogramVec
	CallErrors   *prometheus.CounterVec
	CallsPending prometheus.Gauge

	// Channel metrics
	StateChanges     *prometheus.CounterVec
	ChannelConnected prometheus.Gauge

	// Push event metrics
	EventsTotal    *prometheus.CounterVec
	CallbacksFired *prometheus.CounterVec

	// Installation probe metrics
	ProbeResults *prometheus.CounterVec
}

var (
	sharedOnce sync.Once
	shared     *Metrics
)

// Shared returns the process-wide collector. promauto registers on the
// default registry, which panics on duplicate registration, so every Client
// in a process shares one instance.
func Shared() *Metrics {
	sharedOnce.Do(func() {
		shared = newMetrics()
	})
	return shared
}

func newMetrics() *Metrics {
	return &Metrics{
		CallsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "notchbar_sdk_calls_total",
				Help: "Total number of host calls",
			},
			[]string{"op", "status"},
		),
		CallDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "notchbar_sdk_call_duration_seconds",
				Help:    "Host call round-trip duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"op"},
		),
		CallErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "notchbar_sdk_call_errors_total",
				Help: "Total number of failed host calls by error kind",
			},
			[]string{"op", "kind"},
		),
		CallsPending: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "notchbar_sdk_calls_pending",
				Help: "Number of host calls awaiting a reply",
			},
		),
		StateChanges: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "notchbar_sdk_channel_state_changes_total",
				Help: "Total number of channel state transitions",
			},
			[]string{"from", "to"},
		),
		ChannelConnected: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "notchbar_sdk_channel_connected",
				Help: "Whether the host channel is currently connected (0 or 1)",
			},
		),
		EventsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "notchbar_sdk_events_total",
				Help: "Total number of push events received from the host",
			},
			[]string{"event"},
		),
		CallbacksFired: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "notchbar_sdk_callbacks_fired_total",
				Help: "Total number of application callbacks delivered",
			},
			[]string{"kind"},
		),
		ProbeResults: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "notchbar_sdk_probe_results_total",
				Help: "Total number of installation probe runs by outcome",
			},
			[]string{"outcome"},
		),
	}
}

// RecordCall records one completed host call.
func (m *Metrics) RecordCall(op, status string, duration time.Duration) {
	m.CallsTotal.WithLabelValues(op, status).Inc()
	m.CallDuration.WithLabelValues(op).Observe(duration.Seconds())
}

// RecordCallError records a failed host call by taxonomy kind.
func (m *Metrics) RecordCallError(op, kind string) {
	m.CallErrors.WithLabelValues(op, kind).Inc()
}

// RecordStateChange records one channel state transition and keeps the
// connected gauge in step.
func (m *Metrics) RecordStateChange(from, to string) {
	m.StateChanges.WithLabelValues(from, to).Inc()
	if to == "connected" {
		m.ChannelConnected.Set(1)
	} else {
		m.ChannelConnected.Set(0)
	}
}

// RecordEvent records one push event received from the host.
func (m *Metrics) RecordEvent(event string) {
	m.EventsTotal.WithLabelValues(event).Inc()
}

// RecordCallback records one application callback delivery.
func (m *Metrics) RecordCallback(kind string) {
	m.CallbacksFired.WithLabelValues(kind).Inc()
}

// RecordProbe records one installation probe outcome.
func (m *Metrics) RecordProbe(outcome string) {
	m.ProbeResults.WithLabelValues(outcome).Inc()
}

// IncPending notes a host call entering flight.
func (m *Metrics) IncPending() {
	m.CallsPending.Inc()
}

// DecPending notes a host call leaving flight.
func (m *Metrics) DecPending() {
	m.CallsPending.Dec()
}

// Timer measures one host call and records it on Stop.
type Timer struct {
	start   time.Time
	metrics *Metrics
	op      string
}

// NewTimer starts timing a host call.
func NewTimer(metrics *Metrics, op string) *Timer {
	return &Timer{start: time.Now(), metrics: metrics, op: op}
}

// Stop records the call with its final status.
func (t *Timer) Stop(status string) {
	t.metrics.RecordCall(t.op, status, time.Since(t.start))
}
