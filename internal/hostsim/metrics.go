package hostsim

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the simulator's Prometheus instruments. They register on an
// owned registry so the simulator can run in the same process as an SDK
// client without colliding on the default registry.
type Metrics struct {
	Registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	FramesTotal    *prometheus.CounterVec
	EventsPushed   *prometheus.CounterVec
	SessionsActive prometheus.Gauge
	EntitiesActive *prometheus.GaugeVec
}

// NewMetrics creates the instrument set on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "notchbar_host_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "notchbar_host_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),
		FramesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "notchbar_host_frames_total",
				Help: "Total number of channel request frames handled",
			},
			[]string{"op", "status"},
		),
		EventsPushed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "notchbar_host_events_pushed_total",
				Help: "Total number of events pushed to clients",
			},
			[]string{"event"},
		),
		SessionsActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "notchbar_host_sessions_active",
				Help: "Number of connected channel sessions",
			},
		),
		EntitiesActive: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "notchbar_host_entities_active",
				Help: "Number of live entities by kind",
			},
			[]string{"kind"},
		),
	}
}

// RecordFrame records a handled request frame.
func (m *Metrics) RecordFrame(op, status string) {
	m.FramesTotal.WithLabelValues(op, status).Inc()
}

// RecordEvent records a pushed event.
func (m *Metrics) RecordEvent(event string) {
	m.EventsPushed.WithLabelValues(event).Inc()
}

// Middleware creates a Gin middleware recording request counts and latency.
func Middleware(metrics *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		method := c.Request.Method

		c.Next()

		duration := time.Since(start)
		status := strconv.Itoa(c.Writer.Status())
		metrics.RequestsTotal.WithLabelValues(method, path, status).Inc()
		metrics.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	}
}
