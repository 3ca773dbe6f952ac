package debug

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/lixenwraith/void-striker/status"
)

// Namespace prefixes every exported metric
const Namespace = "void_striker"

// Metrics owns a private prometheus registry so tests and multiple servers never
// collide on the global default
type Metrics struct {
	Registry *prometheus.Registry

	tickDuration   prometheus.Histogram
	wsConnections  prometheus.Gauge
	wsMessages     prometheus.Counter
	wsDropped      prometheus.Counter
	requestLatency *prometheus.HistogramVec
}

// NewMetrics registers the game status collector plus engine and stream metrics
func NewMetrics(reg *status.Registry) *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		tickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "tick_duration_seconds",
			Help:      "Time spent in one logic tick",
			Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05},
		}),
		wsConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "ws_connections",
			Help:      "Open event stream sessions",
		}),
		wsMessages: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "ws_messages_total",
			Help:      "Event messages queued to stream sessions",
		}),
		wsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "ws_dropped_total",
			Help:      "Event messages dropped by rate limit or full send buffer",
		}),
		requestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Debug HTTP request latency",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}, []string{"route", "status"}),
	}

	m.Registry.MustRegister(
		m.tickDuration,
		m.wsConnections,
		m.wsMessages,
		m.wsDropped,
		m.requestLatency,
		collectors.NewGoCollector(),
	)
	if reg != nil {
		m.Registry.MustRegister(status.NewCollector(reg, Namespace))
	}
	return m
}

// ObserveTick records one tick duration; pass to engine.WithTickObserver
func (m *Metrics) ObserveTick(d time.Duration) {
	m.tickDuration.Observe(d.Seconds())
}
