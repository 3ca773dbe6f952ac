package status

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector exports a Registry to prometheus as gauges
// Metric names are derived from keys: "engine.ticks" -> "<namespace>_engine_ticks"
type Collector struct {
	reg       *Registry
	namespace string
}

// NewCollector wraps reg; register the result with a prometheus.Registerer
func NewCollector(reg *Registry, namespace string) *Collector {
	return &Collector{reg: reg, namespace: namespace}
}

// Describe sends nothing: the metric set grows at runtime, making this an unchecked collector
func (c *Collector) Describe(chan<- *prometheus.Desc) {}

// Collect emits one gauge per registry entry
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	for key, val := range c.reg.Snapshot() {
		desc := prometheus.NewDesc(c.metricName(key), "game status "+key, nil, nil)
		m, err := prometheus.NewConstMetric(desc, prometheus.GaugeValue, val)
		if err != nil {
			continue
		}
		ch <- m
	}
}

func (c *Collector) metricName(key string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		default:
			return '_'
		}
	}, key)
	if c.namespace == "" {
		return name
	}
	return c.namespace + "_" + name
}
