package registry

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

const metricHelp = "Numeric value extracted from a configured source"

// Collector exposes the registry's current snapshot as gauges. Metrics
// are built on each scrape with NewConstMetric so a scrape always sees
// one consistent snapshot.
type Collector struct {
	registry *Registry
}

// NewCollector creates a collector backed by reg.
func NewCollector(reg *Registry) *Collector {
	return &Collector{registry: reg}
}

// Describe sends no descriptors: the metric set changes between
// refresh cycles, so this is an unchecked collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {}

// Collect reads the registry snapshot and sends one gauge per entry.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	for _, p := range c.registry.Snapshot() {
		m, err := prometheus.NewConstMetric(
			prometheus.NewDesc(p.Name, metricHelp, nil, nil),
			prometheus.GaugeValue,
			p.Value,
		)
		if err != nil {
			// Sanitization keeps names close to the Prometheus charset,
			// but names starting with a digit still get rejected here.
			slog.Debug("skipping unexposable metric", "metric", p.Name, "error", err)
			continue
		}
		ch <- m
	}
}
