// Package refresh drives the fetch-decode-flatten-commit cycle for
// every configured source on a fixed interval.
package refresh

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jpetrucciani/epimetheus/internal/decode"
	"github.com/jpetrucciani/epimetheus/internal/flatten"
	"github.com/jpetrucciani/epimetheus/internal/registry"
	"github.com/jpetrucciani/epimetheus/internal/source"
	"github.com/prometheus/client_golang/prometheus"
)

// Config wires a scheduler to its collaborators.
type Config struct {
	Sources    []source.Descriptor
	Fetcher    source.Fetcher
	Registry   *registry.Registry
	IgnoreKeys []string
	Prefix     string
	Interval   time.Duration
}

// Scheduler refreshes all sources once per interval tick. Sources are
// refreshed concurrently and independently: a slow or failing source
// never delays the others, and a failed cycle leaves that source's
// previously committed entries untouched until the next tick succeeds.
type Scheduler struct {
	cfg Config
	wg  sync.WaitGroup

	sourcesTotal prometheus.Gauge
	reads        prometheus.Counter
	readFailures prometheus.Counter
	metricsTotal prometheus.Gauge
}

// New creates a scheduler and registers its self-metrics with prom.
func New(cfg Config, prom prometheus.Registerer) *Scheduler {
	s := &Scheduler{
		cfg: cfg,
		sourcesTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "epimetheus_sources_total",
			Help: "Total number of file/url sources",
		}),
		reads: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "epimetheus_source_reads_total",
			Help: "Total number of source read attempts",
		}),
		readFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "epimetheus_source_read_failures_total",
			Help: "Total number of source read failures",
		}),
		metricsTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "epimetheus_metrics_total",
			Help: "Total number of metrics being tracked",
		}),
	}
	prom.MustRegister(s.sourcesTotal, s.reads, s.readFailures, s.metricsTotal)
	s.sourcesTotal.Set(float64(len(cfg.Sources)))
	return s
}

// Run starts the refresh loop in a background goroutine. The first
// cycle runs immediately; afterwards one cycle runs per interval tick
// until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	s.wg.Go(func() {
		ticker := time.NewTicker(s.cfg.Interval)
		defer ticker.Stop()

		s.RefreshAll(ctx)

		for {
			select {
			case <-ctx.Done():
				slog.Info("refresh scheduler stopped")
				return
			case <-ticker.C:
				s.RefreshAll(ctx)
			}
		}
	})
}

// Wait blocks until the refresh loop has exited.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

// RefreshAll runs one cycle per configured source, concurrently, and
// waits for all of them to finish.
func (s *Scheduler) RefreshAll(ctx context.Context) {
	var wg sync.WaitGroup
	for _, desc := range s.cfg.Sources {
		wg.Go(func() {
			s.refresh(ctx, desc)
		})
	}
	wg.Wait()
	s.metricsTotal.Set(float64(s.cfg.Registry.Len()))
}

// refresh runs one source's cycle: fetch, decode, flatten, commit.
// Fetch and decode failures abort the cycle without touching the
// source's prior registry entries.
func (s *Scheduler) refresh(ctx context.Context, desc source.Descriptor) {
	slog.Debug("refreshing source", "source", desc.URI)
	s.reads.Inc()

	data, format, err := s.cfg.Fetcher.Fetch(ctx, desc)
	if err != nil {
		slog.Error("failed to fetch source", "source", desc.URI, "error", err)
		s.readFailures.Inc()
		return
	}

	if format == decode.FormatUnknown {
		slog.Warn("cannot determine source format", "source", desc.URI)
		return
	}

	tree, err := decode.Decode(data, format)
	if err != nil {
		slog.Error("failed to decode source", "source", desc.URI, "format", format, "error", err)
		s.readFailures.Inc()
		return
	}

	pairs := flatten.Flatten(tree, s.cfg.IgnoreKeys, s.cfg.Prefix)
	s.cfg.Registry.Commit(desc.URI, pairs)
	slog.Debug("source refreshed", "source", desc.URI, "format", format, "metrics", len(pairs))
}
