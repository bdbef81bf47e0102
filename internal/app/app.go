// Package app wires the application components together.
package app

import (
	"fmt"

	"github.com/jpetrucciani/epimetheus/internal/config"
	"github.com/jpetrucciani/epimetheus/internal/decode"
	"github.com/jpetrucciani/epimetheus/internal/exporter"
	"github.com/jpetrucciani/epimetheus/internal/refresh"
	"github.com/jpetrucciani/epimetheus/internal/registry"
	"github.com/jpetrucciani/epimetheus/internal/server"
	"github.com/jpetrucciani/epimetheus/internal/source"
	"github.com/prometheus/client_golang/prometheus"
)

// App holds initialized application components.
type App struct {
	Config       *config.Config
	Registry     *registry.Registry
	Scheduler    *refresh.Scheduler
	Server       *server.Server
	OTELExporter *exporter.OTELExporter
}

// New initializes the application from a validated configuration.
func New(cfg *config.Config) (*App, error) {
	sources, err := buildDescriptors(cfg.Sources)
	if err != nil {
		return nil, err
	}

	reg := registry.New()
	prom := prometheus.NewRegistry()
	prom.MustRegister(registry.NewCollector(reg))

	scheduler := refresh.New(refresh.Config{
		Sources:    sources,
		Fetcher:    source.NewClient(cfg.FetchTimeout),
		Registry:   reg,
		IgnoreKeys: cfg.IgnoreKeys,
		Prefix:     cfg.MetricPrefix,
		Interval:   cfg.Interval,
	}, prom)

	srv := server.New(cfg.ListenAddr, cfg.Port, cfg.MetricsPath, prom)

	var otelExporter *exporter.OTELExporter
	if cfg.OTEL != nil && cfg.OTEL.Enabled {
		otelExporter, err = exporter.NewOTELExporter(cfg.OTEL, reg)
		if err != nil {
			return nil, fmt.Errorf("failed to create otel exporter: %w", err)
		}
	}

	return &App{
		Config:       cfg,
		Registry:     reg,
		Scheduler:    scheduler,
		Server:       srv,
		OTELExporter: otelExporter,
	}, nil
}

// buildDescriptors turns configured sources into descriptors, resolving
// declared formats.
func buildDescriptors(sources []config.SourceConfig) ([]source.Descriptor, error) {
	descs := make([]source.Descriptor, 0, len(sources))
	for _, src := range sources {
		declared := decode.FormatUnknown
		if src.Format != "" {
			var err error
			declared, err = decode.ParseFormat(src.Format)
			if err != nil {
				return nil, fmt.Errorf("source %q: %w", src.URI, err)
			}
		}
		descs = append(descs, source.New(src.URI, declared))
	}
	return descs, nil
}
