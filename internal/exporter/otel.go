// Package exporter pushes the currently published gauges to an OTLP
// collector, mirroring what the pull endpoint exposes.
package exporter

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jpetrucciani/epimetheus/internal/config"
	"github.com/jpetrucciani/epimetheus/internal/registry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	otelmetric "go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
)

// OTELExporter pushes registry gauges over OTLP on a fixed interval.
//
// The metric set is dynamic: names appear and disappear as sources
// refresh. Instruments are therefore registered lazily the first time a
// name shows up in a snapshot, and each instrument's callback reads the
// registry at push time, observing nothing while its name is evicted.
type OTELExporter struct {
	cfg           *config.OTELConfig
	registry      *registry.Registry
	meterProvider *sdkmetric.MeterProvider
	meter         otelmetric.Meter
	interval      time.Duration
	instruments   map[string]otelmetric.Float64ObservableGauge
}

// NewOTELExporter creates an exporter for cfg backed by reg.
func NewOTELExporter(cfg *config.OTELConfig, reg *registry.Registry) (*OTELExporter, error) {
	attrs := make([]attribute.KeyValue, 0, len(cfg.Resource))
	for k, v := range cfg.Resource {
		attrs = append(attrs, attribute.String(k, v))
	}
	res, err := resource.New(
		context.Background(),
		resource.WithAttributes(attrs...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	interval := cfg.Interval
	if interval <= 0 {
		interval = config.DefaultOTELInterval
	}

	exp, err := newOTLPExporter(cfg)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(
		exp,
		sdkmetric.WithInterval(interval),
	)

	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	)

	return &OTELExporter{
		cfg:           cfg,
		registry:      reg,
		meterProvider: meterProvider,
		meter:         meterProvider.Meter("epimetheus"),
		interval:      interval,
		instruments:   make(map[string]otelmetric.Float64ObservableGauge),
	}, nil
}

// newOTLPExporter builds the transport selected by cfg.Protocol.
func newOTLPExporter(cfg *config.OTELConfig) (sdkmetric.Exporter, error) {
	switch cfg.Protocol {
	case "grpc":
		opts := []otlpmetricgrpc.Option{
			otlpmetricgrpc.WithEndpoint(cfg.Endpoint),
			otlpmetricgrpc.WithInsecure(),
		}
		if len(cfg.Headers) > 0 {
			opts = append(opts, otlpmetricgrpc.WithHeaders(cfg.Headers))
		}
		exp, err := otlpmetricgrpc.New(context.Background(), opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP gRPC exporter: %w", err)
		}
		return exp, nil

	default: // http
		opts := []otlpmetrichttp.Option{
			otlpmetrichttp.WithEndpoint(cfg.Endpoint),
			otlpmetrichttp.WithInsecure(),
		}
		if len(cfg.Headers) > 0 {
			opts = append(opts, otlpmetrichttp.WithHeaders(cfg.Headers))
		}
		exp, err := otlpmetrichttp.New(context.Background(), opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP HTTP exporter: %w", err)
		}
		return exp, nil
	}
}

// Start keeps the instrument set in sync with the registry until ctx is
// cancelled. The periodic reader pushes on its own schedule.
func (e *OTELExporter) Start(ctx context.Context) error {
	slog.Info("starting otel exporter",
		"endpoint", e.cfg.Endpoint,
		"protocol", e.cfg.Protocol,
		"push_interval", e.interval,
	)

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	e.syncInstruments()

	for {
		select {
		case <-ctx.Done():
			return e.Stop()
		case <-ticker.C:
			e.syncInstruments()
		}
	}
}

// syncInstruments registers a gauge for every snapshot name seen for
// the first time. Instruments are never unregistered; an evicted name's
// callback simply stops observing.
func (e *OTELExporter) syncInstruments() {
	for _, p := range e.registry.Snapshot() {
		if _, ok := e.instruments[p.Name]; ok {
			continue
		}

		name := p.Name
		gauge, err := e.meter.Float64ObservableGauge(
			name,
			otelmetric.WithDescription("Numeric value extracted from a configured source"),
			otelmetric.WithFloat64Callback(func(_ context.Context, observer otelmetric.Float64Observer) error {
				if v, ok := e.registry.Get(name); ok {
					observer.Observe(v)
				}
				return nil
			}),
		)
		if err != nil {
			slog.Warn("failed to register otel gauge", "metric", name, "error", err)
			continue
		}

		e.instruments[name] = gauge
		slog.Debug("registered otel gauge", "metric", name)
	}
}

// Stop flushes and shuts down the meter provider.
func (e *OTELExporter) Stop() error {
	slog.Info("shutting down otel exporter")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return e.meterProvider.Shutdown(ctx)
}
