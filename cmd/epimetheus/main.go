package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/jpetrucciani/epimetheus/internal/app"
	"github.com/jpetrucciani/epimetheus/internal/config"
	"github.com/jpetrucciani/epimetheus/internal/monitor"
	"github.com/jpetrucciani/epimetheus/internal/version"
	"github.com/urfave/cli/v3"
)

func main() {
	cmd := &cli.Command{
		Name:    "epimetheus",
		Usage:   "Expose numeric values from JSON, YAML and CSV sources as Prometheus metrics",
		Version: version.String(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to optional YAML configuration file",
			},
			&cli.StringFlag{
				Name:    "listen-addr",
				Value:   config.DefaultListenAddr,
				Usage:   "address to listen on",
				Sources: cli.EnvVars("EPI_IP"),
			},
			&cli.IntFlag{
				Name:    "port",
				Value:   config.DefaultPort,
				Usage:   "port to listen on",
				Sources: cli.EnvVars("EPI_PORT"),
			},
			&cli.StringSliceFlag{
				Name:    "files",
				Aliases: []string{"f"},
				Usage:   "file paths or URLs to extract metrics from",
				Sources: cli.EnvVars("EPI_FILES"),
			},
			&cli.StringSliceFlag{
				Name:    "ignore-keys",
				Usage:   "mapping keys whose subtrees are skipped",
				Sources: cli.EnvVars("EPI_IGNORE_KEYS"),
			},
			&cli.IntFlag{
				Name:    "interval",
				Value:   int(config.DefaultInterval / time.Second),
				Usage:   "refresh interval in seconds",
				Sources: cli.EnvVars("EPI_INTERVAL"),
			},
			&cli.StringFlag{
				Name:    "metric-prefix",
				Usage:   "prefix prepended to every metric name",
				Sources: cli.EnvVars("EPI_METRIC_PREFIX"),
			},
			&cli.StringFlag{
				Name:    "log-format",
				Value:   config.DefaultLogFormat,
				Usage:   "log output format (json or term)",
				Sources: cli.EnvVars("EPI_LOG_FORMAT"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   config.DefaultLogLevel,
				Usage:   "log level (debug, info, warn, error)",
				Sources: cli.EnvVars("EPI_LOG_LEVEL"),
			},
		},
		Action: serve,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	setupLogger(cfg)

	slog.Info("starting epimetheus",
		"version", version.String(),
		"listen_addr", cfg.ListenAddr,
		"port", cfg.Port,
		"sources", len(cfg.Sources),
		"interval", cfg.Interval,
	)

	application, err := app.New(cfg)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	// Setup graceful shutdown
	shutdownCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start refresh scheduler
	application.Scheduler.Run(shutdownCtx)
	defer application.Scheduler.Wait()

	// Start resource monitor if enabled
	if cfg.Monitor.Enabled {
		if mon := monitor.New(cfg.Monitor.Interval); mon != nil {
			mon.Run(shutdownCtx)
			defer mon.Wait()
		}
	}

	// Start OTLP push exporter if enabled
	var wg sync.WaitGroup
	if application.OTELExporter != nil {
		wg.Go(func() {
			if err := application.OTELExporter.Start(shutdownCtx); err != nil {
				slog.Error("otel exporter error", "error", err)
			}
		})
	}
	defer wg.Wait()

	// Start server (blocks until shutdown)
	if err := application.Server.Start(shutdownCtx); err != nil {
		stop() // unblock the deferred Waits
		slog.Error("server error", "error", err)
		return err
	}

	slog.Info("shutdown complete")
	return nil
}

// loadConfig builds the configuration: defaults, then the optional YAML
// file, then explicitly set flags on top.
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	cfg := config.Default()
	if path := cmd.String("config"); path != "" {
		var err error
		cfg, err = config.Load(path)
		if err != nil {
			return nil, err
		}
	}

	if cmd.IsSet("listen-addr") {
		cfg.ListenAddr = cmd.String("listen-addr")
	}
	if cmd.IsSet("port") {
		cfg.Port = cmd.Int("port")
	}
	if cmd.IsSet("interval") {
		cfg.Interval = time.Duration(cmd.Int("interval")) * time.Second
	}
	if cmd.IsSet("metric-prefix") {
		cfg.MetricPrefix = cmd.String("metric-prefix")
	}
	if cmd.IsSet("log-format") {
		cfg.LogFormat = cmd.String("log-format")
	}
	if cmd.IsSet("log-level") {
		cfg.LogLevel = cmd.String("log-level")
	}
	if cmd.IsSet("ignore-keys") {
		cfg.IgnoreKeys = cmd.StringSlice("ignore-keys")
	}
	for _, uri := range cmd.StringSlice("files") {
		cfg.Sources = append(cfg.Sources, config.SourceConfig{URI: uri})
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setupLogger installs the default slog handler. An unknown level falls
// back to info rather than failing startup.
func setupLogger(cfg *config.Config) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		fmt.Fprintf(os.Stderr, "invalid log level %q, defaulting to info\n", cfg.LogLevel)
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch cfg.LogFormat {
	case "term":
		handler = slog.NewTextHandler(os.Stdout, opts)
	default:
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
