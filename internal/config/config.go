// Package config holds the immutable process configuration. Values come
// from CLI flags and EPI_* environment variables, with an optional YAML
// file underneath for settings that have no flag (declared source
// formats, OTLP export, resource monitor).
package config

import (
	"time"

	"go.yaml.in/yaml/v4"
)

const (
	DefaultListenAddr   = "0.0.0.0"
	DefaultPort         = 8080
	DefaultMetricsPath  = "/metrics"
	DefaultInterval     = 60 * time.Second
	DefaultFetchTimeout = 10 * time.Second
	DefaultLogFormat    = "json"
	DefaultLogLevel     = "info"

	DefaultOTELInterval    = 10 * time.Second
	DefaultMonitorInterval = 30 * time.Second
)

// Config holds the complete application configuration. It is supplied
// once at process start and immutable afterwards.
type Config struct {
	ListenAddr   string         `yaml:"listen_addr"`
	Port         int            `yaml:"port"`
	MetricsPath  string         `yaml:"metrics_path"`
	Sources      []SourceConfig `yaml:"sources"`
	IgnoreKeys   []string       `yaml:"ignore_keys"`
	Interval     time.Duration  `yaml:"interval"`
	MetricPrefix string         `yaml:"metric_prefix"`
	FetchTimeout time.Duration  `yaml:"fetch_timeout"`
	LogFormat    string         `yaml:"log_format"`
	LogLevel     string         `yaml:"log_level"`
	OTEL         *OTELConfig    `yaml:"otel,omitempty"`
	Monitor      MonitorConfig  `yaml:"monitor"`
}

// SourceConfig defines one data source: a local path or a remote URL,
// with an optionally declared format overriding inference.
type SourceConfig struct {
	URI    string `yaml:"uri"`
	Format string `yaml:"format,omitempty"`
}

// UnmarshalYAML handles both the short form (a bare URI string) and the
// full form (uri/format object).
func (s *SourceConfig) UnmarshalYAML(value *yaml.Node) error {
	var uri string
	if err := value.Decode(&uri); err == nil {
		s.URI = uri
		return nil
	}

	type sourceConfig SourceConfig // avoid recursion
	var full sourceConfig
	if err := value.Decode(&full); err != nil {
		return err
	}
	*s = SourceConfig(full)
	return nil
}

// OTELConfig defines the optional OTLP push exporter.
type OTELConfig struct {
	Enabled  bool              `yaml:"enabled"`
	Endpoint string            `yaml:"endpoint"`
	Protocol string            `yaml:"protocol"` // http or grpc
	Interval time.Duration     `yaml:"interval"`
	Resource map[string]string `yaml:"resource,omitempty"`
	Headers  map[string]string `yaml:"headers,omitempty"`
}

// MonitorConfig defines the optional resource usage monitor.
type MonitorConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Interval time.Duration `yaml:"interval"`
}

// Default returns a configuration with all defaults applied and no
// sources.
func Default() *Config {
	return &Config{
		ListenAddr:   DefaultListenAddr,
		Port:         DefaultPort,
		MetricsPath:  DefaultMetricsPath,
		Interval:     DefaultInterval,
		FetchTimeout: DefaultFetchTimeout,
		LogFormat:    DefaultLogFormat,
		LogLevel:     DefaultLogLevel,
		Monitor:      MonitorConfig{Interval: DefaultMonitorInterval},
	}
}
