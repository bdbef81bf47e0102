package config

import (
	"fmt"
	"os"

	"github.com/jpetrucciani/epimetheus/internal/decode"
	"go.yaml.in/yaml/v4"
)

// Load reads a YAML configuration file over the defaults. Validation
// runs later, after CLI flags have been applied on top.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, nil
}

// Validate checks configuration consistency.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.MetricsPath == "" {
		return fmt.Errorf("metrics path cannot be empty")
	}
	if c.Interval <= 0 {
		return fmt.Errorf("refresh interval must be positive")
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("fetch timeout must be positive")
	}

	if len(c.Sources) == 0 {
		return fmt.Errorf("at least one source must be configured")
	}
	for i, src := range c.Sources {
		if src.URI == "" {
			return fmt.Errorf("source at index %d: uri cannot be empty", i)
		}
		if src.Format != "" {
			if _, err := decode.ParseFormat(src.Format); err != nil {
				return fmt.Errorf("source %q: %w", src.URI, err)
			}
		}
	}

	switch c.LogFormat {
	case "json", "term":
	default:
		return fmt.Errorf("invalid log format: %s (must be json or term)", c.LogFormat)
	}

	if c.OTEL != nil && c.OTEL.Enabled {
		if c.OTEL.Endpoint == "" {
			return fmt.Errorf("otel: endpoint cannot be empty")
		}
		switch c.OTEL.Protocol {
		case "", "http", "grpc":
		default:
			return fmt.Errorf("otel: invalid protocol: %s (must be http or grpc)", c.OTEL.Protocol)
		}
		if c.OTEL.Interval < 0 {
			return fmt.Errorf("otel: interval must be positive")
		}
	}

	if c.Monitor.Enabled && c.Monitor.Interval <= 0 {
		return fmt.Errorf("monitor: interval must be positive")
	}

	return nil
}
