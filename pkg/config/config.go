package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/vmweaver/vmweaver/pkg/telemetry"
)

// Config is the full vmweaver configuration.
type Config struct {
	// Server configures the HTTP API.
	Server ServerConfig `yaml:"server"`

	// Store configures the persistence layer.
	Store StoreConfig `yaml:"store"`

	// Logging configures structured logging.
	Logging telemetry.LoggingConfig `yaml:"logging"`

	// Metrics configures Prometheus metrics.
	Metrics telemetry.MetricsConfig `yaml:"metrics"`

	// Tracing configures OpenTelemetry tracing.
	Tracing telemetry.TracingConfig `yaml:"tracing"`
}

// ServerConfig configures the HTTP API listener.
type ServerConfig struct {
	// ListenAddress is the address the API listens on.
	ListenAddress string `yaml:"listen_address" validate:"required"`

	// DefaultPageSize is the list page size when the client passes no
	// limit.
	DefaultPageSize int `yaml:"default_page_size" validate:"gte=1,lte=1000"`

	// MaxPageSize caps the client-supplied limit.
	MaxPageSize int `yaml:"max_page_size" validate:"gte=1,lte=1000"`
}

// StoreConfig configures the persistence layer.
type StoreConfig struct {
	// Path is the SQLite database file path. ":memory:" selects an
	// in-memory store scoped to the process lifetime; durability across
	// restarts is then explicitly not guaranteed.
	Path string `yaml:"path" validate:"required"`
}

// Default returns the configuration defaults.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			ListenAddress:   ":8080",
			DefaultPageSize: 100,
			MaxPageSize:     1000,
		},
		Store: StoreConfig{
			Path: "vmweaver.db",
		},
		Logging: telemetry.DefaultLoggingConfig(),
		Metrics: telemetry.DefaultMetricsConfig(),
		Tracing: telemetry.DefaultTracingConfig(),
	}
}

// Load reads the configuration file at path, merges it over the defaults,
// and validates the result. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration against its struct constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.Server.DefaultPageSize > c.Server.MaxPageSize {
		return fmt.Errorf("invalid configuration: default_page_size %d exceeds max_page_size %d",
			c.Server.DefaultPageSize, c.Server.MaxPageSize)
	}
	return nil
}
