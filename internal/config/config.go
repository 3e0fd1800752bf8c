// Package config holds agent configuration, loaded from environment
// variables with an optional YAML file overlay.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all agent configuration.
type Config struct {
	Agent   AgentConfig  `yaml:"agent"`
	Limits  LimitsConfig `yaml:"limits"`
	Sink    SinkConfig   `yaml:"sink"`
	Export  ExportConfig `yaml:"export"`
	Server  ServerConfig `yaml:"server"`
	Logging LogConfig    `yaml:"logging"`
}

// AgentConfig identifies this agent instance.
type AgentConfig struct {
	Name string `envconfig:"AGENT_NAME" default:"traceforge" yaml:"name"`
}

// LimitsConfig holds the overhead-control thresholds read by builders.
type LimitsConfig struct {
	MaxTraceRecords int   `envconfig:"MAX_TRACE_RECORDS" default:"4096" yaml:"max_trace_records"`
	MinMethodTimeNS int64 `envconfig:"MIN_METHOD_TIME_NS" default:"250000" yaml:"min_method_time_ns"`
	MinTraceTimeNS  int64 `envconfig:"MIN_TRACE_TIME_NS" default:"50000000" yaml:"min_trace_time_ns"`
}

// SinkConfig holds the async submission boundary configuration.
type SinkConfig struct {
	QueueSize int    `envconfig:"SINK_QUEUE_SIZE" default:"1024" yaml:"queue_size"`
	Policy    string `envconfig:"SINK_POLICY" default:"drop" yaml:"policy"` // "drop" or "block"
	RingSize  int    `envconfig:"SINK_RING_SIZE" default:"128" yaml:"ring_size"`
	TapBuffer int    `envconfig:"SINK_TAP_BUFFER" default:"64" yaml:"tap_buffer"`
}

// ExportConfig holds export pipeline configuration.
type ExportConfig struct {
	Mode          string        `envconfig:"EXPORT_MODE" default:"file" yaml:"mode"` // "file" or "http"
	Path          string        `envconfig:"EXPORT_PATH" default:"traces.ndjson" yaml:"path"`
	Endpoint      string        `envconfig:"EXPORT_ENDPOINT" default:"" yaml:"endpoint"`
	BatchSize     int           `envconfig:"EXPORT_BATCH_SIZE" default:"64" yaml:"batch_size"`
	FlushInterval time.Duration `envconfig:"EXPORT_FLUSH_INTERVAL" default:"5s" yaml:"flush_interval"`
	Compress      bool          `envconfig:"EXPORT_COMPRESS" default:"true" yaml:"compress"`
	RetryCount    int           `envconfig:"EXPORT_RETRY_COUNT" default:"3" yaml:"retry_count"`
}

// ServerConfig holds the admin HTTP server configuration.
type ServerConfig struct {
	Host string `envconfig:"HOST" default:"0.0.0.0" yaml:"host"`
	Port string `envconfig:"PORT" default:"8035" yaml:"port"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info" yaml:"level"`
	Development bool   `envconfig:"LOG_DEV" default:"false" yaml:"development"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFile overlays a YAML file on the default configuration. File
// values win over defaults; environment variables are not consulted.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Agent: AgentConfig{
			Name: "traceforge",
		},
		Limits: LimitsConfig{
			MaxTraceRecords: 4096,
			MinMethodTimeNS: 250_000,
			MinTraceTimeNS:  50_000_000,
		},
		Sink: SinkConfig{
			QueueSize: 1024,
			Policy:    "drop",
			RingSize:  128,
			TapBuffer: 64,
		},
		Export: ExportConfig{
			Mode:          "file",
			Path:          "traces.ndjson",
			BatchSize:     64,
			FlushInterval: 5 * time.Second,
			Compress:      true,
			RetryCount:    3,
		},
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: "8035",
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
	}
}

// Validate checks configuration consistency.
func (c *Config) Validate() error {
	if c.Limits.MaxTraceRecords <= 0 {
		return fmt.Errorf("limits: max_trace_records must be positive, got %d", c.Limits.MaxTraceRecords)
	}
	if c.Limits.MinMethodTimeNS < 0 {
		return fmt.Errorf("limits: min_method_time_ns must not be negative, got %d", c.Limits.MinMethodTimeNS)
	}
	if c.Limits.MinTraceTimeNS < 0 {
		return fmt.Errorf("limits: min_trace_time_ns must not be negative, got %d", c.Limits.MinTraceTimeNS)
	}
	if c.Sink.QueueSize <= 0 {
		return fmt.Errorf("sink: queue_size must be positive, got %d", c.Sink.QueueSize)
	}
	if c.Sink.Policy != "drop" && c.Sink.Policy != "block" {
		return fmt.Errorf("sink: policy must be \"drop\" or \"block\", got %q", c.Sink.Policy)
	}
	switch c.Export.Mode {
	case "file":
		if c.Export.Path == "" {
			return fmt.Errorf("export: path required in file mode")
		}
	case "http":
		if c.Export.Endpoint == "" {
			return fmt.Errorf("export: endpoint required in http mode")
		}
	default:
		return fmt.Errorf("export: mode must be \"file\" or \"http\", got %q", c.Export.Mode)
	}
	if c.Export.BatchSize <= 0 {
		return fmt.Errorf("export: batch_size must be positive, got %d", c.Export.BatchSize)
	}
	return nil
}
