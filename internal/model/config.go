package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Config holds the complete wdgraph configuration
type Config struct {
	Language    string            `yaml:"language" mapstructure:"language"` // Designated language for labels, descriptions, aliases
	Store       StoreConfig       `yaml:"store" mapstructure:"store"`
	Input       InputConfig       `yaml:"input" mapstructure:"input"`
	Export      ExportConfig      `yaml:"export" mapstructure:"export"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Log         LogConfig         `yaml:"log" mapstructure:"log"`
	Progress    ProgressConfig    `yaml:"progress" mapstructure:"progress"`
	Metrics     MetricsConfig     `yaml:"metrics" mapstructure:"metrics"`
}

// StoreConfig configures the graph store
type StoreConfig struct {
	// sqlite, memory
	Driver string `yaml:"driver" mapstructure:"driver"`
	Path   string `yaml:"path" mapstructure:"path"`
	// Writes per transaction
	BatchSize int `yaml:"batch_size" mapstructure:"batch_size"`
}

// InputConfig lists the dump files to load
type InputConfig struct {
	// Glob patterns of item dumps
	Items []string `yaml:"items" mapstructure:"items"`
	// Glob patterns of property dumps
	Properties    []string `yaml:"properties" mapstructure:"properties"`
	PropertyNames string   `yaml:"property_names" mapstructure:"property_names"`
}

// ExportConfig configures the property side-channel dump
type ExportConfig struct {
	PropertyDump string `yaml:"property_dump" mapstructure:"property_dump"`
}

// ConcurrencyConfig configures the parse stage.
// Store writes always happen on a single goroutine.
type ConcurrencyConfig struct {
	ParseWorkers int `yaml:"parse_workers" mapstructure:"parse_workers"`
	QueueSize    int `yaml:"queue_size" mapstructure:"queue_size"`
}

// LogConfig configures logging and diagnostic output
type LogConfig struct {
	// debug, info, warn, error
	Level string `yaml:"level" mapstructure:"level"`
	// text, json
	Format string `yaml:"format" mapstructure:"format"`
	// 0 logs every diagnostic
	DiagnosticsPerSecond float64 `yaml:"diagnostics_per_second" mapstructure:"diagnostics_per_second"`
	DiagnosticsBurst     int     `yaml:"diagnostics_burst" mapstructure:"diagnostics_burst"`
}

// ProgressConfig configures periodic progress lines
type ProgressConfig struct {
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`
}

// MetricsConfig configures the end-of-pass metrics export
type MetricsConfig struct {
	// Prometheus textfile path, empty disables the export
	Textfile string `yaml:"textfile" mapstructure:"textfile"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Language: "en",
		Store: StoreConfig{
			Driver:    "sqlite",
			Path:      "wdgraph.db",
			BatchSize: 10_000,
		},
		Concurrency: ConcurrencyConfig{
			ParseWorkers: 1,
			QueueSize:    256,
		},
		Log: LogConfig{
			Level:            "info",
			Format:           "text",
			DiagnosticsBurst: 20,
		},
		Progress: ProgressConfig{
			Interval: 30 * time.Second,
		},
	}
}

// Validate checks that the configuration is usable for a load pass
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Language) == "" {
		return errors.New("language is required")
	}

	switch c.Store.Driver {
	case "sqlite":
		if c.Store.Path == "" {
			return errors.New("store.path is required for the sqlite driver")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown store.driver: %s (supported: sqlite, memory)", c.Store.Driver)
	}
	if c.Store.BatchSize < 0 {
		return errors.New("store.batch_size must not be negative")
	}

	if len(c.Input.Items) == 0 && len(c.Input.Properties) == 0 {
		return errors.New("at least one of input.items or input.properties is required")
	}

	if c.Concurrency.ParseWorkers < 0 {
		return errors.New("concurrency.parse_workers must not be negative")
	}
	if c.Concurrency.QueueSize < 0 {
		return errors.New("concurrency.queue_size must not be negative")
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log.level: %s", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log.format: %s (supported: text, json)", c.Log.Format)
	}
	if c.Log.DiagnosticsPerSecond < 0 {
		return errors.New("log.diagnostics_per_second must not be negative")
	}

	return nil
}
