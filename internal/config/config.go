// Package config provides configuration types and defaults for airframe.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/zjrosen/airframe/internal/log"
	"github.com/zjrosen/airframe/internal/positioning"
	"github.com/zjrosen/airframe/internal/tracing"
)

// Config holds all configuration options for airframe.
type Config struct {
	// Document is the model document used when a command gets no path.
	Document string         `mapstructure:"document" yaml:"document,omitempty"`
	Tree     TreeConfig     `mapstructure:"tree" yaml:"tree"`
	Kernel   KernelConfig   `mapstructure:"kernel" yaml:"kernel"`
	Watch    WatchConfig    `mapstructure:"watch" yaml:"watch"`
	Tracing  tracing.Config `mapstructure:"tracing" yaml:"tracing"`
	Log      LogConfig      `mapstructure:"log" yaml:"log"`
}

// TreeConfig configures the positioning tree.
type TreeConfig struct {
	// ParentPolicy is "lenient" (default) or "strict".
	ParentPolicy string `mapstructure:"parent_policy" yaml:"parent_policy"`
}

// Policy returns the parsed parent policy. Call Validate first.
func (t TreeConfig) Policy() positioning.ParentPolicy {
	p, err := positioning.ParseParentPolicy(t.ParentPolicy)
	if err != nil {
		return positioning.Lenient
	}
	return p
}

// KernelConfig configures the shape cache in front of the geometry kernel.
type KernelConfig struct {
	Cache           bool          `mapstructure:"cache" yaml:"cache"`
	CacheTTL        time.Duration `mapstructure:"cache_ttl" yaml:"cache_ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval" yaml:"cleanup_interval"`
}

// WatchConfig configures the document watcher.
type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce" yaml:"debounce"`
}

// LogConfig configures debug logging.
type LogConfig struct {
	// Level is the minimum level written: debug, info, warn or error.
	Level string `mapstructure:"level" yaml:"level"`
	// File is the debug log path.
	File string `mapstructure:"file" yaml:"file"`
}

// DefaultTracesFilePath returns the default path for trace file export.
// Returns ~/.config/airframe/traces/traces.jsonl or empty string if home dir unavailable.
func DefaultTracesFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "airframe", "traces", "traces.jsonl")
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		Tree: TreeConfig{
			ParentPolicy: string(positioning.Lenient),
		},
		Kernel: KernelConfig{
			Cache:           true,
			CacheTTL:        10 * time.Minute,
			CleanupInterval: 30 * time.Minute,
		},
		Watch: WatchConfig{
			Debounce: 500 * time.Millisecond,
		},
		Tracing: tracing.DefaultConfig(),
		Log: LogConfig{
			Level: "debug",
			File:  "debug.log",
		},
	}
}

// Validate checks the configuration for errors.
// Returns nil if the configuration is valid (empty values use defaults).
func Validate(c Config) error {
	if _, err := positioning.ParseParentPolicy(c.Tree.ParentPolicy); err != nil {
		return fmt.Errorf("tree.parent_policy: %w", err)
	}
	if err := ValidateKernel(c.Kernel); err != nil {
		return err
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative, got %v", c.Watch.Debounce)
	}
	if err := ValidateTracing(c.Tracing); err != nil {
		return err
	}
	switch c.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be \"debug\", \"info\", \"warn\", or \"error\", got %q", c.Log.Level)
	}
	return nil
}

// ValidateKernel checks kernel cache configuration for errors.
func ValidateKernel(k KernelConfig) error {
	if k.CacheTTL < 0 {
		return fmt.Errorf("kernel.cache_ttl must not be negative, got %v", k.CacheTTL)
	}
	if k.CleanupInterval < 0 {
		return fmt.Errorf("kernel.cleanup_interval must not be negative, got %v", k.CleanupInterval)
	}
	return nil
}

// ValidateTracing checks tracing configuration for errors.
// Returns nil if the configuration is valid (empty values use defaults).
func ValidateTracing(t tracing.Config) error {
	if t.SampleRate < 0.0 || t.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", t.SampleRate)
	}

	if t.Exporter != "" {
		switch t.Exporter {
		case "none", "file", "stdout", "otlp":
		default:
			return fmt.Errorf("tracing.exporter must be \"none\", \"file\", \"stdout\", or \"otlp\", got %q", t.Exporter)
		}
	}

	// Only validate path requirements when tracing is enabled
	if t.Enabled {
		if t.Exporter == "file" && t.FilePath == "" {
			return fmt.Errorf("tracing.file_path is required when exporter is \"file\"")
		}
		if t.Exporter == "otlp" && t.OTLPEndpoint == "" {
			return fmt.Errorf("tracing.otlp_endpoint is required when exporter is \"otlp\"")
		}
	}
	return nil
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# Airframe Configuration

# Model document used when no path is given on the command line
# document: ./models/demo.yaml

# Positioning tree
tree:
  # How components with a missing or cyclic parent are handled:
  #   lenient - the component becomes a root and the error is recorded (default)
  #   strict  - queries on the tree fail until the parent exists
  parent_policy: lenient

# Shape cache in front of the geometry kernel.
# Shapes are keyed by a fingerprint of their inputs, so identical lofts and
# cuts are built once per TTL even across reloads.
kernel:
  cache: true
  cache_ttl: 10m
  cleanup_interval: 30m

# Document watcher ('airframe watch')
watch:
  debounce: 500ms   # Wait for writes to settle before reloading

# Tracing of tree rebuilds, kernel calls and document loads
# tracing:
#   enabled: false                 # Enable/disable tracing (default: false)
#   exporter: file                 # Export backend: none, file, stdout, otlp (default: file)
#   file_path: ~/.config/airframe/traces/traces.jsonl  # Output file for file exporter
#   otlp_endpoint: localhost:4317  # OTLP collector endpoint (for otlp exporter)
#   sample_rate: 1.0               # Trace sampling rate 0.0-1.0 (default: 1.0)

# Debug logging (enabled with --debug or AIRFRAME_DEBUG=1)
log:
  level: debug      # debug, info, warn or error
  file: debug.log
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
