package config

import (
	"fmt"
	"io"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// SetDefaults registers every default on v, so keys missing from the file
// and the environment still unmarshal to Defaults().
func SetDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("document", d.Document)
	v.SetDefault("tree.parent_policy", d.Tree.ParentPolicy)
	v.SetDefault("kernel.cache", d.Kernel.Cache)
	v.SetDefault("kernel.cache_ttl", d.Kernel.CacheTTL)
	v.SetDefault("kernel.cleanup_interval", d.Kernel.CleanupInterval)
	v.SetDefault("watch.debounce", d.Watch.Debounce)
	v.SetDefault("tracing.enabled", d.Tracing.Enabled)
	v.SetDefault("tracing.exporter", d.Tracing.Exporter)
	v.SetDefault("tracing.file_path", DefaultTracesFilePath())
	v.SetDefault("tracing.otlp_endpoint", d.Tracing.OTLPEndpoint)
	v.SetDefault("tracing.sample_rate", d.Tracing.SampleRate)
	v.SetDefault("tracing.service_name", d.Tracing.ServiceName)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.file", d.Log.File)
}

// Load unmarshals and validates the configuration held by v.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Encode writes cfg as YAML in the layout of the config file.
func Encode(w io.Writer, cfg Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return enc.Close()
}
