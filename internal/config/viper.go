package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment overrides (ICONKIT_MEMORY_CACHE_SIZE).
const EnvPrefix = "ICONKIT"

// SetDefaults registers every default with v so environment variables and
// partial config files merge over them.
func SetDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("default_namespace", d.DefaultNamespace)
	v.SetDefault("auto_discover", d.AutoDiscover)
	v.SetDefault("packs", d.Packs)
	v.SetDefault("icon_dirs", d.IconDirs)
	v.SetDefault("aliases", d.Aliases)
	v.SetDefault("memory_cache_size", d.MemoryCacheSize)
	v.SetDefault("missing_icon_silent", d.MissingIconSilent)
	v.SetDefault("default_size", d.DefaultSize)
	v.SetDefault("default_class", d.DefaultClass)
	v.SetDefault("aria_hidden", d.AriaHidden)
	v.SetDefault("second_tier.enabled", d.SecondTier.Enabled)
	v.SetDefault("second_tier.backend", d.SecondTier.Backend)
	v.SetDefault("second_tier.timeout", d.SecondTier.Timeout)
	v.SetDefault("second_tier.path", d.SecondTier.Path)
	v.SetDefault("second_tier.sliding", d.SecondTier.Sliding)
	v.SetDefault("watch.enabled", d.Watch.Enabled)
	v.SetDefault("watch.debounce", d.Watch.Debounce)
	v.SetDefault("scan.dirs", d.Scan.Dirs)
	v.SetDefault("scan.extensions", d.Scan.Extensions)
	v.SetDefault("collect.output_dir", d.Collect.OutputDir)
	v.SetDefault("tracing.enabled", d.Tracing.Enabled)
	v.SetDefault("tracing.exporter", d.Tracing.Exporter)
	v.SetDefault("tracing.file_path", d.Tracing.FilePath)
	v.SetDefault("tracing.otlp_endpoint", d.Tracing.OTLPEndpoint)
	v.SetDefault("tracing.sample_rate", d.Tracing.SampleRate)
}

// Load decodes v into a Config, fills runtime-derived paths and validates
// the result.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if cfg.Tracing.FilePath == "" {
		cfg.Tracing.FilePath = DefaultTracesFilePath()
	}
	if cfg.SecondTier.Path == "" {
		cfg.SecondTier.Path = DefaultCachePath()
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
