// Package config provides configuration types and defaults for iconkit.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/zjrosen/iconkit/internal/log"
)

// Config holds all configuration options for iconkit.
type Config struct {
	// DefaultNamespace qualifies bare references ("home" -> "ion:home").
	DefaultNamespace string `mapstructure:"default_namespace"`

	// AutoDiscover registers the packs listed in Packs at start-up.
	AutoDiscover bool `mapstructure:"auto_discover"`

	// Packs lists bundled pack ids to activate, in order.
	Packs []string `mapstructure:"packs"`

	// IconDirs maps a namespace to a directory of <name>.svg files. These
	// loaders are registered before packs and therefore shadow them.
	IconDirs map[string]string `mapstructure:"icon_dirs"`

	// Aliases maps alias references to "namespace:name" targets.
	Aliases map[string]string `mapstructure:"aliases"`

	// MemoryCacheSize bounds the in-memory LRU. Zero disables it.
	MemoryCacheSize int `mapstructure:"memory_cache_size"`

	// MissingIconSilent renders unknown icons as "" instead of failing.
	MissingIconSilent bool `mapstructure:"missing_icon_silent"`

	DefaultSize  string `mapstructure:"default_size"`
	DefaultClass string `mapstructure:"default_class"`
	AriaHidden   bool   `mapstructure:"aria_hidden"`

	SecondTier SecondTierConfig `mapstructure:"second_tier"`
	Watch      WatchConfig      `mapstructure:"watch"`
	Scan       ScanConfig       `mapstructure:"scan"`
	Collect    CollectConfig    `mapstructure:"collect"`
	Tracing    TracingConfig    `mapstructure:"tracing"`
	Flags      map[string]bool  `mapstructure:"flags"`
}

// Second-tier backends.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// SecondTierConfig configures the optional cache behind the LRU.
type SecondTierConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Backend string        `mapstructure:"backend"` // "memory" (default) or "sqlite"
	Timeout time.Duration `mapstructure:"timeout"` // entry lifetime
	Path    string        `mapstructure:"path"`    // database file for the sqlite backend
	Sliding bool          `mapstructure:"sliding"` // hits extend the entry lifetime
}

// WatchConfig configures reloading of IconDirs when files change.
type WatchConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Debounce time.Duration `mapstructure:"debounce"`
}

// ScanConfig configures the template scanner.
type ScanConfig struct {
	Dirs       []string `mapstructure:"dirs"`
	Extensions []string `mapstructure:"extensions"`
}

// CollectConfig configures `iconkit collect`.
type CollectConfig struct {
	OutputDir string `mapstructure:"output_dir"`
}

// TracingConfig holds distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether tracing is active (default: false).
	Enabled bool `mapstructure:"enabled"`

	// Exporter: "none", "file", "stdout", or "otlp" (default: "file").
	Exporter string `mapstructure:"exporter"`

	// FilePath is the JSONL output for the file exporter.
	FilePath string `mapstructure:"file_path"`

	// OTLPEndpoint is the collector address for the otlp exporter.
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`

	// SampleRate is the fraction of traces sampled, 0.0 to 1.0.
	SampleRate float64 `mapstructure:"sample_rate"`
}

// DefaultPacks lists every bundled pack in activation order.
func DefaultPacks() []string {
	return []string{"ionicons", "heroicons", "material", "tabler", "lucide", "fontawesome"}
}

// DefaultScanExtensions are the template file types scanned for references.
func DefaultScanExtensions() []string {
	return []string{".html", ".txt", ".tmpl", ".gohtml"}
}

// DefaultTracesFilePath returns ~/.config/iconkit/traces/traces.jsonl.
func DefaultTracesFilePath() string {
	return defaultUserPath("traces", "traces.jsonl")
}

// DefaultCachePath returns ~/.config/iconkit/cache/icons.db.
func DefaultCachePath() string {
	return defaultUserPath("cache", "icons.db")
}

func defaultUserPath(parts ...string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(append([]string{home, ".config", "iconkit"}, parts...)...)
}

// Defaults returns the default configuration.
func Defaults() Config {
	return Config{
		DefaultNamespace:  "ion",
		AutoDiscover:      true,
		Packs:             DefaultPacks(),
		IconDirs:          map[string]string{},
		Aliases:           map[string]string{},
		MemoryCacheSize:   1000,
		MissingIconSilent: true,
		AriaHidden:        true,
		SecondTier: SecondTierConfig{
			Enabled: false,
			Backend: BackendMemory,
			Timeout: 24 * time.Hour,
			Path:    "", // Derived from config dir at runtime
		},
		Watch: WatchConfig{
			Enabled:  false,
			Debounce: 100 * time.Millisecond,
		},
		Scan: ScanConfig{
			Dirs:       []string{"templates"},
			Extensions: DefaultScanExtensions(),
		},
		Collect: CollectConfig{
			OutputDir: "static/icons",
		},
		Tracing: TracingConfig{
			Enabled:      false,
			Exporter:     "file",
			FilePath:     "", // Derived from config dir at runtime
			OTLPEndpoint: "localhost:4317",
			SampleRate:   1.0,
		},
	}
}

// Validate checks the configuration for values the engine cannot use.
func (c Config) Validate() error {
	if c.DefaultNamespace == "" {
		return fmt.Errorf("default_namespace is required")
	}
	if strings.Contains(c.DefaultNamespace, ":") {
		return fmt.Errorf("default_namespace must not contain \":\", got %q", c.DefaultNamespace)
	}
	if c.MemoryCacheSize < 0 {
		return fmt.Errorf("memory_cache_size must be >= 0, got %d", c.MemoryCacheSize)
	}
	for ns, dir := range c.IconDirs {
		if ns == "" || strings.Contains(ns, ":") {
			return fmt.Errorf("icon_dirs: invalid namespace %q", ns)
		}
		if dir == "" {
			return fmt.Errorf("icon_dirs.%s: path is required", ns)
		}
	}
	for alias, target := range c.Aliases {
		if alias == "" || target == "" {
			return fmt.Errorf("aliases: empty alias or target (%q -> %q)", alias, target)
		}
	}
	if err := ValidateSecondTier(c.SecondTier); err != nil {
		return err
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must be >= 0, got %s", c.Watch.Debounce)
	}
	for _, ext := range c.Scan.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("scan.extensions entries must start with \".\", got %q", ext)
		}
	}
	return ValidateTracing(c.Tracing)
}

// ValidateSecondTier validates the second-tier cache configuration.
func ValidateSecondTier(st SecondTierConfig) error {
	switch st.Backend {
	case "", BackendMemory, BackendSQLite:
	default:
		return fmt.Errorf("second_tier.backend must be %q or %q, got %q", BackendMemory, BackendSQLite, st.Backend)
	}
	if st.Timeout < 0 {
		return fmt.Errorf("second_tier.timeout must be >= 0, got %s", st.Timeout)
	}
	return nil
}

// ValidateTracing validates tracing configuration.
func ValidateTracing(tracing TracingConfig) error {
	if tracing.SampleRate < 0.0 || tracing.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", tracing.SampleRate)
	}

	if tracing.Exporter != "" {
		switch tracing.Exporter {
		case "none", "file", "stdout", "otlp":
		default:
			return fmt.Errorf("tracing.exporter must be \"none\", \"file\", \"stdout\", or \"otlp\", got %q", tracing.Exporter)
		}
	}

	if tracing.Enabled && tracing.Exporter == "otlp" && tracing.OTLPEndpoint == "" {
		return fmt.Errorf("tracing.otlp_endpoint is required when exporter is \"otlp\"")
	}

	return nil
}

// IconDirNamespaces returns the IconDirs namespaces in sorted order so
// directory loaders register deterministically.
func (c Config) IconDirNamespaces() []string {
	keys := make([]string, 0, len(c.IconDirs))
	for ns := range c.IconDirs {
		keys = append(keys, ns)
	}
	slices.Sort(keys)
	return keys
}

// DefaultConfigTemplate returns the commented YAML written by
// WriteDefaultConfig.
func DefaultConfigTemplate() string {
	return `# iconkit configuration

# Namespace used for bare references ("home" resolves as "ion:home")
default_namespace: ion

# Register the bundled packs listed below at start-up
auto_discover: true
packs:
  - ionicons
  - heroicons
  - material
  - tabler
  - lucide
  - fontawesome

# Directories of <name>.svg files, keyed by namespace.
# These take precedence over bundled packs.
# icon_dirs:
#   myapp: ./static/icons/myapp

# Short names for frequently used icons
# aliases:
#   edit: hero:pencil
#   delete: hero:trash

# Maximum icons kept in the in-memory LRU (0 disables it)
memory_cache_size: 1000

# Render unknown icons as empty output instead of failing
missing_icon_silent: true

# Rendering defaults
# default_size: "24"
# default_class: icon
aria_hidden: true

# Optional cache behind the in-memory LRU
second_tier:
  enabled: false
  backend: memory     # memory or sqlite
  timeout: 24h
  sliding: false      # hits extend the lifetime
  # path: ~/.config/iconkit/cache/icons.db

# Reload icon_dirs when files change
watch:
  enabled: false
  debounce: 100ms

# Template scanning for "iconkit scan" and "iconkit collect"
scan:
  dirs:
    - templates
  extensions: [".html", ".txt", ".tmpl", ".gohtml"]

collect:
  output_dir: static/icons

tracing:
  enabled: false
  exporter: file      # none, file, stdout, otlp
  sample_rate: 1.0

# flags:
#   invalidate-on-loader-registration: false
`
}

// WriteDefaultConfig creates a config file with default settings at the given path.
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
