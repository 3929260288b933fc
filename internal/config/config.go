// Package config holds the settings shared by the formpreview commands.
//
// Values are resolved in order: built-in defaults, an optional YAML file,
// variables from .env files, then FORMPREVIEW_* environment variables.
// Command line flags are applied last by the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formpreview/pkg/dateformat"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "FORMPREVIEW_"

// Config is the full configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Preview   PreviewConfig   `yaml:"preview"`
	Sources   SourcesConfig   `yaml:"sources"`
	Locations LocationsConfig `yaml:"locations"`
	Logging   LoggingConfig   `yaml:"logging"`
	Theme     ThemeConfig     `yaml:"theme"`
}

// ServerConfig configures the HTTP preview service.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	BasePath        string        `yaml:"base_path"`
	SessionTTL      time.Duration `yaml:"session_ttl"`
	MaxSessions     int           `yaml:"max_sessions"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// PreviewConfig configures rendering.
type PreviewConfig struct {
	Deferral          time.Duration `yaml:"deferral"`
	DateLocale        string        `yaml:"date_locale"`
	DefaultDateFormat string        `yaml:"default_date_format"`
	RawValues         bool          `yaml:"raw_values"`
}

// SourcesConfig configures template and definition loading.
type SourcesConfig struct {
	AllowHTTP      bool          `yaml:"allow_http"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	Sanitize       bool          `yaml:"sanitize"`
}

// LocationsConfig configures the location lookup cache.
type LocationsConfig struct {
	CacheTTL  time.Duration `yaml:"cache_ttl"`
	CacheSize int           `yaml:"cache_size"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ThemeConfig selects the go-theme manifest supplying section colors.
// Manifest names an extra manifest file or directory registered next to the
// built-in themes. When every field is empty the default palette is used.
type ThemeConfig struct {
	Name     string `yaml:"name"`
	Variant  string `yaml:"variant"`
	Manifest string `yaml:"manifest"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            "127.0.0.1:8080",
			SessionTTL:      30 * time.Minute,
			MaxSessions:     1000,
			ShutdownTimeout: 10 * time.Second,
		},
		Preview: PreviewConfig{
			Deferral:          150 * time.Millisecond,
			DateLocale:        string(dateformat.LocaleEnglish),
			DefaultDateFormat: dateformat.DefaultLayout,
		},
		Sources: SourcesConfig{
			RequestTimeout: 10 * time.Second,
		},
		Locations: LocationsConfig{
			CacheTTL:  10 * time.Minute,
			CacheSize: 512,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads path over the defaults, loads dotenv files and applies
// environment overrides. An empty or missing path yields the defaults.
func Load(path string, dotenv ...string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("config: read %q: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("config: parse %q: %w", path, err)
			}
		}
	}

	if err := LoadDotEnv(dotenv...); err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

// LoadDotEnv loads the given .env files, skipping missing ones. Variables
// already present in the environment win.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("config: load %q: %w", p, err)
		}
	}
	return nil
}

// ApplyEnv overrides fields from FORMPREVIEW_* variables found by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	get := func(name string) (string, bool) {
		v, ok := lookup(EnvPrefix + name)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	if v, ok := get("ADDR"); ok {
		c.Server.Addr = v
	}
	if v, ok := get("BASE_PATH"); ok {
		c.Server.BasePath = v
	}
	if v, ok := get("LOG_LEVEL"); ok {
		c.Logging.Level = v
	}
	if v, ok := get("LOG_FORMAT"); ok {
		c.Logging.Format = v
	}
	if v, ok := get("DATE_LOCALE"); ok {
		c.Preview.DateLocale = v
	}
	if v, ok := get("THEME"); ok {
		c.Theme.Name = v
	}
	if v, ok := get("THEME_VARIANT"); ok {
		c.Theme.Variant = v
	}
	if v, ok := get("THEME_MANIFEST"); ok {
		c.Theme.Manifest = v
	}

	durations := []struct {
		name string
		dst  *time.Duration
	}{
		{"DEFERRAL", &c.Preview.Deferral},
		{"SESSION_TTL", &c.Server.SessionTTL},
		{"REQUEST_TIMEOUT", &c.Sources.RequestTimeout},
		{"LOCATION_CACHE_TTL", &c.Locations.CacheTTL},
	}
	for _, d := range durations {
		if v, ok := get(d.name); ok {
			parsed, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("config: %s%s: %w", EnvPrefix, d.name, err)
			}
			*d.dst = parsed
		}
	}

	flags := []struct {
		name string
		dst  *bool
	}{
		{"ALLOW_HTTP", &c.Sources.AllowHTTP},
		{"SANITIZE", &c.Sources.Sanitize},
		{"RAW_VALUES", &c.Preview.RawValues},
	}
	for _, f := range flags {
		if v, ok := get(f.name); ok {
			parsed, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("config: %s%s: %w", EnvPrefix, f.name, err)
			}
			*f.dst = parsed
		}
	}
	return nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Server.Addr) == "":
		return errors.New("config: server.addr is required")
	case c.Server.SessionTTL <= 0:
		return errors.New("config: server.session_ttl must be positive")
	case c.Server.MaxSessions < 0:
		return errors.New("config: server.max_sessions must not be negative")
	case c.Preview.Deferral < 0:
		return errors.New("config: preview.deferral must not be negative")
	case c.Sources.RequestTimeout < 0:
		return errors.New("config: sources.request_timeout must not be negative")
	}

	switch strings.ToLower(c.Preview.DateLocale) {
	case "", string(dateformat.LocaleEnglish), string(dateformat.LocaleThai):
	default:
		return fmt.Errorf("config: unsupported date locale %q", c.Preview.DateLocale)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "console", "json":
	default:
		return fmt.Errorf("config: unsupported log format %q", c.Logging.Format)
	}
	return nil
}
