// Package config loads engine settings from YAML with GOSEAL_* environment
// overrides and projects them onto goseal.Options.
package config

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/reoring/goseal"
	"github.com/reoring/goseal/i18n"
)

// Environment variables that override file values.
const (
	EnvMaxDepth      = "GOSEAL_MAX_DEPTH"
	EnvMaxBytes      = "GOSEAL_MAX_BYTES"
	EnvMaxObjects    = "GOSEAL_MAX_OBJECTS"
	EnvDuplicateKeys = "GOSEAL_DUPLICATE_KEYS"
	EnvFormat        = "GOSEAL_FORMAT"
	EnvJSONDriver    = "GOSEAL_JSON_DRIVER"
	EnvLanguage      = "GOSEAL_LANGUAGE"
	EnvLogLevel      = "GOSEAL_LOG_LEVEL"
	EnvLogFormat     = "GOSEAL_LOG_FORMAT"
)

// Config is the root configuration structure.
type Config struct {
	Limits     LimitsConfig  `yaml:"limits"`
	Format     string        `yaml:"format"`      // json, json-pretty, xml, xml-pretty
	JSONDriver string        `yaml:"json_driver"` // go-json or encoding/json
	Language   string        `yaml:"language"`    // en or ja
	Logging    LoggingConfig `yaml:"logging"`
}

// LimitsConfig bounds what a single read may consume. Zero means unbounded.
type LimitsConfig struct {
	MaxDepth      int    `yaml:"max_depth"`
	MaxBytes      int64  `yaml:"max_bytes"`
	MaxObjects    int    `yaml:"max_objects"`
	DuplicateKeys string `yaml:"duplicate_keys"` // ignore, warn or error
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // trace, debug, info, warn, error, disabled
	Format string `yaml:"format"` // json or console
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	setDefaults(cfg)
	return cfg
}

// Load reads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML, applies environment overrides and defaults, and
// validates the result.
func Parse(data []byte) (*Config, error) {
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

// LoadWithFallback loads path when it exists and otherwise starts from
// Default with environment overrides.
func LoadWithFallback(path string) (*Config, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}
	return Parse(nil)
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv(EnvMaxDepth); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Limits.MaxDepth = n
		}
	}
	if v := os.Getenv(EnvMaxBytes); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Limits.MaxBytes = n
		}
	}
	if v := os.Getenv(EnvMaxObjects); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Limits.MaxObjects = n
		}
	}
	if v := os.Getenv(EnvDuplicateKeys); v != "" {
		cfg.Limits.DuplicateKeys = v
	}
	if v := os.Getenv(EnvFormat); v != "" {
		cfg.Format = v
	}
	if v := os.Getenv(EnvJSONDriver); v != "" {
		cfg.JSONDriver = v
	}
	if v := os.Getenv(EnvLanguage); v != "" {
		cfg.Language = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		cfg.Logging.Format = v
	}
}

func setDefaults(cfg *Config) {
	if cfg.Limits.DuplicateKeys == "" {
		cfg.Limits.DuplicateKeys = "ignore"
	}
	if cfg.Format == "" {
		cfg.Format = "json"
	}
	if cfg.JSONDriver == "" {
		cfg.JSONDriver = goseal.GoJSONDriver().Name()
	}
	if cfg.Language == "" {
		cfg.Language = "en"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "warn"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Limits.MaxDepth < 0 {
		return fmt.Errorf("limits.max_depth must not be negative")
	}
	if c.Limits.MaxBytes < 0 {
		return fmt.Errorf("limits.max_bytes must not be negative")
	}
	if c.Limits.MaxObjects < 0 {
		return fmt.Errorf("limits.max_objects must not be negative")
	}
	if _, err := parseSeverity(c.Limits.DuplicateKeys); err != nil {
		return err
	}
	if _, err := goseal.ParseFormat(c.Format); err != nil {
		return fmt.Errorf("format: %w", err)
	}
	if _, ok := goseal.JSONDriverByName(c.JSONDriver); !ok {
		return fmt.Errorf("unknown json_driver %q", c.JSONDriver)
	}
	switch c.Language {
	case "en", "ja":
	default:
		return fmt.Errorf("unsupported language %q", c.Language)
	}
	if _, ok := parseLevel(c.Logging.Level); !ok {
		return fmt.Errorf("unknown logging.level %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

// OutputFormat returns the configured default write format.
func (c *Config) OutputFormat() goseal.Format {
	f, _ := goseal.ParseFormat(c.Format)
	return f
}

// Options projects the configuration onto engine options. reg may be nil.
func (c *Config) Options(reg *goseal.Registry, logger *zerolog.Logger) goseal.Options {
	sev, _ := parseSeverity(c.Limits.DuplicateKeys)
	drv, _ := goseal.JSONDriverByName(c.JSONDriver)
	return goseal.Options{
		Registry:       reg,
		Logger:         logger,
		JSONDriver:     drv,
		MaxDepth:       c.Limits.MaxDepth,
		MaxBytes:       c.Limits.MaxBytes,
		MaxObjects:     c.Limits.MaxObjects,
		OnDuplicateKey: sev,
	}
}

// Logger builds a zerolog logger writing to w.
func (c *Config) Logger(w io.Writer) zerolog.Logger {
	if c.Logging.Format == "console" {
		w = zerolog.ConsoleWriter{Out: w, NoColor: true}
	}
	lvl, _ := parseLevel(c.Logging.Level)
	return zerolog.New(w).Level(lvl).With().Timestamp().Str("component", "goseal").Logger()
}

// Apply installs the process-wide pieces of the configuration: the package
// logger and the message language.
func (c *Config) Apply(w io.Writer) {
	goseal.SetLogger(c.Logger(w))
	i18n.SetLanguage(c.Language)
}

func parseSeverity(raw string) (goseal.Severity, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "ignore", "":
		return goseal.Ignore, nil
	case "warn":
		return goseal.Warn, nil
	case "error":
		return goseal.Error, nil
	}
	return goseal.Ignore, fmt.Errorf("limits.duplicate_keys must be ignore, warn or error, got %q", raw)
}

func parseLevel(raw string) (zerolog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "trace":
		return zerolog.TraceLevel, true
	case "debug":
		return zerolog.DebugLevel, true
	case "info":
		return zerolog.InfoLevel, true
	case "warn", "warning":
		return zerolog.WarnLevel, true
	case "error":
		return zerolog.ErrorLevel, true
	case "disabled", "off":
		return zerolog.Disabled, true
	}
	return zerolog.NoLevel, false
}
