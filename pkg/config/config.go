// Package config loads evaluator settings from a YAML file.
//
//	max_depth: 2000
//	timeout: 5s
//	log_level: debug
//	legacy:
//	  none_instead_of_unset: true
//	extensions:
//	  - ./ext/math.wasm
//
// Unknown keys are rejected so typos surface as errors instead of being
// silently ignored.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sandrolain/gorebol/pkg/evaluator"
)

// Config mirrors the evaluator options that make sense in a file.
type Config struct {
	MaxDepth    int           `yaml:"max_depth"`
	Timeout     time.Duration `yaml:"timeout"`
	Debug       bool          `yaml:"debug"`
	LogLevel    string        `yaml:"log_level"`
	Caching     bool          `yaml:"caching"`
	CacheSize   int           `yaml:"cache_size"`
	Concurrency *bool         `yaml:"concurrency"`
	Legacy      Legacy        `yaml:"legacy"`
	// Extensions lists WebAssembly modules to load before running scripts.
	Extensions []string `yaml:"extensions"`

	// Path is the file the configuration was read from, if any.
	Path string `yaml:"-"`
}

// Legacy holds the compatibility switches.
type Legacy struct {
	NoneInsteadOfUnset  bool `yaml:"none_instead_of_unset"`
	NoSwitchEvals       bool `yaml:"no_switch_evals"`
	NoSwitchFallthrough bool `yaml:"no_switch_fallthrough"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		MaxDepth: 10000,
		Timeout:  30 * time.Second,
		LogLevel: "info",
	}
}

// Load reads and validates a configuration file.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()

	cfg, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	cfg.Path = path
	return cfg, nil
}

// Parse decodes a configuration over the defaults. An empty document yields
// the defaults.
func Parse(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var issues []string
	if c.MaxDepth < 0 {
		issues = append(issues, "max_depth must not be negative")
	}
	if c.Timeout < 0 {
		issues = append(issues, "timeout must not be negative")
	}
	if c.CacheSize < 0 {
		issues = append(issues, "cache_size must not be negative")
	}
	if _, err := c.Level(); err != nil {
		issues = append(issues, err.Error())
	}
	for i, p := range c.Extensions {
		if strings.TrimSpace(p) == "" {
			issues = append(issues, fmt.Sprintf("extensions[%d] must be a non-empty path", i))
		}
	}
	if len(issues) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(issues, "; "))
	}
	return nil
}

// Level returns the slog level named by log_level. Debug forces debug.
func (c *Config) Level() (slog.Level, error) {
	if c.Debug {
		return slog.LevelDebug, nil
	}
	var lvl slog.Level
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log_level %q is not a level", c.LogLevel)
	}
	return lvl, nil
}

// Options converts the configuration to evaluator options.
func (c *Config) Options() []evaluator.EvalOption {
	opts := []evaluator.EvalOption{
		evaluator.WithMaxDepth(c.MaxDepth),
		evaluator.WithDebug(c.Debug),
		evaluator.WithLegacy(evaluator.Legacy{
			NoneInsteadOfUnset:  c.Legacy.NoneInsteadOfUnset,
			NoSwitchEvals:       c.Legacy.NoSwitchEvals,
			NoSwitchFallthrough: c.Legacy.NoSwitchFallthrough,
		}),
	}
	if c.Timeout > 0 {
		opts = append(opts, evaluator.WithTimeout(c.Timeout))
	}
	if c.Caching {
		opts = append(opts, evaluator.WithCaching(true))
		if c.CacheSize > 0 {
			opts = append(opts, evaluator.WithCacheSize(c.CacheSize))
		}
	}
	if c.Concurrency != nil {
		opts = append(opts, evaluator.WithConcurrency(*c.Concurrency))
	}
	return opts
}
