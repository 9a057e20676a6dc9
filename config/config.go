// Package config handles configuration loading and management for scopemap.
// Configuration is loaded from:
// 1. ~/.config/scopemap/config.yaml (user-level)
// 2. .scopemap/config.yaml (project-level override)
// 3. Environment variables (highest priority)
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Format is an output format for scope dumps.
type Format string

const (
	FormatTree Format = "tree"
	FormatJSON Format = "json"
	FormatDAP  Format = "dap"
)

// OutputConfig holds rendering settings.
type OutputConfig struct {
	// Format is the default output format (tree, json, dap)
	Format Format `yaml:"format"`

	// Width caps rendered line width; 0 auto-detects the terminal
	Width int `yaml:"width"`
}

// IndexConfig holds settings for the persisted scope index.
type IndexConfig struct {
	// Dir is the index directory (default: .scopemap)
	Dir string `yaml:"dir"`
}

// CacheConfig holds settings for rendered-output caching.
type CacheConfig struct {
	// Enabled controls whether caching is active
	Enabled bool `yaml:"enabled"`

	// Dir is the cache directory (default: .scopemap/cache)
	Dir string `yaml:"dir"`

	// TTLDays is the cache TTL in days (0 = no expiry)
	TTLDays int `yaml:"ttl_days"`
}

// Config is the main configuration structure.
type Config struct {
	// Output holds rendering settings
	Output OutputConfig `yaml:"output"`

	// Index holds scope index settings
	Index IndexConfig `yaml:"index"`

	// Cache holds caching settings
	Cache CacheConfig `yaml:"cache"`

	// Debug enables verbose logging
	Debug bool `yaml:"debug"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Output: OutputConfig{
			Format: FormatTree,
			Width:  0,
		},
		Index: IndexConfig{
			Dir: ".scopemap",
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     filepath.Join(".scopemap", "cache"),
			TTLDays: 0,
		},
		Debug: false,
	}
}

// Load reads configuration from standard locations and merges with defaults.
// Priority (highest to lowest):
// 1. Environment variables
// 2. Project config (.scopemap/config.yaml)
// 3. User config (~/.config/scopemap/config.yaml)
// 4. Defaults
func Load() (*Config, error) {
	cfg := DefaultConfig()

	userPath, err := userConfigPath()
	if err == nil {
		if data, err := os.ReadFile(userPath); err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing user config %s: %w", userPath, err)
			}
		}
	}

	projectPath := filepath.Join(".scopemap", "config.yaml")
	if data, err := os.ReadFile(projectPath); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing project config %s: %w", projectPath, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// LoadFromPath reads configuration from a specific file path.
func LoadFromPath(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	var errs []string

	switch c.Output.Format {
	case FormatTree, FormatJSON, FormatDAP:
	case "":
		// Will use default
	default:
		errs = append(errs, fmt.Sprintf("unknown output format: %s", c.Output.Format))
	}

	if c.Output.Width < 0 {
		errs = append(errs, "output width must be non-negative")
	}
	if c.Cache.TTLDays < 0 {
		errs = append(errs, "cache ttl_days must be non-negative")
	}
	if c.Index.Dir == "" {
		errs = append(errs, "index dir is required")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

// CacheTTL returns the cache TTL as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLDays) * 24 * time.Hour
}

// applyEnvOverrides applies SCOPEMAP_* environment variables on top of
// the loaded configuration.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SCOPEMAP_FORMAT"); v != "" {
		cfg.Output.Format = Format(v)
	}
	if v := os.Getenv("SCOPEMAP_INDEX_DIR"); v != "" {
		cfg.Index.Dir = v
	}
	if v := os.Getenv("SCOPEMAP_CACHE_DIR"); v != "" {
		cfg.Cache.Dir = v
	}
	if v := os.Getenv("SCOPEMAP_CACHE_ENABLED"); v != "" {
		cfg.Cache.Enabled = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("SCOPEMAP_DEBUG"); v != "" {
		cfg.Debug = v == "1" || strings.EqualFold(v, "true")
	}
}

// userConfigPath returns the path to the user configuration file.
func userConfigPath() (string, error) {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "scopemap", "config.yaml"), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "scopemap", "config.yaml"), nil
}
