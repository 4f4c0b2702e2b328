// Package config manages application configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config holds the settings the sync engine is constructed with. It is
// assembled once at process start; the engine never re-reads configuration
// mid-run.
type Config struct {
	// OutputDir is the directory channel subdirectories are created under.
	OutputDir string
	// Concurrent is the number of downloads in flight per chunk.
	Concurrent int
	// Timeout is the per-request timeout for remote fetches.
	Timeout time.Duration
}

// fileConfig is the on-disk representation. Timeout is expressed in seconds.
// Only these three keys are recognized; anything else in the file is ignored.
type fileConfig struct {
	OutputDir  string `json:"outputDir"`
	Concurrent int    `json:"concurrent"`
	Timeout    int    `json:"timeout"`
}

// DefaultConfig returns configuration with safe defaults.
func DefaultConfig() *Config {
	return &Config{
		OutputDir:  ".",
		Concurrent: 5,
		Timeout:    30 * time.Second,
	}
}

// Load assembles configuration from the config file, environment variables,
// and defaults. Priority: env vars > config file > defaults. A missing config
// file is not an error.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	if err := cfg.loadFromFile(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	cfg.loadFromEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFromFile tries arena-dl.json in the current directory, then the
// user-level config under ~/.config.
func (c *Config) loadFromFile() error {
	paths := []string{
		"arena-dl.json",
		filepath.Join(os.Getenv("HOME"), ".config", "arena-dl", "config.json"),
	}

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return err
		}
		return c.apply(data, path)
	}
	return os.ErrNotExist
}

// apply merges file contents into the config.
func (c *Config) apply(data []byte, path string) error {
	var fc fileConfig
	if err := json.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	if fc.OutputDir != "" {
		c.OutputDir = fc.OutputDir
	}
	if fc.Concurrent > 0 {
		c.Concurrent = fc.Concurrent
	}
	if fc.Timeout > 0 {
		c.Timeout = time.Duration(fc.Timeout) * time.Second
	}
	return nil
}

// loadFromEnv overrides config with environment variables.
func (c *Config) loadFromEnv() {
	if v := os.Getenv("ARENADL_OUTPUT_DIR"); v != "" {
		c.OutputDir = v
	}
	if v := os.Getenv("ARENADL_CONCURRENT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Concurrent = n
		}
	}
	if v := os.Getenv("ARENADL_TIMEOUT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Timeout = time.Duration(n) * time.Second
		}
	}
}

// Validate checks that configuration values are valid and consistent.
func (c *Config) Validate() error {
	if c.OutputDir == "" {
		return fmt.Errorf("outputDir must not be empty")
	}
	if c.Concurrent < 1 {
		return fmt.Errorf("concurrent must be at least 1")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	return nil
}
