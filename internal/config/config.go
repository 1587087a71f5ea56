// Package config provides configuration management for taxograph.
//
// The config system separates tuning (config file) from data (database):
// - Config file persists server and engine settings
// - Database caches the imported taxonomy and can be reset
//
// Config file locations (priority order):
//  1. $TAXOGRAPH_CONFIG
//  2. ./taxograph.yaml
//  3. ~/.config/taxograph/config.yaml
//  4. /etc/taxograph/config.yaml
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load finds and loads the config file, or returns defaults if none found
func Load() (*Config, string, error) {
	path := FindConfigPath()

	if path == "" {
		// No config found - return defaults
		return DefaultConfig(), "", nil
	}

	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, path, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()

	return &cfg, path, nil
}

// Save writes config to the specified path
func (c *Config) Save(path string) error {
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultConfig returns sensible defaults for a new installation
func DefaultConfig() *Config {
	return &Config{
		Version:  1,
		Server:   ServerConfig{Addr: ":8090"},
		Database: DatabaseConfig{Path: "./taxograph.db"},
		Dataset:  DatasetConfig{},
		Engine:   EngineConfig{Width: 1280, Height: 720, FrameRate: 30},
	}
}

// applyDefaults fills in missing values with defaults
func (c *Config) applyDefaults() {
	if c.Version == 0 {
		c.Version = 1
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8090"
	}
	if c.Database.Path == "" {
		c.Database.Path = "./taxograph.db"
	}
	if c.Engine.Width == 0 {
		c.Engine.Width = 1280
	}
	if c.Engine.Height == 0 {
		c.Engine.Height = 720
	}
	if c.Engine.FrameRate == 0 {
		c.Engine.FrameRate = 30
	}
}

// Summary returns a human-readable config summary
func (c *Config) Summary() string {
	summary := fmt.Sprintf("Server: %s, Database: %s\n", c.Server.Addr, c.Database.Path)
	if c.Dataset.Path != "" {
		summary += fmt.Sprintf("Dataset: %s (watch: %t)\n", c.Dataset.Path, c.Dataset.Watch)
	}
	summary += fmt.Sprintf("Engine: %.0fx%.0f @ %d fps",
		c.Engine.Width, c.Engine.Height, c.Engine.FrameRate)

	return summary
}
