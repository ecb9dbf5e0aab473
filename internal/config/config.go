// Package config loads and saves the per-project coordination settings
// under the state directory.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const configFileName = "config.json"

// CurrentVersion is the schema version written by this build.
const CurrentVersion = 1

// Config holds the tunables for the coordination core. Every field has a
// default so a fresh project works without ever writing this file.
type Config struct {
	Version int `json:"version"`

	LockTimeoutSeconds      int  `json:"lock_timeout_seconds"`
	CleanupThresholdSeconds int  `json:"cleanup_threshold_seconds"`
	MaxConcurrent           int  `json:"max_concurrent"`
	CoordinatorPort         int  `json:"coordinator_port"`
	AutoCompleteParent      bool `json:"auto_complete_parent"`
	ArchiveAfterDays        int  `json:"archive_after_days"`
}

// Default returns the configuration a fresh project starts with.
func Default() *Config {
	return &Config{
		Version:                 CurrentVersion,
		LockTimeoutSeconds:      10,
		CleanupThresholdSeconds: 180,
		MaxConcurrent:           1,
		CoordinatorPort:         0,
		AutoCompleteParent:      false,
		ArchiveAfterDays:        30,
	}
}

// Load reads config.json from stateDir, returning defaults if it does not
// exist.
func Load(stateDir string) (*Config, error) {
	path := filepath.Join(stateDir, configFileName)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration to stateDir, creating it if necessary.
func (c *Config) Save(stateDir string) error {
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	path := filepath.Join(stateDir, configFileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
