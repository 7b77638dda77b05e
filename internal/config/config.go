package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/SMD-Bioinformatics-Lund/eyrie/internal/paths"
	"gopkg.in/yaml.v3"
)

// DefaultSpikeSpecies are the control organisms flagged as spike-ins
// unless the tool configuration overrides them.
var DefaultSpikeSpecies = []string{
	"Agrobacterium tumefaciens",
	"Agrobacterium fabrum",
	"Salinibacter ruber",
	"Bacillus subtilis",
}

// Config represents the popup tool configuration
type Config struct {
	API     APIConfig     `yaml:"api"`
	Spike   SpikeConfig   `yaml:"spike"`
	Ledger  LedgerConfig  `yaml:"ledger"`  // Local upload history
	Metrics MetricsConfig `yaml:"metrics"` // Optional Prometheus textfile
}

// APIConfig contains tracking service settings
type APIConfig struct {
	URL            string `yaml:"url"`
	Username       string `yaml:"username"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// SpikeConfig lists the spike-in control species
type SpikeConfig struct {
	Species []string `yaml:"species"`
}

// LedgerConfig contains upload ledger settings
type LedgerConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// MetricsConfig contains metrics export settings
type MetricsConfig struct {
	Textfile string `yaml:"textfile"` // node_exporter textfile collector target
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	species := make([]string, len(DefaultSpikeSpecies))
	copy(species, DefaultSpikeSpecies)

	return &Config{
		API: APIConfig{
			URL:            "http://localhost:8000/api",
			TimeoutSeconds: 30,
		},
		Spike: SpikeConfig{
			Species: species,
		},
		Ledger: LedgerConfig{
			Enabled: true,
			Path:    paths.GetLedgerPath(),
		},
	}
}

// Load loads configuration from a file
func Load(path string) (*Config, error) {
	// Start with defaults
	config := DefaultConfig()

	// Return defaults if file doesn't exist
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.Ledger.Path = expandPath(config.Ledger.Path)
	config.Metrics.Textfile = expandPath(config.Metrics.Textfile)

	if config.API.TimeoutSeconds <= 0 {
		config.API.TimeoutSeconds = 30
	}
	if len(config.Spike.Species) == 0 {
		config.Spike.Species = append([]string(nil), DefaultSpikeSpecies...)
	}

	return config, nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Timeout returns the per-request timeout for tracking service calls
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}

// expandPath expands ~ to home directory
func expandPath(path string) string {
	if len(path) == 0 {
		return path
	}

	if path[0] == '~' {
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, path[1:])
	}

	return path
}
