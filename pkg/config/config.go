// Package config provides configuration loading and management for patchwiener.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Processing parameters
	Processing struct {
		// NumCores specifies how many CPU cores to use for parallel restoration
		NumCores int `yaml:"numCores"`

		// PatchSize is the width/height of the square patches the filter
		// is learned for and applied to
		PatchSize int `yaml:"patchSize"`

		// Seed initializes the degradation model's random source so
		// training runs are reproducible
		Seed uint64 `yaml:"seed"`
	} `yaml:"processing"`

	// Degradation model parameters
	Degradation struct {
		// KernelSize is the width/height of the Gaussian blur kernel (odd)
		KernelSize int `yaml:"kernelSize"`

		// KernelSigma is the standard deviation of the blur kernel in pixels
		KernelSigma float64 `yaml:"kernelSigma"`

		// MaxNoiseSigma bounds the per-draw noise standard deviation in
		// 8-bit intensity units
		MaxNoiseSigma float64 `yaml:"maxNoiseSigma"`
	} `yaml:"degradation"`

	// Filter estimation parameters
	Filter struct {
		// PeakThreshold is the filter peak magnitude above which training
		// is re-run with fresh noise
		PeakThreshold float64 `yaml:"peakThreshold"`

		// MaxRetries bounds the number of re-runs after the first attempt
		MaxRetries int `yaml:"maxRetries"`

		// Normalization selects how restored patches are rescaled:
		// "patch" divides each patch by its own maximum (the reference
		// behavior), "global" divides by GlobalRange
		Normalization string `yaml:"normalization"`

		// GlobalRange is the normalization reference used when
		// Normalization is "global"
		GlobalRange float64 `yaml:"globalRange"`
	} `yaml:"filter"`

	// Output parameters
	Output struct {
		// SaveIntermediaryResults determines whether to save intermediary processing results
		SaveIntermediaryResults bool `yaml:"saveIntermediaryResults"`

		// Verbose controls the level of logging output
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	// Set default processing parameters
	cfg.Processing.NumCores = runtime.NumCPU() // Use all available cores by default
	cfg.Processing.PatchSize = 64
	cfg.Processing.Seed = 1

	// Set default degradation parameters
	cfg.Degradation.KernelSize = 5
	cfg.Degradation.KernelSigma = 1.0
	cfg.Degradation.MaxNoiseSigma = 10.0

	// Set default filter parameters
	cfg.Filter.PeakThreshold = 100.0
	cfg.Filter.MaxRetries = 1
	cfg.Filter.Normalization = "patch"
	cfg.Filter.GlobalRange = 1.0

	// Set default output parameters
	cfg.Output.SaveIntermediaryResults = false
	cfg.Output.Verbose = true

	return cfg
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Parse YAML
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	// Marshal config to YAML
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	// Write to file
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}
