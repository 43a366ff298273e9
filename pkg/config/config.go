// Package config provides configuration loading and management for the
// gradient volume tool. It handles loading configuration from YAML files
// and provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/quintene/VolVis/pkg/gradient"
	"github.com/quintene/VolVis/pkg/volume"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Volume describes the input dataset
	Volume struct {
		// Path is either a raw volume file or a directory of JPEG slices
		Path string `yaml:"path"`

		// Width, Height, Depth are the dataset dimensions in voxels.
		// Required for raw files; ignored for slice directories.
		Width  int `yaml:"width"`
		Height int `yaml:"height"`
		Depth  int `yaml:"depth"`

		// Format is the raw sample encoding, "uint8" or "uint16"
		Format string `yaml:"format"`

		// VoxelSize is the physical voxel spacing in mm
		VoxelSize struct {
			X float64 `yaml:"x"`
			Y float64 `yaml:"y"`
			Z float64 `yaml:"z"`
		} `yaml:"voxelSize"`
	} `yaml:"volume"`

	// Processing parameters
	Processing struct {
		// Workers specifies how many goroutines to use for the gradient build
		Workers int `yaml:"workers"`

		// Interpolation selects the sampling mode: "nearest", "linear" or "cubic"
		Interpolation string `yaml:"interpolation"`
	} `yaml:"processing"`

	// Output parameters
	Output struct {
		// SlicesDir is the directory for exported gradient-magnitude slices
		SlicesDir string `yaml:"slicesDir"`

		// Verbose controls the level of logging output
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Volume.Format = string(volume.Uint8)
	cfg.Volume.VoxelSize.X = 1.0
	cfg.Volume.VoxelSize.Y = 1.0
	cfg.Volume.VoxelSize.Z = 1.0

	cfg.Processing.Workers = runtime.NumCPU() // Use all available cores by default
	cfg.Processing.Interpolation = gradient.Linear.String()

	cfg.Output.SlicesDir = "gradient_slices"
	cfg.Output.Verbose = true

	return cfg
}

// InterpolationMode parses the configured interpolation mode. Invalid
// values fail here rather than at sample time.
func (c *Config) InterpolationMode() (gradient.InterpolationMode, error) {
	return gradient.ParseInterpolationMode(c.Processing.Interpolation)
}

// SampleFormat parses the configured raw sample format.
func (c *Config) SampleFormat() (volume.SampleFormat, error) {
	return volume.ParseSampleFormat(c.Volume.Format)
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

	// Reject bad enum values up front
	if _, err := cfg.InterpolationMode(); err != nil {
		return nil, fmt.Errorf("error in config file: %w", err)
	}
	if _, err := cfg.SampleFormat(); err != nil {
		return nil, fmt.Errorf("error in config file: %w", err)
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
	return SaveConfig(DefaultConfig(), configPath)
}
