package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config holds the application configuration
type Config struct {
	Sampler SamplerConfig `json:"sampler"`
	Focus   FocusConfig   `json:"focus"`
	Model   ModelConfig   `json:"model"`
	Output  OutputConfig  `json:"output"`
	Server  ServerConfig  `json:"server"`
}

// SamplerConfig holds configuration for the sample grid
type SamplerConfig struct {
	SampleWidth  int `json:"sample_width"`
	SampleHeight int `json:"sample_height"`
}

// FocusConfig holds configuration for local focus suggestion
type FocusConfig struct {
	AnalysisSize     int     `json:"analysis_size"`
	WindowRatio      float64 `json:"window_ratio"`
	ContrastWeight   float64 `json:"contrast_weight"`
	BrightnessWeight float64 `json:"brightness_weight"`
}

// ModelConfig holds configuration for vision-model focus suggestion
type ModelConfig struct {
	URL         string `json:"url"`
	Model       string `json:"model"`
	SendFormat  string `json:"send_format"`
	SendMaxDim  int    `json:"send_max_dim"`
	SendQuality int    `json:"send_quality"`
}

// OutputConfig holds configuration for overlay output generation
type OutputConfig struct {
	Format   string `json:"format"`
	Quality  int    `json:"quality"`
	Lossless bool   `json:"lossless"`
	Dir      string `json:"dir"`
}

// ServerConfig holds configuration for the HTTP API
type ServerConfig struct {
	Addr string `json:"addr"`
}

// Default returns a configuration with default values
func Default() *Config {
	return &Config{
		Sampler: SamplerConfig{
			SampleWidth:  16,
			SampleHeight: 16,
		},
		Focus: FocusConfig{
			AnalysisSize:     256,
			WindowRatio:      0.5,
			ContrastWeight:   0.7,
			BrightnessWeight: 0.3,
		},
		Model: ModelConfig{
			URL:         "http://localhost:11434",
			Model:       "llava",
			SendFormat:  "jpg",
			SendMaxDim:  1536,
			SendQuality: 85,
		},
		Output: OutputConfig{
			Format:  "png",
			Quality: 90,
			Dir:     "out",
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
	}
}

// Load reads configuration from a JSON file, filling missing sections
// with defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Save writes configuration to a JSON file, creating parent directories
// as needed.
func (c *Config) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}
