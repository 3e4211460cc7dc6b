package agent

import (
	"encoding/json"
	"fmt"
	"os"
)

// DefaultMaxIterations bounds the model-call / tool-dispatch cycle when no
// explicit limit is configured.
const DefaultMaxIterations = 10

// Config holds agent initialization parameters. Model is required; the
// remaining fields have working defaults.
type Config struct {
	Model         string `json:"model"`
	SystemPrompt  string `json:"system_prompt,omitempty"`
	MaxIterations int    `json:"max_iterations,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults. Model must still be
// set by the caller before New accepts the config.
func DefaultConfig() Config {
	return Config{
		MaxIterations: DefaultMaxIterations,
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.Model != "" {
		c.Model = source.Model
	}
	if source.SystemPrompt != "" {
		c.SystemPrompt = source.SystemPrompt
	}
	if source.MaxIterations > 0 {
		c.MaxIterations = source.MaxIterations
	}
}

// LoadConfig reads a JSON config file, merges it with defaults, and returns
// the resulting Config.
func LoadConfig(filename string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var loaded Config
	if err := json.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.Merge(&loaded)
	return &cfg, nil
}
