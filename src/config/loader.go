package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// EnvironmentPrefix is prepended to environment override names
const EnvironmentPrefix = "MARMOT"

// Loader handles loading configuration from file and environment
type Loader struct {
	validator *Validator
}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	return &Loader{validator: NewValidator()}
}

// Load reads configuration from path, applies environment overrides,
// and validates the result. A missing file is not an error; defaults
// are used. An empty path falls back to the default user config path.
func (l *Loader) Load(path string) (*Config, error) {
	config := DefaultConfig()

	if path == "" {
		path = GetDefaultConfigPath()
	}

	if cfg, err := l.loadFile(path); err == nil {
		config = l.mergeConfigs(config, cfg)
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}

	l.applyEnvironmentOverrides(config)

	if err := l.validator.Validate(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

func (l *Loader) loadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	return &config, nil
}

// SaveFile saves configuration to a file
func (l *Loader) SaveFile(config *Config, path string) error {
	if err := l.validator.Validate(config); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	return nil
}

// mergeConfigs merges two configurations with the second taking precedence
func (l *Loader) mergeConfigs(base, override *Config) *Config {
	result := *base

	if override.Version != "" {
		result.Version = override.Version
	}
	if override.API.BaseURL != "" {
		result.API.BaseURL = override.API.BaseURL
	}
	if override.API.APIKey != "" {
		result.API.APIKey = override.API.APIKey
	}
	if override.API.Model != "" {
		result.API.Model = override.API.Model
	}
	if override.API.Timeout != 0 {
		result.API.Timeout = override.API.Timeout
	}
	if override.API.RetryCount != 0 {
		result.API.RetryCount = override.API.RetryCount
	}
	if override.Agent.MaxIterations != 0 {
		result.Agent.MaxIterations = override.Agent.MaxIterations
	}
	if override.Agent.MaxContextTokens != 0 {
		result.Agent.MaxContextTokens = override.Agent.MaxContextTokens
	}
	if override.Agent.ReserveTokens != 0 {
		result.Agent.ReserveTokens = override.Agent.ReserveTokens
	}
	if override.Agent.SystemPrompt != "" {
		result.Agent.SystemPrompt = override.Agent.SystemPrompt
	}
	if override.Tools.WorkingDir != "" {
		result.Tools.WorkingDir = override.Tools.WorkingDir
	}
	if override.Tools.CommandTimeout != 0 {
		result.Tools.CommandTimeout = override.Tools.CommandTimeout
	}
	if override.Data.Directory != "" {
		result.Data.Directory = override.Data.Directory
	}
	if override.Debug {
		result.Debug = true
	}

	return &result
}

// applyEnvironmentOverrides applies MARMOT_* environment variables
func (l *Loader) applyEnvironmentOverrides(config *Config) {
	if v := os.Getenv(EnvironmentPrefix + "_API_KEY"); v != "" {
		config.API.APIKey = v
	}
	if v := os.Getenv(EnvironmentPrefix + "_BASE_URL"); v != "" {
		config.API.BaseURL = v
	}
	if v := os.Getenv(EnvironmentPrefix + "_MODEL"); v != "" {
		config.API.Model = v
	}
	if v := os.Getenv(EnvironmentPrefix + "_MAX_ITERATIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Agent.MaxIterations = n
		}
	}
	if v := os.Getenv(EnvironmentPrefix + "_MAX_CONTEXT_TOKENS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Agent.MaxContextTokens = n
		}
	}
	if v := os.Getenv(EnvironmentPrefix + "_COMMAND_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			config.Tools.CommandTimeout = d
		}
	}
	if v := os.Getenv(EnvironmentPrefix + "_DATA_DIR"); v != "" {
		config.Data.Directory = v
	}
	if v := os.Getenv(EnvironmentPrefix + "_DEBUG"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			config.Debug = b
		}
	}
}
