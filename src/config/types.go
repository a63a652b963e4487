package config

import (
	"time"
)

// Config represents the complete configuration for marmot
type Config struct {
	// Version of the configuration format
	Version string `json:"version"`

	// API configuration
	API APIConfig `json:"api"`

	// Agent configuration
	Agent AgentConfig `json:"agent"`

	// Tool-specific settings
	Tools ToolsConfig `json:"tools"`

	// Data directory configuration
	Data DataConfig `json:"data"`

	// Debug enables debug logging
	Debug bool `json:"debug,omitempty"`
}

// APIConfig defines connection settings for the model endpoint
type APIConfig struct {
	// BaseURL of the OpenAI-compatible endpoint
	BaseURL string `json:"base_url" validate:"omitempty,url"`

	// APIKey for authentication
	APIKey string `json:"api_key"`

	// Model name to request
	Model string `json:"model" validate:"required"`

	// Timeout for a single request
	Timeout time.Duration `json:"timeout" validate:"min=0"`

	// RetryCount bounds retries on transient failures
	RetryCount int `json:"retry_count" validate:"min=0,max=10"`
}

// AgentConfig defines settings for the tool-use loop
type AgentConfig struct {
	// MaxIterations bounds the number of model round trips per user input
	MaxIterations int `json:"max_iterations" validate:"min=1,max=100"`

	// MaxContextTokens is the conversation's context window budget
	MaxContextTokens int `json:"max_context_tokens" validate:"min=1"`

	// ReserveTokens is held back from the window for the model's response
	ReserveTokens int `json:"reserve_tokens" validate:"min=0"`

	// SystemPrompt overrides the built-in system prompt when set
	SystemPrompt string `json:"system_prompt,omitempty"`
}

// ToolsConfig defines settings shared by the built-in tools
type ToolsConfig struct {
	// WorkingDir confines filesystem tools; empty means the process working directory
	WorkingDir string `json:"working_dir,omitempty"`

	// CommandTimeout bounds shell command execution
	CommandTimeout time.Duration `json:"command_timeout" validate:"min=0"`
}

// DataConfig defines data directory configuration
type DataConfig struct {
	// Directory where application data is stored
	Directory string `json:"directory,omitempty"`
}
