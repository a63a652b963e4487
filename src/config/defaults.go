package config

import "time"

// DefaultConfig returns a configuration populated with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Version: "1.0",
		API: APIConfig{
			BaseURL:    "https://api.openai.com/v1",
			Model:      "gpt-4o-mini",
			Timeout:    120 * time.Second,
			RetryCount: 3,
		},
		Agent: AgentConfig{
			MaxIterations:    10,
			MaxContextTokens: 128000,
			ReserveTokens:    1000,
		},
		Tools: ToolsConfig{
			CommandTimeout: 30 * time.Second,
		},
		Data: DataConfig{
			Directory: GetDefaultDataPath(),
		},
	}
}
