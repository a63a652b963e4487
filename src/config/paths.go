package config

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

// GetDefaultDataPath returns the default data directory path
func GetDefaultDataPath() string {
	// XDG_STATE_HOME holds runtime state like the transcript database
	return filepath.Join(xdg.StateHome, "marmot")
}

// GetDefaultConfigPath returns the default user configuration file path
func GetDefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "marmot", "config.json")
}

// DatabasePath returns the transcript database path under the data directory
func DatabasePath(dataDir string) string {
	return filepath.Join(dataDir, "conversations.db")
}
