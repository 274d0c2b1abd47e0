package config

import (
	"os"
	"path/filepath"
)

// NagPath returns the root directory for nag data.
// It uses $NAG_PATH if set, otherwise defaults to ~/.nag.
func NagPath() string {
	if v := os.Getenv("NAG_PATH"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".nag")
	}
	return filepath.Join(home, ".nag")
}

// ConfigPath returns the path to the nag config file.
func ConfigPath() string {
	return filepath.Join(NagPath(), "config.jsonc")
}

// DotenvPath returns the path to the nag .env file.
func DotenvPath() string {
	return filepath.Join(NagPath(), ".env")
}

// HeartbeatPath returns the path to the agent heartbeat file.
func HeartbeatPath() string {
	return filepath.Join(NagPath(), "agent.heartbeat")
}
