package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// DataDir returns the path to the pixway data directory.
// - Windows: %APPDATA%\pixway
// - Other OS: ~/.pixway
func DataDir() string {
	if runtime.GOOS == "windows" {
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "pixway")
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ".pixway"
	}
	return filepath.Join(home, ".pixway")
}

// DBPath returns the path to the SQLite database file.
func DBPath() string {
	return filepath.Join(DataDir(), "pixway.db")
}

// ConfigPath returns the path to the config file (~/.pixway/config.toml).
func ConfigPath() string {
	return filepath.Join(DataDir(), "config.toml")
}

// EnsureDataDir creates the data directory if it doesn't exist.
func EnsureDataDir() error {
	return os.MkdirAll(DataDir(), 0700)
}
