package config

import (
	"os"
	"path/filepath"
)

// StateDir returns the per-user groundcheck directory. When the home
// directory cannot be resolved everything lands in the working directory.
func StateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".groundcheck"
	}
	return filepath.Join(home, ".groundcheck")
}

// DefaultPath returns the canonical config file location.
func DefaultPath() string {
	return filepath.Join(StateDir(), "config.toml")
}

// DefaultHistoryPath returns the default run-ledger location.
func DefaultHistoryPath() string {
	return filepath.Join(StateDir(), "history.db")
}

// DefaultLogPath returns the default log file location, used by surfaces
// that own the terminal and cannot log to stderr.
func DefaultLogPath() string {
	return filepath.Join(StateDir(), "logs", "groundcheck.log")
}

// EnsureStateDir creates the groundcheck directory tree.
func EnsureStateDir() error {
	return os.MkdirAll(filepath.Join(StateDir(), "logs"), 0755)
}
