package config

import (
	"path/filepath"
)

var (
	// AppName is used in generating file system paths.
	AppName = "herbid"
)

// ConfigDir returns the directory path for configuration files.
// Returns ~/.config/herbid by default.
func ConfigDir(homeDir string) string {
	return filepath.Join(homeDir, ".config", AppName)
}

// CacheDir returns the directory path for cache files, including the
// experiment-tracking registry.
// Returns ~/.cache/herbid by default.
func CacheDir(homeDir string) string {
	return filepath.Join(homeDir, ".cache", AppName)
}

// LogDir returns the directory path for log files.
// Returns ~/.local/share/herbid/logs by default.
func LogDir(homeDir string) string {
	return filepath.Join(homeDir, ".local", "share", AppName, "logs")
}

// ConfigFilePath returns the full path to the config.yaml file.
// Returns ~/.config/herbid/config.yaml by default.
func ConfigFilePath(homeDir string) string {
	return filepath.Join(ConfigDir(homeDir), "config.yaml")
}

// TrackFilePath returns the full path to the sqlite experiment registry.
// Returns ~/.cache/herbid/runs.db by default.
func TrackFilePath(homeDir string) string {
	return filepath.Join(CacheDir(homeDir), "runs.db")
}
