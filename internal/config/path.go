// Package config provides configuration utilities for the application.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// ExpandPath expands ~ and environment variables in a file path.
// It handles both ~ for home directory and $VAR style environment variables.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		home, err := os.UserHomeDir()
		if err == nil {
			path = home
		}
	}

	return os.ExpandEnv(path)
}

// DatabasePath returns the configured database location with defaults
// and expansion applied.
func DatabasePath() string {
	path := viper.GetString("database.path")
	if path == "" {
		path = "$HOME/.local/share/autoledger/autoledger.db"
	}
	return ExpandPath(path)
}

// SnapshotDir returns the pattern cache snapshot directory.
func SnapshotDir() string {
	dir := viper.GetString("cache.snapshot_dir")
	if dir == "" {
		dir = "$HOME/.local/share/autoledger/patterns"
	}
	return ExpandPath(dir)
}

// WarmTenants returns the tenants whose pattern caches are populated on
// process start.
func WarmTenants() []string {
	return viper.GetStringSlice("cache.warm_tenants")
}
