package config

import (
	"os"
	"path/filepath"
)

const defaultRuntimeDir = ".warden"

// GetRuntimePath resolves WARDEN_RUNTIME_PATH, relative paths are taken from $HOME.
func GetRuntimePath() string {
	path := os.Getenv("WARDEN_RUNTIME_PATH")
	if path == "" {
		path = defaultRuntimeDir
	}

	if !filepath.IsAbs(path) {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path)
	}
	return path
}
