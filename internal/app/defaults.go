package app

import (
	"fmt"
	"os"
	"path/filepath"
)

// GetDefaults returns application default paths, checking environment variables first.
// Environment variables:
//   - PICSTASH_CONFIG_PATH: config file location (default: ~/.config/picstash.toml)
//   - PICSTASH_HOME: base directory for picstash data (default: ~/.local/share/picstash)
func GetDefaults() (map[string]string, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, err
	}

	baseDir, err := getBaseDir()
	if err != nil {
		return nil, err
	}

	return map[string]string{
		"config_path": configPath,
		"base_dir":    baseDir,
		"data_dir":    filepath.Join(baseDir, "collections"),
		"log_dir":     filepath.Join(baseDir, "log"),
	}, nil
}

// getConfigPath returns the config file path, checking PICSTASH_CONFIG_PATH
// env var first, then falling back to the default ~/.config/picstash.toml.
func getConfigPath() (string, error) {
	if path := os.Getenv("PICSTASH_CONFIG_PATH"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "picstash.toml"), nil
}

// getBaseDir returns the base directory for picstash data, checking
// PICSTASH_HOME env var first, then falling back to the XDG default
// ~/.local/share/picstash.
func getBaseDir() (string, error) {
	if path := os.Getenv("PICSTASH_HOME"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", "picstash"), nil
}
