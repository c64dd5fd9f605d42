package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up in the working directory and the
// user config directory.
const FileName = ".resusage.yaml"

// Constants for default values.
const (
	DefaultOutput   = "resource_usage_map.json"
	DefaultFormat   = "auto"
	DefaultTheme    = "default"
	DefaultLogLevel = "warn"
)

// AppConfig represents the contents of .resusage.yaml.
type AppConfig struct {
	Output       string            `yaml:"output"`
	Format       string            `yaml:"format"`
	Theme        string            `yaml:"theme"`
	QualifyNames *bool             `yaml:"qualify_names"`
	Passthrough  *bool             `yaml:"passthrough"`
	Strict       *bool             `yaml:"strict"`
	LogLevel     string            `yaml:"log_level"`
	Keywords     map[string]string `yaml:"keywords"`
}

// LoadConfig reads the config file. An explicit path must exist; otherwise the
// usual locations are searched and a missing file yields an empty config.
// The returned path is "" when no file was read.
func LoadConfig(explicit string) (*AppConfig, string, error) {
	path := explicit
	if path == "" {
		path = getConfigPath()
	}
	if path == "" {
		return &AppConfig{}, "", nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if explicit == "" && errors.Is(err, os.ErrNotExist) {
			return &AppConfig{}, "", nil
		}
		return nil, "", fmt.Errorf("reading config file %s: %w", path, err)
	}

	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, "", fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return &cfg, path, nil
}

// getConfigPath tries to find the .resusage.yaml configuration file.
// It checks local directory first, then XDG UserConfigDir (if valid).
func getConfigPath() string {
	if _, err := os.Stat(FileName); err == nil {
		return FileName
	}

	configHome, err := os.UserConfigDir()
	// If UserConfigDir fails OR returns an empty path or "/", it's not suitable for XDG path construction here.
	if err == nil && configHome != "" && configHome != "/" {
		xdgPath := filepath.Join(configHome, "resusage", FileName)
		if _, errStat := os.Stat(xdgPath); errStat == nil {
			return xdgPath
		}
	}
	return ""
}
