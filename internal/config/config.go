// Package config loads worksetview configuration from YAML.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/chmouel/worksetview/internal/theme"
)

// AppConfig defines the global worksetview configuration options.
type AppConfig struct {
	Theme           string `yaml:"theme"`
	ShowIcons       bool   `yaml:"show_icons"`
	RelatedFiles    bool   `yaml:"related_files"`
	AutoRefresh     bool   `yaml:"auto_refresh"` // watch open files on disk
	DebugLog        string `yaml:"debug_log"`
	MaxRelatedShown int    `yaml:"max_related_shown"`
}

// DefaultConfig returns the default configuration values.
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Theme:           theme.DraculaName,
		ShowIcons:       true,
		RelatedFiles:    true,
		AutoRefresh:     true,
		MaxRelatedShown: 8,
	}
}

// LoadConfig reads the configuration file at configPath, or from the
// default location when configPath is empty. A missing file yields the
// defaults; a malformed file is an error.
func LoadConfig(configPath string) (*AppConfig, error) {
	paths := []string{}
	if configPath != "" {
		expanded, err := ExpandPath(configPath)
		if err != nil {
			return DefaultConfig(), err
		}
		paths = append(paths, expanded)
	} else {
		base := filepath.Join(configDir(), "worksetview")
		paths = append(paths,
			filepath.Join(base, "config.yaml"),
			filepath.Join(base, "config.yml"),
		)
	}

	for _, path := range paths {
		data, err := os.ReadFile(path) //nolint:gosec
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return DefaultConfig(), fmt.Errorf("read config %s: %w", path, err)
		}
		cfg := DefaultConfig()
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return DefaultConfig(), fmt.Errorf("parse config %s: %w", path, err)
		}
		cfg.normalize()
		return cfg, nil
	}

	return DefaultConfig(), nil
}

func (c *AppConfig) normalize() {
	if c.MaxRelatedShown <= 0 {
		c.MaxRelatedShown = DefaultConfig().MaxRelatedShown
	}
	if c.Theme == "" {
		c.Theme = theme.DraculaName
	}
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
	}
	return path, nil
}

func configDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return xdg
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config")
}
