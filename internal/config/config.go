// Package config loads the pkgresolve command's YAML configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk configuration. Unset fields leave the built-in
// defaults in place.
type FileConfig struct {
	ManifestDir   string    `yaml:"manifest_dir"`
	BaseURL       string    `yaml:"base_url"`
	Channel       string    `yaml:"channel"`
	PlatformsFile string    `yaml:"platforms_file"`
	Output        string    `yaml:"output"`
	Concurrency   *int      `yaml:"concurrency"`
	Log           LogConfig `yaml:"log"`
}

// LogConfig configures logging.
type LogConfig struct {
	Verbose *bool  `yaml:"verbose"`
	JSON    *bool  `yaml:"json"`
	File    string `yaml:"file"`
}

// DefaultPath returns $XDG_CONFIG_HOME/pkgresolve/config.yaml, falling back
// to ~/.config when XDG_CONFIG_HOME is unset.
func DefaultPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "pkgresolve", "config.yaml")
}

// Load reads the config at path. An empty path yields the zero config.
func Load(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return FileConfig{}, fmt.Errorf("read config: %w", err)
	}

	return FromBytes(raw)
}

// LoadDefault reads the config at DefaultPath. A missing file is not an
// error.
func LoadDefault() (FileConfig, error) {
	cfg, err := Load(DefaultPath())
	if errors.Is(err, fs.ErrNotExist) {
		return FileConfig{}, nil
	}
	return cfg, err
}

// FromBytes parses YAML config data.
func FromBytes(raw []byte) (FileConfig, error) {
	var cfg FileConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("parse config YAML: %w", err)
	}
	if cfg.Concurrency != nil && *cfg.Concurrency < 0 {
		return FileConfig{}, fmt.Errorf("config: concurrency must not be negative")
	}
	return cfg, nil
}
