// Package config loads and saves the app settings kept in the
// configuration directory. These settings are read before any store is
// opened; they decide where the data lives.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/devora/internal/atomicfile"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	// FileName is the settings file below the configuration directory.
	FileName = "config.yaml"

	// legacyFileName holds the data directory under "database_path" in
	// installations that predate config.yaml.
	legacyFileName = "settings.json"

	keyDataDir    = "data_dir"
	keyLogLevel   = "log_level"
	keyLegacyPath = "database_path"

	// DefaultLogLevel applies when no level is configured.
	DefaultLogLevel = "info"
)

// Config is the content of config.yaml. An empty DataDir means the data
// lives in the configuration directory.
type Config struct {
	DataDir  string `yaml:"data_dir,omitempty"`
	LogLevel string `yaml:"log_level,omitempty"`
}

// Load reads config.yaml from configDir. A malformed file is an error. A
// missing one yields defaults, with the data directory taken from a legacy
// settings.json when present.
func Load(configDir string) (Config, error) {
	v := viper.New()
	v.SetDefault(keyLogLevel, DefaultLogLevel)
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	found := true
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		found = false
	}

	cfg := Config{
		DataDir:  v.GetString(keyDataDir),
		LogLevel: v.GetString(keyLogLevel),
	}
	if !found {
		cfg.DataDir = legacyDataDir(configDir)
	}
	return cfg, nil
}

// legacyDataDir returns database_path from settings.json, or "" when the
// file is absent or unreadable.
func legacyDataDir(configDir string) string {
	path := filepath.Join(configDir, legacyFileName)
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		return ""
	}
	return v.GetString(keyLegacyPath)
}

// Save writes cfg to config.yaml in configDir, creating the directory.
func Save(configDir string, cfg Config) error {
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := atomicfile.WriteFile(filepath.Join(configDir, FileName), data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// SetDataDir stores dir as the data directory, keeping the other settings.
// An empty dir restores the default location.
func SetDataDir(configDir, dir string) error {
	cfg, err := Load(configDir)
	if err != nil {
		return err
	}
	cfg.DataDir = dir
	if cfg.LogLevel == DefaultLogLevel {
		cfg.LogLevel = ""
	}
	return Save(configDir, cfg)
}
