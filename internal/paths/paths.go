// Package paths resolves the configuration and data directory locations.
package paths

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultDirName is the directory below the user's home that holds both the
// configuration and, unless moved, the data.
const DefaultDirName = ".devora"

// Environment variable names for directory overrides.
const (
	EnvConfigDir = "DEVORA_CONFIG_DIR"
	EnvDataDir   = "DEVORA_DATA_DIR"
)

// legacyDBName is the relational database file whose presence
// ValidateDataDir reports.
const legacyDBName = "projects.db"

// writeCheckName is the scratch file ValidateDataDir creates and removes.
const writeCheckName = ".devora_write_test"

// platformDir holds platform-detection functions that can be overridden in tests.
var platformDir = struct {
	homeDir func() (string, error)
}{
	homeDir: os.UserHomeDir,
}

// DefaultConfigDir returns ~/.devora.
func DefaultConfigDir() (string, error) {
	home, err := platformDir.homeDir()
	if err != nil {
		return "", fmt.Errorf("locating home directory: %w", err)
	}
	return filepath.Join(home, DefaultDirName), nil
}

// ResolveConfigDir returns the configuration directory following the precedence
// chain: flag > DEVORA_CONFIG_DIR env > DefaultConfigDir().
func ResolveConfigDir(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvConfigDir); env != "" {
		return filepath.Abs(env)
	}
	return DefaultConfigDir()
}

// ResolveDataDir returns the data directory following the precedence chain:
// flag > configValue > DEVORA_DATA_DIR env > configDir.
//
// configValue is the data_dir stored in the app settings; configDir is the
// already resolved configuration directory.
func ResolveDataDir(flag, configValue, configDir string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if configValue != "" {
		return filepath.Abs(configValue)
	}
	if env := os.Getenv(EnvDataDir); env != "" {
		return filepath.Abs(env)
	}
	return filepath.Abs(configDir)
}

// Validation is the outcome of ValidateDataDir.
type Validation struct {
	Path           string `json:"path"`
	DatabaseExists bool   `json:"databaseExists"`
}

// ErrNotDirectory is returned by ValidateDataDir for a path naming a file.
var ErrNotDirectory = errors.New("path is not a directory")

// ValidateDataDir checks that path can serve as a data directory: it is
// created when missing and must be writable. The result reports whether a
// relational database is already there.
func ValidateDataDir(path string) (Validation, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Validation{}, err
	}
	fi, err := os.Stat(abs)
	switch {
	case err == nil && !fi.IsDir():
		return Validation{}, fmt.Errorf("%s: %w", abs, ErrNotDirectory)
	case errors.Is(err, os.ErrNotExist):
		if err := os.MkdirAll(abs, 0o755); err != nil {
			return Validation{}, fmt.Errorf("creating %s: %w", abs, err)
		}
	case err != nil:
		return Validation{}, err
	}

	scratch := filepath.Join(abs, writeCheckName)
	if err := os.WriteFile(scratch, []byte("test"), 0o644); err != nil {
		return Validation{}, fmt.Errorf("%s is not writable: %w", abs, err)
	}
	_ = os.Remove(scratch)

	_, err = os.Stat(filepath.Join(abs, legacyDBName))
	return Validation{Path: abs, DatabaseExists: err == nil}, nil
}
