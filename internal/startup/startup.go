// Package startup wires the process-wide store: it resolves the
// directories, reads the app settings, runs the one-time migration and
// opens the document store.
package startup

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/mesh-intelligence/devora/internal/config"
	"github.com/mesh-intelligence/devora/internal/jsonstore"
	"github.com/mesh-intelligence/devora/internal/logging"
	"github.com/mesh-intelligence/devora/internal/migrate"
	"github.com/mesh-intelligence/devora/internal/paths"
)

// Options carries the directory overrides given on the command line.
type Options struct {
	ConfigDir string
	DataDir   string
	Logger    *slog.Logger
}

// Dirs are the resolved directories and the settings that chose them.
type Dirs struct {
	ConfigDir string
	DataDir   string
	Config    config.Config
}

// Env is what Open hands to the rest of the program.
type Env struct {
	Dirs
	Store     *jsonstore.Store
	Migration migrate.Result
	// MigrationErr is set when the migration failed; the store is usable
	// regardless.
	MigrationErr error
}

// Resolve determines the configuration and data directories, creating the
// configuration directory.
func Resolve(opts Options) (Dirs, error) {
	configDir, err := paths.ResolveConfigDir(opts.ConfigDir)
	if err != nil {
		return Dirs{}, fmt.Errorf("resolving config directory: %w", err)
	}
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return Dirs{}, fmt.Errorf("creating config directory: %w", err)
	}
	cfg, err := config.Load(configDir)
	if err != nil {
		return Dirs{}, err
	}
	dataDir, err := paths.ResolveDataDir(opts.DataDir, cfg.DataDir, configDir)
	if err != nil {
		return Dirs{}, fmt.Errorf("resolving data directory: %w", err)
	}
	return Dirs{ConfigDir: configDir, DataDir: dataDir, Config: cfg}, nil
}

// Open resolves the directories and calls OpenDirs.
func Open(opts Options) (*Env, error) {
	dirs, err := Resolve(opts)
	if err != nil {
		return nil, err
	}
	return OpenDirs(dirs, opts.Logger)
}

// OpenDirs migrates a legacy database if one is found and opens the
// document store. A failed migration is logged and reported in Env; it
// does not stop the store from opening.
func OpenDirs(dirs Dirs, log *slog.Logger) (*Env, error) {
	if log == nil {
		log = logging.Discard()
	}
	log.Debug("resolved directories", "config_dir", dirs.ConfigDir, "data_dir", dirs.DataDir)

	env := &Env{Dirs: dirs}
	env.Migration, env.MigrationErr = migrate.Run(dirs.ConfigDir, dirs.DataDir,
		migrate.WithLogger(log.With("component", "migrate")))
	if env.MigrationErr != nil {
		log.Error("migration failed, continuing with the document store", "error", env.MigrationErr)
	}

	var err error
	env.Store, err = jsonstore.Open(dirs.DataDir, jsonstore.WithLogger(log.With("component", "jsonstore")))
	if err != nil {
		return nil, err
	}
	return env, nil
}
