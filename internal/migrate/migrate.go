// Package migrate moves a relational projects.db into the document layout
// read by jsonstore. It runs once: after a successful run the database is
// renamed and the index lists the migrated projects, so later runs do
// nothing.
package migrate

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mesh-intelligence/devora/internal/jsonstore"
	"github.com/mesh-intelligence/devora/internal/logging"
	"github.com/mesh-intelligence/devora/internal/sqlite"
)

// MigratedSuffix is appended to the database file name once its contents
// have been moved.
const MigratedSuffix = ".migrated"

// Outcome says what Run did.
type Outcome int

const (
	// OutcomeNoOp means the document index already lists projects.
	OutcomeNoOp Outcome = iota
	// OutcomeFreshStart means there was no database to migrate.
	OutcomeFreshStart
	// OutcomeMigrated means a database was converted and renamed.
	OutcomeMigrated
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNoOp:
		return "noop"
	case OutcomeFreshStart:
		return "fresh-start"
	case OutcomeMigrated:
		return "migrated"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Result describes a run. Source is the database path when one was found.
type Result struct {
	Outcome           Outcome `json:"-"`
	Source            string  `json:"source,omitempty"`
	ProjectsMigrated  int     `json:"projectsMigrated"`
	ItemsMigrated     int     `json:"itemsMigrated"`
	TodosMigrated     int     `json:"todosMigrated"`
	FileCardsMigrated int     `json:"fileCardsMigrated"`
	SettingsMigrated  int     `json:"settingsMigrated"`
}

type options struct {
	logger *slog.Logger
}

// Option configures Run.
type Option func(*options)

// WithLogger sets the logger that reports progress.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// Run migrates the first projects.db found in dataDir or configDir into
// dataDir, unless dataDir already holds projects. Every document is written
// before the index, and the database is renamed last, so a failure at any
// point leaves the database in place for the next attempt.
func Run(configDir, dataDir string, opts ...Option) (Result, error) {
	o := options{logger: logging.Discard()}
	for _, opt := range opts {
		opt(&o)
	}
	log := o.logger

	idx, err := jsonstore.ReadIndex(dataDir)
	if err == nil && idx != nil && !idx.Empty() {
		log.Debug("index already lists projects, skipping migration", "data_dir", dataDir)
		return Result{Outcome: OutcomeNoOp}, nil
	}

	source := findDatabase(dataDir, configDir)
	if source == "" {
		log.Info("no relational database found, starting fresh")
		return Result{Outcome: OutcomeFreshStart}, nil
	}

	log.Info("migrating relational database", "source", source, "data_dir", dataDir)
	res, err := convert(source, dataDir, log)
	if err != nil {
		return Result{Outcome: OutcomeFreshStart, Source: source}, fmt.Errorf("migrating %s: %w", source, err)
	}
	if err := retire(source); err != nil {
		return res, err
	}

	log.Info("migration complete",
		"projects", res.ProjectsMigrated,
		"items", res.ItemsMigrated,
		"todos", res.TodosMigrated,
		"file_cards", res.FileCardsMigrated,
		"settings", res.SettingsMigrated,
	)
	return res, nil
}

// findDatabase returns the first existing projects.db among dirs.
func findDatabase(dirs ...string) string {
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		p := filepath.Join(dir, sqlite.DBFileName)
		if fi, err := os.Stat(p); err == nil && !fi.IsDir() {
			return p
		}
	}
	return ""
}

// convert reads every record from the database at source and writes the
// document layout into dataDir.
func convert(source, dataDir string, log *slog.Logger) (Result, error) {
	res := Result{Outcome: OutcomeMigrated, Source: source}

	db, err := sqlite.Open(source, sqlite.WithLogger(log))
	if err != nil {
		return res, err
	}
	defer db.Close()

	settings, err := db.Settings()
	if err != nil {
		return res, err
	}
	projects, err := db.ListProjects()
	if err != nil {
		return res, err
	}

	idx := jsonstore.NewIndex()
	idx.GlobalSettings = settings
	res.SettingsMigrated = len(settings)

	for _, p := range projects {
		doc := jsonstore.NewDocument(p)
		if doc.Items, err = db.ListItems(p.ID); err != nil {
			return res, err
		}
		if doc.TodoItems, err = db.ListTodos(p.ID); err != nil {
			return res, err
		}
		if doc.FileCards, err = db.ListFileCards(p.ID); err != nil {
			return res, err
		}
		if err := jsonstore.WriteDocument(dataDir, doc); err != nil {
			return res, err
		}

		idx.Projects = append(idx.Projects, jsonstore.ProjectInfo{ID: p.ID, Name: p.Name})
		res.ProjectsMigrated++
		res.ItemsMigrated += len(doc.Items)
		res.TodosMigrated += len(doc.TodoItems)
		res.FileCardsMigrated += len(doc.FileCards)
	}

	if err := jsonstore.WriteIndex(dataDir, idx); err != nil {
		return res, err
	}
	return res, nil
}

// retire renames the database and its journal files out of the way.
func retire(source string) error {
	if err := os.Rename(source, source+MigratedSuffix); err != nil {
		return fmt.Errorf("renaming migrated database: %w", err)
	}
	for _, suffix := range []string{"-wal", "-shm"} {
		err := os.Rename(source+suffix, source+suffix+MigratedSuffix)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("renaming %s: %w", filepath.Base(source+suffix), err)
		}
	}
	return nil
}
