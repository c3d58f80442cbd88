package sqlite

import (
	"database/sql"
	"fmt"
	"log/slog"
)

// CurrentSchemaVersion is the schema version Open migrates databases to.
const CurrentSchemaVersion = 5

// migration is one forward schema step. Steps only add tables and columns.
type migration struct {
	version int
	name    string
	stmts   []string
}

var migrations = []migration{
	{
		version: 1,
		name:    "initial schema",
		stmts: []string{
			`CREATE TABLE IF NOT EXISTS projects (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    description TEXT DEFAULT '',
    metadata TEXT DEFAULT '{}',
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
)`,
			`CREATE TABLE IF NOT EXISTS items (
    id TEXT PRIMARY KEY,
    project_id TEXT NOT NULL,
    type TEXT NOT NULL,
    title TEXT NOT NULL,
    content TEXT DEFAULT '',
    ide_type TEXT,
    "order" INTEGER DEFAULT 0,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    remote_ide_type TEXT,
    command_mode TEXT,
    command_cwd TEXT,
    command_host TEXT,
    FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE
)`,
			`CREATE TABLE IF NOT EXISTS file_cards (
    id TEXT PRIMARY KEY,
    project_id TEXT NOT NULL,
    filename TEXT NOT NULL,
    file_path TEXT NOT NULL,
    position_x REAL NOT NULL DEFAULT 100,
    position_y REAL NOT NULL DEFAULT 100,
    is_expanded INTEGER NOT NULL DEFAULT 0,
    z_index INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    is_minimized INTEGER NOT NULL DEFAULT 0,
    FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE
)`,
			`CREATE TABLE IF NOT EXISTS settings (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
)`,
		},
	},
	{
		version: 2,
		name:    "add items.coding_agent_type",
		stmts:   []string{`ALTER TABLE items ADD COLUMN coding_agent_type TEXT`},
	},
	{
		version: 3,
		name:    "add items.coding_agent_args",
		stmts:   []string{`ALTER TABLE items ADD COLUMN coding_agent_args TEXT`},
	},
	{
		version: 4,
		name:    "add items.coding_agent_env",
		stmts:   []string{`ALTER TABLE items ADD COLUMN coding_agent_env TEXT`},
	},
	{
		version: 5,
		name:    "add todos",
		stmts: []string{
			`CREATE TABLE IF NOT EXISTS todos (
    id TEXT PRIMARY KEY,
    project_id TEXT NOT NULL,
    content TEXT NOT NULL,
    completed INTEGER DEFAULT 0,
    "order" INTEGER DEFAULT 0,
    indent_level INTEGER DEFAULT 0,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    completed_at TEXT,
    FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE
)`,
			`CREATE INDEX IF NOT EXISTS idx_todos_project ON todos(project_id)`,
		},
	},
}

func userVersion(db *sql.DB) (int, error) {
	var v int
	if err := db.QueryRow("PRAGMA user_version").Scan(&v); err != nil {
		return 0, fmt.Errorf("reading user_version: %w", err)
	}
	return v, nil
}

// migrate applies every step newer than the stamped version. Each step and
// its version stamp commit together, so an interrupted run resumes at the
// first step that did not commit.
func migrate(db *sql.DB, logger *slog.Logger) error {
	current, err := userVersion(db)
	if err != nil {
		return err
	}
	if current >= CurrentSchemaVersion {
		logger.Debug("database schema up to date", "version", current)
		return nil
	}
	logger.Info("migrating database schema", "from", current, "to", CurrentSchemaVersion)

	for _, m := range migrations {
		if current >= m.version {
			continue
		}
		if err := applyMigration(db, m); err != nil {
			return err
		}
		logger.Info("applied schema migration", "version", m.version, "name", m.name)
	}
	return nil
}

func applyMigration(db *sql.DB, m migration) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning migration %d: %w", m.version, err)
	}
	defer tx.Rollback()

	for _, stmt := range m.stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d (%s): %w", m.version, m.name, err)
		}
	}
	if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", m.version)); err != nil {
		return fmt.Errorf("stamping version %d: %w", m.version, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing migration %d: %w", m.version, err)
	}
	return nil
}
