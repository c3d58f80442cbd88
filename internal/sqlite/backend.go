// Package sqlite implements the relational devora store on a single SQLite
// database file.
//
// All access goes through one connection guarded by a mutex, so operations
// are linearized. The schema is versioned with PRAGMA user_version and
// brought forward on Open.
package sqlite

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/devora/internal/logging"
	"github.com/mesh-intelligence/devora/pkg/types"
)

// DBFileName is the name of the database file inside a data directory.
const DBFileName = "projects.db"

var _ types.Store = (*Backend)(nil)

// Backend implements types.Store on SQLite.
type Backend struct {
	mu     sync.Mutex
	db     *sql.DB
	path   string
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Backend.
type Option func(*Backend)

// WithLogger sets the logger used for schema migration messages.
func WithLogger(l *slog.Logger) Option {
	return func(b *Backend) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithClock replaces the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(b *Backend) {
		if now != nil {
			b.now = now
		}
	}
}

// Open opens or creates the database at path and migrates its schema to
// the current version.
func Open(path string, opts ...Option) (*Backend, error) {
	b := &Backend{
		path:   path,
		logger: logging.Discard(),
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(b)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if err := migrate(db, b.logger); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating %s: %w", path, err)
	}

	b.db = db
	return b, nil
}

// Path returns the database file path.
func (b *Backend) Path() string { return b.path }

// SchemaVersion returns the schema version stamped in the database header.
func (b *Backend) SchemaVersion() (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return userVersion(b.db)
}

// Close closes the database. It is safe to call more than once.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.db == nil {
		return nil
	}
	err := b.db.Close()
	b.db = nil
	return err
}

func (b *Backend) timestamp() time.Time {
	return b.now().UTC()
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// touchProject advances a project's updated_at.
func touchProject(q execer, projectID string, now time.Time) error {
	if _, err := q.Exec("UPDATE projects SET updated_at = ? WHERE id = ?", formatTime(now), projectID); err != nil {
		return fmt.Errorf("touching project %s: %w", projectID, err)
	}
	return nil
}

func projectExists(q execer, id string) (bool, error) {
	var one int
	err := q.QueryRow("SELECT 1 FROM projects WHERE id = ?", id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking project %s: %w", id, err)
	}
	return true, nil
}

func rowExists(q execer, table, id string) (bool, error) {
	var one int
	err := q.QueryRow("SELECT 1 FROM "+table+" WHERE id = ?", id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking %s %s: %w", table, id, err)
	}
	return true, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTime decodes a stored timestamp. Unparseable values yield the zero
// time so that one bad row never blocks a read.
func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
