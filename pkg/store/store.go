// Package store opens a devora store in either on-disk format while keeping
// the backend implementations internal.
//
// Example:
//
//	s, err := store.OpenExisting(types.Location{
//	    Backend: types.BackendSQLite,
//	    DataDir: "/home/me/.devora",
//	})
//	if err != nil { ... }
//	defer s.Close()
package store

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/mesh-intelligence/devora/internal/jsonstore"
	"github.com/mesh-intelligence/devora/internal/sqlite"
	"github.com/mesh-intelligence/devora/pkg/types"
)

// ErrNotFound is returned by OpenExisting when the directory holds no store
// in the requested format.
var ErrNotFound = errors.New("no store found")

type options struct {
	logger *slog.Logger
	now    func() time.Time
}

// Option configures Open.
type Option func(*options)

// WithLogger sets the logger passed to the backend.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithClock sets the timestamp source passed to the backend.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// MarkerPath returns the file whose presence shows that loc holds a store:
// the index for the document layout, the database file for sqlite.
func MarkerPath(loc types.Location) (string, error) {
	loc, err := loc.Normalized()
	if err != nil {
		return "", err
	}
	if loc.Backend == types.BackendSQLite {
		return filepath.Join(loc.DataDir, sqlite.DBFileName), nil
	}
	return jsonstore.IndexPath(loc.DataDir), nil
}

// Open opens the store at loc, creating it if the directory is empty. The
// relational backend keeps its database in DataDir/projects.db.
func Open(loc types.Location, opts ...Option) (types.Store, error) {
	loc, err := loc.Normalized()
	if err != nil {
		return nil, err
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	switch loc.Backend {
	case types.BackendSQLite:
		b, err := sqlite.Open(filepath.Join(loc.DataDir, sqlite.DBFileName),
			sqlite.WithLogger(o.logger), sqlite.WithClock(o.now))
		if err != nil {
			return nil, fmt.Errorf("opening sqlite store in %s: %w", loc.DataDir, err)
		}
		return b, nil
	default:
		s, err := jsonstore.Open(loc.DataDir, jsonstore.WithLogger(o.logger), jsonstore.WithClock(o.now))
		if err != nil {
			return nil, fmt.Errorf("opening json store in %s: %w", loc.DataDir, err)
		}
		return s, nil
	}
}

// OpenExisting is Open for stores that must already exist. It returns an
// error wrapping ErrNotFound, and creates nothing, when the marker file of
// loc is missing.
func OpenExisting(loc types.Location, opts ...Option) (types.Store, error) {
	marker, err := MarkerPath(loc)
	if err != nil {
		return nil, err
	}
	fi, err := os.Stat(marker)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("%w: %s is missing", ErrNotFound, marker)
	case err != nil:
		return nil, fmt.Errorf("checking %s: %w", marker, err)
	case fi.IsDir():
		return nil, fmt.Errorf("%w: %s is a directory", ErrNotFound, marker)
	}
	return Open(loc, opts...)
}
