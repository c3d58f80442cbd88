package types

import (
	"errors"
	"fmt"
	"strings"
)

// Backend names an on-disk store format.
type Backend string

const (
	// BackendJSON is the document layout: metadata.json and one file per
	// project under projects/.
	BackendJSON Backend = "json"
	// BackendSQLite is the legacy relational database, projects.db.
	BackendSQLite Backend = "sqlite"
)

// Location errors.
var (
	ErrBackendUnknown = errors.New("unknown backend")
	ErrDataDirEmpty   = errors.New("data directory must not be empty")
)

// ParseBackend maps a user-supplied name to a Backend. Case and surrounding
// space are ignored, and the empty string selects BackendJSON.
func ParseBackend(name string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", string(BackendJSON):
		return BackendJSON, nil
	case string(BackendSQLite), "sqlite3":
		return BackendSQLite, nil
	}
	return "", fmt.Errorf("%w %q (want %s or %s)", ErrBackendUnknown, name, BackendJSON, BackendSQLite)
}

// Location identifies a store on disk: the directory that holds it and the
// format its files are in.
type Location struct {
	Backend Backend `json:"backend"`
	DataDir string  `json:"data_dir"`
}

// Validate reports a missing directory or a backend ParseBackend rejects.
// A zero Backend is valid and means BackendJSON.
func (l Location) Validate() error {
	if strings.TrimSpace(l.DataDir) == "" {
		return ErrDataDirEmpty
	}
	_, err := ParseBackend(string(l.Backend))
	return err
}

// Normalized returns l with its Backend in canonical form.
func (l Location) Normalized() (Location, error) {
	if err := l.Validate(); err != nil {
		return l, err
	}
	l.Backend, _ = ParseBackend(string(l.Backend))
	return l, nil
}

func (l Location) String() string {
	b := l.Backend
	if b == "" {
		b = BackendJSON
	}
	return fmt.Sprintf("%s:%s", b, l.DataDir)
}
