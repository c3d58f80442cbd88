package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/devora/internal/jsonstore"
	"github.com/mesh-intelligence/devora/internal/sqlite"
	"github.com/mesh-intelligence/devora/pkg/types"
)

func TestOpen_SelectsBackend(t *testing.T) {
	tests := []struct {
		backend  types.Backend
		wantFile string
	}{
		{types.BackendJSON, jsonstore.IndexFileName},
		{"", jsonstore.IndexFileName},
		{types.BackendSQLite, sqlite.DBFileName},
	}
	for _, tt := range tests {
		t.Run(string(tt.backend), func(t *testing.T) {
			dir := t.TempDir()
			s, err := Open(types.Location{Backend: tt.backend, DataDir: dir})
			require.NoError(t, err)
			defer s.Close()

			p, err := s.CreateProject(types.NewProject{Name: "Alpha"})
			require.NoError(t, err)
			got, err := s.GetProject(p.ID)
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.FileExists(t, filepath.Join(dir, tt.wantFile))
		})
	}
}

func TestOpen_RejectsBadLocation(t *testing.T) {
	_, err := Open(types.Location{Backend: types.BackendJSON})
	assert.ErrorIs(t, err, types.ErrDataDirEmpty)

	_, err = Open(types.Location{Backend: "postgres", DataDir: t.TempDir()})
	assert.ErrorIs(t, err, types.ErrBackendUnknown)
}

func TestOpenExisting(t *testing.T) {
	for _, backend := range []types.Backend{types.BackendJSON, types.BackendSQLite} {
		t.Run(string(backend), func(t *testing.T) {
			dir := t.TempDir()
			loc := types.Location{Backend: backend, DataDir: dir}

			_, err := OpenExisting(loc)
			assert.ErrorIs(t, err, ErrNotFound)
			entries, err := os.ReadDir(dir)
			require.NoError(t, err)
			assert.Empty(t, entries, "a missing store is not created")

			s, err := Open(loc)
			require.NoError(t, err)
			_, err = s.CreateProject(types.NewProject{Name: "Alpha"})
			require.NoError(t, err)
			require.NoError(t, s.Close())

			again, err := OpenExisting(loc)
			require.NoError(t, err)
			defer again.Close()
			list, err := again.ListProjects()
			require.NoError(t, err)
			require.Len(t, list, 1)
			assert.Equal(t, "Alpha", list[0].Name)
		})
	}
}

func TestMarkerPath(t *testing.T) {
	got, err := MarkerPath(types.Location{Backend: types.BackendSQLite, DataDir: "/d"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/d", sqlite.DBFileName), got)

	got, err = MarkerPath(types.Location{DataDir: "/d"})
	require.NoError(t, err)
	assert.Equal(t, jsonstore.IndexPath("/d"), got)

	_, err = MarkerPath(types.Location{Backend: "csv", DataDir: "/d"})
	assert.ErrorIs(t, err, types.ErrBackendUnknown)
}
