package migrate

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

type seeded struct {
	projectID string
	itemIDs   []string
}

// seedDatabase writes a relational database with one populated project.
func seedDatabase(t *testing.T, path string) seeded {
	t.Helper()
	db, err := sqlite.Open(path)
	require.NoError(t, err)
	defer db.Close()

	p, err := db.CreateProject(types.NewProject{
		Name:     "Alpha",
		Metadata: types.ProjectMetadata{GithubURL: "https://github.com/acme/alpha"},
	})
	require.NoError(t, err)
	var out seeded
	out.projectID = p.ID
	for _, title := range []string{"readme", "editor"} {
		it, err := db.CreateItem(p.ID, types.NewItem{Type: types.ItemTypeNote, Title: title})
		require.NoError(t, err)
		out.itemIDs = append(out.itemIDs, it.ID)
	}
	td, err := db.CreateTodo(p.ID, "plan", 0)
	require.NoError(t, err)
	_, err = db.UpdateTodo(td.ID, types.TodoUpdate{Completed: types.Ptr(true)})
	require.NoError(t, err)
	_, err = db.CreateTodo(p.ID, "detail", 1)
	require.NoError(t, err)
	_, err = db.CreateFileCard(p.ID, types.NewFileCard{Filename: "main.go", FilePath: "/src/main.go"})
	require.NoError(t, err)
	require.NoError(t, db.SetSetting("theme", "dark"))
	return out
}

func TestRun_MigratesDatabase(t *testing.T) {
	dataDir := t.TempDir()
	dbPath := filepath.Join(dataDir, sqlite.DBFileName)
	want := seedDatabase(t, dbPath)

	res, err := Run(t.TempDir(), dataDir)
	require.NoError(t, err)
	assert.Equal(t, OutcomeMigrated, res.Outcome)
	assert.Equal(t, dbPath, res.Source)
	assert.Equal(t, 1, res.ProjectsMigrated)
	assert.Equal(t, 2, res.ItemsMigrated)
	assert.Equal(t, 2, res.TodosMigrated)
	assert.Equal(t, 1, res.FileCardsMigrated)
	assert.Equal(t, 1, res.SettingsMigrated)

	assert.NoFileExists(t, dbPath)
	assert.FileExists(t, dbPath+MigratedSuffix)

	doc, err := jsonstore.ReadDocument(dataDir, want.projectID)
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, "- [x] plan\n  - [ ] detail", doc.Todos)

	s, err := jsonstore.Open(dataDir)
	require.NoError(t, err)
	defer s.Close()

	p, err := s.GetProject(want.projectID)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "Alpha", p.Name)
	assert.Equal(t, "https://github.com/acme/alpha", p.Metadata.GithubURL)
	require.Len(t, p.Items, 2)
	assert.Equal(t, want.itemIDs, []string{p.Items[0].ID, p.Items[1].ID})

	todos, err := s.ListTodos(want.projectID)
	require.NoError(t, err)
	require.Len(t, todos, 2)
	assert.True(t, todos[0].Completed)
	assert.NotNil(t, todos[0].CompletedAt)

	cards, err := s.ListFileCards(want.projectID)
	require.NoError(t, err)
	assert.Len(t, cards, 1)

	v, ok, err := s.Setting("theme")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "dark", v)
}

func TestRun_IsIdempotent(t *testing.T) {
	dataDir := t.TempDir()
	seedDatabase(t, filepath.Join(dataDir, sqlite.DBFileName))

	_, err := Run("", dataDir)
	require.NoError(t, err)

	// A database reappearing later is left alone once the index has projects.
	seedDatabase(t, filepath.Join(dataDir, sqlite.DBFileName))
	res, err := Run("", dataDir)
	require.NoError(t, err)
	assert.Equal(t, OutcomeNoOp, res.Outcome)
	assert.FileExists(t, filepath.Join(dataDir, sqlite.DBFileName))
}

func TestRun_FreshStart(t *testing.T) {
	dataDir := t.TempDir()
	res, err := Run(t.TempDir(), dataDir)
	require.NoError(t, err)
	assert.Equal(t, OutcomeFreshStart, res.Outcome)
	assert.NoFileExists(t, jsonstore.IndexPath(dataDir))
}

func TestRun_EmptyIndexStillMigrates(t *testing.T) {
	dataDir := t.TempDir()
	require.NoError(t, jsonstore.WriteIndex(dataDir, jsonstore.NewIndex()))
	seedDatabase(t, filepath.Join(dataDir, sqlite.DBFileName))

	res, err := Run("", dataDir)
	require.NoError(t, err)
	assert.Equal(t, OutcomeMigrated, res.Outcome)
}

func TestRun_FallsBackToConfigDir(t *testing.T) {
	configDir := t.TempDir()
	dataDir := filepath.Join(t.TempDir(), "data")
	dbPath := filepath.Join(configDir, sqlite.DBFileName)
	seedDatabase(t, dbPath)

	res, err := Run(configDir, dataDir)
	require.NoError(t, err)
	assert.Equal(t, OutcomeMigrated, res.Outcome)
	assert.Equal(t, dbPath, res.Source)
	assert.FileExists(t, dbPath+MigratedSuffix)
	assert.FileExists(t, jsonstore.IndexPath(dataDir))
}

func TestRun_FailureLeavesDatabase(t *testing.T) {
	dataDir := t.TempDir()
	dbPath := filepath.Join(dataDir, sqlite.DBFileName)
	seedDatabase(t, dbPath)

	// A plain file where the projects directory belongs makes every
	// document write fail.
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, jsonstore.ProjectsDir), nil, 0o644))

	_, err := Run("", dataDir)
	require.Error(t, err)
	assert.FileExists(t, dbPath)
	assert.NoFileExists(t, dbPath+MigratedSuffix)
	assert.NoFileExists(t, jsonstore.IndexPath(dataDir))
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "noop", OutcomeNoOp.String())
	assert.Equal(t, "fresh-start", OutcomeFreshStart.String())
	assert.Equal(t, "migrated", OutcomeMigrated.String())
	assert.Equal(t, "Outcome(9)", Outcome(9).String())
}
