package jsonstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/devora/internal/storetest"
	"github.com/mesh-intelligence/devora/pkg/types"
)

func openTestStore(t *testing.T, dir string, clock func() time.Time) *Store {
	t.Helper()
	s, err := Open(dir, WithClock(clock))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStoreContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T, clock func() time.Time) types.Store {
		return openTestStore(t, t.TempDir(), clock)
	})
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestOpen_CreatesLayout(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	openTestStore(t, dir, nil)

	assert.DirExists(t, filepath.Join(dir, ProjectsDir))
	idx, err := ReadIndex(dir)
	require.NoError(t, err)
	require.NotNil(t, idx)
	assert.Equal(t, IndexVersion, idx.Version)
	assert.True(t, idx.Empty())
}

func TestOpen_CorruptIndex(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, IndexPath(dir), "{not json")

	_, err := Open(dir)
	assert.Error(t, err)
}

func TestOpen_Persists(t *testing.T) {
	dir := t.TempDir()
	s := openTestStore(t, dir, nil)
	p, err := s.CreateProject(types.NewProject{Name: "Alpha"})
	require.NoError(t, err)
	_, err = s.CreateTodo(p.ID, "write docs", 0)
	require.NoError(t, err)
	_, err = s.CreateTodo(p.ID, "proofread", 1)
	require.NoError(t, err)
	require.NoError(t, s.SetSetting("theme", "dark"))

	reopened := openTestStore(t, dir, nil)
	got, err := reopened.GetProject(p.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Alpha", got.Name)

	v, ok, err := reopened.Setting("theme")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "dark", v)

	text, err := reopened.ProjectTodos(p.ID)
	require.NoError(t, err)
	assert.Equal(t, "- [ ] write docs\n  - [ ] proofread", text)

	doc, err := ReadDocument(dir, p.ID)
	require.NoError(t, err)
	assert.Equal(t, text, doc.Todos, "outline text is written alongside the records")

	idx, err := ReadIndex(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{p.ID}, idx.ProjectIDs)
	assert.Equal(t, []ProjectInfo{{ID: p.ID, Name: "Alpha"}}, idx.Projects)
}

func TestIndex_LegacyIDList(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, IndexPath(dir), `{"version":1,"project_ids":["p1"],"global_settings":{"k":"v"}}`)
	writeFile(t, DocumentPath(dir, "p1"), `{
		"id": "p1", "name": "Legacy", "description": "",
		"metadata": "{\"github_url\":\"https://github.com/acme/legacy\"}",
		"items": [{"id":"i1","project_id":"p1","type":"hologram","title":"x","content":"","order":0,
			"created_at":"2024-01-01T00:00:00Z","updated_at":"2024-01-01T00:00:00Z"}],
		"todos": [{"id":"t1","project_id":"p1","content":"old","completed":true,"order":0,"indent_level":0,
			"created_at":"2024-01-01T00:00:00Z","updated_at":"2024-01-01T00:00:00Z"}],
		"created_at": "2024-01-01T00:00:00Z", "updated_at": "2024-01-02T00:00:00Z"
	}`)

	s := openTestStore(t, dir, nil)
	list, err := s.ListProjects()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Legacy", list[0].Name)
	assert.Equal(t, "https://github.com/acme/legacy", list[0].Metadata.GithubURL)

	items, err := s.ListItems("p1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, types.ItemTypeNote, items[0].Type)

	todos, err := s.ListTodos("p1")
	require.NoError(t, err)
	require.Len(t, todos, 1)
	assert.Equal(t, "old", todos[0].Content)
	assert.True(t, todos[0].Completed)

	v, ok, err := s.Setting("k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", v)
}

func TestReadDocument_OutlineOnlyTodos(t *testing.T) {
	dir := t.TempDir()
	const outline = `"todos":"- [x] done\n  - [ ] child\nnot a todo\n      - [ ] deep\n- [ ] last"`
	writeFile(t, DocumentPath(dir, "p1"), `{"id":"p1","name":"P",`+outline+`,"updated_at":"2024-06-01T00:00:00Z"}`)

	a, err := ReadDocument(dir, "p1")
	require.NoError(t, err)
	b, err := ReadDocument(dir, "p1")
	require.NoError(t, err)

	require.Len(t, a.TodoItems, 4)
	assert.Equal(t, "done", a.TodoItems[0].Content)
	assert.True(t, a.TodoItems[0].Completed)
	require.NotNil(t, a.TodoItems[0].CompletedAt)
	assert.Equal(t, []int{0, 1, 3, 0}, []int{
		a.TodoItems[0].IndentLevel, a.TodoItems[1].IndentLevel, a.TodoItems[2].IndentLevel, a.TodoItems[3].IndentLevel,
	})
	assert.Equal(t, "deep", a.TodoItems[2].Content)
	assert.Equal(t, []int{0, 1, 2, 3}, []int{
		a.TodoItems[0].Order, a.TodoItems[1].Order, a.TodoItems[2].Order, a.TodoItems[3].Order,
	})
	for i := range a.TodoItems {
		assert.Equal(t, "p1", a.TodoItems[i].ProjectID)
		assert.Equal(t, a.TodoItems[i].ID, b.TodoItems[i].ID, "recovered ids are stable")
	}

	// A document without an id takes it from its file name before the
	// outline is recovered, so the todos still belong to the project.
	writeFile(t, DocumentPath(dir, "p1"), `{"name":"P",`+outline+`}`)
	c, err := ReadDocument(dir, "p1")
	require.NoError(t, err)
	assert.Equal(t, "p1", c.ID)
	require.Len(t, c.TodoItems, 4)
	for i := range c.TodoItems {
		assert.Equal(t, "p1", c.TodoItems[i].ProjectID)
		assert.Equal(t, a.TodoItems[i].ID, c.TodoItems[i].ID)
	}
}

func TestReadDocument_OutlineTodosVisibleThroughStore(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, IndexPath(dir), `{"version":1,"projects":[{"id":"p1","name":"P"}]}`)
	writeFile(t, DocumentPath(dir, "p1"), `{"name":"P","todos":"- [ ] one\n  - [x] two"}`)

	s := openTestStore(t, dir, nil)
	todos, err := s.ListTodos("p1")
	require.NoError(t, err)
	require.Len(t, todos, 2)

	reopen := false
	done, err := s.UpdateTodo(todos[1].ID, types.TodoUpdate{Completed: &reopen})
	require.NoError(t, err)
	require.NotNil(t, done)
	assert.False(t, done.Completed)
	assert.Equal(t, "p1", done.ProjectID)
}

func TestDocument_MalformedMetadata(t *testing.T) {
	var d Document
	require.NoError(t, json.Unmarshal([]byte(`{"id":"p","metadata":"{broken"}`), &d))
	assert.Equal(t, types.ProjectMetadata{}, d.Metadata)

	require.NoError(t, json.Unmarshal([]byte(`{"id":"p","metadata":{"custom_url":"https://x"}}`), &d))
	assert.Equal(t, "https://x", d.Metadata.CustomURL)
}

func TestListProjects_SkipsCorruptDocuments(t *testing.T) {
	dir := t.TempDir()
	s := openTestStore(t, dir, nil)
	good, err := s.CreateProject(types.NewProject{Name: "Good"})
	require.NoError(t, err)
	bad, err := s.CreateProject(types.NewProject{Name: "Bad"})
	require.NoError(t, err)

	writeFile(t, DocumentPath(dir, bad.ID), "{garbage")
	s.ClearCache()

	list, err := s.ListProjects()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, good.ID, list[0].ID)

	_, err = s.GetProject(bad.ID)
	assert.Error(t, err)
}

func TestGetProject_RequiresIndexEntry(t *testing.T) {
	dir := t.TempDir()
	s := openTestStore(t, dir, nil)
	writeFile(t, DocumentPath(dir, "stray"), `{"id":"stray","name":"Stray"}`)

	got, err := s.GetProject("stray")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestImport_RejectsUnsafeIDs(t *testing.T) {
	dir := t.TempDir()
	s := openTestStore(t, dir, nil)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	res, err := s.Import(types.ImportData{Projects: []types.ProjectRow{
		{ID: "../escape", Name: "x", CreatedAt: now, UpdatedAt: now},
		{ID: "a/b", Name: "y", CreatedAt: now, UpdatedAt: now},
		{ID: "", Name: "z", CreatedAt: now, UpdatedAt: now},
		{ID: "ok", Name: "fine", CreatedAt: now, UpdatedAt: now},
	}}, types.ImportMerge)
	require.NoError(t, err)
	assert.Equal(t, 1, res.ProjectsImported)
	assert.Equal(t, 3, res.Skipped)
	assert.NoFileExists(t, filepath.Join(dir, "escape.json"))
	assert.FileExists(t, DocumentPath(dir, "ok"))
}

func TestImport_DoesNotTouchProjects(t *testing.T) {
	s := openTestStore(t, t.TempDir(), storetest.NewClock().Now)
	p, err := s.CreateProject(types.NewProject{Name: "Alpha"})
	require.NoError(t, err)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	res, err := s.Import(types.ImportData{Items: []types.Item{{
		ID: "imported", ProjectID: p.ID, Type: types.ItemTypeURL, Title: "site", CreatedAt: now, UpdatedAt: now,
	}}}, types.ImportMerge)
	require.NoError(t, err)
	assert.Equal(t, 1, res.ItemsImported)

	got, err := s.GetProject(p.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.True(t, got.UpdatedAt.Equal(p.UpdatedAt))
}

func TestDeleteProject_StaysDeleted(t *testing.T) {
	dir := t.TempDir()
	s := openTestStore(t, dir, nil)
	keep, err := s.CreateProject(types.NewProject{Name: "Keep"})
	require.NoError(t, err)
	gone, err := s.CreateProject(types.NewProject{Name: "Gone"})
	require.NoError(t, err)

	ok, err := s.DeleteProject(gone.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	idx, err := ReadIndex(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{keep.ID}, idx.ProjectIDs)
	assert.Equal(t, []ProjectInfo{{ID: keep.ID, Name: "Keep"}}, idx.Projects)

	// Any later index write must not bring the project back.
	require.NoError(t, s.SetSetting("theme", "dark"))
	reopened := openTestStore(t, dir, nil)
	got, err := reopened.GetProject(gone.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	ok, err = reopened.DeleteProject(gone.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	res, err := reopened.Import(types.ImportData{Projects: []types.ProjectRow{
		{ID: gone.ID, Name: "Gone again", CreatedAt: gone.CreatedAt, UpdatedAt: gone.UpdatedAt},
	}}, types.ImportMerge)
	require.NoError(t, err)
	assert.Equal(t, 1, res.ProjectsImported)
	assert.Equal(t, 0, res.Skipped)
}

func TestImport_ReplaceWithEmptyEnvelopeClearsIndex(t *testing.T) {
	dir := t.TempDir()
	s := openTestStore(t, dir, nil)
	for _, name := range []string{"A", "B"} {
		_, err := s.CreateProject(types.NewProject{Name: name})
		require.NoError(t, err)
	}

	_, err := s.Import(types.ImportData{}, types.ImportReplace)
	require.NoError(t, err)

	idx, err := ReadIndex(dir)
	require.NoError(t, err)
	assert.Empty(t, idx.Projects)
	assert.Empty(t, idx.ProjectIDs)
	assert.True(t, idx.Empty())

	list, err := openTestStore(t, dir, nil).ListProjects()
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestIndex_LegacyIDListDelete(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, IndexPath(dir), `{"version":1,"project_ids":["p1","p2"]}`)
	writeFile(t, DocumentPath(dir, "p1"), `{"id":"p1","name":"One"}`)
	writeFile(t, DocumentPath(dir, "p2"), `{"id":"p2","name":"Two"}`)

	s := openTestStore(t, dir, nil)
	ok, err := s.DeleteProject("p1")
	require.NoError(t, err)
	assert.True(t, ok)

	idx, err := ReadIndex(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"p2"}, idx.ProjectIDs)
	require.Len(t, idx.Projects, 1)
	assert.Equal(t, "p2", idx.Projects[0].ID)

	list, err := openTestStore(t, dir, nil).ListProjects()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Two", list[0].Name)
}

func TestLoad_DropsReadsThatRacedEviction(t *testing.T) {
	dir := t.TempDir()
	s := openTestStore(t, dir, nil)
	p, err := s.CreateProject(types.NewProject{Name: "Alpha"})
	require.NoError(t, err)

	stale, err := ReadDocument(dir, p.ID)
	require.NoError(t, err)
	gen := s.generation()
	s.ClearCache()

	got := s.install(p.ID, stale, gen)
	assert.Same(t, stale, got)
	s.cacheMu.RLock()
	_, cached := s.cache[p.ID]
	s.cacheMu.RUnlock()
	assert.False(t, cached, "a read that began before the cache was cleared is not kept")

	// Edits made behind the store's back are seen on the next load.
	writeFile(t, DocumentPath(dir, p.ID), fmt.Sprintf(`{"id":%q,"name":"Edited"}`, p.ID))
	got, err = s.load(p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Edited", got.Name)

	fresh := s.install(p.ID, stale, s.generation())
	assert.Same(t, got, fresh, "the cached copy wins over a later read")
}

func TestUpdateProject_ConcurrentRenamesKeepIndexInStep(t *testing.T) {
	dir := t.TempDir()
	s := openTestStore(t, dir, nil)
	p, err := s.CreateProject(types.NewProject{Name: "start"})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			name := fmt.Sprintf("name-%02d", i)
			_, err := s.UpdateProject(p.ID, types.ProjectUpdate{Name: &name})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := s.GetProject(p.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	idx, err := ReadIndex(dir)
	require.NoError(t, err)
	require.Len(t, idx.Projects, 1)
	assert.Equal(t, got.Name, idx.Projects[0].Name)

	doc, err := ReadDocument(dir, p.ID)
	require.NoError(t, err)
	assert.Equal(t, got.Name, doc.Name)
}
