package atomicfile

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFile(t *testing.T) {
	t.Run("creates missing parent directories", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "a", "b", "file.json")
		require.NoError(t, WriteFile(path, []byte("hello"), 0o644))

		got, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "hello", string(got))
	})

	t.Run("replaces existing content and leaves no temp files", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "file.json")
		require.NoError(t, WriteFile(path, []byte("first"), 0o644))
		require.NoError(t, WriteFile(path, []byte("second"), 0o644))

		got, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "second", string(got))

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})

	t.Run("stray temp file does not affect destination", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "file.json")
		require.NoError(t, WriteFile(path, []byte(`{"ok":true}`), 0o644))

		// A crash after the temp write but before the rename leaves this behind.
		stray := filepath.Join(dir, "file.json.123.tmp")
		require.NoError(t, os.WriteFile(stray, []byte(`{"ok":`), 0o644))

		got, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.True(t, json.Valid(got))
		assert.Equal(t, `{"ok":true}`, string(got))
	})

	t.Run("fails when parent is a file", func(t *testing.T) {
		dir := t.TempDir()
		blocker := filepath.Join(dir, "blocker")
		require.NoError(t, os.WriteFile(blocker, nil, 0o644))

		err := WriteFile(filepath.Join(blocker, "file.json"), []byte("x"), 0o644)
		assert.Error(t, err)
	})
}

func TestWriteJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.json")
	require.NoError(t, WriteJSON(path, map[string]int{"a": 1}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var got map[string]int
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, 1, got["a"])
	assert.Contains(t, string(raw), "\n  \"a\"")
}
