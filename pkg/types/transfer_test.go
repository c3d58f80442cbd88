package types

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseImportMode(t *testing.T) {
	assert.Equal(t, ImportReplace, ParseImportMode("replace"))
	assert.Equal(t, ImportMerge, ParseImportMode("merge"))
	assert.Equal(t, ImportMerge, ParseImportMode(""))
	assert.Equal(t, ImportMerge, ParseImportMode("overwrite"))
}

func TestExportFileRoundTrip(t *testing.T) {
	now := time.Date(2025, 6, 1, 8, 30, 0, 0, time.UTC)
	export := &ExportData{
		Version:    ExportVersion,
		ExportedAt: now,
		Projects:   []ProjectRow{{ID: "p1", Name: "Alpha", Metadata: "{}", CreatedAt: now, UpdatedAt: now}},
		Items:      []Item{{ID: "i1", ProjectID: "p1", Type: ItemTypeNote, Title: "n", CreatedAt: now, UpdatedAt: now}},
		FileCards:  []FileCardRow{{ID: "c1", ProjectID: "p1", Filename: "a.txt", IsExpanded: 1, CreatedAt: now, UpdatedAt: now}},
	}

	path := filepath.Join(t.TempDir(), "export.json")
	require.NoError(t, WriteExportFile(path, export))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"exportedAt"`)
	assert.Contains(t, string(raw), `"fileCards"`)
	assert.Contains(t, string(raw), `"version": "1.0"`)

	got, err := ReadExportFile(path)
	require.NoError(t, err)
	assert.Equal(t, export.ImportData(), got)
}

func TestReadExportFileErrors(t *testing.T) {
	_, err := ReadExportFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o644))
	_, err = ReadExportFile(path)
	assert.Error(t, err)
}

func TestReadExportFileVersion(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"current", `{"version":"1.0","projects":[]}`, false},
		{"minor bump", `{"version":"1.3","projects":[]}`, false},
		{"no version", `{"projects":[]}`, false},
		{"next major", `{"version":"2.0","projects":[]}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".json")
			require.NoError(t, os.WriteFile(path, []byte(tt.body), 0o644))
			_, err := ReadExportFile(path)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedExport)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
