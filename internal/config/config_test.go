package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, Config{LogLevel: DefaultLogLevel}, cfg)
}

func TestLoad_ReadsYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("data_dir: /srv/devora\nlog_level: debug\n"), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "/srv/devora", cfg.DataDir)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_MalformedYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("data_dir: [unclosed\n"), 0o644))

	_, err := Load(dir)
	assert.Error(t, err)
}

func TestLoad_LegacySettingsFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, legacyFileName), []byte(`{"database_path": "/old/place"}`), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "/old/place", cfg.DataDir)

	// Once config.yaml exists the legacy file is ignored.
	require.NoError(t, SetDataDir(dir, ""))
	cfg, err = Load(dir)
	require.NoError(t, err)
	assert.Empty(t, cfg.DataDir)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	require.NoError(t, Save(dir, Config{DataDir: "/data", LogLevel: "warn"}))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, Config{DataDir: "/data", LogLevel: "warn"}, cfg)
}

func TestSetDataDir_KeepsOtherSettings(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Save(dir, Config{LogLevel: "debug"}))
	require.NoError(t, SetDataDir(dir, "/moved"))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "/moved", cfg.DataDir)
	assert.Equal(t, "debug", cfg.LogLevel)
}
