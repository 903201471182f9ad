package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "~/.local/share/retrace", cfg.Storage.Path)
	assert.Equal(t, "history", cfg.Storage.HistoryFile)
	assert.Equal(t, 100, cfg.Recent.Lines)
	assert.Equal(t, 60, cfg.Save.IntervalSeconds)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadValidYAMLOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")

	yamlContent := `
storage:
  path: /var/lib/retrace
recent:
  lines: 25
logging:
  level: "debug"
`
	err := os.WriteFile(cfgPath, []byte(yamlContent), 0644)
	require.NoError(t, err)

	cfg, err := Load(cfgPath)
	require.NoError(t, err)

	// Overridden values
	assert.Equal(t, "/var/lib/retrace", cfg.Storage.Path)
	assert.Equal(t, 25, cfg.Recent.Lines)
	assert.Equal(t, "debug", cfg.Logging.Level)

	// Non-overridden values remain defaults
	assert.Equal(t, "history", cfg.Storage.HistoryFile)
	assert.Equal(t, 60, cfg.Save.IntervalSeconds)
}

func TestLoadClampsRecentLines(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")

	err := os.WriteFile(cfgPath, []byte("recent:\n  lines: -5\n"), 0644)
	require.NoError(t, err)

	cfg, err := Load(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, 100, cfg.Recent.Lines)
}

func TestLoadInvalidYAMLReturnsError(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")

	err := os.WriteFile(cfgPath, []byte(":::not valid yaml{{{"), 0644)
	require.NoError(t, err)

	_, err = Load(cfgPath)
	assert.Error(t, err)
}

func TestLoadMissingFileReturnsError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadOrCreateAtWritesDefaults(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "nested", "config.yaml")

	cfg, err := LoadOrCreateAt(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	// The file exists now and loads back the same.
	reloaded, err := Load(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, cfg, reloaded)
}

func TestHistoryPath(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Storage.Path = "/data/retrace"

	path, err := cfg.HistoryPath()
	require.NoError(t, err)
	assert.Equal(t, "/data/retrace/history", path)
}
