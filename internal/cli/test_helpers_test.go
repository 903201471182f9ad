package cli

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/runnerr0/retrace/internal/config"
	"github.com/runnerr0/retrace/internal/history"
	"github.com/runnerr0/retrace/internal/index"
	"github.com/runnerr0/retrace/internal/linefile"
	"github.com/runnerr0/retrace/internal/saver"
)

// testEnv creates a fully loaded store environment over a temp history
// file.
func testEnv(t *testing.T, confirmer history.Confirmer) *storeEnv {
	t.Helper()

	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Storage.Path = dir

	table, err := index.NewTable()
	require.NoError(t, err)
	t.Cleanup(func() { table.Close() })

	file := linefile.New(filepath.Join(dir, cfg.Storage.HistoryFile))
	saves := saver.NewManager(nil)
	store := history.NewStore(file, table, history.Options{
		Confirmer:   confirmer,
		Registrar:   saves,
		RecentLines: cfg.Recent.Lines,
	})
	require.NoError(t, store.RunLoad())

	return &storeEnv{cfg: cfg, file: file, table: table, store: store, saves: saves}
}

// captureOutput captures stdout during fn execution and returns it as a string.
func captureOutput(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	fn()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	return buf.String()
}
