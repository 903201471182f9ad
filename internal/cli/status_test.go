package cli

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusCommand_HumanOutput(t *testing.T) {
	env := testEnv(t, nil)
	require.NoError(t, env.store.Add("https://example.com/", "t"))

	cmd := &StatusCommand{globals: &GlobalFlags{}, version: "0.1.0-test"}

	output := captureOutput(t, func() {
		require.NoError(t, cmd.executeWithEnv(env))
	})

	assert.Contains(t, output, "Retrace Status")
	assert.Contains(t, output, "0.1.0-test")
	assert.Contains(t, output, "Index entries: 1")
	assert.Contains(t, output, "Unsaved:       1")
	assert.Contains(t, output, "Load:          complete")
}

func TestStatusCommand_JSONOutput(t *testing.T) {
	env := testEnv(t, nil)
	require.NoError(t, env.store.Add("https://example.com/", "t"))
	require.NoError(t, env.saves.FlushAll())

	cmd := &StatusCommand{globals: &GlobalFlags{JSON: true}, version: "0.1.0-test"}

	output := captureOutput(t, func() {
		require.NoError(t, cmd.executeWithEnv(env))
	})

	var got statusJSON
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(output)), &got))

	assert.Equal(t, "0.1.0-test", got.Version)
	assert.Equal(t, 1, got.IndexEntries)
	assert.Equal(t, 1, got.NewThisRun)
	assert.Equal(t, 0, got.Unsaved)
	assert.True(t, got.Loaded)
	assert.NotZero(t, got.FileSizeBytes)
}
