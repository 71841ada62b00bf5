package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_Disabled(t *testing.T) {
	require.NoError(t, Init(Options{}))
	assert.False(t, L.Enabled(t.Context(), LevelDebug))
}

func TestInit_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "tinyctl.log")
	require.NoError(t, Init(Options{Enabled: true, LogFile: path, Level: LevelDebug}))
	t.Cleanup(func() { _ = Init(Options{}) })

	Debug("alloc", "size", 16)
	Info("done")
	require.NoError(t, Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "alloc", rec["msg"])
	assert.Equal(t, "DEBUG", rec["level"])
	assert.InDelta(t, 16, rec["size"], 0)
}

func TestInit_DefaultLevelIsInfo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tinyctl.log")
	require.NoError(t, Init(Options{Enabled: true, LogFile: path}))
	t.Cleanup(func() { _ = Init(Options{}) })

	assert.False(t, L.Enabled(t.Context(), LevelDebug))
	Warn("kept")
	require.NoError(t, Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"kept"`)
}
