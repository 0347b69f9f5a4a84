package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"porosity-hmi/internal/config"
)

func newTestLogger(t *testing.T) *Logger {
	t.Helper()

	cfg := &config.Config{}
	cfg.Log.Directory = t.TempDir()
	cfg.Server.Mode = "release"

	l, err := NewLogger(cfg)
	require.NoError(t, err)
	t.Cleanup(l.Sync)
	return l
}

func readLog(t *testing.T, l *Logger, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(l.Dir(), name))
	require.NoError(t, err)
	return string(data)
}

func TestLogger_LevelsGoToTheirFiles(t *testing.T) {
	l := newTestLogger(t)

	l.Info("analysis done for image %d", 7)
	l.Warning("region %s has no polygon", "R1")
	l.Error("store failed: %v", os.ErrNotExist)

	info := readLog(t, l, InfoFile)
	require.Contains(t, info, "analysis done for image 7")
	require.NotContains(t, info, "region R1")

	warning := readLog(t, l, WarningFile)
	require.Contains(t, warning, "region R1 has no polygon")
	require.NotContains(t, warning, "store failed")

	require.Contains(t, readLog(t, l, ErrorFile), "store failed")
}

func TestLogger_CleanLogs(t *testing.T) {
	l := newTestLogger(t)

	l.Warning("first warning")
	require.NotEmpty(t, readLog(t, l, WarningFile))

	require.NoError(t, l.CleanLogs(WarningFile))
	require.Empty(t, readLog(t, l, WarningFile))
}

func TestNewNop_DoesNotPanic(t *testing.T) {
	l := NewNop()
	l.Info("x")
	l.Warning("y")
	l.Error("z")
	require.NoError(t, l.CleanLogs(InfoFile))
}
