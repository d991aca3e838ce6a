package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
	t.Setenv("PAIRUI_CONFIG", "")
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	c, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "http://localhost:8081", c.API.URL)
	require.Equal(t, 2*time.Minute, c.API.Timeout)
	require.Equal(t, 3*time.Second, c.Notify.Delay)
	require.Equal(t, 2*time.Second, c.Pair.RedirectDelay)
	require.Equal(t, slog.LevelInfo, c.Level())
}

func TestLoad_FileInWorkingDirectory(t *testing.T) {
	isolate(t)
	require.NoError(t, os.WriteFile("pairui.yaml", []byte(`
api:
  url: http://10.0.0.5:8081
notify:
  delay: 5s
log:
  level: debug
`), 0o644))

	c, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "http://10.0.0.5:8081", c.API.URL)
	require.Equal(t, 5*time.Second, c.Notify.Delay)
	require.Equal(t, 2*time.Second, c.Pair.RedirectDelay)
	require.Equal(t, slog.LevelDebug, c.Level())
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("pair:\n  redirect_delay: 1s\n"), 0o644))
	t.Setenv("PAIRUI_CONFIG", path)
	t.Setenv("PAIRUI_PAIR_REDIRECT_DELAY", "750ms")
	t.Setenv("PAIRUI_API_URL", "http://pairing.local")

	c, err := Load("")
	require.NoError(t, err)
	require.Equal(t, 750*time.Millisecond, c.Pair.RedirectDelay)
	require.Equal(t, "http://pairing.local", c.API.URL)
}

func TestLoad_ExplicitPathMustExist(t *testing.T) {
	isolate(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestLevel_FallsBackToInfo(t *testing.T) {
	require.Equal(t, slog.LevelInfo, Config{Log: LogConfig{Level: "loud"}}.Level())
	require.Equal(t, slog.LevelWarn, Config{Log: LogConfig{Level: "warn"}}.Level())
}
