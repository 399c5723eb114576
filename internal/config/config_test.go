package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	derrors "multazim/internal/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, "bot:\n  token: abc123\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, "abc123", cfg.Bot.Token)
	require.Equal(t, 30, cfg.Bot.PollTimeout)
	require.Equal(t, "file", cfg.Storage.Backend)
	require.Equal(t, "./data", cfg.Storage.DataDir)
	require.Equal(t, ":8090", cfg.HTTP.Addr)
	require.Equal(t, 24*time.Hour, cfg.Backup.IntervalDuration())
	require.Equal(t, 14, cfg.Backup.Keep)
	require.Equal(t, "info", cfg.Logging.Level)
	require.Equal(t, "text", cfg.Logging.Format)
}

func TestLoad_ExpandsEnvironment(t *testing.T) {
	t.Setenv("TEST_BOT_TOKEN", "secret-token")
	path := writeConfig(t, "bot:\n  token: ${TEST_BOT_TOKEN}\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "secret-token", cfg.Bot.Token)
}

func TestLoad_MissingToken(t *testing.T) {
	path := writeConfig(t, "bot: {}\n")

	_, err := Load(path)
	require.Error(t, err)
	require.True(t, derrors.IsCategory(err, derrors.CategoryConfig))
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	require.True(t, derrors.IsCategory(err, derrors.CategoryConfig))
}

func TestLoad_RejectsUnknownBackend(t *testing.T) {
	path := writeConfig(t, "bot:\n  token: abc\nstorage:\n  backend: redis\n")

	_, err := Load(path)
	require.Error(t, err)
	require.True(t, derrors.IsCategory(err, derrors.CategoryValidation))
}

func TestLoad_RejectsBadTimezone(t *testing.T) {
	path := writeConfig(t, "bot:\n  token: abc\ntimezone: Mars/Olympus\n")

	_, err := Load(path)
	require.Error(t, err)
}

func TestLocation_ResolvesConfiguredZone(t *testing.T) {
	cfg := &Config{Timezone: "Africa/Cairo"}
	require.Equal(t, "Africa/Cairo", cfg.Location().String())

	cfg = &Config{}
	require.Equal(t, time.Local, cfg.Location())
}

func TestInit_WritesLoadableConfig(t *testing.T) {
	t.Setenv("MULTAZIM_BOT_TOKEN", "from-env")
	path := filepath.Join(t.TempDir(), "config.yaml")

	require.NoError(t, Init(path, false))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "from-env", cfg.Bot.Token)
	require.Equal(t, "Africa/Cairo", cfg.Timezone)
}

func TestInit_RefusesOverwriteWithoutForce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, Init(path, false))

	err := Init(path, false)
	require.Error(t, err)

	require.NoError(t, Init(path, true))
}
