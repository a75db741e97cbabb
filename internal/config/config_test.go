package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `{"port": 8080, "store": {"dsn": "notes.db"}}`))
	require.NoError(t, err)
	require.Equal(t, "info", cfg.LogConfig.Level)
	require.Equal(t, "sql", cfg.Store.Type)
	require.Equal(t, "sqlite", cfg.Store.Driver)
	require.Equal(t, int64(60), cfg.Store.CacheTTLSeconds)
	require.False(t, cfg.Backup.Enabled)
}

func TestLoadRejectsMissingFields(t *testing.T) {
	_, err := Load(writeConfig(t, `{"store": {"type": "memory"}}`))
	require.Error(t, err)

	_, err = Load(writeConfig(t, `{"port": 1, "store": {"type": "sql"}}`))
	require.Error(t, err)

	_, err = Load(writeConfig(t, `{"port": 1, "store": {"type": "redis"}}`))
	require.Error(t, err)

	_, err = Load(writeConfig(t, `{"port": 1, "store": {"type": "memory"}, "backup": {"enabled": true}}`))
	require.Error(t, err)
}

func TestLoadBackupDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `{"port": 1, "store": {"type": "memory"},
		"backup": {"enabled": true, "file_store": {"type": "local", "data": {"dir": "/tmp/x"}}}}`))
	require.NoError(t, err)
	require.Equal(t, "0 3 * * *", cfg.Backup.Spec)
}
