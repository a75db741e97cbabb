package job

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/notetool/internal/config"
	"github.com/xxxsen/notetool/internal/filestore"
	"github.com/xxxsen/notetool/internal/remotestore"
)

func TestBackupJobWritesEveryNamespace(t *testing.T) {
	ctx := context.Background()
	backend := remotestore.NewMemoryBackend()
	local := remotestore.NewLocal(backend)
	_, err := local.Create(ctx, "secret-token-1", remotestore.Fields{"title": "a"})
	require.NoError(t, err)
	require.NoError(t, local.SetScalar(ctx, "secret-token-2", "listStatus", "grid"))

	dir := t.TempDir()
	store, err := filestore.New(config.FileStoreConfig{Type: "local", Data: map[string]interface{}{"dir": dir}})
	require.NoError(t, err)

	stamp := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	j := NewBackupJob(backend, store)
	j.now = func() time.Time { return stamp }
	require.Equal(t, "snapshot_backup", j.Name())
	require.NoError(t, j.Run(ctx))

	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, files, 2)
	for _, f := range files {
		require.True(t, strings.HasPrefix(f.Name(), "20260102T030405Z-"))
		require.NotContains(t, f.Name(), "secret")
	}

	rc, err := store.Open(ctx, BackupKey(stamp, "secret-token-2"))
	require.NoError(t, err)
	defer rc.Close()
	raw, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NotContains(t, string(raw), "secret-token")

	var backup Backup
	require.NoError(t, json.Unmarshal(raw, &backup))
	require.Equal(t, NamespaceDigest("secret-token-2"), backup.Namespace)
	require.Equal(t, stamp.UnixMilli(), backup.TakenAt)
	require.Len(t, backup.Entries, 1)
	require.Equal(t, "listStatus", backup.Entries[0].Key)
	require.JSONEq(t, `"grid"`, string(backup.Entries[0].Value))
}

func TestNamespaceDigestIsStable(t *testing.T) {
	require.Equal(t, NamespaceDigest("u1"), NamespaceDigest("u1"))
	require.NotEqual(t, NamespaceDigest("u1"), NamespaceDigest("u2"))
	require.Len(t, NamespaceDigest("u1"), 64)
}

func TestBackupJobWithoutStoreIsNoop(t *testing.T) {
	require.NoError(t, NewBackupJob(nil, nil).Run(context.Background()))
}
