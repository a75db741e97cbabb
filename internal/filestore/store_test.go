package filestore

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/notetool/internal/config"
)

func TestLocalStoreSaveOpen(t *testing.T) {
	dir := t.TempDir()
	store, err := New(config.FileStoreConfig{Type: "Local", Data: map[string]interface{}{"dir": dir}})
	require.NoError(t, err)
	require.Equal(t, "local", store.Type())

	ctx := context.Background()
	payload := []byte(`{"entries":[]}`)
	require.NoError(t, store.Save(ctx, "snap.json", bytes.NewReader(payload), int64(len(payload))))

	rc, err := store.Open(ctx, "snap.json")
	require.NoError(t, err)
	defer rc.Close()
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.Equal(t, payload, got)

	require.Error(t, store.Save(ctx, "../escape.json", bytes.NewReader(payload), int64(len(payload))))
	require.Error(t, store.Save(ctx, "short.json", bytes.NewReader(payload), 999))
	_, err = store.Open(ctx, "a/b")
	require.Error(t, err)
}

func TestNewValidatesConfig(t *testing.T) {
	_, err := New(config.FileStoreConfig{})
	require.Error(t, err)
	_, err = New(config.FileStoreConfig{Type: "ftp", Data: map[string]interface{}{}})
	require.Error(t, err)
	_, err = New(config.FileStoreConfig{Type: "local"})
	require.Error(t, err)
	_, err = New(config.FileStoreConfig{Type: "local", Data: map[string]interface{}{}})
	require.Error(t, err)
	_, err = New(config.FileStoreConfig{Type: "s3", Data: map[string]interface{}{"endpoint": "minio:9000"}})
	require.Error(t, err)
}

func TestS3StoreBuildsClient(t *testing.T) {
	store, err := New(config.FileStoreConfig{Type: "s3", Data: map[string]interface{}{
		"endpoint":   "minio:9000",
		"bucket":     "notes",
		"secret_id":  "id",
		"secret_key": "key",
		"prefix":     "/backups/",
		"path_style": true,
	}})
	require.NoError(t, err)
	require.Equal(t, "s3", store.Type())
	s := store.(*s3Store)
	require.Equal(t, "backups/x.json", s.objectKey("x.json"))
}

func TestBuildEndpoint(t *testing.T) {
	require.Equal(t, "", buildEndpoint(" ", false))
	require.Equal(t, "http://minio:9000", buildEndpoint("minio:9000", false))
	require.Equal(t, "https://minio:9000", buildEndpoint("minio:9000/", true))
	require.Equal(t, "http://x", buildEndpoint("http://x", true))
}
