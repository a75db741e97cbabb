package repo_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/notetool/internal/config"
	"github.com/xxxsen/notetool/internal/db"
	"github.com/xxxsen/notetool/internal/model"
	appErr "github.com/xxxsen/notetool/internal/pkg/errors"
	"github.com/xxxsen/notetool/internal/repo"
)

func openTestRepo(t *testing.T) *repo.NodeRepo {
	t.Helper()
	conn, err := db.Open(config.StoreConfig{Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "nodes.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, db.ApplyMigrations(conn))
	return repo.NewNodeRepo(conn, "sqlite")
}

func TestNodeRepoCRUDAndIsolation(t *testing.T) {
	nodes := openTestRepo(t)
	ctx := context.Background()

	require.NoError(t, nodes.Upsert(ctx, &model.Node{Namespace: "u1", Key: "b", Value: `{"title":"B"}`, Mtime: 1}))
	require.NoError(t, nodes.Upsert(ctx, &model.Node{Namespace: "u1", Key: "a", Value: `{"title":"A"}`, Mtime: 2}))
	require.NoError(t, nodes.Upsert(ctx, &model.Node{Namespace: "u2", Key: "a", Value: `"grid"`, Mtime: 3}))

	items, err := nodes.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, "a", items[0].Key)
	require.Equal(t, "b", items[1].Key)

	require.NoError(t, nodes.Upsert(ctx, &model.Node{Namespace: "u1", Key: "a", Value: `{"title":"A2"}`, Mtime: 4}))
	item, err := nodes.Get(ctx, "u1", "a")
	require.NoError(t, err)
	require.Equal(t, `{"title":"A2"}`, item.Value)
	require.Equal(t, int64(4), item.Mtime)

	_, err = nodes.Get(ctx, "u2", "b")
	require.ErrorIs(t, err, appErr.ErrNotFound)

	names, err := nodes.ListNamespaces(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"u1", "u2"}, names)

	require.NoError(t, nodes.Delete(ctx, "u1", "a"))
	require.ErrorIs(t, nodes.Delete(ctx, "u1", "a"), appErr.ErrNotFound)
}
