package remotestore

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/notetool/internal/config"
	"github.com/xxxsen/notetool/internal/db"
	"github.com/xxxsen/notetool/internal/repo"
)

func openSQLBackend(t *testing.T, cacheSize int) Backend {
	t.Helper()
	conn, err := db.Open(config.StoreConfig{Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "store.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, db.ApplyMigrations(conn))
	return NewSQLBackend(repo.NewNodeRepo(conn, "sqlite"), cacheSize, time.Minute)
}

func TestLocalSQLBackend(t *testing.T) {
	runAdapterSuite(t, newTestLocal(openSQLBackend(t, 16)))
}

func TestSQLBackendCacheInvalidatedOnWrite(t *testing.T) {
	backend := openSQLBackend(t, 16)
	ctx := context.Background()

	entries, err := backend.Snapshot(ctx, "u1")
	require.NoError(t, err)
	require.Empty(t, entries)

	require.NoError(t, backend.Put(ctx, "u1", "a", []byte(`{"title":"A"}`)))
	entries, err = backend.Snapshot(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, entries, 1)

	require.NoError(t, backend.Delete(ctx, "u1", "a"))
	entries, err = backend.Snapshot(ctx, "u1")
	require.NoError(t, err)
	require.Empty(t, entries)

	names, err := backend.Namespaces(ctx)
	require.NoError(t, err)
	require.Empty(t, names)
}

func TestSQLBackendSkipsFillAfterConcurrentWrite(t *testing.T) {
	backend := openSQLBackend(t, 16).(*sqlBackend)
	ctx := context.Background()

	gen := backend.generation("u1")
	stale := []Entry{}
	require.NoError(t, backend.Put(ctx, "u1", "a", []byte(`{"title":"A"}`)))
	backend.fill("u1", gen, stale)

	_, ok := backend.cache.Get("u1")
	require.False(t, ok)
	entries, err := backend.Snapshot(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, entries, 1)

	// an untouched namespace keeps caching
	backend.fill("u2", backend.generation("u2"), stale)
	_, ok = backend.cache.Get("u2")
	require.True(t, ok)
}

func TestLocalSQLSnapshotConsistentUnderConcurrentReads(t *testing.T) {
	local := newTestLocal(openSQLBackend(t, 16))
	ctx := context.Background()

	total := 0
	for round := 0; round < 10; round++ {
		stop := make(chan struct{})
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for {
					select {
					case <-stop:
						return
					default:
					}
					_, _ = local.Snapshot(ctx, "u1")
				}
			}()
		}
		for i := 0; i < 6; i++ {
			_, err := local.Create(ctx, "u1", Fields{"title": "t"})
			require.NoError(t, err)
			total++
		}
		close(stop)
		wg.Wait()

		entries, err := local.Snapshot(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, entries, total, "round %d", round)
	}

	rec := newListRecorder()
	sub, err := local.SubscribeList(ctx, "u1", rec.fn)
	require.NoError(t, err)
	defer sub.Unsubscribe()
	rec.next(t, withLen(total))
}
