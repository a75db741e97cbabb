package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	appErr "github.com/xxxsen/notetool/internal/pkg/errors"
	"github.com/xxxsen/notetool/internal/remotestore"
)

func newStoreService() *StoreService {
	local := remotestore.NewLocal(remotestore.NewMemoryBackend(),
		remotestore.WithClock(func() int64 { return 99 }),
		remotestore.WithKeyGenerator(func() string { return "k1" }),
	)
	return NewStoreService(local)
}

func TestStoreServiceCreateStampsServerTime(t *testing.T) {
	ctx := context.Background()
	svc := newStoreService()
	key, err := svc.Create(ctx, "u1", map[string]json.RawMessage{
		"title":     json.RawMessage(`"hello"`),
		"timestamp": json.RawMessage(`{".sv":"timestamp"}`),
	})
	require.NoError(t, err)
	require.Equal(t, "k1", key)

	entries, err := svc.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.JSONEq(t, `{"title":"hello","timestamp":99}`, string(entries[0].Value))
}

func TestStoreServiceRejectsEmptyWrites(t *testing.T) {
	ctx := context.Background()
	svc := newStoreService()
	_, err := svc.Create(ctx, "u1", nil)
	require.ErrorIs(t, err, appErr.ErrInvalid)
	require.ErrorIs(t, svc.Update(ctx, "u1", "k1", map[string]json.RawMessage{}), appErr.ErrInvalid)
}

func TestStoreServiceEmptyNamespace(t *testing.T) {
	ctx := context.Background()
	svc := newStoreService()
	entries, err := svc.List(ctx, "nobody")
	require.NoError(t, err)
	require.NotNil(t, entries)
	require.Empty(t, entries)

	value, err := svc.Scalar(ctx, "nobody", "listStatus")
	require.NoError(t, err)
	require.Equal(t, "null", string(value))
}

func TestStoreServiceScalar(t *testing.T) {
	ctx := context.Background()
	svc := newStoreService()
	require.NoError(t, svc.SetScalar(ctx, "u1", "listStatus", "grid"))
	value, err := svc.Scalar(ctx, "u1", "listStatus")
	require.NoError(t, err)
	require.JSONEq(t, `"grid"`, string(value))
}
