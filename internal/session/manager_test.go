package session

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xxxsen/notetool/internal/localstate"
	appErr "github.com/xxxsen/notetool/internal/pkg/errors"
)

func TestResolveQueryTokenWinsAndPersists(t *testing.T) {
	store := localstate.NewMemoryStore()
	require.NoError(t, store.Set(localstate.KeyUserID, "old"))
	m := NewManager(store)

	id, err := m.Resolve(url.Values{"token": {"u1"}})
	require.NoError(t, err)
	require.Equal(t, "u1", id)
	require.Equal(t, Active, m.State())

	persisted, _ := store.Get(localstate.KeyUserID)
	require.Equal(t, "u1", persisted)
}

func TestResolveFallsBackToPersisted(t *testing.T) {
	store := localstate.NewMemoryStore()
	require.NoError(t, store.Set(localstate.KeyUserID, "u2"))
	m := NewManager(store)

	id, err := m.Resolve(url.Values{})
	require.NoError(t, err)
	require.Equal(t, "u2", id)

	id, err = m.Resolve(url.Values{"token": {""}})
	require.NoError(t, err)
	require.Equal(t, "u2", id)
}

func TestResolveWithoutIdentity(t *testing.T) {
	m := NewManager(localstate.NewMemoryStore())
	_, err := m.Resolve(nil)
	require.ErrorIs(t, err, appErr.ErrUnauthenticated)
	require.Equal(t, Unauthenticated, m.State())
	_, ok := m.Identity()
	require.False(t, ok)
}

func TestAnyNonEmptyTokenAccepted(t *testing.T) {
	m := NewManager(localstate.NewMemoryStore())
	id, err := m.Resolve(url.Values{"token": {"  weird token/with.chars "}})
	require.NoError(t, err)
	require.Equal(t, "  weird token/with.chars ", id)
}

func TestLogoutThenResolveIsUnauthenticated(t *testing.T) {
	store := localstate.NewMemoryStore()
	m := NewManager(store)
	_, err := m.Resolve(url.Values{"token": {"u1"}})
	require.NoError(t, err)

	require.NoError(t, m.Logout())
	require.Equal(t, Unauthenticated, m.State())
	_, ok := store.Get(localstate.KeyUserID)
	require.False(t, ok)

	_, err = m.Resolve(url.Values{})
	require.ErrorIs(t, err, appErr.ErrUnauthenticated)
}

func TestRefreshFollowsExternalChanges(t *testing.T) {
	store := localstate.NewMemoryStore()
	m := NewManager(store)
	_, err := m.Resolve(url.Values{"token": {"u1"}})
	require.NoError(t, err)

	require.False(t, m.Refresh())

	require.NoError(t, store.Set(localstate.KeyUserID, "u9"))
	require.True(t, m.Refresh())
	id, ok := m.Identity()
	require.True(t, ok)
	require.Equal(t, "u9", id)

	require.NoError(t, store.Delete(localstate.KeyUserID))
	require.True(t, m.Refresh())
	require.Equal(t, Unauthenticated, m.State())
	require.False(t, m.Refresh())
}
