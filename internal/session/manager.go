// Package session resolves which namespace the client works in. The token
// is an opaque, unvalidated identity: whoever presents it owns its notes.
package session

import (
	"fmt"
	"net/url"
	"sync"

	"github.com/xxxsen/notetool/internal/localstate"
	appErr "github.com/xxxsen/notetool/internal/pkg/errors"
)

const TokenParam = "token"

type State int

const (
	Unauthenticated State = iota
	Active
)

func (s State) String() string {
	if s == Active {
		return "active"
	}
	return "unauthenticated"
}

type Manager struct {
	store localstate.Store

	mu       sync.RWMutex
	state    State
	identity string
}

func NewManager(store localstate.Store) *Manager {
	return &Manager{store: store}
}

// Resolve prefers a token carried in query and persists it, overwriting any
// previous identity. Without one it falls back to the persisted identity.
func (m *Manager) Resolve(query url.Values) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if token := query.Get(TokenParam); token != "" {
		if err := m.store.Set(localstate.KeyUserID, token); err != nil {
			return "", fmt.Errorf("persist identity: %w", err)
		}
		m.activateLocked(token)
		return token, nil
	}
	if token, ok := m.store.Get(localstate.KeyUserID); ok && token != "" {
		m.activateLocked(token)
		return token, nil
	}
	m.deactivateLocked()
	return "", appErr.ErrUnauthenticated
}

func (m *Manager) Logout() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deactivateLocked()
	if err := m.store.Delete(localstate.KeyUserID); err != nil {
		return fmt.Errorf("clear identity: %w", err)
	}
	return nil
}

// Refresh re-reads the persisted identity after an external change to the
// local state and reports whether the active identity changed.
func (m *Manager) Refresh() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	token, ok := m.store.Get(localstate.KeyUserID)
	if !ok || token == "" {
		if m.state == Unauthenticated {
			return false
		}
		m.deactivateLocked()
		return true
	}
	if m.state == Active && m.identity == token {
		return false
	}
	m.activateLocked(token)
	return true
}

func (m *Manager) Identity() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.identity, m.state == Active
}

func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

func (m *Manager) activateLocked(token string) {
	m.state = Active
	m.identity = token
}

func (m *Manager) deactivateLocked() {
	m.state = Unauthenticated
	m.identity = ""
}
