package remotestore

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	appErr "github.com/xxxsen/notetool/internal/pkg/errors"
)

type memoryBackend struct {
	mu   sync.RWMutex
	data map[string]map[string]json.RawMessage
}

func NewMemoryBackend() Backend {
	return &memoryBackend{data: make(map[string]map[string]json.RawMessage)}
}

func (m *memoryBackend) Snapshot(ctx context.Context, namespace string) ([]Entry, error) {
	_ = ctx
	m.mu.RLock()
	defer m.mu.RUnlock()
	children := m.data[namespace]
	entries := make([]Entry, 0, len(children))
	for key, value := range children {
		entries = append(entries, Entry{Key: key, Value: cloneRaw(value)})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries, nil
}

func (m *memoryBackend) Get(ctx context.Context, namespace, key string) (json.RawMessage, error) {
	_ = ctx
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.data[namespace][key]
	if !ok {
		return nil, appErr.ErrNotFound
	}
	return cloneRaw(value), nil
}

func (m *memoryBackend) Put(ctx context.Context, namespace, key string, value json.RawMessage) error {
	_ = ctx
	m.mu.Lock()
	defer m.mu.Unlock()
	children, ok := m.data[namespace]
	if !ok {
		children = make(map[string]json.RawMessage)
		m.data[namespace] = children
	}
	children[key] = cloneRaw(value)
	return nil
}

func (m *memoryBackend) Delete(ctx context.Context, namespace, key string) error {
	_ = ctx
	m.mu.Lock()
	defer m.mu.Unlock()
	children := m.data[namespace]
	if _, ok := children[key]; !ok {
		return appErr.ErrNotFound
	}
	delete(children, key)
	if len(children) == 0 {
		delete(m.data, namespace)
	}
	return nil
}

func (m *memoryBackend) Namespaces(ctx context.Context) ([]string, error) {
	_ = ctx
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.data))
	for name := range m.data {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func cloneRaw(raw json.RawMessage) json.RawMessage {
	if raw == nil {
		return nil
	}
	out := make(json.RawMessage, len(raw))
	copy(out, raw)
	return out
}
