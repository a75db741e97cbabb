package remotestore

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/notetool/internal/model"
	"github.com/xxxsen/notetool/internal/pkg/timeutil"
	"github.com/xxxsen/notetool/internal/repo"
)

// sqlBackend persists namespaces as rows of the nodes table. Full snapshots
// are cached per namespace and dropped on every write to that namespace.
// A read only fills the cache when no write to its namespace happened
// while the rows were loading.
type sqlBackend struct {
	nodes *repo.NodeRepo
	cache *expirable.LRU[string, []Entry]

	mu     sync.Mutex
	writes map[string]uint64
}

func NewSQLBackend(nodes *repo.NodeRepo, cacheSize int, cacheTTL time.Duration) Backend {
	b := &sqlBackend{nodes: nodes, writes: make(map[string]uint64)}
	if cacheSize > 0 && cacheTTL > 0 {
		b.cache = expirable.NewLRU[string, []Entry](cacheSize, nil, cacheTTL)
	}
	return b
}

func (b *sqlBackend) Snapshot(ctx context.Context, namespace string) ([]Entry, error) {
	if b.cache != nil {
		if cached, ok := b.cache.Get(namespace); ok {
			logutil.GetLogger(ctx).Debug("snapshot cache hit", zap.Int("entries", len(cached)))
			return cloneEntries(cached), nil
		}
	}
	gen := b.generation(namespace)
	items, err := b.nodes.List(ctx, namespace)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(items))
	for _, item := range items {
		entries = append(entries, Entry{Key: item.Key, Value: json.RawMessage(item.Value)})
	}
	b.fill(namespace, gen, entries)
	return entries, nil
}

func (b *sqlBackend) Get(ctx context.Context, namespace, key string) (json.RawMessage, error) {
	item, err := b.nodes.Get(ctx, namespace, key)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(item.Value), nil
}

func (b *sqlBackend) Put(ctx context.Context, namespace, key string, value json.RawMessage) error {
	defer b.invalidate(namespace)
	return b.nodes.Upsert(ctx, &model.Node{
		Namespace: namespace,
		Key:       key,
		Value:     string(value),
		Mtime:     timeutil.NowMillis(),
	})
}

func (b *sqlBackend) Delete(ctx context.Context, namespace, key string) error {
	defer b.invalidate(namespace)
	return b.nodes.Delete(ctx, namespace, key)
}

func (b *sqlBackend) Namespaces(ctx context.Context) ([]string, error) {
	return b.nodes.ListNamespaces(ctx)
}

func (b *sqlBackend) generation(namespace string) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.writes[namespace]
}

func (b *sqlBackend) fill(namespace string, gen uint64, entries []Entry) {
	if b.cache == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.writes[namespace] != gen {
		return
	}
	b.cache.Add(namespace, cloneEntries(entries))
}

func (b *sqlBackend) invalidate(namespace string) {
	if b.cache == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.writes[namespace]++
	b.cache.Remove(namespace)
}

func cloneEntries(entries []Entry) []Entry {
	out := make([]Entry, len(entries))
	for i, entry := range entries {
		out[i] = Entry{Key: entry.Key, Value: cloneRaw(entry.Value)}
	}
	return out
}
