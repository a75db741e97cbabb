package remotestore

import (
	"context"
	"encoding/json"
)

// Backend persists namespaces. Implementations need not be transactional:
// Local serializes read-modify-write cycles itself.
type Backend interface {
	// Snapshot returns every child of the namespace ordered by key.
	Snapshot(ctx context.Context, namespace string) ([]Entry, error)
	// Get returns ErrNotFound when the child does not exist.
	Get(ctx context.Context, namespace, key string) (json.RawMessage, error)
	Put(ctx context.Context, namespace, key string, value json.RawMessage) error
	// Delete returns ErrNotFound when the child does not exist.
	Delete(ctx context.Context, namespace, key string) error
	Namespaces(ctx context.Context) ([]string, error)
}
