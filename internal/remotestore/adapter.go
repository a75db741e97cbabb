// Package remotestore is the client-side view of the realtime key/value store
// holding every user's notes. A namespace is a flat map from child key to a
// JSON value; note objects and reserved scalars live side by side.
//
// Subscriptions are snapshot based: every mutation re-delivers the complete
// current state of the namespace (or scalar) to every subscriber. Consumers
// never merge deltas.
package remotestore

import (
	"context"
	"encoding/json"
)

// Entry is one child of a namespace.
type Entry struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

// Fields is the payload of Create and Update. Values are JSON encoded by the
// store; ServerTimestamp is replaced with the store clock in milliseconds.
type Fields map[string]interface{}

// ListFunc receives the full namespace snapshot, ordered by key.
type ListFunc func(entries []Entry)

// ScalarFunc receives the current value of a single child, nil when unset.
type ScalarFunc func(value json.RawMessage)

type Subscription interface {
	Unsubscribe()
}

type Adapter interface {
	SubscribeList(ctx context.Context, namespace string, fn ListFunc) (Subscription, error)
	SubscribeScalar(ctx context.Context, namespace, key string, fn ScalarFunc) (Subscription, error)
	Create(ctx context.Context, namespace string, fields Fields) (string, error)
	Update(ctx context.Context, namespace, key string, fields Fields) error
	Delete(ctx context.Context, namespace, key string) error
	SetScalar(ctx context.Context, namespace, key, value string) error
}

type serverValue struct {
	SV string `json:".sv"`
}

// ServerTimestamp asks the store to stamp a field with its own clock.
var ServerTimestamp = serverValue{SV: "timestamp"}

func isServerTimestamp(raw json.RawMessage) bool {
	var v serverValue
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	return v.SV == ServerTimestamp.SV
}
