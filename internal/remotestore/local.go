package remotestore

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/oklog/ulid/v2"

	appErr "github.com/xxxsen/notetool/internal/pkg/errors"
	"github.com/xxxsen/notetool/internal/pkg/timeutil"
)

// Local is an Adapter backed directly by a Backend in this process. It is
// what the store server exposes over HTTP, and what tests use.
type Local struct {
	backend Backend
	hub     *hub
	// mu serializes writes so that snapshots are published in write order.
	mu     sync.Mutex
	now    func() int64
	newKey func() string
}

type LocalOption func(*Local)

func WithClock(now func() int64) LocalOption {
	return func(l *Local) {
		l.now = now
	}
}

func WithKeyGenerator(fn func() string) LocalOption {
	return func(l *Local) {
		l.newKey = fn
	}
}

func NewLocal(backend Backend, opts ...LocalOption) *Local {
	l := &Local{
		backend: backend,
		hub:     newHub(),
		now:     timeutil.NowMillis,
		newKey:  func() string { return ulid.Make().String() },
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Local) Backend() Backend {
	return l.backend
}

func (l *Local) SubscribeList(ctx context.Context, namespace string, fn ListFunc) (Subscription, error) {
	if err := validateNamespace(namespace); err != nil {
		return nil, err
	}
	if fn == nil {
		return nil, fmt.Errorf("list callback is required: %w", appErr.ErrInvalid)
	}
	return l.subscribe(ctx, namespace, func(entries []Entry) { fn(entries) })
}

func (l *Local) SubscribeScalar(ctx context.Context, namespace, key string, fn ScalarFunc) (Subscription, error) {
	if err := validateNamespace(namespace); err != nil {
		return nil, err
	}
	if err := validateKey(key); err != nil {
		return nil, err
	}
	if fn == nil {
		return nil, fmt.Errorf("scalar callback is required: %w", appErr.ErrInvalid)
	}
	return l.subscribe(ctx, namespace, func(entries []Entry) { fn(lookup(entries, key)) })
}

func (l *Local) subscribe(ctx context.Context, namespace string, deliver func([]Entry)) (Subscription, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	entries, err := l.backend.Snapshot(ctx, namespace)
	if err != nil {
		return nil, err
	}
	sub := l.hub.subscribe(ctx, namespace, deliver)
	sub.offer(entries)
	return sub, nil
}

func (l *Local) Create(ctx context.Context, namespace string, fields Fields) (string, error) {
	if err := validateNamespace(namespace); err != nil {
		return "", err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	object, err := l.encodeFields(fields)
	if err != nil {
		return "", err
	}
	value, err := json.Marshal(object)
	if err != nil {
		return "", err
	}
	key := l.newKey()
	if err := l.backend.Put(ctx, namespace, key, value); err != nil {
		return "", err
	}
	l.publishLocked(ctx, namespace)
	return key, nil
}

func (l *Local) Update(ctx context.Context, namespace, key string, fields Fields) error {
	if err := validateNamespace(namespace); err != nil {
		return err
	}
	if err := validateKey(key); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	current, err := l.backend.Get(ctx, namespace, key)
	if err != nil {
		return err
	}
	object := make(map[string]json.RawMessage)
	if err := json.Unmarshal(current, &object); err != nil || object == nil {
		return fmt.Errorf("child %s is not an object: %w", key, appErr.ErrInvalid)
	}
	changes, err := l.encodeFields(fields)
	if err != nil {
		return err
	}
	for name, value := range changes {
		object[name] = value
	}
	value, err := json.Marshal(object)
	if err != nil {
		return err
	}
	if err := l.backend.Put(ctx, namespace, key, value); err != nil {
		return err
	}
	l.publishLocked(ctx, namespace)
	return nil
}

func (l *Local) Delete(ctx context.Context, namespace, key string) error {
	if err := validateNamespace(namespace); err != nil {
		return err
	}
	if err := validateKey(key); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.backend.Delete(ctx, namespace, key); err != nil {
		return err
	}
	l.publishLocked(ctx, namespace)
	return nil
}

func (l *Local) SetScalar(ctx context.Context, namespace, key, value string) error {
	if err := validateNamespace(namespace); err != nil {
		return err
	}
	if err := validateKey(key); err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.backend.Put(ctx, namespace, key, raw); err != nil {
		return err
	}
	l.publishLocked(ctx, namespace)
	return nil
}

// Snapshot reads the namespace without subscribing.
func (l *Local) Snapshot(ctx context.Context, namespace string) ([]Entry, error) {
	if err := validateNamespace(namespace); err != nil {
		return nil, err
	}
	return l.backend.Snapshot(ctx, namespace)
}

// Scalar reads a single child without subscribing; nil when unset.
func (l *Local) Scalar(ctx context.Context, namespace, key string) (json.RawMessage, error) {
	if err := validateNamespace(namespace); err != nil {
		return nil, err
	}
	value, err := l.backend.Get(ctx, namespace, key)
	if appErr.IsNotFound(err) {
		return nil, nil
	}
	return value, err
}

func (l *Local) publishLocked(ctx context.Context, namespace string) {
	if !l.hub.hasSubscribers(namespace) {
		return
	}
	entries, err := l.backend.Snapshot(ctx, namespace)
	if err != nil {
		// the write already landed; subscribers catch up on the next one
		return
	}
	l.hub.publish(namespace, entries)
}

func (l *Local) encodeFields(fields Fields) (map[string]json.RawMessage, error) {
	out := make(map[string]json.RawMessage, len(fields))
	for name, value := range fields {
		if strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("empty field name: %w", appErr.ErrInvalid)
		}
		raw, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("encode field %s: %w", name, appErr.ErrInvalid)
		}
		if isServerTimestamp(raw) {
			raw, _ = json.Marshal(l.now())
		}
		out[name] = raw
	}
	return out, nil
}

func lookup(entries []Entry, key string) json.RawMessage {
	for _, entry := range entries {
		if entry.Key == key {
			return entry.Value
		}
	}
	return nil
}

func validateNamespace(namespace string) error {
	if strings.TrimSpace(namespace) == "" {
		return fmt.Errorf("namespace is required: %w", appErr.ErrInvalid)
	}
	return nil
}

func validateKey(key string) error {
	if strings.TrimSpace(key) == "" || strings.ContainsAny(key, "/.#$[]") {
		return fmt.Errorf("invalid key %q: %w", key, appErr.ErrInvalid)
	}
	return nil
}
