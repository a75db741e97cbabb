package notes

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/xxxsen/notetool/internal/remotestore"
)

type fakeUpdate struct {
	ID     string
	Fields remotestore.Fields
}

// fakeAdapter records writes and lets tests push snapshots by hand. It never
// echoes writes back, which makes the absence of optimistic updates visible.
type fakeAdapter struct {
	mu           sync.Mutex
	namespace    string
	listFn       remotestore.ListFunc
	creates      []remotestore.Fields
	updates      []fakeUpdate
	deletes      []string
	err          error
	unsubscribed int
}

type fakeSubscription struct {
	a *fakeAdapter
}

func (s fakeSubscription) Unsubscribe() {
	s.a.mu.Lock()
	defer s.a.mu.Unlock()
	s.a.unsubscribed++
	s.a.listFn = nil
}

func (a *fakeAdapter) SubscribeList(ctx context.Context, namespace string, fn remotestore.ListFunc) (remotestore.Subscription, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.namespace = namespace
	a.listFn = fn
	return fakeSubscription{a: a}, nil
}

func (a *fakeAdapter) SubscribeScalar(ctx context.Context, namespace, key string, fn remotestore.ScalarFunc) (remotestore.Subscription, error) {
	return fakeSubscription{a: a}, nil
}

func (a *fakeAdapter) Create(ctx context.Context, namespace string, fields remotestore.Fields) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return "", a.err
	}
	a.creates = append(a.creates, fields)
	return "new-id", nil
}

func (a *fakeAdapter) Update(ctx context.Context, namespace, key string, fields remotestore.Fields) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return a.err
	}
	a.updates = append(a.updates, fakeUpdate{ID: key, Fields: fields})
	return nil
}

func (a *fakeAdapter) Delete(ctx context.Context, namespace, key string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return a.err
	}
	a.deletes = append(a.deletes, key)
	return nil
}

func (a *fakeAdapter) SetScalar(ctx context.Context, namespace, key, value string) error {
	return a.err
}

func (a *fakeAdapter) push(entries ...remotestore.Entry) {
	a.mu.Lock()
	fn := a.listFn
	a.mu.Unlock()
	if fn != nil {
		fn(entries)
	}
}

func noteEntry(key, body string) remotestore.Entry {
	return remotestore.Entry{Key: key, Value: json.RawMessage(body)}
}
