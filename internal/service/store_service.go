package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	appErr "github.com/xxxsen/notetool/internal/pkg/errors"
	"github.com/xxxsen/notetool/internal/remotestore"
)

// StoreService is what the HTTP layer sees of the store: raw JSON in, raw
// JSON out, every write fanned out to watchers of the namespace.
type StoreService struct {
	store *remotestore.Local
}

func NewStoreService(store *remotestore.Local) *StoreService {
	return &StoreService{store: store}
}

func (s *StoreService) List(ctx context.Context, namespace string) ([]remotestore.Entry, error) {
	entries, err := s.store.Snapshot(ctx, namespace)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []remotestore.Entry{}
	}
	return entries, nil
}

func (s *StoreService) Create(ctx context.Context, namespace string, fields map[string]json.RawMessage) (string, error) {
	if len(fields) == 0 {
		return "", fmt.Errorf("no fields: %w", appErr.ErrInvalid)
	}
	key, err := s.store.Create(ctx, namespace, toFields(fields))
	if err != nil {
		return "", err
	}
	logutil.GetLogger(ctx).Debug("entry created", zap.String("key", key), zap.Int("fields", len(fields)))
	return key, nil
}

func (s *StoreService) Update(ctx context.Context, namespace, key string, fields map[string]json.RawMessage) error {
	if len(fields) == 0 {
		return fmt.Errorf("no fields: %w", appErr.ErrInvalid)
	}
	if err := s.store.Update(ctx, namespace, key, toFields(fields)); err != nil {
		return err
	}
	logutil.GetLogger(ctx).Debug("entry updated", zap.String("key", key), zap.Int("fields", len(fields)))
	return nil
}

func (s *StoreService) Delete(ctx context.Context, namespace, key string) error {
	if err := s.store.Delete(ctx, namespace, key); err != nil {
		return err
	}
	logutil.GetLogger(ctx).Debug("entry deleted", zap.String("key", key))
	return nil
}

// Scalar returns the raw value of key, or JSON null when it was never set.
func (s *StoreService) Scalar(ctx context.Context, namespace, key string) (json.RawMessage, error) {
	value, err := s.store.Scalar(ctx, namespace, key)
	if err != nil {
		return nil, err
	}
	if value == nil {
		return json.RawMessage("null"), nil
	}
	return value, nil
}

func (s *StoreService) SetScalar(ctx context.Context, namespace, key, value string) error {
	return s.store.SetScalar(ctx, namespace, key, value)
}

func (s *StoreService) WatchList(ctx context.Context, namespace string, fn remotestore.ListFunc) (remotestore.Subscription, error) {
	return s.store.SubscribeList(ctx, namespace, fn)
}

func (s *StoreService) WatchScalar(ctx context.Context, namespace, key string, fn remotestore.ScalarFunc) (remotestore.Subscription, error) {
	return s.store.SubscribeScalar(ctx, namespace, key, fn)
}

func toFields(fields map[string]json.RawMessage) remotestore.Fields {
	out := make(remotestore.Fields, len(fields))
	for name, raw := range fields {
		out[name] = raw
	}
	return out
}
