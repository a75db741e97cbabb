// Package viewpref keeps the list/grid display choice in step with the
// store so it follows the user across devices.
package viewpref

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/notetool/internal/model"
	appErr "github.com/xxxsen/notetool/internal/pkg/errors"
	"github.com/xxxsen/notetool/internal/remotestore"
)

type Sync struct {
	adapter remotestore.Adapter

	mu        sync.RWMutex
	namespace string
	gen       uint64
	sub       remotestore.Subscription
	mode      model.ViewMode
	loadedCh  chan struct{}
	listeners []func(model.ViewMode)
}

func New(adapter remotestore.Adapter) *Sync {
	return &Sync{adapter: adapter, mode: model.ViewList, loadedCh: make(chan struct{})}
}

func (s *Sync) Start(ctx context.Context, namespace string) error {
	s.Stop()
	s.mu.Lock()
	if s.namespace != namespace {
		s.mode = model.ViewList
		s.loadedCh = make(chan struct{})
	}
	s.namespace = namespace
	s.gen++
	gen := s.gen
	s.mu.Unlock()

	sub, err := s.adapter.SubscribeScalar(ctx, namespace, model.ListStatusKey, func(value json.RawMessage) {
		s.handle(gen, value)
	})
	if err != nil {
		return fmt.Errorf("subscribe view preference: %w", err)
	}
	s.mu.Lock()
	s.sub = sub
	s.mu.Unlock()
	return nil
}

func (s *Sync) Stop() {
	s.mu.Lock()
	sub := s.sub
	s.sub = nil
	s.mu.Unlock()
	if sub != nil {
		sub.Unsubscribe()
	}
}

// Reset stops syncing and falls back to the default mode.
func (s *Sync) Reset() {
	s.Stop()
	s.mu.Lock()
	s.gen++
	s.namespace = ""
	s.mode = model.ViewList
	s.loadedCh = make(chan struct{})
	listeners := s.listeners
	s.mu.Unlock()
	notify(listeners, model.ViewList)
}

func (s *Sync) handle(gen uint64, value json.RawMessage) {
	mode := decode(value)
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return
	}
	s.mode = mode
	select {
	case <-s.loadedCh:
	default:
		close(s.loadedCh)
	}
	listeners := s.listeners
	s.mu.Unlock()
	notify(listeners, mode)
}

// WaitLoaded blocks until the store has delivered the preference at least
// once for the current namespace.
func (s *Sync) WaitLoaded(ctx context.Context) error {
	s.mu.RLock()
	ch := s.loadedCh
	s.mu.RUnlock()
	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Sync) Mode() model.ViewMode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mode
}

// Set switches the mode locally right away and writes it to the store. A
// rejected write leaves the local mode in place until the store says
// otherwise.
func (s *Sync) Set(ctx context.Context, mode model.ViewMode) error {
	s.mu.Lock()
	namespace := s.namespace
	if namespace == "" {
		s.mu.Unlock()
		return appErr.ErrUnauthenticated
	}
	s.mode = mode
	listeners := s.listeners
	s.mu.Unlock()
	notify(listeners, mode)

	if err := s.adapter.SetScalar(ctx, namespace, model.ListStatusKey, string(mode)); err != nil {
		logutil.GetLogger(ctx).Error("view preference write rejected",
			zap.String("mode", string(mode)), zap.Error(err))
		return fmt.Errorf("set view mode: %w: %w", appErr.ErrWriteRejected, err)
	}
	return nil
}

func (s *Sync) Toggle(ctx context.Context) error {
	next := model.ViewGrid
	if s.Mode() == model.ViewGrid {
		next = model.ViewList
	}
	return s.Set(ctx, next)
}

func (s *Sync) OnChange(fn func(model.ViewMode)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func decode(value json.RawMessage) model.ViewMode {
	if len(value) == 0 {
		return model.ViewList
	}
	var raw string
	if err := json.Unmarshal(value, &raw); err != nil {
		return model.ViewList
	}
	return model.ParseViewMode(raw)
}

func notify(listeners []func(model.ViewMode), mode model.ViewMode) {
	for _, fn := range listeners {
		fn(mode)
	}
}
