package notes

import (
	"context"
	"fmt"
	"sync"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/notetool/internal/model"
	appErr "github.com/xxxsen/notetool/internal/pkg/errors"
	"github.com/xxxsen/notetool/internal/remotestore"
)

// Repository mirrors the notes of one namespace. The mirror is replaced
// wholesale on every snapshot delivery; writes go straight to the store and
// only show up here once the store echoes them back.
type Repository struct {
	adapter remotestore.Adapter

	mu        sync.RWMutex
	namespace string
	gen       uint64
	sub       remotestore.Subscription
	notes     []model.Note
	loaded    bool
	loadedCh  chan struct{}
	query     string
	order     model.SortOrder
	view      View
	listeners []func(View)
}

func NewRepository(adapter remotestore.Adapter) *Repository {
	return &Repository{
		adapter:  adapter,
		loadedCh: make(chan struct{}),
		order:    model.SortNewest,
		view:     View{Favorites: []model.Note{}, Others: []model.Note{}},
	}
}

// Start subscribes to the namespace. A running subscription for another
// namespace is torn down and the mirror cleared first.
func (r *Repository) Start(ctx context.Context, namespace string) error {
	r.Stop()
	r.mu.Lock()
	if r.namespace != namespace {
		r.resetLocked()
	}
	r.namespace = namespace
	r.gen++
	gen := r.gen
	r.mu.Unlock()

	sub, err := r.adapter.SubscribeList(ctx, namespace, func(entries []remotestore.Entry) {
		r.handle(gen, entries)
	})
	if err != nil {
		return fmt.Errorf("subscribe notes: %w", err)
	}
	r.mu.Lock()
	r.sub = sub
	r.mu.Unlock()
	return nil
}

func (r *Repository) Stop() {
	r.mu.Lock()
	sub := r.sub
	r.sub = nil
	r.mu.Unlock()
	if sub != nil {
		sub.Unsubscribe()
	}
}

// Reset stops the subscription and forgets the namespace and every note.
func (r *Repository) Reset() {
	r.Stop()
	r.mu.Lock()
	r.resetLocked()
	r.namespace = ""
	view := r.view
	listeners := r.listeners
	r.mu.Unlock()
	notify(listeners, view)
}

func (r *Repository) resetLocked() {
	r.gen++
	r.notes = nil
	r.loaded = false
	r.loadedCh = make(chan struct{})
	r.view = View{Favorites: []model.Note{}, Others: []model.Note{}}
}

func (r *Repository) handle(gen uint64, entries []remotestore.Entry) {
	decoded := Decode(entries)
	Sort(decoded, model.SortNewest)

	r.mu.Lock()
	if gen != r.gen {
		// late delivery from a subscription that has been replaced
		r.mu.Unlock()
		return
	}
	r.notes = decoded
	if !r.loaded {
		r.loaded = true
		close(r.loadedCh)
	}
	r.view = Arrange(r.notes, r.query, r.order)
	view := r.view
	listeners := r.listeners
	r.mu.Unlock()
	notify(listeners, view)
}

func (r *Repository) SetQuery(query string) {
	r.mu.Lock()
	r.query = query
	r.view = Arrange(r.notes, r.query, r.order)
	view := r.view
	listeners := r.listeners
	r.mu.Unlock()
	notify(listeners, view)
}

func (r *Repository) SetSort(order model.SortOrder) {
	r.mu.Lock()
	r.order = order
	r.view = Arrange(r.notes, r.query, r.order)
	view := r.view
	listeners := r.listeners
	r.mu.Unlock()
	notify(listeners, view)
}

func (r *Repository) Query() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.query
}

func (r *Repository) SortOrder() model.SortOrder {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.order
}

func (r *Repository) View() View {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.view
}

// Notes returns the unfiltered mirror, newest first.
func (r *Repository) Notes() []model.Note {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.Note, len(r.notes))
	copy(out, r.notes)
	return out
}

func (r *Repository) Get(id string) (model.Note, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, note := range r.notes {
		if note.ID == id {
			return note, true
		}
	}
	return model.Note{}, false
}

func (r *Repository) Loaded() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loaded
}

func (r *Repository) WaitLoaded(ctx context.Context) error {
	r.mu.RLock()
	ch := r.loadedCh
	r.mu.RUnlock()
	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// OnChange registers fn to run after every re-derivation of the view.
func (r *Repository) OnChange(fn func(View)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, fn)
}

func (r *Repository) Create(ctx context.Context, draft model.Draft) error {
	namespace, err := r.activeNamespace()
	if err != nil {
		return err
	}
	_, err = r.adapter.Create(ctx, namespace, remotestore.Fields{
		"name":       draft.Name,
		"title":      draft.Title,
		"message":    draft.Message,
		"isFavorite": false,
		"timestamp":  remotestore.ServerTimestamp,
	})
	return r.rejected(ctx, "create note", err)
}

// Update rewrites the editable fields and refreshes the timestamp. The
// favorite flag is left untouched.
func (r *Repository) Update(ctx context.Context, id string, draft model.Draft) error {
	namespace, err := r.activeNamespace()
	if err != nil {
		return err
	}
	err = r.adapter.Update(ctx, namespace, id, remotestore.Fields{
		"name":      draft.Name,
		"title":     draft.Title,
		"message":   draft.Message,
		"timestamp": remotestore.ServerTimestamp,
	})
	return r.rejected(ctx, "update note", err)
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	namespace, err := r.activeNamespace()
	if err != nil {
		return err
	}
	return r.rejected(ctx, "delete note", r.adapter.Delete(ctx, namespace, id))
}

func (r *Repository) ToggleFavorite(ctx context.Context, id string) error {
	namespace, err := r.activeNamespace()
	if err != nil {
		return err
	}
	note, ok := r.Get(id)
	if !ok {
		return fmt.Errorf("note %s: %w", id, appErr.ErrNotFound)
	}
	err = r.adapter.Update(ctx, namespace, id, remotestore.Fields{"isFavorite": !note.IsFavorite})
	return r.rejected(ctx, "toggle favorite", err)
}

func (r *Repository) activeNamespace() (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.namespace == "" {
		return "", appErr.ErrUnauthenticated
	}
	return r.namespace, nil
}

func (r *Repository) rejected(ctx context.Context, op string, err error) error {
	if err == nil {
		return nil
	}
	logutil.GetLogger(ctx).Error("note write rejected", zap.String("op", op), zap.Error(err))
	return fmt.Errorf("%s: %w: %w", op, appErr.ErrWriteRejected, err)
}

func notify(listeners []func(View), view View) {
	for _, fn := range listeners {
		fn(view)
	}
}
