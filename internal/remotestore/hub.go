package remotestore

import (
	"context"
	"sync"
	"sync/atomic"
)

// hub fans namespace snapshots out to subscribers. Each subscriber owns a
// goroutine and a one-slot mailbox holding the latest undelivered snapshot,
// so publishing never blocks and a slow subscriber skips straight to the
// newest state.
type hub struct {
	mu     sync.Mutex
	nextID uint64
	subs   map[string]map[uint64]*subscriber
}

func newHub() *hub {
	return &hub{subs: make(map[string]map[uint64]*subscriber)}
}

type subscriber struct {
	id        uint64
	namespace string
	hub       *hub
	deliver   func([]Entry)

	mu      sync.Mutex
	pending []Entry
	has     bool
	signal  chan struct{}
	done    chan struct{}
	closed  atomic.Bool
	once    sync.Once
}

func (h *hub) subscribe(ctx context.Context, namespace string, deliver func([]Entry)) *subscriber {
	h.mu.Lock()
	h.nextID++
	sub := &subscriber{
		id:        h.nextID,
		namespace: namespace,
		hub:       h,
		deliver:   deliver,
		signal:    make(chan struct{}, 1),
		done:      make(chan struct{}),
	}
	children, ok := h.subs[namespace]
	if !ok {
		children = make(map[uint64]*subscriber)
		h.subs[namespace] = children
	}
	children[sub.id] = sub
	h.mu.Unlock()

	go sub.run()
	if ctx != nil && ctx.Done() != nil {
		go func() {
			select {
			case <-ctx.Done():
				sub.Unsubscribe()
			case <-sub.done:
			}
		}()
	}
	return sub
}

func (h *hub) hasSubscribers(namespace string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[namespace]) > 0
}

func (h *hub) publish(namespace string, entries []Entry) {
	h.mu.Lock()
	targets := make([]*subscriber, 0, len(h.subs[namespace]))
	for _, sub := range h.subs[namespace] {
		targets = append(targets, sub)
	}
	h.mu.Unlock()
	for _, sub := range targets {
		sub.offer(entries)
	}
}

func (h *hub) remove(sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	children := h.subs[sub.namespace]
	delete(children, sub.id)
	if len(children) == 0 {
		delete(h.subs, sub.namespace)
	}
}

func (s *subscriber) offer(entries []Entry) {
	s.mu.Lock()
	s.pending = entries
	s.has = true
	s.mu.Unlock()
	select {
	case s.signal <- struct{}{}:
	default:
	}
}

func (s *subscriber) run() {
	for {
		select {
		case <-s.done:
			return
		case <-s.signal:
			s.mu.Lock()
			entries, has := s.pending, s.has
			s.pending, s.has = nil, false
			s.mu.Unlock()
			if has && !s.closed.Load() {
				s.deliver(entries)
			}
		}
	}
}

func (s *subscriber) Unsubscribe() {
	s.once.Do(func() {
		s.closed.Store(true)
		s.hub.remove(s)
		close(s.done)
	})
}
