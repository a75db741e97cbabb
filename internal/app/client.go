// Package app wires identity, the note mirror, the view preference and the
// editor into one client.
package app

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/notetool/internal/editor"
	"github.com/xxxsen/notetool/internal/localstate"
	"github.com/xxxsen/notetool/internal/model"
	"github.com/xxxsen/notetool/internal/notes"
	"github.com/xxxsen/notetool/internal/remotestore"
	"github.com/xxxsen/notetool/internal/session"
	"github.com/xxxsen/notetool/internal/viewpref"
)

// StateWatcher reports changes made to the local state by someone else.
type StateWatcher interface {
	Watch(ctx context.Context, fn func()) error
}

type Client struct {
	state   localstate.Store
	session *session.Manager
	notes   *notes.Repository
	view    *viewpref.Sync
	editor  *editor.Machine

	mu        sync.Mutex
	listeners []func(session.State)
}

func New(adapter remotestore.Adapter, state localstate.Store) *Client {
	repo := notes.NewRepository(adapter)
	return &Client{
		state:   state,
		session: session.NewManager(state),
		notes:   repo,
		view:    viewpref.New(adapter),
		editor:  editor.New(repo),
	}
}

func (c *Client) Session() *session.Manager { return c.session }
func (c *Client) Notes() *notes.Repository  { return c.notes }
func (c *Client) View() *viewpref.Sync      { return c.view }
func (c *Client) Editor() *editor.Machine   { return c.editor }

// Start resolves the identity from query and, once active, subscribes to
// the notes and view preference of that namespace. Subscriptions live as
// long as ctx.
func (c *Client) Start(ctx context.Context, query url.Values) (string, error) {
	identity, err := c.session.Resolve(query)
	if err != nil {
		c.teardown()
		return "", err
	}
	if err := c.activate(ctx, identity); err != nil {
		return "", err
	}
	return identity, nil
}

func (c *Client) activate(ctx context.Context, identity string) error {
	if err := c.notes.Start(ctx, identity); err != nil {
		return err
	}
	if err := c.view.Start(ctx, identity); err != nil {
		c.notes.Stop()
		return err
	}
	return nil
}

// Logout forgets the identity and everything loaded for it.
func (c *Client) Logout() error {
	c.teardown()
	if err := c.session.Logout(); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	c.notifySession(session.Unauthenticated)
	return nil
}

// Close releases subscriptions but keeps the persisted identity.
func (c *Client) Close() {
	c.notes.Stop()
	c.view.Stop()
}

func (c *Client) teardown() {
	c.notes.Reset()
	c.view.Reset()
	c.editor.Reset()
}

func (c *Client) Theme() model.Theme {
	value, _ := c.state.Get(localstate.KeyTheme)
	return model.ParseTheme(value)
}

func (c *Client) SetTheme(theme model.Theme) error {
	if err := c.state.Set(localstate.KeyTheme, string(theme)); err != nil {
		return fmt.Errorf("save theme: %w", err)
	}
	return nil
}

func (c *Client) ToggleTheme() (model.Theme, error) {
	next := c.Theme().Toggle()
	if err := c.SetTheme(next); err != nil {
		return "", err
	}
	return next, nil
}

// OnSessionChange registers fn to run whenever the client logs out or the
// identity is switched from outside.
func (c *Client) OnSessionChange(fn func(session.State)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// WatchState follows external edits to the local state until ctx is done.
// A logout elsewhere tears the client down; a new identity moves the
// subscriptions over to it.
func (c *Client) WatchState(ctx context.Context, w StateWatcher) error {
	return w.Watch(ctx, func() {
		c.refresh(ctx)
	})
}

func (c *Client) refresh(ctx context.Context) {
	if !c.session.Refresh() {
		return
	}
	identity, active := c.session.Identity()
	if !active {
		logutil.GetLogger(ctx).Info("identity cleared externally")
		c.teardown()
		c.notifySession(session.Unauthenticated)
		return
	}
	logutil.GetLogger(ctx).Info("identity switched externally")
	c.editor.Reset()
	if err := c.activate(ctx, identity); err != nil {
		logutil.GetLogger(ctx).Error("resubscribe after identity switch failed", zap.Error(err))
		return
	}
	c.notifySession(session.Active)
}

func (c *Client) notifySession(state session.State) {
	c.mu.Lock()
	listeners := append([]func(session.State){}, c.listeners...)
	c.mu.Unlock()
	for _, fn := range listeners {
		fn(state)
	}
}
