// Package editor holds the screen-level state of the client: browsing the
// list, editing one draft, or looking at settings.
package editor

import (
	"context"
	"fmt"
	"sync"

	"github.com/xxxsen/notetool/internal/model"
	appErr "github.com/xxxsen/notetool/internal/pkg/errors"
	"github.com/xxxsen/notetool/internal/pkg/richtext"
)

type Mode int

const (
	ModeList Mode = iota
	ModeEditing
	ModeSettings
)

func (m Mode) String() string {
	switch m {
	case ModeEditing:
		return "editing"
	case ModeSettings:
		return "settings"
	default:
		return "list"
	}
}

// Committer persists a finished draft.
type Committer interface {
	Create(ctx context.Context, draft model.Draft) error
	Update(ctx context.Context, id string, draft model.Draft) error
}

type Machine struct {
	committer Committer

	mu    sync.Mutex
	mode  Mode
	draft model.Draft
	// bumped whenever a draft is opened or dropped so a save finishing late
	// cannot close a different draft.
	gen uint64
}

func New(committer Committer) *Machine {
	return &Machine{committer: committer}
}

func (m *Machine) Mode() Mode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mode
}

// Draft returns the draft being edited; ok is false outside Editing.
func (m *Machine) Draft() (model.Draft, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.draft, m.mode == ModeEditing
}

func (m *Machine) NewNote() error {
	return m.open(model.Draft{})
}

func (m *Machine) Open(note model.Note) error {
	return m.open(model.DraftFromNote(note))
}

func (m *Machine) open(draft model.Draft) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.mode != ModeList {
		return m.invalid("open draft")
	}
	m.mode = ModeEditing
	m.draft = draft
	m.gen++
	return nil
}

func (m *Machine) SetName(name string) error {
	return m.edit(func(d *model.Draft) { d.Name = name })
}

func (m *Machine) SetTitle(title string) error {
	return m.edit(func(d *model.Draft) { d.Title = title })
}

func (m *Machine) SetMessage(message string) error {
	return m.edit(func(d *model.Draft) { d.Message = message })
}

func (m *Machine) edit(fn func(d *model.Draft)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.mode != ModeEditing {
		return m.invalid("edit draft")
	}
	fn(&m.draft)
	return nil
}

// Save commits the draft and returns to the list. An empty draft never
// reaches the store. On any failure the machine stays in Editing with the
// draft untouched.
func (m *Machine) Save(ctx context.Context) error {
	m.mu.Lock()
	if m.mode != ModeEditing {
		defer m.mu.Unlock()
		return m.invalid("save")
	}
	draft, gen := m.draft, m.gen
	m.mu.Unlock()

	if draft.Empty() {
		return appErr.ErrEmptyDraft
	}
	var err error
	if draft.Bound() {
		err = m.committer.Update(ctx, draft.NoteID, draft)
	} else {
		err = m.committer.Create(ctx, draft)
	}
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.mode == ModeEditing && m.gen == gen {
		m.closeLocked()
	}
	return nil
}

// Back leaves Editing and throws the draft away.
func (m *Machine) Back() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.mode != ModeEditing {
		return m.invalid("back")
	}
	m.closeLocked()
	return nil
}

func (m *Machine) OpenSettings() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.mode != ModeList {
		return m.invalid("open settings")
	}
	m.mode = ModeSettings
	return nil
}

func (m *Machine) CloseSettings() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.mode != ModeSettings {
		return m.invalid("close settings")
	}
	m.mode = ModeList
	return nil
}

// Reset forces the machine back to the list, dropping any draft.
func (m *Machine) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeLocked()
}

// Stats counts the words and characters of the draft message.
func (m *Machine) Stats() richtext.Stats {
	m.mu.Lock()
	message := m.draft.Message
	m.mu.Unlock()
	return richtext.Count(message)
}

func (m *Machine) closeLocked() {
	m.mode = ModeList
	m.draft = model.Draft{}
	m.gen++
}

func (m *Machine) invalid(op string) error {
	return fmt.Errorf("%s in %s: %w", op, m.mode, appErr.ErrInvalidTransition)
}
