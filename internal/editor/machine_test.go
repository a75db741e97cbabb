package editor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xxxsen/notetool/internal/model"
	appErr "github.com/xxxsen/notetool/internal/pkg/errors"
)

type call struct {
	op    string
	id    string
	draft model.Draft
}

type recordingCommitter struct {
	calls []call
	err   error
}

func (r *recordingCommitter) Create(_ context.Context, draft model.Draft) error {
	r.calls = append(r.calls, call{op: "create", draft: draft})
	return r.err
}

func (r *recordingCommitter) Update(_ context.Context, id string, draft model.Draft) error {
	r.calls = append(r.calls, call{op: "update", id: id, draft: draft})
	return r.err
}

func TestNewNoteSaveCreates(t *testing.T) {
	rec := &recordingCommitter{}
	m := New(rec)
	require.NoError(t, m.NewNote())
	require.Equal(t, ModeEditing, m.Mode())
	require.NoError(t, m.SetTitle("Groceries"))
	require.NoError(t, m.SetMessage("<p>milk</p>"))

	require.NoError(t, m.Save(context.Background()))
	require.Equal(t, ModeList, m.Mode())
	require.Len(t, rec.calls, 1)
	require.Equal(t, "create", rec.calls[0].op)
	require.Equal(t, "Groceries", rec.calls[0].draft.Title)

	_, ok := m.Draft()
	require.False(t, ok)
}

func TestOpenSaveUpdatesBoundNote(t *testing.T) {
	rec := &recordingCommitter{}
	m := New(rec)
	require.NoError(t, m.Open(model.Note{ID: "n1", Name: "me", Title: "Old", Message: "body", IsFavorite: true}))
	draft, ok := m.Draft()
	require.True(t, ok)
	require.Equal(t, "n1", draft.NoteID)
	require.Equal(t, "Old", draft.Title)

	require.NoError(t, m.SetTitle("New"))
	require.NoError(t, m.Save(context.Background()))
	require.Equal(t, []call{{op: "update", id: "n1", draft: model.Draft{NoteID: "n1", Name: "me", Title: "New", Message: "body"}}}, rec.calls)
}

func TestSaveRejectsEmptyDraft(t *testing.T) {
	rec := &recordingCommitter{}
	m := New(rec)
	require.NoError(t, m.NewNote())
	require.NoError(t, m.SetName("only a name"))
	require.NoError(t, m.SetTitle("   "))
	require.NoError(t, m.SetMessage("\n\t"))

	err := m.Save(context.Background())
	require.ErrorIs(t, err, appErr.ErrEmptyDraft)
	require.Empty(t, rec.calls)
	require.Equal(t, ModeEditing, m.Mode())
	draft, _ := m.Draft()
	require.Equal(t, "only a name", draft.Name)
}

func TestSaveWithOnlyMessage(t *testing.T) {
	rec := &recordingCommitter{}
	m := New(rec)
	require.NoError(t, m.NewNote())
	require.NoError(t, m.SetMessage("x"))
	require.NoError(t, m.Save(context.Background()))
	require.Len(t, rec.calls, 1)
}

func TestFailedSaveKeepsDraft(t *testing.T) {
	rec := &recordingCommitter{err: errors.New("denied")}
	m := New(rec)
	require.NoError(t, m.NewNote())
	require.NoError(t, m.SetTitle("t"))

	require.Error(t, m.Save(context.Background()))
	require.Equal(t, ModeEditing, m.Mode())
	draft, ok := m.Draft()
	require.True(t, ok)
	require.Equal(t, "t", draft.Title)
}

func TestBackDiscardsDraft(t *testing.T) {
	rec := &recordingCommitter{}
	m := New(rec)
	require.NoError(t, m.NewNote())
	require.NoError(t, m.SetTitle("never saved"))
	require.NoError(t, m.Back())
	require.Equal(t, ModeList, m.Mode())
	require.Empty(t, rec.calls)

	require.NoError(t, m.NewNote())
	draft, _ := m.Draft()
	require.Equal(t, model.Draft{}, draft)
}

func TestSettingsTransitions(t *testing.T) {
	m := New(&recordingCommitter{})
	require.NoError(t, m.OpenSettings())
	require.Equal(t, ModeSettings, m.Mode())
	require.ErrorIs(t, m.NewNote(), appErr.ErrInvalidTransition)
	require.NoError(t, m.CloseSettings())
	require.Equal(t, ModeList, m.Mode())
}

func TestInvalidTransitions(t *testing.T) {
	m := New(&recordingCommitter{})
	require.ErrorIs(t, m.Save(context.Background()), appErr.ErrInvalidTransition)
	require.ErrorIs(t, m.Back(), appErr.ErrInvalidTransition)
	require.ErrorIs(t, m.SetTitle("x"), appErr.ErrInvalidTransition)
	require.ErrorIs(t, m.CloseSettings(), appErr.ErrInvalidTransition)

	require.NoError(t, m.NewNote())
	require.ErrorIs(t, m.OpenSettings(), appErr.ErrInvalidTransition)
	require.ErrorIs(t, m.Open(model.Note{ID: "n"}), appErr.ErrInvalidTransition)

	m.Reset()
	require.Equal(t, ModeList, m.Mode())
}

func TestStats(t *testing.T) {
	m := New(&recordingCommitter{})
	require.NoError(t, m.NewNote())
	require.NoError(t, m.SetMessage("<p>two <b>words</b></p>"))
	stats := m.Stats()
	require.Equal(t, 2, stats.Words)
	require.Equal(t, 9, stats.Chars)
}
