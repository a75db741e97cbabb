package termui

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/notetool/internal/model"
	"github.com/xxxsen/notetool/internal/notes"
)

func testRenderer(theme model.Theme) *Renderer {
	r := NewRenderer(theme, 80)
	r.loc = time.UTC
	return r
}

func sampleView() notes.View {
	return notes.View{
		Favorites: []model.Note{{ID: "f1", Title: "Pinned", Message: "<b>keep</b>", Timestamp: 1700000000000, IsFavorite: true}},
		Others: []model.Note{
			{ID: "n1", Title: "Groceries", Name: "me", Message: "<p>milk</p><p>eggs</p>", Timestamp: 1700000001000},
			{ID: "n2", Title: "", Message: "", Timestamp: 0},
		},
	}
}

func TestListModeFavoritesFirst(t *testing.T) {
	out := testRenderer(model.ThemeDark).View(sampleView(), model.ViewList)
	require.Contains(t, out, "Favorites (1)")
	require.Contains(t, out, "Others (2)")
	require.Less(t, strings.Index(out, "Pinned"), strings.Index(out, "Groceries"))
	require.Contains(t, out, "milk")
	require.NotContains(t, out, "<p>")
	require.Contains(t, out, "(untitled)")
	require.Contains(t, out, "2023-11-14 22:13")
}

func TestGridModeRendersCards(t *testing.T) {
	out := testRenderer(model.ThemeLight).View(sampleView(), model.ViewGrid)
	require.Contains(t, out, "╭")
	require.Contains(t, out, "Groceries")
	require.Contains(t, out, "f1")
}

func TestEmptyView(t *testing.T) {
	out := testRenderer(model.ThemeDark).View(notes.View{}, model.ViewList)
	require.Contains(t, out, "no notes")
}

func TestNoteDetail(t *testing.T) {
	out := testRenderer(model.ThemeDark).Note(model.Note{
		ID: "n1", Title: "T", Name: "me", Timestamp: 1700000000000,
		Message: "<p><strong>two</strong> words</p><ul><li>x</li></ul>",
	})
	require.Contains(t, out, "3 words")
	require.Contains(t, out, "bold")
	require.Contains(t, out, "insertUnorderedList")
	require.Contains(t, out, "name me")
}

func TestDenied(t *testing.T) {
	require.Contains(t, testRenderer(model.ThemeDark).Denied(), "access denied: no token")
}
