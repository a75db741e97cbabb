// Package termui renders notes for a terminal.
package termui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/xxxsen/notetool/internal/editor"
	"github.com/xxxsen/notetool/internal/model"
	"github.com/xxxsen/notetool/internal/notes"
	"github.com/xxxsen/notetool/internal/pkg/richtext"
)

const (
	cardWidth    = 30
	excerptRunes = 60
)

type palette struct {
	title  lipgloss.Style
	meta   lipgloss.Style
	star   lipgloss.Style
	body   lipgloss.Style
	border lipgloss.Color
	denied lipgloss.Style
}

func paletteFor(theme model.Theme) palette {
	if theme == model.ThemeLight {
		return palette{
			title:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#1f2937")),
			meta:   lipgloss.NewStyle().Foreground(lipgloss.Color("#6b7280")),
			star:   lipgloss.NewStyle().Foreground(lipgloss.Color("#b45309")),
			body:   lipgloss.NewStyle().Foreground(lipgloss.Color("#374151")),
			border: lipgloss.Color("#d1d5db"),
			denied: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#b91c1c")),
		}
	}
	return palette{
		title:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#f9fafb")),
		meta:   lipgloss.NewStyle().Foreground(lipgloss.Color("#9ca3af")),
		star:   lipgloss.NewStyle().Foreground(lipgloss.Color("#fbbf24")),
		body:   lipgloss.NewStyle().Foreground(lipgloss.Color("#d1d5db")),
		border: lipgloss.Color("#4b5563"),
		denied: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#f87171")),
	}
}

type Renderer struct {
	theme   model.Theme
	palette palette
	width   int
	loc     *time.Location
}

func NewRenderer(theme model.Theme, width int) *Renderer {
	if width <= 0 {
		width = 100
	}
	return &Renderer{theme: theme, palette: paletteFor(theme), width: width, loc: time.Local}
}

// Denied is the fixed text shown when there is no identity.
func (r *Renderer) Denied() string {
	return r.palette.denied.Render("access denied: no token")
}

// View renders favorites first, then everything else, in the given mode.
func (r *Renderer) View(view notes.View, mode model.ViewMode) string {
	if view.Len() == 0 {
		return r.palette.meta.Render("no notes")
	}
	var sections []string
	if len(view.Favorites) > 0 {
		sections = append(sections, r.section("Favorites", view.Favorites, mode))
	}
	if len(view.Others) > 0 {
		heading := "Notes"
		if len(view.Favorites) > 0 {
			heading = "Others"
		}
		sections = append(sections, r.section(heading, view.Others, mode))
	}
	return strings.Join(sections, "\n\n")
}

func (r *Renderer) section(heading string, list []model.Note, mode model.ViewMode) string {
	head := r.palette.meta.Render(fmt.Sprintf("%s (%d)", heading, len(list)))
	if mode == model.ViewGrid {
		return head + "\n" + r.grid(list)
	}
	rows := make([]string, 0, len(list))
	for _, note := range list {
		rows = append(rows, r.row(note))
	}
	return head + "\n" + strings.Join(rows, "\n")
}

func (r *Renderer) row(note model.Note) string {
	parts := []string{r.star(note), r.palette.title.Render(displayTitle(note))}
	if note.Name != "" {
		parts = append(parts, r.palette.meta.Render("· "+note.Name))
	}
	parts = append(parts, r.palette.meta.Render(r.when(note.Timestamp)))
	if excerpt := richtext.Excerpt(note.Message, excerptRunes); excerpt != "" {
		parts = append(parts, r.palette.body.Render(excerpt))
	}
	return strings.Join(parts, " ") + r.palette.meta.Render("  ["+note.ID+"]")
}

func (r *Renderer) grid(list []model.Note) string {
	perRow := r.width / (cardWidth + 2)
	if perRow < 1 {
		perRow = 1
	}
	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(r.palette.border).
		Width(cardWidth).
		Padding(0, 1)
	var rows []string
	for start := 0; start < len(list); start += perRow {
		end := start + perRow
		if end > len(list) {
			end = len(list)
		}
		cards := make([]string, 0, end-start)
		for _, note := range list[start:end] {
			body := []string{
				r.star(note) + " " + r.palette.title.Render(displayTitle(note)),
				r.palette.meta.Render(r.when(note.Timestamp)),
			}
			if excerpt := richtext.Excerpt(note.Message, cardWidth*2); excerpt != "" {
				body = append(body, r.palette.body.Render(excerpt))
			}
			body = append(body, r.palette.meta.Render(note.ID))
			cards = append(cards, card.Render(strings.Join(body, "\n")))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// Note renders one note in full with its statistics.
func (r *Renderer) Note(note model.Note) string {
	stats := richtext.Count(note.Message)
	formats := editor.ActiveFormats(editor.Markup(note.Message))
	names := make([]string, 0, len(formats))
	for _, f := range formats {
		names = append(names, string(f))
	}
	lines := []string{
		r.star(note) + " " + r.palette.title.Render(displayTitle(note)),
		r.palette.meta.Render(fmt.Sprintf("id %s · %s", note.ID, r.when(note.Timestamp))),
	}
	if note.Name != "" {
		lines = append(lines, r.palette.meta.Render("name "+note.Name))
	}
	lines = append(lines, "", r.palette.body.Render(richtext.PlainText(note.Message)), "",
		r.palette.meta.Render(fmt.Sprintf("%d words · %d characters", stats.Words, stats.Chars)))
	if len(names) > 0 {
		lines = append(lines, r.palette.meta.Render("formats "+strings.Join(names, ", ")))
	}
	return strings.Join(lines, "\n")
}

func (r *Renderer) star(note model.Note) string {
	if note.IsFavorite {
		return r.palette.star.Render("★")
	}
	return r.palette.meta.Render("☆")
}

func (r *Renderer) when(ts int64) string {
	if ts <= 0 {
		return "-"
	}
	return time.UnixMilli(ts).In(r.loc).Format("2006-01-02 15:04")
}

func displayTitle(note model.Note) string {
	if strings.TrimSpace(note.Title) == "" {
		return "(untitled)"
	}
	return note.Title
}
