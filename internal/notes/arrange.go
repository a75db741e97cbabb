package notes

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/xxxsen/notetool/internal/model"
	"github.com/xxxsen/notetool/internal/remotestore"
)

// View is the arranged note list: favorites first, then everything else,
// each part in the active sort order.
type View struct {
	Favorites []model.Note `json:"favorites"`
	Others    []model.Note `json:"others"`
}

func (v View) All() []model.Note {
	out := make([]model.Note, 0, len(v.Favorites)+len(v.Others))
	out = append(out, v.Favorites...)
	return append(out, v.Others...)
}

func (v View) Len() int {
	return len(v.Favorites) + len(v.Others)
}

// Decode maps a namespace snapshot to notes. The reserved view preference
// key and any child that is not an object are skipped.
func Decode(entries []remotestore.Entry) []model.Note {
	out := make([]model.Note, 0, len(entries))
	for _, entry := range entries {
		if entry.Key == model.ListStatusKey {
			continue
		}
		var note model.Note
		if err := json.Unmarshal(entry.Value, &note); err != nil {
			continue
		}
		note.ID = entry.Key
		out = append(out, note)
	}
	return out
}

// Matches reports whether query is a case-insensitive substring of the
// note's name, title or message. The message is matched as raw markup.
func Matches(note model.Note, query string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(note.Title), q) ||
		strings.Contains(strings.ToLower(note.Message), q) ||
		strings.Contains(strings.ToLower(note.Name), q)
}

// Sort orders notes in place. The sort is stable.
func Sort(list []model.Note, order model.SortOrder) {
	switch order {
	case model.SortOldest:
		sort.SliceStable(list, func(i, j int) bool { return list[i].Timestamp < list[j].Timestamp })
	case model.SortAZ:
		sort.SliceStable(list, func(i, j int) bool { return list[i].Title < list[j].Title })
	default:
		sort.SliceStable(list, func(i, j int) bool { return list[i].Timestamp > list[j].Timestamp })
	}
}

func Arrange(list []model.Note, query string, order model.SortOrder) View {
	filtered := make([]model.Note, 0, len(list))
	for _, note := range list {
		if Matches(note, query) {
			filtered = append(filtered, note)
		}
	}
	Sort(filtered, order)
	view := View{Favorites: []model.Note{}, Others: []model.Note{}}
	for _, note := range filtered {
		if note.IsFavorite {
			view.Favorites = append(view.Favorites, note)
			continue
		}
		view.Others = append(view.Others, note)
	}
	return view
}
