package model

import "strings"

// ListStatusKey is the reserved child of a namespace holding the view
// preference. It shares the namespace with note entries.
const ListStatusKey = "listStatus"

type Note struct {
	ID         string `json:"id,omitempty"`
	Name       string `json:"name"`
	Title      string `json:"title"`
	Message    string `json:"message"`
	Timestamp  int64  `json:"timestamp"`
	IsFavorite bool   `json:"isFavorite"`
}

// Draft is an uncommitted copy of a note's editable fields. An empty NoteID
// means the draft creates a new note on save.
type Draft struct {
	NoteID  string
	Name    string
	Title   string
	Message string
}

func DraftFromNote(n Note) Draft {
	return Draft{NoteID: n.ID, Name: n.Name, Title: n.Title, Message: n.Message}
}

func (d Draft) Bound() bool {
	return d.NoteID != ""
}

func (d Draft) Empty() bool {
	return strings.TrimSpace(d.Title) == "" && strings.TrimSpace(d.Message) == ""
}
