// Package view turns store state into row and card view-models and renders
// them for a terminal.
package view

import (
	"time"

	"github.com/starford/lectio/internal/models"
	"github.com/starford/lectio/internal/richtext"
)

// Display modes.
const (
	ModeChapters = "chapters"
	ModeModules  = "modules"
)

// Row kinds.
const (
	KindChapter = "chapter"
	KindModule  = "module"
)

// ChapterSource is the query surface a renderer needs from the chapter store.
type ChapterSource interface {
	Chapters() []*models.Chapter
	Modules() []*models.Module
	Selected() *models.Chapter
}

// Row is one table row: a chapter, or a module header in modules mode.
type Row struct {
	Kind        string `json:"kind"`
	Number      int    `json:"number,omitempty"`
	Name        string `json:"name"`
	Attended    int    `json:"attended"`
	Missed      int    `json:"missed"`
	AbsenceRate string `json:"absenceRate,omitempty"`
	Selected    bool   `json:"selected,omitempty"`
}

// ChapterRows renders the flat list for ModeChapters; any other mode gives
// module headers followed by their member chapters.
func ChapterRows(src ChapterSource, mode string) []Row {
	sel := src.Selected()
	rows := []Row{}
	if mode == ModeChapters {
		for _, ch := range src.Chapters() {
			rows = append(rows, chapterRow(ch, sel))
		}
		return rows
	}
	for _, m := range src.Modules() {
		rows = append(rows, Row{Kind: KindModule, Name: m.Name})
		for _, ch := range m.Chapters {
			rows = append(rows, chapterRow(ch, sel))
		}
	}
	return rows
}

func chapterRow(ch, sel *models.Chapter) Row {
	return Row{
		Kind:        KindChapter,
		Number:      ch.Number,
		Name:        ch.Name,
		Attended:    ch.Attended,
		Missed:      ch.Missed,
		AbsenceRate: models.AbsenceRate(ch.Attended, ch.Missed),
		Selected:    sel != nil && sel.Number == ch.Number,
	}
}

// Card is a note as shown in the notes list.
type Card struct {
	ChapterID    string    `json:"chapterId"`
	ID           int64     `json:"id"`
	Content      string    `json:"content"`
	Text         string    `json:"text"`
	Tags         []string  `json:"tags"`
	CreatedAt    time.Time `json:"timestamp"`
	LastEditedAt time.Time `json:"lastEdited"`
	Author       string    `json:"author"`
	IsEditing    bool      `json:"isEditing"`
	Actions      []string  `json:"actions"`
}

// NoteCards copies notes into cards. Cards own their data, so they are safe
// to use after the store moves on.
func NoteCards(chapterID string, notes []*models.Note) []Card {
	cards := make([]Card, 0, len(notes))
	for _, n := range notes {
		actions := []string{"edit", "delete"}
		if n.IsEditing {
			actions = []string{"save", "cancel"}
		}
		cards = append(cards, Card{
			ChapterID:    chapterID,
			ID:           n.ID,
			Content:      n.Content,
			Text:         richtext.PlainText(n.Content),
			Tags:         append([]string{}, n.Tags...),
			CreatedAt:    n.CreatedAt,
			LastEditedAt: n.LastEditedAt,
			Author:       n.Author,
			IsEditing:    n.IsEditing,
			Actions:      actions,
		})
	}
	return cards
}
