package index

import (
	"log/slog"

	"github.com/starford/lectio/internal/models"
	"github.com/starford/lectio/internal/richtext"
)

// NoteSource is the read side of the note store.
type NoteSource interface {
	ChapterIDs() []string
	Notes(chapterID string) []*models.Note
}

// Sync brings the index in line with src:
//   - every chapter in src is re-indexed
//   - chapters no longer in src are removed
func Sync(db NoteIndex, src NoteSource, logger *slog.Logger) error {
	indexed, err := db.ChapterIDs()
	if err != nil {
		return err
	}

	current := make(map[string]struct{})
	for _, id := range src.ChapterIDs() {
		current[id] = struct{}{}
		if err := db.ReplaceChapter(id, Rows(id, src.Notes(id))); err != nil {
			logger.Warn("sync: index failed", slog.String("chapter", id), slog.String("error", err.Error()))
			continue
		}
		logger.Debug("sync: indexed", slog.String("chapter", id))
	}

	for id := range indexed {
		if _, ok := current[id]; ok {
			continue
		}
		if err := db.DeleteChapter(id); err != nil {
			logger.Warn("sync: delete failed", slog.String("chapter", id), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: removed stale", slog.String("chapter", id))
		}
	}
	return nil
}

// Rows converts a chapter's notes into index rows.
func Rows(chapterID string, notes []*models.Note) []NoteRow {
	rows := make([]NoteRow, 0, len(notes))
	for _, n := range notes {
		rows = append(rows, NoteRow{
			ChapterID:  chapterID,
			NoteID:     n.ID,
			Content:    n.Content,
			Text:       richtext.PlainText(n.Content),
			Tags:       n.Tags,
			Author:     n.Author,
			CreatedAt:  n.CreatedAt,
			LastEdited: n.LastEditedAt,
		})
	}
	return rows
}
