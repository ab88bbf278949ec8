package notes

import (
	"slices"
	"strings"

	"github.com/starford/lectio/internal/models"
)

// Sort modes.
const (
	SortNewest = "newest"
	SortOldest = "oldest"
	SortEdited = "edited"
)

// FilterNotes returns the chapter's notes whose content or any tag contains
// text, ignoring case. Empty text matches every note.
func (s *Store) FilterNotes(chapterID, text string) []*models.Note {
	list := s.notes[chapterID]
	if len(list) == 0 {
		return []*models.Note{}
	}
	needle := strings.ToLower(text)
	out := make([]*models.Note, 0, len(list))
	for _, n := range list {
		if matches(n, needle) {
			out = append(out, n)
		}
	}
	return out
}

func matches(n *models.Note, needle string) bool {
	if strings.Contains(strings.ToLower(n.Content), needle) {
		return true
	}
	for _, t := range n.Tags {
		if strings.Contains(strings.ToLower(t), needle) {
			return true
		}
	}
	return false
}

// SortNotes returns a sorted copy. Unknown modes keep the input order.
func SortNotes(notes []*models.Note, mode string) []*models.Note {
	out := slices.Clone(notes)
	switch mode {
	case SortNewest:
		slices.SortStableFunc(out, func(a, b *models.Note) int { return b.CreatedAt.Compare(a.CreatedAt) })
	case SortOldest:
		slices.SortStableFunc(out, func(a, b *models.Note) int { return a.CreatedAt.Compare(b.CreatedAt) })
	case SortEdited:
		slices.SortStableFunc(out, func(a, b *models.Note) int { return b.LastEditedAt.Compare(a.LastEditedAt) })
	}
	return out
}
