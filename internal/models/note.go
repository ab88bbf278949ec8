package models

import "time"

// Note is a rich-text annotation attached to a chapter.
type Note struct {
	ID           int64     `json:"id"`
	Content      string    `json:"content"`
	Tags         []string  `json:"tags"`
	CreatedAt    time.Time `json:"timestamp"`
	LastEditedAt time.Time `json:"lastEdited"`
	Author       string    `json:"author"`
	IsEditing    bool      `json:"isEditing"`
}

// HasTag reports whether the note carries tag exactly.
func (n *Note) HasTag(tag string) bool {
	for _, t := range n.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
