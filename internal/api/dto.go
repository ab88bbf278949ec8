package api

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/lectio/internal/index"
	"github.com/starford/lectio/internal/models"
	"github.com/starford/lectio/internal/view"
)

const maxTagLength = 64

var tagRules = []validation.Rule{validation.Required, validation.Length(1, maxTagLength)}

// AddNoteRequest is the request body for adding a note. Omitted tags take
// the current tag set.
type AddNoteRequest struct {
	Content string   `json:"content"`
	Tags    []string `json:"tags,omitempty"`
}

// Validate validates the request.
func (r *AddNoteRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Content, validation.Required),
		validation.Field(&r.Tags, validation.Each(tagRules...)),
	)
}

// UpdateNoteRequest is the request body for committing an edit. Omitted
// fields keep the current draft.
type UpdateNoteRequest struct {
	Content *string  `json:"content,omitempty"`
	Tags    []string `json:"tags,omitempty"`
}

// Validate validates the request.
func (r *UpdateNoteRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Content, validation.NilOrNotEmpty),
		validation.Field(&r.Tags, validation.Each(tagRules...)),
	)
}

// TagRequest adds one tag to the current tag set.
type TagRequest struct {
	Tag string `json:"tag"`
}

// Validate validates the request.
func (r *TagRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Tag, tagRules...),
	)
}

// ChapterListResponse is the rendered chapter table.
type ChapterListResponse struct {
	Mode     string          `json:"mode"`
	Rows     []view.Row      `json:"rows"`
	Selected *models.Chapter `json:"selected"`
}

// ChapterResponse wraps a single chapter after a mutation.
type ChapterResponse struct {
	Chapter     models.Chapter `json:"chapter"`
	AbsenceRate string         `json:"absenceRate"`
}

// NoteListResponse wraps a chapter's note cards.
type NoteListResponse struct {
	ChapterID string      `json:"chapterId"`
	Notes     []view.Card `json:"notes"`
}

// TagsResponse wraps the current tag set.
type TagsResponse struct {
	Tags []string `json:"tags"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []index.SearchResult `json:"results"`
}

func chapterResponse(ch models.Chapter) ChapterResponse {
	return ChapterResponse{Chapter: ch, AbsenceRate: models.AbsenceRate(ch.Attended, ch.Missed)}
}
