package notes

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/starford/lectio/internal/models"
)

// legacyLayout is the timestamp layout of files written by the first
// version of the tracker.
const legacyLayout = "2006-01-02 15:04:05"

type timestamp time.Time

func (t timestamp) MarshalJSON() ([]byte, error) {
	if time.Time(t).IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(time.Time(t).Format(time.RFC3339Nano))
}

func (t *timestamp) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		*t = timestamp{}
		return nil
	}
	if v, err := time.Parse(time.RFC3339Nano, s); err == nil {
		*t = timestamp(v)
		return nil
	}
	if v, err := time.ParseInLocation(legacyLayout, s, time.Local); err == nil {
		*t = timestamp(v)
		return nil
	}
	return fmt.Errorf("notes: unrecognized timestamp %q", s)
}

// record is the persisted shape of a note.
type record struct {
	ID         int64     `json:"id"`
	Content    string    `json:"content"`
	Tags       []string  `json:"tags"`
	Timestamp  timestamp `json:"timestamp"`
	LastEdited timestamp `json:"lastEdited"`
	Author     string    `json:"author"`
	IsEditing  bool      `json:"isEditing"`
}

func decode(data []byte) (map[string][]*models.Note, error) {
	var raw map[string][]record
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	out := make(map[string][]*models.Note, len(raw))
	for chapterID, recs := range raw {
		list := make([]*models.Note, 0, len(recs))
		for _, r := range recs {
			tags := r.Tags
			if tags == nil {
				tags = []string{}
			}
			list = append(list, &models.Note{
				ID:           r.ID,
				Content:      r.Content,
				Tags:         tags,
				CreatedAt:    time.Time(r.Timestamp),
				LastEditedAt: time.Time(r.LastEdited),
				Author:       r.Author,
			})
		}
		out[chapterID] = list
	}
	return out, nil
}

// encode writes the whole collection. Edit state is never persisted.
func encode(notes map[string][]*models.Note) ([]byte, error) {
	raw := make(map[string][]record, len(notes))
	for chapterID, list := range notes {
		recs := make([]record, 0, len(list))
		for _, n := range list {
			recs = append(recs, record{
				ID:         n.ID,
				Content:    n.Content,
				Tags:       nonNil(n.Tags),
				Timestamp:  timestamp(n.CreatedAt),
				LastEdited: timestamp(n.LastEditedAt),
				Author:     n.Author,
			})
		}
		raw[chapterID] = recs
	}
	return json.MarshalIndent(raw, "", "  ")
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
