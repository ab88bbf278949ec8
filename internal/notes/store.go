// Package notes stores per-chapter rich-text notes with write-through
// JSON persistence.
package notes

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/starford/lectio/internal/models"
	"github.com/starford/lectio/internal/notify"
	"github.com/starford/lectio/internal/storage"
)

// DefaultFile is the backing file name inside the data directory.
const DefaultFile = "notes.json"

// Store maps chapter ids to notes in creation order and owns the session
// draft: the editor buffer and the current tag set. It is not safe for
// concurrent use.
type Store struct {
	provider storage.Provider
	path     string
	notifier notify.Notifier
	logger   *slog.Logger
	onChange func(chapterID string)

	notes  map[string][]*models.Note
	tags   []string
	editor Editor
	ids    Sequence

	checksum string
}

// Option configures a Store.
type Option func(*Store)

// WithNotifier sets the sink for save failures.
func WithNotifier(n notify.Notifier) Option {
	return func(s *Store) { s.notifier = n }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithEditor attaches a front-end editor instead of the in-memory buffer.
func WithEditor(e Editor) Option {
	return func(s *Store) { s.editor = e }
}

// WithOnChange registers the re-render hook, called with the chapter id after
// every mutation of that chapter's notes.
func WithOnChange(fn func(chapterID string)) Option {
	return func(s *Store) { s.onChange = fn }
}

// NewStore creates an empty store persisting to path through p.
func NewStore(p storage.Provider, path string, opts ...Option) *Store {
	s := &Store{
		provider: p,
		path:     path,
		notifier: notify.Discard,
		logger:   slog.Default(),
		notes:    make(map[string][]*models.Note),
		tags:     []string{},
		editor:   &Buffer{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads the whole collection. A missing or unreadable file leaves the
// store empty; an unparsable file is copied aside before the reset so the
// next save cannot destroy it.
func (s *Store) Load() {
	s.notes = make(map[string][]*models.Note)
	s.checksum = ""

	data, err := s.provider.Read(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Error("notes: read failed", slog.String("path", s.path), slog.String("error", err.Error()))
		}
		return
	}

	notes, err := decode(data)
	if err != nil {
		backup := s.path + ".corrupt-" + strconv.FormatInt(time.Now().Unix(), 10)
		s.logger.Warn("notes: parse failed, starting empty",
			slog.String("path", s.path),
			slog.String("backup", backup),
			slog.String("error", err.Error()))
		if werr := s.provider.Write(backup, data); werr != nil {
			s.logger.Error("notes: backup failed", slog.String("error", werr.Error()))
		}
		return
	}

	for _, list := range notes {
		for _, n := range list {
			s.ids.Observe(n.ID)
		}
	}
	s.notes = notes
	s.checksum = storage.Sum(data)
}

// Save writes the whole collection.
func (s *Store) Save() error {
	data, err := encode(s.notes)
	if err != nil {
		s.notifier.Error("Error saving notes", err)
		return fmt.Errorf("notes: encode: %w", err)
	}
	if err := s.provider.Write(s.path, data); err != nil {
		s.notifier.Error("Error saving notes", err)
		return fmt.Errorf("notes: save: %w", err)
	}
	s.checksum = storage.Sum(data)
	return nil
}

// CreateNote builds a note stamped by sess. It is not stored.
func (s *Store) CreateNote(sess Session, content string, tags []string) *models.Note {
	now := sess.now()
	return &models.Note{
		ID:           s.ids.Next(now),
		Content:      content,
		Tags:         dedupe(tags),
		CreatedAt:    now,
		LastEditedAt: now,
		Author:       sess.Author,
	}
}

// AddOrUpdateNote appends a new note under chapterID, persists, and resets
// the draft. Despite the name it never modifies an existing note; edits go
// through EditNote and UpdateNote.
func (s *Store) AddOrUpdateNote(sess Session, chapterID, content string, tags []string) (*models.Note, error) {
	n := s.CreateNote(sess, content, tags)
	s.notes[chapterID] = append(s.notes[chapterID], n)
	err := s.Save()
	s.changed(chapterID)
	s.resetDraft()
	return n, err
}

// EditNote starts editing: the note is flagged and its content and tags seed
// the draft. The draft is shared, so any other note in edit mode leaves it.
// Nothing is persisted.
func (s *Store) EditNote(chapterID string, noteID int64) bool {
	n, ok := s.Note(chapterID, noteID)
	if !ok {
		return false
	}
	s.leaveEditMode(n)
	s.editor.SetContent(n.Content)
	s.tags = slices.Clone(nonNil(n.Tags))
	n.IsEditing = true
	s.changed(chapterID)
	return true
}

// UpdateNote commits the draft into the note, stamps the edit time and
// persists.
func (s *Store) UpdateNote(sess Session, chapterID string, noteID int64) (bool, error) {
	n, ok := s.Note(chapterID, noteID)
	if !ok {
		return false, nil
	}
	n.Content = s.editor.Content()
	n.Tags = slices.Clone(s.tags)
	n.LastEditedAt = sess.now()
	n.IsEditing = false
	err := s.Save()
	s.changed(chapterID)
	s.resetDraft()
	return true, err
}

// CancelEdit leaves edit mode without committing the draft.
func (s *Store) CancelEdit(chapterID string, noteID int64) bool {
	n, ok := s.Note(chapterID, noteID)
	if !ok {
		return false
	}
	n.IsEditing = false
	s.resetDraft()
	s.changed(chapterID)
	return true
}

// DeleteNote removes a note and persists. A chapter without notes, or an id
// that is not there, is a no-op.
func (s *Store) DeleteNote(chapterID string, noteID int64) (bool, error) {
	list, ok := s.notes[chapterID]
	if !ok || len(list) == 0 {
		return false, nil
	}
	i := slices.IndexFunc(list, func(n *models.Note) bool { return n.ID == noteID })
	if i < 0 {
		return false, nil
	}
	s.notes[chapterID] = slices.Delete(slices.Clone(list), i, i+1)
	err := s.Save()
	s.changed(chapterID)
	return true, err
}

// AddTag puts tag in the current tag set. Blank and duplicate tags are ignored.
func (s *Store) AddTag(tag string) bool {
	tag = strings.TrimSpace(tag)
	if tag == "" || slices.Contains(s.tags, tag) {
		return false
	}
	s.tags = append(s.tags, tag)
	return true
}

// RemoveTag drops tag from the current tag set.
func (s *Store) RemoveTag(tag string) bool {
	i := slices.Index(s.tags, tag)
	if i < 0 {
		return false
	}
	s.tags = slices.Delete(s.tags, i, i+1)
	return true
}

// CurrentTags returns a copy of the current tag set in insertion order.
func (s *Store) CurrentTags() []string {
	return slices.Clone(s.tags)
}

// Editor returns the draft editor.
func (s *Store) Editor() Editor {
	return s.editor
}

// Notes returns the chapter's notes in creation order.
func (s *Store) Notes(chapterID string) []*models.Note {
	return slices.Clone(s.notes[chapterID])
}

// Note finds a note by id within a chapter.
func (s *Store) Note(chapterID string, noteID int64) (*models.Note, bool) {
	for _, n := range s.notes[chapterID] {
		if n.ID == noteID {
			return n, true
		}
	}
	return nil, false
}

// ChapterIDs lists the chapters that have a note list, sorted.
func (s *Store) ChapterIDs() []string {
	ids := make([]string, 0, len(s.notes))
	for id := range s.notes {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Path is the backing file, relative to the data directory.
func (s *Store) Path() string {
	return s.path
}

// Checksum is the digest of the content last loaded or saved.
func (s *Store) Checksum() string {
	return s.checksum
}

// leaveEditMode clears the editing flag on every note except keep.
func (s *Store) leaveEditMode(keep *models.Note) {
	for chapterID, list := range s.notes {
		for _, n := range list {
			if n != keep && n.IsEditing {
				n.IsEditing = false
				s.changed(chapterID)
			}
		}
	}
}

func (s *Store) resetDraft() {
	s.editor.Clear()
	s.tags = []string{}
}

func (s *Store) changed(chapterID string) {
	if s.onChange != nil {
		s.onChange(chapterID)
	}
}

func dedupe(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if !slices.Contains(out, t) {
			out = append(out, t)
		}
	}
	return out
}
