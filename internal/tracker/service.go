// Package tracker serializes access to the chapter and note stores and keeps
// the search index and live subscribers in step with them.
package tracker

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/starford/lectio/internal/apperr"
	"github.com/starford/lectio/internal/chapters"
	"github.com/starford/lectio/internal/index"
	"github.com/starford/lectio/internal/models"
	"github.com/starford/lectio/internal/notes"
	"github.com/starford/lectio/internal/notify"
	"github.com/starford/lectio/internal/richtext"
	"github.com/starford/lectio/internal/storage"
	"github.com/starford/lectio/internal/view"
)

// EventSink receives a signal after every change that needs a re-render.
type EventSink interface {
	ChaptersChanged()
	NotesChanged(chapterID string)
	TagsChanged()
}

type nopSink struct{}

func (nopSink) ChaptersChanged()    {}
func (nopSink) NotesChanged(string) {}
func (nopSink) TagsChanged()        {}

// Files names the backing files inside the data directory.
type Files struct {
	Chapters string
	Notes    string
}

// Service is the single entry point transports use. Every method takes the
// service lock, so the stores only ever see one caller at a time.
type Service struct {
	mu sync.Mutex

	chapters *chapters.Store
	notes    *notes.Store
	index    index.NoteIndex
	events   EventSink
	session  notes.Session
	logger   *slog.Logger
}

type settings struct {
	strict   bool
	notifier notify.Notifier
	index    index.NoteIndex
	events   EventSink
	session  notes.Session
	logger   *slog.Logger
}

// Option configures a Service.
type Option func(*settings)

// WithStrict rejects malformed numeric fields in the chapter file.
func WithStrict(strict bool) Option {
	return func(s *settings) { s.strict = strict }
}

// WithNotifier sets the user-notification sink shared by both stores.
func WithNotifier(n notify.Notifier) Option {
	return func(s *settings) { s.notifier = n }
}

// WithIndex attaches a search index that is refreshed after note changes.
func WithIndex(db index.NoteIndex) Option {
	return func(s *settings) { s.index = db }
}

// WithEvents sets the sink for change signals.
func WithEvents(e EventSink) Option {
	return func(s *settings) { s.events = e }
}

// WithSession sets the author and clock stamped on notes.
func WithSession(sess notes.Session) Option {
	return func(s *settings) { s.session = sess }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *settings) { s.logger = l }
}

// New builds both stores on top of p. Nothing is read until Load.
func New(p storage.Provider, files Files, opts ...Option) *Service {
	cfg := settings{
		notifier: notify.Discard,
		events:   nopSink{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if files.Chapters == "" {
		files.Chapters = chapters.DefaultFile
	}
	if files.Notes == "" {
		files.Notes = notes.DefaultFile
	}

	s := &Service{
		index:   cfg.index,
		events:  cfg.events,
		session: cfg.session,
		logger:  cfg.logger,
	}
	s.chapters = chapters.NewStore(p, files.Chapters,
		chapters.WithNotifier(cfg.notifier),
		chapters.WithLogger(cfg.logger),
		chapters.WithStrict(cfg.strict),
	)
	s.notes = notes.NewStore(p, files.Notes,
		notes.WithNotifier(cfg.notifier),
		notes.WithLogger(cfg.logger),
		notes.WithOnChange(s.notesChanged),
	)
	return s
}

// Load reads both files and rebuilds the index.
func (s *Service) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.chapters.Load(); err != nil {
		return err
	}
	s.notes.Load()
	s.syncIndex()
	return nil
}

// ReloadChapters re-reads the chapter file after an outside edit. The
// selection survives when its chapter number is still present.
func (s *Service) ReloadChapters() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.chapters.Load(); err != nil {
		s.logger.Warn("tracker: chapter reload failed", slog.String("error", err.Error()))
		return
	}
	s.events.ChaptersChanged()
}

// ReloadNotes re-reads the note file after an outside edit.
func (s *Service) ReloadNotes() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notes.Load()
	s.syncIndex()
	for _, id := range s.notes.ChapterIDs() {
		s.events.NotesChanged(id)
	}
}

// WatchTargets describes the two data files for index.Watch.
func (s *Service) WatchTargets() []index.Target {
	return []index.Target{
		{
			Path:     s.chapters.Path(),
			Checksum: s.locked(s.chapters.Checksum),
			Reload:   s.ReloadChapters,
		},
		{
			Path:     s.notes.Path(),
			Checksum: s.locked(s.notes.Checksum),
			Reload:   s.ReloadNotes,
		},
	}
}

func (s *Service) locked(fn func() string) func() string {
	return func() string {
		s.mu.Lock()
		defer s.mu.Unlock()
		return fn()
	}
}

// SaveChapters persists the chapter store.
func (s *Service) SaveChapters() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chapters.Save()
}

// ChapterRows renders the chapter table for mode.
func (s *Service) ChapterRows(mode string) []view.Row {
	s.mu.Lock()
	defer s.mu.Unlock()
	return view.ChapterRows(s.chapters, mode)
}

// Selected returns a copy of the selected chapter.
func (s *Service) Selected() (models.Chapter, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ch := s.chapters.Selected(); ch != nil {
		return *ch, true
	}
	return models.Chapter{}, false
}

// SelectChapter selects chapter n. An unknown number clears the selection
// and returns apperr.ErrNotFound.
func (s *Service) SelectChapter(n int) (models.Chapter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch, ok := s.chapters.SelectChapter(n)
	s.events.ChaptersChanged()
	if !ok {
		return models.Chapter{}, fmt.Errorf("chapter %d: %w", n, apperr.ErrNotFound)
	}
	return *ch, nil
}

// Attend records an attended lecture on the selected chapter. The change is
// not saved.
func (s *Service) Attend() (models.Chapter, error) {
	return s.count(s.chapters.AttendLecture)
}

// Miss records a missed lecture on the selected chapter. The change is not
// saved.
func (s *Service) Miss() (models.Chapter, error) {
	return s.count(s.chapters.MissLecture)
}

func (s *Service) count(op func() bool) (models.Chapter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !op() {
		return models.Chapter{}, apperr.ErrNoSelection
	}
	s.events.ChaptersChanged()
	return *s.chapters.Selected(), nil
}

// AddNote appends a note to chapterID, or to the selected chapter when
// chapterID is empty. Nil tags take the current tag set.
func (s *Service) AddNote(chapterID, content string, tags []string) (view.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.resolveChapter(chapterID)
	if err != nil {
		return view.Card{}, err
	}
	if richtext.IsBlank(content) {
		return view.Card{}, apperr.ErrEmptyContent
	}
	if tags == nil {
		tags = s.notes.CurrentTags()
	}
	n, err := s.notes.AddOrUpdateNote(s.session, id, content, tags)
	s.events.TagsChanged()
	if err != nil {
		return view.Card{}, err
	}
	return view.NoteCards(id, []*models.Note{n})[0], nil
}

func (s *Service) resolveChapter(chapterID string) (string, error) {
	if chapterID == "" {
		sel := s.chapters.Selected()
		if sel == nil {
			return "", apperr.ErrNoSelection
		}
		return sel.ID(), nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(chapterID))
	if err != nil {
		return "", fmt.Errorf("chapter %q: %w", chapterID, apperr.ErrNotFound)
	}
	ch, ok := s.chapters.Chapter(n)
	if !ok {
		return "", fmt.Errorf("chapter %q: %w", chapterID, apperr.ErrNotFound)
	}
	return ch.ID(), nil
}

// chapterKey maps spellings of a chapter number such as "01" or "+1" to the
// key notes are stored under.
func chapterKey(chapterID string) string {
	if n, err := strconv.Atoi(strings.TrimSpace(chapterID)); err == nil {
		return strconv.Itoa(n)
	}
	return chapterID
}

// EditNote puts a note in edit mode and seeds the draft from it.
func (s *Service) EditNote(chapterID string, noteID int64) (view.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	chapterID = chapterKey(chapterID)
	if !s.notes.EditNote(chapterID, noteID) {
		return view.Card{}, apperr.ErrNotFound
	}
	s.events.TagsChanged()
	return s.card(chapterID, noteID), nil
}

// UpdateNote commits an edit. A note not yet in edit mode is opened first;
// non-nil content and tags overwrite the draft before the commit.
func (s *Service) UpdateNote(chapterID string, noteID int64, content *string, tags []string) (view.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	chapterID = chapterKey(chapterID)
	n, ok := s.notes.Note(chapterID, noteID)
	if !ok {
		return view.Card{}, apperr.ErrNotFound
	}
	draft := s.notes.Editor().Content()
	if !n.IsEditing {
		draft = n.Content
	}
	if content != nil {
		draft = *content
	}
	if richtext.IsBlank(draft) {
		return view.Card{}, apperr.ErrEmptyContent
	}

	if !n.IsEditing {
		s.notes.EditNote(chapterID, noteID)
	}
	s.notes.Editor().SetContent(draft)
	if tags != nil {
		s.replaceTags(tags)
	}
	if _, err := s.notes.UpdateNote(s.session, chapterID, noteID); err != nil {
		return view.Card{}, err
	}
	s.events.TagsChanged()
	return s.card(chapterID, noteID), nil
}

// CancelEdit leaves edit mode and discards the draft.
func (s *Service) CancelEdit(chapterID string, noteID int64) (view.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	chapterID = chapterKey(chapterID)
	if !s.notes.CancelEdit(chapterID, noteID) {
		return view.Card{}, apperr.ErrNotFound
	}
	s.events.TagsChanged()
	return s.card(chapterID, noteID), nil
}

// DeleteNote removes a note. Deleting from a chapter without notes is a
// no-op; an unknown id in a chapter with notes is apperr.ErrNotFound.
func (s *Service) DeleteNote(chapterID string, noteID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	chapterID = chapterKey(chapterID)
	if len(s.notes.Notes(chapterID)) == 0 {
		return nil
	}
	ok, err := s.notes.DeleteNote(chapterID, noteID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.ErrNotFound
	}
	return nil
}

// Tags returns the current tag set.
func (s *Service) Tags() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notes.CurrentTags()
}

// AddTag adds tag to the current tag set and returns the set.
func (s *Service) AddTag(tag string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.notes.AddTag(tag) {
		s.events.TagsChanged()
	}
	return s.notes.CurrentTags()
}

// RemoveTag drops tag from the current tag set and returns the set.
func (s *Service) RemoveTag(tag string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.notes.RemoveTag(tag) {
		s.events.TagsChanged()
	}
	return s.notes.CurrentTags()
}

func (s *Service) replaceTags(tags []string) {
	for _, t := range s.notes.CurrentTags() {
		s.notes.RemoveTag(t)
	}
	for _, t := range tags {
		s.notes.AddTag(t)
	}
}

// NoteCards lists a chapter's notes matching query in sort order.
func (s *Service) NoteCards(chapterID, query, sort string) []view.Card {
	s.mu.Lock()
	defer s.mu.Unlock()

	chapterID = chapterKey(chapterID)
	list := notes.SortNotes(s.notes.FilterNotes(chapterID, query), sort)
	return view.NoteCards(chapterID, list)
}

// Search queries the index. Without an index it scans the store.
func (s *Service) Search(query string, limit int) ([]index.SearchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(query) == "" {
		return []index.SearchResult{}, nil
	}
	if limit <= 0 {
		limit = 20
	}
	if s.index != nil {
		return s.index.Search(query, limit)
	}

	results := []index.SearchResult{}
	for _, id := range s.notes.ChapterIDs() {
		for _, n := range notes.SortNotes(s.notes.FilterNotes(id, query), notes.SortNewest) {
			if len(results) == limit {
				return results, nil
			}
			results = append(results, index.SearchResult{
				ChapterID: id,
				NoteID:    n.ID,
				Snippet:   richtext.Snippet(n.Content, 200),
				Tags:      append([]string{}, n.Tags...),
				CreatedAt: n.CreatedAt,
			})
		}
	}
	return results, nil
}

func (s *Service) card(chapterID string, noteID int64) view.Card {
	n, _ := s.notes.Note(chapterID, noteID)
	return view.NoteCards(chapterID, []*models.Note{n})[0]
}

// notesChanged runs inside a store call, so the lock is already held.
func (s *Service) notesChanged(chapterID string) {
	if s.index != nil {
		if err := s.index.ReplaceChapter(chapterID, index.Rows(chapterID, s.notes.Notes(chapterID))); err != nil {
			s.logger.Warn("tracker: index update failed",
				slog.String("chapter", chapterID), slog.String("error", err.Error()))
		}
	}
	s.events.NotesChanged(chapterID)
}

func (s *Service) syncIndex() {
	if s.index == nil {
		return
	}
	if err := index.Sync(s.index, s.notes, s.logger); err != nil {
		s.logger.Warn("tracker: index sync failed", slog.String("error", err.Error()))
	}
}
