// Package chapters owns chapter attendance records and their module groupings.
package chapters

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/starford/lectio/internal/models"
	"github.com/starford/lectio/internal/notify"
	"github.com/starford/lectio/internal/storage"
)

// DefaultFile is the backing file name inside the data directory.
const DefaultFile = "chapters.txt"

// Store holds the chapters, the modules and the selected chapter. It is not
// safe for concurrent use; callers serialize access.
type Store struct {
	provider storage.Provider
	path     string
	notifier notify.Notifier
	logger   *slog.Logger
	strict   bool

	chapters []*models.Chapter
	byNumber map[int]*models.Chapter
	modules  []*models.Module
	selected *models.Chapter

	checksum string
}

// Option configures a Store.
type Option func(*Store)

// WithNotifier sets the sink for load and save messages.
func WithNotifier(n notify.Notifier) Option {
	return func(s *Store) { s.notifier = n }
}

// WithLogger sets the logger used for parse warnings.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithStrict makes Load fail on the first malformed numeric field instead of
// defaulting it.
func WithStrict(strict bool) Option {
	return func(s *Store) { s.strict = strict }
}

// NewStore creates an empty store persisting to path through p.
func NewStore(p storage.Provider, path string, opts ...Option) *Store {
	s := &Store{
		provider: p,
		path:     path,
		notifier: notify.Discard,
		logger:   slog.Default(),
		byNumber: make(map[int]*models.Chapter),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the in-memory state with the content of the backing file.
// A missing file yields empty collections. On a read or strict parse error
// the current state is kept, the user is notified and the error returned.
func (s *Store) Load() (*Report, error) {
	data, err := s.provider.Read(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.replace(&Document{})
			s.checksum = ""
			return &Report{}, nil
		}
		s.notifier.Error("Error loading data", err)
		return nil, fmt.Errorf("chapters: load: %w", err)
	}

	doc, rep, err := Parse(data, s.strict)
	if err != nil {
		s.notifier.Error("Error loading data", err)
		return nil, fmt.Errorf("chapters: load: %w", err)
	}

	for _, is := range rep.Defaulted {
		s.logger.Warn("chapters: counter defaulted",
			slog.Int("line", is.Line), slog.String("text", is.Text))
	}
	for _, is := range rep.Dropped {
		s.logger.Debug("chapters: line dropped",
			slog.Int("line", is.Line), slog.String("text", is.Text), slog.String("reason", is.Reason))
	}

	s.replace(doc)
	s.checksum = storage.Sum(data)
	return rep, nil
}

// Save overwrites the backing file with the current state.
func (s *Store) Save() error {
	data := Encode(&Document{Chapters: s.chapters, Modules: s.modules})
	if err := s.provider.Write(s.path, data); err != nil {
		s.notifier.Error("Error saving data", err)
		return fmt.Errorf("chapters: save: %w", err)
	}
	s.checksum = storage.Sum(data)
	s.notifier.Success("Changes saved successfully!")
	return nil
}

// replace swaps in doc and re-resolves the selection by number.
func (s *Store) replace(doc *Document) {
	s.chapters = doc.Chapters
	s.modules = doc.Modules
	s.byNumber = make(map[int]*models.Chapter, len(doc.Chapters))
	for _, ch := range doc.Chapters {
		s.byNumber[ch.Number] = ch
	}
	if s.selected != nil {
		s.selected = s.byNumber[s.selected.Number]
	}
}

// SelectChapter points the selection at chapter n. An unknown number clears
// the selection.
func (s *Store) SelectChapter(n int) (*models.Chapter, bool) {
	ch, ok := s.byNumber[n]
	s.selected = ch
	return ch, ok
}

// AttendLecture increments the selected chapter's attended counter.
func (s *Store) AttendLecture() bool {
	if s.selected == nil {
		return false
	}
	s.selected.Attended++
	return true
}

// MissLecture increments the selected chapter's missed counter.
func (s *Store) MissLecture() bool {
	if s.selected == nil {
		return false
	}
	s.selected.Missed++
	return true
}

// Selected returns the selected chapter or nil.
func (s *Store) Selected() *models.Chapter {
	return s.selected
}

// Chapter looks up a chapter by number.
func (s *Store) Chapter(n int) (*models.Chapter, bool) {
	ch, ok := s.byNumber[n]
	return ch, ok
}

// Chapters returns the chapters in file order.
func (s *Store) Chapters() []*models.Chapter {
	return append([]*models.Chapter(nil), s.chapters...)
}

// Modules returns the modules in file order.
func (s *Store) Modules() []*models.Module {
	return append([]*models.Module(nil), s.modules...)
}

// Path is the backing file, relative to the data directory.
func (s *Store) Path() string {
	return s.path
}

// Checksum is the digest of the content last loaded or saved.
func (s *Store) Checksum() string {
	return s.checksum
}
