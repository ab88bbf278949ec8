package index

// NoteIndex is what the tracker needs from the index.
type NoteIndex interface {
	ReplaceChapter(chapterID string, rows []NoteRow) error
	DeleteChapter(chapterID string) error
	ChapterIDs() (map[string]struct{}, error)
	Search(query string, limit int) ([]SearchResult, error)
	Close() error
}

// Verify *DB satisfies NoteIndex at compile time.
var _ NoteIndex = (*DB)(nil)
