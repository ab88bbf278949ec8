package index

import (
	"encoding/json"
	"fmt"
	"time"
)

// NoteRow is one indexed note.
type NoteRow struct {
	ChapterID  string
	NoteID     int64
	Content    string
	Text       string
	Tags       []string
	Author     string
	CreatedAt  time.Time
	LastEdited time.Time
}

// SearchResult is one search hit.
type SearchResult struct {
	ChapterID string    `json:"chapterId"`
	NoteID    int64     `json:"noteId"`
	Snippet   string    `json:"snippet"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"timestamp"`
}

// ReplaceChapter swaps the indexed notes of one chapter in a transaction.
func (db *DB) ReplaceChapter(chapterID string, rows []NoteRow) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	if _, err := tx.Exec(`DELETE FROM notes WHERE chapter_id = ?`, chapterID); err != nil {
		return fmt.Errorf("index: clear chapter: %w", err)
	}
	if err := ftsDeleteChapter(tx, chapterID); err != nil {
		return err
	}

	if len(rows) > 0 {
		stmt, err := tx.Prepare(`
			INSERT INTO notes (chapter_id, note_id, content, text, tags, author, created_at, last_edited)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(chapter_id, note_id) DO UPDATE SET
				content     = excluded.content,
				text        = excluded.text,
				tags        = excluded.tags,
				author      = excluded.author,
				created_at  = excluded.created_at,
				last_edited = excluded.last_edited
		`)
		if err != nil {
			return fmt.Errorf("index: prepare insert: %w", err)
		}
		defer stmt.Close()
		for _, r := range rows {
			tagsJSON, _ := json.Marshal(nonNil(r.Tags))
			if _, err := stmt.Exec(chapterID, r.NoteID, r.Content, r.Text, string(tagsJSON), r.Author, r.CreatedAt, r.LastEdited); err != nil {
				return fmt.Errorf("index: insert note: %w", err)
			}
			if err := ftsInsert(tx, chapterID, r.NoteID, r.Text, r.Tags); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

// DeleteChapter drops every indexed note of a chapter.
func (db *DB) DeleteChapter(chapterID string) error {
	return db.ReplaceChapter(chapterID, nil)
}

// ChapterIDs returns every chapter that has indexed notes.
func (db *DB) ChapterIDs() (map[string]struct{}, error) {
	rows, err := db.conn.Query(`SELECT DISTINCT chapter_id FROM notes`)
	if err != nil {
		return nil, fmt.Errorf("index: chapter ids: %w", err)
	}
	defer rows.Close()
	out := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out[id] = struct{}{}
	}
	return out, rows.Err()
}

// Count returns the number of indexed notes.
func (db *DB) Count() (int, error) {
	var n int
	if err := db.conn.QueryRow(`SELECT count(*) FROM notes`).Scan(&n); err != nil {
		return 0, fmt.Errorf("index: count: %w", err)
	}
	return n, nil
}

func scanResults(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}) ([]SearchResult, error) {
	out := []SearchResult{}
	for rows.Next() {
		var r SearchResult
		var tags string
		if err := rows.Scan(&r.ChapterID, &r.NoteID, &r.Snippet, &tags, &r.CreatedAt); err != nil {
			return nil, err
		}
		_ = json.Unmarshal([]byte(tags), &r.Tags)
		out = append(out, r)
	}
	return out, rows.Err()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
