//go:build sqlite_fts5

package index

import (
	"database/sql"
	"fmt"
	"strings"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS notes_fts USING fts5(
			chapter_id UNINDEXED,
			note_id UNINDEXED,
			text,
			tags,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsInsert(tx *sql.Tx, chapterID string, noteID int64, text string, tags []string) error {
	_, err := tx.Exec(`INSERT INTO notes_fts (chapter_id, note_id, text, tags) VALUES (?, ?, ?, ?)`,
		chapterID, noteID, text, strings.Join(tags, " "))
	if err != nil {
		return fmt.Errorf("index: insert fts: %w", err)
	}
	return nil
}

func ftsDeleteChapter(tx *sql.Tx, chapterID string) error {
	if _, err := tx.Exec(`DELETE FROM notes_fts WHERE chapter_id = ?`, chapterID); err != nil {
		return fmt.Errorf("index: clear fts: %w", err)
	}
	return nil
}

// Search performs an FTS5 full-text search and returns hits with snippets.
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	match := ftsQuery(query)
	if match == "" {
		return []SearchResult{}, nil
	}
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.Query(`
		SELECT f.chapter_id,
		       f.note_id,
		       snippet(notes_fts, 2, '<b>', '</b>', '...', 32),
		       n.tags,
		       n.created_at
		FROM notes_fts f
		JOIN notes n ON n.chapter_id = f.chapter_id AND n.note_id = f.note_id
		WHERE notes_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, match, limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	defer rows.Close()
	return scanResults(rows)
}

// ftsQuery quotes every term so user input cannot hit FTS5 query syntax.
func ftsQuery(q string) string {
	terms := strings.Fields(q)
	for i, t := range terms {
		terms[i] = `"` + strings.ReplaceAll(t, `"`, `""`) + `"`
	}
	return strings.Join(terms, " ")
}
