//go:build !sqlite_fts5

package index

import (
	"database/sql"
	"fmt"
	"strings"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func initFTS(_ *sql.DB) error {
	// FTS5 not available; search uses LIKE on the notes.text column.
	return nil
}

func ftsInsert(_ *sql.Tx, _ string, _ int64, _ string, _ []string) error {
	return nil
}

func ftsDeleteChapter(_ *sql.Tx, _ string) error { return nil }

// Search performs a case-insensitive substring search over note text and
// tags, newest first. The query is matched literally.
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return []SearchResult{}, nil
	}
	if limit <= 0 {
		limit = 20
	}
	like := "%" + likeEscaper.Replace(query) + "%"
	rows, err := db.conn.Query(`
		SELECT chapter_id, note_id, substr(text, 1, 200), tags, created_at
		FROM notes
		WHERE text LIKE ? ESCAPE '\' OR tags LIKE ? ESCAPE '\'
		ORDER BY created_at DESC
		LIMIT ?
	`, like, like, limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	defer rows.Close()
	return scanResults(rows)
}
