//go:build sqlite_fts5

package index

import "testing"

func TestFTS5_TableExists(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM notes_fts`).Scan(&count); err != nil {
		t.Fatalf("notes_fts table missing: %v", err)
	}
}

func TestFTS5_SearchWithSnippet(t *testing.T) {
	db := testDB(t)
	if err := db.ReplaceChapter("1", []NoteRow{row("1", 1, "Graphs provide powerful modelling capabilities.", "search")}); err != nil {
		t.Fatalf("ReplaceChapter: %v", err)
	}

	results, err := db.Search("powerful", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].ChapterID != "1" {
		t.Errorf("chapter = %q", results[0].ChapterID)
	}
	if results[0].Snippet == "" {
		t.Error("expected a snippet")
	}
}

func TestFTS5_ReplaceClearsOldEntries(t *testing.T) {
	db := testDB(t)
	_ = db.ReplaceChapter("1", []NoteRow{row("1", 1, "obsolete words")})
	_ = db.ReplaceChapter("1", []NoteRow{row("1", 1, "fresh words")})

	results, _ := db.Search("obsolete", 10)
	if len(results) != 0 {
		t.Errorf("stale fts entry still matches: %+v", results)
	}
}

func TestFTS5_QuotesUserInput(t *testing.T) {
	db := testDB(t)
	_ = db.ReplaceChapter("2", []NoteRow{row("2", 1, "De Morgan's laws")})

	results, err := db.Search("Morgan's", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Errorf("results = %+v", results)
	}
}
