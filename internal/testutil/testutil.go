// Package testutil provides shared test helpers for data directories and
// index databases.
package testutil

import (
	"os"
	"testing"

	"github.com/starford/lectio/internal/index"
	"github.com/starford/lectio/internal/storage"
)

// Chapters is a small chapter file with two modules, chapter 2 in both.
const Chapters = `1,Introduction,3,1
2,Sets and Logic,0,0
3,Graphs,5,2
Module:Foundations
1
2
Module:Discrete
3
2
`

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "lectio-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestDataDir creates a temporary data directory seeded with files (name to
// content) and a storage provider rooted at it.
func TestDataDir(t *testing.T, files map[string]string) (string, *storage.FS) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	for name, content := range files {
		if err := store.Write(name, []byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	return dir, store
}
