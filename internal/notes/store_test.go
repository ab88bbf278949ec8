package notes

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/starford/lectio/internal/notify"
	"github.com/starford/lectio/internal/storage"
)

// fakeClock returns t0, t0+1m, t0+2m, ... on successive calls.
func fakeClock(t0 time.Time) func() time.Time {
	n := 0
	return func() time.Time {
		v := t0.Add(time.Duration(n) * time.Minute)
		n++
		return v
	}
}

func testSession() Session {
	return Session{
		Author: "tester",
		Now:    fakeClock(time.Date(2025, 2, 15, 19, 24, 21, 0, time.UTC)),
	}
}

func newTestStore(t *testing.T, opts ...Option) (*Store, *storage.FS) {
	t.Helper()
	fs, err := storage.NewFS(t.TempDir())
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	s := NewStore(fs, DefaultFile, opts...)
	s.Load()
	return s, fs
}

type failingWriter struct {
	*storage.FS
}

func (failingWriter) Write(string, []byte) error { return errors.New("disk full") }

func TestCreateNote(t *testing.T) {
	s, _ := newTestStore(t)
	sess := testSession()

	n := s.CreateNote(sess, "<p>hi</p>", []string{"a", "b", "a"})
	if n.Author != "tester" {
		t.Errorf("author = %q", n.Author)
	}
	if !n.CreatedAt.Equal(n.LastEditedAt) {
		t.Error("createdAt and lastEditedAt should match on creation")
	}
	if n.IsEditing {
		t.Error("new note should not be editing")
	}
	if strings.Join(n.Tags, ",") != "a,b" {
		t.Errorf("tags = %v, want [a b]", n.Tags)
	}
	if len(s.ChapterIDs()) != 0 {
		t.Error("CreateNote must not store the note")
	}
}

func TestNoteRoundTrip(t *testing.T) {
	s, fs := newTestStore(t)
	if _, err := s.AddOrUpdateNote(testSession(), "5", "hello", []string{"x"}); err != nil {
		t.Fatalf("AddOrUpdateNote: %v", err)
	}
	if err := s.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	reloaded := NewStore(fs, DefaultFile)
	reloaded.Load()
	list := reloaded.Notes("5")
	if len(list) != 1 {
		t.Fatalf("notes = %d, want 1", len(list))
	}
	if list[0].Content != "hello" {
		t.Errorf("content = %q", list[0].Content)
	}
	if len(list[0].Tags) != 1 || list[0].Tags[0] != "x" {
		t.Errorf("tags = %v", list[0].Tags)
	}
	if !list[0].CreatedAt.Equal(s.Notes("5")[0].CreatedAt) {
		t.Error("timestamp lost precision on round trip")
	}
}

func TestAddOrUpdateNote_AlwaysAppends(t *testing.T) {
	s, _ := newTestStore(t)
	sess := testSession()

	first, _ := s.AddOrUpdateNote(sess, "1", "same", nil)
	second, _ := s.AddOrUpdateNote(sess, "1", "same", nil)

	list := s.Notes("1")
	if len(list) != 2 {
		t.Fatalf("notes = %d, want 2 (never updates in place)", len(list))
	}
	if first.ID == second.ID {
		t.Error("ids must be unique")
	}
	if list[0] != first || list[1] != second {
		t.Error("notes should keep creation order")
	}
}

func TestAddOrUpdateNote_ResetsDraftAndNotifies(t *testing.T) {
	var changed []string
	s, _ := newTestStore(t, WithOnChange(func(id string) { changed = append(changed, id) }))
	s.Editor().SetContent("<p>draft</p>")
	s.AddTag("exam")

	_, _ = s.AddOrUpdateNote(testSession(), "2", s.Editor().Content(), s.CurrentTags())

	if s.Editor().Content() != "" {
		t.Error("editor should be cleared")
	}
	if len(s.CurrentTags()) != 0 {
		t.Error("tag buffer should be cleared")
	}
	if len(changed) != 1 || changed[0] != "2" {
		t.Errorf("change hook calls = %v", changed)
	}
	if got := s.Notes("2")[0].Tags; len(got) != 1 || got[0] != "exam" {
		t.Errorf("committed tags = %v", got)
	}
}

func TestAddOrUpdateNote_SaveFailure(t *testing.T) {
	rec := &notify.Recorder{}
	s, fs := newTestStore(t, WithNotifier(rec))
	s.provider = failingWriter{fs}

	_, err := s.AddOrUpdateNote(testSession(), "1", "x", nil)
	if err == nil {
		t.Fatal("expected save error")
	}
	if len(rec.Errors()) != 1 {
		t.Errorf("notifications = %+v", rec.Messages())
	}
	if len(s.Notes("1")) != 1 {
		t.Error("in-memory note should be kept")
	}
}

func TestEditAndUpdate(t *testing.T) {
	s, fs := newTestStore(t)
	sess := testSession()
	n, _ := s.AddOrUpdateNote(sess, "3", "<p>v1</p>", []string{"a"})
	created := n.CreatedAt

	if !s.EditNote("3", n.ID) {
		t.Fatal("EditNote returned false")
	}
	if !n.IsEditing {
		t.Error("note should be editing")
	}
	if s.Editor().Content() != "<p>v1</p>" {
		t.Errorf("editor = %q", s.Editor().Content())
	}
	if tags := s.CurrentTags(); len(tags) != 1 || tags[0] != "a" {
		t.Errorf("tag buffer = %v", tags)
	}

	s.Editor().SetContent("<p>v2</p>")
	s.AddTag("b")
	ok, err := s.UpdateNote(sess, "3", n.ID)
	if !ok || err != nil {
		t.Fatalf("UpdateNote = %v, %v", ok, err)
	}
	if n.Content != "<p>v2</p>" || strings.Join(n.Tags, ",") != "a,b" {
		t.Errorf("note = %+v", n)
	}
	if n.IsEditing {
		t.Error("editing flag should be cleared")
	}
	if !n.LastEditedAt.After(created) || !n.CreatedAt.Equal(created) {
		t.Errorf("timestamps created=%v edited=%v", n.CreatedAt, n.LastEditedAt)
	}
	if s.Editor().Content() != "" || len(s.CurrentTags()) != 0 {
		t.Error("draft should be cleared after commit")
	}

	reloaded := NewStore(fs, DefaultFile)
	reloaded.Load()
	if got := reloaded.Notes("3")[0].Content; got != "<p>v2</p>" {
		t.Errorf("persisted content = %q", got)
	}
}

func TestEditNote_NotPersisted(t *testing.T) {
	s, fs := newTestStore(t)
	n, _ := s.AddOrUpdateNote(testSession(), "1", "x", nil)
	before, _ := fs.Checksum(DefaultFile)

	s.EditNote("1", n.ID)

	after, _ := fs.Checksum(DefaultFile)
	if before != after {
		t.Error("EditNote wrote to disk")
	}
}

func TestEditingFlagNeverPersisted(t *testing.T) {
	s, fs := newTestStore(t)
	a, _ := s.AddOrUpdateNote(testSession(), "1", "a", nil)
	s.EditNote("1", a.ID)
	// Another write-through while the first note is still in edit mode.
	_, _ = s.AddOrUpdateNote(testSession(), "1", "b", nil)

	data, _ := fs.Read(DefaultFile)
	if strings.Contains(string(data), `"isEditing": true`) {
		t.Errorf("isEditing persisted:\n%s", data)
	}
	reloaded := NewStore(fs, DefaultFile)
	reloaded.Load()
	if reloaded.Notes("1")[0].IsEditing {
		t.Error("isEditing should load as false")
	}
}

func TestEditNote_SingleNoteEditing(t *testing.T) {
	s, _ := newTestStore(t)
	sess := testSession()
	a, _ := s.AddOrUpdateNote(sess, "1", "<p>A</p>", nil)
	b, _ := s.AddOrUpdateNote(sess, "1", "<p>B</p>", nil)
	c, _ := s.AddOrUpdateNote(sess, "2", "<p>C</p>", nil)

	s.EditNote("1", a.ID)
	s.EditNote("2", c.ID)
	s.EditNote("1", b.ID)

	if a.IsEditing || c.IsEditing {
		t.Errorf("editing flags a=%v c=%v, want only b editing", a.IsEditing, c.IsEditing)
	}
	if !b.IsEditing {
		t.Error("b should be editing")
	}
	if s.Editor().Content() != "<p>B</p>" {
		t.Errorf("editor = %q", s.Editor().Content())
	}
}

func TestCancelEdit(t *testing.T) {
	s, _ := newTestStore(t)
	n, _ := s.AddOrUpdateNote(testSession(), "1", "keep", nil)
	s.EditNote("1", n.ID)
	s.Editor().SetContent("discard")

	if !s.CancelEdit("1", n.ID) {
		t.Fatal("CancelEdit returned false")
	}
	if n.IsEditing || n.Content != "keep" {
		t.Errorf("note = %+v", n)
	}
	if s.Editor().Content() != "" {
		t.Error("editor should be cleared")
	}
}

func TestUpdateNote_UnknownID(t *testing.T) {
	s, fs := newTestStore(t)
	n, _ := s.AddOrUpdateNote(testSession(), "1", "x", nil)
	before, _ := fs.Checksum(DefaultFile)
	s.Editor().SetContent("y")

	ok, err := s.UpdateNote(testSession(), "1", n.ID+1000)
	if ok || err != nil {
		t.Errorf("UpdateNote(unknown) = %v, %v", ok, err)
	}
	if ok, _ := s.UpdateNote(testSession(), "nope", n.ID); ok {
		t.Error("UpdateNote on unknown chapter should fail")
	}
	after, _ := fs.Checksum(DefaultFile)
	if before != after || n.Content != "x" {
		t.Error("store changed on unknown id")
	}
}

func TestDeleteNote(t *testing.T) {
	s, fs := newTestStore(t)
	a, _ := s.AddOrUpdateNote(testSession(), "1", "a", nil)
	b, _ := s.AddOrUpdateNote(testSession(), "1", "b", nil)

	ok, err := s.DeleteNote("1", a.ID)
	if !ok || err != nil {
		t.Fatalf("DeleteNote = %v, %v", ok, err)
	}
	list := s.Notes("1")
	if len(list) != 1 || list[0] != b {
		t.Errorf("remaining = %+v", list)
	}

	reloaded := NewStore(fs, DefaultFile)
	reloaded.Load()
	if len(reloaded.Notes("1")) != 1 {
		t.Error("delete not persisted")
	}
}

func TestDeleteNote_EmptyChapterNoop(t *testing.T) {
	calls := 0
	s, fs := newTestStore(t, WithOnChange(func(string) { calls++ }))

	ok, err := s.DeleteNote("42", 1)
	if ok || err != nil {
		t.Errorf("DeleteNote = %v, %v", ok, err)
	}
	if calls != 0 {
		t.Error("no-op delete should not re-render")
	}
	if cs, _ := fs.Checksum(DefaultFile); cs != "" {
		t.Error("no-op delete should not write")
	}
	if len(s.ChapterIDs()) != 0 {
		t.Error("store changed")
	}
}

func TestTagBuffer(t *testing.T) {
	s, _ := newTestStore(t)
	s.AddTag("x")
	s.AddTag("x")
	s.AddTag("  ")
	s.AddTag(" y ")

	if got := s.CurrentTags(); strings.Join(got, ",") != "x,y" {
		t.Errorf("tags = %v, want [x y]", got)
	}
	if !s.RemoveTag("x") || s.RemoveTag("x") {
		t.Error("RemoveTag should succeed once")
	}
	if got := s.CurrentTags(); len(got) != 1 || got[0] != "y" {
		t.Errorf("tags = %v", got)
	}
}

func TestIDsUniqueUnderRapidCreation(t *testing.T) {
	s, _ := newTestStore(t)
	frozen := Session{Author: "a", Now: func() time.Time { return time.Unix(1700000000, 0) }}
	seen := make(map[int64]bool)
	for i := 0; i < 100; i++ {
		n := s.CreateNote(frozen, "x", nil)
		if seen[n.ID] {
			t.Fatalf("duplicate id %d", n.ID)
		}
		seen[n.ID] = true
	}
}

func TestIDsStayAboveLoaded(t *testing.T) {
	s, fs := newTestStore(t)
	future := Session{Author: "a", Now: func() time.Time { return time.Now().Add(24 * time.Hour) }}
	old, _ := s.AddOrUpdateNote(future, "1", "x", nil)

	reloaded := NewStore(fs, DefaultFile)
	reloaded.Load()
	n := reloaded.CreateNote(Session{}, "y", nil)
	if n.ID <= old.ID {
		t.Errorf("new id %d not above loaded id %d", n.ID, old.ID)
	}
}

func TestLoad_LegacyFile(t *testing.T) {
	fs, _ := storage.NewFS(t.TempDir())
	legacy := `{
  "4": [
    {
      "id": 1739647461000,
      "content": "<p>old</p>",
      "tags": ["exam"],
      "timestamp": "2025-02-15 19:24:21",
      "lastEdited": "2025-02-15 19:24:21",
      "author": "someone",
      "isEditing": true
    }
  ]
}`
	_ = fs.Write(DefaultFile, []byte(legacy))
	s := NewStore(fs, DefaultFile)
	s.Load()

	list := s.Notes("4")
	if len(list) != 1 {
		t.Fatalf("notes = %d", len(list))
	}
	n := list[0]
	if n.ID != 1739647461000 || n.Author != "someone" {
		t.Errorf("note = %+v", n)
	}
	if n.CreatedAt.Year() != 2025 || n.CreatedAt.Hour() != 19 {
		t.Errorf("timestamp = %v", n.CreatedAt)
	}
	if n.IsEditing {
		t.Error("isEditing must not load")
	}
}

func TestLoad_MalformedResetsAndBacksUp(t *testing.T) {
	fs, _ := storage.NewFS(t.TempDir())
	_ = fs.Write(DefaultFile, []byte("{not json"))
	s := NewStore(fs, DefaultFile)
	s.Load()

	if len(s.ChapterIDs()) != 0 {
		t.Error("malformed file should load empty")
	}
	matches, _ := filepath.Glob(filepath.Join(fs.Root(), DefaultFile+".corrupt-*"))
	if len(matches) != 1 {
		t.Errorf("backups = %v, want 1", matches)
	}
}

func TestLoad_ResetsPreviousState(t *testing.T) {
	s, fs := newTestStore(t)
	_, _ = s.AddOrUpdateNote(testSession(), "1", "x", nil)
	_ = fs.Delete(DefaultFile)

	s.Load()
	if len(s.ChapterIDs()) != 0 {
		t.Error("Load should replace state, not merge")
	}
}
