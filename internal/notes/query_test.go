package notes

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/starford/lectio/internal/models"
)

func seeded(t *testing.T) *Store {
	t.Helper()
	s, _ := newTestStore(t)
	sess := testSession()
	_, _ = s.AddOrUpdateNote(sess, "7", "<p>Graph Theory basics</p>", []string{"exam"})
	_, _ = s.AddOrUpdateNote(sess, "7", "<p>Trees</p>", []string{"Homework"})
	_, _ = s.AddOrUpdateNote(sess, "7", "<p>Paths</p>", nil)
	return s
}

func TestFilterNotes(t *testing.T) {
	s := seeded(t)

	tests := []struct {
		chapter, text string
		want          int
	}{
		{"7", "", 3},
		{"7", "graph", 1},
		{"7", "HOMEWORK", 1},
		{"7", "ex", 1},
		{"7", "<p>", 3},
		{"7", "missing", 0},
		{"8", "", 0},
	}
	for _, tt := range tests {
		got := s.FilterNotes(tt.chapter, tt.text)
		if len(got) != tt.want {
			t.Errorf("FilterNotes(%q, %q) = %d notes, want %d", tt.chapter, tt.text, len(got), tt.want)
		}
		if got == nil {
			t.Errorf("FilterNotes(%q, %q) returned nil", tt.chapter, tt.text)
		}
	}
}

func TestFilterNotes_EmptyKeepsOrder(t *testing.T) {
	s := seeded(t)
	got := s.FilterNotes("7", "")
	all := s.Notes("7")
	for i := range all {
		if got[i] != all[i] {
			t.Fatalf("order changed at %d", i)
		}
	}
}

func TestSortNotes(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	a := &models.Note{ID: 1, CreatedAt: base, LastEditedAt: base.Add(5 * time.Hour)}
	b := &models.Note{ID: 2, CreatedAt: base.Add(time.Hour), LastEditedAt: base.Add(time.Hour)}
	c := &models.Note{ID: 3, CreatedAt: base.Add(2 * time.Hour), LastEditedAt: base.Add(2 * time.Hour)}
	in := []*models.Note{b, c, a}

	ids := func(ns []*models.Note) []int64 {
		out := make([]int64, len(ns))
		for i, n := range ns {
			out[i] = n.ID
		}
		return out
	}
	tests := []struct {
		mode string
		want []int64
	}{
		{SortNewest, []int64{3, 2, 1}},
		{SortOldest, []int64{1, 2, 3}},
		{SortEdited, []int64{1, 3, 2}},
		{"bogus", []int64{2, 3, 1}},
		{"", []int64{2, 3, 1}},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, ids(SortNotes(in, tt.mode))); diff != "" {
			t.Errorf("SortNotes(%q) mismatch (-want +got):\n%s", tt.mode, diff)
		}
	}
	if in[0] != b || in[1] != c || in[2] != a {
		t.Error("SortNotes modified its input")
	}
}

func TestSortNotes_StableOnTies(t *testing.T) {
	ts := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	a := &models.Note{ID: 1, CreatedAt: ts}
	b := &models.Note{ID: 2, CreatedAt: ts}
	got := SortNotes([]*models.Note{a, b}, SortNewest)
	if got[0] != a || got[1] != b {
		t.Error("ties should keep input order")
	}
}
