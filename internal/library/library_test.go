package library

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/metcalfc/skim/internal/state"
)

func newTestLibrary(t *testing.T) (*Library, *state.Store) {
	t.Helper()
	store, err := state.Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	lib, err := New(store)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	clock := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	lib.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	return lib, store
}

func TestGenerateTitle(t *testing.T) {
	long := strings.Repeat("a", 60)
	tests := []struct {
		name string
		text string
		want string
	}{
		{"empty", "", "Untitled Document"},
		{"whitespace", "  \n\t ", "Untitled Document"},
		{"short", "A short text.", "A short text."},
		{"collapses whitespace", "One\n\ntwo   three", "One two three"},
		{"truncated", long, strings.Repeat("a", 50) + "..."},
		{"exactly fifty", strings.Repeat("b", 50), strings.Repeat("b", 50)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GenerateTitle(tt.text); got != tt.want {
				t.Errorf("GenerateTitle() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAddAndGet(t *testing.T) {
	lib, _ := newTestLibrary(t)

	doc, err := lib.Add(lib.NewDocument("Some text to read.", SourceFile, ""))
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if doc.ID != state.HashText("Some text to read.") {
		t.Errorf("ID = %s, want content hash", doc.ID)
	}
	if doc.Title != "Some text to read." {
		t.Errorf("Title = %q", doc.Title)
	}

	got, ok := lib.Get(doc.ID)
	if !ok || got.Text != doc.Text {
		t.Errorf("Get(%s) = %+v, %v", doc.ID, got, ok)
	}
	if _, ok := lib.Get("missing"); ok {
		t.Error("Get on unknown id should fail")
	}
}

func TestAddDeduplicates(t *testing.T) {
	lib, _ := newTestLibrary(t)

	first, _ := lib.Add(lib.NewDocument("Same text.", SourceFile, "First"))
	second, err := lib.Add(lib.NewDocument("Same text.", SourceStdin, "Second"))
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if second.Title != first.Title {
		t.Errorf("re-adding returned %q, want existing %q", second.Title, first.Title)
	}
	if n := len(lib.Documents()); n != 1 {
		t.Errorf("library has %d documents, want 1", n)
	}
}

func TestAddRejectsEmptyText(t *testing.T) {
	lib, _ := newTestLibrary(t)
	if _, err := lib.Add(lib.NewDocument("   ", SourceFile, "")); !errors.Is(err, ErrEmptyText) {
		t.Errorf("Add(empty) = %v, want ErrEmptyText", err)
	}
}

func TestAddStorageFull(t *testing.T) {
	lib, _ := newTestLibrary(t)
	huge := strings.Repeat("word ", StorageLimit/5)
	if _, err := lib.Add(lib.NewDocument(huge, SourceFile, "")); !errors.Is(err, ErrStorageFull) {
		t.Errorf("Add(huge) = %v, want ErrStorageFull", err)
	}
	if !lib.HasSpace(1024) {
		t.Error("HasSpace(1024) should be true for an empty library")
	}
}

func TestPersistence(t *testing.T) {
	lib, store := newTestLibrary(t)
	doc, _ := lib.Add(lib.NewDocument("Persisted text.", SourceFile, ""))
	if err := lib.SetActive(doc.ID); err != nil {
		t.Fatalf("SetActive failed: %v", err)
	}
	if err := lib.UpdatePosition(doc.ID, Position{WordIndex: 1, SentenceIndex: 0, ParagraphIndex: 0}); err != nil {
		t.Fatalf("UpdatePosition failed: %v", err)
	}

	reloaded, err := New(store)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	active, ok := reloaded.Active()
	if !ok || active.ID != doc.ID {
		t.Fatalf("Active() = %+v, %v", active, ok)
	}
	if active.Position.WordIndex != 1 {
		t.Errorf("Position.WordIndex = %d, want 1", active.Position.WordIndex)
	}
}

func TestUpdateTouchesLastRead(t *testing.T) {
	lib, _ := newTestLibrary(t)
	doc, _ := lib.Add(lib.NewDocument("Text.", SourceFile, ""))

	if err := lib.Rename(doc.ID, "Renamed"); err != nil {
		t.Fatalf("Rename failed: %v", err)
	}
	got, _ := lib.Get(doc.ID)
	if got.Title != "Renamed" {
		t.Errorf("Title = %q, want Renamed", got.Title)
	}
	if !got.LastRead.After(doc.LastRead) {
		t.Errorf("LastRead not updated: %v <= %v", got.LastRead, doc.LastRead)
	}
	if !got.DateAdded.Equal(doc.DateAdded) {
		t.Error("DateAdded should not change")
	}

	if err := lib.Rename("missing", "x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Rename(missing) = %v, want ErrNotFound", err)
	}
}

func TestDocumentsSortedByRecent(t *testing.T) {
	lib, _ := newTestLibrary(t)
	a, _ := lib.Add(lib.NewDocument("Document A.", SourceFile, ""))
	b, _ := lib.Add(lib.NewDocument("Document B.", SourceFile, ""))
	c, _ := lib.Add(lib.NewDocument("Document C.", SourceFile, ""))

	// Reading A again makes it the most recent.
	lib.UpdatePosition(a.ID, Position{})

	docs := lib.Documents()
	want := []string{a.ID, c.ID, b.ID}
	for i, id := range want {
		if docs[i].ID != id {
			t.Errorf("Documents()[%d] = %s, want %s", i, docs[i].Title, id)
		}
	}
}

func TestDeleteClearsActive(t *testing.T) {
	lib, _ := newTestLibrary(t)
	doc, _ := lib.Add(lib.NewDocument("To delete.", SourceFile, ""))
	lib.SetActive(doc.ID)

	if err := lib.Delete(doc.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, ok := lib.Active(); ok {
		t.Error("Active() should be empty after deleting the active document")
	}
	if err := lib.Delete(doc.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete = %v, want ErrNotFound", err)
	}
	if err := lib.SetActive("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("SetActive(missing) = %v, want ErrNotFound", err)
	}
}

func TestTempText(t *testing.T) {
	lib, _ := newTestLibrary(t)
	if lib.HasTemp() {
		t.Fatal("new library should have no unsaved text")
	}
	if _, err := lib.SaveTempToLibrary(""); !errors.Is(err, ErrNoTempText) {
		t.Errorf("SaveTempToLibrary without text = %v, want ErrNoTempText", err)
	}

	if err := lib.SaveTemp("Piped in text.", Position{}); err != nil {
		t.Fatalf("SaveTemp failed: %v", err)
	}
	if err := lib.UpdateTempPosition(Position{WordIndex: 2}); err != nil {
		t.Fatalf("UpdateTempPosition failed: %v", err)
	}
	text, pos, ok := lib.Temp()
	if !ok || text != "Piped in text." || pos.WordIndex != 2 {
		t.Errorf("Temp() = %q, %+v, %v", text, pos, ok)
	}
	if u := lib.Usage(); u.TempBytes == 0 || u.DocumentCount != 0 {
		t.Errorf("Usage() = %+v", u)
	}

	doc, err := lib.SaveTempToLibrary("Piped")
	if err != nil {
		t.Fatalf("SaveTempToLibrary failed: %v", err)
	}
	if doc.Title != "Piped" || doc.Position.WordIndex != 2 || doc.Source != SourceStdin {
		t.Errorf("saved document = %+v", doc)
	}
	if lib.HasTemp() {
		t.Error("unsaved text should be cleared after saving")
	}
	if active, ok := lib.Active(); !ok || active.ID != doc.ID {
		t.Error("saved text should become the active document")
	}
}

func TestClear(t *testing.T) {
	lib, _ := newTestLibrary(t)
	doc, _ := lib.Add(lib.NewDocument("Text.", SourceFile, ""))
	lib.SetActive(doc.ID)
	lib.SaveTemp("Temp.", Position{})

	if err := lib.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if len(lib.Documents()) != 0 || lib.HasTemp() {
		t.Error("Clear should remove documents and unsaved text")
	}
	if u := lib.Usage(); u.TotalBytes != 0 || u.Percent != 0 {
		t.Errorf("Usage after Clear = %+v", u)
	}
}
