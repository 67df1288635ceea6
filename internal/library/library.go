// Package library keeps the documents a reader has saved, the document being
// read, and text that has been opened but not saved yet.
package library

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/metcalfc/skim/internal/state"
)

const (
	keyLibrary      = "library"
	keyActive       = "active_document_id"
	keyTempText     = "temp_text"
	keyTempPosition = "temp_position"

	titleLength = 50

	// StorageLimit is the budget for library and temporary text together.
	StorageLimit = 5 << 20
	// Adding a document must leave usage below this share of StorageLimit.
	storageThreshold = 0.95
)

var (
	ErrNotFound    = errors.New("document not found")
	ErrStorageFull = errors.New("not enough storage space")
	ErrNoTempText  = errors.New("no unsaved text")
	ErrEmptyText   = errors.New("document has no text")
)

// Source records how a document entered the library.
type Source string

const (
	SourceFile  Source = "file"
	SourceStdin Source = "stdin"
	SourcePaste Source = "paste"
)

// Position is a saved reading position.
type Position struct {
	WordIndex      int `json:"word_index"`
	SentenceIndex  int `json:"sentence_index"`
	ParagraphIndex int `json:"paragraph_index"`
}

// Document is a saved text.
type Document struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Text      string    `json:"text"`
	Position  Position  `json:"position"`
	LastRead  time.Time `json:"last_read"`
	DateAdded time.Time `json:"date_added"`
	Source    Source    `json:"source"`
}

// Usage describes how much of the storage budget is in use.
type Usage struct {
	LibraryBytes  int
	TempBytes     int
	TotalBytes    int
	Limit         int
	Percent       float64
	DocumentCount int
}

// Library is the document collection. Every mutation is written through to
// the store.
type Library struct {
	store *state.Store
	now   func() time.Time

	mu     sync.Mutex
	docs   []Document
	active string
}

// New loads the library from store.
func New(store *state.Store) (*Library, error) {
	l := &Library{store: store, now: time.Now}
	if err := store.Get(keyLibrary, &l.docs); err != nil && !errors.Is(err, state.ErrNotFound) {
		return nil, fmt.Errorf("load library: %w", err)
	}
	if err := store.Get(keyActive, &l.active); err != nil && !errors.Is(err, state.ErrNotFound) {
		return nil, fmt.Errorf("load active document: %w", err)
	}
	return l, nil
}

// GenerateTitle derives a title from the first characters of text.
func GenerateTitle(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return "Untitled Document"
	}
	if utf8.RuneCountInString(text) <= titleLength {
		return text
	}
	return string([]rune(text)[:titleLength]) + "..."
}

// NewDocument builds a document for text. The ID is derived from the content,
// so the same text always maps to the same document.
func (l *Library) NewDocument(text string, source Source, title string) Document {
	now := l.now()
	if title == "" {
		title = GenerateTitle(text)
	}
	return Document{
		ID:        state.HashText(text),
		Title:     title,
		Text:      text,
		LastRead:  now,
		DateAdded: now,
		Source:    source,
	}
}

// Add stores doc. Adding text that is already in the library returns the
// existing document unchanged.
func (l *Library) Add(doc Document) (Document, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.add(doc)
}

func (l *Library) add(doc Document) (Document, error) {
	if strings.TrimSpace(doc.Text) == "" {
		return Document{}, ErrEmptyText
	}
	if i := l.find(doc.ID); i >= 0 {
		return l.docs[i], nil
	}
	if !l.hasSpace(len(doc.Text)) {
		return Document{}, ErrStorageFull
	}
	l.docs = append(l.docs, doc)
	if err := l.saveDocs(); err != nil {
		l.docs = l.docs[:len(l.docs)-1]
		return Document{}, err
	}
	return doc, nil
}

// Get returns the document with id.
func (l *Library) Get(id string) (Document, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if i := l.find(id); i >= 0 {
		return l.docs[i], true
	}
	return Document{}, false
}

// Update applies fn to the document with id and marks it as just read.
func (l *Library) Update(id string, fn func(*Document)) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	i := l.find(id)
	if i < 0 {
		return fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	fn(&l.docs[i])
	l.docs[i].LastRead = l.now()
	return l.saveDocs()
}

// UpdatePosition records the reading position of a document.
func (l *Library) UpdatePosition(id string, pos Position) error {
	return l.Update(id, func(d *Document) { d.Position = pos })
}

// Rename changes the title of a document.
func (l *Library) Rename(id, title string) error {
	return l.Update(id, func(d *Document) { d.Title = title })
}

// Delete removes a document, clearing the active document if it was active.
func (l *Library) Delete(id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	i := l.find(id)
	if i < 0 {
		return fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	l.docs = slices.Delete(l.docs, i, i+1)
	if err := l.saveDocs(); err != nil {
		return err
	}
	if l.active == id {
		return l.setActive("")
	}
	return nil
}

// Documents returns all documents, most recently read first.
func (l *Library) Documents() []Document {
	l.mu.Lock()
	defer l.mu.Unlock()
	docs := slices.Clone(l.docs)
	slices.SortStableFunc(docs, func(a, b Document) int {
		return b.LastRead.Compare(a.LastRead)
	})
	return docs
}

// Active returns the document being read.
func (l *Library) Active() (Document, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if i := l.find(l.active); l.active != "" && i >= 0 {
		return l.docs[i], true
	}
	return Document{}, false
}

// SetActive marks id as the document being read. An empty id clears it.
func (l *Library) SetActive(id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if id != "" && l.find(id) < 0 {
		return fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return l.setActive(id)
}

func (l *Library) setActive(id string) error {
	l.active = id
	if id == "" {
		return l.store.Delete(keyActive)
	}
	return l.store.Set(keyActive, id)
}

// Usage reports storage consumption.
func (l *Library) Usage() Usage {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.usage()
}

func (l *Library) usage() Usage {
	u := Usage{
		LibraryBytes:  l.store.Size(keyLibrary),
		TempBytes:     l.store.Size(keyTempText),
		Limit:         StorageLimit,
		DocumentCount: len(l.docs),
	}
	u.TotalBytes = u.LibraryBytes + u.TempBytes
	u.Percent = min(float64(u.TotalBytes)/float64(u.Limit)*100, 100)
	return u
}

// HasSpace reports whether n more bytes of text fit in the budget.
func (l *Library) HasSpace(n int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.hasSpace(n)
}

func (l *Library) hasSpace(n int) bool {
	u := l.usage()
	return float64(u.TotalBytes+n) < float64(u.Limit)*storageThreshold
}

// Clear removes every document and the unsaved text.
func (l *Library) Clear() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.docs = nil
	l.active = ""
	return l.store.Delete(keyLibrary, keyActive, keyTempText, keyTempPosition)
}

func (l *Library) find(id string) int {
	return slices.IndexFunc(l.docs, func(d Document) bool { return d.ID == id })
}

func (l *Library) saveDocs() error {
	if err := l.store.Set(keyLibrary, l.docs); err != nil {
		return fmt.Errorf("save library: %w", err)
	}
	return nil
}
