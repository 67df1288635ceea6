package library

import "fmt"

// SaveTemp keeps text that is being read but has not been added to the
// library.
func (l *Library) SaveTemp(text string, pos Position) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.store.Set(keyTempText, text); err != nil {
		return fmt.Errorf("save unsaved text: %w", err)
	}
	return l.store.Set(keyTempPosition, pos)
}

// Temp returns the unsaved text and its reading position.
func (l *Library) Temp() (string, Position, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.temp()
}

func (l *Library) temp() (string, Position, bool) {
	var text string
	var pos Position
	if err := l.store.Get(keyTempText, &text); err != nil || text == "" {
		return "", Position{}, false
	}
	if err := l.store.Get(keyTempPosition, &pos); err != nil {
		// A missing or unreadable position restarts the text.
		pos = Position{}
	}
	return text, pos, true
}

// HasTemp reports whether there is unsaved text.
func (l *Library) HasTemp() bool {
	_, _, ok := l.Temp()
	return ok
}

// UpdateTempPosition records the reading position in the unsaved text.
func (l *Library) UpdateTempPosition(pos Position) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.store.Set(keyTempPosition, pos)
}

// ClearTemp discards the unsaved text.
func (l *Library) ClearTemp() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.store.Delete(keyTempText, keyTempPosition)
}

// SaveTempToLibrary moves the unsaved text into the library, keeping its
// position, and makes it the active document.
func (l *Library) SaveTempToLibrary(title string) (Document, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	text, pos, ok := l.temp()
	if !ok {
		return Document{}, ErrNoTempText
	}

	// The temporary text no longer counts against the budget once moved.
	if err := l.store.Delete(keyTempText, keyTempPosition); err != nil {
		return Document{}, err
	}

	doc := l.NewDocument(text, SourceStdin, title)
	doc.Position = pos
	saved, err := l.add(doc)
	if err != nil {
		// Put the text back so nothing is lost.
		_ = l.store.Set(keyTempText, text)
		_ = l.store.Set(keyTempPosition, pos)
		return Document{}, err
	}
	if err := l.setActive(saved.ID); err != nil {
		return Document{}, err
	}
	return saved, nil
}
