package playback

import "github.com/metcalfc/skim/internal/text"

// Position identifies where the reader is, for persistence.
type Position struct {
	WordIndex      int
	SentenceIndex  int
	ParagraphIndex int
}

// Display renders engine state. Methods are called without the engine lock
// held, possibly from a timer goroutine, one at a time and in state order.
// Implementations must not call back into the engine.
type Display interface {
	ShowWord(w text.FlatWord)
	// ShowParagraph is called while paused with the paragraph around the
	// current word and the global index of the sentence to highlight.
	ShowParagraph(p text.Paragraph, highlightSentence int)
	ShowStatus(s Status)
}

// Persistence stores reading progress. Implementations are best effort and
// handle their own failures. Like Display, they must not call the engine.
type Persistence interface {
	SavePosition(p Position)
	SaveSpeed(wordsPerMinute int)
}

type nopDisplay struct{}

func (nopDisplay) ShowWord(text.FlatWord)            {}
func (nopDisplay) ShowParagraph(text.Paragraph, int) {}
func (nopDisplay) ShowStatus(Status)                 {}

type nopPersistence struct{}

func (nopPersistence) SavePosition(Position) {}
func (nopPersistence) SaveSpeed(int)         {}
