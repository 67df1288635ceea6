// Package playback drives RSVP reading: it owns the reading position and
// speed, advances through a flat word sequence on a timer, and navigates by
// sentence and paragraph.
package playback

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/metcalfc/skim/internal/text"
)

const (
	DefaultWordsPerMinute    = 200
	DefaultIncrement         = 5
	MinWordsPerMinute        = 50
	DefaultMaxWordsPerMinute = 1500

	// Position is saved every saveInterval words while reading.
	saveInterval = 10
)

// ErrEmptyDocument is returned by Load when the text has no words.
var ErrEmptyDocument = errors.New("no words found in text")

// State is the playback mode.
type State int

const (
	Paused State = iota
	Reading
)

func (s State) String() string {
	if s == Reading {
		return "reading"
	}
	return "paused"
}

// Status is a snapshot of the engine for status lines.
type Status struct {
	State          State
	WordsPerMinute int
	WordIndex      int
	TotalWords     int
}

// Config configures an Engine. Zero values select defaults and no-op
// collaborators.
type Config struct {
	WordsPerMinute    int
	Increment         int
	MaxWordsPerMinute int

	Display     Display
	Persistence Persistence
	Scheduler   Scheduler
	Logger      *slog.Logger
}

// Engine is a single reader session. It is safe for use from multiple
// goroutines; timer callbacks and user commands serialize on its lock, and
// collaborators see notifications in the order the state changed.
type Engine struct {
	mu sync.Mutex
	// notifyMu is taken before mu is released and held while notifications
	// run, so deliveries from different goroutines cannot reorder.
	notifyMu sync.Mutex

	doc   text.Document
	words []text.FlatWord
	index int

	wpm       int
	increment int
	maxWPM    int

	reading    bool
	justJumped bool
	timer      Timer
	// generation invalidates callbacks of timers that were stopped too late.
	generation uint64

	display Display
	persist Persistence
	sched   Scheduler
	logger  *slog.Logger

	// notifications queued under the lock, run after it is released
	pending []func()
}

// New creates a paused engine with no document.
func New(cfg Config) *Engine {
	e := &Engine{
		wpm:       cfg.WordsPerMinute,
		increment: cfg.Increment,
		maxWPM:    cfg.MaxWordsPerMinute,
		display:   cfg.Display,
		persist:   cfg.Persistence,
		sched:     cfg.Scheduler,
		logger:    cfg.Logger,
	}
	if e.maxWPM < MinWordsPerMinute {
		e.maxWPM = DefaultMaxWordsPerMinute
	}
	if e.wpm == 0 {
		e.wpm = DefaultWordsPerMinute
	}
	e.wpm = clamp(e.wpm, MinWordsPerMinute, e.maxWPM)
	if e.increment <= 0 {
		e.increment = DefaultIncrement
	}
	if e.display == nil {
		e.display = nopDisplay{}
	}
	if e.persist == nil {
		e.persist = nopPersistence{}
	}
	if e.sched == nil {
		e.sched = SystemScheduler{}
	}
	if e.logger == nil {
		e.logger = slog.New(slog.DiscardHandler)
	}
	return e
}

// do runs fn under the lock, then delivers the notifications fn queued.
func (e *Engine) do(fn func()) {
	e.mu.Lock()
	fn()
	pending := e.pending
	e.pending = nil
	e.notifyMu.Lock()
	e.mu.Unlock()
	defer e.notifyMu.Unlock()

	for _, notify := range pending {
		notify()
	}
}

// Load segments raw text and makes it the current document, positioned at
// start (clamped) and paused. Text without words leaves the engine untouched
// and returns ErrEmptyDocument.
func (e *Engine) Load(raw string, start int) error {
	doc := text.Process(raw)
	if doc.Empty() {
		e.logger.Warn("no words found in processed text")
		return ErrEmptyDocument
	}
	words := text.Flatten(doc)

	e.do(func() {
		e.cancelTimer()
		e.reading = false
		e.justJumped = false
		e.doc = doc
		e.words = words
		e.index = clamp(start, 0, len(words)-1)

		e.showStatus()
		e.showWord()
		e.showParagraph()
	})

	e.logger.Debug("document loaded",
		"paragraphs", doc.TotalParagraphs,
		"sentences", doc.TotalSentences,
		"words", doc.TotalWords,
		"start", start,
	)
	return nil
}

// Start begins timed advancement. It does nothing without a document or when
// already reading.
func (e *Engine) Start() {
	e.do(e.start)
}

func (e *Engine) start() {
	if len(e.words) == 0 || e.reading {
		return
	}
	e.reading = true
	e.showStatus()
	e.scheduleNext()
}

// Pause stops advancement, shows the paragraph view and saves the position.
func (e *Engine) Pause() {
	e.do(e.pause)
}

func (e *Engine) pause() {
	if len(e.words) == 0 {
		return
	}
	e.cancelTimer()
	e.reading = false
	e.showStatus()
	e.showParagraph()
	e.savePosition()
}

// Toggle switches between reading and paused.
func (e *Engine) Toggle() {
	e.do(func() {
		if e.reading {
			e.pause()
		} else {
			e.start()
		}
	})
}

// Close cancels any pending advance.
func (e *Engine) Close() {
	e.do(e.cancelTimer)
}

// BaseDelay is how long a word without pause punctuation stays on screen.
func (e *Engine) BaseDelay() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return baseDelay(e.wpm)
}

func baseDelay(wpm int) time.Duration {
	return time.Duration(float64(time.Minute) / float64(wpm))
}

// scheduleNext arms the advance timer for the current word. The delay doubles
// when the word carries pause punctuation or right after a sentence jump.
func (e *Engine) scheduleNext() {
	if !e.reading {
		return
	}
	e.cancelTimer()

	delay := baseDelay(e.wpm)
	if e.words[e.index].HasPausePunctuation || e.justJumped {
		delay *= 2
	}
	e.justJumped = false

	gen := e.generation
	e.timer = e.sched.AfterFunc(delay, func() {
		e.do(func() {
			if gen != e.generation || !e.reading {
				return
			}
			e.timer = nil
			e.advance()
		})
	})
}

func (e *Engine) cancelTimer() {
	e.generation++
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
}

// advance moves one word forward, pausing at the end of the document.
func (e *Engine) advance() {
	if e.index >= len(e.words)-1 {
		e.pause()
		return
	}
	e.index++
	e.showWord()
	e.scheduleNext()
	if e.index%saveInterval == 0 {
		e.savePosition()
	}
}

// moveTo repositions the reader. While reading the pending advance is
// replaced by one with the doubled jump delay; while paused the paragraph
// view follows.
func (e *Engine) moveTo(target int) {
	e.index = clamp(target, 0, len(e.words)-1)
	e.showWord()
	if e.reading {
		e.cancelTimer()
		e.justJumped = true
		e.scheduleNext()
	} else {
		e.showParagraph()
	}
	e.savePosition()
}

// State reports whether the engine is reading or paused.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.reading {
		return Reading
	}
	return Paused
}

// Status returns a snapshot of the playback state.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status()
}

func (e *Engine) status() Status {
	s := Status{
		State:          Paused,
		WordsPerMinute: e.wpm,
		WordIndex:      e.index,
		TotalWords:     len(e.words),
	}
	if e.reading {
		s.State = Reading
	}
	return s
}

// Position returns the current reading position. ok is false before a
// document is loaded.
func (e *Engine) Position() (p Position, ok bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.words) == 0 {
		return Position{}, false
	}
	return e.position(), true
}

func (e *Engine) position() Position {
	w := e.words[e.index]
	return Position{
		WordIndex:      e.index,
		SentenceIndex:  w.SentenceIndex,
		ParagraphIndex: w.ParagraphIndex,
	}
}

// CurrentWord returns the word under the cursor.
func (e *Engine) CurrentWord() (text.FlatWord, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.words) == 0 {
		return text.FlatWord{}, false
	}
	return e.words[e.index], true
}

// Document returns the loaded document. It must be treated as read-only.
func (e *Engine) Document() text.Document {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.doc
}

// Progress returns reading statistics for the current position.
func (e *Engine) Progress() Progress {
	e.mu.Lock()
	defer e.mu.Unlock()
	return NewProgress(e.index, len(e.words), e.wpm)
}

func (e *Engine) showWord() {
	w := e.words[e.index]
	e.pending = append(e.pending, func() { e.display.ShowWord(w) })
}

func (e *Engine) showParagraph() {
	if e.reading || len(e.words) == 0 {
		return
	}
	p, ok := text.FindParagraphByWordIndex(e.doc, e.index)
	if !ok {
		return
	}
	highlight := e.words[e.index].SentenceIndex
	e.pending = append(e.pending, func() { e.display.ShowParagraph(p, highlight) })
}

func (e *Engine) showStatus() {
	s := e.status()
	e.pending = append(e.pending, func() { e.display.ShowStatus(s) })
}

func (e *Engine) savePosition() {
	p := e.position()
	e.pending = append(e.pending, func() { e.persist.SavePosition(p) })
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
