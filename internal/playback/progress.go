package playback

import (
	"fmt"
	"math"
)

// Progress summarizes how far through the document the reader is.
type Progress struct {
	// Current is the 1-based number of the word on screen.
	Current          int
	Total            int
	Percent          float64
	WordsRemaining   int
	MinutesRemaining float64
}

// NewProgress computes progress for a 0-based word index.
func NewProgress(index, total, wordsPerMinute int) Progress {
	if total == 0 {
		return Progress{}
	}
	index = clamp(index, 0, total-1)
	p := Progress{
		Current:        index + 1,
		Total:          total,
		Percent:        float64(index) / float64(total) * 100,
		WordsRemaining: total - index,
	}
	if wordsPerMinute > 0 {
		p.MinutesRemaining = float64(p.WordsRemaining) / float64(wordsPerMinute)
	}
	return p
}

func (p Progress) hoursMinutes() (int, int) {
	total := int(math.Ceil(p.MinutesRemaining))
	return total / 60, total % 60
}

// ShortRemaining formats the time left compactly: "<1 min", "7 min", "2h 5m".
func (p Progress) ShortRemaining() string {
	switch {
	case p.MinutesRemaining < 1:
		return "<1 min"
	case p.MinutesRemaining < 60:
		return fmt.Sprintf("%d min", int(math.Ceil(p.MinutesRemaining)))
	}
	h, m := p.hoursMinutes()
	if m == 0 {
		return fmt.Sprintf("%dh", h)
	}
	return fmt.Sprintf("%dh %dm", h, m)
}

// LongRemaining formats the time left in words.
func (p Progress) LongRemaining() string {
	switch {
	case p.MinutesRemaining < 1:
		return "Less than 1 minute"
	case p.MinutesRemaining < 60:
		m := int(math.Ceil(p.MinutesRemaining))
		return fmt.Sprintf("%d minute%s", m, plural(m))
	}
	h, m := p.hoursMinutes()
	s := fmt.Sprintf("%d hour%s", h, plural(h))
	if m > 0 {
		s += fmt.Sprintf(", %d min", m)
	}
	return s
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
