package playback

// IncreaseSpeed raises the pace by the configured increment, up to the
// configured maximum, and persists it.
func (e *Engine) IncreaseSpeed() {
	e.changeSpeed(1)
}

// DecreaseSpeed lowers the pace by the configured increment, never below
// MinWordsPerMinute, and persists it.
func (e *Engine) DecreaseSpeed() {
	e.changeSpeed(-1)
}

func (e *Engine) changeSpeed(sign int) {
	e.do(func() {
		e.wpm = clamp(e.wpm+sign*e.increment, MinWordsPerMinute, e.maxWPM)
		wpm := e.wpm
		e.showStatus()
		e.pending = append(e.pending, func() { e.persist.SaveSpeed(wpm) })
	})
}

// SetSpeed applies a pace from settings without persisting it. The pending
// advance keeps its delay; the next one uses the new pace.
func (e *Engine) SetSpeed(wordsPerMinute, increment int) {
	e.do(func() {
		e.wpm = clamp(wordsPerMinute, MinWordsPerMinute, e.maxWPM)
		if increment > 0 {
			e.increment = increment
		}
		e.showStatus()
	})
}

// WordsPerMinute returns the current pace.
func (e *Engine) WordsPerMinute() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.wpm
}
