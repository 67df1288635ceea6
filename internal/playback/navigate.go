package playback

import "github.com/metcalfc/skim/internal/text"

func sentenceOf(w text.FlatWord) int  { return w.SentenceIndex }
func paragraphOf(w text.FlatWord) int { return w.ParagraphIndex }

// spanStart returns the first index of the run of words sharing key with
// words[i].
func spanStart(words []text.FlatWord, i int, key func(text.FlatWord) int) int {
	k := key(words[i])
	for i > 0 && key(words[i-1]) == k {
		i--
	}
	return i
}

// nextSpanStart returns the first index after i whose key differs from
// words[i], or the last index when there is none.
func nextSpanStart(words []text.FlatWord, i int, key func(text.FlatWord) int) int {
	k := key(words[i])
	for j := i + 1; j < len(words); j++ {
		if key(words[j]) != k {
			return j
		}
	}
	return len(words) - 1
}

// prevSpanStart returns the start of the span before the one holding i, or
// zero from the first span.
func prevSpanStart(words []text.FlatWord, i int, key func(text.FlatWord) int) int {
	start := spanStart(words, i, key)
	if start == 0 {
		return 0
	}
	return spanStart(words, start-1, key)
}

// JumpToSentenceStart rewinds to the first word of the current sentence.
// While reading, a cursor already on the first or second word of its sentence
// goes back to the previous sentence instead, so repeated presses keep
// walking backwards. In the first sentence there is nothing before it: the
// cursor lands on word 0 and the next advance still gets the doubled delay.
func (e *Engine) JumpToSentenceStart() {
	e.do(func() {
		if len(e.words) == 0 {
			return
		}
		target := spanStart(e.words, e.index, sentenceOf)
		if e.reading && e.index-target <= 1 {
			target = prevSpanStart(e.words, e.index, sentenceOf)
		}
		e.moveTo(target)
	})
}

// SkipToNextSentence moves to the first word of the next sentence, or to the
// last word of the document.
func (e *Engine) SkipToNextSentence() {
	e.do(e.skipToNextSentence)
}

func (e *Engine) skipToNextSentence() {
	if len(e.words) == 0 {
		return
	}
	e.moveTo(nextSpanStart(e.words, e.index, sentenceOf))
}

// NavigateToPreviousSentence moves to the start of the previous sentence.
// It only acts while paused.
func (e *Engine) NavigateToPreviousSentence() {
	e.navigate(func() int { return prevSpanStart(e.words, e.index, sentenceOf) })
}

// NavigateToNextSentence moves to the start of the next sentence. It only
// acts while paused.
func (e *Engine) NavigateToNextSentence() {
	e.navigate(func() int { return nextSpanStart(e.words, e.index, sentenceOf) })
}

// NavigateToPreviousParagraph moves to the start of the previous paragraph.
// It only acts while paused.
func (e *Engine) NavigateToPreviousParagraph() {
	e.navigate(func() int { return prevSpanStart(e.words, e.index, paragraphOf) })
}

// NavigateToNextParagraph moves to the start of the next paragraph. It only
// acts while paused.
func (e *Engine) NavigateToNextParagraph() {
	e.navigate(func() int { return nextSpanStart(e.words, e.index, paragraphOf) })
}

func (e *Engine) navigate(target func() int) {
	e.do(func() {
		if e.reading || len(e.words) == 0 {
			return
		}
		e.moveTo(target())
	})
}

// JumpTo moves to an arbitrary word, clamped to the document. It works in
// either state.
func (e *Engine) JumpTo(wordIndex int) {
	e.do(func() {
		if len(e.words) == 0 {
			return
		}
		e.moveTo(wordIndex)
	})
}

// Restart returns to the first word.
func (e *Engine) Restart() {
	e.JumpTo(0)
}
