package main

import "github.com/metcalfc/skim/internal/playback"

type action int

const (
	actionNone action = iota
	actionToggle
	actionUp
	actionDown
	actionLeft
	actionRight
	actionFaster
	actionSlower
	actionRestart
	actionSave
	actionTOC
	actionQuit
)

// control applies the engine side of an action. Arrow keys change meaning
// with the state: while reading they adjust speed and step through
// sentences, while paused they browse paragraphs and sentences.
func control(e *playback.Engine, act action) {
	reading := e.State() == playback.Reading
	switch act {
	case actionToggle:
		e.Toggle()
	case actionUp:
		if reading {
			e.IncreaseSpeed()
		} else {
			e.NavigateToPreviousParagraph()
		}
	case actionDown:
		if reading {
			e.DecreaseSpeed()
		} else {
			e.NavigateToNextParagraph()
		}
	case actionLeft:
		if reading {
			e.JumpToSentenceStart()
		} else {
			e.NavigateToPreviousSentence()
		}
	case actionRight:
		if reading {
			e.SkipToNextSentence()
		} else {
			e.NavigateToNextSentence()
		}
	case actionFaster:
		e.IncreaseSpeed()
	case actionSlower:
		e.DecreaseSpeed()
	case actionRestart:
		e.Restart()
	}
}
