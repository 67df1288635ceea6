package playback

import "time"

// Timer is a pending single-shot callback.
type Timer interface {
	// Stop cancels the callback. It reports false if the callback already
	// ran or was stopped.
	Stop() bool
}

// Scheduler arms single-shot timers. AfterFunc must not run f before it
// returns; the engine holds its lock while arming.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// SystemScheduler runs callbacks on their own goroutine via time.AfterFunc.
type SystemScheduler struct{}

func (SystemScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
