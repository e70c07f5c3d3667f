package tui

import (
	"time"

	"github.com/sadopc/planr/internal/timer"
)

// focusModel is the free-running focus stopwatch on the Today view. It
// pauses itself after a stretch without key presses.
type focusModel struct {
	sw  timer.Stopwatch
	now func() time.Time

	started bool // true from start until stop, including idle pauses

	lastActivity time.Time
	idleTimeout  time.Duration
	isIdle       bool
}

func newFocusModel(now func() time.Time) focusModel {
	if now == nil {
		now = time.Now
	}
	return focusModel{
		now:          now,
		lastActivity: now(),
		idleTimeout:  5 * time.Minute,
	}
}

func (f *focusModel) start() {
	if f.started {
		return
	}
	f.sw.Reset()
	f.sw.Start(f.now())
	f.started = true
	f.isIdle = false
	f.lastActivity = f.now()
}

// stop ends the focus block and returns its length.
func (f *focusModel) stop() time.Duration {
	if !f.started {
		return 0
	}
	now := f.now()
	f.sw.Stop(now)
	elapsed := f.sw.Elapsed(now)
	f.sw.Reset()
	f.started = false
	f.isIdle = false
	return elapsed
}

func (f *focusModel) toggle() {
	if !f.started {
		return
	}
	if f.sw.Running() {
		f.sw.Stop(f.now())
		return
	}
	f.sw.Start(f.now())
	f.isIdle = false
	f.lastActivity = f.now()
}

func (f *focusModel) tick() {
	if !f.sw.Running() {
		return
	}
	if f.now().Sub(f.lastActivity) > f.idleTimeout && !f.isIdle {
		f.isIdle = true
		f.sw.Stop(f.now())
	}
}

func (f *focusModel) recordActivity() {
	f.lastActivity = f.now()
	if f.isIdle && f.started && !f.sw.Running() {
		f.sw.Start(f.now())
		f.isIdle = false
	}
}

func (f focusModel) running() bool { return f.started }

func (f focusModel) paused() bool { return f.started && !f.sw.Running() }

func (f focusModel) elapsed() time.Duration { return f.sw.Elapsed(f.now()) }
