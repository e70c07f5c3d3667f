// Package timer implements countdowns, a stopwatch and daily alarms. Nothing
// here runs its own goroutine: callers pass the current instant on every
// call and drive Tick from an external periodic trigger.
package timer

import "time"

// State is the lifecycle position of a countdown.
type State int

const (
	Idle State = iota
	Running
	Paused
	Completed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Paused:
		return "paused"
	case Completed:
		return "completed"
	}
	return "unknown"
}

// Countdown counts down from Duration. While running, remaining time is
// recomputed from an absolute end instant so ticks never accumulate drift.
type Countdown struct {
	ID       int
	Label    string
	Duration time.Duration

	state     State
	remaining time.Duration
	endAt     time.Time
}

func NewCountdown(id int, label string, d time.Duration) *Countdown {
	return &Countdown{ID: id, Label: label, Duration: d, remaining: d}
}

func (c *Countdown) State() State { return c.state }

// Remaining is the time left as of the last Start, Pause or Tick.
func (c *Countdown) Remaining() time.Duration { return c.remaining }

// Elapsed is how much of the duration has been consumed.
func (c *Countdown) Elapsed() time.Duration { return c.Duration - c.remaining }

func (c *Countdown) Running() bool { return c.state == Running }

// Start begins or resumes the countdown. It reports whether the state
// changed.
func (c *Countdown) Start(now time.Time) bool {
	if c.state != Idle && c.state != Paused {
		return false
	}
	c.state = Running
	c.endAt = now.Add(c.remaining)
	return true
}

// Pause freezes the remaining time.
func (c *Countdown) Pause(now time.Time) bool {
	if c.state != Running {
		return false
	}
	c.remaining = clamp(c.endAt.Sub(now))
	c.state = Paused
	return true
}

// Toggle pauses a running countdown and starts any other startable one.
func (c *Countdown) Toggle(now time.Time) bool {
	if c.state == Running {
		return c.Pause(now)
	}
	return c.Start(now)
}

// Reset returns to Idle with the full duration.
func (c *Countdown) Reset() {
	c.state = Idle
	c.remaining = c.Duration
	c.endAt = time.Time{}
}

// Tick recomputes the remaining time. It returns true exactly once, on the
// tick that completes the countdown.
func (c *Countdown) Tick(now time.Time) bool {
	if c.state != Running {
		return false
	}
	c.remaining = clamp(c.endAt.Sub(now))
	if c.remaining > 0 {
		return false
	}
	c.state = Completed
	return true
}

func clamp(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d
}
