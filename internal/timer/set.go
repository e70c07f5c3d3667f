package timer

import (
	"slices"
	"time"
)

// Finished describes a countdown that left the active set and should be
// recorded as a session.
type Finished struct {
	ID        int
	Label     string
	Elapsed   time.Duration
	Completed bool
}

// Set holds the active countdowns.
type Set struct {
	timers []*Countdown
	nextID int
}

func NewSet() *Set { return &Set{} }

// Add creates an idle countdown.
func (s *Set) Add(label string, d time.Duration) *Countdown {
	s.nextID++
	c := NewCountdown(s.nextID, label, d)
	s.timers = append(s.timers, c)
	return c
}

func (s *Set) Get(id int) (*Countdown, bool) {
	for _, c := range s.timers {
		if c.ID == id {
			return c, true
		}
	}
	return nil, false
}

// Timers returns the active countdowns in creation order.
func (s *Set) Timers() []*Countdown { return slices.Clone(s.timers) }

func (s *Set) Len() int { return len(s.timers) }

// Tick advances every running countdown and removes the ones that
// completed. A completed countdown is reported with its full duration.
func (s *Set) Tick(now time.Time) []Finished {
	var done []Finished
	s.timers = slices.DeleteFunc(s.timers, func(c *Countdown) bool {
		if !c.Tick(now) {
			return false
		}
		done = append(done, Finished{ID: c.ID, Label: c.Label, Elapsed: c.Duration, Completed: true})
		return true
	})
	return done
}

// Cancel removes a countdown. ok is true when it had consumed time and
// should be recorded with its elapsed duration.
func (s *Set) Cancel(id int, now time.Time) (f Finished, ok bool) {
	i := slices.IndexFunc(s.timers, func(c *Countdown) bool { return c.ID == id })
	if i < 0 {
		return Finished{}, false
	}
	c := s.timers[i]
	c.Pause(now)
	s.timers = slices.Delete(s.timers, i, i+1)
	elapsed := c.Elapsed().Truncate(time.Second)
	if elapsed <= 0 {
		return Finished{}, false
	}
	return Finished{ID: c.ID, Label: c.Label, Elapsed: elapsed}, true
}

// Running reports whether any countdown is running.
func (s *Set) Running() bool {
	return slices.ContainsFunc(s.timers, (*Countdown).Running)
}
