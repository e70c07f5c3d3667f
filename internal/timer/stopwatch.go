package timer

import "time"

// Stopwatch measures elapsed time from an absolute start, excluding
// stopped intervals.
type Stopwatch struct {
	running bool
	since   time.Time
	banked  time.Duration
}

func (s *Stopwatch) Running() bool { return s.running }

func (s *Stopwatch) Start(now time.Time) {
	if s.running {
		return
	}
	s.running = true
	s.since = now
}

func (s *Stopwatch) Stop(now time.Time) {
	if !s.running {
		return
	}
	s.banked += now.Sub(s.since)
	s.running = false
}

func (s *Stopwatch) Reset() {
	*s = Stopwatch{}
}

func (s *Stopwatch) Elapsed(now time.Time) time.Duration {
	if s.running {
		return s.banked + now.Sub(s.since)
	}
	return s.banked
}
