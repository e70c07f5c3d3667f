package planner

import (
	"sync"

	"github.com/sadopc/planr/internal/dates"
)

// idSource hands out creation-timestamp ids (unix ms) that never repeat,
// even when several items are created within the same millisecond.
type idSource struct {
	mu    sync.Mutex
	clock dates.Clock
	last  int64
}

func newIDSource(clock dates.Clock) *idSource {
	if clock == nil {
		clock = dates.SystemClock
	}
	return &idSource{clock: clock}
}

// next returns an id greater than both the previous one and floor.
func (s *idSource) next(floor int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.clock.Now().UnixMilli()
	if id <= s.last {
		id = s.last + 1
	}
	if id <= floor {
		id = floor + 1
	}
	s.last = id
	return id
}

func maxID[T any](items []T, id func(T) int64) int64 {
	var m int64
	for _, it := range items {
		if v := id(it); v > m {
			m = v
		}
	}
	return m
}
