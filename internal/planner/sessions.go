package planner

import (
	"context"
	"fmt"
	"time"

	"github.com/sadopc/planr/internal/dates"
	"github.com/sadopc/planr/internal/identity"
	"github.com/sadopc/planr/internal/remote"
	"github.com/sadopc/planr/internal/store"
	"github.com/sadopc/planr/internal/syncstore"
)

const domainSessions = "sessions"

// Sessions is the append-only log of finished timers.
type Sessions struct {
	c   *syncstore.Collection[int64, store.TimerSession]
	cal *dates.Calendar
	ids *idSource
}

func newSessions(dev syncstore.Device, rem remote.DocumentStore, cal *dates.Calendar, ids *idSource, u *identity.User) (*Sessions, error) {
	c, err := syncstore.New(syncstore.Options[int64, store.TimerSession]{
		Domain: domainSessions,
		KeyOf:  func(s store.TimerSession) int64 { return s.ID },
		Validate: func(s store.TimerSession) error {
			if s.Duration <= 0 {
				return syncstore.Invalid("duration", "must be positive")
			}
			if !dates.Valid(s.Date) {
				return syncstore.Invalid("date", fmt.Sprintf("%q is not a YYYY-MM-DD date", s.Date))
			}
			return nil
		},
		Device: dev,
		Remote: rem,
	}, u)
	if err != nil {
		return nil, fmt.Errorf("open sessions: %w", err)
	}
	return &Sessions{c: c, cal: cal, ids: ids}, nil
}

// Record appends a session of d, truncated to whole seconds, dated today.
func (s *Sessions) Record(ctx context.Context, d time.Duration) (store.TimerSession, error) {
	sess := store.TimerSession{
		Duration: int64(d / time.Second),
		Date:     s.cal.Today(),
	}
	if sess.Duration <= 0 {
		return store.TimerSession{}, syncstore.Invalid("duration", "must be at least one second")
	}
	sess.ID = s.ids.next(maxID(s.c.Items(), func(s store.TimerSession) int64 { return s.ID }))
	if err := s.c.Add(ctx, sess); err != nil {
		return store.TimerSession{}, err
	}
	return sess, nil
}

func (s *Sessions) Items() []store.TimerSession { return s.c.Items() }

func (s *Sessions) OnDate(dateISO string) []store.TimerSession {
	var out []store.TimerSession
	for _, sess := range s.c.Items() {
		if sess.Date == dateISO {
			out = append(out, sess)
		}
	}
	return out
}
