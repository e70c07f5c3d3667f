// Package planner owns the four synchronized stores and moves them between
// identities together.
package planner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sadopc/planr/internal/dates"
	"github.com/sadopc/planr/internal/identity"
	"github.com/sadopc/planr/internal/log"
	"github.com/sadopc/planr/internal/remote"
	"github.com/sadopc/planr/internal/syncstore"
)

// Options wires an App to its collaborators.
type Options struct {
	Device   syncstore.Device
	Remote   remote.DocumentStore // nil keeps everything on the device
	Calendar *dates.Calendar
	Identity *identity.Context
	// Clock drives id generation. Defaults to the calendar's clock.
	Clock dates.Clock
}

// App is the root application context.
type App struct {
	Tasks    *Tasks
	Notes    *Notes
	Plans    *Plans
	Sessions *Sessions

	cal         *dates.Calendar
	ident       *identity.Context
	unsubscribe func()
}

// syncer is the identity/sync surface every store shares.
type syncer interface {
	Domain() string
	SetIdentity(ctx context.Context, u *identity.User) error
	PullRemote(ctx context.Context) error
	PushRemote(ctx context.Context) error
}

// New builds the stores for the identity's current user and subscribes to
// later identity changes.
func New(opts Options) (*App, error) {
	if opts.Device == nil {
		return nil, errors.New("planner: device storage is required")
	}
	if opts.Calendar == nil {
		opts.Calendar = dates.NewCalendar(opts.Clock, dates.DefaultOffset, time.Saturday)
	}
	if opts.Clock == nil {
		opts.Clock = dates.ClockFunc(opts.Calendar.Now)
	}
	if opts.Identity == nil {
		opts.Identity = identity.NewContext()
	}
	u := opts.Identity.Current()
	ids := newIDSource(opts.Clock)

	a := &App{cal: opts.Calendar, ident: opts.Identity}
	var err error
	if a.Tasks, err = newTasks(opts.Device, opts.Remote, opts.Calendar, ids, u); err != nil {
		return nil, err
	}
	if a.Notes, err = newNotes(opts.Device, opts.Remote, ids, u); err != nil {
		return nil, err
	}
	if a.Plans, err = newPlans(opts.Device, opts.Remote, opts.Calendar, u); err != nil {
		return nil, err
	}
	if a.Sessions, err = newSessions(opts.Device, opts.Remote, opts.Calendar, ids, u); err != nil {
		return nil, err
	}

	a.unsubscribe = opts.Identity.Subscribe(a.SetIdentity)
	return a, nil
}

// Close detaches the app from the identity context.
func (a *App) Close() {
	if a.unsubscribe != nil {
		a.unsubscribe()
		a.unsubscribe = nil
	}
}

func (a *App) Calendar() *dates.Calendar { return a.cal }

func (a *App) Identity() *identity.Context { return a.ident }

func (a *App) syncers() []syncer {
	return []syncer{a.Tasks.c, a.Notes.c, a.Plans.c, a.Sessions.c}
}

// SetIdentity moves every store to u. Stores are switched independently;
// failures are joined.
func (a *App) SetIdentity(ctx context.Context, u *identity.User) error {
	log.Info("identity changed", "user", identity.KeyID(u))
	var errs []error
	for _, s := range a.syncers() {
		if err := s.SetIdentity(ctx, u); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Pull refreshes every store from the remote document.
func (a *App) Pull(ctx context.Context) error {
	return a.each(func(s syncer) error { return s.PullRemote(ctx) })
}

// Push writes every store to the remote document. There is no cross-store
// transaction: a failure part way leaves earlier fields written.
func (a *App) Push(ctx context.Context) error {
	return a.each(func(s syncer) error { return s.PushRemote(ctx) })
}

func (a *App) each(fn func(syncer) error) error {
	var errs []error
	for _, s := range a.syncers() {
		if err := fn(s); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.Domain(), err))
		}
	}
	return errors.Join(errs...)
}
