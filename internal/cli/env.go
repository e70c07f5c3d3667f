package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sadopc/planr/internal/config"
	"github.com/sadopc/planr/internal/dates"
	"github.com/sadopc/planr/internal/identity"
	"github.com/sadopc/planr/internal/log"
	"github.com/sadopc/planr/internal/planner"
	"github.com/sadopc/planr/internal/remote"
	"github.com/sadopc/planr/internal/store"
)

// clock is replaced in tests.
var clock dates.Clock = dates.SystemClock

// env is everything a command needs, opened from the config file.
type env struct {
	cfg      *config.Config
	device   *store.Store
	remote   remote.DocumentStore
	ident    *identity.Context
	app      *planner.App
	provider *identity.FileProvider

	closers []io.Closer
}

func openEnv(ctx context.Context, opts *rootOptions) (*env, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if err := log.OpenFile(log.FileOptions{
		Path:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
	}); err != nil {
		return nil, err
	}
	level := log.ParseLevel(cfg.Log.Level)
	if opts.verbose {
		level = log.LevelDebug
	}
	log.SetLevel(level)

	e := &env{cfg: cfg}
	if err := e.open(ctx); err != nil {
		e.Close()
		return nil, err
	}
	return e, nil
}

func (e *env) open(ctx context.Context) error {
	device, err := store.New(e.cfg.DevicePath())
	if err != nil {
		return fmt.Errorf("open device storage: %w", err)
	}
	e.device = device
	e.closers = append(e.closers, device)

	switch e.cfg.Remote.Backend {
	case config.BackendSQLite:
		db, err := remote.OpenSQLite(e.cfg.Remote.Path)
		if err != nil {
			return fmt.Errorf("open remote: %w", err)
		}
		e.remote = db
		e.closers = append(e.closers, db)
	case config.BackendMemory:
		e.remote = remote.NewMemory()
	case config.BackendNone:
		// device only
	}

	cal, err := e.cfg.Calendar(clock)
	if err != nil {
		return err
	}

	u, err := identity.ReadSession(e.cfg.SessionPath())
	if err != nil {
		log.Warn("ignoring unreadable session", "path", e.cfg.SessionPath(), "error", err)
		u = nil
	}
	e.ident = identity.NewContext()
	if err := e.ident.Set(ctx, u); err != nil {
		return err
	}

	app, err := planner.New(planner.Options{
		Device:   e.device,
		Remote:   e.remote,
		Calendar: cal,
		Identity: e.ident,
	})
	if err != nil {
		return err
	}
	e.app = app
	log.Debug("environment ready", "user", identity.KeyID(u), "backend", e.cfg.Remote.Backend)
	return nil
}

// watchSession follows the session file so sign-ins from other terminals
// reach this process.
func (e *env) watchSession(ctx context.Context) error {
	p, err := identity.NewFileProvider(e.cfg.SessionPath(), e.ident)
	if err != nil {
		return err
	}
	if err := p.Start(ctx); err != nil {
		p.Close()
		return err
	}
	e.provider = p
	return nil
}

func (e *env) Close() error {
	var errs []error
	if e.provider != nil {
		errs = append(errs, e.provider.Close())
	}
	if e.app != nil {
		e.app.Close()
	}
	for i := len(e.closers) - 1; i >= 0; i-- {
		errs = append(errs, e.closers[i].Close())
	}
	errs = append(errs, log.Close())
	return errors.Join(errs...)
}

// withEnv opens the environment for the duration of fn.
func withEnv(ctx context.Context, opts *rootOptions, fn func(*env) error) error {
	e, err := openEnv(ctx, opts)
	if err != nil {
		return err
	}
	defer e.Close()
	return fn(e)
}
