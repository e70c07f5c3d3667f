package identity

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/sadopc/planr/internal/log"
	"gopkg.in/yaml.v3"
)

// ReadSession loads the signed-in user from a session file. A missing or
// empty file means the guest.
func ReadSession(path string) (*User, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	var u User
	if err := yaml.Unmarshal(data, &u); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return clone(&u), nil
}

// WriteSession records u as the signed-in user. A nil user removes the file.
func WriteSession(path string, u *User) error {
	if u == nil {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("remove session: %w", err)
		}
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create session directory: %w", err)
	}
	data, err := yaml.Marshal(u)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// FileProvider feeds a Context from a session file, so that `planr login`
// in one terminal switches the identity of a running UI in another.
type FileProvider struct {
	path    string
	ident   *Context
	watcher *fsnotify.Watcher
	done    chan struct{}
	wg      sync.WaitGroup
}

func NewFileProvider(path string, ident *Context) (*FileProvider, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	return &FileProvider{
		path:    path,
		ident:   ident,
		watcher: w,
		done:    make(chan struct{}),
	}, nil
}

// Start applies the current session file, then watches its directory for
// further changes until Close. The directory is created if needed because
// the file itself may not exist yet.
func (p *FileProvider) Start(ctx context.Context) error {
	if err := p.apply(ctx); err != nil {
		log.Error("apply session", err, "path", p.path)
	}

	dir := filepath.Dir(p.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create session directory: %w", err)
	}
	if err := p.watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	p.wg.Add(1)
	go p.loop(ctx)
	return nil
}

func (p *FileProvider) loop(ctx context.Context) {
	defer p.wg.Done()
	for {
		select {
		case <-p.done:
			return
		case <-ctx.Done():
			return
		case ev, ok := <-p.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != filepath.Clean(p.path) {
				continue
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
				continue
			}
			log.Debug("session file changed", "op", ev.Op.String())
			if err := p.apply(ctx); err != nil {
				log.Error("apply session", err, "path", p.path)
			}
		case err, ok := <-p.watcher.Errors:
			if !ok {
				return
			}
			log.Error("session watcher", err)
		}
	}
}

func (p *FileProvider) apply(ctx context.Context) error {
	u, err := ReadSession(p.path)
	if err != nil {
		return err
	}
	log.Debug("session applied", "user", KeyID(u))
	return p.ident.Set(ctx, u)
}

// Close stops watching and waits for the event loop to exit.
func (p *FileProvider) Close() error {
	select {
	case <-p.done:
		return nil
	default:
	}
	close(p.done)
	err := p.watcher.Close()
	p.wg.Wait()
	return err
}
