// Package syncstore keeps one domain collection in memory, mirrors it to an
// identity-scoped key in on-device storage and to a field of the user's
// remote document.
package syncstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/sadopc/planr/internal/identity"
	"github.com/sadopc/planr/internal/log"
	"github.com/sadopc/planr/internal/remote"
)

// Device is on-device key-value storage. *store.Store implements it.
type Device interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Move(oldKey, newKey string) (bool, error)
}

// StorageKey returns the on-device key for domain under the given identity.
func StorageKey(domain string, u *identity.User) string {
	return domain + "-storage-" + identity.KeyID(u)
}

// LegacyKey is the unscoped key written by clients that predate
// identity-scoped storage.
func LegacyKey(domain string) string {
	return domain + "-storage"
}

// Options configures a Collection.
type Options[K comparable, T any] struct {
	// Domain names the collection ("tasks", "notes", ...).
	Domain string
	// Field is the remote document field. Defaults to Domain.
	Field string
	// KeyOf extracts the identifier of an item.
	KeyOf func(T) K
	// Validate is run on every added or updated item.
	Validate func(T) error
	// Toggle flips the completion flag of an item.
	Toggle func(T) T
	// Decode extracts the collection from a remote document. When nil the
	// Field is unmarshalled directly; a missing field yields an empty list.
	Decode func(remote.Document) ([]T, error)

	Device Device
	// Remote may be nil, in which case the collection is device-only.
	Remote remote.DocumentStore
}

// Collection is an identity-scoped, remotely mirrored list of T.
type Collection[K comparable, T any] struct {
	opts Options[K, T]

	mu    sync.Mutex
	user  *identity.User
	key   string
	items []T
}

// New builds a collection for the given identity (nil is guest) and loads
// whatever the device holds under its key.
func New[K comparable, T any](opts Options[K, T], u *identity.User) (*Collection[K, T], error) {
	if opts.Domain == "" {
		return nil, errors.New("syncstore: empty domain")
	}
	if opts.KeyOf == nil {
		return nil, errors.New("syncstore: KeyOf is required")
	}
	if opts.Device == nil {
		return nil, errors.New("syncstore: device storage is required")
	}
	if opts.Field == "" {
		opts.Field = opts.Domain
	}

	c := &Collection[K, T]{opts: opts, user: u, key: StorageKey(opts.Domain, u)}
	if err := c.hydrate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Collection[K, T]) hydrate() error {
	items, ok, err := c.readDevice(c.key)
	if err != nil {
		return err
	}
	if !ok {
		moved, err := c.opts.Device.Move(LegacyKey(c.opts.Domain), c.key)
		if err != nil {
			return fmt.Errorf("migrate %s: %w", c.key, err)
		}
		if !moved {
			return nil
		}
		log.Info("migrated legacy storage", "from", LegacyKey(c.opts.Domain), "to", c.key)
		if items, _, err = c.readDevice(c.key); err != nil {
			return err
		}
	}
	c.items = items
	return nil
}

// readDevice decodes the payload stored under key. A missing key reports
// ok=false; an unreadable payload is logged and treated as empty.
func (c *Collection[K, T]) readDevice(key string) (items []T, ok bool, err error) {
	raw, ok, err := c.opts.Device.Get(key)
	if err != nil {
		return nil, false, fmt.Errorf("load %s: %w", key, err)
	}
	if !ok {
		return nil, false, nil
	}
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		// A corrupt payload should not lock the user out; start empty.
		log.Warn("discarding unreadable storage", "key", key, "error", err)
		return nil, true, nil
	}
	return items, true, nil
}

// Key is the current on-device storage key.
func (c *Collection[K, T]) Key() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.key
}

func (c *Collection[K, T]) Domain() string { return c.opts.Domain }

// Items returns a copy of the collection in insertion order.
func (c *Collection[K, T]) Items() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.items)
}

func (c *Collection[K, T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Get looks an item up by id.
func (c *Collection[K, T]) Get(id K) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.index(c.items, id); i >= 0 {
		return c.items[i], true
	}
	var zero T
	return zero, false
}

func (c *Collection[K, T]) index(items []T, id K) int {
	return slices.IndexFunc(items, func(it T) bool { return c.opts.KeyOf(it) == id })
}

// SetIdentity switches the collection to u. Signing in replaces the
// collection with the remote copy; signing out clears it. Either way the
// resulting state is written under the new key. Without a remote, or when
// the pull fails, the user's own device copy is loaded instead; only if the
// device has none are the in-memory items kept. A failed pull returns a
// *SyncError.
func (c *Collection[K, T]) SetIdentity(ctx context.Context, u *identity.User) error {
	if u == nil {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.user = nil
		c.items = nil
		c.key = StorageKey(c.opts.Domain, nil)
		c.persistLocked()
		return nil
	}

	key := StorageKey(c.opts.Domain, u)
	var items []T
	var pullErr error
	if c.opts.Remote != nil {
		items, pullErr = c.fetch(ctx, u.ID)
	}

	if c.opts.Remote == nil || pullErr != nil {
		local, ok, err := c.readDevice(key)
		if err != nil {
			return err
		}
		c.mu.Lock()
		c.user = u
		c.key = key
		if ok || pullErr == nil {
			c.items = local
		}
		c.persistLocked()
		c.mu.Unlock()

		if pullErr != nil {
			log.Error("identity pull failed", pullErr, "domain", c.opts.Domain, "user", u.ID, "device_copy", ok)
			return &SyncError{Domain: c.opts.Domain, Op: "pull", Err: pullErr}
		}
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.user = u
	c.key = key
	c.items = items
	c.persistLocked()
	return nil
}

// PullRemote replaces the local collection with the remote field. Guests
// and device-only collections have nothing to pull.
func (c *Collection[K, T]) PullRemote(ctx context.Context) error {
	c.mu.Lock()
	u := c.user
	c.mu.Unlock()
	if u == nil || c.opts.Remote == nil {
		return nil
	}

	items, err := c.fetch(ctx, u.ID)
	if err != nil {
		log.Error("pull failed", err, "domain", c.opts.Domain, "user", u.ID)
		return &SyncError{Domain: c.opts.Domain, Op: "pull", Err: err}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if identity.KeyID(c.user) != u.ID {
		// Identity changed while the read was in flight.
		return nil
	}
	c.items = items
	c.persistLocked()
	return nil
}

// PushRemote merge-writes the whole collection to its remote field.
func (c *Collection[K, T]) PushRemote(ctx context.Context) error {
	c.mu.Lock()
	u := c.user
	items := slices.Clone(c.items)
	c.mu.Unlock()

	if err := c.push(ctx, u, items); err != nil {
		log.Error("push failed", err, "domain", c.opts.Domain)
		return &SyncError{Domain: c.opts.Domain, Op: "push", Err: err}
	}
	return nil
}

func (c *Collection[K, T]) fetch(ctx context.Context, uid string) ([]T, error) {
	if c.opts.Remote == nil {
		return nil, nil
	}
	doc, err := c.opts.Remote.Read(ctx, uid)
	if errors.Is(err, remote.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	if c.opts.Decode != nil {
		items, err := c.opts.Decode(doc)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", c.opts.Field, err)
		}
		return items, nil
	}
	raw, ok := doc[c.opts.Field]
	if !ok {
		return nil, nil
	}
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode %s: %w", c.opts.Field, err)
	}
	return items, nil
}

func (c *Collection[K, T]) push(ctx context.Context, u *identity.User, items []T) error {
	if u == nil || c.opts.Remote == nil {
		return nil
	}
	raw, err := marshal(items)
	if err != nil {
		return err
	}
	return c.opts.Remote.WriteMerge(ctx, u.ID, remote.Document{c.opts.Field: raw})
}

// persistLocked writes the collection under the current key. Device
// failures are logged rather than rolled back. Caller holds c.mu.
func (c *Collection[K, T]) persistLocked() {
	raw, err := marshal(c.items)
	if err == nil {
		err = c.opts.Device.Set(c.key, string(raw))
	}
	if err != nil {
		log.Error("persist failed", err, "key", c.key)
	}
}

func marshal[T any](items []T) (json.RawMessage, error) {
	if items == nil {
		items = []T{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("encode collection: %w", err)
	}
	return raw, nil
}
