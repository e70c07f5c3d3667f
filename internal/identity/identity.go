// Package identity tracks who is signed in. A nil *User is the guest.
package identity

import (
	"context"
	"errors"
	"sync"
)

// GuestID is the storage sentinel used when nobody is signed in.
const GuestID = "guest"

type User struct {
	ID    string `yaml:"id"`
	Email string `yaml:"email,omitempty"`
}

// KeyID returns the user id, or GuestID for a nil user.
func KeyID(u *User) string {
	if u == nil || u.ID == "" {
		return GuestID
	}
	return u.ID
}

// Listener reacts to an identity transition.
type Listener func(ctx context.Context, u *User) error

type subscription struct {
	id int
	fn Listener
}

// Context holds the current identity and fans out changes to subscribers
// in subscription order.
type Context struct {
	mu      sync.Mutex
	current *User
	subs    []subscription
	nextID  int
}

func NewContext() *Context {
	return &Context{}
}

// Current returns a copy of the signed-in user, or nil for the guest.
func (c *Context) Current() *User {
	c.mu.Lock()
	defer c.mu.Unlock()
	return clone(c.current)
}

// Subscribe registers fn for future transitions and returns a function that
// removes it.
func (c *Context) Subscribe(fn Listener) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextID
	c.nextID++
	c.subs = append(c.subs, subscription{id: id, fn: fn})
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		for i, s := range c.subs {
			if s.id == id {
				c.subs = append(c.subs[:i], c.subs[i+1:]...)
				return
			}
		}
	}
}

// Set switches the identity and notifies every subscriber. Setting the
// identity that is already current is a no-op. Listener errors are joined;
// a failing listener does not stop the others.
func (c *Context) Set(ctx context.Context, u *User) error {
	c.mu.Lock()
	if same(c.current, u) {
		c.mu.Unlock()
		return nil
	}
	c.current = clone(u)
	subs := make([]subscription, len(c.subs))
	copy(subs, c.subs)
	c.mu.Unlock()

	var errs []error
	for _, s := range subs {
		if err := s.fn(ctx, clone(u)); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func same(a, b *User) bool {
	return KeyID(a) == KeyID(b)
}

func clone(u *User) *User {
	if u == nil || u.ID == "" {
		return nil
	}
	cp := *u
	return &cp
}
