package syncstore

import (
	"context"
	"slices"

	"github.com/sadopc/planr/internal/log"
)

// mutate runs one optimistic transaction: apply to a copy of the items,
// persist, push the result, and restore the snapshot if the push fails.
// apply reports whether anything changed; an unchanged collection is
// neither persisted nor pushed.
//
// The push runs without holding the lock. A mutation that lands while an
// earlier push is in flight can be overwritten by that push's rollback.
func (c *Collection[K, T]) mutate(ctx context.Context, op string, apply func([]T) ([]T, bool, error)) error {
	c.mu.Lock()
	snapshot := slices.Clone(c.items)
	next, changed, err := apply(slices.Clone(c.items))
	if err != nil || !changed {
		c.mu.Unlock()
		return err
	}
	c.items = next
	c.persistLocked()
	u := c.user
	pushed := slices.Clone(next)
	c.mu.Unlock()

	pushErr := c.push(ctx, u, pushed)
	if pushErr == nil {
		return nil
	}

	c.mu.Lock()
	if c.user == u {
		c.items = snapshot
		c.persistLocked()
	}
	c.mu.Unlock()

	log.Error("push failed, rolled back", pushErr, "domain", c.opts.Domain, "op", op)
	return &SyncError{Domain: c.opts.Domain, Op: op, Err: pushErr}
}

func (c *Collection[K, T]) validate(item T) error {
	if c.opts.Validate == nil {
		return nil
	}
	return c.opts.Validate(item)
}

// Add appends item. Duplicate ids are rejected.
func (c *Collection[K, T]) Add(ctx context.Context, item T) error {
	if err := c.validate(item); err != nil {
		return err
	}
	id := c.opts.KeyOf(item)
	return c.mutate(ctx, "add", func(items []T) ([]T, bool, error) {
		if c.index(items, id) >= 0 {
			return nil, false, Invalid("id", "duplicate id")
		}
		return append(items, item), true, nil
	})
}

// Update applies patch to the item with the given id. The patched item is
// validated and keeps its id. An absent id is a no-op.
func (c *Collection[K, T]) Update(ctx context.Context, id K, patch func(T) T) error {
	return c.mutate(ctx, "update", func(items []T) ([]T, bool, error) {
		i := c.index(items, id)
		if i < 0 {
			return nil, false, nil
		}
		next := patch(items[i])
		if c.opts.KeyOf(next) != id {
			return nil, false, Invalid("id", "update cannot change id")
		}
		if err := c.validate(next); err != nil {
			return nil, false, err
		}
		items[i] = next
		return items, true, nil
	})
}

// Toggle flips the completion flag of the item with the given id.
func (c *Collection[K, T]) Toggle(ctx context.Context, id K) error {
	if c.opts.Toggle == nil {
		return Invalid("", c.opts.Domain+" cannot be toggled")
	}
	return c.mutate(ctx, "toggle", func(items []T) ([]T, bool, error) {
		i := c.index(items, id)
		if i < 0 {
			return nil, false, nil
		}
		items[i] = c.opts.Toggle(items[i])
		return items, true, nil
	})
}

// Remove deletes the item with the given id. An absent id is a no-op.
func (c *Collection[K, T]) Remove(ctx context.Context, id K) error {
	return c.mutate(ctx, "remove", func(items []T) ([]T, bool, error) {
		i := c.index(items, id)
		if i < 0 {
			return nil, false, nil
		}
		return slices.Delete(items, i, i+1), true, nil
	})
}
