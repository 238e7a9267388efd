package store

import (
	"context"
	"errors"
)

// ErrUnchanged can be returned from a Mutate callback to skip the write without
// reporting an error.
var ErrUnchanged = errors.New("collection unchanged")

// Collection is one named sequence of records persisted as a single JSON array.
// Every change reads the whole array, mutates it in memory and writes the whole
// array back; Mutate is that unit.
type Collection[T any] struct {
	store   *Store
	key     string
	upgrade func(raw []byte) ([]T, bool, error)
}

// NewCollection binds a collection to key
func NewCollection[T any](s *Store, key string) *Collection[T] {
	return &Collection[T]{store: s, key: key}
}

// WithUpgrade installs a decoder for legacy stored formats. It reports whether the
// records were converted; converted records are written back on first load.
func (c *Collection[T]) WithUpgrade(fn func(raw []byte) ([]T, bool, error)) *Collection[T] {
	c.upgrade = fn
	return c
}

func (c *Collection[T]) Key() string { return c.key }

// Load returns all records, or an empty slice when the key is absent
func (c *Collection[T]) Load(ctx context.Context) ([]T, error) {
	if c.upgrade == nil {
		return c.load(ctx)
	}
	unlock := c.store.Lock(c.key)
	defer unlock()
	return c.load(ctx)
}

// Save replaces the whole collection
func (c *Collection[T]) Save(ctx context.Context, items []T) error {
	unlock := c.store.Lock(c.key)
	defer unlock()
	return c.save(ctx, items)
}

// Mutate runs fn over the current records and persists its result. When fn returns
// an error nothing is written; ErrUnchanged is swallowed.
func (c *Collection[T]) Mutate(ctx context.Context, fn func(items []T) ([]T, error)) error {
	unlock := c.store.Lock(c.key)
	defer unlock()

	items, err := c.load(ctx)
	if err != nil {
		return err
	}
	items, err = fn(items)
	if errors.Is(err, ErrUnchanged) {
		return nil
	}
	if err != nil {
		return err
	}
	return c.save(ctx, items)
}

func (c *Collection[T]) load(ctx context.Context) ([]T, error) {
	if c.upgrade != nil {
		raw, found, err := c.store.ReadRaw(ctx, c.key)
		if err != nil {
			return nil, err
		}
		if !found {
			return []T{}, nil
		}
		items, converted, err := c.upgrade(raw)
		if err != nil {
			return nil, err
		}
		if converted {
			if err := c.save(ctx, items); err != nil {
				return nil, err
			}
		}
		return nonNil(items), nil
	}

	var items []T
	if _, err := c.store.Read(ctx, c.key, &items); err != nil {
		return nil, err
	}
	return nonNil(items), nil
}

func (c *Collection[T]) save(ctx context.Context, items []T) error {
	return c.store.Write(ctx, c.key, nonNil(items))
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
