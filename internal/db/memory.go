package db

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/ukydev/fleet-console/internal/models"
)

// MemoryCollection keeps entities in process, in insertion order. It backs
// the API when no MongoDB is configured and in tests.
type MemoryCollection[E models.Entity] struct {
	mu    sync.RWMutex
	order []string
	items map[string]E
}

func NewMemoryCollection[E models.Entity](seed ...E) *MemoryCollection[E] {
	c := &MemoryCollection[E]{items: make(map[string]E, len(seed))}
	for _, e := range seed {
		id := e.Meta().ID
		c.order = append(c.order, id)
		c.items[id] = e
	}
	return c
}

func (c *MemoryCollection[E]) Insert(ctx context.Context, e E) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	id := e.Meta().ID
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.items[id]; ok {
		return errors.Wrapf(ErrDuplicateID, "insert %s", id)
	}
	c.order = append(c.order, id)
	c.items[id] = e
	return nil
}

func (c *MemoryCollection[E]) FindAll(ctx context.Context) ([]E, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]E, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.items[id])
	}
	return out, nil
}

func (c *MemoryCollection[E]) FindByID(ctx context.Context, id string) (E, error) {
	var zero E
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.items[id]
	if !ok {
		return zero, errors.Wrapf(ErrNotFound, "find %s", id)
	}
	return e, nil
}

func (c *MemoryCollection[E]) Replace(ctx context.Context, e E) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	id := e.Meta().ID
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.items[id]; !ok {
		return errors.Wrapf(ErrNotFound, "replace %s", id)
	}
	c.items[id] = e
	return nil
}

func (c *MemoryCollection[E]) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.items[id]; !ok {
		return errors.Wrapf(ErrNotFound, "delete %s", id)
	}
	delete(c.items, id)
	for i, o := range c.order {
		if o == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return nil
}
