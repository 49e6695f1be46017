package store

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/stretchr/testify/mock"
	"github.com/ukydev/fleet-console/internal/client"
	"github.com/ukydev/fleet-console/internal/models"
)

// memBackend is an in-memory Backend that echoes what it stores.
type memBackend[E models.Entity] struct {
	mu        sync.Mutex
	items     []E
	failNext  error
	patches   []models.Patch
	listCalls int
	// onList runs outside the lock after the list has been read, with the
	// 1-based call number.
	onList func(call int)
}

func newMemBackend[E models.Entity](items ...E) *memBackend[E] {
	return &memBackend[E]{items: items}
}

func (b *memBackend[E]) takeErr() error {
	err := b.failNext
	b.failNext = nil
	return err
}

func (b *memBackend[E]) List(ctx context.Context) ([]E, error) {
	b.mu.Lock()
	b.listCalls++
	call := b.listCalls
	err := b.takeErr()
	items := append([]E(nil), b.items...)
	hook := b.onList
	b.mu.Unlock()
	if hook != nil {
		hook(call)
	}
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (b *memBackend[E]) Get(ctx context.Context, id string) (E, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var zero E
	if err := b.takeErr(); err != nil {
		return zero, err
	}
	for _, e := range b.items {
		if e.Meta().ID == id {
			return e, nil
		}
	}
	return zero, client.ErrNotFound
}

func (b *memBackend[E]) Create(ctx context.Context, e E) (E, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var zero E
	if err := b.takeErr(); err != nil {
		return zero, err
	}
	b.items = append(b.items, e)
	return e, nil
}

func (b *memBackend[E]) Patch(ctx context.Context, id string, patch models.Patch) (E, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var zero E
	if err := b.takeErr(); err != nil {
		return zero, err
	}
	b.patches = append(b.patches, patch)
	for i, e := range b.items {
		if e.Meta().ID != id {
			continue
		}
		merged, err := merge(e, patch)
		if err != nil {
			return zero, err
		}
		b.items[i] = merged
		return merged, nil
	}
	return zero, client.ErrNotFound
}

func (b *memBackend[E]) Delete(ctx context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.takeErr(); err != nil {
		return err
	}
	for i, e := range b.items {
		if e.Meta().ID == id {
			b.items = append(b.items[:i], b.items[i+1:]...)
			return nil
		}
	}
	return client.ErrNotFound
}

func merge[E models.Entity](e E, patch models.Patch) (E, error) {
	var out E
	data, err := json.Marshal(e)
	if err != nil {
		return out, err
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return out, err
	}
	for k, v := range patch {
		doc[k] = v
	}
	data, err = json.Marshal(doc)
	if err != nil {
		return out, err
	}
	err = json.Unmarshal(data, &out)
	return out, err
}

// mockBackend is a testify mock for asserting exact backend calls.
type mockBackend[E models.Entity] struct {
	mock.Mock
}

func (m *mockBackend[E]) List(ctx context.Context) ([]E, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]E), args.Error(1)
}

func (m *mockBackend[E]) Get(ctx context.Context, id string) (E, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		var zero E
		return zero, args.Error(1)
	}
	return args.Get(0).(E), args.Error(1)
}

func (m *mockBackend[E]) Create(ctx context.Context, e E) (E, error) {
	args := m.Called(ctx, e)
	if args.Get(0) == nil {
		var zero E
		return zero, args.Error(1)
	}
	return args.Get(0).(E), args.Error(1)
}

func (m *mockBackend[E]) Patch(ctx context.Context, id string, patch models.Patch) (E, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		var zero E
		return zero, args.Error(1)
	}
	return args.Get(0).(E), args.Error(1)
}

func (m *mockBackend[E]) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
