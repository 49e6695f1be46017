package db

import (
	"context"

	"github.com/pkg/errors"
	"github.com/ukydev/fleet-console/internal/models"
)

var (
	ErrNotFound    = errors.New("document not found")
	ErrDuplicateID = errors.New("duplicate id")
)

// Collection defines the storage operations behind one REST resource.
// Stored entities are shared; callers must not mutate what they read.
type Collection[E models.Entity] interface {
	Insert(ctx context.Context, e E) error
	FindAll(ctx context.Context) ([]E, error)
	FindByID(ctx context.Context, id string) (E, error)
	Replace(ctx context.Context, e E) error
	Delete(ctx context.Context, id string) error
}

// Cursor is the part of a driver cursor the Mongo collection reads from.
type Cursor interface {
	All(ctx context.Context, out interface{}) error
	Close(ctx context.Context) error
}
