// Package store keeps the console's in-memory view of each remote
// collection and derives aggregates from it.
package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/ukydev/fleet-console/internal/models"
)

// Backend is the remote side of a collection. *client.Resource implements it.
type Backend[E models.Entity] interface {
	List(ctx context.Context) ([]E, error)
	Get(ctx context.Context, id string) (E, error)
	Create(ctx context.Context, e E) (E, error)
	Patch(ctx context.Context, id string, patch models.Patch) (E, error)
	Delete(ctx context.Context, id string) error
}

type options struct {
	log   logrus.FieldLogger
	now   func() time.Time
	newID func(prefix string) string
}

// Option customises a collection.
type Option func(*options)

func WithLogger(log logrus.FieldLogger) Option {
	return func(o *options) { o.log = log }
}

func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithIDGenerator replaces the default prefix-uuid id scheme.
func WithIDGenerator(fn func(prefix string) string) Option {
	return func(o *options) { o.newID = fn }
}

// NewID returns a fresh client-side id such as "t-9b2f...".
func NewID(prefix string) string {
	return prefix + "-" + uuid.NewString()
}

func buildOptions(opts []Option) options {
	o := options{
		log:   logrus.StandardLogger(),
		now:   time.Now,
		newID: NewID,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Collection mirrors one remote collection: the list, a loading flag, the
// last error message and the currently selected entity.
//
// Entities handed out by a Collection are shared with it and must be
// treated as read-only.
type Collection[E models.Entity] struct {
	res     models.Resource
	backend Backend[E]
	opts    options

	mu          sync.RWMutex
	items       []E
	loading     bool
	errMsg      string
	selected    E
	hasSelected bool
	loadSeq     uint64

	listenersMu  sync.Mutex
	listeners    map[int]func()
	nextListener int
}

func NewCollection[E models.Entity](res models.Resource, backend Backend[E], opts ...Option) *Collection[E] {
	return &Collection[E]{
		res:       res,
		backend:   backend,
		opts:      buildOptions(opts),
		listeners: make(map[int]func()),
	}
}

// Resource returns the descriptor the collection was built for.
func (c *Collection[E]) Resource() models.Resource {
	return c.res
}

func (c *Collection[E]) logger() logrus.FieldLogger {
	return c.opts.log.WithField("resource", c.res.Path)
}

// LoadAll replaces the list with the backend's. It never fails: on error
// the list is emptied, the resource's load message is recorded and an
// empty slice is returned. A load overtaken by a newer one is discarded.
func (c *Collection[E]) LoadAll(ctx context.Context) []E {
	c.mu.Lock()
	c.loadSeq++
	seq := c.loadSeq
	c.loading = true
	c.errMsg = ""
	c.mu.Unlock()
	c.notify()

	items, err := c.backend.List(ctx)

	c.mu.Lock()
	if seq != c.loadSeq {
		out := c.snapshotLocked()
		c.mu.Unlock()
		c.logger().Debug("Discarded stale load")
		return out
	}
	c.loading = false
	if err != nil {
		c.items = nil
		c.errMsg = c.res.LoadError
		c.mu.Unlock()
		c.logger().WithError(err).Error("Failed to load collection")
		c.notify()
		return []E{}
	}
	c.items = make([]E, 0, len(items))
	for _, e := range items {
		if models.IsNil(e) {
			continue
		}
		c.items = append(c.items, e)
	}
	dropped := len(items) - len(c.items)
	out := c.snapshotLocked()
	c.mu.Unlock()

	if dropped > 0 {
		c.logger().WithField("dropped", dropped).Warn("Dropped empty entries from collection")
	}
	c.logger().WithField("count", len(out)).Debug("Loaded collection")
	c.notify()
	return out
}

// GetByID fetches one entity and makes it the selection. On failure the
// resource's not-found message is recorded and the error returned. It
// leaves the list's loading flag and load error alone.
func (c *Collection[E]) GetByID(ctx context.Context, id string) (E, error) {
	var zero E
	e, err := c.backend.Get(ctx, id)
	if err == nil && models.IsNil(e) {
		err = errors.Errorf("empty %s entity", c.res.Name)
	}

	c.mu.Lock()
	if err != nil {
		c.errMsg = c.res.NotFound
		c.mu.Unlock()
		c.logger().WithError(err).WithField("id", id).Warn("Failed to fetch entity")
		c.notify()
		return zero, errors.Wrapf(err, "get %s %s", c.res.Name, id)
	}
	if c.errMsg == c.res.NotFound {
		c.errMsg = ""
	}
	c.selected = e
	c.hasSelected = true
	c.mu.Unlock()

	c.notify()
	return e, nil
}

// Create stamps payload with a new id and matching timestamps, fills in
// defaults, sends it and appends the stored entity to the list. payload is
// modified in place.
func (c *Collection[E]) Create(ctx context.Context, payload E) (E, error) {
	var zero E
	now := c.opts.now()
	meta := payload.Meta()
	meta.ID = c.opts.newID(c.res.IDPrefix)
	meta.CreatedAt = now
	meta.UpdatedAt = now
	if d, ok := any(payload).(models.Defaulter); ok {
		d.ApplyDefaults()
	}
	if err := payload.Validate(); err != nil {
		return zero, errors.Wrapf(err, "create %s", c.res.Name)
	}

	created, err := c.backend.Create(ctx, payload)
	if err == nil && models.IsNil(created) {
		err = errors.Errorf("empty %s entity", c.res.Name)
	}
	if err != nil {
		c.logger().WithError(err).Error("Failed to create entity")
		return zero, errors.Wrapf(err, "create %s", c.res.Name)
	}

	c.mu.Lock()
	c.items = append(c.items, created)
	c.mu.Unlock()

	c.logger().WithField("id", created.Meta().ID).Info("Created entity")
	c.notify()
	return created, nil
}

// Update sends a partial update stamped with a fresh updatedAt and swaps
// the stored entity into the list and the selection.
func (c *Collection[E]) Update(ctx context.Context, id string, patch models.Patch) (E, error) {
	var zero E
	ts := c.opts.now()
	c.mu.RLock()
	if cur, ok := c.findLocked(id); ok && cur.Meta().UpdatedAt.After(ts) {
		ts = cur.Meta().UpdatedAt
	}
	c.mu.RUnlock()

	body := make(models.Patch, len(patch)+1)
	for k, v := range patch {
		body[k] = v
	}
	delete(body, "id")
	delete(body, "createdAt")
	body["updatedAt"] = ts

	updated, err := c.backend.Patch(ctx, id, body)
	if err == nil && models.IsNil(updated) {
		err = errors.Errorf("empty %s entity", c.res.Name)
	}
	if err != nil {
		c.logger().WithError(err).WithField("id", id).Error("Failed to update entity")
		return zero, errors.Wrapf(err, "update %s %s", c.res.Name, id)
	}

	c.mu.Lock()
	for i, e := range c.items {
		if e.Meta().ID == id {
			c.items[i] = updated
			break
		}
	}
	if c.hasSelected && c.selected.Meta().ID == id {
		c.selected = updated
	}
	c.mu.Unlock()

	c.notify()
	return updated, nil
}

// Delete removes an entity remotely and then locally. On failure the list
// is left untouched.
func (c *Collection[E]) Delete(ctx context.Context, id string) error {
	if err := c.backend.Delete(ctx, id); err != nil {
		c.logger().WithError(err).WithField("id", id).Error("Failed to delete entity")
		return errors.Wrapf(err, "delete %s %s", c.res.Name, id)
	}

	c.mu.Lock()
	for i, e := range c.items {
		if e.Meta().ID == id {
			c.items = append(c.items[:i:i], c.items[i+1:]...)
			break
		}
	}
	if c.hasSelected && c.selected.Meta().ID == id {
		c.clearSelectionLocked()
	}
	c.mu.Unlock()

	c.notify()
	return nil
}

func (c *Collection[E]) ClearSelection() {
	c.mu.Lock()
	c.clearSelectionLocked()
	c.mu.Unlock()
	c.notify()
}

func (c *Collection[E]) clearSelectionLocked() {
	var zero E
	c.selected = zero
	c.hasSelected = false
}

// Items returns a copy of the current list.
func (c *Collection[E]) Items() []E {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshotLocked()
}

func (c *Collection[E]) snapshotLocked() []E {
	return append([]E{}, c.items...)
}

func (c *Collection[E]) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func (c *Collection[E]) Loading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loading
}

// LastError returns the last user-facing error message, or "".
func (c *Collection[E]) LastError() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.errMsg
}

// Selected returns the selected entity, if any.
func (c *Collection[E]) Selected() (E, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.selected, c.hasSelected
}

// Find looks an entity up in the loaded list without a network call.
func (c *Collection[E]) Find(id string) (E, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.findLocked(id)
}

func (c *Collection[E]) findLocked(id string) (E, bool) {
	for _, e := range c.items {
		if e.Meta().ID == id {
			return e, true
		}
	}
	var zero E
	return zero, false
}

// Subscribe registers fn to run after every state change. The returned
// func removes it.
func (c *Collection[E]) Subscribe(fn func()) (cancel func()) {
	c.listenersMu.Lock()
	id := c.nextListener
	c.nextListener++
	c.listeners[id] = fn
	c.listenersMu.Unlock()

	return func() {
		c.listenersMu.Lock()
		delete(c.listeners, id)
		c.listenersMu.Unlock()
	}
}

func (c *Collection[E]) notify() {
	c.listenersMu.Lock()
	fns := make([]func(), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.listenersMu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
