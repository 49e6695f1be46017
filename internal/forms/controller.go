// Package forms drives the console's create/edit forms: field
// validation, touched and saving state, and the create-or-update submit
// that returns to the list view.
package forms

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/ukydev/fleet-console/internal/models"
)

// ErrInvalid is returned by Submit when the form has validation errors.
var ErrInvalid = errors.New("form is invalid")

// Navigator moves the console to another route.
type Navigator interface {
	Navigate(path string)
}

// NavigatorFunc adapts a func to Navigator.
type NavigatorFunc func(path string)

func (f NavigatorFunc) Navigate(path string) { f(path) }

// Repository is the part of a collection store a form needs.
type Repository[E models.Entity] interface {
	Resource() models.Resource
	GetByID(ctx context.Context, id string) (E, error)
	Create(ctx context.Context, payload E) (E, error)
	Update(ctx context.Context, id string, patch models.Patch) (E, error)
}

// Form is the editable field set of one entity type. Forms are validated
// with their `validate` struct tags; messages are keyed by the `form` tag.
type Form[E models.Entity] interface {
	// Fill copies an existing entity into the fields.
	Fill(e E)
	// Build returns a new entity made of prev overlaid with the fields.
	// prev is nil when creating.
	Build(prev E) E
	// Reset restores the defaults of a blank form.
	Reset()
}

// Controller runs one form against a Repository.
type Controller[E models.Entity] struct {
	repo Repository[E]
	form Form[E]
	nav  Navigator
	log  logrus.FieldLogger

	mu      sync.Mutex
	id      string
	loaded  E
	touched bool
	saving  bool
	loading bool
}

func NewController[E models.Entity](repo Repository[E], form Form[E], nav Navigator, log logrus.FieldLogger) *Controller[E] {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Controller[E]{
		repo: repo,
		form: form,
		nav:  nav,
		log:  log.WithField("form", repo.Resource().Name),
	}
}

// Form returns the field set being edited.
func (c *Controller[E]) Form() Form[E] {
	return c.form
}

// Load fetches id and fills the form for editing. On failure the console
// returns to the list and the error is returned.
func (c *Controller[E]) Load(ctx context.Context, id string) error {
	c.mu.Lock()
	c.loading = true
	c.mu.Unlock()

	e, err := c.repo.GetByID(ctx, id)

	c.mu.Lock()
	c.loading = false
	if err != nil {
		c.mu.Unlock()
		c.log.WithError(err).WithField("id", id).Warn("Failed to load entity for editing")
		c.nav.Navigate(c.repo.Resource().ListRoute())
		return err
	}
	c.id = id
	c.loaded = e
	c.form.Fill(e)
	c.mu.Unlock()
	return nil
}

// EditMode reports whether the form edits an existing entity.
func (c *Controller[E]) EditMode() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.id != ""
}

func (c *Controller[E]) Title() string {
	if c.EditMode() {
		return c.repo.Resource().EditTitle()
	}
	return c.repo.Resource().NewTitle()
}

func (c *Controller[E]) SubmitLabel() string {
	if c.EditMode() {
		return "Salva Modifiche"
	}
	return "Crea " + c.repo.Resource().Label
}

// Touch marks every field as touched, revealing their errors.
func (c *Controller[E]) Touch() {
	c.mu.Lock()
	c.touched = true
	c.mu.Unlock()
}

func (c *Controller[E]) Touched() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.touched
}

func (c *Controller[E]) Saving() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.saving
}

func (c *Controller[E]) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// Errors validates the current fields.
func (c *Controller[E]) Errors() FieldErrors {
	return Check(c.form)
}

func (c *Controller[E]) Valid() bool {
	return len(c.Errors()) == 0
}

func (c *Controller[E]) ErrorCount() int {
	return len(c.Errors())
}

// ShowError returns the message for field once the form has been touched.
func (c *Controller[E]) ShowError(field string) string {
	if !c.Touched() {
		return ""
	}
	return c.Errors()[field]
}

// Submit validates and saves the form. Invalid forms never reach the
// backend. On success the console returns to the list; on failure the
// saving flag is cleared and the error returned.
func (c *Controller[E]) Submit(ctx context.Context) (E, error) {
	var zero E
	c.Touch()
	if errs := c.Errors(); len(errs) > 0 {
		return zero, ErrInvalid
	}

	c.mu.Lock()
	if c.saving {
		c.mu.Unlock()
		return zero, errors.New("submit already in progress")
	}
	c.saving = true
	id, loaded := c.id, c.loaded
	c.mu.Unlock()

	saved, err := c.save(ctx, id, loaded)
	if err != nil {
		c.mu.Lock()
		c.saving = false
		c.mu.Unlock()
		c.log.WithError(err).Error("Failed to save form")
		return zero, err
	}

	c.mu.Lock()
	c.saving = false
	c.mu.Unlock()
	c.nav.Navigate(c.repo.Resource().ListRoute())
	return saved, nil
}

func (c *Controller[E]) save(ctx context.Context, id string, loaded E) (E, error) {
	if id == "" {
		var none E
		return c.repo.Create(ctx, c.form.Build(none))
	}
	patch, err := models.PatchBetween(loaded, c.form.Build(loaded))
	if err != nil {
		var zero E
		return zero, errors.Wrap(err, "build patch")
	}
	return c.repo.Update(ctx, id, patch)
}

// Reset returns to a blank create form.
func (c *Controller[E]) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	var zero E
	c.id = ""
	c.loaded = zero
	c.touched = false
	c.saving = false
	c.form.Reset()
}
