// Package handlers serves the console REST contract: one resource per
// entity with list, get, create, patch and delete.
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/ukydev/fleet-console/internal/db"
	"github.com/ukydev/fleet-console/internal/events"
	"github.com/ukydev/fleet-console/internal/models"
)

const maxBodyBytes = 1 << 20

// ResourceHandler serves one entity collection at /<path>.
type ResourceHandler[E models.Entity] struct {
	res    models.Resource
	coll   db.Collection[E]
	events events.Publisher
	log    logrus.FieldLogger
	now    func() time.Time
}

func NewResourceHandler[E models.Entity](res models.Resource, coll db.Collection[E], pub events.Publisher, log logrus.FieldLogger) *ResourceHandler[E] {
	if pub == nil {
		pub = events.Nop{}
	}
	return &ResourceHandler[E]{
		res:    res,
		coll:   coll,
		events: pub,
		log:    log.WithField("resource", res.Path),
		now:    time.Now,
	}
}

// Routes returns the sub-router to mount at the resource path.
func (h *ResourceHandler[E]) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Patch("/{id}", h.Patch)
	r.Delete("/{id}", h.Delete)
	return r
}

func (h *ResourceHandler[E]) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.coll.FindAll(r.Context())
	if err != nil {
		h.fail(w, err, "Failed to list")
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *ResourceHandler[E]) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	e, err := h.coll.FindByID(r.Context(), id)
	if err != nil {
		h.fail(w, err, "Failed to get")
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// Create stores the entity in the body. The id and timestamps sent by the
// console are kept; missing ones are filled in.
func (h *ResourceHandler[E]) Create(w http.ResponseWriter, r *http.Request) {
	var e E
	if err := decodeBody(w, r, &e); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	meta := e.Meta()
	if meta.ID == "" {
		meta.ID = h.res.IDPrefix + "-" + uuid.NewString()
	}
	now := h.now().UTC()
	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = now
	}
	if meta.UpdatedAt.IsZero() {
		meta.UpdatedAt = meta.CreatedAt
	}
	if d, ok := any(e).(models.Defaulter); ok {
		d.ApplyDefaults()
	}
	if err := e.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.coll.Insert(r.Context(), e); err != nil {
		h.fail(w, err, "Failed to create")
		return
	}
	h.publish(r.Context(), events.Created, meta.ID)
	writeJSON(w, http.StatusCreated, e)
}

// Patch merges the JSON object in the body onto the stored entity. A null
// value clears the field; id and createdAt cannot be changed.
func (h *ResourceHandler[E]) Patch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var patch models.Patch
	if err := decodeBody(w, r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	current, err := h.coll.FindByID(r.Context(), id)
	if err != nil {
		h.fail(w, err, "Failed to load for patch")
		return
	}
	updated, err := merge(current, patch)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	meta := updated.Meta()
	meta.ID = current.Meta().ID
	meta.CreatedAt = current.Meta().CreatedAt
	if _, ok := patch["updatedAt"]; !ok || meta.UpdatedAt.IsZero() {
		meta.UpdatedAt = h.now().UTC()
	}
	if d, ok := any(updated).(models.Defaulter); ok {
		d.ApplyDefaults()
	}
	if err := updated.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.coll.Replace(r.Context(), updated); err != nil {
		h.fail(w, err, "Failed to update")
		return
	}
	h.publish(r.Context(), events.Updated, id)
	writeJSON(w, http.StatusOK, updated)
}

func (h *ResourceHandler[E]) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.coll.Delete(r.Context(), id); err != nil {
		h.fail(w, err, "Failed to delete")
		return
	}
	h.publish(r.Context(), events.Deleted, id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *ResourceHandler[E]) fail(w http.ResponseWriter, err error, msg string) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.log.WithError(err).Error(msg)
		writeError(w, status, "internal server error")
		return
	}
	writeError(w, status, err.Error())
}

// publish announces a mutation. The mutation already happened, so a broker
// failure is only logged.
func (h *ResourceHandler[E]) publish(ctx context.Context, action events.Action, id string) {
	err := h.events.Publish(ctx, events.Event{
		Resource: h.res.Path,
		Action:   action,
		ID:       id,
		At:       h.now().UTC(),
	})
	if err != nil {
		h.log.WithError(err).WithField("id", id).Warn("Failed to publish event")
	}
}

// decodeBody decodes a JSON object body into out. Anything but an object
// is rejected, so out is never left nil.
func decodeBody(w http.ResponseWriter, r *http.Request, out any) error {
	var raw json.RawMessage
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&raw); err != nil {
		return errors.Wrap(err, "invalid JSON")
	}
	if trimmed := bytes.TrimSpace(raw); len(trimmed) == 0 || trimmed[0] != '{' {
		return errors.New("request body must be a JSON object")
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return errors.Wrap(err, "invalid JSON")
	}
	return nil
}

// merge applies patch to a JSON copy of current and decodes the result
// into a fresh entity.
func merge[E models.Entity](current E, patch models.Patch) (E, error) {
	var zero E
	raw, err := json.Marshal(current)
	if err != nil {
		return zero, errors.Wrap(err, "encode current")
	}
	doc := map[string]any{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return zero, errors.Wrap(err, "decode current")
	}
	for k, v := range patch {
		if v == nil {
			delete(doc, k)
			continue
		}
		doc[k] = v
	}
	raw, err = json.Marshal(doc)
	if err != nil {
		return zero, errors.Wrap(err, "encode merged")
	}
	var out E
	if err := json.Unmarshal(raw, &out); err != nil {
		return zero, errors.Wrap(err, "invalid patch")
	}
	return out, nil
}
