package models

import (
	"encoding/json"
	"fmt"
	"reflect"
	"time"
)

// Base holds the fields every stored entity carries.
type Base struct {
	ID        string    `json:"id" bson:"_id"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Meta returns the entity's identity and timestamps.
func (b *Base) Meta() *Base {
	return b
}

// Validate checks the invariants shared by all entities.
func (b *Base) Validate() error {
	if b.ID == "" {
		return &ValidationError{Field: "id", Reason: "is required"}
	}
	if b.UpdatedAt.Before(b.CreatedAt) {
		return &ValidationError{Field: "updatedAt", Reason: "precedes createdAt"}
	}
	return nil
}

// Entity is implemented by pointers to the seven console entities.
type Entity interface {
	Meta() *Base
	Validate() error
}

// IsNil reports whether e holds no entity, as when a JSON null was decoded
// into it.
func IsNil[E Entity](e E) bool {
	v := reflect.ValueOf(e)
	return !v.IsValid() || (v.Kind() == reflect.Pointer && v.IsNil())
}

// Defaulter is implemented by entities that fill in a default status
// before being sent to the backend.
type Defaulter interface {
	ApplyDefaults()
}

// ValidationError reports a field that breaks an entity invariant.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func enumError(field string, value any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf("unknown value %q", value)}
}

// Patch is a partial update sent with PATCH. Keys are JSON field names.
type Patch map[string]any

// PatchFrom builds a patch carrying every field of e except its identity
// and timestamps.
func PatchFrom(e Entity) (Patch, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, err
	}
	var p Patch
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	delete(p, "id")
	delete(p, "createdAt")
	delete(p, "updatedAt")
	return p, nil
}

// PatchBetween builds the patch that turns before into after. Fields that
// after leaves empty but before had are sent as null so they get cleared.
func PatchBetween(before, after Entity) (Patch, error) {
	next, err := PatchFrom(after)
	if err != nil {
		return nil, err
	}
	prev, err := PatchFrom(before)
	if err != nil {
		return nil, err
	}
	for k := range prev {
		if _, ok := next[k]; !ok {
			next[k] = nil
		}
	}
	return next, nil
}
