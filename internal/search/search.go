// Package search filters entity lists for the console's list views.
//
// Structured filters compare one field for equality; the free-text query
// matches case-insensitively anywhere in a fixed set of fields, including
// fields of referenced entities. All active filters must accept an item,
// so their order never changes the result.
package search

import "strings"

// Predicate accepts or rejects one item.
type Predicate[E any] func(E) bool

// Apply returns the items accepted by every predicate, in their original
// order. Nil predicates are inactive filters and are skipped.
func Apply[E any](items []E, preds ...Predicate[E]) []E {
	active := preds[:0:0]
	for _, p := range preds {
		if p != nil {
			active = append(active, p)
		}
	}
	out := make([]E, 0, len(items))
next:
	for _, e := range items {
		for _, p := range active {
			if !p(e) {
				continue next
			}
		}
		out = append(out, e)
	}
	return out
}

// Normalize prepares a free-text query for matching.
func Normalize(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

// Matches reports whether any value contains the normalized query.
// An empty query matches everything.
func Matches(query string, values ...string) bool {
	q := Normalize(query)
	if q == "" {
		return true
	}
	for _, v := range values {
		if v != "" && strings.Contains(strings.ToLower(v), q) {
			return true
		}
	}
	return false
}

// Text builds a free-text predicate over the values returned by fields.
// It returns nil for a blank query.
func Text[E any](query string, fields func(E) []string) Predicate[E] {
	q := Normalize(query)
	if q == "" {
		return nil
	}
	return func(e E) bool {
		return Matches(q, fields(e)...)
	}
}

// Equals builds an exact-match predicate. A zero want means "any" and
// yields nil.
func Equals[E any, V comparable](want V, get func(E) V) Predicate[E] {
	var zero V
	if want == zero {
		return nil
	}
	return func(e E) bool {
		return get(e) == want
	}
}
