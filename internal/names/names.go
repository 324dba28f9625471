// Package names provides an insertion-ordered map whose lookups ignore
// letter case but report when the case used differs from the stored key.
package names

import (
	"iter"
	"slices"
	"strings"
)

// Match classifies the outcome of a case-aware lookup.
type Match uint8

const (
	// MatchNone reports that no key matched, even ignoring case.
	MatchNone Match = iota
	// MatchExact reports a case-sensitive hit.
	MatchExact
	// MatchCaseMismatch reports a hit that only matched after folding case.
	MatchCaseMismatch
)

// String returns a stable name for the match kind.
func (m Match) String() string {
	switch m {
	case MatchExact:
		return "exact"
	case MatchCaseMismatch:
		return "case-mismatch"
	default:
		return "none"
	}
}

// Found reports whether the lookup resolved, with or without case mismatch.
func (m Match) Found() bool {
	return m != MatchNone
}

// Map keeps two parallel views of its keys: the exact spelling and the
// lower-cased spelling. Keys that fold to the same lower-case form share one
// entry; the spelling used by the first Set is kept.
type Map[V any] struct {
	exact map[string]V
	lower map[string]string
	order []string
}

// New returns an empty map.
func New[V any]() *Map[V] {
	return &Map[V]{
		exact: make(map[string]V),
		lower: make(map[string]string),
	}
}

func fold(name string) string {
	return strings.ToLower(name)
}

// Len returns the number of entries.
func (m *Map[V]) Len() int {
	if m == nil {
		return 0
	}
	return len(m.order)
}

// Get looks name up ignoring case. key is the stored spelling, which
// callers use to report the correct casing on MatchCaseMismatch.
func (m *Map[V]) Get(name string) (value V, key string, match Match) {
	if m == nil {
		return value, "", MatchNone
	}
	if v, ok := m.exact[name]; ok {
		return v, name, MatchExact
	}
	stored, ok := m.lower[fold(name)]
	if !ok {
		return value, "", MatchNone
	}
	return m.exact[stored], stored, MatchCaseMismatch
}

// GetExactCase looks name up with case-sensitive comparison only.
func (m *Map[V]) GetExactCase(name string) (V, bool) {
	var zero V
	if m == nil {
		return zero, false
	}
	v, ok := m.exact[name]
	return v, ok
}

// Has reports whether name is present ignoring case.
func (m *Map[V]) Has(name string) bool {
	if m == nil {
		return false
	}
	_, ok := m.lower[fold(name)]
	return ok
}

// Set stores value under name. When a key with the same folded spelling
// exists, its value is replaced and its original spelling kept.
func (m *Map[V]) Set(name string, value V) {
	if stored, ok := m.lower[fold(name)]; ok {
		m.exact[stored] = value
		return
	}
	m.lower[fold(name)] = name
	m.exact[name] = value
	m.order = append(m.order, name)
}

// Delete removes name ignoring case and reports whether it was present.
func (m *Map[V]) Delete(name string) bool {
	if m == nil {
		return false
	}
	stored, ok := m.lower[fold(name)]
	if !ok {
		return false
	}
	delete(m.lower, fold(name))
	delete(m.exact, stored)
	if i := slices.Index(m.order, stored); i >= 0 {
		m.order = slices.Delete(m.order, i, i+1)
	}
	return true
}

// Index returns the insertion position of name ignoring case, or -1.
func (m *Map[V]) Index(name string) int {
	if m == nil {
		return -1
	}
	stored, ok := m.lower[fold(name)]
	if !ok {
		return -1
	}
	return slices.Index(m.order, stored)
}

// At returns the entry at insertion position i.
func (m *Map[V]) At(i int) (string, V, bool) {
	var zero V
	if m == nil || i < 0 || i >= len(m.order) {
		return "", zero, false
	}
	key := m.order[i]
	return key, m.exact[key], true
}

// Keys returns the stored keys in insertion order.
func (m *Map[V]) Keys() []string {
	if m == nil {
		return nil
	}
	return slices.Clone(m.order)
}

// All iterates entries in insertion order.
func (m *Map[V]) All() iter.Seq2[string, V] {
	return func(yield func(string, V) bool) {
		if m == nil {
			return
		}
		for _, key := range m.order {
			if !yield(key, m.exact[key]) {
				return
			}
		}
	}
}

// Values iterates values in insertion order.
func (m *Map[V]) Values() iter.Seq[V] {
	return func(yield func(V) bool) {
		for _, v := range m.All() {
			if !yield(v) {
				return
			}
		}
	}
}

// Clear removes every entry.
func (m *Map[V]) Clear() {
	clear(m.exact)
	clear(m.lower)
	m.order = m.order[:0]
}
