// Package memory provides the ephemeral candidate store and the reference
// counting result sink. Nothing here is persisted; a process exit loses it.
package memory

import "github.com/corey/anagramatron/internal/ports"

// Store is an unbounded in-memory ports.CandidateStore. Not thread-safe.
type Store[T any] struct {
	buckets map[ports.Fingerprint]T
}

// NewStore returns an empty store.
func NewStore[T any]() *Store[T] {
	return &Store[T]{buckets: make(map[ports.Fingerprint]T)}
}

// Lookup returns the occupant of fp's bucket.
func (s *Store[T]) Lookup(fp ports.Fingerprint) (T, bool, error) {
	v, ok := s.buckets[fp]
	return v, ok, nil
}

// Remove empties fp's bucket.
func (s *Store[T]) Remove(fp ports.Fingerprint) error {
	delete(s.buckets, fp)
	return nil
}

// Insert replaces fp's occupant with item.
func (s *Store[T]) Insert(fp ports.Fingerprint, item T) error {
	s.buckets[fp] = item
	return nil
}

// Len returns the number of occupied buckets.
func (s *Store[T]) Len() int {
	return len(s.buckets)
}
