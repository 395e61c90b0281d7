// Package ports defines the interfaces (contracts) that adapters must implement.
// These are the boundaries of the hexagonal architecture. Domain logic depends
// only on these interfaces, never on concrete implementations.
package ports

import "errors"

var (
	// ErrClosed is returned by a store that is used after Close.
	ErrClosed = errors.New("store closed")
)

// CandidateStore maps a Fingerprint to at most one retained item.
//
// A bucket is last-writer-wins: Insert always replaces the occupant, and an
// earlier occupant is gone for good once superseded. Implementations are
// selected at construction time (memory, bbolt) and carry no internal locking;
// one store instance belongs to one goroutine.
type CandidateStore[T any] interface {
	// Lookup returns the bucket's occupant. ok is false when the bucket is
	// empty; that is not an error. Lookup may reorder internal cache state.
	Lookup(fp Fingerprint) (item T, ok bool, err error)

	// Remove deletes the bucket's occupant. Removing an empty bucket is not an error.
	Remove(fp Fingerprint) error

	// Insert sets the bucket's occupant, replacing any prior value.
	Insert(fp Fingerprint, item T) error
}
