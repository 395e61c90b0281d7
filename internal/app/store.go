package app

import (
	"fmt"

	"github.com/corey/anagramatron/internal/adapters/bbolt"
	"github.com/corey/anagramatron/internal/adapters/memory"
	"github.com/corey/anagramatron/internal/domain/status"
	"github.com/corey/anagramatron/internal/logging"
	"github.com/corey/anagramatron/internal/ports"
)

// Store is a candidate store the caller must Close.
type Store[T any] interface {
	ports.CandidateStore[T]
	Close() error
	// Status summarises the persisted state; nil when nothing is persisted.
	Status() *status.Store
}

// StoreOptions selects and sizes the candidate store.
type StoreOptions struct {
	// Memory selects the ephemeral in-memory store; Dir and sizing are ignored.
	Memory        bool
	Dir           string
	ChunkSize     int
	CacheCapacity int
	Codec         string
	Logger        *logging.Logger
}

// OpenStore builds the store described by opts.
func OpenStore[T any](opts StoreOptions) (Store[T], error) {
	if opts.Memory {
		return memoryStore[T]{memory.NewStore[T]()}, nil
	}
	codec, ok := bbolt.CodecByName(opts.Codec)
	if !ok {
		return nil, fmt.Errorf("unknown codec %q", opts.Codec)
	}
	s, err := bbolt.Open[T](opts.Dir, bbolt.Options{
		ChunkSize:     opts.ChunkSize,
		CacheCapacity: opts.CacheCapacity,
		Codec:         codec,
		Logger:        opts.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return chunkedStore[T]{s}, nil
}

type memoryStore[T any] struct {
	*memory.Store[T]
}

func (memoryStore[T]) Close() error { return nil }

func (memoryStore[T]) Status() *status.Store { return nil }

type chunkedStore[T any] struct {
	*bbolt.Store[T]
}

func (s chunkedStore[T]) Status() *status.Store {
	st := &status.Store{Cached: s.CacheLen()}
	for _, c := range s.Chunks() {
		st.Chunks++
		st.Entries += c.Entries
	}
	return st
}
