// Package bbolt implements the persistent ports.CandidateStore: a directory of
// bbolt chunk files fronted by an LRU write-back cache.
//
// Inserts land in the cache. Before each insert a health check evicts the
// least recently used tenth of the cache into the chunks once it passes 90%
// full, and starts a new chunk when the current one is full. Lookups check
// the cache, then every chunk oldest first. Close flushes the cache. A crash
// loses whatever was only cached.
//
// A key lives in at most one chunk: write-back updates it in place where it
// already exists and appends it to the newest chunk otherwise.
package bbolt

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/corey/anagramatron/internal/logging"
	"github.com/corey/anagramatron/internal/ports"
)

const (
	DefaultChunkSize     = 2_000_000
	DefaultCacheCapacity = 100_000
)

// Options configures a Store. Zero values select the defaults.
type Options struct {
	ChunkSize     int // entries per chunk file
	CacheCapacity int // entries held in memory
	Codec         Codec
	Now           func() time.Time
	Logger        *logging.Logger
}

func (o Options) withDefaults() Options {
	if o.ChunkSize <= 0 {
		o.ChunkSize = DefaultChunkSize
	}
	if o.CacheCapacity <= 0 {
		o.CacheCapacity = DefaultCacheCapacity
	}
	if o.Codec == nil {
		o.Codec = DefaultCodec
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	o.Logger = logging.OrNoop(o.Logger)
	return o
}

// Store is a chunked candidate store. Not thread-safe.
type Store[T any] struct {
	dir    string
	opts   Options
	chunks []*chunk // ascending creation order; last is current
	cache  *lru[T]
	closed bool
}

// ChunkInfo describes one chunk file.
type ChunkInfo struct {
	Path    string
	Created time.Time
	Entries int
}

// Open loads every chunk in dir, creating dir if needed.
func Open[T any](dir string, opts Options) (*Store[T], error) {
	opts = opts.withDefaults()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("store dir: %w", err)
	}
	paths, err := chunkPaths(dir)
	if err != nil {
		return nil, fmt.Errorf("store dir: %w", err)
	}

	s := &Store[T]{dir: dir, opts: opts, cache: newLRU[T](opts.CacheCapacity)}
	for _, p := range paths {
		c, err := openChunk(p)
		if err != nil {
			s.closeChunks()
			return nil, err
		}
		s.chunks = append(s.chunks, c)
	}
	sortChunks(s.chunks)
	opts.Logger.Debug("store opened", "dir", dir, "chunks", len(s.chunks))
	return s, nil
}

// Lookup returns fp's occupant from the cache or the oldest chunk holding it.
// A chunk hit is cached.
func (s *Store[T]) Lookup(fp ports.Fingerprint) (T, bool, error) {
	var zero T
	if s.closed {
		return zero, false, ports.ErrClosed
	}
	if v, ok := s.cache.get(fp); ok {
		return v, true, nil
	}

	key := fp.Bytes()
	for _, c := range s.chunks {
		data, err := c.get(key)
		if err != nil {
			return zero, false, err
		}
		if data == nil {
			continue
		}
		var v T
		if err := decode(s.opts.Codec, data, &v); err != nil {
			return zero, false, err
		}
		s.cache.put(fp, v, false)
		if s.cache.len() > s.opts.CacheCapacity {
			if err := s.evict(s.cache.len() - s.threshold()); err != nil {
				return zero, false, err
			}
		}
		return v, true, nil
	}
	return zero, false, nil
}

// Insert makes item fp's occupant. The write reaches a chunk on eviction,
// Flush or Close.
func (s *Store[T]) Insert(fp ports.Fingerprint, item T) error {
	if s.closed {
		return ports.ErrClosed
	}
	if err := s.checkHealth(); err != nil {
		return err
	}
	s.cache.put(fp, item, true)
	return nil
}

// Remove empties fp's bucket in the cache and on disk.
func (s *Store[T]) Remove(fp ports.Fingerprint) error {
	if s.closed {
		return ports.ErrClosed
	}
	s.cache.remove(fp)
	key := fp.Bytes()
	for _, c := range s.chunks {
		if _, err := c.delete(key); err != nil {
			return err
		}
	}
	return nil
}

// Flush writes every dirty cache entry to the chunks. Entries stay cached.
// An entry that could not be written stays dirty, so a later Flush or Close
// retries it.
func (s *Store[T]) Flush() error {
	if s.closed {
		return ports.ErrClosed
	}
	dirty := s.cache.dirtyEntries()
	failed, err := s.writeBack(dirty)
	unwritten := make(map[*cacheEntry[T]]bool, len(failed))
	for _, e := range failed {
		unwritten[e] = true
	}
	for _, e := range dirty {
		if !unwritten[e] {
			e.dirty = false
		}
	}
	if err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	s.opts.Logger.Debug("store flushed", "written", len(dirty), "chunks", len(s.chunks))
	return nil
}

// Close flushes and closes every chunk. Calling Close again is a no-op.
func (s *Store[T]) Close() error {
	if s.closed {
		return nil
	}
	flushErr := s.Flush()
	s.closed = true
	return errors.Join(flushErr, s.closeChunks())
}

// Chunks describes the chunk files in lookup order.
func (s *Store[T]) Chunks() []ChunkInfo {
	out := make([]ChunkInfo, len(s.chunks))
	for i, c := range s.chunks {
		out[i] = ChunkInfo{Path: c.path, Created: c.created, Entries: c.count}
	}
	return out
}

// CacheLen returns the number of cached entries.
func (s *Store[T]) CacheLen() int { return s.cache.len() }

// Dir returns the backing directory.
func (s *Store[T]) Dir() string { return s.dir }

func (s *Store[T]) threshold() int {
	return s.opts.CacheCapacity * 9 / 10
}

func (s *Store[T]) checkHealth() error {
	if s.cache.len() > s.threshold() {
		if err := s.evict(max(s.opts.CacheCapacity/10, 1)); err != nil {
			return err
		}
	}
	if c := s.current(); c == nil || c.count >= s.opts.ChunkSize {
		return s.addChunk()
	}
	return nil
}

func (s *Store[T]) evict(n int) error {
	victims := s.cache.popOldest(n)
	var dirty []*cacheEntry[T]
	for _, e := range victims {
		if e.dirty {
			dirty = append(dirty, e)
		}
	}
	failed, err := s.writeBack(dirty)
	// Victims that missed the disk go back to the cold end, still dirty.
	s.cache.restoreOldest(failed)
	s.opts.Logger.LogEviction(len(victims)-len(failed), len(dirty)-len(failed), err)
	if err != nil {
		return fmt.Errorf("evict: %w", err)
	}
	return nil
}

// writeBack persists entries: keys already on disk are updated in the chunk
// that holds them, the rest are appended to the current chunk, rotating
// whenever it fills. It returns the entries that did not reach a chunk. A
// value that fails to encode fails alone; a chunk failure fails every entry
// not yet committed.
func (s *Store[T]) writeBack(entries []*cacheEntry[T]) ([]*cacheEntry[T], error) {
	var (
		failed  []*cacheEntry[T]
		errs    []error
		pending []pendingWrite[T]
	)
	for _, e := range entries {
		data, err := encode(s.opts.Codec, e.value)
		if err != nil {
			failed = append(failed, e)
			errs = append(errs, fmt.Errorf("key %s: %w", e.key, err))
			continue
		}
		pending = append(pending, pendingWrite[T]{entry: e, rec: record{key: e.key.Bytes(), value: data}})
	}
	abort := func(err error) ([]*cacheEntry[T], error) {
		for _, p := range pending {
			failed = append(failed, p.entry)
		}
		return failed, errors.Join(append(errs, err)...)
	}

	for _, c := range s.chunks {
		if len(pending) == 0 {
			break
		}
		keys := make([][]byte, len(pending))
		for i, p := range pending {
			keys[i] = p.rec.key
		}
		found, err := c.holds(keys)
		if err != nil {
			return abort(err)
		}
		var here, rest []pendingWrite[T]
		for i, p := range pending {
			if found[i] {
				here = append(here, p)
			} else {
				rest = append(rest, p)
			}
		}
		if len(here) > 0 {
			if err := c.putAll(records(here)); err != nil {
				return abort(err)
			}
		}
		pending = rest
	}

	for len(pending) > 0 {
		c := s.current()
		if c == nil || c.count >= s.opts.ChunkSize {
			if err := s.addChunk(); err != nil {
				return abort(err)
			}
			c = s.current()
		}
		n := min(s.opts.ChunkSize-c.count, len(pending))
		if err := c.putAll(records(pending[:n])); err != nil {
			return abort(err)
		}
		pending = pending[n:]
	}
	return failed, errors.Join(errs...)
}

type pendingWrite[T any] struct {
	entry *cacheEntry[T]
	rec   record
}

func records[T any](ps []pendingWrite[T]) []record {
	out := make([]record, len(ps))
	for i, p := range ps {
		out[i] = p.rec
	}
	return out
}

func (s *Store[T]) current() *chunk {
	if len(s.chunks) == 0 {
		return nil
	}
	return s.chunks[len(s.chunks)-1]
}

func (s *Store[T]) addChunk() error {
	c, err := createChunk(s.dir, s.opts.Now())
	if err != nil {
		return err
	}
	s.chunks = append(s.chunks, c)
	s.opts.Logger.LogChunkCreated(c.path, c.created)
	return nil
}

func (s *Store[T]) closeChunks() error {
	var errs []error
	for _, c := range s.chunks {
		if err := c.close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
