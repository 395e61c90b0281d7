package bbolt

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"
)

// Bucket keys
var (
	bucketMeta    = []byte("meta")
	bucketEntries = []byte("entries")
	keyCreated    = []byte("net.cmyr.creationDate")
)

const (
	chunkExt        = ".db"
	chunkNameLayout = "2006-01-02_15_04_05"
	maxNameSuffix   = 999
)

// ChunkError reports a failure on one chunk file.
type ChunkError struct {
	Path string
	Op   string
	Err  error
}

func (e *ChunkError) Error() string {
	return fmt.Sprintf("chunk %s %s: %v", e.Op, filepath.Base(e.Path), e.Err)
}

func (e *ChunkError) Unwrap() error { return e.Err }

// chunk is one bbolt file holding a creation timestamp and a bounded number
// of entries keyed by raw fingerprint bytes.
type chunk struct {
	path    string
	created time.Time
	count   int
	db      *bolt.DB
}

func openDB(path string) (*bolt.DB, error) {
	return bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
}

// openChunk opens an existing chunk read-write and reads its metadata.
func openChunk(path string) (*chunk, error) {
	db, err := openDB(path)
	if err != nil {
		return nil, &ChunkError{Path: path, Op: "open", Err: err}
	}
	c := &chunk{path: path, db: db}
	err = db.View(func(tx *bolt.Tx) error {
		mb := tx.Bucket(bucketMeta)
		if mb == nil {
			return errors.New("missing meta bucket")
		}
		raw := mb.Get(keyCreated)
		if raw == nil {
			return errors.New("missing creation date")
		}
		if err := c.created.UnmarshalText(raw); err != nil {
			return fmt.Errorf("parse creation date: %w", err)
		}
		if eb := tx.Bucket(bucketEntries); eb != nil {
			c.count = eb.Stats().KeyN
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, &ChunkError{Path: path, Op: "load", Err: err}
	}
	return c, nil
}

// createChunk makes a new chunk file in dir named after created, writing the
// creation timestamp before anything else. A name already taken within the
// same second gets a numeric suffix.
func createChunk(dir string, created time.Time) (*chunk, error) {
	path, err := freeChunkPath(dir, created)
	if err != nil {
		return nil, err
	}
	db, err := openDB(path)
	if err != nil {
		return nil, &ChunkError{Path: path, Op: "create", Err: err}
	}
	stamp, err := created.MarshalText()
	if err != nil {
		db.Close()
		return nil, &ChunkError{Path: path, Op: "create", Err: err}
	}
	err = db.Update(func(tx *bolt.Tx) error {
		mb, err := tx.CreateBucketIfNotExists(bucketMeta)
		if err != nil {
			return err
		}
		if err := mb.Put(keyCreated, stamp); err != nil {
			return err
		}
		_, err = tx.CreateBucketIfNotExists(bucketEntries)
		return err
	})
	if err != nil {
		db.Close()
		return nil, &ChunkError{Path: path, Op: "create", Err: err}
	}
	return &chunk{path: path, created: created, db: db}, nil
}

func freeChunkPath(dir string, created time.Time) (string, error) {
	base := created.UTC().Format(chunkNameLayout)
	for i := 0; i <= maxNameSuffix; i++ {
		name := base + chunkExt
		if i > 0 {
			name = fmt.Sprintf("%s_%03d%s", base, i, chunkExt)
		}
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return path, nil
		} else if err != nil {
			return "", &ChunkError{Path: path, Op: "create", Err: err}
		}
	}
	return "", &ChunkError{Path: filepath.Join(dir, base+chunkExt), Op: "create", Err: errors.New("too many chunks in one second")}
}

// chunkPaths lists chunk files in dir.
func chunkPaths(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), chunkExt) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	return paths, nil
}

// sortChunks orders by embedded creation time, then filename.
func sortChunks(chunks []*chunk) {
	sort.SliceStable(chunks, func(i, j int) bool {
		a, b := chunks[i], chunks[j]
		if !a.created.Equal(b.created) {
			return a.created.Before(b.created)
		}
		return filepath.Base(a.path) < filepath.Base(b.path)
	})
}

// get returns a copy of key's value, or nil.
func (c *chunk) get(key []byte) ([]byte, error) {
	var out []byte
	err := c.db.View(func(tx *bolt.Tx) error {
		// Copy bytes out of the transaction (bbolt slices are only valid within tx)
		if v := tx.Bucket(bucketEntries).Get(key); v != nil {
			out = make([]byte, len(v))
			copy(out, v)
		}
		return nil
	})
	if err != nil {
		return nil, &ChunkError{Path: c.path, Op: "read", Err: err}
	}
	return out, nil
}

// holds returns which of keys are present in this chunk.
func (c *chunk) holds(keys [][]byte) ([]bool, error) {
	found := make([]bool, len(keys))
	err := c.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketEntries)
		for i, k := range keys {
			found[i] = b.Get(k) != nil
		}
		return nil
	})
	if err != nil {
		return nil, &ChunkError{Path: c.path, Op: "read", Err: err}
	}
	return found, nil
}

type record struct {
	key, value []byte
}

// putAll writes records in one transaction, counting new keys.
func (c *chunk) putAll(recs []record) error {
	added := 0
	err := c.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketEntries)
		for _, r := range recs {
			if b.Get(r.key) == nil {
				added++
			}
			if err := b.Put(r.key, r.value); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return &ChunkError{Path: c.path, Op: "write", Err: err}
	}
	c.count += added
	return nil
}

// delete removes key, reporting whether it was present.
func (c *chunk) delete(key []byte) (bool, error) {
	present := false
	err := c.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketEntries)
		if b.Get(key) == nil {
			return nil
		}
		present = true
		return b.Delete(key)
	})
	if err != nil {
		return false, &ChunkError{Path: c.path, Op: "delete", Err: err}
	}
	if present {
		c.count--
	}
	return present, nil
}

func (c *chunk) close() error {
	if err := c.db.Close(); err != nil {
		return &ChunkError{Path: c.path, Op: "close", Err: err}
	}
	return nil
}
