package fsnotify

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sync"

	"github.com/corey/anagramatron/internal/adapters/dump"
	"github.com/corey/anagramatron/internal/logging"
	"github.com/corey/anagramatron/internal/ports"
)

// DirOptions configures a DirSource.
type DirOptions struct {
	// Follow keeps the source open after the existing files are replayed,
	// yielding items from dump files as they appear.
	Follow  bool
	Watcher ports.Watcher // nil creates an fsnotify Watcher when Follow is set
	Logger  *logging.Logger
}

// DirSource yields every item in a directory of dump files: those present
// at open in name order, then (with Follow) each new file as it lands.
// A file is read once per DirSource.
type DirSource[T any] struct {
	dir     string
	opts    DirOptions
	files   chan string
	done    chan struct{}
	once    sync.Once
	queue   []string
	seen    map[string]bool
	items   []T
	watcher ports.Watcher
}

// NewDirSource lists dir and, with Follow, starts watching it. The watch
// starts before the listing so no file is missed in between.
func NewDirSource[T any](dir string, opts DirOptions) (*DirSource[T], error) {
	opts.Logger = logging.OrNoop(opts.Logger)
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	s := &DirSource[T]{
		dir:   dir,
		opts:  opts,
		files: make(chan string, 64),
		done:  make(chan struct{}),
		seen:  make(map[string]bool),
	}
	if opts.Follow {
		w := opts.Watcher
		if w == nil {
			fw, err := NewWatcher()
			if err != nil {
				return nil, fmt.Errorf("watcher: %w", err)
			}
			w = fw
		}
		if err := w.Watch(dir, s.enqueue); err != nil {
			w.Stop()
			return nil, fmt.Errorf("watch %s: %w", dir, err)
		}
		s.watcher = w
	}
	existing, err := dump.ListFiles(dir)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	s.queue = existing
	return s, nil
}

func (s *DirSource[T]) enqueue(path string) {
	select {
	case s.files <- path:
	case <-s.done:
	}
}

// Next returns the next item. A dump file that cannot be read is reported
// once as an ErrMalformed error and skipped. Without Follow the source ends
// with io.EOF after the last existing file.
func (s *DirSource[T]) Next(ctx context.Context) (T, error) {
	var zero T
	for {
		if len(s.items) > 0 {
			item := s.items[0]
			s.items = s.items[1:]
			return item, nil
		}
		if len(s.queue) > 0 {
			path := s.queue[0]
			s.queue = s.queue[1:]
			if s.seen[path] {
				continue
			}
			s.seen[path] = true
			items, err := dump.ReadFile[T](path)
			if err != nil {
				return zero, fmt.Errorf("%w: %v", ports.ErrMalformed, err)
			}
			s.opts.Logger.Debug("dump file loaded", "path", path, "items", len(items))
			s.items = items
			continue
		}
		if !s.opts.Follow {
			return zero, io.EOF
		}
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-s.done:
			return zero, io.EOF
		case path := <-s.files:
			s.queue = append(s.queue, path)
		}
	}
}

// Close stops watching. Pending items are dropped.
func (s *DirSource[T]) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		if s.watcher != nil {
			err = s.watcher.Stop()
		}
	})
	return err
}
