// Package fsnotify implements the ports.Watcher interface using github.com/fsnotify/fsnotify.
// It watches a single dump directory, ignores temp and hidden files, and
// debounces rapid events (a rename into place can arrive as several events).
package fsnotify

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/corey/anagramatron/internal/adapters/dump"
)

const debounceInterval = 50 * time.Millisecond

// Watcher implements ports.Watcher using fsnotify.
type Watcher struct {
	fw      *fsnotify.Watcher
	done    chan struct{}
	wg      sync.WaitGroup
	stopped bool
	mu      sync.Mutex

	// Accept decides which file names are reported. Defaults to
	// dump.IsDumpFile.
	Accept func(name string) bool
}

// NewWatcher creates a new file system watcher.
func NewWatcher() (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		fw:     fw,
		done:   make(chan struct{}),
		Accept: dump.IsDumpFile,
	}, nil
}

// Watch starts monitoring dir. onFile is called with the absolute path of
// each accepted file that is created or renamed into dir.
func (w *Watcher) Watch(dir string, onFile func(path string)) error {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("watch %s: not a directory", absPath)
	}
	if err := w.fw.Add(absPath); err != nil {
		return err
	}

	debounce := newDebouncer(debounceInterval)

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for {
			select {
			case event, ok := <-w.fw.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Create) {
					continue
				}
				path := event.Name
				if !w.Accept(path) {
					continue
				}
				if info, err := os.Stat(path); err != nil || info.IsDir() {
					continue
				}

				if !debounce.allow(path, time.Now()) {
					continue
				}

				select {
				case <-w.done:
					return
				default:
				}
				onFile(path)

			case _, ok := <-w.fw.Errors:
				if !ok {
					return
				}
				// fsnotify keeps running after reporting an error.

			case <-w.done:
				return
			}
		}
	}()

	return nil
}

// debouncer drops repeat events for a path within interval. Expired
// entries are pruned as new paths arrive.
type debouncer struct {
	interval time.Duration
	last     map[string]time.Time
}

func newDebouncer(interval time.Duration) *debouncer {
	return &debouncer{interval: interval, last: make(map[string]time.Time)}
}

func (d *debouncer) allow(path string, now time.Time) bool {
	if last, seen := d.last[path]; seen && now.Sub(last) < d.interval {
		return false
	}
	for p, t := range d.last {
		if now.Sub(t) >= d.interval {
			delete(d.last, p)
		}
	}
	d.last[path] = now
	return true
}

// Stop ends monitoring and releases all resources. It waits for an
// in-flight callback to return. Safe to call multiple times.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return nil
	}
	w.stopped = true
	close(w.done)
	err := w.fw.Close()
	w.mu.Unlock()

	w.wg.Wait()
	return err
}
