// Package dump saves filtered stream items to disk in batches and reads them
// back. Each file holds one JSON array, optionally gzip-compressed.
package dump

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	gojson "github.com/goccy/go-json"
	"github.com/klauspost/compress/gzip"

	"github.com/corey/anagramatron/internal/logging"
)

const (
	DefaultBatch = 25_000

	nameLayout = "2006-01-02_15:04:05"
	jsonExt    = ".json"
	gzipExt    = ".json.gz"
	tempPrefix = ".dump-"
)

// Options configures a Writer. Zero values select defaults.
type Options struct {
	Batch  int  // items per file
	Gzip   bool // write .json.gz
	Now    func() time.Time
	Logger *logging.Logger
}

// Writer buffers items and writes a file each time a batch fills. Not
// thread-safe.
type Writer[T any] struct {
	dir     string
	opts    Options
	pending []T
	written []string
	closed  bool
}

// NewWriter creates dir if needed and returns a writer into it.
func NewWriter[T any](dir string, opts Options) (*Writer[T], error) {
	if opts.Batch <= 0 {
		opts.Batch = DefaultBatch
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	opts.Logger = logging.OrNoop(opts.Logger)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("dump dir: %w", err)
	}
	return &Writer[T]{dir: dir, opts: opts, pending: make([]T, 0, min(opts.Batch, 4096))}, nil
}

// Add buffers item, writing a file when the batch is full.
func (w *Writer[T]) Add(item T) error {
	if w.closed {
		return errors.New("dump writer closed")
	}
	w.pending = append(w.pending, item)
	if len(w.pending) >= w.opts.Batch {
		return w.Flush()
	}
	return nil
}

// Flush writes any buffered items to a new file.
func (w *Writer[T]) Flush() error {
	if len(w.pending) == 0 {
		return nil
	}
	path, err := w.writeFile(w.pending)
	if err != nil {
		return err
	}
	w.written = append(w.written, path)
	w.opts.Logger.Info("dump written", "path", path, "items", len(w.pending))
	w.pending = w.pending[:0]
	return nil
}

// Close writes the remaining items.
func (w *Writer[T]) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	return w.Flush()
}

// Files returns the paths written so far.
func (w *Writer[T]) Files() []string {
	return append([]string(nil), w.written...)
}

// writeFile encodes to a temp file and renames it into place, so readers
// only ever see complete files.
func (w *Writer[T]) writeFile(items []T) (string, error) {
	tmp, err := os.CreateTemp(w.dir, tempPrefix+"*")
	if err != nil {
		return "", fmt.Errorf("dump create: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := w.encode(tmp, items); err != nil {
		tmp.Close()
		return "", fmt.Errorf("dump write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("dump write: %w", err)
	}

	path := w.freePath()
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("dump rename: %w", err)
	}
	return path, nil
}

func (w *Writer[T]) encode(f io.Writer, items []T) error {
	bw := bufio.NewWriter(f)
	var out io.Writer = bw
	var zw *gzip.Writer
	if w.opts.Gzip {
		zw = gzip.NewWriter(bw)
		out = zw
	}
	if err := gojson.NewEncoder(out).Encode(items); err != nil {
		return err
	}
	if zw != nil {
		if err := zw.Close(); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func (w *Writer[T]) freePath() string {
	ext := jsonExt
	if w.opts.Gzip {
		ext = gzipExt
	}
	base := w.opts.Now().Format(nameLayout)
	path := filepath.Join(w.dir, base+ext)
	for i := 1; ; i++ {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return path
		}
		path = filepath.Join(w.dir, fmt.Sprintf("%s_%03d%s", base, i, ext))
	}
}

// IsDumpFile reports whether name looks like a finished dump file.
func IsDumpFile(name string) bool {
	base := filepath.Base(name)
	if strings.HasPrefix(base, ".") {
		return false
	}
	return strings.HasSuffix(base, jsonExt) || strings.HasSuffix(base, gzipExt)
}

// ReadFile decodes a dump file written by Writer. Files ending in .gz are
// decompressed.
func ReadFile[T any](path string) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dump open: %w", err)
	}
	defer f.Close()

	var r io.Reader = bufio.NewReader(f)
	if strings.HasSuffix(path, ".gz") {
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("dump gzip %s: %w", filepath.Base(path), err)
		}
		defer zr.Close()
		r = zr
	}
	var items []T
	if err := gojson.NewDecoder(r).Decode(&items); err != nil {
		return nil, fmt.Errorf("dump decode %s: %w", filepath.Base(path), err)
	}
	return items, nil
}

// ListFiles returns the dump files in dir sorted by name, which is also
// write order.
func ListFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if !e.IsDir() && IsDumpFile(e.Name()) {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	return out, nil
}
