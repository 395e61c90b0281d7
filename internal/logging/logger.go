// Package logging wraps slog with the field names and operation helpers used
// across the adapters and the pipeline.
package logging

import (
	"io"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger. A nil *Logger is not valid; use Noop.
type Logger struct {
	*slog.Logger
}

// New creates a Logger with the given handler.
// If handler is nil, uses a text handler to stderr at info level.
func New(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	return &Logger{Logger: slog.New(handler)}
}

// NewTextLogger writes human-readable logs to w.
func NewTextLogger(w io.Writer, level slog.Level) *Logger {
	return New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// NewJSONLogger writes one JSON object per record to w.
func NewJSONLogger(w io.Writer, level slog.Level) *Logger {
	return New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// Noop discards everything.
func Noop() *Logger {
	return New(slog.DiscardHandler)
}

// OrNoop returns l, or a discarding logger when l is nil.
func OrNoop(l *Logger) *Logger {
	if l == nil {
		return Noop()
	}
	return l
}

// With returns a child logger carrying the given attributes.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...)}
}

// LogChunkCreated logs a new store chunk.
func (l *Logger) LogChunkCreated(path string, created time.Time) {
	l.Info("chunk created", "path", path, "created", created)
}

// LogEviction logs one cache eviction pass.
func (l *Logger) LogEviction(evicted, written int, err error) {
	if err != nil {
		l.Error("eviction failed", "evicted", evicted, "written", written, "error", err)
		return
	}
	l.Debug("eviction completed", "evicted", evicted, "written", written)
}

// LogSkip logs an input item that was dropped.
func (l *Logger) LogSkip(reason string, err error) {
	l.Warn("item skipped", "reason", reason, "error", err)
}

// LogProgress logs pipeline throughput.
func (l *Logger) LogProgress(seen, passed, hits int, perSecond float64) {
	l.Info("progress",
		"seen", seen,
		"passed", passed,
		"hits", hits,
		"per_second", perSecond,
	)
}

// LogHit logs one confirmed pair.
func (l *Logger) LogHit(fingerprint string, one, two string) {
	l.Info("anagram found", "fingerprint", fingerprint, "one", one, "two", two)
}
