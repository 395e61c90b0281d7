package app

import (
	"fmt"
	"time"
)

// Throughput counts items through a pipeline and reports overall and recent
// rates. Recent rates come from checkpoints at most one per second apart,
// kept for a rolling window.
// Not thread-safe; the dispatcher loop owns it.
type Throughput struct {
	window  time.Duration
	start   time.Time
	last    time.Time
	seen    int
	passed  int
	samples []checkpoint
}

type checkpoint struct {
	ts   time.Time
	seen int
}

// NewThroughput starts a tracker at now with the given rolling window.
func NewThroughput(window time.Duration, now time.Time) *Throughput {
	return &Throughput{window: window, start: now, last: now}
}

// RecordAt counts one item seen at ts; passed reports whether it got
// through the filter.
func (t *Throughput) RecordAt(ts time.Time, passed bool) {
	t.seen++
	if passed {
		t.passed++
	}
	t.last = ts
	if n := len(t.samples); n == 0 || ts.Sub(t.samples[n-1].ts) >= time.Second {
		t.samples = append(t.samples, checkpoint{ts: ts, seen: t.seen})
	}
	t.evict(ts)
}

func (t *Throughput) Seen() int   { return t.seen }
func (t *Throughput) Passed() int { return t.passed }

// Elapsed is the time from start to the last recorded item.
func (t *Throughput) Elapsed() time.Duration { return t.last.Sub(t.start) }

// PerSecond is the mean rate since start; 0 before any time has passed.
func (t *Throughput) PerSecond() float64 {
	secs := t.Elapsed().Seconds()
	if secs <= 0 {
		return 0
	}
	return float64(t.seen) / secs
}

// RecentPerSecond is the rate over the rolling window. Returns 0 until two
// checkpoints are available.
func (t *Throughput) RecentPerSecond() float64 {
	if len(t.samples) < 2 {
		return 0
	}
	first, last := t.samples[0], t.samples[len(t.samples)-1]
	secs := last.ts.Sub(first.ts).Seconds()
	if secs <= 0 {
		return 0
	}
	return float64(last.seen-first.seen) / secs
}

// PassedPct is the share of seen items that passed the filter, in percent.
func (t *Throughput) PassedPct() float64 {
	if t.seen == 0 {
		return 0
	}
	return 100 * float64(t.passed) / float64(t.seen)
}

// String renders the saver-style progress line.
func (t *Throughput) String() string {
	return fmt.Sprintf("count: %d/%d (%.2f%%) secs %d (%d tps)",
		t.passed, t.seen, t.PassedPct(), int(t.Elapsed().Seconds()), int(t.PerSecond()))
}

// evict removes checkpoints older than the window, keeping at least one.
func (t *Throughput) evict(now time.Time) {
	cutoff := now.Add(-t.window)
	i := 0
	for i < len(t.samples)-1 && t.samples[i].ts.Before(cutoff) {
		i++
	}
	if i > 0 {
		t.samples = t.samples[i:]
	}
}
