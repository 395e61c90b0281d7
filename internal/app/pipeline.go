// Package app wires sources, filters, stores and sinks into runnable
// pipelines for the CLI.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/corey/anagramatron/internal/domain/filter"
	"github.com/corey/anagramatron/internal/domain/matcher"
	"github.com/corey/anagramatron/internal/domain/status"
	"github.com/corey/anagramatron/internal/logging"
	"github.com/corey/anagramatron/internal/ports"
)

// DefaultBuffer is the number of items read ahead of the dispatcher.
const DefaultBuffer = 256

// Pipeline pulls items from Source, drops those Filter rejects, and runs
// each survivor through the dispatcher against Store.
//
// Reading happens on its own goroutine so a slow source does not stall on
// store writes and vice versa. Store, Sink and Tester are only touched by
// the dispatcher goroutine.
type Pipeline[T ports.Item] struct {
	Source ports.Source[T]
	Filter filter.Func[T] // nil keeps everything

	// Store is the candidate store. When nil the pipeline only filters and
	// hands items to Save.
	Store  ports.CandidateStore[T]
	Sink   ports.ResultSink[T]
	Tester ports.Tester

	// DryRun uses CheckItem, so nothing new is inserted.
	DryRun bool

	// Save, when set, receives every item that passes Filter.
	Save func(T) error

	Logger   *logging.Logger
	Progress time.Duration // minimum gap between progress lines; 0 disables them
	Buffer   int
	Now      func() time.Time
}

// Result summarises a run.
type Result struct {
	Started  time.Time
	Finished time.Time
	Seen     int // items read from the source
	Passed   int // items that passed the filter
	Skipped  int // malformed records
	Possible int
	Hits     int
	Outcomes map[matcher.Outcome]int
}

// Counts converts r for a status snapshot.
func (r Result) Counts() status.Counts {
	return status.Counts{Seen: r.Seen, Passed: r.Passed, Skipped: r.Skipped, Possible: r.Possible, Hits: r.Hits}
}

// Run consumes the source until it ends, a step fails, or ctx is cancelled.
// Malformed records are logged and skipped. Cancellation of ctx is a clean
// stop and returns a nil error; the caller still owns closing the store.
func (p *Pipeline[T]) Run(ctx context.Context) (Result, error) {
	if p.Source == nil {
		return Result{}, errors.New("pipeline: no source")
	}
	if p.Store != nil && (p.Sink == nil || p.Tester == nil) {
		return Result{}, errors.New("pipeline: store needs a sink and a tester")
	}

	now := p.Now
	if now == nil {
		now = time.Now
	}
	logger := logging.OrNoop(p.Logger)
	buffer := p.Buffer
	if buffer <= 0 {
		buffer = DefaultBuffer
	}

	res := Result{Started: now(), Outcomes: make(map[matcher.Outcome]int)}
	tally := &Tally[T]{}
	var sink ports.ResultSink[T] = tally
	if p.Sink != nil {
		sink = MultiSink[T]{p.Sink, tally}
	}
	tp := NewThroughput(time.Minute, res.Started)
	var skipped atomic.Int64
	progress := rate.Sometimes{Interval: p.Progress}

	items := make(chan T, buffer)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(items)
		for {
			item, err := p.Source.Next(gctx)
			if err == io.EOF {
				return nil
			}
			if ports.IsMalformed(err) {
				skipped.Add(1)
				logger.LogSkip("malformed", err)
				continue
			}
			if err != nil {
				return fmt.Errorf("source: %w", err)
			}
			select {
			case items <- item:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
	})

	g.Go(func() error {
		for item := range items {
			passed := p.Filter == nil || p.Filter(item)
			tp.RecordAt(now(), passed)
			if p.Progress > 0 {
				progress.Do(func() {
					logger.LogProgress(tp.Seen(), tp.Passed(), tally.Hits, tp.RecentPerSecond())
				})
			}
			if !passed {
				continue
			}
			if p.Save != nil {
				if err := p.Save(item); err != nil {
					return fmt.Errorf("save: %w", err)
				}
			}
			if p.Store == nil {
				continue
			}

			var out matcher.Outcome
			var err error
			if p.DryRun {
				out, err = matcher.CheckItem(item, p.Store, sink, p.Tester)
			} else {
				out, err = matcher.ProcessItem(item, p.Store, sink, p.Tester)
			}
			if err != nil {
				return err
			}
			res.Outcomes[out]++
		}
		return nil
	})

	err := g.Wait()
	res.Finished = now()
	res.Seen = tp.Seen()
	res.Passed = tp.Passed()
	res.Skipped = int(skipped.Load())
	res.Possible = tally.Possible
	res.Hits = tally.Hits

	if err != nil && errors.Is(err, context.Canceled) && ctx.Err() != nil {
		logger.Info("pipeline stopped", "seen", res.Seen)
		return res, nil
	}
	return res, err
}
