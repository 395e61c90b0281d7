package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/corey/anagramatron/internal/adapters/memory"
	"github.com/corey/anagramatron/internal/domain/filter"
	"github.com/corey/anagramatron/internal/domain/fingerprint"
	"github.com/corey/anagramatron/internal/domain/matcher"
	"github.com/corey/anagramatron/internal/logging"
	"github.com/corey/anagramatron/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type step struct {
	item ports.Line
	err  error
}

// scriptSource replays steps, then reports io.EOF.
type scriptSource struct {
	steps []step
}

func lines(items ...string) *scriptSource {
	s := &scriptSource{}
	for _, it := range items {
		s.steps = append(s.steps, step{item: ports.Line(it)})
	}
	return s
}

func (s *scriptSource) Next(ctx context.Context) (ports.Line, error) {
	if len(s.steps) == 0 {
		return "", io.EOF
	}
	st := s.steps[0]
	s.steps = s.steps[1:]
	return st.item, st.err
}

func (s *scriptSource) Close() error { return nil }

// blockingSource never yields until ctx is done.
type blockingSource struct{}

func (blockingSource) Next(ctx context.Context) (ports.Line, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func (blockingSource) Close() error { return nil }

var corpus = []string{
	"I’m so annoyed by him",
	"Go for it. Fuck.",
	"That shirt hurted.",
	"you dont know lol",
	"Hi my name is nobody",
	"fUCK I forgot",
	"Lol you don’t know",
	"its the hard truth",
}

func newLinePipeline(src ports.Source[ports.Line]) (*Pipeline[ports.Line], *memory.Store[ports.Line], *memory.CountingSink[ports.Line]) {
	store := memory.NewStore[ports.Line]()
	sink := memory.NewCountingSink[ports.Line]()
	return &Pipeline[ports.Line]{
		Source: src,
		Filter: filter.MinLength[ports.Line](filter.DefaultMinLength),
		Store:  store,
		Sink:   sink,
		Tester: matcher.NewAsciiTester(matcher.DefaultMinDist),
	}, store, sink
}

func TestPipeline_FindsCorpusHits(t *testing.T) {
	p, store, sink := newLinePipeline(lines(corpus...))

	res, err := p.Run(context.Background())
	require.NoError(t, err)

	// "fUCK I forgot" is shorter than the minimum and never reaches the store.
	assert.Equal(t, 8, res.Seen)
	assert.Equal(t, 7, res.Passed)
	assert.Equal(t, 3, res.Possible)
	assert.Equal(t, 2, res.Hits)
	assert.Equal(t, map[matcher.Outcome]int{matcher.Stored: 4, matcher.Replaced: 1, matcher.Matched: 2}, res.Outcomes)

	assert.Equal(t, 7, sink.Seen, "the sink only sees filtered items")
	require.Len(t, sink.Hits, 2)
	assert.Equal(t, ports.Line("Hi my name is nobody"), sink.Hits[0].Incoming)
	assert.Equal(t, ports.Line("I’m so annoyed by him"), sink.Hits[0].Occupant)
	assert.Equal(t, ports.Line("its the hard truth"), sink.Hits[1].Incoming)

	// Go for it / you dont know (replaced by Lol...) remain
	assert.Equal(t, 2, store.Len())
	assert.False(t, res.Finished.Before(res.Started))
}

func TestPipeline_DryRunNeverInserts(t *testing.T) {
	p, store, sink := newLinePipeline(lines(corpus...))
	p.DryRun = true

	res, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, store.Len())
	assert.Equal(t, 0, res.Hits)
	assert.Equal(t, 7, res.Outcomes[matcher.Unmatched])
	assert.Empty(t, sink.Hits)
}

func TestPipeline_DryRunMatchesExistingStore(t *testing.T) {
	p, store, _ := newLinePipeline(lines("Hi my name is nobody", "something else entirely"))
	p.DryRun = true
	require.NoError(t, store.Insert(fingerprint.Of("I’m so annoyed by him"), "I’m so annoyed by him"))

	res, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Hits)
	assert.Equal(t, 0, store.Len(), "the matched occupant is removed")
}

func TestPipeline_SkipsMalformed(t *testing.T) {
	src := lines("I’m so annoyed by him")
	src.steps = append(src.steps,
		step{err: fmt.Errorf("%w: bad json", ports.ErrMalformed)},
		step{item: "Hi my name is nobody"},
	)
	var buf bytes.Buffer
	p, _, _ := newLinePipeline(src)
	p.Logger = logging.NewJSONLogger(&buf, -4)

	res, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, 2, res.Seen)
	assert.Equal(t, 1, res.Hits)
	assert.Contains(t, buf.String(), "item skipped")
}

func TestPipeline_SourceErrorEndsRun(t *testing.T) {
	boom := errors.New("connection reset")
	src := lines("tomorrow is mine, friend")
	src.steps = append(src.steps, step{err: boom}, step{item: "never read at all here"})
	p, _, _ := newLinePipeline(src)

	res, err := p.Run(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.ErrorContains(t, err, "source:")
	assert.Equal(t, 1, res.Seen)
}

type failingInsert struct {
	*memory.Store[ports.Line]
}

func (failingInsert) Insert(ports.Fingerprint, ports.Line) error { return errors.New("disk full") }

func TestPipeline_StoreErrorAborts(t *testing.T) {
	p, _, _ := newLinePipeline(lines(corpus...))
	p.Store = failingInsert{memory.NewStore[ports.Line]()}
	p.Buffer = 1

	res, err := p.Run(context.Background())
	assert.ErrorContains(t, err, "insert: disk full")
	assert.Equal(t, 1, res.Passed)
}

func TestPipeline_SaveOnly(t *testing.T) {
	var saved []ports.Line
	p := &Pipeline[ports.Line]{
		Source: lines(corpus...),
		Filter: filter.MinLength[ports.Line](17),
		Save: func(l ports.Line) error {
			saved = append(saved, l)
			return nil
		},
	}
	res, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 8, res.Seen)
	assert.Equal(t, 6, res.Passed)
	assert.Len(t, saved, res.Passed)
	assert.Empty(t, res.Outcomes)
	for _, l := range saved {
		assert.GreaterOrEqual(t, len(l), 17)
	}
}

func TestPipeline_SaveErrorAborts(t *testing.T) {
	p := &Pipeline[ports.Line]{
		Source: lines(corpus...),
		Save:   func(ports.Line) error { return errors.New("read-only fs") },
	}
	_, err := p.Run(context.Background())
	assert.ErrorContains(t, err, "save: read-only fs")
}

func TestPipeline_CancelIsCleanStop(t *testing.T) {
	p, _, _ := newLinePipeline(blockingSource{})
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	res, err := p.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Seen)
}

func TestPipeline_DeadlineIsAnError(t *testing.T) {
	p, _, _ := newLinePipeline(blockingSource{})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := p.Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestPipeline_LogsProgress(t *testing.T) {
	var buf bytes.Buffer
	p, _, _ := newLinePipeline(lines(corpus...))
	p.Logger = logging.NewJSONLogger(&buf, 0)
	p.Progress = time.Hour

	_, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(buf.String(), `"msg":"progress"`), "one line per interval")
}

func TestPipeline_Validation(t *testing.T) {
	_, err := (&Pipeline[ports.Line]{}).Run(context.Background())
	assert.ErrorContains(t, err, "no source")

	_, err = (&Pipeline[ports.Line]{Source: lines(), Store: memory.NewStore[ports.Line]()}).Run(context.Background())
	assert.ErrorContains(t, err, "needs a sink")
}

func TestMultiSink_JoinsErrors(t *testing.T) {
	a, b := &Tally[ports.Line]{}, &Tally[ports.Line]{}
	bad := failSink{err: errors.New("db down")}
	m := MultiSink[ports.Line]{a, bad, b}

	m.ItemSeen()
	m.PossibleMatch()
	err := m.Match("listen", "silent", fingerprint.Of("listen"))
	assert.ErrorContains(t, err, "db down")
	for _, s := range []*Tally[ports.Line]{a, b} {
		assert.Equal(t, 1, s.Seen)
		assert.Equal(t, 1, s.Possible)
		assert.Equal(t, 1, s.Hits, "members after a failure still run")
	}
}

type failSink struct{ err error }

func (failSink) ItemSeen()                                               {}
func (failSink) PossibleMatch()                                          {}
func (s failSink) Match(ports.Line, ports.Line, ports.Fingerprint) error { return s.err }

func TestLogSink(t *testing.T) {
	var buf bytes.Buffer
	s := LogSink[ports.Line]{Logger: logging.NewTextLogger(&buf, 0)}
	require.NoError(t, s.Match("listen", "silent", fingerprint.Of("listen")))
	assert.Contains(t, buf.String(), "anagram found")
	assert.Contains(t, buf.String(), "one=listen")
}
