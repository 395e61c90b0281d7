package postgres

import (
	"context"
	"time"

	"github.com/corey/anagramatron/internal/logging"
	"github.com/corey/anagramatron/internal/ports"
)

// HitWriter is the write side of HitStore.
type HitWriter interface {
	HasHash(ctx context.Context, hash []byte) (bool, error)
	CreateHit(ctx context.Context, h NewHit) (int, error)
}

// Sink is the production ports.ResultSink: it counts like the in-memory
// sink and stores every confirmed pair whose hash is not stored yet. Not
// thread-safe.
type Sink[T ports.Item] struct {
	w       HitWriter
	timeout time.Duration
	logger  *logging.Logger
	tweet   func(T) *ports.Tweet

	Seen     int
	Possible int
	Stored   int
	Known    int // pairs skipped because their hash was already stored
}

// NewSink writes through w, bounding each write by timeout (0 for none).
func NewSink[T ports.Item](w HitWriter, timeout time.Duration, logger *logging.Logger) *Sink[T] {
	return &Sink[T]{w: w, timeout: timeout, logger: logging.OrNoop(logger)}
}

// WithTweets stores the tweet behind each side of a pair alongside the hit.
func (s *Sink[T]) WithTweets(tweet func(T) *ports.Tweet) *Sink[T] {
	s.tweet = tweet
	return s
}

func (s *Sink[T]) ItemSeen()      { s.Seen++ }
func (s *Sink[T]) PossibleMatch() { s.Possible++ }

// Match stores the pair keyed by the fingerprint hash. The newer item is
// "one". A pair whose hash is already stored is counted in Known and
// dropped, so a replayed stream does not queue the same anagram twice.
func (s *Sink[T]) Match(incoming, occupant T, fp ports.Fingerprint) error {
	ctx := context.Background()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	hash := fp.Hash()
	known, err := s.w.HasHash(ctx, hash)
	if err != nil {
		return err
	}
	if known {
		s.Known++
		s.logger.Debug("hit already stored", "hitlen", fp.Letters())
		return nil
	}

	h := NewHit{
		One:     incoming.Text(),
		Two:     occupant.Text(),
		HitHash: hash,
		HitLen:  fp.Letters(),
	}
	if s.tweet != nil {
		for _, it := range []T{incoming, occupant} {
			if t := s.tweet(it); t != nil {
				h.Tweets = append(h.Tweets, t)
			}
		}
	}

	id, err := s.w.CreateHit(ctx, h)
	if err != nil {
		return err
	}
	s.Stored++
	s.logger.Debug("hit stored", "id", id, "hitlen", h.HitLen)
	return nil
}
