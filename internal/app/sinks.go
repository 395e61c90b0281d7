package app

import (
	"errors"

	"github.com/corey/anagramatron/internal/logging"
	"github.com/corey/anagramatron/internal/ports"
)

// MultiSink fans every event out to each member in order. Match calls every
// member even after a failure and joins their errors.
type MultiSink[T any] []ports.ResultSink[T]

func (m MultiSink[T]) ItemSeen() {
	for _, s := range m {
		s.ItemSeen()
	}
}

func (m MultiSink[T]) PossibleMatch() {
	for _, s := range m {
		s.PossibleMatch()
	}
}

func (m MultiSink[T]) Match(incoming, occupant T, fp ports.Fingerprint) error {
	var errs []error
	for _, s := range m {
		if err := s.Match(incoming, occupant, fp); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Tally counts sink events without retaining items.
type Tally[T any] struct {
	Seen     int
	Possible int
	Hits     int
}

func (t *Tally[T]) ItemSeen()      { t.Seen++ }
func (t *Tally[T]) PossibleMatch() { t.Possible++ }

func (t *Tally[T]) Match(T, T, ports.Fingerprint) error {
	t.Hits++
	return nil
}

// LogSink logs each confirmed pair.
type LogSink[T ports.Item] struct {
	Logger *logging.Logger
}

func (LogSink[T]) ItemSeen()      {}
func (LogSink[T]) PossibleMatch() {}

func (s LogSink[T]) Match(incoming, occupant T, fp ports.Fingerprint) error {
	logging.OrNoop(s.Logger).LogHit(fp.String(), incoming.Text(), occupant.Text())
	return nil
}
