package memory

import (
	"fmt"
	"io"

	"github.com/corey/anagramatron/internal/ports"
)

// Hit is one confirmed pair as reported to a sink.
type Hit[T any] struct {
	Incoming    T
	Occupant    T
	Fingerprint ports.Fingerprint
}

// CountingSink accumulates observation counts and every confirmed pair for
// reporting at the end of a run. Not thread-safe.
type CountingSink[T ports.Item] struct {
	Seen     int
	Possible int
	Hits     []Hit[T]
}

// NewCountingSink returns an empty sink.
func NewCountingSink[T ports.Item]() *CountingSink[T] {
	return &CountingSink[T]{}
}

// ItemSeen counts one observed item.
func (s *CountingSink[T]) ItemSeen() { s.Seen++ }

// PossibleMatch counts one tested pair.
func (s *CountingSink[T]) PossibleMatch() { s.Possible++ }

// Match records a confirmed pair. It never fails.
func (s *CountingSink[T]) Match(incoming, occupant T, fp ports.Fingerprint) error {
	s.Hits = append(s.Hits, Hit[T]{Incoming: incoming, Occupant: occupant, Fingerprint: fp})
	return nil
}

// Summary returns the one-line run summary.
func (s *CountingSink[T]) Summary() string {
	return fmt.Sprintf("saw %d items, tested %d pairs, found %d anagrams.", s.Seen, s.Possible, len(s.Hits))
}

// PrintResults writes the summary followed by every pair.
func (s *CountingSink[T]) PrintResults(w io.Writer) error {
	if _, err := fmt.Fprintln(w, s.Summary()); err != nil {
		return err
	}
	for _, h := range s.Hits {
		if _, err := fmt.Fprintf(w, "---------\n%s\n--↕︎--\n%s\n", h.Incoming.Text(), h.Occupant.Text()); err != nil {
			return err
		}
	}
	return nil
}
