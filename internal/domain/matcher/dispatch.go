package matcher

import (
	"fmt"

	"github.com/corey/anagramatron/internal/domain/fingerprint"
	"github.com/corey/anagramatron/internal/ports"
)

// Outcome describes what one transaction did with its item.
type Outcome int

const (
	// Stored: the bucket was empty and the item now occupies it.
	Stored Outcome = iota
	// Replaced: the occupant did not verify and the item superseded it.
	Replaced
	// Matched: the occupant verified; it was removed and the pair reported.
	Matched
	// Unmatched: CheckItem only. The item was tested (or had nothing to
	// test against) and was not inserted.
	Unmatched
)

func (o Outcome) String() string {
	switch o {
	case Stored:
		return "stored"
	case Replaced:
		return "replaced"
	case Matched:
		return "matched"
	case Unmatched:
		return "unmatched"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// ProcessItem runs the full single-item transaction: fingerprint, count,
// look up the bucket, verify against any occupant, and either report the
// pair (removing the occupant) or insert item as the bucket's new occupant.
// Store and sink errors are returned unchanged in meaning, wrapped with the
// failing step.
func ProcessItem[T ports.Item](item T, store ports.CandidateStore[T], sink ports.ResultSink[T], tester ports.Tester) (Outcome, error) {
	fp, matched, occupied, err := check(item, store, sink, tester)
	if err != nil {
		return 0, err
	}
	if matched {
		return Matched, nil
	}
	if err := store.Insert(fp, item); err != nil {
		return 0, fmt.Errorf("insert: %w", err)
	}
	if occupied {
		return Replaced, nil
	}
	return Stored, nil
}

// CheckItem is ProcessItem without the final insert. A confirmed match still
// removes the occupant and reaches the sink; an unmatched item leaves the
// store untouched. It serves dry runs and isolates matching cost from write
// cost.
func CheckItem[T ports.Item](item T, store ports.CandidateStore[T], sink ports.ResultSink[T], tester ports.Tester) (Outcome, error) {
	_, matched, _, err := check(item, store, sink, tester)
	if err != nil {
		return 0, err
	}
	if matched {
		return Matched, nil
	}
	return Unmatched, nil
}

func check[T ports.Item](item T, store ports.CandidateStore[T], sink ports.ResultSink[T], tester ports.Tester) (fp ports.Fingerprint, matched, occupied bool, err error) {
	fp = fingerprint.Of(item.Text())
	sink.ItemSeen()

	occupant, ok, err := store.Lookup(fp)
	if err != nil {
		return fp, false, false, fmt.Errorf("lookup: %w", err)
	}
	if !ok {
		return fp, false, false, nil
	}

	sink.PossibleMatch()
	if !tester.IsMatch(item.Text(), occupant.Text()) {
		return fp, false, true, nil
	}

	if err := store.Remove(fp); err != nil {
		return fp, false, true, fmt.Errorf("remove: %w", err)
	}
	if err := sink.Match(item, occupant, fp); err != nil {
		return fp, true, true, fmt.Errorf("report match: %w", err)
	}
	return fp, true, true, nil
}
