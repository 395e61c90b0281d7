// Package matcher decides which fingerprint collisions are hits and runs the
// per-item transaction that ties fingerprinting, storage, and verification
// together.
package matcher

import (
	"unicode/utf8"

	"github.com/corey/anagramatron/internal/domain/distance"
	"github.com/corey/anagramatron/internal/domain/fingerprint"
)

// DefaultMinDist is the distance ratio used when none is configured.
const DefaultMinDist = 0.5

// AsciiTester is the two-stage distance test for texts whose fingerprints
// already match. Both stages compare against the same MinDist ratio.
//
// Stage two requires the word-sorted distance to stay high, so reposts that
// only shuffle whole words are rejected along with raw-order near copies.
// Not safe for concurrent use (it owns a distance scratch matrix).
type AsciiTester struct {
	MinDist float64
	ed      distance.EditDistance
}

// NewAsciiTester returns a tester with the given threshold ratio.
// A non-positive minDist selects DefaultMinDist.
func NewAsciiTester(minDist float64) *AsciiTester {
	if minDist <= 0 {
		minDist = DefaultMinDist
	}
	return &AsciiTester{MinDist: minDist}
}

// IsMatch reports whether a and b are the same letters in a different
// enough arrangement:
//
//  1. identical raw text is not a match;
//  2. identical letter sequences (case/punctuation differences only) are not;
//  3. filtered distance / runes(b) below MinDist is a minor edit, not a match;
//  4. otherwise it is a match iff word-sorted distance / runes(sorted b)
//     exceeds MinDist.
func (t *AsciiTester) IsMatch(a, b string) bool {
	if a == b {
		return false
	}
	fa, fb := fingerprint.Filtered(a), fingerprint.Filtered(b)
	if fa == fb {
		return false
	}
	d1 := t.ed.Distance(fa, fb)
	if ratio(d1, b) < t.MinDist {
		return false
	}

	sa, sb := fingerprint.SortedWords(a), fingerprint.SortedWords(b)
	d2 := t.ed.Distance(sa, sb)
	return ratio(d2, sb) > t.MinDist
}

// ratio divides by the rune count of s. An empty s gives +Inf (or NaN when
// d is also zero), and both compare the way IEEE floats do.
func ratio(d int, s string) float64 {
	return float64(d) / float64(utf8.RuneCountInString(s))
}
