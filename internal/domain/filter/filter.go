// Package filter holds the predicates that decide which stream items are
// worth fingerprinting. A filter returning false drops the item before it
// reaches the store.
package filter

import (
	"github.com/corey/anagramatron/internal/domain/fingerprint"
	"github.com/corey/anagramatron/internal/ports"
)

// MinLetterShare is the fraction of characters that must be ASCII letters
// for Letterish to pass.
const MinLetterShare = 0.65

// DefaultMinLength is the shortest plain-text line considered.
const DefaultMinLength = 16

// ShortLinkPrefix is the default blocklist entry for NoShortLinks.
const ShortLinkPrefix = "https://t.co"

// Func reports whether item should be kept.
type Func[T any] func(item T) bool

// All passes items that pass every filter, checked in order.
func All[T any](filters ...Func[T]) Func[T] {
	return func(item T) bool {
		for _, f := range filters {
			if !f(item) {
				return false
			}
		}
		return true
	}
}

// NoURLs drops tweets with link entities.
func NoURLs(t *ports.Tweet) bool { return len(t.Entities.URLs) == 0 }

// NoMentions drops tweets that mention another account.
func NoMentions(t *ports.Tweet) bool { return len(t.Entities.UserMentions) == 0 }

// English keeps tweets tagged "en".
func English(t *ports.Tweet) bool { return t.Lang == "en" }

// NoShortLinks drops items whose text contains any blocked pattern. Links
// sometimes survive in the body without a matching entity.
func NoShortLinks[T ports.Item](m ports.PatternMatcher) Func[T] {
	return func(item T) bool { return !m.Contains(item.Text()) }
}

// Letterish keeps items whose text is mostly ASCII letters.
func Letterish[T ports.Item](item T) bool {
	return LetterShare(item.Text()) >= MinLetterShare
}

// LetterShare returns ASCII letters over characters in text. Empty text
// gives NaN, which fails every comparison.
func LetterShare(text string) float64 {
	total, letters := 0, 0
	for _, r := range text {
		total++
		if fingerprint.IsASCIILetter(r) {
			letters++
		}
	}
	return float64(letters) / float64(total)
}

// MinLength keeps items whose text is at least n bytes.
func MinLength[T ports.Item](n int) Func[T] {
	return func(item T) bool { return len(item.Text()) >= n }
}

// TweetDefaults is the full tweet filter chain: no mentions, no URL
// entities, English, no blocked links in the body, mostly letters.
func TweetDefaults(blocklist ports.PatternMatcher) Func[*ports.Tweet] {
	return All[*ports.Tweet](
		NoMentions,
		NoURLs,
		English,
		NoShortLinks[*ports.Tweet](blocklist),
		Letterish[*ports.Tweet],
	)
}

// LineDefaults keeps plain lines of at least minLength bytes.
func LineDefaults(minLength int) Func[ports.Line] {
	if minLength <= 0 {
		minLength = DefaultMinLength
	}
	return MinLength[ports.Line](minLength)
}
