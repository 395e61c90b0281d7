// Package fingerprint turns item text into the letter histogram used as a
// candidate-store key, plus the two normalised views the verifier compares.
//
// Only ASCII letters count. Everything else (digits, punctuation, emoji,
// letters outside a-z) is stripped before comparison.
package fingerprint

import (
	"sort"
	"strings"

	"github.com/corey/anagramatron/internal/ports"
)

// IsASCIILetter reports whether r is in a-z or A-Z.
func IsASCIILetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

// Of returns the case-folded ASCII letter histogram of text. Text with no
// letters yields the zero fingerprint, which is a valid bucket key.
func Of(text string) ports.Fingerprint {
	var fp ports.Fingerprint
	for i := 0; i < len(text); i++ {
		// Multi-byte UTF-8 sequences never contain ASCII bytes, so a byte
		// scan sees exactly the ASCII letters.
		c := text[i]
		switch {
		case c >= 'a' && c <= 'z':
			fp[c-'a']++
		case c >= 'A' && c <= 'Z':
			fp[c-'A']++
		}
	}
	return fp
}

// Filtered lowercases text and drops every non-letter, keeping letter order.
//
//	"Tomorrow, is mine!" -> "tomorrowismine"
func Filtered(text string) string {
	var sb strings.Builder
	sb.Grow(len(text))
	appendFiltered(&sb, text)
	return sb.String()
}

// SortedWords splits text on whitespace, filters each word like Filtered,
// sorts the words and joins them with single spaces. Words that filter to
// nothing are kept as empty entries.
//
//	"tomorrow is mine" -> "is mine tomorrow"
func SortedWords(text string) string {
	fields := strings.Fields(text)
	words := make([]string, len(fields))
	for i, f := range fields {
		words[i] = Filtered(f)
	}
	sort.Strings(words)
	return strings.Join(words, " ")
}

func appendFiltered(sb *strings.Builder, text string) {
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c >= 'a' && c <= 'z':
			sb.WriteByte(c)
		case c >= 'A' && c <= 'Z':
			sb.WriteByte(c + ('a' - 'A'))
		}
	}
}
