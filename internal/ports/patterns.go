package ports

// PatternMatcher finds literal substrings in content using multi-pattern
// matching (Aho-Corasick). A single pass over the content checks every
// pattern at once, O(n + m + z) for n=content length, m=total pattern
// length, z=number of matches.
//
// The tweet filters use it as a blocklist (e.g. shortened links).
type PatternMatcher interface {
	// Match returns the distinct patterns found in content, or nil.
	// Content is matched as-is (caller normalizes case).
	Match(content string) []string

	// Contains reports whether any pattern occurs in content.
	Contains(content string) bool
}
