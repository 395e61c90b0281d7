// Package ahocorasick provides multi-pattern string matching using an Aho-Corasick automaton.
// It wraps the petar-dambovaliev/aho-corasick library for O(n + m + z) matching.
package ahocorasick

import (
	aho "github.com/petar-dambovaliev/aho-corasick"
)

// Matcher implements ports.PatternMatcher. The stream filters use it as a
// substring blocklist. Matching is case-sensitive.
type Matcher struct {
	automaton aho.AhoCorasick
	patterns  []string
}

// NewMatcher compiles the automaton for patterns. Empty patterns are dropped.
func NewMatcher(patterns []string) *Matcher {
	p := make([]string, 0, len(patterns))
	for _, s := range patterns {
		if s != "" {
			p = append(p, s)
		}
	}
	m := &Matcher{patterns: p}
	if len(p) > 0 {
		builder := aho.NewAhoCorasickBuilder(aho.Opts{
			DFA: true,
		})
		m.automaton = builder.Build(p)
	}
	return m
}

// Match returns the distinct patterns found in content, in order of first
// occurrence.
func (m *Matcher) Match(content string) []string {
	if len(m.patterns) == 0 {
		return nil
	}
	iter := m.automaton.IterOverlappingByte([]byte(content))
	seen := make(map[int]bool)
	var result []string
	for next := iter.Next(); next != nil; next = iter.Next() {
		idx := next.Pattern()
		if !seen[idx] {
			seen[idx] = true
			result = append(result, m.patterns[idx])
		}
	}
	return result
}

// Contains reports whether any pattern occurs in content.
func (m *Matcher) Contains(content string) bool {
	if len(m.patterns) == 0 {
		return false
	}
	return len(m.automaton.FindAll(content)) > 0
}

// Patterns returns the compiled patterns.
func (m *Matcher) Patterns() []string {
	out := make([]string, len(m.patterns))
	copy(out, m.patterns)
	return out
}
