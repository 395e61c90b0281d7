package distance

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistance_ReferenceValues(t *testing.T) {
	// Values computed with a reference implementation.
	var ed EditDistance
	cases := []struct {
		a, b string
		want int
	}{
		{"hello", "bellow", 2},
		{"my friend", "remains", 7},
		{"this", "that", 2},
		{"heaven", "is a place on earth", 16},
		{"a fundamentally", "non-creative person", 17},
		{"is writing", "these test cases", 13},
		{"kitten", "sitting", 3},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ed.Distance(tc.a, tc.b), "%q -> %q", tc.a, tc.b)
	}
}

func TestDistance_EmptyStrings(t *testing.T) {
	var ed EditDistance
	assert.Equal(t, 3, ed.Distance("", "abc"))
	assert.Equal(t, 3, ed.Distance("abc", ""))
	assert.Equal(t, 0, ed.Distance("", ""))
}

func TestDistance_Identity(t *testing.T) {
	var ed EditDistance
	for _, s := range []string{"", "a", "tomorrow is mine", "日本語", "Iâ€™m so annoyed"} {
		assert.Equal(t, 0, ed.Distance(s, s), "%q", s)
	}
}

func TestDistance_CountsRunesNotBytes(t *testing.T) {
	// é is two bytes but one substitution.
	var ed EditDistance
	assert.Equal(t, 1, ed.Distance("héllo", "hello"))
	assert.Equal(t, 1, ed.Distance("日本語", "日本"))
}

func TestDistance_Symmetric(t *testing.T) {
	var ed EditDistance
	pairs := [][2]string{
		{"mine istomorrow", "tomorrow is mine"},
		{"Go for it. Fuck.", "fUCK I forgot"},
		{"Feel so unfair", "I suffer alone..."},
	}
	for _, p := range pairs {
		assert.Equal(t, ed.Distance(p[0], p[1]), ed.Distance(p[1], p[0]))
	}
}

func TestDistance_ScratchGrowsMonotonically(t *testing.T) {
	var ed EditDistance
	ed.Distance("a fundamentally", "non-creative person")
	big := ed.Capacity()
	assert.Equal(t, 16*20, big)

	// A smaller call reuses the same matrix and still computes correctly.
	assert.Equal(t, 2, ed.Distance("this", "that"))
	assert.Equal(t, big, ed.Capacity(), "matrix must never shrink")

	ed.Distance("heaven is a place on earth", "is a place on earth heaven")
	assert.Greater(t, ed.Capacity(), big)
}

func BenchmarkDistance(b *testing.B) {
	inputs := [][2]string{
		{"I’m so annoyed by him", "Hi my name is nobody"},
		{"Go for it. Fuck.", "fUCK I forgot"},
		{"mine istomorrow", "tomorrow is mine"},
		{"That shirt hurted.", "its the hard truth"},
		{"My cheeks need clappin", "Check my pinned please!"},
		{"Feel so unfair", "I suffer alone..."},
	}
	var ed EditDistance
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		for _, in := range inputs {
			ed.Distance(in[0], in[1])
		}
	}
}
