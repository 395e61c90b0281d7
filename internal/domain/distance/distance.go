// Package distance computes Levenshtein edit distance over Unicode code
// points with a reusable scratch matrix.
package distance

// EditDistance computes edit distances while reusing one scratch matrix
// across calls. The matrix only ever grows, so steady-state calls do not
// allocate. The zero value is ready to use. Not safe for concurrent use.
type EditDistance struct {
	matrix []int
	ra, rb []rune
}

// Distance returns the minimum number of single-rune insertions, deletions,
// or substitutions that turn a into b.
func (e *EditDistance) Distance(a, b string) int {
	e.ra = appendRunes(e.ra[:0], a)
	e.rb = appendRunes(e.rb[:0], b)
	ra, rb := e.ra, e.rb

	cols := len(rb) + 1
	need := (len(ra) + 1) * cols
	if len(e.matrix) < need {
		e.matrix = append(e.matrix, make([]int, need-len(e.matrix))...)
	}
	m := e.matrix

	// First column and first row: distance from/to the empty prefix.
	for i := 0; i <= len(ra); i++ {
		m[i*cols] = i
	}
	for j := 1; j < cols; j++ {
		m[j] = j
	}

	for i, ca := range ra {
		row := (i + 1) * cols
		prev := i * cols
		for j, cb := range rb {
			cost := 1
			if ca == cb {
				cost = 0
			}
			best := m[prev+j+1] + 1 // deletion
			if ins := m[row+j] + 1; ins < best {
				best = ins
			}
			if sub := m[prev+j] + cost; sub < best {
				best = sub
			}
			m[row+j+1] = best
		}
	}
	return m[len(ra)*cols+len(rb)]
}

// Capacity returns the number of matrix cells currently allocated.
func (e *EditDistance) Capacity() int {
	return len(e.matrix)
}

func appendRunes(dst []rune, s string) []rune {
	for _, r := range s {
		dst = append(dst, r)
	}
	return dst
}
