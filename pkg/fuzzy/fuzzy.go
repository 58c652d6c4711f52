// Package fuzzy proposes corrections for prefixes that match nothing,
// so a fat-fingered "wrold" can still complete as "world" when the
// caller opts in. Candidates are ranked by edit distance; dictionary
// weight only breaks distance ties.
package fuzzy

import "strings"

// maxEditDistance caps how far a correction may stray from the input.
// Two edits already covers transpositions; anything further is a
// different word, not a typo.
const maxEditDistance = 2

// Matcher suggests replacements for mistyped words from a weighted
// dictionary. Lookup is a linear scan bounded by a first-letter check
// and a length window, which keeps it fast enough for the sizes the
// engines index. Case folds for ASCII only.
type Matcher struct {
	words   []string
	weights map[string]float64
}

// NewMatcher creates an empty matcher; feed it with AddWord.
func NewMatcher() *Matcher {
	return &Matcher{weights: make(map[string]float64)}
}

// AddWord registers word for correction candidates. Re-adding a word
// only updates its weight.
func (m *Matcher) AddWord(word string, weight float64) {
	if _, known := m.weights[word]; !known {
		m.words = append(m.words, word)
	}
	m.weights[word] = weight
}

// Len reports how many words the matcher knows.
func (m *Matcher) Len() int {
	return len(m.words)
}

// Correct returns the most plausible replacement for input and whether
// one was found. Inputs shorter than two bytes and inputs that already
// exist in the dictionary come back unchanged (lowercased when the hit
// was case-folded). Among candidates inside the edit allowance the
// closest wins; equal distances resolve to the heavier word, then the
// lexicographically smaller one, so corrections are reproducible.
func (m *Matcher) Correct(input string) (string, bool) {
	if len(input) < 2 {
		return input, false
	}
	lower := strings.ToLower(input)
	if _, exact := m.weights[lower]; exact {
		return lower, false
	}

	limit := editAllowance(len(lower))
	best := ""
	bestDist := 0
	for _, word := range m.words {
		// A wrong first letter is almost never a prefix typo worth
		// chasing; skipping those keeps the scan cheap.
		if word == "" || !foldEq(word[0], lower[0]) {
			continue
		}
		// Length difference lower-bounds the edit distance.
		if diff := len(word) - len(lower); diff > limit || diff < -limit {
			continue
		}
		cand := strings.ToLower(word)
		dist := levenshteinDistance(lower, cand)
		if dist > limit {
			continue
		}
		if dist == 0 {
			return cand, false
		}
		if best == "" || dist < bestDist || (dist == bestDist && m.better(word, best)) {
			best = word
			bestDist = dist
		}
	}
	if best == "" {
		return input, false
	}
	return strings.ToLower(best), true
}

// better reports whether a should replace b among equal-distance
// candidates: heavier dictionary weight first, then lexicographic
// order.
func (m *Matcher) better(a, b string) bool {
	if wa, wb := m.weights[a], m.weights[b]; wa != wb {
		return wa > wb
	}
	return a < b
}

// editAllowance scales the tolerated edit distance with input length.
// Short inputs carry too little signal to guess from, so they only
// match exactly; mid-length inputs allow one slip; longer ones get the
// full budget.
func editAllowance(n int) int {
	switch {
	case n <= 2:
		return 0
	case n <= 4:
		return 1
	default:
		return maxEditDistance
	}
}

// levenshteinDistance computes the byte-level edit distance between a
// and b with the usual two-row dynamic program. Bytes are enough here:
// the dictionary pipeline folds words to ASCII before they reach the
// matcher.
func levenshteinDistance(a, b string) int {
	if a == b {
		return 0
	}
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

// foldEq compares two bytes case-insensitively in ASCII.
func foldEq(a, b byte) bool {
	if 'A' <= a && a <= 'Z' {
		a += 'a' - 'A'
	}
	if 'A' <= b && b <= 'Z' {
		b += 'a' - 'A'
	}
	return a == b
}
