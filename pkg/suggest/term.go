package suggest

import "strings"

// Term is one dictionary entry: a word and its non-negative weight.
type Term struct {
	Word   string
	Weight float64
}

// CompareWords orders terms lexicographically by word.
func CompareWords(a, b Term) int {
	return strings.Compare(a.Word, b.Word)
}

// CompareWeights orders terms by ascending weight.
func CompareWeights(a, b Term) int {
	switch {
	case a.Weight < b.Weight:
		return -1
	case a.Weight > b.Weight:
		return 1
	}
	return 0
}

// ComparePrefix orders terms by the first length bytes of their words
// only; terms sharing those bytes compare equal. Words shorter than
// length take part with what they have, so "bat" sorts before any
// longer word starting with "bat" and compares equal to it when
// length <= 3. The sorted-array engine uses this to locate the range
// of words carrying a prefix.
func ComparePrefix(a, b Term, length int) int {
	wa, wb := a.Word, b.Word
	if len(wa) > length {
		wa = wa[:length]
	}
	if len(wb) > length {
		wb = wb[:length]
	}
	return strings.Compare(wa, wb)
}
