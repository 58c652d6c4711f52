package suggest

import (
	"fmt"
	"sort"
)

// BinarySearch is the sorted-array engine: terms live in one
// lexicographically sorted slice and prefix queries resolve to a
// contiguous range located by two boundary binary searches. No bounds,
// no pruning — the range scan through the candidate heap is already
// cheap, and the flat layout beats the trie on memory.
type BinarySearch struct {
	terms []Term
}

// NewBinarySearch builds the engine from terms, validating eagerly and
// copying the input before sorting so the caller's slice stays intact.
func NewBinarySearch(terms []Term) (*BinarySearch, error) {
	if err := validateTerms(terms); err != nil {
		return nil, err
	}
	sorted := make([]Term, len(terms))
	copy(sorted, terms)
	sort.Slice(sorted, func(i, j int) bool {
		return CompareWords(sorted[i], sorted[j]) < 0
	})
	return &BinarySearch{terms: sorted}, nil
}

// firstIndexOf returns the lowest index of terms comparing equal to key
// under cmp, or -1. The window invariant is terms[low] < key <=
// terms[high] with low starting one before the slice, so the loop makes
// at most 1 + log2(n) comparisons.
func firstIndexOf(terms []Term, key Term, cmp func(a, b Term) int) int {
	if len(terms) == 0 {
		return -1
	}
	low, high := -1, len(terms)-1
	for low+1 != high {
		mid := (low + high) / 2
		if cmp(terms[mid], key) < 0 {
			low = mid
		} else {
			high = mid
		}
	}
	if cmp(terms[high], key) == 0 {
		return high
	}
	return -1
}

// lastIndexOf is the mirror of firstIndexOf: highest index comparing
// equal to key under cmp, or -1, with the window invariant
// terms[low] <= key < terms[high] and high starting one past the slice.
func lastIndexOf(terms []Term, key Term, cmp func(a, b Term) int) int {
	if len(terms) == 0 {
		return -1
	}
	low, high := 0, len(terms)
	for low+1 != high {
		mid := (low + high) / 2
		if cmp(terms[mid], key) <= 0 {
			low = mid
		} else {
			high = mid
		}
	}
	if cmp(terms[low], key) == 0 {
		return low
	}
	return -1
}

// prefixRange returns the inclusive index range of words starting with
// prefix, or (-1, -1).
func (bs *BinarySearch) prefixRange(prefix string) (int, int) {
	key := Term{Word: prefix}
	cmp := func(a, b Term) int { return ComparePrefix(a, b, len(prefix)) }
	first := firstIndexOf(bs.terms, key, cmp)
	if first < 0 {
		return -1, -1
	}
	return first, lastIndexOf(bs.terms, key, cmp)
}

// TopMatches returns the k highest-weight words starting with prefix,
// heaviest first, by scanning the prefix range through the same bounded
// candidate heap the trie search uses.
func (bs *BinarySearch) TopMatches(prefix string, k int) ([]string, error) {
	if k < 0 {
		return nil, fmt.Errorf("%w: %d", ErrNegativeLimit, k)
	}
	if k == 0 {
		return []string{}, nil
	}
	first, last := bs.prefixRange(prefix)
	if first < 0 {
		return []string{}, nil
	}
	candidates := make(candidateHeap, 0, k+1)
	for i := first; i <= last; i++ {
		candidates.offer(bs.terms[i], k)
	}
	return candidates.drain(), nil
}

// TopMatch returns the single heaviest word starting with prefix, or ""
// when no word does. A strictly-greater scan over the lexicographically
// sorted range keeps the smallest word among tied maxima, the same tie
// rule the trie descent lands on.
func (bs *BinarySearch) TopMatch(prefix string) string {
	first, last := bs.prefixRange(prefix)
	if first < 0 {
		return ""
	}
	best := first
	for i := first + 1; i <= last; i++ {
		if bs.terms[i].Weight > bs.terms[best].Weight {
			best = i
		}
	}
	return bs.terms[best].Word
}

// WeightOf returns the weight stored for the exact word, or 0 when the
// word is absent. The first prefix match alone is not enough: a longer
// word sharing the prefix must not answer for a missing exact entry.
func (bs *BinarySearch) WeightOf(word string) float64 {
	key := Term{Word: word}
	cmp := func(a, b Term) int { return ComparePrefix(a, b, len(word)) }
	first := firstIndexOf(bs.terms, key, cmp)
	if first < 0 || bs.terms[first].Word != word {
		return 0
	}
	return bs.terms[first].Weight
}
