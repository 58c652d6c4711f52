package suggest

import (
	"fmt"
	"sort"

	"github.com/tchap/go-patricia/v2/patricia"
)

// Brute is the reference engine: a radix trie scanned in full for every
// query, no bounds, no pruning. It exists to cross-check the clever
// engines and is perfectly serviceable for small dictionaries.
type Brute struct {
	trie *patricia.Trie
}

// NewBrute builds the engine from terms after eager validation.
func NewBrute(terms []Term) (*Brute, error) {
	if err := validateTerms(terms); err != nil {
		return nil, err
	}
	trie := patricia.NewTrie()
	for _, term := range terms {
		trie.Insert(patricia.Prefix(term.Word), term.Weight)
	}
	return &Brute{trie: trie}, nil
}

// TopMatches collects every word under prefix, sorts by weight
// descending with lexicographic ties, and truncates to k.
func (b *Brute) TopMatches(prefix string, k int) ([]string, error) {
	if k < 0 {
		return nil, fmt.Errorf("%w: %d", ErrNegativeLimit, k)
	}
	if k == 0 {
		return []string{}, nil
	}
	matches := make([]Term, 0, 64)
	b.trie.VisitSubtree(patricia.Prefix(prefix), func(p patricia.Prefix, item patricia.Item) error {
		matches = append(matches, Term{Word: string(p), Weight: item.(float64)})
		return nil
	})
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Weight != matches[j].Weight {
			return matches[i].Weight > matches[j].Weight
		}
		return matches[i].Word < matches[j].Word
	})
	if len(matches) > k {
		matches = matches[:k]
	}
	words := make([]string, len(matches))
	for i, m := range matches {
		words[i] = m.Word
	}
	return words, nil
}

// TopMatch returns the heaviest word under prefix, lexicographically
// smallest on ties, or "".
func (b *Brute) TopMatch(prefix string) string {
	found := false
	var best Term
	b.trie.VisitSubtree(patricia.Prefix(prefix), func(p patricia.Prefix, item patricia.Item) error {
		t := Term{Word: string(p), Weight: item.(float64)}
		if !found || t.Weight > best.Weight || (t.Weight == best.Weight && t.Word < best.Word) {
			best = t
			found = true
		}
		return nil
	})
	if !found {
		return ""
	}
	return best.Word
}

// WeightOf returns the weight stored for the exact word, or 0.
func (b *Brute) WeightOf(word string) float64 {
	item := b.trie.Get(patricia.Prefix(word))
	if item == nil {
		return 0
	}
	return item.(float64)
}
