// Package suggest is the core: it indexes weighted words and answers
// ranked prefix-completion queries. Three engines implement the same
// contract — a bound-pruning trie (the default), a sorted array with
// boundary binary searches, and a brute-force radix scan kept around as
// the reference the clever ones are checked against.
package suggest

import (
	"errors"
	"fmt"
	"math"
)

// Backend names an engine implementation.
type Backend string

const (
	// BackendTrie is the pruning trie engine, the default.
	BackendTrie Backend = "trie"
	// BackendBinary is the sorted-array engine.
	BackendBinary Backend = "binary"
	// BackendBrute is the scan-everything reference engine.
	BackendBrute Backend = "brute"
)

// Contract violations surfaced by constructors and queries. These are
// programming or input errors, never operational faults; callers match
// them with errors.Is.
var (
	ErrNilTerms       = errors.New("suggest: nil term sequence")
	ErrNegativeWeight = errors.New("suggest: negative weight")
	ErrDuplicateWord  = errors.New("suggest: duplicate word")
	ErrNegativeLimit  = errors.New("suggest: negative limit")
	ErrUnknownBackend = errors.New("suggest: unknown backend")
)

// Autocompleter is the query contract every engine satisfies.
//
// TopMatches returns at most k words starting with prefix, heaviest
// first; k = 0 or an unmatched prefix yields an empty slice and k < 0
// is an error. TopMatch returns the single heaviest completion or ""
// when there is none. WeightOf reports the weight stored for the exact
// word, 0 when absent (a word stored with weight 0 is indistinguishable
// from a missing one). The empty prefix matches the whole dictionary.
//
// Engines are immutable after construction and safe for concurrent
// readers. Anything that mutates one afterwards (the trie's Add) must
// be serialized externally; Completer is the wrapper that does so.
type Autocompleter interface {
	TopMatches(prefix string, k int) ([]string, error)
	TopMatch(prefix string) string
	WeightOf(word string) float64
}

// NewEngine constructs the named backend from terms. An empty backend
// name selects the trie.
func NewEngine(backend Backend, terms []Term) (Autocompleter, error) {
	switch backend {
	case BackendTrie, "":
		return NewTrie(terms)
	case BackendBinary:
		return NewBinarySearch(terms)
	case BackendBrute:
		return NewBrute(terms)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
}

func validateWeight(word string, weight float64) error {
	if weight < 0 || math.IsNaN(weight) {
		return fmt.Errorf("%w: %v for %q", ErrNegativeWeight, weight, word)
	}
	return nil
}

// validateTerms applies the construction contract: the slice must be
// non-nil (empty is fine), every weight non-negative and every word
// unique.
func validateTerms(terms []Term) error {
	if terms == nil {
		return ErrNilTerms
	}
	seen := make(map[string]struct{}, len(terms))
	for _, t := range terms {
		if err := validateWeight(t.Word, t.Weight); err != nil {
			return err
		}
		if _, dup := seen[t.Word]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateWord, t.Word)
		}
		seen[t.Word] = struct{}{}
	}
	return nil
}
