package suggest

// Trie is the primary engine: a byte-keyed prefix tree whose nodes
// cache the best terminal weight below them. TopMatches runs a
// best-first search over those bounds (search.go); the other lookups
// are plain descents.
type Trie struct {
	root *node
	size int
}

// NewTrie builds a trie engine from terms, validating the whole input
// eagerly before the first insertion.
func NewTrie(terms []Term) (*Trie, error) {
	if err := validateTerms(terms); err != nil {
		return nil, err
	}
	t := &Trie{root: newNode(0, nil)}
	for _, term := range terms {
		if err := t.Add(term.Word, term.Weight); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Add inserts word with weight, or overwrites the weight when word is
// already present. Every node on the path, root and final node
// included, raises its subtreeMax to at least weight. Bounds are never
// lowered: re-inserting with a smaller weight leaves stale bounds
// behind, which stay admissible (they over-estimate) and so cost
// pruning efficiency, not correctness. TopMatch's greedy descent is
// the one caller that can be led astray by that; see its doc.
//
// Add is not safe against concurrent readers.
func (t *Trie) Add(word string, weight float64) error {
	if err := validateWeight(word, weight); err != nil {
		return err
	}
	cur := t.root
	for i := 0; i < len(word); i++ {
		if weight > cur.subtreeMax {
			cur.subtreeMax = weight
		}
		b := word[i]
		child := cur.children.next(b)
		if child == nil {
			child = newNode(b, cur)
			cur.children = cur.children.add(child)
		}
		cur = child
	}
	if weight > cur.subtreeMax {
		cur.subtreeMax = weight
	}
	if !cur.terminal {
		t.size++
	}
	cur.terminal = true
	cur.word = word
	cur.weight = weight
	return nil
}

// Len returns the number of distinct words stored.
func (t *Trie) Len() int {
	return t.size
}

// WeightOf returns the weight stored for the exact word, or 0 when the
// word is absent.
func (t *Trie) WeightOf(word string) float64 {
	n := t.descend(word)
	if n == nil || !n.terminal {
		return 0
	}
	return n.weight
}

// descend walks the exact byte path for prefix and returns the node it
// ends on, or nil as soon as a step is missing. O(len(prefix)).
func (t *Trie) descend(prefix string) *node {
	cur := t.root
	for i := 0; i < len(prefix); i++ {
		cur = cur.children.next(prefix[i])
		if cur == nil {
			return nil
		}
	}
	return cur
}
