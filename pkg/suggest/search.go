package suggest

import (
	"container/heap"
	"fmt"
)

// nodeFrontier is the best-first frontier: a max-heap on subtreeMax.
// Ties pop deepest node first, then lowest edge byte. That exact order
// makes the k=1 search walk the same child chain TopMatch's greedy
// descent walks, so the two agree even when weights tie.
type nodeFrontier []*node

func (f nodeFrontier) Len() int { return len(f) }

func (f nodeFrontier) Less(i, j int) bool {
	a, b := f[i], f[j]
	if a.subtreeMax != b.subtreeMax {
		return a.subtreeMax > b.subtreeMax
	}
	if a.depth != b.depth {
		return a.depth > b.depth
	}
	return a.ch < b.ch
}

func (f nodeFrontier) Swap(i, j int) { f[i], f[j] = f[j], f[i] }

func (f *nodeFrontier) Push(x any) { *f = append(*f, x.(*node)) }

func (f *nodeFrontier) Pop() any {
	old := *f
	n := len(old)
	x := old[n-1]
	old[n-1] = nil
	*f = old[:n-1]
	return x
}

// candidateHeap holds the current top k as a min-heap on weight, so the
// weakest candidate is evicted in O(log k) when a better one arrives.
// Among equal weights the lexicographically larger word sits nearer the
// top and is evicted first, and the reversed drain therefore comes out
// weight-descending with ties in ascending word order.
type candidateHeap []Term

func (h candidateHeap) Len() int { return len(h) }

func (h candidateHeap) Less(i, j int) bool {
	if c := CompareWeights(h[i], h[j]); c != 0 {
		return c < 0
	}
	return h[i].Word > h[j].Word
}

func (h candidateHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *candidateHeap) Push(x any) { *h = append(*h, x.(Term)) }

func (h *candidateHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// offer inserts t and evicts the minimum when the heap grows past k.
func (h *candidateHeap) offer(t Term, k int) {
	heap.Push(h, t)
	if h.Len() > k {
		heap.Pop(h)
	}
}

// drain empties the heap into a weight-descending word list.
func (h *candidateHeap) drain() []string {
	out := make([]string, h.Len())
	for i := h.Len() - 1; i >= 0; i-- {
		out[i] = heap.Pop(h).(Term).Word
	}
	return out
}

// TopMatches returns the k highest-weight words starting with prefix,
// heaviest first.
//
// The search is branch and bound: the frontier always expands the node
// with the best subtree bound, terminals are offered to the bounded
// candidate heap, and the loop stops once the heap holds k words and
// the best unexplored bound cannot beat the weakest of them. subtreeMax
// never under-estimates, so stopping there provably loses nothing and
// large low-weight subtrees are never visited.
func (t *Trie) TopMatches(prefix string, k int) ([]string, error) {
	if k < 0 {
		return nil, fmt.Errorf("%w: %d", ErrNegativeLimit, k)
	}
	if k == 0 {
		return []string{}, nil
	}
	start := t.descend(prefix)
	if start == nil {
		return []string{}, nil
	}

	frontier := nodeFrontier{start}
	candidates := make(candidateHeap, 0, k+1)
	for len(frontier) > 0 {
		n := heap.Pop(&frontier).(*node)
		if n.terminal {
			candidates.offer(Term{Word: n.word, Weight: n.weight}, k)
		}
		n.children.walk(func(c *node) bool {
			heap.Push(&frontier, c)
			return true
		})
		if len(candidates) == k && len(frontier) > 0 && frontier[0].subtreeMax <= candidates[0].Weight {
			break
		}
	}
	return candidates.drain(), nil
}

// TopMatch returns the single heaviest word starting with prefix, or
// "" when no word does. Ties resolve to the lexicographically smallest
// of the heaviest words, matching TopMatches(prefix, 1).
//
// This is a linear descent, not a search: max-propagation guarantees
// some child realizes the current node's bound, so following the
// best-bound child (lowest byte on ties) until the node's own weight
// meets that bound lands on the answer. After a weight decrease the
// stale bound can steer the descent into the wrong subtree; the result
// is then still a valid completion, just not necessarily the heaviest.
func (t *Trie) TopMatch(prefix string) string {
	cur := t.descend(prefix)
	if cur == nil {
		return ""
	}
	for {
		best := bestChild(cur)
		if best == nil {
			break
		}
		if cur.terminal && cur.weight >= best.subtreeMax {
			break
		}
		cur = best
	}
	if !cur.terminal {
		return ""
	}
	return cur.word
}

// bestChild picks the child with the highest subtreeMax; walk order
// settles ties on the lowest byte.
func bestChild(n *node) *node {
	var best *node
	n.children.walk(func(c *node) bool {
		if best == nil || c.subtreeMax > best.subtreeMax {
			best = c
		}
		return true
	})
	return best
}
