package suggest

import "sort"

// Fan-out above this promotes a node's sparse child slice to a dense
// 256-slot table, same scheme radix tries use for byte dispatch.
const denseChildThreshold = 16

// node is one trie vertex. The parent pointer is a non-owning back
// reference (children own nothing upward); word and weight are only
// meaningful on terminal nodes. subtreeMax caches the best terminal
// weight reachable at or below the node and is the bound every query
// prunes on.
type node struct {
	ch         byte
	depth      int
	parent     *node
	children   childList
	terminal   bool
	word       string
	weight     float64
	subtreeMax float64
}

func newNode(ch byte, parent *node) *node {
	n := &node{ch: ch, parent: parent, children: newSparseChildList()}
	if parent != nil {
		n.depth = parent.depth + 1
	}
	return n
}

// childList is the ordered byte-keyed child container. walk visits in
// ascending byte order in both implementations, which keeps every
// traversal in this package deterministic. Callers only add bytes that
// next reported missing.
type childList interface {
	length() int
	next(b byte) *node
	add(child *node) childList
	walk(fn func(*node) bool)
}

type sparseChildList struct {
	children []*node
}

func newSparseChildList() childList {
	return &sparseChildList{children: make([]*node, 0, 4)}
}

func (l *sparseChildList) length() int {
	return len(l.children)
}

func (l *sparseChildList) next(b byte) *node {
	for _, c := range l.children {
		if c.ch == b {
			return c
		}
		if c.ch > b {
			return nil
		}
	}
	return nil
}

func (l *sparseChildList) add(child *node) childList {
	if len(l.children) >= denseChildThreshold {
		return newDenseChildList(l, child)
	}
	i := sort.Search(len(l.children), func(i int) bool {
		return l.children[i].ch >= child.ch
	})
	l.children = append(l.children, nil)
	copy(l.children[i+1:], l.children[i:])
	l.children[i] = child
	return l
}

func (l *sparseChildList) walk(fn func(*node) bool) {
	for _, c := range l.children {
		if !fn(c) {
			return
		}
	}
}

type denseChildList struct {
	numChildren int
	children    [256]*node
}

func newDenseChildList(sparse *sparseChildList, child *node) childList {
	d := &denseChildList{}
	for _, c := range sparse.children {
		d.children[c.ch] = c
	}
	d.children[child.ch] = child
	d.numChildren = len(sparse.children) + 1
	return d
}

func (l *denseChildList) length() int {
	return l.numChildren
}

func (l *denseChildList) next(b byte) *node {
	return l.children[b]
}

func (l *denseChildList) add(child *node) childList {
	if l.children[child.ch] == nil {
		l.numChildren++
	}
	l.children[child.ch] = child
	return l
}

func (l *denseChildList) walk(fn func(*node) bool) {
	for i := 0; i < 256; i++ {
		if c := l.children[i]; c != nil {
			if !fn(c) {
				return
			}
		}
	}
}
