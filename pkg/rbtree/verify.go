package rbtree

import (
	"fmt"

	"keyedkit/pkg/slab"
)

// IsRBTree checks the red-black properties of a tree and returns its black
// height: a black root, no red node with a red child, the same number of
// black nodes on every root-to-leaf path, consistent parent links, strictly
// increasing in-order keys, and a node count matching Size.
func IsRBTree(tree *RBTree) (blackHeight int, err error) {
	if tree.root == slab.Nil {
		if tree.count != 0 {
			return 0, fmt.Errorf("%w: empty tree reports %d nodes", ErrInvariant, tree.count)
		}
		return 0, nil
	}
	if tree.colour(tree.root) != BLACK {
		return 0, fmt.Errorf("%w: root is red", ErrInvariant)
	}
	if p := tree.parent(tree.root); p != slab.Nil {
		return 0, fmt.Errorf("%w: root has parent %d", ErrInvariant, p)
	}
	nodes := 0
	blackHeight, err = tree.isRBTree(tree.root, nil, nil, &nodes)
	if err != nil {
		return 0, err
	}
	if nodes != tree.count {
		return 0, fmt.Errorf("%w: %d nodes reachable, count %d", ErrInvariant, nodes, tree.count)
	}
	if live := tree.slab.Live(); live != nodes {
		return 0, fmt.Errorf("%w: %d nodes reachable, %d slab records live", ErrInvariant, nodes, live)
	}
	return blackHeight, nil
}

// isRBTree checks the subtree at n, whose keys must lie strictly between lo
// and hi (nil bounds are open), and returns its black height.
func (tree *RBTree) isRBTree(n slab.Ref, lo, hi []byte, nodes *int) (int, error) {
	if n == slab.Nil {
		return 1, nil
	}
	*nodes++
	if *nodes > tree.count {
		return 0, fmt.Errorf("%w: more nodes reachable than count %d", ErrInvariant, tree.count)
	}
	key := tree.key(n)
	if lo != nil && tree.cmp(lo, key) >= 0 {
		return 0, fmt.Errorf("%w: key %x not above %x", ErrInvariant, key, lo)
	}
	if hi != nil && tree.cmp(key, hi) >= 0 {
		return 0, fmt.Errorf("%w: key %x not below %x", ErrInvariant, key, hi)
	}
	left, right := tree.left(n), tree.right(n)
	for _, c := range []slab.Ref{left, right} {
		if c == slab.Nil {
			continue
		}
		if p := tree.parent(c); p != n {
			return 0, fmt.Errorf("%w: node %d has parent %d, want %d", ErrInvariant, c, p, n)
		}
		if tree.isRed(n) && tree.isRed(c) {
			return 0, fmt.Errorf("%w: red node %d has red child %d", ErrInvariant, n, c)
		}
	}
	lh, err := tree.isRBTree(left, lo, key, nodes)
	if err != nil {
		return 0, err
	}
	rh, err := tree.isRBTree(right, key, hi, nodes)
	if err != nil {
		return 0, err
	}
	if lh != rh {
		return 0, fmt.Errorf("%w: node %d has black heights %d and %d", ErrInvariant, n, lh, rh)
	}
	if tree.colour(n) == BLACK {
		lh++
	}
	return lh, nil
}
