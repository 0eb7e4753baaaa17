package rbtree

import (
	"encoding/binary"

	"keyedkit/pkg/slab"
)

// Internal node attribute accessors. Every node lives in the tree's slab and
// is addressed by its ref; slab.Nil stands in for the black leaves.

func (tree *RBTree) record(n slab.Ref) []byte {
	return tree.slab.Bytes(n)
}

func (tree *RBTree) link(n slab.Ref, offset int) slab.Ref {
	return slab.Ref(binary.LittleEndian.Uint32(tree.record(n)[offset:]))
}

func (tree *RBTree) setLink(n slab.Ref, offset int, to slab.Ref) {
	binary.LittleEndian.PutUint32(tree.record(n)[offset:], uint32(to))
}

func (tree *RBTree) parent(n slab.Ref) slab.Ref { return tree.link(n, PARENT_OFFSET) }
func (tree *RBTree) left(n slab.Ref) slab.Ref   { return tree.link(n, LEFT_OFFSET) }
func (tree *RBTree) right(n slab.Ref) slab.Ref  { return tree.link(n, RIGHT_OFFSET) }

func (tree *RBTree) setParent(n, to slab.Ref) { tree.setLink(n, PARENT_OFFSET, to) }
func (tree *RBTree) setLeft(n, to slab.Ref)   { tree.setLink(n, LEFT_OFFSET, to) }
func (tree *RBTree) setRight(n, to slab.Ref)  { tree.setLink(n, RIGHT_OFFSET, to) }

// child returns the left child if isLeft, else the right child.
func (tree *RBTree) child(n slab.Ref, isLeft bool) slab.Ref {
	if isLeft {
		return tree.left(n)
	}
	return tree.right(n)
}

func (tree *RBTree) setChild(n slab.Ref, isLeft bool, to slab.Ref) {
	if isLeft {
		tree.setLeft(n, to)
	} else {
		tree.setRight(n, to)
	}
}

// colour treats Nil as BLACK.
func (tree *RBTree) colour(n slab.Ref) byte {
	if n == slab.Nil {
		return BLACK
	}
	return tree.record(n)[COLOUR_OFFSET]
}

func (tree *RBTree) setColour(n slab.Ref, c byte) {
	tree.record(n)[COLOUR_OFFSET] = c
}

func (tree *RBTree) isRed(n slab.Ref) bool {
	return tree.colour(n) == RED
}

// payload returns the key and value bytes of a node.
func (tree *RBTree) payload(n slab.Ref) []byte {
	return tree.record(n)[HEADER_SIZE:]
}

func (tree *RBTree) key(n slab.Ref) []byte {
	rec := tree.record(n)
	end := HEADER_SIZE + tree.layout.KeySize
	return rec[HEADER_SIZE:end:end]
}

func (tree *RBTree) value(n slab.Ref) []byte {
	rec := tree.record(n)
	start := HEADER_SIZE + tree.layout.KeySize
	return rec[start:len(rec):len(rec)]
}

// minimum returns the leftmost node of the subtree rooted at n.
func (tree *RBTree) minimum(n slab.Ref) slab.Ref {
	for l := tree.left(n); l != slab.Nil; l = tree.left(n) {
		n = l
	}
	return n
}

// maximum returns the rightmost node of the subtree rooted at n.
func (tree *RBTree) maximum(n slab.Ref) slab.Ref {
	for r := tree.right(n); r != slab.Nil; r = tree.right(n) {
		n = r
	}
	return n
}

// successor returns the smallest node larger than n, or Nil.
func (tree *RBTree) successor(n slab.Ref) slab.Ref {
	if r := tree.right(n); r != slab.Nil {
		return tree.minimum(r)
	}
	for p := tree.parent(n); p != slab.Nil; p = tree.parent(n) {
		if tree.left(p) == n {
			return p
		}
		n = p
	}
	return slab.Nil
}

// predecessor returns the largest node smaller than n, or Nil.
func (tree *RBTree) predecessor(n slab.Ref) slab.Ref {
	if l := tree.left(n); l != slab.Nil {
		return tree.maximum(l)
	}
	for p := tree.parent(n); p != slab.Nil; p = tree.parent(n) {
		if tree.right(p) == n {
			return p
		}
		n = p
	}
	return slab.Nil
}
