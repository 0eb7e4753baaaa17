package rbtree

import (
	"keyedkit/pkg/slab"
)

// Iterator allows scanning tree elements in sort order.
//
// Erasing the element an iterator points to invalidates it. Erasing a
// neighbour with two children may also move the payload under an iterator,
// since the neighbour takes its predecessor's key and value.
type Iterator struct {
	tree *RBTree
	node slab.Ref
}

// Min returns an iterator to the smallest key, or an invalid iterator if the tree is empty.
func (tree *RBTree) Min() Iterator {
	if tree.root == slab.Nil {
		return Iterator{tree: tree}
	}
	return Iterator{tree: tree, node: tree.minimum(tree.root)}
}

// Max returns an iterator to the largest key, or an invalid iterator if the tree is empty.
func (tree *RBTree) Max() Iterator {
	if tree.root == slab.Nil {
		return Iterator{tree: tree}
	}
	return Iterator{tree: tree, node: tree.maximum(tree.root)}
}

// Seek returns an iterator to the smallest key not less than key.
func (tree *RBTree) Seek(key []byte) Iterator {
	tree.layout.CheckKey(key)
	best := slab.Nil
	for n := tree.root; n != slab.Nil; {
		c := tree.cmp(key, tree.key(n))
		if c == 0 {
			return Iterator{tree: tree, node: n}
		}
		if c < 0 {
			best = n
			n = tree.left(n)
		} else {
			n = tree.right(n)
		}
	}
	return Iterator{tree: tree, node: best}
}

// Valid reports whether the iterator points at an element.
func (iter Iterator) Valid() bool {
	return iter.node != slab.Nil
}

// Equal checks for the underlying nodes equality.
func (iter Iterator) Equal(other Iterator) bool {
	return iter.tree == other.tree && iter.node == other.node
}

// Next returns an iterator to the successor of the current element,
// invalid past the largest key.
func (iter Iterator) Next() Iterator {
	iter.mustBeValid()
	return Iterator{tree: iter.tree, node: iter.tree.successor(iter.node)}
}

// Prev returns an iterator to the predecessor of the current element,
// invalid before the smallest key.
func (iter Iterator) Prev() Iterator {
	iter.mustBeValid()
	return Iterator{tree: iter.tree, node: iter.tree.predecessor(iter.node)}
}

// Key returns the current key. The slice aliases node storage.
func (iter Iterator) Key() []byte {
	iter.mustBeValid()
	return iter.tree.key(iter.node)
}

// Value returns the current value. The slice aliases node storage, so
// writing to it updates the tree.
func (iter Iterator) Value() []byte {
	iter.mustBeValid()
	return iter.tree.value(iter.node)
}

func (iter Iterator) mustBeValid() {
	if iter.node == slab.Nil {
		panic(ErrInvalidIterator)
	}
}
