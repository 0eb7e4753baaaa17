package rbtree

import (
	"fmt"
	"io"
	"strings"

	"keyedkit/pkg/config"
	"keyedkit/pkg/logging"
	"keyedkit/pkg/record"
	"keyedkit/pkg/slab"
)

// RBTree is a red-black tree of fixed-width byte records. Nodes are carved
// from a private slab allocator and linked by slab refs.
type RBTree struct {
	name   string
	layout record.Layout     // Key and value widths
	cmp    record.Comparator // Strict total order over keys
	slab   *slab.Allocator   // Node storage
	root   slab.Ref          // Root node, or Nil
	count  int               // Number of nodes
}

// Option configures an RBTree at construction.
type Option func(*RBTree)

// WithName labels the tree in log lines and printouts.
func WithName(name string) Option {
	return func(tree *RBTree) {
		tree.name = name
	}
}

// New returns an empty tree ordered by cmp, or by record.Bytes if cmp is nil.
func New(layout record.Layout, cmp record.Comparator, opts ...Option) *RBTree {
	layout.Validate()
	if cmp == nil {
		cmp = record.Bytes
	}
	tree := &RBTree{
		layout: layout,
		cmp:    cmp,
		slab:   slab.New(HEADER_SIZE + layout.KeySize + layout.ValueSize),
	}
	for _, opt := range opts {
		opt(tree)
	}
	return tree
}

// Name returns the label given by WithName.
func (tree *RBTree) Name() string {
	return tree.name
}

// Layout returns the tree's record layout.
func (tree *RBTree) Layout() record.Layout {
	return tree.layout
}

// Size returns the number of keys in the tree.
func (tree *RBTree) Size() int {
	return tree.count
}

// Empty reports whether the tree holds no keys.
func (tree *RBTree) Empty() bool {
	return tree.count == 0
}

// GetAllocator returns the slab backing the tree's nodes.
func (tree *RBTree) GetAllocator() *slab.Allocator {
	return tree.slab
}

// search returns the node holding key, or Nil.
func (tree *RBTree) search(key []byte) slab.Ref {
	n := tree.root
	for n != slab.Nil {
		c := tree.cmp(key, tree.key(n))
		switch {
		case c == 0:
			return n
		case c < 0:
			n = tree.left(n)
		default:
			n = tree.right(n)
		}
	}
	return slab.Nil
}

// Find returns the value stored under key. The slice aliases node storage
// and stays valid until the key is erased or the tree is cleared; erasing a
// different key may also move this payload. A hit on a set returns an empty
// non-nil slice.
func (tree *RBTree) Find(key []byte) ([]byte, bool) {
	tree.layout.CheckKey(key)
	n := tree.search(key)
	if n == slab.Nil {
		return nil, false
	}
	return tree.value(n), true
}

// Contains reports whether key is in the tree.
func (tree *RBTree) Contains(key []byte) bool {
	tree.layout.CheckKey(key)
	return tree.search(key) != slab.Nil
}

// Count returns 1 if key is in the tree, else 0.
func (tree *RBTree) Count(key []byte) int {
	if tree.Contains(key) {
		return 1
	}
	return 0
}

// Insert stores value under key. An existing key has its value overwritten
// and Insert returns false; otherwise a node is added and Insert returns true.
// value is ignored for sets.
func (tree *RBTree) Insert(key, value []byte) bool {
	tree.layout.CheckKey(key)
	tree.layout.CheckValue(value)
	parent, n := slab.Nil, tree.root
	isLeft := false
	for n != slab.Nil {
		c := tree.cmp(key, tree.key(n))
		if c == 0 {
			copy(tree.value(n), value)
			tree.verify()
			return false
		}
		parent, isLeft = n, c < 0
		n = tree.child(n, isLeft)
	}

	n = tree.slab.Alloc()
	tree.setColour(n, RED)
	tree.setParent(n, parent)
	copy(tree.key(n), key)
	copy(tree.value(n), value)
	if parent == slab.Nil {
		tree.root = n
	} else {
		tree.setChild(parent, isLeft, n)
	}
	tree.count++
	tree.insertFixup(n)
	tree.verify()
	return true
}

// insertFixup restores the red-black properties after n was attached as a red leaf.
func (tree *RBTree) insertFixup(n slab.Ref) {
	for tree.isRed(tree.parent(n)) {
		p := tree.parent(n)
		g := tree.parent(p)
		pIsLeft := tree.left(g) == p
		uncle := tree.child(g, !pIsLeft)
		if tree.isRed(uncle) {
			tree.setColour(p, BLACK)
			tree.setColour(uncle, BLACK)
			tree.setColour(g, RED)
			n = g
			continue
		}
		// Rotate an inner grandchild into line with its parent first.
		if tree.child(p, !pIsLeft) == n {
			n = p
			tree.rotateDirection(n, pIsLeft)
			p = tree.parent(n)
		}
		tree.setColour(p, BLACK)
		tree.setColour(g, RED)
		tree.rotateDirection(g, !pIsLeft)
	}
	tree.setColour(tree.root, BLACK)
}

// Erase removes key from the tree, reporting whether it was present.
func (tree *RBTree) Erase(key []byte) bool {
	tree.layout.CheckKey(key)
	n := tree.search(key)
	if n == slab.Nil {
		return false
	}
	// A node with two children takes its in-order predecessor's payload,
	// and the predecessor, which has no right child, is spliced out instead.
	if tree.left(n) != slab.Nil && tree.right(n) != slab.Nil {
		pred := tree.maximum(tree.left(n))
		copy(tree.payload(n), tree.payload(pred))
		n = pred
	}

	child := tree.left(n)
	if child == slab.Nil {
		child = tree.right(n)
	}
	parent := tree.parent(n)
	tree.replace(n, child)
	if tree.colour(n) == BLACK {
		if tree.isRed(child) {
			tree.setColour(child, BLACK)
		} else {
			tree.eraseFixup(child, parent)
		}
	}
	tree.slab.Free(n)
	tree.count--
	tree.verify()
	return true
}

// eraseFixup resolves the extra black carried by x, whose parent is xParent.
// x may be Nil, so its parent is tracked separately.
func (tree *RBTree) eraseFixup(x, xParent slab.Ref) {
	for x != tree.root && !tree.isRed(x) {
		xIsLeft := tree.left(xParent) == x
		sibling := tree.child(xParent, !xIsLeft)
		if tree.isRed(sibling) {
			tree.setColour(sibling, BLACK)
			tree.setColour(xParent, RED)
			tree.rotateDirection(xParent, xIsLeft)
			sibling = tree.child(xParent, !xIsLeft)
		}
		near, far := tree.child(sibling, xIsLeft), tree.child(sibling, !xIsLeft)
		if !tree.isRed(near) && !tree.isRed(far) {
			tree.setColour(sibling, RED)
			x, xParent = xParent, tree.parent(xParent)
			continue
		}
		if !tree.isRed(far) {
			tree.setColour(near, BLACK)
			tree.setColour(sibling, RED)
			tree.rotateDirection(sibling, !xIsLeft)
			sibling = tree.child(xParent, !xIsLeft)
			far = tree.child(sibling, !xIsLeft)
		}
		tree.setColour(sibling, tree.colour(xParent))
		tree.setColour(xParent, BLACK)
		tree.setColour(far, BLACK)
		tree.rotateDirection(xParent, xIsLeft)
		x = tree.root
	}
	if x != slab.Nil {
		tree.setColour(x, BLACK)
	}
}

// replace puts newn where oldn hangs from its parent. newn may be Nil.
func (tree *RBTree) replace(oldn, newn slab.Ref) {
	parent := tree.parent(oldn)
	switch {
	case parent == slab.Nil:
		tree.root = newn
	case tree.left(parent) == oldn:
		tree.setLeft(parent, newn)
	default:
		tree.setRight(parent, newn)
	}
	if newn != slab.Nil {
		tree.setParent(newn, parent)
	}
}

// rotateDirection rotates the subtree rooted at pivot left if isLeft, else right.
//
// Left rotation:
//
//	  X              Y
//	A   Y    =>    X   C
//	  B C        A B
//
// Right rotation:
//
//	    Y            X
//	  X   C  =>    A   Y
//	A B              B C
func (tree *RBTree) rotateDirection(pivot slab.Ref, isLeft bool) {
	// The child opposite the rotation rises into pivot's place.
	child := tree.child(pivot, !isLeft)
	inner := tree.child(child, isLeft)
	tree.setChild(pivot, !isLeft, inner)
	if inner != slab.Nil {
		tree.setParent(inner, pivot)
	}
	tree.replace(pivot, child)
	tree.setChild(child, isLeft, pivot)
	tree.setParent(pivot, child)
}

// Clear removes every key by rewinding the slab; no node is visited.
func (tree *RBTree) Clear() {
	if tree.count > 0 {
		logging.L.Debug("tree clear", "container", tree.name, "count", tree.count)
	}
	tree.slab.Clear()
	tree.root = slab.Nil
	tree.count = 0
}

// Destroy releases every node page. The tree may be reused afterwards.
func (tree *RBTree) Destroy() {
	tree.slab.Destroy()
	tree.root = slab.Nil
	tree.count = 0
}

// Height returns the number of nodes on the longest root-to-leaf path.
func (tree *RBTree) Height() int {
	return tree.height(tree.root)
}

func (tree *RBTree) height(n slab.Ref) int {
	if n == slab.Nil {
		return 0
	}
	return 1 + max(tree.height(tree.left(n)), tree.height(tree.right(n)))
}

// Select returns a copy of every entry in key order.
func (tree *RBTree) Select() []record.Entry {
	entries := make([]record.Entry, 0, tree.count)
	for it := tree.Min(); it.Valid(); it = it.Next() {
		entries = append(entries, record.New(it.Key(), it.Value()))
	}
	return entries
}

// Print writes the tree sideways, one node per line, to the specified writer.
func (tree *RBTree) Print(w io.Writer) {
	fmt.Fprintf(w, "====\nsize: %d, height: %d\n", tree.count, tree.Height())
	tree.printNode(w, tree.root, "", "")
	io.WriteString(w, "====\n")
}

func (tree *RBTree) printNode(w io.Writer, n slab.Ref, firstPrefix string, prefix string) {
	if n == slab.Nil {
		return
	}
	colour := "R"
	if tree.colour(n) == BLACK {
		colour = "B"
	}
	io.WriteString(w, firstPrefix)
	fmt.Fprintf(w, "[%s] ", colour)
	record.New(tree.key(n), tree.value(n)).Print(w)
	io.WriteString(w, "\n")
	nextPrefix := prefix + strings.Repeat(" ", 4)
	tree.printNode(w, tree.left(n), prefix+"|-L ", nextPrefix)
	tree.printNode(w, tree.right(n), prefix+"|-R ", nextPrefix)
}

// verify runs IsRBTree after a mutation in keyedkit_debug builds.
func (tree *RBTree) verify() {
	if !config.DebugChecks {
		return
	}
	if _, err := IsRBTree(tree); err != nil {
		panic(err)
	}
}
