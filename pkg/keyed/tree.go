package keyed

import (
	"keyedkit/pkg/rbtree"
	"keyedkit/pkg/record"
)

// ordered adapts a red-black tree to Container.
type ordered struct {
	*rbtree.RBTree
}

// Verify checks the tree's red-black properties.
func (o ordered) Verify() error {
	_, err := rbtree.IsRBTree(o.RBTree)
	return err
}

// Set is an ordered set of fixed-width keys. Min and Max return iterators
// that walk the keys in comparator order.
type Set struct {
	ordered
}

// NewSet returns an empty Set of keySize-byte keys ordered by cmp
// (record.Bytes if nil).
func NewSet(keySize int, cmp record.Comparator, opts ...rbtree.Option) *Set {
	layout := record.Layout{KeySize: keySize}
	return &Set{ordered{rbtree.New(layout, cmp, opts...)}}
}

// Kind returns KindSet.
func (*Set) Kind() Kind {
	return KindSet
}

// Add inserts key, reporting whether it was absent.
func (s *Set) Add(key []byte) bool {
	return s.Insert(key, nil)
}

// Table is an ordered map from fixed-width keys to fixed-width values.
type Table struct {
	ordered
}

// NewTable returns an empty Table ordered by cmp (record.Bytes if nil).
func NewTable(keySize, valueSize int, cmp record.Comparator, opts ...rbtree.Option) *Table {
	layout := record.Layout{KeySize: keySize, ValueSize: valueSize}
	if layout.IsSet() {
		panic(record.ErrBadLayout)
	}
	return &Table{ordered{rbtree.New(layout, cmp, opts...)}}
}

// Kind returns KindTable.
func (*Table) Kind() Kind {
	return KindTable
}
