package keyed

import (
	"keyedkit/pkg/hash"
	"keyedkit/pkg/record"
)

// hashed adapts an open-addressing hash table to Container.
type hashed struct {
	*hash.HashTable
}

// Verify checks the hash table's structural invariants.
func (h hashed) Verify() error {
	return hash.IsHash(h.HashTable)
}

// HashSet is an unordered set of fixed-width keys.
type HashSet struct {
	hashed
}

// NewHashSet returns an empty HashSet. cmp decides key equality
// (record.Bytes if nil) and must agree with the hasher.
func NewHashSet(keySize int, cmp record.Comparator, opts ...hash.Option) *HashSet {
	layout := record.Layout{KeySize: keySize}
	return &HashSet{hashed{hash.New(layout, cmp, opts...)}}
}

// Kind returns KindHashSet.
func (*HashSet) Kind() Kind {
	return KindHashSet
}

// Add inserts key, reporting whether it was absent.
func (s *HashSet) Add(key []byte) bool {
	return s.Insert(key, nil)
}

// HashTable is an unordered map from fixed-width keys to fixed-width values.
type HashTable struct {
	hashed
}

// NewHashTable returns an empty HashTable.
func NewHashTable(keySize, valueSize int, cmp record.Comparator, opts ...hash.Option) *HashTable {
	layout := record.Layout{KeySize: keySize, ValueSize: valueSize}
	if layout.IsSet() {
		panic(record.ErrBadLayout)
	}
	return &HashTable{hashed{hash.New(layout, cmp, opts...)}}
}

// Kind returns KindHashTable.
func (*HashTable) Kind() Kind {
	return KindHashTable
}
