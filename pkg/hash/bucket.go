package hash

import (
	"fmt"
	"io"
)

// Bucket is one slot of the open-addressing array.
//
// A bucket is untouched while its index is UNSET. Once touched it owns the
// storage record at index for good: a tombstone keeps its record until the
// next rehash, a compacting lookup swaps it elsewhere, or a first-fit insert
// reuses it.
type Bucket struct {
	hash      uint64 // Hash of the key stored at index
	index     int32  // Key/value storage index, or UNSET
	tombstone bool   // Set once the key has been erased
}

// newBuckets returns n untouched buckets.
func newBuckets(n int) []Bucket {
	buckets := make([]Bucket, n)
	for i := range buckets {
		buckets[i].index = UNSET
	}
	return buckets
}

// IsUntouched reports whether the bucket has never held a key.
func (b Bucket) IsUntouched() bool {
	return b.index == UNSET
}

// IsTombstone reports whether the bucket held a key that has since been erased.
func (b Bucket) IsTombstone() bool {
	return b.index != UNSET && b.tombstone
}

// IsLive reports whether the bucket holds a key.
func (b Bucket) IsLive() bool {
	return b.index != UNSET && !b.tombstone
}

// GetHash returns the hash recorded for the bucket's key.
func (b Bucket) GetHash() uint64 {
	return b.hash
}

// GetIndex returns the storage index owned by the bucket, or UNSET.
func (b Bucket) GetIndex() int32 {
	return b.index
}

// Print writes the bucket's state to the specified writer.
func (b Bucket) Print(w io.Writer) {
	switch {
	case b.IsUntouched():
		io.WriteString(w, "untouched")
	case b.IsTombstone():
		fmt.Fprintf(w, "tombstone (index %d)", b.index)
	default:
		fmt.Fprintf(w, "hash %016x index %d", b.hash, b.index)
	}
}
