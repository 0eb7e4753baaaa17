// Package record describes the fixed-size opaque byte records stored by the
// keyed containers: their layout, the comparator that orders keys, and typed
// codecs for callers that do not want to hand-encode bytes.
package record

import (
	"bytes"
	"errors"
	"fmt"
)

var (
	// ErrKeySize indicates a key whose length differs from the container's key size.
	ErrKeySize = errors.New("record: key size mismatch")

	// ErrValueSize indicates a value whose length differs from the container's value size.
	ErrValueSize = errors.New("record: value size mismatch")

	// ErrBadLayout indicates a layout with a non-positive key size or a negative value size.
	ErrBadLayout = errors.New("record: invalid layout")
)

// Comparator orders two keys of equal length. It returns a negative number if
// a < b, zero if a == b and a positive number if a > b, and must impose a
// strict total order over the key bytes.
type Comparator func(a, b []byte) int

// Bytes compares keys lexicographically by their raw bytes.
func Bytes(a, b []byte) int {
	return bytes.Compare(a, b)
}

// Layout is the size, in bytes, of the key and value records of a container.
// A zero ValueSize describes a set.
type Layout struct {
	KeySize   int
	ValueSize int
}

// IsSet reports whether the layout carries no values.
func (l Layout) IsSet() bool {
	return l.ValueSize == 0
}

// Validate panics if the layout cannot describe a container.
func (l Layout) Validate() {
	if l.KeySize <= 0 || l.ValueSize < 0 {
		panic(fmt.Errorf("%w: key size %d, value size %d", ErrBadLayout, l.KeySize, l.ValueSize))
	}
}

// CheckKey panics if key does not match the layout's key size.
func (l Layout) CheckKey(key []byte) {
	if len(key) != l.KeySize {
		panic(fmt.Errorf("%w: got %d bytes, want %d", ErrKeySize, len(key), l.KeySize))
	}
}

// CheckValue panics if value does not match the layout's value size.
// Sets accept a nil or empty value.
func (l Layout) CheckValue(value []byte) {
	if l.IsSet() && len(value) == 0 {
		return
	}
	if len(value) != l.ValueSize {
		panic(fmt.Errorf("%w: got %d bytes, want %d", ErrValueSize, len(value), l.ValueSize))
	}
}
