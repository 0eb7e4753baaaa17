package slab

import "errors"

var (
	// ErrBadRef indicates a Ref that does not name a record handed out by this allocator.
	ErrBadRef = errors.New("slab: bad record reference")

	// ErrDoubleFree indicates an attempt to free a record that is already free.
	ErrDoubleFree = errors.New("slab: record already free")

	// ErrBadSize indicates a non-positive record size.
	ErrBadSize = errors.New("slab: record size must be positive")

	// ErrExhausted indicates the allocator ran out of addressable records.
	ErrExhausted = errors.New("slab: ref space exhausted")
)
