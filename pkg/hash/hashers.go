package hash

import (
	"fmt"

	"github.com/cespare/xxhash"
	"github.com/spaolacci/murmur3"
)

// Hasher folds a key's raw bytes into an unsigned integer.
type Hasher func(key []byte) uint64

// DJB2 is the default hasher: Bernstein's multiplicative fold, h = h*33 + b.
func DJB2(key []byte) uint64 {
	h := uint64(5381)
	for _, b := range key {
		h = h<<5 + h + uint64(b)
	}
	return h
}

// XxHasher returns the xxHash hash of the given key.
func XxHasher(key []byte) uint64 {
	return xxhash.Sum64(key)
}

// MurmurHasher returns the MurmurHash3 hash of the given key.
func MurmurHasher(key []byte) uint64 {
	return murmur3.Sum64(key)
}

// HasherByName returns the hasher registered under name: djb2, xxhash or murmur.
func HasherByName(name string) (Hasher, error) {
	switch name {
	case "", "djb2":
		return DJB2, nil
	case "xxhash":
		return XxHasher, nil
	case "murmur":
		return MurmurHasher, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownHasher, name)
	}
}
