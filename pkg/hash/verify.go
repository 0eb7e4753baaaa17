package hash

import (
	"fmt"

	"keyedkit/pkg/config"
)

// IsHash checks the structural invariants of a hash table: capacity and load
// band, storage index ownership, member and tombstone counts, stored hashes,
// and that every live key is the one a strict probe finds.
func IsHash(table *HashTable) error {
	capacity := len(table.buckets)
	if capacity == 0 {
		if table.nmemb != 0 || table.used != 0 || table.tombstones != 0 {
			return fmt.Errorf("%w: released table reports nmemb %d, used %d, tombstones %d",
				ErrInvariant, table.nmemb, table.used, table.tombstones)
		}
		return nil
	}
	if capacity < TABLE_MIN || capacity&(capacity-1) != 0 {
		return fmt.Errorf("%w: capacity %d is not a power of two >= %d", ErrInvariant, capacity, TABLE_MIN)
	}
	if table.nmemb == 0 {
		return fmt.Errorf("%w: empty table still holds %d buckets", ErrInvariant, capacity)
	}
	if table.nmemb*config.GrowDenominator > capacity*config.GrowNumerator {
		return fmt.Errorf("%w: load %d/%d above grow threshold", ErrInvariant, table.nmemb, capacity)
	}
	if capacity > TABLE_MIN && table.nmemb*config.ShrinkDenominator <= capacity*config.ShrinkNumerator {
		return fmt.Errorf("%w: load %d/%d at or below shrink threshold", ErrInvariant, table.nmemb, capacity)
	}

	owners := make([]int, table.used)
	live, tombstones, touched := 0, 0, 0
	for i, bucket := range table.buckets {
		if bucket.IsUntouched() {
			continue
		}
		touched++
		if bucket.index < 0 || int(bucket.index) >= table.used {
			return fmt.Errorf("%w: bucket %d owns index %d outside [0, %d)", ErrInvariant, i, bucket.index, table.used)
		}
		owners[bucket.index]++
		if bucket.tombstone {
			tombstones++
			continue
		}
		live++
		key := table.keyAt(bucket.index)
		if hash := table.hasher(key); hash != bucket.hash {
			return fmt.Errorf("%w: bucket %d stores hash %x, key hashes to %x", ErrInvariant, i, bucket.hash, hash)
		}
		if pos, _ := table.probe(key, bucket.hash); pos != i {
			return fmt.Errorf("%w: key %x in bucket %d is found at %d", ErrInvariant, key, i, pos)
		}
	}
	for index, n := range owners {
		if n != 1 {
			return fmt.Errorf("%w: storage index %d owned by %d buckets", ErrInvariant, index, n)
		}
	}
	if touched != table.used {
		return fmt.Errorf("%w: %d touched buckets, %d storage indexes in use", ErrInvariant, touched, table.used)
	}
	if live != table.nmemb {
		return fmt.Errorf("%w: %d live buckets, nmemb %d", ErrInvariant, live, table.nmemb)
	}
	if tombstones != table.tombstones {
		return fmt.Errorf("%w: %d tombstone buckets, counted %d", ErrInvariant, tombstones, table.tombstones)
	}
	return nil
}
