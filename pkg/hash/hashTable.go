package hash

import (
	"fmt"
	"io"

	"keyedkit/pkg/config"
	"keyedkit/pkg/logging"
	"keyedkit/pkg/record"
)

// A HashTable is an open-addressing hash table over fixed-width byte records,
// with linear probing, tombstone deletion and power-of-two capacities.
type HashTable struct {
	name       string
	layout     record.Layout     // Key and value widths
	cmp        record.Comparator // Key equality
	hasher     Hasher            // Key hash
	buckets    []Bucket          // Bucket array; nil while the table is empty
	keys       []byte            // Key storage, addressed by Bucket.index
	values     []byte            // Value storage, addressed by Bucket.index
	nmemb      int               // Number of live buckets
	used       int               // Number of touched buckets, each owning one storage index
	tombstones int               // Number of tombstone buckets
}

// Option configures a HashTable at construction.
type Option func(*HashTable)

// WithHasher replaces the default DJB2 hasher.
func WithHasher(hasher Hasher) Option {
	return func(table *HashTable) {
		if hasher != nil {
			table.hasher = hasher
		}
	}
}

// WithName labels the table in log lines and printouts.
func WithName(name string) Option {
	return func(table *HashTable) {
		table.name = name
	}
}

// New returns an empty HashTable. No memory is allocated until the first insert.
func New(layout record.Layout, cmp record.Comparator, opts ...Option) *HashTable {
	layout.Validate()
	if cmp == nil {
		cmp = record.Bytes
	}
	table := &HashTable{layout: layout, cmp: cmp, hasher: DJB2}
	for _, opt := range opts {
		opt(table)
	}
	return table
}

// Name returns the label given by WithName.
func (table *HashTable) Name() string {
	return table.name
}

// Layout returns the table's record layout.
func (table *HashTable) Layout() record.Layout {
	return table.layout
}

// Size returns the number of keys in the table.
func (table *HashTable) Size() int {
	return table.nmemb
}

// Empty reports whether the table holds no keys.
func (table *HashTable) Empty() bool {
	return table.nmemb == 0
}

// Capacity returns the length of the bucket array.
func (table *HashTable) Capacity() int {
	return len(table.buckets)
}

// Tombstones returns the number of tombstone buckets.
func (table *HashTable) Tombstones() int {
	return table.tombstones
}

// LoadFactor returns nmemb / capacity, or 0 for an empty table.
func (table *HashTable) LoadFactor() float64 {
	if len(table.buckets) == 0 {
		return 0
	}
	return float64(table.nmemb) / float64(len(table.buckets))
}

// GetBuckets returns the bucket array.
func (table *HashTable) GetBuckets() []Bucket {
	return table.buckets
}

// keyAt returns the key record at the given storage index.
func (table *HashTable) keyAt(index int32) []byte {
	size := table.layout.KeySize
	off := int(index) * size
	return table.keys[off : off+size : off+size]
}

// valueAt returns the value record at the given storage index.
func (table *HashTable) valueAt(index int32) []byte {
	size := table.layout.ValueSize
	off := int(index) * size
	return table.values[off : off+size : off+size]
}

// probe scans the key's probe sequence for a live bucket holding it.
// It returns the match position (-1 if absent) and the position of the
// first tombstone seen before the match or the terminating untouched bucket
// (-1 if none). The scan gives up after capacity steps.
func (table *HashTable) probe(key []byte, hash uint64) (pos int, tomb int) {
	pos, tomb = -1, -1
	capacity := len(table.buckets)
	if capacity == 0 {
		return
	}
	mask := uint64(capacity - 1)
	i := hash & mask
	for step := 0; step < capacity; step++ {
		bucket := &table.buckets[i]
		switch {
		case bucket.IsUntouched():
			return
		case bucket.tombstone:
			if tomb < 0 {
				tomb = int(i)
			}
		case bucket.hash == hash && table.cmp(key, table.keyAt(bucket.index)) == 0:
			pos = int(i)
			return
		}
		i = (i + 1) & mask
	}
	return
}

// probeCompact is probe followed by tombstone compaction: if the match lies
// past a tombstone, the two buckets trade places so the key sits in the
// earlier slot. Storage records travel with their buckets.
func (table *HashTable) probeCompact(key []byte, hash uint64) int {
	pos, tomb := table.probe(key, hash)
	if pos < 0 || tomb < 0 {
		return pos
	}
	table.buckets[tomb], table.buckets[pos] = table.buckets[pos], table.buckets[tomb]
	return tomb
}

// Find returns the value stored under key. The slice aliases table storage
// and is valid until the next mutation. A hit on a set returns an empty
// non-nil slice. Find never modifies the table.
func (table *HashTable) Find(key []byte) ([]byte, bool) {
	table.layout.CheckKey(key)
	pos, _ := table.probe(key, table.hasher(key))
	if pos < 0 {
		return nil, false
	}
	return table.valueAt(table.buckets[pos].index), true
}

// FindCompact is Find, but moves a match found past a tombstone into the
// first tombstone of its probe sequence, shortening later lookups.
func (table *HashTable) FindCompact(key []byte) ([]byte, bool) {
	table.layout.CheckKey(key)
	pos := table.probeCompact(key, table.hasher(key))
	if pos < 0 {
		return nil, false
	}
	table.verify()
	return table.valueAt(table.buckets[pos].index), true
}

// Count returns 1 if key is in the table, else 0.
func (table *HashTable) Count(key []byte) int {
	if table.Contains(key) {
		return 1
	}
	return 0
}

// Contains reports whether key is in the table.
func (table *HashTable) Contains(key []byte) bool {
	table.layout.CheckKey(key)
	pos, _ := table.probe(key, table.hasher(key))
	return pos >= 0
}

// ProbeLength returns how many buckets past its home the key sits, or -1 if
// the key is absent.
func (table *HashTable) ProbeLength(key []byte) int {
	table.layout.CheckKey(key)
	hash := table.hasher(key)
	pos, _ := table.probe(key, hash)
	if pos < 0 {
		return -1
	}
	mask := uint64(len(table.buckets) - 1)
	return int((uint64(pos) - hash&mask) & mask)
}

// Insert stores value under key. An existing key has its value overwritten
// and Insert returns false; otherwise the key is added and Insert returns true.
// value is ignored for sets.
func (table *HashTable) Insert(key, value []byte) bool {
	table.layout.CheckKey(key)
	table.layout.CheckValue(value)
	hash := table.hasher(key)
	if pos, _ := table.probe(key, hash); pos >= 0 {
		copy(table.valueAt(table.buckets[pos].index), value)
		table.verify()
		return false
	}
	capacity := len(table.buckets)
	switch {
	case capacity == 0:
		table.allocate(TABLE_MIN)
	case table.nmemb*config.GrowDenominator >= capacity*config.GrowNumerator:
		table.resize(capacity * 2)
	}
	table.place(hash, key, value)
	table.nmemb++
	table.verify()
	return true
}

// place puts a key not in the table into the first untouched or tombstone
// bucket of its probe sequence. The caller guarantees a free bucket exists.
func (table *HashTable) place(hash uint64, key, value []byte) {
	mask := uint64(len(table.buckets) - 1)
	i := hash & mask
	for {
		bucket := &table.buckets[i]
		if bucket.IsUntouched() {
			bucket.index = int32(table.used)
			table.used++
			break
		}
		if bucket.tombstone {
			table.tombstones--
			break
		}
		i = (i + 1) & mask
	}
	bucket := &table.buckets[i]
	bucket.hash = hash
	bucket.tombstone = false
	copy(table.keyAt(bucket.index), key)
	if !table.layout.IsSet() {
		copy(table.valueAt(bucket.index), value)
	}
}

// Erase removes key from the table, reporting whether it was present.
// The table halves once it drops to a tenth full, and releases its arrays
// when the last key goes.
func (table *HashTable) Erase(key []byte) bool {
	table.layout.CheckKey(key)
	pos := table.probeCompact(key, table.hasher(key))
	if pos < 0 {
		return false
	}
	table.buckets[pos].tombstone = true
	table.tombstones++
	table.nmemb--
	capacity := len(table.buckets)
	switch {
	case table.nmemb == 0:
		table.release()
	case capacity > TABLE_MIN && table.nmemb*config.ShrinkDenominator <= capacity*config.ShrinkNumerator:
		table.resize(capacity / 2)
	}
	table.verify()
	return true
}

// allocate installs fresh, untouched arrays of the given capacity.
func (table *HashTable) allocate(capacity int) {
	table.buckets = newBuckets(capacity)
	table.keys = make([]byte, capacity*table.layout.KeySize)
	table.values = make([]byte, capacity*table.layout.ValueSize)
	table.used = 0
	table.tombstones = 0
}

// release drops the arrays. The next insert allocates TABLE_MIN buckets.
func (table *HashTable) release() {
	table.buckets = nil
	table.keys = nil
	table.values = nil
	table.nmemb = 0
	table.used = 0
	table.tombstones = 0
}

// resize rehashes every live key into a table of the given capacity,
// dropping all tombstones. Stored hashes are reused.
func (table *HashTable) resize(capacity int) {
	logging.L.Debug("hash resize", "container", table.name,
		"from", len(table.buckets), "to", capacity, "nmemb", table.nmemb)
	old := *table
	table.allocate(capacity)
	for _, bucket := range old.buckets {
		if !bucket.IsLive() {
			continue
		}
		var value []byte
		if !table.layout.IsSet() {
			value = old.valueAt(bucket.index)
		}
		table.place(bucket.hash, old.keyAt(bucket.index), value)
	}
}

// Clear removes every key and releases the arrays. Clearing an empty table
// is a no-op.
func (table *HashTable) Clear() {
	if table.buckets != nil {
		logging.L.Debug("hash clear", "container", table.name, "nmemb", table.nmemb)
	}
	table.release()
}

// Destroy releases the table's storage. The table may be reused afterwards.
func (table *HashTable) Destroy() {
	table.release()
}

// Select returns a copy of every entry, in bucket order.
func (table *HashTable) Select() []record.Entry {
	entries := make([]record.Entry, 0, table.nmemb)
	for _, bucket := range table.buckets {
		if bucket.IsLive() {
			entries = append(entries, table.entryAt(bucket.index))
		}
	}
	return entries
}

func (table *HashTable) entryAt(index int32) record.Entry {
	return record.New(table.keyAt(index), table.valueAt(index))
}

// Print writes the table's buckets to the specified writer.
func (table *HashTable) Print(w io.Writer) {
	fmt.Fprintf(w, "====\ncapacity: %d, nmemb: %d, tombstones: %d\n",
		len(table.buckets), table.nmemb, table.tombstones)
	for i, bucket := range table.buckets {
		if bucket.IsUntouched() {
			continue
		}
		fmt.Fprintf(w, "bucket %d: ", i)
		bucket.Print(w)
		if bucket.IsLive() {
			io.WriteString(w, " ")
			e := table.entryAt(bucket.index)
			e.Print(w)
		}
		io.WriteString(w, "\n")
	}
	io.WriteString(w, "====\n")
}

// verify runs IsHash after a mutation in keyedkit_debug builds.
func (table *HashTable) verify() {
	if !config.DebugChecks {
		return
	}
	if err := IsHash(table); err != nil {
		panic(err)
	}
}
