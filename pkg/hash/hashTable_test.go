package hash

import (
	"bytes"
	"math/rand"
	"testing"

	"keyedkit/pkg/record"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =====================================================================
// HELPERS
// =====================================================================

var tableLayout = record.Layout{KeySize: 8, ValueSize: 8}

func key(i int64) []byte {
	return record.Encode(record.Int64, i)
}

func setupTable(t *testing.T, opts ...Option) *HashTable {
	t.Helper()
	return New(tableLayout, record.Bytes, opts...)
}

// collide sends every key to bucket 0.
func collide([]byte) uint64 { return 0 }

// identity sends key i to bucket i modulo capacity.
func identity(k []byte) uint64 { return uint64(record.Int64.Get(k)) }

func requireValid(t *testing.T, table *HashTable) {
	t.Helper()
	require.NoError(t, IsHash(table))
}

// =====================================================================
// TESTS
// =====================================================================

func TestHashTable(t *testing.T) {
	t.Run("LazyAllocation", testLazyAllocation)
	t.Run("Doubling", testDoubling)
	t.Run("Uniqueness", testUniqueness)
	t.Run("RoundTrip", testRoundTrip)
	t.Run("Shrink", testShrink)
	t.Run("EraseLastReleases", testEraseLastReleases)
	t.Run("FindIsPure", testFindIsPure)
	t.Run("FindCompact", testFindCompact)
	t.Run("TombstoneReuse", testTombstoneReuse)
	t.Run("ResizeDropsTombstones", testResizeDropsTombstones)
	t.Run("SaturatedProbe", testSaturatedProbe)
	t.Run("Clear", testClear)
	t.Run("SetMode", testSetMode)
	t.Run("Preconditions", testPreconditions)
	t.Run("Cursor", testCursor)
	t.Run("Print", testPrint)
	t.Run("Random", testRandom)
}

func testLazyAllocation(t *testing.T) {
	table := setupTable(t)
	assert.Equal(t, 0, table.Capacity())
	assert.True(t, table.Empty())
	_, found := table.Find(key(1))
	assert.False(t, found)
	assert.False(t, table.Erase(key(1)))
	assert.Equal(t, -1, table.ProbeLength(key(1)))
	assert.Zero(t, table.LoadFactor())
	requireValid(t, table)

	require.True(t, table.Insert(key(1), key(10)))
	assert.Equal(t, TABLE_MIN, table.Capacity())
	requireValid(t, table)
}

// Inserting 1..100 doubles the table before the 7th, 13th, 25th, 49th
// and 97th inserts: each time nmemb reaches three quarters of capacity.
func testDoubling(t *testing.T) {
	table := setupTable(t)
	grewAt := map[int64]int{}
	for i := int64(1); i <= 100; i++ {
		before := table.Capacity()
		require.True(t, table.Insert(key(i), key(-i)))
		if after := table.Capacity(); after != before && before != 0 {
			assert.Equal(t, before*2, after)
			grewAt[i] = after
		}
		requireValid(t, table)
	}
	assert.Equal(t, map[int64]int{7: 16, 13: 32, 25: 64, 49: 128, 97: 256}, grewAt)
	assert.Equal(t, 100, table.Size())
	assert.Equal(t, 0, table.Tombstones())
	for i := int64(1); i <= 100; i++ {
		value, found := table.Find(key(i))
		require.True(t, found)
		assert.Equal(t, key(-i), value)
	}
}

func testUniqueness(t *testing.T) {
	table := setupTable(t)
	require.True(t, table.Insert(key(5), key(1)))
	assert.False(t, table.Insert(key(5), key(2)))
	assert.False(t, table.Insert(key(5), key(2)))
	assert.Equal(t, 1, table.Size())
	assert.Equal(t, 1, table.Count(key(5)))
	value, found := table.Find(key(5))
	require.True(t, found)
	assert.Equal(t, key(2), value)
	requireValid(t, table)

	// Uniqueness must also hold when a tombstone precedes the live key.
	table = setupTable(t, WithHasher(collide))
	table.Insert(key(1), key(1))
	table.Insert(key(2), key(2))
	require.True(t, table.Erase(key(1)))
	assert.False(t, table.Insert(key(2), key(3)))
	assert.Equal(t, 1, table.Size())
	requireValid(t, table)
}

func testRoundTrip(t *testing.T) {
	for _, name := range []string{"djb2", "xxhash", "murmur"} {
		hasher, err := HasherByName(name)
		require.NoError(t, err)
		table := setupTable(t, WithHasher(hasher), WithName(name))
		r := rand.New(rand.NewSource(7))
		want := map[int64]int64{}
		for len(want) < 500 {
			k, v := r.Int63(), r.Int63()
			want[k] = v
			table.Insert(key(k), key(v))
		}
		assert.Equal(t, len(want), table.Size(), name)
		for k, v := range want {
			value, found := table.Find(key(k))
			require.True(t, found, name)
			assert.Equal(t, v, record.Int64.Get(value), name)
		}
		requireValid(t, table)
	}
}

// 20 inserts then 18 erases: 32 buckets shrink to 16 when nmemb falls to 3.
func testShrink(t *testing.T) {
	table := setupTable(t)
	for i := int64(0); i < 20; i++ {
		table.Insert(key(i), key(i))
	}
	require.Equal(t, 32, table.Capacity())
	for i := int64(0); i < 18; i++ {
		require.True(t, table.Erase(key(i)))
		requireValid(t, table)
		if table.Size() > 3 {
			assert.Equal(t, 32, table.Capacity())
		} else {
			assert.Equal(t, 16, table.Capacity())
		}
	}
	assert.Equal(t, 2, table.Size())
	for i := int64(0); i < 18; i++ {
		assert.False(t, table.Contains(key(i)))
	}
	assert.True(t, table.Contains(key(18)))
	assert.True(t, table.Contains(key(19)))
}

func testEraseLastReleases(t *testing.T) {
	table := setupTable(t)
	table.Insert(key(1), key(1))
	table.Insert(key(2), key(2))
	require.True(t, table.Erase(key(1)))
	assert.Equal(t, TABLE_MIN, table.Capacity())
	require.True(t, table.Erase(key(2)))
	assert.Equal(t, 0, table.Capacity())
	assert.Equal(t, 0, table.Tombstones())
	requireValid(t, table)
	assert.True(t, table.Insert(key(2), key(2)))
	assert.Equal(t, TABLE_MIN, table.Capacity())
}

func testFindIsPure(t *testing.T) {
	table := setupTable(t, WithHasher(collide))
	for i := int64(1); i <= 3; i++ {
		table.Insert(key(i), key(i))
	}
	table.Erase(key(1))
	before := append([]Bucket(nil), table.GetBuckets()...)
	_, found := table.Find(key(3))
	require.True(t, found)
	assert.True(t, table.Contains(key(3)))
	assert.Equal(t, 1, table.Count(key(3)))
	assert.Equal(t, before, table.GetBuckets())
	assert.Equal(t, 2, table.ProbeLength(key(3)))
}

func testFindCompact(t *testing.T) {
	table := setupTable(t, WithHasher(collide))
	for i := int64(1); i <= 3; i++ {
		table.Insert(key(i), key(i*10))
	}
	require.True(t, table.Erase(key(1)))
	require.Equal(t, 2, table.ProbeLength(key(3)))

	value, found := table.FindCompact(key(3))
	require.True(t, found)
	assert.Equal(t, key(30), value)
	assert.Equal(t, 0, table.ProbeLength(key(3)))
	assert.Equal(t, 1, table.ProbeLength(key(2)))
	assert.Equal(t, 1, table.Tombstones())
	assert.True(t, table.GetBuckets()[2].IsTombstone())
	requireValid(t, table)

	// Nothing left to compact.
	_, found = table.FindCompact(key(3))
	require.True(t, found)
	assert.Equal(t, 0, table.ProbeLength(key(3)))
	_, found = table.FindCompact(key(99))
	assert.False(t, found)
	requireValid(t, table)
}

func testTombstoneReuse(t *testing.T) {
	table := setupTable(t, WithHasher(collide))
	for i := int64(1); i <= 3; i++ {
		table.Insert(key(i), key(i))
	}
	table.Erase(key(1))
	index := table.GetBuckets()[0].GetIndex()
	require.True(t, table.Insert(key(4), key(4)))
	assert.Equal(t, 0, table.Tombstones())
	assert.True(t, table.GetBuckets()[0].IsLive())
	assert.Equal(t, index, table.GetBuckets()[0].GetIndex())
	assert.Zero(t, table.GetBuckets()[0].GetHash())
	assert.Equal(t, 0, table.ProbeLength(key(4)))
	requireValid(t, table)
}

func testResizeDropsTombstones(t *testing.T) {
	table := setupTable(t)
	for i := int64(0); i < 6; i++ {
		table.Insert(key(i), key(i))
	}
	table.Erase(key(0))
	table.Insert(key(0), key(0))
	table.Erase(key(1))
	require.Equal(t, 1, table.Tombstones())
	// nmemb is 5; two more inserts cross the grow threshold.
	table.Insert(key(10), key(10))
	table.Insert(key(11), key(11))
	assert.Equal(t, 16, table.Capacity())
	assert.Equal(t, 0, table.Tombstones())
	requireValid(t, table)
}

// With no untouched bucket left, a miss must stop after one lap of the table.
func testSaturatedProbe(t *testing.T) {
	table := setupTable(t, WithHasher(identity))
	for i := int64(0); i < 6; i++ {
		table.Insert(key(i), key(i))
	}
	table.Erase(key(0))
	table.Erase(key(1))
	table.Insert(key(6), key(6))
	table.Insert(key(7), key(7))
	table.Erase(key(2))
	require.Equal(t, TABLE_MIN, table.Capacity())
	require.Equal(t, 5, table.Size())
	require.Equal(t, 3, table.Tombstones())
	for _, bucket := range table.GetBuckets() {
		require.False(t, bucket.IsUntouched())
	}

	_, found := table.Find(key(16))
	assert.False(t, found)
	assert.False(t, table.Contains(key(16)))
	assert.Zero(t, table.Count(key(16)))
	assert.Equal(t, -1, table.ProbeLength(key(16)))
	_, found = table.FindCompact(key(16))
	assert.False(t, found)
	assert.False(t, table.Erase(key(16)))
	requireValid(t, table)

	require.True(t, table.Insert(key(16), key(16)))
	assert.Equal(t, TABLE_MIN, table.Capacity())
	assert.Equal(t, 2, table.Tombstones())
	assert.True(t, table.GetBuckets()[0].IsLive())
	assert.Equal(t, 0, table.ProbeLength(key(16)))
	requireValid(t, table)
}

func testClear(t *testing.T) {
	table := setupTable(t)
	table.Clear()
	assert.Equal(t, 0, table.Capacity())
	for i := int64(0); i < 50; i++ {
		table.Insert(key(i), key(i))
	}
	table.Clear()
	assert.True(t, table.Empty())
	assert.Equal(t, 0, table.Capacity())
	table.Clear()
	assert.True(t, table.Empty())
	assert.False(t, table.Contains(key(3)))
	requireValid(t, table)
	require.True(t, table.Insert(key(3), key(3)))
	assert.Equal(t, TABLE_MIN, table.Capacity())
	table.Destroy()
	assert.Equal(t, 0, table.Size())
}

func testSetMode(t *testing.T) {
	table := New(record.Layout{KeySize: 8}, nil)
	require.True(t, table.Insert(key(1), nil))
	assert.False(t, table.Insert(key(1), nil))
	value, found := table.Find(key(1))
	require.True(t, found)
	assert.NotNil(t, value)
	assert.Empty(t, value)
	entries := table.Select()
	require.Len(t, entries, 1)
	assert.Equal(t, key(1), entries[0].Key)
}

func testPreconditions(t *testing.T) {
	table := setupTable(t)
	assert.Panics(t, func() { table.Insert([]byte{1}, key(1)) })
	assert.Panics(t, func() { table.Insert(key(1), []byte{1}) })
	assert.Panics(t, func() { table.Find(nil) })
	assert.Panics(t, func() { New(record.Layout{}, nil) })
	_, err := HasherByName("sha1")
	assert.ErrorIs(t, err, ErrUnknownHasher)
}

func testCursor(t *testing.T) {
	table := setupTable(t)
	_, err := table.CursorAtStart()
	require.Error(t, err)

	for i := int64(0); i < 40; i++ {
		table.Insert(key(i), key(i+1))
	}
	for i := int64(0); i < 40; i += 3 {
		table.Erase(key(i))
	}
	c, err := table.CursorAtStart()
	require.NoError(t, err)
	defer c.Close()
	seen := map[int64]bool{}
	for {
		e, err := c.GetEntry()
		require.NoError(t, err)
		k := record.Int64.Get(e.Key)
		assert.Equal(t, k+1, record.Int64.Get(e.Value))
		seen[k] = true
		if c.Next() {
			break
		}
	}
	assert.Len(t, seen, table.Size())
	_, err = c.GetEntry()
	assert.Error(t, err)
	assert.Len(t, table.Select(), table.Size())
}

func testPrint(t *testing.T) {
	table := setupTable(t)
	table.Insert(key(1), key(2))
	var buf bytes.Buffer
	table.Print(&buf)
	assert.Contains(t, buf.String(), "capacity: 8, nmemb: 1, tombstones: 0")
	assert.Contains(t, buf.String(), "(8000000000000001, 8000000000000002)")
}

// Random insert/erase workload checked against a map after every step.
func testRandom(t *testing.T) {
	table := setupTable(t)
	r := rand.New(rand.NewSource(42))
	want := map[int64]int64{}
	for step := 0; step < 5000; step++ {
		k := r.Int63n(300)
		if r.Intn(3) == 0 {
			_, had := want[k]
			assert.Equal(t, had, table.Erase(key(k)))
			delete(want, k)
		} else {
			v := r.Int63()
			_, had := want[k]
			assert.Equal(t, !had, table.Insert(key(k), key(v)))
			want[k] = v
		}
		if step%97 == 0 {
			requireValid(t, table)
		}
		require.Equal(t, len(want), table.Size())
	}
	requireValid(t, table)
	for k, v := range want {
		value, found := table.Find(key(k))
		require.True(t, found)
		assert.Equal(t, v, record.Int64.Get(value))
	}
}

func TestHashers(t *testing.T) {
	assert.Equal(t, uint64(5381), DJB2(nil))
	assert.Equal(t, uint64(5381*33+'a'), DJB2([]byte("a")))
	assert.NotEqual(t, XxHasher([]byte("a")), XxHasher([]byte("b")))
	assert.NotEqual(t, MurmurHasher([]byte("a")), MurmurHasher([]byte("b")))
	h, err := HasherByName("")
	require.NoError(t, err)
	assert.Equal(t, DJB2([]byte("key")), h([]byte("key")))
}

func TestIsHashDetectsCorruption(t *testing.T) {
	table := setupTable(t)
	for i := int64(0); i < 5; i++ {
		table.Insert(key(i), key(i))
	}
	table.nmemb++
	assert.ErrorIs(t, IsHash(table), ErrInvariant)
	table.nmemb--

	for i := range table.buckets {
		if table.buckets[i].IsLive() {
			table.buckets[i].hash ^= 1
			break
		}
	}
	assert.ErrorIs(t, IsHash(table), ErrInvariant)
}

func BenchmarkInsert(b *testing.B) {
	table := New(tableLayout, nil)
	keys := make([][]byte, 1<<16)
	for i := range keys {
		keys[i] = key(int64(i))
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		k := keys[i&(len(keys)-1)]
		table.Insert(k, k)
	}
}
