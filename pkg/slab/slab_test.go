package slab

import (
	"encoding/binary"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlab(t *testing.T) {
	t.Run("NewIsLazy", testNewIsLazy)
	t.Run("AllocZeroed", testAllocZeroed)
	t.Run("BumpRetraction", testBumpRetraction)
	t.Run("FreeListReuse", testFreeListReuse)
	t.Run("FreeListLIFO", testFreeListLIFO)
	t.Run("PageDoubling", testPageDoubling)
	t.Run("RefStability", testRefStability)
	t.Run("ClearKeepsWarmPage", testClearKeepsWarmPage)
	t.Run("DestroyReleasesPages", testDestroyReleasesPages)
	t.Run("Preconditions", testPreconditions)
	t.Run("RandomWorkload", testRandomWorkload)
}

func testNewIsLazy(t *testing.T) {
	a := New(24)
	assert.Equal(t, 24, a.RecordSize())
	assert.Equal(t, 0, a.Pages())
	assert.Equal(t, 0, a.Capacity())
	assert.Equal(t, 0, a.Live())
}

func testAllocZeroed(t *testing.T) {
	a := New(16)
	ref := a.Alloc()
	require.NotEqual(t, Nil, ref)
	rec := a.Bytes(ref)
	require.Len(t, rec, 16)
	for i := range rec {
		rec[i] = 0xFF
	}
	// Not the top record any more, so it goes through the free list.
	a.Alloc()
	a.Free(ref)
	again := a.Alloc()
	require.Equal(t, ref, again)
	for _, b := range a.Bytes(again) {
		require.Zero(t, b)
	}
}

func testBumpRetraction(t *testing.T) {
	a := New(32)
	r1 := a.Alloc()
	r2 := a.Alloc()
	r3 := a.Alloc()
	a.Free(r3)
	assert.Equal(t, 0, a.FreeListLen(), "freeing the top record must retract the cursor")
	a.Free(r2)
	assert.Equal(t, 0, a.FreeListLen())
	assert.Equal(t, r2, a.Alloc(), "retracted slot is bumped again")
	assert.Equal(t, r3, a.Alloc())
	assert.Equal(t, 3, a.Live())
	assert.True(t, a.IsLive(r1))
}

func testFreeListReuse(t *testing.T) {
	a := New(32)
	r1 := a.Alloc()
	a.Alloc()
	a.Free(r1)
	assert.Equal(t, 1, a.FreeListLen())
	assert.False(t, a.IsLive(r1))
	assert.Equal(t, r1, a.Alloc())
	assert.Equal(t, 0, a.FreeListLen())
}

func testFreeListLIFO(t *testing.T) {
	a := New(8)
	refs := make([]Ref, 5)
	for i := range refs {
		refs[i] = a.Alloc()
	}
	a.Free(refs[0])
	a.Free(refs[2])
	a.Free(refs[1])
	// The link to the next free record lives in the freed record itself.
	require.Equal(t, uint32(refs[2]), binary.LittleEndian.Uint32(a.slot(a.locate(refs[1]))))
	assert.Equal(t, refs[1], a.Alloc())
	assert.Equal(t, refs[2], a.Alloc())
	assert.Equal(t, refs[0], a.Alloc())
}

func testPageDoubling(t *testing.T) {
	a := New(512)
	first := int(a.first)
	for i := 0; i < first; i++ {
		a.Alloc()
	}
	require.Equal(t, 1, a.Pages())
	a.Alloc()
	require.Equal(t, 2, a.Pages())
	assert.Equal(t, first*3, a.Capacity())
	for i := 0; i < first*2; i++ {
		a.Alloc()
	}
	assert.Equal(t, 3, a.Pages())
	assert.Equal(t, first*7, a.Capacity())
}

func testRefStability(t *testing.T) {
	a := New(16)
	first := a.Alloc()
	copy(a.Bytes(first), "stable-record!!!")
	held := a.Bytes(first)
	for i := 0; i < 5000; i++ {
		a.Alloc()
	}
	assert.Greater(t, a.Pages(), 1)
	assert.Equal(t, "stable-record!!!", string(a.Bytes(first)))
	assert.Same(t, &held[0], &a.Bytes(first)[0], "pages must never move")
}

func testClearKeepsWarmPage(t *testing.T) {
	a := New(64)
	for i := 0; i < 1000; i++ {
		a.Alloc()
	}
	require.Greater(t, a.Pages(), 1)
	a.Clear()
	assert.Equal(t, 1, a.Pages())
	assert.Equal(t, 0, a.Live())
	assert.Equal(t, int(a.first), a.Capacity())
	ref := a.Alloc()
	assert.Equal(t, Ref(1), ref, "the warm page is rewound")
	a.Clear()
	a.Clear()
	assert.Equal(t, 1, a.Pages())
}

func testDestroyReleasesPages(t *testing.T) {
	a := New(64)
	a.Alloc()
	a.Destroy()
	assert.Equal(t, 0, a.Pages())
	assert.Equal(t, Ref(1), a.Alloc())
}

func testPreconditions(t *testing.T) {
	assert.Panics(t, func() { New(0) })
	a := New(8)
	assert.Panics(t, func() { a.Free(Nil) })
	assert.Panics(t, func() { a.Bytes(Ref(99)) })
	r1 := a.Alloc()
	a.Alloc()
	a.Free(r1)
	assert.PanicsWithError(t, "slab: record already free: 1", func() { a.Free(r1) })
	assert.False(t, a.IsLive(Nil))
	assert.False(t, a.IsLive(Ref(12345)))
}

func testRandomWorkload(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	a := New(20)
	live := make(map[Ref]byte)
	for step := 0; step < 20000; step++ {
		if len(live) == 0 || rng.Intn(3) != 0 {
			ref := a.Alloc()
			_, dup := live[ref]
			require.False(t, dup, "step %d: ref %d handed out twice", step, ref)
			tag := byte(rng.Intn(256))
			a.Bytes(ref)[19] = tag
			live[ref] = tag
		} else {
			for ref := range live {
				a.Free(ref)
				delete(live, ref)
				break
			}
		}
	}
	require.Equal(t, len(live), a.Live())
	for ref, tag := range live {
		require.True(t, a.IsLive(ref))
		require.Equal(t, tag, a.Bytes(ref)[19])
	}
}

func BenchmarkAllocFree(b *testing.B) {
	a := New(48)
	refs := make([]Ref, 0, 1024)
	for i := 0; i < b.N; i++ {
		refs = append(refs, a.Alloc())
		if len(refs) == cap(refs) {
			for _, r := range refs {
				a.Free(r)
			}
			refs = refs[:0]
		}
	}
}
