package slab

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/bits"

	"keyedkit/pkg/config"
	"keyedkit/pkg/logging"

	"github.com/bits-and-blooms/bitset"
	"github.com/ncw/directio"
)

// Ref names a record owned by an Allocator. The zero Ref is Nil.
type Ref uint32

// Nil never names a record.
const Nil Ref = 0

// Records are padded to this alignment, which also leaves room for the free-list link.
const recordAlign = 8

// maxSlots bounds the slots addressable by a Ref, keeping Nil reserved.
const maxSlots = math.MaxUint32 - 1

// page is one contiguous block of records.
type page struct {
	data   []byte         // nmemb * stride bytes, block aligned
	nmemb  uint64         // Number of records the page can hold
	cursor uint64         // Number of records bumped so far
	base   uint64         // Global slot number of the page's first record
	live   *bitset.BitSet // Set bits mark records currently handed out
}

// Allocator is a paged fixed-record allocator with a free-record list.
type Allocator struct {
	size   int     // Record size requested by the caller
	stride uint64  // Record size rounded up to recordAlign
	first  uint64  // Records in the first page; page i holds first << i
	pages  []*page // Oldest first; the newest page is the bump target
	free   Ref     // Head of the free-record list
	nfree  int     // Length of the free-record list
	live   int     // Records currently handed out
}

// New creates an allocator for records of recordSize bytes. No memory is
// reserved until the first Alloc.
func New(recordSize int) *Allocator {
	if recordSize <= 0 {
		panic(fmt.Errorf("%w: %d", ErrBadSize, recordSize))
	}
	stride := uint64((recordSize + recordAlign - 1) &^ (recordAlign - 1))
	first := uint64(directio.BlockSize) / stride
	if first < config.SlabMinRecords {
		first = config.SlabMinRecords
	}
	return &Allocator{size: recordSize, stride: stride, first: first}
}

// RecordSize returns the record size the allocator was created with.
func (a *Allocator) RecordSize() int {
	return a.size
}

// Live returns the number of records currently handed out.
func (a *Allocator) Live() int {
	return a.live
}

// FreeListLen returns the number of records waiting on the free-record list.
func (a *Allocator) FreeListLen() int {
	return a.nfree
}

// Pages returns the number of pages currently held.
func (a *Allocator) Pages() int {
	return len(a.pages)
}

// Capacity returns the number of records the held pages can store.
func (a *Allocator) Capacity() int {
	total := 0
	for _, p := range a.pages {
		total += int(p.nmemb)
	}
	return total
}

// Alloc returns a zeroed record. It never fails short of exhausting memory
// or the Ref space, both of which panic.
func (a *Allocator) Alloc() Ref {
	if a.free != Nil {
		ref := a.free
		p, off := a.locate(ref)
		rec := a.slot(p, off)
		a.free = Ref(binary.LittleEndian.Uint32(rec))
		a.nfree--
		clear(rec)
		p.live.Set(uint(off))
		a.live++
		return ref
	}

	p := a.newest()
	if p == nil || p.cursor == p.nmemb {
		p = a.grow()
	}
	off := p.cursor
	p.cursor++
	clear(a.slot(p, off))
	p.live.Set(uint(off))
	a.live++
	return Ref(p.base + off + 1)
}

// Free returns a record to the allocator. Freeing the most recently bumped
// record retracts the bump cursor; any other record joins the free list.
// Freeing Nil, a foreign ref, or an already free record panics.
func (a *Allocator) Free(ref Ref) {
	p, off := a.locate(ref)
	if !p.live.Test(uint(off)) {
		panic(fmt.Errorf("%w: %d", ErrDoubleFree, ref))
	}
	p.live.Clear(uint(off))
	a.live--

	if p == a.newest() && off == p.cursor-1 {
		p.cursor--
		return
	}
	binary.LittleEndian.PutUint32(a.slot(p, off), uint32(a.free))
	a.free = ref
	a.nfree++
}

// Bytes returns the storage of a live record. The slice stays valid until
// the record is freed or the allocator is cleared or destroyed.
func (a *Allocator) Bytes(ref Ref) []byte {
	p, off := a.locate(ref)
	return a.slot(p, off)[:a.size:a.size]
}

// IsLive reports whether ref names a record currently handed out.
func (a *Allocator) IsLive(ref Ref) bool {
	if ref == Nil {
		return false
	}
	idx, off, ok := a.find(ref)
	if !ok {
		return false
	}
	return a.pages[idx].live.Test(uint(off))
}

// Clear frees every record at once. All pages but the oldest are released
// and the oldest is rewound, so the allocator keeps one warm page.
func (a *Allocator) Clear() {
	if len(a.pages) == 0 {
		return
	}
	for i := 1; i < len(a.pages); i++ {
		a.pages[i] = nil
	}
	a.pages = a.pages[:1]
	oldest := a.pages[0]
	oldest.cursor = 0
	oldest.live.ClearAll()
	a.free = Nil
	a.nfree = 0
	a.live = 0
	logging.L.Debug("slab clear", "record_size", a.size, "warm_records", oldest.nmemb)
}

// Destroy releases every page. The allocator may be reused afterwards and
// behaves as if newly created.
func (a *Allocator) Destroy() {
	a.pages = nil
	a.free = Nil
	a.nfree = 0
	a.live = 0
}

// newest returns the bump target, or nil before the first allocation.
func (a *Allocator) newest() *page {
	if len(a.pages) == 0 {
		return nil
	}
	return a.pages[len(a.pages)-1]
}

// grow appends a page holding twice as many records as the previous one.
func (a *Allocator) grow() *page {
	n := len(a.pages)
	nmemb := a.first << n
	base := a.first * ((1 << n) - 1)
	if n >= 32 || base+nmemb > maxSlots {
		panic(ErrExhausted)
	}
	p := &page{
		data:  directio.AlignedBlock(int(nmemb * a.stride)),
		nmemb: nmemb,
		base:  base,
		live:  bitset.New(uint(nmemb)),
	}
	a.pages = append(a.pages, p)
	logging.L.Debug("slab grow", "record_size", a.size, "page", n, "records", nmemb)
	return p
}

// find maps a ref to its page index and in-page offset without asserting liveness.
func (a *Allocator) find(ref Ref) (int, uint64, bool) {
	slot := uint64(ref) - 1
	idx := bits.Len64(slot/a.first+1) - 1
	if idx >= len(a.pages) {
		return 0, 0, false
	}
	p := a.pages[idx]
	off := slot - p.base
	if off >= p.cursor {
		return 0, 0, false
	}
	return idx, off, true
}

// locate is find for refs that must name a bumped record; anything else panics.
func (a *Allocator) locate(ref Ref) (*page, uint64) {
	if ref == Nil {
		panic(fmt.Errorf("%w: nil", ErrBadRef))
	}
	idx, off, ok := a.find(ref)
	if !ok {
		panic(fmt.Errorf("%w: %d", ErrBadRef, ref))
	}
	return a.pages[idx], off
}

func (a *Allocator) slot(p *page, off uint64) []byte {
	start := off * a.stride
	return p.data[start : start+a.stride : start+a.stride]
}
