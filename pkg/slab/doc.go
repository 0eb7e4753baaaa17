// Package slab provides a fixed-record allocator with O(1) allocation and
// deallocation.
//
// # Overview
//
// An Allocator hands out records of one size from a list of pages. Each page
// is a contiguous, block-aligned buffer; every new page holds twice as many
// records as the one before it, and pages are never relocated, so a record's
// bytes stay put until the record is freed, the allocator is cleared, or it
// is destroyed.
//
// Records are named by Ref handles rather than addresses. Ref 0 is Nil and
// never names a record, which lets callers use it as an "absent" link.
//
// # Allocation
//
//	a := slab.New(48)
//	ref := a.Alloc()       // pops the free list, or bumps the newest page
//	rec := a.Bytes(ref)    // 48 zeroed bytes owned by ref
//	a.Free(ref)            // retracts the bump cursor, or pushes the free list
//
// Freed records form a singly linked list threaded through their own storage:
// the first four bytes of a free record hold the Ref of the next one. Freeing
// the most recently bumped record simply retracts the page cursor, which keeps
// pages compact under stack-like usage.
//
// # Reuse
//
// Clear releases every page except the oldest and rewinds it, so repeated
// clear/refill cycles keep one warm page. Destroy releases everything.
//
// # Thread Safety
//
// Allocator instances are not thread-safe. Callers must synchronize access
// externally; the keyed containers give each tree its own allocator.
package slab
