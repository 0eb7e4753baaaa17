package hash

import (
	"errors"

	"keyedkit/pkg/cursor"
	"keyedkit/pkg/record"
)

// HashCursor points to a live bucket of the hash table.
type HashCursor struct {
	table *HashTable
	pos   int
}

// CursorAtStart returns a cursor to the first live bucket in the hash table.
func (table *HashTable) CursorAtStart() (cursor.Cursor, error) {
	cursor := HashCursor{table: table, pos: -1}
	// If every bucket is empty, there is nothing to point at.
	if cursor.Next() {
		return nil, errors.New("all buckets are empty")
	}
	return &cursor, nil
}

// Next moves the cursor ahead to the next live bucket.
// Returns true if we reach the end of our table.
func (cursor *HashCursor) Next() bool {
	buckets := cursor.table.buckets
	for cursor.pos+1 < len(buckets) {
		cursor.pos++
		if buckets[cursor.pos].IsLive() {
			return false
		}
	}
	cursor.pos = len(buckets)
	return true
}

// GetEntry returns the entry currently pointed to by the cursor.
func (cursor *HashCursor) GetEntry() (record.Entry, error) {
	buckets := cursor.table.buckets
	if cursor.pos < 0 || cursor.pos >= len(buckets) {
		return record.Entry{}, errors.New("getEntry: cursor is not pointing at a valid entry")
	}
	bucket := buckets[cursor.pos]
	if !bucket.IsLive() {
		return record.Entry{}, errors.New("getEntry: cursor is in an empty bucket")
	}
	return cursor.table.entryAt(bucket.index), nil
}

// Close is called when we no longer need to use the cursor anymore.
func (cursor *HashCursor) Close() {}
