package rbtree

import (
	"errors"

	"keyedkit/pkg/cursor"
	"keyedkit/pkg/record"
)

// TreeCursor walks the tree in key order.
type TreeCursor struct {
	iter Iterator
}

// CursorAtStart returns a cursor pointing to the smallest key.
func (tree *RBTree) CursorAtStart() (cursor.Cursor, error) {
	iter := tree.Min()
	if !iter.Valid() {
		return nil, errors.New("tree is empty")
	}
	return &TreeCursor{iter: iter}, nil
}

// Next moves the cursor ahead by one entry.
// Returns true if we reach the end of the tree.
func (cursor *TreeCursor) Next() (atEnd bool) {
	if !cursor.iter.Valid() {
		return true
	}
	cursor.iter = cursor.iter.Next()
	return !cursor.iter.Valid()
}

// GetEntry returns the entry currently pointed to by the cursor.
func (cursor *TreeCursor) GetEntry() (record.Entry, error) {
	if !cursor.iter.Valid() {
		return record.Entry{}, errors.New("getEntry: cursor is not pointing at a valid entry")
	}
	return record.New(cursor.iter.Key(), cursor.iter.Value()), nil
}

// Close is called when we no longer need to use the cursor anymore.
func (cursor *TreeCursor) Close() {}
