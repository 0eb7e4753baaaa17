package cursor

import (
	"keyedkit/pkg/record"
)

// Interface for a cursor that traverses a keyed container.
type Cursor interface {
	Next() bool                      // Moves the cursor to the next entry; returns true once past the last entry
	GetEntry() (record.Entry, error) // Returns a copy of the entry at the position of the cursor
	Close()                          // Called to indicate that the cursor is done being used
}
