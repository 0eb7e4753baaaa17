package record

import (
	"fmt"
	"io"
)

// Entry is a key-value pair copied out of a container. Value is empty for sets.
type Entry struct {
	Key   []byte
	Value []byte
}

// New constructs an Entry holding copies of key and value.
func New(key []byte, value []byte) Entry {
	return Entry{Key: clone(key), Value: clone(value)}
}

// Print writes the entry to the specified writer in the following format: (<key>, <value>)
func (entry Entry) Print(w io.Writer) {
	fmt.Fprintf(w, "(%x, %x), ", entry.Key, entry.Value)
}

func clone(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
