// Package keyed provides ordered and hashed sets and tables of fixed-width
// byte records behind one Container interface.
//
// Set and Table are backed by a red-black tree and iterate in key order.
// HashSet and HashTable are backed by an open-addressing hash table and
// iterate in bucket order. None of them is safe for concurrent use.
package keyed

import (
	"fmt"
	"io"

	"keyedkit/pkg/cursor"
	"keyedkit/pkg/hash"
	"keyedkit/pkg/rbtree"
	"keyedkit/pkg/record"
)

// Container is the operation set shared by every keyed container.
type Container interface {
	Name() string
	Kind() Kind
	Layout() record.Layout
	Insert(key, value []byte) bool
	Find(key []byte) ([]byte, bool)
	Count(key []byte) int
	Contains(key []byte) bool
	Erase(key []byte) bool
	Clear()
	Destroy()
	Empty() bool
	Size() int
	Select() []record.Entry
	Print(w io.Writer)
	CursorAtStart() (cursor.Cursor, error)
	Verify() error
}

// Kind names a container flavour.
type Kind int

const (
	KindSet Kind = iota
	KindTable
	KindHashSet
	KindHashTable
)

func (k Kind) String() string {
	switch k {
	case KindSet:
		return "tree set"
	case KindTable:
		return "tree table"
	case KindHashSet:
		return "hash set"
	case KindHashTable:
		return "hash table"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// IsHashed reports whether the kind is hash-backed.
func (k Kind) IsHashed() bool {
	return k == KindHashSet || k == KindHashTable
}

// IsSet reports whether the kind stores keys only.
func (k Kind) IsSet() bool {
	return k == KindSet || k == KindHashSet
}

// ParseKind maps a backend (hash or tree) and a mode (set or table) to a Kind.
func ParseKind(backend, mode string) (Kind, error) {
	var kind Kind
	switch mode {
	case "set":
		kind = KindSet
	case "table":
		kind = KindTable
	default:
		return 0, fmt.Errorf("unknown container mode %q", mode)
	}
	switch backend {
	case "tree":
	case "hash":
		kind += KindHashSet
	default:
		return 0, fmt.Errorf("unknown container backend %q", backend)
	}
	return kind, nil
}

// New creates an empty container of the given kind. valueSize is ignored for
// sets, and hasher (nil for the default) for tree-backed kinds.
func New(kind Kind, name string, keySize, valueSize int, cmp record.Comparator, hasher hash.Hasher) Container {
	hashOpts := []hash.Option{hash.WithName(name), hash.WithHasher(hasher)}
	switch kind {
	case KindSet:
		return NewSet(keySize, cmp, rbtree.WithName(name))
	case KindTable:
		return NewTable(keySize, valueSize, cmp, rbtree.WithName(name))
	case KindHashSet:
		return NewHashSet(keySize, cmp, hashOpts...)
	case KindHashTable:
		return NewHashTable(keySize, valueSize, cmp, hashOpts...)
	default:
		panic(fmt.Sprintf("keyed: unknown kind %d", int(kind)))
	}
}
