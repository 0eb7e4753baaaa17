package keyed

import (
	"fmt"

	"keyedkit/pkg/record"
)

// Typed wraps a Container with codecs so callers work in Go values instead
// of byte records. Use record.Empty as the value codec for sets.
type Typed[K, V any] struct {
	c      Container
	keys   record.Codec[K]
	values record.Codec[V]
	kbuf   []byte
	vbuf   []byte
}

// NewTyped wraps c. It panics if the codec sizes do not match c's layout.
func NewTyped[K, V any](c Container, keys record.Codec[K], values record.Codec[V]) *Typed[K, V] {
	layout := c.Layout()
	if keys.Size() != layout.KeySize {
		panic(fmt.Errorf("%w: key codec is %d bytes, want %d", record.ErrKeySize, keys.Size(), layout.KeySize))
	}
	if values.Size() != layout.ValueSize {
		panic(fmt.Errorf("%w: value codec is %d bytes, want %d", record.ErrValueSize, values.Size(), layout.ValueSize))
	}
	return &Typed[K, V]{
		c:      c,
		keys:   keys,
		values: values,
		kbuf:   make([]byte, layout.KeySize),
		vbuf:   make([]byte, layout.ValueSize),
	}
}

// Container returns the wrapped container.
func (t *Typed[K, V]) Container() Container {
	return t.c
}

func (t *Typed[K, V]) key(k K) []byte {
	t.keys.Put(t.kbuf, k)
	return t.kbuf
}

// Insert stores v under k, reporting whether k was absent.
func (t *Typed[K, V]) Insert(k K, v V) bool {
	t.values.Put(t.vbuf, v)
	return t.c.Insert(t.key(k), t.vbuf)
}

// Find returns the value stored under k.
func (t *Typed[K, V]) Find(k K) (V, bool) {
	value, found := t.c.Find(t.key(k))
	if !found {
		var zero V
		return zero, false
	}
	return t.values.Get(value), true
}

// Contains reports whether k is present.
func (t *Typed[K, V]) Contains(k K) bool {
	return t.c.Contains(t.key(k))
}

// Count returns 1 if k is present, else 0.
func (t *Typed[K, V]) Count(k K) int {
	return t.c.Count(t.key(k))
}

// Erase removes k, reporting whether it was present.
func (t *Typed[K, V]) Erase(k K) bool {
	return t.c.Erase(t.key(k))
}

// Size returns the number of keys.
func (t *Typed[K, V]) Size() int {
	return t.c.Size()
}

// Empty reports whether the container holds no keys.
func (t *Typed[K, V]) Empty() bool {
	return t.c.Empty()
}

// Clear removes every key.
func (t *Typed[K, V]) Clear() {
	t.c.Clear()
}

// Each calls fn for every entry in the container's traversal order until fn
// returns false. The container must not be mutated during the walk.
func (t *Typed[K, V]) Each(fn func(k K, v V) bool) error {
	if t.c.Empty() {
		return nil
	}
	c, err := t.c.CursorAtStart()
	if err != nil {
		return err
	}
	defer c.Close()
	for {
		e, err := c.GetEntry()
		if err != nil {
			return err
		}
		if !fn(t.keys.Get(e.Key), t.values.Get(e.Value)) {
			return nil
		}
		if c.Next() {
			return nil
		}
	}
}
