package record

import (
	"bytes"
	"encoding/binary"
)

// Codec converts a Go value to and from a fixed-size record.
type Codec[T any] interface {
	// Size is the number of bytes every encoded value occupies.
	Size() int
	// Put encodes v into dst, which is exactly Size() bytes long.
	Put(dst []byte, v T)
	// Get decodes a value from src, which is exactly Size() bytes long.
	Get(src []byte) T
}

// Encode allocates a record and encodes v into it.
func Encode[T any](c Codec[T], v T) []byte {
	buf := make([]byte, c.Size())
	c.Put(buf, v)
	return buf
}

// Int64 encodes signed integers big-endian with the sign bit flipped, so
// that Bytes orders encoded records the same way as the integers.
var Int64 Codec[int64] = int64Codec{}

type int64Codec struct{}

func (int64Codec) Size() int { return 8 }

func (int64Codec) Put(dst []byte, v int64) {
	binary.BigEndian.PutUint64(dst, uint64(v)^(1<<63))
}

func (int64Codec) Get(src []byte) int64 {
	return int64(binary.BigEndian.Uint64(src) ^ (1 << 63))
}

// Uint32 encodes unsigned integers big-endian.
var Uint32 Codec[uint32] = uint32Codec{}

type uint32Codec struct{}

func (uint32Codec) Size() int { return 4 }

func (uint32Codec) Put(dst []byte, v uint32) {
	binary.BigEndian.PutUint32(dst, v)
}

func (uint32Codec) Get(src []byte) uint32 {
	return binary.BigEndian.Uint32(src)
}

// FixedString returns a codec for strings of at most n bytes, NUL padded.
// Longer strings are truncated to n bytes.
func FixedString(n int) Codec[string] {
	return fixedString(n)
}

type fixedString int

func (f fixedString) Size() int { return int(f) }

func (f fixedString) Put(dst []byte, v string) {
	n := copy(dst, v)
	clear(dst[n:])
}

func (f fixedString) Get(src []byte) string {
	if i := bytes.IndexByte(src, 0); i >= 0 {
		return string(src[:i])
	}
	return string(src)
}

// Empty is the codec for set values: it occupies no bytes.
var Empty Codec[struct{}] = emptyCodec{}

type emptyCodec struct{}

func (emptyCodec) Size() int { return 0 }

func (emptyCodec) Put([]byte, struct{}) {}

func (emptyCodec) Get([]byte) struct{} { return struct{}{} }
