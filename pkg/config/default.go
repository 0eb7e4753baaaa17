// Global keyedkit config.
package config

// Name of the toolkit.
const Name = "keyedkit"

// Prompt printed by REPL.
const Prompt = Name + "> "

// Minimum (and initial) number of buckets in a hash table. Must be a power of two.
const TableMin = 8

// A hash table grows before an insert once nmemb/capacity >= GrowNumerator/GrowDenominator.
const (
	GrowNumerator   = 3
	GrowDenominator = 4
)

// A hash table shrinks after an erase once nmemb/capacity <= ShrinkNumerator/ShrinkDenominator.
const (
	ShrinkNumerator   = 1
	ShrinkDenominator = 10
)

// The fewest records a slab allocator's first page will hold.
const SlabMinRecords = 8

// Bytes of tree node header (colour, parent, left, right) preceding the key and value.
const NodeHeaderSize = 16

// Return prompt if requested, else "".
func GetPrompt(flag bool) string {
	if flag {
		return Prompt
	}
	return ""
}
