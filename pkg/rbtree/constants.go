package rbtree

import (
	"errors"

	"keyedkit/pkg/config"
)

// Node colours, stored in the first header byte.
const (
	RED   byte = 0
	BLACK byte = 1
)

/////////////////////////////////////////////////////////////////////////////
///////////////////////////// Node Header ///////////////////////////////////
/////////////////////////////////////////////////////////////////////////////

// A node record is laid out as:
//
//	[colour:1][pad:3][parent:4][left:4][right:4][key][value]
//
// with parent/left/right stored as little-endian slab refs.
const (
	COLOUR_OFFSET int = 0
	PARENT_OFFSET int = 4
	LEFT_OFFSET   int = 8
	RIGHT_OFFSET  int = 12
	HEADER_SIZE   int = config.NodeHeaderSize
)

// ErrInvalidIterator is raised when an iterator past either end is dereferenced or advanced.
var ErrInvalidIterator = errors.New("rbtree: invalid iterator")

// ErrInvariant is wrapped by every structural violation IsRBTree reports.
var ErrInvariant = errors.New("rbtree: invariant violated")
