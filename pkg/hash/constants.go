package hash

import (
	"errors"

	"keyedkit/pkg/config"
)

/////////////////////////////////////////////////////////////////////////////
////////////////////////// Low-level Constants //////////////////////////////
/////////////////////////////////////////////////////////////////////////////

// TABLE_MIN is the smallest bucket array a non-empty table holds.
const TABLE_MIN int = config.TableMin

// UNSET is the key-index of a bucket that has never held a key.
const UNSET int32 = -1

// ErrInvariant is wrapped by every structural violation IsHash reports.
var ErrInvariant = errors.New("hash: invariant violated")

// ErrUnknownHasher indicates a hasher name HasherByName does not recognise.
var ErrUnknownHasher = errors.New("hash: unknown hasher")
