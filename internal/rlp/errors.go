package rlp

import "errors"

// ErrInvalidRLP is returned for any input that is structurally
// malformed: a bad length header, a truncated string or list, or
// trailing bytes left over after a complete item has been decoded.
var ErrInvalidRLP = errors.New("invalid RLP")

// ErrNotAList is returned by AsList when called on a byte-string item.
var ErrNotAList = errors.New("rlp: item is not a list")

// ErrNotBytes is returned by AsUint when called on a list item.
var ErrNotBytes = errors.New("rlp: item is not a byte string")
