package rlp

import (
	"fmt"

	"github.com/holiman/uint256"
)

// Item is a decoded RLP value: either a byte string or a list of
// Items. It borrows from the buffer it was decoded from rather than
// copying, so it must not outlive the input slice passed to Decode.
type Item struct {
	isList  bool
	payload []byte // byte-string content, excluding the length header
	items   []Item // sub-items, only set when isList
	raw     []byte // the full encoding of this item, header included
}

// EncodedLen returns the number of bytes this item occupied in its
// source buffer, header included. The trie walker uses
// EncodedLen() < 32 as the definition of an inline child.
func (it Item) EncodedLen() int {
	return len(it.raw)
}

// IsList reports whether this item is a list, as opposed to a byte
// string.
func (it Item) IsList() bool {
	return it.isList
}

// AsList returns the item's sub-items. It fails if the item is a byte
// string.
func (it Item) AsList() ([]Item, error) {
	if !it.isList {
		return nil, fmt.Errorf("%w: %x", ErrNotAList, it.raw)
	}
	return it.items, nil
}

// AsBytes returns the content of a byte-string item, or, for a list
// item, the item's original RLP encoding. This dual behavior is
// intentional: the trie walker uses it both to read a leaf/branch
// value (byte string) and to re-hash an inline child (list), without
// needing to know ahead of time which one it has.
func (it Item) AsBytes() []byte {
	if it.isList {
		return it.raw
	}
	return it.payload
}

// AsUint interprets a byte-string item's content as a big-endian
// unsigned integer. Leading zero bytes are accepted; this layer does
// not enforce canonical integer encoding. It fails if the item is a
// list.
func (it Item) AsUint() (*uint256.Int, error) {
	if it.isList {
		return nil, fmt.Errorf("%w: %x", ErrNotBytes, it.raw)
	}
	if len(it.payload) > 32 {
		return nil, fmt.Errorf("%w: value %d bytes exceeds 256 bits", ErrInvalidRLP, len(it.payload))
	}
	return new(uint256.Int).SetBytes(it.payload), nil
}
