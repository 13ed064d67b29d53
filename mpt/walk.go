package mpt

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"sparseth/internal/rlp"
)

// KeccakFunc is the injectable keccak256 primitive the walker binds
// consecutive proof nodes with. It must be reentrant; the reference
// implementation is github.com/ethereum/go-ethereum/crypto.Keccak256Hash.
type KeccakFunc func(data []byte) common.Hash

// Walk walks an ordered Merkle-Patricia trie proof against an
// expected root hash, looking up pathNibbles.
//
// It returns (value, true, nil) when the key is present, (nil, false,
// nil) when the proof establishes the key's absence, and a non-nil
// error when the proof itself is invalid. Nodes are consumed strictly
// in the order given; the walker never searches and never follows
// more than one branch.
func Walk(pathNibbles []byte, nodes [][]byte, expectedRoot common.Hash, keccak KeccakFunc) ([]byte, bool, error) {
	pathPtr := 0
	currentHash := expectedRoot
	nextIdx := 0

	var inline *rlp.Item

	for {
		var node Node
		var err error

		switch {
		case inline != nil:
			node, err = decodeNode(inline.AsBytes())
			inline = nil
		case nextIdx < len(nodes):
			raw := nodes[nextIdx]
			nextIdx++
			if keccak(raw) != currentHash {
				return nil, false, fmt.Errorf("%w: want %s", ErrInvalidProofNodeHash, currentHash)
			}
			node, err = decodeNode(raw)
		default:
			return nil, false, nil // proof exhausted: absence
		}
		if err != nil {
			return nil, false, err
		}

		switch n := node.(type) {
		case BranchNode:
			if pathPtr == len(pathNibbles) {
				if !n.HasValue() {
					return nil, false, nil // absence: branch terminates path but carries no value
				}
				return n.Value.AsBytes(), true, nil
			}

			nibble := pathNibbles[pathPtr]
			if nibble >= 16 {
				return nil, false, fmt.Errorf("%w: %d", ErrInvalidNibbleRange, nibble)
			}
			pathPtr++

			child := n.Children[nibble]
			if len(child.AsBytes()) == 0 && !child.IsList() {
				return nil, false, nil // absence: empty branch slot
			}

			if child.EncodedLen() < 32 {
				c := child
				inline = &c
				continue
			}

			hash, err := childHash(child)
			if err != nil {
				return nil, false, err
			}
			currentHash = hash

		case ExtensionNode:
			shared := sharedPrefixLen(n.Path, pathNibbles[pathPtr:])
			if shared != len(n.Path) {
				return nil, false, ErrKeyMismatchInExtensionOrLeaf
			}
			pathPtr += shared

			if n.Next.EncodedLen() < 32 {
				next := n.Next
				inline = &next
				continue
			}

			hash, err := childHash(n.Next)
			if err != nil {
				return nil, false, err
			}
			currentHash = hash

		case LeafNode:
			shared := sharedPrefixLen(n.Path, pathNibbles[pathPtr:])
			if shared != len(n.Path) {
				return nil, false, ErrKeyMismatchInExtensionOrLeaf
			}
			pathPtr += shared
			if pathPtr != len(pathNibbles) {
				return nil, false, ErrLeafNodePathLengthMismatch
			}
			return n.Value.AsBytes(), true, nil
		}
	}
}

// childHash interprets a hash-referencing child item as a 32-byte
// root hash, per the hex-prefix/RLP convention that such a reference
// is the big-endian keccak256 of the child's RLP encoding.
func childHash(item rlp.Item) (common.Hash, error) {
	v, err := item.AsUint()
	if err != nil {
		return common.Hash{}, fmt.Errorf("%w: hash reference is not a byte string", ErrInvalidProofNodeLength)
	}
	return common.Hash(v.Bytes32()), nil
}

// sharedPrefixLen returns the number of leading elements a and b have
// in common.
func sharedPrefixLen(a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	return n
}
