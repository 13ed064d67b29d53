// Package mpt implements the Merkle-Patricia trie proof walker: given
// an ordered chain of RLP-encoded trie nodes and an expected root
// hash, it proves (or disproves) that a key maps to a given value.
package mpt

import (
	"fmt"

	"sparseth/internal/hexprefix"
	"sparseth/internal/rlp"
)

// Node is a decoded Merkle-Patricia trie node: a Branch17, an
// Extension2, or a Leaf2, discriminated by list arity and, for
// 2-item nodes, the hex-prefix flag of their first item.
type Node interface {
	isNode()
}

// BranchNode is a 17-item node. Children holds the 16 nibble-indexed
// child references (hash, inline, or empty); Value is the content
// stored at a key that terminates exactly at this branch, or an empty
// byte string when there is none (see HasValue).
type BranchNode struct {
	Children [16]rlp.Item
	Value    rlp.Item
	hasValue bool
}

func (BranchNode) isNode() {}

// HasValue reports whether this branch carries a value at item 16.
func (b BranchNode) HasValue() bool {
	return b.hasValue
}

// ExtensionNode is a 2-item node whose compact-encoded path is shared
// by every key below it; Next references the child node.
type ExtensionNode struct {
	Path []byte
	Next rlp.Item
}

func (ExtensionNode) isNode() {}

// LeafNode is a 2-item node whose compact-encoded path, appended to
// the path consumed so far, identifies exactly one key; Value is that
// key's stored content.
type LeafNode struct {
	Path  []byte
	Value rlp.Item
}

func (LeafNode) isNode() {}

// decodeNode decodes a single trie node from its RLP encoding.
func decodeNode(nodeRLP []byte) (Node, error) {
	item, err := rlp.Decode(nodeRLP)
	if err != nil {
		return nil, err
	}
	items, err := item.AsList()
	if err != nil {
		return nil, fmt.Errorf("%w: node is not a list", ErrInvalidProofNodeLength)
	}

	switch len(items) {
	case 17:
		return decodeBranch(items)
	case 2:
		return decodeShort(items)
	default:
		return nil, fmt.Errorf("%w: node has %d items", ErrInvalidProofNodeLength, len(items))
	}
}

func decodeBranch(items []rlp.Item) (Node, error) {
	var b BranchNode
	for i := 0; i < 16; i++ {
		b.Children[i] = items[i]
	}
	b.Value = items[16]
	b.hasValue = len(b.Value.AsBytes()) > 0
	return b, nil
}

func decodeShort(items []rlp.Item) (Node, error) {
	nibbles, isLeaf, err := hexprefix.Decode(items[0].AsBytes())
	if err != nil {
		return nil, err
	}
	if isLeaf {
		return LeafNode{Path: nibbles, Value: items[1]}, nil
	}
	return ExtensionNode{Path: nibbles, Next: items[1]}, nil
}
