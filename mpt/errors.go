package mpt

import "errors"

var (
	// ErrInvalidProofNodeHash is returned when a node's keccak256 does
	// not match the hash reference held by its parent.
	ErrInvalidProofNodeHash = errors.New("mpt: proof node hash mismatch")

	// ErrInvalidProofNodeLength is returned when a decoded node's RLP
	// list is neither 2 nor 17 items long.
	ErrInvalidProofNodeLength = errors.New("mpt: proof node has invalid length")

	// ErrInvalidNibbleRange is returned when a branch index read from
	// the path is not a valid nibble (0..15).
	ErrInvalidNibbleRange = errors.New("mpt: nibble out of range")

	// ErrKeyMismatchInExtensionOrLeaf is returned when the requested
	// path diverges from an extension's or leaf's compact path inside
	// the compressed segment. A legitimate proof of absence is instead
	// represented by an empty branch slot; divergence inside a
	// compressed segment is a proof failure.
	ErrKeyMismatchInExtensionOrLeaf = errors.New("mpt: key diverges inside extension or leaf path")

	// ErrLeafNodePathLengthMismatch is returned when a leaf is reached
	// but nibbles remain unconsumed on the requested path.
	ErrLeafNodePathLengthMismatch = errors.New("mpt: leaf reached with path remaining")
)
