package mpt

import (
	"bytes"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
)

// rlpString and rlpList build RLP encodings of short items (payload
// under 56 bytes, which covers every fixture in this file) without
// depending on the package under test.

func rlpString(b []byte) []byte {
	if len(b) == 1 && b[0] < 0x80 {
		return []byte{b[0]}
	}
	out := make([]byte, 0, 1+len(b))
	out = append(out, 0x80+byte(len(b)))
	return append(out, b...)
}

func rlpList(items ...[]byte) []byte {
	var payload []byte
	for _, it := range items {
		payload = append(payload, it...)
	}
	out := make([]byte, 0, 1+len(payload))
	out = append(out, 0xc0+byte(len(payload)))
	return append(out, payload...)
}

func emptyBranchItems() [][]byte {
	items := make([][]byte, 17)
	for i := range items {
		items[i] = rlpString(nil)
	}
	return items
}

func TestWalk_BranchTerminator(t *testing.T) {
	items := emptyBranchItems()
	items[16] = rlpString([]byte("hello-term"))
	root := rlpList(items...)
	rootHash := crypto.Keccak256Hash(root)

	value, found, err := Walk(nil, [][]byte{root}, rootHash, crypto.Keccak256Hash)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !found {
		t.Fatalf("expected branch terminator value to be found")
	}
	if string(value) != "hello-term" {
		t.Errorf("got %q", value)
	}
}

func TestWalk_InlineLeafChild(t *testing.T) {
	// Leaf with a single remaining nibble (1), value 0x09. Its RLP is
	// 3 bytes, well under the 32-byte inlining threshold.
	leaf := rlpList(rlpString([]byte{0x31}), rlpString([]byte{0x09}))

	items := emptyBranchItems()
	items[3] = leaf
	root := rlpList(items...)
	rootHash := crypto.Keccak256Hash(root)

	value, found, err := Walk([]byte{3, 1}, [][]byte{root}, rootHash, crypto.Keccak256Hash)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !found {
		t.Fatalf("expected inline leaf value to be found")
	}
	if !bytes.Equal(value, []byte{0x09}) {
		t.Errorf("got %x", value)
	}
}

func TestWalk_ThreeHopHashLinked(t *testing.T) {
	// branch --[nibble 9]--> extension (path 4,5) --> leaf (path 6,7,8)
	// all three hops cross a hash reference, so each node is its own
	// entry in the proof array.
	leaf := rlpList(rlpString([]byte{0x36, 0x78}), rlpString([]byte{0xAA}))
	leafHash := crypto.Keccak256Hash(leaf)

	ext := rlpList(rlpString([]byte{0x00, 0x45}), rlpString(leafHash.Bytes()))
	extHash := crypto.Keccak256Hash(ext)

	items := emptyBranchItems()
	items[9] = rlpString(extHash.Bytes())
	root := rlpList(items...)
	rootHash := crypto.Keccak256Hash(root)

	nodes := [][]byte{root, ext, leaf}
	value, found, err := Walk([]byte{9, 4, 5, 6, 7, 8}, nodes, rootHash, crypto.Keccak256Hash)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !found {
		t.Fatalf("expected value to be found")
	}
	if !bytes.Equal(value, []byte{0xAA}) {
		t.Errorf("got %x", value)
	}
}

// TestWalk_KeyMismatchInExtension exercises the design choice recorded
// in SPEC_FULL.md: a key that diverges from a node's compact path
// inside the compressed segment is a hard failure, not an absence
// result.
func TestWalk_KeyMismatchInExtension(t *testing.T) {
	dummyNext := make([]byte, 32)
	ext := rlpList(rlpString([]byte{0x00, 0x12}), rlpString(dummyNext))
	rootHash := crypto.Keccak256Hash(ext)

	_, _, err := Walk([]byte{1, 9}, [][]byte{ext}, rootHash, crypto.Keccak256Hash)
	if !errors.Is(err, ErrKeyMismatchInExtensionOrLeaf) {
		t.Fatalf("expected ErrKeyMismatchInExtensionOrLeaf, got %v", err)
	}
}

func TestWalk_LeafNodePathLengthMismatch(t *testing.T) {
	leaf := rlpList(rlpString([]byte{0x35}), rlpString([]byte{0x01}))
	rootHash := crypto.Keccak256Hash(leaf)

	_, _, err := Walk([]byte{5, 3}, [][]byte{leaf}, rootHash, crypto.Keccak256Hash)
	if !errors.Is(err, ErrLeafNodePathLengthMismatch) {
		t.Fatalf("expected ErrLeafNodePathLengthMismatch, got %v", err)
	}
}

func TestWalk_InvalidProofNodeLength(t *testing.T) {
	bad := rlpList(rlpString([]byte("a")), rlpString([]byte("b")), rlpString([]byte("c")))
	rootHash := crypto.Keccak256Hash(bad)

	_, _, err := Walk([]byte{0}, [][]byte{bad}, rootHash, crypto.Keccak256Hash)
	if !errors.Is(err, ErrInvalidProofNodeLength) {
		t.Fatalf("expected ErrInvalidProofNodeLength, got %v", err)
	}
}

func TestWalk_InvalidNibbleRange(t *testing.T) {
	root := rlpList(emptyBranchItems()...)
	rootHash := crypto.Keccak256Hash(root)

	_, _, err := Walk([]byte{16}, [][]byte{root}, rootHash, crypto.Keccak256Hash)
	if !errors.Is(err, ErrInvalidNibbleRange) {
		t.Fatalf("expected ErrInvalidNibbleRange, got %v", err)
	}
}

func TestWalk_AbsentEmptyBranchSlot(t *testing.T) {
	root := rlpList(emptyBranchItems()...)
	rootHash := crypto.Keccak256Hash(root)

	value, found, err := Walk([]byte{2}, [][]byte{root}, rootHash, crypto.Keccak256Hash)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found {
		t.Fatalf("expected absence, got %x", value)
	}
}

func TestWalk_AbsentOnTruncatedProof(t *testing.T) {
	dummyChildHash := bytes.Repeat([]byte{0xAB}, 32)
	items := emptyBranchItems()
	items[5] = rlpString(dummyChildHash)
	root := rlpList(items...)
	rootHash := crypto.Keccak256Hash(root)

	// Only the branch is supplied; the proof runs out before the node
	// at nibble 5's hash reference can be resolved.
	value, found, err := Walk([]byte{5}, [][]byte{root}, rootHash, crypto.Keccak256Hash)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found {
		t.Fatalf("expected absence on truncated proof, got %x", value)
	}
}

func TestWalk_CorruptedNodeFailsHashCheck(t *testing.T) {
	items := emptyBranchItems()
	items[16] = rlpString([]byte("hello-term"))
	root := rlpList(items...)
	rootHash := crypto.Keccak256Hash(root)

	corrupted := append([]byte(nil), root...)
	corrupted[len(corrupted)-1] ^= 0x01

	_, _, err := Walk(nil, [][]byte{corrupted}, rootHash, crypto.Keccak256Hash)
	if !errors.Is(err, ErrInvalidProofNodeHash) {
		t.Fatalf("expected ErrInvalidProofNodeHash, got %v", err)
	}
}
