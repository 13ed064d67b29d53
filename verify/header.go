package verify

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"sparseth/internal/rlp"
)

// headerStateRootField is the index of the state root within an
// RLP-encoded block header's field list. It is stable across every
// fork from Frontier onward; later forks only ever append fields.
const headerStateRootField = 3

// VerifyHeader checks that headerRLP's keccak256 matches blockHash,
// then extracts the header's state root. A mismatch here means the
// header supplied to the verifier was not the one that produced
// blockHash, and nothing the header contains can be trusted.
func VerifyHeader(headerRLP []byte, blockHash common.Hash) (common.Hash, error) {
	if got := crypto.Keccak256Hash(headerRLP); got != blockHash {
		return common.Hash{}, fmt.Errorf("%w: got %s, want %s", ErrBlockHeaderHashMismatch, got, blockHash)
	}

	item, err := rlp.Decode(headerRLP)
	if err != nil {
		return common.Hash{}, fmt.Errorf("%w: %v", ErrInvalidHeaderRLP, err)
	}
	fields, err := item.AsList()
	if err != nil || len(fields) <= headerStateRootField {
		return common.Hash{}, fmt.Errorf("%w: missing state root field", ErrInvalidHeaderRLP)
	}

	stateRoot := fields[headerStateRootField].AsBytes()
	if len(stateRoot) != common.HashLength {
		return common.Hash{}, fmt.Errorf("%w: state root is not 32 bytes", ErrInvalidHeaderRLP)
	}
	return common.BytesToHash(stateRoot), nil
}
