package verify

import "errors"

var (
	// ErrInvalidHeaderRLP is returned when a block header's RLP cannot
	// be decoded as a list with at least a state-root field.
	ErrInvalidHeaderRLP = errors.New("verify: invalid header RLP")

	// ErrBlockHeaderHashMismatch is returned when a header's keccak256
	// does not match the hash it was asserted to back.
	ErrBlockHeaderHashMismatch = errors.New("verify: block header hash mismatch")

	// ErrInvalidAccountRLP is returned when an account's or a storage
	// slot's decoded trie value does not have the expected shape.
	ErrInvalidAccountRLP = errors.New("verify: invalid account RLP")

	// ErrAccountNotFound is returned when the account proof establishes
	// that the requested address has no account at the given state
	// root.
	ErrAccountNotFound = errors.New("verify: account not found")
)
