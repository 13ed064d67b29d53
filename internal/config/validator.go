package config

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"sparseth/internal/log"
)

// validator validates a raw watchlist config before it is parsed into
// an AppConfig.
type validator struct {
	log log.Logger
}

// newValidator creates a new validator with the specified logger.
func newValidator(log log.Logger) *validator {
	return &validator{
		log: log.With("component", "config-validator"),
	}
}

// validate validates the raw config.
func (v *validator) validate(raw *config) error {
	if len(raw.Watchlist) == 0 {
		return fmt.Errorf("watchlist is empty")
	}
	for idx, e := range raw.Watchlist {
		v.log.Debug("validate watchlist entry", "address", e.Address, "index", idx)
		if err := v.validateEntry(e); err != nil {
			return fmt.Errorf("entry at index %d: %w", idx, err)
		}
	}
	return nil
}

// validateEntry validates a single raw watchlist entry.
func (v *validator) validateEntry(e *entry) error {
	if e.Address == "" {
		return fmt.Errorf("address is empty")
	}
	if !common.IsHexAddress(e.Address) {
		return fmt.Errorf("invalid address: %s", e.Address)
	}
	if e.Slot != "" && !isHexHash(e.Slot) {
		return fmt.Errorf("invalid slot: %s", e.Slot)
	}
	return nil
}

// isHexHash reports whether s is a well-formed 32-byte hex hash,
// with or without the 0x prefix.
func isHexHash(s string) bool {
	if has0xPrefix(s) {
		s = s[2:]
	}
	if len(s) != 2*common.HashLength {
		return false
	}
	for _, c := range s {
		if !isHexDigit(c) {
			return false
		}
	}
	return true
}

func has0xPrefix(s string) bool {
	return len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}

func isHexDigit(c rune) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
