package config

import (
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"gopkg.in/yaml.v3"

	"sparseth/internal/log"
)

// AppConfig is the parsed watchlist a storageproof CLI continuously
// verifies: one or more (address, slot) pairs, each checked on every
// poll against the block the watcher's block tag resolves to.
type AppConfig struct {
	Watchlist []*WatchEntry
}

// WatchEntry is a single account/slot pair to verify. Slot is the
// nil hash for accounts whose balance/nonce alone is being watched,
// with no particular storage slot of interest.
type WatchEntry struct {
	Addr common.Address
	Slot common.Hash
}

// config represents the raw YAML structure of the watchlist file.
type config struct {
	Watchlist []*entry `yaml:"watchlist"`
}

// entry represents a single raw YAML watchlist entry.
type entry struct {
	Address string `yaml:"address"`
	Slot    string `yaml:"slot"`
}

// Loader reads and validates the watchlist config file.
type Loader struct {
	log log.Logger
	val *validator
}

// NewLoader creates a new config Loader with the specified logging
// context attached.
func NewLoader(log log.Logger) *Loader {
	return &Loader{
		log: log.With("component", "config-loader"),
		val: newValidator(log),
	}
}

// Load reads and validates the watchlist file at the specified path.
func (l *Loader) Load(path string) (*AppConfig, error) {
	l.log.Info("load config", "path", path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var raw config
	if err = yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err = l.val.validate(&raw); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	watchlist := make([]*WatchEntry, 0, len(raw.Watchlist))
	for _, unparsed := range raw.Watchlist {
		watchlist = append(watchlist, l.parseEntry(unparsed))
	}

	return &AppConfig{Watchlist: watchlist}, nil
}

// parseEntry transforms a raw YAML watchlist entry into a WatchEntry.
// Callers must validate raw before calling this.
func (l *Loader) parseEntry(e *entry) *WatchEntry {
	l.log.Debug("load watchlist entry", "address", e.Address, "slot", e.Slot)

	we := &WatchEntry{Addr: common.HexToAddress(e.Address)}
	if e.Slot != "" {
		we.Slot = common.HexToHash(e.Slot)
	}
	return we
}
