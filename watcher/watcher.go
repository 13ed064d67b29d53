// Package watcher polls an Ethereum RPC endpoint for the block matching
// a configured tag (finalized, safe or latest) and verifies a configured list of (account, slot) pairs
// against it, the way node.Node coordinates the teacher's block
// listener and monitors.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/sync/errgroup"

	internalconfig "sparseth/internal/config"
	"sparseth/internal/log"
	"sparseth/rpcproof"
	"sparseth/store"
	"sparseth/verify"
)

// Config holds the parameters needed to run a Watcher.
type Config struct {
	// Watchlist is the set of (address, slot) pairs to verify.
	Watchlist []*internalconfig.WatchEntry
	// PollInterval is the time between successive verification
	// rounds.
	PollInterval time.Duration
	// BlockTag is the block tag resolved on each poll ("finalized",
	// "safe" or "latest").
	BlockTag string
}

// Watcher repeatedly verifies a watchlist against the latest block
// matching its configured tag, caching results it has already proven.
type Watcher struct {
	cfg      *Config
	client   *rpcproof.Client
	provider *rpcproof.Provider
	cache    *store.ProofCache
	log      log.Logger
}

// New builds a Watcher wired to the given RPC client, proof cache and
// header cache. headers may be nil to disable header caching.
func New(cfg *Config, client *rpcproof.Client, cache *store.ProofCache, headers *store.HeaderCache, log log.Logger) *Watcher {
	return &Watcher{
		cfg:      cfg,
		client:   client,
		provider: rpcproof.NewProvider(client, headers),
		cache:    cache,
		log:      log.With("component", "watcher"),
	}
}

// Run polls and verifies the watchlist until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	if err := w.pollOnce(ctx); err != nil {
		w.log.Error("poll failed", "err", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.pollOnce(ctx); err != nil {
				w.log.Error("poll failed", "err", err)
			}
		}
	}
}

// pollOnce resolves the configured block tag and verifies every
// watchlist entry against it concurrently.
func (w *Watcher) pollOnce(ctx context.Context) error {
	blockHash, err := w.client.GetBlockHash(ctx, w.cfg.BlockTag)
	if err != nil {
		return fmt.Errorf("resolve block tag %q: %w", w.cfg.BlockTag, err)
	}
	w.log.Debug("resolved block", "tag", w.cfg.BlockTag, "hash", blockHash.Hex())

	g, gctx := errgroup.WithContext(ctx)
	for _, entry := range w.cfg.Watchlist {
		entry := entry
		g.Go(func() error {
			w.verifyEntry(gctx, blockHash, entry)
			return nil
		})
	}
	return g.Wait()
}

// verifyEntry verifies a single watchlist entry against blockHash,
// consulting and updating the proof cache. Verification failures for
// one entry are logged, not propagated, so one bad entry never stops
// the rest of the watchlist from being checked.
func (w *Watcher) verifyEntry(ctx context.Context, blockHash common.Hash, entry *internalconfig.WatchEntry) {
	slotKey := crypto.Keccak256Hash(entry.Slot[:])
	entryLog := w.log.With("address", entry.Addr.Hex(), "slot", entry.Slot.Hex(), "block", blockHash.Hex())

	if account, value, found, err := w.cache.Get(blockHash, entry.Addr, slotKey); err == nil && found {
		entryLog.Debug("cache hit", "account", account != nil, "value", value)
		return
	}

	account, value, err := w.provider.VerifySlotAtBlock(ctx, entry.Addr, entry.Slot, blockHash)
	if errors.Is(err, verify.ErrAccountNotFound) {
		if cerr := w.cache.Put(blockHash, entry.Addr, slotKey, nil, nil); cerr != nil {
			entryLog.Warn("failed to cache result", "err", cerr)
		}
		entryLog.Info("account does not exist at block")
		return
	}
	if err != nil {
		entryLog.Error("verification failed", "err", err)
		return
	}

	if err = w.cache.Put(blockHash, entry.Addr, slotKey, account, value); err != nil {
		entryLog.Warn("failed to cache result", "err", err)
	}
	entryLog.Info("verified", "nonce", account.Nonce, "balance", account.Balance, "value", value)
}
