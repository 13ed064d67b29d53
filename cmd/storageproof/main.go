package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sparseth/internal/config"
	"sparseth/internal/log"
	"sparseth/rpcproof"
	"sparseth/store"
	"sparseth/store/badger"
	"sparseth/store/mem"
	"sparseth/watcher"
)

func main() {
	rpcURL := flag.String("rpc", "ws://localhost:8545", "RPC provider URL to connect to")
	dbPath := flag.String("db", "", "Path to the on-disk proof cache (empty: in-memory only)")
	configPath := flag.String("config", "watchlist.yaml", "Path to watchlist config file")
	networkFlag := flag.String("network", "mainnet", "Ethereum network to use")
	blockTag := flag.String("block-tag", "finalized", "Block tag to verify the watchlist against")
	pollInterval := flag.Duration("poll-interval", 12*time.Second, "Time between verification rounds")

	if v := os.Getenv("EXECUTION_RPC_URL"); v != "" {
		flag.Set("rpc", v)
	}
	if v := os.Getenv("DB_PATH"); v != "" {
		flag.Set("db", v)
	}
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		flag.Set("config", v)
	}
	if v := os.Getenv("ETHEREUM_NETWORK"); v != "" {
		flag.Set("network", v)
	}

	flag.Parse()

	logger := log.New(log.NewTerminalHandler()).With("component", "main")

	if _, exists := config.Networks[*networkFlag]; !exists {
		logger.Error("unsupported network", "network", *networkFlag)
		os.Exit(2)
	}

	logger.Info("using RPC provider", "url", *rpcURL)
	logger.Info("using network", "name", *networkFlag)
	logger.Info("using config file", "path", *configPath)
	logger.Info("verifying against block tag", "tag", *blockTag)

	appConfig, err := config.NewLoader(logger).Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	client, err := rpcproof.NewClient(ctx, *rpcURL)
	if err != nil {
		logger.Error("failed to connect to RPC provider", "err", err)
		os.Exit(1)
	}
	defer client.Close()

	kv, err := openStore(*dbPath)
	if err != nil {
		logger.Error("failed to open proof cache", "err", err)
		os.Exit(1)
	}
	cache := store.NewProofCache(kv)
	defer cache.Close()
	headers := store.NewHeaderCache(kv)

	w := watcher.New(&watcher.Config{
		Watchlist:    appConfig.Watchlist,
		PollInterval: *pollInterval,
		BlockTag:     *blockTag,
	}, client, cache, headers, logger)

	logger.Info("start watcher", "entries", len(appConfig.Watchlist))
	if err = w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("watcher stopped with error", "err", err)
		os.Exit(1)
	}

	logger.Info("graceful shutdown")
}

// openStore opens the badger-backed proof cache at path, or an
// in-memory store if path is empty.
func openStore(path string) (store.KeyValStore, error) {
	if path == "" {
		return mem.New(), nil
	}
	db, err := badger.New(path)
	if err != nil {
		return nil, fmt.Errorf("open badger store at %s: %w", path, err)
	}
	return db, nil
}
