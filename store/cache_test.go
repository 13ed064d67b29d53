package store_test

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"sparseth/store"
	"sparseth/store/mem"
	"sparseth/verify"
)

func TestProofCache_RoundTripWithValue(t *testing.T) {
	cache := store.NewProofCache(mem.New())
	defer cache.Close()

	blockHash := common.HexToHash("0x01")
	address := common.HexToAddress("0x02")
	slotKey := common.HexToHash("0x03")
	account := &verify.Account{
		Nonce:       7,
		Balance:     big.NewInt(1000),
		StorageRoot: common.HexToHash("0xaa"),
		CodeHash:    common.HexToHash("0xbb"),
	}
	value := big.NewInt(42)

	if err := cache.Put(blockHash, address, slotKey, account, value); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	gotAccount, gotValue, found, err := cache.Get(blockHash, address, slotKey)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !found {
		t.Fatalf("expected cache hit")
	}
	if gotAccount.Nonce != account.Nonce || gotAccount.Balance.Cmp(account.Balance) != 0 {
		t.Errorf("got account %+v, want %+v", gotAccount, account)
	}
	if gotAccount.StorageRoot != account.StorageRoot || gotAccount.CodeHash != account.CodeHash {
		t.Errorf("got account %+v, want %+v", gotAccount, account)
	}
	if gotValue == nil || gotValue.Cmp(value) != 0 {
		t.Errorf("got value %v, want %v", gotValue, value)
	}
}

func TestProofCache_RoundTripNilAccount(t *testing.T) {
	cache := store.NewProofCache(mem.New())
	defer cache.Close()

	blockHash := common.HexToHash("0x01")
	address := common.HexToAddress("0x02")
	slotKey := common.HexToHash("0x03")

	if err := cache.Put(blockHash, address, slotKey, nil, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	account, value, found, err := cache.Get(blockHash, address, slotKey)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !found {
		t.Fatalf("expected cache hit")
	}
	if account != nil || value != nil {
		t.Errorf("expected nil account and value, got %v, %v", account, value)
	}
}

func TestProofCache_Miss(t *testing.T) {
	cache := store.NewProofCache(mem.New())
	defer cache.Close()

	_, _, found, err := cache.Get(common.Hash{}, common.Address{}, common.Hash{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found {
		t.Fatalf("expected cache miss")
	}
}
