package chain

import (
	"context"
	"crypto/sha256"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// FakeBackend emulates the chain in tests. Each BlockNumber poll
// advances the head by one block, so confirmations accumulate at the
// watcher's polling pace.
type FakeBackend struct {
	mu sync.Mutex

	SubmitErr       error
	ReceiptStatus   uint64
	WithholdReceipt bool
	NetworkErr      error

	BalanceHandles map[string][32]byte
	BalanceErr     error
	ProfileHashes  map[[32]byte][32]byte
	ProfileErr     error
	Compliant      map[string]bool
	Rules          map[[32]byte][32]byte

	head      uint64
	nonce     uint64
	included  map[common.Hash]uint64
	Submitted []TxSpec
}

func NewFakeBackend() *FakeBackend {
	return &FakeBackend{
		ReceiptStatus:  types.ReceiptStatusSuccessful,
		BalanceHandles: map[string][32]byte{},
		ProfileHashes:  map[[32]byte][32]byte{},
		Compliant:      map[string]bool{},
		Rules:          map[[32]byte][32]byte{},
		included:       map[common.Hash]uint64{},
	}
}

func (f *FakeBackend) Submit(_ context.Context, spec TxSpec) (common.Hash, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SubmitErr != nil {
		return common.Hash{}, f.SubmitErr
	}
	f.nonce++
	hash := common.Hash(sha256.Sum256([]byte(fmt.Sprintf("%s:%s:%d", spec.Contract.Hex(), spec.Method, f.nonce))))
	f.head++
	f.included[hash] = f.head
	f.Submitted = append(f.Submitted, spec)
	return hash, nil
}

func (f *FakeBackend) TransactionReceipt(_ context.Context, hash common.Hash) (*types.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.WithholdReceipt {
		return nil, fmt.Errorf("not found")
	}
	block, ok := f.included[hash]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return &types.Receipt{
		Status:      f.ReceiptStatus,
		TxHash:      hash,
		BlockNumber: new(big.Int).SetUint64(block),
	}, nil
}

func (f *FakeBackend) BlockNumber(context.Context) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.head++
	return f.head, nil
}

func (f *FakeBackend) ConfidentialBalanceOf(_ context.Context, token, owner common.Address) ([32]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.BalanceErr != nil {
		return [32]byte{}, f.BalanceErr
	}
	return f.BalanceHandles[token.Hex()+owner.Hex()], nil
}

func (f *FakeBackend) EncryptedProfileHash(_ context.Context, userID [32]byte) ([32]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ProfileErr != nil {
		return [32]byte{}, f.ProfileErr
	}
	hash, ok := f.ProfileHashes[userID]
	if !ok {
		return [32]byte{}, fmt.Errorf("unknown user")
	}
	return hash, nil
}

func (f *FakeBackend) CheckUserCompliance(_ context.Context, user common.Address, poolID [32]byte) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Compliant[user.Hex()+common.Hash(poolID).Hex()], nil
}

func (f *FakeBackend) PoolRule(_ context.Context, poolID [32]byte) ([32]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Rules[poolID], nil
}

func (f *FakeBackend) ExpectedNetwork(context.Context) error {
	return f.NetworkErr
}

func (f *FakeBackend) SignerAddress() common.Address {
	return common.HexToAddress("0x00000000000000000000000000000000000000AA")
}

// SubmitCount reports how many writes reached the fake node.
func (f *FakeBackend) SubmitCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Submitted)
}
