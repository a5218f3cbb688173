package services

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/0xzenith/zenith-go/chain"
	"github.com/0xzenith/zenith-go/errors"
	"github.com/0xzenith/zenith-go/models"
	"github.com/0xzenith/zenith-go/types/requests"
)

type fakeDecryptor struct {
	mu        sync.Mutex
	plaintext string
	err       error
	block     chan struct{}
	calls     int
}

func (f *fakeDecryptor) Encrypt(ctx context.Context, contract, owner string, amount *big.Int) (*models.EncryptedPayload, error) {
	return nil, fmt.Errorf("not implemented")
}

func (f *fakeDecryptor) Decrypt(ctx context.Context, handle []byte) (string, error) {
	f.mu.Lock()
	f.calls++
	block := f.block
	f.mu.Unlock()
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if f.err != nil {
		return "", f.err
	}
	return f.plaintext, nil
}

func revealReq() *requests.DecryptBalanceRequest {
	return &requests.DecryptBalanceRequest{UserID: "me", Asset: "DGOLD", Address: testOwner}
}

func fetchReq() *requests.FetchBalanceRequest {
	return &requests.FetchBalanceRequest{UserID: "me", Asset: "DGOLD", Address: testOwner}
}

func setBalanceHandle(backend *chain.FakeBackend, token, owner string, last byte) {
	var handle [32]byte
	handle[31] = last
	backend.BalanceHandles[common.HexToAddress(token).Hex()+common.HexToAddress(owner).Hex()] = handle
}

func TestRevealBalance_FormatsPlaintext(t *testing.T) {
	backend := chain.NewFakeBackend()
	setBalanceHandle(backend, dgoldToken, testOwner, 0x7f)
	decryptor := &fakeDecryptor{plaintext: "2500000"}
	svc := NewBalanceService(testConfig(), backend, decryptor, nil, zap.NewNop())

	res, err := svc.RevealBalance(context.Background(), revealReq())
	require.NoError(t, err)
	assert.True(t, res.Data.Revealed)
	assert.Equal(t, "2.5", res.Data.Plaintext)
	assert.Equal(t, "DGOLD", res.Data.Asset)
	assert.NotEmpty(t, res.Data.Handle)
	require.NotNil(t, res.Data.LastRevealedAt)
}

func TestRevealBalance_ReFetchUpdatesTimestamp(t *testing.T) {
	backend := chain.NewFakeBackend()
	setBalanceHandle(backend, dgoldToken, testOwner, 1)
	decryptor := &fakeDecryptor{plaintext: "1000000"}
	svc := NewBalanceService(testConfig(), backend, decryptor, nil, zap.NewNop())

	first, err := svc.RevealBalance(context.Background(), revealReq())
	require.NoError(t, err)

	decryptor.mu.Lock()
	decryptor.plaintext = "3000000"
	decryptor.mu.Unlock()

	second, err := svc.RevealBalance(context.Background(), revealReq())
	require.NoError(t, err)
	assert.Equal(t, "3", second.Data.Plaintext)
	assert.False(t, second.Data.LastRevealedAt.Before(*first.Data.LastRevealedAt))
	assert.Equal(t, 2, decryptor.calls)
}

func TestRevealBalance_DecryptFailureLeavesViewConcealed(t *testing.T) {
	backend := chain.NewFakeBackend()
	setBalanceHandle(backend, dgoldToken, testOwner, 1)
	decryptor := &fakeDecryptor{err: fmt.Errorf("relayer exploded")}
	svc := NewBalanceService(testConfig(), backend, decryptor, nil, zap.NewNop())

	_, err := svc.RevealBalance(context.Background(), revealReq())
	require.Error(t, err)
	assert.Equal(t, errors.ErrDecrypt, errors.AsAppError(err).Type)

	view, err := svc.FetchBalance(context.Background(), fetchReq())
	require.NoError(t, err)
	assert.False(t, view.Data.Revealed)
	assert.Empty(t, view.Data.Plaintext)
}

func TestRevealBalance_MalformedPlaintextRejected(t *testing.T) {
	backend := chain.NewFakeBackend()
	setBalanceHandle(backend, dgoldToken, testOwner, 1)
	decryptor := &fakeDecryptor{plaintext: "not-a-number"}
	svc := NewBalanceService(testConfig(), backend, decryptor, nil, zap.NewNop())

	_, err := svc.RevealBalance(context.Background(), revealReq())
	require.Error(t, err)
	assert.Equal(t, errors.ErrDecrypt, errors.AsAppError(err).Type)
}

func TestRevealBalance_ChainReadFailure(t *testing.T) {
	backend := chain.NewFakeBackend()
	backend.BalanceErr = fmt.Errorf("node unavailable")
	svc := NewBalanceService(testConfig(), backend, &fakeDecryptor{plaintext: "1"}, nil, zap.NewNop())

	_, err := svc.RevealBalance(context.Background(), revealReq())
	require.Error(t, err)
	assert.Equal(t, errors.ErrDecrypt, errors.AsAppError(err).Type)
}

func TestRevealBalance_ConcurrentRevealRejected(t *testing.T) {
	backend := chain.NewFakeBackend()
	setBalanceHandle(backend, dgoldToken, testOwner, 1)
	decryptor := &fakeDecryptor{plaintext: "1000000", block: make(chan struct{})}
	svc := NewBalanceService(testConfig(), backend, decryptor, nil, zap.NewNop())

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := svc.RevealBalance(context.Background(), revealReq())
		assert.NoError(t, err)
	}()

	require.Eventually(t, func() bool {
		decryptor.mu.Lock()
		defer decryptor.mu.Unlock()
		return decryptor.calls == 1
	}, time.Second, time.Millisecond)

	_, err := svc.RevealBalance(context.Background(), revealReq())
	require.Error(t, err)
	assert.Equal(t, errors.ErrFailedDependency, errors.AsAppError(err).Type)

	close(decryptor.block)
	<-done
}

func TestFetchBalance_UnrevealedIsConcealed(t *testing.T) {
	svc := NewBalanceService(testConfig(), chain.NewFakeBackend(), &fakeDecryptor{}, nil, zap.NewNop())

	view, err := svc.FetchBalance(context.Background(), fetchReq())
	require.NoError(t, err)
	assert.False(t, view.Data.Revealed)
	assert.Nil(t, view.Data.LastRevealedAt)
	assert.Equal(t, testOwner, view.Data.Owner)
}
