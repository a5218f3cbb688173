package fhe

import (
	"context"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xzenith/zenith-go/errors"
	"github.com/0xzenith/zenith-go/models"
)

type blockingClient struct {
	release chan struct{}
	calls   int
	mu      sync.Mutex
}

func (b *blockingClient) Encrypt(ctx context.Context, contract, owner string, amount *big.Int) (*models.EncryptedPayload, error) {
	b.mu.Lock()
	b.calls++
	b.mu.Unlock()
	select {
	case <-b.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return &models.EncryptedPayload{Handle: make([]byte, 32), Proof: []byte{1}}, nil
}

func (b *blockingClient) Decrypt(ctx context.Context, handle []byte) (string, error) {
	return "0", nil
}

func TestPipeline_RejectsDuplicateInflightEncrypt(t *testing.T) {
	client := &blockingClient{release: make(chan struct{})}
	pipeline := NewPipeline(client)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := pipeline.Encrypt(context.Background(), "exec-1", "0xabc", "0xdef", big.NewInt(1))
		assert.NoError(t, err)
	}()

	require.Eventually(t, func() bool {
		return pipeline.IsEncrypting("exec-1")
	}, time.Second, time.Millisecond)

	_, err := pipeline.Encrypt(context.Background(), "exec-1", "0xabc", "0xdef", big.NewInt(1))
	require.Error(t, err)
	assert.Equal(t, errors.ErrFailedDependency, errors.AsAppError(err).Type)

	// A different execution is not blocked by the first.
	go func() {
		_, _ = pipeline.Encrypt(context.Background(), "exec-2", "0xabc", "0xdef", big.NewInt(1))
	}()
	require.Eventually(t, func() bool {
		return pipeline.IsEncrypting("exec-2")
	}, time.Second, time.Millisecond)

	close(client.release)
	<-done
	require.Eventually(t, func() bool {
		return !pipeline.IsEncrypting("exec-1")
	}, time.Second, time.Millisecond)
}

func TestPipeline_SlotFreedAfterFailure(t *testing.T) {
	client := &blockingClient{release: make(chan struct{})}
	pipeline := NewPipeline(client)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := pipeline.Encrypt(ctx, "exec-1", "0xabc", "0xdef", big.NewInt(1))
	require.Error(t, err)
	assert.Equal(t, errors.ErrEncryption, errors.AsAppError(err).Type)
	assert.False(t, pipeline.IsEncrypting("exec-1"))
}
