package txwatch

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/0xzenith/zenith-go/chain"
	"github.com/0xzenith/zenith-go/errors"
)

func newTestTracker(backend Backend, depth uint64, wait time.Duration) *Tracker {
	return New(backend, Config{
		Depth:        depth,
		Wait:         wait,
		PollInterval: 2 * time.Millisecond,
	}, zap.NewNop())
}

func testSpec() chain.TxSpec {
	return chain.TxSpec{
		Contract: common.HexToAddress("0x1111111111111111111111111111111111111111"),
		Method:   "transfer",
	}
}

func TestTracker_ConfirmsAtDepth(t *testing.T) {
	backend := chain.NewFakeBackend()
	tracker := newTestTracker(backend, 3, time.Second)

	h, err := tracker.Submit(context.Background(), testSpec())
	require.NoError(t, err)
	assert.True(t, h.Snapshot().Pending)
	assert.NotEmpty(t, h.Snapshot().Hash)

	final := tracker.Await(context.Background(), h)
	assert.True(t, final.Confirmed)
	assert.False(t, final.Failed)
	assert.GreaterOrEqual(t, final.Confirmations, uint64(3))
}

func TestTracker_ReportsIntermediateConfirmations(t *testing.T) {
	backend := chain.NewFakeBackend()
	tracker := newTestTracker(backend, 4, time.Second)

	h, err := tracker.Submit(context.Background(), testSpec())
	require.NoError(t, err)

	var seen []uint64
	tracker.Watch(context.Background(), h, func(snap Snapshot) {
		seen = append(seen, snap.Confirmations)
	})

	require.NotEmpty(t, seen)
	for i := 1; i < len(seen); i++ {
		assert.GreaterOrEqual(t, seen[i], seen[i-1])
	}
	assert.GreaterOrEqual(t, seen[len(seen)-1], uint64(4))
}

func TestTracker_SignerDeclineClassified(t *testing.T) {
	backend := chain.NewFakeBackend()
	backend.SubmitErr = fmt.Errorf("%w: user denied", chain.ErrSignerDeclined)
	tracker := newTestTracker(backend, 1, time.Second)

	h, err := tracker.Submit(context.Background(), testSpec())
	require.Error(t, err)

	snap := h.Snapshot()
	assert.True(t, snap.Failed)
	assert.Equal(t, FailureSignerDeclined, snap.Kind)
	assert.Equal(t, errors.ReasonSignerDeclined, snap.Kind.Reason())
	assert.Empty(t, snap.Hash)
}

func TestTracker_NodeRejectionClassified(t *testing.T) {
	backend := chain.NewFakeBackend()
	backend.SubmitErr = fmt.Errorf("%w: nonce too low", chain.ErrNodeRejected)
	tracker := newTestTracker(backend, 1, time.Second)

	h, err := tracker.Submit(context.Background(), testSpec())
	require.Error(t, err)
	assert.Equal(t, FailureNodeRejected, h.Snapshot().Kind)
}

func TestTracker_RevertFails(t *testing.T) {
	backend := chain.NewFakeBackend()
	backend.ReceiptStatus = types.ReceiptStatusFailed
	tracker := newTestTracker(backend, 1, time.Second)

	h, err := tracker.Submit(context.Background(), testSpec())
	require.NoError(t, err)

	final := tracker.Await(context.Background(), h)
	assert.True(t, final.Failed)
	assert.Equal(t, FailureReverted, final.Kind)
	assert.NotEmpty(t, final.Hash)
}

func TestTracker_TimeoutWhenNeverMined(t *testing.T) {
	backend := chain.NewFakeBackend()
	backend.WithholdReceipt = true
	tracker := newTestTracker(backend, 1, 20*time.Millisecond)

	h, err := tracker.Submit(context.Background(), testSpec())
	require.NoError(t, err)

	final := tracker.Await(context.Background(), h)
	assert.True(t, final.Failed)
	assert.Equal(t, FailureTimeout, final.Kind)
	assert.Equal(t, errors.ReasonTimeout, final.Kind.Reason())
}

func TestHandle_FailureIsSticky(t *testing.T) {
	h := &Handle{state: StateFailed, kind: FailureReverted}
	h.fail(FailureTimeout, nil)
	assert.Equal(t, FailureReverted, h.Snapshot().Kind)
}

func TestHandle_ResetClearsTracking(t *testing.T) {
	backend := chain.NewFakeBackend()
	tracker := newTestTracker(backend, 1, time.Second)

	h, err := tracker.Submit(context.Background(), testSpec())
	require.NoError(t, err)
	tracker.Await(context.Background(), h)
	require.True(t, h.Snapshot().Confirmed)

	h.Reset()
	snap := h.Snapshot()
	assert.False(t, snap.Confirmed)
	assert.False(t, snap.Failed)
	assert.Zero(t, snap.Confirmations)
}
