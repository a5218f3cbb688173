// Package txwatch wraps "submit a transaction, watch it to N
// confirmations" for every chain write the service performs. Swap
// submissions and registry writes share the same tracker.
package txwatch

import (
	"context"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"github.com/0xzenith/zenith-go/chain"
	"github.com/0xzenith/zenith-go/errors"
)

type State uint8

const (
	StateIdle State = iota
	StatePending
	StateConfirming
	StateConfirmed
	StateFailed
)

type FailureKind uint8

const (
	FailureNone FailureKind = iota
	FailureSignerDeclined
	FailureNodeRejected
	FailureReverted
	FailureTimeout
)

// Reason maps the failure onto the error taxonomy's reason codes.
func (k FailureKind) Reason() string {
	switch k {
	case FailureSignerDeclined:
		return errors.ReasonSignerDeclined
	case FailureNodeRejected:
		return errors.ReasonNodeRejected
	case FailureReverted:
		return errors.ReasonReverted
	case FailureTimeout:
		return errors.ReasonTimeout
	default:
		return ""
	}
}

type Backend interface {
	Submit(ctx context.Context, spec chain.TxSpec) (common.Hash, error)
	TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error)
	BlockNumber(ctx context.Context) (uint64, error)
}

type Config struct {
	// Depth is the confirmation count required before a transaction is
	// treated as final.
	Depth uint64
	// Wait bounds how long a submitted transaction may sit without
	// reaching Depth before the handle fails with a timeout.
	Wait         time.Duration
	PollInterval time.Duration
}

type Tracker struct {
	backend Backend
	cfg     Config
	log     *zap.Logger
}

func New(backend Backend, cfg Config, log *zap.Logger) *Tracker {
	if cfg.Depth == 0 {
		cfg.Depth = 1
	}
	if cfg.Wait <= 0 {
		cfg.Wait = 2 * time.Minute
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 2 * time.Second
	}
	return &Tracker{backend: backend, cfg: cfg, log: log}
}

// Snapshot is a point-in-time view of a handle. Confirmed and Failed
// are mutually exclusive and sticky.
type Snapshot struct {
	Pending       bool
	Confirming    bool
	Confirmed     bool
	Failed        bool
	Hash          string
	Confirmations uint64
	Kind          FailureKind
	Err           error
}

type Handle struct {
	mu            sync.RWMutex
	hash          common.Hash
	state         State
	confirmations uint64
	kind          FailureKind
	err           error
}

func (h *Handle) Snapshot() Snapshot {
	h.mu.RLock()
	defer h.mu.RUnlock()
	s := Snapshot{
		Confirmations: h.confirmations,
		Kind:          h.kind,
		Err:           h.err,
	}
	if h.hash != (common.Hash{}) {
		s.Hash = h.hash.Hex()
	}
	switch h.state {
	case StatePending:
		s.Pending = true
	case StateConfirming:
		s.Confirming = true
	case StateConfirmed:
		s.Confirmed = true
	case StateFailed:
		s.Failed = true
	}
	return s
}

// Reset clears local tracking. It never retracts the transaction
// itself; once broadcast, a transaction cannot be unsent.
func (h *Handle) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.state = StateIdle
	h.confirmations = 0
	h.kind = FailureNone
	h.err = nil
}

func (h *Handle) fail(kind FailureKind, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state == StateConfirmed || h.state == StateFailed {
		return
	}
	h.state = StateFailed
	h.kind = kind
	h.err = err
}

// Submit broadcasts the transaction and returns a handle in Pending
// state. On rejection the handle is already Failed with the cause
// distinguished (signer decline vs node rejection).
func (t *Tracker) Submit(ctx context.Context, spec chain.TxSpec) (*Handle, error) {
	h := &Handle{state: StatePending}

	hash, err := t.backend.Submit(ctx, spec)
	if err != nil {
		kind := FailureNodeRejected
		if errors.Is(err, chain.ErrSignerDeclined) {
			kind = FailureSignerDeclined
		}
		h.fail(kind, err)
		return h, err
	}

	h.mu.Lock()
	h.hash = hash
	h.mu.Unlock()
	return h, nil
}

// Watch polls the handle's transaction until it reaches the configured
// depth, reverts, or the bounded wait expires. onUpdate fires after
// every observable change; transient read failures are retried until
// the deadline.
func (t *Tracker) Watch(ctx context.Context, h *Handle, onUpdate func(Snapshot)) Snapshot {
	if onUpdate == nil {
		onUpdate = func(Snapshot) {}
	}

	deadline := time.Now().Add(t.cfg.Wait)
	ticker := time.NewTicker(t.cfg.PollInterval)
	defer ticker.Stop()

	for {
		snap, done := t.poll(ctx, h)
		if snap != nil {
			onUpdate(*snap)
		}
		if done {
			return h.Snapshot()
		}

		if time.Now().After(deadline) {
			h.fail(FailureTimeout, errors.NewFailedDependencyError("confirmation wait exceeded"))
			onUpdate(h.Snapshot())
			return h.Snapshot()
		}

		select {
		case <-ctx.Done():
			return h.Snapshot()
		case <-ticker.C:
		}
	}
}

func (t *Tracker) poll(ctx context.Context, h *Handle) (*Snapshot, bool) {
	h.mu.RLock()
	hash := h.hash
	state := h.state
	h.mu.RUnlock()
	if state == StateConfirmed || state == StateFailed {
		return nil, true
	}

	receipt, err := t.backend.TransactionReceipt(ctx, hash)
	if err != nil || receipt == nil {
		// Not mined yet, or a transient read failure. Keep polling.
		return nil, false
	}

	if receipt.Status != types.ReceiptStatusSuccessful {
		h.fail(FailureReverted, errors.NewFailedDependencyError("transaction reverted"))
		snap := h.Snapshot()
		return &snap, true
	}

	head, err := t.backend.BlockNumber(ctx)
	if err != nil {
		return nil, false
	}

	var confirmations uint64
	if block := receipt.BlockNumber.Uint64(); head >= block {
		confirmations = head - block + 1
	}

	h.mu.Lock()
	changed := h.state != StateConfirming || h.confirmations != confirmations
	h.state = StateConfirming
	h.confirmations = confirmations
	if confirmations >= t.cfg.Depth {
		h.state = StateConfirmed
	}
	done := h.state == StateConfirmed
	h.mu.Unlock()

	if !changed && !done {
		return nil, false
	}
	snap := h.Snapshot()
	return &snap, done
}

// Await is the blocking form of Watch for callers that only need the
// final state.
func (t *Tracker) Await(ctx context.Context, h *Handle) Snapshot {
	return t.Watch(ctx, h, nil)
}
