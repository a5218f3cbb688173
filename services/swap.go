package services

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/0xzenith/zenith-go/chain"
	"github.com/0xzenith/zenith-go/config"
	"github.com/0xzenith/zenith-go/errors"
	"github.com/0xzenith/zenith-go/fhe"
	"github.com/0xzenith/zenith-go/models"
	"github.com/0xzenith/zenith-go/txwatch"
	"github.com/0xzenith/zenith-go/types/requests"
	"github.com/0xzenith/zenith-go/utils"
	"github.com/0xzenith/zenith-go/types/responses"
)

type SwapService interface {
	CreateSwap(ctx context.Context, req *requests.CreateSwapRequest) (*responses.Response[*models.SwapExecution], error)
	QuoteSwap(ctx context.Context, req *requests.QuoteSwapRequest) (*responses.Response[*models.Quote], error)
	FetchSwapExecution(ctx context.Context, req *requests.FetchSwapRequest) (*responses.Response[*models.SwapExecution], error)
	GetSwapExecutions(ctx context.Context, req *requests.GetSwapsRequest) (*responses.Response[[]*models.SwapExecution], error)
	ResetSwap(ctx context.Context, req *requests.ResetSwapRequest) (*responses.Response[*models.SwapExecution], error)

	Sweep(retention time.Duration) int
}

func NewSwapService(cfg *config.Config, backend chain.Backend, pipeline *fhe.Pipeline, tracker *txwatch.Tracker, webhookService WebhookService, log *zap.Logger) SwapService {
	return &swapService{
		service: service{
			backend:        backend,
			webhookService: webhookService,
			log:            log,
		},
		cfg:        cfg,
		pipeline:   pipeline,
		tracker:    tracker,
		executions: map[string]*execution{},
		live:       map[string]*execution{},
	}
}

type swapService struct {
	service

	cfg      *config.Config
	pipeline *fhe.Pipeline
	tracker  *txwatch.Tracker

	mu sync.Mutex
	// executions holds everything still queryable; live is the single
	// in-flight slot per owner. All writes go through transition/fail,
	// which re-check liveness first, so a completion from a superseded
	// execution can never clobber the current one.
	executions map[string]*execution
	live       map[string]*execution
}

type execution struct {
	models.SwapExecution

	account *models.Account
	handle  *txwatch.Handle
}

func ownerKey(addr string) string {
	return strings.ToLower(addr)
}

func (s *swapService) CreateSwap(ctx context.Context, req *requests.CreateSwapRequest) (*responses.Response[*models.SwapExecution], error) {
	if req.FromAsset == req.ToAsset {
		return nil, errors.NewValidationError("from_asset and to_asset must differ")
	}
	fromAsset := Assets[req.FromAsset]
	toAsset := Assets[req.ToAsset]

	amt, ok := parseDecimal(req.Amount)
	if !ok || amt.Sign() <= 0 {
		return nil, errors.NewValidationError("amount must be a positive decimal")
	}
	scaled, err := ScaleToUnits(req.Amount, fromAsset.Decimals)
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}
	if scaled.Sign() <= 0 {
		return nil, errors.NewValidationError(fmt.Sprintf("amount is below the smallest %s unit", fromAsset.Symbol))
	}

	tokenAddr := s.cfg.TokenAddresses[req.FromAsset]
	if tokenAddr == "" {
		return nil, errors.NewValidationError(fmt.Sprintf("no contract configured for %s", fromAsset.Symbol))
	}

	if err := s.backend.ExpectedNetwork(ctx); err != nil {
		return nil, errors.NewValidationError(err.Error())
	}

	quote, _ := ComputeQuote(req.Amount, fromAsset, toAsset)

	now := time.Now()
	exec := &execution{
		SwapExecution: models.SwapExecution{
			ID: uuid.NewString(),
			Intent: models.SwapIntent{
				FromAsset: req.FromAsset,
				ToAsset:   req.ToAsset,
				Amount:    req.Amount,
				Owner:     req.Address,
			},
			Phase:     models.Encrypting_Phase,
			Quote:     quote,
			CreatedAt: now,
			UpdatedAt: now,
		},
		account: utils.AccountFromContext(ctx),
	}

	s.mu.Lock()
	key := ownerKey(req.Address)
	if prior := s.live[key]; prior != nil && !prior.Phase.Terminal() {
		s.log.Info("superseding in-flight swap execution",
			zap.String("superseded", prior.ID),
			zap.String("execution", exec.ID),
		)
	}
	s.live[key] = exec
	s.executions[exec.ID] = exec
	snap := snapshotLocked(exec)
	s.mu.Unlock()

	s.notify(exec.account, models.SwapEncrypting_WebhookEvent, snap)
	go s.run(exec, tokenAddr, scaled)

	return responses.Successful(snap), nil
}

// run drives one execution through encrypt → submit → confirm. Every
// state write re-checks that the execution still owns the live slot, so
// a superseded run falls out silently at its next step.
func (s *swapService) run(exec *execution, tokenAddr string, scaled *big.Int) {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.RelayerTimeout+s.cfg.ConfirmationWait+time.Minute)
	defer cancel()

	payload, err := s.pipeline.Encrypt(ctx, exec.ID, tokenAddr, exec.Intent.Owner, scaled)
	if err != nil {
		s.fail(exec, errors.AsAppError(err))
		return
	}

	if !s.transition(exec, models.Submitting_Phase, nil) {
		// Superseded or reset mid-encryption; the payload is dropped,
		// never submitted.
		return
	}

	handle, err := toHandle32(payload.Handle)
	if err != nil {
		s.fail(exec, errors.NewEncryptionError(err))
		return
	}

	// The swap settles as a confidential self-transfer of the source
	// amount; the counter-amount is derived display state.
	owner := common.HexToAddress(exec.Intent.Owner)
	spec := chain.TxSpec{
		Contract: common.HexToAddress(tokenAddr),
		Method:   "transfer",
		Args:     []any{owner, handle, payload.Proof},
	}

	h, err := s.tracker.Submit(ctx, spec)
	if err != nil {
		snap := h.Snapshot()
		s.fail(exec, errors.NewSubmissionError(snap.Kind.Reason(), err))
		return
	}

	txHash := h.Snapshot().Hash
	ok := s.transition(exec, models.Confirming_Phase, func(e *execution) {
		e.TxHash = txHash
		e.handle = h
	})
	if !ok {
		return
	}

	final := s.tracker.Watch(ctx, h, func(snap txwatch.Snapshot) {
		s.updateConfirmations(exec, snap.Confirmations)
	})

	switch {
	case final.Confirmed:
		s.transition(exec, models.Confirmed_Phase, func(e *execution) {
			e.Confirmations = final.Confirmations
		})
	case final.Failed:
		s.fail(exec, errors.NewConfirmationError(final.Kind.Reason(), txHash, final.Err))
	}
}

// transition applies a phase change if and only if the execution is
// still live and not terminal. It emits exactly one notification per
// transition, inside the same critical decision so a phase can never
// notify twice.
func (s *swapService) transition(exec *execution, phase models.Phase, mut func(*execution)) bool {
	s.mu.Lock()
	if s.live[ownerKey(exec.Intent.Owner)] != exec || exec.Phase.Terminal() {
		s.mu.Unlock()
		return false
	}
	exec.Phase = phase
	exec.UpdatedAt = time.Now()
	if mut != nil {
		mut(exec)
	}
	snap := snapshotLocked(exec)
	s.mu.Unlock()

	s.notify(exec.account, phaseEvent(phase), snap)
	return true
}

func (s *swapService) fail(exec *execution, appErr errors.AppError) {
	s.transition(exec, models.Failed_Phase, func(e *execution) {
		e.Error = &appErr
	})
}

func (s *swapService) updateConfirmations(exec *execution, confirmations uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.live[ownerKey(exec.Intent.Owner)] != exec || exec.Phase.Terminal() {
		return
	}
	exec.Confirmations = confirmations
	exec.UpdatedAt = time.Now()
}

func (s *swapService) QuoteSwap(_ context.Context, req *requests.QuoteSwapRequest) (*responses.Response[*models.Quote], error) {
	quote, ok := ComputeQuote(req.Amount, Assets[req.FromAsset], Assets[req.ToAsset])
	if !ok {
		return responses.Successful[*models.Quote](nil), nil
	}
	return responses.Successful(quote), nil
}

func (s *swapService) FetchSwapExecution(_ context.Context, req *requests.FetchSwapRequest) (*responses.Response[*models.SwapExecution], error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	exec, ok := s.executions[req.ExecutionID]
	if !ok {
		return nil, errors.NewNotFoundError("swap execution not found")
	}
	return responses.Successful(snapshotLocked(exec)), nil
}

func (s *swapService) GetSwapExecutions(_ context.Context, req *requests.GetSwapsRequest) (*responses.Response[[]*models.SwapExecution], error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*models.SwapExecution{}
	for _, exec := range s.executions {
		if req.Address != "" && ownerKey(exec.Intent.Owner) != ownerKey(req.Address) {
			continue
		}
		out = append(out, snapshotLocked(exec))
	}
	return responses.Successful(out), nil
}

// ResetSwap clears local tracking back to Idle from any phase. A chain
// transaction already broadcast keeps going; only our interest in it is
// discarded.
func (s *swapService) ResetSwap(_ context.Context, req *requests.ResetSwapRequest) (*responses.Response[*models.SwapExecution], error) {
	s.mu.Lock()
	exec, ok := s.executions[req.ExecutionID]
	if !ok {
		s.mu.Unlock()
		return nil, errors.NewNotFoundError("swap execution not found")
	}
	key := ownerKey(exec.Intent.Owner)
	if s.live[key] == exec {
		delete(s.live, key)
	}
	exec.Phase = models.Idle_Phase
	exec.Error = nil
	exec.Confirmations = 0
	exec.UpdatedAt = time.Now()
	if exec.handle != nil {
		exec.handle.Reset()
	}
	snap := snapshotLocked(exec)
	s.mu.Unlock()

	return responses.Successful(snap), nil
}

// Sweep drops executions that have been terminal, idle, or superseded
// for longer than the retention window, and fails executions the
// watcher somehow abandoned past the confirmation bound. Superseded
// executions are deleted directly: they no longer own the live slot, so
// routing them through fail would be refused by the liveness check.
// Runs from the scheduler.
func (s *swapService) Sweep(retention time.Duration) int {
	cutoff := time.Now().Add(-retention)
	stuck := time.Now().Add(-(s.cfg.ConfirmationWait + s.cfg.RelayerTimeout + 2*time.Minute))

	var stale []*execution
	s.mu.Lock()
	swept := 0
	for id, exec := range s.executions {
		live := s.live[ownerKey(exec.Intent.Owner)] == exec
		switch {
		case (!live || exec.Phase.Terminal() || exec.Phase == models.Idle_Phase) && exec.UpdatedAt.Before(cutoff):
			if live {
				delete(s.live, ownerKey(exec.Intent.Owner))
			}
			delete(s.executions, id)
			swept++
		case live && !exec.Phase.Terminal() && exec.Phase != models.Idle_Phase && exec.UpdatedAt.Before(stuck):
			stale = append(stale, exec)
		}
	}
	s.mu.Unlock()

	for _, exec := range stale {
		s.fail(exec, errors.NewConfirmationError(errors.ReasonTimeout, exec.TxHash, nil))
		swept++
	}
	return swept
}

func (s *swapService) notify(account *models.Account, event models.WebhookEvent, exec *models.SwapExecution) {
	if account == nil || s.webhookService == nil {
		return
	}
	s.webhookService.SendSwapPhaseEvent(account, event, exec)
}

func phaseEvent(phase models.Phase) models.WebhookEvent {
	switch phase {
	case models.Encrypting_Phase:
		return models.SwapEncrypting_WebhookEvent
	case models.Submitting_Phase:
		return models.SwapSubmitting_WebhookEvent
	case models.Confirming_Phase:
		return models.SwapConfirming_WebhookEvent
	case models.Confirmed_Phase:
		return models.SwapConfirmed_WebhookEvent
	case models.Failed_Phase:
		return models.SwapFailed_WebhookEvent
	default:
		panic("unreachable")
	}
}

// snapshotLocked copies the caller-visible state; the caller must hold
// s.mu.
func snapshotLocked(exec *execution) *models.SwapExecution {
	cp := exec.SwapExecution
	if exec.Error != nil {
		e := *exec.Error
		cp.Error = &e
	}
	return &cp
}

func toHandle32(handle []byte) ([32]byte, error) {
	var out [32]byte
	if len(handle) != len(out) {
		return out, fmt.Errorf("ciphertext handle must be %d bytes, got %d", len(out), len(handle))
	}
	copy(out[:], handle)
	return out, nil
}
