package services

import (
	"context"
	"encoding/hex"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/0xzenith/zenith-go/chain"
	"github.com/0xzenith/zenith-go/config"
	"github.com/0xzenith/zenith-go/errors"
	"github.com/0xzenith/zenith-go/fhe"
	"github.com/0xzenith/zenith-go/models"
	"github.com/0xzenith/zenith-go/types/requests"
	"github.com/0xzenith/zenith-go/types/responses"
	"github.com/0xzenith/zenith-go/utils"
)

type BalanceService interface {
	RevealBalance(ctx context.Context, req *requests.DecryptBalanceRequest) (*responses.Response[*models.BalanceView], error)
	FetchBalance(ctx context.Context, req *requests.FetchBalanceRequest) (*responses.Response[*models.BalanceView], error)
}

func NewBalanceService(cfg *config.Config, backend chain.Backend, decryptor fhe.Client, webhookService WebhookService, log *zap.Logger) BalanceService {
	return &balanceService{
		service: service{
			backend:        backend,
			webhookService: webhookService,
			log:            log,
		},
		cfg:       cfg,
		decryptor: decryptor,
		views:     map[string]*models.BalanceView{},
		inflight:  map[string]struct{}{},
	}
}

type balanceService struct {
	service

	cfg       *config.Config
	decryptor fhe.Client

	mu sync.Mutex
	// views holds the last revealed state per (owner, asset). A view is
	// written only after a successful reveal; a failed reveal leaves the
	// prior state untouched.
	views    map[string]*models.BalanceView
	inflight map[string]struct{}
}

func viewKey(owner, asset string) string {
	return ownerKey(owner) + "/" + asset
}

// RevealBalance reads the ciphertext handle on-chain, has the relayer
// decrypt it, and returns the formatted plaintext. Concurrent reveals
// for the same (owner, asset) are rejected rather than queued.
func (b *balanceService) RevealBalance(ctx context.Context, req *requests.DecryptBalanceRequest) (*responses.Response[*models.BalanceView], error) {
	asset := Assets[req.Asset]
	tokenAddr := b.cfg.TokenAddresses[req.Asset]
	if tokenAddr == "" {
		return nil, errors.NewValidationError(fmt.Sprintf("no contract configured for %s", asset.Symbol))
	}

	key := viewKey(req.Address, req.Asset)
	b.mu.Lock()
	if _, busy := b.inflight[key]; busy {
		b.mu.Unlock()
		return nil, errors.NewFailedDependencyError("a reveal for this balance is already in progress")
	}
	b.inflight[key] = struct{}{}
	b.mu.Unlock()
	defer func() {
		b.mu.Lock()
		delete(b.inflight, key)
		b.mu.Unlock()
	}()

	handle, err := b.backend.ConfidentialBalanceOf(ctx, common.HexToAddress(tokenAddr), common.HexToAddress(req.Address))
	if err != nil {
		return nil, errors.NewDecryptError(fmt.Errorf("fetch balance handle: %w", err))
	}

	plaintext, err := b.decryptor.Decrypt(ctx, handle[:])
	if err != nil {
		return nil, errors.NewDecryptError(err)
	}

	units, ok := new(big.Int).SetString(plaintext, 10)
	if !ok || units.Sign() < 0 {
		return nil, errors.NewDecryptError(fmt.Errorf("malformed plaintext from relayer: %q", plaintext))
	}
	formatted := FormatUnits(units, asset.Decimals)

	now := time.Now()
	view := &models.BalanceView{
		Owner:          req.Address,
		Asset:          req.Asset,
		Handle:         "0x" + hex.EncodeToString(handle[:]),
		Plaintext:      formatted,
		Revealed:       true,
		LastRevealedAt: &now,
	}

	b.mu.Lock()
	b.views[key] = view
	b.mu.Unlock()

	b.log.Info("balance revealed",
		zap.String("owner", req.Address),
		zap.String("asset", req.Asset),
	)
	if account := utils.AccountFromContext(ctx); account != nil && b.webhookService != nil {
		b.webhookService.SendBalanceRevealedEvent(account, view)
	}

	cp := *view
	return responses.Successful(&cp), nil
}

// FetchBalance returns the concealed view when the balance has never
// been revealed, without touching the chain or the relayer.
func (b *balanceService) FetchBalance(_ context.Context, req *requests.FetchBalanceRequest) (*responses.Response[*models.BalanceView], error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if view, ok := b.views[viewKey(req.Address, req.Asset)]; ok {
		cp := *view
		return responses.Successful(&cp), nil
	}
	return responses.Successful(&models.BalanceView{
		Owner:    req.Address,
		Asset:    req.Asset,
		Revealed: false,
	}), nil
}
