package services

import (
	"context"
	"database/sql"
	"encoding/hex"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"

	"github.com/0xzenith/zenith-go/chain"
	"github.com/0xzenith/zenith-go/config"
	"github.com/0xzenith/zenith-go/errors"
	"github.com/0xzenith/zenith-go/models"
	"github.com/0xzenith/zenith-go/txwatch"
	"github.com/0xzenith/zenith-go/types/requests"
	"github.com/0xzenith/zenith-go/types/responses"
	"github.com/0xzenith/zenith-go/utils"
)

type RegistryService interface {
	RegisterUser(context.Context, *requests.RegisterUserRequest) (*responses.Response[*models.RegistryProfile], error)
	UpdateProfile(context.Context, *requests.UpdateProfileRequest) (*responses.Response[*models.RegistryProfile], error)
	LookupProfile(context.Context, *requests.LookupRegistryRequest) (*responses.Response[*responses.RegistryLookupResponseData], error)
}

func NewRegistryService(cfg *config.Config, backend chain.Backend, tracker *txwatch.Tracker, dataDatabase *sql.DB, webhookService WebhookService, log *zap.Logger) RegistryService {
	return &registryService{
		service: service{
			dataDB:         dataDatabase,
			backend:        backend,
			webhookService: webhookService,
			log:            log,
		},
		cfg:     cfg,
		tracker: tracker,
	}
}

type registryService struct {
	service

	cfg     *config.Config
	tracker *txwatch.Tracker
}

// userIDHash derives the bytes32 registry key from the caller-supplied
// identifier. The raw identifier never goes on-chain.
func userIDHash(userID string) [32]byte {
	return crypto.Keccak256Hash([]byte(userID))
}

// profileBitmap derives the encrypted jurisdiction bitmap commitment
// from the country code and wallet. The registry stores only this hash.
func profileBitmap(countryCode, address string) [32]byte {
	return crypto.Keccak256Hash([]byte(strings.ToUpper(countryCode) + ":" + ownerKey(address)))
}

func (r *registryService) RegisterUser(ctx context.Context, req *requests.RegisterUserRequest) (*responses.Response[*models.RegistryProfile], error) {
	bitmap := profileBitmap(req.CountryCode, req.Address)
	spec := chain.TxSpec{
		Contract: common.HexToAddress(r.cfg.RegistryAddress),
		Method:   "addUser",
		Args:     []any{userIDHash(req.UserID), common.HexToAddress(req.Address), bitmap},
	}
	return r.write(ctx, req.UserID, req.Address, bitmap, spec, "User registered successfully")
}

func (r *registryService) UpdateProfile(ctx context.Context, req *requests.UpdateProfileRequest) (*responses.Response[*models.RegistryProfile], error) {
	bitmap := profileBitmap(req.CountryCode, req.Address)
	spec := chain.TxSpec{
		Contract: common.HexToAddress(r.cfg.RegistryAddress),
		Method:   "addNewProfileData",
		Args:     []any{userIDHash(req.UserID), bitmap},
	}
	return r.write(ctx, req.UserID, req.Address, bitmap, spec, "Profile updated successfully")
}

func (r *registryService) write(ctx context.Context, userID, address string, bitmap [32]byte, spec chain.TxSpec, message string) (*responses.Response[*models.RegistryProfile], error) {
	h, err := r.tracker.Submit(ctx, spec)
	if err != nil {
		snap := h.Snapshot()
		return nil, errors.NewSubmissionError(snap.Kind.Reason(), err)
	}

	final := r.tracker.Await(ctx, h)
	if !final.Confirmed {
		return nil, errors.NewConfirmationError(final.Kind.Reason(), final.Hash, final.Err)
	}

	now := time.Now()
	profile := &models.RegistryProfile{
		Address:       address,
		UserID:        userID,
		ProfileBitmap: "0x" + hex.EncodeToString(bitmap[:]),
		TxHash:        final.Hash,
		CreatedAt:     &now,
		UpdatedAt:     &now,
	}

	// Cache after confirmation only; a row must never describe a write
	// the chain has not finalized.
	_, err = sq.
		Replace("registry_profiles").
		Columns("address", "user_id", "profile_bitmap", "tx_hash", "created_at", "updated_at").
		Values(ownerKey(profile.Address), profile.UserID, profile.ProfileBitmap, profile.TxHash, now, now).
		RunWith(r.dataDB).
		ExecContext(ctx)
	if err != nil {
		// The chain write stands; a cache miss only degrades lookups.
		r.log.Error("caching registry profile", zap.Error(err))
	}

	if account := utils.AccountFromContext(ctx); account != nil && r.webhookService != nil {
		r.webhookService.SendRegistryUpdatedEvent(account, profile)
	}

	return &responses.Response[*models.RegistryProfile]{
		Status:  "successful",
		Message: message,
		Data:    profile,
	}, nil
}

// LookupProfile reads the chain first. Only when the node cannot answer
// does it fall back to the local cache, and the response says so.
func (r *registryService) LookupProfile(ctx context.Context, req *requests.LookupRegistryRequest) (*responses.Response[*responses.RegistryLookupResponseData], error) {
	hash, err := r.backend.EncryptedProfileHash(ctx, userIDHash(req.UserID))
	if err == nil {
		if hash == ([32]byte{}) {
			return nil, errors.NewNotFoundError("no registry profile for user")
		}
		return responses.Successful(&responses.RegistryLookupResponseData{
			Profile: &models.RegistryProfile{
				Address:       req.Address,
				UserID:        req.UserID,
				ProfileBitmap: "0x" + hex.EncodeToString(hash[:]),
			},
			Source: responses.RegistrySourceChain,
		}), nil
	}
	r.log.Warn("registry chain read failed, trying cache", zap.Error(err))

	row := sq.
		Select("address", "user_id", "profile_bitmap", "tx_hash", "created_at", "updated_at").
		From("registry_profiles").
		Where(sq.Eq{"user_id": req.UserID, "address": ownerKey(req.Address)}).
		Limit(1).
		RunWith(r.dataDB).
		QueryRowContext(ctx)

	profile := &models.RegistryProfile{}
	if err := row.Scan(&profile.Address, &profile.UserID, &profile.ProfileBitmap, &profile.TxHash, &profile.CreatedAt, &profile.UpdatedAt); err != nil {
		return nil, errors.HandleDataDBError(err)
	}

	return responses.Successful(&responses.RegistryLookupResponseData{
		Profile: profile,
		Source:  responses.RegistrySourceCache,
	}), nil
}
