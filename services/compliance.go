package services

import (
	"context"
	"encoding/hex"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/0xzenith/zenith-go/chain"
	"github.com/0xzenith/zenith-go/config"
	"github.com/0xzenith/zenith-go/errors"
	"github.com/0xzenith/zenith-go/txwatch"
	"github.com/0xzenith/zenith-go/types/requests"
	"github.com/0xzenith/zenith-go/types/responses"
)

type ComplianceService interface {
	CheckUser(context.Context, *requests.CheckComplianceRequest) (*responses.Response[*responses.ComplianceCheckResponseData], error)
	FetchPoolRule(context.Context, *requests.FetchPoolRuleRequest) (*responses.Response[*responses.PoolRuleResponseData], error)
	SetPoolRule(context.Context, *requests.SetPoolRuleRequest) (*responses.Response[*responses.PoolRuleResponseData], error)
}

func NewComplianceService(cfg *config.Config, backend chain.Backend, tracker *txwatch.Tracker, log *zap.Logger) ComplianceService {
	return &complianceService{
		service: service{
			backend: backend,
			log:     log,
		},
		cfg:     cfg,
		tracker: tracker,
	}
}

type complianceService struct {
	service

	cfg     *config.Config
	tracker *txwatch.Tracker
}

func (c *complianceService) CheckUser(ctx context.Context, req *requests.CheckComplianceRequest) (*responses.Response[*responses.ComplianceCheckResponseData], error) {
	poolID, err := parseBytes32(req.PoolID)
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}

	compliant, err := c.backend.CheckUserCompliance(ctx, common.HexToAddress(req.Address), poolID)
	if err != nil {
		return nil, errors.NewFailedDependencyError(fmt.Sprintf("compliance check unavailable: %v", err))
	}

	return responses.Successful(&responses.ComplianceCheckResponseData{
		Address:   req.Address,
		PoolID:    req.PoolID,
		Compliant: compliant,
	}), nil
}

func (c *complianceService) FetchPoolRule(ctx context.Context, req *requests.FetchPoolRuleRequest) (*responses.Response[*responses.PoolRuleResponseData], error) {
	poolID, err := parseBytes32(req.PoolID)
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}

	rule, err := c.backend.PoolRule(ctx, poolID)
	if err != nil {
		return nil, errors.NewFailedDependencyError(fmt.Sprintf("pool rule unavailable: %v", err))
	}
	if rule == ([32]byte{}) {
		return nil, errors.NewNotFoundError("no rule set for pool")
	}

	return responses.Successful(&responses.PoolRuleResponseData{
		PoolID: req.PoolID,
		RuleID: "0x" + hex.EncodeToString(rule[:]),
	}), nil
}

func (c *complianceService) SetPoolRule(ctx context.Context, req *requests.SetPoolRuleRequest) (*responses.Response[*responses.PoolRuleResponseData], error) {
	poolID, err := parseBytes32(req.PoolID)
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}
	ruleID, err := parseBytes32(req.RuleID)
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}

	h, err := c.tracker.Submit(ctx, chain.TxSpec{
		Contract: common.HexToAddress(c.cfg.ComplianceAddress),
		Method:   "setPoolRule",
		Args:     []any{poolID, ruleID},
	})
	if err != nil {
		snap := h.Snapshot()
		return nil, errors.NewSubmissionError(snap.Kind.Reason(), err)
	}

	final := c.tracker.Await(ctx, h)
	if !final.Confirmed {
		return nil, errors.NewConfirmationError(final.Kind.Reason(), final.Hash, final.Err)
	}

	c.log.Info("pool rule updated",
		zap.String("pool", req.PoolID),
		zap.String("rule", req.RuleID),
	)
	return &responses.Response[*responses.PoolRuleResponseData]{
		Status:  "successful",
		Message: "Pool rule updated successfully",
		Data: &responses.PoolRuleResponseData{
			PoolID: req.PoolID,
			RuleID: req.RuleID,
			TxHash: final.Hash,
		},
	}, nil
}

func parseBytes32(s string) ([32]byte, error) {
	var out [32]byte
	if len(s) != 66 || s[:2] != "0x" {
		return out, fmt.Errorf("expected 0x-prefixed 32 byte hex value, got %q", s)
	}
	raw, err := hex.DecodeString(s[2:])
	if err != nil {
		return out, fmt.Errorf("invalid hex value %q", s)
	}
	copy(out[:], raw)
	return out, nil
}
