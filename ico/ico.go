// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

//go:generate go run go.uber.org/mock/mockgen -package=${GOPACKAGE} -destination=mock_collaborators.go . Oracle,KYC

// Package ico implements the fundraising state machine: asks, approval,
// escrowed contributions, settlement, vesting and rewards.
package ico

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/ava-labs/avalanchego/utils/set"
	"golang.org/x/exp/slices"

	"github.com/ava-labs/fundvm/codec"
	"github.com/ava-labs/fundvm/ledger"
	"github.com/ava-labs/fundvm/pricing"
	"github.com/ava-labs/fundvm/state"
	"github.com/ava-labs/fundvm/storage"
)

// PricePrecision is the fixed point unit of oracle prices.
const PricePrecision uint64 = 1_000_000_000

type Rules interface {
	GetNativeAsset() codec.Address
	GetUSDTAsset() codec.Address
	GetAuthority() codec.Address
	GetTreasury() codec.Address

	GetICOPledgeBond() uint64
	GetICOExchangeBondPercent() uint64
	GetICOChillDuration() uint64
	GetICOMaxDuration() uint64
	GetICOSuccessThreshold() uint64
	GetICOUserMinUSDT() uint64
	GetICOUserMaxUSDT() uint64
	GetICORewardTotal() uint64
	GetICOHalfDuration() uint64
	GetICOInviterPercent() uint64
	GetICOMaxContributions() uint64
	GetICOPendingExpiry() uint64
}

type Ledger interface {
	Transfer(ctx context.Context, asset codec.Address, from codec.Address, to codec.Address, amount uint64) error
	Reserve(ctx context.Context, asset codec.Address, who codec.Address, amount uint64) error
	Unreserve(ctx context.Context, asset codec.Address, who codec.Address, amount uint64) error
	SlashReserved(ctx context.Context, asset codec.Address, who codec.Address, amount uint64) error
	RepatriateReserved(
		ctx context.Context,
		asset codec.Address,
		from codec.Address,
		to codec.Address,
		amount uint64,
		status ledger.BalanceStatus,
	) error
	Deposit(ctx context.Context, asset codec.Address, who codec.Address, amount uint64) error
	SetLock(ctx context.Context, id storage.LockID, asset codec.Address, who codec.Address, amount uint64) error
	RemoveLock(ctx context.Context, id storage.LockID, asset codec.Address, who codec.Address) error
	Metadata(ctx context.Context, asset codec.Address) (storage.Asset, error)
}

// Oracle prices an asset in units of [quote] with [PricePrecision].
type Oracle interface {
	GetPrice(ctx context.Context, asset codec.Address, quote codec.Address) (uint64, bool, error)
}

// KYC resolves the jurisdiction of an account.
type KYC interface {
	GetUserArea(ctx context.Context, account codec.Address) (string, bool, error)
}

type Engine struct {
	mu     state.Mutable
	ledger Ledger
	rules  Rules
	oracle Oracle
	kyc    KYC
}

func New(mu state.Mutable, l Ledger, r Rules, oracle Oracle, kyc KYC) *Engine {
	return &Engine{
		mu:     mu,
		ledger: l,
		rules:  r,
		oracle: oracle,
		kyc:    kyc,
	}
}

// LockID is the ledger lock holding the unvested tokens of project [index].
func LockID(index uint32) storage.LockID {
	var id storage.LockID
	copy(id[:], "ico")
	binary.BigEndian.PutUint32(id[3:], index)
	return id
}

// InitiateParams is an ask for raise.
type InitiateParams struct {
	Asset       codec.Address `json:"asset"`
	ProjectName string        `json:"projectName"`
	TokenSymbol string        `json:"tokenSymbol"`
	Description string        `json:"description"`

	ExchangeAsset    codec.Address `json:"exchangeAsset"`
	TotalIssuance    uint64        `json:"totalIssuance"`
	TotalCirculation uint64        `json:"totalCirculation"`
	AmountOffered    uint64        `json:"amountOffered"`
	ExchangeTarget   uint64        `json:"exchangeTarget"`
	MinPerUser       uint64        `json:"minPerUser"`
	MaxPerUser       uint64        `json:"maxPerUser"`
	Duration         uint64        `json:"duration"`

	LockPercent              uint8  `json:"lockPercent"`
	UnlockDuration           uint64 `json:"unlockDuration"`
	UnlockPercentPerDuration uint8  `json:"unlockPercentPerDuration"`

	ExcludedAreas []string `json:"excludedAreas"`
}

type ProjectAsked struct {
	Index        uint32        `json:"index"`
	Asset        codec.Address `json:"asset"`
	PledgeBond   uint64        `json:"pledgeBond"`
	ExchangeBond uint64        `json:"exchangeBond"`
}

type ProjectPermitted struct {
	Index      uint32 `json:"index"`
	StartBlock uint64 `json:"startBlock"`
}

// ProjectExpired reports a pending ask left unanswered past the pending
// expiry.
type ProjectExpired struct {
	Index   uint32 `json:"index"`
	Slashed uint64 `json:"slashed"`
}

type ProjectRejected struct {
	Index   uint32 `json:"index"`
	Slashed uint64 `json:"slashed"`
}

func validText(s string, limit int) bool {
	return len(s) > 0 && len(s) <= limit
}

func (e *Engine) validate(params *InitiateParams) error {
	if !validText(params.ProjectName, storage.MaxProjectNameSize) ||
		!validText(params.TokenSymbol, storage.MaxAssetSymbolSize) ||
		!validText(params.Description, storage.MaxDescriptionSize) {
		return ErrInvalidProjectInfo
	}
	if params.Asset == params.ExchangeAsset {
		return storage.ErrIdenticalAssets
	}
	if params.AmountOffered == 0 ||
		params.TotalCirculation < params.AmountOffered ||
		params.TotalIssuance < params.TotalCirculation {
		return ErrInvalidIssuance
	}
	if params.ExchangeTarget == 0 {
		return ErrZeroRaiseTarget
	}
	if params.MaxPerUser == 0 ||
		params.MinPerUser > params.MaxPerUser ||
		params.MaxPerUser > params.ExchangeTarget {
		return ErrInvalidUserBounds
	}
	if params.Duration == 0 || params.Duration > e.rules.GetICOMaxDuration() {
		return fmt.Errorf("%w: %d", ErrInvalidDuration, params.Duration)
	}
	if params.LockPercent > 100 || params.UnlockPercentPerDuration > 100 {
		return ErrInvalidVesting
	}
	if params.LockPercent > 0 && params.UnlockDuration > 0 && params.UnlockPercentPerDuration == 0 {
		return ErrInvalidVesting
	}
	if len(params.ExcludedAreas) > storage.MaxExcludedAreas {
		return ErrTooManyAreas
	}
	for _, area := range params.ExcludedAreas {
		if !validText(area, storage.MaxAreaSize) {
			return fmt.Errorf("%w: area %q", ErrInvalidProjectInfo, area)
		}
	}
	return nil
}

// Initiate registers an ask for raise at [height]. The initiator reserves
// the pledge bond, the exchange bond and the offered tokens.
func (e *Engine) Initiate(ctx context.Context, initiator codec.Address, height uint64, params *InitiateParams) (*ProjectAsked, error) {
	if err := e.validate(params); err != nil {
		return nil, err
	}
	meta, err := e.ledger.Metadata(ctx, params.Asset)
	if err != nil {
		return nil, err
	}
	if meta.Owner != initiator {
		return nil, ErrNotAssetOwner
	}
	if _, pending, err := storage.GetPendingProject(ctx, e.mu, params.Asset); err != nil {
		return nil, err
	} else if pending {
		return nil, ErrPendingProjectExists
	}
	exchangeBond, err := pricing.MulDiv(params.ExchangeTarget, e.rules.GetICOExchangeBondPercent(), 100)
	if err != nil {
		return nil, err
	}

	pledgeBond := e.rules.GetICOPledgeBond()
	if err := e.ledger.Reserve(ctx, e.rules.GetNativeAsset(), initiator, pledgeBond); err != nil {
		return nil, fmt.Errorf("pledge bond: %w", err)
	}
	if err := e.ledger.Reserve(ctx, params.ExchangeAsset, initiator, exchangeBond); err != nil {
		return nil, fmt.Errorf("exchange bond: %w", err)
	}
	if err := e.ledger.Reserve(ctx, params.Asset, initiator, params.AmountOffered); err != nil {
		return nil, fmt.Errorf("offered tokens: %w", err)
	}

	index, err := storage.NextProjectIndex(ctx, e.mu)
	if err != nil {
		return nil, err
	}
	areas := set.Of(params.ExcludedAreas...).List()
	slices.Sort(areas)
	pr := &storage.Project{
		Index:                    index,
		Asset:                    params.Asset,
		Initiator:                initiator,
		ProjectName:              params.ProjectName,
		TokenSymbol:              params.TokenSymbol,
		Description:              params.Description,
		ExchangeAsset:            params.ExchangeAsset,
		TotalIssuance:            params.TotalIssuance,
		TotalCirculation:         params.TotalCirculation,
		AmountOffered:            params.AmountOffered,
		ExchangeTarget:           params.ExchangeTarget,
		MinPerUser:               params.MinPerUser,
		MaxPerUser:               params.MaxPerUser,
		Duration:                 params.Duration,
		LockPercent:              params.LockPercent,
		UnlockDuration:           params.UnlockDuration,
		UnlockPercentPerDuration: params.UnlockPercentPerDuration,
		ExcludedAreas:            areas,
		PledgeBond:               pledgeBond,
		ExchangeBond:             exchangeBond,
		AskedBlock:               height,
		Status:                   storage.PendingApproval,
	}
	if err := storage.SetProject(ctx, e.mu, pr); err != nil {
		return nil, err
	}
	if err := storage.SetPendingProject(ctx, e.mu, pr.Asset, index); err != nil {
		return nil, err
	}
	if err := storage.AddActiveProject(ctx, e.mu, index); err != nil {
		return nil, err
	}
	return &ProjectAsked{
		Index:        index,
		Asset:        pr.Asset,
		PledgeBond:   pledgeBond,
		ExchangeBond: exchangeBond,
	}, nil
}

func (e *Engine) GetProject(ctx context.Context, index uint32) (*storage.Project, error) {
	pr, exists, err := storage.GetProject(ctx, e.mu, index)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %d", ErrProjectNotFound, index)
	}
	return pr, nil
}

// project loads [index] and checks it is in [status].
func (e *Engine) project(ctx context.Context, index uint32, status storage.ProjectStatus) (*storage.Project, error) {
	pr, err := e.GetProject(ctx, index)
	if err != nil {
		return nil, err
	}
	if pr.Status != status {
		return nil, fmt.Errorf("%w: %s, expected %s", ErrInvalidStatus, pr.Status, status)
	}
	return pr, nil
}

func (e *Engine) checkAuthority(actor codec.Address) error {
	if actor != e.rules.GetAuthority() {
		return ErrNotAuthority
	}
	return nil
}

// Permit approves a pending ask. The raise opens after the chill duration.
func (e *Engine) Permit(ctx context.Context, actor codec.Address, height uint64, index uint32) (*ProjectPermitted, error) {
	if err := e.checkAuthority(actor); err != nil {
		return nil, err
	}
	pr, err := e.project(ctx, index, storage.PendingApproval)
	if err != nil {
		return nil, err
	}
	if err := e.ledger.Unreserve(ctx, e.rules.GetNativeAsset(), pr.Initiator, pr.PledgeBond); err != nil {
		return nil, err
	}
	if err := e.ledger.RepatriateReserved(
		ctx,
		pr.ExchangeAsset,
		pr.Initiator,
		e.rules.GetTreasury(),
		pr.ExchangeBond,
		ledger.Reserved,
	); err != nil {
		return nil, err
	}
	pr.StartBlock = height + e.rules.GetICOChillDuration()
	pr.Status = storage.Raising
	if err := storage.SetProject(ctx, e.mu, pr); err != nil {
		return nil, err
	}
	if err := storage.DeletePendingProject(ctx, e.mu, pr.Asset); err != nil {
		return nil, err
	}
	return &ProjectPermitted{Index: index, StartBlock: pr.StartBlock}, nil
}

// Reject refuses a pending ask. The pledge bond is slashed.
func (e *Engine) Reject(ctx context.Context, actor codec.Address, index uint32) (*ProjectRejected, error) {
	if err := e.checkAuthority(actor); err != nil {
		return nil, err
	}
	pr, err := e.project(ctx, index, storage.PendingApproval)
	if err != nil {
		return nil, err
	}
	if err := e.refuse(ctx, pr, storage.Rejected); err != nil {
		return nil, err
	}
	return &ProjectRejected{Index: index, Slashed: pr.PledgeBond}, nil
}

// refuse closes pending ask [pr] with [status]: the pledge bond is slashed
// and the other reserves return to the initiator.
func (e *Engine) refuse(ctx context.Context, pr *storage.Project, status storage.ProjectStatus) error {
	if err := e.ledger.SlashReserved(ctx, e.rules.GetNativeAsset(), pr.Initiator, pr.PledgeBond); err != nil {
		return err
	}
	if err := e.ledger.Unreserve(ctx, pr.ExchangeAsset, pr.Initiator, pr.ExchangeBond); err != nil {
		return err
	}
	if err := e.ledger.Unreserve(ctx, pr.Asset, pr.Initiator, pr.AmountOffered); err != nil {
		return err
	}
	pr.Status = status
	if err := storage.SetProject(ctx, e.mu, pr); err != nil {
		return err
	}
	if err := storage.DeletePendingProject(ctx, e.mu, pr.Asset); err != nil {
		return err
	}
	return storage.RemoveActiveProject(ctx, e.mu, pr.Index)
}
