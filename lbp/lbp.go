// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package lbp implements liquidity bootstrapping pools whose weights move
// linearly from start to end over a fixed number of block-driven steps.
package lbp

import (
	"context"
	"fmt"

	"github.com/holiman/uint256"

	"github.com/ava-labs/fundvm/codec"
	"github.com/ava-labs/fundvm/pricing"
	"github.com/ava-labs/fundvm/state"
	"github.com/ava-labs/fundvm/storage"
)

type Rules interface {
	GetLBPMinSteps() uint64
	GetLBPMaxSteps() uint64
	GetLBPMinDuration() uint64
	GetLBPMaxDuration() uint64
	GetLBPMinWeight() uint64
	GetLBPMaxWeight() uint64
	GetLBPMaxInRatio() uint64
	GetLBPMaxOutRatio() uint64
	GetLBPSwapFee() uint64
}

type Ledger interface {
	Transfer(ctx context.Context, asset codec.Address, from codec.Address, to codec.Address, amount uint64) error
}

// CreateParams describes a new pool. Weights are in [pricing.WeightOne]
// units.
type CreateParams struct {
	SupplyAsset   codec.Address `json:"supplyAsset"`
	TargetAsset   codec.Address `json:"targetAsset"`
	SupplyBalance uint64        `json:"supplyBalance"`
	TargetBalance uint64        `json:"targetBalance"`

	SupplyStartWeight uint64 `json:"supplyStartWeight"`
	SupplyEndWeight   uint64 `json:"supplyEndWeight"`
	TargetStartWeight uint64 `json:"targetStartWeight"`
	TargetEndWeight   uint64 `json:"targetEndWeight"`

	StartBlock uint64 `json:"startBlock"`
	EndBlock   uint64 `json:"endBlock"`
	Steps      uint64 `json:"steps"`
}

type PoolCreated struct {
	ID     uint32            `json:"id"`
	Status storage.LBPStatus `json:"status"`
}

type PoolExited struct {
	ID            uint32            `json:"id"`
	SupplyBalance uint64            `json:"supplyBalance"`
	TargetBalance uint64            `json:"targetBalance"`
	Status        storage.LBPStatus `json:"status"`
}

type Swapped struct {
	ID        uint32        `json:"id"`
	AssetIn   codec.Address `json:"assetIn"`
	AssetOut  codec.Address `json:"assetOut"`
	AmountIn  uint64        `json:"amountIn"`
	AmountOut uint64        `json:"amountOut"`
	SpotPrice *uint256.Int  `json:"spotPrice"`
}

type Engine struct {
	mu     state.Mutable
	ledger Ledger
	rules  Rules
}

func New(mu state.Mutable, l Ledger, r Rules) *Engine {
	return &Engine{mu: mu, ledger: l, rules: r}
}

func (e *Engine) validate(params *CreateParams) error {
	if params.SupplyBalance == 0 || params.TargetBalance == 0 {
		return ErrZeroAmount
	}
	if params.Steps < e.rules.GetLBPMinSteps() {
		return fmt.Errorf("%w: %d < %d", ErrTooFewSteps, params.Steps, e.rules.GetLBPMinSteps())
	}
	if params.Steps > e.rules.GetLBPMaxSteps() {
		return fmt.Errorf("%w: %d > %d", ErrTooManySteps, params.Steps, e.rules.GetLBPMaxSteps())
	}
	if params.StartBlock >= params.EndBlock {
		return ErrInvalidBlockRange
	}
	duration := params.EndBlock - params.StartBlock
	if duration < e.rules.GetLBPMinDuration() || duration > e.rules.GetLBPMaxDuration() {
		return fmt.Errorf("%w: %d", ErrInvalidDuration, duration)
	}
	if duration < params.Steps {
		return ErrStepsExceedDuration
	}
	minWeight, maxWeight := e.rules.GetLBPMinWeight(), e.rules.GetLBPMaxWeight()
	for _, w := range []uint64{
		params.SupplyStartWeight,
		params.SupplyEndWeight,
		params.TargetStartWeight,
		params.TargetEndWeight,
	} {
		if w < minWeight || w > maxWeight {
			return fmt.Errorf("%w: %d", ErrInvalidWeight, w)
		}
	}
	return nil
}

// Create funds a new pool from [owner]. The pool trades immediately when
// [height] has already reached its start block.
func (e *Engine) Create(ctx context.Context, owner codec.Address, height uint64, params *CreateParams) (*PoolCreated, error) {
	pair, err := storage.NewPair(params.SupplyAsset, params.TargetAsset)
	if err != nil {
		return nil, err
	}
	if err := e.validate(params); err != nil {
		return nil, err
	}
	if _, ongoing, err := storage.GetOngoingLBP(ctx, e.mu, pair); err != nil {
		return nil, err
	} else if ongoing {
		return nil, ErrPairOngoing
	}
	nextStepBlock, err := pricing.CalcAdjustBlock(params.StartBlock, params.EndBlock, params.Steps, 1)
	if err != nil {
		return nil, err
	}
	id, err := storage.NextLBPID(ctx, e.mu)
	if err != nil {
		return nil, err
	}
	pool := &storage.LBPPool{
		ID:                id,
		Owner:             owner,
		SupplyAsset:       params.SupplyAsset,
		TargetAsset:       params.TargetAsset,
		SupplyBalance:     params.SupplyBalance,
		TargetBalance:     params.TargetBalance,
		SupplyStartWeight: params.SupplyStartWeight,
		SupplyEndWeight:   params.SupplyEndWeight,
		TargetStartWeight: params.TargetStartWeight,
		TargetEndWeight:   params.TargetEndWeight,
		SupplyWeight:      params.SupplyStartWeight,
		TargetWeight:      params.TargetStartWeight,
		StartBlock:        params.StartBlock,
		EndBlock:          params.EndBlock,
		Steps:             params.Steps,
		NextStepBlock:     nextStepBlock,
		Status:            storage.LBPPending,
	}
	if height >= pool.StartBlock {
		pool.Status = storage.LBPInProgress
	}

	account := storage.LBPPoolAccount(id)
	if err := e.ledger.Transfer(ctx, pool.SupplyAsset, owner, account, pool.SupplyBalance); err != nil {
		return nil, err
	}
	if err := e.ledger.Transfer(ctx, pool.TargetAsset, owner, account, pool.TargetBalance); err != nil {
		return nil, err
	}
	if err := storage.SetLBPPool(ctx, e.mu, pool); err != nil {
		return nil, err
	}
	if err := storage.SetOngoingLBP(ctx, e.mu, pair, id); err != nil {
		return nil, err
	}
	if err := storage.AddLiveLBP(ctx, e.mu, id); err != nil {
		return nil, err
	}
	return &PoolCreated{ID: id, Status: pool.Status}, nil
}

func (e *Engine) GetPool(ctx context.Context, id uint32) (*storage.LBPPool, error) {
	pool, exists, err := storage.GetLBPPool(ctx, e.mu, id)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %d", ErrPoolNotFound, id)
	}
	return pool, nil
}

// GetOngoingPool resolves the pool currently registered for the unordered
// pair (a, b).
func (e *Engine) GetOngoingPool(ctx context.Context, a codec.Address, b codec.Address) (*storage.LBPPool, error) {
	pair, err := storage.NewPair(a, b)
	if err != nil {
		return nil, err
	}
	id, ongoing, err := storage.GetOngoingLBP(ctx, e.mu, pair)
	if err != nil {
		return nil, err
	}
	if !ongoing {
		return nil, ErrPoolNotFound
	}
	return e.GetPool(ctx, id)
}

// Exit returns every residual balance of pool [id] to its owner.
func (e *Engine) Exit(ctx context.Context, actor codec.Address, id uint32) (*PoolExited, error) {
	pool, err := e.GetPool(ctx, id)
	if err != nil {
		return nil, err
	}
	if pool.Owner != actor {
		return nil, ErrNotOwner
	}
	switch pool.Status {
	case storage.LBPPending:
		pool.Status = storage.LBPCancelled
	case storage.LBPFinished:
		if pool.SupplyBalance == 0 && pool.TargetBalance == 0 {
			return nil, ErrAlreadyExited
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrMustBeNonTradingStatus, pool.Status)
	}

	account := storage.LBPPoolAccount(id)
	if err := e.ledger.Transfer(ctx, pool.SupplyAsset, account, pool.Owner, pool.SupplyBalance); err != nil {
		return nil, err
	}
	if err := e.ledger.Transfer(ctx, pool.TargetAsset, account, pool.Owner, pool.TargetBalance); err != nil {
		return nil, err
	}
	exited := &PoolExited{
		ID:            id,
		SupplyBalance: pool.SupplyBalance,
		TargetBalance: pool.TargetBalance,
		Status:        pool.Status,
	}
	pool.SupplyBalance, pool.TargetBalance = 0, 0
	if err := storage.SetLBPPool(ctx, e.mu, pool); err != nil {
		return nil, err
	}
	pair, err := storage.NewPair(pool.SupplyAsset, pool.TargetAsset)
	if err != nil {
		return nil, err
	}
	if err := storage.DeleteOngoingLBP(ctx, e.mu, pair); err != nil {
		return nil, err
	}
	if err := storage.RemoveLiveLBP(ctx, e.mu, id); err != nil {
		return nil, err
	}
	return exited, nil
}

// SpotPrice returns the price of the supply asset in units of the target
// asset, scaled by [pricing.BONE].
func (e *Engine) SpotPrice(ctx context.Context, id uint32) (*uint256.Int, error) {
	pool, err := e.GetPool(ctx, id)
	if err != nil {
		return nil, err
	}
	return spotPrice(pool, pool.TargetAsset, 0)
}

func (e *Engine) History(ctx context.Context, id uint32) ([]storage.PricePoint, error) {
	if _, err := e.GetPool(ctx, id); err != nil {
		return nil, err
	}
	return storage.GetLBPHistory(ctx, e.mu, id)
}

// sides returns (balance, weight) of the in and out side for a trade
// paying [assetIn].
func sides(pool *storage.LBPPool, assetIn codec.Address) (uint64, uint64, uint64, uint64) {
	if assetIn == pool.SupplyAsset {
		return pool.SupplyBalance, pool.SupplyWeight, pool.TargetBalance, pool.TargetWeight
	}
	return pool.TargetBalance, pool.TargetWeight, pool.SupplyBalance, pool.SupplyWeight
}

func spotPrice(pool *storage.LBPPool, assetIn codec.Address, fee uint64) (*uint256.Int, error) {
	balanceIn, weightIn, balanceOut, weightOut := sides(pool, assetIn)
	return pricing.CalcSpotPrice(balanceIn, weightIn, balanceOut, weightOut, fee)
}
