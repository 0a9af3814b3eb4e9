// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package lbp

import (
	"context"
	"fmt"

	smath "github.com/ava-labs/avalanchego/utils/math"
	"github.com/holiman/uint256"

	"github.com/ava-labs/fundvm/codec"
	"github.com/ava-labs/fundvm/pricing"
	"github.com/ava-labs/fundvm/storage"
)

// tradingPool resolves the ongoing pool of (assetIn, assetOut) and checks
// that it accepts trades.
func (e *Engine) tradingPool(ctx context.Context, assetIn codec.Address, assetOut codec.Address) (*storage.LBPPool, error) {
	pool, err := e.GetOngoingPool(ctx, assetIn, assetOut)
	if err != nil {
		return nil, err
	}
	if pool.Status != storage.LBPInProgress {
		return nil, fmt.Errorf("%w: %s", ErrNotTrading, pool.Status)
	}
	return pool, nil
}

// SwapExactAmountSupply sells exactly [amountIn] of [assetIn].
func (e *Engine) SwapExactAmountSupply(
	ctx context.Context,
	actor codec.Address,
	assetIn codec.Address,
	amountIn uint64,
	assetOut codec.Address,
	minAmountOut uint64,
	maxPrice *uint256.Int,
) (*Swapped, error) {
	if amountIn == 0 {
		return nil, ErrZeroAmount
	}
	pool, err := e.tradingPool(ctx, assetIn, assetOut)
	if err != nil {
		return nil, err
	}
	balanceIn, weightIn, balanceOut, weightOut := sides(pool, assetIn)
	maxIn, err := pricing.ApplyRatio(balanceIn, e.rules.GetLBPMaxInRatio())
	if err != nil {
		return nil, err
	}
	if amountIn > maxIn {
		return nil, ErrMaxInRatio
	}
	fee := e.rules.GetLBPSwapFee()
	amountOut, err := pricing.CalcOutGivenIn(balanceIn, weightIn, balanceOut, weightOut, amountIn, fee)
	if err != nil {
		return nil, err
	}
	if amountOut == 0 || amountOut < minAmountOut {
		return nil, ErrUnacceptableAmountOut
	}
	return e.swap(ctx, actor, pool, assetIn, amountIn, assetOut, amountOut, maxPrice)
}

// SwapExactAmountTarget buys exactly [amountOut] of [assetOut].
func (e *Engine) SwapExactAmountTarget(
	ctx context.Context,
	actor codec.Address,
	assetIn codec.Address,
	maxAmountIn uint64,
	assetOut codec.Address,
	amountOut uint64,
	maxPrice *uint256.Int,
) (*Swapped, error) {
	if amountOut == 0 {
		return nil, ErrZeroAmount
	}
	pool, err := e.tradingPool(ctx, assetIn, assetOut)
	if err != nil {
		return nil, err
	}
	balanceIn, weightIn, balanceOut, weightOut := sides(pool, assetIn)
	maxOut, err := pricing.ApplyRatio(balanceOut, e.rules.GetLBPMaxOutRatio())
	if err != nil {
		return nil, err
	}
	if amountOut > maxOut {
		return nil, ErrMaxOutRatio
	}
	fee := e.rules.GetLBPSwapFee()
	amountIn, err := pricing.CalcInGivenOut(balanceIn, weightIn, balanceOut, weightOut, amountOut, fee)
	if err != nil {
		return nil, err
	}
	if amountIn > maxAmountIn {
		return nil, ErrUnacceptableAmountIn
	}
	return e.swap(ctx, actor, pool, assetIn, amountIn, assetOut, amountOut, maxPrice)
}

func (e *Engine) swap(
	ctx context.Context,
	actor codec.Address,
	pool *storage.LBPPool,
	assetIn codec.Address,
	amountIn uint64,
	assetOut codec.Address,
	amountOut uint64,
	maxPrice *uint256.Int,
) (*Swapped, error) {
	fee := e.rules.GetLBPSwapFee()
	before, err := spotPrice(pool, assetIn, fee)
	if err != nil {
		return nil, err
	}

	balanceIn, _, balanceOut, _ := sides(pool, assetIn)
	if balanceIn, err = smath.Add(balanceIn, amountIn); err != nil {
		return nil, err
	}
	if amountOut >= balanceOut {
		return nil, ErrMaxOutRatio
	}
	balanceOut -= amountOut
	if assetIn == pool.SupplyAsset {
		pool.SupplyBalance, pool.TargetBalance = balanceIn, balanceOut
	} else {
		pool.TargetBalance, pool.SupplyBalance = balanceIn, balanceOut
	}

	after, err := spotPrice(pool, assetIn, fee)
	if err != nil {
		return nil, err
	}
	if after.Lt(before) {
		return nil, ErrMathApprox
	}
	if maxPrice != nil && after.Gt(maxPrice) {
		return nil, fmt.Errorf("%w: %s > %s", ErrBadLimitPrice, after, maxPrice)
	}

	account := storage.LBPPoolAccount(pool.ID)
	if err := e.ledger.Transfer(ctx, assetIn, actor, account, amountIn); err != nil {
		return nil, err
	}
	if err := e.ledger.Transfer(ctx, assetOut, account, actor, amountOut); err != nil {
		return nil, err
	}
	if err := storage.SetLBPPool(ctx, e.mu, pool); err != nil {
		return nil, err
	}
	return &Swapped{
		ID:        pool.ID,
		AssetIn:   assetIn,
		AssetOut:  assetOut,
		AmountIn:  amountIn,
		AmountOut: amountOut,
		SpotPrice: after,
	}, nil
}
