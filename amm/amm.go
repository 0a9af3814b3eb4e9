// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package amm implements constant product pools with multi-hop routing.
package amm

import (
	"context"
	"fmt"

	smath "github.com/ava-labs/avalanchego/utils/math"

	"github.com/ava-labs/fundvm/codec"
	"github.com/ava-labs/fundvm/pricing"
	"github.com/ava-labs/fundvm/state"
	"github.com/ava-labs/fundvm/storage"
)

const lpDecimals = 9

type Rules interface {
	GetMinimumLiquidity() uint64
}

// Ledger is the subset of the currency ledger used by pools.
type Ledger interface {
	Transfer(ctx context.Context, asset codec.Address, from codec.Address, to codec.Address, amount uint64) error
	Deposit(ctx context.Context, asset codec.Address, who codec.Address, amount uint64) error
	Withdraw(ctx context.Context, asset codec.Address, who codec.Address, amount uint64) error
	TotalIssuance(ctx context.Context, asset codec.Address) (uint64, error)
	Metadata(ctx context.Context, asset codec.Address) (storage.Asset, error)
	CreateAsset(
		ctx context.Context,
		asset codec.Address,
		owner codec.Address,
		name string,
		symbol string,
		decimals uint8,
		initialIssuance uint64,
	) error
}

type LiquidityAdded struct {
	Pair    storage.Pair  `json:"pair"`
	LPAsset codec.Address `json:"lpAsset"`
	AmountA uint64        `json:"amountA"`
	AmountB uint64        `json:"amountB"`
	Minted  uint64        `json:"minted"`
}

type LiquidityRemoved struct {
	Pair    storage.Pair  `json:"pair"`
	LPAsset codec.Address `json:"lpAsset"`
	AmountA uint64        `json:"amountA"`
	AmountB uint64        `json:"amountB"`
	Burned  uint64        `json:"burned"`
}

type Swapped struct {
	Path    []codec.Address `json:"path"`
	Amounts []uint64        `json:"amounts"`
}

// Engine executes pool operations against the state of one transaction.
type Engine struct {
	mu     state.Mutable
	ledger Ledger
	rules  Rules
}

func New(mu state.Mutable, l Ledger, r Rules) *Engine {
	return &Engine{mu: mu, ledger: l, rules: r}
}

// GetPool returns the pool of the unordered pair (a, b).
func (e *Engine) GetPool(ctx context.Context, a codec.Address, b codec.Address) (storage.Pair, storage.AMMPool, error) {
	pair, err := storage.NewPair(a, b)
	if err != nil {
		return storage.Pair{}, storage.AMMPool{}, err
	}
	pool, exists, err := storage.GetAMMPool(ctx, e.mu, pair)
	if err != nil {
		return storage.Pair{}, storage.AMMPool{}, err
	}
	if !exists {
		return storage.Pair{}, storage.AMMPool{}, ErrPoolNotFound
	}
	return pair, pool, nil
}

func (e *Engine) AddLiquidity(
	ctx context.Context,
	actor codec.Address,
	assetA codec.Address,
	assetB codec.Address,
	desiredA uint64,
	desiredB uint64,
	minA uint64,
	minB uint64,
) (*LiquidityAdded, error) {
	pair, err := storage.NewPair(assetA, assetB)
	if err != nil {
		return nil, err
	}
	if desiredA == 0 || desiredB == 0 {
		return nil, ErrZeroAmount
	}
	desiredA, desiredB = pair.Orient(assetA, desiredA, desiredB)
	minA, minB = pair.Orient(assetA, minA, minB)

	pool, _, err := storage.GetAMMPool(ctx, e.mu, pair)
	if err != nil {
		return nil, err
	}
	amountA, amountB, ok, err := pricing.CalcAmountIn(desiredA, desiredB, minA, minB, pool.ReserveA, pool.ReserveB)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInsufficientAmount
	}
	var totalLiquidity uint64
	if pool.LPAsset != codec.EmptyAddress {
		if totalLiquidity, err = e.ledger.TotalIssuance(ctx, pool.LPAsset); err != nil {
			return nil, err
		}
	}
	minimumLiquidity := e.rules.GetMinimumLiquidity()
	minted, err := pricing.CalcLiquidityAdd(
		pool.ReserveA,
		pool.ReserveB,
		amountA,
		amountB,
		totalLiquidity,
		minimumLiquidity,
	)
	if err != nil {
		return nil, err
	}
	if minted == 0 {
		return nil, ErrInsufficientMintLiquidity
	}
	if pool.LPAsset == codec.EmptyAddress {
		if pool.LPAsset, err = e.createLPAsset(ctx, pair); err != nil {
			return nil, err
		}
	}

	account := storage.AMMPoolAccount(pair)
	if err := e.ledger.Transfer(ctx, pair.A, actor, account, amountA); err != nil {
		return nil, err
	}
	if err := e.ledger.Transfer(ctx, pair.B, actor, account, amountB); err != nil {
		return nil, err
	}
	if totalLiquidity == 0 {
		if err := e.ledger.Deposit(ctx, pool.LPAsset, account, minimumLiquidity); err != nil {
			return nil, err
		}
	}
	if err := e.ledger.Deposit(ctx, pool.LPAsset, actor, minted); err != nil {
		return nil, err
	}
	if pool.ReserveA, err = smath.Add(pool.ReserveA, amountA); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReserveOverflow, err)
	}
	if pool.ReserveB, err = smath.Add(pool.ReserveB, amountB); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReserveOverflow, err)
	}
	if err := storage.SetAMMPool(ctx, e.mu, pair, pool); err != nil {
		return nil, err
	}
	return &LiquidityAdded{
		Pair:    pair,
		LPAsset: pool.LPAsset,
		AmountA: amountA,
		AmountB: amountB,
		Minted:  minted,
	}, nil
}

// createLPAsset registers the liquidity asset of [pair], named after the
// symbols of both assets.
func (e *Engine) createLPAsset(ctx context.Context, pair storage.Pair) (codec.Address, error) {
	metaA, err := e.ledger.Metadata(ctx, pair.A)
	if err != nil {
		return codec.EmptyAddress, err
	}
	metaB, err := e.ledger.Metadata(ctx, pair.B)
	if err != nil {
		return codec.EmptyAddress, err
	}
	if len(metaA.Symbol) == 0 || len(metaB.Symbol) == 0 {
		return codec.EmptyAddress, ErrInvalidAssetSymbol
	}
	symbol := metaA.Symbol + "-" + metaB.Symbol
	lpAsset := storage.LPAssetAddress(pair)
	if err := e.ledger.CreateAsset(ctx, lpAsset, storage.AMMPoolAccount(pair), symbol, symbol, lpDecimals, 0); err != nil {
		return codec.EmptyAddress, err
	}
	return lpAsset, nil
}

func (e *Engine) RemoveLiquidity(
	ctx context.Context,
	actor codec.Address,
	assetA codec.Address,
	assetB codec.Address,
	liquidity uint64,
	minA uint64,
	minB uint64,
) (*LiquidityRemoved, error) {
	pair, pool, err := e.GetPool(ctx, assetA, assetB)
	if err != nil {
		return nil, err
	}
	if liquidity == 0 {
		return nil, ErrZeroAmount
	}
	if pool.LPAsset == codec.EmptyAddress {
		return nil, ErrInsufficientLiquidity
	}
	minA, minB = pair.Orient(assetA, minA, minB)
	totalLiquidity, err := e.ledger.TotalIssuance(ctx, pool.LPAsset)
	if err != nil {
		return nil, err
	}
	if liquidity > totalLiquidity {
		return nil, ErrInsufficientLiquidity
	}
	amountA, amountB, err := pricing.CalcAmountOut(pool.ReserveA, pool.ReserveB, liquidity, totalLiquidity)
	if err != nil {
		return nil, err
	}
	if amountA < minA || amountB < minB {
		return nil, ErrUnacceptableLiquidityWithdrawn
	}
	if err := e.ledger.Withdraw(ctx, pool.LPAsset, actor, liquidity); err != nil {
		return nil, err
	}
	account := storage.AMMPoolAccount(pair)
	if err := e.ledger.Transfer(ctx, pair.A, account, actor, amountA); err != nil {
		return nil, err
	}
	if err := e.ledger.Transfer(ctx, pair.B, account, actor, amountB); err != nil {
		return nil, err
	}
	pool.ReserveA -= amountA
	pool.ReserveB -= amountB
	if err := storage.SetAMMPool(ctx, e.mu, pair, pool); err != nil {
		return nil, err
	}
	return &LiquidityRemoved{
		Pair:    pair,
		LPAsset: pool.LPAsset,
		AmountA: amountA,
		AmountB: amountB,
		Burned:  liquidity,
	}, nil
}
