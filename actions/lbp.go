// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package actions

import (
	"context"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/holiman/uint256"

	"github.com/ava-labs/fundvm/chain"
	"github.com/ava-labs/fundvm/codec"
	"github.com/ava-labs/fundvm/consts"
	"github.com/ava-labs/fundvm/lbp"
	"github.com/ava-labs/fundvm/ledger"
	"github.com/ava-labs/fundvm/state"
)

var (
	_ chain.Action = (*CreateLBP)(nil)
	_ chain.Action = (*ExitLBP)(nil)
	_ chain.Action = (*SwapExactAmountSupply)(nil)
	_ chain.Action = (*SwapExactAmountTarget)(nil)
)

func newLBP(mu state.Mutable, r chain.Rules) *lbp.Engine {
	return lbp.New(mu, ledger.New(mu), r)
}

type CreateLBP struct {
	lbp.CreateParams
}

func (*CreateLBP) GetTypeID() uint8 {
	return consts.CreateLBPID
}

func (c *CreateLBP) Execute(
	ctx context.Context,
	r chain.Rules,
	mu state.Mutable,
	height uint64,
	actor codec.Address,
	_ ids.ID,
) (codec.Typed, error) {
	params := c.CreateParams
	created, err := newLBP(mu, r).Create(ctx, actor, height, &params)
	if err != nil {
		return nil, err
	}
	return (*CreateLBPResult)(created), nil
}

type CreateLBPResult lbp.PoolCreated

func (*CreateLBPResult) GetTypeID() uint8 {
	return consts.CreateLBPID
}

// ExitLBP withdraws every balance of a pool that is not trading back to its
// owner.
type ExitLBP struct {
	ID uint32 `json:"id"`
}

func (*ExitLBP) GetTypeID() uint8 {
	return consts.ExitLBPID
}

func (e *ExitLBP) Execute(
	ctx context.Context,
	r chain.Rules,
	mu state.Mutable,
	_ uint64,
	actor codec.Address,
	_ ids.ID,
) (codec.Typed, error) {
	exited, err := newLBP(mu, r).Exit(ctx, actor, e.ID)
	if err != nil {
		return nil, err
	}
	return (*ExitLBPResult)(exited), nil
}

type ExitLBPResult lbp.PoolExited

func (*ExitLBPResult) GetTypeID() uint8 {
	return consts.ExitLBPID
}

// SwapExactAmountSupply sells exactly AmountIn of AssetIn. MaxPrice is
// optional and bounds the spot price after the trade.
type SwapExactAmountSupply struct {
	AssetIn      codec.Address `json:"assetIn"`
	AmountIn     uint64        `json:"amountIn"`
	AssetOut     codec.Address `json:"assetOut"`
	MinAmountOut uint64        `json:"minAmountOut"`
	MaxPrice     *uint256.Int  `json:"maxPrice,omitempty"`
}

func (*SwapExactAmountSupply) GetTypeID() uint8 {
	return consts.SwapExactAmountSupplyID
}

func (s *SwapExactAmountSupply) Execute(
	ctx context.Context,
	r chain.Rules,
	mu state.Mutable,
	_ uint64,
	actor codec.Address,
	_ ids.ID,
) (codec.Typed, error) {
	swapped, err := newLBP(mu, r).SwapExactAmountSupply(ctx, actor, s.AssetIn, s.AmountIn, s.AssetOut, s.MinAmountOut, s.MaxPrice)
	if err != nil {
		return nil, err
	}
	return &LBPSwapResult{TypeID: consts.SwapExactAmountSupplyID, Swapped: swapped}, nil
}

// SwapExactAmountTarget buys exactly AmountOut of AssetOut paying at most
// MaxAmountIn of AssetIn.
type SwapExactAmountTarget struct {
	AssetIn     codec.Address `json:"assetIn"`
	MaxAmountIn uint64        `json:"maxAmountIn"`
	AssetOut    codec.Address `json:"assetOut"`
	AmountOut   uint64        `json:"amountOut"`
	MaxPrice    *uint256.Int  `json:"maxPrice,omitempty"`
}

func (*SwapExactAmountTarget) GetTypeID() uint8 {
	return consts.SwapExactAmountTargetID
}

func (s *SwapExactAmountTarget) Execute(
	ctx context.Context,
	r chain.Rules,
	mu state.Mutable,
	_ uint64,
	actor codec.Address,
	_ ids.ID,
) (codec.Typed, error) {
	swapped, err := newLBP(mu, r).SwapExactAmountTarget(ctx, actor, s.AssetIn, s.MaxAmountIn, s.AssetOut, s.AmountOut, s.MaxPrice)
	if err != nil {
		return nil, err
	}
	return &LBPSwapResult{TypeID: consts.SwapExactAmountTargetID, Swapped: swapped}, nil
}

type LBPSwapResult struct {
	TypeID uint8 `json:"-"`
	*lbp.Swapped
}

func (s *LBPSwapResult) GetTypeID() uint8 {
	return s.TypeID
}
