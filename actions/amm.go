// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package actions

import (
	"context"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/fundvm/amm"
	"github.com/ava-labs/fundvm/chain"
	"github.com/ava-labs/fundvm/codec"
	"github.com/ava-labs/fundvm/consts"
	"github.com/ava-labs/fundvm/ledger"
	"github.com/ava-labs/fundvm/state"
)

var (
	_ chain.Action = (*AddLiquidity)(nil)
	_ chain.Action = (*RemoveLiquidity)(nil)
	_ chain.Action = (*SwapExactAssetsForAssets)(nil)
	_ chain.Action = (*SwapAssetsForExactAssets)(nil)
)

func newAMM(mu state.Mutable, r chain.Rules) *amm.Engine {
	return amm.New(mu, ledger.New(mu), r)
}

func checkPath(path []codec.Address) error {
	if len(path) > MaxSwapHops+1 {
		return ErrSwapPathTooLong
	}
	return nil
}

type AddLiquidity struct {
	AssetA   codec.Address `json:"assetA"`
	AssetB   codec.Address `json:"assetB"`
	DesiredA uint64        `json:"desiredA"`
	DesiredB uint64        `json:"desiredB"`
	MinA     uint64        `json:"minA"`
	MinB     uint64        `json:"minB"`
}

func (*AddLiquidity) GetTypeID() uint8 {
	return consts.AddLiquidityID
}

func (a *AddLiquidity) Execute(
	ctx context.Context,
	r chain.Rules,
	mu state.Mutable,
	_ uint64,
	actor codec.Address,
	_ ids.ID,
) (codec.Typed, error) {
	added, err := newAMM(mu, r).AddLiquidity(ctx, actor, a.AssetA, a.AssetB, a.DesiredA, a.DesiredB, a.MinA, a.MinB)
	if err != nil {
		return nil, err
	}
	return (*AddLiquidityResult)(added), nil
}

type AddLiquidityResult amm.LiquidityAdded

func (*AddLiquidityResult) GetTypeID() uint8 {
	return consts.AddLiquidityID
}

type RemoveLiquidity struct {
	AssetA    codec.Address `json:"assetA"`
	AssetB    codec.Address `json:"assetB"`
	Liquidity uint64        `json:"liquidity"`
	MinA      uint64        `json:"minA"`
	MinB      uint64        `json:"minB"`
}

func (*RemoveLiquidity) GetTypeID() uint8 {
	return consts.RemoveLiquidityID
}

func (a *RemoveLiquidity) Execute(
	ctx context.Context,
	r chain.Rules,
	mu state.Mutable,
	_ uint64,
	actor codec.Address,
	_ ids.ID,
) (codec.Typed, error) {
	removed, err := newAMM(mu, r).RemoveLiquidity(ctx, actor, a.AssetA, a.AssetB, a.Liquidity, a.MinA, a.MinB)
	if err != nil {
		return nil, err
	}
	return (*RemoveLiquidityResult)(removed), nil
}

type RemoveLiquidityResult amm.LiquidityRemoved

func (*RemoveLiquidityResult) GetTypeID() uint8 {
	return consts.RemoveLiquidityID
}

// SwapExactAssetsForAssets sells exactly AmountIn of Path[0] for at least
// AmountOutMin of the last asset in Path.
type SwapExactAssetsForAssets struct {
	AmountIn     uint64          `json:"amountIn"`
	AmountOutMin uint64          `json:"amountOutMin"`
	Path         []codec.Address `json:"path"`
}

func (*SwapExactAssetsForAssets) GetTypeID() uint8 {
	return consts.SwapExactAssetsForAssetsID
}

func (s *SwapExactAssetsForAssets) Execute(
	ctx context.Context,
	r chain.Rules,
	mu state.Mutable,
	_ uint64,
	actor codec.Address,
	_ ids.ID,
) (codec.Typed, error) {
	if err := checkPath(s.Path); err != nil {
		return nil, err
	}
	swapped, err := newAMM(mu, r).SwapExactAssetsForAssets(ctx, actor, s.AmountIn, s.AmountOutMin, s.Path)
	if err != nil {
		return nil, err
	}
	return &SwapResult{TypeID: consts.SwapExactAssetsForAssetsID, Swapped: swapped}, nil
}

// SwapAssetsForExactAssets buys exactly AmountOut of the last asset in
// Path paying at most AmountInMax of Path[0].
type SwapAssetsForExactAssets struct {
	AmountOut   uint64          `json:"amountOut"`
	AmountInMax uint64          `json:"amountInMax"`
	Path        []codec.Address `json:"path"`
}

func (*SwapAssetsForExactAssets) GetTypeID() uint8 {
	return consts.SwapAssetsForExactAssetsID
}

func (s *SwapAssetsForExactAssets) Execute(
	ctx context.Context,
	r chain.Rules,
	mu state.Mutable,
	_ uint64,
	actor codec.Address,
	_ ids.ID,
) (codec.Typed, error) {
	if err := checkPath(s.Path); err != nil {
		return nil, err
	}
	swapped, err := newAMM(mu, r).SwapAssetsForExactAssets(ctx, actor, s.AmountOut, s.AmountInMax, s.Path)
	if err != nil {
		return nil, err
	}
	return &SwapResult{TypeID: consts.SwapAssetsForExactAssetsID, Swapped: swapped}, nil
}

type SwapResult struct {
	TypeID uint8 `json:"-"`
	*amm.Swapped
}

func (s *SwapResult) GetTypeID() uint8 {
	return s.TypeID
}
