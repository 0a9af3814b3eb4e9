// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package actions

import (
	"context"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/fundvm/chain"
	"github.com/ava-labs/fundvm/codec"
	"github.com/ava-labs/fundvm/consts"
	"github.com/ava-labs/fundvm/state"
	"github.com/ava-labs/fundvm/storage"
)

var (
	_ chain.Action = (*SetPrice)(nil)
	_ chain.Action = (*SetUserArea)(nil)
)

// SetPrice publishes the price of Asset in Quote as a 9-decimal fixed
// point number. Only the authority may publish prices.
type SetPrice struct {
	Asset codec.Address `json:"asset"`
	Quote codec.Address `json:"quote"`
	Price uint64        `json:"price"`
}

func (*SetPrice) GetTypeID() uint8 {
	return consts.SetPriceID
}

func (s *SetPrice) Execute(
	ctx context.Context,
	r chain.Rules,
	mu state.Mutable,
	_ uint64,
	actor codec.Address,
	_ ids.ID,
) (codec.Typed, error) {
	if actor != r.GetAuthority() {
		return nil, ErrNotAuthority
	}
	if s.Price == 0 {
		return nil, ErrZeroPrice
	}
	if s.Asset == s.Quote {
		return nil, storage.ErrIdenticalAssets
	}
	if err := storage.SetPrice(ctx, mu, s.Asset, s.Quote, s.Price); err != nil {
		return nil, err
	}
	return &SetPriceResult{Asset: s.Asset, Quote: s.Quote, Price: s.Price}, nil
}

type SetPriceResult struct {
	Asset codec.Address `json:"asset"`
	Quote codec.Address `json:"quote"`
	Price uint64        `json:"price"`
}

func (*SetPriceResult) GetTypeID() uint8 {
	return consts.SetPriceID
}

// SetUserArea records the jurisdiction of Account. An empty Area clears it.
type SetUserArea struct {
	Account codec.Address `json:"account"`
	Area    string        `json:"area"`
}

func (*SetUserArea) GetTypeID() uint8 {
	return consts.SetUserAreaID
}

func (s *SetUserArea) Execute(
	ctx context.Context,
	r chain.Rules,
	mu state.Mutable,
	_ uint64,
	actor codec.Address,
	_ ids.ID,
) (codec.Typed, error) {
	if actor != r.GetAuthority() {
		return nil, ErrNotAuthority
	}
	if err := storage.SetUserArea(ctx, mu, s.Account, s.Area); err != nil {
		return nil, err
	}
	return &SetUserAreaResult{Account: s.Account, Area: s.Area}, nil
}

type SetUserAreaResult struct {
	Account codec.Address `json:"account"`
	Area    string        `json:"area"`
}

func (*SetUserAreaResult) GetTypeID() uint8 {
	return consts.SetUserAreaID
}
