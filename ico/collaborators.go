// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ico

import (
	"context"

	"github.com/ava-labs/fundvm/codec"
	"github.com/ava-labs/fundvm/state"
	"github.com/ava-labs/fundvm/storage"
)

var (
	_ Oracle = (*StateOracle)(nil)
	_ KYC    = (*StateKYC)(nil)
)

// StateOracle serves prices published on-chain by the authority.
type StateOracle struct {
	im state.Immutable
}

func NewStateOracle(im state.Immutable) *StateOracle {
	return &StateOracle{im: im}
}

func (o *StateOracle) GetPrice(ctx context.Context, asset codec.Address, quote codec.Address) (uint64, bool, error) {
	price, exists, err := storage.GetPrice(ctx, o.im, asset, quote)
	if err != nil || !exists || price == 0 {
		return 0, false, err
	}
	return price, true, nil
}

// StateKYC serves jurisdictions recorded on-chain by the authority.
type StateKYC struct {
	im state.Immutable
}

func NewStateKYC(im state.Immutable) *StateKYC {
	return &StateKYC{im: im}
}

func (k *StateKYC) GetUserArea(ctx context.Context, account codec.Address) (string, bool, error) {
	return storage.GetUserArea(ctx, k.im, account)
}
