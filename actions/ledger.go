// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package actions

import (
	"context"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/fundvm/chain"
	"github.com/ava-labs/fundvm/codec"
	"github.com/ava-labs/fundvm/consts"
	"github.com/ava-labs/fundvm/ledger"
	"github.com/ava-labs/fundvm/state"
	"github.com/ava-labs/fundvm/storage"
)

var (
	_ chain.Action = (*CreateAsset)(nil)
	_ chain.Action = (*Transfer)(nil)
)

// CreateAsset registers a new asset owned by the actor and credits the
// initial issuance to it. The asset address is derived from the actor and
// the symbol.
type CreateAsset struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals uint8  `json:"decimals"`
	Supply   uint64 `json:"supply"`
}

func (*CreateAsset) GetTypeID() uint8 {
	return consts.CreateAssetID
}

func (c *CreateAsset) Execute(
	ctx context.Context,
	_ chain.Rules,
	mu state.Mutable,
	_ uint64,
	actor codec.Address,
	_ ids.ID,
) (codec.Typed, error) {
	asset := storage.AssetAddress(actor, c.Symbol)
	if err := ledger.New(mu).CreateAsset(ctx, asset, actor, c.Name, c.Symbol, c.Decimals, c.Supply); err != nil {
		return nil, err
	}
	return &CreateAssetResult{Asset: asset, Supply: c.Supply}, nil
}

type CreateAssetResult struct {
	Asset  codec.Address `json:"asset"`
	Supply uint64        `json:"supply"`
}

func (*CreateAssetResult) GetTypeID() uint8 {
	return consts.CreateAssetID
}

type Transfer struct {
	Asset  codec.Address `json:"asset"`
	To     codec.Address `json:"to"`
	Amount uint64        `json:"amount"`
}

func (*Transfer) GetTypeID() uint8 {
	return consts.TransferID
}

func (t *Transfer) Execute(
	ctx context.Context,
	_ chain.Rules,
	mu state.Mutable,
	_ uint64,
	actor codec.Address,
	_ ids.ID,
) (codec.Typed, error) {
	if t.Amount == 0 {
		return nil, ErrZeroAmount
	}
	l := ledger.New(mu)
	if _, err := l.Metadata(ctx, t.Asset); err != nil {
		return nil, err
	}
	if err := l.Transfer(ctx, t.Asset, actor, t.To, t.Amount); err != nil {
		return nil, err
	}
	balance, err := l.FreeBalance(ctx, t.Asset, actor)
	if err != nil {
		return nil, err
	}
	return &TransferResult{SenderBalance: balance}, nil
}

type TransferResult struct {
	SenderBalance uint64 `json:"senderBalance"`
}

func (*TransferResult) GetTypeID() uint8 {
	return consts.TransferID
}
