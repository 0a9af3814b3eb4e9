// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"context"

	"github.com/ava-labs/fundvm/codec"
	"github.com/ava-labs/fundvm/consts"
	"github.com/ava-labs/fundvm/state"
)

// Related to asset invariants
const (
	MaxAssetNameSize   = 64
	MaxAssetSymbolSize = 33
	MaxAssetDecimals   = 18
)

// Asset holds the metadata and total issuance of an asset.
type Asset struct {
	Name     string
	Symbol   string
	Decimals uint8
	Owner    codec.Address
	Supply   uint64
}

// [assetPrefix] + [asset]
func AssetKey(asset codec.Address) []byte {
	return prefixKey(assetPrefix, AssetChunks, asset[:])
}

func GetAsset(ctx context.Context, im state.Immutable, asset codec.Address) (Asset, bool, error) {
	v, exists, err := getValue(ctx, im, AssetKey(asset))
	if err != nil || !exists {
		return Asset{}, false, err
	}
	p := codec.NewReader(v, len(v))
	var a Asset
	a.Name = p.UnpackString(false)
	a.Symbol = p.UnpackString(false)
	a.Decimals = p.UnpackByte()
	p.UnpackAddress(&a.Owner)
	a.Supply = p.UnpackUint64(false)
	if err := p.Done(); err != nil {
		return Asset{}, false, err
	}
	return a, true, nil
}

func SetAsset(ctx context.Context, mu state.Mutable, asset codec.Address, a Asset) error {
	size := 2*consts.Uint16Len + len(a.Name) + len(a.Symbol) + consts.ByteLen + codec.AddressLen + consts.Uint64Len
	p := codec.NewWriter(size, size)
	p.PackString(a.Name)
	p.PackString(a.Symbol)
	p.PackByte(a.Decimals)
	p.PackAddress(a.Owner)
	p.PackUint64(a.Supply)
	if err := p.Err(); err != nil {
		return err
	}
	return mu.Insert(ctx, AssetKey(asset), p.Bytes())
}

// AssetAddress derives the address of an asset created by [owner] with
// [symbol].
func AssetAddress(owner codec.Address, symbol string) codec.Address {
	return codec.DeriveAddress(consts.AssetID, owner[:], []byte(symbol))
}
