// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"bytes"
	"context"

	"github.com/ava-labs/fundvm/codec"
	"github.com/ava-labs/fundvm/consts"
	"github.com/ava-labs/fundvm/state"
)

// Pair is an unordered asset pair stored with A < B.
type Pair struct {
	A codec.Address
	B codec.Address
}

// NewPair canonicalises (x, y) so that (x, y) and (y, x) share a pool.
func NewPair(x codec.Address, y codec.Address) (Pair, error) {
	switch bytes.Compare(x[:], y[:]) {
	case -1:
		return Pair{A: x, B: y}, nil
	case 1:
		return Pair{A: y, B: x}, nil
	default:
		return Pair{}, ErrIdenticalAssets
	}
}

func (p Pair) Bytes() []byte {
	b := make([]byte, 0, 2*codec.AddressLen)
	b = append(b, p.A[:]...)
	return append(b, p.B[:]...)
}

// Orient returns (a, b) values ordered as ([x], other) where [x] is one of
// the pair's assets.
func (p Pair) Orient(x codec.Address, a uint64, b uint64) (uint64, uint64) {
	if x == p.A {
		return a, b
	}
	return b, a
}

// AMMPool holds the reserves of a constant product pool.
type AMMPool struct {
	ReserveA uint64
	ReserveB uint64
	LPAsset  codec.Address
}

// [ammPoolPrefix] + [pair]
func AMMPoolKey(p Pair) []byte {
	return prefixKey(ammPoolPrefix, AMMPoolChunks, p.A[:], p.B[:])
}

// AMMPoolAccount is the custodial account holding the reserves of [p].
func AMMPoolAccount(p Pair) codec.Address {
	return codec.DeriveAddress(consts.AMMPoolAccountID, p.Bytes())
}

func LPAssetAddress(p Pair) codec.Address {
	return codec.DeriveAddress(consts.LPAssetID, p.Bytes())
}

func GetAMMPool(ctx context.Context, im state.Immutable, p Pair) (AMMPool, bool, error) {
	v, exists, err := getValue(ctx, im, AMMPoolKey(p))
	if err != nil || !exists {
		return AMMPool{}, false, err
	}
	r := codec.NewReader(v, len(v))
	var pool AMMPool
	pool.ReserveA = r.UnpackUint64(false)
	pool.ReserveB = r.UnpackUint64(false)
	r.UnpackAddress(&pool.LPAsset)
	if err := r.Done(); err != nil {
		return AMMPool{}, false, err
	}
	return pool, true, nil
}

func SetAMMPool(ctx context.Context, mu state.Mutable, p Pair, pool AMMPool) error {
	size := 2*consts.Uint64Len + codec.AddressLen
	w := codec.NewWriter(size, size)
	w.PackUint64(pool.ReserveA)
	w.PackUint64(pool.ReserveB)
	w.PackAddress(pool.LPAsset)
	if err := w.Err(); err != nil {
		return err
	}
	return mu.Insert(ctx, AMMPoolKey(p), w.Bytes())
}
