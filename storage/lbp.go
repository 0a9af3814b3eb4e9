// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"context"

	"github.com/holiman/uint256"

	"github.com/ava-labs/fundvm/codec"
	"github.com/ava-labs/fundvm/consts"
	"github.com/ava-labs/fundvm/state"
)

type LBPStatus uint8

const (
	LBPPending LBPStatus = iota
	LBPInProgress
	LBPFinished
	LBPCancelled
)

func (s LBPStatus) String() string {
	switch s {
	case LBPPending:
		return "pending"
	case LBPInProgress:
		return "in_progress"
	case LBPFinished:
		return "finished"
	case LBPCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

type LBPPool struct {
	ID          uint32
	Owner       codec.Address
	SupplyAsset codec.Address
	TargetAsset codec.Address

	SupplyBalance uint64
	TargetBalance uint64

	SupplyStartWeight uint64
	SupplyEndWeight   uint64
	TargetStartWeight uint64
	TargetEndWeight   uint64
	SupplyWeight      uint64
	TargetWeight      uint64

	StartBlock       uint64
	EndBlock         uint64
	Steps            uint64
	CurrentStep      uint64
	NextStepBlock    uint64
	LastAdvanceBlock uint64

	Status LBPStatus
}

const lbpPoolSize = consts.Uint32Len + 3*codec.AddressLen + 14*consts.Uint64Len + consts.ByteLen

// [lbpPoolPrefix] + [id]
func LBPPoolKey(id uint32) []byte {
	return prefixKey(lbpPoolPrefix, LBPPoolChunks, uint32Bytes(id))
}

// LBPPoolAccount is the custodial account of pool [id].
func LBPPoolAccount(id uint32) codec.Address {
	return codec.DeriveAddress(consts.LBPPoolAccountID, uint32Bytes(id))
}

func GetLBPPool(ctx context.Context, im state.Immutable, id uint32) (*LBPPool, bool, error) {
	v, exists, err := getValue(ctx, im, LBPPoolKey(id))
	if err != nil || !exists {
		return nil, false, err
	}
	p := codec.NewReader(v, len(v))
	pool := &LBPPool{}
	pool.ID = p.UnpackUint32(false)
	p.UnpackAddress(&pool.Owner)
	p.UnpackAddress(&pool.SupplyAsset)
	p.UnpackAddress(&pool.TargetAsset)
	pool.SupplyBalance = p.UnpackUint64(false)
	pool.TargetBalance = p.UnpackUint64(false)
	pool.SupplyStartWeight = p.UnpackUint64(false)
	pool.SupplyEndWeight = p.UnpackUint64(false)
	pool.TargetStartWeight = p.UnpackUint64(false)
	pool.TargetEndWeight = p.UnpackUint64(false)
	pool.SupplyWeight = p.UnpackUint64(false)
	pool.TargetWeight = p.UnpackUint64(false)
	pool.StartBlock = p.UnpackUint64(false)
	pool.EndBlock = p.UnpackUint64(false)
	pool.Steps = p.UnpackUint64(false)
	pool.CurrentStep = p.UnpackUint64(false)
	pool.NextStepBlock = p.UnpackUint64(false)
	pool.LastAdvanceBlock = p.UnpackUint64(false)
	pool.Status = LBPStatus(p.UnpackByte())
	if err := p.Done(); err != nil {
		return nil, false, err
	}
	return pool, true, nil
}

func SetLBPPool(ctx context.Context, mu state.Mutable, pool *LBPPool) error {
	p := codec.NewWriter(lbpPoolSize, lbpPoolSize)
	p.PackUint32(pool.ID)
	p.PackAddress(pool.Owner)
	p.PackAddress(pool.SupplyAsset)
	p.PackAddress(pool.TargetAsset)
	p.PackUint64(pool.SupplyBalance)
	p.PackUint64(pool.TargetBalance)
	p.PackUint64(pool.SupplyStartWeight)
	p.PackUint64(pool.SupplyEndWeight)
	p.PackUint64(pool.TargetStartWeight)
	p.PackUint64(pool.TargetEndWeight)
	p.PackUint64(pool.SupplyWeight)
	p.PackUint64(pool.TargetWeight)
	p.PackUint64(pool.StartBlock)
	p.PackUint64(pool.EndBlock)
	p.PackUint64(pool.Steps)
	p.PackUint64(pool.CurrentStep)
	p.PackUint64(pool.NextStepBlock)
	p.PackUint64(pool.LastAdvanceBlock)
	p.PackByte(byte(pool.Status))
	if err := p.Err(); err != nil {
		return err
	}
	return mu.Insert(ctx, LBPPoolKey(pool.ID), p.Bytes())
}

// [lbpPairIndexPrefix] + [pair]
func LBPPairIndexKey(p Pair) []byte {
	return prefixKey(lbpPairIndexPrefix, Uint64Chunks, p.A[:], p.B[:])
}

// GetOngoingLBP returns the id of the ongoing pool for [p].
func GetOngoingLBP(ctx context.Context, im state.Immutable, p Pair) (uint32, bool, error) {
	v, exists, err := getUint64(ctx, im, LBPPairIndexKey(p))
	if err != nil || !exists {
		return 0, false, err
	}
	return uint32(v - 1), true, nil
}

func SetOngoingLBP(ctx context.Context, mu state.Mutable, p Pair, id uint32) error {
	// ids are stored off by one so that pool 0 is not mistaken for a removal
	return setUint64(ctx, mu, LBPPairIndexKey(p), uint64(id)+1)
}

func DeleteOngoingLBP(ctx context.Context, mu state.Mutable, p Pair) error {
	return mu.Remove(ctx, LBPPairIndexKey(p))
}

func LiveLBPKey() []byte {
	return prefixKey(lbpLivePrefix, ListChunks)
}

// GetLiveLBPs returns the pools visited by the end-of-block advance.
func GetLiveLBPs(ctx context.Context, im state.Immutable) ([]uint32, error) {
	return getUint32List(ctx, im, LiveLBPKey())
}

func AddLiveLBP(ctx context.Context, mu state.Mutable, id uint32) error {
	live, err := GetLiveLBPs(ctx, mu)
	if err != nil {
		return err
	}
	return setUint32List(ctx, mu, LiveLBPKey(), append(live, id))
}

func RemoveLiveLBP(ctx context.Context, mu state.Mutable, id uint32) error {
	live, err := GetLiveLBPs(ctx, mu)
	if err != nil {
		return err
	}
	return setUint32List(ctx, mu, LiveLBPKey(), removeUint32(live, id))
}

func NextLBPIDKey() []byte {
	return prefixKey(lbpNextIDPrefix, Uint64Chunks)
}

// NextLBPID allocates a new pool id.
func NextLBPID(ctx context.Context, mu state.Mutable) (uint32, error) {
	next, _, err := getUint64(ctx, mu, NextLBPIDKey())
	if err != nil {
		return 0, err
	}
	if next >= uint64(consts.MaxUint32) {
		return 0, ErrIndexExhausted
	}
	return uint32(next), setUint64(ctx, mu, NextLBPIDKey(), next+1)
}

// PricePoint is a spot price sample taken when a pool steps.
type PricePoint struct {
	Block uint64
	Price *uint256.Int
}

// [lbpHistoryPrefix] + [id]
func LBPHistoryKey(id uint32) []byte {
	return prefixKey(lbpHistoryPrefix, HistoryChunks, uint32Bytes(id))
}

func GetLBPHistory(ctx context.Context, im state.Immutable, id uint32) ([]PricePoint, error) {
	v, exists, err := getValue(ctx, im, LBPHistoryKey(id))
	if err != nil || !exists {
		return nil, err
	}
	p := codec.NewReader(v, len(v))
	count := p.UnpackUint32(false)
	history := make([]PricePoint, 0, count)
	for i := uint32(0); i < count; i++ {
		history = append(history, PricePoint{
			Block: p.UnpackUint64(false),
			Price: p.UnpackUint256(),
		})
	}
	return history, p.Done()
}

func AppendLBPHistory(ctx context.Context, mu state.Mutable, id uint32, point PricePoint) error {
	history, err := GetLBPHistory(ctx, mu, id)
	if err != nil {
		return err
	}
	history = append(history, point)
	size := consts.Uint32Len + len(history)*(consts.Uint64Len+32)
	p := codec.NewWriter(size, size)
	p.PackUint32(uint32(len(history)))
	for _, h := range history {
		p.PackUint64(h.Block)
		p.PackUint256(h.Price)
	}
	if err := p.Err(); err != nil {
		return err
	}
	return mu.Insert(ctx, LBPHistoryKey(id), p.Bytes())
}
