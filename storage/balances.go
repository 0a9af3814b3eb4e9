// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"context"
	"encoding/binary"

	"github.com/ava-labs/fundvm/codec"
	"github.com/ava-labs/fundvm/consts"
	"github.com/ava-labs/fundvm/state"
)

const maxLocks = 64

// Balance of a single account in a single asset.
type Balance struct {
	Free     uint64
	Reserved uint64
}

func (b Balance) Total() (uint64, bool) {
	t := b.Free + b.Reserved
	return t, t >= b.Free
}

// [balancePrefix] + [account] + [asset]
func BalanceKey(account codec.Address, asset codec.Address) []byte {
	return prefixKey(balancePrefix, BalanceChunks, account[:], asset[:])
}

func GetBalance(ctx context.Context, im state.Immutable, account codec.Address, asset codec.Address) (Balance, error) {
	v, exists, err := getValue(ctx, im, BalanceKey(account, asset))
	if err != nil || !exists {
		return Balance{}, err
	}
	if len(v) != 2*consts.Uint64Len {
		return Balance{}, ErrCorruptValue
	}
	return Balance{
		Free:     binary.BigEndian.Uint64(v),
		Reserved: binary.BigEndian.Uint64(v[consts.Uint64Len:]),
	}, nil
}

// SetBalance removes the key once both sides are zero.
func SetBalance(ctx context.Context, mu state.Mutable, account codec.Address, asset codec.Address, b Balance) error {
	k := BalanceKey(account, asset)
	if b.Free == 0 && b.Reserved == 0 {
		return mu.Remove(ctx, k)
	}
	v := make([]byte, 2*consts.Uint64Len)
	binary.BigEndian.PutUint64(v, b.Free)
	binary.BigEndian.PutUint64(v[consts.Uint64Len:], b.Reserved)
	return mu.Insert(ctx, k, v)
}

const LockIDLen = 8

type LockID [LockIDLen]byte

// Lock freezes part of a free balance until removed.
type Lock struct {
	ID     LockID
	Amount uint64
}

// [lockPrefix] + [account] + [asset]
func LockKey(account codec.Address, asset codec.Address) []byte {
	return prefixKey(lockPrefix, LockChunks, account[:], asset[:])
}

func GetLocks(ctx context.Context, im state.Immutable, account codec.Address, asset codec.Address) ([]Lock, error) {
	v, exists, err := getValue(ctx, im, LockKey(account, asset))
	if err != nil || !exists {
		return nil, err
	}
	p := codec.NewReader(v, len(v))
	count := int(p.UnpackByte())
	locks := make([]Lock, count)
	var raw []byte
	for i := range locks {
		p.UnpackBytes(LockIDLen, true, &raw)
		copy(locks[i].ID[:], raw)
		locks[i].Amount = p.UnpackUint64(false)
	}
	return locks, p.Done()
}

func SetLocks(ctx context.Context, mu state.Mutable, account codec.Address, asset codec.Address, locks []Lock) error {
	k := LockKey(account, asset)
	if len(locks) == 0 {
		return mu.Remove(ctx, k)
	}
	if len(locks) > maxLocks {
		return ErrTooManyLocks
	}
	size := consts.ByteLen + len(locks)*(consts.Uint32Len+LockIDLen+consts.Uint64Len)
	p := codec.NewWriter(size, size)
	p.PackByte(byte(len(locks)))
	for _, l := range locks {
		p.PackBytes(l.ID[:])
		p.PackUint64(l.Amount)
	}
	if err := p.Err(); err != nil {
		return err
	}
	return mu.Insert(ctx, k, p.Bytes())
}
