// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

import (
	"context"
	"math"

	smath "github.com/ava-labs/avalanchego/utils/math"

	"github.com/ava-labs/fundvm/codec"
	"github.com/ava-labs/fundvm/storage"
)

// frozen is the sum of every lock on the balance, saturating at the
// largest uint64. Locks stack, so each one stays covered by the balance.
func (l *Ledger) frozen(ctx context.Context, asset codec.Address, who codec.Address) (uint64, error) {
	locks, err := storage.GetLocks(ctx, l.mu, who, asset)
	if err != nil {
		return 0, err
	}
	var frozen uint64
	for _, lock := range locks {
		total, err := smath.Add(frozen, lock.Amount)
		if err != nil {
			return math.MaxUint64, nil
		}
		frozen = total
	}
	return frozen, nil
}

// SetLock creates or replaces lock [id]. A zero amount removes it.
func (l *Ledger) SetLock(ctx context.Context, id storage.LockID, asset codec.Address, who codec.Address, amount uint64) error {
	if amount == 0 {
		return l.RemoveLock(ctx, id, asset, who)
	}
	locks, err := storage.GetLocks(ctx, l.mu, who, asset)
	if err != nil {
		return err
	}
	for i := range locks {
		if locks[i].ID == id {
			locks[i].Amount = amount
			return storage.SetLocks(ctx, l.mu, who, asset, locks)
		}
	}
	return storage.SetLocks(ctx, l.mu, who, asset, append(locks, storage.Lock{ID: id, Amount: amount}))
}

func (l *Ledger) RemoveLock(ctx context.Context, id storage.LockID, asset codec.Address, who codec.Address) error {
	locks, err := storage.GetLocks(ctx, l.mu, who, asset)
	if err != nil {
		return err
	}
	for i := range locks {
		if locks[i].ID == id {
			return storage.SetLocks(ctx, l.mu, who, asset, append(locks[:i:i], locks[i+1:]...))
		}
	}
	return nil
}

// GetLock returns the amount frozen by lock [id].
func (l *Ledger) GetLock(ctx context.Context, id storage.LockID, asset codec.Address, who codec.Address) (uint64, error) {
	locks, err := storage.GetLocks(ctx, l.mu, who, asset)
	if err != nil {
		return 0, err
	}
	for _, lock := range locks {
		if lock.ID == id {
			return lock.Amount, nil
		}
	}
	return 0, nil
}
