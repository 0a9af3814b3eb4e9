// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ico

import (
	"context"
	"fmt"

	"github.com/ava-labs/fundvm/codec"
	"github.com/ava-labs/fundvm/consts"
	"github.com/ava-labs/fundvm/pricing"
	"github.com/ava-labs/fundvm/storage"
)

type Unlocked struct {
	Index    uint32 `json:"index"`
	Amount   uint64 `json:"amount"`
	Unlocked uint64 `json:"unlocked"`
	Total    uint64 `json:"total"`
}

type FundsReleased struct {
	Index   uint32 `json:"index"`
	Percent uint8  `json:"percent"`
	Amount  uint64 `json:"amount"`
}

type ProjectTerminated struct {
	Index    uint32 `json:"index"`
	Refunded uint64 `json:"refunded"`
	Returned uint64 `json:"returned"`
}

// unlockedAt returns the cumulative amount of [vs] vested at [height].
func unlockedAt(vs *storage.Vesting, height uint64) uint64 {
	if vs.UnlockDuration == 0 {
		return vs.Total
	}
	if height <= vs.StartBlock {
		return 0
	}
	periods := (height - vs.StartBlock) / vs.UnlockDuration
	per := max(vs.PerDuration, 1)
	if periods >= vs.Total/per+1 {
		return vs.Total
	}
	return min(periods*per, vs.Total)
}

// Unlock releases the tokens of [actor] vested since the last call.
func (e *Engine) Unlock(ctx context.Context, actor codec.Address, height uint64, index uint32) (*Unlocked, error) {
	pr, err := e.project(ctx, index, storage.SuccessfullySettled)
	if err != nil {
		return nil, err
	}
	vs, exists, err := storage.GetVesting(ctx, e.mu, index, actor)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrNoVesting
	}
	unlocked := unlockedAt(vs, height)
	if unlocked <= vs.Unlocked {
		return &Unlocked{Index: index, Unlocked: vs.Unlocked, Total: vs.Total}, nil
	}
	delta := unlocked - vs.Unlocked
	vs.Unlocked = unlocked
	if err := e.ledger.SetLock(ctx, LockID(index), pr.Asset, actor, vs.Total-vs.Unlocked); err != nil {
		return nil, err
	}
	if err := storage.SetVesting(ctx, e.mu, index, actor, vs); err != nil {
		return nil, err
	}
	return &Unlocked{
		Index:    index,
		Amount:   delta,
		Unlocked: vs.Unlocked,
		Total:    vs.Total,
	}, nil
}

// ReleaseFunds pays the initiator up to [percent] of the escrowed raise.
func (e *Engine) ReleaseFunds(ctx context.Context, actor codec.Address, index uint32, percent uint8) (*FundsReleased, error) {
	if err := e.checkAuthority(actor); err != nil {
		return nil, err
	}
	pr, err := e.project(ctx, index, storage.SuccessfullySettled)
	if err != nil {
		return nil, err
	}
	if uint64(percent) > consts.Percent || percent <= pr.ReleasedPercent {
		return nil, fmt.Errorf("%w: %d after %d", ErrInvalidReleasePercent, percent, pr.ReleasedPercent)
	}
	before, err := pricing.MulDiv(pr.TotalRaised, uint64(pr.ReleasedPercent), consts.Percent)
	if err != nil {
		return nil, err
	}
	after, err := pricing.MulDiv(pr.TotalRaised, uint64(percent), consts.Percent)
	if err != nil {
		return nil, err
	}
	amount := after - before
	if err := e.ledger.Transfer(ctx, pr.ExchangeAsset, storage.EscrowAccount(index), pr.Initiator, amount); err != nil {
		return nil, err
	}
	pr.ReleasedPercent = percent
	if err := storage.SetProject(ctx, e.mu, pr); err != nil {
		return nil, err
	}
	return &FundsReleased{Index: index, Percent: percent, Amount: amount}, nil
}

// Terminate stops a settled project. Participants are refunded the share
// of their contribution that was never released and their unvested tokens
// return to the initiator.
func (e *Engine) Terminate(ctx context.Context, actor codec.Address, index uint32) (*ProjectTerminated, error) {
	if err := e.checkAuthority(actor); err != nil {
		return nil, err
	}
	pr, err := e.project(ctx, index, storage.SuccessfullySettled)
	if err != nil {
		return nil, err
	}
	members, err := storage.GetMembers(ctx, e.mu, index)
	if err != nil {
		return nil, err
	}
	escrow := storage.EscrowAccount(index)
	unreleased := consts.Percent - uint64(pr.ReleasedPercent)
	terminated := &ProjectTerminated{Index: index}
	for _, member := range members {
		pt, exists, err := storage.GetParticipant(ctx, e.mu, index, member)
		if err != nil {
			return nil, err
		}
		if !exists {
			continue
		}
		refund, err := pricing.MulDiv(pt.Contributed, unreleased, consts.Percent)
		if err != nil {
			return nil, err
		}
		if err := e.ledger.Transfer(ctx, pr.ExchangeAsset, escrow, member, refund); err != nil {
			return nil, err
		}
		pt.Refunded = refund
		pt.Released = pt.Contributed - refund
		terminated.Refunded += refund

		vs, vesting, err := storage.GetVesting(ctx, e.mu, index, member)
		if err != nil {
			return nil, err
		}
		if vesting {
			if err := e.ledger.RemoveLock(ctx, LockID(index), pr.Asset, member); err != nil {
				return nil, err
			}
			remaining := vs.Total - vs.Unlocked
			if err := e.ledger.Transfer(ctx, pr.Asset, member, pr.Initiator, remaining); err != nil {
				return nil, err
			}
			terminated.Returned += remaining
			if err := storage.DeleteVesting(ctx, e.mu, index, member); err != nil {
				return nil, err
			}
		}
		if err := storage.SetParticipant(ctx, e.mu, index, member, pt); err != nil {
			return nil, err
		}
	}
	pr.Status = storage.Terminated
	if err := storage.SetProject(ctx, e.mu, pr); err != nil {
		return nil, err
	}
	return terminated, nil
}
