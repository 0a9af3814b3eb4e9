// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ico

import (
	"context"
	"fmt"

	smath "github.com/ava-labs/avalanchego/utils/math"

	"github.com/ava-labs/fundvm/codec"
	"github.com/ava-labs/fundvm/consts"
	"github.com/ava-labs/fundvm/ledger"
	"github.com/ava-labs/fundvm/pricing"
	"github.com/ava-labs/fundvm/state"
	"github.com/ava-labs/fundvm/storage"
)

type Settled struct {
	Index       uint32                `json:"index"`
	Status      storage.ProjectStatus `json:"status"`
	TotalRaised uint64                `json:"totalRaised"`
	Reward      uint64                `json:"reward"`
}

// Close settles raise [index] once its deadline is reached.
func (e *Engine) Close(ctx context.Context, height uint64, index uint32) (*Settled, error) {
	pr, err := e.project(ctx, index, storage.Raising)
	if err != nil {
		return nil, err
	}
	if height < pr.Deadline() {
		return nil, fmt.Errorf("%w: deadline %d", ErrNotExpired, pr.Deadline())
	}
	return e.settle(ctx, height, pr)
}

// SettleFailed reports a raise whose settlement was rolled back by a sweep.
type SettleFailed struct {
	Index uint32 `json:"index"`
	Error string `json:"error"`
}

// Swept collects what a single end-of-block sweep changed.
type Swept struct {
	Expired []*ProjectExpired
	Settled []*Settled
	Failed  []*SettleFailed
}

// Sweep settles every active raise whose deadline has been reached and
// expires every ask left pending for the pending expiry.
//
// Each project is handled from its own restore point: one that fails is
// rolled back and reported in [Swept.Failed], and the sweep moves on.
func (e *Engine) Sweep(ctx context.Context, height uint64) (*Swept, error) {
	scope, ok := e.mu.(state.Scoped)
	if !ok {
		return nil, state.ErrNotScoped
	}
	active, err := storage.GetActiveProjects(ctx, e.mu)
	if err != nil {
		return nil, err
	}
	swept := &Swept{}
	for _, index := range active {
		pr, err := e.GetProject(ctx, index)
		if err != nil {
			return nil, err
		}
		restore := scope.OpIndex()
		switch {
		case pr.Status == storage.PendingApproval && e.askExpired(pr, height):
			err = e.refuse(ctx, pr, storage.Expired)
			if err == nil {
				swept.Expired = append(swept.Expired, &ProjectExpired{Index: index, Slashed: pr.PledgeBond})
			}
		case pr.Status == storage.Raising && height >= pr.Deadline():
			var s *Settled
			s, err = e.settle(ctx, height, pr)
			if err == nil {
				swept.Settled = append(swept.Settled, s)
			}
		default:
			continue
		}
		if err != nil {
			scope.Rollback(ctx, restore)
			swept.Failed = append(swept.Failed, &SettleFailed{Index: index, Error: err.Error()})
		}
	}
	return swept, nil
}

func (e *Engine) askExpired(pr *storage.Project, height uint64) bool {
	expiry := e.rules.GetICOPendingExpiry()
	return expiry != 0 && height >= pr.AskedBlock && height-pr.AskedBlock >= expiry
}

// settle picks the outcome of an expired raise: success when the
// threshold share of the target was raised.
func (e *Engine) settle(ctx context.Context, height uint64, pr *storage.Project) (*Settled, error) {
	threshold, err := pricing.MulDiv(pr.ExchangeTarget, e.rules.GetICOSuccessThreshold(), consts.Percent)
	if err != nil {
		return nil, err
	}
	if pr.TotalRaised > 0 && pr.TotalRaised >= threshold {
		return e.settleSuccess(ctx, height, pr)
	}
	return e.settleFailure(ctx, height, pr)
}

func (e *Engine) closeRaise(ctx context.Context, height uint64, pr *storage.Project, status storage.ProjectStatus) error {
	if pr.Status != storage.Raising {
		return fmt.Errorf("%w: %s", ErrInvalidStatus, pr.Status)
	}
	pr.Status = status
	pr.SettledBlock = height
	// Offered tokens that were never sold go back to the initiator.
	unsold := pr.AmountOffered - pr.TokensSold
	if err := e.ledger.Unreserve(ctx, pr.Asset, pr.Initiator, unsold); err != nil {
		return err
	}
	return storage.RemoveActiveProject(ctx, e.mu, pr.Index)
}

func (e *Engine) settleSuccess(ctx context.Context, height uint64, pr *storage.Project) (*Settled, error) {
	if err := e.closeRaise(ctx, height, pr, storage.SuccessfullySettled); err != nil {
		return nil, err
	}
	if err := e.ledger.Unreserve(ctx, pr.ExchangeAsset, e.rules.GetTreasury(), pr.ExchangeBond); err != nil {
		return nil, err
	}
	if err := storage.AddGraduated(ctx, e.mu, pr.Asset); err != nil {
		return nil, err
	}

	volume, err := storage.GetSystemVolume(ctx, e.mu)
	if err != nil {
		return nil, err
	}
	pr.Reward, err = ProjectReward(e.rules.GetICORewardTotal(), e.rules.GetICOHalfDuration(), volume, pr.TotalUSDT)
	if err != nil {
		return nil, err
	}
	pr.RewardComputed = true
	volume, err = smath.Add(volume, pr.TotalUSDT)
	if err != nil {
		volume = consts.MaxUint64
	}
	if err := storage.SetSystemVolume(ctx, e.mu, volume); err != nil {
		return nil, err
	}

	members, err := storage.GetMembers(ctx, e.mu, pr.Index)
	if err != nil {
		return nil, err
	}
	for _, member := range members {
		if err := e.startVesting(ctx, height, pr, member); err != nil {
			return nil, err
		}
	}
	if err := storage.SetProject(ctx, e.mu, pr); err != nil {
		return nil, err
	}
	return &Settled{
		Index:       pr.Index,
		Status:      pr.Status,
		TotalRaised: pr.TotalRaised,
		Reward:      pr.Reward,
	}, nil
}

// startVesting narrows the raise-time lock of [member] down to the locked
// share of its entitlement.
func (e *Engine) startVesting(ctx context.Context, height uint64, pr *storage.Project, member codec.Address) error {
	pt, exists, err := storage.GetParticipant(ctx, e.mu, pr.Index, member)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: member %s", ErrNotParticipant, member)
	}
	locked, err := pricing.MulDiv(pt.Entitlement, uint64(pr.LockPercent), consts.Percent)
	if err != nil {
		return err
	}
	if locked == 0 {
		return e.ledger.RemoveLock(ctx, LockID(pr.Index), pr.Asset, member)
	}
	perDuration, err := pricing.MulDiv(locked, uint64(pr.UnlockPercentPerDuration), consts.Percent)
	if err != nil {
		return err
	}
	// Small allocations still vest at least one unit per period.
	perDuration = max(perDuration, 1)
	if err := e.ledger.SetLock(ctx, LockID(pr.Index), pr.Asset, member, locked); err != nil {
		return err
	}
	return storage.SetVesting(ctx, e.mu, pr.Index, member, &storage.Vesting{
		StartBlock:     height,
		Total:          locked,
		UnlockDuration: pr.UnlockDuration,
		PerDuration:    perDuration,
	})
}

// settleFailure unwinds every recorded contribution from the participant
// ledger and removes the raise from active storage.
func (e *Engine) settleFailure(ctx context.Context, height uint64, pr *storage.Project) (*Settled, error) {
	if err := e.closeRaise(ctx, height, pr, storage.Failed); err != nil {
		return nil, err
	}
	if err := e.ledger.RepatriateReserved(
		ctx,
		pr.ExchangeAsset,
		e.rules.GetTreasury(),
		pr.Initiator,
		pr.ExchangeBond,
		ledger.Free,
	); err != nil {
		return nil, err
	}

	members, err := storage.GetMembers(ctx, e.mu, pr.Index)
	if err != nil {
		return nil, err
	}
	escrow := storage.EscrowAccount(pr.Index)
	for _, member := range members {
		pt, exists, err := storage.GetParticipant(ctx, e.mu, pr.Index, member)
		if err != nil {
			return nil, err
		}
		if !exists {
			continue
		}
		if err := e.ledger.RemoveLock(ctx, LockID(pr.Index), pr.Asset, member); err != nil {
			return nil, err
		}
		if err := e.ledger.Transfer(ctx, pr.Asset, member, pr.Initiator, pt.Entitlement); err != nil {
			return nil, err
		}
		if err := e.ledger.Transfer(ctx, pr.ExchangeAsset, escrow, member, pt.Contributed); err != nil {
			return nil, err
		}
		volume, err := storage.GetUserVolume(ctx, e.mu, member)
		if err != nil {
			return nil, err
		}
		if err := storage.SetUserVolume(ctx, e.mu, member, volume-min(volume, pt.USDT)); err != nil {
			return nil, err
		}
		if err := storage.DeleteParticipant(ctx, e.mu, pr.Index, member); err != nil {
			return nil, err
		}
	}
	if err := storage.SetMembers(ctx, e.mu, pr.Index, nil); err != nil {
		return nil, err
	}
	if err := storage.SetProject(ctx, e.mu, pr); err != nil {
		return nil, err
	}
	return &Settled{
		Index:       pr.Index,
		Status:      pr.Status,
		TotalRaised: pr.TotalRaised,
	}, nil
}
