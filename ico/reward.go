// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ico

import (
	"context"
	"fmt"

	"github.com/holiman/uint256"

	"github.com/ava-labs/fundvm/codec"
	"github.com/ava-labs/fundvm/consts"
	"github.com/ava-labs/fundvm/pricing"
	"github.com/ava-labs/fundvm/storage"
)

// DecileMultipliers weight the ten equal slices of a raise, earliest
// first, in percent.
var DecileMultipliers = [10]uint64{150, 140, 130, 120, 110, 90, 80, 70, 60, 50}

// maxEras bounds the halving schedule; later eras pay nothing.
const maxEras = 64

type RewardGranted struct {
	Index         uint32        `json:"index"`
	Amount        uint64        `json:"amount"`
	Inviter       codec.Address `json:"inviter"`
	InviterAmount uint64        `json:"inviterAmount"`
}

// ProjectReward integrates the halving schedule over the system volume
// range [volume, volume+raised). The first era pays total/2 over
// [halfDuration] units of volume and every later era pays half of the
// previous one.
func ProjectReward(total, halfDuration, volume, raised uint64) (uint64, error) {
	if halfDuration == 0 || raised == 0 {
		return 0, nil
	}
	end := volume + raised
	if end < volume {
		end = consts.MaxUint64
	}
	var (
		sum   = new(uint256.Int)
		start = volume
		rate  = new(uint256.Int).Mul(uint256.NewInt(2), uint256.NewInt(halfDuration))
	)
	for start < end {
		era := start / halfDuration
		if era >= maxEras {
			break
		}
		boundary := consts.MaxUint64
		if era+1 <= consts.MaxUint64/halfDuration {
			boundary = (era + 1) * halfDuration
		}
		segmentEnd := min(boundary, end)
		segment := new(uint256.Int).Mul(uint256.NewInt(segmentEnd-start), uint256.NewInt(total))
		denominator := new(uint256.Int).Lsh(rate, uint(era))
		sum.Add(sum, segment.Div(segment, denominator))
		start = segmentEnd
	}
	if !sum.IsUint64() {
		return 0, pricing.ErrOverflow
	}
	return sum.Uint64(), nil
}

func decileBounds(total uint64, d uint64) (uint64, uint64) {
	lo, _ := pricing.MulDiv(total, d, 10)
	hi, _ := pricing.MulDiv(total, d+1, 10)
	return lo, hi
}

// weightedVolume spreads each tag over the deciles of a raise of [total]
// and sums the overlap times the decile multiplier.
func weightedVolume(total uint64, tags []storage.Tag) *uint256.Int {
	sum := new(uint256.Int)
	for _, tag := range tags {
		lo, hi := tag.RunningTotal-tag.ExchangeAmount, tag.RunningTotal
		for d := uint64(0); d < 10; d++ {
			dlo, dhi := decileBounds(total, d)
			from, to := max(lo, dlo), min(hi, dhi)
			if from >= to {
				continue
			}
			overlap := new(uint256.Int).Mul(uint256.NewInt(to-from), uint256.NewInt(DecileMultipliers[d]))
			sum.Add(sum, overlap)
		}
	}
	return sum
}

// UserReward returns the share of [projectReward] earned by [tags]: the
// decile weighted contribution over the decile weighted raise.
func UserReward(projectReward uint64, totalRaised uint64, tags []storage.Tag) (uint64, error) {
	if totalRaised == 0 || projectReward == 0 {
		return 0, nil
	}
	whole := weightedVolume(totalRaised, []storage.Tag{{ExchangeAmount: totalRaised, RunningTotal: totalRaised}})
	if whole.IsZero() {
		return 0, nil
	}
	user := weightedVolume(totalRaised, tags)
	reward := new(uint256.Int).Mul(user, uint256.NewInt(projectReward))
	reward.Div(reward, whole)
	if !reward.IsUint64() {
		return 0, pricing.ErrOverflow
	}
	return reward.Uint64(), nil
}

// GetReward pays the reward of [actor] in the native asset, once.
func (e *Engine) GetReward(ctx context.Context, actor codec.Address, index uint32) (*RewardGranted, error) {
	pr, err := e.GetProject(ctx, index)
	if err != nil {
		return nil, err
	}
	if pr.Status != storage.SuccessfullySettled && pr.Status != storage.Terminated {
		return nil, fmt.Errorf("%w: %s", ErrRewardUnavailable, pr.Status)
	}
	pt, exists, err := storage.GetParticipant(ctx, e.mu, index, actor)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrNotParticipant
	}
	if pt.RewardClaimed {
		return nil, ErrAlreadyGetReward
	}
	reward, err := UserReward(pr.Reward, pr.TotalRaised, pt.Tags)
	if err != nil {
		return nil, err
	}
	granted := &RewardGranted{Index: index, Amount: reward}
	if pt.HasInviter {
		share, err := pricing.MulDiv(reward, e.rules.GetICOInviterPercent(), consts.Percent)
		if err != nil {
			return nil, err
		}
		granted.Inviter = pt.Inviter
		granted.InviterAmount = share
		granted.Amount = reward - share
	}

	native := e.rules.GetNativeAsset()
	if err := e.ledger.Deposit(ctx, native, actor, granted.Amount); err != nil {
		return nil, err
	}
	if err := e.ledger.Deposit(ctx, native, granted.Inviter, granted.InviterAmount); err != nil {
		return nil, err
	}
	pt.Reward = reward
	pt.HasReward = true
	pt.RewardClaimed = true
	if err := storage.SetParticipant(ctx, e.mu, index, actor, pt); err != nil {
		return nil, err
	}
	return granted, nil
}
