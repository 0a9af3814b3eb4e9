// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ico

import (
	"context"
	"fmt"

	smath "github.com/ava-labs/avalanchego/utils/math"

	"github.com/ava-labs/fundvm/codec"
	"github.com/ava-labs/fundvm/ledger"
	"github.com/ava-labs/fundvm/pricing"
	"github.com/ava-labs/fundvm/storage"
)

type Joined struct {
	Index        uint32 `json:"index"`
	Amount       uint64 `json:"amount"`
	USDT         uint64 `json:"usdt"`
	TargetAmount uint64 `json:"targetAmount"`

	// Settled is set when the contribution filled the raise.
	Settled *Settled `json:"settled,omitempty"`
}

// toUSDT converts [amount] of [asset] into the accounting unit.
func (e *Engine) toUSDT(ctx context.Context, asset codec.Address, amount uint64) (uint64, error) {
	usdt := e.rules.GetUSDTAsset()
	if asset == usdt {
		return amount, nil
	}
	price, ok, err := e.oracle.GetPrice(ctx, asset, usdt)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrPriceNotFound, asset)
	}
	return pricing.MulDiv(amount, price, PricePrecision)
}

func (e *Engine) checkArea(ctx context.Context, pr *storage.Project, actor codec.Address) error {
	if len(pr.ExcludedAreas) == 0 {
		return nil
	}
	area, ok, err := e.kyc.GetUserArea(ctx, actor)
	if err != nil {
		return err
	}
	if !ok {
		return ErrUnknownArea
	}
	for _, excluded := range pr.ExcludedAreas {
		if area == excluded {
			return fmt.Errorf("%w: %s", ErrExcludedArea, area)
		}
	}
	return nil
}

// Join contributes [amount] of the exchange asset to raise [index].
//
// A join after the deadline settles the raise and returns [ErrExpired];
// the settlement writes are meant to be kept by the caller.
func (e *Engine) Join(
	ctx context.Context,
	actor codec.Address,
	height uint64,
	index uint32,
	amount uint64,
	inviter codec.Address,
) (*Joined, error) {
	if amount == 0 {
		return nil, ErrZeroAmount
	}
	pr, err := e.project(ctx, index, storage.Raising)
	if err != nil {
		return nil, err
	}
	if height < pr.StartBlock {
		return nil, fmt.Errorf("%w: starts at %d", ErrNotStarted, pr.StartBlock)
	}
	if height > pr.Deadline() {
		if _, err := e.settle(ctx, height, pr); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: deadline %d", ErrExpired, pr.Deadline())
	}
	if inviter == actor {
		return nil, ErrSelfInvite
	}
	if err := e.checkArea(ctx, pr, actor); err != nil {
		return nil, err
	}

	pt, exists, err := storage.GetParticipant(ctx, e.mu, index, actor)
	if err != nil {
		return nil, err
	}
	if !exists {
		pt = &storage.Participant{}
		if inviter != codec.EmptyAddress {
			pt.Inviter, pt.HasInviter = inviter, true
		}
	}
	if uint64(len(pt.Tags)) >= e.rules.GetICOMaxContributions() {
		return nil, ErrTooManyContributions
	}

	contributed, err := smath.Add(pt.Contributed, amount)
	if err != nil {
		return nil, ErrAboveMaximum
	}
	if contributed < pr.MinPerUser {
		return nil, fmt.Errorf("%w: %d < %d", ErrBelowMinimum, contributed, pr.MinPerUser)
	}
	if contributed > pr.MaxPerUser {
		return nil, fmt.Errorf("%w: %d > %d", ErrAboveMaximum, contributed, pr.MaxPerUser)
	}
	raised, err := smath.Add(pr.TotalRaised, amount)
	if err != nil || raised > pr.ExchangeTarget {
		return nil, fmt.Errorf("%w: %d + %d > %d", ErrExceedsTarget, pr.TotalRaised, amount, pr.ExchangeTarget)
	}

	usdt, err := e.toUSDT(ctx, pr.ExchangeAsset, amount)
	if err != nil {
		return nil, err
	}
	if usdt < e.rules.GetICOUserMinUSDT() {
		return nil, fmt.Errorf("%w: %d usdt", ErrBelowMinimum, usdt)
	}
	userVolume, err := storage.GetUserVolume(ctx, e.mu, actor)
	if err != nil {
		return nil, err
	}
	userVolume, err = smath.Add(userVolume, usdt)
	if err != nil {
		return nil, ErrAboveMaximum
	}
	if limit := e.rules.GetICOUserMaxUSDT(); limit > 0 && userVolume > limit {
		return nil, fmt.Errorf("%w: %d usdt > %d", ErrAboveMaximum, userVolume, limit)
	}
	targetAmount, err := pricing.MulDiv(amount, pr.AmountOffered, pr.ExchangeTarget)
	if err != nil {
		return nil, err
	}

	// Escrow both sides. Tokens stay frozen until the raise settles.
	if err := e.ledger.Transfer(ctx, pr.ExchangeAsset, actor, storage.EscrowAccount(index), amount); err != nil {
		return nil, err
	}
	if err := e.ledger.RepatriateReserved(ctx, pr.Asset, pr.Initiator, actor, targetAmount, ledger.Free); err != nil {
		return nil, err
	}
	if pt.USDT, err = smath.Add(pt.USDT, usdt); err != nil {
		return nil, err
	}
	if pt.Entitlement, err = smath.Add(pt.Entitlement, targetAmount); err != nil {
		return nil, err
	}
	pt.Contributed = contributed
	if err := e.ledger.SetLock(ctx, LockID(index), pr.Asset, actor, pt.Entitlement); err != nil {
		return nil, err
	}
	pt.Tags = append(pt.Tags, storage.Tag{
		ExchangeAmount: amount,
		RunningTotal:   raised,
		USDTAmount:     usdt,
		TargetAmount:   targetAmount,
	})
	if err := storage.SetParticipant(ctx, e.mu, index, actor, pt); err != nil {
		return nil, err
	}
	if err := storage.SetUserVolume(ctx, e.mu, actor, userVolume); err != nil {
		return nil, err
	}
	if !exists {
		members, err := storage.GetMembers(ctx, e.mu, index)
		if err != nil {
			return nil, err
		}
		if err := storage.SetMembers(ctx, e.mu, index, append(members, actor)); err != nil {
			return nil, err
		}
		pr.Members++
	}

	pr.TotalRaised = raised
	if pr.TotalUSDT, err = smath.Add(pr.TotalUSDT, usdt); err != nil {
		return nil, err
	}
	if pr.TokensSold, err = smath.Add(pr.TokensSold, targetAmount); err != nil {
		return nil, err
	}
	joined := &Joined{
		Index:        index,
		Amount:       amount,
		USDT:         usdt,
		TargetAmount: targetAmount,
	}
	if pr.TotalRaised == pr.ExchangeTarget {
		joined.Settled, err = e.settleSuccess(ctx, height, pr)
		return joined, err
	}
	return joined, storage.SetProject(ctx, e.mu, pr)
}
