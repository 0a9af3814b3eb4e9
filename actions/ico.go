// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package actions

import (
	"context"
	"errors"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/fundvm/chain"
	"github.com/ava-labs/fundvm/codec"
	"github.com/ava-labs/fundvm/consts"
	"github.com/ava-labs/fundvm/ico"
	"github.com/ava-labs/fundvm/ledger"
	"github.com/ava-labs/fundvm/state"
)

var (
	_ chain.Action = (*InitiateICO)(nil)
	_ chain.Action = (*PermitICO)(nil)
	_ chain.Action = (*RejectICO)(nil)
	_ chain.Action = (*JoinICO)(nil)
	_ chain.Action = (*CloseICO)(nil)
	_ chain.Action = (*UnlockICO)(nil)
	_ chain.Action = (*GetReward)(nil)
	_ chain.Action = (*ReleaseFunds)(nil)
	_ chain.Action = (*TerminateICO)(nil)
)

func newICO(mu state.Mutable, r chain.Rules) *ico.Engine {
	return ico.New(mu, ledger.New(mu), r, ico.NewStateOracle(mu), ico.NewStateKYC(mu))
}

// InitiateICO asks the authority for permission to raise funds against an
// asset owned by the actor.
type InitiateICO struct {
	ico.InitiateParams
}

func (*InitiateICO) GetTypeID() uint8 {
	return consts.InitiateICOID
}

func (i *InitiateICO) Execute(
	ctx context.Context,
	r chain.Rules,
	mu state.Mutable,
	height uint64,
	actor codec.Address,
	_ ids.ID,
) (codec.Typed, error) {
	params := i.InitiateParams
	asked, err := newICO(mu, r).Initiate(ctx, actor, height, &params)
	if err != nil {
		return nil, err
	}
	return (*InitiateICOResult)(asked), nil
}

type InitiateICOResult ico.ProjectAsked

func (*InitiateICOResult) GetTypeID() uint8 {
	return consts.InitiateICOID
}

type PermitICO struct {
	Index uint32 `json:"index"`
}

func (*PermitICO) GetTypeID() uint8 {
	return consts.PermitICOID
}

func (p *PermitICO) Execute(
	ctx context.Context,
	r chain.Rules,
	mu state.Mutable,
	height uint64,
	actor codec.Address,
	_ ids.ID,
) (codec.Typed, error) {
	permitted, err := newICO(mu, r).Permit(ctx, actor, height, p.Index)
	if err != nil {
		return nil, err
	}
	return (*PermitICOResult)(permitted), nil
}

type PermitICOResult ico.ProjectPermitted

func (*PermitICOResult) GetTypeID() uint8 {
	return consts.PermitICOID
}

type RejectICO struct {
	Index uint32 `json:"index"`
}

func (*RejectICO) GetTypeID() uint8 {
	return consts.RejectICOID
}

func (p *RejectICO) Execute(
	ctx context.Context,
	r chain.Rules,
	mu state.Mutable,
	_ uint64,
	actor codec.Address,
	_ ids.ID,
) (codec.Typed, error) {
	rejected, err := newICO(mu, r).Reject(ctx, actor, p.Index)
	if err != nil {
		return nil, err
	}
	return (*RejectICOResult)(rejected), nil
}

type RejectICOResult ico.ProjectRejected

func (*RejectICOResult) GetTypeID() uint8 {
	return consts.RejectICOID
}

// JoinICO contributes Amount of the exchange asset to a raise. Inviter is
// optional and only recorded on the first contribution.
type JoinICO struct {
	Index   uint32        `json:"index"`
	Amount  uint64        `json:"amount"`
	Inviter codec.Address `json:"inviter"`
}

func (*JoinICO) GetTypeID() uint8 {
	return consts.JoinICOID
}

func (j *JoinICO) Execute(
	ctx context.Context,
	r chain.Rules,
	mu state.Mutable,
	height uint64,
	actor codec.Address,
	_ ids.ID,
) (codec.Typed, error) {
	joined, err := newICO(mu, r).Join(ctx, actor, height, j.Index, j.Amount, j.Inviter)
	if errors.Is(err, ico.ErrExpired) {
		// The raise was settled on the way out and that must stick.
		return nil, chain.Persist(err)
	}
	if err != nil {
		return nil, err
	}
	return (*JoinICOResult)(joined), nil
}

type JoinICOResult ico.Joined

func (*JoinICOResult) GetTypeID() uint8 {
	return consts.JoinICOID
}

// CloseICO settles a raise whose deadline has passed. Anyone may call it.
type CloseICO struct {
	Index uint32 `json:"index"`
}

func (*CloseICO) GetTypeID() uint8 {
	return consts.CloseICOID
}

func (c *CloseICO) Execute(
	ctx context.Context,
	r chain.Rules,
	mu state.Mutable,
	height uint64,
	_ codec.Address,
	_ ids.ID,
) (codec.Typed, error) {
	settled, err := newICO(mu, r).Close(ctx, height, c.Index)
	if err != nil {
		return nil, err
	}
	return &SettledResult{TypeID: consts.CloseICOID, Settled: settled}, nil
}

// SettledResult reports a settlement, either from [CloseICO] or from the
// end-of-block sweep.
type SettledResult struct {
	TypeID uint8 `json:"-"`
	*ico.Settled
}

func (s *SettledResult) GetTypeID() uint8 {
	return s.TypeID
}

type UnlockICO struct {
	Index uint32 `json:"index"`
}

func (*UnlockICO) GetTypeID() uint8 {
	return consts.UnlockICOID
}

func (u *UnlockICO) Execute(
	ctx context.Context,
	r chain.Rules,
	mu state.Mutable,
	height uint64,
	actor codec.Address,
	_ ids.ID,
) (codec.Typed, error) {
	unlocked, err := newICO(mu, r).Unlock(ctx, actor, height, u.Index)
	if err != nil {
		return nil, err
	}
	return (*UnlockICOResult)(unlocked), nil
}

type UnlockICOResult ico.Unlocked

func (*UnlockICOResult) GetTypeID() uint8 {
	return consts.UnlockICOID
}

type GetReward struct {
	Index uint32 `json:"index"`
}

func (*GetReward) GetTypeID() uint8 {
	return consts.GetRewardID
}

func (g *GetReward) Execute(
	ctx context.Context,
	r chain.Rules,
	mu state.Mutable,
	_ uint64,
	actor codec.Address,
	_ ids.ID,
) (codec.Typed, error) {
	granted, err := newICO(mu, r).GetReward(ctx, actor, g.Index)
	if err != nil {
		return nil, err
	}
	return (*GetRewardResult)(granted), nil
}

type GetRewardResult ico.RewardGranted

func (*GetRewardResult) GetTypeID() uint8 {
	return consts.GetRewardID
}

type ReleaseFunds struct {
	Index   uint32 `json:"index"`
	Percent uint8  `json:"percent"`
}

func (*ReleaseFunds) GetTypeID() uint8 {
	return consts.ReleaseFundsID
}

func (f *ReleaseFunds) Execute(
	ctx context.Context,
	r chain.Rules,
	mu state.Mutable,
	_ uint64,
	actor codec.Address,
	_ ids.ID,
) (codec.Typed, error) {
	released, err := newICO(mu, r).ReleaseFunds(ctx, actor, f.Index, f.Percent)
	if err != nil {
		return nil, err
	}
	return (*ReleaseFundsResult)(released), nil
}

type ReleaseFundsResult ico.FundsReleased

func (*ReleaseFundsResult) GetTypeID() uint8 {
	return consts.ReleaseFundsID
}

type TerminateICO struct {
	Index uint32 `json:"index"`
}

func (*TerminateICO) GetTypeID() uint8 {
	return consts.TerminateICOID
}

func (t *TerminateICO) Execute(
	ctx context.Context,
	r chain.Rules,
	mu state.Mutable,
	_ uint64,
	actor codec.Address,
	_ ids.ID,
) (codec.Typed, error) {
	terminated, err := newICO(mu, r).Terminate(ctx, actor, t.Index)
	if err != nil {
		return nil, err
	}
	return (*TerminateICOResult)(terminated), nil
}

type TerminateICOResult ico.ProjectTerminated

func (*TerminateICOResult) GetTypeID() uint8 {
	return consts.TerminateICOID
}
