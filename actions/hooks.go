// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package actions

import (
	"context"

	"github.com/ava-labs/fundvm/chain"
	"github.com/ava-labs/fundvm/codec"
	"github.com/ava-labs/fundvm/consts"
	"github.com/ava-labs/fundvm/ico"
	"github.com/ava-labs/fundvm/lbp"
	"github.com/ava-labs/fundvm/state"
)

var (
	_ chain.Hook = (*LBPAdvance)(nil)
	_ chain.Hook = (*ICOSweep)(nil)
)

// Hooks returns the end-of-block hooks in the order they must run.
func Hooks() []chain.Hook {
	return []chain.Hook{&LBPAdvance{}, &ICOSweep{}}
}

// LBPAdvance moves every live LBP by at most one weight step per block.
type LBPAdvance struct{}

func (*LBPAdvance) Name() string {
	return "lbp_advance"
}

func (*LBPAdvance) Run(ctx context.Context, r chain.Rules, mu state.Mutable, height uint64) ([]codec.Typed, error) {
	advanced, err := newLBP(mu, r).Advance(ctx, height)
	if err != nil {
		return nil, err
	}
	outputs := make([]codec.Typed, 0, len(advanced.Started)+len(advanced.Stepped)+len(advanced.Finished)+len(advanced.Failed))
	for i := range advanced.Started {
		outputs = append(outputs, (*PoolStartedResult)(&advanced.Started[i]))
	}
	for i := range advanced.Stepped {
		outputs = append(outputs, (*StepAdvancedResult)(&advanced.Stepped[i]))
	}
	for i := range advanced.Finished {
		outputs = append(outputs, (*PoolFinishedResult)(&advanced.Finished[i]))
	}
	for i := range advanced.Failed {
		outputs = append(outputs, (*AdvanceFailedResult)(&advanced.Failed[i]))
	}
	return outputs, nil
}

type PoolStartedResult lbp.PoolStarted

func (*PoolStartedResult) GetTypeID() uint8 {
	return consts.PoolStartedID
}

type StepAdvancedResult lbp.StepAdvanced

func (*StepAdvancedResult) GetTypeID() uint8 {
	return consts.StepAdvancedID
}

type PoolFinishedResult lbp.PoolFinished

func (*PoolFinishedResult) GetTypeID() uint8 {
	return consts.PoolFinishedID
}

// AdvanceFailedResult reports a pool left untouched because its advance
// failed. The other pools still advance.
type AdvanceFailedResult lbp.AdvanceFailed

func (*AdvanceFailedResult) GetTypeID() uint8 {
	return consts.LBPAdvanceFailedID
}

// ICOSweep settles every raise whose deadline has been reached and expires
// asks left pending too long.
type ICOSweep struct{}

func (*ICOSweep) Name() string {
	return "ico_sweep"
}

func (*ICOSweep) Run(ctx context.Context, r chain.Rules, mu state.Mutable, height uint64) ([]codec.Typed, error) {
	swept, err := newICO(mu, r).Sweep(ctx, height)
	if err != nil {
		return nil, err
	}
	outputs := make([]codec.Typed, 0, len(swept.Expired)+len(swept.Settled)+len(swept.Failed))
	for _, expired := range swept.Expired {
		outputs = append(outputs, (*AskExpiredResult)(expired))
	}
	for _, s := range swept.Settled {
		outputs = append(outputs, &SettledResult{TypeID: consts.ICOSettledID, Settled: s})
	}
	for _, failed := range swept.Failed {
		outputs = append(outputs, (*SettleFailedResult)(failed))
	}
	return outputs, nil
}

type AskExpiredResult ico.ProjectExpired

func (*AskExpiredResult) GetTypeID() uint8 {
	return consts.ICOAskExpiredID
}

type SettleFailedResult ico.SettleFailed

func (*SettleFailedResult) GetTypeID() uint8 {
	return consts.ICOSettleFailedID
}
