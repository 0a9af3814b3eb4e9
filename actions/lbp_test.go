// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package actions_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ava-labs/fundvm/actions"
	"github.com/ava-labs/fundvm/chain/chaintest"
	"github.com/ava-labs/fundvm/lbp"
	"github.com/ava-labs/fundvm/pricing"
	"github.com/ava-labs/fundvm/state"
	"github.com/ava-labs/fundvm/storage"
)

func lbpParams() lbp.CreateParams {
	return lbp.CreateParams{
		SupplyAsset:       assetA,
		TargetAsset:       assetB,
		SupplyBalance:     100_000,
		TargetBalance:     10_000,
		SupplyStartWeight: 36 * pricing.WeightOne,
		SupplyEndWeight:   4 * pricing.WeightOne,
		TargetStartWeight: 4 * pricing.WeightOne,
		TargetEndWeight:   36 * pricing.WeightOne,
		StartBlock:        10,
		EndBlock:          110,
		Steps:             10,
	}
}

func TestCreateLBPRejection(t *testing.T) {
	st, rules := newState(t)

	tooFewSteps := lbpParams()
	tooFewSteps.Steps = rules.GetLBPMinSteps() - 1
	inverted := lbpParams()
	inverted.StartBlock = inverted.EndBlock
	heavy := lbpParams()
	heavy.SupplyStartWeight = rules.GetLBPMaxWeight() + 1

	suite := chaintest.ActionTestSuite{
		Tests: []chaintest.ActionTest{
			{
				Name:        "steps below minimum",
				Action:      &actions.CreateLBP{CreateParams: tooFewSteps},
				Rules:       rules,
				State:       st,
				Actor:       alice,
				ExpectedErr: lbp.ErrTooFewSteps,
			},
			{
				Name:        "start not before end",
				Action:      &actions.CreateLBP{CreateParams: inverted},
				Rules:       rules,
				State:       st,
				Actor:       alice,
				ExpectedErr: lbp.ErrInvalidBlockRange,
			},
			{
				Name:        "weight above maximum",
				Action:      &actions.CreateLBP{CreateParams: heavy},
				Rules:       rules,
				State:       st,
				Actor:       alice,
				ExpectedErr: lbp.ErrInvalidWeight,
			},
			{
				Name:            "pending pool",
				Action:          &actions.CreateLBP{CreateParams: lbpParams()},
				Rules:           rules,
				State:           st,
				Height:          1,
				Actor:           alice,
				ExpectedOutputs: &actions.CreateLBPResult{ID: 0, Status: storage.LBPPending},
				Assertion: func(_ context.Context, t *testing.T, mu state.Mutable) {
					require.Equal(t, uint64(1_000_000-100_000), free(t, mu, assetA, alice))
					require.Equal(t, uint64(100_000), free(t, mu, assetA, storage.LBPPoolAccount(0)))
				},
			},
			{
				Name:        "pair already ongoing",
				Action:      &actions.CreateLBP{CreateParams: lbpParams()},
				Rules:       rules,
				State:       st,
				Height:      1,
				Actor:       alice,
				ExpectedErr: lbp.ErrPairOngoing,
			},
			{
				Name:        "only the owner exits",
				Action:      &actions.ExitLBP{ID: 0},
				Rules:       rules,
				State:       st,
				Height:      2,
				Actor:       bob,
				ExpectedErr: lbp.ErrNotOwner,
			},
			{
				Name:   "exit before start cancels",
				Action: &actions.ExitLBP{ID: 0},
				Rules:  rules,
				State:  st,
				Height: 2,
				Actor:  alice,
				ExpectedOutputs: &actions.ExitLBPResult{
					ID:            0,
					SupplyBalance: 100_000,
					TargetBalance: 10_000,
					Status:        storage.LBPCancelled,
				},
				Assertion: func(_ context.Context, t *testing.T, mu state.Mutable) {
					require.Equal(t, uint64(1_000_000), free(t, mu, assetA, alice))
					require.Equal(t, uint64(1_000_000), free(t, mu, assetB, alice))
				},
			},
			{
				Name:        "cancelled pool cannot exit again",
				Action:      &actions.ExitLBP{ID: 0},
				Rules:       rules,
				State:       st,
				Height:      3,
				Actor:       alice,
				ExpectedErr: lbp.ErrMustBeNonTradingStatus,
			},
		},
	}
	suite.Run(context.Background(), t)
}
