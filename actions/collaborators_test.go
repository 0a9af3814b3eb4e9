// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package actions_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ava-labs/fundvm/actions"
	"github.com/ava-labs/fundvm/chain/chaintest"
	"github.com/ava-labs/fundvm/state"
	"github.com/ava-labs/fundvm/storage"
)

func TestAuthorityActions(t *testing.T) {
	st, rules := newState(t)

	suite := chaintest.ActionTestSuite{
		Tests: []chaintest.ActionTest{
			{
				Name:        "price from non authority",
				Action:      &actions.SetPrice{Asset: assetA, Quote: usdt, Price: 5},
				Rules:       rules,
				State:       st,
				Actor:       alice,
				ExpectedErr: actions.ErrNotAuthority,
			},
			{
				Name:        "zero price",
				Action:      &actions.SetPrice{Asset: assetA, Quote: usdt},
				Rules:       rules,
				State:       st,
				Actor:       authority,
				ExpectedErr: actions.ErrZeroPrice,
			},
			{
				Name:        "self quoted price",
				Action:      &actions.SetPrice{Asset: usdt, Quote: usdt, Price: 1},
				Rules:       rules,
				State:       st,
				Actor:       authority,
				ExpectedErr: storage.ErrIdenticalAssets,
			},
			{
				Name:            "price",
				Action:          &actions.SetPrice{Asset: assetA, Quote: usdt, Price: 5},
				Rules:           rules,
				State:           st,
				Actor:           authority,
				ExpectedOutputs: &actions.SetPriceResult{Asset: assetA, Quote: usdt, Price: 5},
				Assertion: func(ctx context.Context, t *testing.T, mu state.Mutable) {
					price, ok, err := storage.GetPrice(ctx, mu, assetA, usdt)
					require.NoError(t, err)
					require.True(t, ok)
					require.Equal(t, uint64(5), price)
				},
			},
			{
				Name:        "area from non authority",
				Action:      &actions.SetUserArea{Account: alice, Area: "de"},
				Rules:       rules,
				State:       st,
				Actor:       alice,
				ExpectedErr: actions.ErrNotAuthority,
			},
			{
				Name:            "area",
				Action:          &actions.SetUserArea{Account: alice, Area: "de"},
				Rules:           rules,
				State:           st,
				Actor:           authority,
				ExpectedOutputs: &actions.SetUserAreaResult{Account: alice, Area: "de"},
				Assertion: func(ctx context.Context, t *testing.T, mu state.Mutable) {
					area, ok, err := storage.GetUserArea(ctx, mu, alice)
					require.NoError(t, err)
					require.True(t, ok)
					require.Equal(t, "de", area)
				},
			},
		},
	}
	suite.Run(context.Background(), t)
}

func TestLedgerActions(t *testing.T) {
	st, rules := newState(t)
	coin := storage.AssetAddress(bob, "COIN")

	suite := chaintest.ActionTestSuite{
		Tests: []chaintest.ActionTest{
			{
				Name:            "create asset",
				Action:          &actions.CreateAsset{Name: "Coin", Symbol: "COIN", Decimals: 6, Supply: 500},
				Rules:           rules,
				State:           st,
				Actor:           bob,
				ExpectedOutputs: &actions.CreateAssetResult{Asset: coin, Supply: 500},
			},
			{
				Name:        "zero transfer",
				Action:      &actions.Transfer{Asset: coin, To: alice},
				Rules:       rules,
				State:       st,
				Actor:       bob,
				ExpectedErr: actions.ErrZeroAmount,
			},
			{
				Name:            "transfer",
				Action:          &actions.Transfer{Asset: coin, To: alice, Amount: 200},
				Rules:           rules,
				State:           st,
				Actor:           bob,
				ExpectedOutputs: &actions.TransferResult{SenderBalance: 300},
				Assertion: func(_ context.Context, t *testing.T, mu state.Mutable) {
					require.Equal(t, uint64(200), free(t, mu, coin, alice))
				},
			},
		},
	}
	suite.Run(context.Background(), t)
}

func TestRegistry(t *testing.T) {
	require := require.New(t)

	r, err := actions.NewRegistry()
	require.NoError(err)
	require.Equal(21, r.Len())
	_, ok := r.LookupIndex(255)
	require.False(ok)
}
