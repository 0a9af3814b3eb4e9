// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package actions_test

import (
	"context"
	"testing"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/fundvm/chain"
	"github.com/ava-labs/fundvm/chain/chaintest"
	"github.com/ava-labs/fundvm/codec"
	"github.com/ava-labs/fundvm/consts"
	"github.com/ava-labs/fundvm/genesis"
	"github.com/ava-labs/fundvm/ledger"
	"github.com/ava-labs/fundvm/state"
	"github.com/ava-labs/fundvm/storage"
)

var (
	authority = codec.CreateAddress(consts.AccountID, ids.GenerateTestID())
	treasury  = codec.CreateAddress(consts.AccountID, ids.GenerateTestID())
	initiator = codec.CreateAddress(consts.AccountID, ids.GenerateTestID())
	alice     = codec.CreateAddress(consts.AccountID, ids.GenerateTestID())
	bob       = codec.CreateAddress(consts.AccountID, ids.GenerateTestID())

	native = storage.AssetAddress(authority, "FUND")
	usdt   = storage.AssetAddress(authority, "USDT")
	assetA = storage.AssetAddress(authority, "AAA")
	assetB = storage.AssetAddress(authority, "BBB")
	token  = storage.AssetAddress(initiator, "PRJ")
)

func testGenesis() *genesis.Genesis {
	g := genesis.NewDefaultGenesis(authority, treasury)
	g.Assets[0].Allocations = []*genesis.CustomAllocation{{Address: initiator, Balance: 10_000}}
	g.Assets[1].Allocations = []*genesis.CustomAllocation{
		{Address: initiator, Balance: 100_000},
		{Address: alice, Balance: 100_000},
		{Address: bob, Balance: 100_000},
	}
	g.Assets = append(g.Assets,
		&genesis.Asset{
			Owner:       authority,
			Name:        "Asset A",
			Symbol:      "AAA",
			Decimals:    9,
			Allocations: []*genesis.CustomAllocation{{Address: alice, Balance: 1_000_000}},
		},
		&genesis.Asset{
			Owner:       authority,
			Name:        "Asset B",
			Symbol:      "BBB",
			Decimals:    9,
			Allocations: []*genesis.CustomAllocation{{Address: alice, Balance: 1_000_000}},
		},
	)
	g.Rules.LBPMinDuration = 10
	g.Rules.ICOPledgeBond = 1_000
	g.Rules.ICOChillDuration = 5
	g.Rules.ICOMaxDuration = 1_000
	g.Rules.ICOUserMinUSDT = 1
	g.Rules.ICOPendingExpiry = 20
	return g
}

func testRules(t *testing.T, g *genesis.Genesis) chain.Rules {
	r, err := g.GetRules()
	require.NoError(t, err)
	return r
}

// newState returns a store initialized from [testGenesis].
func newState(t *testing.T) (*chaintest.InMemoryStore, chain.Rules) {
	g := testGenesis()
	st := chaintest.NewInMemoryStore()
	require.NoError(t, g.InitializeState(context.Background(), st))
	return st, testRules(t, g)
}

func free(t *testing.T, im state.Mutable, asset codec.Address, who codec.Address) uint64 {
	v, err := ledger.New(im).FreeBalance(context.Background(), asset, who)
	require.NoError(t, err)
	return v
}
