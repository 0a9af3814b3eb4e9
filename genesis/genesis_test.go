// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package genesis

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/fundvm/chain/chaintest"
	"github.com/ava-labs/fundvm/codec"
	"github.com/ava-labs/fundvm/consts"
	"github.com/ava-labs/fundvm/ledger"
	"github.com/ava-labs/fundvm/storage"
)

var (
	authority = codec.CreateAddress(consts.AccountID, ids.GenerateTestID())
	treasury  = codec.CreateAddress(consts.AccountID, ids.GenerateTestID())
	alice     = codec.CreateAddress(consts.AccountID, ids.GenerateTestID())
)

func TestLoadRoundTrip(t *testing.T) {
	require := require.New(t)

	g := NewDefaultGenesis(authority, treasury)
	g.Assets[0].Allocations = []*CustomAllocation{{Address: alice, Balance: 1_000}}
	b, err := json.Marshal(g)
	require.NoError(err)

	loaded, err := Load(b)
	require.NoError(err)
	require.Equal(g, loaded)
}

func TestLoadDefaultsRules(t *testing.T) {
	require := require.New(t)

	g := NewDefaultGenesis(authority, treasury)
	g.Rules = nil
	b, err := json.Marshal(g)
	require.NoError(err)

	loaded, err := Load(b)
	require.NoError(err)
	require.Equal(NewDefaultRules(), loaded.Rules)
}

func TestVerify(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Genesis)
		err    error
	}{
		{
			name:   "default",
			modify: func(*Genesis) {},
		},
		{
			name:   "missing authority",
			modify: func(g *Genesis) { g.Authority = codec.EmptyAddress },
			err:    ErrMissingAuthority,
		},
		{
			name:   "missing treasury",
			modify: func(g *Genesis) { g.Treasury = codec.EmptyAddress },
			err:    ErrMissingTreasury,
		},
		{
			name:   "unknown native asset",
			modify: func(g *Genesis) { g.NativeSymbol = "NOPE" },
			err:    ErrUnknownAsset,
		},
		{
			name: "duplicate asset",
			modify: func(g *Genesis) {
				g.Assets = append(g.Assets, &Asset{Owner: authority, Name: "Again", Symbol: "USDT"})
			},
			err: ErrDuplicateAsset,
		},
		{
			name:   "inverted steps",
			modify: func(g *Genesis) { g.Rules.LBPMinSteps = g.Rules.LBPMaxSteps + 1 },
			err:    ErrInvalidRules,
		},
		{
			name:   "threshold above one hundred",
			modify: func(g *Genesis) { g.Rules.ICOSuccessThreshold = consts.Percent + 1 },
			err:    ErrInvalidRules,
		},
		{
			name:   "too many contributions",
			modify: func(g *Genesis) { g.Rules.ICOMaxContributions = storage.MaxContributionTags + 1 },
			err:    ErrInvalidRules,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewDefaultGenesis(authority, treasury)
			tt.modify(g)
			require.ErrorIs(t, g.Verify(), tt.err)
		})
	}
}

func TestInitializeState(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	g := NewDefaultGenesis(authority, treasury)
	g.Assets[1].Allocations = []*CustomAllocation{
		{Address: alice, Balance: 700},
		{Address: treasury, Balance: 300},
	}
	mu := chaintest.NewInMemoryStore()
	require.NoError(g.InitializeState(ctx, mu))

	usdt := storage.AssetAddress(authority, "USDT")
	l := ledger.New(mu)
	supply, err := l.TotalIssuance(ctx, usdt)
	require.NoError(err)
	require.Equal(uint64(1_000), supply)
	free, err := l.FreeBalance(ctx, usdt, alice)
	require.NoError(err)
	require.Equal(uint64(700), free)

	native, err := l.Metadata(ctx, storage.AssetAddress(authority, "FUND"))
	require.NoError(err)
	require.Zero(native.Supply)
	require.Equal(authority, native.Owner)

	height, err := storage.GetHeight(ctx, mu)
	require.NoError(err)
	require.Zero(height)

	// Assets cannot be created twice.
	require.ErrorIs(g.InitializeState(ctx, mu), ledger.ErrAssetExists)
}

func TestGetRules(t *testing.T) {
	require := require.New(t)

	g := NewDefaultGenesis(authority, treasury)
	g.NetworkID = 7
	g.ChainID = ids.GenerateTestID()
	r, err := g.GetRules()
	require.NoError(err)

	require.Equal(uint32(7), r.GetNetworkID())
	require.Equal(g.ChainID, r.GetChainID())
	require.Equal(authority, r.GetAuthority())
	require.Equal(treasury, r.GetTreasury())
	require.Equal(storage.AssetAddress(authority, "FUND"), r.GetNativeAsset())
	require.Equal(storage.AssetAddress(authority, "USDT"), r.GetUSDTAsset())
	require.Equal(uint64(1_000), r.GetMinimumLiquidity())
	require.Equal(uint64(20), r.GetICOSuccessThreshold())
}
