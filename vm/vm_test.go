// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/fundvm/actions"
	"github.com/ava-labs/fundvm/chain"
	"github.com/ava-labs/fundvm/codec"
	"github.com/ava-labs/fundvm/config"
	"github.com/ava-labs/fundvm/consts"
	"github.com/ava-labs/fundvm/event"
	"github.com/ava-labs/fundvm/genesis"
	"github.com/ava-labs/fundvm/storage"
)

var (
	authority = codec.CreateAddress(consts.AccountID, ids.GenerateTestID())
	treasury  = codec.CreateAddress(consts.AccountID, ids.GenerateTestID())
	alice     = codec.CreateAddress(consts.AccountID, ids.GenerateTestID())
	bob       = codec.CreateAddress(consts.AccountID, ids.GenerateTestID())

	usdt = storage.AssetAddress(authority, "USDT")
)

func testGenesis() *genesis.Genesis {
	g := genesis.NewDefaultGenesis(authority, treasury)
	g.Assets[1].Allocations = []*genesis.CustomAllocation{{Address: alice, Balance: 1_000}}
	return g
}

func newTestVM(t *testing.T, cfg *config.Config, g *genesis.Genesis, opts ...Option) *VM {
	vm, err := New(context.Background(), cfg, g, append([]Option{WithLogger(logging.NoLog{})}, opts...)...)
	require.NoError(t, err)
	return vm
}

func transferBlock(t *testing.T, vm *VM, height uint64, amount uint64) *chain.Block {
	require := require.New(t)

	tx, err := chain.NewTransaction(alice, &actions.Transfer{Asset: usdt, To: bob, Amount: amount})
	require.NoError(err)
	b, err := json.Marshal(&chain.Block{Height: height, Txs: []*chain.Transaction{tx}})
	require.NoError(err)
	blk, err := vm.ParseBlock(b)
	require.NoError(err)
	return blk
}

func TestAcceptBlock(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	var accepted []*chain.ExecutedBlock
	vm := newTestVM(t, config.NewDefaultConfig(), testGenesis(), WithBlockSubscriptions(
		event.SubscriptionFunc[*chain.ExecutedBlock]{
			AcceptF: func(_ context.Context, blk *chain.ExecutedBlock) error {
				accepted = append(accepted, blk)
				return nil
			},
		},
	))
	height, err := vm.Height(ctx)
	require.NoError(err)
	require.Zero(height)

	executed, err := vm.Accept(ctx, transferBlock(t, vm, 1, 400))
	require.NoError(err)
	require.Equal(1, executed.Succeeded())
	require.Equal([]*chain.ExecutedBlock{executed}, accepted)

	balance, err := vm.Balance(ctx, usdt, bob)
	require.NoError(err)
	require.Equal(uint64(400), balance.Free)
	balance, err = vm.Balance(ctx, usdt, alice)
	require.NoError(err)
	require.Equal(uint64(600), balance.Free)

	height, err = vm.Height(ctx)
	require.NoError(err)
	require.Equal(uint64(1), height)

	// Replaying a height is rejected without touching state.
	_, err = vm.Accept(ctx, transferBlock(t, vm, 1, 400))
	require.ErrorIs(err, chain.ErrInvalidHeight)
	require.Equal(1.0, testutil.ToFloat64(vm.metrics.blocksRejected))
	require.Equal(1.0, testutil.ToFloat64(vm.metrics.blocksAccepted))
	require.Len(accepted, 1)

	// A failed transaction still advances the height.
	executed, err = vm.Accept(ctx, transferBlock(t, vm, 2, 10_000))
	require.NoError(err)
	require.Zero(executed.Succeeded())
	require.False(executed.Results[0].Success)
	balance, err = vm.Balance(ctx, usdt, alice)
	require.NoError(err)
	require.Equal(uint64(600), balance.Free)

	require.NoError(vm.Shutdown())
	_, err = vm.Accept(ctx, transferBlock(t, vm, 3, 1))
	require.ErrorIs(err, ErrClosed)
}

func TestSubscriberFailure(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	errSub := errors.New("subscriber")
	vm := newTestVM(t, config.NewDefaultConfig(), testGenesis())
	vm.Subscribe(event.SubscriptionFunc[*chain.ExecutedBlock]{
		AcceptF: func(context.Context, *chain.ExecutedBlock) error {
			return errSub
		},
	})

	executed, err := vm.Accept(ctx, transferBlock(t, vm, 1, 1))
	require.ErrorIs(err, ErrSubscriberFailure)
	require.ErrorIs(err, errSub)
	require.NotNil(executed)

	// The block was committed regardless.
	height, err := vm.Height(ctx)
	require.NoError(err)
	require.Equal(uint64(1), height)
	require.NoError(vm.Shutdown())
}

func TestRestart(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	cfg := config.NewDefaultConfig()
	cfg.DataDir = t.TempDir()

	vm := newTestVM(t, cfg, testGenesis())
	_, err := vm.Accept(ctx, transferBlock(t, vm, 1, 250))
	require.NoError(err)
	require.NoError(vm.Shutdown())

	// Genesis is not applied twice.
	vm = newTestVM(t, cfg, testGenesis())
	height, err := vm.Height(ctx)
	require.NoError(err)
	require.Equal(uint64(1), height)
	balance, err := vm.Balance(ctx, usdt, bob)
	require.NoError(err)
	require.Equal(uint64(250), balance.Free)
	supply, exists, err := vm.Asset(ctx, usdt)
	require.NoError(err)
	require.True(exists)
	require.Equal(uint64(1_000), supply.Supply)

	_, err = vm.Accept(ctx, transferBlock(t, vm, 2, 250))
	require.NoError(err)
	require.NoError(vm.Shutdown())

	// A database initialized from another document is refused.
	_, err = New(ctx, cfg, genesis.NewDefaultGenesis(bob, treasury), WithLogger(logging.NoLog{}))
	require.ErrorIs(err, ErrGenesisMismatch)
}

func TestReadState(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	vm := newTestVM(t, config.NewDefaultConfig(), testGenesis())
	native := vm.Rules().GetNativeAsset()

	_, _, err := vm.AMMPool(ctx, usdt, native)
	require.ErrorIs(err, ErrPoolNotFound)
	_, _, err = vm.AMMPool(ctx, usdt, usdt)
	require.ErrorIs(err, storage.ErrIdenticalAssets)
	_, err = vm.LBPPool(ctx, usdt, native)
	require.ErrorIs(err, ErrPoolNotFound)
	_, err = vm.Project(ctx, 0)
	require.ErrorIs(err, ErrProjectNotFound)
	require.NoError(vm.Shutdown())
}
