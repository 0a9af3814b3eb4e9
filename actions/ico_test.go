// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package actions_test

import (
	"context"
	"testing"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/fundvm/actions"
	"github.com/ava-labs/fundvm/chain"
	"github.com/ava-labs/fundvm/codec"
	"github.com/ava-labs/fundvm/consts"
	"github.com/ava-labs/fundvm/ico"
	"github.com/ava-labs/fundvm/state"
	"github.com/ava-labs/fundvm/storage"
	"github.com/ava-labs/fundvm/tstate"
)

const (
	raiseDuration = 10
	// Permitted at block 1, the raise accepts contributions from block 6
	// through block 16.
	raiseDeadline = 16
)

type testChain struct {
	db   database.Database
	proc *chain.Processor
	next uint64
}

func newTestChain(t *testing.T, hooks ...chain.Hook) *testChain {
	require := require.New(t)
	ctx := context.Background()

	g := testGenesis()
	db := memdb.New()
	ts := tstate.New(state.NewReadOnlyDatabase(db), 0)
	view := ts.NewView()
	require.NoError(g.InitializeState(ctx, view))
	view.Commit()
	batch := db.NewBatch()
	_, err := ts.Export(batch)
	require.NoError(err)
	require.NoError(batch.Write())

	proc, err := chain.NewProcessor(logging.NoLog{}, testRules(t, g), prometheus.NewRegistry(), hooks...)
	require.NoError(err)
	return &testChain{db: db, proc: proc, next: 1}
}

func (c *testChain) apply(t *testing.T, txs ...*chain.Transaction) *chain.ExecutedBlock {
	require := require.New(t)

	executed, ts, err := c.proc.Execute(context.Background(), c.State(), &chain.Block{Height: c.next, Txs: txs})
	require.NoError(err)
	batch := c.db.NewBatch()
	_, err = ts.Export(batch)
	require.NoError(err)
	require.NoError(batch.Write())
	c.next++
	return executed
}

// applyUntil applies empty blocks up to and including [height].
func (c *testChain) applyUntil(t *testing.T, height uint64) {
	for c.next <= height {
		c.apply(t)
	}
}

func (c *testChain) State() state.Immutable {
	return state.NewReadOnlyDatabase(c.db)
}

func (c *testChain) free(t *testing.T, asset codec.Address, who codec.Address) uint64 {
	v, err := storage.GetBalance(context.Background(), c.State(), who, asset)
	require.NoError(t, err)
	return v.Free
}

func newTx(t *testing.T, actor codec.Address, action chain.Action) *chain.Transaction {
	tx, err := chain.NewTransaction(actor, action)
	require.NoError(t, err)
	return tx
}

func requireSucceeded(t *testing.T, executed *chain.ExecutedBlock) {
	for i, r := range executed.Results {
		require.True(t, r.Success, "tx %d: %s", i, r.Error)
	}
}

// openRaise creates the project asset, asks for a raise and permits it in
// block 1.
func (c *testChain) openRaise(t *testing.T) {
	executed := c.apply(t,
		newTx(t, initiator, &actions.CreateAsset{Name: "Project", Symbol: "PRJ", Decimals: 9, Supply: 1_000_000}),
		newTx(t, initiator, &actions.InitiateICO{InitiateParams: ico.InitiateParams{
			Asset:                    token,
			ProjectName:              "Project",
			TokenSymbol:              "PRJ",
			Description:              "a project",
			ExchangeAsset:            usdt,
			TotalIssuance:            1_000_000,
			TotalCirculation:         500_000,
			AmountOffered:            100_000,
			ExchangeTarget:           10_000,
			MinPerUser:               100,
			MaxPerUser:               6_000,
			Duration:                 raiseDuration,
			LockPercent:              50,
			UnlockDuration:           10,
			UnlockPercentPerDuration: 25,
			ExcludedAreas:            []string{"us"},
		}}),
		newTx(t, authority, &actions.PermitICO{Index: 0}),
		newTx(t, authority, &actions.SetUserArea{Account: alice, Area: "de"}),
		newTx(t, authority, &actions.SetUserArea{Account: bob, Area: "fr"}),
	)
	requireSucceeded(t, executed)
}

func TestICOExpiryScenario(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	// Without the sweep nothing settles the raise before the late join.
	c := newTestChain(t)
	c.openRaise(t)
	c.applyUntil(t, 5)
	requireSucceeded(t, c.apply(t, newTx(t, alice, &actions.JoinICO{Index: 0, Amount: 500})))
	require.Equal(uint64(100_000-500), c.free(t, usdt, alice))
	c.applyUntil(t, raiseDeadline)

	executed := c.apply(t, newTx(t, bob, &actions.JoinICO{Index: 0, Amount: 500}))
	require.Len(executed.Results, 1)
	result := executed.Results[0]
	require.False(result.Success)
	require.True(result.Persisted)
	require.Contains(result.Error, ico.ErrExpired.Error())

	// The failure settlement stuck although the join failed.
	pr, exists, err := storage.GetProject(ctx, c.State(), 0)
	require.NoError(err)
	require.True(exists)
	require.Equal(storage.Failed, pr.Status)
	active, err := storage.GetActiveProjects(ctx, c.State())
	require.NoError(err)
	require.Empty(active)
	members, err := storage.GetMembers(ctx, c.State(), 0)
	require.NoError(err)
	require.Empty(members)
	_, exists, err = storage.GetParticipant(ctx, c.State(), 0, alice)
	require.NoError(err)
	require.False(exists)

	require.Equal(uint64(100_000), c.free(t, usdt, alice))
	require.Equal(uint64(100_000), c.free(t, usdt, bob))
	require.Equal(uint64(100_000), c.free(t, usdt, initiator))
	require.Equal(uint64(10_000), c.free(t, native, initiator))
	require.Equal(uint64(1_000_000), c.free(t, token, initiator))
	require.Zero(c.free(t, token, alice))
}

func TestICOSweepHook(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	c := newTestChain(t, actions.Hooks()...)
	c.openRaise(t)
	c.applyUntil(t, 5)
	requireSucceeded(t, c.apply(t, newTx(t, alice, &actions.JoinICO{Index: 0, Amount: 2_000})))
	c.applyUntil(t, raiseDeadline-1)

	executed := c.apply(t)
	require.Equal(uint64(raiseDeadline), executed.Height)
	require.Len(executed.HookResults, 2)
	sweep := executed.HookResults[1]
	require.Equal("ico_sweep", sweep.Hook)
	require.Empty(sweep.Error)
	require.Len(sweep.Outputs, 1)
	settled, ok := sweep.Outputs[0].(*actions.SettledResult)
	require.True(ok)
	require.Equal(consts.ICOSettledID, settled.GetTypeID())
	require.Equal(storage.SuccessfullySettled, settled.Status)
	require.Equal(uint64(2_000), settled.TotalRaised)

	// A settled raise no longer accepts contributions.
	executed = c.apply(t, newTx(t, bob, &actions.JoinICO{Index: 0, Amount: 500}))
	require.False(executed.Results[0].Success)
	require.False(executed.Results[0].Persisted)
	require.Equal(uint64(100_000), c.free(t, usdt, bob))

	pr, exists, err := storage.GetProject(ctx, c.State(), 0)
	require.NoError(err)
	require.True(exists)
	require.Equal(storage.SuccessfullySettled, pr.Status)
	require.Equal(uint64(2_000), c.free(t, usdt, storage.EscrowAccount(0)))
}

func TestJoinExcludedArea(t *testing.T) {
	require := require.New(t)

	c := newTestChain(t)
	c.openRaise(t)
	c.applyUntil(t, 5)
	executed := c.apply(t,
		newTx(t, authority, &actions.SetUserArea{Account: bob, Area: "us"}),
		newTx(t, bob, &actions.JoinICO{Index: 0, Amount: 500}),
	)
	require.True(executed.Results[0].Success)
	require.False(executed.Results[1].Success)
	require.Contains(executed.Results[1].Error, ico.ErrExcludedArea.Error())
	require.Equal(uint64(100_000), c.free(t, usdt, bob))
}

func TestICOAskExpiryHook(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	c := newTestChain(t, actions.Hooks()...)
	requireSucceeded(t, c.apply(t,
		newTx(t, initiator, &actions.CreateAsset{Name: "Project", Symbol: "PRJ", Decimals: 9, Supply: 1_000_000}),
		newTx(t, initiator, &actions.InitiateICO{InitiateParams: ico.InitiateParams{
			Asset:            token,
			ProjectName:      "Project",
			TokenSymbol:      "PRJ",
			Description:      "a project",
			ExchangeAsset:    usdt,
			TotalIssuance:    1_000_000,
			TotalCirculation: 500_000,
			AmountOffered:    100_000,
			ExchangeTarget:   10_000,
			MinPerUser:       100,
			MaxPerUser:       6_000,
			Duration:         raiseDuration,
		}}),
	))
	c.applyUntil(t, 20)
	pr, _, err := storage.GetProject(ctx, c.State(), 0)
	require.NoError(err)
	require.Equal(storage.PendingApproval, pr.Status)

	executed := c.apply(t)
	require.Equal(uint64(21), executed.Height)
	sweep := executed.HookResults[1]
	require.Empty(sweep.Error)
	require.Len(sweep.Outputs, 1)
	expired, ok := sweep.Outputs[0].(*actions.AskExpiredResult)
	require.True(ok)
	require.Equal(consts.ICOAskExpiredID, expired.GetTypeID())
	require.Equal(uint64(1_000), expired.Slashed)

	pr, _, err = storage.GetProject(ctx, c.State(), 0)
	require.NoError(err)
	require.Equal(storage.Expired, pr.Status)
	require.Equal(uint64(10_000-1_000), c.free(t, native, initiator))
	require.Equal(uint64(1_000_000), c.free(t, token, initiator))

	// An expired ask can no longer be permitted.
	executed = c.apply(t, newTx(t, authority, &actions.PermitICO{Index: 0}))
	require.False(executed.Results[0].Success)
}
