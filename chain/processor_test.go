// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain_test

import (
	"context"
	"strings"
	"testing"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/fundvm/chain"
	"github.com/ava-labs/fundvm/codec"
	"github.com/ava-labs/fundvm/state"
	"github.com/ava-labs/fundvm/storage"
)

func newTx(t *testing.T, action chain.Action) *chain.Transaction {
	tx, err := chain.NewTransaction(codec.EmptyAddress, action)
	require.NoError(t, err)
	return tx
}

func execute(t *testing.T, p *chain.Processor, db database.Database, blk *chain.Block) *chain.ExecutedBlock {
	require := require.New(t)
	ctx := context.Background()

	executed, ts, err := p.Execute(ctx, state.NewReadOnlyDatabase(db), blk)
	require.NoError(err)
	batch := db.NewBatch()
	_, err = ts.Export(batch)
	require.NoError(err)
	require.NoError(batch.Write())
	return executed
}

func TestProcessorRollsBackFailedTransactions(t *testing.T) {
	require := require.New(t)

	db := memdb.New()
	registry := prometheus.NewRegistry()
	p, err := chain.NewProcessor(logging.NoLog{}, nil, registry)
	require.NoError(err)

	executed := execute(t, p, db, &chain.Block{
		Height: 1,
		Txs: []*chain.Transaction{
			newTx(t, &writeAction{Key: "a", Value: "1"}),
			newTx(t, &writeAction{Key: "b", Value: "2", Fail: true}),
			newTx(t, &writeAction{Key: "c", Value: "3", Fail: true, Persist: true}),
			newTx(t, &writeAction{Key: "a", Value: "4", Fail: true}),
		},
	})
	require.Len(executed.Results, 4)
	require.True(executed.Results[0].Success)
	require.Equal(&writeOutput{Key: "a"}, executed.Results[0].Output)
	require.False(executed.Results[1].Success)
	require.False(executed.Results[1].Persisted)
	require.Equal(errTest.Error(), executed.Results[1].Error)
	require.False(executed.Results[2].Success)
	require.True(executed.Results[2].Persisted)
	require.False(executed.Results[3].Success)
	require.Equal(1, executed.Succeeded())

	v, err := db.Get(testKey("a"))
	require.NoError(err)
	require.Equal([]byte("1"), v)
	_, err = db.Get(testKey("b"))
	require.ErrorIs(err, database.ErrNotFound)
	v, err = db.Get(testKey("c"))
	require.NoError(err)
	require.Equal([]byte("3"), v)

	height, err := storage.GetHeight(context.Background(), state.NewReadOnlyDatabase(db))
	require.NoError(err)
	require.Equal(uint64(1), height)

	expected := `
# HELP chain_txs_failed number of txs that failed execution
# TYPE chain_txs_failed counter
chain_txs_failed 3
# HELP chain_txs_persisted number of failed txs whose writes were kept
# TYPE chain_txs_persisted counter
chain_txs_persisted 1
# HELP chain_txs_succeeded number of txs executed successfully
# TYPE chain_txs_succeeded counter
chain_txs_succeeded 1
`
	require.NoError(testutil.GatherAndCompare(
		registry,
		strings.NewReader(expected),
		"chain_txs_failed", "chain_txs_persisted", "chain_txs_succeeded",
	))
}

func TestProcessorRunsHooksAfterTransactions(t *testing.T) {
	require := require.New(t)

	var observed []byte
	reader := &testHook{
		name: "reader",
		run: func(ctx context.Context, mu state.Mutable, _ uint64) ([]codec.Typed, error) {
			v, err := mu.GetValue(ctx, testKey("last"))
			if err != nil {
				return nil, err
			}
			observed = v
			return []codec.Typed{&writeOutput{Key: "last"}}, nil
		},
	}
	failing := &testHook{
		name: "failing",
		run: func(ctx context.Context, mu state.Mutable, _ uint64) ([]codec.Typed, error) {
			if err := mu.Insert(ctx, testKey("hook"), []byte("x")); err != nil {
				return nil, err
			}
			return nil, errTest
		},
	}

	db := memdb.New()
	registry := prometheus.NewRegistry()
	p, err := chain.NewProcessor(logging.NoLog{}, nil, registry, reader, failing)
	require.NoError(err)

	executed := execute(t, p, db, &chain.Block{
		Height: 1,
		Txs: []*chain.Transaction{
			newTx(t, &writeAction{Key: "last", Value: "first"}),
			newTx(t, &writeAction{Key: "last", Value: "second"}),
		},
	})
	require.Equal([]byte("second"), observed)
	require.Len(executed.HookResults, 2)
	require.Equal("reader", executed.HookResults[0].Hook)
	require.Empty(executed.HookResults[0].Error)
	require.Len(executed.HookResults[0].Outputs, 1)
	require.Equal("failing", executed.HookResults[1].Hook)
	require.Equal(errTest.Error(), executed.HookResults[1].Error)

	_, err = db.Get(testKey("hook"))
	require.ErrorIs(err, database.ErrNotFound)
	expected := `
# HELP chain_hook_failures number of end-of-block hooks that failed
# TYPE chain_hook_failures counter
chain_hook_failures 1
`
	require.NoError(testutil.GatherAndCompare(registry, strings.NewReader(expected), "chain_hook_failures"))
}

func TestProcessorHeight(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	db := memdb.New()
	p, err := chain.NewProcessor(logging.NoLog{}, nil, prometheus.NewRegistry())
	require.NoError(err)

	_, _, err = p.Execute(ctx, state.NewReadOnlyDatabase(db), &chain.Block{Height: 2})
	require.ErrorIs(err, chain.ErrInvalidHeight)

	for height := uint64(1); height <= 3; height++ {
		executed := execute(t, p, db, &chain.Block{Height: height})
		require.Equal(height, executed.Height)
		require.Empty(executed.Results)
	}
	_, _, err = p.Execute(ctx, state.NewReadOnlyDatabase(db), &chain.Block{Height: 3})
	require.ErrorIs(err, chain.ErrInvalidHeight)
}
