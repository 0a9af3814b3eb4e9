// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain_test

import (
	"encoding/json"
	"testing"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/fundvm/chain"
	"github.com/ava-labs/fundvm/codec"
	"github.com/ava-labs/fundvm/consts"
)

func TestRegistryDuplicate(t *testing.T) {
	require := require.New(t)

	r := newRegistry()
	require.Equal(1, r.Len())
	err := r.Register(func() chain.Action { return &writeAction{} })
	require.ErrorIs(err, chain.ErrDuplicateItem)
}

func TestTransactionJSON(t *testing.T) {
	require := require.New(t)

	actor := codec.CreateAddress(consts.AccountID, ids.GenerateTestID())
	tx, err := chain.NewTransaction(actor, &writeAction{Key: "a", Value: "b"})
	require.NoError(err)

	b, err := json.Marshal(tx)
	require.NoError(err)
	require.Equal(tx.Bytes(), b)

	parsed, err := chain.UnmarshalTransaction(b, newRegistry())
	require.NoError(err)
	require.Equal(tx.ID(), parsed.ID())
	require.Equal(actor, parsed.Actor)
	require.Equal(&writeAction{Key: "a", Value: "b"}, parsed.Action)

	// IDs commit to the canonical encoding.
	parsed, err = chain.UnmarshalTransaction([]byte(`{"type":0, "actor":"`+actor.String()+`","action":{"value":"b","key":"a"}}`), newRegistry())
	require.NoError(err)
	require.Equal(tx.ID(), parsed.ID())

	other, err := chain.NewTransaction(actor, &writeAction{Key: "a", Value: "c"})
	require.NoError(err)
	require.NotEqual(tx.ID(), other.ID())
}

func TestUnmarshalTransactionErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		err  error
	}{
		{
			name: "not json",
			raw:  `{`,
			err:  chain.ErrInvalidObject,
		},
		{
			name: "unknown type",
			raw:  `{"type":7,"action":{}}`,
			err:  chain.ErrUnknownAction,
		},
		{
			name: "missing action",
			raw:  `{"type":0}`,
			err:  chain.ErrMissingAction,
		},
		{
			name: "malformed action",
			raw:  `{"type":0,"action":{"key":1}}`,
			err:  chain.ErrInvalidObject,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := chain.UnmarshalTransaction([]byte(tt.raw), newRegistry())
			require.ErrorIs(t, err, tt.err)
		})
	}
}

func TestParseBlock(t *testing.T) {
	require := require.New(t)

	raw := `{
		"height": 4,
		"txs": [
			{"type": 0, "action": {"key": "a", "value": "1"}},
			{"type": 0, "action": {"key": "b", "value": "2", "fail": true}}
		]
	}`
	blk, err := chain.ParseBlock([]byte(raw), newRegistry())
	require.NoError(err)
	require.Equal(uint64(4), blk.Height)
	require.Len(blk.Txs, 2)
	require.Equal(&writeAction{Key: "b", Value: "2", Fail: true}, blk.Txs[1].Action)

	_, err = chain.ParseBlock([]byte(`{"height":1,"txs":[{"type":9}]}`), newRegistry())
	require.ErrorIs(err, chain.ErrUnknownAction)
	_, err = chain.ParseBlock([]byte(`{"height":1,"txs":[null]}`), newRegistry())
	require.ErrorIs(err, chain.ErrMissingAction)
}

func TestPersist(t *testing.T) {
	require := require.New(t)

	require.NoError(chain.Persist(nil))
	err := chain.Persist(errTest)
	require.ErrorIs(err, errTest)
	require.True(chain.IsPersistent(err))
	require.False(chain.IsPersistent(errTest))
}
