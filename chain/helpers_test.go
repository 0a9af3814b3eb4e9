// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain_test

import (
	"context"
	"errors"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/fundvm/chain"
	"github.com/ava-labs/fundvm/codec"
	"github.com/ava-labs/fundvm/keys"
	"github.com/ava-labs/fundvm/state"
)

var (
	_ chain.Action = (*writeAction)(nil)
	_ chain.Hook   = (*testHook)(nil)

	errTest = errors.New("test error")
)

func testKey(k string) []byte {
	return keys.EncodeChunks([]byte(k), 1)
}

// writeAction inserts Value at Key and then optionally fails.
type writeAction struct {
	Key     string `json:"key"`
	Value   string `json:"value"`
	Fail    bool   `json:"fail"`
	Persist bool   `json:"persist"`
}

type writeOutput struct {
	Key string `json:"key"`
}

func (*writeOutput) GetTypeID() uint8 {
	return 0
}

func (*writeAction) GetTypeID() uint8 {
	return 0
}

func (a *writeAction) Execute(
	ctx context.Context,
	_ chain.Rules,
	mu state.Mutable,
	_ uint64,
	_ codec.Address,
	_ ids.ID,
) (codec.Typed, error) {
	if err := mu.Insert(ctx, testKey(a.Key), []byte(a.Value)); err != nil {
		return nil, err
	}
	switch {
	case a.Fail && a.Persist:
		return nil, chain.Persist(errTest)
	case a.Fail:
		return nil, errTest
	default:
		return &writeOutput{Key: a.Key}, nil
	}
}

type testHook struct {
	name string
	run  func(context.Context, state.Mutable, uint64) ([]codec.Typed, error)
}

func (h *testHook) Name() string {
	return h.name
}

func (h *testHook) Run(ctx context.Context, _ chain.Rules, mu state.Mutable, height uint64) ([]codec.Typed, error) {
	return h.run(ctx, mu, height)
}

func newRegistry() *chain.Registry {
	r := chain.NewRegistry()
	if err := r.Register(func() chain.Action { return &writeAction{} }); err != nil {
		panic(err)
	}
	return r
}
