// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chaintest

import (
	"context"
	"testing"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/fundvm/chain"
	"github.com/ava-labs/fundvm/codec"
	"github.com/ava-labs/fundvm/state"
)

// ActionTest is a single parameterized test. It calls Execute on the action with the passed parameters
// and checks that all assertions pass.
type ActionTest struct {
	Name string

	Action chain.Action

	Rules    chain.Rules
	State    state.Mutable
	Height   uint64
	Actor    codec.Address
	ActionID ids.ID

	ExpectedOutputs codec.Typed
	ExpectedErr     error

	Assertion func(context.Context, *testing.T, state.Mutable)
}

// Run executes the [ActionTest] and make sure all assertions pass. When
// [State] is scoped, the writes of a failed action are rolled back unless
// the error is persistent, as the block processor does.
func (test *ActionTest) Run(ctx context.Context, t *testing.T) {
	t.Run(test.Name, func(t *testing.T) {
		require := require.New(t)

		scoped, isScoped := test.State.(state.Scoped)
		var restore int
		if isScoped {
			restore = scoped.OpIndex()
		}
		output, err := test.Action.Execute(ctx, test.Rules, test.State, test.Height, test.Actor, test.ActionID)
		if err != nil && isScoped && !chain.IsPersistent(err) {
			scoped.Rollback(ctx, restore)
		}

		require.ErrorIs(err, test.ExpectedErr)
		if test.ExpectedOutputs != nil {
			require.Equal(test.ExpectedOutputs, output)
		}
		if test.ExpectedErr != nil {
			require.Nil(output)
		}

		if test.Assertion != nil {
			test.Assertion(ctx, t, test.State)
		}
	})
}

// ActionTestSuite runs [Tests] in order against shared state. Each test
// observes the writes of the tests before it.
type ActionTestSuite struct {
	Tests    []ActionTest
	Teardown func()
}

func (suite *ActionTestSuite) Run(ctx context.Context, t *testing.T) {
	for i := range suite.Tests {
		suite.Tests[i].Run(ctx, t)
	}
	if suite.Teardown != nil {
		suite.Teardown()
	}
}
